package interfaces

import "feed-monitor/src/models"

// -----------------------------------------------------------------------------
// IReportStore exposes the most recent published report.
// -----------------------------------------------------------------------------

type IReportStore interface {
	Latest() (models.MRateReport, bool)
}

// -----------------------------------------------------------------------------
// IStatusProvider exposes the live monitor state to control surfaces.
// -----------------------------------------------------------------------------

type IStatusProvider interface {
	Status() models.MMonitorStatus
}

// -----------------------------------------------------------------------------
// ISnapshotProvider computes rates on demand, between reports.
// -----------------------------------------------------------------------------

type ISnapshotProvider interface {
	Snapshot() models.MSnapshot
}
