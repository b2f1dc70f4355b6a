package analysis

import (
	"context"
	"time"

	"feed-monitor/src/helpers"
	"feed-monitor/src/interfaces"
	"feed-monitor/src/logger"
	"feed-monitor/src/models"
	"feed-monitor/src/utils"
)

// -----------------------------------------------------------------------------

// PeriodicReporter snapshots the aggregator once per interval and publishes the
// result to every sink.
type PeriodicReporter struct {
	Name       string
	Aggregator *WindowAggregator
	Clock      Clock
	Window     time.Duration
	Interval   time.Duration
	Sinks      []interfaces.IReportSink
	Scheduler  *utils.MarketScheduler
	Logger     *logger.Logger

	errors  *helpers.ErrorHandler
	wallNow func() time.Time
}

// -----------------------------------------------------------------------------

func NewPeriodicReporter(name string, agg *WindowAggregator, clock Clock, window, interval time.Duration, sinks []interfaces.IReportSink, scheduler *utils.MarketScheduler, log *logger.Logger) *PeriodicReporter {
	if clock == nil {
		clock = NewMonotonicClock()
	}
	if log == nil {
		log = logger.NewLogger("INFO", "Reporter")
	}
	return &PeriodicReporter{
		Name:       name,
		Aggregator: agg,
		Clock:      clock,
		Window:     window,
		Interval:   interval,
		Sinks:      sinks,
		Scheduler:  scheduler,
		Logger:     log,
		errors:     helpers.NewErrorHandler(log),
		wallNow:    time.Now,
	}
}

// -----------------------------------------------------------------------------

// Run publishes a report every Interval until ctx is cancelled.
// A cancellation noticed on wake-up exits without reporting.
func (r *PeriodicReporter) Run(ctx context.Context) error {
	ticker := time.NewTicker(r.Interval)
	defer ticker.Stop()

	r.Logger.Info("Reporting every %v over a %v window to %d sinks", r.Interval, r.Window, len(r.Sinks))

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if ctx.Err() != nil {
				return nil
			}
			r.ReportOnce(ctx)
		}
	}
}

// -----------------------------------------------------------------------------

// ReportOnce takes one snapshot and hands it to the sinks.
// Sink failures are logged and do not stop the others.
func (r *PeriodicReporter) ReportOnce(ctx context.Context) models.MRateReport {
	snap := r.Aggregator.Snapshot(r.Clock.Now(), r.Window.Seconds())
	at := r.wallNow()
	report := models.NewRateReport(r.Name, at, r.Window, r.Interval, snap)

	if r.Scheduler != nil {
		report.OpenMarkets = r.Scheduler.OpenMarkets(at)
		report.MarketOpen = len(report.OpenMarkets) > 0
		if report.MarketOpen && report.GlobalRate == 0 {
			r.Logger.Warning("No pricing messages in the last %v while %v open", r.Window, report.OpenMarkets)
		}
	}

	for _, sink := range r.Sinks {
		if err := sink.Publish(ctx, report); err != nil {
			r.errors.Handle(helpers.NewSinkError(sink.Name(), err), "report publish")
		}
	}

	r.Logger.Debug("Published report: global=%d symbols=%d", report.GlobalRate, len(report.Entries))
	return report
}

// -----------------------------------------------------------------------------

// SinkErrors returns how many publish failures were seen
func (r *PeriodicReporter) SinkErrors() int {
	return r.errors.ErrorCount
}
