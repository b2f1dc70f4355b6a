package monitor

import (
	"context"
	"time"

	"feed-monitor/src/analysis"
	"feed-monitor/src/app"
	"feed-monitor/src/interfaces"
	"feed-monitor/src/logger"
	"feed-monitor/src/models"
	"feed-monitor/src/utils"
)

// Monitor wires one feed to the aggregator, the ingestion loop and the reporter.
type Monitor struct {
	Source     interfaces.IFrameSource
	Aggregator *analysis.WindowAggregator
	Ingestion  *analysis.IngestionLoop
	Reporter   *analysis.PeriodicReporter
	Logger     *logger.Logger

	clock  analysis.Clock
	window time.Duration
}

// -----------------------------------------------------------------------------

func NewMonitor(cfg *models.MConfig, src interfaces.IFrameSource, sinks []interfaces.IReportSink, observer interfaces.IMessageObserver, log *logger.Logger) *Monitor {
	return newMonitor(cfg, src, sinks, observer, analysis.NewMonotonicClock(), log)
}

func newMonitor(cfg *models.MConfig, src interfaces.IFrameSource, sinks []interfaces.IReportSink, observer interfaces.IMessageObserver, clock analysis.Clock, log *logger.Logger) *Monitor {
	if log == nil {
		log = logger.NewLogger(cfg.LogLevel, "Monitor")
	}

	window := time.Duration(cfg.Aggregation.WindowSeconds) * time.Second
	interval := time.Duration(cfg.Aggregation.ReportIntervalSeconds) * time.Second

	agg := analysis.NewWindowAggregator()
	scheduler := utils.NewMarketScheduler(cfg.Feed.Symbols, log.Named("MarketScheduler"))

	return &Monitor{
		Source:     src,
		Aggregator: agg,
		Ingestion:  analysis.NewIngestionLoop(src, agg, clock, observer, log.Named("Ingestion")),
		Reporter:   analysis.NewPeriodicReporter(cfg.Name, agg, clock, window, interval, sinks, scheduler, log.Named("Reporter")),
		Logger:     log,
		clock:      clock,
		window:     window,
	}
}

// -----------------------------------------------------------------------------

// Run opens the feed and supervises ingestion and reporting until either stops.
// A decode failure is returned; end of stream and cancellation are not.
func (m *Monitor) Run(ctx context.Context) error {
	if err := m.Source.Open(ctx); err != nil {
		m.Logger.Error("Failed to open feed %s: %v", m.Source.Name(), err)
		return err
	}
	defer m.Source.Close()

	err := app.NewApp().
		WithService(m.Ingestion).
		WithService(m.Reporter).
		Run(ctx)

	if err != nil {
		m.Logger.Error("Monitor stopped: %v", err)
		return err
	}
	m.Logger.Info("Monitor stopped")
	return nil
}

// -----------------------------------------------------------------------------

// Snapshot reads the current rates without waiting for the next report
func (m *Monitor) Snapshot() models.MSnapshot {
	return m.Aggregator.Snapshot(m.clock.Now(), m.window.Seconds())
}

// -----------------------------------------------------------------------------

func (m *Monitor) Status() models.MMonitorStatus {
	stats := m.Ingestion.Stats()
	return models.MMonitorStatus{
		Source:          m.Source.Status(),
		FramesProcessed: stats.Frames,
		PricingMessages: stats.Pricing,
		OtherMessages:   stats.Forwarded,
		KnownSymbols:    m.Aggregator.Keys(),
		WindowSeconds:   m.window.Seconds(),
	}
}
