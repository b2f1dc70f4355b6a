package interfaces

import (
	"context"

	"feed-monitor/src/models"
)

// -----------------------------------------------------------------------------
// IReportSink receives each periodic rate report.
// -----------------------------------------------------------------------------

type IReportSink interface {
	Name() string
	Publish(ctx context.Context, report models.MRateReport) error
}

// -----------------------------------------------------------------------------
// IMessageObserver receives every inbound message that is not a pricing update.
// -----------------------------------------------------------------------------

type IMessageObserver interface {
	Observe(msg models.MInboundMessage)
}

// -----------------------------------------------------------------------------

// MessageObserverFunc adapts a plain function to IMessageObserver.
type MessageObserverFunc func(msg models.MInboundMessage)

func (f MessageObserverFunc) Observe(msg models.MInboundMessage) { f(msg) }
