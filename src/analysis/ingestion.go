package analysis

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"sync/atomic"

	"feed-monitor/src/helpers"
	"feed-monitor/src/interfaces"
	"feed-monitor/src/logger"
	"feed-monitor/src/models"
)

// -----------------------------------------------------------------------------

// IngestionStats counts frames seen by the loop
type IngestionStats struct {
	Frames    int64 `json:"frames"`
	Pricing   int64 `json:"pricing"`
	Forwarded int64 `json:"forwarded"`
}

// IngestionLoop reads frames one at a time, stamps them and feeds the aggregator.
type IngestionLoop struct {
	Source     interfaces.IFrameSource
	Aggregator *WindowAggregator
	Clock      Clock
	Observer   interfaces.IMessageObserver
	Logger     *logger.Logger

	frames    atomic.Int64
	pricing   atomic.Int64
	forwarded atomic.Int64
}

// -----------------------------------------------------------------------------

func NewIngestionLoop(src interfaces.IFrameSource, agg *WindowAggregator, clock Clock, observer interfaces.IMessageObserver, log *logger.Logger) *IngestionLoop {
	if clock == nil {
		clock = NewMonotonicClock()
	}
	if log == nil {
		log = logger.NewLogger("INFO", "Ingestion")
	}
	return &IngestionLoop{
		Source:     src,
		Aggregator: agg,
		Clock:      clock,
		Observer:   observer,
		Logger:     log,
	}
}

// -----------------------------------------------------------------------------

// Run consumes the source until it ends, ctx is cancelled or a frame fails to decode.
// Only a decode failure is returned as an error.
func (l *IngestionLoop) Run(ctx context.Context) error {
	for {
		if ctx.Err() != nil {
			l.Logger.Info("Ingestion cancelled after %d frames", l.frames.Load())
			return nil
		}

		frame, err := l.Source.Next(ctx)
		if err != nil {
			switch {
			case ctx.Err() != nil:
				l.Logger.Info("Ingestion cancelled after %d frames", l.frames.Load())
			case errors.Is(err, io.EOF):
				l.Logger.Info("Feed %s ended after %d frames", l.Source.Name(), l.frames.Load())
			default:
				l.Logger.Warning("Feed %s disconnected: %v", l.Source.Name(), err)
			}
			return nil
		}

		// Stamp on receipt, before any decoding work
		ts := l.Clock.Now()
		l.frames.Add(1)

		msg, err := DecodeFrame(frame, ts)
		if err != nil {
			l.Logger.Error("Frame %d could not be decoded: %v", l.frames.Load(), err)
			return err
		}

		if msg.IsPricing() {
			l.Aggregator.Record(msg.Symbol, ts)
			l.pricing.Add(1)
			continue
		}

		l.forwarded.Add(1)
		if l.Observer != nil {
			l.Observer.Observe(msg)
		}
	}
}

// -----------------------------------------------------------------------------

// Stats returns the frame counters
func (l *IngestionLoop) Stats() IngestionStats {
	return IngestionStats{
		Frames:    l.frames.Load(),
		Pricing:   l.pricing.Load(),
		Forwarded: l.forwarded.Load(),
	}
}

// -----------------------------------------------------------------------------

// DecodeFrame parses one text frame. The kind comes from "type", or "kind" when
// "type" is missing. Pricing messages take their symbol from message.id.
func DecodeFrame(frame string, ts float64) (models.MInboundMessage, error) {
	var payload interface{}
	if err := json.Unmarshal([]byte(frame), &payload); err != nil {
		return models.MInboundMessage{}, helpers.NewDecodeError(frame, err)
	}

	msg := models.MInboundMessage{
		Payload:   payload,
		Raw:       frame,
		Timestamp: ts,
	}

	obj, ok := payload.(map[string]interface{})
	if !ok {
		return msg, nil
	}

	msg.Kind = stringField(obj, "type")
	if msg.Kind == "" {
		msg.Kind = stringField(obj, "kind")
	}

	if msg.IsPricing() {
		msg.Symbol = models.UnknownSymbol
		if inner, ok := obj["message"].(map[string]interface{}); ok {
			if id := stringField(inner, "id"); id != "" {
				msg.Symbol = id
			}
		}
	}
	return msg, nil
}

// -----------------------------------------------------------------------------

func stringField(obj map[string]interface{}, key string) string {
	if v, ok := obj[key].(string); ok {
		return v
	}
	return ""
}
