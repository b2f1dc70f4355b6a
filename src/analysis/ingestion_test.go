package analysis

import (
	"context"
	"errors"
	"io"
	"testing"

	"feed-monitor/src/helpers"
	"feed-monitor/src/interfaces"
	"feed-monitor/src/logger"
	"feed-monitor/src/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func quietLogger() *logger.Logger {
	return logger.NewLoggerTo(io.Discard, "DEBUG", "test")
}

func TestDecodeFrame(t *testing.T) {
	tests := []struct {
		name   string
		frame  string
		kind   string
		symbol string
	}{
		{"type discriminator", `{"type":"pricing","message":{"id":"AAPL","price":1.5}}`, "pricing", "AAPL"},
		{"kind discriminator", `{"kind":"pricing","message":{"id":"GOOG"}}`, "pricing", "GOOG"},
		{"missing message", `{"type":"pricing"}`, "pricing", models.UnknownSymbol},
		{"missing id", `{"type":"pricing","message":{}}`, "pricing", models.UnknownSymbol},
		{"null id", `{"type":"pricing","message":{"id":null}}`, "pricing", models.UnknownSymbol},
		{"numeric id", `{"type":"pricing","message":{"id":42}}`, "pricing", models.UnknownSymbol},
		{"empty id", `{"type":"pricing","message":{"id":""}}`, "pricing", models.UnknownSymbol},
		{"heartbeat", `{"type":"heartbeat"}`, "heartbeat", ""},
		{"array", `[1,2,3]`, "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msg, err := DecodeFrame(tt.frame, 3.5)
			require.NoError(t, err)
			assert.Equal(t, tt.kind, msg.Kind)
			assert.Equal(t, tt.symbol, msg.Symbol)
			assert.Equal(t, tt.frame, msg.Raw)
			assert.Equal(t, 3.5, msg.Timestamp)
		})
	}
}

func TestDecodeFrameMalformed(t *testing.T) {
	_, err := DecodeFrame(`{"type":"pricing"`, 0)

	var decodeErr *helpers.DecodeError
	require.ErrorAs(t, err, &decodeErr)
	assert.Equal(t, `{"type":"pricing"`, decodeErr.Frame)
}

func TestIngestionRecordsPricingAndForwardsTheRest(t *testing.T) {
	src := &fakeSource{frames: []string{
		`{"type":"pricing","message":{"id":"AAPL"}}`,
		`{"type":"heartbeat"}`,
		`{"type":"pricing","message":{"id":"AAPL"}}`,
		`{"type":"pricing","message":{}}`,
		`"hello"`,
	}}
	agg := NewWindowAggregator()

	var forwarded []models.MInboundMessage
	observer := interfaces.MessageObserverFunc(func(m models.MInboundMessage) {
		forwarded = append(forwarded, m)
	})

	loop := NewIngestionLoop(src, agg, &stepClock{values: []float64{1, 2, 3, 4, 5}}, observer, quietLogger())
	require.NoError(t, loop.Run(context.Background()))

	snap := agg.Snapshot(5, 60)
	assert.Equal(t, 3, snap.GlobalRate)
	assert.Equal(t, []models.MRateEntry{
		{Symbol: "AAPL", Rate: 2},
		{Symbol: models.UnknownSymbol, Rate: 1},
	}, snap.Entries)

	require.Len(t, forwarded, 2)
	assert.Equal(t, "heartbeat", forwarded[0].Kind)
	assert.Equal(t, 2.0, forwarded[0].Timestamp)
	assert.Equal(t, "hello", forwarded[1].Payload)

	assert.Equal(t, IngestionStats{Frames: 5, Pricing: 3, Forwarded: 2}, loop.Stats())
}

func TestIngestionStampsEachFrameOnReceipt(t *testing.T) {
	src := &fakeSource{frames: []string{
		`{"type":"pricing","message":{"id":"AAPL"}}`,
		`{"type":"pricing","message":{"id":"AAPL"}}`,
	}}
	agg := NewWindowAggregator()
	loop := NewIngestionLoop(src, agg, &stepClock{values: []float64{0, 100}}, nil, quietLogger())
	require.NoError(t, loop.Run(context.Background()))

	// only the second frame falls inside [100-60, 100]
	assert.Equal(t, 1, agg.PruneAndCount("AAPL", 100, 60))
}

func TestIngestionStopsOnDecodeError(t *testing.T) {
	src := &fakeSource{frames: []string{
		`{"type":"pricing","message":{"id":"AAPL"}}`,
		`not json`,
		`{"type":"pricing","message":{"id":"AAPL"}}`,
	}}
	agg := NewWindowAggregator()
	loop := NewIngestionLoop(src, agg, fixedClock(1), nil, quietLogger())

	err := loop.Run(context.Background())
	var decodeErr *helpers.DecodeError
	require.ErrorAs(t, err, &decodeErr)
	assert.Equal(t, 1, agg.Snapshot(1, 60).GlobalRate)
	assert.Equal(t, 2, src.pos, "no frame is read after the failure")
}

func TestIngestionDisconnectIsNormal(t *testing.T) {
	src := &fakeSource{end: helpers.NewTransportError("read failed", errors.New("connection reset"))}
	loop := NewIngestionLoop(src, NewWindowAggregator(), fixedClock(0), nil, quietLogger())
	assert.NoError(t, loop.Run(context.Background()))
}

func TestIngestionStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	src := &fakeSource{frames: []string{`{"type":"pricing","message":{"id":"AAPL"}}`}}
	agg := NewWindowAggregator()
	loop := NewIngestionLoop(src, agg, fixedClock(0), nil, quietLogger())

	assert.NoError(t, loop.Run(ctx))
	assert.Equal(t, 0, agg.Keys())
}

func TestIngestionBlockedReadReturnsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	src := &fakeSource{block: true}
	loop := NewIngestionLoop(src, NewWindowAggregator(), fixedClock(0), nil, quietLogger())

	done := make(chan error, 1)
	go func() { done <- loop.Run(ctx) }()
	cancel()
	assert.NoError(t, <-done)
}
