package sinks

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"feed-monitor/src/analysis/core"
	"feed-monitor/src/models"

	"github.com/shopspring/decimal"
)

// ConsoleSink prints a summary block per report with a single write.
type ConsoleSink struct {
	mu  sync.Mutex
	out io.Writer
}

// -----------------------------------------------------------------------------

func NewConsoleSink(out io.Writer) *ConsoleSink {
	if out == nil {
		out = os.Stdout
	}
	return &ConsoleSink{out: out}
}

func (c *ConsoleSink) Name() string { return "console" }

// -----------------------------------------------------------------------------

func (c *ConsoleSink) Publish(ctx context.Context, report models.MRateReport) error {
	text := FormatReport(report)

	c.mu.Lock()
	defer c.mu.Unlock()
	_, err := io.WriteString(c.out, text)
	return err
}

// -----------------------------------------------------------------------------

// FormatReport renders the summary block. Rates over a 60s window read as msg/min
// directly; other windows also show the per-minute figure.
func FormatReport(report models.MRateReport) string {
	var b strings.Builder

	b.WriteString("----- 1-Minute Summary -----\n")
	fmt.Fprintf(&b, "Global rate: %s\n", formatRate(report.GlobalRate, report.WindowSeconds))

	if len(report.Entries) == 0 {
		b.WriteString("No data\n")
		return b.String()
	}

	parts := make([]string, 0, len(report.Entries))
	for _, e := range report.Entries {
		parts = append(parts, fmt.Sprintf("%s: %s", e.Symbol, formatRate(e.Rate, report.WindowSeconds)))
	}
	fmt.Fprintf(&b, "Symbols: %s\n", strings.Join(parts, ", "))
	return b.String()
}

// -----------------------------------------------------------------------------

func formatRate(count int, windowSeconds float64) string {
	if windowSeconds == 60 || windowSeconds <= 0 {
		return fmt.Sprintf("%d msg/min", count)
	}

	window := decimal.NewFromFloat(windowSeconds)
	perMinute := decimal.NewFromFloat(core.PerMinute(count, windowSeconds)).Round(2)
	return fmt.Sprintf("%d msg/%ss (%s msg/min)", count, window.String(), perMinute.StringFixed(2))
}
