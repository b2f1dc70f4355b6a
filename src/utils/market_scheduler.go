package utils

import (
	"sort"
	"sync"
	"time"

	"feed-monitor/src/logger"
)

// MarketScheduler tracks the exchanges behind the subscribed symbols.
// The reporter uses it to tell a quiet feed from a closed market.
type MarketScheduler struct {
	Calendars map[string]*TradingCalendar // keyed by MIC
	Logger    *logger.Logger
	mu        sync.RWMutex
}

// -----------------------------------------------------------------------------

func NewMarketScheduler(symbols []string, l *logger.Logger) *MarketScheduler {
	if l == nil {
		l = logger.NewLogger("INFO", "MarketScheduler")
	}
	ms := &MarketScheduler{
		Calendars: make(map[string]*TradingCalendar),
		Logger:    l,
	}
	ms.UpdateSymbols(symbols)
	return ms
}

// -----------------------------------------------------------------------------

// UpdateSymbols replaces the tracked exchanges with those of symbols
func (ms *MarketScheduler) UpdateSymbols(symbols []string) {
	calendars := make(map[string]*TradingCalendar)
	for _, symbol := range symbols {
		mic := MICForSymbol(symbol)
		if _, ok := calendars[mic]; ok {
			continue
		}
		if cal := GetCalendar(symbol); cal != nil {
			calendars[cal.MIC] = cal
		}
	}

	ms.mu.Lock()
	ms.Calendars = calendars
	ms.mu.Unlock()

	ms.Logger.Info("Mapped %d symbols to %d unique calendars.", len(symbols), len(calendars))
}

// -----------------------------------------------------------------------------

// OpenMarkets returns the sorted MICs open at t
func (ms *MarketScheduler) OpenMarkets(t time.Time) []string {
	ms.mu.RLock()
	defer ms.mu.RUnlock()

	open := []string{}
	for mic, cal := range ms.Calendars {
		if cal.IsOpenOnMinute(t) {
			open = append(open, mic)
		}
	}
	sort.Strings(open)
	return open
}
