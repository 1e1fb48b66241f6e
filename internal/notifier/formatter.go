package notifier

import (
	"fmt"
	"html"
	"strings"
	"time"

	"OptionsSentinel/internal/clock"
	"OptionsSentinel/internal/model"
	"OptionsSentinel/internal/pipeline"
	"OptionsSentinel/internal/signalcache"
	"OptionsSentinel/internal/strategy"
)

// SimulationWarning is appended whenever any input came from the generator.
const SimulationWarning = "⚠️ Simulated data: upstream unavailable, figures are synthetic."

var factorTitles = map[model.Factor]string{
	model.FactorTrend:    "Trend (MA50)",
	model.FactorRSI:      "RSI Trend",
	model.FactorMACD:     "MACD",
	model.FactorVolume:   "Option Flow",
	model.FactorEarnings: "Earnings Prox",
	model.FactorIV:       "IV Regime",
}

var sentimentIcons = map[strategy.Sentiment]string{
	strategy.SentimentBullish: "🟢",
	strategy.SentimentBearish: "🔴",
	strategy.SentimentWarning: "🟠",
	strategy.SentimentNeutral: "⚪",
}

func strengthBadge(s model.Strength) string {
	switch s {
	case model.StrengthStrong:
		return "🔥 STRONG"
	case model.StrengthModerate:
		return "MODERATE"
	case model.StrengthWait:
		return "⏳ WAIT"
	default:
		return "WEAK"
	}
}

func marketBadge(status clock.Status) string {
	if status == clock.StatusOpen {
		return "🟢 " + string(status)
	}
	return "🔴 " + string(status)
}

// FormatSignalReport formats one analysis into a Telegram message.
func FormatSignalReport(a *pipeline.Analysis) string {
	var b strings.Builder

	b.WriteString(fmt.Sprintf("📊 <b>%s</b> | %s | %s\n\n",
		html.EscapeString(a.Symbol), marketBadge(a.Market), a.At.In(clock.Eastern).Format("2006-01-02 15:04 MST")))
	b.WriteString(fmt.Sprintf("Price: $%.2f\n", a.Price))
	b.WriteString(fmt.Sprintf("CALL BIAS: <b>%d%%</b> | PUT BIAS: <b>%d%%</b>\n", a.Signal.CallScore, a.Signal.PutScore))
	b.WriteString(fmt.Sprintf("Conviction: %s\n", strengthBadge(a.Signal.Strength)))
	if a.Source == signalcache.SourceFrozen {
		b.WriteString("🧊 Frozen at last open-market reading\n")
	}

	if len(a.Signal.Breakdown) > 0 {
		b.WriteString("\n📈 <b>Factor Observation:</b>\n")
		for _, f := range model.Factors {
			label, ok := a.Signal.Breakdown[f]
			if !ok {
				continue
			}
			b.WriteString(fmt.Sprintf("  %s %s: %s\n",
				sentimentIcons[strategy.LabelSentiment(label)], factorTitles[f], html.EscapeString(label)))
		}
	}

	if a.Options != nil && a.Options.Expiry != "" {
		b.WriteString(fmt.Sprintf("\nExpiry: %s | Earnings in: %dd\n", a.Options.Expiry, a.EarningsDays))
	}
	if a.Simulated {
		b.WriteString("\n" + SimulationWarning + "\n")
	}
	return b.String()
}

// FormatCloseSummary formats the end-of-day signal table. Nil entries are
// skipped.
func FormatCloseSummary(analyses []*pipeline.Analysis, now time.Time) string {
	return formatSummary("🔔 <b>Close Summary</b> | "+now.In(clock.Eastern).Format("2006-01-02"), analyses)
}

// FormatRefreshSummary formats the signal table after a forced refresh.
func FormatRefreshSummary(analyses []*pipeline.Analysis, now time.Time) string {
	return formatSummary("🔄 <b>Refreshed</b> | "+now.In(clock.Eastern).Format("15:04 MST"), analyses)
}

func formatSummary(title string, analyses []*pipeline.Analysis) string {
	var b strings.Builder
	b.WriteString(title + "\n\n")

	simulated := false
	count := 0
	for _, a := range analyses {
		if a == nil {
			continue
		}
		count++
		simulated = simulated || a.Simulated
		b.WriteString(fmt.Sprintf("<code>%-6s</code> $%8.2f  C %3d%% / P %3d%%  %s\n",
			html.EscapeString(a.Symbol), a.Price, a.Signal.CallScore, a.Signal.PutScore, a.Signal.Strength))
	}
	if count == 0 {
		b.WriteString("Watchlist is empty.\n")
	}
	if simulated {
		b.WriteString("\n" + SimulationWarning + "\n")
	}
	return b.String()
}

// FormatHistory formats recent signal log rows, newest first.
func FormatHistory(symbol string, entries []model.SignalLogEntry) string {
	if len(entries) == 0 {
		return fmt.Sprintf("No logged signals for %s.", html.EscapeString(symbol))
	}
	var b strings.Builder
	b.WriteString(fmt.Sprintf("🗂 <b>%s history</b>\n\n", html.EscapeString(symbol)))
	for _, e := range entries {
		b.WriteString(fmt.Sprintf("%s  C %3d%% / P %3d%%  %s\n",
			e.Timestamp.In(clock.Eastern).Format("01-02 15:04"), e.CallScore, e.PutScore, e.Strength))
	}
	return b.String()
}

// Status is a snapshot of the running bot.
type Status struct {
	Market       clock.Status
	Now          time.Time
	Provider     string
	Watchlist    []string
	CachedSignal []string
	NextOpen     time.Time
}

// FormatStatus formats the bot status for display.
func FormatStatus(s Status) string {
	var b strings.Builder
	b.WriteString("📦 <b>Sentinel Status</b>\n\n")
	b.WriteString(fmt.Sprintf("Market: %s\n", marketBadge(s.Market)))
	b.WriteString(fmt.Sprintf("Time: %s\n", s.Now.In(clock.Eastern).Format("2006-01-02 15:04 MST")))
	if s.Market != clock.StatusOpen && !s.NextOpen.IsZero() {
		b.WriteString(fmt.Sprintf("Next open: %s\n", s.NextOpen.In(clock.Eastern).Format("Mon 2006-01-02 15:04")))
	}
	b.WriteString(fmt.Sprintf("Data source: %s\n", s.Provider))
	b.WriteString(fmt.Sprintf("Watchlist (%d): %s\n", len(s.Watchlist), strings.Join(s.Watchlist, ", ")))
	b.WriteString(fmt.Sprintf("Cached signals: %d\n", len(s.CachedSignal)))
	return b.String()
}
