package notifier

import (
	"fmt"
	"html"
	"strings"
	"time"
	"unicode/utf8"

	"TrendSentinel/internal/model"
	"TrendSentinel/internal/recorder"
)

// maxMessageLen stays under Telegram's 4096 character limit.
const maxMessageLen = 4000

// FormatRunReport formats one run's accepted signals and resulting portfolio
// into a Telegram HTML message. Long lists are cut at item boundaries so tags
// stay balanced; the save error and duration lines are always kept.
func FormatRunReport(run *recorder.RunSummary, report model.Report) string {
	header := fmt.Sprintf("📊 <b>TrendSentinel</b> | %s\n", run.FinishedAt.Format("2006-01-02 15:04")) +
		fmt.Sprintf("Scanned: %d | Skipped: %d | Source: %s\n\n", run.Scanned, run.Skipped, html.EscapeString(run.Source))

	var footer strings.Builder
	if run.SaveError != "" {
		footer.WriteString(fmt.Sprintf("\n⚠️ portfolio not saved: %s\n", html.EscapeString(run.SaveError)))
	}
	footer.WriteString(fmt.Sprintf("\n⏱ %s", run.FinishedAt.Sub(run.StartedAt).Round(time.Second)))

	signals := make([]string, 0, len(run.Accepted))
	for _, s := range run.Accepted {
		icon := "🟢"
		if s.Kind == model.SignalSell {
			icon = "🔴"
		}
		signals = append(signals, fmt.Sprintf("  %s %s <b>%s</b> (%s @ %.2f)\n",
			icon, s.Kind, html.EscapeString(s.Symbol), s.Horizon, s.Price))
	}

	owned := make([]string, 0, len(report.Portfolio))
	for _, row := range report.Portfolio {
		if row.Symbol == model.SentinelSymbol {
			continue
		}
		owned = append(owned, html.EscapeString(row.Symbol))
	}

	signalsTitle := "📈 <b>Signals</b>\n"
	portfolioTitle := fmt.Sprintf("\n📦 <b>Portfolio</b> (%d)\n", len(owned))
	budget := maxMessageLen - runeLen(header) - runeLen(footer.String()) -
		runeLen(signalsTitle) - runeLen(portfolioTitle)

	var portfolio string
	if len(owned) == 0 {
		portfolio = "  Empty\n"
	} else {
		portfolio = "  " + fitItems(owned, ", ", budget/3-3, func(n int) string {
			return fmt.Sprintf(", … and %d more", n)
		}) + "\n"
	}

	var signalBody string
	if len(signals) == 0 {
		signalBody = "  No signal\n"
	} else {
		signalBody = fitItems(signals, "", budget-runeLen(portfolio), func(n int) string {
			return fmt.Sprintf("  … and %d more\n", n)
		})
	}

	return header + signalsTitle + signalBody + portfolioTitle + portfolio + footer.String()
}

// fitItems joins items with sep, keeping whole items only, so the result plus
// its "and N more" tail stays within limit runes.
func fitItems(items []string, sep string, limit int, more func(n int) string) string {
	if runeLen(strings.Join(items, sep)) <= limit {
		return strings.Join(items, sep)
	}
	var b strings.Builder
	used := 0
	for i, item := range items {
		piece := item
		if i > 0 {
			piece = sep + item
		}
		tail := more(len(items) - i - 1)
		if used+runeLen(piece)+runeLen(tail) > limit {
			if i == 0 {
				return strings.TrimPrefix(more(len(items)), sep)
			}
			b.WriteString(more(len(items) - i))
			return b.String()
		}
		b.WriteString(piece)
		used += runeLen(piece)
	}
	return b.String()
}

func runeLen(s string) int {
	return utf8.RuneCountInString(s)
}
