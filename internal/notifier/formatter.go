package notifier

import (
	"fmt"
	"html"
	"strings"
	"time"

	"RSLScreener/internal/model"
)

// FormatRankingReport formats the published top-N for Telegram.
func FormatRankingReport(snap *model.Snapshot) string {
	var b strings.Builder

	b.WriteString(fmt.Sprintf("📊 <b>RSL Top %d</b> | %s\n", snap.TopN, snap.GeneratedAt.UTC().Format("2006-01-02")))
	b.WriteString(fmt.Sprintf("SMA%d · %d screened · %d skipped\n\n", snap.Window, snap.StocksScreened, snap.SkippedCount))

	if len(snap.Entries) == 0 {
		b.WriteString("No symbol could be ranked.\n")
		return b.String()
	}
	for _, e := range snap.Entries {
		label := e.Name
		if label == "" {
			label = e.Symbol
		}
		b.WriteString(fmt.Sprintf("#%-2d %s  RSL %.4f  %s\n",
			e.Rank, html.EscapeString(label), e.RSL, FormatDelta(e)))
	}
	return b.String()
}

// FormatRankingPlain formats the snapshot as a terminal table.
func FormatRankingPlain(snap *model.Snapshot) string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("RSL top %d, SMA%d, %s\n", snap.TopN, snap.Window, snap.GeneratedAt.UTC().Format(time.RFC3339)))
	b.WriteString(fmt.Sprintf("%-4s %-14s %10s %10s %8s %6s\n", "RANK", "TICKER", "PRICE", "SMA", "RSL", "CHG"))
	for _, e := range snap.Entries {
		chg := "new"
		if delta, ok := e.Delta(); ok {
			chg = fmt.Sprintf("%+d", delta)
		}
		b.WriteString(fmt.Sprintf("%-4d %-14s %10.2f %10.2f %8.4f %6s\n", e.Rank, e.Symbol, e.Price, e.SMA, e.RSL, chg))
	}
	b.WriteString(fmt.Sprintf("%d of %d screened, %d skipped\n", snap.StocksScreened, snap.TotalAttempted, snap.SkippedCount))
	return b.String()
}

// FormatDelta renders the rank change of an entry.
func FormatDelta(e model.RankedEntry) string {
	delta, ok := e.Delta()
	switch {
	case !ok:
		return "🆕"
	case delta > 0:
		return fmt.Sprintf("▲%d", delta)
	case delta < 0:
		return fmt.Sprintf("▼%d", -delta)
	default:
		return "="
	}
}

// FormatRunFailure formats a failed run.
func FormatRunFailure(err error) string {
	return fmt.Sprintf("❌ <b>RSL run failed</b>\n\n%s", html.EscapeString(err.Error()))
}

// FormatHelp lists the supported commands.
func FormatHelp() string {
	return "Commands:\n• /top: latest ranking\n• /run: run the screener now\n• /history: recent runs"
}
