package notifier

import (
	"fmt"
	"html"
	"math"
	"strings"
	"time"

	"StockSentinel/internal/model"
	"StockSentinel/internal/scanner"

	"github.com/dustin/go-humanize"
)

// FormatNumber renders an amount in rupees: billions and millions are
// abbreviated, smaller values get thousands separators and two decimals.
func FormatNumber(v float64) string {
	switch {
	case math.IsNaN(v) || math.IsInf(v, 0):
		return "N/A"
	case v >= 1e9:
		return fmt.Sprintf("₹%.2fB", v/1e9)
	case v >= 1e6:
		return fmt.Sprintf("₹%.2fM", v/1e6)
	}
	return "₹" + humanize.FormatFloat("#,###.##", v)
}

func recommendationIcon(r model.Recommendation) string {
	switch r {
	case model.StrongBuy:
		return "🟢🟢"
	case model.BuyRec:
		return "🟢"
	case model.SellRec:
		return "🔴"
	case model.StrongSell:
		return "🔴🔴"
	}
	return "⚪"
}

func formatOptional(v float64, format string) string {
	if !model.Defined(v) {
		return "n/a"
	}
	return fmt.Sprintf(format, v)
}

// FormatAnalysis formats a single-symbol detail into a Telegram message.
func FormatAnalysis(d *scanner.Detail) string {
	a := d.Analysis
	var b strings.Builder

	title := html.EscapeString(a.Symbol)
	if d.Instrument != nil && d.Instrument.Name != "" && d.Instrument.Name != a.Symbol {
		title += " | " + html.EscapeString(d.Instrument.Name)
	}
	b.WriteString(fmt.Sprintf("📊 <b>%s</b>\n", title))
	b.WriteString(fmt.Sprintf("as of %s\n\n", a.AsOf.Format("2006-01-02")))

	b.WriteString(fmt.Sprintf("Price: %s (%+.2f%%)\n", FormatNumber(a.LastPrice), a.PriceChange))
	b.WriteString(fmt.Sprintf("Range: %s – %s (at %.0f%%)\n", FormatNumber(d.Range.Low), FormatNumber(d.Range.High), d.Range.Position*100))
	if d.Instrument != nil && d.Instrument.MarketVolume > 0 {
		b.WriteString(fmt.Sprintf("Volume: %s\n", humanize.Comma(int64(d.Instrument.MarketVolume))))
	}

	if n := d.Frame.Len(); n > 0 {
		last := d.Frame.BarAt(n - 1)
		b.WriteString(fmt.Sprintf("RSI(14): %s | SMA20: %s\n", formatOptional(last.RSI, "%.1f"), formatOptional(last.SMA20, "%.2f")))
	}

	s := a.SignalSummary
	b.WriteString("\n📈 <b>Signals:</b>\n")
	b.WriteString(fmt.Sprintf("  RSI: %s\n  MACD: %s\n  Bollinger: %s\n  Moving Average: %s\n", s.RSI, s.MACD, s.BB, s.MA))
	b.WriteString(fmt.Sprintf("  Overall: <b>%s</b>\n", s.Overall))

	if len(a.Rules) > 0 {
		b.WriteString("\n🧮 <b>Score breakdown:</b>\n")
		for _, r := range a.Rules {
			b.WriteString(fmt.Sprintf("  %+d %s\n", r.Points, r.Name))
		}
	}
	b.WriteString(fmt.Sprintf("  Technical score: %+d\n\n", a.TechnicalScore))

	b.WriteString(fmt.Sprintf("%s <b>%s</b> (%s confidence)\n", recommendationIcon(a.Recommendation), a.Recommendation, a.Confidence))
	return b.String()
}

// FormatRecommendations formats a scan report, listing at most limit picks.
func FormatRecommendations(r *scanner.RecommendationReport, limit int) string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("🧭 <b>Stock Recommendations</b> | %s\n", r.GeneratedAt.Format("2006-01-02 15:04")))
	b.WriteString(fmt.Sprintf("Minimum confidence: %s\n\n", r.MinConfidence))

	if len(r.Picks) == 0 {
		b.WriteString("No recommendations matched.\n")
	}
	for i, p := range r.Picks {
		if limit > 0 && i == limit {
			b.WriteString(fmt.Sprintf("… and %d more\n", len(r.Picks)-limit))
			break
		}
		b.WriteString(fmt.Sprintf("%s <b>%s</b> %s (%s) score %+d | %s %+.2f%%\n",
			recommendationIcon(p.Recommendation), html.EscapeString(p.Symbol), p.Recommendation, p.Confidence,
			p.TechnicalScore, FormatNumber(p.LastPrice), p.PriceChange))
		b.WriteString(fmt.Sprintf("   <i>%s</i>\n", html.EscapeString(p.Basis)))
	}

	ins := r.Insights
	b.WriteString("\n📋 <b>Analysis Insights</b>\n")
	b.WriteString(fmt.Sprintf("Total analyzed: %d | Buy: %d | Sell: %d\n", ins.TotalAnalyzed, ins.BuySignals, ins.SellSignals))
	b.WriteString(fmt.Sprintf("Market sentiment: <b>%s</b> (%.0f%% buys)\n", ins.Sentiment, ins.BuyPercentage))
	if len(r.Failures) > 0 {
		b.WriteString(fmt.Sprintf("Skipped symbols: %d\n", len(r.Failures)))
	}
	return b.String()
}

// FormatNews lists headlines newest first.
func FormatNews(symbol string, items []model.NewsItem) string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("📰 <b>%s news</b>\n\n", html.EscapeString(symbol)))
	if len(items) == 0 {
		b.WriteString("No news articles found.\n")
		return b.String()
	}
	for _, it := range items {
		b.WriteString(fmt.Sprintf("• <a href=\"%s\">%s</a>\n  %s · %s\n",
			html.EscapeString(it.Link), html.EscapeString(it.Title),
			html.EscapeString(it.Source), humanize.RelTime(it.Published, time.Now(), "ago", "from now")))
	}
	return b.String()
}

// FormatHelp lists the bot commands.
func FormatHelp() string {
	return "Available commands:\n" +
		"• /analyze SYMBOL – technical analysis\n" +
		"• /recommend [Low|Medium|High] – scan the symbol list\n" +
		"• /news SYMBOL – latest headlines\n" +
		"• /help – this message"
}
