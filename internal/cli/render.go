package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/lithammer/dedent"
	"github.com/raine/balla/internal/analysis"
	"github.com/raine/balla/internal/comparables"
	"github.com/raine/balla/internal/history"
	"github.com/raine/balla/internal/i18n"
	"github.com/raine/balla/internal/region"
	"github.com/raine/balla/internal/session"
)

func formatText(text string, a ...any) string {
	return fmt.Sprintf(strings.TrimSpace(dedent.Dedent(text)), a...)
}

const resultTemplate = `
	%s: %s (%s)
	%s: %s (%d/100)

	%s: %s IQD
	%s: %s / %s / %s
	%s: %s / %s / %s

	%s: %d%%
	%s

	%s:
	%s`

func renderResult(w io.Writer, lang i18n.Language, reg region.ID, r *analysis.Result) {
	regionName := string(reg)
	if rg, err := region.Lookup(reg); err == nil {
		regionName = rg.DisplayName(lang)
	}
	confidence := comparables.Confidence(r)

	fmt.Fprintln(w, formatText(resultTemplate,
		i18n.T(lang, i18n.ResultsTitle), r.ItemName, r.ItemType,
		i18n.T(lang, i18n.ConditionLabel), r.Condition, r.ConditionScore,
		i18n.T(lang, i18n.SuggestedPrice), i18n.FormatPrice(r.SuggestedPrice),
		i18n.T(lang, i18n.PriceRange), i18n.T(lang, i18n.Lowest), i18n.T(lang, i18n.Average), i18n.T(lang, i18n.Highest),
		i18n.T(lang, i18n.PricesIn), i18n.FormatPrice(r.LowestPrice), i18n.FormatPrice(r.AveragePrice), i18n.FormatPrice(r.HighestPrice),
		i18n.T(lang, i18n.ConfidenceLabel), confidence,
		i18n.T(lang, comparables.ConfidenceLevel(confidence)),
		i18n.T(lang, i18n.SellingStrategy), r.Recommendation,
	))
	fmt.Fprintf(w, "%s: %s\n", i18n.T(lang, i18n.SelectRegion), regionName)

	if len(r.ListingLinks) > 0 {
		fmt.Fprintf(w, "\n%s:\n", i18n.T(lang, i18n.SimilarListings))
		for _, l := range r.ListingLinks {
			fmt.Fprintf(w, "  - %s  %s IQD  %s\n", l.Title, i18n.FormatPrice(l.Price), l.URL)
		}
	}

	buckets := comparables.Distribution(r)
	maxPct := comparables.MaxPercentage(buckets)
	fmt.Fprintf(w, "\n%s:\n", i18n.T(lang, i18n.PriceDistrib))
	for _, b := range buckets {
		fmt.Fprintf(w, "  %-24s %-20s %3d (%.0f%%)\n", b.Range, bar(b.Percentage, maxPct, 20), b.Count, b.Percentage)
	}

	fmt.Fprintf(w, "\n%s:\n", i18n.T(lang, i18n.SimilarSales))
	for _, s := range comparables.Sales(r) {
		fmt.Fprintf(w, "  - %s  %s IQD  %s  %s\n", s.Title, i18n.FormatPrice(s.Price), s.Condition, s.SoldDate)
	}

	if len(r.Warnings) > 0 {
		fmt.Fprintf(w, "\n%s:\n", i18n.T(lang, i18n.ResultWarningsTitle))
		for _, warn := range r.Warnings {
			fmt.Fprintf(w, "  ! %s\n", warn)
		}
	}
}

func bar(value, peak float64, width int) string {
	if peak <= 0 {
		return ""
	}
	n := int(value / peak * float64(width))
	n = min(max(n, 0), width)
	return strings.Repeat("#", n)
}

func renderHistory(w io.Writer, lang i18n.Language, entries []history.Entry, searching bool) {
	if len(entries) == 0 {
		if searching {
			fmt.Fprintln(w, i18n.T(lang, i18n.HistoryNoMatches))
		} else {
			fmt.Fprintln(w, i18n.T(lang, i18n.HistoryEmpty))
		}
		return
	}
	fmt.Fprintf(w, "%s (%d):\n", i18n.T(lang, i18n.HistoryTitle), len(entries))
	for i, e := range entries {
		fmt.Fprintf(w, "  %d. %s  %s  %s IQD  %s\n",
			i+1,
			e.At.Format("2006-01-02 15:04"),
			e.Result.ItemName,
			i18n.FormatPrice(e.Result.SuggestedPrice),
			e.Region,
		)
	}
}

func renderNotice(w io.Writer, n session.Notice) {
	fmt.Fprintf(w, "[%s] %s: %s\n", n.Kind, n.Title, n.Message)
}
