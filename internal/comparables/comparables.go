// Package comparables supplies the market context shown next to an estimate:
// similar listings, a price histogram, recent sales and a confidence score.
package comparables

import (
	"context"
	"math"

	"github.com/raine/balla/internal/analysis"
	"github.com/raine/balla/internal/i18n"
)

// Provider finds listings comparable to an appraised item.
type Provider interface {
	Listings(ctx context.Context, itemName string, averagePrice int64) ([]analysis.ListingLink, error)
}

// SyntheticProvider derives listings from the average price. It stands in
// until a real marketplace search is available.
type SyntheticProvider struct{}

var _ Provider = SyntheticProvider{}

var syntheticListings = []struct {
	suffix string
	factor float64
}{
	{" - مستعمل", 1.0},
	{" - حالة جيدة", 1.1},
	{" - للبيع", 0.9},
}

func (SyntheticProvider) Listings(_ context.Context, itemName string, averagePrice int64) ([]analysis.ListingLink, error) {
	links := make([]analysis.ListingLink, 0, len(syntheticListings))
	for _, l := range syntheticListings {
		links = append(links, analysis.ListingLink{
			Title: itemName + l.suffix,
			Price: scale(averagePrice, l.factor),
			URL:   "#",
		})
	}
	return links, nil
}

func scale(price int64, factor float64) int64 {
	return int64(math.Round(float64(price) * factor))
}

// DefaultConfidence is shown when the service did not score its estimate.
const DefaultConfidence = 75

// Confidence returns the result's confidence score or DefaultConfidence.
func Confidence(r *analysis.Result) int {
	if r.ConfidenceScore != nil {
		return *r.ConfidenceScore
	}
	return DefaultConfidence
}

// ConfidenceLevel maps a score to its display text key: 80 and above is
// high, 60 and above medium, anything lower is low.
func ConfidenceLevel(score int) i18n.Key {
	switch {
	case score >= 80:
		return i18n.ConfidenceHigh
	case score >= 60:
		return i18n.ConfidenceMedium
	default:
		return i18n.ConfidenceLow
	}
}

// Distribution returns the result's histogram, or four buckets spread
// around the suggested price when the service sent none.
func Distribution(r *analysis.Result) []analysis.PriceBucket {
	if len(r.PriceDistribution) > 0 {
		return r.PriceDistribution
	}
	p := r.SuggestedPrice
	bucket := func(lo, hi float64, count int, pct float64) analysis.PriceBucket {
		return analysis.PriceBucket{
			Range:      i18n.FormatPrice(scale(p, lo)) + "-" + i18n.FormatPrice(scale(p, hi)),
			Count:      count,
			Percentage: pct,
		}
	}
	return []analysis.PriceBucket{
		bucket(0.7, 0.85, 12, 15),
		bucket(0.85, 1, 35, 43),
		bucket(1, 1.15, 28, 35),
		bucket(1.15, 1.3, 6, 7),
	}
}

// Sales returns the result's recent sales, or three sales derived from the
// suggested price when the service sent none.
func Sales(r *analysis.Result) []analysis.SimilarSale {
	if len(r.SimilarSales) > 0 {
		return r.SimilarSales
	}
	p := r.SuggestedPrice
	return []analysis.SimilarSale{
		{Title: "منتج مشابه - حالة جيدة", Price: scale(p, 0.95), SoldDate: "منذ 3 أيام", Condition: "مستعمل نظيف"},
		{Title: "منتج مشابه - حالة ممتازة", Price: scale(p, 1.05), SoldDate: "منذ 5 أيام", Condition: "ممتاز"},
		{Title: "منتج مشابه - حالة متوسطة", Price: scale(p, 0.85), SoldDate: "منذ أسبوع", Condition: "مستهلك"},
	}
}

// MaxPercentage returns the largest bucket percentage, used to scale bars.
func MaxPercentage(buckets []analysis.PriceBucket) float64 {
	var m float64
	for _, b := range buckets {
		m = math.Max(m, b.Percentage)
	}
	return m
}
