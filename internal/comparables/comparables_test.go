package comparables

import (
	"context"
	"testing"

	"github.com/raine/balla/internal/analysis"
	"github.com/raine/balla/internal/i18n"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSyntheticProvider_Listings(t *testing.T) {
	links, err := SyntheticProvider{}.Listings(context.Background(), "iPhone 13", 850000)
	require.NoError(t, err)
	require.Len(t, links, 3)

	assert.Equal(t, "iPhone 13 - مستعمل", links[0].Title)
	assert.Equal(t, int64(850000), links[0].Price)
	assert.Equal(t, int64(935000), links[1].Price)
	assert.Equal(t, int64(765000), links[2].Price)
	for _, l := range links {
		assert.Equal(t, "#", l.URL)
	}
}

func TestSyntheticProvider_RoundsPrices(t *testing.T) {
	links, err := SyntheticProvider{}.Listings(context.Background(), "Lamp", 15)
	require.NoError(t, err)
	assert.Equal(t, int64(17), links[1].Price) // 16.5
	assert.Equal(t, int64(14), links[2].Price) // 13.5
}

func TestConfidence(t *testing.T) {
	r := &analysis.Result{}
	assert.Equal(t, DefaultConfidence, Confidence(r))

	score := 42
	r.ConfidenceScore = &score
	assert.Equal(t, 42, Confidence(r))
}

func TestConfidenceLevel(t *testing.T) {
	assert.Equal(t, i18n.ConfidenceHigh, ConfidenceLevel(80))
	assert.Equal(t, i18n.ConfidenceMedium, ConfidenceLevel(79))
	assert.Equal(t, i18n.ConfidenceMedium, ConfidenceLevel(60))
	assert.Equal(t, i18n.ConfidenceLow, ConfidenceLevel(59))
}

func TestDistribution_Fallback(t *testing.T) {
	buckets := Distribution(&analysis.Result{SuggestedPrice: 100000})
	require.Len(t, buckets, 4)

	assert.Equal(t, "70,000-85,000", buckets[0].Range)
	assert.Equal(t, "100,000-115,000", buckets[2].Range)
	assert.Equal(t, 35, buckets[1].Count)
	assert.Equal(t, float64(43), MaxPercentage(buckets))
}

func TestDistribution_KeepsServiceValues(t *testing.T) {
	given := []analysis.PriceBucket{{Range: "1-2", Count: 1, Percentage: 60}, {Range: "2-3", Count: 2, Percentage: 60}}
	assert.Equal(t, given, Distribution(&analysis.Result{PriceDistribution: given}))
}

func TestSales_Fallback(t *testing.T) {
	sales := Sales(&analysis.Result{SuggestedPrice: 200000})
	require.Len(t, sales, 3)
	assert.Equal(t, int64(190000), sales[0].Price)
	assert.Equal(t, int64(210000), sales[1].Price)
	assert.Equal(t, int64(170000), sales[2].Price)
	assert.Equal(t, "منذ أسبوع", sales[2].SoldDate)
}
