package analysis

import "github.com/raine/balla/internal/region"

// Request is one submission to the analysis service. It is built from the
// current selection, sent once and discarded.
type Request struct {
	ImageDataURI string
	Region       region.ID
	Condition    Condition // empty in the basic flow
	PurchaseYear int       // 0 when not given
}

// ItemCondition is the service's own assessment of the photographed item.
type ItemCondition string

const (
	ConditionExcellent ItemCondition = "Excellent"
	ConditionGood      ItemCondition = "Good"
	ConditionFair      ItemCondition = "Fair"
	ConditionPoor      ItemCondition = "Poor"
)

func (c ItemCondition) valid() bool {
	switch c {
	case ConditionExcellent, ConditionGood, ConditionFair, ConditionPoor:
		return true
	}
	return false
}

// ListingLink is a comparable listing shown next to the estimate.
type ListingLink struct {
	Title string `json:"title"`
	Price int64  `json:"price"`
	URL   string `json:"url"`
}

// PriceBucket is one bar of the price histogram. Percentages are display
// values and are not expected to sum to 100.
type PriceBucket struct {
	Range      string  `json:"range"`
	Count      int     `json:"count"`
	Percentage float64 `json:"percentage"`
}

// SimilarSale is a recently sold comparable item.
type SimilarSale struct {
	Title     string `json:"title"`
	Price     int64  `json:"price"`
	SoldDate  string `json:"soldDate"`
	Condition string `json:"condition"`
}

// Result is a completed analysis as returned by the service. It is not
// mutated after it has been received.
type Result struct {
	ItemType       string        `json:"itemType"`
	ItemName       string        `json:"itemName"`
	Condition      ItemCondition `json:"condition"`
	ConditionScore int           `json:"conditionScore"`
	LowestPrice    int64         `json:"lowestPrice"`
	AveragePrice   int64         `json:"averagePrice"`
	HighestPrice   int64         `json:"highestPrice"`
	SuggestedPrice int64         `json:"suggestedPrice"`
	Recommendation string        `json:"recommendation"`
	ListingLinks   []ListingLink `json:"listingLinks"`

	ConfidenceScore   *int          `json:"confidenceScore,omitempty"`
	PriceDistribution []PriceBucket `json:"priceDistribution,omitempty"`
	SimilarSales      []SimilarSale `json:"similarSales,omitempty"`

	// Warnings lists soft inconsistencies found when the result was
	// received, e.g. a suggested price outside the price range.
	Warnings []string `json:"-"`
}
