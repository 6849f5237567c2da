// Package gateway serves the analyze-item endpoint that the analysis client
// calls: it forwards the photo to a multimodal model and shapes the reply
// into an analysis result.
package gateway

import (
	"context"
	"fmt"
	"math"

	"github.com/raine/balla/internal/analysis"
)

// Input is one appraisal job.
type Input struct {
	Image    []byte
	MIMEType string
	// Governorate is the English display name, e.g. "Baghdad".
	Governorate string
	// ItemCondition is the seller's declared condition label. Optional.
	ItemCondition string
	PurchaseYear  *int
}

// Appraiser identifies and prices an item from a photo.
type Appraiser interface {
	Appraise(ctx context.Context, in Input) (*Reply, error)
}

// UpstreamError is a model provider failure that is passed on to the
// caller with its own status, e.g. rate limiting.
type UpstreamError struct {
	Status  int
	Message string
	Err     error
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("upstream status %d: %s", e.Status, e.Message)
}

func (e *UpstreamError) Unwrap() error { return e.Err }

// Reply is the model's answer. Prices arrive as JSON numbers that may have
// fractions; they are rounded when converted to a Result.
type Reply struct {
	Error   string `json:"error,omitempty"`
	Message string `json:"message,omitempty"`

	ItemType        string   `json:"itemType"`
	ItemName        string   `json:"itemName"`
	Condition       string   `json:"condition"`
	ConditionScore  float64  `json:"conditionScore"`
	AveragePrice    float64  `json:"averagePrice"`
	LowestPrice     float64  `json:"lowestPrice"`
	HighestPrice    float64  `json:"highestPrice"`
	SuggestedPrice  float64  `json:"suggestedPrice"`
	Recommendation  string   `json:"recommendation"`
	ConfidenceScore *float64 `json:"confidenceScore,omitempty"`
}

// NotSellable reports whether the model rejected the photo.
func (r *Reply) NotSellable() bool {
	return r.Error == string(analysis.CodeNotSellable)
}

// Result converts a successful reply. Listing links are filled in by the
// caller.
func (r *Reply) Result() *analysis.Result {
	res := &analysis.Result{
		ItemType:       r.ItemType,
		ItemName:       r.ItemName,
		Condition:      analysis.ItemCondition(r.Condition),
		ConditionScore: int(math.Round(r.ConditionScore)),
		LowestPrice:    roundPrice(r.LowestPrice),
		AveragePrice:   roundPrice(r.AveragePrice),
		HighestPrice:   roundPrice(r.HighestPrice),
		SuggestedPrice: roundPrice(r.SuggestedPrice),
		Recommendation: r.Recommendation,
		ListingLinks:   []analysis.ListingLink{},
	}
	if r.ConfidenceScore != nil {
		score := int(math.Round(*r.ConfidenceScore))
		res.ConfidenceScore = &score
	}
	return res
}

func roundPrice(p float64) int64 {
	return int64(math.Round(p))
}
