package analysis

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/raine/balla/internal/region"
)

// Validate checks that a request is complete. requireCondition selects the
// extended flow, where a declared condition is mandatory.
func (r Request) Validate(requireCondition bool, now time.Time) *Error {
	if strings.TrimSpace(r.ImageDataURI) == "" {
		return validationError(FieldImage, "image is required")
	}
	if r.Region == "" {
		return validationError(FieldRegion, "region is required")
	}
	if !region.Valid(r.Region) {
		return &Error{
			Code:    CodeValidation,
			Field:   FieldRegion,
			Message: fmt.Sprintf("region %q is not a known governorate", r.Region),
			Err:     region.ErrUnknownRegion,
		}
	}
	if r.Condition == "" {
		if requireCondition {
			return validationError(FieldCondition, "condition is required")
		}
	} else if _, err := ParseCondition(string(r.Condition)); err != nil {
		return validationError(FieldCondition, "%s", err)
	}
	if r.PurchaseYear != 0 {
		if err := ValidatePurchaseYear(r.PurchaseYear, now); err != nil {
			return validationError(FieldPurchaseYear, "%s", err)
		}
	}
	return nil
}

// CheckResult validates a decoded result. Shape and range problems are
// returned as an error; price ordering problems are recorded as warnings on
// the result, which stays displayable.
func CheckResult(r *Result) error {
	var problems []string
	if strings.TrimSpace(r.ItemName) == "" {
		problems = append(problems, "itemName is empty")
	}
	if !r.Condition.valid() {
		problems = append(problems, fmt.Sprintf("condition %q is not one of Excellent, Good, Fair, Poor", r.Condition))
	}
	if r.ConditionScore < 0 || r.ConditionScore > 100 {
		problems = append(problems, fmt.Sprintf("conditionScore %d is outside 0-100", r.ConditionScore))
	}
	if r.ConfidenceScore != nil && (*r.ConfidenceScore < 0 || *r.ConfidenceScore > 100) {
		problems = append(problems, fmt.Sprintf("confidenceScore %d is outside 0-100", *r.ConfidenceScore))
	}
	prices := []struct {
		name  string
		value int64
	}{
		{"lowestPrice", r.LowestPrice},
		{"averagePrice", r.AveragePrice},
		{"highestPrice", r.HighestPrice},
		{"suggestedPrice", r.SuggestedPrice},
	}
	for _, p := range prices {
		if p.value < 0 {
			problems = append(problems, fmt.Sprintf("%s %d is negative", p.name, p.value))
		}
	}
	for i, l := range r.ListingLinks {
		if l.Price < 0 {
			problems = append(problems, fmt.Sprintf("listingLinks[%d].price is negative", i))
		}
	}
	for i, b := range r.PriceDistribution {
		if b.Count < 0 {
			problems = append(problems, fmt.Sprintf("priceDistribution[%d].count is negative", i))
		}
		if b.Percentage < 0 || math.IsNaN(b.Percentage) || math.IsInf(b.Percentage, 0) {
			problems = append(problems, fmt.Sprintf("priceDistribution[%d].percentage %v is invalid", i, b.Percentage))
		}
	}
	for i, sale := range r.SimilarSales {
		if sale.Price < 0 {
			problems = append(problems, fmt.Sprintf("similarSales[%d].price is negative", i))
		}
	}
	if len(problems) > 0 {
		return &Error{
			Code:    CodeMalformedResponse,
			Message: strings.Join(problems, "; "),
		}
	}

	r.Warnings = nil
	if r.LowestPrice > r.AveragePrice || r.AveragePrice > r.HighestPrice {
		r.Warnings = append(r.Warnings, fmt.Sprintf(
			"price range is out of order: lowest %d, average %d, highest %d",
			r.LowestPrice, r.AveragePrice, r.HighestPrice))
	}
	if r.SuggestedPrice < r.LowestPrice || r.SuggestedPrice > r.HighestPrice {
		r.Warnings = append(r.Warnings, fmt.Sprintf(
			"suggested price %d is outside the range %d-%d",
			r.SuggestedPrice, r.LowestPrice, r.HighestPrice))
	}
	return nil
}
