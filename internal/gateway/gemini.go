package gateway

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/rs/zerolog/log"
	"google.golang.org/genai"
)

// DefaultModel is used when no model is configured.
const DefaultModel = "gemini-2.5-flash"

// Gemini pricing (per million tokens)
const (
	geminiInputPricePerMillion  = 0.30
	geminiOutputPricePerMillion = 2.50
)

const appraiserPrompt = `You are an expert appraiser of used items for the Iraqi second-hand market. From a photo you determine what the item is, its condition and what it would sell for.

Determine:
1. itemType: the category (Electronics, Furniture, Clothing, Appliances, Vehicles, ...)
2. itemName: the specific item, e.g. "iPhone 13 Pro Max 256GB" or "Samsung Smart TV 55-inch"
3. condition: one of Excellent, Good, Fair, Poor, judged from visible wear
4. conditionScore: 0-100
5. lowestPrice, averagePrice, highestPrice and suggestedPrice in Iraqi dinars (IQD), based on typical prices on Iraqi marketplaces
6. recommendation: a short selling strategy in Arabic
7. confidenceScore: 0-100, how much market data supports the estimate

Price for the governorate you are given. Baghdad is usually the most expensive market; smaller governorates are usually cheaper.

If the photo does not show a used item that can be sold (food, people, random scenery and so on) respond with exactly:
{"error": "not_sellable_item", "message": "هذا العنصر غير قابل للبيع في سوق المستعمل"}

Otherwise respond with:
{"itemType": "...", "itemName": "...", "condition": "Excellent|Good|Fair|Poor", "conditionScore": 0, "lowestPrice": 0, "averagePrice": 0, "highestPrice": 0, "suggestedPrice": 0, "recommendation": "...", "confidenceScore": 0}

Respond ONLY with the JSON object, no markdown or other text.`

// GeminiAppraiser appraises photos with Gemini.
type GeminiAppraiser struct {
	client *genai.Client
	model  string
}

var _ Appraiser = (*GeminiAppraiser)(nil)

// NewGeminiAppraiser creates a Gemini client. An empty model selects
// DefaultModel.
func NewGeminiAppraiser(ctx context.Context, apiKey, model string) (*GeminiAppraiser, error) {
	if apiKey == "" {
		return nil, errors.New("GEMINI_API_KEY is not configured")
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}
	if model == "" {
		model = DefaultModel
	}
	return &GeminiAppraiser{client: client, model: model}, nil
}

func userPrompt(in Input) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Analyze this item and provide pricing information for the %s market in Iraq.", in.Governorate)
	if in.ItemCondition != "" {
		fmt.Fprintf(&sb, "\nThe seller describes its condition as: %s.", in.ItemCondition)
	}
	if in.PurchaseYear != nil {
		fmt.Fprintf(&sb, "\nIt was bought in %d.", *in.PurchaseYear)
	}
	sb.WriteString("\nRespond ONLY with valid JSON.")
	return sb.String()
}

func (g *GeminiAppraiser) Appraise(ctx context.Context, in Input) (*Reply, error) {
	parts := []*genai.Part{
		genai.NewPartFromText(userPrompt(in)),
		genai.NewPartFromBytes(in.Image, in.MIMEType),
	}
	contents := []*genai.Content{
		genai.NewContentFromParts(parts, genai.RoleUser),
	}
	config := &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(appraiserPrompt, genai.RoleUser),
		ResponseMIMEType:  "application/json",
	}

	result, err := g.client.Models.GenerateContent(ctx, g.model, contents, config)
	if err != nil {
		return nil, upstreamError(err)
	}

	if len(result.Candidates) == 0 || result.Candidates[0].Content == nil || len(result.Candidates[0].Content.Parts) == 0 {
		return nil, errors.New("no content in model response")
	}

	var inputTokens, outputTokens int64
	if result.UsageMetadata != nil {
		inputTokens = int64(result.UsageMetadata.PromptTokenCount)
		outputTokens = int64(result.UsageMetadata.CandidatesTokenCount)
	}
	log.Info().
		Str("model", g.model).
		Str("governorate", in.Governorate).
		Int64("inputTokens", inputTokens).
		Int64("outputTokens", outputTokens).
		Float64("costUSD", calculateGeminiCost(inputTokens, outputTokens, geminiInputPricePerMillion, geminiOutputPricePerMillion)).
		Msg("appraisal llm call")

	text := result.Text()
	log.Debug().Str("text", text).Msg("appraisal model response")
	return parseReply(text)
}

// upstreamError keeps rate limit and billing failures distinguishable.
func upstreamError(err error) error {
	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.Code {
		case http.StatusTooManyRequests:
			return &UpstreamError{Status: apiErr.Code, Message: "Rate limit exceeded. Please try again later.", Err: err}
		case http.StatusPaymentRequired:
			return &UpstreamError{Status: apiErr.Code, Message: "Payment required. Please add credits to continue.", Err: err}
		}
		return fmt.Errorf("model gateway error: %d: %w", apiErr.Code, err)
	}
	return fmt.Errorf("failed to generate content: %w", err)
}

func calculateGeminiCost(inputTokens, outputTokens int64, inputPrice, outputPrice float64) float64 {
	inputCost := float64(inputTokens) / 1_000_000 * inputPrice
	outputCost := float64(outputTokens) / 1_000_000 * outputPrice
	return inputCost + outputCost
}
