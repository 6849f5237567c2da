package analysis

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/raine/balla/internal/i18n"
	"github.com/raine/balla/internal/region"
	"github.com/rs/zerolog/log"
)

// DefaultTimeout bounds a single analysis call.
const DefaultTimeout = 90 * time.Second

type ClientOpts struct {
	// URL is the full analyze-item endpoint.
	URL string
	// APIKey is sent both as a bearer token and as the apikey header, the
	// way serverless function gateways expect it.
	APIKey string
	// RequireCondition selects the extended flow: a declared condition is
	// mandatory and itemCondition/purchaseYear are sent.
	RequireCondition bool
	Timeout          time.Duration
	// Now is used for purchase year validation. Defaults to time.Now.
	Now func() time.Time
}

// Client submits analysis requests. Each Submit makes at most one HTTP call
// and never retries.
type Client struct {
	httpClient       *resty.Client
	url              string
	requireCondition bool
	now              func() time.Time
}

func NewClient(opts ClientOpts) *Client {
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}

	httpClient := resty.New().
		SetDebug(false).
		SetTimeout(timeout).
		SetRetryCount(0).
		SetHeaders(map[string]string{
			"Accept":       "application/json",
			"Content-Type": "application/json",
		})
	if opts.APIKey != "" {
		httpClient.SetAuthToken(opts.APIKey).SetHeader("apikey", opts.APIKey)
	}

	return &Client{
		httpClient:       httpClient,
		url:              opts.URL,
		requireCondition: opts.RequireCondition,
		now:              now,
	}
}

// RequiresCondition reports whether the client runs the extended flow.
func (c *Client) RequiresCondition() bool {
	return c.requireCondition
}

type basicBody struct {
	ImageBase64 string `json:"imageBase64"`
	Governorate string `json:"governorate"`
}

type extendedBody struct {
	ImageBase64   string `json:"imageBase64"`
	Governorate   string `json:"governorate"`
	ItemCondition string `json:"itemCondition"`
	PurchaseYear  *int   `json:"purchaseYear"`
}

// Submit sends req and normalizes every outcome. A non-nil error is always
// an *Error; panics are recovered into CodeUnexpected.
func (c *Client) Submit(ctx context.Context, req Request) (result *Result, err error) {
	defer func() {
		if p := recover(); p != nil {
			log.Error().Interface("panic", p).Msg("recovered panic in analysis submit")
			result = nil
			err = &Error{Code: CodeUnexpected, Message: fmt.Sprintf("unexpected failure: %v", p)}
		}
	}()

	if verr := req.Validate(c.requireCondition, c.now()); verr != nil {
		return nil, verr
	}

	reg, lerr := region.Lookup(req.Region)
	if lerr != nil {
		return nil, &Error{Code: CodeValidation, Field: FieldRegion, Message: lerr.Error(), Err: lerr}
	}

	payload, merr := json.Marshal(c.buildBody(req, reg))
	if merr != nil {
		return nil, &Error{Code: CodeUnexpected, Message: "failed to encode request", Err: merr}
	}

	start := time.Now()
	res, herr := c.httpClient.R().
		SetContext(ctx).
		SetBody(payload).
		Post(c.url)
	if herr != nil {
		log.Warn().Err(herr).Str("region", string(req.Region)).Msg("analysis request failed")
		return nil, &Error{Code: CodeTransport, Message: herr.Error(), Err: herr}
	}

	status := res.StatusCode()
	log.Info().
		Str("region", string(req.Region)).
		Int("status", status).
		Dur("took", time.Since(start)).
		Int("bytes", len(res.Body())).
		Msg("analysis response")

	if status < 200 || status > 299 {
		return nil, statusError(status, res.Body())
	}
	return decodeResult(status, res.Body())
}

func (c *Client) buildBody(req Request, reg region.Region) any {
	if !c.requireCondition && req.Condition == "" && req.PurchaseYear == 0 {
		return basicBody{ImageBase64: req.ImageDataURI, Governorate: reg.Name}
	}
	body := extendedBody{
		ImageBase64: req.ImageDataURI,
		Governorate: reg.Name,
	}
	if req.Condition != "" {
		body.ItemCondition = req.Condition.Label(i18n.Arabic)
	}
	if req.PurchaseYear != 0 {
		year := req.PurchaseYear
		body.PurchaseYear = &year
	}
	return body
}

// statusError maps a non-2xx reply. A structured body wins over the generic
// status text.
func statusError(status int, body []byte) *Error {
	ae := &Error{Code: CodeTransport, Status: status}
	if p := parseErrorPayload(body); p != nil {
		ae.Payload = p
		ae.Message = p.Message
		if ae.Message == "" {
			ae.Message = p.Error
		}
		if p.Error == string(CodeNotSellable) {
			ae.Code = CodeNotSellable
			return ae
		}
	}
	switch status {
	case http.StatusTooManyRequests:
		ae.Code = CodeRateLimited
	case http.StatusPaymentRequired:
		ae.Code = CodePaymentRequired
	}
	if ae.Message == "" {
		ae.Message = fmt.Sprintf("analysis request failed: %s", http.StatusText(status))
	}
	return ae
}

// decodeResult handles a 2xx body: either an embedded application error or
// a result that must pass CheckResult.
func decodeResult(status int, body []byte) (*Result, error) {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return nil, &Error{Code: CodeMalformedResponse, Status: status, Message: "response body is not a JSON object"}
	}

	if p := parseErrorPayload(trimmed); p != nil && p.Error != "" {
		return nil, &Error{Code: Code(p.Error), Status: status, Message: p.Message, Payload: p}
	}

	var result Result
	if err := json.Unmarshal(trimmed, &result); err != nil {
		return nil, &Error{Code: CodeMalformedResponse, Status: status, Message: "failed to decode analysis result", Err: err}
	}
	if err := CheckResult(&result); err != nil {
		ae, _ := AsError(err)
		ae.Status = status
		log.Warn().Str("problems", ae.Message).Msg("rejected malformed analysis result")
		return nil, ae
	}
	if len(result.Warnings) > 0 {
		log.Warn().Strs("warnings", result.Warnings).Str("item", result.ItemName).Msg("analysis result has inconsistencies")
	}
	return &result, nil
}

// parseErrorPayload makes a best-effort read of {error, message} bodies.
// The error field may be a string or an object carrying its own message.
func parseErrorPayload(body []byte) *ErrorPayload {
	var raw struct {
		Error   json.RawMessage `json:"error"`
		Message string          `json:"message"`
	}
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil
	}

	p := &ErrorPayload{Message: raw.Message}
	if len(raw.Error) > 0 {
		var s string
		if err := json.Unmarshal(raw.Error, &s); err == nil {
			p.Error = s
		} else {
			var nested struct {
				Code    string `json:"code"`
				Message string `json:"message"`
			}
			if err := json.Unmarshal(raw.Error, &nested); err == nil {
				p.Error = nested.Code
				if p.Message == "" {
					p.Message = nested.Message
				}
			}
		}
	}
	if p.Error == "" && p.Message == "" {
		return nil
	}
	return p
}
