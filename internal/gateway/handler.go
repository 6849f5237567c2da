package gateway

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/raine/balla/internal/comparables"
	"github.com/raine/balla/internal/imageprep"
	"github.com/rs/zerolog/log"
)

// AnalyzePath is where the analysis client posts its requests.
const AnalyzePath = "/functions/v1/analyze-item"

var corsHeaders = map[string]string{
	"Access-Control-Allow-Origin":  "*",
	"Access-Control-Allow-Headers": "authorization, x-client-info, apikey, content-type",
	"Access-Control-Allow-Methods": "POST, OPTIONS",
}

type analyzeRequest struct {
	ImageBase64   string `json:"imageBase64"`
	Governorate   string `json:"governorate"`
	ItemCondition string `json:"itemCondition"`
	PurchaseYear  *int   `json:"purchaseYear"`
}

type errorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

type healthResponse struct {
	Status string `json:"status"`
	Model  string `json:"model,omitempty"`
}

// Handler serves the analyze-item endpoint.
type Handler struct {
	appraiser   Appraiser
	comparables comparables.Provider
	model       string
}

// NewHandler creates a Handler. A nil provider selects the synthetic one.
func NewHandler(appraiser Appraiser, provider comparables.Provider, model string) *Handler {
	if provider == nil {
		provider = comparables.SyntheticProvider{}
	}
	return &Handler{appraiser: appraiser, comparables: provider, model: model}
}

// NewRouter wires the handler into a gin engine with CORS and recovery.
func NewRouter(h *Handler) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(requestLogger())
	router.Use(cors())

	router.GET("/health", h.Health)
	router.OPTIONS(AnalyzePath, func(c *gin.Context) { c.Status(http.StatusOK) })
	router.POST(AnalyzePath, h.AnalyzeItem)
	return router
}

func cors() gin.HandlerFunc {
	return func(c *gin.Context) {
		for k, v := range corsHeaders {
			c.Header(k, v)
		}
		c.Next()
	}
}

func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		log.Info().
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Int("status", c.Writer.Status()).
			Dur("took", time.Since(start)).
			Msg("http request")
	}
}

func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, healthResponse{Status: "ok", Model: h.model})
}

// AnalyzeItem appraises the posted photo. A photo the model refuses is
// answered with 200 and the not_sellable_item body so the caller can show
// the message; rate limit and billing failures keep their status.
func (h *Handler) AnalyzeItem(c *gin.Context) {
	var req analyzeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse{Error: "Invalid JSON body", Message: err.Error()})
		return
	}
	if req.ImageBase64 == "" {
		c.JSON(http.StatusBadRequest, errorResponse{Error: "Image is required"})
		return
	}

	image, mime, err := imageprep.DecodeDataURI(req.ImageBase64)
	if err != nil {
		c.JSON(http.StatusBadRequest, errorResponse{Error: "Image is not valid base64", Message: err.Error()})
		return
	}

	log.Info().
		Str("governorate", req.Governorate).
		Str("itemCondition", req.ItemCondition).
		Int("imageBytes", len(image)).
		Msg("analyzing item")

	reply, err := h.appraiser.Appraise(c.Request.Context(), Input{
		Image:         image,
		MIMEType:      mime,
		Governorate:   req.Governorate,
		ItemCondition: req.ItemCondition,
		PurchaseYear:  req.PurchaseYear,
	})
	if err != nil {
		var upstream *UpstreamError
		if errors.As(err, &upstream) {
			log.Warn().Int("status", upstream.Status).Err(err).Msg("model provider refused request")
			c.JSON(upstream.Status, errorResponse{Error: upstream.Message})
			return
		}
		log.Error().Err(err).Msg("error analyzing item")
		c.JSON(http.StatusInternalServerError, errorResponse{Error: err.Error()})
		return
	}

	if reply.NotSellable() {
		log.Info().Str("message", reply.Message).Msg("item is not sellable")
		c.JSON(http.StatusOK, errorResponse{Error: reply.Error, Message: reply.Message})
		return
	}
	if reply.Error != "" {
		log.Error().Str("error", reply.Error).Msg("model returned an error")
		c.JSON(http.StatusInternalServerError, errorResponse{Error: reply.Error, Message: reply.Message})
		return
	}

	result := reply.Result()
	links, err := h.comparables.Listings(c.Request.Context(), result.ItemName, result.AveragePrice)
	if err != nil {
		log.Warn().Err(err).Str("item", result.ItemName).Msg("failed to find comparable listings")
	} else {
		result.ListingLinks = links
	}

	log.Info().
		Str("item", result.ItemName).
		Int64("suggestedPrice", result.SuggestedPrice).
		Msg("analysis complete")
	c.JSON(http.StatusOK, result)
}
