package recommend

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/recomarr/recomarr/internal/generator"
	"github.com/recomarr/recomarr/internal/library"
)

// RecommendService is the pipeline surface exposed over HTTP.
type RecommendService interface {
	Recommend(ctx context.Context, req Request) ([]Candidate, error)
	ClearCache()
	LibrarySummary(ctx context.Context) library.Summary
}

// Handlers provides HTTP handlers for recommendation operations.
type Handlers struct {
	service RecommendService
	logger  zerolog.Logger
}

// NewHandlers creates new recommendation handlers.
func NewHandlers(service RecommendService, logger zerolog.Logger) *Handlers {
	return &Handlers{
		service: service,
		logger:  logger.With().Str("component", "recommend-api").Logger(),
	}
}

// RegisterRoutes registers the recommendation routes.
func (h *Handlers) RegisterRoutes(g *echo.Group) {
	g.POST("/recommendations", h.CreateRecommendations)
	g.DELETE("/cache", h.ClearCache)
	g.GET("/library/summary", h.GetLibrarySummary)
}

// RecommendRequest represents a recommendation request body.
type RecommendRequest struct {
	Prompt    string `json:"prompt"`
	MediaType string `json:"media_type"`
}

// CandidateResponse is the wire form of a surviving candidate.
type CandidateResponse struct {
	Type   string  `json:"type"`
	Title  string  `json:"title"`
	Year   int     `json:"year,omitempty"`
	Reason string  `json:"reason,omitempty"`
	ImdbID string  `json:"imdb_id,omitempty"`
	Rating float64 `json:"rating,omitempty"`
}

// RecommendationsResponse wraps the pipeline output.
type RecommendationsResponse struct {
	Recommendations []CandidateResponse `json:"recommendations"`
	Count           int                 `json:"count"`
}

// CreateRecommendations handles recommendation requests.
// POST /api/v1/recommendations
func (h *Handlers) CreateRecommendations(c echo.Context) error {
	var req RecommendRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{
			"error": "Invalid request body",
		})
	}
	if strings.TrimSpace(req.Prompt) == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{
			"error": "prompt is required",
		})
	}

	candidates, err := h.service.Recommend(c.Request().Context(), Request{
		Prompt:    req.Prompt,
		MediaType: strings.ToLower(strings.TrimSpace(req.MediaType)),
	})
	if err != nil {
		if errors.Is(err, generator.ErrAPIKeyMissing) {
			return c.JSON(http.StatusServiceUnavailable, map[string]string{
				"error": "Recommendation generator is not configured",
			})
		}
		h.logger.Error().Err(err).Msg("Recommendation request failed")
		return c.JSON(http.StatusBadGateway, map[string]string{
			"error": err.Error(),
		})
	}

	responses := make([]CandidateResponse, len(candidates))
	for i, cand := range candidates {
		responses[i] = CandidateResponse{
			Type:   cand.ResolvedKind.External(),
			Title:  cand.Title,
			Year:   cand.Year,
			Reason: cand.Reason,
			ImdbID: cand.ID,
			Rating: cand.Rating,
		}
	}

	return c.JSON(http.StatusOK, RecommendationsResponse{
		Recommendations: responses,
		Count:           len(responses),
	})
}

// ClearCache drops the library snapshots.
// DELETE /api/v1/cache
func (h *Handlers) ClearCache(c echo.Context) error {
	h.service.ClearCache()
	return c.NoContent(http.StatusNoContent)
}

// GetLibrarySummary returns the sampled library summary sent to the
// generator.
// GET /api/v1/library/summary
func (h *Handlers) GetLibrarySummary(c echo.Context) error {
	return c.JSON(http.StatusOK, h.service.LibrarySummary(c.Request().Context()))
}
