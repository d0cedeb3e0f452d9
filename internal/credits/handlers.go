package credits

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/recomarr/recomarr/internal/tmdb"
)

// CreditsService is the aggregation surface exposed over HTTP.
type CreditsService interface {
	Aggregate(ctx context.Context, personName string, limit int) ([]Credit, error)
}

// Handlers provides HTTP handlers for credit searches.
type Handlers struct {
	service CreditsService
	logger  zerolog.Logger
}

// NewHandlers creates new credit handlers.
func NewHandlers(service CreditsService, logger zerolog.Logger) *Handlers {
	return &Handlers{
		service: service,
		logger:  logger.With().Str("component", "credits-api").Logger(),
	}
}

// RegisterRoutes registers the credit routes.
func (h *Handlers) RegisterRoutes(g *echo.Group) {
	g.GET("/credits", h.GetCredits)
}

// CreditResponse is the wire form of one resolved filmography entry.
type CreditResponse struct {
	Type      string  `json:"type"`
	Title     string  `json:"title"`
	Year      int     `json:"year,omitempty"`
	Character string  `json:"character"`
	ImdbID    string  `json:"imdb_id,omitempty"`
	Rating    float64 `json:"rating,omitempty"`
}

// CreditsResponse wraps a credit search result.
type CreditsResponse struct {
	Person  string           `json:"person"`
	Credits []CreditResponse `json:"credits"`
	Count   int              `json:"count"`
}

// GetCredits handles credit searches.
// GET /api/v1/credits?person=...&limit=...
func (h *Handlers) GetCredits(c echo.Context) error {
	person := strings.TrimSpace(c.QueryParam("person"))
	if person == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{
			"error": "person is required",
		})
	}

	limit := 0
	if raw := c.QueryParam("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			return c.JSON(http.StatusBadRequest, map[string]string{
				"error": "limit must be an integer",
			})
		}
		limit = parsed
	}

	credits, err := h.service.Aggregate(c.Request().Context(), person, limit)
	if err != nil {
		switch {
		case errors.Is(err, tmdb.ErrAPIKeyMissing):
			return c.JSON(http.StatusServiceUnavailable, map[string]string{
				"error": "Metadata source is not configured",
			})
		default:
			h.logger.Error().Err(err).Str("person", person).Msg("Credit search failed")
			return c.JSON(http.StatusBadGateway, map[string]string{
				"error": err.Error(),
			})
		}
	}

	responses := make([]CreditResponse, len(credits))
	for i, credit := range credits {
		responses[i] = CreditResponse{
			Type:      credit.Kind.External(),
			Title:     credit.Title,
			Year:      credit.Year,
			Character: credit.Character,
			ImdbID:    credit.ID,
			Rating:    credit.Rating,
		}
	}

	return c.JSON(http.StatusOK, CreditsResponse{
		Person:  person,
		Credits: responses,
		Count:   len(responses),
	})
}
