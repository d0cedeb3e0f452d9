package collection

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/recomarr/recomarr/internal/arr"
	"github.com/recomarr/recomarr/internal/recommend"
)

// CollectionService is the addition surface exposed over HTTP.
type CollectionService interface {
	Add(ctx context.Context, req Request) (*Result, error)
}

// Handlers provides HTTP handlers for collection operations.
type Handlers struct {
	service CollectionService
	logger  zerolog.Logger
}

// NewHandlers creates new collection handlers.
func NewHandlers(service CollectionService, logger zerolog.Logger) *Handlers {
	return &Handlers{
		service: service,
		logger:  logger.With().Str("component", "collection-api").Logger(),
	}
}

// RegisterRoutes registers the collection routes.
func (h *Handlers) RegisterRoutes(g *echo.Group) {
	g.POST("/collection", h.AddTitle)
}

// AddRequest represents an addition request body.
type AddRequest struct {
	Title string `json:"title"`
	Year  int    `json:"year"`
	Type  string `json:"type"`
	Mode  string `json:"mode"`
}

// AddTitle handles addition requests.
// POST /api/v1/collection
func (h *Handlers) AddTitle(c echo.Context) error {
	var req AddRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{
			"error": "Invalid request body",
		})
	}
	if strings.TrimSpace(req.Title) == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{
			"error": "title is required",
		})
	}

	result, err := h.service.Add(c.Request().Context(), Request{
		Title: req.Title,
		Year:  req.Year,
		Kind:  recommend.ClassifyKind(req.Type),
		Mode:  strings.ToLower(strings.TrimSpace(req.Mode)),
	})
	if err != nil {
		switch {
		case errors.Is(err, ErrNoMatch):
			return c.JSON(http.StatusNotFound, map[string]string{
				"error": err.Error(),
			})
		case errors.Is(err, arr.ErrAPIKeyMissing):
			return c.JSON(http.StatusServiceUnavailable, map[string]string{
				"error": "Catalog service is not configured",
			})
		default:
			h.logger.Error().Err(err).Str("title", req.Title).Msg("Addition failed")
			return c.JSON(http.StatusBadGateway, map[string]string{
				"error": err.Error(),
			})
		}
	}

	status := http.StatusCreated
	if result.AlreadyExists {
		status = http.StatusOK
	}
	return c.JSON(status, result)
}
