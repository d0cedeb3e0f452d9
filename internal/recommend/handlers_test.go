package recommend

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/recomarr/recomarr/internal/generator"
	"github.com/recomarr/recomarr/internal/library"
)

type stubService struct {
	candidates []Candidate
	err        error
	cleared    bool
	summary    library.Summary
	gotReq     Request
}

func (s *stubService) Recommend(_ context.Context, req Request) ([]Candidate, error) {
	s.gotReq = req
	if s.err != nil {
		return nil, s.err
	}
	return s.candidates, nil
}

func (s *stubService) ClearCache() { s.cleared = true }

func (s *stubService) LibrarySummary(context.Context) library.Summary { return s.summary }

func postRecommendations(h *Handlers, body string) *httptest.ResponseRecorder {
	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/recommendations", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	if err := h.CreateRecommendations(c); err != nil {
		panic(err)
	}
	return rec
}

func TestHandlers_CreateRecommendations(t *testing.T) {
	stub := &stubService{candidates: []Candidate{
		{
			Title:        "Dark",
			Year:         2017,
			Kind:         "TV Show",
			ResolvedKind: KindSeries,
			Reason:       "layered time travel mystery",
			ID:           "tt5753856",
			Rating:       8.7,
		},
	}}
	h := NewHandlers(stub, zerolog.Nop())

	rec := postRecommendations(h, `{"prompt": "something cerebral", "media_type": "TV"}`)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if stub.gotReq.Prompt != "something cerebral" || stub.gotReq.MediaType != "tv" {
		t.Errorf("service request = %+v", stub.gotReq)
	}

	var resp RecommendationsResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.Count != 1 || len(resp.Recommendations) != 1 {
		t.Fatalf("response = %+v", resp)
	}
	got := resp.Recommendations[0]
	if got.Type != "tv" || got.Title != "Dark" || got.Year != 2017 ||
		got.ImdbID != "tt5753856" || got.Rating != 8.7 {
		t.Errorf("recommendation = %+v", got)
	}
}

func TestHandlers_CreateRecommendationsMissingPrompt(t *testing.T) {
	h := NewHandlers(&stubService{}, zerolog.Nop())

	rec := postRecommendations(h, `{"prompt": "   "}`)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestHandlers_CreateRecommendationsInvalidBody(t *testing.T) {
	h := NewHandlers(&stubService{}, zerolog.Nop())

	rec := postRecommendations(h, `{not json`)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestHandlers_CreateRecommendationsUnconfigured(t *testing.T) {
	stub := &stubService{err: fmt.Errorf("candidate generation failed: %w", generator.ErrAPIKeyMissing)}
	h := NewHandlers(stub, zerolog.Nop())

	rec := postRecommendations(h, `{"prompt": "anything"}`)
	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("status = %d, want 503", rec.Code)
	}
}

func TestHandlers_CreateRecommendationsUpstreamFailure(t *testing.T) {
	stub := &stubService{err: fmt.Errorf("candidate generation failed: connection reset")}
	h := NewHandlers(stub, zerolog.Nop())

	rec := postRecommendations(h, `{"prompt": "anything"}`)
	if rec.Code != http.StatusBadGateway {
		t.Errorf("status = %d, want 502", rec.Code)
	}
}

func TestHandlers_ClearCache(t *testing.T) {
	stub := &stubService{}
	h := NewHandlers(stub, zerolog.Nop())

	e := echo.New()
	req := httptest.NewRequest(http.MethodDelete, "/api/v1/cache", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if err := h.ClearCache(c); err != nil {
		t.Fatalf("ClearCache() error = %v", err)
	}
	if rec.Code != http.StatusNoContent {
		t.Errorf("status = %d, want 204", rec.Code)
	}
	if !stub.cleared {
		t.Error("service cache was not cleared")
	}
}

func TestHandlers_GetLibrarySummary(t *testing.T) {
	stub := &stubService{summary: library.Summary{
		SampledSeries: []library.Item{{Title: "Dark", Year: 2017}},
		SampledMovies: []library.Item{{Title: "Heat", Year: 1995}},
	}}
	h := NewHandlers(stub, zerolog.Nop())

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/library/summary", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if err := h.GetLibrarySummary(c); err != nil {
		t.Fatalf("GetLibrarySummary() error = %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	var decoded map[string]json.RawMessage
	if err := json.Unmarshal(rec.Body.Bytes(), &decoded); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if _, ok := decoded["sampled_tv_shows"]; !ok {
		t.Error("response missing sampled_tv_shows")
	}
	if _, ok := decoded["sampled_movies"]; !ok {
		t.Error("response missing sampled_movies")
	}
}
