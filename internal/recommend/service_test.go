package recommend

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/rs/zerolog"

	"github.com/recomarr/recomarr/internal/library"
)

type fakeSource struct {
	candidates []Candidate
	err        error
	gotSummary json.RawMessage
	gotPrompt  string
	gotType    string
}

func (f *fakeSource) Generate(_ context.Context, summary json.RawMessage, prompt, mediaType string) ([]Candidate, error) {
	f.gotSummary = summary
	f.gotPrompt = prompt
	f.gotType = mediaType
	if f.err != nil {
		return nil, f.err
	}
	return f.candidates, nil
}

type fakeLibrary struct {
	fakeSnapshots
	summary library.Summary
	cleared int
}

func (f *fakeLibrary) Summary(context.Context) library.Summary { return f.summary }

func (f *fakeLibrary) Clear() { f.cleared++ }

type fakeBroadcaster struct {
	mu       sync.Mutex
	types    []string
	payloads []interface{}
}

func (f *fakeBroadcaster) Broadcast(msgType string, payload interface{}) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.types = append(f.types, msgType)
	f.payloads = append(f.payloads, payload)
	return nil
}

type fakeHistory struct {
	calls     int
	prompt    string
	mediaType string
	results   int
}

func (f *fakeHistory) RecordRecommendation(_ context.Context, prompt, mediaType string, results int) {
	f.calls++
	f.prompt = prompt
	f.mediaType = mediaType
	f.results = results
}

func newTestService(source CandidateSource, lib *fakeLibrary, movies CatalogLookup) *Service {
	enricher := NewEnricher(EnricherConfig{}, &fakeLookup{}, movies, zerolog.Nop())
	filter := NewFilter(lib, NewDenylist(nil), zerolog.Nop())
	return NewService(source, enricher, filter, lib, zerolog.Nop())
}

func TestServiceRecommend(t *testing.T) {
	lib := &fakeLibrary{
		fakeSnapshots: fakeSnapshots{movies: snapshotOf("The Matrix")},
		summary: library.Summary{
			SampledMovies: []library.Item{{Title: "The Matrix", Year: 1999}},
		},
	}
	source := &fakeSource{candidates: []Candidate{
		{Title: "The Matrix", Kind: "movie", Reason: "classic"},
		{Title: "Blade Runner", Year: 1982, Kind: "movie", Reason: "neo-noir"},
	}}
	movies := &fakeLookup{byTerm: map[string][]CatalogRecord{
		"Blade Runner (1982)": {{ID: "tt0083658", Rating: 8.1}},
		"The Matrix":          {{ID: "tt0133093", Rating: 8.7}},
	}}

	svc := newTestService(source, lib, movies)
	broadcaster := &fakeBroadcaster{}
	svc.SetBroadcaster(broadcaster)
	history := &fakeHistory{}
	svc.SetHistory(history)

	out, err := svc.Recommend(context.Background(), Request{Prompt: "dystopian sci-fi", MediaType: "movie"})
	if err != nil {
		t.Fatalf("Recommend() error = %v", err)
	}

	if len(out) != 1 {
		t.Fatalf("got %d candidates, want 1", len(out))
	}
	if out[0].Title != "Blade Runner" || out[0].ID != "tt0083658" {
		t.Errorf("survivor = %+v", out[0])
	}

	if source.gotPrompt != "dystopian sci-fi" || source.gotType != "movie" {
		t.Errorf("source got prompt=%q type=%q", source.gotPrompt, source.gotType)
	}
	if !strings.Contains(string(source.gotSummary), "The Matrix") {
		t.Errorf("summary JSON missing library titles: %s", source.gotSummary)
	}

	if history.calls != 1 || history.results != 1 || history.prompt != "dystopian sci-fi" {
		t.Errorf("history = %+v", history)
	}

	if len(broadcaster.types) != 2 ||
		broadcaster.types[0] != EventRecommendStarted ||
		broadcaster.types[1] != EventRecommendCompleted {
		t.Fatalf("broadcast types = %v", broadcaster.types)
	}
	completed, ok := broadcaster.payloads[1].(RecommendCompletedPayload)
	if !ok {
		t.Fatalf("completed payload type = %T", broadcaster.payloads[1])
	}
	if completed.Generated != 2 || completed.Returned != 1 {
		t.Errorf("completed payload = %+v", completed)
	}
}

func TestServiceRecommendGeneratorFailure(t *testing.T) {
	lib := &fakeLibrary{}
	source := &fakeSource{err: errors.New("upstream unavailable")}

	svc := newTestService(source, lib, &fakeLookup{})
	history := &fakeHistory{}
	svc.SetHistory(history)

	if _, err := svc.Recommend(context.Background(), Request{Prompt: "anything"}); err == nil {
		t.Fatal("expected error from failed generation")
	}
	if history.calls != 0 {
		t.Errorf("history recorded %d times, want 0", history.calls)
	}
}

func TestServiceRecommendDefaultsMediaType(t *testing.T) {
	lib := &fakeLibrary{}
	source := &fakeSource{}

	svc := newTestService(source, lib, &fakeLookup{})
	if _, err := svc.Recommend(context.Background(), Request{Prompt: "surprise me"}); err != nil {
		t.Fatalf("Recommend() error = %v", err)
	}
	if source.gotType != "both" {
		t.Errorf("media type = %q, want both", source.gotType)
	}
}

func TestServiceRecommendWithoutOptionalDeps(t *testing.T) {
	lib := &fakeLibrary{}
	source := &fakeSource{candidates: []Candidate{{Title: "Heat", Kind: "movie"}}}

	svc := newTestService(source, lib, &fakeLookup{})
	out, err := svc.Recommend(context.Background(), Request{Prompt: "crime"})
	if err != nil {
		t.Fatalf("Recommend() error = %v", err)
	}
	if len(out) != 1 {
		t.Fatalf("got %d candidates, want 1", len(out))
	}
}

func TestServiceClearCache(t *testing.T) {
	lib := &fakeLibrary{}
	svc := newTestService(&fakeSource{}, lib, &fakeLookup{})

	svc.ClearCache()
	if lib.cleared != 1 {
		t.Errorf("cleared = %d, want 1", lib.cleared)
	}
}

func TestServiceLibrarySummary(t *testing.T) {
	lib := &fakeLibrary{summary: library.Summary{
		SampledSeries: []library.Item{{Title: "Dark"}},
	}}
	svc := newTestService(&fakeSource{}, lib, &fakeLookup{})

	summary := svc.LibrarySummary(context.Background())
	if len(summary.SampledSeries) != 1 || summary.SampledSeries[0].Title != "Dark" {
		t.Errorf("summary = %+v", summary)
	}
}
