package collection

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/rs/zerolog"

	"github.com/recomarr/recomarr/internal/arr"
	"github.com/recomarr/recomarr/internal/config"
	"github.com/recomarr/recomarr/internal/recommend"
)

type mockCatalog struct {
	server      *httptest.Server
	mu          sync.Mutex
	addedBody   map[string]any
	lookupJSON  string
	addStatus   int
	addBody     string
	defaultsErr bool
}

func newMockCatalog(t *testing.T, lookupPath, addPath, lookupJSON string) *mockCatalog {
	t.Helper()
	m := &mockCatalog{lookupJSON: lookupJSON, addStatus: http.StatusCreated, addBody: "{}"}
	m.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.URL.Path == lookupPath:
			io.WriteString(w, m.lookupJSON)
		case r.URL.Path == "/api/v3/rootfolder":
			if m.defaultsErr {
				w.WriteHeader(http.StatusInternalServerError)
				return
			}
			io.WriteString(w, `[{"id": 1, "path": "/data/media"}]`)
		case r.URL.Path == "/api/v3/qualityprofile":
			if m.defaultsErr {
				w.WriteHeader(http.StatusInternalServerError)
				return
			}
			io.WriteString(w, `[{"id": 6, "name": "HD-1080p"}, {"id": 4, "name": "SD"}]`)
		case r.URL.Path == "/api/v3/languageprofile":
			if m.defaultsErr {
				w.WriteHeader(http.StatusInternalServerError)
				return
			}
			io.WriteString(w, `[{"id": 2, "name": "English"}]`)
		case r.URL.Path == addPath && r.Method == http.MethodPost:
			body, _ := io.ReadAll(r.Body)
			var decoded map[string]any
			json.Unmarshal(body, &decoded)
			m.mu.Lock()
			m.addedBody = decoded
			m.mu.Unlock()
			w.WriteHeader(m.addStatus)
			io.WriteString(w, m.addBody)
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	t.Cleanup(m.server.Close)
	return m
}

func (m *mockCatalog) added() map[string]any {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.addedBody
}

func newTestService(t *testing.T, sonarr, radarr *mockCatalog, sonarrCfg, radarrCfg config.ArrConfig) *Service {
	t.Helper()
	sonarrCfg.URL = sonarr.server.URL
	sonarrCfg.APIKey = "test-key"
	radarrCfg.URL = radarr.server.URL
	radarrCfg.APIKey = "test-key"
	sc := arr.NewClient(arr.ServiceSonarr, sonarrCfg, zerolog.Nop())
	rc := arr.NewClient(arr.ServiceRadarr, radarrCfg, zerolog.Nop())
	return NewService(sc, rc, sonarrCfg, radarrCfg, zerolog.Nop())
}

const seriesLookupJSON = `[{
	"title": "Severance",
	"year": 2022,
	"tvdbId": 371980,
	"imdbId": "tt11280740",
	"titleSlug": "severance",
	"seasons": [{"seasonNumber": 1, "monitored": true}]
}]`

const movieLookupJSON = `[{
	"title": "Heat",
	"year": 1995,
	"tmdbId": 949,
	"imdbId": "tt0113277",
	"titleSlug": "heat-949"
}]`

func TestAddSeries(t *testing.T) {
	sonarr := newMockCatalog(t, "/api/v3/series/lookup", "/api/v3/series", seriesLookupJSON)
	radarr := newMockCatalog(t, "/api/v3/movie/lookup", "/api/v3/movie", "[]")
	svc := newTestService(t, sonarr, radarr, config.ArrConfig{}, config.ArrConfig{})

	result, err := svc.Add(context.Background(), Request{
		Title: "Severance",
		Year:  2022,
		Kind:  recommend.KindSeries,
	})
	if err != nil {
		t.Fatalf("Add() error = %v", err)
	}

	if !result.Added || result.AlreadyExists {
		t.Errorf("result = %+v", result)
	}
	if result.Service != "Sonarr" || result.Title != "Severance" {
		t.Errorf("result = %+v", result)
	}

	payload := sonarr.added()
	if payload == nil {
		t.Fatal("nothing was posted to Sonarr")
	}
	if payload["rootFolderPath"] != "/data/media" {
		t.Errorf("rootFolderPath = %v", payload["rootFolderPath"])
	}
	if payload["qualityProfileId"] != float64(6) {
		t.Errorf("qualityProfileId = %v", payload["qualityProfileId"])
	}
	if payload["languageProfileId"] != float64(2) {
		t.Errorf("languageProfileId = %v", payload["languageProfileId"])
	}
	if payload["monitored"] != true {
		t.Errorf("monitored = %v", payload["monitored"])
	}
	opts, ok := payload["addOptions"].(map[string]any)
	if !ok {
		t.Fatalf("addOptions = %v", payload["addOptions"])
	}
	if opts["searchForMissingEpisodes"] != true || opts["searchForCutoffUnmetEpisodes"] != true {
		t.Errorf("addOptions = %v", opts)
	}
	// Lookup fields the client never typed must round-trip into the add.
	if payload["titleSlug"] != "severance" {
		t.Errorf("titleSlug = %v", payload["titleSlug"])
	}
	if _, ok := payload["seasons"]; !ok {
		t.Error("seasons missing from add payload")
	}
}

func TestAddMovieLibraryOnly(t *testing.T) {
	sonarr := newMockCatalog(t, "/api/v3/series/lookup", "/api/v3/series", "[]")
	radarr := newMockCatalog(t, "/api/v3/movie/lookup", "/api/v3/movie", movieLookupJSON)
	svc := newTestService(t, sonarr, radarr, config.ArrConfig{}, config.ArrConfig{})

	result, err := svc.Add(context.Background(), Request{
		Title: "Heat",
		Year:  1995,
		Kind:  recommend.KindMovie,
		Mode:  "library",
	})
	if err != nil {
		t.Fatalf("Add() error = %v", err)
	}
	if result.Service != "Radarr" || !result.Added {
		t.Errorf("result = %+v", result)
	}

	payload := radarr.added()
	opts, ok := payload["addOptions"].(map[string]any)
	if !ok {
		t.Fatalf("addOptions = %v", payload["addOptions"])
	}
	if opts["searchForMovie"] != false {
		t.Errorf("searchForMovie = %v, want false", opts["searchForMovie"])
	}
	if _, ok := payload["languageProfileId"]; ok {
		t.Error("movie payload must not carry languageProfileId")
	}
}

func TestAddMovieAlreadyExists(t *testing.T) {
	sonarr := newMockCatalog(t, "/api/v3/series/lookup", "/api/v3/series", "[]")
	radarr := newMockCatalog(t, "/api/v3/movie/lookup", "/api/v3/movie", movieLookupJSON)
	radarr.addStatus = http.StatusBadRequest
	radarr.addBody = `[{"errorMessage": "This movie already exists in your library"}]`
	svc := newTestService(t, sonarr, radarr, config.ArrConfig{}, config.ArrConfig{})

	result, err := svc.Add(context.Background(), Request{Title: "Heat", Kind: recommend.KindMovie})
	if err != nil {
		t.Fatalf("Add() error = %v", err)
	}
	if !result.AlreadyExists || result.Added {
		t.Errorf("result = %+v", result)
	}
}

func TestAddNoLookupMatch(t *testing.T) {
	sonarr := newMockCatalog(t, "/api/v3/series/lookup", "/api/v3/series", "[]")
	radarr := newMockCatalog(t, "/api/v3/movie/lookup", "/api/v3/movie", "[]")
	svc := newTestService(t, sonarr, radarr, config.ArrConfig{}, config.ArrConfig{})

	_, err := svc.Add(context.Background(), Request{Title: "Nonexistent", Kind: recommend.KindMovie})
	if !errors.Is(err, ErrNoMatch) {
		t.Errorf("error = %v, want ErrNoMatch", err)
	}
}

func TestAddDefaultsFallBackToConfig(t *testing.T) {
	sonarr := newMockCatalog(t, "/api/v3/series/lookup", "/api/v3/series", "[]")
	radarr := newMockCatalog(t, "/api/v3/movie/lookup", "/api/v3/movie", movieLookupJSON)
	radarr.defaultsErr = true
	svc := newTestService(t, sonarr, radarr, config.ArrConfig{}, config.ArrConfig{
		RootFolder:       "/fallback/movies",
		QualityProfileID: 9,
	})

	if _, err := svc.Add(context.Background(), Request{Title: "Heat", Kind: recommend.KindMovie}); err != nil {
		t.Fatalf("Add() error = %v", err)
	}

	payload := radarr.added()
	if payload["rootFolderPath"] != "/fallback/movies" {
		t.Errorf("rootFolderPath = %v", payload["rootFolderPath"])
	}
	if payload["qualityProfileId"] != float64(9) {
		t.Errorf("qualityProfileId = %v", payload["qualityProfileId"])
	}
}

func TestAddDefaultsLastResortProfile(t *testing.T) {
	sonarr := newMockCatalog(t, "/api/v3/series/lookup", "/api/v3/series", "[]")
	radarr := newMockCatalog(t, "/api/v3/movie/lookup", "/api/v3/movie", movieLookupJSON)
	radarr.defaultsErr = true
	svc := newTestService(t, sonarr, radarr, config.ArrConfig{}, config.ArrConfig{})

	if _, err := svc.Add(context.Background(), Request{Title: "Heat", Kind: recommend.KindMovie}); err != nil {
		t.Fatalf("Add() error = %v", err)
	}

	if got := radarr.added()["qualityProfileId"]; got != float64(1) {
		t.Errorf("qualityProfileId = %v, want 1", got)
	}
}

func TestAddRecordsHistoryAndBroadcasts(t *testing.T) {
	sonarr := newMockCatalog(t, "/api/v3/series/lookup", "/api/v3/series", "[]")
	radarr := newMockCatalog(t, "/api/v3/movie/lookup", "/api/v3/movie", movieLookupJSON)
	svc := newTestService(t, sonarr, radarr, config.ArrConfig{}, config.ArrConfig{})

	history := &recordedHistory{}
	svc.SetHistory(history)
	broadcaster := &recordedBroadcaster{}
	svc.SetBroadcaster(broadcaster)

	if _, err := svc.Add(context.Background(), Request{Title: "Heat", Kind: recommend.KindMovie}); err != nil {
		t.Fatalf("Add() error = %v", err)
	}

	if history.title != "Heat" || history.service != "Radarr" || history.alreadyExists {
		t.Errorf("history = %+v", history)
	}
	if len(broadcaster.types) != 1 || broadcaster.types[0] != EventCollectionAdded {
		t.Errorf("broadcast types = %v", broadcaster.types)
	}
}

type recordedHistory struct {
	title         string
	service       string
	alreadyExists bool
}

func (r *recordedHistory) RecordAddition(_ context.Context, title, service string, alreadyExists bool) {
	r.title = title
	r.service = service
	r.alreadyExists = alreadyExists
}

type recordedBroadcaster struct {
	mu    sync.Mutex
	types []string
}

func (r *recordedBroadcaster) Broadcast(msgType string, _ interface{}) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.types = append(r.types, msgType)
	return nil
}
