package arr

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/recomarr/recomarr/internal/config"
)

var (
	ErrAPIKeyMissing = errors.New("API key is not configured")
	ErrAlreadyExists = errors.New("title already exists in the collection")
	ErrAPIError      = errors.New("API error")
)

// Service identifies which application a Client talks to.
type Service string

const (
	ServiceSonarr Service = "sonarr"
	ServiceRadarr Service = "radarr"
)

// AppName returns the application name reported by /system/status.
func (s Service) AppName() string {
	if s == ServiceSonarr {
		return "Sonarr"
	}
	return "Radarr"
}

// Client is a Sonarr or Radarr v3 API client.
type Client struct {
	httpClient *http.Client
	service    Service
	baseURL    string
	apiKey     string
	logger     zerolog.Logger
}

// NewClient creates a client for one Sonarr or Radarr instance.
func NewClient(service Service, cfg config.ArrConfig, logger zerolog.Logger) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30
	}
	return &Client{
		httpClient: &http.Client{Timeout: time.Duration(timeout) * time.Second},
		service:    service,
		baseURL:    strings.TrimRight(cfg.URL, "/"),
		apiKey:     cfg.APIKey,
		logger:     logger.With().Str("component", string(service)).Logger(),
	}
}

// Service returns which application this client talks to.
func (c *Client) Service() Service {
	return c.service
}

// IsConfigured returns true if the URL and API key are set.
func (c *Client) IsConfigured() bool {
	return c.baseURL != "" && c.apiKey != ""
}

// Test verifies connectivity and that the remote application is the one
// this client was configured for.
func (c *Client) Test(ctx context.Context) error {
	if !c.IsConfigured() {
		return ErrAPIKeyMissing
	}

	data, err := c.doGet(ctx, "/api/v3/system/status", nil)
	if err != nil {
		return fmt.Errorf("failed to validate connection: %w", err)
	}

	var status SystemStatus
	if err := json.Unmarshal(data, &status); err != nil {
		return fmt.Errorf("failed to parse status response: %w", err)
	}

	if !strings.EqualFold(status.AppName, c.service.AppName()) {
		return fmt.Errorf("expected %s but connected to %s", c.service.AppName(), status.AppName)
	}
	return nil
}

// Series returns the full series library. Only valid for Sonarr clients.
func (c *Client) Series(ctx context.Context) ([]Series, error) {
	if c.service != ServiceSonarr {
		return []Series{}, nil
	}
	if !c.IsConfigured() {
		return nil, ErrAPIKeyMissing
	}

	data, err := c.doGet(ctx, "/api/v3/series", nil)
	if err != nil {
		return nil, err
	}

	series, err := unmarshalSeriesList(data)
	if err != nil {
		return nil, err
	}

	out := series[:0]
	for _, s := range series {
		if s.Status == "deleted" {
			continue
		}
		out = append(out, s)
	}
	return out, nil
}

// Movies returns the full movie library. Only valid for Radarr clients.
func (c *Client) Movies(ctx context.Context) ([]Movie, error) {
	if c.service != ServiceRadarr {
		return []Movie{}, nil
	}
	if !c.IsConfigured() {
		return nil, ErrAPIKeyMissing
	}

	data, err := c.doGet(ctx, "/api/v3/movie", nil)
	if err != nil {
		return nil, err
	}

	movies, err := unmarshalMovieList(data)
	if err != nil {
		return nil, err
	}

	out := movies[:0]
	for _, m := range movies {
		if m.Status == "deleted" {
			continue
		}
		out = append(out, m)
	}
	return out, nil
}

// LookupSeries searches Sonarr's catalog by free-text term. Each result keeps
// the raw API object so a caller can post it back unmodified when adding.
func (c *Client) LookupSeries(ctx context.Context, term string) ([]Series, error) {
	if !c.IsConfigured() {
		return nil, ErrAPIKeyMissing
	}

	params := url.Values{}
	params.Set("term", term)

	data, err := c.doGet(ctx, "/api/v3/series/lookup", params)
	if err != nil {
		return nil, err
	}
	return unmarshalSeriesList(data)
}

// LookupMovies searches Radarr's catalog by free-text term.
func (c *Client) LookupMovies(ctx context.Context, term string) ([]Movie, error) {
	if !c.IsConfigured() {
		return nil, ErrAPIKeyMissing
	}

	params := url.Values{}
	params.Set("term", term)

	data, err := c.doGet(ctx, "/api/v3/movie/lookup", params)
	if err != nil {
		return nil, err
	}
	return unmarshalMovieList(data)
}

// RootFolders lists the configured root folders.
func (c *Client) RootFolders(ctx context.Context) ([]RootFolder, error) {
	if !c.IsConfigured() {
		return nil, ErrAPIKeyMissing
	}

	data, err := c.doGet(ctx, "/api/v3/rootfolder", nil)
	if err != nil {
		return nil, err
	}

	var folders []RootFolder
	if err := json.Unmarshal(data, &folders); err != nil {
		return nil, fmt.Errorf("failed to parse root folders: %w", err)
	}
	return folders, nil
}

// QualityProfiles lists the configured quality profiles.
func (c *Client) QualityProfiles(ctx context.Context) ([]Profile, error) {
	if !c.IsConfigured() {
		return nil, ErrAPIKeyMissing
	}

	data, err := c.doGet(ctx, "/api/v3/qualityprofile", nil)
	if err != nil {
		return nil, err
	}

	var profiles []Profile
	if err := json.Unmarshal(data, &profiles); err != nil {
		return nil, fmt.Errorf("failed to parse quality profiles: %w", err)
	}
	return profiles, nil
}

// LanguageProfiles lists Sonarr's language profiles. Radarr has none; a
// Radarr client returns an empty list.
func (c *Client) LanguageProfiles(ctx context.Context) ([]Profile, error) {
	if c.service != ServiceSonarr {
		return []Profile{}, nil
	}
	if !c.IsConfigured() {
		return nil, ErrAPIKeyMissing
	}

	data, err := c.doGet(ctx, "/api/v3/languageprofile", nil)
	if err != nil {
		return nil, err
	}

	var profiles []Profile
	if err := json.Unmarshal(data, &profiles); err != nil {
		return nil, fmt.Errorf("failed to parse language profiles: %w", err)
	}
	return profiles, nil
}

// AddSeries posts a series payload to Sonarr. The payload is typically a
// lookup result's raw object with folder/profile/monitoring fields set.
// Returns ErrAlreadyExists when Sonarr rejects the add because the series is
// already tracked.
func (c *Client) AddSeries(ctx context.Context, payload map[string]any) error {
	return c.doAdd(ctx, "/api/v3/series", payload)
}

// AddMovie posts a movie payload to Radarr.
func (c *Client) AddMovie(ctx context.Context, payload map[string]any) error {
	return c.doAdd(ctx, "/api/v3/movie", payload)
}

func (c *Client) doAdd(ctx context.Context, path string, payload map[string]any) error {
	if !c.IsConfigured() {
		return ErrAPIKeyMissing
	}

	status, body, err := c.doPost(ctx, path, payload)
	if err != nil {
		return err
	}

	if status >= 400 {
		if strings.Contains(strings.ToLower(string(body)), "already exists") {
			return ErrAlreadyExists
		}
		c.logger.Error().Int("status", status).Str("path", path).Msg("add request rejected")
		return fmt.Errorf("%w: status %d: %s", ErrAPIError, status, truncateBody(body))
	}
	return nil
}

func (c *Client) doGet(ctx context.Context, path string, params url.Values) ([]byte, error) {
	reqURL := c.baseURL + path
	if len(params) > 0 {
		reqURL = fmt.Sprintf("%s?%s", reqURL, params.Encode())
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("X-Api-Key", c.apiKey)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		if resp.StatusCode == http.StatusUnauthorized {
			return nil, fmt.Errorf("%w: invalid API key", ErrAPIError)
		}
		return nil, fmt.Errorf("%w: status %d: %s", ErrAPIError, resp.StatusCode, truncateBody(body))
	}

	return io.ReadAll(resp.Body)
}

func (c *Client) doPost(ctx context.Context, path string, payload any) (int, []byte, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return 0, nil, fmt.Errorf("failed to encode payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(data))
	if err != nil {
		return 0, nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("X-Api-Key", c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	return resp.StatusCode, body, nil
}

// truncateBody keeps error messages readable when the API returns a large
// HTML or validation payload.
func truncateBody(body []byte) string {
	const max = 200
	s := strings.TrimSpace(string(body))
	if len(s) > max {
		return s[:max] + "..."
	}
	return s
}
