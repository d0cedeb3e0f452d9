package arr

import (
	"encoding/json"
	"fmt"
)

// SystemStatus is the /api/v3/system/status response.
type SystemStatus struct {
	AppName string `json:"appName"`
	Version string `json:"version"`
}

// SeriesRatings is Sonarr's flat ratings object.
type SeriesRatings struct {
	Votes int     `json:"votes"`
	Value float64 `json:"value"`
}

// RatingSource is one provider entry in Radarr's per-provider ratings map.
type RatingSource struct {
	Votes int     `json:"votes"`
	Value float64 `json:"value"`
}

// MovieRatings is Radarr's per-provider ratings object.
type MovieRatings struct {
	IMDB RatingSource `json:"imdb"`
	TMDB RatingSource `json:"tmdb"`
}

// Series is a Sonarr series object, from either the library listing or a
// lookup. Raw preserves the complete API object for add round-trips.
type Series struct {
	ID       int64         `json:"id"`
	Title    string        `json:"title"`
	Year     int           `json:"year"`
	TvdbID   int           `json:"tvdbId"`
	ImdbID   string        `json:"imdbId"`
	Overview string        `json:"overview"`
	Status   string        `json:"status"`
	Network  string        `json:"network"`
	Genres   []string      `json:"genres"`
	Ratings  SeriesRatings `json:"ratings"`

	Raw json.RawMessage `json:"-"`
}

// Rating returns the community rating, 0 when unknown.
func (s *Series) Rating() float64 {
	return s.Ratings.Value
}

// Payload decodes the raw API object for mutation and re-posting.
func (s *Series) Payload() (map[string]any, error) {
	return decodeRaw(s.Raw)
}

// Movie is a Radarr movie object, from either the library listing or a
// lookup.
type Movie struct {
	ID       int64        `json:"id"`
	Title    string       `json:"title"`
	Year     int          `json:"year"`
	TmdbID   int          `json:"tmdbId"`
	ImdbID   string       `json:"imdbId"`
	Overview string       `json:"overview"`
	Status   string       `json:"status"`
	Studio   string       `json:"studio"`
	Genres   []string     `json:"genres"`
	Ratings  MovieRatings `json:"ratings"`

	Raw json.RawMessage `json:"-"`
}

// Rating returns the community rating, preferring the IMDb figure, 0 when
// unknown.
func (m *Movie) Rating() float64 {
	if m.Ratings.IMDB.Value > 0 {
		return m.Ratings.IMDB.Value
	}
	return m.Ratings.TMDB.Value
}

// Payload decodes the raw API object for mutation and re-posting.
func (m *Movie) Payload() (map[string]any, error) {
	return decodeRaw(m.Raw)
}

// RootFolder is a configured media root folder.
type RootFolder struct {
	ID   int64  `json:"id"`
	Path string `json:"path"`
}

// Profile is a quality or language profile reference.
type Profile struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

func decodeRaw(raw json.RawMessage) (map[string]any, error) {
	if len(raw) == 0 {
		return nil, fmt.Errorf("no raw API object attached")
	}
	var m map[string]any
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil, fmt.Errorf("failed to decode raw API object: %w", err)
	}
	return m, nil
}

// unmarshalSeriesList decodes a series array keeping each element's raw form.
func unmarshalSeriesList(data []byte) ([]Series, error) {
	var raws []json.RawMessage
	if err := json.Unmarshal(data, &raws); err != nil {
		return nil, fmt.Errorf("failed to parse series: %w", err)
	}

	series := make([]Series, len(raws))
	for i, raw := range raws {
		if err := json.Unmarshal(raw, &series[i]); err != nil {
			return nil, fmt.Errorf("failed to parse series: %w", err)
		}
		series[i].Raw = raw
	}
	return series, nil
}

// unmarshalMovieList decodes a movie array keeping each element's raw form.
func unmarshalMovieList(data []byte) ([]Movie, error) {
	var raws []json.RawMessage
	if err := json.Unmarshal(data, &raws); err != nil {
		return nil, fmt.Errorf("failed to parse movies: %w", err)
	}

	movies := make([]Movie, len(raws))
	for i, raw := range raws {
		if err := json.Unmarshal(raw, &movies[i]); err != nil {
			return nil, fmt.Errorf("failed to parse movies: %w", err)
		}
		movies[i].Raw = raw
	}
	return movies, nil
}
