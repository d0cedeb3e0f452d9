package tmdb

// Person is a person search result.
type Person struct {
	ID                 int64   `json:"id"`
	Name               string  `json:"name"`
	Popularity         float64 `json:"popularity"`
	KnownForDepartment string  `json:"known_for_department"`
}

// SearchPersonResponse is the /search/person response envelope.
type SearchPersonResponse struct {
	Page         int      `json:"page"`
	Results      []Person `json:"results"`
	TotalPages   int      `json:"total_pages"`
	TotalResults int      `json:"total_results"`
}

// Credit is one cast entry from a person's combined filmography. Movies
// carry Title/ReleaseDate, TV credits carry Name/FirstAirDate.
type Credit struct {
	ID           int64   `json:"id"`
	MediaType    string  `json:"media_type"` // "movie" or "tv"
	Title        string  `json:"title"`
	Name         string  `json:"name"`
	Character    string  `json:"character"`
	EpisodeCount int     `json:"episode_count"`
	Popularity   float64 `json:"popularity"`
	VoteCount    int     `json:"vote_count"`
	VoteAverage  float64 `json:"vote_average"`
	ReleaseDate  string  `json:"release_date"`
	FirstAirDate string  `json:"first_air_date"`
}

// DisplayTitle returns the title for either media type.
func (c *Credit) DisplayTitle() string {
	if c.MediaType == "tv" {
		return c.Name
	}
	return c.Title
}

// Year returns the release/first-air year, 0 when unknown.
func (c *Credit) Year() int {
	if c.MediaType == "tv" {
		return yearOf(c.FirstAirDate)
	}
	return yearOf(c.ReleaseDate)
}

// CombinedCreditsResponse is the /person/{id}/combined_credits response.
type CombinedCreditsResponse struct {
	ID   int64    `json:"id"`
	Cast []Credit `json:"cast"`
}

// ErrorResponse is TMDB's error envelope.
type ErrorResponse struct {
	StatusCode    int    `json:"status_code"`
	StatusMessage string `json:"status_message"`
}
