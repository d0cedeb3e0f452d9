// Package recommend implements the recommendation pipeline: candidate
// generation, catalog enrichment, and library-aware filtering.
package recommend

// MediaKind classifies a candidate or catalog record as episodic or film
// content.
type MediaKind string

const (
	KindSeries MediaKind = "series"
	KindMovie  MediaKind = "movie"
)

// External returns the wire form used in API responses and generator hints.
func (k MediaKind) External() string {
	if k == KindSeries {
		return "tv"
	}
	return "movie"
}

// Candidate is one suggestion moving through the pipeline. Kind preserves the
// generator's free-text label; ResolvedKind is the canonical classification.
type Candidate struct {
	Title        string
	Year         int
	Kind         string
	Reason       string
	ResolvedKind MediaKind
	ID           string
	Rating       float64
}

// CatalogRecord is a single match returned by a catalog lookup.
type CatalogRecord struct {
	Title  string
	Year   int
	ID     string
	Rating float64
	Kind   MediaKind
}
