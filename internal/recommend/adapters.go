package recommend

import (
	"context"
	"encoding/json"

	"github.com/recomarr/recomarr/internal/arr"
	"github.com/recomarr/recomarr/internal/generator"
)

// SeriesLookup adapts Sonarr's lookup endpoint to the enrichment interface.
type SeriesLookup struct {
	Client *arr.Client
}

func (l SeriesLookup) Lookup(ctx context.Context, term string) ([]CatalogRecord, error) {
	series, err := l.Client.LookupSeries(ctx, term)
	if err != nil {
		return nil, err
	}
	records := make([]CatalogRecord, len(series))
	for i, s := range series {
		records[i] = CatalogRecord{
			Title:  s.Title,
			Year:   s.Year,
			ID:     s.ImdbID,
			Rating: s.Rating(),
			Kind:   KindSeries,
		}
	}
	return records, nil
}

// MovieLookup adapts Radarr's lookup endpoint to the enrichment interface.
type MovieLookup struct {
	Client *arr.Client
}

func (l MovieLookup) Lookup(ctx context.Context, term string) ([]CatalogRecord, error) {
	movies, err := l.Client.LookupMovies(ctx, term)
	if err != nil {
		return nil, err
	}
	records := make([]CatalogRecord, len(movies))
	for i, m := range movies {
		records[i] = CatalogRecord{
			Title:  m.Title,
			Year:   m.Year,
			ID:     m.ImdbID,
			Rating: m.Rating(),
			Kind:   KindMovie,
		}
	}
	return records, nil
}

// GeneratorSource adapts the chat completion client to the pipeline.
type GeneratorSource struct {
	Client *generator.Client
}

func (g GeneratorSource) Generate(ctx context.Context, summary json.RawMessage, prompt, mediaType string) ([]Candidate, error) {
	recs, err := g.Client.Generate(ctx, generator.Request{
		LibrarySummary: summary,
		Prompt:         prompt,
		MediaType:      mediaType,
	})
	if err != nil {
		return nil, err
	}
	candidates := make([]Candidate, len(recs))
	for i, r := range recs {
		candidates[i] = Candidate{
			Title:  r.Title,
			Year:   r.Year,
			Kind:   r.Type,
			Reason: r.Reason,
		}
	}
	return candidates, nil
}
