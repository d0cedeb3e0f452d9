package recommend

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/recomarr/recomarr/internal/library"
)

// SnapshotSource is the slice of the library cache the filter reads.
type SnapshotSource interface {
	Get(ctx context.Context, source library.Source, maxAge time.Duration) library.Snapshot
	TTL() time.Duration
}

// Filter removes candidates the user would not want suggested: unusable
// titles, excluded programming, and media already in the library.
type Filter struct {
	snapshots SnapshotSource
	deny      Denylist
	logger    zerolog.Logger
}

// NewFilter creates a filter over the given snapshot source and denylist.
func NewFilter(snapshots SnapshotSource, deny Denylist, logger zerolog.Logger) *Filter {
	return &Filter{
		snapshots: snapshots,
		deny:      deny,
		logger:    logger.With().Str("component", "filter").Logger(),
	}
}

// Apply runs the filter stages in order: kind resolution, title
// normalization, exclusion matching, and ownership deduplication. Candidates
// survive with their display fields untouched. Relative order is preserved.
func (f *Filter) Apply(ctx context.Context, candidates []Candidate) []Candidate {
	ownedSeries := f.ownedTitles(ctx, library.SourceSeries)
	ownedMovies := f.ownedTitles(ctx, library.SourceMovie)

	out := make([]Candidate, 0, len(candidates))
	for _, c := range candidates {
		c.ResolvedKind = ClassifyKind(c.Kind)

		normalized := NormalizeTitle(c.Title)
		if normalized == "" {
			f.logger.Debug().Str("title", c.Title).Msg("Dropping candidate with unusable title")
			continue
		}

		if f.deny.Matches(c.Title) {
			f.logger.Debug().Str("title", c.Title).Msg("Dropping excluded candidate")
			continue
		}

		owned := ownedMovies
		if c.ResolvedKind == KindSeries {
			owned = ownedSeries
		}
		if _, ok := owned[normalized]; ok {
			f.logger.Debug().
				Str("title", c.Title).
				Str("kind", string(c.ResolvedKind)).
				Msg("Dropping candidate already in library")
			continue
		}

		out = append(out, c)
	}
	return out
}

// ownedTitles builds the normalized title set for one library source. Titles
// that normalize to empty are skipped so they can never match a candidate.
func (f *Filter) ownedTitles(ctx context.Context, source library.Source) map[string]struct{} {
	snap := f.snapshots.Get(ctx, source, f.snapshots.TTL())
	owned := make(map[string]struct{}, len(snap.Items))
	for _, item := range snap.Items {
		if normalized := NormalizeTitle(item.Title); normalized != "" {
			owned[normalized] = struct{}{}
		}
	}
	return owned
}
