package recommend

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/recomarr/recomarr/internal/library"
)

type fakeSnapshots struct {
	series library.Snapshot
	movies library.Snapshot
}

func (f *fakeSnapshots) Get(_ context.Context, source library.Source, _ time.Duration) library.Snapshot {
	if source == library.SourceSeries {
		return f.series
	}
	return f.movies
}

func (f *fakeSnapshots) TTL() time.Duration {
	return 15 * time.Minute
}

func snapshotOf(titles ...string) library.Snapshot {
	items := make([]library.Item, len(titles))
	for i, title := range titles {
		items[i] = library.Item{Title: title}
	}
	return library.Snapshot{Items: items, FetchedAt: time.Now()}
}

func TestFilterDropsOwnedTitles(t *testing.T) {
	snapshots := &fakeSnapshots{movies: snapshotOf("The Matrix")}
	f := NewFilter(snapshots, NewDenylist(nil), zerolog.Nop())

	out := f.Apply(context.Background(), []Candidate{
		{Title: "The Matrix", Kind: "movie"},
		{Title: "The Matrix Reloaded", Kind: "movie"},
		{Title: "Inception", Kind: "movie"},
	})

	if len(out) != 2 {
		t.Fatalf("got %d candidates, want 2", len(out))
	}
	if out[0].Title != "The Matrix Reloaded" || out[1].Title != "Inception" {
		t.Errorf("survivors = %q, %q", out[0].Title, out[1].Title)
	}
}

func TestFilterMatchesOwnershipAfterNormalization(t *testing.T) {
	snapshots := &fakeSnapshots{movies: snapshotOf("WALL·E")}
	f := NewFilter(snapshots, NewDenylist(nil), zerolog.Nop())

	out := f.Apply(context.Background(), []Candidate{
		{Title: "Wall-E", Kind: "movie"},
	})

	if len(out) != 0 {
		t.Fatalf("got %d candidates, want 0", len(out))
	}
}

func TestFilterOwnershipIgnoresYear(t *testing.T) {
	snap := library.Snapshot{
		Items:     []library.Item{{Title: "Dune", Year: 1984}},
		FetchedAt: time.Now(),
	}
	f := NewFilter(&fakeSnapshots{movies: snap}, NewDenylist(nil), zerolog.Nop())

	out := f.Apply(context.Background(), []Candidate{
		{Title: "Dune", Year: 2021, Kind: "movie"},
	})

	// Year is not part of the ownership key, so the remake is suppressed too.
	if len(out) != 0 {
		t.Fatalf("got %d candidates, want 0", len(out))
	}
}

func TestFilterOwnershipScopedByKind(t *testing.T) {
	snapshots := &fakeSnapshots{series: snapshotOf("Fargo")}
	f := NewFilter(snapshots, NewDenylist(nil), zerolog.Nop())

	out := f.Apply(context.Background(), []Candidate{
		{Title: "Fargo", Kind: "movie"},
		{Title: "Fargo", Kind: "tv series"},
	})

	if len(out) != 1 {
		t.Fatalf("got %d candidates, want 1", len(out))
	}
	if out[0].ResolvedKind != KindMovie {
		t.Errorf("survivor kind = %q, want %q", out[0].ResolvedKind, KindMovie)
	}
}

func TestFilterDropsUnusableTitles(t *testing.T) {
	f := NewFilter(&fakeSnapshots{}, NewDenylist(nil), zerolog.Nop())

	out := f.Apply(context.Background(), []Candidate{
		{Title: "!!!", Kind: "movie"},
		{Title: "", Kind: "tv"},
		{Title: "Heat", Kind: "movie"},
	})

	if len(out) != 1 || out[0].Title != "Heat" {
		t.Fatalf("survivors = %v, want only Heat", out)
	}
}

func TestFilterAppliesDenylist(t *testing.T) {
	f := NewFilter(&fakeSnapshots{}, NewDenylist([]string{"tonight show"}), zerolog.Nop())

	out := f.Apply(context.Background(), []Candidate{
		{Title: "The Tonight Show Starring Jimmy Fallon", Kind: "tv"},
		{Title: "Severance", Kind: "tv"},
	})

	if len(out) != 1 || out[0].Title != "Severance" {
		t.Fatalf("survivors = %v, want only Severance", out)
	}
}

func TestFilterDefaultDenylistAndBlankTitles(t *testing.T) {
	f := NewFilter(&fakeSnapshots{}, NewDenylist(DefaultFilterPatterns), zerolog.Nop())

	out := f.Apply(context.Background(), []Candidate{
		{Title: "Breaking Bad", Kind: "tv show"},
		{Title: "", Kind: "movie"},
		{Title: "The Tonight Show Starring Jimmy Fallon", Kind: "tv"},
	})

	if len(out) != 1 || out[0].Title != "Breaking Bad" {
		t.Fatalf("survivors = %v, want only Breaking Bad", out)
	}
	if out[0].ResolvedKind != KindSeries {
		t.Errorf("ResolvedKind = %q, want %q", out[0].ResolvedKind, KindSeries)
	}
}

func TestFilterPreservesCandidateFields(t *testing.T) {
	f := NewFilter(&fakeSnapshots{}, NewDenylist(nil), zerolog.Nop())

	in := []Candidate{
		{Title: "The Wire", Year: 2002, Kind: "TV Show", Reason: "gritty", ID: "tt0306414", Rating: 9.3},
	}
	out := f.Apply(context.Background(), in)

	if len(out) != 1 {
		t.Fatalf("got %d candidates, want 1", len(out))
	}
	got := out[0]
	if got.Title != "The Wire" || got.Year != 2002 || got.Kind != "TV Show" ||
		got.Reason != "gritty" || got.ID != "tt0306414" || got.Rating != 9.3 {
		t.Errorf("candidate fields altered: %+v", got)
	}
	if got.ResolvedKind != KindSeries {
		t.Errorf("ResolvedKind = %q, want %q", got.ResolvedKind, KindSeries)
	}
}

func TestFilterSkipsBlankLibraryTitles(t *testing.T) {
	snap := library.Snapshot{
		Items:     []library.Item{{Title: "..."}},
		FetchedAt: time.Now(),
	}
	f := NewFilter(&fakeSnapshots{movies: snap}, NewDenylist(nil), zerolog.Nop())

	out := f.Apply(context.Background(), []Candidate{
		{Title: "Arrival", Kind: "movie"},
	})

	// A library title that normalizes to nothing must never collide with a
	// real candidate.
	if len(out) != 1 {
		t.Fatalf("got %d candidates, want 1", len(out))
	}
}
