package library

import (
	"context"

	"github.com/recomarr/recomarr/internal/arr"
)

// SeriesLister adapts a Sonarr client to the Lister interface.
type SeriesLister struct {
	Client *arr.Client
}

func (l *SeriesLister) List(ctx context.Context) ([]Item, error) {
	series, err := l.Client.Series(ctx)
	if err != nil {
		return nil, err
	}

	items := make([]Item, len(series))
	for i, s := range series {
		items[i] = Item{
			Title:   s.Title,
			Year:    s.Year,
			Genres:  s.Genres,
			Status:  s.Status,
			Network: s.Network,
		}
	}
	return items, nil
}

// MovieLister adapts a Radarr client to the Lister interface.
type MovieLister struct {
	Client *arr.Client
}

func (l *MovieLister) List(ctx context.Context) ([]Item, error) {
	movies, err := l.Client.Movies(ctx)
	if err != nil {
		return nil, err
	}

	items := make([]Item, len(movies))
	for i, m := range movies {
		items[i] = Item{
			Title:  m.Title,
			Year:   m.Year,
			Genres: m.Genres,
			Studio: m.Studio,
		}
	}
	return items, nil
}
