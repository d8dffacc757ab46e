package service

import (
	"context"

	"music_library/internal/domain"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

// Finders used by the search aggregator
type (
	ArtistFinder interface {
		Find(ctx context.Context, query string) ([]domain.Artist, error)
	}
	AlbumFinder interface {
		Find(ctx context.Context, query string) ([]domain.Album, error)
	}
	PlaylistFinder interface {
		Find(ctx context.Context, query string) ([]domain.Playlist, error)
	}
	SongFinder interface {
		Find(ctx context.Context, query string) ([]domain.Song, error)
	}
)

// SearchResult is the merged payload of a search. Every list is non-nil.
type SearchResult struct {
	Artists   []domain.Artist   `json:"artists"`
	Albums    []domain.Album    `json:"albums"`
	Playlists []domain.Playlist `json:"playlists"`
	Songs     []domain.Song     `json:"songs"`
}

// SearchService fans a query out to every entity finder
type SearchService struct {
	artists   ArtistFinder
	albums    AlbumFinder
	playlists PlaylistFinder
	songs     SongFinder
}

// NewSearchService creates a SearchService
func NewSearchService(artists ArtistFinder, albums AlbumFinder, playlists PlaylistFinder, songs SongFinder) *SearchService {
	return &SearchService{artists: artists, albums: albums, playlists: playlists, songs: songs}
}

func emptyResult() *SearchResult {
	return &SearchResult{
		Artists:   []domain.Artist{},
		Albums:    []domain.Album{},
		Playlists: []domain.Playlist{},
		Songs:     []domain.Song{},
	}
}

// collect runs find and stores its items in dst. A failing category is
// logged and left empty so the other categories still come back.
func collect[T any](ctx context.Context, category, query string, find func(context.Context, string) ([]T, error), dst *[]T) func() error {
	return func() error {
		items, err := find(ctx, query)
		if err != nil {
			logrus.WithFields(logrus.Fields{
				"category": category,
				"query":    query,
				"error":    err,
			}).Error("Search category failed")
			return nil
		}
		if items != nil {
			*dst = items
		}
		return nil
	}
}

// Search runs the four category lookups concurrently. An empty query
// returns empty lists without touching the store.
func (s *SearchService) Search(ctx context.Context, query string) *SearchResult {
	res := emptyResult()
	if query == "" {
		return res
	}

	var g errgroup.Group
	g.Go(collect(ctx, "artists", query, s.artists.Find, &res.Artists))
	g.Go(collect(ctx, "albums", query, s.albums.Find, &res.Albums))
	g.Go(collect(ctx, "playlists", query, s.playlists.Find, &res.Playlists))
	g.Go(collect(ctx, "songs", query, s.songs.Find, &res.Songs))
	_ = g.Wait() // categories never fail the group

	return res
}
