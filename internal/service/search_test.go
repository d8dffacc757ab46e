package service

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"

	"music_library/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// finderFunc adapts a function to every finder interface of one element type
type finderFunc[T any] func(ctx context.Context, query string) ([]T, error)

func (f finderFunc[T]) Find(ctx context.Context, query string) ([]T, error) { return f(ctx, query) }

func returning[T any](calls *atomic.Int32, items []T, err error) finderFunc[T] {
	return func(context.Context, string) ([]T, error) {
		calls.Add(1)
		return items, err
	}
}

func TestSearchEmptyQueryTouchesNothing(t *testing.T) {
	var calls atomic.Int32
	search := NewSearchService(
		returning[domain.Artist](&calls, nil, nil),
		returning[domain.Album](&calls, nil, nil),
		returning[domain.Playlist](&calls, nil, nil),
		returning[domain.Song](&calls, nil, nil),
	)

	res := search.Search(context.Background(), "")

	assert.Zero(t, calls.Load())
	assert.Equal(t, &SearchResult{
		Artists:   []domain.Artist{},
		Albums:    []domain.Album{},
		Playlists: []domain.Playlist{},
		Songs:     []domain.Song{},
	}, res)
}

func TestSearchSurvivesFailingCategory(t *testing.T) {
	var calls atomic.Int32
	search := NewSearchService(
		returning(&calls, []domain.Artist{{ID: 1, Name: "Queen"}}, nil),
		returning[domain.Album](&calls, nil, errors.New("albums table is gone")),
		returning(&calls, []domain.Playlist{{ID: 2, Name: "Queen hits"}}, nil),
		returning(&calls, []domain.Song{{ID: 3, Title: "Queen of hearts"}}, nil),
	)

	res := search.Search(context.Background(), "queen")

	assert.EqualValues(t, 4, calls.Load())
	assert.Len(t, res.Artists, 1)
	assert.Len(t, res.Playlists, 1)
	assert.Len(t, res.Songs, 1)
	require.NotNil(t, res.Albums)
	assert.Empty(t, res.Albums)
}

func TestSearchAgainstStore(t *testing.T) {
	s := newServices(t)
	ctx := context.Background()
	user := s.addUser(t, "dj@example.com")
	song := s.addSong(t, "Night Drive", "Night Crew")
	_, err := s.albums.CreateWithSongs(ctx, AlbumInput{Title: "Nightfall", ArtistName: "Night Crew"})
	require.NoError(t, err)
	_, err = s.playlists.CreateWithSongs(ctx, PlaylistInput{Name: "Night mix", UserID: &user.ID, IsPublic: true, SongIDs: []uint{song.ID}}, nil)
	require.NoError(t, err)

	search := NewSearchService(s.artists, s.albums, s.playlists, s.songs)
	res := search.Search(ctx, "night")

	assert.Len(t, res.Artists, 1)
	assert.Len(t, res.Albums, 1)
	assert.Len(t, res.Playlists, 1)
	assert.Len(t, res.Songs, 1)
}
