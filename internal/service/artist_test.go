package service

import (
	"context"
	"fmt"
	"testing"

	"music_library/internal/domain"
	"music_library/internal/media"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFindOrCreateArtistIgnoresCase(t *testing.T) {
	s := newServices(t)
	ctx := context.Background()

	first, err := s.artists.FindOrCreateByName(ctx, "Drake")
	require.NoError(t, err)
	second, err := s.artists.FindOrCreateByName(ctx, "drake")
	require.NoError(t, err)

	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, "Drake", second.Name) // First spelling is kept
	assert.EqualValues(t, 1, s.count(t, &domain.Artist{}))
}

func TestFindOrCreateArtistRejectsBlank(t *testing.T) {
	s := newServices(t)

	_, err := s.artists.FindOrCreateByName(context.Background(), "   ")
	var verr *domain.ValidationError
	require.ErrorAs(t, err, &verr)
}

func TestCreateArtistConflict(t *testing.T) {
	s := newServices(t)
	ctx := context.Background()

	require.NoError(t, s.artists.Create(ctx, &domain.Artist{Name: "Adele"}))
	err := s.artists.Create(ctx, &domain.Artist{Name: "ADELE"})
	assert.ErrorIs(t, err, domain.ErrConflict)
}

func TestFindAllWithFiltersPaginates(t *testing.T) {
	s := newServices(t)
	ctx := context.Background()

	for i := 0; i < 12; i++ {
		require.NoError(t, s.artists.Create(ctx, &domain.Artist{Name: fmt.Sprintf("Band %02d", i)}))
	}
	require.NoError(t, s.artists.Create(ctx, &domain.Artist{Name: "Prince"})) // no "a"

	page, err := s.artists.FindAllWithFilters(ctx, "A", 2, 5)
	require.NoError(t, err)

	assert.Len(t, page.Items, 5)
	assert.EqualValues(t, 12, page.Metadata.TotalRecords)
	assert.Equal(t, 2, page.Metadata.Page)
	assert.Equal(t, 5, page.Metadata.Limit)
	assert.Equal(t, 3, page.Metadata.TotalPages)
	assert.Equal(t, "Band 05", page.Items[0].Name)
}

func TestUpdateArtist(t *testing.T) {
	s := newServices(t)
	ctx := context.Background()
	artist := &domain.Artist{Name: "Old"}
	require.NoError(t, s.artists.Create(ctx, artist))

	name, bio := "New Name", "From somewhere"
	updated, err := s.artists.UpdateByID(ctx, artist.ID, ArtistUpdate{Name: &name, Bio: &bio})
	require.NoError(t, err)
	assert.Equal(t, "New Name", updated.Name)
	require.NotNil(t, updated.Bio)
	assert.Equal(t, bio, *updated.Bio)

	// The lookup key follows the rename
	found, err := s.artists.FindOrCreateByName(ctx, "new name")
	require.NoError(t, err)
	assert.Equal(t, artist.ID, found.ID)

	missing, err := s.artists.UpdateByID(ctx, 999, ArtistUpdate{Name: &name})
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestFindArtistByIDMissing(t *testing.T) {
	s := newServices(t)

	artist, err := s.artists.FindByID(context.Background(), 42)
	require.NoError(t, err)
	assert.Nil(t, artist)
}

func TestFindSongsByArtistID(t *testing.T) {
	s := newServices(t)
	ctx := context.Background()

	s.addSong(t, "Duet", "Alpha, Beta")
	s.addSong(t, "Solo", "Beta")
	s.addSong(t, "Other", "Gamma")

	beta, err := s.artists.FindByName(ctx, "Beta")
	require.NoError(t, err)
	require.NotNil(t, beta)

	songs, err := s.artists.FindSongsByArtistID(ctx, beta.ID)
	require.NoError(t, err)
	require.Len(t, songs, 2)
	assert.Equal(t, "Duet", songs[0].Title)
	require.Len(t, songs[0].Artists, 2)
	assert.Equal(t, "Alpha", songs[0].Artists[0].Name)
	assert.Equal(t, "Beta", songs[0].Artists[1].Name)
}

func TestFindAlbumsByArtistID(t *testing.T) {
	s := newServices(t)
	ctx := context.Background()

	_, err := s.albums.CreateWithSongs(ctx, AlbumInput{Title: "Views", ArtistName: "Drake"})
	require.NoError(t, err)
	drake, err := s.artists.FindByName(ctx, "Drake")
	require.NoError(t, err)

	albums, err := s.artists.FindAlbumsByArtistID(ctx, drake.ID)
	require.NoError(t, err)
	require.Len(t, albums, 1)
	assert.Equal(t, "Views", albums[0].Title)
	assert.Equal(t, "Drake", albums[0].ArtistName)
}

func TestDeleteArtist(t *testing.T) {
	s := newServices(t)
	ctx := context.Background()
	views, err := s.albums.CreateWithSongs(ctx, AlbumInput{
		Title:      "Views",
		ArtistName: "Drake",
		AudioFiles: []*media.File{audioFile("Hype.mp3")},
	})
	require.NoError(t, err)
	drakeID := views.Album.ArtistID
	hotline := s.addSong(t, "Hotline", "Drake")
	duet := s.addSong(t, "Work", "Rihanna, Drake")
	fan := s.addUser(t, "fan@example.com")
	_, err = s.users.AddFavoriteSong(ctx, fan.ID, hotline.ID)
	require.NoError(t, err)
	_, err = s.playlists.CreateWithSongs(ctx, PlaylistInput{Name: "Mix", UserID: &fan.ID, SongIDs: []uint{hotline.ID, duet.ID}}, nil)
	require.NoError(t, err)

	ok, err := s.artists.DeleteByID(ctx, drakeID)
	require.NoError(t, err)
	assert.True(t, ok)

	assert.Zero(t, s.count(t, &domain.Album{}, "artist_id = ?", drakeID), "albums go with their artist")
	assert.Zero(t, s.count(t, &domain.Song{}, "artist_id = ?", drakeID), "songs go with their primary artist")
	assert.Zero(t, s.count(t, &domain.SongArtist{}, "artist_id = ?", drakeID))
	assert.Zero(t, s.count(t, &domain.Favorite{}))
	assert.Equal(t, int64(1), s.count(t, &domain.PlaylistSong{}), "only the featured song stays in the playlist")

	album, err := s.albums.FindByID(ctx, views.Album.ID)
	require.NoError(t, err)
	assert.Nil(t, album)

	kept, err := s.songs.GetByID(ctx, duet.ID)
	require.NoError(t, err)
	require.NotNil(t, kept, "a song only featuring the artist survives")
	require.Len(t, kept.Artists, 1)
	assert.Equal(t, "Rihanna", kept.Artists[0].Name)

	ok, err = s.artists.DeleteByID(ctx, drakeID)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestDeleteAllArtists(t *testing.T) {
	s := newServices(t)
	ctx := context.Background()
	_, err := s.albums.CreateWithSongs(ctx, AlbumInput{
		Title:      "Nevermind",
		ArtistName: "Nirvana",
		AudioFiles: []*media.File{audioFile("Polly.mp3")},
	})
	require.NoError(t, err)
	s.addSong(t, "Solo", "Someone")

	require.NoError(t, s.artists.DeleteAll(ctx))

	for _, model := range []any{&domain.Artist{}, &domain.Album{}, &domain.Song{}, &domain.SongArtist{}} {
		assert.Zero(t, s.count(t, model))
	}
}

func TestArtistFind(t *testing.T) {
	s := newServices(t)
	ctx := context.Background()
	for i := 0; i < 15; i++ {
		require.NoError(t, s.artists.Create(ctx, &domain.Artist{Name: fmt.Sprintf("Echo %d", i)}))
	}

	found, err := s.artists.Find(ctx, "echo")
	require.NoError(t, err)
	assert.Len(t, found, SearchLimit)

	empty, err := s.artists.Find(ctx, "")
	require.NoError(t, err)
	assert.NotNil(t, empty)
	assert.Empty(t, empty)
}
