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

func TestSplitArtistNames(t *testing.T) {
	tests := []struct {
		raw  string
		want []string
	}{
		{"Drake", []string{"Drake"}},
		{" Drake , Future ", []string{"Drake", "Future"}},
		{"Drake,,drake, DRAKE,Rihanna", []string{"Drake", "Rihanna"}},
		{" , ", nil},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, SplitArtistNames(tt.raw), tt.raw)
	}
}

func TestAddSongLinksEveryArtist(t *testing.T) {
	s := newServices(t)

	song := s.addSong(t, "Jumpman", "Drake, Future, drake")

	drake, err := s.artists.FindByName(context.Background(), "Drake")
	require.NoError(t, err)
	require.NotNil(t, drake)

	assert.Equal(t, drake.ID, song.ArtistID)
	assert.EqualValues(t, 1, s.count(t, &domain.Song{}))
	assert.EqualValues(t, 2, s.count(t, &domain.Artist{}))
	assert.EqualValues(t, 2, s.count(t, &domain.SongArtist{}, "song_id = ?", song.ID))
	require.Len(t, song.Artists, 2)
	assert.Equal(t, "Future", song.Artists[1].Name)
	require.NotNil(t, song.Duration)
	assert.InDelta(t, 183.45, *song.Duration, 0.001)
}

func TestAddSongWithAlbum(t *testing.T) {
	s := newServices(t)
	ctx := context.Background()

	first, err := s.songs.AddSong(ctx, SongInput{Title: "One", Artists: "Metallica", Album: "Justice", Audio: audioFile("1.mp3")})
	require.NoError(t, err)
	second, err := s.songs.AddSong(ctx, SongInput{Title: "Blackened", Artists: "metallica", Album: "justice", Audio: audioFile("2.mp3")})
	require.NoError(t, err)

	require.NotNil(t, first.AlbumID)
	require.NotNil(t, second.AlbumID)
	assert.Equal(t, *first.AlbumID, *second.AlbumID)
	assert.EqualValues(t, 1, s.count(t, &domain.Album{}))
}

func TestAddSongRequiresAudio(t *testing.T) {
	s := newServices(t)

	_, err := s.songs.AddSong(context.Background(), SongInput{Title: "Silent", Artists: "Nobody"})
	assert.ErrorIs(t, err, domain.ErrAudioRequired)
	assert.Zero(t, s.count(t, &domain.Artist{}))
}

func TestAddSongRequiresArtist(t *testing.T) {
	s := newServices(t)

	_, err := s.songs.AddSong(context.Background(), SongInput{Title: "Orphan", Artists: " , ", Audio: audioFile("o.mp3")})
	var verr *domain.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Zero(t, s.count(t, &domain.Song{}))
}

func TestAddSongUnknownDurationIsNull(t *testing.T) {
	s := newServices(t)
	s.durations.seconds = nil

	song := s.addSong(t, "Corrupt", "Someone")
	assert.Nil(t, song.Duration)
}

func TestUpdateSong(t *testing.T) {
	s := newServices(t)
	ctx := context.Background()
	song, err := s.songs.AddSong(ctx, SongInput{Title: "Draft", Artists: "A", Album: "Demo", Audio: audioFile("d.mp3")})
	require.NoError(t, err)

	title, artists, album := "Final", "B, A", ""
	updated, err := s.songs.UpdateSong(ctx, song.ID, SongUpdate{
		Title:   &title,
		Artists: &artists,
		Album:   &album,
		Cover:   &media.File{URL: "/public/uploads/images/x.webp"},
	})
	require.NoError(t, err)

	assert.Equal(t, "Final", updated.Title)
	assert.Nil(t, updated.AlbumID)
	require.NotNil(t, updated.ImageURL)
	b, err := s.artists.FindByName(ctx, "B")
	require.NoError(t, err)
	assert.Equal(t, b.ID, updated.ArtistID)
	assert.Len(t, updated.Artists, 2)

	_, err = s.songs.UpdateSong(ctx, 999, SongUpdate{Title: &title})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestSongUpdateRejectsUnknownColumns(t *testing.T) {
	s := newServices(t)
	song := s.addSong(t, "Safe", "A")

	_, err := s.songs.Update(context.Background(), song.ID, map[string]any{"id": 5})
	var verr *domain.ValidationError
	require.ErrorAs(t, err, &verr)

	updated, err := s.songs.Update(context.Background(), song.ID, map[string]any{"title": "Renamed"})
	require.NoError(t, err)
	assert.Equal(t, "Renamed", updated.Title)
}

func TestAddArtistLinkIsIdempotent(t *testing.T) {
	s := newServices(t)
	ctx := context.Background()
	song := s.addSong(t, "Track", "A")
	guest, err := s.artists.FindOrCreateByName(ctx, "Guest")
	require.NoError(t, err)

	require.NoError(t, s.songs.AddArtistLink(ctx, song.ID, guest.ID))
	require.NoError(t, s.songs.AddArtistLink(ctx, song.ID, guest.ID))
	assert.EqualValues(t, 2, s.count(t, &domain.SongArtist{}, "song_id = ?", song.ID))
}

func TestGetByFilter(t *testing.T) {
	s := newServices(t)
	ctx := context.Background()
	for i := 0; i < 7; i++ {
		s.addSong(t, fmt.Sprintf("Love %d", i), "Beatles")
	}
	s.addSong(t, "Love Hurts", "Nazareth")
	s.addSong(t, "Yesterday", "Beatles")

	page, err := s.songs.GetByFilter(ctx, SongFilter{Title: "love", Artist: "beat", Page: 2, Limit: 5})
	require.NoError(t, err)

	assert.EqualValues(t, 7, page.Pagination.Total)
	assert.Equal(t, 2, page.Pagination.Page)
	assert.Equal(t, 5, page.Pagination.Limit)
	require.Len(t, page.Items, 2)
	assert.Equal(t, "Love 5", page.Items[0].Title)
	assert.NotEmpty(t, page.Items[0].Artists)
}

func TestDeleteSong(t *testing.T) {
	s := newServices(t)
	ctx := context.Background()
	song := s.addSong(t, "Bye", "A")
	user := s.addUser(t, "u@example.com")
	_, err := s.users.AddFavoriteSong(ctx, user.ID, song.ID)
	require.NoError(t, err)

	ok, err := s.songs.Delete(ctx, song.ID)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Zero(t, s.count(t, &domain.Favorite{}))
	assert.Zero(t, s.count(t, &domain.SongArtist{}))

	ok, err = s.songs.Delete(ctx, song.ID)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestSongFindMatchesArtistName(t *testing.T) {
	s := newServices(t)
	s.addSong(t, "Halo", "Beyonce")
	s.addSong(t, "Umbrella", "Rihanna")

	songs, err := s.songs.Find(context.Background(), "BEYON")
	require.NoError(t, err)
	require.Len(t, songs, 1)
	assert.Equal(t, "Halo", songs[0].Title)
}
