package service

import (
	"context"
	"testing"

	"music_library/internal/db/dbtest"
	"music_library/internal/domain"
	"music_library/internal/media"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// fakeDurations returns a fixed duration for every path
type fakeDurations struct {
	seconds *float64
	calls   int
}

func (p *fakeDurations) Duration(_ context.Context, _ string) *float64 {
	p.calls++
	return p.seconds
}

func seconds(v float64) *float64 { return &v }

func audioFile(name string) *media.File {
	return &media.File{
		Path:         "/tmp/" + name,
		URL:          "/public/uploads/audio/" + name,
		OriginalName: name,
		MIME:         "audio/mpeg",
	}
}

type services struct {
	db        *gorm.DB
	durations *fakeDurations
	artists   *ArtistService
	albums    *AlbumService
	songs     *SongService
	playlists *PlaylistService
	users     *UserService
}

func newServices(t *testing.T) *services {
	t.Helper()
	conn := dbtest.New(t)
	durations := &fakeDurations{seconds: seconds(183.45)}
	return &services{
		db:        conn,
		durations: durations,
		artists:   NewArtistService(conn),
		albums:    NewAlbumService(conn, durations),
		songs:     NewSongService(conn, durations),
		playlists: NewPlaylistService(conn),
		users:     NewUserService(conn),
	}
}

func (s *services) addSong(t *testing.T, title, artists string) *domain.Song {
	t.Helper()
	song, err := s.songs.AddSong(context.Background(), SongInput{
		Title:   title,
		Artists: artists,
		Audio:   audioFile(title + ".mp3"),
	})
	require.NoError(t, err)
	return song
}

func (s *services) addUser(t *testing.T, email string) *domain.User {
	t.Helper()
	user := &domain.User{Username: email, Email: email, PasswordHash: "x"}
	require.NoError(t, s.users.Create(context.Background(), user))
	return user
}

func (s *services) count(t *testing.T, model any, where ...any) int64 {
	t.Helper()
	var n int64
	q := s.db.Model(model)
	if len(where) > 0 {
		q = q.Where(where[0], where[1:]...)
	}
	require.NoError(t, q.Count(&n).Error)
	return n
}

func TestNormalizePage(t *testing.T) {
	page, limit := normalizePage(0, 0)
	assert.Equal(t, 1, page)
	assert.Equal(t, DefaultPageSize, limit)

	page, limit = normalizePage(3, 1000)
	assert.Equal(t, 3, page)
	assert.Equal(t, MaxPageSize, limit)
}

func TestTotalPages(t *testing.T) {
	assert.Equal(t, 0, totalPages(0, 5))
	assert.Equal(t, 1, totalPages(5, 5))
	assert.Equal(t, 3, totalPages(12, 5))
}

func TestUniqueIDs(t *testing.T) {
	assert.Equal(t, []uint{3, 1, 2}, uniqueIDs([]uint{3, 0, 1, 3, 2, 1}))
}
