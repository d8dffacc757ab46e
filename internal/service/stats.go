package service

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// Counter is implemented by every service that can count its rows
type Counter interface {
	CountAll(ctx context.Context) (int64, error)
}

// Stats holds the admin dashboard totals
type Stats struct {
	TotalSongs   int64 `json:"totalSongs"`
	TotalUsers   int64 `json:"totalUsers"`
	TotalAlbums  int64 `json:"totalAlbums"`
	TotalArtists int64 `json:"totalArtists"`
}

// StatsService gathers row totals
type StatsService struct {
	songs, users, albums, artists Counter
}

// NewStatsService creates a StatsService
func NewStatsService(songs, users, albums, artists Counter) *StatsService {
	return &StatsService{songs: songs, users: users, albums: albums, artists: artists}
}

// Totals counts every entity concurrently. Any failing count fails the call.
func (s *StatsService) Totals(ctx context.Context) (*Stats, error) {
	var st Stats
	g, ctx := errgroup.WithContext(ctx)
	count := func(c Counter, dst *int64) {
		g.Go(func() error {
			n, err := c.CountAll(ctx)
			if err != nil {
				return err
			}
			*dst = n
			return nil
		})
	}
	count(s.songs, &st.TotalSongs)
	count(s.users, &st.TotalUsers)
	count(s.albums, &st.TotalAlbums)
	count(s.artists, &st.TotalArtists)
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return &st, nil
}
