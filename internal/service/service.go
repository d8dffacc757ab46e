// Package service holds the entity services of the music library.
// Each service is a thin layer of queries over the relational store;
// lookups by id return (nil, nil) when nothing matches.
package service

import (
	"errors"  // Error matching
	"strings" // String manipulation

	"music_library/internal/domain" // Domain models

	"gorm.io/gorm"        // GORM ORM library
	"gorm.io/gorm/clause" // SQL clauses for upserts
)

// SearchLimit caps every category of a search
const SearchLimit = 10

// Default and maximum page sizes for paginated listings
const (
	DefaultPageSize = 10
	MaxPageSize     = 100
)

// PageMetadata describes one page of an offset-paginated listing
type PageMetadata struct {
	TotalRecords int64 `json:"totalRecords"`
	Page         int   `json:"page"`
	Limit        int   `json:"limit"`
	TotalPages   int   `json:"totalPages"`
}

// normalizePage clamps page and limit to usable values
func normalizePage(page, limit int) (int, int) {
	if page < 1 {
		page = 1 // Pages are 1-based
	}
	if limit < 1 {
		limit = DefaultPageSize
	}
	if limit > MaxPageSize {
		limit = MaxPageSize // Cap oversized pages
	}
	return page, limit
}

// totalPages is ceil(total/limit)
func totalPages(total int64, limit int) int {
	return int((total + int64(limit) - 1) / int64(limit))
}

// containsPattern builds a lowercase LIKE pattern matching s anywhere
func containsPattern(s string) string {
	return "%" + strings.ToLower(strings.TrimSpace(s)) + "%"
}

// ignoreConflict makes an insert a no-op when a unique key already exists
func ignoreConflict(tx *gorm.DB) *gorm.DB {
	return tx.Clauses(clause.OnConflict{DoNothing: true})
}

// translate maps store errors onto domain errors
func translate(err error) error {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return domain.ErrConflict
	}
	return err
}

// notFound reports whether err means "no row"
func notFound(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}

// artistColumns restricts preloaded contributing artists to {id, name}
func artistColumns(tx *gorm.DB) *gorm.DB {
	return tx.Select("artists.id", "artists.name").Order("artists.id")
}

// uniqueIDs drops zero and repeated ids, keeping first-seen order
func uniqueIDs(ids []uint) []uint {
	seen := make(map[uint]bool, len(ids))
	out := make([]uint, 0, len(ids))
	for _, id := range ids {
		if id == 0 || seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out
}
