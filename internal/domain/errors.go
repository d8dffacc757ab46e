package domain

import (
	"errors"  // Sentinel errors
	"strings" // Message joining
)

// Sentinel errors shared by services and handlers
var (
	ErrNotFound           = errors.New("not found")
	ErrConflict           = errors.New("already exists")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrForbidden          = errors.New("forbidden")
	ErrBlocked            = errors.New("account is blocked")
	ErrUserRequired       = errors.New("user_id is required for user playlists")
	ErrNoSongs            = errors.New("no songs found with the given song_ids")
	ErrAudioRequired      = errors.New("audio file is required")
)

// ValidationError carries one message per offending field
type ValidationError struct {
	Messages []string
}

func (e *ValidationError) Error() string {
	return strings.Join(e.Messages, "; ")
}

// NewValidationError builds a ValidationError from field messages
func NewValidationError(messages ...string) *ValidationError {
	return &ValidationError{Messages: messages}
}
