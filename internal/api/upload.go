package api

import (
	"errors"   // Error inspection
	"net/http" // Missing file detection

	"music_library/internal/media" // Upload storage

	"github.com/gin-gonic/gin" // Gin web framework
)

// uploads collects the files saved for one request so they can be removed
// again when the request fails
type uploads struct {
	store *media.Store
	saved []*media.File
}

func newUploads(store *media.Store) *uploads {
	return &uploads{store: store}
}

// one saves the single file sent under field, or returns nil when none was sent
func (u *uploads) one(c *gin.Context, field string, kind media.Kind) (*media.File, error) {
	fh, err := c.FormFile(field)
	if errors.Is(err, http.ErrMissingFile) || errors.Is(err, http.ErrNotMultipart) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	f, err := u.store.Save(fh, kind)
	if err != nil {
		return nil, err
	}
	u.saved = append(u.saved, f)
	return f, nil
}

// many saves every file sent under field
func (u *uploads) many(c *gin.Context, field string, kind media.Kind) ([]*media.File, error) {
	form, err := c.MultipartForm()
	if errors.Is(err, http.ErrNotMultipart) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var files []*media.File
	for _, fh := range form.File[field] {
		f, err := u.store.Save(fh, kind)
		if err != nil {
			return nil, err
		}
		u.saved = append(u.saved, f)
		files = append(files, f)
	}
	return files, nil
}

// discard removes everything saved so far
func (u *uploads) discard() {
	u.store.Remove(u.saved...)
	u.saved = nil
}
