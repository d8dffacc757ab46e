package media

import (
	"errors"         // Sentinel errors
	"fmt"            // Error wrapping
	"io"             // Reading headers
	"mime/multipart" // Uploaded file headers
	"os"             // Filesystem
	"path"           // URL joining
	"path/filepath"  // Disk paths
	"strings"        // Name handling

	"github.com/google/uuid"    // Collision-free stored names
	"github.com/h2non/filetype" // Content sniffing
)

// Kind groups uploads by the directory and content they accept
type Kind string

const (
	KindImage Kind = "images" // Covers and avatars
	KindAudio Kind = "audio"  // Song audio
)

// Upload errors surfaced to callers as validation failures
var (
	ErrUnsupportedType = errors.New("unsupported file type")
	ErrTooLarge        = errors.New("file too large")
)

var allowedMIME = map[Kind][]string{
	KindImage: {"image/jpeg", "image/png", "image/webp"},
	KindAudio: {"audio/mpeg", "audio/x-wav"},
}

// File is an uploaded file after it has been written to disk
type File struct {
	Path         string // Location on disk, used for tag reading
	URL          string // Public path stored in the database
	OriginalName string // Name the client sent
	MIME         string // Sniffed content type
}

// CleanTitle derives a song title from the original file name
func (f File) CleanTitle() string {
	base := filepath.Base(strings.ReplaceAll(f.OriginalName, "\\", "/"))
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// Store writes uploads beneath a root directory
type Store struct {
	Root      string // Directory on disk
	URLPrefix string // Public prefix the directory is served under
	MaxBytes  int64  // Per-file limit
}

// NewStore creates a store rooted at dir, served under urlPrefix
func NewStore(dir, urlPrefix string, maxMB int64) *Store {
	return &Store{Root: dir, URLPrefix: urlPrefix, MaxBytes: maxMB << 20}
}

// Save checks the size and sniffed type of an upload and copies it to disk
func (s *Store) Save(fh *multipart.FileHeader, kind Kind) (*File, error) {
	if s.MaxBytes > 0 && fh.Size > s.MaxBytes {
		return nil, fmt.Errorf("%s: %w", fh.Filename, ErrTooLarge)
	}
	src, err := fh.Open()
	if err != nil {
		return nil, fmt.Errorf("opening upload: %w", err)
	}
	defer src.Close()

	head := make([]byte, 261) // filetype only needs the first 261 bytes
	n, err := io.ReadFull(src, head)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("reading upload: %w", err)
	}
	t, err := filetype.Match(head[:n])
	if err != nil || !accepts(kind, t.MIME.Value) {
		return nil, fmt.Errorf("%s: %w", fh.Filename, ErrUnsupportedType)
	}

	dir := filepath.Join(s.Root, string(kind))
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating upload dir: %w", err)
	}
	name := uuid.NewString() + "." + t.Extension
	dst := filepath.Join(dir, name)
	if err := writeFile(dst, head[:n], src); err != nil {
		return nil, err
	}

	return &File{
		Path:         dst,
		URL:          path.Join(s.URLPrefix, string(kind), name),
		OriginalName: fh.Filename,
		MIME:         t.MIME.Value,
	}, nil
}

// writeFile stores the already sniffed head followed by the rest of src at
// target. A failed write leaves nothing behind.
func writeFile(target string, head []byte, src io.Reader) error {
	dst, err := os.Create(target)
	if err != nil {
		return fmt.Errorf("creating upload: %w", err)
	}
	_, err = dst.Write(head)
	if err == nil {
		_, err = io.Copy(dst, src)
	}
	if cerr := dst.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		_ = os.Remove(target) // Drop the partial file
		return fmt.Errorf("writing upload: %w", err)
	}
	return nil
}

// Remove deletes stored files, ignoring ones already gone
func (s *Store) Remove(files ...*File) {
	for _, f := range files {
		if f != nil {
			_ = os.Remove(f.Path)
		}
	}
}

func accepts(kind Kind, mime string) bool {
	for _, m := range allowedMIME[kind] {
		if m == mime {
			return true
		}
	}
	return false
}
