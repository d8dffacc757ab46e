package media

import (
	"bytes"
	"context"
	"errors"
	"io"
	"mime/multipart"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"testing/iotest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fileHeader builds a multipart header the way gin hands one to a handler
func fileHeader(t *testing.T, name string, content []byte) *multipart.FileHeader {
	t.Helper()

	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	part, err := w.CreateFormFile("upload", name)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, w.Close())

	req := httptest.NewRequest("POST", "/", &body)
	req.Header.Set("Content-Type", w.FormDataContentType())
	require.NoError(t, req.ParseMultipartForm(1<<20))
	return req.MultipartForm.File["upload"][0]
}

func mp3Bytes() []byte {
	return append([]byte("ID3\x04\x00\x00\x00\x00\x00\x00"), bytes.Repeat([]byte{0}, 512)...)
}

func TestStoreSave(t *testing.T) {
	t.Run("AcceptsAudio", func(t *testing.T) {
		store := NewStore(t.TempDir(), "/public/uploads", 1)

		f, err := store.Save(fileHeader(t, "My Song.mp3", mp3Bytes()), KindAudio)
		require.NoError(t, err)

		assert.Equal(t, "audio/mpeg", f.MIME)
		assert.Equal(t, "My Song.mp3", f.OriginalName)
		assert.Contains(t, f.URL, "/public/uploads/audio/")
		data, err := os.ReadFile(f.Path)
		require.NoError(t, err)
		assert.Equal(t, mp3Bytes(), data)
	})

	t.Run("RejectsWrongKind", func(t *testing.T) {
		store := NewStore(t.TempDir(), "/public/uploads", 1)

		_, err := store.Save(fileHeader(t, "notes.mp3", []byte("just some text")), KindAudio)
		assert.ErrorIs(t, err, ErrUnsupportedType)

		_, err = store.Save(fileHeader(t, "cover.jpg", mp3Bytes()), KindImage)
		assert.ErrorIs(t, err, ErrUnsupportedType)
	})

	t.Run("RejectsOversized", func(t *testing.T) {
		store := &Store{Root: t.TempDir(), URLPrefix: "/u", MaxBytes: 16}

		_, err := store.Save(fileHeader(t, "big.mp3", mp3Bytes()), KindAudio)
		assert.ErrorIs(t, err, ErrTooLarge)
	})

	t.Run("Remove", func(t *testing.T) {
		store := NewStore(t.TempDir(), "/u", 1)
		f, err := store.Save(fileHeader(t, "a.mp3", mp3Bytes()), KindAudio)
		require.NoError(t, err)

		store.Remove(f, nil)
		_, err = os.Stat(f.Path)
		assert.True(t, os.IsNotExist(err))
	})
}

func TestWriteFileRemovesPartialFile(t *testing.T) {
	target := filepath.Join(t.TempDir(), "partial.mp3")
	src := io.MultiReader(bytes.NewReader([]byte("rest of the")), iotest.ErrReader(errors.New("connection reset")))

	err := writeFile(target, mp3Bytes(), src)
	assert.ErrorContains(t, err, "connection reset")
	_, statErr := os.Stat(target)
	assert.True(t, os.IsNotExist(statErr))
}

func TestCleanTitle(t *testing.T) {
	cases := map[string]string{
		"Hotline Bling.mp3":    "Hotline Bling",
		"dir/sub/track.01.wav": "track.01",
		`C:\music\Intro.mp3`:   "Intro",
		"no-extension":         "no-extension",
	}
	for in, want := range cases {
		assert.Equal(t, want, File{OriginalName: in}.CleanTitle(), in)
	}
}

func TestRoundDuration(t *testing.T) {
	d := RoundDuration(187.456)
	require.NotNil(t, d)
	assert.Equal(t, 187.46, *d)

	assert.Nil(t, RoundDuration(0))
	assert.Nil(t, RoundDuration(-3))
}

func TestTaglibReaderUnreadable(t *testing.T) {
	path := filepath.Join(t.TempDir(), "broken.mp3")
	require.NoError(t, os.WriteFile(path, []byte("not audio"), 0o644))

	assert.Nil(t, TaglibReader{}.Duration(context.Background(), path))
}
