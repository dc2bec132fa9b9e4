package upload

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path"
	"path/filepath"

	"askmate/internal/observability"
)

// URLPrefix is the public path uploaded files are served under.
const URLPrefix = "/uploads/"

// ErrInvalidName is returned for names that would escape the upload directory.
var ErrInvalidName = errors.New("upload: invalid file name")

// Store writes uploaded files into a single local directory.
type Store struct {
	dir string
}

// NewStore returns a Store rooted at dir. The directory is created on first save.
func NewStore(dir string) *Store {
	return &Store{dir: dir}
}

// Dir returns the directory files are written to.
func (s *Store) Dir() string {
	return s.dir
}

// Save copies the uploaded file to <dir>/<name> and returns its public path.
// Nothing is cleaned up if a later step of the request fails.
func (s *Store) Save(fh *multipart.FileHeader, name string) (string, error) {
	if name == "" || name != filepath.Base(name) || name == "." || name == ".." {
		return "", ErrInvalidName
	}

	src, err := fh.Open()
	if err != nil {
		return "", fmt.Errorf("open upload: %w", err)
	}
	defer func() { _ = src.Close() }()

	if err := os.MkdirAll(s.dir, 0o750); err != nil {
		return "", fmt.Errorf("create upload dir: %w", err)
	}

	dst, err := os.OpenFile(filepath.Join(s.dir, name), os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o640)
	if err != nil {
		return "", fmt.Errorf("create upload file: %w", err)
	}

	if _, err := io.Copy(dst, src); err != nil {
		_ = dst.Close()
		return "", fmt.Errorf("write upload file: %w", err)
	}
	if err := dst.Close(); err != nil {
		return "", fmt.Errorf("close upload file: %w", err)
	}

	observability.UploadsStored.Inc()
	return path.Join(URLPrefix, name), nil
}
