// Package upload stages uploaded logs on disk and reads them back as text.
package upload

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/yildizm/mclogsum/internal/logger"
)

var (
	// ErrNotText is returned for uploads that are not valid UTF-8
	ErrNotText = errors.New("uploaded file is not UTF-8 text")
	// ErrTooLarge is returned when an upload exceeds the size limit
	ErrTooLarge = errors.New("uploaded file exceeds the size limit")
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// Store stages uploads in a temporary directory. Staged files never
// outlive the call that created them.
type Store struct {
	dir     string
	maxSize int64
	log     *logger.Logger
}

// NewStore creates the staging directory if needed. A maxSize of zero
// disables the size check.
func NewStore(dir string, maxSize int64, log *logger.Logger) (*Store, error) {
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, fmt.Errorf("creating temp directory: %w", err)
	}
	if log == nil {
		log = logger.New("upload", nil)
	}
	return &Store{dir: dir, maxSize: maxSize, log: log}, nil
}

// Dir returns the staging directory
func (s *Store) Dir() string {
	return s.dir
}

// ReadFileHeader stages a multipart file and returns its text
func (s *Store) ReadFileHeader(fh *multipart.FileHeader) (string, error) {
	if s.maxSize > 0 && fh.Size > s.maxSize {
		return "", ErrTooLarge
	}

	src, err := fh.Open()
	if err != nil {
		return "", fmt.Errorf("opening upload: %w", err)
	}
	defer src.Close()

	return s.ReadText(fh.Filename, src)
}

// ReadText copies r to a uuid-named temp file, reads it back and removes
// it. The file is removed on every path, including errors.
func (s *Store) ReadText(name string, r io.Reader) (string, error) {
	path := filepath.Join(s.dir, uuid.New().String())
	defer s.remove(path)

	if err := s.save(path, r); err != nil {
		return "", err
	}

	// #nosec G304 - path is built from the staging dir and a uuid
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("reading staged file: %w", err)
	}

	data = bytes.TrimPrefix(data, utf8BOM)
	if !utf8.Valid(data) {
		s.log.WarnWithFields("rejected non-text upload", []logger.Field{
			logger.F("name", name),
			logger.F("size", len(data)),
		})
		return "", ErrNotText
	}

	s.log.DebugWithFields("staged upload", []logger.Field{
		logger.F("name", name),
		logger.F("size", len(data)),
	})
	return string(data), nil
}

func (s *Store) save(path string, r io.Reader) error {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o600)
	if err != nil {
		return fmt.Errorf("creating staged file: %w", err)
	}
	defer f.Close()

	src := r
	if s.maxSize > 0 {
		src = io.LimitReader(r, s.maxSize+1)
	}

	n, err := io.Copy(f, src)
	if err != nil {
		return fmt.Errorf("writing staged file: %w", err)
	}
	if s.maxSize > 0 && n > s.maxSize {
		return ErrTooLarge
	}
	return nil
}

func (s *Store) remove(path string) {
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		s.log.WarnWithFields("failed to remove staged file", []logger.Field{
			logger.F("path", path),
			logger.Error(err),
		})
	}
}
