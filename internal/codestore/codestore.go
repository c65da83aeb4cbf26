// Package codestore keeps submitted code bodies as files named after the
// submission id.
package codestore

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// DefaultExt is the file extension given to stored code.
const DefaultExt = ".py"

// ErrInvalidID is returned for ids that cannot be used as a file name.
var ErrInvalidID = errors.New("invalid submission id")

// FileStore writes code files into a single directory.
type FileStore struct {
	dir string
	ext string
}

// NewFileStore creates dir if needed and returns a store writing <id><ext> files into it.
func NewFileStore(dir, ext string) (*FileStore, error) {
	if ext == "" {
		ext = DefaultExt
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create code dir: %w", err)
	}
	return &FileStore{dir: dir, ext: ext}, nil
}

// Path returns the file that holds the code of id.
func (s *FileStore) Path(id string) (string, error) {
	if id == "" || id == "." || id == ".." || strings.ContainsAny(id, `/\`) {
		return "", fmt.Errorf("%w: %q", ErrInvalidID, id)
	}
	return filepath.Join(s.dir, id+s.ext), nil
}

// Save writes code for id. An existing file is never overwritten.
func (s *FileStore) Save(id, code string) error {
	path, err := s.Path(id)
	if err != nil {
		return err
	}
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return fmt.Errorf("create code file: %w", err)
	}
	if _, err := f.WriteString(code); err != nil {
		f.Close()
		_ = os.Remove(path)
		return fmt.Errorf("write code file: %w", err)
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(path)
		return fmt.Errorf("close code file: %w", err)
	}
	return nil
}

// Remove deletes the code of id. Removing a missing file is not an error.
func (s *FileStore) Remove(id string) error {
	path, err := s.Path(id)
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("remove code file: %w", err)
	}
	return nil
}
