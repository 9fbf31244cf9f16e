package snapshot

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"podboost/internal/fileutil"
	"podboost/internal/textutil"
)

// Store persists the current and previous page snapshot per fetch source.
// Only the two most recent captures are kept; there is no history.
type Store struct {
	dir string
}

// NewStore creates the snapshot directory if needed and returns a store
// rooted there.
func NewStore(dir string) (*Store, error) {
	if strings.TrimSpace(dir) == "" {
		return nil, errors.New("snapshot directory required")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create snapshot directory: %w", err)
	}
	return &Store{dir: dir}, nil
}

// Dir returns the directory backing the store.
func (s *Store) Dir() string {
	return s.dir
}

// WriteCurrent atomically replaces the current snapshot for source.
func (s *Store) WriteCurrent(source, content string) error {
	return fileutil.WriteFileAtomic(s.currentPath(source), []byte(content), 0o644)
}

// Current returns the current snapshot content. The boolean reports whether
// a snapshot exists.
func (s *Store) Current(source string) (string, bool, error) {
	return s.read(s.currentPath(source))
}

// Previous returns the previous snapshot content. The boolean reports
// whether a previous capture exists, which is false on the first check.
func (s *Store) Previous(source string) (string, bool, error) {
	return s.read(s.previousPath(source))
}

// Rotate promotes the current snapshot to previous. The current file is
// left in place so the latest capture stays inspectable.
func (s *Store) Rotate(source string) error {
	content, ok, err := s.Current(source)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("no current snapshot for %q", source)
	}
	return fileutil.WriteFileAtomic(s.previousPath(source), []byte(content), 0o644)
}

func (s *Store) read(path string) (string, bool, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("read snapshot: %w", err)
	}
	return string(data), true, nil
}

func (s *Store) currentPath(source string) string {
	return filepath.Join(s.dir, textutil.SanitizeToken(source)+"_current.txt")
}

func (s *Store) previousPath(source string) string {
	return filepath.Join(s.dir, textutil.SanitizeToken(source)+"_previous.txt")
}
