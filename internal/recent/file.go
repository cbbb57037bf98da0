package recent

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// FileStore keeps recent roles in a JSON file.
type FileStore struct {
	mu   sync.Mutex
	path string
	max  int
}

// NewFileStore returns a store backed by path. The file is created on first Add.
func NewFileStore(path string, limit int) *FileStore {
	if limit <= 0 {
		limit = DefaultMax
	}
	return &FileStore{path: path, max: limit}
}

func (s *FileStore) List(_ context.Context) ([]Role, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.read()
}

func (s *FileStore) Add(_ context.Context, entry Entry) (Role, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	roles, err := s.read()
	if err != nil {
		return Role{}, err
	}

	role := NewRole(entry)
	if err := s.write(Prepend(roles, role, s.max)); err != nil {
		return Role{}, err
	}
	return role, nil
}

func (s *FileStore) read() ([]Role, error) {
	file, err := os.Open(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return []Role{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("opening recent roles file: %w", err)
	}
	defer file.Close()

	stat, err := file.Stat()
	if err != nil {
		return nil, fmt.Errorf("stat recent roles file: %w", err)
	}
	if stat.Size() == 0 {
		return []Role{}, nil
	}

	var roles []Role
	if err := json.NewDecoder(file).Decode(&roles); err != nil {
		return nil, fmt.Errorf("decoding recent roles file %s: %w", s.path, err)
	}
	return roles, nil
}

// write replaces the file atomically: roles go to a temp file in the same
// directory which is then renamed over the target.
func (s *FileStore) write(roles []Role) (err error) {
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating recent roles dir: %w", err)
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(s.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("creating temp recent roles file: %w", err)
	}
	defer func() {
		if err != nil {
			os.Remove(tmp.Name())
		}
	}()

	enc := json.NewEncoder(tmp)
	enc.SetIndent("", "  ")
	if err := enc.Encode(roles); err != nil {
		tmp.Close()
		return fmt.Errorf("encoding recent roles: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("closing temp recent roles file: %w", err)
	}
	if err := os.Chmod(tmp.Name(), 0o644); err != nil {
		return fmt.Errorf("setting recent roles file mode: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		return fmt.Errorf("replacing recent roles file: %w", err)
	}
	return nil
}
