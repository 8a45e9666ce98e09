package project

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	werrors "github.com/matzehuels/worksite/pkg/errors"
)

// Store reads and writes named resources of packs. Paths are slash
// separated and relative to the pack root.
type Store interface {
	Read(ctx context.Context, pack, path string) ([]byte, error)
	Write(ctx context.Context, pack, path string, data []byte) error

	// List returns the locations (paths without folder prefix and .json
	// extension) of every resource under folder, sorted.
	List(ctx context.Context, pack, folder string) ([]string, error)
}

func notFound(pack, p string) error {
	return werrors.New(werrors.ErrCodeNotFound, "resource %s:%s not found", pack, p)
}

// FileStore keeps each pack in a directory under root.
type FileStore struct {
	mu   sync.RWMutex
	root string
}

// NewFileStore creates root if needed.
func NewFileStore(root string) (*FileStore, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("create project dir: %w", err)
	}
	return &FileStore{root: root}, nil
}

func (s *FileStore) file(pack, p string) (string, error) {
	if err := werrors.ValidatePack(pack); err != nil {
		return "", err
	}
	if err := werrors.ValidateLocation(p); err != nil {
		return "", err
	}
	return filepath.Join(s.root, pack, filepath.FromSlash(p)), nil
}

func (s *FileStore) Read(_ context.Context, pack, p string) ([]byte, error) {
	file, err := s.file(pack, p)
	if err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	data, err := os.ReadFile(file)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, notFound(pack, p)
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", file, err)
	}
	return data, nil
}

func (s *FileStore) Write(_ context.Context, pack, p string, data []byte) error {
	file, err := s.file(pack, p)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.MkdirAll(filepath.Dir(file), 0o755); err != nil {
		return fmt.Errorf("create dir: %w", err)
	}
	if err := os.WriteFile(file, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", file, err)
	}
	return nil
}

func (s *FileStore) List(_ context.Context, pack, folder string) ([]string, error) {
	dir, err := s.file(pack, folder)
	if err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	var locations []string
	err = filepath.WalkDir(dir, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return fs.SkipAll
			}
			return err
		}
		if d.IsDir() || filepath.Ext(p) != ".json" {
			return nil
		}
		rel, err := filepath.Rel(dir, p)
		if err != nil {
			return err
		}
		locations = append(locations, strings.TrimSuffix(filepath.ToSlash(rel), ".json"))
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", folder, err)
	}
	sort.Strings(locations)
	return locations, nil
}

// trimLocation turns a pack path under folder into a location.
func trimLocation(folder, p string) (string, bool) {
	rel, ok := strings.CutPrefix(p, path.Clean(folder)+"/")
	if !ok || path.Ext(rel) != ".json" {
		return "", false
	}
	return strings.TrimSuffix(rel, ".json"), true
}

var _ Store = (*FileStore)(nil)
