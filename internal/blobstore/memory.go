package blobstore

import (
	"context"
	"fmt"
	"path"
	"sort"
	"strings"
	"sync"
)

// MemoryStore is an in-process Store. Writes require the parent directory to
// exist, like a WebDAV server answering 409 for a missing collection.
type MemoryStore struct {
	mu    sync.RWMutex
	dirs  map[string]struct{}
	files map[string][]byte
}

func NewMemory() *MemoryStore {
	return &MemoryStore{
		dirs:  map[string]struct{}{"/": {}},
		files: map[string][]byte{},
	}
}

func (s *MemoryStore) EnsureDir(ctx context.Context, dir string) DirResult {
	dir = Clean(dir)
	if err := ctx.Err(); err != nil {
		return failed(dir, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.dirs[dir]; ok {
		return existed(dir)
	}
	if _, ok := s.dirs[path.Dir(dir)]; !ok {
		return failed(dir, fmt.Errorf("parent of %s does not exist", dir))
	}
	s.dirs[dir] = struct{}{}
	return created(dir)
}

func (s *MemoryStore) Write(ctx context.Context, p string, data []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	p = Clean(p)

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.dirs[path.Dir(p)]; !ok {
		return fmt.Errorf("write %s: parent collection missing", p)
	}
	s.files[p] = append([]byte(nil), data...)
	return nil
}

func (s *MemoryStore) Read(ctx context.Context, p string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	p = Clean(p)

	s.mu.RLock()
	defer s.mu.RUnlock()

	data, ok := s.files[p]
	if !ok {
		return nil, fmt.Errorf("%s: %w", p, ErrNotExist)
	}
	return append([]byte(nil), data...), nil
}

func (s *MemoryStore) List(ctx context.Context, prefix string) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	prefix = Clean(prefix)

	s.mu.RLock()
	defer s.mu.RUnlock()

	out := []string{}
	for p := range s.files {
		if prefix == "/" || strings.HasPrefix(p, prefix+"/") {
			out = append(out, p)
		}
	}
	sort.Strings(out)
	return out, nil
}

// Delete removes a file. Only tests use it, to simulate bytes lost behind a
// database row.
func (s *MemoryStore) Delete(p string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.files, Clean(p))
}
