package analysis

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"

	"commitscribe/internal/fsutil"
)

const storeCacheSize = 32

// DiskStore keeps one JSON file per repository under a base directory,
// fronted by an in-memory LRU so repeated reads in one process skip
// the disk. Writes replace the whole file through a temp-and-rename.
type DiskStore struct {
	dir   string
	mu    sync.Mutex
	cache *lru.Cache[string, Analysis]
}

func NewDiskStore(dir string) (*DiskStore, error) {
	cache, err := lru.New[string, Analysis](storeCacheSize)
	if err != nil {
		return nil, err
	}
	return &DiskStore{dir: dir, cache: cache}, nil
}

func (s *DiskStore) path(key string) string {
	return filepath.Join(s.dir, key+".json")
}

// Get returns a copy of the stored analysis, or nil when none exists.
func (s *DiskStore) Get(key string) (*Analysis, error) {
	if a, ok := s.cache.Get(key); ok {
		return &a, nil
	}
	var a Analysis
	if err := fsutil.ReadJSON(s.path(key), &a); err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("analysis: read %s: %w", key, err)
	}
	s.cache.Add(key, a)
	return &a, nil
}

func (s *DiskStore) Put(key string, a *Analysis) error {
	if a == nil {
		return fmt.Errorf("analysis: refusing to store nil record for %s", key)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := fsutil.WriteJSONAtomic(s.path(key), a); err != nil {
		return fmt.Errorf("analysis: write %s: %w", key, err)
	}
	s.cache.Add(key, *a)
	return nil
}

func (s *DiskStore) Delete(key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cache.Remove(key)
	if err := os.Remove(s.path(key)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("analysis: delete %s: %w", key, err)
	}
	return nil
}
