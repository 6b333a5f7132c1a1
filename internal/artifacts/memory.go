package artifacts

import (
	"context"
	"sync"

	"github.com/joseph-karim/site-sense-architect/internal/models"
)

// MemoryStore keeps artifacts in process memory. Contents live from process
// start to exit and are not shared between processes. Artifacts are copied
// on the way in and out so stored records cannot be mutated by callers.
type MemoryStore struct {
	mu     sync.RWMutex
	byID   map[string]*models.Artifact
	bySlug map[string]string
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		byID:   make(map[string]*models.Artifact),
		bySlug: make(map[string]string),
	}
}

var (
	sharedStore     *MemoryStore
	sharedStoreOnce sync.Once
)

// Shared returns the process-wide MemoryStore.
func Shared() *MemoryStore {
	sharedStoreOnce.Do(func() {
		sharedStore = NewMemoryStore()
	})
	return sharedStore
}

func (s *MemoryStore) Create(ctx context.Context, input CreateInput) (*models.Artifact, error) {
	artifact, err := build(input)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	// Regenerate on the rare slug collision.
	for {
		if _, taken := s.bySlug[artifact.WebSlug]; !taken {
			break
		}
		artifact.WebSlug = NewSlug(input.Type, input.City, input.SlugParts...)
	}

	s.byID[artifact.ID] = artifact.Clone()
	s.bySlug[artifact.WebSlug] = artifact.ID

	return artifact, nil
}

func (s *MemoryStore) GetByID(ctx context.Context, id string) (*models.Artifact, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.byID[id].Clone(), nil
}

func (s *MemoryStore) GetBySlug(ctx context.Context, slug string) (*models.Artifact, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.bySlug[slug]
	if !ok {
		return nil, nil
	}
	return s.byID[id].Clone(), nil
}

// Len returns the number of stored artifacts.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.byID)
}
