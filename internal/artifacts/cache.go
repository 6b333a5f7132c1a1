package artifacts

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/joseph-karim/site-sense-architect/internal/logger"
	"github.com/joseph-karim/site-sense-architect/internal/models"
)

const (
	cacheIDPrefix   = "artifact:id:"
	cacheSlugPrefix = "artifact:slug:"
)

// CachedStore is a read-through Redis cache in front of another Store.
// Artifacts are immutable, so cached entries never need invalidation and
// only expire by TTL. Redis failures are logged and fall through to the
// wrapped store.
type CachedStore struct {
	next   Store
	client *redis.Client
	ttl    time.Duration
	log    *logger.Logger
}

// NewCachedStore wraps next with a Redis cache.
func NewCachedStore(next Store, client *redis.Client, ttl time.Duration, log *logger.Logger) *CachedStore {
	return &CachedStore{
		next:   next,
		client: client,
		ttl:    ttl,
		log:    log.WithComponent("artifact_cache"),
	}
}

func (s *CachedStore) Create(ctx context.Context, input CreateInput) (*models.Artifact, error) {
	artifact, err := s.next.Create(ctx, input)
	if err != nil {
		return nil, err
	}
	s.put(ctx, artifact)
	return artifact, nil
}

func (s *CachedStore) GetByID(ctx context.Context, id string) (*models.Artifact, error) {
	if a := s.get(ctx, cacheIDPrefix+id); a != nil {
		return a, nil
	}

	artifact, err := s.next.GetByID(ctx, id)
	if err != nil || artifact == nil {
		return artifact, err
	}
	s.put(ctx, artifact)
	return artifact, nil
}

func (s *CachedStore) GetBySlug(ctx context.Context, slug string) (*models.Artifact, error) {
	if a := s.get(ctx, cacheSlugPrefix+slug); a != nil {
		return a, nil
	}

	artifact, err := s.next.GetBySlug(ctx, slug)
	if err != nil || artifact == nil {
		return artifact, err
	}
	s.put(ctx, artifact)
	return artifact, nil
}

func (s *CachedStore) get(ctx context.Context, key string) *models.Artifact {
	data, err := s.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil
	}
	if err != nil {
		s.log.Warn("Artifact cache read failed", map[string]interface{}{
			"key":   key,
			"error": err.Error(),
		})
		return nil
	}

	var a models.Artifact
	if err := json.Unmarshal(data, &a); err != nil {
		s.log.Warn("Discarding undecodable cache entry", map[string]interface{}{
			"key":   key,
			"error": err.Error(),
		})
		return nil
	}
	return &a
}

func (s *CachedStore) put(ctx context.Context, a *models.Artifact) {
	data, err := json.Marshal(a)
	if err != nil {
		s.log.Warn("Failed to encode artifact for cache", map[string]interface{}{
			"artifact_id": a.ID,
			"error":       err.Error(),
		})
		return
	}

	pipe := s.client.TxPipeline()
	pipe.Set(ctx, cacheIDPrefix+a.ID, data, s.ttl)
	pipe.Set(ctx, cacheSlugPrefix+a.WebSlug, data, s.ttl)
	if _, err := pipe.Exec(ctx); err != nil {
		s.log.Warn("Artifact cache write failed", map[string]interface{}{
			"artifact_id": a.ID,
			"error":       err.Error(),
		})
	}
}
