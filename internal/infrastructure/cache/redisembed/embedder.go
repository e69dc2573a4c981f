// Package redisembed caches embeddings in Redis in front of any embedder.
package redisembed

import (
	"context"
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/kirillkom/panchayat-sahayika/internal/core/ports"
)

const keyPrefix = "sahayika:emb:"

// ErrMiss is returned by a store when the key is absent.
var ErrMiss = errors.New("cache miss")

type store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
}

// CacheObserver counts cache hits and misses.
type CacheObserver interface {
	ObserveEmbeddingCache(result string, n int)
}

// CachedEmbedder serves repeated texts from the cache. Cache errors are logged
// and fall through to the inner embedder.
type CachedEmbedder struct {
	inner     ports.Embedder
	store     store
	namespace string
	observer  CacheObserver
}

// New wraps inner. namespace separates vectors of different models.
func New(inner ports.Embedder, s store, namespace string, observer CacheObserver) *CachedEmbedder {
	return &CachedEmbedder{inner: inner, store: s, namespace: namespace, observer: observer}
}

func (c *CachedEmbedder) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}
	out := make([][]float32, len(texts))
	var missIdx []int
	var missTexts []string
	for i, text := range texts {
		if vec, ok := c.get(ctx, c.key(text)); ok {
			out[i] = vec
			continue
		}
		missIdx = append(missIdx, i)
		missTexts = append(missTexts, text)
	}
	c.observe("hit", len(texts)-len(missTexts))
	c.observe("miss", len(missTexts))
	if len(missTexts) == 0 {
		return out, nil
	}

	vectors, err := c.inner.Embed(ctx, missTexts)
	if err != nil {
		return nil, fmt.Errorf("embed texts: %w", err)
	}
	if len(vectors) != len(missTexts) {
		return nil, fmt.Errorf("embed texts: vectors/texts mismatch: %d/%d", len(vectors), len(missTexts))
	}
	for j, idx := range missIdx {
		out[idx] = vectors[j]
		c.put(ctx, c.key(missTexts[j]), vectors[j])
	}
	return out, nil
}

func (c *CachedEmbedder) EmbedQuery(ctx context.Context, text string) ([]float32, error) {
	key := c.key(text)
	if vec, ok := c.get(ctx, key); ok {
		c.observe("hit", 1)
		return vec, nil
	}
	c.observe("miss", 1)
	vec, err := c.inner.EmbedQuery(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}
	c.put(ctx, key, vec)
	return vec, nil
}

func (c *CachedEmbedder) key(text string) string {
	h := sha256.Sum256([]byte(text))
	return keyPrefix + c.namespace + ":" + hex.EncodeToString(h[:])
}

func (c *CachedEmbedder) get(ctx context.Context, key string) ([]float32, bool) {
	data, err := c.store.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, ErrMiss) {
			slog.Warn("embedding_cache_get_failed", "key", key, "error", err)
		}
		return nil, false
	}
	vec, err := bytesToVector(data)
	if err != nil || len(vec) == 0 {
		slog.Warn("embedding_cache_corrupt", "key", key, "error", err)
		return nil, false
	}
	return vec, true
}

func (c *CachedEmbedder) put(ctx context.Context, key string, vec []float32) {
	if err := c.store.Set(ctx, key, vectorToBytes(vec)); err != nil {
		slog.Warn("embedding_cache_set_failed", "key", key, "error", err)
	}
}

func (c *CachedEmbedder) observe(result string, n int) {
	if c.observer != nil && n > 0 {
		c.observer.ObserveEmbeddingCache(result, n)
	}
}

func vectorToBytes(v []float32) []byte {
	buf := make([]byte, len(v)*4)
	for i, f := range v {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(f))
	}
	return buf
}

func bytesToVector(data []byte) ([]float32, error) {
	if len(data)%4 != 0 {
		return nil, fmt.Errorf("invalid embedding cache data: len=%d (not multiple of 4)", len(data))
	}
	vec := make([]float32, len(data)/4)
	for i := range vec {
		vec[i] = math.Float32frombits(binary.LittleEndian.Uint32(data[i*4:]))
	}
	return vec, nil
}

// RedisStore is the go-redis backed store.
type RedisStore struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewRedisStore(rdb *redis.Client, ttl time.Duration) *RedisStore {
	return &RedisStore{rdb: rdb, ttl: ttl}
}

func (s *RedisStore) Get(ctx context.Context, key string) ([]byte, error) {
	val, err := s.rdb.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrMiss
	}
	return val, err
}

func (s *RedisStore) Set(ctx context.Context, key string, value []byte) error {
	return s.rdb.Set(ctx, key, value, s.ttl).Err()
}
