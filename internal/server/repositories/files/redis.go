package files

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/dmitrijs2005/shareme/internal/logging"
	"github.com/dmitrijs2005/shareme/internal/server/models"
	"github.com/redis/go-redis/v9"
)

const redisKeyPrefix = "shareme:file:"

// redisAPI is the subset of *redis.Client used by RedisCachedRepository.
type redisAPI interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value any, expiration time.Duration) *redis.StatusCmd
	Del(ctx context.Context, keys ...string) *redis.IntCmd
}

// NewRedisClient opens a client for the shared metadata cache.
func NewRedisClient(addr, password string, db int) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
}

type redisRecord struct {
	ID          string    `json:"id"`
	Filename    string    `json:"filename"`
	SizeInBytes int64     `json:"size_in_bytes"`
	Format      string    `json:"format"`
	SecureURL   string    `json:"secure_url"`
	Sender      *string   `json:"sender,omitempty"`
	Receiver    *string   `json:"receiver,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func toRedisRecord(f *models.File) redisRecord {
	return redisRecord{
		ID:          f.ID,
		Filename:    f.Filename,
		SizeInBytes: f.SizeInBytes,
		Format:      f.Format,
		SecureURL:   f.SecureURL,
		Sender:      f.Sender,
		Receiver:    f.Receiver,
		CreatedAt:   f.CreatedAt,
		UpdatedAt:   f.UpdatedAt,
	}
}

func (r redisRecord) file() *models.File {
	return &models.File{
		ID:          r.ID,
		Filename:    r.Filename,
		SizeInBytes: r.SizeInBytes,
		Format:      r.Format,
		SecureURL:   r.SecureURL,
		Sender:      r.Sender,
		Receiver:    r.Receiver,
		CreatedAt:   r.CreatedAt,
		UpdatedAt:   r.UpdatedAt,
	}
}

// RedisCachedRepository is a read-through cache shared between server
// replicas. Cache failures are logged and fall back to the backing
// repository; they never fail a request.
type RedisCachedRepository struct {
	next   Repository
	client redisAPI
	ttl    time.Duration
	logger logging.Logger
	guard  *fillGuard
}

func NewRedisCachedRepository(next Repository, client redisAPI, ttl time.Duration, logger logging.Logger) *RedisCachedRepository {
	return &RedisCachedRepository{next: next, client: client, ttl: ttl, logger: logger, guard: newFillGuard()}
}

func (r *RedisCachedRepository) key(id string) string {
	return redisKeyPrefix + id
}

func (r *RedisCachedRepository) put(ctx context.Context, f *models.File) {
	data, err := json.Marshal(toRedisRecord(f))
	if err != nil {
		r.logger.Warn(ctx, "cache encode failed", "id", f.ID, "error", err)
		return
	}
	if err := r.client.Set(ctx, r.key(f.ID), data, r.ttl).Err(); err != nil {
		r.logger.Warn(ctx, "cache write failed", "id", f.ID, "error", err)
	}
}

func (r *RedisCachedRepository) Create(ctx context.Context, file *models.File) (*models.File, error) {
	created, err := r.next.Create(ctx, file)
	if err != nil {
		return nil, err
	}
	r.put(ctx, created)
	return created, nil
}

func (r *RedisCachedRepository) FindByID(ctx context.Context, id string) (*models.File, error) {
	data, err := r.client.Get(ctx, r.key(id)).Bytes()
	switch {
	case err == nil:
		var rec redisRecord
		if err := json.Unmarshal(data, &rec); err == nil {
			cacheHits.Inc()
			return rec.file(), nil
		}
		r.logger.Warn(ctx, "cache entry corrupt", "id", id)
	case !errors.Is(err, redis.Nil):
		r.logger.Warn(ctx, "cache read failed", "id", id, "error", err)
	}
	cacheMisses.Inc()

	fl := r.guard.begin(id)
	f, err := r.next.FindByID(ctx, id)
	if err != nil {
		r.guard.finish(id, fl, nil)
		return nil, err
	}
	r.guard.finish(id, fl, func() { r.put(ctx, f) })
	return f, nil
}

// Save writes through and then drops the cached entry. Misses of this
// process still loading at that point are not cached; fills racing from
// other replicas are bounded by the TTL.
func (r *RedisCachedRepository) Save(ctx context.Context, file *models.File) error {
	err := r.next.Save(ctx, file)
	r.guard.invalidate(file.ID, func() {
		if delErr := r.client.Del(ctx, r.key(file.ID)).Err(); delErr != nil {
			r.logger.Warn(ctx, "cache invalidate failed", "id", file.ID, "error", delErr)
		}
	})
	return err
}

func (r *RedisCachedRepository) Ping(ctx context.Context) error {
	return r.next.Ping(ctx)
}
