package files

import (
	"context"
	"time"

	"github.com/dmitrijs2005/shareme/internal/server/models"
	"github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	cacheHits = promauto.NewCounter(prometheus.CounterOpts{
		Name: "shareme_metadata_cache_hits_total",
		Help: "Metadata lookups served from the in-process cache.",
	})
	cacheMisses = promauto.NewCounter(prometheus.CounterOpts{
		Name: "shareme_metadata_cache_misses_total",
		Help: "Metadata lookups that went to the backing repository.",
	})
)

// CachedRepository decorates a Repository with an expiring LRU cache for
// FindByID. Records are cloned on the way in and out so callers never share
// cached pointers.
type CachedRepository struct {
	next  Repository
	cache *expirable.LRU[string, *models.File]
	guard *fillGuard
}

// NewCachedRepository wraps next with a cache of at most size entries that
// expire after ttl (0 means no expiry).
func NewCachedRepository(next Repository, size int, ttl time.Duration) *CachedRepository {
	return &CachedRepository{
		next:  next,
		cache: expirable.NewLRU[string, *models.File](size, nil, ttl),
		guard: newFillGuard(),
	}
}

func (r *CachedRepository) Create(ctx context.Context, file *models.File) (*models.File, error) {
	created, err := r.next.Create(ctx, file)
	if err != nil {
		return nil, err
	}
	r.cache.Add(created.ID, created.Clone())
	return created, nil
}

func (r *CachedRepository) FindByID(ctx context.Context, id string) (*models.File, error) {
	if f, ok := r.cache.Get(id); ok {
		cacheHits.Inc()
		return f.Clone(), nil
	}
	cacheMisses.Inc()

	fl := r.guard.begin(id)
	f, err := r.next.FindByID(ctx, id)
	if err != nil {
		r.guard.finish(id, fl, nil)
		return nil, err
	}
	r.guard.finish(id, fl, func() { r.cache.Add(id, f.Clone()) })
	return f, nil
}

// Save writes through to the backing repository and then refreshes the
// cached entry. On failure the entry is dropped so the next read reloads the
// stored state. Misses still loading when Save returns are not cached.
func (r *CachedRepository) Save(ctx context.Context, file *models.File) error {
	err := r.next.Save(ctx, file)
	r.guard.invalidate(file.ID, func() {
		if err != nil {
			r.cache.Remove(file.ID)
			return
		}
		if cached, ok := r.cache.Peek(file.ID); ok {
			updated := cached.Clone()
			c := file.Clone()
			updated.Sender, updated.Receiver = c.Sender, c.Receiver
			r.cache.Add(file.ID, updated)
		}
	})
	return err
}

func (r *CachedRepository) Ping(ctx context.Context) error {
	return r.next.Ping(ctx)
}

// Len reports the number of cached records.
func (r *CachedRepository) Len() int {
	return r.cache.Len()
}
