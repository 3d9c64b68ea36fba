package files

import (
	"context"
	"sync"
	"time"

	"github.com/dmitrijs2005/shareme/internal/common"
	"github.com/dmitrijs2005/shareme/internal/server/models"
	"github.com/google/uuid"
)

// MemoryRepository keeps records in process memory. Intended for local
// development and tests; contents are lost on restart.
type MemoryRepository struct {
	mu    sync.RWMutex
	files map[string]*models.File
	now   func() time.Time
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		files: make(map[string]*models.File),
		now:   time.Now,
	}
}

func (r *MemoryRepository) Create(ctx context.Context, file *models.File) (*models.File, error) {
	stored := file.Clone()
	stored.ID = uuid.NewString()
	stored.CreatedAt = r.now().UTC()
	stored.UpdatedAt = stored.CreatedAt

	r.mu.Lock()
	r.files[stored.ID] = stored
	r.mu.Unlock()

	return stored.Clone(), nil
}

func (r *MemoryRepository) FindByID(ctx context.Context, id string) (*models.File, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	f, ok := r.files[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	return f.Clone(), nil
}

func (r *MemoryRepository) Save(ctx context.Context, file *models.File) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	f, ok := r.files[file.ID]
	if !ok {
		return common.ErrorNotFound
	}
	c := file.Clone()
	f.Sender = c.Sender
	f.Receiver = c.Receiver
	f.UpdatedAt = r.now().UTC()
	return nil
}

func (r *MemoryRepository) Ping(ctx context.Context) error { return nil }

// Len reports the number of stored records.
func (r *MemoryRepository) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.files)
}
