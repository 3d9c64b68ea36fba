// Package files provides storage for shared file metadata records.
package files

import (
	"context"

	"github.com/dmitrijs2005/shareme/internal/server/models"
)

// Repository persists file metadata.
//
// Create assigns ID (and timestamps) and returns the stored record.
// FindByID and Save return common.ErrorNotFound for unknown ids.
type Repository interface {
	Create(ctx context.Context, file *models.File) (*models.File, error)
	FindByID(ctx context.Context, id string) (*models.File, error)
	Save(ctx context.Context, file *models.File) error
	Ping(ctx context.Context) error
}
