package files

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/shareme/internal/common"
	"github.com/dmitrijs2005/shareme/internal/dbx"
	"github.com/dmitrijs2005/shareme/internal/server/models"
	"github.com/google/uuid"
)

// PostgresRepository implements Repository over a dbx.DBTX (*sql.DB or *sql.Tx).
type PostgresRepository struct {
	db dbx.DBTX
}

// NewPostgresRepository constructs a repository bound to the given DBTX.
func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Create inserts a new record. The id and timestamps are generated by the
// database and returned on a copy of file.
func (r *PostgresRepository) Create(ctx context.Context, file *models.File) (*models.File, error) {
	query := `
		INSERT INTO files (filename, size_in_bytes, format, secure_url, sender, receiver)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at, updated_at
	`
	result := file.Clone()
	err := r.db.QueryRowContext(ctx, query,
		file.Filename, file.SizeInBytes, file.Format, file.SecureURL, file.Sender, file.Receiver,
	).Scan(&result.ID, &result.CreatedAt, &result.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to insert file: %w", err)
	}
	return result, nil
}

// FindByID returns the record with the given id. Ids that are not valid
// UUIDs cannot exist and are reported as not found without a query; valid
// ones are sent in canonical form, since Postgres rejects the urn:uuid: prefix.
func (r *PostgresRepository) FindByID(ctx context.Context, id string) (*models.File, error) {
	uid, err := uuid.Parse(id)
	if err != nil {
		return nil, common.ErrorNotFound
	}

	query := `SELECT id, filename, size_in_bytes, format, secure_url, sender, receiver, created_at, updated_at
		FROM files WHERE id=$1`

	var (
		f                models.File
		sender, receiver sql.NullString
	)
	err = r.db.QueryRowContext(ctx, query, uid.String()).Scan(
		&f.ID, &f.Filename, &f.SizeInBytes, &f.Format, &f.SecureURL,
		&sender, &receiver, &f.CreatedAt, &f.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, common.ErrorNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to select file: %w", err)
	}

	if sender.Valid {
		f.Sender = &sender.String
	}
	if receiver.Valid {
		f.Receiver = &receiver.String
	}
	return &f, nil
}

// Save writes the mutable sender/receiver pair back. Exactly one row must
// be affected.
func (r *PostgresRepository) Save(ctx context.Context, file *models.File) error {
	uid, err := uuid.Parse(file.ID)
	if err != nil {
		return common.ErrorNotFound
	}

	query := `UPDATE files SET sender=$2, receiver=$3, updated_at=now() WHERE id=$1`
	res, err := r.db.ExecContext(ctx, query, uid.String(), file.Sender, file.Receiver)
	if err != nil {
		return fmt.Errorf("failed to update file: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	switch n {
	case 1:
		return nil
	case 0:
		return common.ErrorNotFound
	default:
		return fmt.Errorf("unexpected rows affected: %d", n)
	}
}

// Ping checks database connectivity when the underlying handle supports it.
func (r *PostgresRepository) Ping(ctx context.Context) error {
	if p, ok := r.db.(dbx.Pinger); ok {
		return p.PingContext(ctx)
	}
	return nil
}
