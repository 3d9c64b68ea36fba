package files

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/shareme/internal/common"
	"github.com/dmitrijs2005/shareme/internal/server/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testID = "5b8a3a9e-1c2d-4e5f-8a9b-0c1d2e3f4a5b"

var (
	insertQuery = `(?s)^\s*INSERT\s+INTO\s+files\s+\(filename, size_in_bytes, format, secure_url, sender, receiver\).*RETURNING\s+id, created_at, updated_at\s*$`
	selectQuery = regexp.QuoteMeta(`SELECT id, filename, size_in_bytes, format, secure_url, sender, receiver, created_at, updated_at`) + `\s+FROM files WHERE id=\$1`
	updateQuery = regexp.QuoteMeta(`UPDATE files SET sender=$2, receiver=$3, updated_at=now() WHERE id=$1`)

	fileColumns = []string{"id", "filename", "size_in_bytes", "format", "secure_url", "sender", "receiver", "created_at", "updated_at"}
)

func newRepoWithMock(t *testing.T) (*PostgresRepository, sqlmock.Sqlmock, *sql.DB) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	return NewPostgresRepository(db), mock, db
}

func strPtr(s string) *string { return &s }

func TestCreate_Success(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	now := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	mock.ExpectQuery(insertQuery).
		WithArgs("report.pdf", int64(1048576), "pdf", "https://cdn.example.com/shareMe/r.pdf", nil, nil).
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at", "updated_at"}).AddRow(testID, now, now))

	in := &models.File{
		Filename:    "report.pdf",
		SizeInBytes: 1048576,
		Format:      "pdf",
		SecureURL:   "https://cdn.example.com/shareMe/r.pdf",
	}
	got, err := repo.Create(context.Background(), in)
	require.NoError(t, err)

	assert.Equal(t, testID, got.ID)
	assert.Equal(t, now, got.CreatedAt)
	assert.Equal(t, "report.pdf", got.Filename)
	assert.Empty(t, in.ID, "input must not be mutated")
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCreate_DBError(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(insertQuery).WillReturnError(errors.New("db down"))

	_, err := repo.Create(context.Background(), &models.File{Filename: "a"})
	if err == nil || !regexp.MustCompile(`failed to insert file: .*db down`).MatchString(err.Error()) {
		t.Fatalf("expected wrapped db error, got %v", err)
	}
}

func TestFindByID_OK(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	now := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	rows := sqlmock.NewRows(fileColumns).
		AddRow(testID, "report.pdf", int64(1048576), "pdf", "https://x/r.pdf", "a@x.com", "b@y.com", now, now)
	mock.ExpectQuery(selectQuery).WithArgs(testID).WillReturnRows(rows)

	got, err := repo.FindByID(context.Background(), testID)
	require.NoError(t, err)

	assert.Equal(t, &models.File{
		ID:          testID,
		Filename:    "report.pdf",
		SizeInBytes: 1048576,
		Format:      "pdf",
		SecureURL:   "https://x/r.pdf",
		Sender:      strPtr("a@x.com"),
		Receiver:    strPtr("b@y.com"),
		CreatedAt:   now,
		UpdatedAt:   now,
	}, got)
}

func TestFindByID_NullParties(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	now := time.Now()
	rows := sqlmock.NewRows(fileColumns).
		AddRow(testID, "a.txt", int64(3), "txt", "https://x/a.txt", nil, nil, now, now)
	mock.ExpectQuery(selectQuery).WithArgs(testID).WillReturnRows(rows)

	got, err := repo.FindByID(context.Background(), testID)
	require.NoError(t, err)
	assert.Nil(t, got.Sender)
	assert.Nil(t, got.Receiver)
}

func TestFindByID_NotFound(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(selectQuery).WithArgs(testID).WillReturnError(sql.ErrNoRows)

	_, err := repo.FindByID(context.Background(), testID)
	assert.ErrorIs(t, err, common.ErrorNotFound)
}

func TestFindByID_MalformedID(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	_, err := repo.FindByID(context.Background(), "not-a-uuid")
	assert.ErrorIs(t, err, common.ErrorNotFound)
	require.NoError(t, mock.ExpectationsWereMet(), "no query expected")
}

func TestFindByID_URNFormIsCanonicalised(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	now := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	rows := sqlmock.NewRows(fileColumns).
		AddRow(testID, "report.pdf", int64(1048576), "pdf", "https://x/r.pdf", nil, nil, now, now)
	mock.ExpectQuery(selectQuery).WithArgs(testID).WillReturnRows(rows)

	got, err := repo.FindByID(context.Background(), "urn:uuid:"+testID)
	require.NoError(t, err)
	assert.Equal(t, testID, got.ID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestFindByID_QueryErr(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(selectQuery).WithArgs(testID).WillReturnError(errors.New("db err"))

	_, err := repo.FindByID(context.Background(), testID)
	if err == nil || !regexp.MustCompile(`failed to select file: .*db err`).MatchString(err.Error()) {
		t.Fatalf("expected wrapped select error, got %v", err)
	}
	assert.NotErrorIs(t, err, common.ErrorNotFound)
}

func TestSave_OK(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectExec(updateQuery).
		WithArgs(testID, "a@x.com", "b@y.com").
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.Save(context.Background(), &models.File{ID: testID, Sender: strPtr("a@x.com"), Receiver: strPtr("b@y.com")})
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSave_Errors(t *testing.T) {
	tests := []struct {
		name    string
		setup   func(m sqlmock.Sqlmock)
		wantIs  error
		wantMsg string
	}{
		{
			name: "db error",
			setup: func(m sqlmock.Sqlmock) {
				m.ExpectExec(updateQuery).WillReturnError(errors.New("db err"))
			},
			wantMsg: "failed to update file: db err",
		},
		{
			name: "rows affected error",
			setup: func(m sqlmock.Sqlmock) {
				m.ExpectExec(updateQuery).WillReturnResult(sqlmock.NewErrorResult(errors.New("rows-err")))
			},
			wantMsg: "failed to get rows affected: rows-err",
		},
		{
			name: "no rows",
			setup: func(m sqlmock.Sqlmock) {
				m.ExpectExec(updateQuery).WillReturnResult(sqlmock.NewResult(0, 0))
			},
			wantIs: common.ErrorNotFound,
		},
		{
			name: "too many rows",
			setup: func(m sqlmock.Sqlmock) {
				m.ExpectExec(updateQuery).WillReturnResult(sqlmock.NewResult(0, 2))
			},
			wantMsg: "unexpected rows affected: 2",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo, mock, db := newRepoWithMock(t)
			defer db.Close()
			tt.setup(mock)

			err := repo.Save(context.Background(), &models.File{ID: testID, Sender: strPtr("a"), Receiver: strPtr("b")})
			require.Error(t, err)
			if tt.wantIs != nil {
				assert.ErrorIs(t, err, tt.wantIs)
			}
			if tt.wantMsg != "" {
				assert.EqualError(t, err, tt.wantMsg)
			}
		})
	}
}

func TestSave_URNFormIsCanonicalised(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectExec(updateQuery).
		WithArgs(testID, "a@x.com", "b@y.com").
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.Save(context.Background(), &models.File{ID: "urn:uuid:" + testID, Sender: strPtr("a@x.com"), Receiver: strPtr("b@y.com")})
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSave_MalformedID(t *testing.T) {
	repo, _, db := newRepoWithMock(t)
	defer db.Close()

	err := repo.Save(context.Background(), &models.File{ID: "42"})
	assert.ErrorIs(t, err, common.ErrorNotFound)
}

func TestPing(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectPing()
	mock.ExpectPing().WillReturnError(errors.New("gone"))

	repo := NewPostgresRepository(db)
	assert.NoError(t, repo.Ping(context.Background()))
	assert.EqualError(t, repo.Ping(context.Background()), "gone")
}
