package server

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/shareme/internal/dbx"
	"github.com/dmitrijs2005/shareme/internal/server/config"
	"github.com/dmitrijs2005/shareme/internal/server/repositories/files"
	"github.com/dmitrijs2005/shareme/internal/server/repositories/repomanager"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeManager struct {
	migrated bool
	err      error
}

func (f *fakeManager) RunMigrations(context.Context, *sql.DB) error {
	f.migrated = true
	return f.err
}

func (f *fakeManager) Files(db dbx.DBTX) files.Repository {
	return files.NewPostgresRepository(db)
}

func memoryConfig(t *testing.T) *config.Config {
	t.Helper()
	c := &config.Config{}
	c.LoadDefaults()
	c.HTTPAddr = "127.0.0.1:0"
	c.MetadataDriver = "memory"
	c.BlobProvider = "memory"
	c.MailTransport = "log"
	return c
}

func quietLogs(t *testing.T) {
	t.Helper()
	old := logOutput
	logOutput = io.Discard
	t.Cleanup(func() { logOutput = old })
}

func TestNewApp_MemoryUploadAndMetadata(t *testing.T) {
	quietLogs(t)
	app, err := NewApp(memoryConfig(t))
	require.NoError(t, err)

	ts := httptest.NewServer(app.server.Handler())
	defer ts.Close()

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	fw, err := mw.CreateFormFile("myFile", "notes.txt")
	require.NoError(t, err)
	_, _ = fw.Write([]byte("hello shareme"))
	require.NoError(t, mw.Close())

	resp, err := http.Post(ts.URL+"/api/files/upload", mw.FormDataContentType(), &body)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var up struct {
		ID               string `json:"id"`
		DownloadPageLink string `json:"downloadPageLink"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&up))
	assert.Equal(t, "http://localhost:3000/download/"+up.ID, up.DownloadPageLink)

	mresp, err := http.Get(ts.URL + "/api/files/" + up.ID)
	require.NoError(t, err)
	defer mresp.Body.Close()
	require.Equal(t, http.StatusOK, mresp.StatusCode)

	var meta map[string]any
	require.NoError(t, json.NewDecoder(mresp.Body).Decode(&meta))
	assert.Equal(t, "notes.txt", meta["name"])
	assert.EqualValues(t, 13, meta["sizeInBytes"])
	assert.Equal(t, "txt", meta["format"])

	hresp, err := http.Get(ts.URL + "/readyz")
	require.NoError(t, err)
	hresp.Body.Close()
	assert.Equal(t, http.StatusOK, hresp.StatusCode)
}

func TestNewApp_BadLogLevel(t *testing.T) {
	quietLogs(t)
	c := memoryConfig(t)
	c.LogLevel = "loud"
	_, err := NewApp(c)
	assert.Error(t, err)
}

func TestNewApp_Postgres(t *testing.T) {
	quietLogs(t)
	db, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	require.NoError(t, err)
	mock.ExpectPing()
	mock.ExpectClose()

	mgr := &fakeManager{}
	oldOpen, oldMgr := openDB, newRepoMgr
	openDB = func(driver, dsn string) (*sql.DB, error) {
		assert.Equal(t, "pgx", driver)
		return db, nil
	}
	newRepoMgr = func() repomanager.RepositoryManager { return mgr }
	t.Cleanup(func() { openDB, newRepoMgr = oldOpen, oldMgr })

	c := memoryConfig(t)
	c.MetadataDriver = "postgres"
	c.CacheSize = 0

	app, err := NewApp(c)
	require.NoError(t, err)
	assert.True(t, mgr.migrated)

	require.NoError(t, app.close())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestNewApp_MigrationError(t *testing.T) {
	quietLogs(t)
	db, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	require.NoError(t, err)
	mock.ExpectPing()
	mock.ExpectClose()

	oldOpen, oldMgr := openDB, newRepoMgr
	openDB = func(string, string) (*sql.DB, error) { return db, nil }
	newRepoMgr = func() repomanager.RepositoryManager { return &fakeManager{err: errors.New("dirty")} }
	t.Cleanup(func() { openDB, newRepoMgr = oldOpen, oldMgr })

	c := memoryConfig(t)
	c.MetadataDriver = "postgres"

	_, err = NewApp(c)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "dirty")
	assert.NoError(t, mock.ExpectationsWereMet(), "db is closed on init failure")
}

func TestNewApp_PingError(t *testing.T) {
	quietLogs(t)
	db, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	require.NoError(t, err)
	mock.ExpectPing().WillReturnError(errors.New("refused"))
	mock.ExpectClose()

	oldOpen := openDB
	openDB = func(string, string) (*sql.DB, error) { return db, nil }
	t.Cleanup(func() { openDB = oldOpen })

	c := memoryConfig(t)
	c.MetadataDriver = "postgres"

	_, err = NewApp(c)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ping")
}

func TestNewApp_RedisCache(t *testing.T) {
	quietLogs(t)
	c := memoryConfig(t)
	c.CacheBackend = "redis"

	app, err := NewApp(c)
	require.NoError(t, err)
	assert.Len(t, app.closers, 1)
	assert.NoError(t, app.close())
}

func TestApp_RunStopsOnCancel(t *testing.T) {
	quietLogs(t)
	app, err := NewApp(memoryConfig(t))
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- app.Run(ctx) }()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
}

func TestMemoryMountPath(t *testing.T) {
	tests := map[string]string{
		"http://localhost:8080/blobs":  "/blobs",
		"http://localhost:8080/blobs/": "/blobs",
		"http://localhost:8080/a/b":    "/a/b",
		"http://localhost:8080":        "/blobs",
		"http://localhost:8080/":       "/blobs",
		"://bad":                       "/blobs",
	}
	for in, want := range tests {
		assert.Equal(t, want, memoryMountPath(in), in)
	}
}
