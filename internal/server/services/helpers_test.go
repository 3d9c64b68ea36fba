package services

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/dmitrijs2005/shareme/internal/server/blob"
	"github.com/dmitrijs2005/shareme/internal/server/mail"
	"github.com/dmitrijs2005/shareme/internal/server/models"
	"github.com/dmitrijs2005/shareme/internal/server/repositories/files"
)

const clientBase = "https://share.example.com/"

// newMemoryBlobs returns an in-memory store whose URLs resolve through a
// test HTTP server.
func newMemoryBlobs(t *testing.T) (*blob.MemoryStore, *httptest.Server) {
	t.Helper()
	store := blob.NewMemoryStore("")
	srv := httptest.NewServer(http.StripPrefix("/blobs", store))
	t.Cleanup(srv.Close)
	store.BaseURL = srv.URL + "/blobs"
	return store, srv
}

// countingRepo wraps a Repository, counts calls and can inject failures.
type countingRepo struct {
	files.Repository
	mu        sync.Mutex
	creates   int
	saves     int
	createErr error
	findErr   error
	saveErr   error
}

func (r *countingRepo) Create(ctx context.Context, f *models.File) (*models.File, error) {
	r.mu.Lock()
	r.creates++
	r.mu.Unlock()
	if r.createErr != nil {
		return nil, r.createErr
	}
	return r.Repository.Create(ctx, f)
}

func (r *countingRepo) FindByID(ctx context.Context, id string) (*models.File, error) {
	if r.findErr != nil {
		return nil, r.findErr
	}
	return r.Repository.FindByID(ctx, id)
}

func (r *countingRepo) Save(ctx context.Context, f *models.File) error {
	r.mu.Lock()
	r.saves++
	r.mu.Unlock()
	if r.saveErr != nil {
		return r.saveErr
	}
	return r.Repository.Save(ctx, f)
}

type storeFunc func(ctx context.Context, body io.ReadSeeker, opts blob.UploadOptions) (*blob.UploadResult, error)

func (f storeFunc) Upload(ctx context.Context, body io.ReadSeeker, opts blob.UploadOptions) (*blob.UploadResult, error) {
	return f(ctx, body, opts)
}

// recordingDispatcher captures every message it is asked to send.
type recordingDispatcher struct {
	mu   sync.Mutex
	sent []*mail.Message
	err  error
}

func (d *recordingDispatcher) Send(ctx context.Context, msg *mail.Message) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.sent = append(d.sent, msg)
	return d.err
}

func (d *recordingDispatcher) count() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.sent)
}

type failingRenderer struct{}

func (failingRenderer) Render(mail.ShareTemplateData) (string, error) {
	return "", errors.New("template broken")
}
