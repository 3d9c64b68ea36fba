package blob

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"
)

type memObject struct {
	data        []byte
	contentType string
	modTime     time.Time
}

// MemoryStore keeps objects in memory and serves them over HTTP, so the
// retrieval path can fetch them like any remote URL. BaseURL must point at
// wherever the store's handler is mounted.
type MemoryStore struct {
	BaseURL string

	mu      sync.RWMutex
	objects map[string]memObject
	now     func() time.Time
}

func NewMemoryStore(baseURL string) *MemoryStore {
	return &MemoryStore{
		BaseURL: baseURL,
		objects: make(map[string]memObject),
		now:     time.Now,
	}
}

func (m *MemoryStore) Upload(ctx context.Context, body io.ReadSeeker, opts UploadOptions) (*UploadResult, error) {
	opts, err := prepare(body, opts)
	if err != nil {
		return nil, err
	}

	data, err := io.ReadAll(body)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	now := m.now()
	key := ObjectKey(opts.Namespace, opts.Filename, now)

	m.mu.Lock()
	m.objects[key] = memObject{data: data, contentType: opts.ContentType, modTime: now}
	m.mu.Unlock()

	return &UploadResult{
		SecureURL:   joinURL(m.BaseURL, key),
		Bytes:       int64(len(data)),
		Format:      FormatOf(opts.Filename, opts.ContentType),
		ContentType: opts.ContentType,
		Key:         key,
	}, nil
}

// Object returns a copy of the stored bytes for key.
func (m *MemoryStore) Object(key string) ([]byte, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	o, ok := m.objects[key]
	if !ok {
		return nil, false
	}
	return bytes.Clone(o.data), true
}

// Len reports the number of stored objects.
func (m *MemoryStore) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.objects)
}

// ServeHTTP serves GET/HEAD for stored objects; the request path (after any
// prefix stripping) is the object key.
func (m *MemoryStore) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		w.Header().Set("Allow", "GET, HEAD")
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	key := strings.TrimPrefix(r.URL.Path, "/")

	m.mu.RLock()
	o, ok := m.objects[key]
	m.mu.RUnlock()
	if !ok {
		http.NotFound(w, r)
		return
	}

	w.Header().Set("Content-Type", o.contentType)
	http.ServeContent(w, r, "", o.modTime, bytes.NewReader(o.data))
}
