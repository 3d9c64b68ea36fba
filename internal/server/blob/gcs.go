package blob

import (
	"context"
	"fmt"
	"io"
	"time"

	"cloud.google.com/go/storage"
	"github.com/dmitrijs2005/shareme/internal/logging"
	"google.golang.org/api/option"
)

// objectWriter is the part of *storage.Writer the store uses.
type objectWriter interface {
	io.Writer
	Close() error
	Attrs() *storage.ObjectAttrs
}

// GCSConfig holds settings for Google Cloud Storage. An empty
// CredentialsFile uses Application Default Credentials.
type GCSConfig struct {
	Bucket          string
	CredentialsFile string
	PublicBaseURL   string
}

// GCSStore streams objects into a GCS bucket and reports the attributes
// GCS recorded once the writer is closed.
type GCSStore struct {
	open   func(ctx context.Context, key, contentType string) objectWriter
	close  func() error
	cfg    GCSConfig
	logger logging.Logger
	now    func() time.Time
}

func NewGCSStore(ctx context.Context, cfg GCSConfig, logger logging.Logger) (*GCSStore, error) {
	var opts []option.ClientOption
	if cfg.CredentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(cfg.CredentialsFile))
	}

	client, err := storage.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("create gcs client: %w", err)
	}

	bucket := client.Bucket(cfg.Bucket)
	open := func(ctx context.Context, key, contentType string) objectWriter {
		w := bucket.Object(key).NewWriter(ctx)
		w.ContentType = contentType
		return w
	}

	s := newGCSStore(open, cfg, logger)
	s.close = client.Close
	return s, nil
}

func newGCSStore(open func(ctx context.Context, key, contentType string) objectWriter, cfg GCSConfig, logger logging.Logger) *GCSStore {
	if cfg.PublicBaseURL == "" {
		cfg.PublicBaseURL = "https://storage.googleapis.com"
	}
	return &GCSStore{
		open:   open,
		close:  func() error { return nil },
		cfg:    cfg,
		logger: logger.With("module", "blob", "provider", "gcs"),
		now:    time.Now,
	}
}

func (s *GCSStore) Upload(ctx context.Context, body io.ReadSeeker, opts UploadOptions) (*UploadResult, error) {
	opts, err := prepare(body, opts)
	if err != nil {
		return nil, err
	}

	key := ObjectKey(opts.Namespace, opts.Filename, s.now())

	// Cancelling the writer's context aborts the upload, so a failed copy
	// never finalizes the object.
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	w := s.open(ctx, key, opts.ContentType)
	if _, err := io.Copy(w, body); err != nil {
		cancel()
		_ = w.Close()
		s.logger.Error(ctx, "write object failed", "key", key, "error", err)
		return nil, fmt.Errorf("write object: %w", err)
	}
	if err := w.Close(); err != nil {
		s.logger.Error(ctx, "finalize object failed", "key", key, "error", err)
		return nil, fmt.Errorf("finalize object: %w", err)
	}

	attrs := w.Attrs()
	if attrs == nil {
		return nil, fmt.Errorf("finalize object: no attributes for %s", key)
	}

	contentType := attrs.ContentType
	if contentType == "" {
		contentType = opts.ContentType
	}

	return &UploadResult{
		SecureURL:   joinURL(s.cfg.PublicBaseURL, s.cfg.Bucket, key),
		Bytes:       attrs.Size,
		Format:      FormatOf(opts.Filename, contentType),
		ContentType: contentType,
		Key:         key,
	}, nil
}

// Close releases the underlying GCS client.
func (s *GCSStore) Close() error {
	return s.close()
}
