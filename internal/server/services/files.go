package services

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/dmitrijs2005/shareme/internal/common"
	"github.com/dmitrijs2005/shareme/internal/logging"
	"github.com/dmitrijs2005/shareme/internal/netx"
	"github.com/dmitrijs2005/shareme/internal/server/blob"
	"github.com/dmitrijs2005/shareme/internal/server/models"
	"github.com/dmitrijs2005/shareme/internal/server/repositories/files"
)

// FilePayload is one uploaded file as received from the client.
type FilePayload struct {
	Filename string
	Size     int64
	Body     io.ReadSeeker
}

// UploadResult is returned to the uploader.
type UploadResult struct {
	ID               string `json:"id"`
	DownloadPageLink string `json:"downloadPageLink"`
}

// Metadata is the public view of a stored file.
type Metadata struct {
	Name        string `json:"name"`
	SizeInBytes int64  `json:"sizeInBytes"`
	Format      string `json:"format"`
	ID          string `json:"id"`
}

// Content is an open stream of a stored file. The caller must Close it.
type Content struct {
	*netx.Stream
	Filename string
}

// FileServiceConfig carries the settings FileService needs.
type FileServiceConfig struct {
	Namespace          string
	ClientBaseEndpoint string
}

// FileService runs the upload pipeline and serves stored files back.
type FileService struct {
	repo   files.Repository
	store  blob.Store
	client netx.Doer
	cfg    FileServiceConfig
	logger logging.Logger
}

func NewFileService(repo files.Repository, store blob.Store, client netx.Doer, cfg FileServiceConfig, logger logging.Logger) *FileService {
	return &FileService{
		repo:   repo,
		store:  store,
		client: client,
		cfg:    cfg,
		logger: logger.With("module", "files"),
	}
}

// Upload stores the payload bytes, then records their metadata.
//
// A storage failure leaves no record. If recording fails after the bytes were
// stored, the object stays orphaned in storage; its URL is logged.
func (s *FileService) Upload(ctx context.Context, p *FilePayload) (*UploadResult, error) {
	if p == nil || p.Body == nil {
		uploadsTotal.WithLabelValues("missing_file").Inc()
		return nil, common.ErrorMissingFile
	}

	stored, err := s.store.Upload(ctx, p.Body, blob.UploadOptions{
		Namespace: s.cfg.Namespace,
		Filename:  p.Filename,
		Size:      p.Size,
	})
	if err != nil {
		uploadsTotal.WithLabelValues("storage_error").Inc()
		s.logger.Error(ctx, "object storage upload failed", "filename", p.Filename, "error", err)
		return nil, fmt.Errorf("%w: %w", common.ErrorStorage, err)
	}
	if err := checkStored(stored); err != nil {
		uploadsTotal.WithLabelValues("storage_error").Inc()
		s.logger.Error(ctx, "object storage returned incomplete result", "filename", p.Filename, "error", err)
		return nil, err
	}

	record, err := s.repo.Create(ctx, &models.File{
		Filename:    p.Filename,
		SizeInBytes: stored.Bytes,
		Format:      stored.Format,
		SecureURL:   stored.SecureURL,
	})
	if err != nil {
		uploadsTotal.WithLabelValues("db_error").Inc()
		s.logger.Error(ctx, "metadata create failed, stored object is orphaned",
			"filename", p.Filename, "secure_url", stored.SecureURL, "error", err)
		return nil, fmt.Errorf("create file record: %w", err)
	}

	uploadsTotal.WithLabelValues("success").Inc()
	uploadBytesTotal.Add(float64(stored.Bytes))
	s.logger.Info(ctx, "file uploaded", "id", record.ID, "filename", record.Filename, "bytes", record.SizeInBytes)

	return &UploadResult{
		ID:               record.ID,
		DownloadPageLink: DownloadPageLink(s.cfg.ClientBaseEndpoint, record.ID),
	}, nil
}

func checkStored(r *blob.UploadResult) error {
	switch {
	case r == nil:
		return fmt.Errorf("%w: %w: empty result", common.ErrorStorage, common.ErrorIncompleteUpload)
	case r.SecureURL == "":
		return fmt.Errorf("%w: %w: missing secure url", common.ErrorStorage, common.ErrorIncompleteUpload)
	case r.Format == "":
		return fmt.Errorf("%w: %w: missing format", common.ErrorStorage, common.ErrorIncompleteUpload)
	case r.Bytes < 0:
		return fmt.Errorf("%w: %w: negative size %d", common.ErrorStorage, common.ErrorIncompleteUpload, r.Bytes)
	}
	return nil
}

// GetMetadata returns the public metadata of a stored file.
func (s *FileService) GetMetadata(ctx context.Context, id string) (*Metadata, error) {
	f, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	return &Metadata{
		Name:        f.Filename,
		SizeInBytes: f.SizeInBytes,
		Format:      f.Format,
		ID:          f.ID,
	}, nil
}

// OpenContent opens a stream of the stored bytes. Nothing is buffered.
func (s *FileService) OpenContent(ctx context.Context, id string) (*Content, error) {
	f, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}

	stream, err := netx.OpenStream(ctx, s.client, f.SecureURL)
	if err != nil {
		s.logger.Error(ctx, "remote content fetch failed", "id", id, "secure_url", f.SecureURL, "error", err)
		return nil, err
	}
	return &Content{Stream: stream, Filename: f.Filename}, nil
}

func (s *FileService) find(ctx context.Context, id string) (*models.File, error) {
	f, err := s.repo.FindByID(ctx, id)
	if errors.Is(err, common.ErrorNotFound) {
		return nil, err
	}
	if err != nil {
		s.logger.Error(ctx, "metadata lookup failed", "id", id, "error", err)
		return nil, fmt.Errorf("find file: %w", err)
	}
	return f, nil
}
