package blob

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/smithy-go"
	"github.com/dmitrijs2005/shareme/internal/logging"
)

// objectAPI is the part of *s3.Client the store uses.
type objectAPI interface {
	PutObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	HeadObject(ctx context.Context, in *s3.HeadObjectInput, optFns ...func(*s3.Options)) (*s3.HeadObjectOutput, error)
}

// Test seams.
var (
	loadDefaultAWSConfig  = config.LoadDefaultConfig
	newS3ClientFromConfig = func(cfg aws.Config, optFns ...func(*s3.Options)) objectAPI {
		return s3.NewFromConfig(cfg, optFns...)
	}
)

// S3Config holds connection settings for an S3-compatible backend (AWS or
// MinIO). PublicBaseURL, when set, replaces {BaseEndpoint}/{Bucket} as the
// prefix of returned object URLs.
type S3Config struct {
	Region        string
	AccessKey     string
	SecretKey     string
	Bucket        string
	BaseEndpoint  string
	PublicBaseURL string
}

// S3Store uploads objects with PutObject and reads back the stored size and
// content type with HeadObject.
type S3Store struct {
	client objectAPI
	cfg    S3Config
	logger logging.Logger
	now    func() time.Time
}

func NewS3Store(ctx context.Context, cfg S3Config, logger logging.Logger) (*S3Store, error) {
	awsCfg, err := loadDefaultAWSConfig(ctx,
		config.WithRegion(cfg.Region),
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			cfg.AccessKey,
			cfg.SecretKey,
			"",
		)))
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	client := newS3ClientFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.BaseEndpoint != "" {
			o.BaseEndpoint = aws.String(cfg.BaseEndpoint)
			o.UsePathStyle = true
		}
	})

	return newS3Store(client, cfg, logger), nil
}

func newS3Store(client objectAPI, cfg S3Config, logger logging.Logger) *S3Store {
	return &S3Store{
		client: client,
		cfg:    cfg,
		logger: logger.With("module", "blob", "provider", "s3"),
		now:    time.Now,
	}
}

func (s *S3Store) Upload(ctx context.Context, body io.ReadSeeker, opts UploadOptions) (*UploadResult, error) {
	opts, err := prepare(body, opts)
	if err != nil {
		return nil, err
	}

	key := ObjectKey(opts.Namespace, opts.Filename, s.now())

	_, err = s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(s.cfg.Bucket),
		Key:           aws.String(key),
		Body:          body,
		ContentLength: aws.Int64(opts.Size),
		ContentType:   aws.String(opts.ContentType),
	})
	if err != nil {
		s.logger.Error(ctx, "put object failed", "key", key, "code", apiErrorCode(err), "error", err)
		return nil, fmt.Errorf("put object: %w", err)
	}

	head, err := s.client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(s.cfg.Bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		s.logger.Error(ctx, "head object failed", "key", key, "code", apiErrorCode(err), "error", err)
		return nil, fmt.Errorf("head object: %w", err)
	}

	contentType := aws.ToString(head.ContentType)
	if contentType == "" {
		contentType = opts.ContentType
	}

	s.logger.Debug(ctx, "object stored", "key", key, "bytes", aws.ToInt64(head.ContentLength))

	return &UploadResult{
		SecureURL:   s.objectURL(key),
		Bytes:       aws.ToInt64(head.ContentLength),
		Format:      FormatOf(opts.Filename, contentType),
		ContentType: contentType,
		Key:         key,
	}, nil
}

func (s *S3Store) objectURL(key string) string {
	if s.cfg.PublicBaseURL != "" {
		return joinURL(s.cfg.PublicBaseURL, key)
	}
	return joinURL(s.cfg.BaseEndpoint, s.cfg.Bucket, key)
}

func apiErrorCode(err error) string {
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		return apiErr.ErrorCode()
	}
	return ""
}
