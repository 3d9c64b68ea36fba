package config

import (
	"encoding/json"
	"os"

	"github.com/dmitrijs2005/shareme/internal/flagx"
	"github.com/dmitrijs2005/shareme/internal/timex"
)

// JsonConfig is the on-disk shape of the configuration file. Durations use
// timex.Duration so both "30s" and integer nanoseconds are accepted.
//
// Keys missing from the file keep the value the Config already had.
type JsonConfig struct {
	HTTPAddr           string         `json:"http_addr"`
	RoutePrefix        string         `json:"route_prefix"`
	ClientBaseEndpoint string         `json:"client_base_endpoint"`
	MetadataDriver     string         `json:"metadata_driver"`
	DatabaseDSN        string         `json:"database_dsn"`
	CacheBackend       string         `json:"cache_backend"`
	CacheSize          int            `json:"cache_size"`
	CacheTTL           timex.Duration `json:"cache_ttl"`
	RedisAddr          string         `json:"redis_addr"`
	RedisPassword      string         `json:"redis_password"`
	RedisDB            int            `json:"redis_db"`
	BlobProvider       string         `json:"blob_provider"`
	BlobNamespace      string         `json:"blob_namespace"`
	S3RootUser         string         `json:"s3_root_user"`
	S3RootPassword     string         `json:"s3_root_password"`
	S3Bucket           string         `json:"s3_bucket"`
	S3Region           string         `json:"s3_region"`
	S3BaseEndpoint     string         `json:"s3_base_endpoint"`
	S3PublicBaseURL    string         `json:"s3_public_base_url"`
	GCSBucket          string         `json:"gcs_bucket"`
	GCSCredentialsFile string         `json:"gcs_credentials_file"`
	GCSPublicBaseURL   string         `json:"gcs_public_base_url"`
	MemoryBlobBaseURL  string         `json:"memory_blob_base_url"`
	MailTransport      string         `json:"mail_transport"`
	SMTPHost           string         `json:"smtp_host"`
	SMTPPort           int            `json:"smtp_port"`
	SMTPUser           string         `json:"smtp_user"`
	SMTPPassword       string         `json:"smtp_password"`
	ResendAPIKey       string         `json:"resend_api_key"`
	ResendEndpoint     string         `json:"resend_endpoint"`
	MaxUploadBytes     int64          `json:"max_upload_bytes"`
	UploadField        string         `json:"upload_field"`
	LogLevel           string         `json:"log_level"`
	LogFormat          string         `json:"log_format"`
	HTTPReadTimeout    timex.Duration `json:"http_read_timeout"`
	HTTPWriteTimeout   timex.Duration `json:"http_write_timeout"`
	HTTPIdleTimeout    timex.Duration `json:"http_idle_timeout"`
	ShutdownTimeout    timex.Duration `json:"shutdown_timeout"`
}

// parseJson overlays the file named by -c/-config (or $SHAREME_CONFIG) onto
// config. Nothing happens when no file is configured.
func parseJson(config *Config, args []string) error {
	path := flagx.ConfigPath(args)
	if path == "" {
		return nil
	}

	file, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	c := toJson(config)
	if err := json.Unmarshal(file, c); err != nil {
		return err
	}
	fromJson(config, c)
	return nil
}

func toJson(c *Config) *JsonConfig {
	return &JsonConfig{
		HTTPAddr:           c.HTTPAddr,
		RoutePrefix:        c.RoutePrefix,
		ClientBaseEndpoint: c.ClientBaseEndpoint,
		MetadataDriver:     c.MetadataDriver,
		DatabaseDSN:        c.DatabaseDSN,
		CacheBackend:       c.CacheBackend,
		CacheSize:          c.CacheSize,
		CacheTTL:           timex.Duration{Duration: c.CacheTTL},
		RedisAddr:          c.RedisAddr,
		RedisPassword:      c.RedisPassword,
		RedisDB:            c.RedisDB,
		BlobProvider:       c.BlobProvider,
		BlobNamespace:      c.BlobNamespace,
		S3RootUser:         c.S3RootUser,
		S3RootPassword:     c.S3RootPassword,
		S3Bucket:           c.S3Bucket,
		S3Region:           c.S3Region,
		S3BaseEndpoint:     c.S3BaseEndpoint,
		S3PublicBaseURL:    c.S3PublicBaseURL,
		GCSBucket:          c.GCSBucket,
		GCSCredentialsFile: c.GCSCredentialsFile,
		GCSPublicBaseURL:   c.GCSPublicBaseURL,
		MemoryBlobBaseURL:  c.MemoryBlobBaseURL,
		MailTransport:      c.MailTransport,
		SMTPHost:           c.SMTPHost,
		SMTPPort:           c.SMTPPort,
		SMTPUser:           c.SMTPUser,
		SMTPPassword:       c.SMTPPassword,
		ResendAPIKey:       c.ResendAPIKey,
		ResendEndpoint:     c.ResendEndpoint,
		MaxUploadBytes:     c.MaxUploadBytes,
		UploadField:        c.UploadField,
		LogLevel:           c.LogLevel,
		LogFormat:          c.LogFormat,
		HTTPReadTimeout:    timex.Duration{Duration: c.HTTPReadTimeout},
		HTTPWriteTimeout:   timex.Duration{Duration: c.HTTPWriteTimeout},
		HTTPIdleTimeout:    timex.Duration{Duration: c.HTTPIdleTimeout},
		ShutdownTimeout:    timex.Duration{Duration: c.ShutdownTimeout},
	}
}

func fromJson(config *Config, c *JsonConfig) {
	config.HTTPAddr = c.HTTPAddr
	config.RoutePrefix = c.RoutePrefix
	config.ClientBaseEndpoint = c.ClientBaseEndpoint
	config.MetadataDriver = c.MetadataDriver
	config.DatabaseDSN = c.DatabaseDSN
	config.CacheBackend = c.CacheBackend
	config.CacheSize = c.CacheSize
	config.CacheTTL = c.CacheTTL.Duration
	config.RedisAddr = c.RedisAddr
	config.RedisPassword = c.RedisPassword
	config.RedisDB = c.RedisDB
	config.BlobProvider = c.BlobProvider
	config.BlobNamespace = c.BlobNamespace
	config.S3RootUser = c.S3RootUser
	config.S3RootPassword = c.S3RootPassword
	config.S3Bucket = c.S3Bucket
	config.S3Region = c.S3Region
	config.S3BaseEndpoint = c.S3BaseEndpoint
	config.S3PublicBaseURL = c.S3PublicBaseURL
	config.GCSBucket = c.GCSBucket
	config.GCSCredentialsFile = c.GCSCredentialsFile
	config.GCSPublicBaseURL = c.GCSPublicBaseURL
	config.MemoryBlobBaseURL = c.MemoryBlobBaseURL
	config.MailTransport = c.MailTransport
	config.SMTPHost = c.SMTPHost
	config.SMTPPort = c.SMTPPort
	config.SMTPUser = c.SMTPUser
	config.SMTPPassword = c.SMTPPassword
	config.ResendAPIKey = c.ResendAPIKey
	config.ResendEndpoint = c.ResendEndpoint
	config.MaxUploadBytes = c.MaxUploadBytes
	config.UploadField = c.UploadField
	config.LogLevel = c.LogLevel
	config.LogFormat = c.LogFormat
	config.HTTPReadTimeout = c.HTTPReadTimeout.Duration
	config.HTTPWriteTimeout = c.HTTPWriteTimeout.Duration
	config.HTTPIdleTimeout = c.HTTPIdleTimeout.Duration
	config.ShutdownTimeout = c.ShutdownTimeout.Duration
}
