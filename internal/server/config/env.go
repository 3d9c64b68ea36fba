package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// parseEnv overlays values from environment variables. Unset or blank
// variables leave the current value untouched.
func parseEnv(c *Config) error {
	envString("HTTP_ADDR", &c.HTTPAddr)
	envString("ROUTE_PREFIX", &c.RoutePrefix)
	envString("API_BASE_ENDPOINT_CLIENT", &c.ClientBaseEndpoint)
	envString("METADATA_DRIVER", &c.MetadataDriver)
	envString("DATABASE_DSN", &c.DatabaseDSN)
	envString("CACHE_BACKEND", &c.CacheBackend)
	envString("REDIS_ADDR", &c.RedisAddr)
	envString("REDIS_PASSWORD", &c.RedisPassword)
	envString("BLOB_PROVIDER", &c.BlobProvider)
	envString("BLOB_NAMESPACE", &c.BlobNamespace)
	envString("S3_ROOT_USER", &c.S3RootUser)
	envString("S3_ROOT_PASSWORD", &c.S3RootPassword)
	envString("S3_BUCKET", &c.S3Bucket)
	envString("S3_REGION", &c.S3Region)
	envString("S3_BASE_ENDPOINT", &c.S3BaseEndpoint)
	envString("S3_PUBLIC_BASE_URL", &c.S3PublicBaseURL)
	envString("GCS_BUCKET", &c.GCSBucket)
	envString("GCS_CREDENTIALS_FILE", &c.GCSCredentialsFile)
	envString("GCS_PUBLIC_BASE_URL", &c.GCSPublicBaseURL)
	envString("MEMORY_BLOB_BASE_URL", &c.MemoryBlobBaseURL)
	envString("MAIL_TRANSPORT", &c.MailTransport)
	envString("SMTP_HOST", &c.SMTPHost)
	envString("SMTP_USER", &c.SMTPUser)
	envString("SMTP_PASSWORD", &c.SMTPPassword)
	envString("RESEND_API_KEY", &c.ResendAPIKey)
	envString("RESEND_ENDPOINT", &c.ResendEndpoint)
	envString("UPLOAD_FIELD", &c.UploadField)
	envString("LOG_LEVEL", &c.LogLevel)
	envString("LOG_FORMAT", &c.LogFormat)

	if err := envInt("CACHE_SIZE", &c.CacheSize); err != nil {
		return err
	}
	if err := envInt("REDIS_DB", &c.RedisDB); err != nil {
		return err
	}
	if err := envInt("SMTP_PORT", &c.SMTPPort); err != nil {
		return err
	}
	if err := envInt64("MAX_UPLOAD_BYTES", &c.MaxUploadBytes); err != nil {
		return err
	}

	durations := []struct {
		key string
		dst *time.Duration
	}{
		{"CACHE_TTL", &c.CacheTTL},
		{"HTTP_READ_TIMEOUT", &c.HTTPReadTimeout},
		{"HTTP_WRITE_TIMEOUT", &c.HTTPWriteTimeout},
		{"HTTP_IDLE_TIMEOUT", &c.HTTPIdleTimeout},
		{"SHUTDOWN_TIMEOUT", &c.ShutdownTimeout},
	}
	for _, d := range durations {
		if err := envDuration(d.key, d.dst); err != nil {
			return err
		}
	}

	return nil
}

func lookupEnv(key string) (string, bool) {
	v, ok := os.LookupEnv(key)
	v = strings.TrimSpace(v)
	return v, ok && v != ""
}

func envString(key string, dst *string) {
	if v, ok := lookupEnv(key); ok {
		*dst = v
	}
}

func envInt(key string, dst *int) error {
	v, ok := lookupEnv(key)
	if !ok {
		return nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fmt.Errorf("%s: invalid integer %q", key, v)
	}
	*dst = n
	return nil
}

func envInt64(key string, dst *int64) error {
	v, ok := lookupEnv(key)
	if !ok {
		return nil
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return fmt.Errorf("%s: invalid integer %q", key, v)
	}
	*dst = n
	return nil
}

func envDuration(key string, dst *time.Duration) error {
	v, ok := lookupEnv(key)
	if !ok {
		return nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fmt.Errorf("%s: invalid duration %q (use Go format: 30s, 5m)", key, v)
	}
	*dst = d
	return nil
}
