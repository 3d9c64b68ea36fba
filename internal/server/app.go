// Package server wires the shareme components together: metadata
// repository, object storage, mail transport and the HTTP API. It also
// handles graceful shutdown on SIGINT, SIGTERM and SIGQUIT.
package server

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"net/url"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dmitrijs2005/shareme/internal/logging"
	"github.com/dmitrijs2005/shareme/internal/server/blob"
	"github.com/dmitrijs2005/shareme/internal/server/config"
	"github.com/dmitrijs2005/shareme/internal/server/httpserver"
	"github.com/dmitrijs2005/shareme/internal/server/mail"
	"github.com/dmitrijs2005/shareme/internal/server/repositories/files"
	"github.com/dmitrijs2005/shareme/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/shareme/internal/server/services"

	_ "github.com/jackc/pgx/v5/stdlib"
)

// Seams for tests.
var (
	logOutput   io.Writer = os.Stdout
	openDB                = sql.Open
	newRepoMgr            = repomanager.NewPostgresRepositoryManager
	pingTimeout           = 5 * time.Second
)

type App struct {
	config  *config.Config
	logger  logging.Logger
	server  *httpserver.HTTPServer
	closers []func() error
}

func NewApp(c *config.Config) (*App, error) {
	logger, err := logging.NewSlog(logOutput, c.LogLevel, c.LogFormat)
	if err != nil {
		return nil, fmt.Errorf("logger init error: %w", err)
	}

	app := &App{config: c, logger: logger}
	ctx := context.Background()

	repo, err := app.initRepository(ctx)
	if err != nil {
		app.close()
		return nil, fmt.Errorf("metadata store init error: %w", err)
	}

	store, err := app.initBlobStore(ctx)
	if err != nil {
		app.close()
		return nil, fmt.Errorf("blob store init error: %w", err)
	}

	renderer, err := mail.NewHTMLRenderer()
	if err != nil {
		app.close()
		return nil, fmt.Errorf("mail template init error: %w", err)
	}

	fs := services.NewFileService(repo, store, nil, services.FileServiceConfig{
		Namespace:          c.BlobNamespace,
		ClientBaseEndpoint: c.ClientBaseEndpoint,
	}, logger)
	ss := services.NewShareService(repo, app.initDispatcher(), renderer, c.ClientBaseEndpoint, logger)

	app.server = httpserver.NewHTTPServer(httpserver.Options{
		Addr:            c.HTTPAddr,
		RoutePrefix:     c.RoutePrefix,
		UploadField:     c.UploadField,
		MaxUploadBytes:  c.MaxUploadBytes,
		ReadTimeout:     c.HTTPReadTimeout,
		WriteTimeout:    c.HTTPWriteTimeout,
		IdleTimeout:     c.HTTPIdleTimeout,
		ShutdownTimeout: c.ShutdownTimeout,
	}, logger, fs, ss, repo)

	if mem, ok := store.(*blob.MemoryStore); ok {
		app.server.Mount(memoryMountPath(c.MemoryBlobBaseURL), mem)
	}

	return app, nil
}

func (app *App) initRepository(ctx context.Context) (files.Repository, error) {
	c := app.config

	var repo files.Repository
	switch c.MetadataDriver {
	case "postgres":
		db, err := openDB("pgx", c.DatabaseDSN)
		if err != nil {
			return nil, err
		}
		app.closers = append(app.closers, db.Close)

		pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
		defer cancel()
		if err := db.PingContext(pingCtx); err != nil {
			return nil, fmt.Errorf("ping: %w", err)
		}

		rm := newRepoMgr()
		if err := rm.RunMigrations(ctx, db); err != nil {
			return nil, err
		}
		repo = rm.Files(db)
	default:
		app.logger.Warn(ctx, "using in-memory metadata store; records are lost on restart")
		repo = files.NewMemoryRepository()
	}

	switch {
	case c.CacheBackend == "redis":
		rdb := files.NewRedisClient(c.RedisAddr, c.RedisPassword, c.RedisDB)
		app.closers = append(app.closers, rdb.Close)
		repo = files.NewRedisCachedRepository(repo, rdb, c.CacheTTL, app.logger)
	case c.CacheSize > 0:
		repo = files.NewCachedRepository(repo, c.CacheSize, c.CacheTTL)
	}

	return repo, nil
}

func (app *App) initBlobStore(ctx context.Context) (blob.Store, error) {
	c := app.config

	switch c.BlobProvider {
	case "s3":
		return blob.NewS3Store(ctx, blob.S3Config{
			Region:        c.S3Region,
			AccessKey:     c.S3RootUser,
			SecretKey:     c.S3RootPassword,
			Bucket:        c.S3Bucket,
			BaseEndpoint:  c.S3BaseEndpoint,
			PublicBaseURL: c.S3PublicBaseURL,
		}, app.logger)
	case "gcs":
		s, err := blob.NewGCSStore(ctx, blob.GCSConfig{
			Bucket:          c.GCSBucket,
			CredentialsFile: c.GCSCredentialsFile,
			PublicBaseURL:   c.GCSPublicBaseURL,
		}, app.logger)
		if err != nil {
			return nil, err
		}
		app.closers = append(app.closers, s.Close)
		return s, nil
	default:
		app.logger.Warn(ctx, "using in-memory blob store", "base_url", c.MemoryBlobBaseURL)
		return blob.NewMemoryStore(c.MemoryBlobBaseURL), nil
	}
}

func (app *App) initDispatcher() mail.Dispatcher {
	c := app.config

	switch c.MailTransport {
	case "smtp":
		return mail.NewSMTPDispatcher(mail.SMTPConfig{
			Host:     c.SMTPHost,
			Port:     c.SMTPPort,
			Username: c.SMTPUser,
			Password: c.SMTPPassword,
		}, app.logger)
	case "resend":
		return mail.NewResendDispatcher(c.ResendAPIKey, c.ResendEndpoint, app.logger)
	default:
		return mail.NewLogDispatcher(app.logger)
	}
}

// memoryMountPath returns the path component of the memory blob base URL,
// where the store's handler is mounted.
func memoryMountPath(baseURL string) string {
	u, err := url.Parse(baseURL)
	if err != nil || u.Path == "" || u.Path == "/" {
		return "/blobs"
	}
	if len(u.Path) > 1 && u.Path[len(u.Path)-1] == '/' {
		return u.Path[:len(u.Path)-1]
	}
	return u.Path
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	// Channel to catch OS signals.
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

func (app *App) close() error {
	var errs []error
	for i := len(app.closers) - 1; i >= 0; i-- {
		if err := app.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	app.closers = nil
	return errors.Join(errs...)
}

// Run serves until ctx is cancelled or a termination signal arrives, then
// shuts the HTTP server down and releases backing connections.
func (app *App) Run(ctx context.Context) error {
	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...", "addr", app.config.HTTPAddr)

	app.initSignalHandler(cancelFunc)

	err := app.server.Run(ctx)
	if err != nil {
		app.logger.Error(ctx, "http server stopped", "error", err)
	}

	if cerr := app.close(); cerr != nil {
		app.logger.Error(ctx, "close error", "error", cerr)
		err = errors.Join(err, cerr)
	}

	app.logger.Info(ctx, "app stopped")
	return err
}
