// @title        postboard
// @version      1.0
// @description  JSON endpoints of the postboard web app. HTML pages are not listed.
// @BasePath     /
// @securityDefinitions.apikey  CookieAuth
// @in           cookie
// @name         token
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"postboard/internal/broker"
	"postboard/internal/cache"
	"postboard/internal/config"
	"postboard/internal/handlers"
	"postboard/internal/logger"
	"postboard/internal/metrics"
	"postboard/internal/repository"
	"postboard/internal/repository/db"
	"postboard/internal/server"
	"postboard/internal/service"
	"postboard/internal/storage"
)

const (
	startupTimeout  = 15 * time.Second
	shutdownTimeout = 10 * time.Second
)

func main() {
	// init logger
	log := logger.Get(logger.InfoLevel)
	defer func() { _ = log.Sync() }()

	// load config.yml + env
	cfg, err := config.Load()
	if err != nil {
		log.Fatalw("error reading config", "err", err)
	}
	log.SetLevel(cfg.LogLevel)

	// open DB
	sqlDB, err := db.InitDB(cfg.DBPath)
	if err != nil {
		log.Fatalw("failed to init sqlite", "path", cfg.DBPath, "err", err)
	}
	defer func() {
		if cerr := sqlDB.Close(); cerr != nil {
			log.Errorw("failed to close sqlite", "err", cerr)
		}
	}()

	tokens, err := service.NewTokenService(cfg.Auth.JWTSecret)
	if err != nil {
		log.Fatalw("token service", "err", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), startupTimeout)
	defer cancel()

	avatars, uploadDir := openAvatarStore(ctx, cfg, log)
	deps := service.Deps{
		Tokens:         tokens,
		Avatars:        avatars,
		MaxAvatarBytes: cfg.Uploads.MaxBytes,
		Log:            log,
	}

	if cfg.Redis.Addr != "" {
		pc, err := cache.New(ctx, cache.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
			TTL:      cfg.Redis.TTL,
		})
		if err != nil {
			log.Fatalw("failed to connect redis", "addr", cfg.Redis.Addr, "err", err)
		}
		defer func() { _ = pc.Close() }()
		deps.Cache = pc
	}

	if cfg.RabbitMQ.URL != "" {
		conn, err := broker.Dial(ctx, cfg.RabbitMQ.URL)
		if err != nil {
			log.Fatalw("failed to connect rabbitmq", "err", err)
		}
		defer func() { _ = conn.Close() }()
		deps.Publisher = broker.NewActivityPublisher(conn, cfg.RabbitMQ.Queue)
	}

	// wire dependencies
	repos := repository.NewRepository(sqlDB)
	services := service.NewService(repos, deps)
	apiHandler := handlers.NewHandler(services, log, handlers.Options{
		CookieSecure:    cfg.Auth.CookieSecure,
		UploadDir:       uploadDir,
		UploadURLPrefix: cfg.Uploads.URLPrefix,
		Avatars:         avatars,
		MaxAvatarBytes:  cfg.Uploads.MaxBytes,
		Metrics:         metrics.New(),
	})

	// start HTTP server
	srv := &server.Server{}
	runHTTPServer(srv, cfg.Port, apiHandler, log)

	// graceful shutdown
	waitForShutdown(srv, log)
}

// openAvatarStore returns the configured store and, for the local backend, the
// directory to serve it from.
func openAvatarStore(ctx context.Context, cfg *config.Config, log *logger.Logger) (storage.Store, string) {
	if cfg.Uploads.Backend == config.BackendS3 {
		st, err := storage.NewS3Store(ctx, storage.S3Config{
			Region:        cfg.S3.Region,
			Endpoint:      cfg.S3.Endpoint,
			Bucket:        cfg.S3.Bucket,
			AccessKey:     cfg.S3.AccessKey,
			SecretKey:     cfg.S3.SecretKey,
			Prefix:        cfg.S3.Prefix,
			PublicBaseURL: cfg.S3.PublicBaseURL,
			UsePathStyle:  cfg.S3.UsePathStyle,
		})
		if err != nil {
			log.Fatalw("failed to init s3 avatar store", "bucket", cfg.S3.Bucket, "err", err)
		}
		return st, ""
	}

	st, err := storage.NewLocalStore(cfg.Uploads.Dir, cfg.Uploads.URLPrefix)
	if err != nil {
		log.Fatalw("failed to init upload dir", "dir", cfg.Uploads.Dir, "err", err)
	}
	return st, st.Dir()
}

// runHTTPServer runs the HTTP server in a separate goroutine.
func runHTTPServer(srv *server.Server, port string, handler *handlers.Handler, log *logger.Logger) {
	go func() {
		if port == "" {
			port = "8080"
		}
		log.Infow("listening", "port", port)
		if err := srv.Run(port, handler.InitRoutes()); err != nil {
			log.Fatalw("error starting server", "err", err)
		}
	}()
}

// waitForShutdown listens for termination signals and performs graceful shutdown.
func waitForShutdown(srv *server.Server, log *logger.Logger) {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Infow("shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Errorw("server forced to shutdown", "err", err)
	}
}
