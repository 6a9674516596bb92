package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/kevinaaaquil/novels/handlers"
	"github.com/kevinaaaquil/novels/middleware"
	"github.com/kevinaaaquil/novels/service"
	"github.com/kevinaaaquil/novels/store"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		return serve(ctx)
	},
}

func serve(ctx context.Context) error {
	db, err := store.NewMongoDB(ctx, cfg.MongoURI, cfg.DBName, logger)
	if err != nil {
		return err
	}
	defer func() {
		if err := db.Disconnect(context.Background()); err != nil {
			logger.Warn("mongodb disconnect", slog.Any("error", err))
		}
	}()
	if err := db.EnsureIndexes(ctx); err != nil {
		return err
	}

	var cache service.CatalogCache
	if cfg.RedisURL != "" {
		rdb, err := store.NewRedisClient(ctx, cfg.RedisURL, logger)
		if err != nil {
			return err
		}
		defer rdb.Close()
		cache = store.NewCatalogCache(rdb, cfg.CatalogCacheTTL)
	} else {
		logger.Info("REDIS_URL not set; catalog cache disabled")
	}

	covers, err := coverStore(ctx)
	if err != nil {
		return err
	}

	var sender service.ContactSender
	if cfg.SMTPHost != "" {
		sender = service.NewMailer(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUsername, cfg.SMTPPassword, cfg.ContactFrom, cfg.ContactTo)
	} else {
		logger.Info("SMTP_HOST not set; contact messages are stored only")
	}

	verifier, err := service.NewAuthenticator(db)
	if err != nil {
		return err
	}
	catalog := service.NewCatalog(db, cache)
	linkage := service.NewLinkage(db, db)
	accounts := service.NewAccounts(db)

	limiter := middleware.NewRateLimiter(cfg.AuthRateLimitRPS, cfg.AuthRateLimitBurst)
	go limiter.Sweep(ctx)

	router := handlers.NewRouter(handlers.Routes{
		Logger:      logger,
		JWTSecret:   cfg.JWTSecret,
		AuthLimiter: limiter,
		Novels: &handlers.NovelsHandler{
			Catalog:  catalog,
			Novels:   service.NewNovels(db, covers, linkage, catalog),
			MaxBytes: cfg.MaxUploadBytes(),
		},
		Users: &handlers.UsersHandler{Accounts: accounts, Linkage: linkage},
		Auth: &handlers.AuthHandler{
			Accounts:  accounts,
			Verifier:  verifier,
			JWTSecret: cfg.JWTSecret,
			TokenTTL:  cfg.TokenTTL,
		},
		Contact: &handlers.ContactHandler{Contact: service.NewContact(db, sender)},
		Health:  &handlers.HealthHandler{DB: db},
	})

	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	errc := make(chan error, 1)
	go func() {
		logger.Info("server listening", slog.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errc <- err
		}
		close(errc)
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

// coverStore uses S3 when a bucket is configured and the local cover
// directory otherwise.
func coverStore(ctx context.Context) (service.CoverStore, error) {
	if cfg.S3Bucket != "" {
		s3, err := service.NewS3Service(ctx, cfg.S3Bucket, cfg.S3Region, cfg.S3AccessKeyID, cfg.S3SecretKey)
		if err != nil {
			return nil, fmt.Errorf("s3: %w", err)
		}
		return s3, nil
	}
	logger.Warn("AWS_S3_BUCKET not set; covers stored on local disk", slog.String("dir", cfg.CoverDir))
	return service.NewLocalCoverStore(cfg.CoverDir)
}
