package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awscfg "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/getsentry/sentry-go"
	"github.com/sirupsen/logrus"

	"koruva/internal/config"
	apphttp "koruva/internal/http"
	"koruva/internal/repository/sqlite"
	"koruva/internal/service"
	"koruva/internal/storage"
)

func main() {
	logger := logrus.New()
	logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	cfg, err := config.Load()
	if err != nil {
		logger.Fatalf("load config: %v", err)
	}

	if strings.TrimSpace(cfg.Auth.JWTSecret) == "" {
		logger.Fatalf("auth jwt secret is required")
	}
	if strings.TrimSpace(cfg.Auth.RegisterPassword) == "" {
		logger.Fatalf("auth registration password is required")
	}

	if cfg.Sentry.DSN != "" {
		if err := sentry.Init(sentry.ClientOptions{
			Dsn:   cfg.Sentry.DSN,
			Debug: cfg.Server.Debug,
		}); err != nil {
			logger.Fatalf("init sentry: %v", err)
		}
		defer sentry.Flush(2 * time.Second)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := sqlite.Open(cfg.Database.Path)
	if err != nil {
		logger.Fatalf("open database: %v", err)
	}
	defer db.Close()

	userRepo := sqlite.NewUserRepository(db)
	noteRepo := sqlite.NewNoteRepository(db)

	if err := userRepo.Init(ctx); err != nil {
		logger.Fatalf("init user repository: %v", err)
	}
	if err := noteRepo.Init(ctx); err != nil {
		logger.Fatalf("init note repository: %v", err)
	}

	userService := service.NewUserService(userRepo, cfg.Auth.RegisterPassword)
	noteService := service.NewNoteService(noteRepo, cfg.Pagination.PageSize)

	mediaSvc, err := buildStorage(ctx, cfg, logger)
	if err != nil {
		logger.Fatalf("setup media storage: %v", err)
	}

	router := apphttp.NewRouter(cfg.Server.Debug, cfg.Sentry.DSN != "")

	handler := apphttp.NewHandler(apphttp.Deps{
		Notes:     noteService,
		Users:     userService,
		Media:     mediaSvc,
		DB:        db,
		Logger:    logger,
		JWTSecret: cfg.Auth.JWTSecret,
		TokenTTL:  time.Duration(cfg.Auth.TokenTTLMinutes) * time.Minute,
		Static: apphttp.StaticConfig{
			Dir:             cfg.Static.Dir,
			Debug:           cfg.Server.Debug,
			RobotsMaxAge:    cfg.Cache.RobotsMaxAge,
			SecurityMaxAge:  cfg.Cache.SecurityMaxAge,
			FaviconMaxAge:   cfg.Cache.FaviconMaxAge,
			SecurityContact: cfg.Security.Contact,
		},
	})
	handler.RegisterRoutes(router)

	srv := &http.Server{
		Addr:    cfg.Server.Addr,
		Handler: router,
	}

	go func() {
		logger.Infof("listening on %s", cfg.Server.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatalf("http server: %v", err)
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Warnf("http shutdown: %v", err)
	}

	logger.Info("bye")
}

func buildStorage(ctx context.Context, cfg config.Config, logger *logrus.Logger) (storage.Service, error) {
	switch cfg.Media.Backend {
	case "local", "":
		logger.Infof("using local media dir %s", cfg.Media.LocalDir)
		return storage.NewLocalService(cfg.Media.LocalDir, cfg.Media.BaseURL)
	case "s3":
		if cfg.Media.Bucket == "" {
			return nil, fmt.Errorf("media bucket is required")
		}

		loadOpts := []func(*awscfg.LoadOptions) error{
			awscfg.WithRegion(cfg.Media.Region),
		}
		if cfg.AWS.Profile != "" {
			loadOpts = append(loadOpts, awscfg.WithSharedConfigProfile(cfg.AWS.Profile))
		}

		awsCfg, err := awscfg.LoadDefaultConfig(ctx, loadOpts...)
		if err != nil {
			return nil, fmt.Errorf("load aws config: %w", err)
		}

		client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
			if cfg.Media.Endpoint != "" {
				o.BaseEndpoint = aws.String(cfg.Media.Endpoint)
				o.UsePathStyle = true
			}
		})
		logger.Infof("using s3 bucket %s (region %s)", cfg.Media.Bucket, cfg.Media.Region)
		return storage.NewS3Service(client, cfg.Media.Bucket, cfg.Media.KeyPrefix), nil
	default:
		return nil, fmt.Errorf("unknown media backend %q", cfg.Media.Backend)
	}
}
