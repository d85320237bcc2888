package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/foodies/foodies-api/docs"
	"github.com/foodies/foodies-api/internal/config"
	"github.com/foodies/foodies-api/internal/identity"
	"github.com/foodies/foodies-api/internal/logging"
	"github.com/foodies/foodies-api/internal/media"
	"github.com/foodies/foodies-api/internal/repository/memory"
	storage "github.com/foodies/foodies-api/internal/repository/minio"
	"github.com/foodies/foodies-api/internal/repository/mongo"
	"github.com/foodies/foodies-api/internal/repository/ports"
	"github.com/foodies/foodies-api/internal/repository/postgres"
	"github.com/foodies/foodies-api/internal/service"
	transport "github.com/foodies/foodies-api/internal/transport/http"
	"github.com/foodies/foodies-api/internal/transport/mail"
	"github.com/foodies/foodies-api/internal/util"
)

type stores struct {
	users   ports.UserRepository
	recipes ports.RecipeRepository
	tx      ports.Transactor
	close   func(ctx context.Context) error
}

func main() {
	cfg := config.Load()

	logger, flush, err := logging.New(cfg.LogLevel, cfg.LogstashTCPAddr)
	if err != nil {
		log.Fatalf("init logger: %v", err)
	}
	defer flush()

	if err := run(cfg, logger); err != nil {
		logger.Error("api stopped", zap.Error(err))
		flush()
		os.Exit(1)
	}
}

type app struct {
	e          *echo.Echo
	dispatcher *mail.Dispatcher
	db         *stores
}

func run(cfg config.Config, logger *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := openStores(ctx, cfg, logger)
	if err != nil {
		return err
	}
	a, err := newApp(ctx, cfg, logger, db)
	if err != nil {
		return err
	}

	serverErr := make(chan error, 1)
	go func() {
		logger.Info("api listening", zap.String("port", cfg.Port))
		if err := a.e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	select {
	case <-ctx.Done():
		logger.Info("shutting down")
	case err := <-serverErr:
		if err != nil {
			logger.Error("server failed", zap.Error(err))
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	return a.shutdown(shutdownCtx)
}

// newApp wires services and routes over db. db is closed when wiring fails.
func newApp(ctx context.Context, cfg config.Config, logger *zap.Logger, db *stores) (*app, error) {
	images, err := newImageService(ctx, cfg, logger)
	if err != nil {
		if closeErr := db.close(context.Background()); closeErr != nil {
			logger.Warn("close store after startup failure", zap.Error(closeErr))
		}
		return nil, err
	}

	var sender mail.Sender = mail.NewLogSender(logger)
	if cfg.SMTPHost != "" {
		sender = mail.NewSMTPSender(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUsername, cfg.SMTPPassword, cfg.SMTPFrom, cfg.SMTPUseTLS)
	}
	dispatcher := mail.NewDispatcher(sender, logger, 0)

	var verifier identity.Verifier
	if cfg.GoogleAudience != "" {
		verifier = identity.NewGoogleVerifier(cfg.GoogleAudience)
	} else {
		logger.Warn("GOOGLE_AUDIENCE not set, google login disabled")
	}

	authService := service.NewAuthService(db.users, util.NewJWTManager(cfg.JWTSecret, cfg.SessionTTL), verifier, dispatcher, logger, service.AuthServiceConfig{
		BcryptCost:    cfg.BcryptCost,
		ResetTTL:      cfg.PasswordResetTTL,
		FrontendURL:   cfg.FrontendURL,
		MailSignature: cfg.MailSignature,
	})
	recipeService := service.NewRecipeService(db.recipes, db.users, db.tx, logger, service.RecipeServiceConfig{})

	e := transport.NewRouter(cfg.AllowOrigins, logger)
	transport.RegisterAuth(e, authService, logger)
	transport.RegisterRecipes(e, authService, recipeService, images, logger)
	if err := transport.RegisterSwagger(e, docs.SwaggerYAML); err != nil {
		logger.Warn("swagger docs unavailable", zap.Error(err))
	}

	return &app{e: e, dispatcher: dispatcher, db: db}, nil
}

func (a *app) shutdown(ctx context.Context) error {
	var errs []error
	if err := a.e.Shutdown(ctx); err != nil {
		errs = append(errs, fmt.Errorf("http shutdown: %w", err))
	}
	if err := a.dispatcher.Close(ctx); err != nil {
		errs = append(errs, fmt.Errorf("mail dispatcher: %w", err))
	}
	if err := a.db.close(ctx); err != nil {
		errs = append(errs, fmt.Errorf("close store: %w", err))
	}
	return errors.Join(errs...)
}

// openStores picks the backend from the DATABASE_URL scheme.
func openStores(ctx context.Context, cfg config.Config, logger *zap.Logger) (*stores, error) {
	switch {
	case strings.HasPrefix(cfg.DatabaseURL, "mongodb://"), strings.HasPrefix(cfg.DatabaseURL, "mongodb+srv://"):
		client, err := mongo.Connect(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, err
		}
		database := client.Database(cfg.MongoDatabase)
		if err := mongo.EnsureIndexes(ctx, database); err != nil {
			_ = client.Disconnect(context.Background())
			return nil, err
		}
		if !cfg.MongoTransactions {
			logger.Warn("mongo transactions disabled, recipe writes fall back to compensation")
		}
		logger.Info("using mongodb store", zap.String("database", cfg.MongoDatabase))
		return &stores{
			users:   mongo.NewUserRepo(database),
			recipes: mongo.NewRecipeRepo(database),
			tx:      mongo.NewTransactor(client, cfg.MongoTransactions),
			close:   client.Disconnect,
		}, nil

	case strings.HasPrefix(cfg.DatabaseURL, "postgres://"), strings.HasPrefix(cfg.DatabaseURL, "postgresql://"):
		db, err := postgres.New(cfg.DatabaseURL)
		if err != nil {
			return nil, err
		}
		if cfg.DBMigrate {
			if err := postgres.RunMigrations(ctx, db); err != nil {
				_ = db.Close()
				return nil, err
			}
		}
		logger.Info("using postgres store")
		return &stores{
			users:   postgres.NewUserRepo(db),
			recipes: postgres.NewRecipeRepo(db),
			tx:      postgres.NewTransactor(db),
			close:   func(context.Context) error { return db.Close() },
		}, nil

	case strings.HasPrefix(cfg.DatabaseURL, "memory://"):
		store := memory.NewStore()
		logger.Warn("using in-memory store, data is lost on restart")
		return &stores{
			users:   store.Users(),
			recipes: store.Recipes(),
			tx:      store.Transactor(),
			close:   store.Close,
		}, nil

	default:
		return nil, fmt.Errorf("unsupported DATABASE_URL scheme: %q", cfg.DatabaseURL)
	}
}

// newImageService wires MinIO when it is configured. Without it the upload
// endpoint answers 503 and recipes must carry external image URLs.
func newImageService(ctx context.Context, cfg config.Config, logger *zap.Logger) (*service.ImageService, error) {
	imageCfg := service.ImageServiceConfig{
		Bucket:         cfg.MinIOBucket,
		MaxImageBytes:  cfg.RecipeImageMax,
		RegularWidth:   cfg.RecipeImageWidth,
		ImageProcessor: media.NewResizer(cfg.RecipeImageWidth),
	}
	if !cfg.StorageEnabled() {
		logger.Warn("MinIO not configured, recipe image uploads disabled")
		return service.NewImageService(nil, logger, imageCfg), nil
	}

	client, err := storage.NewClient(cfg.MinIOEndpoint, cfg.MinIOAccessKey, cfg.MinIOSecretKey, cfg.MinIOUseSSL)
	if err != nil {
		return nil, fmt.Errorf("minio client: %w", err)
	}
	publicBase := cfg.MinIOPublicURL
	if publicBase == "" {
		scheme := "http://"
		if cfg.MinIOUseSSL {
			scheme = "https://"
		}
		publicBase = scheme + cfg.MinIOEndpoint
	}
	objects := storage.NewStorage(client, publicBase)
	if err := objects.EnsureBucket(ctx, cfg.MinIOBucket); err != nil {
		return nil, fmt.Errorf("minio bucket: %w", err)
	}
	return service.NewImageService(objects, logger, imageCfg), nil
}
