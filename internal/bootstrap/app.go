package bootstrap

import (
	"context"
	"database/sql"
	"errors"
	"log"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/ADRE9/financial-document-analyzer-fullstack/internal/analyzer"
	"github.com/ADRE9/financial-document-analyzer-fullstack/internal/documents"
	"github.com/ADRE9/financial-document-analyzer-fullstack/internal/shared/config"
	"github.com/ADRE9/financial-document-analyzer-fullstack/internal/shared/server"
	"github.com/ADRE9/financial-document-analyzer-fullstack/internal/shared/storage/db"
	"github.com/ADRE9/financial-document-analyzer-fullstack/internal/shared/storage/object"
	localstore "github.com/ADRE9/financial-document-analyzer-fullstack/internal/shared/storage/object/local"
	s3store "github.com/ADRE9/financial-document-analyzer-fullstack/internal/shared/storage/object/s3"
	"github.com/ADRE9/financial-document-analyzer-fullstack/internal/validation"
)

var errDatabaseURLRequired = errors.New("DATABASE_URL is required")

// App holds shared dependencies.
type App struct {
	Config    config.Config
	Router    *gin.Engine
	DB        *sql.DB
	Store     object.ObjectStore
	Repo      documents.Repo
	Validator *validation.Validator
	Service   *documents.Service
	Processor *documents.Processor
	Handler   *documents.Handler
}

// Build prepares shared dependencies and wires routes.
func Build(cfg config.Config) (*App, error) {
	if strings.TrimSpace(cfg.Env) == "" {
		cfg.Env = "dev"
	}
	if strings.TrimSpace(cfg.ObjectStoreType) == "" {
		cfg.ObjectStoreType = "local"
	}
	ctx := context.Background()

	sqlDB, err := buildDB(ctx, cfg)
	if err != nil {
		return nil, err
	}

	store, err := buildStore(ctx, cfg)
	if err != nil {
		return nil, err
	}

	app := &App{
		Config: cfg,
		DB:     sqlDB,
		Store:  store,
	}
	buildServices(app)

	app.Router = server.NewRouter(server.RouterDeps{
		Config:           app.Config,
		DocumentsHandler: app.Handler,
	})

	return app, nil
}

// Close releases held resources. Dispatched analysis jobs are drained first.
func (a *App) Close() {
	if a.Processor != nil {
		a.Processor.Wait()
	}
	if a.DB != nil {
		_ = a.DB.Close()
	}
}

func buildDB(ctx context.Context, cfg config.Config) (*sql.DB, error) {
	if strings.TrimSpace(cfg.DatabaseURL) == "" {
		if isDevLike(cfg.Env) {
			log.Printf("bootstrap: DATABASE_URL empty; using in-memory repository")
			return nil, nil
		}
		return nil, errDatabaseURLRequired
	}

	opts := db.OptionsFromEnv(db.DefaultServerOptions())
	sqlDB, err := db.Connect(ctx, cfg.DatabaseURL, opts)
	if err != nil {
		if isDevLike(cfg.Env) {
			log.Printf("bootstrap: database connect failed; using in-memory repository: %v", err)
			return nil, nil
		}
		return nil, err
	}

	if err := db.RunMigrations(ctx, sqlDB); err != nil {
		sqlDB.Close()
		return nil, err
	}

	return sqlDB, nil
}

func buildStore(ctx context.Context, cfg config.Config) (object.ObjectStore, error) {
	switch cfg.ObjectStoreType {
	case "s3":
		return s3store.New(ctx, cfg.AWSRegion, cfg.S3Bucket, cfg.S3Prefix, cfg.SSEKMSKeyID)
	default:
		return localstore.New(cfg.LocalStoreDir), nil
	}
}

func buildServices(app *App) {
	if app.DB != nil {
		app.Repo = &documents.PGRepo{DB: app.DB}
	} else {
		app.Repo = documents.NewMemoryRepo()
	}

	app.Validator = validation.New(validation.Options{
		MaxSizeBytes: app.Config.MaxFileSizeMB << 20,
		Strict:       app.Config.StrictPDFValidation,
		SkipChecks:   app.Config.SkipFileValidation,
		MaxPages:     app.Config.MaxPDFPages,
		MaxObjects:   int64(app.Config.MaxPDFObjects),
		ParseBudget:  30 * time.Second,
	})

	app.Service = &documents.Service{
		Repo:      app.Repo,
		Store:     app.Store,
		Validator: app.Validator,
	}
	app.Processor = documents.NewProcessor(app.Service, analyzer.NewLocal(), app.Config.AnalyzeWorkers)
	app.Handler = documents.NewHandler(app.Service, app.Processor, app.Config.MaxFileSizeMB<<20)
}

func isDevLike(env string) bool {
	switch strings.ToLower(strings.TrimSpace(env)) {
	case "dev", "local":
		return true
	default:
		return false
	}
}
