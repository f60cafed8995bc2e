package bootstrap

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/gin-gonic/gin"

	googleauth "reup-backend/internal/auth"
	"reup-backend/internal/authz"
	"reup-backend/internal/invites"
	"reup-backend/internal/llm"
	anthropic "reup-backend/internal/llm/anthropic"
	"reup-backend/internal/preview"
	"reup-backend/internal/reconcile"
	"reup-backend/internal/resumes"
	"reup-backend/internal/shared/config"
	"reup-backend/internal/shared/server"
	"reup-backend/internal/shared/storage/db"
	"reup-backend/internal/shared/storage/kv"
	"reup-backend/internal/shared/storage/object"
	localstore "reup-backend/internal/shared/storage/object/local"
	s3store "reup-backend/internal/shared/storage/object/s3"
	"reup-backend/internal/users"
)

// App holds shared dependencies wired for serving.
type App struct {
	Config config.Config
	Router *gin.Engine
	DB     *sql.DB
	Store  object.ObjectStore
	KV     kv.Store

	InvitesRepo invites.Repo
	UsersRepo   users.Repo
	ResumesRepo resumes.Repo

	InvitesService *invites.Service
	UsersService   *users.Service
	ResumesService *resumes.Service

	Policy authz.Policy
	Gate   *authz.Gate

	GoogleAuth *googleauth.GoogleService
	Sweeper    *reconcile.Sweeper
}

// Build prepares shared dependencies and the HTTP router.
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

	kvStore, err := buildKV(ctx, cfg)
	if err != nil {
		return nil, err
	}

	app := &App{
		Config: cfg,
		DB:     sqlDB,
		Store:  store,
		KV:     kvStore,
	}

	if err := buildServices(app); err != nil {
		return nil, err
	}

	app.Router = server.NewRouter(server.RouterDeps{
		Config:     app.Config,
		Gate:       app.Gate,
		Policy:     app.Policy,
		GoogleAuth: app.GoogleAuth,
		Invites:    invites.NewHandler(app.InvitesService),
		Users:      users.NewHandler(app.UsersService),
		Resumes:    resumes.NewHandler(app.ResumesService),
	})

	return app, nil
}

// Close releases pooled connections. Safe on a partially built App.
func (a *App) Close() {
	if a.KV != nil {
		if err := a.KV.Close(); err != nil {
			log.Printf("bootstrap: close kv store: %v", err)
		}
	}
	if a.DB != nil {
		if err := a.DB.Close(); err != nil {
			log.Printf("bootstrap: close database: %v", err)
		}
	}
}

func buildDB(ctx context.Context, cfg config.Config) (*sql.DB, error) {
	if strings.TrimSpace(cfg.DatabaseURL) == "" {
		if isDevLike(cfg.Env) {
			log.Printf("bootstrap: DATABASE_URL empty; using in-memory repositories")
			return nil, nil
		}
		return nil, fmt.Errorf("DATABASE_URL is required")
	}

	opts := db.OptionsFromEnv(db.DefaultServerOptions())
	sqlDB, err := db.Connect(ctx, cfg.DatabaseURL, opts)
	if err != nil {
		if isDevLike(cfg.Env) {
			log.Printf("bootstrap: database connect failed; using in-memory repositories: %v", err)
			return nil, nil
		}
		return nil, err
	}

	if err := db.RunMigrations(sqlDB); err != nil {
		if isDevLike(cfg.Env) {
			log.Printf("bootstrap: migrations failed; using in-memory repositories: %v", err)
			_ = sqlDB.Close()
			return nil, nil
		}
		_ = sqlDB.Close()
		return nil, err
	}

	return sqlDB, nil
}

func buildStore(ctx context.Context, cfg config.Config) (object.ObjectStore, error) {
	switch cfg.ObjectStoreType {
	case "s3":
		if strings.TrimSpace(cfg.AWSRegion) == "" || strings.TrimSpace(cfg.S3Bucket) == "" {
			return nil, fmt.Errorf("OBJECT_STORE=s3 requires AWS_REGION and S3_BUCKET")
		}
		return s3store.New(ctx, cfg.AWSRegion, cfg.S3Bucket, cfg.S3Prefix, cfg.SSEKMSKeyID)
	default:
		return localstore.New(cfg.LocalStoreDir), nil
	}
}

func buildKV(ctx context.Context, cfg config.Config) (kv.Store, error) {
	switch cfg.KVStoreType {
	case "redis":
		redisStore, err := kv.NewRedisStore(ctx, cfg.RedisAddr, cfg.RedisPassword)
		if err != nil {
			if isDevLike(cfg.Env) {
				log.Printf("bootstrap: redis connect failed; using in-memory kv store: %v", err)
				return kv.NewMemoryStore(), nil
			}
			return nil, err
		}
		return redisStore, nil
	default:
		return kv.NewMemoryStore(), nil
	}
}

func buildLLM(cfg config.Config) (llm.Client, error) {
	if cfg.LLMProvider != "anthropic" {
		return llm.PlaceholderClient{}, nil
	}
	apiKey := strings.TrimSpace(os.Getenv("ANTHROPIC_API_KEY"))
	if apiKey == "" {
		if isDevLike(cfg.Env) {
			log.Printf("bootstrap: ANTHROPIC_API_KEY empty; analysis will fail until configured")
			return llm.PlaceholderClient{}, nil
		}
		return nil, fmt.Errorf("ANTHROPIC_API_KEY is required")
	}
	return anthropic.NewClient(apiKey, cfg.LLMModel)
}

func isDevLike(env string) bool {
	switch strings.ToLower(strings.TrimSpace(env)) {
	case "dev", "local":
		return true
	default:
		return false
	}
}

func buildServices(app *App) error {
	var inviteRepo invites.Repo
	var userRepo users.Repo
	var resumeRepo resumes.Repo

	if app.DB != nil {
		inviteRepo = &invites.PGRepo{DB: app.DB}
		userRepo = &users.PGRepo{DB: app.DB}
		resumeRepo = &resumes.PGRepo{DB: app.DB}
	} else {
		inviteRepo = invites.NewMemoryRepo()
		userRepo = users.NewMemoryRepo()
		resumeRepo = resumes.NewMemoryRepo()
	}

	llmClient, err := buildLLM(app.Config)
	if err != nil {
		return err
	}

	inviteSvc := invites.NewService(inviteRepo)
	userSvc := users.NewService(userRepo)
	resumeSvc := &resumes.Service{
		Store:    app.Store,
		KV:       app.KV,
		Repo:     resumeRepo,
		AI:       llmClient,
		Renderer: preview.NewPDFRenderer(),
		Users:    userSvc,
	}

	app.InvitesRepo = inviteRepo
	app.UsersRepo = userRepo
	app.ResumesRepo = resumeRepo
	app.InvitesService = inviteSvc
	app.UsersService = userSvc
	app.ResumesService = resumeSvc

	app.Policy = authz.NewEmailAllowlist(app.Config.AdminEmails)
	app.Gate = &authz.Gate{Policy: app.Policy, Invites: inviteSvc}

	app.GoogleAuth = googleauth.NewGoogleService(
		app.Config.GoogleClientID,
		app.Config.GoogleClientSecret,
		app.Config.GoogleRedirectURL,
		app.Config.UIRedirectURL,
		userSvc,
	)

	app.Sweeper = reconcile.NewSweeper(app.KV, resumeRepo, app.Config.ReconcileInterval)

	return nil
}
