package container

import (
	"context"
	"fmt"
	"time"

	"writespace-backend/internal/config"
	"writespace-backend/internal/infrastructure/ai"
	infraCache "writespace-backend/internal/infrastructure/cache"
	"writespace-backend/internal/infrastructure/database"
	"writespace-backend/internal/infrastructure/google"
	"writespace-backend/internal/infrastructure/queue"
	"writespace-backend/internal/infrastructure/storage"
	"writespace-backend/pkg/cache"
	"writespace-backend/pkg/jwt"

	"github.com/rs/zerolog/log"

	// User domain
	"writespace-backend/internal/domains/user"
	userHandler "writespace-backend/internal/domains/user/handler"
	userRepo "writespace-backend/internal/domains/user/repository"
	userService "writespace-backend/internal/domains/user/service"

	// Blog domain
	blogHandler "writespace-backend/internal/domains/blog/handler"
	blogRepo "writespace-backend/internal/domains/blog/repository"
	blogService "writespace-backend/internal/domains/blog/service"
)

// ========================================
// CONTAINER STRUCT
// ========================================

// Container chứa TẤT CẢ dependencies của application.
// API server và worker dùng chung một container.
type Container struct {
	// ========================================
	// INFRASTRUCTURE LAYER
	// ========================================
	Config     *config.Config
	DB         *database.PostgresDB
	Cache      cache.Cache
	JWTManager *jwt.Manager
	Storage    *storage.MinIOStorage
	Images     *storage.ImageProcessor
	TaskClient *queue.TaskClient
	Generator  ai.Generator
	Google     google.IDTokenVerifier

	// ========================================
	// REPOSITORY LAYER
	// ========================================
	UserRepo    user.Repository
	SignupStore user.PendingSignupStore
	BlogRepo    blogRepo.Repository

	// ========================================
	// SERVICE LAYER
	// ========================================
	UserService user.Service
	BlogService blogService.ServiceInterface

	// ========================================
	// HANDLER LAYER
	// ========================================
	UserHandler *userHandler.UserHandler
	BlogHandler *blogHandler.BlogHandler
}

// ========================================
// CONSTRUCTOR: BUILD CONTAINER
// ========================================

// NewContainer tạo toàn bộ dependency graph theo thứ tự:
// Config → Infrastructure → Repositories → Services → Handlers
func NewContainer() (*Container, error) {
	log.Info().Msg("[Container] Initializing...")

	c := &Container{}

	// ========================================
	// STEP 1: LOAD CONFIGURATION
	// ========================================
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	c.Config = cfg
	log.Info().Str("env", cfg.App.Environment).Msg("[Container] Config loaded")

	// ========================================
	// STEP 2: INITIALIZE INFRASTRUCTURE
	// ========================================
	if err := c.initInfrastructure(); err != nil {
		c.Cleanup()
		return nil, err
	}

	// ========================================
	// STEP 3: REPOSITORIES → SERVICES → HANDLERS
	// ========================================
	c.initRepositories()
	c.initServices()
	c.initHandlers()

	log.Info().Msg("[Container] Initialized successfully")
	return c, nil
}

func (c *Container) initInfrastructure() error {
	cfg := c.Config

	// ----------------------------------------
	// DATABASE
	// ----------------------------------------
	dbConfig, err := config.LoadDatabaseConfig()
	if err != nil {
		return fmt.Errorf("failed to load database config: %w", err)
	}

	db := database.NewPostgresDB(dbConfig)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := db.Connect(ctx); err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	c.DB = db

	// ----------------------------------------
	// REDIS CACHE
	// ----------------------------------------
	redisCache := infraCache.NewRedisCache(cfg.RedisAddr(), cfg.Redis.Password, cfg.Redis.DB)
	if err := redisCache.Connect(ctx); err != nil {
		// Pending signups and OTP counters live in Redis, so this is fatal
		return fmt.Errorf("failed to connect to redis: %w", err)
	}
	c.Cache = redisCache

	// ----------------------------------------
	// JWT
	// ----------------------------------------
	c.JWTManager, err = jwt.NewManager(
		cfg.JWT.AccessSecret,
		cfg.JWT.RefreshSecret,
		cfg.JWT.AccessExpiry,
		cfg.JWT.RefreshExpiry,
	)
	if err != nil {
		return fmt.Errorf("failed to init jwt manager: %w", err)
	}

	// ----------------------------------------
	// OBJECT STORAGE
	// ----------------------------------------
	c.Storage, err = storage.NewMinIOStorage(ctx, cfg.MinIO)
	if err != nil {
		return fmt.Errorf("failed to init object storage: %w", err)
	}
	c.Images = storage.NewImageProcessor()

	// ----------------------------------------
	// TASK QUEUE + EXTERNAL APIS
	// ----------------------------------------
	c.TaskClient = queue.NewTaskClient(cfg.RedisAddr(), cfg.Redis.Password, cfg.Redis.DB)
	c.Generator = ai.NewGeminiClient(cfg.Gemini)
	c.Google = google.NewTokenInfoVerifier(cfg.Google)

	if cfg.Gemini.APIKey == "" {
		log.Warn().Msg("[Container] GEMINI_API_KEY not set, AI suggestions disabled")
	}
	if cfg.Google.ClientID == "" {
		log.Warn().Msg("[Container] GOOGLE_CLIENT_ID not set, Google sign-in will be rejected")
	}
	return nil
}

func (c *Container) initRepositories() {
	pool := c.DB.Pool

	c.UserRepo = userRepo.NewPostgresRepository(pool, c.Cache)
	c.SignupStore = userRepo.NewSignupStore(c.Cache)
	c.BlogRepo = blogRepo.NewPostgresRepository(pool)
}

func (c *Container) initServices() {
	cfg := c.Config

	c.UserService = userService.NewUserService(userService.Dependencies{
		Repo:     c.UserRepo,
		Signups:  c.SignupStore,
		Tokens:   c.JWTManager,
		Storage:  c.Storage,
		Images:   c.Images,
		Queue:    c.TaskClient,
		Google:   c.Google,
		Signup:   cfg.Signup,
		MinIO:    cfg.MinIO,
		Frontend: cfg.App.FrontendURL,
	})

	c.BlogService = blogService.NewBlogService(
		c.BlogRepo,
		c.Storage,
		c.Images,
		c.Generator,
		cfg.MinIO,
	)
}

func (c *Container) initHandlers() {
	c.UserHandler = userHandler.NewUserHandler(
		c.UserService,
		c.Config.Cookie,
		c.Config.JWT.RefreshExpiry,
		c.Config.Signup.OTPExpiry,
	)
	c.BlogHandler = blogHandler.NewBlogHandler(c.BlogService)
}

// Cleanup dọn dẹp resources khi shutdown. Safe on a partially built container.
func (c *Container) Cleanup() {
	log.Info().Msg("[Container] Cleaning up...")

	if c.TaskClient != nil {
		if err := c.TaskClient.Close(); err != nil {
			log.Warn().Err(err).Msg("[Container] Failed to close task client")
		}
	}

	if rc, ok := c.Cache.(*infraCache.RedisCache); ok {
		if err := rc.Close(); err != nil {
			log.Warn().Err(err).Msg("[Container] Failed to close Redis")
		}
	}

	if c.DB != nil {
		c.DB.Close()
	}

	log.Info().Msg("[Container] Cleanup completed")
}
