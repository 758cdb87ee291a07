package app

import (
	"context"
	"coursemaster/internal/cache"
	"coursemaster/internal/config"
	"coursemaster/internal/controller"
	"coursemaster/internal/gateway"
	"coursemaster/internal/repository"
	"coursemaster/internal/service"
	"coursemaster/internal/session"
	"coursemaster/pkg/configwatcher"
	"coursemaster/pkg/database"
	"coursemaster/pkg/logger"
	"coursemaster/pkg/monitoring"
	"coursemaster/pkg/security"
	"coursemaster/pkg/tracing"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"github.com/robfig/cron/v3"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type App struct {
	Config   *config.Config
	Router   *gin.Engine
	DB       *gorm.DB
	Redis    *redis.Client
	Sessions *session.Registry

	// ConfigFile 非空时监听该文件并热更新
	ConfigFile string

	services        *services
	limiter         *security.RateLimiter
	scheduler       *cron.Cron
	tracer          *sdktrace.TracerProvider
	configCallbacks []func(*config.Config)
}

type repositories struct {
	user       *repository.UserRepository
	course     *repository.CourseRepository
	enrollment *repository.EnrollmentRepository
	quiz       *repository.QuizRepository
	assignment *repository.AssignmentRepository
}

type services struct {
	auth        *service.AuthService
	storage     *service.StorageService
	catalog     *service.CatalogService
	enrollment  *service.EnrollmentService
	learning    *service.LearningService
	quiz        *service.QuizService
	assignment  *service.AssignmentService
	courseAdmin *service.CourseAdminService
	dashboard   *service.DashboardService
}

type controllers struct {
	auth       *controller.AuthController
	catalog    *controller.CatalogController
	enrollment *controller.EnrollmentController
	learning   *controller.LearningController
	quiz       *controller.QuizController
	assignment *controller.AssignmentController
	dashboard  *controller.DashboardController
	admin      *controller.AdminController
	health     *controller.HealthController
}

func (a *App) RegisterConfigCallback(callback func(*config.Config)) {
	a.configCallbacks = append(a.configCallbacks, callback)
}

func (a *App) initRepositories(db *gorm.DB) *repositories {
	courses := repository.NewCourseRepository(db)
	return &repositories{
		user:       repository.NewUserRepository(db),
		course:     courses,
		enrollment: repository.NewEnrollmentRepository(db, courses),
		quiz:       repository.NewQuizRepository(db),
		assignment: repository.NewAssignmentRepository(db),
	}
}

// newGateway 学员读写路径的数据来源；管理后台始终直接访问数据库
func newGateway(cfg *config.GatewayConfig, repos *repositories) gateway.Gateway {
	log := logger.Named("gateway")
	if cfg.Mode == config.GatewayRemote {
		log.Info("Using remote course API", zap.String("base_url", cfg.BaseURL))
		return gateway.NewREST(cfg.BaseURL, cfg.Timeout(), log)
	}
	return gateway.NewStore(repos.course, repos.enrollment, repos.quiz, log)
}

func (a *App) initServices(repos *repositories, cfg *config.Config, rdb *redis.Client) (*services, error) {
	s := &services{}

	storage, err := service.NewStorageService(&cfg.Storage)
	if err != nil {
		return nil, err
	}
	s.storage = storage

	gw := newGateway(&cfg.Gateway, repos)
	snapshot := cache.NewCatalogCache(rdb, logger.Named("cache"))
	enrollmentCache := cache.NewEnrollmentCache(rdb, cache.EnrollmentTTL, logger.Named("cache"))

	s.auth = service.NewAuthService(repos.user, a.Sessions, &cfg.JWT, logger.Named("auth"))
	s.catalog = service.NewCatalogService(gw, snapshot, cfg.Catalog.PageSize, logger.Named("catalog"))
	s.enrollment = service.NewEnrollmentService(gw, enrollmentCache, logger.Named("enrollment"))
	s.learning = service.NewLearningService(gw, s.enrollment, a.Sessions, logger.Named("learning"))
	s.quiz = service.NewQuizService(gw, repos.quiz, a.Sessions, logger.Named("quiz"))
	s.assignment = service.NewAssignmentService(repos.assignment, logger.Named("assignment"))
	s.courseAdmin = service.NewCourseAdminService(
		repos.course,
		repos.enrollment,
		repos.assignment,
		repos.user,
		s.catalog,
		s.storage,
		logger.Named("admin"),
	)
	s.dashboard = service.NewDashboardService(s.catalog, s.enrollment)

	return s, nil
}

func (a *App) initControllers(s *services, db *gorm.DB, rdb *redis.Client) *controllers {
	return &controllers{
		auth:       controller.NewAuthController(s.auth),
		catalog:    controller.NewCatalogController(s.catalog, s.enrollment, s.quiz),
		enrollment: controller.NewEnrollmentController(s.enrollment),
		learning:   controller.NewLearningController(s.learning),
		quiz:       controller.NewQuizController(s.quiz),
		assignment: controller.NewAssignmentController(s.assignment),
		dashboard:  controller.NewDashboardController(s.dashboard),
		admin:      controller.NewAdminController(s.courseAdmin),
		health:     controller.NewHealthController(db, rdb),
	}
}

func (a *App) setupMiddlewares(router *gin.Engine, cfg *config.Config) {
	router.Use(security.CORS(cfg.CORS.AllowedOrigins))
	router.Use(security.Secure())

	a.limiter = security.NewRateLimiter(cfg.RateLimit.MaxRequests, time.Duration(cfg.RateLimit.WindowMinutes)*time.Minute)
	router.Use(a.limiter.Middleware())

	// 分布式追踪中间件
	if cfg.Tracing.Enabled {
		router.Use(tracing.GinMiddleware())
	}

	router.Use(monitoring.MetricsMiddleware())
}

// registerReloadCallbacks 配置文件变更后可以在线生效的部分
func (a *App) registerReloadCallbacks() {
	a.RegisterConfigCallback(func(cfg *config.Config) {
		logger.SetMode(cfg.Server.Mode)
	})
	a.RegisterConfigCallback(func(cfg *config.Config) {
		a.services.catalog.SetPageSize(cfg.Catalog.PageSize)
	})
	a.RegisterConfigCallback(func(cfg *config.Config) {
		a.limiter.Update(cfg.RateLimit.MaxRequests, time.Duration(cfg.RateLimit.WindowMinutes)*time.Minute)
	})
}

func (a *App) applyConfig(cfg *config.Config) {
	for _, cb := range a.configCallbacks {
		cb(cfg)
	}
}

func (a *App) refreshCatalog() {
	ctx, cancel := context.WithTimeout(context.Background(), a.Config.Gateway.Timeout()+5*time.Second)
	defer cancel()
	if err := a.services.catalog.Refresh(ctx); err != nil {
		logger.Log.Warn("Catalog snapshot refresh failed", zap.Error(err))
	}
}

func (a *App) evictIdleSessions() {
	if n := a.Sessions.EvictIdle(a.Config.Session.IdleTimeout()); n > 0 {
		logger.Log.Info("Evicted idle sessions", zap.Int("count", n), zap.Int("active", a.Sessions.Len()))
	}
}

func (a *App) startBackgroundTasks(ctx context.Context) {
	go a.limiter.Cleanup(ctx)

	a.scheduler = cron.New()
	if _, err := a.scheduler.AddFunc(a.Config.Catalog.RefreshCron, a.refreshCatalog); err != nil {
		logger.Log.Error("Invalid catalog refresh schedule",
			zap.String("schedule", a.Config.Catalog.RefreshCron), zap.Error(err))
	}
	if _, err := a.scheduler.AddFunc(a.Config.Session.EvictCron, a.evictIdleSessions); err != nil {
		logger.Log.Error("Invalid session eviction schedule",
			zap.String("schedule", a.Config.Session.EvictCron), zap.Error(err))
	}
	a.scheduler.Start()

	// 启动时预热快照
	go a.refreshCatalog()

	if a.ConfigFile != "" {
		go func() {
			if err := configwatcher.WatchConfig(ctx, a.ConfigFile, a.applyConfig, logger.Named("config")); err != nil {
				logger.Log.Warn("Config hot reload disabled", zap.Error(err))
			}
		}()
	}
}

func NewApp(cfg *config.Config) *App {
	logger.InitLogger(cfg)
	logger.Log.Info("Logger initialized successfully")

	db, err := database.InitDB(&cfg.Database, cfg.Server.Mode)
	if err != nil {
		logger.Log.Fatal("Failed to initialize database", zap.Error(err))
	}

	if cfg.Server.Mode != gin.ReleaseMode || cfg.ForceMigrate {
		if err := database.Migrate(db); err != nil {
			logger.Log.Fatal("Failed to migrate database", zap.Error(err))
		}
		logger.Log.Info("Database migrated")
	}

	app := &App{
		Config:   cfg,
		DB:       db,
		Sessions: session.NewRegistry(),
	}
	if cfg.MigrateOnly {
		return app
	}

	if cfg.Server.Mode == gin.DebugMode {
		if err := database.SeedIfEmpty(db); err != nil {
			logger.Log.Warn("Failed to seed sample data", zap.Error(err))
		}
	}

	// 缓存不可用时使用进程内缓存
	if cfg.Redis.Enabled {
		rdb, err := database.InitRedis(&cfg.Redis)
		if err != nil {
			logger.Log.Warn("Redis unavailable, falling back to in-process cache", zap.Error(err))
		} else {
			app.Redis = rdb
		}
	}

	repos := app.initRepositories(db)
	services, err := app.initServices(repos, cfg, app.Redis)
	if err != nil {
		logger.Log.Fatal("Failed to initialize services", zap.Error(err))
	}
	app.services = services
	controllers := app.initControllers(services, db, app.Redis)

	// 监控初始化
	monitoring.Init()
	controller.RegisterValidators()

	gin.SetMode(cfg.Server.Mode)
	router := gin.New()
	router.Use(gin.Recovery())
	app.Router = router

	app.setupMiddlewares(router, cfg)

	if cfg.Tracing.Enabled {
		tp, err := tracing.InitTracer("coursemaster", cfg.Tracing.CollectorEndpoint)
		if err != nil {
			logger.Log.Fatal("Failed to initialize tracing", zap.Error(err))
		}
		app.tracer = tp
	}

	app.registerRoutes(router, controllers, cfg)

	if cfg.Storage.Type == "local" {
		router.Static("/uploads", cfg.Storage.LocalPath)
	}

	app.registerReloadCallbacks()

	return app
}

func (a *App) Run() {
	ctx, stop := context.WithCancel(context.Background())
	defer stop()
	a.startBackgroundTasks(ctx)

	srv := &http.Server{
		Addr:    ":" + a.Config.Server.Port,
		Handler: a.Router,
	}

	// 启动服务器
	go func() {
		logger.Log.Info("Server running", zap.String("port", a.Config.Server.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Log.Fatal("listen", zap.Error(err))
		}
	}()

	// 等待中断信号优雅地关闭服务器（设置5秒的超时时间）
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Log.Info("Shutting down server...")

	stop()
	<-a.scheduler.Stop().Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Log.Error("Server forced to shutdown", zap.Error(err))
	}

	// 关闭所有学习页面，之后到达的保存结果被丢弃
	a.Sessions.CloseAll()

	if a.tracer != nil {
		if err := a.tracer.Shutdown(shutdownCtx); err != nil {
			logger.Log.Error("Failed to shutdown tracer provider", zap.Error(err))
		}
	}
	if a.Redis != nil {
		a.Redis.Close()
	}
	if sqlDB, err := a.DB.DB(); err == nil {
		sqlDB.Close()
	}

	logger.Log.Info("Server exiting")
}
