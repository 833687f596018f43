package app

import (
	"context"
	"fmt"
	"net/http"

	"github.com/projexhq/projex-api/internal/activity"
	"github.com/projexhq/projex-api/internal/cache"
	"github.com/projexhq/projex-api/internal/config"
	"github.com/projexhq/projex-api/internal/database"
	"github.com/projexhq/projex-api/internal/httpapi"
	"github.com/projexhq/projex-api/internal/httpapi/handlers"
	httpmiddleware "github.com/projexhq/projex-api/internal/httpapi/middleware"
	"github.com/projexhq/projex-api/internal/notify"
	"github.com/projexhq/projex-api/internal/password"
	"github.com/projexhq/projex-api/internal/revocation"
	"github.com/projexhq/projex-api/internal/services/activityfeed"
	"github.com/projexhq/projex-api/internal/services/auth"
	"github.com/projexhq/projex-api/internal/services/notification"
	"github.com/projexhq/projex-api/internal/services/project"
	"github.com/projexhq/projex-api/internal/services/task"
	"github.com/projexhq/projex-api/internal/store"
	"github.com/projexhq/projex-api/internal/token"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// App wires core dependencies and exposes server lifecycle controls.
type App struct {
	cfg         *config.Config
	logger      *zap.Logger
	mongoClient *mongo.Client
	redis       *redis.Client
	httpServer  *http.Server
}

// New constructs the application.
func New(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*App, error) {
	mongoClient, err := database.NewClient(ctx, cfg.Mongo)
	if err != nil {
		return nil, err
	}
	db := mongoClient.Database(cfg.Mongo.Database)
	if cfg.Mongo.EnsureIndexes {
		if err := database.EnsureIndexes(ctx, db); err != nil {
			return nil, err
		}
	}

	redisClient, err := cache.New(cfg.Redis)
	if err != nil {
		return nil, err
	}

	tokenSvc, err := token.NewService(cfg.Token)
	if err != nil {
		return nil, err
	}

	users := store.NewUsers(db)
	projects := store.NewProjects(db)
	tasks := store.NewTasks(db)
	activityLogs := store.NewActivityLogs(db)
	notifications := store.NewNotifications(db)

	recorder := activity.NewRecorder(activityLogs, logger)
	notifier := notify.NewNotifier(notifications, logger)
	hasher := password.NewHasher()
	revoker := revocation.New(redisClient, cfg.Redis.Namespace)
	uploads := handlers.NewUploadSaver(cfg.Uploads)

	authService := auth.New(auth.Dependencies{
		Users:    users,
		TokenSvc: tokenSvc,
		Hasher:   hasher,
		Revoker:  revoker,
		Logger:   logger,
	})
	projectService := project.New(project.Dependencies{
		Projects: projects,
		Users:    users,
		Recorder: recorder,
		Notifier: notifier,
		Logger:   logger,
	})
	taskService := task.New(task.Dependencies{
		Tasks:    tasks,
		Projects: projects,
		Users:    users,
		Recorder: recorder,
		Notifier: notifier,
		Logger:   logger,
	})
	feedService := activityfeed.New(activityLogs)
	notificationService := notification.New(notifications)

	production := cfg.IsProduction()
	authMiddleware := httpmiddleware.NewAuth(tokenSvc, revoker)

	router := httpapi.NewRouter(httpapi.RouterDeps{
		HealthHandler:      handlers.Health,
		MetricsHandler:     promhttp.Handler(),
		Auth:               handlers.NewAuthHandler(authService, uploads, logger, production),
		Projects:           handlers.NewProjectHandler(projectService, logger, production),
		Tasks:              handlers.NewTaskHandler(taskService, uploads, logger, production),
		Activity:           handlers.NewActivityHandler(feedService, logger, production),
		Notifications:      handlers.NewNotificationHandler(notificationService, logger, production),
		RequireAuthHandler: authMiddleware.RequireAuth,
	})

	server := &http.Server{
		Addr:              fmt.Sprintf("%s:%d", cfg.HTTP.Host, cfg.HTTP.Port),
		Handler:           router,
		ReadTimeout:       cfg.HTTP.ReadTimeout,
		ReadHeaderTimeout: cfg.HTTP.ReadHeaderTimeout,
		WriteTimeout:      cfg.HTTP.WriteTimeout,
		IdleTimeout:       cfg.HTTP.IdleTimeout,
	}

	return &App{
		cfg:         cfg,
		logger:      logger,
		mongoClient: mongoClient,
		redis:       redisClient,
		httpServer:  server,
	}, nil
}

// Run starts the HTTP server.
func (a *App) Run() error {
	a.logger.Info("starting HTTP server", zap.String("addr", a.httpServer.Addr))
	return a.httpServer.ListenAndServe()
}

// Shutdown gracefully stops the HTTP server and closes resources.
func (a *App) Shutdown(ctx context.Context) error {
	shutdownErr := a.httpServer.Shutdown(ctx)

	if err := a.mongoClient.Disconnect(ctx); err != nil {
		a.logger.Warn("failed to disconnect mongo client", zap.Error(err))
		if shutdownErr == nil {
			shutdownErr = err
		}
	}
	if err := a.redis.Close(); err != nil {
		a.logger.Warn("failed to close redis client", zap.Error(err))
		if shutdownErr == nil {
			shutdownErr = err
		}
	}
	return shutdownErr
}
