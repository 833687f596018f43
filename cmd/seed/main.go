package main

import (
	"context"
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/projexhq/projex-api/internal/config"
	"github.com/projexhq/projex-api/internal/database"
	"github.com/projexhq/projex-api/internal/models"
	"github.com/projexhq/projex-api/internal/password"
	"github.com/projexhq/projex-api/internal/store"
	"go.uber.org/zap"
)

// projex-seed: populates a development database with a demo account and a
// sample project board. Safe to re-run; it bails out if the demo user exists.
func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck // best effort

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	client, err := database.NewClient(ctx, cfg.Mongo)
	if err != nil {
		logger.Fatal("database connection", zap.Error(err))
	}
	defer client.Disconnect(ctx) //nolint:errcheck

	db := client.Database(cfg.Mongo.Database)
	if err := database.EnsureIndexes(ctx, db); err != nil {
		logger.Fatal("ensure indexes", zap.Error(err))
	}

	users := store.NewUsers(db)
	projects := store.NewProjects(db)
	tasks := store.NewTasks(db)

	demoPassword := os.Getenv("SEED_DEMO_PASSWORD")
	if demoPassword == "" {
		demoPassword = "demo1234"
		logger.Warn("using default demo password, set SEED_DEMO_PASSWORD to override")
	}

	if _, err := users.FindByEmail(ctx, "demo@projex.local"); err == nil {
		logger.Info("demo user already present, nothing to do")
		return
	}

	hasher := password.NewHasher()
	hashed, err := hasher.Hash(demoPassword)
	if err != nil {
		logger.Fatal("hash password", zap.Error(err))
	}

	demo := &models.User{
		Name:     "Demo User",
		Email:    "demo@projex.local",
		Password: hashed,
	}
	if err := users.Create(ctx, demo); err != nil {
		logger.Fatal("create demo user", zap.Error(err))
	}

	project := &models.Project{
		Owner:       demo.ID,
		Name:        "Getting Started",
		Description: "A sample board showing the task workflow.",
		Members: []models.Member{
			{User: demo.ID, Role: models.RoleAdmin},
		},
	}
	if err := projects.Insert(ctx, project); err != nil {
		logger.Fatal("create demo project", zap.Error(err))
	}

	samples := []*models.Task{
		{
			Project:     project.ID,
			Name:        "Invite your team",
			Description: "Add members from the project settings page.",
			Status:      models.StatusToDo,
			Priority:    models.PriorityHigh,
			User:        demo.ID,
		},
		{
			Project:     project.ID,
			Name:        "Move this card to Done",
			Description: "Drag cards between columns to update their status.",
			Status:      models.StatusInProgress,
			Priority:    models.PriorityMedium,
			User:        demo.ID,
		},
	}
	for _, t := range samples {
		if err := tasks.Insert(ctx, t); err != nil {
			logger.Fatal("create demo task", zap.Error(err))
		}
	}

	logger.Info("seeding completed",
		zap.String("email", demo.Email),
		zap.String("project", project.Name),
	)
}
