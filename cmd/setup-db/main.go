package main

import (
	"context"
	"log"
	"time"

	"github.com/joho/godotenv"
	"github.com/projexhq/projex-api/internal/config"
	"github.com/projexhq/projex-api/internal/database"
)

// projex-setup-db creates the collection indexes. The server does this on
// startup as well; this binary exists for deploy hooks that run with
// broader database privileges than the service account.
func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	client, err := database.NewClient(ctx, cfg.Mongo)
	if err != nil {
		log.Fatalf("db: %v", err)
	}
	defer client.Disconnect(ctx) //nolint:errcheck

	if err := database.EnsureIndexes(ctx, client.Database(cfg.Mongo.Database)); err != nil {
		log.Fatalf("ensure indexes: %v", err)
	}
	log.Println("indexes created")
}
