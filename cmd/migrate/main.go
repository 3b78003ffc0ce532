package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"time"

	"github.com/joho/godotenv"
	"github.com/naasdev/naas/internal/config"
	"github.com/naasdev/naas/internal/logger"
	"github.com/naasdev/naas/internal/postgres"
)

func main() {
	// Parse command line flags
	dryRun := flag.Bool("dry-run", false, "List pending migrations without executing them")
	flag.Parse()

	_ = godotenv.Load()

	// Load configuration
	cfg, err := config.NewConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Initialize logger
	logger, err := logger.NewLogger(cfg)
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}

	logger.Infow("Connecting to database", "host", cfg.Postgres.Host)
	db, err := postgres.NewDB(cfg, logger)
	if err != nil {
		logger.Fatalw("Failed to connect to postgres", "error", err)
	}
	defer db.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	logger.Info("Running database migrations...")
	versions, err := db.Migrate(ctx, *dryRun)
	if err != nil {
		logger.Fatalw("Failed to apply migrations", "error", err)
	}

	if len(versions) == 0 {
		fmt.Println("Schema is up to date")
		return
	}

	verb := "Applied"
	if *dryRun {
		verb = "Pending"
	}
	for _, v := range versions {
		fmt.Printf("%s: %s\n", verb, v)
	}
	fmt.Println("Migration process completed")
}
