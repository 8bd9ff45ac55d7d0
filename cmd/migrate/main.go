package main

import (
	"context"
	"flag"
	"log"
	"os"
	"time"

	"github.com/hamed0406/uptimeengine/internal/config"
	"github.com/hamed0406/uptimeengine/internal/repo/postgres"
)

func main() {
	cfgPath := flag.String("config", os.Getenv("ENGINE_CONFIG"), "path to a YAML config file")
	flag.Parse()

	cfg, err := config.Load(*cfgPath)
	if err != nil {
		log.Fatal(err)
	}
	if cfg.Store.DatabaseURL == "" {
		log.Fatal("store.database_url (or DATABASE_URL) is required")
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()
	if err := postgres.Migrate(ctx, cfg.Store.DatabaseURL); err != nil {
		log.Fatal(err)
	}
	log.Println("migrations applied")
}
