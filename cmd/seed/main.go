// Seeding tool that registers demo devices from a YAML file.
// Usage:
//
//	seed [path/to/devices.yaml]
//
// The path defaults to SEED_FILE, then seed/devices.yaml. Database settings
// come from devtrack/pkg/config.
package main

import (
	"context"
	"os"

	"github.com/joho/godotenv"

	"devtrack/internal/device"
	"devtrack/internal/repository/postgres"
	"devtrack/internal/seed"
	"devtrack/pkg/config"
	"devtrack/pkg/logger"
)

func main() {
	log := logger.New("devtrack-seed")

	if err := godotenv.Load(); err != nil {
		log.Info("No .env file found, relying on environment variables", nil)
	}

	cfg := config.Load()
	if err := cfg.ValidateCore(); err != nil {
		log.Fatal("Invalid configuration", map[string]interface{}{"error": err.Error()})
	}

	path := getenv("SEED_FILE", "seed/devices.yaml")
	if len(os.Args) > 1 {
		path = os.Args[1]
	}

	f, err := os.Open(path)
	if err != nil {
		log.Fatal("Failed to open seed file", map[string]interface{}{"error": err.Error(), "path": path})
	}
	entries, err := seed.Parse(f)
	f.Close()
	if err != nil {
		log.Fatal("Invalid seed file", map[string]interface{}{"error": err.Error(), "path": path})
	}

	ctx := context.Background()
	db, err := postgres.Connect(ctx, cfg.Database)
	if err != nil {
		log.Fatal("Failed to connect to database", map[string]interface{}{"error": err.Error()})
	}
	defer db.Close()

	if cfg.Database.AutoCreate {
		if err := postgres.EnsureSchema(ctx, db); err != nil {
			log.Fatal("Failed to prepare devices table", map[string]interface{}{"error": err.Error()})
		}
	}

	svc := device.NewService(postgres.NewDeviceRepository(db), log)
	res, err := seed.Apply(ctx, svc, entries, log)
	if err != nil {
		log.Fatal("Seeding failed", map[string]interface{}{"error": err.Error(), "registered": res.Registered})
	}

	log.Info("Seeding complete", map[string]interface{}{
		"registered": res.Registered,
		"taken":      res.Taken,
		"skipped":    res.Skipped,
	})
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
