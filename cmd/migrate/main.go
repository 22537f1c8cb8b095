package main

import (
	"github.com/sirupsen/logrus"
	"github.com/spf13/pflag"

	"loja/internal/config"
	"loja/internal/database"
)

// Main entry point for migration
func main() {
	drop := pflag.Bool("drop", false, "drop every table before migrating")
	pflag.Parse()

	cfg, err := config.Load()
	if err != nil {
		logrus.Fatalf("Failed to load configuration: %v", err)
	}

	db, err := database.Open(cfg)
	if err != nil {
		logrus.Fatalf("Failed to connect to database: %v", err)
	}
	defer database.Close(db)

	if *drop {
		if err := database.Drop(db); err != nil {
			logrus.Fatalf("Failed to drop tables: %v", err)
		}
		logrus.Warn("All tables dropped")
	}
	if err := database.Migrate(db); err != nil {
		logrus.Fatalf("Migration failed: %v", err)
	}
}
