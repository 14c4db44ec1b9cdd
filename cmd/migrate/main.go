package main

import (
	"flag"
	"log"

	"student-risk-be/internal/config"
	"student-risk-be/internal/model"
	"student-risk-be/pkg/database"
)

func main() {
	reset := flag.Bool("reset", false, "drop and recreate every table")
	flag.Parse()

	// 1. Load Configuration
	cfg := config.Load()

	// 2. Connect to Database using existing GORM helpers
	db, err := database.NewGormDB(cfg.Database.Driver, cfg.Database.Connection)
	if err != nil {
		log.Fatal("Error: Failed to connect to database:", err)
	}

	models := model.Models()

	if *reset {
		log.Println("Step 1: Dropping tables...")
		// reverse order so foreign keys go first
		for i := len(models) - 1; i >= 0; i-- {
			if err := db.Migrator().DropTable(models[i]); err != nil {
				log.Fatalf("Error: Failed to drop table for %T: %v", models[i], err)
			}
		}
	}

	log.Printf("Step 2: Running AutoMigrate for %d tables...", len(models))
	if err := db.AutoMigrate(models...); err != nil {
		log.Fatal("Error: AutoMigrate failed:", err)
	}

	log.Println("✅ Migration completed successfully")
}
