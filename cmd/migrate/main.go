package main

import (
	"log"
	"os"

	"source-intel-be/internal/model"
	"source-intel-be/pkg/database"

	"github.com/joho/godotenv"
)

func main() {
	// 1. Load Environment Variables
	if err := godotenv.Load(); err != nil {
		log.Println("Info: No .env file found, using system env")
	}

	dsn := os.Getenv("DB_CONNECTION_STRING")
	if dsn == "" {
		log.Fatal("Error: DB_CONNECTION_STRING is not set")
	}

	// 2. Connect to Database using existing GORM helpers
	db, err := database.NewGormDBFromDSN(dsn, os.Getenv("GO_ENV") == "production")
	if err != nil {
		log.Fatal("Error: Failed to connect to database:", err)
	}

	log.Println("Starting GORM Migration...")

	// 3. AutoMigrate
	models := []interface{}{
		&model.SynthesisDecision{},
	}
	if err := db.AutoMigrate(models...); err != nil {
		log.Fatalf("Error: AutoMigrate failed: %v", err)
	}

	// 4. Post-Migration: composite index and reporting view
	postMigrationSQL := []string{
		`CREATE INDEX IF NOT EXISTS idx_synthesis_decisions_session_created
		 ON synthesis_decisions (session_id, created_at DESC);`,

		// View: context_quality_summary
		`CREATE OR REPLACE VIEW context_quality_summary AS
		 SELECT context, COUNT(*) AS decisions, AVG(synthesis_quality) AS avg_quality,
		        SUM(CASE WHEN target_reached THEN 1 ELSE 0 END) AS targets_reached
		 FROM synthesis_decisions
		 GROUP BY context;`,
	}

	for _, sql := range postMigrationSQL {
		if err := db.Exec(sql).Error; err != nil {
			log.Printf("Warn: Failed to execute post-migration SQL: %v", err)
		}
	}

	log.Println("✅ Success: Database migration completed successfully via GORM.")
}
