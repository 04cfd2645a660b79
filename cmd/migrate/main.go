package main

import (
	"log"

	"welcomeapp-be/internal/config"
	"welcomeapp-be/internal/model"
	"welcomeapp-be/pkg/database"
)

func main() {
	// 1. Load Environment Variables
	cfg := config.Load()

	// 2. Connect to Database using existing GORM helpers
	db, err := database.NewGormDBFromDSN(cfg.Database.Connection, true)
	if err != nil {
		log.Fatal("Error: Failed to connect to database:", err)
	}

	log.Println("Starting GORM Migration...")

	// 3. Pre-Migration: Extensions (gen_random_uuid)
	log.Println("Step 1: Setting up Extensions...")

	setupSQL := []string{
		`CREATE EXTENSION IF NOT EXISTS pgcrypto;`,
	}

	for _, sql := range setupSQL {
		if err := db.Exec(sql).Error; err != nil {
			log.Printf("Warn: Failed to execute setup SQL: %v. Continuing...", err)
		}
	}

	// 4. AutoMigrate
	log.Println("Step 2: Running AutoMigrate...")

	models := []interface{}{
		&model.WelcomeBook{},
		&model.CreditTransaction{},
		&model.CronRun{},
	}

	if err := db.AutoMigrate(models...); err != nil {
		log.Fatalf("Error: AutoMigrate failed: %v", err)
	}

	// 5. Post-Migration: constraints and indexes AutoMigrate does not express
	log.Println("Step 3: Creating constraints, indexes and triggers...")

	postMigrationSQL := []string{
		// Candidate scan of the hourly run
		`CREATE INDEX IF NOT EXISTS idx_welcome_books_spending
		 ON welcome_books (account_status, credits_balance)
		 WHERE deleted_at IS NULL;`,

		`CREATE INDEX IF NOT EXISTS idx_credit_transactions_email_created
		 ON credit_transactions (user_email, created_at DESC);`,

		`DO $$ BEGIN
		   IF NOT EXISTS (SELECT 1 FROM pg_constraint WHERE conname = 'chk_welcome_books_account_status') THEN
		     ALTER TABLE welcome_books ADD CONSTRAINT chk_welcome_books_account_status
		       CHECK (account_status IN ('active', 'grace_period', 'suspended', 'to_delete'));
		   END IF;
		 END $$;`,

		// The ledger is append-only
		`CREATE OR REPLACE FUNCTION reject_credit_transaction_change() RETURNS trigger LANGUAGE plpgsql AS $$
		BEGIN
		  RAISE EXCEPTION 'credit_transactions is append-only';
		END; $$;`,

		`DROP TRIGGER IF EXISTS trg_credit_transactions_append_only ON credit_transactions;`,
		`CREATE TRIGGER trg_credit_transactions_append_only
		 BEFORE UPDATE OR DELETE ON credit_transactions
		 FOR EACH ROW EXECUTE FUNCTION reject_credit_transaction_change();`,
	}

	for _, sql := range postMigrationSQL {
		if err := db.Exec(sql).Error; err != nil {
			log.Printf("Warn: Failed to execute post-migration SQL: %v", err)
		}
	}

	log.Println("✅ Success: Database migration completed successfully via GORM.")
}
