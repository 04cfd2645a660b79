package main

import (
	"context"
	"fmt"
	"log"
	"time"

	"welcomeapp-be/internal/config"
	"welcomeapp-be/internal/entity"
	"welcomeapp-be/internal/repository/specification"
	"welcomeapp-be/internal/repository/unitofwork"
	"welcomeapp-be/pkg/database"
)

type seedAccount struct {
	email       string
	books       int
	balance     int
	lastSpent   time.Duration
	status      entity.AccountStatus
	graceSince  time.Duration
	description string
}

// Demo hosts covering every branch of the hourly run
var seedAccounts = []seedAccount{
	{email: "due@welcomeapp.dev", books: 1, balance: 5, lastSpent: 25 * time.Hour, status: entity.AccountStatusActive, description: "due, decays to 4"},
	{email: "fresh@welcomeapp.dev", books: 1, balance: 5, lastSpent: 2 * time.Hour, status: entity.AccountStatusActive, description: "not due yet"},
	{email: "busy@welcomeapp.dev", books: 5, balance: 10, lastSpent: 13 * time.Hour, status: entity.AccountStatusActive, description: "5 books, 12h interval"},
	{email: "lastcredit@welcomeapp.dev", books: 2, balance: 1, lastSpent: 22 * time.Hour, status: entity.AccountStatusActive, description: "enters grace period"},
	{email: "grace@welcomeapp.dev", books: 1, balance: 0, lastSpent: 72 * time.Hour, status: entity.AccountStatusGracePeriod, graceSince: 3 * 24 * time.Hour, description: "grace, 4 days left"},
	{email: "expired@welcomeapp.dev", books: 1, balance: 0, lastSpent: 10 * 24 * time.Hour, status: entity.AccountStatusGracePeriod, graceSince: 8 * 24 * time.Hour, description: "grace over, gets suspended"},
	{email: "suspended@welcomeapp.dev", books: 1, balance: 0, lastSpent: 30 * 24 * time.Hour, status: entity.AccountStatusSuspended, graceSince: 20 * 24 * time.Hour, description: "ignored"},
}

func main() {
	cfg := config.Load()

	db, err := database.NewGormDBFromDSN(cfg.Database.Connection, false)
	if err != nil {
		log.Fatal("Error: Failed to connect to database:", err)
	}

	ctx := context.Background()
	uow := unitofwork.NewRepositoryFactory(db).NewUnitOfWork(ctx)
	now := time.Now().UTC()

	log.Println("Seeding demo welcome books...")

	for _, a := range seedAccounts {
		existing, err := uow.AccountRepository().FindWelcomeBooks(ctx, specification.ByUserEmail{Email: a.email})
		if err != nil {
			log.Fatalf("Error: Failed to look up %s: %v", a.email, err)
		}
		if len(existing) > 0 {
			log.Printf("Account '%s' already exists, skipping...", a.email)
			continue
		}

		var suspendedAt *time.Time
		if a.graceSince > 0 {
			t := now.Add(-a.graceSince)
			suspendedAt = &t
		}

		for i := 1; i <= a.books; i++ {
			book := &entity.WelcomeBook{
				UserEmail:             a.email,
				Name:                  fmt.Sprintf("Welcome book %d", i),
				Slug:                  fmt.Sprintf("%s-%d", a.email[:len(a.email)-len("@welcomeapp.dev")], i),
				CreditsBalance:        a.balance,
				LastCreditConsumption: now.Add(-a.lastSpent),
				AccountStatus:         a.status,
				SuspendedAt:           suspendedAt,
			}
			if err := uow.AccountRepository().CreateWelcomeBook(ctx, book); err != nil {
				log.Fatalf("Error: Failed to create welcome book for %s: %v", a.email, err)
			}
		}
		log.Printf("Created %s (%d books): %s", a.email, a.books, a.description)
	}

	log.Println("Seeding completed!")
}
