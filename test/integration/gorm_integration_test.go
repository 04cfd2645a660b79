package integration

import (
	"context"
	"log"
	"os"
	"strings"
	"testing"
	"time"

	"welcomeapp-be/internal/entity"
	"welcomeapp-be/internal/model"
	"welcomeapp-be/internal/pkg/logger"
	"welcomeapp-be/internal/pkg/runlock"
	"welcomeapp-be/internal/repository/implementation"
	"welcomeapp-be/internal/repository/memory"
	"welcomeapp-be/internal/repository/specification"
	"welcomeapp-be/internal/repository/unitofwork"
	"welcomeapp-be/internal/service"
	"welcomeapp-be/pkg/database"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func openDB(t *testing.T) *gorm.DB {
	t.Helper()

	// Load .env from root
	if err := godotenv.Load("../../.env"); err != nil {
		log.Println("No .env file found, using system env")
	}

	dsn := os.Getenv("DB_CONNECTION_STRING")
	if dsn == "" {
		t.Skip("Skipping integration test: DB_CONNECTION_STRING not set")
	}

	gormDB, err := database.NewGormDBFromDSN(dsn, false)
	require.NoError(t, err)
	require.NoError(t, gormDB.AutoMigrate(&model.WelcomeBook{}, &model.CreditTransaction{}, &model.CronRun{}))
	return gormDB
}

func uniqueEmail(prefix string) string {
	return prefix + "-" + strings.ReplaceAll(uuid.NewString(), "-", "") + "@example.com"
}

func seedBooks(t *testing.T, uow unitofwork.UnitOfWork, email string, count, balance int, last time.Time, status entity.AccountStatus, suspendedAt *time.Time) {
	t.Helper()
	for i := 0; i < count; i++ {
		err := uow.AccountRepository().CreateWelcomeBook(context.Background(), &entity.WelcomeBook{
			UserEmail:             email,
			Name:                  "Integration book",
			Slug:                  uuid.NewString(),
			CreditsBalance:        balance,
			LastCreditConsumption: last,
			AccountStatus:         status,
			SuspendedAt:           suspendedAt,
		})
		require.NoError(t, err)
	}
}

func TestAccountRepository_Postgres(t *testing.T) {
	gormDB := openDB(t)
	ctx := context.Background()
	uow := unitofwork.NewRepositoryFactory(gormDB).NewUnitOfWork(ctx)

	email := uniqueEmail("repo")
	t.Cleanup(func() {
		gormDB.Unscoped().Where("user_email = ?", email).Delete(&model.WelcomeBook{})
	})

	seedBooks(t, uow, email, 3, 4, time.Now().Add(-30*time.Hour), entity.AccountStatusActive, nil)

	account, err := uow.AccountRepository().FindByEmail(ctx, strings.ToUpper(email))
	require.NoError(t, err)
	require.NotNil(t, account)
	assert.Equal(t, 3, account.WelcomebookCount)
	assert.Equal(t, 4, account.CreditsBalance)

	t.Run("UpdateByEmail touches every row", func(t *testing.T) {
		balance := 2
		rows, err := uow.AccountRepository().UpdateByEmail(ctx, email, entity.AccountUpdate{CreditsBalance: &balance})
		require.NoError(t, err)
		assert.Equal(t, int64(3), rows)

		books, err := uow.AccountRepository().FindWelcomeBooks(ctx, specification.ByUserEmail{Email: email})
		require.NoError(t, err)
		for _, b := range books {
			assert.Equal(t, 2, b.CreditsBalance)
		}
	})

	t.Run("Negative balance is rejected by the check constraint", func(t *testing.T) {
		negative := -1
		_, err := uow.AccountRepository().UpdateByEmail(ctx, email, entity.AccountUpdate{CreditsBalance: &negative})
		require.Error(t, err)
		assert.True(t, implementation.IsCheckViolation(err))
	})

	t.Run("Soft deleted books leave the account", func(t *testing.T) {
		seedBooks(t, uow, email, 1, 2, time.Now().Add(-30*time.Hour), entity.AccountStatusActive, nil)
		before, err := uow.AccountRepository().FindByEmail(ctx, email)
		require.NoError(t, err)
		require.Equal(t, 4, before.WelcomebookCount)

		var extra model.WelcomeBook
		require.NoError(t, gormDB.Where("user_email = ?", email).Order("created_at DESC").First(&extra).Error)
		require.NoError(t, gormDB.Delete(&extra).Error)

		after, err := uow.AccountRepository().FindByEmail(ctx, email)
		require.NoError(t, err)
		assert.Equal(t, 3, after.WelcomebookCount)

		candidates, err := uow.AccountRepository().FindConsumptionCandidates(ctx)
		require.NoError(t, err)
		var found *entity.Account
		for _, acc := range candidates {
			if acc.UserEmail == email {
				found = acc
			}
		}
		require.NotNil(t, found)
		assert.Equal(t, 3, found.WelcomebookCount)

		balance := 1
		rows, err := uow.AccountRepository().UpdateByEmail(ctx, email, entity.AccountUpdate{CreditsBalance: &balance})
		require.NoError(t, err)
		assert.Equal(t, int64(3), rows, "soft deleted rows are not billed")
	})
}

func TestCreditConsumption_Postgres(t *testing.T) {
	gormDB := openDB(t)
	ctx := context.Background()
	factory := unitofwork.NewRepositoryFactory(gormDB)
	uow := factory.NewUnitOfWork(ctx)
	now := time.Now().UTC().Truncate(time.Second)

	a := uniqueEmail("a")
	b := uniqueEmail("b")
	c := uniqueEmail("c")
	t.Cleanup(func() {
		emails := []string{a, b, c}
		gormDB.Unscoped().Where("user_email IN ?", emails).Delete(&model.WelcomeBook{})
		gormDB.Exec("ALTER TABLE credit_transactions DISABLE TRIGGER USER")
		gormDB.Where("user_email IN ?", emails).Delete(&model.CreditTransaction{})
		gormDB.Exec("ALTER TABLE credit_transactions ENABLE TRIGGER USER")
	})

	graceStart := now.Add(-8 * 24 * time.Hour)
	seedBooks(t, uow, a, 1, 5, now.Add(-25*time.Hour), entity.AccountStatusActive, nil)
	seedBooks(t, uow, b, 2, 1, now.Add(-22*time.Hour), entity.AccountStatusActive, nil)
	seedBooks(t, uow, c, 1, 0, now.Add(-10*24*time.Hour), entity.AccountStatusGracePeriod, &graceStart)

	pubSub := gochannel.NewGoChannel(gochannel.Config{}, watermill.NopLogger{})
	defer pubSub.Close()

	svc := service.NewCreditConsumptionService(
		factory,
		runlock.NewLocalLocker(),
		time.Minute,
		service.NewLifecyclePublisher(service.LifecycleTopic, pubSub),
		memory.NewRunSummaryRepository(),
		logger.NewNopLogger(),
	)

	summary, err := svc.ConsumeCreditsAt(ctx, entity.CronTriggerCLI, now)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, summary.CreditsConsumed, 2)

	accA, err := uow.AccountRepository().FindByEmail(ctx, a)
	require.NoError(t, err)
	assert.Equal(t, 4, accA.CreditsBalance)

	accB, err := uow.AccountRepository().FindByEmail(ctx, b)
	require.NoError(t, err)
	assert.Equal(t, 0, accB.CreditsBalance)
	assert.Equal(t, entity.AccountStatusGracePeriod, accB.AccountStatus)
	require.NotNil(t, accB.SuspendedAt)
	assert.WithinDuration(t, now, *accB.SuspendedAt, time.Second)

	accC, err := uow.AccountRepository().FindByEmail(ctx, c)
	require.NoError(t, err)
	assert.Equal(t, entity.AccountStatusSuspended, accC.AccountStatus)

	ledgerB, err := uow.CreditTransactionRepository().FindAll(ctx, specification.ByUserEmail{Email: b})
	require.NoError(t, err)
	require.Len(t, ledgerB, 1)
	assert.Equal(t, 0, ledgerB[0].BalanceAfter)
	assert.Equal(t, float64(2), ledgerB[0].Metadata["welcomebook_count"])

	ledgerC, err := uow.CreditTransactionRepository().Count(ctx, specification.ByUserEmail{Email: c})
	require.NoError(t, err)
	assert.Zero(t, ledgerC)
}
