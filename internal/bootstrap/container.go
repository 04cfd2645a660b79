package bootstrap

import (
	"context"
	"log"

	"welcomeapp-be/internal/config"
	"welcomeapp-be/internal/controller"
	"welcomeapp-be/internal/pkg/logger"
	"welcomeapp-be/internal/pkg/mailer"
	"welcomeapp-be/internal/pkg/runlock"
	"welcomeapp-be/internal/repository/memory"
	"welcomeapp-be/internal/repository/unitofwork"
	"welcomeapp-be/internal/scheduler"
	"welcomeapp-be/internal/service"

	pktNats "welcomeapp-be/pkg/nats"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

type Container struct {
	// Controllers
	CronController        controller.ICronController
	AdminCreditController controller.IAdminCreditController

	// Services (exposed for cmd/ entrypoints)
	CreditConsumptionService service.ICreditConsumptionService
	LifecycleConsumerService service.ILifecycleConsumerService

	// Nil unless CRON_SCHEDULER_ENABLED=true
	Scheduler *scheduler.Scheduler

	Logger *logger.ZapLogger

	closers []func()
}

func NewContainer(db *gorm.DB, cfg *config.Config) *Container {
	// 1. Core Facades
	uowFactory := unitofwork.NewRepositoryFactory(db)
	sysLogger := logger.NewZapLogger(cfg.App.LogFilePath, cfg.IsProduction())
	lifecycleLogger := logger.NewIsolatedLogger("logs/lifecycle.log")

	c := &Container{Logger: sysLogger}

	var emailService mailer.IEmailService
	if cfg.SMTP.Host != "" {
		emailService = mailer.NewEmailService(
			cfg.SMTP.Host,
			cfg.SMTP.Port,
			cfg.SMTP.Email,
			cfg.SMTP.Password,
			cfg.SMTP.SenderName,
			cfg.App.DashboardURL,
		)
	} else {
		log.Printf("[WARN] SMTP_HOST is not set, lifecycle emails are disabled")
	}

	// 2. Event Bus
	watermillLogger := watermill.NewStdLogger(false, false)
	pubSub := gochannel.NewGoChannel(
		gochannel.Config{},
		watermillLogger,
	)
	c.closers = append(c.closers, func() { _ = pubSub.Close() })

	// 3. Infrastructure
	// NATS
	var forwarder service.EventForwarder
	natsPub, err := pktNats.NewPublisher(cfg.App.NatsURL)
	if err != nil {
		log.Printf("[WARN] Failed to connect to NATS Publisher: %v", err)
	} else {
		forwarder = natsPub
		c.closers = append(c.closers, natsPub.Close)
	}

	// Redis backs the run lock; without it runs are only serialised in-process
	var locker runlock.Locker
	opt, err := redis.ParseURL(cfg.App.RedisURL)
	if err != nil {
		log.Printf("[WARN] Failed to parse Redis URL: %v. Using direct Addr", err)
		opt = &redis.Options{
			Addr: cfg.App.RedisURL,
		}
	}
	rdb := redis.NewClient(opt)
	if _, err := rdb.Ping(context.Background()).Result(); err != nil {
		log.Printf("[WARN] Failed to connect to Redis: %v. Falling back to in-process run lock", err)
		_ = rdb.Close()
		locker = runlock.NewLocalLocker()
	} else {
		locker = runlock.NewRedisLocker(rdb, "welcomeapp:cron:")
		c.closers = append(c.closers, func() { _ = rdb.Close() })
	}

	// 4. Services
	runCache := memory.NewRunSummaryRepository()
	lifecyclePublisher := service.NewLifecyclePublisher(service.LifecycleTopic, pubSub)

	consumptionService := service.NewCreditConsumptionService(
		uowFactory,
		locker,
		cfg.Cron.LockTTL,
		lifecyclePublisher,
		runCache,
		sysLogger,
	)
	ledgerService := service.NewCreditLedgerService(uowFactory)
	lifecycleConsumer := service.NewLifecycleConsumerService(
		pubSub,
		service.LifecycleTopic,
		emailService,
		forwarder,
		lifecycleLogger,
	)

	if cfg.Cron.SchedulerEnabled {
		c.Scheduler = scheduler.New(consumptionService, cfg.Cron.SchedulerInterval, sysLogger)
	}

	// 5. Controllers
	c.CronController = controller.NewCronController(consumptionService, cfg.Cron.Secret)
	c.AdminCreditController = controller.NewAdminCreditController(consumptionService, ledgerService, sysLogger, cfg.Auth.JWTSecret)
	c.CreditConsumptionService = consumptionService
	c.LifecycleConsumerService = lifecycleConsumer

	return c
}

// Close releases connections in reverse order of creation
func (c *Container) Close() {
	if c.Scheduler != nil {
		c.Scheduler.Stop()
	}
	for i := len(c.closers) - 1; i >= 0; i-- {
		c.closers[i]()
	}
	_ = c.Logger.Sync()
}
