// Command consume_credits runs one credit consumption pass from the shell.
//
//	go run ./cmd/consume_credits            # apply
//	go run ./cmd/consume_credits -dry-run   # only print decisions
package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"os"
	"time"

	"welcomeapp-be/internal/bootstrap"
	"welcomeapp-be/internal/config"
	"welcomeapp-be/internal/entity"
	"welcomeapp-be/internal/service"
	"welcomeapp-be/pkg/database"

	"github.com/fatih/color"
)

func main() {
	dryRun := flag.Bool("dry-run", false, "evaluate every account without writing")
	timeout := flag.Duration("timeout", 10*time.Minute, "abort the run after this long")
	drain := flag.Duration("drain", 5*time.Second, "time left for lifecycle emails and events after a run")
	flag.Parse()

	cfg := config.Load()

	db, err := database.NewGormDBFromDSN(cfg.Database.Connection, false)
	if err != nil {
		log.Fatal("Error: Failed to connect to database:", err)
	}

	container := bootstrap.NewContainer(db, cfg)
	ctx, cancel := context.WithTimeout(context.Background(), *timeout)

	var code int
	if *dryRun {
		code = preview(ctx, container.CreditConsumptionService)
	} else {
		code = run(ctx, container, *drain)
	}

	cancel()
	container.Close()
	os.Exit(code)
}

func preview(ctx context.Context, svc service.ICreditConsumptionService) int {
	color.Cyan("Credit consumption dry run (%s)\n", time.Now().UTC().Format(time.RFC3339))

	decisions, err := svc.Preview(ctx, time.Now().UTC())
	if err != nil {
		color.Red("Failed: %v", err)
		return 1
	}

	for _, d := range decisions {
		switch {
		case d.Error != "":
			color.Red("  %-40s error: %s", d.UserEmail, d.Error)
		case d.Action == "none":
			color.White("  %-40s none     balance=%d status=%s", d.UserEmail, d.PreviousBalance, d.PreviousStatus)
		case d.Action == "suspend":
			color.Magenta("  %-40s suspend  %s -> %s", d.UserEmail, d.PreviousStatus, d.NewStatus)
		default:
			color.Yellow("  %-40s consume  balance %d -> %d status %s -> %s (every %.1fh, %d books)",
				d.UserEmail, d.PreviousBalance, d.NewBalance, d.PreviousStatus, d.NewStatus, d.IntervalHours, d.WelcomebookCount)
		}
	}

	color.Green("%d candidate accounts evaluated, nothing written", len(decisions))
	return 0
}

func run(ctx context.Context, c *bootstrap.Container, drain time.Duration) int {
	// Deliver lifecycle emails and NATS events for this run too
	if err := c.LifecycleConsumerService.Consume(ctx); err != nil {
		color.Yellow("Lifecycle consumer not started: %v", err)
	}

	summary, err := c.CreditConsumptionService.ConsumeCredits(ctx, entity.CronTriggerCLI)
	if err != nil {
		if errors.Is(err, service.ErrRunInProgress) {
			color.Yellow("Skipped: %v", err)
			return 2
		}
		color.Red("Failed: %v", err)
		return 1
	}

	color.Green("Run finished in %dms", summary.ExecutionTimeMs)
	color.White("  users processed:            %d", summary.UsersProcessed)
	color.White("  credits consumed:           %d", summary.CreditsConsumed)
	color.White("  users entered grace period: %d", summary.UsersEnteredGracePeriod)
	color.White("  users suspended:            %d", summary.UsersSuspended)

	if len(summary.Errors) > 0 {
		color.Red("  %d account errors:", len(summary.Errors))
		for _, e := range summary.Errors {
			color.Red("    %s", e)
		}
	}

	// Lifecycle side effects are delivered asynchronously by the consumer
	if summary.UsersEnteredGracePeriod+summary.UsersSuspended > 0 && drain > 0 {
		color.Cyan("Waiting %s for lifecycle notifications...", drain)
		select {
		case <-time.After(drain):
		case <-ctx.Done():
		}
	}
	return 0
}
