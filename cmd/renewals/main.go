package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/yungbote/storefront-backend/internal/app"
	domainagg "github.com/yungbote/storefront-backend/internal/domain/aggregates"
)

func main() {
	var dryRun bool
	var limit int
	var schedule string
	flag.BoolVar(&dryRun, "dry-run", false, "report due subscriptions without charging")
	flag.IntVar(&limit, "limit", 0, "limit subscriptions per batch (0 = no limit)")
	flag.StringVar(&schedule, "schedule", "", "cron expression to run batches on (empty = run once and exit)")
	flag.Parse()

	application, err := app.New()
	if err != nil {
		fmt.Printf("init app: %v\n", err)
		os.Exit(1)
	}
	defer application.Close()

	log := application.Log.With("cmd", "renewals")

	runBatch := func(ctx context.Context) {
		start := time.Now()
		result, err := application.Aggregates.Subscription.ProcessDueRenewals(ctx, domainagg.ProcessRenewalsInput{
			Limit:  limit,
			DryRun: dryRun,
		})
		if err != nil {
			log.Error("renewal batch failed", "error", err)
			return
		}
		application.Metrics.ObserveRenewalBatch(result.Processed, result.Renewed, result.Failed, time.Since(start))
		log.Info("renewal batch complete",
			"processed", result.Processed,
			"renewed", result.Renewed,
			"failed", result.Failed,
			"dry_run", dryRun,
			"took", time.Since(start).String(),
		)
		for _, outcome := range result.Outcomes {
			if outcome.Err != "" {
				log.Warn("renewal outcome",
					"subscription_id", outcome.SubscriptionID,
					"status", outcome.Status,
					"error", outcome.Err,
				)
			}
		}
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if schedule == "" {
		runBatch(ctx)
		return
	}

	c := cron.New()
	if _, err := c.AddFunc(schedule, func() { runBatch(ctx) }); err != nil {
		log.Error("invalid cron schedule", "schedule", schedule, "error", err)
		os.Exit(1)
	}
	log.Info("renewal scheduler started", "schedule", schedule)
	c.Start()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig

	log.Info("shutting down renewal scheduler")
	stopCtx := c.Stop()
	<-stopCtx.Done()
}
