package main

import (
	"context"
	"encoding/hex"
	"time"

	"checkout-flow/activities"
	"checkout-flow/codec"
	"checkout-flow/config"
	"checkout-flow/drafts"
	"checkout-flow/logging"
	"checkout-flow/workflows"

	"go.temporal.io/sdk/client"
	"go.temporal.io/sdk/worker"
	"go.uber.org/zap"
)

// Version information - update this when deploying new versions
const (
	WorkerVersion = "1.0.0"
	BuildID       = "1.0.0"
)

const (
	// Memory drafts older than this are dropped; a checkout never waits longer
	draftMaxAge        = 24 * time.Hour
	draftSweepInterval = 10 * time.Minute
)

func main() {
	logger := logging.NewLogger()
	defer logger.Sync()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal(err)
	}
	if cfg.GeneratedKey {
		logger.Warnw("using generated encryption key; set ENCRYPTION_KEY to share it with the server and starter",
			"key", hex.EncodeToString(cfg.EncryptionKey))
	}

	dataConverter, err := codec.NewEncryptionDataConverter(cfg.EncryptionKey)
	if err != nil {
		logger.Fatalw("failed to create encryption data converter", "error", err)
	}

	c, err := client.Dial(client.Options{
		HostPort:      cfg.TemporalAddress,
		DataConverter: dataConverter,
		Logger:        logging.NewTemporalLogger(logger),
	})
	if err != nil {
		logger.Fatalw("unable to create Temporal client", "error", err)
	}
	defer c.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	store, closeStore := openDraftStore(ctx, cfg, logger)
	defer closeStore()

	buildID := cfg.BuildID
	if buildID == "" {
		buildID = BuildID
	}

	// Worker versioning requires server-side task queue configuration
	w := worker.New(c, cfg.TaskQueue, worker.Options{
		BuildID:                                buildID,
		MaxConcurrentActivityExecutionSize:     100,
		MaxConcurrentWorkflowTaskExecutionSize: 50,
	})

	w.RegisterWorkflow(workflows.CheckoutWorkflow)
	w.RegisterWorkflow(workflows.RedirectReturnWorkflow)

	backendActivities := activities.NewBackendActivities(cfg.BackendURL)
	w.RegisterActivity(backendActivities.CreatePayment)
	w.RegisterActivity(backendActivities.DeleteOrder)

	draftActivities := activities.NewDraftActivities(store)
	w.RegisterActivity(draftActivities.SaveDraft)
	w.RegisterActivity(draftActivities.LoadDraft)
	w.RegisterActivity(draftActivities.ClearDraft)

	logger.Infow("starting Temporal worker",
		"version", WorkerVersion,
		"buildID", buildID,
		"temporalAddress", cfg.TemporalAddress,
		"taskQueue", cfg.TaskQueue,
		"backendURL", cfg.BackendURL,
		"postgresDrafts", cfg.DraftStoreDSN != "",
	)

	if err := w.Run(worker.InterruptCh()); err != nil {
		logger.Fatalw("unable to start worker", "error", err)
	}
}

// openDraftStore picks PostgreSQL when a DSN is configured and the
// in-memory store otherwise.
func openDraftStore(ctx context.Context, cfg config.Config, logger *zap.SugaredLogger) (drafts.Store, func()) {
	if cfg.DraftStoreDSN != "" {
		pg, err := drafts.NewPostgresStore(ctx, cfg.DraftStoreDSN)
		if err != nil {
			logger.Fatalw("failed to open draft store", "error", err)
		}
		return pg, pg.Close
	}

	mem := drafts.NewMemoryStore()
	go mem.RunSweeper(ctx, draftSweepInterval, draftMaxAge, func(n int) {
		logger.Infow("swept stale drafts", "count", n)
	})
	return mem, func() {}
}
