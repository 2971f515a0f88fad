// Package worker assembles and runs the Temporal worker process: registries,
// the booking ledger, market data, delivery, the archive and the periodic
// maintenance jobs all come together here.
package worker

import (
	"context"
	"fmt"
	"strings"

	"github.com/redis/go-redis/v9"
	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"go.temporal.io/sdk/activity"
	"go.temporal.io/sdk/client"
	sdkworker "go.temporal.io/sdk/worker"
	"go.temporal.io/sdk/workflow"

	"github.com/openderiv/rfqdesk/internal/activities"
	"github.com/openderiv/rfqdesk/internal/archive"
	"github.com/openderiv/rfqdesk/internal/booking"
	"github.com/openderiv/rfqdesk/internal/codec"
	"github.com/openderiv/rfqdesk/internal/compliance"
	"github.com/openderiv/rfqdesk/internal/config"
	"github.com/openderiv/rfqdesk/internal/delivery"
	"github.com/openderiv/rfqdesk/internal/mapping"
	"github.com/openderiv/rfqdesk/internal/marketdata"
	"github.com/openderiv/rfqdesk/internal/metrics"
	"github.com/openderiv/rfqdesk/internal/pricing"
	"github.com/openderiv/rfqdesk/internal/product"
	"github.com/openderiv/rfqdesk/internal/values"
	wf "github.com/openderiv/rfqdesk/internal/workflow"
)

// defaultRiskFree is the flat discount rate the pricers use until a proper
// curve service exists.
const defaultRiskFree = 0.05

// eligibilityClasses validates the configured per-client asset classes. A
// misspelled class would otherwise silently lock the client out of it.
func eligibilityClasses(raw map[string][]string) (map[string][]product.AssetClass, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	out := make(map[string][]product.AssetClass, len(raw))
	for lei, classes := range raw {
		list := make([]product.AssetClass, 0, len(classes))
		for _, c := range classes {
			ac := product.AssetClass(strings.ToUpper(strings.TrimSpace(c)))
			if !ac.Valid() {
				return nil, fmt.Errorf("unknown asset class %q for client %s", c, lei)
			}
			list = append(list, ac)
		}
		out[lei] = list
	}
	return out, nil
}

// Run builds the worker from configuration and blocks until ctx is cancelled
// or the worker stops.
func Run(ctx context.Context, cfg *config.Config, log zerolog.Logger) error {
	log = log.With().Str("component", "worker").Logger()

	bankLEI, err := values.NewLEI(cfg.BankLEI)
	if err != nil {
		if !cfg.DevMode {
			return fmt.Errorf("worker: bank LEI: %w", err)
		}
		// Dev mode runs against a placeholder desk identity.
		bankLEI = values.MustLEI("529900DEVDESK0000042")
	}

	c, err := client.Dial(client.Options{
		HostPort:      cfg.TemporalHostPort,
		Namespace:     cfg.TemporalNamespace,
		DataConverter: codec.DataConverter(),
	})
	if err != nil {
		return fmt.Errorf("worker: dial temporal at %s: %w", cfg.TemporalHostPort, err)
	}
	defer c.Close()

	// Market data: shared redis store when configured, in-process otherwise.
	var rdb *redis.Client
	store := marketdata.Store(marketdata.NewMemoryStore())
	if cfg.RedisAddr != "" {
		rdb = redis.NewClient(&redis.Options{Addr: cfg.RedisAddr, Password: cfg.RedisPassword})
		if err := rdb.Ping(ctx).Err(); err != nil {
			return fmt.Errorf("worker: ping redis at %s: %w", cfg.RedisAddr, err)
		}
		defer rdb.Close()
		store = marketdata.NewRedisStore(rdb)
	}

	ledgerDB, err := booking.Open(cfg.LedgerPath())
	if err != nil {
		return fmt.Errorf("worker: open ledger: %w", err)
	}
	defer ledgerDB.Close()
	ledger := booking.NewService(ledgerDB, bankLEI, log)

	taggedCodec := codec.New(codec.DefaultRegistry())

	var sender delivery.Sender
	if cfg.WebhookURL != "" {
		var dedup delivery.Dedup = delivery.NewMemoryDedup()
		if rdb != nil {
			dedup = delivery.NewRedisDedup(rdb, 0)
		}
		sender = delivery.NewWebhook(cfg.WebhookURL, dedup, taggedCodec, log)
	} else {
		log.Warn().Msg("no webhook URL configured, documents go to the log only")
		sender = delivery.NewLogSender(log)
	}

	var archiver activities.Archiver
	if cfg.ArchiveBucket != "" {
		st, err := archive.New(ctx, archive.Config{
			AccountID:       cfg.ArchiveAccountID,
			AccessKeyID:     cfg.ArchiveAccessKeyID,
			SecretAccessKey: cfg.ArchiveSecretKey,
			Bucket:          cfg.ArchiveBucket,
			Region:          cfg.ArchiveRegion,
		}, taggedCodec, log)
		if err != nil {
			return fmt.Errorf("worker: archive: %w", err)
		}
		archiver = st
	}

	mappers := mapping.NewRegistry()
	mapping.RegisterDefaults(mappers)
	mappers.Freeze()

	eligibility, err := eligibilityClasses(cfg.ClientEligibility)
	if err != nil {
		return fmt.Errorf("worker: client eligibility: %w", err)
	}

	checks := compliance.NewRegistry()
	checks.Register(compliance.NewRestrictedInstruments(cfg.RestrictedInstruments))
	checks.Register(compliance.NewProductEligibility(eligibility))
	creditLimit, err := decimal.NewFromString(cfg.DefaultCreditLimit)
	if err != nil {
		return fmt.Errorf("worker: default credit limit %q: %w", cfg.DefaultCreditLimit, err)
	}
	checks.Register(compliance.NewCreditLimit(nil, creditLimit))
	checks.Register(compliance.NewTenorLimit(cfg.MaxTenorMonths))
	checks.Freeze()

	pricers := pricing.NewRegistry()
	pricing.RegisterDefaults(pricers, store, defaultRiskFree)
	pricers.Freeze()

	acts := activities.New(mappers, checks, pricers, ledger, sender, archiver, log)

	// Metrics endpoint.
	metricsSrv := metrics.NewServer(cfg.MetricsAddr, log)
	go func() {
		if err := metricsSrv.Start(); err != nil {
			log.Error().Err(err).Msg("metrics server stopped")
		}
	}()
	defer func() { _ = metricsSrv.Stop() }()

	// Market data stream, when a feed is configured.
	if cfg.MarketDataWSURL != "" {
		stream := marketdata.NewStreamClient(cfg.MarketDataWSURL, store, log)
		go func() {
			if err := stream.Run(ctx); err != nil && ctx.Err() == nil {
				log.Error().Err(err).Msg("market data stream stopped")
			}
		}()
	}

	// Ledger maintenance on a schedule: WAL checkpoints keep the sqlite file
	// compact, the health check surfaces corruption early.
	maintenance := cron.New()
	if _, err := maintenance.AddFunc("@hourly", func() {
		if err := ledgerDB.WALCheckpoint(""); err != nil {
			log.Error().Err(err).Msg("ledger WAL checkpoint failed")
		}
	}); err != nil {
		return fmt.Errorf("worker: schedule WAL checkpoint: %w", err)
	}
	if _, err := maintenance.AddFunc("@every 6h", func() {
		if err := ledgerDB.HealthCheck(context.Background()); err != nil {
			log.Error().Err(err).Msg("ledger health check failed")
		}
	}); err != nil {
		return fmt.Errorf("worker: schedule health check: %w", err)
	}
	maintenance.Start()
	defer maintenance.Stop()

	w := sdkworker.New(c, wf.TaskQueue, sdkworker.Options{})
	w.RegisterWorkflowWithOptions(wf.StructuredProductRFQ, workflow.RegisterOptions{Name: wf.TypeName})
	w.RegisterActivityWithOptions(acts.MapProduct, activity.RegisterOptions{Name: wf.ActivityMapProduct})
	w.RegisterActivityWithOptions(acts.RunPreTradeChecks, activity.RegisterOptions{Name: wf.ActivityPreTradeChecks})
	w.RegisterActivityWithOptions(acts.PriceProduct, activity.RegisterOptions{Name: wf.ActivityPriceProduct})
	w.RegisterActivityWithOptions(acts.GenerateAndSendIndicative, activity.RegisterOptions{Name: wf.ActivityGenerateIndicative})
	w.RegisterActivityWithOptions(acts.BookTrade, activity.RegisterOptions{Name: wf.ActivityBookTrade})
	w.RegisterActivityWithOptions(acts.SendConfirmation, activity.RegisterOptions{Name: wf.ActivitySendConfirmation})

	log.Info().
		Str("task_queue", wf.TaskQueue).
		Str("temporal", cfg.TemporalHostPort).
		Msg("worker starting")

	stopCh := make(chan interface{})
	go func() {
		<-ctx.Done()
		close(stopCh)
	}()
	return w.Run(stopCh)
}
