package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"fieldbook/internal/apiclient"
	"fieldbook/internal/config"
	"fieldbook/internal/events"
	"fieldbook/internal/export"
	"fieldbook/internal/history"
	"fieldbook/internal/metrics"
	"fieldbook/internal/notify"
	"fieldbook/internal/poller"
)

// The fieldbook daemon is the payment watcher: it re-arms confirmation
// polling for every locally recorded order still awaiting payment, records
// confirmations, and optionally notifies the customer.
func main() {
	_ = godotenv.Load()

	output := zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}
	logger := zerolog.New(output).With().Timestamp().Logger()

	cfg, err := config.Load(os.Getenv("FIELDBOOK_CONFIG_PATH"))
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to load config")
	}
	if cfg.API.BaseURL == "" {
		logger.Fatal().Msg("set api.base_url in config")
	}

	loc, err := time.LoadLocation(cfg.API.Timezone)
	if err != nil {
		logger.Fatal().Err(err).Str("timezone", cfg.API.Timezone).Msg("invalid api timezone")
	}

	client := apiclient.New(cfg.API.BaseURL, cfg.API.APIKey, loc)
	client.SetRateLimit(cfg.API.RatePerSecond, cfg.API.RateBurst)

	var rdb *redis.Client
	if cfg.Redis.Address != "" && cfg.CacheTTL() > 0 {
		rdb = redis.NewClient(&redis.Options{Addr: cfg.Redis.Address, Password: cfg.Redis.Password, DB: cfg.Redis.DB})
		client.UseRedisCache(rdb, cfg.CacheTTL())
	}

	store, err := history.Open(cfg.Database.Path)
	if err != nil {
		logger.Fatal().Err(err).Msg("open history db error")
	}
	defer store.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	bus := events.NewBus()
	bus.Subscribe(events.OrderSubmitted, func(e events.Event) error {
		return store.RecordOrder(ctx, history.OrderRecord{
			OrderID:    e.OrderID,
			SubCourtID: e.SubCourtID,
			SlotKeys:   e.SlotKeys,
			Amount:     e.Amount,
			Status:     history.StatusPending,
		})
	})
	bus.Subscribe(events.OrderConfirmed, func(e events.Event) error {
		return store.UpdateStatus(ctx, e.OrderID, cfg.Payment.TerminalStatus)
	})

	if cfg.Telegram.BotToken != "" && cfg.Telegram.ChatID != 0 {
		notifier, err := notify.NewTelegram(cfg.Telegram.BotToken, cfg.Telegram.ChatID, logger)
		if err != nil {
			logger.Fatal().Err(err).Msg("create telegram notifier error")
		}
		bus.Subscribe(events.OrderConfirmed, func(e events.Event) error {
			amount := e.Amount
			// Confirmation events carry no amount; the recorded order does.
			if rec, err := store.GetOrder(ctx, e.OrderID); err == nil {
				amount = rec.Amount
			}
			return notifier.PaymentConfirmed(e.OrderID, amount)
		})
	}

	metrics.Register()

	if cfg.Monitoring.HealthCheckPort == 0 {
		cfg.Monitoring.HealthCheckPort = 8090
	}
	go startHealthServer(ctx, cfg.Monitoring.HealthCheckPort, store, rdb, &logger)

	if cfg.Monitoring.PrometheusEnabled {
		if cfg.Monitoring.PrometheusPort == 0 {
			cfg.Monitoring.PrometheusPort = 9090
		}
		go startMetricsServer(ctx, cfg.Monitoring.PrometheusPort, &logger)
	}

	backup := history.NewBackupService(cfg.Database.Path, history.BackupConfig{
		Enabled:       cfg.Backup.Enabled,
		StoragePath:   cfg.Backup.Path,
		Interval:      time.Duration(cfg.Backup.IntervalHours) * time.Hour,
		RetentionDays: cfg.Backup.RetentionDays,
	}, logger)
	go backup.Start(ctx)

	pending, err := store.PendingOrders(ctx)
	if err != nil {
		logger.Fatal().Err(err).Msg("load pending orders error")
	}
	logger.Info().Int("orders", len(pending)).Msg("payment watcher started")

	// One poller per pending order; each owns exactly one loop.
	for _, order := range pending {
		p := poller.New(client, logger,
			poller.WithInterval(cfg.PollInterval()),
			poller.WithTerminalStatus(cfg.Payment.TerminalStatus),
			poller.WithBus(bus),
		)
		if err := p.Start(ctx, order.OrderID); err != nil {
			logger.Error().Err(err).Str("order_id", order.OrderID).Msg("start polling error")
		}
	}

	<-ctx.Done()
	logger.Info().Msg("payment watcher stopped")
}

func startHealthServer(ctx context.Context, port int, store *history.Store, rdb *redis.Client, logger *zerolog.Logger) {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	mux.HandleFunc("/export", export.Handler(store, *logger))
	mux.HandleFunc("/readyz", func(w http.ResponseWriter, _ *http.Request) {
		ctxPing, cancel := context.WithTimeout(ctx, time.Second)
		defer cancel()
		if err := store.Ping(ctxPing); err != nil {
			http.Error(w, "db not ready", http.StatusServiceUnavailable)
			return
		}
		if rdb != nil {
			if err := rdb.Ping(ctxPing).Err(); err != nil {
				http.Error(w, "redis not ready", http.StatusServiceUnavailable)
				return
			}
		}
		w.WriteHeader(http.StatusOK)
	})

	serve(ctx, fmt.Sprintf(":%d", port), mux, "health", logger)
}

func startMetricsServer(ctx context.Context, port int, logger *zerolog.Logger) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	serve(ctx, fmt.Sprintf(":%d", port), mux, "metrics", logger)
}

func serve(ctx context.Context, addr string, handler http.Handler, name string, logger *zerolog.Logger) {
	srv := &http.Server{Addr: addr, Handler: handler}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	logger.Info().Str("addr", addr).Msgf("%s server started", name)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error().Err(err).Msgf("%s server error", name)
	}
}
