package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"

	"github.com/VladKvetkin/paywebhook/internal/config"
	"github.com/VladKvetkin/paywebhook/internal/entitlement"
	"github.com/VladKvetkin/paywebhook/internal/gateway"
	"github.com/VladKvetkin/paywebhook/internal/handler"
	"github.com/VladKvetkin/paywebhook/internal/logger"
	"github.com/VladKvetkin/paywebhook/internal/metrics"
	"github.com/VladKvetkin/paywebhook/internal/server"
	"github.com/VladKvetkin/paywebhook/internal/services/jwttoken"
	"github.com/VladKvetkin/paywebhook/internal/storage"
	"github.com/VladKvetkin/paywebhook/internal/webhook"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

func main() {
	os.Exit(start())
}

func start() int {
	config, err := config.NewConfig()
	if err != nil {
		zap.L().Info("error create config", zap.Error(err))
		return 1
	}

	if err := logger.Initialize(config.LogLevel); err != nil {
		zap.L().Info("error initialize logger", zap.Error(err))
		return 1
	}

	defer zap.L().Sync()

	db, err := storage.Open(config.DatabaseDriver, config.DatabaseURI)
	if err != nil {
		zap.L().Info("error failed to connect to db", zap.Error(err))
		return 1
	}

	defer db.Close()

	sqlStorage, err := storage.NewSQLStorage(db)
	if err != nil {
		zap.L().Info("error failed to create storage", zap.Error(err))
		return 1
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		collectors.NewDBStatsCollector(db.DB, config.DatabaseDriver),
	)

	var (
		processor = webhook.NewProcessor(
			sqlStorage,
			entitlement.NewActivator(time.Now),
			config.ChecksumKey,
			webhook.WithSignatureMode(webhook.SignatureMode(config.SignatureMode)),
			webhook.WithMetrics(metrics.New(registry)),
		)
		gatewayClient = gateway.NewClient(config.GatewayAPIAddress, config.ClientID, config.APIKey)
	)

	server := server.NewServer(
		config,
		handler.NewHandler(sqlStorage, processor),
		jwttoken.NewManager(config.JWTSecret),
		registry,
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
	defer stop()

	eg, ctx := errgroup.WithContext(ctx)

	eg.Go(func() error {
		if err := server.Start(); err != nil {
			zap.L().Info("error starting server", zap.Error(err))
			return err
		}

		return nil
	})

	if config.WebhookURL != "" && gatewayClient.Configured() {
		eg.Go(func() error {
			// The gateway probes the URL during confirmation, so the server must be listening.
			select {
			case <-time.After(time.Second):
			case <-ctx.Done():
				return nil
			}

			if err := gatewayClient.ConfirmWebhook(ctx, config.WebhookURL); err != nil {
				zap.L().Error("error confirming webhook with gateway", zap.Error(err))
			}

			return nil
		})
	}

	<-ctx.Done()

	eg.Go(func() error {
		if err := server.Stop(); err != nil {
			zap.L().Info("error stopping server", zap.Error(err))
			return err
		}
		return nil
	})

	if err := eg.Wait(); err != nil {
		return 1
	}

	return 0
}
