package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"golang.org/x/sync/errgroup"

	"github.com/joker-bingo/payment-bot/src/internal/adapter/gateway/chapa"
	"github.com/joker-bingo/payment-bot/src/internal/adapter/http/middleware"
	"github.com/joker-bingo/payment-bot/src/internal/adapter/http/webhook"
	"github.com/joker-bingo/payment-bot/src/internal/adapter/repository/memory"
	"github.com/joker-bingo/payment-bot/src/internal/adapter/repository/postgres"
	"github.com/joker-bingo/payment-bot/src/internal/adapter/telegram"
	"github.com/joker-bingo/payment-bot/src/internal/config"
	"github.com/joker-bingo/payment-bot/src/internal/conversation"
	"github.com/joker-bingo/payment-bot/src/internal/logger"
	"github.com/joker-bingo/payment-bot/src/internal/usecase/services"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := postgres.Open(ctx, cfg.DatabaseDSN)
	if err != nil {
		log.Fatalf("open database: %v", err)
	}
	defer db.Close()

	migrateCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	if err := postgres.RunMigrations(migrateCtx, db, cfg.MigrationsDir); err != nil {
		cancel()
		log.Fatalf("run migrations: %v", err)
	}
	cancel()

	bot, err := tgbotapi.NewBotAPI(cfg.BotToken)
	if err != nil {
		log.Fatalf("connect telegram: %v", err)
	}

	gateway, err := chapa.NewClient(
		cfg.ChapaSecret,
		cfg.CallbackURL,
		cfg.ReturnURL,
		cfg.SettlingDelay,
		chapa.WithBaseURL(cfg.ChapaBaseURL),
	)
	if err != nil {
		log.Fatalf("build payment gateway: %v", err)
	}

	ledgerRepo := postgres.NewLedgerRepository(db)
	txRepo := postgres.NewTransactionRepository(db)
	methodRepo := memory.NewPayoutMethodRepository()

	sessions := conversation.NewSessions()
	transport := telegram.NewTransport(bot)
	collector := conversation.NewCollector(transport, sessions, cfg.CollectTimeout)

	deposits := services.NewDepositService(ledgerRepo, gateway, collector, transport)
	withdrawals := services.NewWithdrawalService(ledgerRepo, methodRepo, gateway, collector, transport)
	transfers := services.NewTransferService(ledgerRepo, collector, transport)
	accounts := services.NewAccountService(ledgerRepo, txRepo, collector, transport)

	dispatcher := telegram.NewDispatcher(bot, sessions, transport, deposits, withdrawals, transfers, accounts)

	router := webhook.NewRouter(
		webhook.NewHandler(cfg.WebhookSecret, deposits),
		webhook.NewOpsHandler(gateway, txRepo),
		middleware.BasicAuth(cfg.OpsChannelID, cfg.OpsChannelKey),
	)
	server := &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	group, groupCtx := errgroup.WithContext(ctx)

	group.Go(func() error {
		return dispatcher.Run(groupCtx)
	})

	group.Go(func() error {
		logger.Info("http server starting", logger.Fields{"port": cfg.HTTPPort})
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	group.Go(func() error {
		<-groupCtx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	if err := group.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		log.Fatalf("server stopped: %v", err)
	}

	logger.Info("server stopped", nil)
}
