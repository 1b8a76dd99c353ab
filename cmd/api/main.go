package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"github.com/open-builders/satchat-backend/internal/bot"
	rcache "github.com/open-builders/satchat-backend/internal/cache/redis"
	"github.com/open-builders/satchat-backend/internal/common/logger"
	"github.com/open-builders/satchat-backend/internal/common/middleware"
	"github.com/open-builders/satchat-backend/internal/config"
	"github.com/open-builders/satchat-backend/internal/domain/account"
	"github.com/open-builders/satchat-backend/internal/domain/keyword"
	apphttp "github.com/open-builders/satchat-backend/internal/http"
	"github.com/open-builders/satchat-backend/internal/platform/db"
	redisplatform "github.com/open-builders/satchat-backend/internal/platform/redis"
	"github.com/open-builders/satchat-backend/internal/repository/memory"
	"github.com/open-builders/satchat-backend/internal/repository/postgres"
	accountsvc "github.com/open-builders/satchat-backend/internal/service/account"
	"github.com/open-builders/satchat-backend/internal/service/claim"
	keywordsvc "github.com/open-builders/satchat-backend/internal/service/keyword"
	"github.com/open-builders/satchat-backend/internal/service/reward"
	"github.com/open-builders/satchat-backend/internal/service/telegram"
	"github.com/open-builders/satchat-backend/internal/workers"
)

// @title SatChat Rewards API
// @version 1.0
// @description Reward accounting, wallet linking and claims for the SatChat Telegram bot.
// @BasePath /
// @securityDefinitions.apikey TelegramInitData
// @in header
// @name X-Telegram-Init-Data
func main() {
	// Create cancellable root context for graceful shutdown.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to load config")
	}
	logger.Init("satchat-backend", cfg.LogLevel, cfg.LogFormat)
	logger.Info().
		Str("storage", cfg.Storage).
		Str("bot_mode", cfg.Telegram.Mode).
		Bool("debug", cfg.Debug).
		Msg("Starting SatChat backend")

	var (
		accounts account.Repository
		keywords keyword.Repository
		pinger   apphttp.Pinger
	)
	switch cfg.Storage {
	case config.StoragePostgres:
		pg, err := db.Open(ctx, db.Options{
			DSN:          cfg.DatabaseURL,
			MaxOpenConns: cfg.DBMaxOpenConns,
			MaxIdleConns: cfg.DBMaxIdleConns,
		})
		if err != nil {
			logger.Fatal().Err(err).Msg("Failed to connect to database")
		}
		defer pg.Close()
		accounts = postgres.NewAccountRepository(pg)
		keywords = postgres.NewKeywordRepository(pg)
		pinger = pg
	default:
		logger.Warn().Msg("Using in-memory storage; balances are lost on restart")
		accounts = memory.NewAccountRepository()
		keywords = memory.NewKeywordRepository()
	}

	var (
		rdb          *redisplatform.Client
		keywordCache keywordsvc.Cache
		dailyStats   *rcache.DailyStats
		stats        reward.DailyStats
		statsReader  apphttp.StatsReader
	)
	if cfg.RedisAddr != "" {
		rdb, err = redisplatform.Open(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		if err != nil {
			logger.Warn().Err(err).Msg("Redis unavailable; running without cache, stats and update stream")
			rdb = nil
		}
	}
	if rdb != nil {
		defer rdb.Close()
		keywordCache = rcache.NewKeywordCache(rdb, cfg.Rewards.KeywordCacheTTL)
		dailyStats = rcache.NewDailyStats(rdb)
		stats, statsReader = dailyStats, dailyStats
	} else if cfg.Rewards.DailyCap > 0 {
		logger.Warn().Msg("DAILY_REWARD_CAP is set but Redis is not configured; the cap is disabled")
	}

	keywordService := keywordsvc.NewService(keywords, keywordCache, decimal.NewFromFloat(cfg.Rewards.MaxKeywordMultiplier))
	table := reward.NewKeywordTable(keywordService)
	keywordService.OnChange(func(ctx context.Context) {
		if err := table.Refresh(ctx); err != nil {
			logger.Warn().Err(err).Msg("Keyword table reload failed")
		}
		if rdb != nil {
			if err := middleware.InvalidateHTTPCache(ctx, rdb, "/api/v1/keywords"); err != nil {
				logger.Warn().Err(err).Msg("Failed to invalidate keyword responses")
			}
		}
	})

	accountService := accountsvc.NewService(accounts, accountsvc.NewWalletValidator(cfg.Rewards.WalletDomains))
	rewardService := reward.NewService(accounts, table, stats, cfg.Rewards.DailyCap)
	if dailyStats != nil {
		rewardService.WithCapStore(dailyStats)
		if err := rewardService.LoadDailyCap(ctx); err != nil {
			logger.Warn().Err(err).Msg("Failed to load saved daily reward cap")
		}
	}
	claims := claim.NewProcessor(accounts, cfg.Rewards.MinWithdrawal)

	tg := telegram.NewClient(cfg.Telegram.APIURL, cfg.Telegram.BotToken, cfg.Telegram.PollTimeout+10*time.Second)
	b := bot.New(bot.Deps{
		Accounts: accountService,
		Rewards:  rewardService,
		Claims:   claims,
		Keywords: keywordService,
		Table:    table,
		IsAdmin:  cfg.IsAdmin,
	})
	dispatcher := bot.NewDispatcher(b, tg, "", cfg.Bot.HandlerTimeout, cfg.Bot.MaxConcurrency)
	if me, err := tg.GetMe(ctx); err != nil {
		logger.Warn().Err(err).Msg("getMe failed; commands addressed to other bots are not filtered")
	} else {
		dispatcher.SetBotUsername(me.Username)
		logger.Info().Str("bot", me.Username).Msg("Telegram bot authorized")
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		workers.NewKeywordRefresher(table, cfg.Rewards.KeywordRefresh).Start(gctx)
		return nil
	})

	var updates apphttp.UpdateSink
	switch cfg.Telegram.Mode {
	case config.BotModeWebhook:
		if rdb != nil {
			stream := workers.NewUpdateStream(rdb, dispatcher, "")
			updates = func(ctx context.Context, u telegram.Update) error {
				_, err := stream.Publish(ctx, u)
				return err
			}
			g.Go(func() error {
				stream.Start(gctx)
				return nil
			})
		} else {
			updates = func(_ context.Context, u telegram.Update) error {
				return dispatcher.Submit(gctx, u, nil)
			}
		}
	default:
		if err := tg.DeleteWebhook(ctx); err != nil {
			logger.Warn().Err(err).Msg("deleteWebhook failed")
		}
		g.Go(func() error {
			workers.NewUpdatePoller(tg, dispatcher, cfg.Telegram.PollTimeout).Start(gctx)
			return nil
		})
	}

	deps := apphttp.Deps{
		Config:   cfg,
		Accounts: accountService,
		Claims:   claims,
		Keywords: keywordService,
		Stats:    statsReader,
		Redis:    rdb,
		DB:       pinger,
		Updates:  updates,
		DailyCap: rewardService.DailyCap,
	}
	server := &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      apphttp.NewRouter(deps),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	g.Go(func() error {
		logger.Info().Str("addr", cfg.HTTPAddr).Msg("HTTP server listening")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		logger.Info().Msg("Shutting down server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	err = g.Wait()
	dispatcher.Wait()
	if err != nil {
		logger.Error().Err(err).Msg("Server stopped with error")
		return
	}
	logger.Info().Msg("Server exited")
}
