package http

import (
	"context"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	rcache "github.com/open-builders/satchat-backend/internal/cache/redis"
	"github.com/open-builders/satchat-backend/internal/common/middleware"
	"github.com/open-builders/satchat-backend/internal/config"
	rplatform "github.com/open-builders/satchat-backend/internal/platform/redis"
	accountsvc "github.com/open-builders/satchat-backend/internal/service/account"
	"github.com/open-builders/satchat-backend/internal/service/claim"
	keywordsvc "github.com/open-builders/satchat-backend/internal/service/keyword"
	"github.com/open-builders/satchat-backend/internal/service/telegram"

	_ "github.com/open-builders/satchat-backend/docs"
)

const publicCacheTTL = 5 * time.Second

// UpdateSink accepts a webhook update for asynchronous processing.
type UpdateSink func(ctx context.Context, u telegram.Update) error

// StatsReader exposes today's reward activity.
type StatsReader interface {
	Today(ctx context.Context) (*rcache.DaySnapshot, error)
}

// Pinger is a dependency checked by /ready.
type Pinger interface {
	PingContext(ctx context.Context) error
}

// Deps are the services exposed over HTTP. Redis, DB, Stats, Updates and DailyCap
// may be nil; without DailyCap the configured cap is reported.
type Deps struct {
	Config   *config.Config
	Accounts *accountsvc.Service
	Claims   *claim.Processor
	Keywords *keywordsvc.Service
	Stats    StatsReader
	Redis    *rplatform.Client
	DB       Pinger
	Updates  UpdateSink
	DailyCap func() int64
}

// NewRouter builds the gin engine with all routes and middlewares wired.
func NewRouter(d Deps) *gin.Engine {
	cfg := d.Config
	if !cfg.Debug {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(middleware.RequestID())
	router.Use(middleware.ErrorHandler())
	router.Use(middleware.Logger())

	corsConfig := cors.DefaultConfig()
	if origins := splitOrigins(cfg.CORSAllowedOrigins); len(origins) == 0 || origins[0] == "*" {
		corsConfig.AllowAllOrigins = true
	} else {
		corsConfig.AllowOrigins = origins
	}
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Content-Type", "Authorization", "Accept", middleware.InitDataHeader}
	router.Use(cors.New(corsConfig))

	health := NewHealthHandlers(d.DB, d.Redis)
	health.RegisterRoutes(router)

	if cfg.Telegram.Mode == config.BotModeWebhook && d.Updates != nil {
		NewWebhookHandler(d.Updates, cfg.Telegram.WebhookSecret).RegisterRoutes(router)
	}

	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	v1 := router.Group("/api/v1")

	public := v1.Group("")
	if d.Redis != nil {
		public.Use(middleware.RedisCache(d.Redis, publicCacheTTL))
	}
	keywords := NewKeywordHandlers(d.Keywords)
	keywords.RegisterPublicRoutes(public)
	dailyCap := d.DailyCap
	if dailyCap == nil {
		dailyCap = func() int64 { return cfg.Rewards.DailyCap }
	}
	NewStatsHandlers(d.Stats, dailyCap).RegisterRoutes(v1)

	authed := v1.Group("", middleware.TelegramInitData(cfg.Telegram.BotToken, cfg.Telegram.InitDataTTL))
	me := authed.Group("", middleware.AutoCreateAccount(d.Accounts))
	NewAccountHandlers(d.Accounts, d.Claims).RegisterRoutes(me)

	admin := authed.Group("/admin", middleware.RequireAdmin(cfg.IsAdmin))
	keywords.RegisterAdminRoutes(admin)

	return router
}

func splitOrigins(s string) []string {
	var out []string
	for _, o := range strings.Split(s, ",") {
		if o = strings.TrimSpace(o); o != "" {
			out = append(out, o)
		}
	}
	return out
}
