package main

import (
	"log"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/letzhq/letz-insights/internal/analytics"
	"github.com/letzhq/letz-insights/internal/config"
	"github.com/letzhq/letz-insights/internal/database"
	"github.com/letzhq/letz-insights/internal/handler"
	"github.com/letzhq/letz-insights/internal/middleware"
	"github.com/letzhq/letz-insights/internal/queue"
	"github.com/letzhq/letz-insights/internal/repository"
	"github.com/letzhq/letz-insights/internal/router"
	"github.com/letzhq/letz-insights/internal/translate"
)

func main() {
	cfg := config.Load()

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()

	rdb := config.NewRedisClient()

	weekZone := analytics.ResolveTimezone(cfg.BusinessTZ)
	if weekZone == nil {
		log.Printf("unrecognized BUSINESS_TIMEZONE %q, using UTC", cfg.BusinessTZ)
		weekZone = time.UTC
	}

	var translationCache translate.Cache
	if rdb != nil {
		translationCache = translate.NewRedisCache(rdb, "translate", cfg.TranslateTTL)
	} else {
		translationCache = translate.NewMemoryCache()
	}
	translator := translate.NewCachedTranslator(
		translate.NewHTTPTranslator(cfg.TranslateURL, cfg.TranslateAPIKey),
		translationCache,
	)

	h := &handler.InsightsHandler{
		Users:           repository.NewUserRepo(db),
		Messages:        repository.NewMessageRepo(db),
		Recovery:        repository.NewRecoveryRepo(db),
		Activities:      repository.NewActivityRepo(db),
		Translator:      translator,
		TranslateTarget: cfg.TranslateTarget,
		WeekZone:        weekZone,
	}

	e := echo.New()
	e.HideBanner = true

	rateCfg := config.LoadRateLimitConfig()
	cacheCfg := config.LoadCacheConfig()
	router.RegisterRoutes(e, h,
		middleware.NewTokenBucket(rateCfg, rdb),
		middleware.NewRedisCache(cacheCfg, rdb),
	)

	if rdb != nil {
		go queue.StartMessageConsumer(rdb, cacheCfg.Prefix)
	}

	addr := ":" + cfg.Port
	log.Printf("listening on %s (env=%s, business_tz=%s)", addr, cfg.Env, weekZone)

	if err := e.Start(addr); err != nil {
		log.Fatal(err)
	}
}
