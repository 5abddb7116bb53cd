package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"ai-roleplay-chat/backend/ai"
	"ai-roleplay-chat/backend/analyzer"
	"ai-roleplay-chat/backend/persona"
	personaapi "ai-roleplay-chat/backend/persona/api"
	"ai-roleplay-chat/backend/pkg/cache"
	"ai-roleplay-chat/backend/pkg/config"
	"ai-roleplay-chat/backend/pkg/errors"
	"ai-roleplay-chat/backend/pkg/health"
	"ai-roleplay-chat/backend/pkg/logger"
	"ai-roleplay-chat/backend/pkg/metrics"
	"ai-roleplay-chat/backend/pkg/middleware"
	sessionapi "ai-roleplay-chat/backend/session/api"
	"ai-roleplay-chat/backend/session/repository"
	"ai-roleplay-chat/backend/session/service"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

func main() {
	cfg := config.New()

	logConfig := logger.DefaultConfig()
	logConfig.Level = cfg.Logging.Level
	logConfig.JSON = cfg.Logging.Format != "text"
	log := logger.New(logConfig)
	logger.SetGlobal(log)

	log.Info("starting session service", "env", cfg.Server.Env)

	// Keyed blob store: Redis in production, in-memory otherwise.
	var store repository.Store
	if cfg.Redis.Enabled {
		store = repository.NewRedisStoreFromAddr(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		log.Info("using redis session store", "addr", cfg.Redis.Addr)
	} else {
		store = repository.NewMemoryStore()
		log.Info("using in-memory session store")
	}

	registry := persona.NewRegistry()
	heuristic := analyzer.NewHeuristic(analyzer.DefaultConfig())
	generator := analyzer.NewGenerator(heuristic, cfg.Titles.MaxAnalyzedMessages)

	var summaryCache *cache.Cache
	if cfg.Cache.Enabled {
		summaryCache = cache.New(cfg.Cache.TTL, cfg.Cache.PurgeWindow, cfg.Cache.MaxSize)
	}

	svc := service.NewSessionService(store, registry, generator, summaryCache, log, service.Options{
		StorageKey:          cfg.Sessions.StorageKey,
		MaxRetained:         cfg.Sessions.MaxRetained,
		MaxMessages:         cfg.Sessions.MaxMessages,
		StorageBudget:       cfg.Sessions.StorageBudget,
		StorageWarnRatio:    cfg.Sessions.StorageWarnRatio,
		MaxAnalyzedMessages: cfg.Titles.MaxAnalyzedMessages,
	})

	var completer ai.Completer
	if cfg.Services.LLMServiceURL != "" {
		completer = ai.NewHTTPCompleter(cfg.Services.LLMServiceURL, cfg.Services.LLMTimeout)
		log.Info("using llm proxy", "url", cfg.Services.LLMServiceURL)
	} else {
		completer = ai.EchoCompleter{}
		log.Warn("no llm proxy configured, using echo completer")
	}

	if cfg.Server.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(errors.Recovery())
	router.Use(middleware.RequestID())
	router.Use(logger.Middleware(log))
	router.Use(errors.ErrorHandler())
	router.Use(cors.New(cors.Config{
		AllowOrigins: cfg.Security.AllowedOrigins,
		AllowMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders: []string{"Origin", "Content-Type", "X-Request-ID"},
		MaxAge:       12 * time.Hour,
	}))

	limiter := middleware.NewRateLimiter(log, middleware.RateLimiterOptions{
		Limit:          rate.Limit(cfg.Security.RateLimit),
		Burst:          cfg.Security.RateLimitBurst,
		ExpiryDuration: time.Hour,
		KeyFunc:        func(c *gin.Context) string { return c.ClientIP() },
	})

	sessionapi.NewSessionHandler(svc, registry, completer).RegisterRoutes(router, limiter)
	personaapi.NewPersonaHandler(registry).RegisterRoutes(router)

	checker := health.NewChecker(log)
	checker.AddCheck("session-store", func() (health.Status, string, error) {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := svc.CheckStore(ctx); err != nil {
			return health.StatusDown, "session store unreachable", err
		}
		return health.StatusUp, "session store reachable", nil
	})
	router.GET("/health", checker.Handler())
	router.GET("/metrics", metrics.Handler())

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  cfg.Server.Timeout,
		WriteTimeout: cfg.Server.Timeout,
	}

	go func() {
		log.Info("server starting", "port", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.LogError(err, "server failed to start")
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.LogError(err, "server forced to shutdown")
	}

	log.Info("server exited gracefully")
}
