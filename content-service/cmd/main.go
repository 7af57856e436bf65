package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/NoviyantoPutraR/cms-pemkot/content-service/internal/adapter"
	"github.com/NoviyantoPutraR/cms-pemkot/content-service/internal/autocomplete"
	"github.com/NoviyantoPutraR/cms-pemkot/content-service/internal/cache"
	"github.com/NoviyantoPutraR/cms-pemkot/content-service/internal/config"
	"github.com/NoviyantoPutraR/cms-pemkot/content-service/internal/handler"
	"github.com/NoviyantoPutraR/cms-pemkot/content-service/internal/invalidation"
	"github.com/NoviyantoPutraR/cms-pemkot/content-service/internal/repository"
	"github.com/NoviyantoPutraR/cms-pemkot/content-service/internal/service"
	"github.com/NoviyantoPutraR/cms-pemkot/content-service/internal/spell"
	"github.com/NoviyantoPutraR/cms-pemkot/content-service/internal/synonym"
	"github.com/NoviyantoPutraR/cms-pemkot/content-service/internal/ws"
	"github.com/NoviyantoPutraR/cms-pemkot/pkg/database"
	"github.com/NoviyantoPutraR/cms-pemkot/pkg/jwt"
	pkglog "github.com/NoviyantoPutraR/cms-pemkot/pkg/log"
	"github.com/NoviyantoPutraR/cms-pemkot/pkg/middleware"
	"github.com/NoviyantoPutraR/cms-pemkot/pkg/pubsub"
	"github.com/NoviyantoPutraR/cms-pemkot/pkg/ttlcache"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		l := pkglog.L()
		l.Fatal().Err(err).Msg("failed to load config")
	}

	// Initialize structured logger
	pkglog.Init(pkglog.Config{
		Level:       cfg.Log.Level,
		Pretty:      cfg.Log.Pretty,
		ServiceName: "content-service",
	})
	logger := pkglog.L()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Connect to database using GORM
	db, err := database.New(cfg.Database.ToDatabase())
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer database.Close(db)

	if cfg.Database.AutoMigrate {
		if err := repository.Migrate(db); err != nil {
			logger.Fatal().Err(err).Msg("failed to auto-migrate")
		}
		logger.Info().Msg("database migration completed")
	}

	contentRepo := repository.NewGormContentRepository(db)
	pageRepo := repository.NewGormPageRepository(db)

	// Listings and search read from the configured store. Writes always go
	// to the database.
	var reader repository.ContentReader = contentRepo
	if cfg.Store.Backend == "elasticsearch" {
		esClient, err := elasticsearch.NewClient(elasticsearch.Config{
			Addresses: cfg.Elasticsearch.Addresses,
		})
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to create elasticsearch client")
		}
		res, err := esClient.Info()
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to connect to elasticsearch")
		}
		res.Body.Close()
		logger.Info().Strs("addresses", cfg.Elasticsearch.Addresses).Msg("elasticsearch connected")

		reader = repository.NewESContentRepository(esClient, cfg.Elasticsearch.IndexPrefix)
	}

	// Process-wide TTL cache
	store := ttlcache.New()
	janitorDone := store.StartJanitor(ctx, cfg.Cache.SweepInterval)

	// Search cache
	var searchCache cache.SearchCache
	switch cfg.Cache.Driver {
	case "redis":
		redisCache, err := cache.NewRedisSearchCache(cfg.Redis, cfg.Cache.Prefix)
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to connect to redis")
		}
		logger.Info().Str("addr", cfg.Redis.Address).Msg("redis cache connected")
		searchCache = redisCache
	default:
		searchCache = cache.NewMemorySearchCache(store, cfg.Cache.Prefix)
	}
	defer searchCache.Close()

	// Cross-instance invalidation
	var publisher pubsub.Publisher
	bus, err := pubsub.NewPubSub(cfg.PubSub)
	switch {
	case errors.Is(err, pubsub.ErrDisabled):
		logger.Info().Msg("pubsub disabled, invalidation is local only")
	case err != nil:
		logger.Fatal().Err(err).Str("driver", cfg.PubSub.Driver).Msg("failed to create pubsub")
	default:
		defer bus.Close()
		publisher = bus
	}

	invalidator := invalidation.New(store, searchCache, publisher, uuid.New().String())
	if bus != nil {
		if _, err := invalidation.Listen(ctx, bus, invalidator); err != nil {
			logger.Fatal().Err(err).Msg("failed to subscribe to content events")
		}
		logger.Info().Str("driver", cfg.PubSub.Driver).Msg("listening for content events")
	}

	// Initialize services
	readPolicy := cfg.Resilience.ReadPolicy()
	writePolicy := cfg.Resilience.WritePolicy()
	adapters := adapter.NewResilientSet(reader, readPolicy)

	corrector := spell.NewDefault(spell.WithCacheSize(cfg.Search.CorrectionCacheSize))
	expander := synonym.NewDefault()

	searchService := service.NewSearchService(adapters, searchCache, invalidator.Generation(), corrector, expander, service.SearchConfig{
		DefaultLimit:   cfg.Search.DefaultLimit,
		MaxLimit:       cfg.Search.MaxLimit,
		ExpandSynonyms: cfg.Search.ExpandSynonyms,
		Autocorrect:    cfg.Search.Autocorrect,
		SearchTTL:      cfg.Cache.SearchTTL,
		SuggestTTL:     cfg.Cache.SuggestTTL,
		SuggestLimit:   cfg.Autocomplete.Limit,
		SuggestPerKind: cfg.Autocomplete.PerKind,
		MinChars:       cfg.Autocomplete.MinChars,
	})
	contentService := service.NewContentService(contentRepo, adapters, invalidator, service.ContentConfig{
		ReadPolicy:   readPolicy,
		WritePolicy:  writePolicy,
		ViewTimeout:  cfg.Resilience.StatTimeout,
		DefaultLimit: cfg.Search.DefaultLimit,
		MaxLimit:     cfg.Search.MaxLimit,
	})
	pageService := service.NewPageService(pageRepo, store, invalidator, service.PageConfig{
		TTL:         cfg.Cache.PageTTL,
		ReadPolicy:  readPolicy,
		WritePolicy: writePolicy,
	})
	statsService := service.NewStatsService(reader, store, cfg.Cache.StatsTTL, cfg.Resilience.StatTimeout)

	// Initialize auth middleware
	verifier, err := jwt.NewVerifierFromFile(cfg.Auth.PublicKeyFile, cfg.Auth.Issuer)
	if err != nil {
		logger.Fatal().Err(err).Str("path", cfg.Auth.PublicKeyFile).Msg("failed to load jwt public key")
	}
	authMiddleware := middleware.NewAuthMiddleware(verifier)

	// Initialize handlers
	httpHandler := handler.NewHandler(searchService, contentService, pageService, statsService, authMiddleware, cfg.Auth.AdminRole, func(ctx context.Context) error {
		return database.Ping(ctx, db)
	})
	hub := ws.NewHub()
	wsHandler := handler.NewWSHandler(hub, searchService, cfg.WebSocket, autocomplete.Config{
		Debounce: cfg.Autocomplete.Debounce,
		Limit:    cfg.Autocomplete.Limit,
		MinChars: cfg.Autocomplete.MinChars,
	})

	// Setup Gin router
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(pkglog.GinMiddleware(logger))

	httpHandler.RegisterRoutes(r)
	wsHandler.RegisterRoutes(r)

	server := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	// Start server in goroutine
	go func() {
		logger.Info().
			Str("addr", server.Addr).
			Str("driver", cfg.Database.Driver).
			Str("store", cfg.Store.Backend).
			Str("cache", cfg.Cache.Driver).
			Msg("content-service starting")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal().Err(err).Msg("failed to start server")
		}
	}()

	<-ctx.Done()
	logger.Info().Msg("shutting down content-service")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	hub.CloseAll()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("server forced to shutdown")
	}
	<-janitorDone

	logger.Info().Int("open_sockets", hub.Count()).Msg("content-service stopped")
}
