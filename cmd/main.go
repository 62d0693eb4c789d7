package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/asaskevich/EventBus"
	"github.com/gin-gonic/gin"
	"github.com/maxaizer/job-finder/internal/api"
	"github.com/maxaizer/job-finder/internal/bot"
	"github.com/maxaizer/job-finder/internal/clients/jsearch"
	"github.com/maxaizer/job-finder/internal/config"
	"github.com/maxaizer/job-finder/internal/logger"
	"github.com/maxaizer/job-finder/internal/metrics"
	"github.com/maxaizer/job-finder/internal/repositories"
	"github.com/maxaizer/job-finder/internal/services"
	log "github.com/sirupsen/logrus"
)

const shutdownTimeout = 10 * time.Second

func newQueryCache(ctx context.Context, cfg config.CacheConfig) (services.QueryCache, func()) {
	if cfg.RedisURL == "" {
		return services.NewMemoryCache(cfg.Freshness, cfg.CleanupInterval), func() {}
	}

	cache, err := services.NewRedisCache(ctx, cfg.RedisURL, cfg.Freshness)
	if err != nil {
		log.Fatalf("can't connect to redis: %v", err)
	}
	log.Info("using redis query cache")
	return cache, func() { _ = cache.Close() }
}

func runPopularJobs(query *services.JobQuery, cfg *config.Config) *services.PopularJobs {
	if len(cfg.Popular.Queries) == 0 {
		return nil
	}

	searches := make([]jsearch.SearchParameters, 0, len(cfg.Popular.Queries))
	for _, q := range cfg.Popular.Queries {
		searches = append(searches, services.BuildSearch(q, services.AnyJobType, cfg.API.LocaleSuffix))
	}

	popular, err := services.NewPopularJobs(query, searches, cfg.Popular.Schedule)
	if err != nil {
		log.Fatalf("can't create popular jobs refresher: %v", err)
	}
	return popular
}

func runServer(cfg config.ServerConfig, handler *api.Handler) *http.Server {
	gin.SetMode(gin.ReleaseMode)
	server := &http.Server{
		Addr:    cfg.Address,
		Handler: api.NewRouter(handler),
	}

	go func() {
		log.Infof("HTTP server listening on %s", cfg.Address)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.WithField(logger.ErrorTypeField, logger.ErrorTypeHTTP).Fatalf("HTTP server failed: %v", err)
		}
	}()
	return server
}

func main() {

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg := config.Get()

	logger.Setup(ctx, cfg.Logger)
	defer logger.Cleanup()

	metrics.Register()

	dbContext, err := repositories.NewDbContext(cfg.DB.DSN())
	if err != nil {
		log.Fatalf("can't create db context: %v", err)
	}
	defer dbContext.Close()

	if err = dbContext.Migrate(); err != nil {
		log.Fatalf("can't migrate db context: %v", err)
	}

	bus := EventBus.New()
	favoritesRepo := repositories.NewFavoritesRepository(dbContext.DB)
	favorites := services.NewFavorites(favoritesRepo, bus)

	if _, err = services.NewFavoritesTracker(ctx, bus, favoritesRepo); err != nil {
		log.Fatalf("can't create favorites tracker: %v", err)
	}

	client := jsearch.NewClient(cfg.API.BaseURL, jsearch.Credentials{Key: cfg.API.Key, Host: cfg.API.Host}, cfg.API.Timeout)
	client.SetRateLimit(cfg.API.MaxRequestsPerSecond)
	client.SetRetries(cfg.API.MaxAttempts, cfg.API.RetryDelay)

	cache, closeCache := newQueryCache(ctx, cfg.Cache)
	defer closeCache()

	query := services.NewJobQuery(client, cache)

	var popularSource api.PopularSource
	popular := runPopularJobs(query, cfg)
	if popular != nil {
		defer popular.Stop()
		popularSource = popular
	}

	server := runServer(cfg.Server, api.NewHandler(query, favorites, popularSource, cfg.API.LocaleSuffix))

	var tgbot *bot.Bot
	if cfg.Bot.Enabled() {
		tgbot, err = bot.NewBot(cfg.Bot.Token, bus, bot.Services{
			Jobs:      query,
			Favorites: favorites,
			Data:      repositories.NewDataRepository(dbContext.DB),
		}, cfg.API.LocaleSuffix)
		if err != nil {
			log.Fatalf("can't create bot: %v", err)
		}
		go tgbot.Run()
	} else {
		log.Info("bot token is not set, telegram bot disabled")
	}

	<-ctx.Done()

	log.Info("Shutting down services...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err = server.Shutdown(shutdownCtx); err != nil {
		log.Errorf("HTTP server shutdown failed: %v", err)
	}

	if tgbot != nil {
		tgbot.Stop()
	}
	log.Info("Services stopped.")
}
