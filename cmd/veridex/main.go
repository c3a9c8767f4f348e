// Veridex is the adversarial consensus engine: it runs a business idea
// through a three-round debate between model-backed personas and
// returns a judged consensus score.
package main

import (
	"context"
	"database/sql"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"dev.veridex.engine/internal/config"
	"dev.veridex.engine/internal/debate"
	"dev.veridex.engine/internal/events"
	"dev.veridex.engine/internal/handlers"
	"dev.veridex.engine/internal/llm"
	"dev.veridex.engine/internal/metrics"
	"dev.veridex.engine/internal/rag"
	"dev.veridex.engine/internal/store"
)

func main() {
	configPath := flag.String("config", "configs/veridex.yaml", "path to the engine configuration file")
	flag.Parse()

	_ = godotenv.Load()

	logger, err := zap.NewProduction()
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	if err := run(*configPath, logger); err != nil {
		logger.Fatal("engine exited", zap.Error(err))
	}
}

func run(configPath string, logger *zap.Logger) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector())
	m := metrics.New(registry)

	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	defer redisClient.Close()

	redisPingCtx, cancelRedisPing := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancelRedisPing()
	if err := redisClient.Ping(redisPingCtx).Err(); err != nil {
		return err
	}

	sink := events.NewRedisSink(redisClient)
	runStore := store.NewRedisRunStore(redisClient, logger)

	deps := debate.Deps{
		Gateway:   llm.NewGateway(cfg.Backends, logger, m),
		Registry:  cfg.BuildRegistry(),
		Policy:    cfg.BuildPolicy(),
		Conflicts: cfg.BuildConflicts(),
		Sink:      sink,
		Runs:      runStore,
		Metrics:   m,
		Logger:    logger,
	}

	if cfg.Postgres.DSN != "" {
		db, err := sql.Open("postgres", cfg.Postgres.DSN)
		if err != nil {
			return err
		}
		defer db.Close()
		// A fresh timeout so the Postgres ping gets the full budget
		// regardless of how long the Redis ping took.
		pgPingCtx, cancelPgPing := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancelPgPing()
		if err := db.PingContext(pgPingCtx); err != nil {
			return err
		}
		pg := store.NewPostgresStore(db, logger)
		deps.Verdicts = pg
		deps.Personas = pg
	} else {
		logger.Warn("postgres DSN not set, verdicts and custom personas disabled")
	}

	if cfg.RAG.BaseURL != "" {
		deps.RAG = rag.NewHTTPProvider(cfg.RAG.BaseURL, logger)
	}

	orchestrator := debate.New(cfg.Debate.ToOrchestrator(), deps)

	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())
	handlers.New(orchestrator, sink, logger).Register(router)
	router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(registry, promhttp.HandlerOpts{})))

	srv := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		logger.Info("engine listening",
			zap.String("addr", cfg.Server.Addr),
			zap.Strings("backends", backendNames(cfg)),
			zap.Int("personas", len(cfg.BuildRegistry().Roster(nil))))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancelShutdown()
	if err := srv.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func backendNames(cfg *config.Config) []string {
	names := make([]string, 0, len(cfg.Backends))
	for _, b := range cfg.Backends {
		names = append(names, b.Name)
	}
	return names
}
