package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"sceneplay/internal/config"
	"sceneplay/internal/game"
	"sceneplay/internal/logger"
	"sceneplay/internal/metrics"
	"sceneplay/internal/session"
	"sceneplay/internal/web"
)

// sweepInterval is how often idle sessions are released.
const sweepInterval = time.Minute

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err) // zap is not built yet
	}

	lg, err := logger.New(logger.Config{Level: cfg.LogLevel, Encoding: cfg.LogEncoding})
	if err != nil {
		log.Fatalf("init logger: %v", err)
	}
	defer func() { _ = lg.Sync() }()

	doc, err := game.LoadDocument(cfg.StoryPath)
	if err != nil {
		lg.Fatal("load story", zap.String("path", cfg.StoryPath), zap.Error(err))
	}
	if cfg.StartScene != "" {
		start := game.SceneID(cfg.StartScene)
		if !doc.Graph.Has(start) {
			lg.Fatal("START_SCENE is not in the story", zap.String("scene", cfg.StartScene))
		}
		doc.StartSceneID = start
	}
	lg.Info("story loaded",
		zap.String("path", cfg.StoryPath),
		zap.Int("scenes", doc.Graph.Len()),
		zap.String("start", string(doc.StartSceneID)),
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, closeStore, err := newStore(ctx, cfg, lg)
	if err != nil {
		lg.Fatal("init session store", zap.Error(err))
	}
	defer closeStore()

	tmpl, err := web.ParseTemplates(cfg.TemplatesDir)
	if err != nil {
		lg.Fatal("load templates", zap.Error(err))
	}

	srv := &web.Server{
		Doc:       doc,
		Store:     store,
		Tmpl:      tmpl,
		Log:       lg,
		Metrics:   metrics.New(),
		AssetsDir: cfg.AssetsDir,
	}

	go srv.RunSweeper(ctx, sweepInterval, cfg.SessionTTL)

	httpSrv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           srv.Routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		lg.Info("listening", zap.String("addr", httpSrv.Addr))
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			lg.Fatal("http server", zap.Error(err))
		}
	}()

	<-ctx.Done()
	lg.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		lg.Error("graceful shutdown", zap.Error(err))
	}
}

// newStore picks the session backend. The returned func releases it.
func newStore(ctx context.Context, cfg *config.Config, lg *zap.Logger) (session.Store[game.State], func(), error) {
	if cfg.SessionBackend != config.BackendRedis {
		return session.NewMemoryStore[game.State](cfg.SessionTTL), func() {}, nil
	}
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, nil, fmt.Errorf("ping redis %s: %w", cfg.RedisAddr, err)
	}
	lg.Info("redis session store", zap.String("addr", cfg.RedisAddr), zap.Int("db", cfg.RedisDB), zap.Duration("ttl", cfg.SessionTTL))
	return session.NewRedisStore[game.State](client, "sceneplay:session:", cfg.SessionTTL), func() { _ = client.Close() }, nil
}
