package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"wohee/vodtracker/internal/api"
	"wohee/vodtracker/internal/common"
	"wohee/vodtracker/internal/config"
	"wohee/vodtracker/internal/db"
	"wohee/vodtracker/internal/logging"
	"wohee/vodtracker/internal/metrics"
	"wohee/vodtracker/internal/providers"
	"wohee/vodtracker/internal/routes"
	"wohee/vodtracker/internal/workers"
)

func main() {
	log.SetOutput(os.Stdout)
	log.SetFlags(log.LstdFlags | log.Lshortfile)

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("❌ Failed to load config: %v", err)
	}

	if err := logging.Init(cfg.AppEnv); err != nil {
		log.Fatalf("❌ Failed to initialize logger: %v", err)
	}
	defer logging.Close()

	logging.Info("VOD tracker starting up",
		"environment", cfg.AppEnv,
		"backend", cfg.Store.Backend,
		"timestamp", time.Now().Format(time.RFC3339),
	)

	metricsReg := metrics.NewMetricsRegistry(prometheus.DefaultRegisterer)

	docs, closeStore, err := db.OpenDocumentStore(cfg, metricsReg)
	if err != nil {
		logging.Fatal("Failed to open document store", "backend", cfg.Store.Backend, "error", err.Error())
	}
	defer closeStore()

	var revoked common.CacheInterface
	if cfg.Redis.Enabled() {
		revoked = common.NewRedisCacheService(common.NewRedisClient(cfg.Redis))
	} else {
		logging.Warn("REDIS_HOST not set, revoked sessions are kept in memory")
		revoked = common.NewCacheService(cfg.Session.TTL, 10*time.Minute)
	}
	defer revoked.Close()

	identity := providers.NewDiscordIdentityProvider(providers.DiscordIdentityConfig{
		ClientID:     cfg.Discord.ClientID,
		ClientSecret: cfg.Discord.ClientSecret,
		GuildID:      cfg.Discord.GuildID,
		RedirectURL:  cfg.Discord.RedirectURL,
		APIBase:      cfg.Discord.APIBase,
	})
	sender := providers.NewWebhookClient(10 * time.Second)

	deps := api.InitDependencies(cfg, docs, revoked, identity, sender, metricsReg)
	router := routes.RegisterRoutes(deps)

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.Handle("/", router)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go workers.NewMemberCacheWarmer(deps.Services.Members, cfg.Roster.CacheWarmInterval).Start(ctx)

	go func() {
		logging.Info("Server starting", "port", cfg.Port, "environment", cfg.AppEnv)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logging.Error("Server stopped", "error", err.Error())
			stop()
		}
	}()

	<-ctx.Done()
	logging.Info("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logging.Error("Graceful shutdown failed", "error", err.Error())
	}
}
