package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"

	"github.com/akindayo/vendora/backend/internal/agents"
	"github.com/akindayo/vendora/backend/internal/auth"
	"github.com/akindayo/vendora/backend/internal/config"
	"github.com/akindayo/vendora/backend/internal/currency"
	"github.com/akindayo/vendora/backend/internal/httpx"
	"github.com/akindayo/vendora/backend/internal/notify"
	"github.com/akindayo/vendora/backend/internal/presence"
	"github.com/akindayo/vendora/backend/internal/relay"
	"github.com/akindayo/vendora/backend/internal/storage"
	"github.com/akindayo/vendora/backend/internal/storage/postgres"
	"github.com/akindayo/vendora/backend/internal/storage/sqlite"
)

func main() {
	migrate := flag.Bool("migrate", false, "run migrations and exit")
	addAgent := flag.String("add-agent", "", "create a support agent as user:password and exit")
	flag.Parse()

	if err := godotenv.Load(); err != nil {
		slog.Info("no .env file loaded", "err", err)
	}
	cfg := config.MustLoad()
	if cfg.JWTSecret == "" {
		log.Fatal("JWT_SECRET is required")
	}

	store, err := openStore(cfg.StorageDSN)
	if err != nil {
		log.Fatalf("Error opening store: %v", err)
	}
	defer store.Close()

	if *migrate {
		if err := store.Migrate(); err != nil {
			log.Fatalf("Migration failed: %v", err)
		}
		slog.Info("migration completed")
		return
	}

	if *addAgent != "" {
		username, password, ok := strings.Cut(*addAgent, ":")
		if !ok || username == "" || password == "" {
			log.Fatal("-add-agent expects user:password")
		}
		hash, err := auth.HashPassword(password)
		if err != nil {
			log.Fatalf("Hashing failed: %v", err)
		}
		id, err := store.CreateAgent(context.Background(), username, hash)
		if err != nil {
			log.Fatalf("Agent creation failed: %v", err)
		}
		slog.Info("agent created", "id", id, "username", username)
		return
	}

	hub := relay.NewHub()
	replier := relay.NewAutoReplier(hub,
		time.Duration(cfg.SupportReplyDelayMs)*time.Millisecond, cfg.SupportReplyText)

	var notifier relay.Notifier
	if m := notify.New(cfg.SendGridAPIKey, cfg.SendGridFrom, cfg.SupportInbox); m != nil {
		notifier = m
	}

	var ratesStore currency.Store
	if cfg.RedisAddr != "" {
		ratesStore = currency.NewRedisStore(redis.NewClient(&redis.Options{Addr: cfg.RedisAddr}))
	} else {
		ratesStore = currency.NewKVStore(store)
	}
	cache := currency.NewRateCache(ratesStore,
		currency.NewHTTPFetcher(cfg.RatesURL),
		time.Duration(cfg.RatesTTLSec)*time.Second)

	router := gin.Default()
	relay.RegisterWS(router.Group("/"), hub, replier, notifier, cfg.JWTSecret)

	api := router.Group("/api")
	agents.Register(api, store, cfg)
	currency.Register(api, cache)
	presence.Register(api.Group("", auth.JWTMiddleware(cfg.JWTSecret)), hub)

	router.GET("/healthz", func(c *gin.Context) {
		if err := store.Ping(c.Request.Context()); err != nil {
			httpx.Err(c, http.StatusServiceUnavailable, "store unreachable")
			return
		}
		httpx.OK(c, gin.H{"status": "ok", "online": hub.OnlineCount()})
	})

	srv := &http.Server{Addr: cfg.Addr, Handler: router}
	go func() {
		slog.Info("relay listening", "addr", cfg.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	<-ctx.Done()

	slog.Info("shutting down")
	replier.Stop()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("shutdown", "err", err)
	}
}

func openStore(dsn string) (storage.Store, error) {
	if strings.HasPrefix(dsn, "postgres://") || strings.HasPrefix(dsn, "postgresql://") {
		return postgres.New(dsn)
	}
	return sqlite.New(dsn)
}
