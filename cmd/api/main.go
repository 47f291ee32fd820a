package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"social-calling/internal/audit"
	"social-calling/internal/auth"
	"social-calling/internal/backend"
	"social-calling/internal/calls"
	"social-calling/internal/config"
	"social-calling/internal/economy"
	"social-calling/internal/httpapi"
	"social-calling/internal/leaderboard"
	"social-calling/internal/notify"
	"social-calling/internal/nudges"
	"social-calling/internal/offers"
	"social-calling/internal/pricing"
	"social-calling/internal/profiles"
	"social-calling/internal/store"
	"social-calling/internal/wallet"
	"social-calling/pkg/logger"
	"social-calling/pkg/utils"

	"github.com/gin-gonic/gin"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	_ "modernc.org/sqlite"
)

func main() {
	// Root context that cancels on shutdown
	rootCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// A missing .env is normal outside local development.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("config load failed", "err", err)
		os.Exit(1)
	}

	log := logger.New(cfg.App.Env)
	slog.SetDefault(log)

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	overrides, err := config.LoadOverrides(cfg.OverridesFile)
	if err != nil {
		log.Error("overrides load failed", "err", err)
		os.Exit(1)
	}
	windows, err := overrides.NudgeWindows()
	if err != nil {
		log.Error("nudge windows invalid", "err", err)
		os.Exit(1)
	}
	offerPolicy, err := overrides.OfferPolicy()
	if err != nil {
		log.Error("offer policy invalid", "err", err)
		os.Exit(1)
	}

	authManager, err := auth.NewManager(cfg.Auth)
	if err != nil {
		log.Error("auth init failed", "err", err)
		os.Exit(1)
	}

	loc := cfg.Location()
	clock := func() time.Time { return time.Now().In(loc) }

	var rdb *redis.Client
	if cfg.Redis.Host != "" {
		rdb, err = utils.OpenRedis(rootCtx, utils.RedisConfig{Addr: cfg.RedisAddr(), Password: cfg.Redis.Password, DB: cfg.Redis.DB})
		if err != nil {
			log.Error("redis init failed", "err", err)
			os.Exit(1)
		}
	}

	kv, journal, err := openStores(rootCtx, cfg, rdb)
	if err != nil {
		log.Error("store init failed", "backend", cfg.Store.Backend, "err", err)
		os.Exit(1)
	}
	defer kv.Close()
	log.Info("store ready", "backend", cfg.Store.Backend)

	auditSvc := audit.NewService(journal)

	hub := notify.NewHub(log)
	events := notify.NewEmitter(log, notify.LogSink{Log: log}, hub, audit.NewSink(auditSvc))
	if cfg.Events.RedisChannel != "" {
		events.Add(notify.NewRedisSink(rdb, cfg.Events.RedisChannel))
	}

	persister := economy.NewAsyncPersister(economy.StorePersister{Store: kv}, log)
	ledger := economy.NewLedger(persister, events, log)
	if err := ledger.Load(rootCtx, kv); err != nil {
		log.Warn("economy state not loaded; starting fresh", "err", err)
	}

	pricingSvc := pricing.NewServiceWithClock(clock)
	callManager := calls.NewManager(pricingSvc, ledger, events, calls.Options{Clock: clock, Logger: log})
	offerTracker := offers.NewTracker(kv, offerPolicy, events, log)

	api := backend.New(backend.Config{BaseURL: cfg.Backend.BaseURL, Timeout: cfg.Backend.Timeout, RPS: cfg.Backend.RPS}, log)

	nudger := nudges.New(kv, events, nudges.Options{Windows: windows, Location: loc, Clock: clock, Logger: log})
	if err := nudger.Start(nudges.DefaultSchedule); err != nil {
		log.Error("nudge scheduler failed", "err", err)
		os.Exit(1)
	}

	h := httpapi.Handlers{
		Auth:        authManager,
		Calls:       callManager,
		Pricing:     pricingSvc,
		Ledger:      ledger,
		Offers:      offerTracker,
		Wallet:      wallet.NewClient(api),
		Profiles:    profiles.NewClient(api, log),
		Leaderboard: leaderboard.NewService(leaderboard.NewBackendSource(api)),
		Audit:       auditSvc,
		Events:      hub,
		Clock:       clock,
	}

	// Gin router
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(logger.Middleware(log))

	registerRoutes(r, h, auth.RequireAccessToken(authManager), !cfg.IsProduction())

	srv := &http.Server{
		Addr:              cfg.HTTPAddr(),
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		log.Info("api listening", "addr", srv.Addr, "env", cfg.App.Env, "timezone", loc.String())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("http server failed", "err", err)
			stop()
		}
	}()

	<-rootCtx.Done()
	log.Info("shutdown initiated")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 20*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("http shutdown failed", "err", err)
	}

	// Order matters: stop producers, then drain the persister, then sinks.
	nudger.Stop(shutdownCtx)
	callManager.Close(shutdownCtx)
	persister.Close()
	hub.Close()
	if rdb != nil && cfg.Store.Backend != config.StoreRedis {
		_ = rdb.Close()
	}

	_ = logger.ShutdownFlush(shutdownCtx, 2*time.Second)
}

// openStores returns the KV store and the journal repository for the
// configured backend. SQL backends share one *sql.DB.
func openStores(ctx context.Context, cfg config.Config, rdb *redis.Client) (store.Store, audit.Repository, error) {
	var (
		db      *sql.DB
		dialect store.Dialect
		err     error
	)

	switch cfg.Store.Backend {
	case config.StoreMemory:
		return store.NewMemory(), audit.NewMemoryRepo(), nil
	case config.StoreRedis:
		if rdb == nil {
			return nil, nil, errors.New("redis store selected without REDIS_HOST")
		}
		return store.NewRedis(rdb, "social-calling:"), audit.NewMemoryRepo(), nil
	case config.StorePostgres:
		db, err = utils.OpenDB(ctx, "pgx", cfg.PostgresDSN(), utils.DBPoolConfig{})
		dialect = store.DialectPostgres
	default:
		db, err = utils.OpenSQLite(ctx, cfg.Store.SQLitePath)
		dialect = store.DialectSQLite
	}
	if err != nil {
		return nil, nil, err
	}

	kv := store.NewSQL(db, dialect)
	if err := kv.Migrate(ctx); err != nil {
		_ = db.Close()
		return nil, nil, fmt.Errorf("kv migrate: %w", err)
	}
	repo := audit.NewSQLRepo(db, dialect)
	if err := repo.Migrate(ctx); err != nil {
		_ = db.Close()
		return nil, nil, fmt.Errorf("journal migrate: %w", err)
	}
	return kv, repo, nil
}
