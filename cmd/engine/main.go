package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/gofrs/flock"

	"jobboard-engine/internal/config"
	"jobboard-engine/internal/events"
	"jobboard-engine/internal/httpapi"
	"jobboard-engine/internal/ingest/jsearch"
	"jobboard-engine/internal/scheduler"
	"jobboard-engine/internal/secrets"
	"jobboard-engine/internal/store"
	syncer "jobboard-engine/internal/sync"
	"jobboard-engine/pkg/logging"
	"jobboard-engine/pkg/shutdown"
)

const defaultSecretEnv = "JOBBOARD_JWT_SECRET"

type stopFunc func(ctx context.Context) error

func (f stopFunc) Shutdown(ctx context.Context) error { return f(ctx) }

func main() {
	dataDir := os.Getenv("JOBBOARD_DATA_DIR")
	if dataDir == "" {
		dataDir = "."
	}
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		fmt.Fprintln(os.Stderr, "create data dir:", err)
		os.Exit(1)
	}

	// One engine per data dir; a second instance would race the sqlite
	// writer and double the sync schedule.
	lock := flock.New(filepath.Join(dataDir, "engine.lock"))
	locked, err := lock.TryLock()
	if err != nil || !locked {
		fmt.Fprintln(os.Stderr, "another engine instance already holds", dataDir)
		os.Exit(1)
	}
	defer func() { _ = lock.Unlock() }()

	defaultCfgPath := filepath.Join("config", "config.yml")
	userCfgPath, err := config.EnsureUserConfig(dataDir, defaultCfgPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, "config bootstrap failed:", err)
		os.Exit(1)
	}

	loadCfg := func() (config.Config, error) {
		cfg, err := config.Load(userCfgPath)
		if err != nil {
			return cfg, err
		}
		normalized, res := config.NormalizeAndValidate(cfg)
		if !res.OK() {
			return cfg, fmt.Errorf("config invalid: %v", res.Errors)
		}
		return normalized, nil
	}

	cfg, err := loadCfg()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config load failed (%s): %v\n", userCfgPath, err)
		os.Exit(1)
	}

	log := logging.New(cfg.App.LogLevel)
	defer func() { _ = log.Sync() }()

	var cfgVal atomic.Value
	cfgVal.Store(cfg)

	secretEnv := cfg.Auth.SecretEnv
	if secretEnv == "" {
		secretEnv = defaultSecretEnv
	}
	jwtSecret := os.Getenv(secretEnv)
	if jwtSecret == "" {
		log.Fatal("jwt secret is not set", "env", secretEnv)
	}

	dbPath := filepath.Join(dataDir, "jobboard.db")
	db, err := store.Open(dbPath)
	if err != nil {
		log.Fatal("open database failed", "path", dbPath, "err", err)
	}
	defer db.Close()

	if err := store.Migrate(db); err != nil {
		log.Fatal("migrate failed", "err", err)
	}

	svc, err := store.EnsureServiceAccount(context.Background(), db)
	if err != nil {
		log.Fatal("provision service account failed", "err", err)
	}

	hub := events.NewHub()

	provider := jsearch.New(jsearch.Config{
		BaseURL: cfg.Provider.BaseURL,
		Host:    cfg.Provider.Host,
		KeyFunc: func() (string, error) {
			return secrets.GetProviderAPIKey(cfg.Provider.KeyEnv)
		},
		Timeout:        time.Duration(cfg.Provider.TimeoutSeconds) * time.Second,
		RequestsPerSec: cfg.Provider.RequestsPerSec,
		Burst:          cfg.Provider.Burst,
	})

	sy := syncer.New(db, provider, hub, log.With("component", "sync"), svc.ID,
		time.Duration(cfg.Provider.TimeoutSeconds)*time.Second)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sched := scheduler.New(sy, cfg.Sync.Queries, cfg.Sync.Schedule, log.With("component", "scheduler"))
	if err := sched.Start(ctx, cfg.Sync.RunOnStart); err != nil {
		log.Fatal("scheduler start failed", "err", err)
	}

	mux := httpapi.NewMux(httpapi.Deps{
		DB:          db,
		Hub:         hub,
		Auth:        &httpapi.Authenticator{DB: db, Secret: []byte(jwtSecret), Log: log.With("component", "auth")},
		Syncer:      sy,
		CfgVal:      &cfgVal,
		UserCfgPath: userCfgPath,
		LoadCfg:     loadCfg,
	})

	handler := httpapi.Chain(mux,
		httpapi.RequestID,
		httpapi.Recover(log),
		httpapi.AccessLog(log),
		httpapi.Cors,
	)

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.App.Port),
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		log.Info("engine listening", "addr", srv.Addr, "db", dbPath)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("server failed", "err", err)
		}
	}()

	shutdown.Graceful(
		[]os.Signal{syscall.SIGINT, syscall.SIGTERM},
		stopFunc(func(ctx context.Context) error {
			sched.Stop()
			cancel()
			return srv.Shutdown(ctx)
		}),
		10*time.Second,
		log,
	)
}
