package daemon

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/studyloop/studyloop/internal/api"
	"github.com/studyloop/studyloop/internal/app/leaderboard"
	"github.com/studyloop/studyloop/internal/app/rules"
	"github.com/studyloop/studyloop/internal/app/syncqueue"
	"github.com/studyloop/studyloop/internal/health"
	_ "github.com/studyloop/studyloop/internal/infra/metrics" // Register Prometheus metrics
	"github.com/studyloop/studyloop/internal/infra/sqlite"
	"github.com/studyloop/studyloop/internal/security"
)

// Daemon is the StudyLoop server runtime. It wires together all services.
type Daemon struct {
	Config  Config
	DB      *sqlite.DB
	Engine  *rules.Engine
	Boards  *leaderboard.Service
	Sync    *syncqueue.Service
	Server  *api.Server
	Health  *health.Checker
	Keypair *security.Keypair
	cancel  context.CancelFunc
}

// New creates and initializes a Daemon with all services wired.
func New() (*Daemon, error) {
	cfg, err := LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	return NewWithConfig(cfg)
}

// NewWithConfig creates a Daemon with the given configuration.
func NewWithConfig(cfg Config) (*Daemon, error) {
	home := studyloopHome()

	db, err := sqlite.Open(home)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	kp, err := security.LoadOrCreateKeypair(home)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("load keypair: %w", err)
	}

	engine := rules.NewEngine(db)
	boards := leaderboard.NewService(db)
	sync := syncqueue.NewService(db, engine)

	srv := api.NewServer(db, engine, boards, sync, kp)
	if cfg.Telemetry.Prometheus {
		srv.EnableMetrics()
	}

	checker := health.NewChecker(db, home)
	srv.SetHealthChecker(checker)

	return &Daemon{
		Config:  cfg,
		DB:      db,
		Engine:  engine,
		Boards:  boards,
		Sync:    sync,
		Server:  srv,
		Health:  checker,
		Keypair: kp,
	}, nil
}

// Serve starts the HTTP server and blocks until shutdown.
func (d *Daemon) Serve(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	d.cancel = cancel

	// Background services
	go d.Health.Run(ctx)
	go d.reconcileLoop(ctx)

	addr := fmt.Sprintf("%s:%d", d.Config.Server.Host, d.Config.Server.Port)

	httpServer := &http.Server{
		Addr:         addr,
		Handler:      d.Server.Handler(),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  2 * time.Minute,
	}

	// Graceful shutdown on signal
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		select {
		case <-sigCh:
		case <-ctx.Done():
		}

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer shutdownCancel()

		_ = httpServer.Shutdown(shutdownCtx)
		_ = d.DB.Close()
	}()

	fmt.Printf("StudyLoop serving on http://%s\n", addr)
	if d.Config.Telemetry.Prometheus {
		fmt.Printf("  Metrics: http://%s/metrics\n", addr)
	}

	if err := httpServer.ListenAndServe(); err != http.ErrServerClosed {
		return err
	}
	return nil
}

// reconcileLoop periodically replays sync entries left pending by
// interrupted submissions.
func (d *Daemon) reconcileLoop(ctx context.Context) {
	interval := parseDuration(d.Config.Sync.ReconcileInterval, time.Minute)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			applied, rejected, err := d.Sync.Reconcile()
			if err != nil {
				log.Printf("[daemon] sync reconcile error: %v", err)
				continue
			}
			if applied > 0 || rejected > 0 {
				log.Printf("[daemon] sync reconcile: %d applied, %d rejected", applied, rejected)
			}
		}
	}
}

// Close shuts down all daemon resources.
func (d *Daemon) Close() {
	if d.cancel != nil {
		d.cancel()
	}
	if d.DB != nil {
		_ = d.DB.Close()
	}
}
