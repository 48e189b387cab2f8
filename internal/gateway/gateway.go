// ABOUTME: Top-level bot lifecycle wiring transports, store, and sessions
// ABOUTME: Manages the health endpoint, maintenance loops, and shutdown

package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"tailscale.com/tsnet"

	"github.com/mundonet/dexbot/internal/admincmd"
	"github.com/mundonet/dexbot/internal/config"
	"github.com/mundonet/dexbot/internal/dailyset"
	"github.com/mundonet/dexbot/internal/menu"
	"github.com/mundonet/dexbot/internal/phone"
	"github.com/mundonet/dexbot/internal/router"
	"github.com/mundonet/dexbot/internal/session"
	"github.com/mundonet/dexbot/internal/store"
)

// Gateway owns the bot's long-lived components and their lifecycle.
type Gateway struct {
	config      *config.Config
	logger      *slog.Logger
	store       store.Store
	sessions    *session.Registry
	seenToday   *dailyset.Set
	persister   *router.Persister
	router      *router.Router
	httpServer  *http.Server
	tsnetServer *tsnet.Server
	startedAt   time.Time
}

// New builds a Gateway from configuration. ch is the transport the bot
// replies through; inbound messages reach the bot via Router().
func New(cfg *config.Config, ch router.Channel, logger *slog.Logger) (*Gateway, error) {
	normalizer := phone.NewNormalizer(logger)

	adminCanonical, err := normalizer.Normalize(cfg.Bot.AdminNumber)
	if err != nil {
		return nil, fmt.Errorf("normalizing bot.admin_number %q: %w", cfg.Bot.AdminNumber, err)
	}

	st, err := store.NewSQLiteStore(cfg.Database.Path)
	if err != nil {
		return nil, fmt.Errorf("opening store: %w", err)
	}

	sessions := session.NewRegistry(logger)
	seenToday := dailyset.New()
	persister := router.NewPersister(st, cfg.Bot.PersistQueueSize, logger)

	gw := &Gateway{
		config:    cfg,
		logger:    logger.With("component", "gateway"),
		store:     st,
		sessions:  sessions,
		seenToday: seenToday,
		persister: persister,
		startedAt: time.Now(),
	}

	gw.router = router.New(router.Config{
		Channel:     ch,
		Normalizer:  normalizer,
		Sessions:    sessions,
		Dispatcher:  menu.NewDispatcher(cfg.Bot.TableImage),
		Admin:       admincmd.NewHandler(st, logger),
		Persister:   persister,
		SeenToday:   seenToday,
		AdminNumber: adminCanonical,
		Timeout:     cfg.Sessions.MessageTimeout,
		Logger:      logger,
	})

	mux := http.NewServeMux()
	mux.HandleFunc("/health", gw.handleHealth)
	mux.HandleFunc("/health/ready", gw.handleReady)

	gw.httpServer = &http.Server{
		Addr:              cfg.Server.HTTPAddr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	return gw, nil
}

// Router exposes the message router for transports to feed.
func (g *Gateway) Router() *router.Router {
	return g.router
}

// Run starts the health server and maintenance loops and blocks until the
// context is canceled. Returns nil on graceful shutdown, or an error if the
// server fails.
func (g *Gateway) Run(ctx context.Context) error {
	httpLn, err := g.setupListener(ctx)
	if err != nil {
		return err
	}

	g.persister.Start()

	maintCtx, cancelMaint := context.WithCancel(ctx)
	defer cancelMaint()
	go g.runMaintenance(maintCtx)

	errCh := make(chan error, 1)
	go func() {
		g.logger.Info("HTTP server listening", "addr", httpLn.Addr().String())
		if err := g.httpServer.Serve(httpLn); err != nil && err != http.ErrServerClosed {
			errCh <- fmt.Errorf("HTTP server: %w", err)
		}
	}()

	var serverErr error
	select {
	case <-ctx.Done():
		g.logger.Info("context canceled, initiating shutdown")
	case serverErr = <-errCh:
		g.logger.Error("server error", "error", serverErr)
	}

	shutdownErr := g.gracefulShutdown()
	if serverErr != nil {
		return serverErr
	}
	return shutdownErr
}

// setupListener creates the health listener over Tailscale or plain TCP.
func (g *Gateway) setupListener(ctx context.Context) (net.Listener, error) {
	if g.config.Tailscale.Enabled {
		if g.config.Server.HTTPAddr != "" {
			g.logger.Warn("server.http_addr is ignored when tailscale is enabled",
				"http_addr", g.config.Server.HTTPAddr)
		}
		return g.setupTailscaleListener(ctx)
	}
	g.logger.Info("starting bot", "http_addr", g.config.Server.HTTPAddr)
	ln, err := net.Listen("tcp", g.config.Server.HTTPAddr)
	if err != nil {
		return nil, fmt.Errorf("listening on HTTP address: %w", err)
	}
	return ln, nil
}

// resolveTailscaleStateDir returns the state directory, using default if not configured.
func resolveTailscaleStateDir(configured string) (string, error) {
	if configured != "" {
		return configured, nil
	}
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot determine home directory for tailscale state (set tailscale.state_dir explicitly): %w", err)
	}
	return filepath.Join(homeDir, ".local", "share", "dexbot", "tailscale"), nil
}

// resolveTailscaleAuthKey returns the auth key from config or environment.
func resolveTailscaleAuthKey(configured string) (string, error) {
	authKey := configured
	if authKey == "" {
		authKey = os.Getenv("TS_AUTHKEY")
	}
	if authKey == "" {
		return "", errors.New("tailscale auth key required: set auth_key in config or TS_AUTHKEY environment variable (get one at https://login.tailscale.com/admin/settings/keys)")
	}
	return authKey, nil
}

// setupTailscaleListener creates a tsnet server and returns its HTTP listener.
func (g *Gateway) setupTailscaleListener(ctx context.Context) (net.Listener, error) {
	tsCfg := g.config.Tailscale

	stateDir, err := resolveTailscaleStateDir(tsCfg.StateDir)
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(stateDir, 0700); err != nil {
		return nil, fmt.Errorf("creating tailscale state dir: %w", err)
	}

	authKey, err := resolveTailscaleAuthKey(tsCfg.AuthKey)
	if err != nil {
		return nil, err
	}

	g.tsnetServer = &tsnet.Server{
		Hostname:  tsCfg.Hostname,
		Dir:       stateDir,
		Ephemeral: tsCfg.Ephemeral,
		AuthKey:   authKey,
	}

	g.logger.Info("starting tailscale node", "hostname", tsCfg.Hostname, "state_dir", stateDir, "ephemeral", tsCfg.Ephemeral)
	if _, err := g.tsnetServer.Up(ctx); err != nil {
		_ = g.tsnetServer.Close()
		return nil, fmt.Errorf("starting tailscale: %w", err)
	}

	ln, err := g.tsnetServer.Listen("tcp", ":80")
	if err != nil {
		_ = g.tsnetServer.Close()
		return nil, fmt.Errorf("listening on tailscale HTTP port: %w", err)
	}
	return ln, nil
}

// gracefulShutdown performs shutdown with a fresh context and timeout.
// Uses context.Background() intentionally since the original context is already canceled.
func (g *Gateway) gracefulShutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return g.Shutdown(ctx)
}

// appendCloseError appends an error with label if err is non-nil.
func appendCloseError(errs []error, label string, err error) []error {
	if err != nil {
		return append(errs, fmt.Errorf("%s: %w", label, err))
	}
	return errs
}

// Shutdown stops the servers, drains pending writes, and closes the store.
func (g *Gateway) Shutdown(ctx context.Context) error {
	g.logger.Info("shutting down")

	var errs []error
	errs = appendCloseError(errs, "HTTP shutdown", g.httpServer.Shutdown(ctx))

	if g.tsnetServer != nil {
		errs = appendCloseError(errs, "tailscale shutdown", g.tsnetServer.Close())
	}

	g.persister.Close()
	errs = appendCloseError(errs, "store close", g.store.Close())

	if len(errs) > 0 {
		return fmt.Errorf("shutdown errors: %v", errs)
	}
	return nil
}

type healthResponse struct {
	Status   string `json:"status"`
	Uptime   string `json:"uptime"`
	Sessions int    `json:"sessions"`
}

// handleHealth reports liveness with basic runtime stats.
func (g *Gateway) handleHealth(w http.ResponseWriter, r *http.Request) {
	resp := healthResponse{
		Status:   "ok",
		Uptime:   time.Since(g.startedAt).Round(time.Second).String(),
		Sessions: g.sessions.Len(),
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(resp)
}

// handleReady returns 200 OK only when the store answers queries.
func (g *Gateway) handleReady(w http.ResponseWriter, r *http.Request) {
	if _, err := g.store.QueryByRecency(r.Context(), store.WindowToday); err != nil {
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = fmt.Fprintf(w, "store unavailable: %v", err)
		return
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready"))
}
