// ABOUTME: Tests for gateway construction, health endpoints, and maintenance
// ABOUTME: Uses a temp SQLite store and a no-op channel

package gateway

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mundonet/dexbot/internal/config"
	"github.com/mundonet/dexbot/internal/menu"
	"github.com/mundonet/dexbot/internal/phone"
)

type nopChannel struct{}

func (nopChannel) Send(ctx context.Context, convID string, replies []menu.Reply) error {
	return nil
}

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	dir := t.TempDir()
	return &config.Config{
		Server:   config.ServerConfig{HTTPAddr: "127.0.0.1:0"},
		Database: config.DatabaseConfig{Path: filepath.Join(dir, "bot.db")},
		Bot: config.BotConfig{
			AdminNumber:      "+258855337491",
			PersistQueueSize: 16,
		},
		Sessions: config.SessionsConfig{
			Horizon:          24 * time.Hour,
			EvictionInterval: time.Hour,
			MessageTimeout:   10 * time.Second,
		},
		Maintenance: config.MaintenanceConfig{
			BackupDir: filepath.Join(dir, "backups"),
		},
	}
}

func newTestGateway(t *testing.T) *Gateway {
	t.Helper()
	gw, err := New(testConfig(t), nopChannel{}, slog.New(slog.DiscardHandler))
	require.NoError(t, err)
	t.Cleanup(func() {
		gw.persister.Close()
		_ = gw.store.Close()
	})
	return gw
}

func TestNewNormalizesAdminNumber(t *testing.T) {
	cfg := testConfig(t)
	cfg.Bot.AdminNumber = "0855337491"

	gw, err := New(cfg, nopChannel{}, slog.New(slog.DiscardHandler))
	require.NoError(t, err)
	defer func() { _ = gw.store.Close() }()

	assert.NotNil(t, gw.Router())
}

func TestNewRejectsBadAdminNumber(t *testing.T) {
	cfg := testConfig(t)
	cfg.Bot.AdminNumber = "not-a-number"

	_, err := New(cfg, nopChannel{}, slog.New(slog.DiscardHandler))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "admin_number")
}

func TestHandleHealth(t *testing.T) {
	gw := newTestGateway(t)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	gw.handleHealth(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp healthResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, 0, resp.Sessions)
}

func TestHandleReady(t *testing.T) {
	gw := newTestGateway(t)

	req := httptest.NewRequest(http.MethodGet, "/health/ready", nil)
	rec := httptest.NewRecorder()
	gw.handleReady(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestBackupRegistry(t *testing.T) {
	gw := newTestGateway(t)
	ctx := context.Background()
	require.NoError(t, gw.store.Upsert(ctx, "Ana", "+258845551234", phone.TagDomestic))

	path, err := gw.backupRegistry(ctx)
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var snap backupSnapshot
	require.NoError(t, json.Unmarshal(data, &snap))
	assert.NotEmpty(t, snap.SnapshotID)
	assert.Equal(t, 1, snap.Count)
	require.Len(t, snap.Customers, 1)
	assert.Equal(t, "Ana", snap.Customers[0].Name)
}

func TestBackupRegistryEmptyStore(t *testing.T) {
	gw := newTestGateway(t)

	path, err := gw.backupRegistry(context.Background())
	require.NoError(t, err)

	var snap backupSnapshot
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(data, &snap))
	assert.Equal(t, 0, snap.Count)
}

func TestUntilNextMidnight(t *testing.T) {
	now := time.Date(2026, 3, 10, 23, 30, 0, 0, time.Local)
	assert.Equal(t, 30*time.Minute, untilNextMidnight(now))

	early := time.Date(2026, 3, 10, 0, 0, 1, 0, time.Local)
	d := untilNextMidnight(early)
	assert.True(t, d > 23*time.Hour && d < 24*time.Hour, "d=%v", d)
}

func TestEvictSessions(t *testing.T) {
	gw := newTestGateway(t)

	gw.sessions.GetOrCreate("+258845551234")
	gw.evictSessions()

	// A fresh session survives the sweep.
	assert.Equal(t, 1, gw.sessions.Len())
}

func TestRunAndShutdown(t *testing.T) {
	gw := newTestGateway(t)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- gw.Run(ctx) }()

	time.Sleep(100 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("gateway did not shut down")
	}
}
