// ABOUTME: Background maintenance loops for the bot
// ABOUTME: Session eviction, daily set reset, registry backups, weekly report

package gateway

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/mundonet/dexbot/internal/store"
)

// runMaintenance drives the periodic jobs until the context is canceled.
// Eviction runs on its own interval; the daily jobs fire at local midnight.
func (g *Gateway) runMaintenance(ctx context.Context) {
	evict := time.NewTicker(g.config.Sessions.EvictionInterval)
	defer evict.Stop()

	midnight := time.NewTimer(untilNextMidnight(time.Now()))
	defer midnight.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-evict.C:
			g.evictSessions()
		case <-midnight.C:
			g.runDailyJobs(ctx)
			midnight.Reset(untilNextMidnight(time.Now()))
		}
	}
}

// untilNextMidnight returns the duration until the next local midnight.
func untilNextMidnight(now time.Time) time.Duration {
	now = now.Local()
	next := time.Date(now.Year(), now.Month(), now.Day()+1, 0, 0, 0, 0, now.Location())
	return next.Sub(now)
}

func (g *Gateway) evictSessions() {
	g.sessions.EvictInactive(g.config.Sessions.Horizon)
}

// runDailyJobs resets the per-day registration gate, snapshots the registry,
// and emits the weekly report on Sundays.
func (g *Gateway) runDailyJobs(ctx context.Context) {
	g.seenToday.Clear()
	g.logger.Info("daily registration gate cleared")

	if g.config.Maintenance.BackupDir != "" {
		if path, err := g.backupRegistry(ctx); err != nil {
			g.logger.Error("registry backup failed", "error", err)
		} else {
			g.logger.Info("registry backup written", "path", path)
		}
	}

	if time.Now().Weekday() == time.Sunday {
		g.logWeeklyReport(ctx)
	}
}

// backupSnapshot is the on-disk shape of one registry backup.
type backupSnapshot struct {
	SnapshotID string            `json:"snapshot_id"`
	TakenAt    time.Time         `json:"taken_at"`
	Count      int               `json:"count"`
	Customers  []*store.Customer `json:"customers"`
}

// backupRegistry writes a JSON snapshot of all customers into the backup dir.
func (g *Gateway) backupRegistry(ctx context.Context) (string, error) {
	customers, err := g.store.QueryByRecency(ctx, store.WindowAll)
	if err != nil {
		return "", fmt.Errorf("querying customers: %w", err)
	}

	if err := os.MkdirAll(g.config.Maintenance.BackupDir, 0755); err != nil {
		return "", fmt.Errorf("creating backup dir: %w", err)
	}

	snap := backupSnapshot{
		SnapshotID: uuid.New().String(),
		TakenAt:    time.Now().UTC(),
		Count:      len(customers),
		Customers:  customers,
	}
	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return "", fmt.Errorf("encoding snapshot: %w", err)
	}

	name := fmt.Sprintf("customers-%s.json", time.Now().Format("2006-01-02"))
	path := filepath.Join(g.config.Maintenance.BackupDir, name)
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("writing snapshot: %w", err)
	}
	return path, nil
}

// logWeeklyReport logs registration counts for the common recency windows.
func (g *Gateway) logWeeklyReport(ctx context.Context) {
	counts := map[string]int{}
	for _, w := range []store.Window{store.WindowLast7d, store.WindowLast30d, store.WindowAll} {
		customers, err := g.store.QueryByRecency(ctx, w)
		if err != nil {
			g.logger.Error("weekly report query failed", "window", w, "error", err)
			return
		}
		counts[string(w)] = len(customers)
	}
	g.logger.Info("weekly customer report",
		"last_7d", counts[string(store.WindowLast7d)],
		"last_30d", counts[string(store.WindowLast30d)],
		"total", counts[string(store.WindowAll)],
		"active_sessions", g.sessions.Len(),
	)
}
