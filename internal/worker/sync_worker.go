// Package worker mirrors ledger changes from the SQLite snapshot to the
// spreadsheet destination.
package worker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"divvy/internal/amqp"
	"divvy/internal/core"
	"divvy/internal/engine"
	"divvy/internal/services"
	"divvy/internal/sheets"
	"divvy/internal/storage"
)

// SyncWorker consumes ledger sync messages and rewrites the affected
// group's mirror. Messages carry only the group title and operation; state
// always comes fresh from storage, so replays and reordering are safe.
type SyncWorker struct {
	storage *storage.SQLiteRepository
	mirror  sheets.GroupMirror
	remover sheets.GroupRemover
}

func NewSyncWorker(storage *storage.SQLiteRepository, mirror sheets.GroupMirror, remover sheets.GroupRemover) *SyncWorker {
	return &SyncWorker{
		storage: storage,
		mirror:  mirror,
		remover: remover,
	}
}

// HandleSyncMessage processes a single ledger sync message.
func (w *SyncWorker) HandleSyncMessage(ctx context.Context, msg *amqp.LedgerSyncMessage) error {
	slog.InfoContext(ctx, "Processing sync message",
		"group", msg.GroupTitle,
		"op", msg.Op)

	if msg.Op == services.OpGroupDelete {
		if err := w.remover.RemoveGroup(ctx, msg.GroupTitle); err != nil {
			return fmt.Errorf("remove group mirror: %w", err)
		}
		return nil
	}

	g, expenses, err := w.storage.LoadGroup(ctx, msg.GroupTitle)
	if errors.Is(err, core.ErrNotFound) {
		// Deleted (or renamed away) since the message was queued.
		slog.WarnContext(ctx, "Group vanished before mirror, skipping", "group", msg.GroupTitle)
		return nil
	}
	if err != nil {
		return fmt.Errorf("load group from storage: %w", err)
	}

	owes := engine.OwesList(g, expenses)
	if err := w.mirror.MirrorGroup(ctx, g, expenses, owes); err != nil {
		return fmt.Errorf("mirror group: %w", err)
	}
	return nil
}

// MirrorAll rewrites every group's mirror from the current snapshot. Used
// as a periodic catch-up in case individual messages were lost.
func (w *SyncWorker) MirrorAll(ctx context.Context) error {
	snap, err := w.storage.Load(ctx)
	if err != nil {
		return fmt.Errorf("load snapshot: %w", err)
	}

	start := time.Now()
	for _, g := range snap.Groups {
		expenses := snap.ExpensesByGroup[g.Title]
		owes := engine.OwesList(g, expenses)
		if err := w.mirror.MirrorGroup(ctx, g, expenses, owes); err != nil {
			return fmt.Errorf("mirror group %q: %w", g.Title, err)
		}
	}

	slog.InfoContext(ctx, "Full mirror completed",
		"groups", len(snap.Groups),
		"duration_ms", time.Since(start).Milliseconds())
	return nil
}
