// Package storage is the persistence collaborator for the ledger: a SQLite
// database holding one snapshot of the full model. The ledger loads it once
// at startup and rewrites it after every successful mutation. The encoding
// round-trips the model exactly; position columns preserve group, member,
// expense, and split order.
package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"divvy/internal/core"

	_ "modernc.org/sqlite"
)

type SQLiteRepository struct {
	db *sql.DB
}

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enable foreign keys: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteRepository{db: db}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// Save rewrites the snapshot in a single transaction: the previous contents
// are cleared and the full model reinserted. All-or-nothing, so a crash
// mid-save leaves the prior snapshot intact.
func (r *SQLiteRepository) Save(ctx context.Context, snap core.Snapshot) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	for _, table := range []string{"expense_split", "expenses", "group_members", "groups"} {
		if _, err := tx.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return fmt.Errorf("clear %s: %w", table, err)
		}
	}

	for gi, g := range snap.Groups {
		if _, err := tx.ExecContext(ctx,
			"INSERT INTO groups (title, position, display_color) VALUES (?, ?, ?)",
			g.Title, gi, g.DisplayColor,
		); err != nil {
			return fmt.Errorf("insert group: %w", err)
		}
		for mi, name := range g.Members {
			if _, err := tx.ExecContext(ctx,
				"INSERT INTO group_members (group_title, position, name) VALUES (?, ?, ?)",
				g.Title, mi, name,
			); err != nil {
				return fmt.Errorf("insert group member: %w", err)
			}
		}
		for ei, e := range snap.ExpensesByGroup[g.Title] {
			if _, err := tx.ExecContext(ctx,
				"INSERT INTO expenses (group_title, position, title, amount_cents, paid_by) VALUES (?, ?, ?, ?, ?)",
				g.Title, ei, e.Title, e.Amount.Cents, e.PaidBy,
			); err != nil {
				return fmt.Errorf("insert expense: %w", err)
			}
			for si, name := range e.SplitWith {
				if _, err := tx.ExecContext(ctx,
					"INSERT INTO expense_split (group_title, expense_position, position, name) VALUES (?, ?, ?, ?)",
					g.Title, ei, si, name,
				); err != nil {
					return fmt.Errorf("insert expense split: %w", err)
				}
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}

	slog.DebugContext(ctx, "Snapshot saved", "groups", len(snap.Groups))
	return nil
}

// Load reads the full snapshot back in stored order. An empty database
// yields an empty snapshot.
func (r *SQLiteRepository) Load(ctx context.Context) (core.Snapshot, error) {
	snap := core.Snapshot{ExpensesByGroup: make(map[string][]core.Expense)}

	rows, err := r.db.QueryContext(ctx,
		"SELECT title, display_color FROM groups ORDER BY position")
	if err != nil {
		return snap, fmt.Errorf("query groups: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var g core.Group
		if err := rows.Scan(&g.Title, &g.DisplayColor); err != nil {
			return snap, fmt.Errorf("scan group: %w", err)
		}
		snap.Groups = append(snap.Groups, g)
	}
	if err := rows.Err(); err != nil {
		return snap, fmt.Errorf("iterate groups: %w", err)
	}

	for i := range snap.Groups {
		g := &snap.Groups[i]
		g.Members, err = r.loadNames(ctx,
			"SELECT name FROM group_members WHERE group_title = ? ORDER BY position", g.Title)
		if err != nil {
			return snap, fmt.Errorf("load members of %q: %w", g.Title, err)
		}
		expenses, err := r.loadExpenses(ctx, g.Title)
		if err != nil {
			return snap, fmt.Errorf("load expenses of %q: %w", g.Title, err)
		}
		snap.ExpensesByGroup[g.Title] = expenses
	}

	return snap, nil
}

// LoadGroup reads a single group and its expense list, for callers that
// mirror one group at a time.
func (r *SQLiteRepository) LoadGroup(ctx context.Context, title string) (core.Group, []core.Expense, error) {
	g := core.Group{Title: title}
	err := r.db.QueryRowContext(ctx,
		"SELECT display_color FROM groups WHERE title = ?", title,
	).Scan(&g.DisplayColor)
	if err == sql.ErrNoRows {
		return core.Group{}, nil, core.ErrNotFound
	}
	if err != nil {
		return core.Group{}, nil, fmt.Errorf("query group: %w", err)
	}

	g.Members, err = r.loadNames(ctx,
		"SELECT name FROM group_members WHERE group_title = ? ORDER BY position", title)
	if err != nil {
		return core.Group{}, nil, fmt.Errorf("load members: %w", err)
	}

	expenses, err := r.loadExpenses(ctx, title)
	if err != nil {
		return core.Group{}, nil, fmt.Errorf("load expenses: %w", err)
	}
	return g, expenses, nil
}

func (r *SQLiteRepository) loadExpenses(ctx context.Context, groupTitle string) ([]core.Expense, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT position, title, amount_cents, paid_by FROM expenses WHERE group_title = ? ORDER BY position",
		groupTitle)
	if err != nil {
		return nil, fmt.Errorf("query expenses: %w", err)
	}
	defer rows.Close()

	var expenses []core.Expense
	var positions []int64
	for rows.Next() {
		var pos int64
		var e core.Expense
		if err := rows.Scan(&pos, &e.Title, &e.Amount.Cents, &e.PaidBy); err != nil {
			return nil, fmt.Errorf("scan expense: %w", err)
		}
		expenses = append(expenses, e)
		positions = append(positions, pos)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate expenses: %w", err)
	}

	for i := range expenses {
		expenses[i].SplitWith, err = r.loadNames(ctx,
			"SELECT name FROM expense_split WHERE group_title = ? AND expense_position = ? ORDER BY position",
			groupTitle, positions[i])
		if err != nil {
			return nil, fmt.Errorf("load split: %w", err)
		}
	}
	return expenses, nil
}

func (r *SQLiteRepository) loadNames(ctx context.Context, query string, args ...any) ([]string, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		names = append(names, name)
	}
	return names, rows.Err()
}
