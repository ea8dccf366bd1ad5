// Package services orchestrates ledger mutations: validate first, apply
// exactly one store operation, then flush the snapshot to persistence and
// notify the sync pipeline. A validation failure surfaces its reason
// unchanged and leaves the ledger untouched.
package services

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"divvy/internal/core"
	"divvy/internal/engine"
	"divvy/internal/ledger"
)

// SnapshotSaver is the persistence collaborator: it receives the full ledger
// snapshot after every successful mutation.
type SnapshotSaver interface {
	Save(ctx context.Context, snap core.Snapshot) error
}

// SyncPublisher notifies the async mirror pipeline that a group's ledger
// changed. Publishing is best effort and never fails a mutation.
type SyncPublisher interface {
	PublishLedgerSync(ctx context.Context, groupTitle, op string) error
}

// Operation names carried in sync messages.
const (
	OpGroupCreate   = "group:create"
	OpGroupUpdate   = "group:update"
	OpGroupDelete   = "group:delete"
	OpExpenseCreate = "expense:create"
	OpExpenseUpdate = "expense:update"
	OpExpenseDelete = "expense:delete"
)

// LedgerService is the lifecycle manager for groups and expenses. Each
// public operation runs under one mutex so the validate/apply/persist
// sequence is a single critical section.
type LedgerService struct {
	mu        sync.Mutex
	store     *ledger.Store
	saver     SnapshotSaver // nil means memory-only, nothing to flush
	publisher SyncPublisher // nil means no sync pipeline
}

func NewLedgerService(store *ledger.Store, saver SnapshotSaver, publisher SyncPublisher) *LedgerService {
	return &LedgerService{store: store, saver: saver, publisher: publisher}
}

// CreateGroup validates and inserts a new group. DisplayColor is stored
// opaquely; assigning one is the caller's concern.
func (s *LedgerService) CreateGroup(ctx context.Context, title string, members []core.Member, displayColor string) (core.Group, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := core.ValidateGroup(title, members); err != nil {
		return core.Group{}, err
	}
	g := core.Group{
		Title:        title,
		Members:      core.NormalizeMembers(members),
		DisplayColor: displayColor,
	}
	if err := s.store.AddGroup(g); err != nil {
		return core.Group{}, err
	}
	if err := s.persist(ctx); err != nil {
		return core.Group{}, err
	}
	s.publish(ctx, g.Title, OpGroupCreate)
	slog.InfoContext(ctx, "Group created", "group", g.Title, "members", len(g.Members))
	return g, nil
}

// UpdateGroup changes a group's title and/or member list. A title change
// re-keys the expense list atomically; the display color assigned at
// creation is preserved. Shrinking the member list does not touch existing
// expenses.
func (s *LedgerService) UpdateGroup(ctx context.Context, oldTitle, newTitle string, members []core.Member) (core.Group, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := core.ValidateGroup(newTitle, members); err != nil {
		return core.Group{}, err
	}
	existing, err := s.store.Group(oldTitle)
	if err != nil {
		return core.Group{}, err
	}
	updated := core.Group{
		Title:        newTitle,
		Members:      core.NormalizeMembers(members),
		DisplayColor: existing.DisplayColor,
	}
	if err := s.store.RenameGroup(oldTitle, updated); err != nil {
		return core.Group{}, err
	}
	if err := s.persist(ctx); err != nil {
		return core.Group{}, err
	}
	s.publish(ctx, updated.Title, OpGroupUpdate)
	slog.InfoContext(ctx, "Group updated", "group", updated.Title, "previous_title", oldTitle)
	return updated, nil
}

// DeleteGroup removes a group and cascades to its whole expense list.
func (s *LedgerService) DeleteGroup(ctx context.Context, title string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.store.DeleteGroup(title); err != nil {
		return err
	}
	if err := s.persist(ctx); err != nil {
		return err
	}
	s.publish(ctx, title, OpGroupDelete)
	slog.InfoContext(ctx, "Group deleted", "group", title)
	return nil
}

// AddExpense validates the expense against the owning group's current
// members and appends it to the group's list.
func (s *LedgerService) AddExpense(ctx context.Context, groupTitle string, exp core.Expense) (core.Expense, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	g, err := s.store.Group(groupTitle)
	if err != nil {
		return core.Expense{}, err
	}
	if err := core.ValidateExpense(exp.Title, exp.Amount, exp.SplitWith, exp.PaidBy, g.Members); err != nil {
		return core.Expense{}, err
	}
	exp.SplitWith = core.NormalizeSplit(exp.SplitWith, g.Members)
	if err := s.store.AppendExpense(groupTitle, exp); err != nil {
		return core.Expense{}, err
	}
	if err := s.persist(ctx); err != nil {
		return core.Expense{}, err
	}
	s.publish(ctx, groupTitle, OpExpenseCreate)
	slog.InfoContext(ctx, "Expense added",
		"group", groupTitle,
		"expense", exp.Title,
		"amount_cents", exp.Amount.Cents,
		"split_size", len(exp.SplitWith))
	return exp, nil
}

// EditExpense replaces the expense at index in place. Title, amount, payer,
// and split may all change; the position does not.
func (s *LedgerService) EditExpense(ctx context.Context, groupTitle string, index int, exp core.Expense) (core.Expense, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	g, err := s.store.Group(groupTitle)
	if err != nil {
		return core.Expense{}, err
	}
	if err := core.ValidateExpense(exp.Title, exp.Amount, exp.SplitWith, exp.PaidBy, g.Members); err != nil {
		return core.Expense{}, err
	}
	exp.SplitWith = core.NormalizeSplit(exp.SplitWith, g.Members)
	if err := s.store.ReplaceExpenseAt(groupTitle, index, exp); err != nil {
		return core.Expense{}, err
	}
	if err := s.persist(ctx); err != nil {
		return core.Expense{}, err
	}
	s.publish(ctx, groupTitle, OpExpenseUpdate)
	slog.InfoContext(ctx, "Expense updated", "group", groupTitle, "index", index, "expense", exp.Title)
	return exp, nil
}

// DeleteExpense removes the expense at index; later indices shift down.
func (s *LedgerService) DeleteExpense(ctx context.Context, groupTitle string, index int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.store.RemoveExpenseAt(groupTitle, index); err != nil {
		return err
	}
	if err := s.persist(ctx); err != nil {
		return err
	}
	s.publish(ctx, groupTitle, OpExpenseDelete)
	slog.InfoContext(ctx, "Expense deleted", "group", groupTitle, "index", index)
	return nil
}

// Groups lists all groups in creation order.
func (s *LedgerService) Groups() []core.Group {
	return s.store.ListGroups()
}

// Group returns a single group by title.
func (s *LedgerService) Group(title string) (core.Group, error) {
	return s.store.Group(title)
}

// Expenses lists a group's expenses in insertion order; empty for an
// unknown title.
func (s *LedgerService) Expenses(groupTitle string) []core.Expense {
	return s.store.ListExpenses(groupTitle)
}

// GroupTotal recomputes the group's total from scratch.
func (s *LedgerService) GroupTotal(groupTitle string) (core.Money, error) {
	g, err := s.store.Group(groupTitle)
	if err != nil {
		return core.Money{}, err
	}
	return engine.GroupTotal(g, s.store.ListExpenses(groupTitle)), nil
}

// OwesList recomputes the group's flat settlement list from scratch.
func (s *LedgerService) OwesList(groupTitle string) ([]engine.Obligation, error) {
	g, err := s.store.Group(groupTitle)
	if err != nil {
		return nil, err
	}
	return engine.OwesList(g, s.store.ListExpenses(groupTitle)), nil
}

// persist flushes the current snapshot to the persistence collaborator. The
// in-memory mutation has already committed; a save failure is surfaced so
// the caller knows durability is behind.
func (s *LedgerService) persist(ctx context.Context) error {
	if s.saver == nil {
		return nil
	}
	if err := s.saver.Save(ctx, s.store.Snapshot()); err != nil {
		return fmt.Errorf("save snapshot: %w", err)
	}
	return nil
}

func (s *LedgerService) publish(ctx context.Context, groupTitle, op string) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.PublishLedgerSync(ctx, groupTitle, op); err != nil {
		slog.ErrorContext(ctx, "Failed to publish ledger sync message",
			"group", groupTitle, "op", op, "error", err)
	}
}
