// Package ledger owns the in-memory collection of groups and, per group,
// its ordered expense list. It enforces storage-level rules only (title
// uniqueness, index bounds, cascade on delete); business validation lives in
// core and is applied by the service layer before any call lands here.
package ledger

import (
	"sync"

	"divvy/internal/core"
)

type entry struct {
	group    core.Group
	expenses []core.Expense
}

// Store is the single owner of the group collection. Group title is the
// identity key. A mutex guards every operation; this is the one
// mutual-exclusion boundary the design calls for when the ledger is embedded
// in a concurrent context.
type Store struct {
	mu      sync.Mutex
	entries []*entry // insertion order
	byTitle map[string]*entry
}

func New() *Store {
	return &Store{byTitle: make(map[string]*entry)}
}

// NewFromSnapshot rebuilds a store from a persisted snapshot, preserving
// group and expense order.
func NewFromSnapshot(snap core.Snapshot) *Store {
	s := New()
	for _, g := range snap.Groups {
		e := &entry{group: g.Clone()}
		for _, exp := range snap.ExpensesByGroup[g.Title] {
			e.expenses = append(e.expenses, exp.Clone())
		}
		s.entries = append(s.entries, e)
		s.byTitle[g.Title] = e
	}
	return s
}

// AddGroup inserts a group with an empty expense list. Fails with
// ErrDuplicateTitle when the title is already taken.
func (s *Store) AddGroup(g core.Group) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.byTitle[g.Title]; ok {
		return core.ErrDuplicateTitle
	}
	e := &entry{group: g.Clone()}
	s.entries = append(s.entries, e)
	s.byTitle[g.Title] = e
	return nil
}

// RenameGroup replaces the group stored under oldTitle with updated,
// atomically re-keying its expense list. The expense list is neither dropped
// nor duplicated. Fails with ErrNotFound when oldTitle is absent and with
// ErrDuplicateTitle when updated.Title belongs to a different group.
func (s *Store) RenameGroup(oldTitle string, updated core.Group) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.byTitle[oldTitle]
	if !ok {
		return core.ErrNotFound
	}
	if other, taken := s.byTitle[updated.Title]; taken && other != e {
		return core.ErrDuplicateTitle
	}
	delete(s.byTitle, oldTitle)
	e.group = updated.Clone()
	s.byTitle[updated.Title] = e
	return nil
}

// DeleteGroup removes the group and its entire expense list.
func (s *Store) DeleteGroup(title string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.byTitle[title]
	if !ok {
		return core.ErrNotFound
	}
	delete(s.byTitle, title)
	for i, cur := range s.entries {
		if cur == e {
			s.entries = append(s.entries[:i], s.entries[i+1:]...)
			break
		}
	}
	return nil
}

// AppendExpense appends to the end of the named group's list.
func (s *Store) AppendExpense(groupTitle string, exp core.Expense) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.byTitle[groupTitle]
	if !ok {
		return core.ErrNotFound
	}
	e.expenses = append(e.expenses, exp.Clone())
	return nil
}

// ReplaceExpenseAt updates the expense at index in place. Its position, and
// therefore its identity, does not change.
func (s *Store) ReplaceExpenseAt(groupTitle string, index int, exp core.Expense) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.byTitle[groupTitle]
	if !ok {
		return core.ErrNotFound
	}
	if index < 0 || index >= len(e.expenses) {
		return core.ErrIndexOutOfRange
	}
	e.expenses[index] = exp.Clone()
	return nil
}

// RemoveExpenseAt deletes the expense at index; later expenses shift left.
func (s *Store) RemoveExpenseAt(groupTitle string, index int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.byTitle[groupTitle]
	if !ok {
		return core.ErrNotFound
	}
	if index < 0 || index >= len(e.expenses) {
		return core.ErrIndexOutOfRange
	}
	e.expenses = append(e.expenses[:index], e.expenses[index+1:]...)
	return nil
}

// Group returns a copy of the named group.
func (s *Store) Group(title string) (core.Group, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.byTitle[title]
	if !ok {
		return core.Group{}, core.ErrNotFound
	}
	return e.group.Clone(), nil
}

// ListGroups returns a copy of all groups in insertion order. Empty slice,
// never an error, when nothing exists.
func (s *Store) ListGroups() []core.Group {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]core.Group, 0, len(s.entries))
	for _, e := range s.entries {
		out = append(out, e.group.Clone())
	}
	return out
}

// ListExpenses returns a copy of the named group's expense list in insertion
// order. A missing group yields an empty slice, not an error; after a
// cascade delete the title simply has nothing under it.
func (s *Store) ListExpenses(groupTitle string) []core.Expense {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.byTitle[groupTitle]
	if !ok {
		return []core.Expense{}
	}
	out := make([]core.Expense, 0, len(e.expenses))
	for _, exp := range e.expenses {
		out = append(out, exp.Clone())
	}
	return out
}

// Snapshot captures the full ledger for the persistence collaborator.
func (s *Store) Snapshot() core.Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	snap := core.Snapshot{
		Groups:          make([]core.Group, 0, len(s.entries)),
		ExpensesByGroup: make(map[string][]core.Expense, len(s.entries)),
	}
	for _, e := range s.entries {
		snap.Groups = append(snap.Groups, e.group.Clone())
		exps := make([]core.Expense, 0, len(e.expenses))
		for _, exp := range e.expenses {
			exps = append(exps, exp.Clone())
		}
		snap.ExpensesByGroup[e.group.Title] = exps
	}
	return snap
}
