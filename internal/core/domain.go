package core

import (
	"errors"
	"strings"
)

// MaxGroupMembers caps the size of a group's member list.
const MaxGroupMembers = 6

type (
	// Member is a display name, unique within its group by exact text match.
	Member = string

	Group struct {
		Title   string
		Members []Member // insertion order preserved, 1..MaxGroupMembers
		// DisplayColor is an opaque visual tag assigned once at creation.
		// The engine never reads it; callers own its format.
		DisplayColor string
	}

	Expense struct {
		Title  string
		Amount Money
		// PaidBy is the member who fronted the money. Empty means the payer
		// was not recorded (older data); such expenses generate no
		// obligations.
		PaidBy Member
		// SplitWith is the subset of the group sharing the cost. Order is
		// irrelevant to computation but preserved for display.
		SplitWith []Member
	}

	// Snapshot is the exchange type between the ledger and its persistence
	// collaborator. It round-trips the full model, order included.
	Snapshot struct {
		Groups          []Group
		ExpensesByGroup map[string][]Expense
	}
)

// Failure reasons. All are recoverable, caller-visible conditions; callers
// discriminate with errors.Is.
var (
	ErrEmptyTitle        = errors.New("empty title")
	ErrNoMembers         = errors.New("no members")
	ErrTooManyMembers    = errors.New("too many members")
	ErrNonPositiveAmount = errors.New("non-positive amount")
	ErrEmptySplit        = errors.New("empty split")
	ErrPayerNotInGroup   = errors.New("payer not in group")
	ErrDuplicateTitle    = errors.New("duplicate group title")
	ErrNotFound          = errors.New("group not found")
	ErrIndexOutOfRange   = errors.New("expense index out of range")
)

// NormalizeMembers drops blank entries, trimming surrounding whitespace.
// Names are otherwise kept verbatim: no case folding, no de-duplication.
func NormalizeMembers(members []Member) []Member {
	out := make([]Member, 0, len(members))
	for _, m := range members {
		m = strings.TrimSpace(m)
		if m == "" {
			continue
		}
		out = append(out, m)
	}
	return out
}

// ValidateGroup checks a group's title and member list before any mutation.
// Blank member entries are dropped before counting. First failure wins.
func ValidateGroup(title string, members []Member) error {
	if strings.TrimSpace(title) == "" {
		return ErrEmptyTitle
	}
	kept := NormalizeMembers(members)
	if len(kept) == 0 {
		return ErrNoMembers
	}
	if len(kept) > MaxGroupMembers {
		return ErrTooManyMembers
	}
	return nil
}

// NormalizeSplit drops blank entries and entries naming someone outside
// groupMembers. Normalizing here keeps every stored split a subset of the
// member list.
func NormalizeSplit(splitWith, groupMembers []Member) []Member {
	out := make([]Member, 0, len(splitWith))
	for _, m := range splitWith {
		m = strings.TrimSpace(m)
		if m == "" || !contains(groupMembers, m) {
			continue
		}
		out = append(out, m)
	}
	return out
}

// ValidateExpense checks an expense against its owning group's current
// member list. Checks short-circuit in a fixed order: empty title,
// non-positive amount, empty split (after normalization), payer outside the
// group.
func ValidateExpense(title string, amount Money, splitWith []Member, paidBy Member, groupMembers []Member) error {
	if strings.TrimSpace(title) == "" {
		return ErrEmptyTitle
	}
	if err := amount.Validate(); err != nil {
		return err
	}
	if len(NormalizeSplit(splitWith, groupMembers)) == 0 {
		return ErrEmptySplit
	}
	if paidBy != "" && !contains(groupMembers, paidBy) {
		return ErrPayerNotInGroup
	}
	return nil
}

// Validate checks the group's own structural invariants.
func (g Group) Validate() error {
	return ValidateGroup(g.Title, g.Members)
}

// HasMember reports whether name is in the group's member list (exact match).
func (g Group) HasMember(name Member) bool {
	return contains(g.Members, name)
}

func contains(members []Member, name Member) bool {
	for _, m := range members {
		if m == name {
			return true
		}
	}
	return false
}

// Clone returns a deep copy so callers can hand groups across boundaries
// without sharing the member slice.
func (g Group) Clone() Group {
	cp := g
	cp.Members = append([]Member(nil), g.Members...)
	return cp
}

// Clone returns a deep copy of the expense.
func (e Expense) Clone() Expense {
	cp := e
	cp.SplitWith = append([]Member(nil), e.SplitWith...)
	return cp
}
