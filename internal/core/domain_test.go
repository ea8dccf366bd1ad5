package core

import (
	"errors"
	"testing"
)

func TestValidateGroup(t *testing.T) {
	tests := []struct {
		name    string
		title   string
		members []Member
		wantErr error
	}{
		{
			name:    "valid group",
			title:   "Trip",
			members: []Member{"ann", "bob"},
			wantErr: nil,
		},
		{
			name:    "empty title",
			title:   "",
			members: []Member{"ann"},
			wantErr: ErrEmptyTitle,
		},
		{
			name:    "whitespace title",
			title:   "   ",
			members: []Member{"ann"},
			wantErr: ErrEmptyTitle,
		},
		{
			name:    "no members",
			title:   "Trip",
			members: nil,
			wantErr: ErrNoMembers,
		},
		{
			name:    "only blank members",
			title:   "Trip",
			members: []Member{"", "  "},
			wantErr: ErrNoMembers,
		},
		{
			name:    "too many members",
			title:   "Trip",
			members: []Member{"a", "b", "c", "d", "e", "f", "g"},
			wantErr: ErrTooManyMembers,
		},
		{
			name:    "exactly max members",
			title:   "Trip",
			members: []Member{"a", "b", "c", "d", "e", "f"},
			wantErr: nil,
		},
		{
			name:    "blanks dropped before counting",
			title:   "Trip",
			members: []Member{"a", "", "b", "c", "d", "e", "f", ""},
			wantErr: nil,
		},
		{
			name:    "empty title checked before members",
			title:   "",
			members: nil,
			wantErr: ErrEmptyTitle,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateGroup(tt.title, tt.members)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("ValidateGroup() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestNormalizeMembers(t *testing.T) {
	got := NormalizeMembers([]Member{" ann ", "", "bob", "  "})
	want := []Member{"ann", "bob"}
	if len(got) != len(want) {
		t.Fatalf("NormalizeMembers() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("NormalizeMembers()[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestNormalizeMembersKeepsDuplicatesAndCase(t *testing.T) {
	got := NormalizeMembers([]Member{"Ann", "ann", "Ann"})
	if len(got) != 3 {
		t.Fatalf("expected verbatim names kept, got %v", got)
	}
}

func TestValidateExpense(t *testing.T) {
	members := []Member{"ann", "bob", "cat"}

	tests := []struct {
		name    string
		title   string
		amount  Money
		split   []Member
		paidBy  Member
		wantErr error
	}{
		{
			name:    "valid expense",
			title:   "Dinner",
			amount:  Money{Cents: 9000},
			split:   []Member{"ann", "bob", "cat"},
			paidBy:  "ann",
			wantErr: nil,
		},
		{
			name:    "empty title",
			title:   " ",
			amount:  Money{Cents: 100},
			split:   []Member{"ann"},
			paidBy:  "ann",
			wantErr: ErrEmptyTitle,
		},
		{
			name:    "zero amount",
			title:   "Dinner",
			amount:  Money{Cents: 0},
			split:   []Member{"ann"},
			paidBy:  "ann",
			wantErr: ErrNonPositiveAmount,
		},
		{
			name:    "negative amount",
			title:   "Dinner",
			amount:  Money{Cents: -500},
			split:   []Member{"ann"},
			paidBy:  "ann",
			wantErr: ErrNonPositiveAmount,
		},
		{
			name:    "empty split",
			title:   "Dinner",
			amount:  Money{Cents: 100},
			split:   nil,
			paidBy:  "ann",
			wantErr: ErrEmptySplit,
		},
		{
			name:    "split of only outsiders normalizes to empty",
			title:   "Dinner",
			amount:  Money{Cents: 100},
			split:   []Member{"zed", "yolanda"},
			paidBy:  "ann",
			wantErr: ErrEmptySplit,
		},
		{
			name:    "payer outside group",
			title:   "Dinner",
			amount:  Money{Cents: 100},
			split:   []Member{"ann"},
			paidBy:  "zed",
			wantErr: ErrPayerNotInGroup,
		},
		{
			name:    "unrecorded payer is allowed",
			title:   "Dinner",
			amount:  Money{Cents: 100},
			split:   []Member{"ann"},
			paidBy:  "",
			wantErr: nil,
		},
		{
			name:    "amount checked before split",
			title:   "Dinner",
			amount:  Money{Cents: 0},
			split:   nil,
			paidBy:  "zed",
			wantErr: ErrNonPositiveAmount,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateExpense(tt.title, tt.amount, tt.split, tt.paidBy, members)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("ValidateExpense() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestNormalizeSplitDropsOutsiders(t *testing.T) {
	members := []Member{"ann", "bob"}
	got := NormalizeSplit([]Member{"ann", "zed", "", "bob"}, members)
	want := []Member{"ann", "bob"}
	if len(got) != len(want) {
		t.Fatalf("NormalizeSplit() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("NormalizeSplit()[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestGroupClone(t *testing.T) {
	g := Group{Title: "Trip", Members: []Member{"ann", "bob"}, DisplayColor: "#abcdef"}
	cp := g.Clone()
	cp.Members[0] = "zed"
	if g.Members[0] != "ann" {
		t.Fatal("Clone() shares the member slice")
	}
}
