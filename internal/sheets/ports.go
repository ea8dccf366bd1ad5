// Package sheets declares the outbound ports of the mirror pipeline.
package sheets

import (
	"context"

	"divvy/internal/core"
	"divvy/internal/engine"
)

type (
	// GroupMirror writes a group's current ledger and derived settlement
	// list to an external destination. Implementations must be safe to call
	// repeatedly with the same state; the mirror is rewritten, not appended.
	GroupMirror interface {
		MirrorGroup(ctx context.Context, g core.Group, expenses []core.Expense, owes []engine.Obligation) error
	}

	// GroupRemover removes a deleted group from the mirror destination.
	GroupRemover interface {
		RemoveGroup(ctx context.Context, groupTitle string) error
	}
)
