// Package engine computes totals and settlement obligations from ledger
// data. Every function is pure: same inputs, same outputs, no mutation, so
// recomputation at any time is safe.
package engine

import "divvy/internal/core"

// Share returns the base equal share of an expense: amount divided by the
// number of split members, floored to whole cents. Zero when nobody shares
// the cost.
func Share(e core.Expense) core.Money {
	n := len(e.SplitWith)
	if n == 0 {
		return core.Money{}
	}
	return core.Money{Cents: e.Amount.Cents / int64(n)}
}

// SplitShares allocates amount across n participants so the shares sum to
// the amount exactly. The remainder cents after integer division go to the
// earliest participants, one cent each. Splitting in whole cents never loses
// or fabricates money, which float division cannot guarantee.
func SplitShares(amount core.Money, n int) []core.Money {
	if n <= 0 {
		return nil
	}
	base := amount.Cents / int64(n)
	rem := amount.Cents % int64(n)
	shares := make([]core.Money, n)
	for i := range shares {
		shares[i] = core.Money{Cents: base}
		if int64(i) < rem {
			shares[i].Cents++
		}
	}
	return shares
}

// GroupTotal sums the amounts of every expense whose split still intersects
// the group's current member list. An expense recorded before a membership
// change keeps counting as long as any overlap remains; it drops out only
// when nobody left in the group shared it. Empty list sums to zero.
func GroupTotal(g core.Group, expenses []core.Expense) core.Money {
	var total int64
	for _, e := range expenses {
		if splitIntersectsMembers(e, g) {
			total += e.Amount.Cents
		}
	}
	return core.Money{Cents: total}
}

func splitIntersectsMembers(e core.Expense, g core.Group) bool {
	for _, m := range e.SplitWith {
		if g.HasMember(m) {
			return true
		}
	}
	return false
}
