package engine

import "divvy/internal/core"

// Obligation is one pairwise debt derived from a single expense.
type Obligation struct {
	Owes       core.Member
	OwedTo     core.Member
	Amount     core.Money
	ForExpense string
}

// OwesList flattens a group's expenses into pairwise obligations: for each
// expense, one record per split member other than the payer, carrying that
// member's allocated share. Records are grouped by expense in insertion
// order, then by member in split order. The list is deliberately not
// net-settled; a member owed on one expense and owing on another appears in
// both records.
//
// An expense with no recorded payer produces no obligations (each split
// member is treated as having covered their own share). A split containing
// only the payer produces none either. A payer outside the split still
// collects from every split member.
func OwesList(g core.Group, expenses []core.Expense) []Obligation {
	var out []Obligation
	for _, e := range expenses {
		if e.PaidBy == "" || len(e.SplitWith) == 0 {
			continue
		}
		shares := SplitShares(e.Amount, len(e.SplitWith))
		for i, m := range e.SplitWith {
			if m == e.PaidBy {
				continue
			}
			out = append(out, Obligation{
				Owes:       m,
				OwedTo:     e.PaidBy,
				Amount:     shares[i],
				ForExpense: e.Title,
			})
		}
	}
	return out
}
