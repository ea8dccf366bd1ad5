package services

import (
	"context"
	"errors"
	"testing"

	"divvy/internal/core"
	"divvy/internal/ledger"
)

type recordingSaver struct {
	saves []core.Snapshot
	err   error
}

func (r *recordingSaver) Save(_ context.Context, snap core.Snapshot) error {
	if r.err != nil {
		return r.err
	}
	r.saves = append(r.saves, snap)
	return nil
}

type recordingPublisher struct {
	ops []string
}

func (r *recordingPublisher) PublishLedgerSync(_ context.Context, groupTitle, op string) error {
	r.ops = append(r.ops, op+" "+groupTitle)
	return nil
}

func newTestService() (*LedgerService, *recordingSaver, *recordingPublisher) {
	saver := &recordingSaver{}
	pub := &recordingPublisher{}
	return NewLedgerService(ledger.New(), saver, pub), saver, pub
}

func TestCreateGroupPersistsAndPublishes(t *testing.T) {
	svc, saver, pub := newTestService()

	g, err := svc.CreateGroup(context.Background(), "Trip", []core.Member{"ann", "bob"}, "#abc123")
	if err != nil {
		t.Fatalf("CreateGroup: %v", err)
	}
	if g.DisplayColor != "#abc123" {
		t.Fatalf("display color not stored: %+v", g)
	}
	if len(saver.saves) != 1 {
		t.Fatalf("expected 1 snapshot save, got %d", len(saver.saves))
	}
	if len(pub.ops) != 1 || pub.ops[0] != OpGroupCreate+" Trip" {
		t.Fatalf("published ops = %v", pub.ops)
	}
}

func TestCreateGroupValidationLeavesLedgerUntouched(t *testing.T) {
	svc, saver, _ := newTestService()

	_, err := svc.CreateGroup(context.Background(), "", []core.Member{"ann"}, "")
	if !errors.Is(err, core.ErrEmptyTitle) {
		t.Fatalf("error = %v, want ErrEmptyTitle", err)
	}
	if len(svc.Groups()) != 0 {
		t.Fatal("failed create added a group")
	}
	if len(saver.saves) != 0 {
		t.Fatal("failed create persisted a snapshot")
	}
}

func TestUpdateGroupPreservesDisplayColor(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()

	if _, err := svc.CreateGroup(ctx, "Trip", []core.Member{"ann"}, "#445566"); err != nil {
		t.Fatal(err)
	}
	updated, err := svc.UpdateGroup(ctx, "Trip", "Vacation", []core.Member{"ann", "bob"})
	if err != nil {
		t.Fatalf("UpdateGroup: %v", err)
	}
	if updated.DisplayColor != "#445566" {
		t.Fatalf("display color changed on rename: %+v", updated)
	}
}

func TestUpdateGroupInvalidLeavesStoreUnchanged(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()

	if _, err := svc.CreateGroup(ctx, "Trip", []core.Member{"ann"}, ""); err != nil {
		t.Fatal(err)
	}
	if _, err := svc.UpdateGroup(ctx, "Trip", "Vacation", nil); !errors.Is(err, core.ErrNoMembers) {
		t.Fatalf("error = %v, want ErrNoMembers", err)
	}
	if _, err := svc.Group("Trip"); err != nil {
		t.Fatalf("original group gone after failed update: %v", err)
	}
}

func TestAddExpenseValidatesAgainstCurrentMembers(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()

	if _, err := svc.CreateGroup(ctx, "Trip", []core.Member{"ann", "bob"}, ""); err != nil {
		t.Fatal(err)
	}

	_, err := svc.AddExpense(ctx, "Trip", core.Expense{
		Title:     "Dinner",
		Amount:    core.Money{Cents: -500},
		PaidBy:    "ann",
		SplitWith: []core.Member{"ann", "bob"},
	})
	if !errors.Is(err, core.ErrNonPositiveAmount) {
		t.Fatalf("error = %v, want ErrNonPositiveAmount", err)
	}
	if len(svc.Expenses("Trip")) != 0 {
		t.Fatal("failed add changed the expense list")
	}

	_, err = svc.AddExpense(ctx, "Trip", core.Expense{
		Title:     "Dinner",
		Amount:    core.Money{Cents: 9000},
		PaidBy:    "zed",
		SplitWith: []core.Member{"ann", "bob"},
	})
	if !errors.Is(err, core.ErrPayerNotInGroup) {
		t.Fatalf("error = %v, want ErrPayerNotInGroup", err)
	}
}

func TestAddExpenseNormalizesSplit(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()

	if _, err := svc.CreateGroup(ctx, "Trip", []core.Member{"ann", "bob"}, ""); err != nil {
		t.Fatal(err)
	}
	added, err := svc.AddExpense(ctx, "Trip", core.Expense{
		Title:     "Dinner",
		Amount:    core.Money{Cents: 9000},
		PaidBy:    "ann",
		SplitWith: []core.Member{"ann", "zed", "bob"},
	})
	if err != nil {
		t.Fatalf("AddExpense: %v", err)
	}
	if len(added.SplitWith) != 2 {
		t.Fatalf("outsider kept in stored split: %+v", added.SplitWith)
	}
}

func TestAddExpenseMissingGroup(t *testing.T) {
	svc, _, _ := newTestService()

	_, err := svc.AddExpense(context.Background(), "nope", core.Expense{
		Title:     "Dinner",
		Amount:    core.Money{Cents: 100},
		SplitWith: []core.Member{"ann"},
	})
	if !errors.Is(err, core.ErrNotFound) {
		t.Fatalf("error = %v, want ErrNotFound", err)
	}
}

func TestEditAndDeleteExpense(t *testing.T) {
	svc, saver, pub := newTestService()
	ctx := context.Background()

	if _, err := svc.CreateGroup(ctx, "Trip", []core.Member{"ann", "bob"}, ""); err != nil {
		t.Fatal(err)
	}
	for _, title := range []string{"First", "Second"} {
		if _, err := svc.AddExpense(ctx, "Trip", core.Expense{
			Title: title, Amount: core.Money{Cents: 100}, PaidBy: "ann", SplitWith: []core.Member{"ann", "bob"},
		}); err != nil {
			t.Fatal(err)
		}
	}

	if _, err := svc.EditExpense(ctx, "Trip", 1, core.Expense{
		Title: "Edited", Amount: core.Money{Cents: 250}, PaidBy: "bob", SplitWith: []core.Member{"bob"},
	}); err != nil {
		t.Fatalf("EditExpense: %v", err)
	}
	exps := svc.Expenses("Trip")
	if exps[1].Title != "Edited" || exps[1].Amount.Cents != 250 {
		t.Fatalf("edit did not land: %+v", exps[1])
	}

	if err := svc.DeleteExpense(ctx, "Trip", 0); err != nil {
		t.Fatalf("DeleteExpense: %v", err)
	}
	exps = svc.Expenses("Trip")
	if len(exps) != 1 || exps[0].Title != "Edited" {
		t.Fatalf("delete shifted wrong: %+v", exps)
	}

	if err := svc.DeleteExpense(ctx, "Trip", 5); !errors.Is(err, core.ErrIndexOutOfRange) {
		t.Fatalf("error = %v, want ErrIndexOutOfRange", err)
	}

	// create group + 2 adds + edit + delete, each persisted and published
	if len(saver.saves) != 5 {
		t.Fatalf("snapshot saves = %d, want 5", len(saver.saves))
	}
	if len(pub.ops) != 5 {
		t.Fatalf("published ops = %d, want 5", len(pub.ops))
	}
}

func TestPersistFailureSurfaces(t *testing.T) {
	saver := &recordingSaver{err: errors.New("disk full")}
	svc := NewLedgerService(ledger.New(), saver, nil)

	_, err := svc.CreateGroup(context.Background(), "Trip", []core.Member{"ann"}, "")
	if err == nil {
		t.Fatal("expected persist failure to surface")
	}
	// The in-memory mutation has already committed.
	if len(svc.Groups()) != 1 {
		t.Fatal("in-memory state lost on persist failure")
	}
}

func TestDerivedViews(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()

	if _, err := svc.CreateGroup(ctx, "Trip", []core.Member{"ann", "bob", "cat"}, ""); err != nil {
		t.Fatal(err)
	}
	if _, err := svc.AddExpense(ctx, "Trip", core.Expense{
		Title: "Dinner", Amount: core.Money{Cents: 9000}, PaidBy: "ann",
		SplitWith: []core.Member{"ann", "bob", "cat"},
	}); err != nil {
		t.Fatal(err)
	}

	total, err := svc.GroupTotal("Trip")
	if err != nil {
		t.Fatal(err)
	}
	if total.Cents != 9000 {
		t.Fatalf("GroupTotal = %d, want 9000", total.Cents)
	}

	owes, err := svc.OwesList("Trip")
	if err != nil {
		t.Fatal(err)
	}
	if len(owes) != 2 {
		t.Fatalf("OwesList length = %d, want 2", len(owes))
	}

	if _, err := svc.GroupTotal("nope"); !errors.Is(err, core.ErrNotFound) {
		t.Fatalf("error = %v, want ErrNotFound", err)
	}
	if _, err := svc.OwesList("nope"); !errors.Is(err, core.ErrNotFound) {
		t.Fatalf("error = %v, want ErrNotFound", err)
	}
}

func TestMemoryOnlyServiceWorksWithoutCollaborators(t *testing.T) {
	svc := NewLedgerService(ledger.New(), nil, nil)
	ctx := context.Background()

	if _, err := svc.CreateGroup(ctx, "Trip", []core.Member{"ann"}, ""); err != nil {
		t.Fatalf("CreateGroup without saver/publisher: %v", err)
	}
	if err := svc.DeleteGroup(ctx, "Trip"); err != nil {
		t.Fatalf("DeleteGroup without saver/publisher: %v", err)
	}
}
