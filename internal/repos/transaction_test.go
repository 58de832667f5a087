package repos

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/yungbote/bankbridge-backend/internal/repos/testutil"
	"github.com/yungbote/bankbridge-backend/internal/types"
)

func TestTransactionRepoStatusStateMachine(t *testing.T) {
	db := testutil.DB(t)
	ctx := context.Background()
	repo := NewTransactionRepo(db, testutil.Logger(t))

	u := testutil.SeedUser(t, ctx, db, "statemachine@example.com")
	a := testutil.SeedAccount(t, ctx, db, u.ID, "100")
	b := testutil.SeedAccount(t, ctx, db, u.ID, "50")

	txn := testutil.SeedTransaction(t, ctx, db, a.ID, b.ID, "30", types.TransactionPending)

	if err := repo.TransitionStatus(ctx, nil, txn.ID, types.TransactionPending, types.TransactionCompleted); err != nil {
		t.Fatalf("pending->completed: %v", err)
	}
	// Already completed: a second identical CAS must fail.
	if err := repo.TransitionStatus(ctx, nil, txn.ID, types.TransactionPending, types.TransactionCompleted); !errors.Is(err, types.ErrInvalidStateTransition) {
		t.Fatalf("repeat pending->completed: want ErrInvalidStateTransition got %v", err)
	}
	// completed->pending is not in the machine at all.
	if err := repo.TransitionStatus(ctx, nil, txn.ID, types.TransactionCompleted, types.TransactionPending); !errors.Is(err, types.ErrInvalidStateTransition) {
		t.Fatalf("completed->pending: want ErrInvalidStateTransition got %v", err)
	}
	if err := repo.TransitionStatus(ctx, nil, txn.ID, types.TransactionCompleted, types.TransactionReversed); err != nil {
		t.Fatalf("completed->reversed: %v", err)
	}
	// Reversed is terminal.
	if err := repo.TransitionStatus(ctx, nil, txn.ID, types.TransactionReversed, types.TransactionCompleted); !errors.Is(err, types.ErrInvalidStateTransition) {
		t.Fatalf("reversed->completed: want ErrInvalidStateTransition got %v", err)
	}
}

func TestTransactionRepoTransitionStatusMissingRow(t *testing.T) {
	db := testutil.DB(t)
	ctx := context.Background()
	repo := NewTransactionRepo(db, testutil.Logger(t))

	err := repo.TransitionStatus(ctx, nil, 424242, types.TransactionPending, types.TransactionFailed)
	if !errors.Is(err, types.ErrTransactionNotFound) {
		t.Fatalf("missing row: want ErrTransactionNotFound got %v", err)
	}
}

func TestTransactionRepoUpdateAmount(t *testing.T) {
	db := testutil.DB(t)
	ctx := context.Background()
	repo := NewTransactionRepo(db, testutil.Logger(t))

	u := testutil.SeedUser(t, ctx, db, "amount@example.com")
	a := testutil.SeedAccount(t, ctx, db, u.ID, "100")
	b := testutil.SeedAccount(t, ctx, db, u.ID, "50")

	pending := testutil.SeedTransaction(t, ctx, db, a.ID, b.ID, "30", types.TransactionPending)
	if err := repo.UpdateAmount(ctx, nil, pending.ID, decimal.NewFromInt(45)); err != nil {
		t.Fatalf("UpdateAmount pending: %v", err)
	}
	rows, err := repo.GetByIDs(ctx, nil, []uint{pending.ID})
	if err != nil || len(rows) != 1 {
		t.Fatalf("GetByIDs: err=%v len=%d", err, len(rows))
	}
	if !rows[0].Amount.Equal(decimal.NewFromInt(45)) {
		t.Fatalf("amount after update: want=45 got=%s", rows[0].Amount)
	}

	completed := testutil.SeedTransaction(t, ctx, db, a.ID, b.ID, "30", types.TransactionCompleted)
	if err := repo.UpdateAmount(ctx, nil, completed.ID, decimal.NewFromInt(45)); !errors.Is(err, types.ErrImmutableRecord) {
		t.Fatalf("UpdateAmount completed: want ErrImmutableRecord got %v", err)
	}
	if err := repo.UpdateAmount(ctx, nil, 424242, decimal.NewFromInt(45)); !errors.Is(err, types.ErrTransactionNotFound) {
		t.Fatalf("UpdateAmount missing: want ErrTransactionNotFound got %v", err)
	}
}

func TestTransactionRepoListFilters(t *testing.T) {
	db := testutil.DB(t)
	ctx := context.Background()
	repo := NewTransactionRepo(db, testutil.Logger(t))

	u := testutil.SeedUser(t, ctx, db, "list@example.com")
	a := testutil.SeedAccount(t, ctx, db, u.ID, "100")
	b := testutil.SeedAccount(t, ctx, db, u.ID, "50")
	c := testutil.SeedAccount(t, ctx, db, u.ID, "50")

	testutil.SeedTransaction(t, ctx, db, a.ID, b.ID, "10", types.TransactionCompleted)
	testutil.SeedTransaction(t, ctx, db, b.ID, c.ID, "5", types.TransactionPending)
	testutil.SeedTransaction(t, ctx, db, c.ID, a.ID, "7", types.TransactionFailed)

	all, err := repo.List(ctx, nil, TransactionFilter{})
	if err != nil || len(all) != 3 {
		t.Fatalf("List all: err=%v len=%d", err, len(all))
	}
	// Results are ordered by id so repeated calls restart from the top.
	for i := 1; i < len(all); i++ {
		if all[i-1].ID >= all[i].ID {
			t.Fatalf("List not ordered by id: %d then %d", all[i-1].ID, all[i].ID)
		}
	}

	byAccount, err := repo.List(ctx, nil, TransactionFilter{AccountID: a.ID})
	if err != nil || len(byAccount) != 2 {
		t.Fatalf("List by account: err=%v len=%d", err, len(byAccount))
	}
	bySource, err := repo.List(ctx, nil, TransactionFilter{SourceAccountID: b.ID})
	if err != nil || len(bySource) != 1 {
		t.Fatalf("List by source: err=%v len=%d", err, len(bySource))
	}
	byStatus, err := repo.List(ctx, nil, TransactionFilter{Status: types.TransactionPending})
	if err != nil || len(byStatus) != 1 {
		t.Fatalf("List by status: err=%v len=%d", err, len(byStatus))
	}

	pendingCount, err := repo.CountPendingForAccount(ctx, nil, b.ID)
	if err != nil || pendingCount != 1 {
		t.Fatalf("CountPendingForAccount: err=%v count=%d", err, pendingCount)
	}
}
