package services

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/yungbote/bankbridge-backend/internal/repos"
	"github.com/yungbote/bankbridge-backend/internal/repos/testutil"
	"github.com/yungbote/bankbridge-backend/internal/types"
)

func newTransferFixture(t *testing.T) (*gorm.DB, TransferService, repos.BankAccountRepo, repos.TransactionRepo) {
	t.Helper()
	db := testutil.DB(t)
	log := testutil.Logger(t)
	accountRepo := repos.NewBankAccountRepo(db, log)
	txnRepo := repos.NewTransactionRepo(db, log)
	svc := NewTransferService(db, log, accountRepo, txnRepo, 5*time.Second)
	return db, svc, accountRepo, txnRepo
}

func accountBalance(t *testing.T, repo repos.BankAccountRepo, id uint) decimal.Decimal {
	t.Helper()
	rows, err := repo.GetByIDs(context.Background(), nil, []uint{id})
	if err != nil || len(rows) != 1 {
		t.Fatalf("load account %d: err=%v len=%d", id, err, len(rows))
	}
	return rows[0].Balance
}

func TestTransferMovesValueAndConserves(t *testing.T) {
	db, svc, accountRepo, _ := newTransferFixture(t)
	ctx := context.Background()

	u := testutil.SeedUser(t, ctx, db, "conserve@example.com")
	a := testutil.SeedAccount(t, ctx, db, u.ID, "100")
	b := testutil.SeedAccount(t, ctx, db, u.ID, "50")
	totalBefore := decimal.NewFromInt(150)

	txn, err := svc.Transfer(ctx, a.ID, b.ID, decimal.NewFromInt(30), nil)
	if err != nil {
		t.Fatalf("Transfer: %v", err)
	}
	if txn.Status != types.TransactionCompleted {
		t.Fatalf("status: want=completed got=%s", txn.Status)
	}

	balA := accountBalance(t, accountRepo, a.ID)
	balB := accountBalance(t, accountRepo, b.ID)
	if !balA.Equal(decimal.NewFromInt(70)) {
		t.Fatalf("source balance: want=70 got=%s", balA)
	}
	if !balB.Equal(decimal.NewFromInt(80)) {
		t.Fatalf("destination balance: want=80 got=%s", balB)
	}
	if !balA.Add(balB).Equal(totalBefore) {
		t.Fatalf("conservation violated: %s + %s != %s", balA, balB, totalBefore)
	}
}

func TestTransferInvalidAmount(t *testing.T) {
	db, svc, accountRepo, txnRepo := newTransferFixture(t)
	ctx := context.Background()

	u := testutil.SeedUser(t, ctx, db, "invalidamount@example.com")
	a := testutil.SeedAccount(t, ctx, db, u.ID, "100")
	b := testutil.SeedAccount(t, ctx, db, u.ID, "50")

	for _, amount := range []decimal.Decimal{decimal.Zero, decimal.NewFromInt(-10)} {
		if _, err := svc.Transfer(ctx, a.ID, b.ID, amount, nil); !errors.Is(err, types.ErrInvalidAmount) {
			t.Fatalf("Transfer amount=%s: want ErrInvalidAmount got %v", amount, err)
		}
	}
	if !accountBalance(t, accountRepo, a.ID).Equal(decimal.NewFromInt(100)) {
		t.Fatalf("source balance mutated by rejected transfer")
	}
	// Precondition failures happen before the attempt is recorded.
	txns, err := txnRepo.List(ctx, nil, repos.TransactionFilter{})
	if err != nil || len(txns) != 0 {
		t.Fatalf("transaction log after precondition failure: err=%v len=%d", err, len(txns))
	}
}

func TestTransferSelfTransfer(t *testing.T) {
	db, svc, _, _ := newTransferFixture(t)
	ctx := context.Background()

	u := testutil.SeedUser(t, ctx, db, "self@example.com")
	a := testutil.SeedAccount(t, ctx, db, u.ID, "100")

	if _, err := svc.Transfer(ctx, a.ID, a.ID, decimal.NewFromInt(10), nil); !errors.Is(err, types.ErrSelfTransfer) {
		t.Fatalf("self transfer: want ErrSelfTransfer got %v", err)
	}
}

func TestTransferAccountNotFound(t *testing.T) {
	db, svc, _, _ := newTransferFixture(t)
	ctx := context.Background()

	u := testutil.SeedUser(t, ctx, db, "missingaccount@example.com")
	a := testutil.SeedAccount(t, ctx, db, u.ID, "100")

	if _, err := svc.Transfer(ctx, a.ID, 9999, decimal.NewFromInt(10), nil); !errors.Is(err, types.ErrAccountNotFound) {
		t.Fatalf("missing destination: want ErrAccountNotFound got %v", err)
	}
	if _, err := svc.Transfer(ctx, 9999, a.ID, decimal.NewFromInt(10), nil); !errors.Is(err, types.ErrAccountNotFound) {
		t.Fatalf("missing source: want ErrAccountNotFound got %v", err)
	}
}

func TestTransferInsufficientFundsLeavesBalancesAndRecordsFailure(t *testing.T) {
	db, svc, accountRepo, txnRepo := newTransferFixture(t)
	ctx := context.Background()

	u := testutil.SeedUser(t, ctx, db, "insufficient@example.com")
	a := testutil.SeedAccount(t, ctx, db, u.ID, "10")
	b := testutil.SeedAccount(t, ctx, db, u.ID, "50")

	_, err := svc.Transfer(ctx, a.ID, b.ID, decimal.NewFromInt(30), nil)
	if !errors.Is(err, types.ErrInsufficientFunds) {
		t.Fatalf("Transfer: want ErrInsufficientFunds got %v", err)
	}
	if !accountBalance(t, accountRepo, a.ID).Equal(decimal.NewFromInt(10)) {
		t.Fatalf("source balance changed on failed transfer")
	}
	if !accountBalance(t, accountRepo, b.ID).Equal(decimal.NewFromInt(50)) {
		t.Fatalf("destination balance changed on failed transfer")
	}
	// The attempt stays on record as failed.
	failed, err := txnRepo.List(ctx, nil, repos.TransactionFilter{Status: types.TransactionFailed})
	if err != nil || len(failed) != 1 {
		t.Fatalf("failed entries: err=%v len=%d", err, len(failed))
	}
}

func TestTransferTimeoutRollsBackAndRecordsFailure(t *testing.T) {
	db := testutil.DB(t)
	log := testutil.Logger(t)
	accountRepo := repos.NewBankAccountRepo(db, log)
	txnRepo := repos.NewTransactionRepo(db, log)
	// A deadline this small expires before settlement begins.
	svc := NewTransferService(db, log, accountRepo, txnRepo, time.Nanosecond)
	ctx := context.Background()

	u := testutil.SeedUser(t, ctx, db, "timeout@example.com")
	a := testutil.SeedAccount(t, ctx, db, u.ID, "100")
	b := testutil.SeedAccount(t, ctx, db, u.ID, "50")

	_, err := svc.Transfer(ctx, a.ID, b.ID, decimal.NewFromInt(30), nil)
	if !errors.Is(err, types.ErrTimeout) {
		t.Fatalf("Transfer past deadline: want ErrTimeout got %v", err)
	}
	if !accountBalance(t, accountRepo, a.ID).Equal(decimal.NewFromInt(100)) {
		t.Fatalf("source balance changed by timed-out transfer")
	}
	if !accountBalance(t, accountRepo, b.ID).Equal(decimal.NewFromInt(50)) {
		t.Fatalf("destination balance changed by timed-out transfer")
	}
	// The attempt must end up failed, never stranded as pending: a pending
	// row would block account deletion forever.
	failed, err := txnRepo.List(ctx, nil, repos.TransactionFilter{Status: types.TransactionFailed})
	if err != nil || len(failed) != 1 {
		t.Fatalf("failed entries after timeout: err=%v len=%d", err, len(failed))
	}
	pending, err := txnRepo.List(ctx, nil, repos.TransactionFilter{Status: types.TransactionPending})
	if err != nil || len(pending) != 0 {
		t.Fatalf("pending entries after timeout: err=%v len=%d", err, len(pending))
	}
}

func TestTransferConcurrentOverdrawExactlyOneCompletes(t *testing.T) {
	db, svc, accountRepo, _ := newTransferFixture(t)
	ctx := context.Background()

	u := testutil.SeedUser(t, ctx, db, "concurrent@example.com")
	a := testutil.SeedAccount(t, ctx, db, u.ID, "100")
	b := testutil.SeedAccount(t, ctx, db, u.ID, "0")
	c := testutil.SeedAccount(t, ctx, db, u.ID, "0")

	var wg sync.WaitGroup
	results := make([]error, 2)
	destinations := []uint{b.ID, c.ID}
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, results[i] = svc.Transfer(ctx, a.ID, destinations[i], decimal.NewFromInt(60), nil)
		}(i)
	}
	wg.Wait()

	var completed, insufficient int
	for _, err := range results {
		switch {
		case err == nil:
			completed++
		case errors.Is(err, types.ErrInsufficientFunds):
			insufficient++
		default:
			t.Fatalf("unexpected transfer error: %v", err)
		}
	}
	if completed != 1 || insufficient != 1 {
		t.Fatalf("want exactly one completed and one insufficient, got completed=%d insufficient=%d", completed, insufficient)
	}

	balA := accountBalance(t, accountRepo, a.ID)
	if !balA.Equal(decimal.NewFromInt(40)) {
		t.Fatalf("source balance: want=40 got=%s", balA)
	}
	if balA.IsNegative() {
		t.Fatalf("source balance went negative: %s", balA)
	}
}

func TestReverseRestoresBalances(t *testing.T) {
	db, svc, accountRepo, _ := newTransferFixture(t)
	ctx := context.Background()

	u := testutil.SeedUser(t, ctx, db, "reverse@example.com")
	a := testutil.SeedAccount(t, ctx, db, u.ID, "100")
	b := testutil.SeedAccount(t, ctx, db, u.ID, "50")

	txn, err := svc.Transfer(ctx, a.ID, b.ID, decimal.NewFromInt(30), nil)
	if err != nil {
		t.Fatalf("Transfer: %v", err)
	}

	reversed, err := svc.Reverse(ctx, txn.ID)
	if err != nil {
		t.Fatalf("Reverse: %v", err)
	}
	if reversed.Status != types.TransactionReversed {
		t.Fatalf("status: want=reversed got=%s", reversed.Status)
	}
	if !accountBalance(t, accountRepo, a.ID).Equal(decimal.NewFromInt(100)) {
		t.Fatalf("source balance not restored")
	}
	if !accountBalance(t, accountRepo, b.ID).Equal(decimal.NewFromInt(50)) {
		t.Fatalf("destination balance not restored")
	}

	// A reversal is terminal; reversing again is illegal.
	if _, err := svc.Reverse(ctx, txn.ID); !errors.Is(err, types.ErrInvalidStateTransition) {
		t.Fatalf("double reverse: want ErrInvalidStateTransition got %v", err)
	}
}

func TestReverseInsufficientDestinationFunds(t *testing.T) {
	db, svc, accountRepo, _ := newTransferFixture(t)
	ctx := context.Background()

	u := testutil.SeedUser(t, ctx, db, "reversespent@example.com")
	a := testutil.SeedAccount(t, ctx, db, u.ID, "100")
	b := testutil.SeedAccount(t, ctx, db, u.ID, "0")
	c := testutil.SeedAccount(t, ctx, db, u.ID, "0")

	txn, err := svc.Transfer(ctx, a.ID, b.ID, decimal.NewFromInt(60), nil)
	if err != nil {
		t.Fatalf("Transfer: %v", err)
	}
	// Destination spends the received funds elsewhere.
	if _, err := svc.Transfer(ctx, b.ID, c.ID, decimal.NewFromInt(50), nil); err != nil {
		t.Fatalf("spend transfer: %v", err)
	}

	_, err = svc.Reverse(ctx, txn.ID)
	if !errors.Is(err, types.ErrInsufficientFunds) {
		t.Fatalf("Reverse spent funds: want ErrInsufficientFunds got %v", err)
	}
	// Rollback keeps the original completed and every balance untouched.
	got, err := svc.Get(ctx, txn.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.Status != types.TransactionCompleted {
		t.Fatalf("status after failed reverse: want=completed got=%s", got.Status)
	}
	if !accountBalance(t, accountRepo, b.ID).Equal(decimal.NewFromInt(10)) {
		t.Fatalf("destination balance changed by failed reverse")
	}
}

func TestUpdateAmountOnlyWhilePending(t *testing.T) {
	db, svc, _, txnRepo := newTransferFixture(t)
	ctx := context.Background()

	u := testutil.SeedUser(t, ctx, db, "amend@example.com")
	a := testutil.SeedAccount(t, ctx, db, u.ID, "100")
	b := testutil.SeedAccount(t, ctx, db, u.ID, "50")

	pending := testutil.SeedTransaction(t, ctx, db, a.ID, b.ID, "30", types.TransactionPending)
	amended, err := svc.UpdateAmount(ctx, pending.ID, decimal.NewFromInt(45))
	if err != nil {
		t.Fatalf("UpdateAmount pending: %v", err)
	}
	if !amended.Amount.Equal(decimal.NewFromInt(45)) {
		t.Fatalf("amended amount: want=45 got=%s", amended.Amount)
	}

	if _, err := svc.UpdateAmount(ctx, pending.ID, decimal.Zero); !errors.Is(err, types.ErrInvalidAmount) {
		t.Fatalf("UpdateAmount zero: want ErrInvalidAmount got %v", err)
	}

	completed, err := svc.Transfer(ctx, a.ID, b.ID, decimal.NewFromInt(10), nil)
	if err != nil {
		t.Fatalf("Transfer: %v", err)
	}
	if _, err := svc.UpdateAmount(ctx, completed.ID, decimal.NewFromInt(99)); !errors.Is(err, types.ErrImmutableRecord) {
		t.Fatalf("UpdateAmount completed: want ErrImmutableRecord got %v", err)
	}
	// Amount on record is untouched.
	rows, err := txnRepo.GetByIDs(ctx, nil, []uint{completed.ID})
	if err != nil || len(rows) != 1 {
		t.Fatalf("GetByIDs: err=%v len=%d", err, len(rows))
	}
	if !rows[0].Amount.Equal(decimal.NewFromInt(10)) {
		t.Fatalf("completed amount mutated: got=%s", rows[0].Amount)
	}
}
