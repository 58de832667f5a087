package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/yungbote/bankbridge-backend/internal/logger"
	"github.com/yungbote/bankbridge-backend/internal/repos"
	"github.com/yungbote/bankbridge-backend/internal/types"
)

// TransferService is the only writer of account balances. Every transfer is
// recorded first as a pending transaction, then settled inside one bounded
// database transaction: both balance adjustments and the pending->completed
// transition commit together or roll back together.
type TransferService interface {
	Transfer(ctx context.Context, sourceAccountID, destinationAccountID uint, amount decimal.Decimal, metadata datatypes.JSON) (*types.Transaction, error)
	Get(ctx context.Context, txnID uint) (*types.Transaction, error)
	List(ctx context.Context, filter repos.TransactionFilter) ([]*types.Transaction, error)
	UpdateAmount(ctx context.Context, txnID uint, amount decimal.Decimal) (*types.Transaction, error)
	Reverse(ctx context.Context, txnID uint) (*types.Transaction, error)
}

type transferService struct {
	db          *gorm.DB
	log         *logger.Logger
	accountRepo repos.BankAccountRepo
	txnRepo     repos.TransactionRepo
	timeout     time.Duration
}

func NewTransferService(db *gorm.DB, log *logger.Logger, accountRepo repos.BankAccountRepo, txnRepo repos.TransactionRepo, timeout time.Duration) TransferService {
	serviceLog := log.With("service", "TransferService")
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &transferService{
		db:          db,
		log:         serviceLog,
		accountRepo: accountRepo,
		txnRepo:     txnRepo,
		timeout:     timeout,
	}
}

type balanceStep struct {
	accountID uint
	delta     decimal.Decimal
}

// orderedSteps returns the debit and credit as steps sorted by account id.
// Applying row locks in one global order keeps two opposite-direction
// transfers from deadlocking each other; the enclosing transaction makes the
// apparent credit-before-debit case harmless.
func orderedSteps(debitAccountID, creditAccountID uint, amount decimal.Decimal) []balanceStep {
	steps := []balanceStep{
		{accountID: debitAccountID, delta: amount.Neg()},
		{accountID: creditAccountID, delta: amount},
	}
	if steps[0].accountID > steps[1].accountID {
		steps[0], steps[1] = steps[1], steps[0]
	}
	return steps
}

func (ts *transferService) Transfer(ctx context.Context, sourceAccountID, destinationAccountID uint, amount decimal.Decimal, metadata datatypes.JSON) (*types.Transaction, error) {
	if amount.LessThanOrEqual(decimal.Zero) {
		return nil, types.ErrInvalidAmount
	}
	if sourceAccountID == destinationAccountID {
		return nil, types.ErrSelfTransfer
	}
	accounts, err := ts.accountRepo.GetByIDs(ctx, nil, []uint{sourceAccountID, destinationAccountID})
	if err != nil {
		return nil, fmt.Errorf("Failed to load accounts: %w", err)
	}
	if len(accounts) != 2 {
		return nil, types.ErrAccountNotFound
	}

	// The pending entry commits on its own so the attempt is on record even
	// when settlement fails.
	txn := &types.Transaction{
		SourceAccountID:      sourceAccountID,
		DestinationAccountID: destinationAccountID,
		Amount:               amount,
		Status:               types.TransactionPending,
		Metadata:             metadata,
	}
	if _, err := ts.txnRepo.Create(ctx, nil, []*types.Transaction{txn}); err != nil {
		return nil, fmt.Errorf("Failed to record transaction: %w", err)
	}

	tctx, cancel := context.WithTimeout(ctx, ts.timeout)
	defer cancel()
	err = ts.db.WithContext(tctx).Transaction(func(tx *gorm.DB) error {
		for _, step := range orderedSteps(sourceAccountID, destinationAccountID, amount) {
			if _, err := ts.accountRepo.AdjustBalance(tctx, tx, step.accountID, step.delta); err != nil {
				return err
			}
		}
		return ts.txnRepo.TransitionStatus(tctx, tx, txn.ID, types.TransactionPending, types.TransactionCompleted)
	})
	if err != nil {
		ts.markFailed(txn.ID)
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(tctx.Err(), context.DeadlineExceeded) {
			ts.log.Warn("Transfer exceeded deadline and was rolled back", "transaction_id", txn.ID)
			return nil, types.ErrTimeout
		}
		return nil, err
	}

	return ts.reload(ctx, txn.ID)
}

// markFailedTimeout is deliberately independent of the configured transfer
// timeout: that budget may be exactly what just expired, and a pending row
// that never becomes failed misrepresents the ledger and blocks account
// deletion.
const markFailedTimeout = 30 * time.Second

// markFailed transitions a pending entry to failed on a fresh context so the
// outcome is recorded even when the caller's context is already gone.
func (ts *transferService) markFailed(txnID uint) {
	ctx, cancel := context.WithTimeout(context.Background(), markFailedTimeout)
	defer cancel()
	var err error
	for attempt := 0; attempt < 2; attempt++ {
		if err = ts.txnRepo.TransitionStatus(ctx, nil, txnID, types.TransactionPending, types.TransactionFailed); err == nil {
			return
		}
		if errors.Is(err, types.ErrTransactionNotFound) || errors.Is(err, types.ErrInvalidStateTransition) {
			break
		}
	}
	ts.log.Error("Failed to mark transaction as failed", "transaction_id", txnID, "error", err)
}

func (ts *transferService) Get(ctx context.Context, txnID uint) (*types.Transaction, error) {
	found, err := ts.txnRepo.GetByIDs(ctx, nil, []uint{txnID})
	if err != nil {
		return nil, err
	}
	if len(found) == 0 || found[0] == nil {
		return nil, types.ErrTransactionNotFound
	}
	return found[0], nil
}

func (ts *transferService) List(ctx context.Context, filter repos.TransactionFilter) ([]*types.Transaction, error) {
	return ts.txnRepo.List(ctx, nil, filter)
}

func (ts *transferService) UpdateAmount(ctx context.Context, txnID uint, amount decimal.Decimal) (*types.Transaction, error) {
	if amount.LessThanOrEqual(decimal.Zero) {
		return nil, types.ErrInvalidAmount
	}
	if err := ts.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return ts.txnRepo.UpdateAmount(ctx, tx, txnID, amount)
	}); err != nil {
		return nil, err
	}
	return ts.reload(ctx, txnID)
}

func (ts *transferService) Reverse(ctx context.Context, txnID uint) (*types.Transaction, error) {
	txn, err := ts.Get(ctx, txnID)
	if err != nil {
		return nil, err
	}

	tctx, cancel := context.WithTimeout(ctx, ts.timeout)
	defer cancel()
	err = ts.db.WithContext(tctx).Transaction(func(tx *gorm.DB) error {
		// CAS first: a concurrent reversal of the same row fails here before
		// touching any balance.
		if err := ts.txnRepo.TransitionStatus(tctx, tx, txn.ID, types.TransactionCompleted, types.TransactionReversed); err != nil {
			return err
		}
		// Inverse movement: credit the source, debit the destination. The
		// destination debit reports ErrInsufficientFunds when the funds were
		// already spent elsewhere.
		for _, step := range orderedSteps(txn.DestinationAccountID, txn.SourceAccountID, txn.Amount) {
			if _, err := ts.accountRepo.AdjustBalance(tctx, tx, step.accountID, step.delta); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(tctx.Err(), context.DeadlineExceeded) {
			return nil, types.ErrTimeout
		}
		return nil, err
	}

	return ts.reload(ctx, txn.ID)
}

func (ts *transferService) reload(ctx context.Context, txnID uint) (*types.Transaction, error) {
	found, err := ts.txnRepo.GetByIDs(ctx, nil, []uint{txnID})
	if err != nil {
		return nil, fmt.Errorf("Failed to reload transaction %d: %w", txnID, err)
	}
	if len(found) == 0 || found[0] == nil {
		return nil, types.ErrTransactionNotFound
	}
	return found[0], nil
}
