package repos

import (
	"context"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/yungbote/bankbridge-backend/internal/logger"
	"github.com/yungbote/bankbridge-backend/internal/types"
)

// legalTransitions is the whole status state machine. Anything not listed
// here fails with ErrInvalidStateTransition.
var legalTransitions = map[types.TransactionStatus]map[types.TransactionStatus]bool{
	types.TransactionPending: {
		types.TransactionCompleted: true,
		types.TransactionFailed:    true,
	},
	types.TransactionCompleted: {
		types.TransactionReversed: true,
	},
}

type TransactionFilter struct {
	AccountID            uint
	SourceAccountID      uint
	DestinationAccountID uint
	Status               types.TransactionStatus
}

type TransactionRepo interface {
	Create(ctx context.Context, tx *gorm.DB, txns []*types.Transaction) ([]*types.Transaction, error)
	GetByIDs(ctx context.Context, tx *gorm.DB, txnIDs []uint) ([]*types.Transaction, error)
	List(ctx context.Context, tx *gorm.DB, filter TransactionFilter) ([]*types.Transaction, error)
	// TransitionStatus performs a compare-and-swap on the status column so a
	// row can only ever move along legalTransitions, regardless of what any
	// concurrent caller observed before.
	TransitionStatus(ctx context.Context, tx *gorm.DB, txnID uint, from, to types.TransactionStatus) error
	// UpdateAmount amends a transfer amount while it is still pending.
	// Completed amounts are immutable history.
	UpdateAmount(ctx context.Context, tx *gorm.DB, txnID uint, amount decimal.Decimal) error
	CountPendingForAccount(ctx context.Context, tx *gorm.DB, accountID uint) (int64, error)
}

type transactionRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewTransactionRepo(db *gorm.DB, baseLog *logger.Logger) TransactionRepo {
	repoLog := baseLog.With("repo", "TransactionRepo")
	return &transactionRepo{db: db, log: repoLog}
}

func (tr *transactionRepo) Create(ctx context.Context, tx *gorm.DB, txns []*types.Transaction) ([]*types.Transaction, error) {
	transaction := tx
	if transaction == nil {
		transaction = tr.db
	}
	if len(txns) == 0 {
		return []*types.Transaction{}, nil
	}
	for _, txn := range txns {
		if txn.Status == "" {
			txn.Status = types.TransactionPending
		}
	}
	if err := transaction.WithContext(ctx).Create(&txns).Error; err != nil {
		return nil, err
	}
	return txns, nil
}

func (tr *transactionRepo) GetByIDs(ctx context.Context, tx *gorm.DB, txnIDs []uint) ([]*types.Transaction, error) {
	transaction := tx
	if transaction == nil {
		transaction = tr.db
	}
	var results []*types.Transaction
	if len(txnIDs) == 0 {
		return results, nil
	}
	if err := transaction.WithContext(ctx).
		Where("id IN ?", txnIDs).
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (tr *transactionRepo) List(ctx context.Context, tx *gorm.DB, filter TransactionFilter) ([]*types.Transaction, error) {
	transaction := tx
	if transaction == nil {
		transaction = tr.db
	}
	q := transaction.WithContext(ctx).Model(&types.Transaction{})
	if filter.AccountID != 0 {
		q = q.Where("source_account_id = ? OR destination_account_id = ?", filter.AccountID, filter.AccountID)
	}
	if filter.SourceAccountID != 0 {
		q = q.Where("source_account_id = ?", filter.SourceAccountID)
	}
	if filter.DestinationAccountID != 0 {
		q = q.Where("destination_account_id = ?", filter.DestinationAccountID)
	}
	if filter.Status != "" {
		q = q.Where("status = ?", filter.Status)
	}
	var results []*types.Transaction
	if err := q.Order("id ASC").Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (tr *transactionRepo) TransitionStatus(ctx context.Context, tx *gorm.DB, txnID uint, from, to types.TransactionStatus) error {
	transaction := tx
	if transaction == nil {
		transaction = tr.db
	}
	if !legalTransitions[from][to] {
		return types.ErrInvalidStateTransition
	}
	res := transaction.WithContext(ctx).
		Model(&types.Transaction{}).
		Where("id = ? AND status = ?", txnID, from).
		Update("status", to)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		var count int64
		if err := transaction.WithContext(ctx).
			Model(&types.Transaction{}).
			Where("id = ?", txnID).
			Count(&count).Error; err != nil {
			return err
		}
		if count == 0 {
			return types.ErrTransactionNotFound
		}
		// Row exists but is no longer in the expected state.
		return types.ErrInvalidStateTransition
	}
	return nil
}

func (tr *transactionRepo) UpdateAmount(ctx context.Context, tx *gorm.DB, txnID uint, amount decimal.Decimal) error {
	transaction := tx
	if transaction == nil {
		transaction = tr.db
	}
	res := transaction.WithContext(ctx).
		Model(&types.Transaction{}).
		Where("id = ? AND status = ?", txnID, types.TransactionPending).
		Update("amount", amount)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		var count int64
		if err := transaction.WithContext(ctx).
			Model(&types.Transaction{}).
			Where("id = ?", txnID).
			Count(&count).Error; err != nil {
			return err
		}
		if count == 0 {
			return types.ErrTransactionNotFound
		}
		return types.ErrImmutableRecord
	}
	return nil
}

func (tr *transactionRepo) CountPendingForAccount(ctx context.Context, tx *gorm.DB, accountID uint) (int64, error) {
	transaction := tx
	if transaction == nil {
		transaction = tr.db
	}
	var count int64
	if err := transaction.WithContext(ctx).
		Model(&types.Transaction{}).
		Where("status = ?", types.TransactionPending).
		Where("source_account_id = ? OR destination_account_id = ?", accountID, accountID).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}
