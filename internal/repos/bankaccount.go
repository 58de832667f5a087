package repos

import (
	"context"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/yungbote/bankbridge-backend/internal/logger"
	"github.com/yungbote/bankbridge-backend/internal/types"
)

type BankAccountRepo interface {
	Create(ctx context.Context, tx *gorm.DB, accounts []*types.BankAccount) ([]*types.BankAccount, error)
	GetByIDs(ctx context.Context, tx *gorm.DB, accountIDs []uint) ([]*types.BankAccount, error)
	List(ctx context.Context, tx *gorm.DB) ([]*types.BankAccount, error)
	// AdjustBalance atomically applies balance += delta and fails without
	// mutating when the result would be negative. The single guarded UPDATE
	// is the only write path for balances.
	AdjustBalance(ctx context.Context, tx *gorm.DB, accountID uint, delta decimal.Decimal) (*types.BankAccount, error)
	UpdateBankFields(ctx context.Context, tx *gorm.DB, accountID uint, bankName, bankAccountNumber string) error
	DeleteByIDs(ctx context.Context, tx *gorm.DB, accountIDs []uint) error
}

type bankAccountRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewBankAccountRepo(db *gorm.DB, baseLog *logger.Logger) BankAccountRepo {
	repoLog := baseLog.With("repo", "BankAccountRepo")
	return &bankAccountRepo{db: db, log: repoLog}
}

func (ar *bankAccountRepo) Create(ctx context.Context, tx *gorm.DB, accounts []*types.BankAccount) ([]*types.BankAccount, error) {
	transaction := tx
	if transaction == nil {
		transaction = ar.db
	}
	if len(accounts) == 0 {
		return []*types.BankAccount{}, nil
	}
	for _, account := range accounts {
		if account.Balance.IsNegative() {
			return nil, types.ErrInvalidAmount
		}
	}
	if err := transaction.WithContext(ctx).Create(&accounts).Error; err != nil {
		return nil, err
	}
	return accounts, nil
}

func (ar *bankAccountRepo) GetByIDs(ctx context.Context, tx *gorm.DB, accountIDs []uint) ([]*types.BankAccount, error) {
	transaction := tx
	if transaction == nil {
		transaction = ar.db
	}
	var results []*types.BankAccount
	if len(accountIDs) == 0 {
		return results, nil
	}
	if err := transaction.WithContext(ctx).
		Where("id IN ?", accountIDs).
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (ar *bankAccountRepo) List(ctx context.Context, tx *gorm.DB) ([]*types.BankAccount, error) {
	transaction := tx
	if transaction == nil {
		transaction = ar.db
	}
	var results []*types.BankAccount
	if err := transaction.WithContext(ctx).
		Order("id ASC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (ar *bankAccountRepo) AdjustBalance(ctx context.Context, tx *gorm.DB, accountID uint, delta decimal.Decimal) (*types.BankAccount, error) {
	transaction := tx
	if transaction == nil {
		transaction = ar.db
	}
	res := transaction.WithContext(ctx).
		Model(&types.BankAccount{}).
		Where("id = ? AND balance + ? >= 0", accountID, delta).
		Update("balance", gorm.Expr("balance + ?", delta))
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		// The guard rejected the write: either the row is missing or the
		// result would have been negative.
		var count int64
		if err := transaction.WithContext(ctx).
			Model(&types.BankAccount{}).
			Where("id = ?", accountID).
			Count(&count).Error; err != nil {
			return nil, err
		}
		if count == 0 {
			return nil, types.ErrAccountNotFound
		}
		return nil, types.ErrInsufficientFunds
	}
	var updated types.BankAccount
	if err := transaction.WithContext(ctx).
		Where("id = ?", accountID).
		First(&updated).Error; err != nil {
		return nil, err
	}
	return &updated, nil
}

func (ar *bankAccountRepo) UpdateBankFields(ctx context.Context, tx *gorm.DB, accountID uint, bankName, bankAccountNumber string) error {
	transaction := tx
	if transaction == nil {
		transaction = ar.db
	}
	res := transaction.WithContext(ctx).
		Model(&types.BankAccount{}).
		Where("id = ?", accountID).
		Updates(map[string]interface{}{
			"bank_name":           bankName,
			"bank_account_number": bankAccountNumber,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		var count int64
		if err := transaction.WithContext(ctx).
			Model(&types.BankAccount{}).
			Where("id = ?", accountID).
			Count(&count).Error; err != nil {
			return err
		}
		if count == 0 {
			return types.ErrAccountNotFound
		}
	}
	return nil
}

func (ar *bankAccountRepo) DeleteByIDs(ctx context.Context, tx *gorm.DB, accountIDs []uint) error {
	transaction := tx
	if transaction == nil {
		transaction = ar.db
	}
	if len(accountIDs) == 0 {
		return nil
	}
	res := transaction.WithContext(ctx).
		Where("id IN ?", accountIDs).
		Delete(&types.BankAccount{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return types.ErrAccountNotFound
	}
	return nil
}
