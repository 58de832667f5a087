package services

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/yungbote/bankbridge-backend/internal/logger"
	"github.com/yungbote/bankbridge-backend/internal/repos"
	"github.com/yungbote/bankbridge-backend/internal/types"
)

type AccountService interface {
	Create(ctx context.Context, userID uint, bankName, bankAccountNumber string, initialBalance decimal.Decimal) (*types.BankAccount, error)
	Get(ctx context.Context, accountID uint) (*types.BankAccount, error)
	List(ctx context.Context) ([]*types.BankAccount, error)
	Update(ctx context.Context, accountID uint, bankName, bankAccountNumber string) (*types.BankAccount, error)
	Delete(ctx context.Context, accountID uint) error
}

type accountService struct {
	db          *gorm.DB
	log         *logger.Logger
	userRepo    repos.UserRepo
	accountRepo repos.BankAccountRepo
	txnRepo     repos.TransactionRepo
}

func NewAccountService(db *gorm.DB, log *logger.Logger, userRepo repos.UserRepo, accountRepo repos.BankAccountRepo, txnRepo repos.TransactionRepo) AccountService {
	serviceLog := log.With("service", "AccountService")
	return &accountService{
		db:          db,
		log:         serviceLog,
		userRepo:    userRepo,
		accountRepo: accountRepo,
		txnRepo:     txnRepo,
	}
}

func (as *accountService) Create(ctx context.Context, userID uint, bankName, bankAccountNumber string, initialBalance decimal.Decimal) (*types.BankAccount, error) {
	if initialBalance.IsNegative() {
		return nil, types.ErrInvalidAmount
	}
	owners, err := as.userRepo.GetByIDs(ctx, nil, []uint{userID})
	if err != nil {
		return nil, fmt.Errorf("Failed to load account owner: %w", err)
	}
	if len(owners) == 0 {
		return nil, types.ErrUserNotFound
	}
	account := &types.BankAccount{
		UserID:            userID,
		BankName:          bankName,
		BankAccountNumber: bankAccountNumber,
		Balance:           initialBalance,
	}
	if _, err := as.accountRepo.Create(ctx, nil, []*types.BankAccount{account}); err != nil {
		return nil, fmt.Errorf("Failed to create account: %w", err)
	}
	return account, nil
}

func (as *accountService) Get(ctx context.Context, accountID uint) (*types.BankAccount, error) {
	found, err := as.accountRepo.GetByIDs(ctx, nil, []uint{accountID})
	if err != nil {
		return nil, err
	}
	if len(found) == 0 || found[0] == nil {
		return nil, types.ErrAccountNotFound
	}
	return found[0], nil
}

func (as *accountService) List(ctx context.Context) ([]*types.BankAccount, error) {
	return as.accountRepo.List(ctx, nil)
}

// Update touches bank_name and bank_account_number only. Balance is owned by
// the transfer engine and is not reachable through CRUD.
func (as *accountService) Update(ctx context.Context, accountID uint, bankName, bankAccountNumber string) (*types.BankAccount, error) {
	if err := as.accountRepo.UpdateBankFields(ctx, nil, accountID, bankName, bankAccountNumber); err != nil {
		return nil, err
	}
	return as.Get(ctx, accountID)
}

// Delete refuses while the account still holds value or is referenced by a
// pending transaction.
func (as *accountService) Delete(ctx context.Context, accountID uint) error {
	return as.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		found, err := as.accountRepo.GetByIDs(ctx, tx, []uint{accountID})
		if err != nil {
			return err
		}
		if len(found) == 0 || found[0] == nil {
			return types.ErrAccountNotFound
		}
		if !found[0].Balance.IsZero() {
			return types.ErrConflict
		}
		pending, err := as.txnRepo.CountPendingForAccount(ctx, tx, accountID)
		if err != nil {
			return err
		}
		if pending > 0 {
			return types.ErrConflict
		}
		return as.accountRepo.DeleteByIDs(ctx, tx, []uint{accountID})
	})
}
