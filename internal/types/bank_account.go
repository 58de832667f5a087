package types

import (
	"time"

	"github.com/shopspring/decimal"
)

// BankAccount balances are owned by the transfer engine: nothing outside
// repos.BankAccountRepo.AdjustBalance may mutate Balance after creation.
type BankAccount struct {
	ID                uint            `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID            uint            `gorm:"not null;index;column:user_id" json:"user_id"`
	BankName          string          `gorm:"not null;column:bank_name" json:"bank_name"`
	BankAccountNumber string          `gorm:"not null;column:bank_account_number" json:"bank_account_number"`
	Balance           decimal.Decimal `gorm:"type:numeric(20,2);not null" json:"balance"`
	CreatedAt         time.Time       `gorm:"not null" json:"created_at"`
	UpdatedAt         time.Time       `gorm:"not null" json:"updated_at"`
}

func (BankAccount) TableName() string {
	return "bank_account"
}
