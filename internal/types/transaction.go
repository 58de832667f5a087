package types

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

type TransactionStatus string

const (
	TransactionPending   TransactionStatus = "pending"
	TransactionCompleted TransactionStatus = "completed"
	TransactionFailed    TransactionStatus = "failed"
	TransactionReversed  TransactionStatus = "reversed"
)

// Transaction rows are append-style: once written only Status may change,
// and only along the legal transitions enforced by repos.TransactionRepo.
// Completed rows are never physically deleted; a delete request produces a
// compensating reversal instead.
type Transaction struct {
	ID                   uint              `gorm:"primaryKey;autoIncrement" json:"id"`
	SourceAccountID      uint              `gorm:"not null;index;column:source_account_id" json:"source_account_id"`
	DestinationAccountID uint              `gorm:"not null;index;column:destination_account_id" json:"destination_account_id"`
	Amount               decimal.Decimal   `gorm:"type:numeric(20,2);not null" json:"amount"`
	Status               TransactionStatus `gorm:"not null;index;column:status" json:"status"`
	Metadata             datatypes.JSON    `gorm:"column:metadata" json:"metadata,omitempty"`
	CreatedAt            time.Time         `gorm:"not null" json:"created_at"`
	UpdatedAt            time.Time         `gorm:"not null" json:"updated_at"`
}

func (Transaction) TableName() string {
	return "transaction"
}
