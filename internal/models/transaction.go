package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// TransactionType is the category of a money movement; each category is
// tracked by its own daily and monthly limits.
type TransactionType string

const (
	TypeTransfer    TransactionType = "TRANSFER"
	TypeWithdrawals TransactionType = "WITHDRAWALS"
)

func ParseTransactionType(s string) (TransactionType, bool) {
	switch TransactionType(s) {
	case TypeTransfer, TypeWithdrawals:
		return TransactionType(s), true
	}
	return "", false
}

// Transaction is an immutable movement record. It references cards and the
// initiating user by id only; lists are derived by query, never stored as
// back-pointer collections. Rows are created once and never updated;
// administrative deletion does not reverse balances or limit accruals.
type Transaction struct {
	ID                uint            `gorm:"primarykey" json:"id"`
	UUID              uuid.UUID       `gorm:"type:uuid;uniqueIndex;not null" json:"uuid"`
	UserID            uint            `gorm:"not null;index" json:"user_id"`
	SourceCardID      uint            `gorm:"not null;index" json:"source_card_id"`
	DestinationCardID *uint           `gorm:"index" json:"destination_card_id"`
	Type              TransactionType `gorm:"not null" json:"type"`
	Amount            int64           `gorm:"not null" json:"amount"`
	CreatedAt         time.Time       `json:"created_at"`
}

func (t *Transaction) BeforeCreate(tx *gorm.DB) error {
	if t.UUID == uuid.Nil {
		t.UUID = uuid.New()
	}
	return nil
}
