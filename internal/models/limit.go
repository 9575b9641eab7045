package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// LimitType is the counting window of a spending limit.
type LimitType string

const (
	LimitDaily   LimitType = "DAILY"
	LimitMonthly LimitType = "MONTHLY"
)

func ParseLimitType(s string) (LimitType, bool) {
	switch LimitType(s) {
	case LimitDaily, LimitMonthly:
		return LimitType(s), true
	}
	return "", false
}

// Limit tracks cumulative spend for one (user, window, transaction type)
// triple. Exactly one row exists per triple. LimitAmount is the ceiling in
// force for the current period; an administrative change is staged in
// PendingLimitAmount and only promoted at the next period boundary, so the
// ceiling never moves mid-period.
type Limit struct {
	ID                  uint            `gorm:"primarykey" json:"id"`
	UUID                uuid.UUID       `gorm:"type:uuid;uniqueIndex;not null" json:"uuid"`
	UserID              uint            `gorm:"not null;uniqueIndex:idx_limits_user_window_type" json:"user_id"`
	LimitType           LimitType       `gorm:"not null;uniqueIndex:idx_limits_user_window_type" json:"limit_type"`
	TransactionType     TransactionType `gorm:"not null;uniqueIndex:idx_limits_user_window_type" json:"transaction_type"`
	LimitAmount         int64           `gorm:"not null" json:"limit_amount"`
	CurrentExpenses     int64           `gorm:"not null;default:0" json:"current_expenses"`
	DateLastTransaction *time.Time      `json:"date_last_transaction"`
	PendingLimitAmount  *int64          `json:"pending_limit_amount"`
	HasPendingUpdate    bool            `gorm:"not null;default:false" json:"has_pending_update"`
	CreatedAt           time.Time       `json:"created_at"`
	UpdatedAt           time.Time       `json:"updated_at"`
}

func (l *Limit) BeforeCreate(tx *gorm.DB) error {
	if l.UUID == uuid.Nil {
		l.UUID = uuid.New()
	}
	return nil
}

// Remaining is the capacity left in the current period.
func (l *Limit) Remaining() int64 {
	return l.LimitAmount - l.CurrentExpenses
}
