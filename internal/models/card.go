package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// CardStatus is the lifecycle state of a card. ACTIVE and BLOCKED toggle
// both ways; EXPIRED is terminal and set only by the expiry sweep.
type CardStatus string

const (
	CardStatusActive  CardStatus = "ACTIVE"
	CardStatusBlocked CardStatus = "BLOCKED"
	CardStatusExpired CardStatus = "EXPIRED"
)

func ParseCardStatus(s string) (CardStatus, bool) {
	switch CardStatus(s) {
	case CardStatusActive, CardStatusBlocked, CardStatusExpired:
		return CardStatus(s), true
	}
	return "", false
}

// Card stores the number encrypted with a per-card salt; only the masked
// form is ever serialized. Balance is in currency minor units and never
// goes negative.
type Card struct {
	ID              uint       `gorm:"primarykey" json:"id"`
	UUID            uuid.UUID  `gorm:"type:uuid;uniqueIndex;not null" json:"uuid"`
	OwnerID         uint       `gorm:"not null;index" json:"owner_id"`
	EncryptedNumber string     `gorm:"not null" json:"-"`
	Salt            string     `gorm:"not null" json:"-"`
	MaskedNumber    string     `gorm:"not null;index" json:"masked_number"`
	Balance         int64      `gorm:"not null;default:0" json:"balance"`
	Status          CardStatus `gorm:"not null;default:'ACTIVE'" json:"status"`
	ExpiryMonth     int        `gorm:"not null" json:"expiry_month"`
	ExpiryYear      int        `gorm:"not null" json:"expiry_year"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
}

func (c *Card) BeforeCreate(tx *gorm.DB) error {
	if c.UUID == uuid.Nil {
		c.UUID = uuid.New()
	}
	return nil
}

// LastFour returns the last four digits of the masked number.
func (c *Card) LastFour() string {
	if len(c.MaskedNumber) < 4 {
		return c.MaskedNumber
	}
	return c.MaskedNumber[len(c.MaskedNumber)-4:]
}

// ExpiredAt reports whether the card's expiry has passed at the given time.
func (c *Card) ExpiredAt(now time.Time) bool {
	if c.ExpiryYear == 0 {
		return false
	}
	endOfMonth := time.Date(c.ExpiryYear, time.Month(c.ExpiryMonth)+1, 1, 0, 0, 0, 0, time.UTC)
	return !now.Before(endOfMonth)
}
