package card

import (
	"context"
	"time"

	"cardvault/internal/models"
)

// Service defines card management operations.
type Service interface {
	CreateCard(ctx context.Context, in CreateCardInput) (*models.Card, error)
	GetUserCards(ctx context.Context, ownerID uint) ([]*models.Card, error)
	SetCardStatus(ctx context.Context, ownerID uint, lastFour, status string) error
	BlockCard(ctx context.Context, ownerID uint, lastFour string) error
	DeleteCard(ctx context.Context, id uint) error

	// FindMatchByNumber picks the card among candidates whose decrypted
	// number equals the submitted plaintext.
	FindMatchByNumber(cards []*models.Card, number string) (*models.Card, error)

	// ExpireCards marks past-expiry cards EXPIRED and returns how many
	// were swept.
	ExpireCards(ctx context.Context, now time.Time) (int, error)
}

// CreateCardInput is the input for registering a new card.
type CreateCardInput struct {
	OwnerID     uint
	Number      string
	ExpiryMonth int
	ExpiryYear  int
	Balance     int64
}
