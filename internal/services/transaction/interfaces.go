package transaction

import (
	"context"

	"cardvault/internal/models"
)

// Service defines transaction operations.
type Service interface {
	Create(ctx context.Context, req CreateRequest, userID uint) (*models.Transaction, error)
	GetByID(ctx context.Context, id uint) (*models.Transaction, error)
	List(ctx context.Context, page, size int) (*Envelope, error)
	ListByUser(ctx context.Context, userID uint, page, size int) (*Envelope, error)
	ListByUserCard(ctx context.Context, userID uint, lastFour string, page, size int) (*Envelope, error)
	Delete(ctx context.Context, id uint) error
}

// LimitTracker is the slice of the limit service the engine needs: the
// pure capacity check and the accrual, both operating on in-memory rows.
type LimitTracker interface {
	CanTransaction(l *models.Limit, amount int64) error
	RegisterTransaction(l *models.Limit, amount int64)
}

// CardMatcher resolves a submitted plaintext number to one of a user's
// cards by decrypt-and-compare.
type CardMatcher interface {
	FindMatchByNumber(cards []*models.Card, number string) (*models.Card, error)
}
