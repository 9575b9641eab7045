package repositories

import (
	"errors"
	"fmt"

	"cardvault/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var ErrCardNotFound = errors.New("card not found")

// CardRepository defines the interface for card-related database
// operations. The ForUpdate variants take row-level locks and are only
// meaningful inside a Store transaction.
type CardRepository interface {
	Create(card *models.Card) error
	GetByID(id uint) (*models.Card, error)
	GetByIDForUpdate(id uint) (*models.Card, error)
	GetByMaskedNumber(masked string) (*models.Card, error)
	ListByOwner(ownerID uint) ([]*models.Card, error)
	ListByOwnerForUpdate(ownerID uint) ([]*models.Card, error)
	ListByStatus(status models.CardStatus) ([]*models.Card, error)
	Update(card *models.Card) error
	Delete(id uint) error
}

type cardRepository struct {
	db *gorm.DB
}

func NewCardRepository(db *gorm.DB) CardRepository {
	return &cardRepository{db: db}
}

func (r *cardRepository) Create(card *models.Card) error {
	if err := r.db.Create(card).Error; err != nil {
		return fmt.Errorf("failed to create card: %w", err)
	}
	return nil
}

func (r *cardRepository) GetByID(id uint) (*models.Card, error) {
	var card models.Card
	if err := r.db.First(&card, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCardNotFound
		}
		return nil, fmt.Errorf("failed to get card: %w", err)
	}
	return &card, nil
}

func (r *cardRepository) GetByIDForUpdate(id uint) (*models.Card, error) {
	var card models.Card
	err := r.db.Clauses(clause.Locking{Strength: "UPDATE"}).First(&card, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCardNotFound
		}
		return nil, fmt.Errorf("failed to get card: %w", err)
	}
	return &card, nil
}

func (r *cardRepository) GetByMaskedNumber(masked string) (*models.Card, error) {
	var card models.Card
	if err := r.db.Where("masked_number = ?", masked).First(&card).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCardNotFound
		}
		return nil, fmt.Errorf("failed to get card: %w", err)
	}
	return &card, nil
}

func (r *cardRepository) ListByOwner(ownerID uint) ([]*models.Card, error) {
	var cards []*models.Card
	if err := r.db.Where("owner_id = ?", ownerID).Order("id").Find(&cards).Error; err != nil {
		return nil, fmt.Errorf("failed to list cards: %w", err)
	}
	return cards, nil
}

func (r *cardRepository) ListByOwnerForUpdate(ownerID uint) ([]*models.Card, error) {
	var cards []*models.Card
	err := r.db.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("owner_id = ?", ownerID).
		Order("id").
		Find(&cards).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list cards: %w", err)
	}
	return cards, nil
}

func (r *cardRepository) ListByStatus(status models.CardStatus) ([]*models.Card, error) {
	var cards []*models.Card
	if err := r.db.Where("status = ?", status).Find(&cards).Error; err != nil {
		return nil, fmt.Errorf("failed to list cards: %w", err)
	}
	return cards, nil
}

func (r *cardRepository) Update(card *models.Card) error {
	if err := r.db.Save(card).Error; err != nil {
		return fmt.Errorf("failed to update card: %w", err)
	}
	return nil
}

func (r *cardRepository) Delete(id uint) error {
	result := r.db.Delete(&models.Card{}, id)
	if result.Error != nil {
		return fmt.Errorf("failed to delete card: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrCardNotFound
	}
	return nil
}
