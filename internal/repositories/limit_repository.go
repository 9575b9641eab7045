package repositories

import (
	"errors"
	"fmt"

	"cardvault/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var ErrLimitNotFound = errors.New("limit not found")

// LimitRepository defines the interface for limit-related database
// operations. One row exists per (user, limit type, transaction type);
// the unique index enforces it.
type LimitRepository interface {
	Create(limit *models.Limit) error
	GetByID(id uint) (*models.Limit, error)
	GetForUser(userID uint, lt models.LimitType, tt models.TransactionType) (*models.Limit, error)
	GetForUserForUpdate(userID uint, lt models.LimitType, tt models.TransactionType) (*models.Limit, error)
	ExistsForUser(userID uint, lt models.LimitType, tt models.TransactionType) (bool, error)
	ListByUser(userID uint) ([]*models.Limit, error)
	ListPendingByType(lt models.LimitType) ([]*models.Limit, error)
	ResetByType(lt models.LimitType) error
	Update(limit *models.Limit) error
	Delete(id uint) error
}

type limitRepository struct {
	db *gorm.DB
}

func NewLimitRepository(db *gorm.DB) LimitRepository {
	return &limitRepository{db: db}
}

func (r *limitRepository) Create(limit *models.Limit) error {
	if err := r.db.Create(limit).Error; err != nil {
		return fmt.Errorf("failed to create limit: %w", err)
	}
	return nil
}

func (r *limitRepository) GetByID(id uint) (*models.Limit, error) {
	var limit models.Limit
	if err := r.db.First(&limit, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrLimitNotFound
		}
		return nil, fmt.Errorf("failed to get limit: %w", err)
	}
	return &limit, nil
}

func (r *limitRepository) GetForUser(userID uint, lt models.LimitType, tt models.TransactionType) (*models.Limit, error) {
	var limit models.Limit
	err := r.db.
		Where("user_id = ? AND limit_type = ? AND transaction_type = ?", userID, lt, tt).
		First(&limit).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrLimitNotFound
		}
		return nil, fmt.Errorf("failed to get limit: %w", err)
	}
	return &limit, nil
}

func (r *limitRepository) GetForUserForUpdate(userID uint, lt models.LimitType, tt models.TransactionType) (*models.Limit, error) {
	var limit models.Limit
	err := r.db.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("user_id = ? AND limit_type = ? AND transaction_type = ?", userID, lt, tt).
		First(&limit).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrLimitNotFound
		}
		return nil, fmt.Errorf("failed to get limit: %w", err)
	}
	return &limit, nil
}

func (r *limitRepository) ExistsForUser(userID uint, lt models.LimitType, tt models.TransactionType) (bool, error) {
	var count int64
	err := r.db.Model(&models.Limit{}).
		Where("user_id = ? AND limit_type = ? AND transaction_type = ?", userID, lt, tt).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("failed to count limits: %w", err)
	}
	return count > 0, nil
}

func (r *limitRepository) ListByUser(userID uint) ([]*models.Limit, error) {
	var limits []*models.Limit
	if err := r.db.Where("user_id = ?", userID).Order("id").Find(&limits).Error; err != nil {
		return nil, fmt.Errorf("failed to list limits: %w", err)
	}
	return limits, nil
}

func (r *limitRepository) ListPendingByType(lt models.LimitType) ([]*models.Limit, error) {
	var limits []*models.Limit
	err := r.db.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("limit_type = ? AND has_pending_update = ?", lt, true).
		Find(&limits).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list pending limits: %w", err)
	}
	return limits, nil
}

// ResetByType zeroes the accumulators of every limit with the given
// window in one statement.
func (r *limitRepository) ResetByType(lt models.LimitType) error {
	err := r.db.Model(&models.Limit{}).
		Where("limit_type = ?", lt).
		Updates(map[string]interface{}{
			"current_expenses":      0,
			"date_last_transaction": nil,
		}).Error
	if err != nil {
		return fmt.Errorf("failed to reset limits: %w", err)
	}
	return nil
}

func (r *limitRepository) Update(limit *models.Limit) error {
	if err := r.db.Save(limit).Error; err != nil {
		return fmt.Errorf("failed to update limit: %w", err)
	}
	return nil
}

func (r *limitRepository) Delete(id uint) error {
	result := r.db.Delete(&models.Limit{}, id)
	if result.Error != nil {
		return fmt.Errorf("failed to delete limit: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrLimitNotFound
	}
	return nil
}
