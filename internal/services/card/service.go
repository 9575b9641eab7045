package card

import (
	"context"
	"errors"
	"fmt"
	"time"

	"cardvault/internal/models"
	"cardvault/internal/repositories"
	"cardvault/internal/repositories/cache"

	"github.com/sirupsen/logrus"
)

type service struct {
	store     repositories.Store
	cache     *cache.CacheService
	encryptor *Encryptor
	log       *logrus.Logger
}

// NewService creates a new card service.
func NewService(store repositories.Store, cacheSvc *cache.CacheService, encryptor *Encryptor, log *logrus.Logger) Service {
	if store == nil {
		panic("store is required")
	}
	if encryptor == nil {
		panic("encryptor is required")
	}
	return &service{
		store:     store,
		cache:     cacheSvc,
		encryptor: encryptor,
		log:       log,
	}
}

func (s *service) CreateCard(ctx context.Context, in CreateCardInput) (*models.Card, error) {
	number, err := normalizeNumber(in.Number)
	if err != nil {
		return nil, err
	}
	if in.Balance < 0 {
		return nil, fmt.Errorf("%w: negative opening balance", ErrInvalidNumber)
	}

	if _, err := s.store.Users().GetByID(in.OwnerID); err != nil {
		return nil, err
	}
	if err := s.checkDuplicate(number); err != nil {
		return nil, err
	}

	salt, err := s.encryptor.NewSalt()
	if err != nil {
		return nil, err
	}
	encrypted, err := s.encryptor.Encrypt(number, salt)
	if err != nil {
		return nil, err
	}

	c := &models.Card{
		OwnerID:         in.OwnerID,
		EncryptedNumber: encrypted,
		Salt:            salt,
		MaskedNumber:    MaskNumber(number),
		Balance:         in.Balance,
		Status:          models.CardStatusActive,
		ExpiryMonth:     in.ExpiryMonth,
		ExpiryYear:      in.ExpiryYear,
	}
	if err := s.store.Cards().Create(c); err != nil {
		return nil, err
	}

	s.invalidate(ctx, in.OwnerID)
	s.log.WithFields(logrus.Fields{"owner_id": in.OwnerID, "card": c.MaskedNumber}).Info("card created")
	return c, nil
}

// checkDuplicate looks up the masked form first; only on a hit does it pay
// for the decrypt to confirm the full numbers really collide.
func (s *service) checkDuplicate(number string) error {
	existing, err := s.store.Cards().GetByMaskedNumber(MaskNumber(number))
	if err != nil {
		if errors.Is(err, repositories.ErrCardNotFound) {
			return nil
		}
		return err
	}
	plain, err := s.encryptor.Decrypt(existing.EncryptedNumber, existing.Salt)
	if err != nil {
		return err
	}
	if plain == number {
		return fmt.Errorf("%w: %s", ErrDuplicateCard, existing.MaskedNumber)
	}
	return nil
}

func (s *service) GetUserCards(ctx context.Context, ownerID uint) ([]*models.Card, error) {
	if s.cache != nil {
		if cards, ok := s.cache.GetUserCards(ctx, ownerID); ok {
			return cards, nil
		}
	}

	if _, err := s.store.Users().GetByID(ownerID); err != nil {
		return nil, err
	}
	cards, err := s.store.Cards().ListByOwner(ownerID)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if err := s.cache.CacheUserCards(ctx, ownerID, cards); err != nil {
			s.log.WithError(err).Warn("failed to cache user cards")
		}
	}
	return cards, nil
}

func (s *service) SetCardStatus(ctx context.Context, ownerID uint, lastFour, status string) error {
	newStatus, ok := models.ParseCardStatus(status)
	if !ok {
		return fmt.Errorf("%w: %s", ErrInvalidStatus, status)
	}

	cards, err := s.store.Cards().ListByOwner(ownerID)
	if err != nil {
		return err
	}
	var target *models.Card
	for _, c := range cards {
		if c.LastFour() == lastFour {
			target = c
			break
		}
	}
	if target == nil {
		return fmt.Errorf("%w: last four %s", repositories.ErrCardNotFound, lastFour)
	}
	if target.Status == models.CardStatusExpired {
		return ErrStatusTerminal
	}

	target.Status = newStatus
	if err := s.store.Cards().Update(target); err != nil {
		return err
	}

	s.invalidate(ctx, ownerID)
	s.log.WithFields(logrus.Fields{"card": target.MaskedNumber, "status": newStatus}).Info("card status changed")
	return nil
}

func (s *service) BlockCard(ctx context.Context, ownerID uint, lastFour string) error {
	return s.SetCardStatus(ctx, ownerID, lastFour, string(models.CardStatusBlocked))
}

func (s *service) DeleteCard(ctx context.Context, id uint) error {
	c, err := s.store.Cards().GetByID(id)
	if err != nil {
		return err
	}
	if err := s.store.Cards().Delete(id); err != nil {
		return err
	}
	s.invalidate(ctx, c.OwnerID)
	return nil
}

func (s *service) FindMatchByNumber(cards []*models.Card, number string) (*models.Card, error) {
	for _, c := range cards {
		plain, err := s.encryptor.Decrypt(c.EncryptedNumber, c.Salt)
		if err != nil {
			return nil, fmt.Errorf("failed to decrypt card %s: %w", c.MaskedNumber, err)
		}
		if plain == number {
			return c, nil
		}
	}
	return nil, ErrNoMatchingCard
}

func (s *service) ExpireCards(ctx context.Context, now time.Time) (int, error) {
	swept := 0
	err := s.store.ExecuteInTransaction(func(tx repositories.Store) error {
		active, err := tx.Cards().ListByStatus(models.CardStatusActive)
		if err != nil {
			return err
		}
		blocked, err := tx.Cards().ListByStatus(models.CardStatusBlocked)
		if err != nil {
			return err
		}
		for _, c := range append(active, blocked...) {
			if !c.ExpiredAt(now) {
				continue
			}
			c.Status = models.CardStatusExpired
			if err := tx.Cards().Update(c); err != nil {
				return err
			}
			swept++
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	if swept > 0 {
		s.log.WithField("count", swept).Info("expired cards swept")
	}
	return swept, nil
}

func (s *service) invalidate(ctx context.Context, ownerID uint) {
	if s.cache == nil {
		return
	}
	if err := s.cache.InvalidateUserCards(ctx, ownerID); err != nil {
		s.log.WithError(err).Warn("failed to invalidate card cache")
	}
}
