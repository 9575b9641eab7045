package transaction

import (
	"context"
	"fmt"

	"cardvault/internal/models"
	"cardvault/internal/repositories"
	"cardvault/internal/repositories/cache"
	"cardvault/internal/services/card"

	"github.com/sirupsen/logrus"
)

type service struct {
	store  repositories.Store
	limits LimitTracker
	cards  CardMatcher
	cache  *cache.CacheService
	log    *logrus.Logger
}

// NewService creates the transaction engine.
func NewService(store repositories.Store, limits LimitTracker, cards CardMatcher, cacheSvc *cache.CacheService, log *logrus.Logger) Service {
	if store == nil {
		panic("store is required")
	}
	if limits == nil {
		panic("limit tracker is required")
	}
	if cards == nil {
		panic("card matcher is required")
	}
	return &service{
		store:  store,
		limits: limits,
		cards:  cards,
		cache:  cacheSvc,
		log:    log,
	}
}

// Create runs one transfer or withdrawal. Validation, both limit windows,
// the balance moves, the accruals and the transaction record all live in
// a single store transaction with the touched rows locked, so two
// concurrent movements from the same card cannot both pass the checks
// against a stale read, and any failure leaves nothing behind.
func (s *service) Create(ctx context.Context, req CreateRequest, userID uint) (*models.Transaction, error) {
	txType, err := validateRequest(req)
	if err != nil {
		return nil, err
	}

	var record *models.Transaction
	err = s.store.ExecuteInTransaction(func(tx repositories.Store) error {
		user, err := tx.Users().GetByID(userID)
		if err != nil {
			return err
		}

		userCards, err := tx.Cards().ListByOwnerForUpdate(user.ID)
		if err != nil {
			return err
		}
		source, err := s.cards.FindMatchByNumber(userCards, req.SourceNumber)
		if err != nil {
			return err
		}
		if err := card.IsUsable(source); err != nil {
			return fmt.Errorf("%w: %s", err, source.MaskedNumber)
		}

		var destination *models.Card
		if txType == models.TypeTransfer {
			destination, err = s.cards.FindMatchByNumber(userCards, *req.DestinationNumber)
			if err != nil {
				return err
			}
			if err := card.IsUsable(destination); err != nil {
				return fmt.Errorf("%w: %s", err, destination.MaskedNumber)
			}
		}

		daily, err := tx.Limits().GetForUserForUpdate(user.ID, models.LimitDaily, txType)
		if err != nil {
			return err
		}
		monthly, err := tx.Limits().GetForUserForUpdate(user.ID, models.LimitMonthly, txType)
		if err != nil {
			return err
		}

		// Two-phase: both windows are checked before either is mutated,
		// so a monthly rejection cannot leave a daily accrual behind.
		if err := s.limits.CanTransaction(daily, req.Amount); err != nil {
			return err
		}
		if err := s.limits.CanTransaction(monthly, req.Amount); err != nil {
			return err
		}

		if err := card.Debit(source, req.Amount); err != nil {
			return fmt.Errorf("%w: %s", err, source.MaskedNumber)
		}
		if destination != nil {
			card.Credit(destination, req.Amount)
		}

		s.limits.RegisterTransaction(daily, req.Amount)
		s.limits.RegisterTransaction(monthly, req.Amount)

		if err := tx.Cards().Update(source); err != nil {
			return err
		}
		if destination != nil {
			if err := tx.Cards().Update(destination); err != nil {
				return err
			}
		}
		if err := tx.Limits().Update(daily); err != nil {
			return err
		}
		if err := tx.Limits().Update(monthly); err != nil {
			return err
		}

		record = &models.Transaction{
			UserID:       user.ID,
			SourceCardID: source.ID,
			Type:         txType,
			Amount:       req.Amount,
		}
		if destination != nil {
			record.DestinationCardID = &destination.ID
		}
		return tx.Transactions().Create(record)
	})
	if err != nil {
		return nil, err
	}

	s.invalidate(ctx, userID)
	s.log.WithFields(logrus.Fields{
		"user_id": userID, "type": txType, "amount": req.Amount,
	}).Info("transaction created")
	return record, nil
}

func validateRequest(req CreateRequest) (models.TransactionType, error) {
	txType, ok := models.ParseTransactionType(req.Type)
	if !ok {
		return "", fmt.Errorf("%w: unknown type %q", ErrValidation, req.Type)
	}
	if req.Amount <= 0 {
		return "", fmt.Errorf("%w: amount must be positive", ErrValidation)
	}
	switch txType {
	case models.TypeTransfer:
		if req.DestinationNumber == nil || *req.DestinationNumber == "" {
			return "", fmt.Errorf("%w: transfer requires a destination number", ErrValidation)
		}
	case models.TypeWithdrawals:
		if req.DestinationNumber != nil {
			return "", fmt.Errorf("%w: withdrawal must not carry a destination number", ErrValidation)
		}
	}
	return txType, nil
}

func (s *service) GetByID(ctx context.Context, id uint) (*models.Transaction, error) {
	return s.store.Transactions().GetByID(id)
}

func (s *service) List(ctx context.Context, page, size int) (*Envelope, error) {
	limit, offset := pageBounds(page, size)
	txs, total, err := s.store.Transactions().List(limit, offset)
	if err != nil {
		return nil, err
	}
	return envelope(txs, total, limit), nil
}

func (s *service) ListByUser(ctx context.Context, userID uint, page, size int) (*Envelope, error) {
	if _, err := s.store.Users().GetByID(userID); err != nil {
		return nil, err
	}
	limit, offset := pageBounds(page, size)
	txs, total, err := s.store.Transactions().ListByUser(userID, limit, offset)
	if err != nil {
		return nil, err
	}
	return envelope(txs, total, limit), nil
}

// ListByUserCard narrows a user's history to the card with the given last
// four digits, matching either side of each movement.
func (s *service) ListByUserCard(ctx context.Context, userID uint, lastFour string, page, size int) (*Envelope, error) {
	if _, err := s.store.Users().GetByID(userID); err != nil {
		return nil, err
	}
	userCards, err := s.store.Cards().ListByOwner(userID)
	if err != nil {
		return nil, err
	}
	matching := map[uint]bool{}
	for _, c := range userCards {
		if c.LastFour() == lastFour {
			matching[c.ID] = true
		}
	}
	if len(matching) == 0 {
		return nil, fmt.Errorf("%w: last four %s", repositories.ErrCardNotFound, lastFour)
	}

	limit, offset := pageBounds(page, size)
	all, _, err := s.store.Transactions().ListByUser(userID, -1, 0)
	if err != nil {
		return nil, err
	}
	var filtered []*models.Transaction
	for _, t := range all {
		if matching[t.SourceCardID] || (t.DestinationCardID != nil && matching[*t.DestinationCardID]) {
			filtered = append(filtered, t)
		}
	}
	total := int64(len(filtered))
	if offset > len(filtered) {
		offset = len(filtered)
	}
	end := offset + limit
	if end > len(filtered) {
		end = len(filtered)
	}
	return envelope(filtered[offset:end], total, limit), nil
}

// Delete removes a record without reversing balances or limit accruals;
// it is an administrative override, not a refund.
func (s *service) Delete(ctx context.Context, id uint) error {
	return s.store.Transactions().Delete(id)
}

func pageBounds(page, size int) (limit, offset int) {
	if size <= 0 {
		size = 20
	}
	if page <= 0 {
		page = 1
	}
	return size, (page - 1) * size
}

func (s *service) invalidate(ctx context.Context, userID uint) {
	if s.cache == nil {
		return
	}
	if err := s.cache.InvalidateUserCards(ctx, userID); err != nil {
		s.log.WithError(err).Warn("failed to invalidate card cache")
	}
	if err := s.cache.InvalidateUserLimits(ctx, userID); err != nil {
		s.log.WithError(err).Warn("failed to invalidate limit cache")
	}
}
