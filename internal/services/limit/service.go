package limit

import (
	"context"
	"fmt"
	"time"

	"cardvault/internal/config"
	"cardvault/internal/models"
	"cardvault/internal/repositories"
	"cardvault/internal/repositories/cache"

	"github.com/sirupsen/logrus"
)

// Service manages limit rows: creation, administrative ceiling changes,
// period resets and the per-user defaults. Window arithmetic lives on the
// embedded Tracker.
type Service struct {
	*Tracker

	store    repositories.Store
	cache    *cache.CacheService
	defaults config.DefaultLimits
	log      *logrus.Logger
}

func NewService(store repositories.Store, cacheSvc *cache.CacheService, defaults config.DefaultLimits, log *logrus.Logger, now func() time.Time) *Service {
	if store == nil {
		panic("store is required")
	}
	return &Service{
		Tracker:  NewTracker(now),
		store:    store,
		cache:    cacheSvc,
		defaults: defaults,
		log:      log,
	}
}

// CreateInput identifies a limit row and its ceiling.
type CreateInput struct {
	UserID          uint
	LimitType       string
	TransactionType string
	Amount          int64
}

func (in CreateInput) parse() (models.LimitType, models.TransactionType, error) {
	lt, ok := models.ParseLimitType(in.LimitType)
	if !ok {
		return "", "", fmt.Errorf("%w: %s", ErrInvalidWindow, in.LimitType)
	}
	tt, ok := models.ParseTransactionType(in.TransactionType)
	if !ok {
		return "", "", fmt.Errorf("%w: %s", ErrInvalidTxType, in.TransactionType)
	}
	if in.Amount <= 0 {
		return "", "", ErrInvalidAmount
	}
	return lt, tt, nil
}

// Create inserts a new limit row, refusing a second row for an existing
// (user, window, transaction type) triple.
func (s *Service) Create(ctx context.Context, in CreateInput) (*models.Limit, error) {
	lt, tt, err := in.parse()
	if err != nil {
		return nil, err
	}
	if _, err := s.store.Users().GetByID(in.UserID); err != nil {
		return nil, err
	}
	exists, err := s.store.Limits().ExistsForUser(in.UserID, lt, tt)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, fmt.Errorf("%w: user %d", ErrDuplicateLimit, in.UserID)
	}

	l := &models.Limit{
		UserID:          in.UserID,
		LimitType:       lt,
		TransactionType: tt,
		LimitAmount:     in.Amount,
	}
	if err := s.store.Limits().Create(l); err != nil {
		return nil, err
	}
	s.invalidate(ctx, in.UserID)
	return l, nil
}

// SetLimit stages a new ceiling for an existing limit row. The change is
// applied by the scheduler at the next period boundary, never here.
func (s *Service) SetLimit(ctx context.Context, in CreateInput) (*models.Limit, error) {
	lt, tt, err := in.parse()
	if err != nil {
		return nil, err
	}
	l, err := s.store.Limits().GetForUser(in.UserID, lt, tt)
	if err != nil {
		return nil, err
	}

	s.StagePendingChange(l, in.Amount)
	if err := s.store.Limits().Update(l); err != nil {
		return nil, err
	}
	s.invalidate(ctx, in.UserID)
	s.log.WithFields(logrus.Fields{
		"user_id": in.UserID, "limit_type": lt, "transaction_type": tt, "pending": in.Amount,
	}).Info("limit change staged for next period")
	return l, nil
}

// SetDefaultLimits inserts the four limit rows every new user starts
// with. It writes through the given store so user creation can include it
// in its own transaction.
func (s *Service) SetDefaultLimits(store repositories.Store, user *models.User) error {
	rows := []struct {
		lt     models.LimitType
		tt     models.TransactionType
		amount int64
	}{
		{models.LimitDaily, models.TypeTransfer, s.defaults.DailyTransfer},
		{models.LimitMonthly, models.TypeTransfer, s.defaults.MonthlyTransfer},
		{models.LimitDaily, models.TypeWithdrawals, s.defaults.DailyWithdrawals},
		{models.LimitMonthly, models.TypeWithdrawals, s.defaults.MonthlyWithdrawals},
	}
	for _, row := range rows {
		l := &models.Limit{
			UserID:          user.ID,
			LimitType:       row.lt,
			TransactionType: row.tt,
			LimitAmount:     row.amount,
		}
		if err := store.Limits().Create(l); err != nil {
			return err
		}
	}
	return nil
}

func (s *Service) GetUserLimits(ctx context.Context, userID uint) ([]*models.Limit, error) {
	if s.cache != nil {
		if limits, ok := s.cache.GetUserLimits(ctx, userID); ok {
			return limits, nil
		}
	}

	if _, err := s.store.Users().GetByID(userID); err != nil {
		return nil, err
	}
	limits, err := s.store.Limits().ListByUser(userID)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if err := s.cache.CacheUserLimits(ctx, userID, limits); err != nil {
			s.log.WithError(err).Warn("failed to cache user limits")
		}
	}
	return limits, nil
}

// Remaining reports the capacity left on a limit for the current period.
func (s *Service) Remaining(ctx context.Context, id uint) (*models.Limit, int64, error) {
	l, err := s.store.Limits().GetByID(id)
	if err != nil {
		return nil, 0, err
	}
	s.CheckAndReset(l)
	return l, l.Remaining(), nil
}

func (s *Service) Delete(ctx context.Context, id uint) error {
	l, err := s.store.Limits().GetByID(id)
	if err != nil {
		return err
	}
	if err := s.store.Limits().Delete(id); err != nil {
		return err
	}
	s.invalidate(ctx, l.UserID)
	return nil
}

// ResetAllByPeriod eagerly zeroes every limit of one window. The
// scheduler runs it on the period boundary so counters are zero even for
// rows no transaction will touch.
func (s *Service) ResetAllByPeriod(lt models.LimitType) error {
	return s.store.ExecuteInTransaction(func(tx repositories.Store) error {
		return tx.Limits().ResetByType(lt)
	})
}

// ApplyPendingByPeriod promotes staged ceilings for one window and clears
// the pending flags. The scheduler runs it after the corresponding reset
// has committed.
func (s *Service) ApplyPendingByPeriod(lt models.LimitType) error {
	applied := 0
	err := s.store.ExecuteInTransaction(func(tx repositories.Store) error {
		pending, err := tx.Limits().ListPendingByType(lt)
		if err != nil {
			return err
		}
		for _, l := range pending {
			if l.PendingLimitAmount != nil {
				l.LimitAmount = *l.PendingLimitAmount
				l.PendingLimitAmount = nil
			}
			l.HasPendingUpdate = false
			if err := tx.Limits().Update(l); err != nil {
				return err
			}
			applied++
		}
		return nil
	})
	if err != nil {
		return err
	}
	if applied > 0 {
		s.log.WithFields(logrus.Fields{"limit_type": lt, "count": applied}).Info("pending limit changes applied")
	}
	return nil
}

func (s *Service) invalidate(ctx context.Context, userID uint) {
	if s.cache == nil {
		return
	}
	if err := s.cache.InvalidateUserLimits(ctx, userID); err != nil {
		s.log.WithError(err).Warn("failed to invalidate limit cache")
	}
}
