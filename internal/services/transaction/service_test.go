package transaction

import (
	"context"
	"io"
	"testing"
	"time"

	"cardvault/internal/config"
	"cardvault/internal/models"
	"cardvault/internal/repositories"
	"cardvault/internal/repositories/memory"
	"cardvault/internal/services/card"
	"cardvault/internal/services/limit"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	sourceNumber = "4242424242424242"
	destNumber   = "5555555555554444"
)

type fixture struct {
	store  *memory.Store
	svc    Service
	limits *limit.Service
	user   *models.User
	source *models.Card
	dest   *models.Card
	clock  *time.Time
}

// newFixture builds the engine against the in-memory store with one user,
// two active cards and the four default limit rows, on a clock the test
// controls.
func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := memory.NewStore()
	log := logrus.New()
	log.SetOutput(io.Discard)

	now := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)
	f := &fixture{store: store, clock: &now}

	defaults := config.DefaultLimits{
		DailyTransfer:      1000,
		MonthlyTransfer:    10_000,
		DailyWithdrawals:   5000,
		MonthlyWithdrawals: 50_000,
	}
	f.limits = limit.NewService(store, nil, defaults, log, func() time.Time { return *f.clock })
	cardSvc := card.NewService(store, nil, card.NewEncryptor("test-passphrase"), log)
	f.svc = NewService(store, f.limits, cardSvc, nil, log)

	f.user = &models.User{Name: "Ada", Email: "ada@example.com", Password: "x", Role: models.RoleUser}
	require.NoError(t, store.Users().Create(f.user))
	require.NoError(t, f.limits.SetDefaultLimits(store, f.user))

	ctx := context.Background()
	var err error
	f.source, err = cardSvc.CreateCard(ctx, card.CreateCardInput{
		OwnerID: f.user.ID, Number: sourceNumber, ExpiryMonth: 12, ExpiryYear: 2030, Balance: 100_000,
	})
	require.NoError(t, err)
	f.dest, err = cardSvc.CreateCard(ctx, card.CreateCardInput{
		OwnerID: f.user.ID, Number: destNumber, ExpiryMonth: 12, ExpiryYear: 2030, Balance: 0,
	})
	require.NoError(t, err)
	return f
}

func (f *fixture) balance(t *testing.T, id uint) int64 {
	t.Helper()
	c, err := f.store.Cards().GetByID(id)
	require.NoError(t, err)
	return c.Balance
}

func (f *fixture) limitRow(t *testing.T, lt models.LimitType, tt models.TransactionType) *models.Limit {
	t.Helper()
	l, err := f.store.Limits().GetForUser(f.user.ID, lt, tt)
	require.NoError(t, err)
	return l
}

func strPtr(s string) *string {
	return &s
}

func TestEngine_Transfer(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	record, err := f.svc.Create(ctx, CreateRequest{
		SourceNumber:      sourceNumber,
		DestinationNumber: strPtr(destNumber),
		Type:              "TRANSFER",
		Amount:            600,
	}, f.user.ID)
	require.NoError(t, err)

	assert.Equal(t, models.TypeTransfer, record.Type)
	assert.Equal(t, f.source.ID, record.SourceCardID)
	require.NotNil(t, record.DestinationCardID)
	assert.Equal(t, f.dest.ID, *record.DestinationCardID)

	// Money moved and the total is conserved.
	assert.Equal(t, int64(99_400), f.balance(t, f.source.ID))
	assert.Equal(t, int64(600), f.balance(t, f.dest.ID))

	// Both transfer windows accrued; withdrawals untouched.
	for _, lt := range []models.LimitType{models.LimitDaily, models.LimitMonthly} {
		l := f.limitRow(t, lt, models.TypeTransfer)
		assert.Equal(t, int64(600), l.CurrentExpenses)
		require.NotNil(t, l.DateLastTransaction)
		assert.Equal(t, time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC), *l.DateLastTransaction)

		assert.Zero(t, f.limitRow(t, lt, models.TypeWithdrawals).CurrentExpenses)
	}
}

func TestEngine_Withdrawal(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	record, err := f.svc.Create(ctx, CreateRequest{
		SourceNumber: sourceNumber,
		Type:         "WITHDRAWALS",
		Amount:       500,
	}, f.user.ID)
	require.NoError(t, err)

	assert.Nil(t, record.DestinationCardID)
	assert.Equal(t, int64(99_500), f.balance(t, f.source.ID))
	assert.Equal(t, int64(500), f.limitRow(t, models.LimitDaily, models.TypeWithdrawals).CurrentExpenses)
	assert.Equal(t, int64(500), f.limitRow(t, models.LimitMonthly, models.TypeWithdrawals).CurrentExpenses)
	assert.Zero(t, f.limitRow(t, models.LimitDaily, models.TypeTransfer).CurrentExpenses)
}

func TestEngine_Validation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	tests := []struct {
		name string
		req  CreateRequest
	}{
		{"unknown type", CreateRequest{SourceNumber: sourceNumber, Type: "PAYMENT", Amount: 100}},
		{"zero amount", CreateRequest{SourceNumber: sourceNumber, DestinationNumber: strPtr(destNumber), Type: "TRANSFER", Amount: 0}},
		{"negative amount", CreateRequest{SourceNumber: sourceNumber, DestinationNumber: strPtr(destNumber), Type: "TRANSFER", Amount: -5}},
		{"transfer without destination", CreateRequest{SourceNumber: sourceNumber, Type: "TRANSFER", Amount: 100}},
		{"transfer with empty destination", CreateRequest{SourceNumber: sourceNumber, DestinationNumber: strPtr(""), Type: "TRANSFER", Amount: 100}},
		{"withdrawal with destination", CreateRequest{SourceNumber: sourceNumber, DestinationNumber: strPtr(destNumber), Type: "WITHDRAWALS", Amount: 100}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.svc.Create(ctx, tt.req, f.user.ID)
			assert.ErrorIs(t, err, ErrValidation)
		})
	}

	// Nothing moved.
	assert.Equal(t, int64(100_000), f.balance(t, f.source.ID))
}

func TestEngine_CardResolution(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	t.Run("unknown source number", func(t *testing.T) {
		_, err := f.svc.Create(ctx, CreateRequest{
			SourceNumber: "4012888888881881", Type: "WITHDRAWALS", Amount: 100,
		}, f.user.ID)
		assert.ErrorIs(t, err, card.ErrNoMatchingCard)
	})

	t.Run("destination must belong to the same user", func(t *testing.T) {
		_, err := f.svc.Create(ctx, CreateRequest{
			SourceNumber:      sourceNumber,
			DestinationNumber: strPtr("4012888888881881"),
			Type:              "TRANSFER",
			Amount:            100,
		}, f.user.ID)
		assert.ErrorIs(t, err, card.ErrNoMatchingCard)
	})

	t.Run("unknown user", func(t *testing.T) {
		_, err := f.svc.Create(ctx, CreateRequest{
			SourceNumber: sourceNumber, Type: "WITHDRAWALS", Amount: 100,
		}, 999)
		assert.ErrorIs(t, err, repositories.ErrUserNotFound)
	})
}

func TestEngine_BlockedCard(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	blocked, err := f.store.Cards().GetByID(f.dest.ID)
	require.NoError(t, err)
	blocked.Status = models.CardStatusBlocked
	require.NoError(t, f.store.Cards().Update(blocked))

	t.Run("blocked destination", func(t *testing.T) {
		_, err := f.svc.Create(ctx, CreateRequest{
			SourceNumber:      sourceNumber,
			DestinationNumber: strPtr(destNumber),
			Type:              "TRANSFER",
			Amount:            100,
		}, f.user.ID)
		assert.ErrorIs(t, err, card.ErrCardBlocked)
	})

	t.Run("blocked source", func(t *testing.T) {
		_, err := f.svc.Create(ctx, CreateRequest{
			SourceNumber: destNumber, Type: "WITHDRAWALS", Amount: 100,
		}, f.user.ID)
		assert.ErrorIs(t, err, card.ErrCardBlocked)
	})

	assert.Equal(t, int64(100_000), f.balance(t, f.source.ID))
	assert.Zero(t, f.limitRow(t, models.LimitDaily, models.TypeTransfer).CurrentExpenses)
}

func TestEngine_InsufficientFunds(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	// Destination holds 0; within limits but over the balance.
	_, err := f.svc.Create(ctx, CreateRequest{
		SourceNumber:      destNumber,
		DestinationNumber: strPtr(sourceNumber),
		Type:              "TRANSFER",
		Amount:            100,
	}, f.user.ID)
	assert.ErrorIs(t, err, card.ErrInsufficientFunds)

	// The failure left no trace: no balance change, no accrual, no record.
	assert.Equal(t, int64(100_000), f.balance(t, f.source.ID))
	assert.Zero(t, f.balance(t, f.dest.ID))
	assert.Zero(t, f.limitRow(t, models.LimitDaily, models.TypeTransfer).CurrentExpenses)
	env, err := f.svc.List(ctx, 1, 10)
	require.NoError(t, err)
	assert.Zero(t, env.TotalItems)
}

func TestEngine_DailyLimitExceeded(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.Create(ctx, CreateRequest{
		SourceNumber:      sourceNumber,
		DestinationNumber: strPtr(destNumber),
		Type:              "TRANSFER",
		Amount:            600,
	}, f.user.ID)
	require.NoError(t, err)

	// 600 + 500 would cross the 1000 daily transfer ceiling.
	_, err = f.svc.Create(ctx, CreateRequest{
		SourceNumber:      sourceNumber,
		DestinationNumber: strPtr(destNumber),
		Type:              "TRANSFER",
		Amount:            500,
	}, f.user.ID)
	assert.ErrorIs(t, err, limit.ErrExceedingLimit)

	assert.Equal(t, int64(99_400), f.balance(t, f.source.ID))
	assert.Equal(t, int64(600), f.balance(t, f.dest.ID))
	assert.Equal(t, int64(600), f.limitRow(t, models.LimitDaily, models.TypeTransfer).CurrentExpenses)
	assert.Equal(t, int64(600), f.limitRow(t, models.LimitMonthly, models.TypeTransfer).CurrentExpenses)
}

func TestEngine_MonthlyRejectionLeavesDailyUnaccrued(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	monthly := f.limitRow(t, models.LimitMonthly, models.TypeTransfer)
	monthly.LimitAmount = 700
	require.NoError(t, f.store.Limits().Update(monthly))

	_, err := f.svc.Create(ctx, CreateRequest{
		SourceNumber:      sourceNumber,
		DestinationNumber: strPtr(destNumber),
		Type:              "TRANSFER",
		Amount:            600,
	}, f.user.ID)
	require.NoError(t, err)

	// Daily would allow 200 more, monthly would not. The daily window
	// must not accrue for the rejected attempt.
	_, err = f.svc.Create(ctx, CreateRequest{
		SourceNumber:      sourceNumber,
		DestinationNumber: strPtr(destNumber),
		Type:              "TRANSFER",
		Amount:            200,
	}, f.user.ID)
	assert.ErrorIs(t, err, limit.ErrExceedingLimit)

	assert.Equal(t, int64(600), f.limitRow(t, models.LimitDaily, models.TypeTransfer).CurrentExpenses)
	assert.Equal(t, int64(600), f.limitRow(t, models.LimitMonthly, models.TypeTransfer).CurrentExpenses)
}

func TestEngine_DailyWindowRollsOver(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	fill := CreateRequest{
		SourceNumber:      sourceNumber,
		DestinationNumber: strPtr(destNumber),
		Type:              "TRANSFER",
		Amount:            1000,
	}
	_, err := f.svc.Create(ctx, fill, f.user.ID)
	require.NoError(t, err)

	one := fill
	one.Amount = 1
	_, err = f.svc.Create(ctx, one, f.user.ID)
	assert.ErrorIs(t, err, limit.ErrExceedingLimit)

	// Next day the daily window resets while the monthly one keeps
	// counting.
	*f.clock = f.clock.AddDate(0, 0, 1)
	_, err = f.svc.Create(ctx, fill, f.user.ID)
	require.NoError(t, err)

	assert.Equal(t, int64(1000), f.limitRow(t, models.LimitDaily, models.TypeTransfer).CurrentExpenses)
	assert.Equal(t, int64(2000), f.limitRow(t, models.LimitMonthly, models.TypeTransfer).CurrentExpenses)
}

func TestEngine_WithdrawalCeilingFilledExactly(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	// The 5000 daily withdrawal ceiling can be consumed in one movement.
	_, err := f.svc.Create(ctx, CreateRequest{
		SourceNumber: sourceNumber, Type: "WITHDRAWALS", Amount: 5000,
	}, f.user.ID)
	require.NoError(t, err)

	_, err = f.svc.Create(ctx, CreateRequest{
		SourceNumber: sourceNumber, Type: "WITHDRAWALS", Amount: 1,
	}, f.user.ID)
	assert.ErrorIs(t, err, limit.ErrExceedingLimit)

	*f.clock = f.clock.AddDate(0, 0, 1)
	_, err = f.svc.Create(ctx, CreateRequest{
		SourceNumber: sourceNumber, Type: "WITHDRAWALS", Amount: 1,
	}, f.user.ID)
	assert.NoError(t, err)
}

func TestEngine_Listing(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.Create(ctx, CreateRequest{
		SourceNumber:      sourceNumber,
		DestinationNumber: strPtr(destNumber),
		Type:              "TRANSFER",
		Amount:            300,
	}, f.user.ID)
	require.NoError(t, err)
	_, err = f.svc.Create(ctx, CreateRequest{
		SourceNumber: sourceNumber, Type: "WITHDRAWALS", Amount: 200,
	}, f.user.ID)
	require.NoError(t, err)

	t.Run("list by user", func(t *testing.T) {
		env, err := f.svc.ListByUser(ctx, f.user.ID, 1, 10)
		require.NoError(t, err)
		assert.Equal(t, int64(2), env.TotalItems)
		assert.Equal(t, 1, env.TotalPages)
		assert.Len(t, env.Transactions, 2)
	})

	t.Run("destination side matches the card filter", func(t *testing.T) {
		env, err := f.svc.ListByUserCard(ctx, f.user.ID, f.dest.LastFour(), 1, 10)
		require.NoError(t, err)
		require.Len(t, env.Transactions, 1)
		assert.Equal(t, models.TypeTransfer, env.Transactions[0].Type)
	})

	t.Run("source side matches the card filter", func(t *testing.T) {
		env, err := f.svc.ListByUserCard(ctx, f.user.ID, f.source.LastFour(), 1, 10)
		require.NoError(t, err)
		assert.Len(t, env.Transactions, 2)
	})

	t.Run("unknown last four", func(t *testing.T) {
		_, err := f.svc.ListByUserCard(ctx, f.user.ID, "0000", 1, 10)
		assert.ErrorIs(t, err, repositories.ErrCardNotFound)
	})
}

func TestEngine_DeleteDoesNotReverse(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	record, err := f.svc.Create(ctx, CreateRequest{
		SourceNumber:      sourceNumber,
		DestinationNumber: strPtr(destNumber),
		Type:              "TRANSFER",
		Amount:            400,
	}, f.user.ID)
	require.NoError(t, err)

	require.NoError(t, f.svc.Delete(ctx, record.ID))

	_, err = f.svc.GetByID(ctx, record.ID)
	assert.ErrorIs(t, err, repositories.ErrTransactionNotFound)
	assert.Equal(t, int64(99_600), f.balance(t, f.source.ID))
	assert.Equal(t, int64(400), f.balance(t, f.dest.ID))
	assert.Equal(t, int64(400), f.limitRow(t, models.LimitDaily, models.TypeTransfer).CurrentExpenses)
}
