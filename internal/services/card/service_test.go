package card

import (
	"context"
	"io"
	"testing"
	"time"

	"cardvault/internal/models"
	"cardvault/internal/repositories"
	"cardvault/internal/repositories/memory"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestService(t *testing.T) (Service, *memory.Store) {
	t.Helper()
	store := memory.NewStore()
	log := logrus.New()
	log.SetOutput(io.Discard)
	return NewService(store, nil, NewEncryptor("test-passphrase"), log), store
}

func seedOwner(t *testing.T, store *memory.Store) *models.User {
	t.Helper()
	u := &models.User{Name: "Ada", Email: "ada@example.com", Password: "x", Role: models.RoleUser}
	require.NoError(t, store.Users().Create(u))
	return u
}

func TestService_CreateCard(t *testing.T) {
	svc, store := newTestService(t)
	owner := seedOwner(t, store)
	ctx := context.Background()

	t.Run("stores encrypted number with masked form", func(t *testing.T) {
		c, err := svc.CreateCard(ctx, CreateCardInput{
			OwnerID: owner.ID, Number: "4242 4242 4242 4242",
			ExpiryMonth: 12, ExpiryYear: 2030, Balance: 10_000,
		})
		require.NoError(t, err)
		assert.Equal(t, "4242****4242", c.MaskedNumber)
		assert.Equal(t, "4242", c.LastFour())
		assert.Equal(t, models.CardStatusActive, c.Status)
		assert.NotEmpty(t, c.Salt)
		assert.NotContains(t, c.EncryptedNumber, "4242424242424242")

		plain, err := NewEncryptor("test-passphrase").Decrypt(c.EncryptedNumber, c.Salt)
		require.NoError(t, err)
		assert.Equal(t, "4242424242424242", plain)
	})

	t.Run("rejects the same number twice", func(t *testing.T) {
		_, err := svc.CreateCard(ctx, CreateCardInput{
			OwnerID: owner.ID, Number: "4242424242424242",
			ExpiryMonth: 1, ExpiryYear: 2031,
		})
		assert.ErrorIs(t, err, ErrDuplicateCard)
	})

	t.Run("rejects invalid numbers", func(t *testing.T) {
		_, err := svc.CreateCard(ctx, CreateCardInput{
			OwnerID: owner.ID, Number: "4242424242424241",
			ExpiryMonth: 1, ExpiryYear: 2031,
		})
		assert.ErrorIs(t, err, ErrInvalidNumber)
	})

	t.Run("rejects negative opening balance", func(t *testing.T) {
		_, err := svc.CreateCard(ctx, CreateCardInput{
			OwnerID: owner.ID, Number: "5555555555554444",
			ExpiryMonth: 1, ExpiryYear: 2031, Balance: -1,
		})
		assert.ErrorIs(t, err, ErrInvalidNumber)
	})

	t.Run("rejects unknown owner", func(t *testing.T) {
		_, err := svc.CreateCard(ctx, CreateCardInput{
			OwnerID: 999, Number: "5555555555554444",
			ExpiryMonth: 1, ExpiryYear: 2031,
		})
		assert.ErrorIs(t, err, repositories.ErrUserNotFound)
	})
}

func TestService_FindMatchByNumber(t *testing.T) {
	svc, store := newTestService(t)
	owner := seedOwner(t, store)
	ctx := context.Background()

	first, err := svc.CreateCard(ctx, CreateCardInput{
		OwnerID: owner.ID, Number: "4242424242424242", ExpiryMonth: 12, ExpiryYear: 2030,
	})
	require.NoError(t, err)
	_, err = svc.CreateCard(ctx, CreateCardInput{
		OwnerID: owner.ID, Number: "5555555555554444", ExpiryMonth: 12, ExpiryYear: 2030,
	})
	require.NoError(t, err)

	cards, err := svc.GetUserCards(ctx, owner.ID)
	require.NoError(t, err)
	require.Len(t, cards, 2)

	match, err := svc.FindMatchByNumber(cards, "4242424242424242")
	require.NoError(t, err)
	assert.Equal(t, first.ID, match.ID)

	_, err = svc.FindMatchByNumber(cards, "4012888888881881")
	assert.ErrorIs(t, err, ErrNoMatchingCard)
}

func TestService_SetCardStatus(t *testing.T) {
	svc, store := newTestService(t)
	owner := seedOwner(t, store)
	ctx := context.Background()

	created, err := svc.CreateCard(ctx, CreateCardInput{
		OwnerID: owner.ID, Number: "4242424242424242", ExpiryMonth: 12, ExpiryYear: 2030,
	})
	require.NoError(t, err)

	t.Run("block and unblock by last four", func(t *testing.T) {
		require.NoError(t, svc.BlockCard(ctx, owner.ID, "4242"))
		got, err := store.Cards().GetByID(created.ID)
		require.NoError(t, err)
		assert.Equal(t, models.CardStatusBlocked, got.Status)

		require.NoError(t, svc.SetCardStatus(ctx, owner.ID, "4242", "ACTIVE"))
		got, err = store.Cards().GetByID(created.ID)
		require.NoError(t, err)
		assert.Equal(t, models.CardStatusActive, got.Status)
	})

	t.Run("unknown status rejected", func(t *testing.T) {
		err := svc.SetCardStatus(ctx, owner.ID, "4242", "FROZEN")
		assert.ErrorIs(t, err, ErrInvalidStatus)
	})

	t.Run("unknown last four rejected", func(t *testing.T) {
		err := svc.SetCardStatus(ctx, owner.ID, "0000", "BLOCKED")
		assert.ErrorIs(t, err, repositories.ErrCardNotFound)
	})

	t.Run("expired is terminal", func(t *testing.T) {
		got, err := store.Cards().GetByID(created.ID)
		require.NoError(t, err)
		got.Status = models.CardStatusExpired
		require.NoError(t, store.Cards().Update(got))

		err = svc.SetCardStatus(ctx, owner.ID, "4242", "ACTIVE")
		assert.ErrorIs(t, err, ErrStatusTerminal)
	})
}

func TestService_ExpireCards(t *testing.T) {
	svc, store := newTestService(t)
	owner := seedOwner(t, store)
	ctx := context.Background()

	past, err := svc.CreateCard(ctx, CreateCardInput{
		OwnerID: owner.ID, Number: "4242424242424242", ExpiryMonth: 1, ExpiryYear: 2024,
	})
	require.NoError(t, err)
	blockedPast, err := svc.CreateCard(ctx, CreateCardInput{
		OwnerID: owner.ID, Number: "5555555555554444", ExpiryMonth: 6, ExpiryYear: 2024,
	})
	require.NoError(t, err)
	require.NoError(t, svc.BlockCard(ctx, owner.ID, blockedPast.LastFour()))
	future, err := svc.CreateCard(ctx, CreateCardInput{
		OwnerID: owner.ID, Number: "4012888888881881", ExpiryMonth: 12, ExpiryYear: 2030,
	})
	require.NoError(t, err)

	now := time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)
	swept, err := svc.ExpireCards(ctx, now)
	require.NoError(t, err)
	assert.Equal(t, 2, swept)

	for _, id := range []uint{past.ID, blockedPast.ID} {
		got, err := store.Cards().GetByID(id)
		require.NoError(t, err)
		assert.Equal(t, models.CardStatusExpired, got.Status)
	}
	got, err := store.Cards().GetByID(future.ID)
	require.NoError(t, err)
	assert.Equal(t, models.CardStatusActive, got.Status)

	t.Run("sweep is idempotent", func(t *testing.T) {
		swept, err := svc.ExpireCards(ctx, now)
		require.NoError(t, err)
		assert.Zero(t, swept)
	})
}

func TestService_DeleteCard(t *testing.T) {
	svc, store := newTestService(t)
	owner := seedOwner(t, store)
	ctx := context.Background()

	created, err := svc.CreateCard(ctx, CreateCardInput{
		OwnerID: owner.ID, Number: "4242424242424242", ExpiryMonth: 12, ExpiryYear: 2030,
	})
	require.NoError(t, err)

	require.NoError(t, svc.DeleteCard(ctx, created.ID))
	_, err = store.Cards().GetByID(created.ID)
	assert.ErrorIs(t, err, repositories.ErrCardNotFound)

	assert.ErrorIs(t, svc.DeleteCard(ctx, created.ID), repositories.ErrCardNotFound)
}
