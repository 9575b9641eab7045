package card

import "cardvault/internal/models"

// The ledger operates on in-memory card rows. Callers persist the
// mutated rows inside the same store transaction as the transaction
// record, so a failure anywhere discards every balance change.

// IsUsable fails unless the card is ACTIVE. Every card taking part in a
// transaction is checked before any mutation.
func IsUsable(c *models.Card) error {
	if c.Status != models.CardStatusActive {
		return ErrCardBlocked
	}
	return nil
}

// Debit subtracts amount from the card balance, refusing to take the
// balance below zero.
func Debit(c *models.Card, amount int64) error {
	if c.Balance < amount {
		return ErrInsufficientFunds
	}
	c.Balance -= amount
	return nil
}

// Credit adds amount to the card balance. There is no upper bound.
func Credit(c *models.Card, amount int64) {
	c.Balance += amount
}
