package card

import "errors"

// Service errors
var (
	ErrCardBlocked       = errors.New("card is not active")
	ErrInsufficientFunds = errors.New("insufficient funds on card")
	ErrNoMatchingCard    = errors.New("no card of this user matches the number")
	ErrDuplicateCard     = errors.New("card already registered")
	ErrInvalidNumber     = errors.New("invalid card number")
	ErrInvalidStatus     = errors.New("invalid card status")
	ErrStatusTerminal    = errors.New("expired card status cannot change")
)
