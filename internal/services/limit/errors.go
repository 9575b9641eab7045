package limit

import "errors"

// Service errors
var (
	ErrExceedingLimit = errors.New("spending limit exceeded")
	ErrDuplicateLimit = errors.New("limit already assigned for this user, window and transaction type")
	ErrInvalidWindow  = errors.New("invalid limit type")
	ErrInvalidTxType  = errors.New("invalid transaction type")
	ErrInvalidAmount  = errors.New("limit amount must be positive")
)
