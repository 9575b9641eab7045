package transaction

import "errors"

// Service errors
var (
	ErrValidation        = errors.New("invalid transaction fields")
	ErrTransactionFailed = errors.New("transaction failed")
)
