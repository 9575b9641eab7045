package handlers

import (
	"errors"

	"cardvault/internal/repositories"
	"cardvault/internal/services/card"
	"cardvault/internal/services/limit"
	"cardvault/internal/services/transaction"
	"cardvault/internal/services/user"
	"cardvault/internal/utils"

	"github.com/gofiber/fiber/v2"
)

// respondServiceError translates the typed service errors into HTTP
// responses. Anything unrecognized is a 500 with a generic message.
func respondServiceError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, repositories.ErrUserNotFound),
		errors.Is(err, repositories.ErrCardNotFound),
		errors.Is(err, repositories.ErrLimitNotFound),
		errors.Is(err, repositories.ErrTransactionNotFound),
		errors.Is(err, card.ErrNoMatchingCard):
		return utils.NotFound(c, err.Error())

	case errors.Is(err, transaction.ErrValidation),
		errors.Is(err, card.ErrInvalidNumber),
		errors.Is(err, card.ErrInvalidStatus),
		errors.Is(err, limit.ErrInvalidWindow),
		errors.Is(err, limit.ErrInvalidTxType),
		errors.Is(err, limit.ErrInvalidAmount),
		errors.Is(err, user.ErrInvalidRole):
		return utils.BadRequest(c, err.Error())

	case errors.Is(err, card.ErrDuplicateCard),
		errors.Is(err, limit.ErrDuplicateLimit),
		errors.Is(err, repositories.ErrDuplicateEmail),
		errors.Is(err, card.ErrCardBlocked),
		errors.Is(err, card.ErrStatusTerminal):
		return utils.Conflict(c, err.Error())

	case errors.Is(err, card.ErrInsufficientFunds),
		errors.Is(err, limit.ErrExceedingLimit):
		return utils.UnprocessableEntity(c, err.Error())

	default:
		return utils.InternalError(c, "internal error")
	}
}
