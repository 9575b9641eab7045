package handlers

import (
	"cardvault/internal/services/limit"
	"cardvault/internal/utils"

	"github.com/gofiber/fiber/v2"
)

type LimitHandler struct {
	limitService *limit.Service
}

func NewLimitHandler(limitService *limit.Service) *LimitHandler {
	return &LimitHandler{limitService: limitService}
}

type limitInput struct {
	UserID          uint   `json:"user_id"`
	LimitType       string `json:"limit_type"`
	TransactionType string `json:"transaction_type"`
	Amount          int64  `json:"amount"`
}

func (in limitInput) toCreateInput() limit.CreateInput {
	return limit.CreateInput{
		UserID:          in.UserID,
		LimitType:       in.LimitType,
		TransactionType: in.TransactionType,
		Amount:          in.Amount,
	}
}

func (h *LimitHandler) Create(c *fiber.Ctx) error {
	var input limitInput
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "invalid request format")
	}
	created, err := h.limitService.Create(c.Context(), input.toCreateInput())
	if err != nil {
		return respondServiceError(c, err)
	}
	return utils.Created(c, fiber.Map{"limit": created})
}

// SetLimit stages a ceiling change; the response makes the deferral
// explicit so admin tooling does not expect an immediate effect.
func (h *LimitHandler) SetLimit(c *fiber.Ctx) error {
	var input limitInput
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "invalid request format")
	}
	staged, err := h.limitService.SetLimit(c.Context(), input.toCreateInput())
	if err != nil {
		return respondServiceError(c, err)
	}
	return utils.Success(c, fiber.Map{
		"limit":   staged,
		"message": "limit change takes effect at the next period boundary",
	})
}

func (h *LimitHandler) GetMine(c *fiber.Ctx) error {
	claims, err := extractUserClaims(c)
	if err != nil {
		return utils.Unauthorized(c, "invalid claims")
	}
	limits, err := h.limitService.GetUserLimits(c.Context(), claims.UserID)
	if err != nil {
		return respondServiceError(c, err)
	}
	return utils.Success(c, fiber.Map{"limits": limits})
}

func (h *LimitHandler) GetUserLimits(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		return utils.BadRequest(c, "invalid user id")
	}
	limits, err := h.limitService.GetUserLimits(c.Context(), uint(id))
	if err != nil {
		return respondServiceError(c, err)
	}
	return utils.Success(c, fiber.Map{"limits": limits})
}

func (h *LimitHandler) Remaining(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		return utils.BadRequest(c, "invalid limit id")
	}
	l, remaining, err := h.limitService.Remaining(c.Context(), uint(id))
	if err != nil {
		return respondServiceError(c, err)
	}
	return utils.Success(c, fiber.Map{"limit": l, "remaining": remaining})
}

func (h *LimitHandler) Delete(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		return utils.BadRequest(c, "invalid limit id")
	}
	if err := h.limitService.Delete(c.Context(), uint(id)); err != nil {
		return respondServiceError(c, err)
	}
	return utils.Success(c, fiber.Map{"deleted": id})
}
