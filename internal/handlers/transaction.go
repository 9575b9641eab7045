package handlers

import (
	"cardvault/internal/services/transaction"
	"cardvault/internal/utils"

	"github.com/gofiber/fiber/v2"
)

type TransactionHandler struct {
	txService transaction.Service
}

func NewTransactionHandler(txService transaction.Service) *TransactionHandler {
	return &TransactionHandler{txService: txService}
}

func (h *TransactionHandler) Create(c *fiber.Ctx) error {
	claims, err := extractUserClaims(c)
	if err != nil {
		return utils.Unauthorized(c, "invalid claims")
	}

	var req transaction.CreateRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.BadRequest(c, "invalid request format")
	}

	created, err := h.txService.Create(c.Context(), req, claims.UserID)
	if err != nil {
		return respondServiceError(c, err)
	}
	return utils.Created(c, fiber.Map{"transaction": created})
}

func (h *TransactionHandler) GetByID(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		return utils.BadRequest(c, "invalid transaction id")
	}
	tx, err := h.txService.GetByID(c.Context(), uint(id))
	if err != nil {
		return respondServiceError(c, err)
	}
	return utils.Success(c, fiber.Map{"transaction": tx})
}

func (h *TransactionHandler) List(c *fiber.Ctx) error {
	page := c.QueryInt("page", 1)
	size := c.QueryInt("size", 20)
	env, err := h.txService.List(c.Context(), page, size)
	if err != nil {
		return respondServiceError(c, err)
	}
	return utils.Success(c, env)
}

func (h *TransactionHandler) ListMine(c *fiber.Ctx) error {
	claims, err := extractUserClaims(c)
	if err != nil {
		return utils.Unauthorized(c, "invalid claims")
	}
	page := c.QueryInt("page", 1)
	size := c.QueryInt("size", 20)
	env, err := h.txService.ListByUser(c.Context(), claims.UserID, page, size)
	if err != nil {
		return respondServiceError(c, err)
	}
	return utils.Success(c, env)
}

func (h *TransactionHandler) ListMineByCard(c *fiber.Ctx) error {
	claims, err := extractUserClaims(c)
	if err != nil {
		return utils.Unauthorized(c, "invalid claims")
	}
	lastFour := c.Params("lastFour")
	page := c.QueryInt("page", 1)
	size := c.QueryInt("size", 20)
	env, err := h.txService.ListByUserCard(c.Context(), claims.UserID, lastFour, page, size)
	if err != nil {
		return respondServiceError(c, err)
	}
	return utils.Success(c, env)
}

// Delete is the administrative override; it never reverses balances.
func (h *TransactionHandler) Delete(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		return utils.BadRequest(c, "invalid transaction id")
	}
	if err := h.txService.Delete(c.Context(), uint(id)); err != nil {
		return respondServiceError(c, err)
	}
	return utils.Success(c, fiber.Map{"deleted": id})
}
