package handlers

import (
	"cardvault/internal/models"
	"cardvault/internal/services/card"
	"cardvault/internal/utils"

	"github.com/gofiber/fiber/v2"
)

type CardHandler struct {
	cardService card.Service
}

func NewCardHandler(cardService card.Service) *CardHandler {
	return &CardHandler{cardService: cardService}
}

// extractUserClaims is a helper shared by the authenticated handlers.
func extractUserClaims(c *fiber.Ctx) (*models.UserClaims, error) {
	claims, ok := c.Locals("claims").(*models.UserClaims)
	if !ok || claims == nil {
		return nil, fiber.ErrUnauthorized
	}
	return claims, nil
}

func (h *CardHandler) Create(c *fiber.Ctx) error {
	var input struct {
		OwnerID     uint   `json:"owner_id"`
		Number      string `json:"number"`
		ExpiryMonth int    `json:"expiry_month"`
		ExpiryYear  int    `json:"expiry_year"`
		Balance     int64  `json:"balance"`
	}
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "invalid request format")
	}

	created, err := h.cardService.CreateCard(c.Context(), card.CreateCardInput{
		OwnerID:     input.OwnerID,
		Number:      input.Number,
		ExpiryMonth: input.ExpiryMonth,
		ExpiryYear:  input.ExpiryYear,
		Balance:     input.Balance,
	})
	if err != nil {
		return respondServiceError(c, err)
	}
	return utils.Created(c, fiber.Map{"card": created})
}

func (h *CardHandler) GetMine(c *fiber.Ctx) error {
	claims, err := extractUserClaims(c)
	if err != nil {
		return utils.Unauthorized(c, "invalid claims")
	}
	cards, err := h.cardService.GetUserCards(c.Context(), claims.UserID)
	if err != nil {
		return respondServiceError(c, err)
	}
	return utils.Success(c, fiber.Map{"cards": cards})
}

func (h *CardHandler) GetUserCards(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		return utils.BadRequest(c, "invalid user id")
	}
	cards, err := h.cardService.GetUserCards(c.Context(), uint(id))
	if err != nil {
		return respondServiceError(c, err)
	}
	return utils.Success(c, fiber.Map{"cards": cards})
}

// BlockMine lets a user block their own card by its last four digits.
func (h *CardHandler) BlockMine(c *fiber.Ctx) error {
	claims, err := extractUserClaims(c)
	if err != nil {
		return utils.Unauthorized(c, "invalid claims")
	}
	lastFour := c.Params("lastFour")
	if err := h.cardService.BlockCard(c.Context(), claims.UserID, lastFour); err != nil {
		return respondServiceError(c, err)
	}
	return utils.Success(c, fiber.Map{"blocked": lastFour})
}

func (h *CardHandler) SetStatus(c *fiber.Ctx) error {
	var input struct {
		OwnerID  uint   `json:"owner_id"`
		LastFour string `json:"last_four"`
		Status   string `json:"status"`
	}
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "invalid request format")
	}
	if err := h.cardService.SetCardStatus(c.Context(), input.OwnerID, input.LastFour, input.Status); err != nil {
		return respondServiceError(c, err)
	}
	return utils.Success(c, fiber.Map{"last_four": input.LastFour, "status": input.Status})
}

func (h *CardHandler) Delete(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		return utils.BadRequest(c, "invalid card id")
	}
	if err := h.cardService.DeleteCard(c.Context(), uint(id)); err != nil {
		return respondServiceError(c, err)
	}
	return utils.Success(c, fiber.Map{"deleted": id})
}
