package handlers

import (
	"cardvault/internal/services/user"
	"cardvault/internal/utils"

	"github.com/gofiber/fiber/v2"
)

type UserHandler struct {
	userService *user.Service
}

func NewUserHandler(userService *user.Service) *UserHandler {
	return &UserHandler{userService: userService}
}

func (h *UserHandler) Register(c *fiber.Ctx) error {
	var input user.RegisterInput
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "invalid request format")
	}
	if input.Email == "" || input.Password == "" {
		return utils.BadRequest(c, "email and password are required")
	}

	created, err := h.userService.Register(c.Context(), input)
	if err != nil {
		return respondServiceError(c, err)
	}
	return utils.Created(c, fiber.Map{"user": created})
}

func (h *UserHandler) GetByID(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		return utils.BadRequest(c, "invalid user id")
	}
	u, err := h.userService.GetByID(c.Context(), uint(id))
	if err != nil {
		return respondServiceError(c, err)
	}
	return utils.Success(c, fiber.Map{"user": u})
}

func (h *UserHandler) Delete(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		return utils.BadRequest(c, "invalid user id")
	}
	if err := h.userService.Delete(c.Context(), uint(id)); err != nil {
		return respondServiceError(c, err)
	}
	return utils.Success(c, fiber.Map{"deleted": id})
}
