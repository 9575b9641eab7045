// Package routes wires the HTTP handlers onto the fiber app.
package routes

import (
	"cardvault/internal/handlers"
	"cardvault/internal/middleware"

	"github.com/gofiber/fiber/v2"
)

// Handlers groups everything the router mounts.
type Handlers struct {
	Auth        *handlers.AuthHandler
	User        *handlers.UserHandler
	Card        *handlers.CardHandler
	Limit       *handlers.LimitHandler
	Transaction *handlers.TransactionHandler
	AuthMW      *middleware.AuthMiddleware
}

func Setup(app *fiber.App, h Handlers) {
	api := app.Group("/api")

	// Public
	api.Post("/login", h.Auth.Login)

	// Authenticated
	authed := api.Group("", h.AuthMW.Handler)
	authed.Get("/cards/my", h.Card.GetMine)
	authed.Post("/cards/my/:lastFour/block", h.Card.BlockMine)
	authed.Get("/limits/my", h.Limit.GetMine)
	authed.Post("/transactions", h.Transaction.Create)
	authed.Get("/transactions/my", h.Transaction.ListMine)
	authed.Get("/transactions/my/card/:lastFour", h.Transaction.ListMineByCard)

	// Administrative
	admin := authed.Group("/admin", middleware.AdminOnly)
	admin.Post("/users", h.User.Register)
	admin.Get("/users/:id", h.User.GetByID)
	admin.Delete("/users/:id", h.User.Delete)
	admin.Get("/users/:id/cards", h.Card.GetUserCards)
	admin.Get("/users/:id/limits", h.Limit.GetUserLimits)

	admin.Post("/cards", h.Card.Create)
	admin.Post("/cards/status", h.Card.SetStatus)
	admin.Delete("/cards/:id", h.Card.Delete)

	admin.Post("/limits", h.Limit.Create)
	admin.Put("/limits", h.Limit.SetLimit)
	admin.Get("/limits/:id/remaining", h.Limit.Remaining)
	admin.Delete("/limits/:id", h.Limit.Delete)

	admin.Get("/transactions", h.Transaction.List)
	admin.Get("/transactions/:id", h.Transaction.GetByID)
	admin.Delete("/transactions/:id", h.Transaction.Delete)
}
