package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/TechLead-War/wallet/internal/identity"
)

// RegisterIdentityRoutes wires the public registration endpoint.
func RegisterIdentityRoutes(r fiber.Router, h *identity.Handler, rateLimit fiber.Handler) {
	r.Post("/init", rateLimit, h.Init)
}
