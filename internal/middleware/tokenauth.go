package middleware

import (
	"errors"
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/TechLead-War/wallet/internal/identity"
)

const ownerIDLocal = "owner_id"

// TokenAuth resolves the "Token <value>" credential from the Authorization
// header and stores the owning customer identifier in request locals.
func TokenAuth(resolver *identity.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ownerID, err := resolver.Resolve(c.UserContext(), c.Get(fiber.HeaderAuthorization))
		if err != nil {
			switch {
			case errors.Is(err, identity.ErrMalformedCredential):
				return fiber.NewError(http.StatusBadRequest, "missing or malformed token")
			case errors.Is(err, identity.ErrUnknownCredential):
				return fiber.NewError(http.StatusUnauthorized, "unknown token")
			default:
				return fiber.NewError(http.StatusInternalServerError, err.Error())
			}
		}

		c.Locals(ownerIDLocal, ownerID)
		return c.Next()
	}
}

// OwnerID returns the customer identifier TokenAuth resolved for this request.
func OwnerID(c *fiber.Ctx) string {
	ownerID, _ := c.Locals(ownerIDLocal).(string)
	return ownerID
}
