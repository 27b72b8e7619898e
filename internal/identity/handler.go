package identity

import (
	"errors"
	"net/http"

	"github.com/gofiber/fiber/v2"
)

// Handler exposes the registration endpoint.
type Handler struct {
	service *Service
}

// NewHandler builds an identity HTTP handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

type initRequest struct {
	CustomerXID string `json:"customer_xid"`
}

// Init registers a customer and returns the issued credential.
func (h *Handler) Init(c *fiber.Ctx) error {
	var req initRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}

	credential, err := h.service.Register(c.UserContext(), req.CustomerXID)
	if err != nil {
		switch {
		case errors.Is(err, ErrMissingCustomerXID):
			return fiber.NewError(http.StatusBadRequest, "customer_xid is required")
		case errors.Is(err, ErrCustomerExists):
			return fiber.NewError(http.StatusConflict, "customer already registered")
		default:
			return fiber.NewError(http.StatusInternalServerError, err.Error())
		}
	}

	return c.Status(http.StatusCreated).JSON(fiber.Map{"token": credential})
}
