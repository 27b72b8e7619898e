package wallet

import (
	"errors"
	"net/http"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/TechLead-War/wallet/internal/ledger"
	"github.com/TechLead-War/wallet/internal/middleware"
)

// Handler exposes wallet HTTP endpoints. It receives the resolved owner id
// from the token middleware and translates engine errors to status codes.
type Handler struct {
	service *Service
}

// NewHandler builds a wallet HTTP handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

type walletResponse struct {
	ID        string    `json:"id"`
	OwnedBy   string    `json:"owned_by"`
	Status    string    `json:"status"`
	EnabledAt time.Time `json:"enabled_at"`
	Balance   int64     `json:"balance"`
}

type entryResponse struct {
	ID               string    `json:"id"`
	OwnedBy          string    `json:"owned_by"`
	Kind             string    `json:"kind"`
	Amount           int64     `json:"amount"`
	ResultingBalance int64     `json:"resulting_balance"`
	ReferenceID      string    `json:"reference_id"`
	Counterparty     string    `json:"counterparty"`
	OccurredAt       time.Time `json:"occurred_at"`
}

type amountRequest struct {
	Amount      int64  `json:"amount"`
	ReferenceID string `json:"reference_id"`
}

// Activate provisions or re-enables the caller's wallet.
func (h *Handler) Activate(c *fiber.Ctx) error {
	w, err := h.service.Activate(c.UserContext(), middleware.OwnerID(c))
	if err != nil {
		return mapError(err)
	}
	return c.Status(http.StatusCreated).JSON(toWalletResponse(w))
}

// Balance returns the caller's wallet state.
func (h *Handler) Balance(c *fiber.Ctx) error {
	w, err := h.service.Balance(c.UserContext(), middleware.OwnerID(c))
	if err != nil {
		return mapError(err)
	}
	return c.Status(http.StatusOK).JSON(toWalletResponse(w))
}

// Deposit credits the caller's wallet.
func (h *Handler) Deposit(c *fiber.Ctx) error {
	var req amountRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}
	entry, err := h.service.Deposit(c.UserContext(), middleware.OwnerID(c), req.Amount, req.ReferenceID)
	if err != nil {
		return mapError(err)
	}
	return c.Status(http.StatusCreated).JSON(toEntryResponse(entry))
}

// Withdraw debits the caller's wallet.
func (h *Handler) Withdraw(c *fiber.Ctx) error {
	var req amountRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}
	entry, err := h.service.Withdraw(c.UserContext(), middleware.OwnerID(c), req.Amount, req.ReferenceID)
	if err != nil {
		return mapError(err)
	}
	return c.Status(http.StatusCreated).JSON(toEntryResponse(entry))
}

// Deactivate disables the caller's wallet.
func (h *Handler) Deactivate(c *fiber.Ctx) error {
	w, err := h.service.Deactivate(c.UserContext(), middleware.OwnerID(c))
	if err != nil {
		return mapError(err)
	}
	return c.Status(http.StatusOK).JSON(toWalletResponse(w))
}

// Transactions lists the caller's ledger entries.
func (h *Handler) Transactions(c *fiber.Ctx) error {
	entries, err := h.service.Transactions(c.UserContext(), middleware.OwnerID(c))
	if err != nil {
		return mapError(err)
	}
	out := make([]entryResponse, 0, len(entries))
	for _, entry := range entries {
		out = append(out, toEntryResponse(entry))
	}
	return c.Status(http.StatusOK).JSON(fiber.Map{"transactions": out})
}

func toWalletResponse(w Wallet) walletResponse {
	return walletResponse{
		ID:        w.ID,
		OwnedBy:   w.OwnerID,
		Status:    w.Status(),
		EnabledAt: w.EnabledAt,
		Balance:   w.Balance,
	}
}

func toEntryResponse(e ledger.Entry) entryResponse {
	return entryResponse{
		ID:               e.ID,
		OwnedBy:          e.OwnerID,
		Kind:             string(e.Kind),
		Amount:           e.Amount,
		ResultingBalance: e.ResultingBalance,
		ReferenceID:      e.ReferenceID,
		Counterparty:     e.Counterparty,
		OccurredAt:       e.OccurredAt,
	}
}

func mapError(err error) error {
	switch {
	case errors.Is(err, ErrNotFound):
		return fiber.NewError(http.StatusNotFound, "wallet not found")
	case errors.Is(err, ErrDisabled):
		return fiber.NewError(http.StatusBadRequest, "wallet disabled")
	case errors.Is(err, ErrAlreadyDisabled):
		return fiber.NewError(http.StatusBadRequest, "wallet already disabled")
	case errors.Is(err, ErrInvalidAmount):
		return fiber.NewError(http.StatusBadRequest, "amount must be positive")
	case errors.Is(err, ErrInsufficientBalance):
		return fiber.NewError(http.StatusBadRequest, "insufficient balance")
	case errors.Is(err, ErrAlreadyExists), errors.Is(err, ErrConflict):
		return fiber.NewError(http.StatusConflict, "concurrent update, retry")
	default:
		return fiber.NewError(http.StatusInternalServerError, err.Error())
	}
}
