package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/TechLead-War/wallet/internal/wallet"
)

// RegisterWalletRoutes wires the wallet lifecycle and ledger endpoints.
func RegisterWalletRoutes(r fiber.Router, h *wallet.Handler) {
	r.Post("/wallet", h.Activate)
	r.Get("/wallet", h.Balance)
	r.Patch("/wallet", h.Deactivate)
	r.Post("/wallet/deposits", h.Deposit)
	r.Post("/wallet/withdrawals", h.Withdraw)
	r.Get("/wallet/transactions", h.Transactions)
}
