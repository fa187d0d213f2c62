package vault

import (
	"errors"

	"coinflip-platform/internal/guard"

	"github.com/gofiber/fiber/v2"
)

func RegisterRoutes(app fiber.Router, service *Service) {

	app.Post("/bankroll/withdraw", func(c *fiber.Ctx) error {
		type Req struct {
			Signers   []string `json:"signers"`
			Recipient string   `json:"recipient"`
			Amount    int64    `json:"amount"`
		}
		var r Req
		if err := c.BodyParser(&r); err != nil {
			return c.SendStatus(400)
		}
		if err := service.Withdraw(guard.NewSigners(r.Signers...), r.Recipient, r.Amount); err != nil {
			status := 400
			if errors.Is(err, guard.ErrUnauthorized) {
				status = 403
			} else if errors.Is(err, ErrInsufficientBankroll) {
				status = 402
			}
			return c.Status(status).JSON(fiber.Map{"error": err.Error()})
		}
		return c.JSON(fiber.Map{"status": "withdrawn"})
	})

	app.Post("/bankroll/deposit", func(c *fiber.Ctx) error {
		type Req struct {
			From   string `json:"from"`
			Amount int64  `json:"amount"`
		}
		var r Req
		if err := c.BodyParser(&r); err != nil {
			return c.SendStatus(400)
		}
		if err := service.DepositBankroll(r.From, r.Amount); err != nil {
			return c.Status(400).JSON(fiber.Map{"error": err.Error()})
		}
		return c.JSON(fiber.Map{"status": "deposited"})
	})

	app.Get("/bankroll", func(c *fiber.Ctx) error {
		balance, err := service.BankrollBalance()
		if err != nil {
			return c.Status(400).JSON(fiber.Map{"error": err.Error()})
		}
		return c.JSON(fiber.Map{"balance": balance})
	})
}
