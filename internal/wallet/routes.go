package wallet

import "github.com/gofiber/fiber/v2"

func RegisterRoutes(app fiber.Router, service *Service) {

	app.Post("/wallet/deposit", func(c *fiber.Ctx) error {
		type Req struct {
			Player string `json:"player"`
			Amount int64  `json:"amount"`
		}
		var r Req
		c.BodyParser(&r)
		err := service.Deposit(r.Player, r.Amount)
		if err != nil {
			return c.Status(400).JSON(fiber.Map{"error": err.Error()})
		}
		return c.JSON(fiber.Map{"status": "credited"})
	})

	app.Get("/wallet/balance/:player", func(c *fiber.Ctx) error {
		b, err := service.Balance(c.Params("player"))
		if err != nil {
			return c.Status(404).JSON(fiber.Map{"error": "not found"})
		}
		return c.JSON(fiber.Map{"balance": b})
	})
}
