package authority

import (
	"errors"

	"coinflip-platform/internal/guard"

	"github.com/gofiber/fiber/v2"
)

func httpStatus(err error) int {
	switch {
	case errors.Is(err, guard.ErrUnauthorized):
		return 403
	case errors.Is(err, ErrAlreadyInitialized):
		return 409
	case errors.Is(err, ErrNotInitialized):
		return 404
	}
	return 400
}

func RegisterRoutes(app fiber.Router, service *Service) {

	app.Post("/registry/initialize", func(c *fiber.Ctx) error {
		type Req struct {
			Signers        []string `json:"signers"`
			OperationAdmin string   `json:"operation_admin"`
			FinancialAdmin string   `json:"financial_admin"`
			UpdateAdmin    string   `json:"update_admin"`
		}
		var r Req
		if err := c.BodyParser(&r); err != nil {
			return c.SendStatus(400)
		}
		reg, err := service.Initialize(guard.NewSigners(r.Signers...), r.OperationAdmin, r.FinancialAdmin, r.UpdateAdmin)
		if err != nil {
			return c.Status(httpStatus(err)).JSON(fiber.Map{"error": err.Error()})
		}
		return c.JSON(reg)
	})

	app.Get("/registry", func(c *fiber.Ctx) error {
		reg, err := service.Get()
		if err != nil {
			return c.Status(httpStatus(err)).JSON(fiber.Map{"error": err.Error()})
		}
		return c.JSON(reg)
	})

	app.Post("/registry/rtp", func(c *fiber.Ctx) error {
		type Req struct {
			Signers []string `json:"signers"`
			Rtp     int64    `json:"rtp"`
		}
		var r Req
		if err := c.BodyParser(&r); err != nil {
			return c.SendStatus(400)
		}
		if err := service.SetRtp(guard.NewSigners(r.Signers...), r.Rtp); err != nil {
			return c.Status(httpStatus(err)).JSON(fiber.Map{"error": err.Error()})
		}
		return c.JSON(fiber.Map{"status": "updated"})
	})

	app.Post("/registry/min-bet", func(c *fiber.Ctx) error {
		type Req struct {
			Signers []string `json:"signers"`
			Amount  int64    `json:"amount"`
		}
		var r Req
		if err := c.BodyParser(&r); err != nil {
			return c.SendStatus(400)
		}
		if err := service.SetMinBetAmount(guard.NewSigners(r.Signers...), r.Amount); err != nil {
			return c.Status(httpStatus(err)).JSON(fiber.Map{"error": err.Error()})
		}
		return c.JSON(fiber.Map{"status": "updated"})
	})

	app.Post("/registry/max-win", func(c *fiber.Ctx) error {
		type Req struct {
			Signers []string `json:"signers"`
			Amount  int64    `json:"amount"`
		}
		var r Req
		if err := c.BodyParser(&r); err != nil {
			return c.SendStatus(400)
		}
		if err := service.SetMaxWinAmount(guard.NewSigners(r.Signers...), r.Amount); err != nil {
			return c.Status(httpStatus(err)).JSON(fiber.Map{"error": err.Error()})
		}
		return c.JSON(fiber.Map{"status": "updated"})
	})

	rotate := func(set func(guard.Signers, string) error) fiber.Handler {
		return func(c *fiber.Ctx) error {
			type Req struct {
				Signers []string `json:"signers"`
				ID      string   `json:"id"`
			}
			var r Req
			if err := c.BodyParser(&r); err != nil {
				return c.SendStatus(400)
			}
			if err := set(guard.NewSigners(r.Signers...), r.ID); err != nil {
				return c.Status(httpStatus(err)).JSON(fiber.Map{"error": err.Error()})
			}
			return c.JSON(fiber.Map{"status": "updated"})
		}
	}

	app.Post("/registry/operation-authority", rotate(service.SetOperationAuthority))
	app.Post("/registry/finance-authority", rotate(service.SetFinanceAuthority))
	app.Post("/registry/update-authority", rotate(service.SetUpdateAuthority))
}
