package game

import (
	"errors"
	"strconv"

	"coinflip-platform/internal/cache"
	"coinflip-platform/internal/guard"
	"coinflip-platform/internal/vault"
	"coinflip-platform/internal/wallet"

	"github.com/gofiber/fiber/v2"
)

func httpStatus(err error) int {
	switch {
	case errors.Is(err, ErrSessionNotFound):
		return 404
	case errors.Is(err, guard.ErrUnauthorized):
		return 403
	case errors.Is(err, ErrInvalidState), errors.Is(err, ErrDuplicateSession):
		return 409
	case errors.Is(err, vault.ErrInsufficientBankroll), errors.Is(err, wallet.ErrInsufficientFunds):
		return 402
	}
	return 400
}

func RegisterRoutes(r fiber.Router, service *Service, sessions *cache.Cache) {

	r.Post("/casino/stake", func(c *fiber.Ctx) error {
		type Req struct {
			Signers   []string `json:"signers"`
			Player    string   `json:"player"`
			SessionID uint64   `json:"session_id"`
			Side      string   `json:"side"`
			Amount    int64    `json:"amount"`
		}
		var body Req
		if err := c.BodyParser(&body); err != nil {
			return c.SendStatus(400)
		}
		side, err := ParseSide(body.Side)
		if err != nil {
			return c.Status(400).JSON(fiber.Map{"error": err.Error()})
		}

		sess, err := service.PlaceStake(guard.NewSigners(body.Signers...), body.Player, body.SessionID, side, body.Amount)
		if err != nil {
			return c.Status(httpStatus(err)).JSON(fiber.Map{"error": err.Error()})
		}

		sessions.SetSession(DeriveKey(sess.Player, TagSession, sess.SessionID), sess)
		return c.JSON(sess)
	})

	r.Post("/casino/resolve", func(c *fiber.Ctx) error {
		type Req struct {
			Signers   []string `json:"signers"`
			Player    string   `json:"player"`
			SessionID uint64   `json:"session_id"`
			Round     uint64   `json:"round"`
			Outcome   string   `json:"outcome"`
		}
		var body Req
		if err := c.BodyParser(&body); err != nil {
			return c.SendStatus(400)
		}
		outcome, err := ParseSide(body.Outcome)
		if err != nil {
			return c.Status(400).JSON(fiber.Map{"error": err.Error()})
		}

		sess, err := service.Resolve(guard.NewSigners(body.Signers...), body.Player, body.SessionID, body.Round, outcome)
		if err != nil {
			return c.Status(httpStatus(err)).JSON(fiber.Map{"error": err.Error()})
		}

		key := DeriveKey(body.Player, TagSession, body.SessionID)
		if sess.Status == Lose {
			sessions.DelSession(key)
		} else {
			sessions.SetSession(key, sess)
		}
		return c.JSON(sess)
	})

	r.Post("/casino/double", func(c *fiber.Ctx) error {
		type Req struct {
			Signers   []string `json:"signers"`
			Player    string   `json:"player"`
			SessionID uint64   `json:"session_id"`
		}
		var body Req
		if err := c.BodyParser(&body); err != nil {
			return c.SendStatus(400)
		}

		sess, err := service.Restake(guard.NewSigners(body.Signers...), body.Player, body.SessionID)
		if err != nil {
			return c.Status(httpStatus(err)).JSON(fiber.Map{"error": err.Error()})
		}

		sessions.SetSession(DeriveKey(body.Player, TagSession, body.SessionID), sess)
		return c.JSON(sess)
	})

	r.Post("/casino/claim", func(c *fiber.Ctx) error {
		type Req struct {
			Signers   []string `json:"signers"`
			Player    string   `json:"player"`
			SessionID uint64   `json:"session_id"`
		}
		var body Req
		if err := c.BodyParser(&body); err != nil {
			return c.SendStatus(400)
		}

		amount, err := service.ClaimReward(guard.NewSigners(body.Signers...), body.Player, body.SessionID)
		if err != nil {
			return c.Status(httpStatus(err)).JSON(fiber.Map{"error": err.Error()})
		}

		sessions.DelSession(DeriveKey(body.Player, TagSession, body.SessionID))
		return c.JSON(fiber.Map{"status": "claimed", "amount": amount})
	})

	r.Get("/casino/session/:player/:id", func(c *fiber.Ctx) error {
		id, err := strconv.ParseUint(c.Params("id"), 10, 64)
		if err != nil {
			return c.SendStatus(400)
		}
		player := c.Params("player")

		var cached Session
		if sessions.GetSession(DeriveKey(player, TagSession, id), &cached) {
			return c.JSON(&cached)
		}

		sess, err := service.Get(player, id)
		if err != nil {
			return c.Status(httpStatus(err)).JSON(fiber.Map{"error": err.Error()})
		}
		return c.JSON(sess)
	})

	r.Get("/casino/recent", func(c *fiber.Ctx) error {
		return c.JSON(service.Recent())
	})
}
