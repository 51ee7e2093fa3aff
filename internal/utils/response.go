package utils

import "github.com/gofiber/fiber/v2"

func JSONSuccess(c *fiber.Ctx, status int, payload interface{}) error {
	return c.Status(status).JSON(payload)
}

func JSONError(c *fiber.Ctx, status int, msg string) error {
	return c.Status(status).JSON(fiber.Map{"error": msg})
}

// JSONErrorDetails adds the underlying cause, as the upload endpoint does.
func JSONErrorDetails(c *fiber.Ctx, status int, msg string, err error) error {
	body := fiber.Map{"error": msg}
	if err != nil {
		body["details"] = err.Error()
	}
	return c.Status(status).JSON(body)
}
