package apiresponse

import (
	"github.com/gofiber/fiber/v2"
)

// List writes a collection envelope. A nil slice is sent as [].
func List[T any](c *fiber.Ctx, items []T, meta any) error {
	if items == nil {
		items = []T{}
	}
	body := fiber.Map{"data": items}
	if meta != nil {
		body["meta"] = meta
	}
	return c.Status(fiber.StatusOK).JSON(body)
}

// ListError keeps the collection shape on failure so clients can always
// iterate over data.
func ListError(c *fiber.Ctx, status int, message string) error {
	return c.Status(status).JSON(fiber.Map{"data": []any{}, "message": message})
}

func Item(c *fiber.Ctx, status int, item any) error {
	return c.Status(status).JSON(fiber.Map{"data": item})
}

func Error(c *fiber.Ctx, status int, message string, fields ...string) error {
	body := fiber.Map{"message": message}
	if len(fields) > 0 {
		body["fields"] = fields
	}
	return c.Status(status).JSON(body)
}

// Denied answers an authentication or authorization failure. Reads get the
// collection shape so list clients can still iterate over data.
func Denied(c *fiber.Ctx, status int, message string) error {
	if c.Method() == fiber.MethodGet {
		return ListError(c, status, message)
	}
	return Error(c, status, message)
}
