package handlers

import (
	"errors"
	"log"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// ErrorHandler renders every handler error as a {message} body. Store
// constraint violations surface as 400 with a readable message rather than
// leaking driver errors.
func ErrorHandler(c *fiber.Ctx, err error) error {
	var fiberErr *fiber.Error
	switch {
	case errors.As(err, &fiberErr):
		return c.Status(fiberErr.Code).JSON(fiber.Map{"message": fiberErr.Message})
	case errors.Is(err, gorm.ErrRecordNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": "record not found"})
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "a record with the same unique value already exists"})
	case errors.Is(err, gorm.ErrForeignKeyViolated):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "referenced record does not exist"})
	default:
		log.Printf("unhandled error on %s %s: %v", c.Method(), c.Path(), err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "internal server error"})
	}
}
