package controllers

import (
	"strconv"
	"tutorlink_go/services"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
)

// serviceError maps service-layer errors onto the API error shape. State
// conflicts echo the entity's current status so clients can resync.
func serviceError(c *fiber.Ctx, err error) error {
	switch e := err.(type) {
	case *services.NotFoundError:
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"success": false,
			"message": e.Error(),
		})
	case *services.StateConflictError:
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"message": e.Error(),
			"current": e.Current,
		})
	case *services.CapacityError:
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success":   false,
			"message":   e.Error(),
			"available": e.Available,
			"requested": e.Requested,
		})
	default:
		logrus.WithError(err).Error("Unhandled service error")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"message": "Internal server error",
		})
	}
}

// paramID parses a numeric path parameter.
func paramID(c *fiber.Ctx, name string) (uint, error) {
	raw := c.Params(name)
	id, err := strconv.ParseUint(raw, 10, 32)
	if err != nil {
		return 0, fiber.NewError(fiber.StatusBadRequest, "Invalid "+name)
	}
	return uint(id), nil
}

// badRequest renders a 400 with a plain message.
func badRequest(c *fiber.Ctx, message string) error {
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
		"success": false,
		"message": message,
	})
}

// validationFailed renders field-level validation errors.
func validationFailed(c *fiber.Ctx, errs interface{}) error {
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
		"success": false,
		"message": "Validation failed",
		"errors":  errs,
	})
}
