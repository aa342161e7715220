package respond

import (
	"github.com/gofiber/fiber/v2"
)

// Envelope is the body of every successful response.
type Envelope struct {
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
	Status  int    `json:"status"`
}

// OK writes a 200 envelope.
func OK(c *fiber.Ctx, message string, data any) error {
	return write(c, fiber.StatusOK, message, data)
}

// Created writes a 201 envelope.
func Created(c *fiber.Ctx, message string, data any) error {
	return write(c, fiber.StatusCreated, message, data)
}

// NoContent writes an empty 204.
func NoContent(c *fiber.Ctx) error {
	return c.SendStatus(fiber.StatusNoContent)
}

func write(c *fiber.Ctx, status int, message string, data any) error {
	return c.Status(status).JSON(Envelope{Message: message, Data: data, Status: status})
}
