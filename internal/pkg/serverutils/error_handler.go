package serverutils

import (
	"errors"
	"log"

	"github.com/gofiber/fiber/v2"
)

// ErrorHandler is installed as fiber.Config.ErrorHandler
func ErrorHandler(ctx *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	message := "Internal server error"

	var fe *fiber.Error
	if errors.As(err, &fe) {
		code = fe.Code
		message = fe.Message
	} else {
		log.Printf("[ERROR] %s %s: %v", ctx.Method(), ctx.Path(), err)
	}

	return ctx.Status(code).JSON(ErrorResponse(code, message))
}

// ErrorHandlerMiddleware turns errors returned by handlers further down the
// chain into the standard envelope before the response is written.
func ErrorHandlerMiddleware() fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		if err := ctx.Next(); err != nil {
			return ErrorHandler(ctx, err)
		}
		return nil
	}
}
