package serverutils

import (
	"errors"
	"strings"

	"student-risk-be/internal/pkg/logger"

	"github.com/gofiber/fiber/v2"
)

// ErrorHandler turns errors that escaped a handler into a response. API routes get the
// BaseResponse envelope, pages get plain text. Internal details are logged, never sent.
func ErrorHandler(log logger.ILogger) fiber.ErrorHandler {
	return func(ctx *fiber.Ctx, err error) error {
		code := fiber.StatusInternalServerError
		message := "Internal Server Error"

		var fe *fiber.Error
		var ve *ValidationError
		switch {
		case errors.As(err, &fe):
			code = fe.Code
			message = fe.Message
		case errors.As(err, &ve):
			code = fiber.StatusBadRequest
			message = ve.Error()
		default:
			log.Error("HTTP", "Unhandled error", map[string]interface{}{
				"error":  err.Error(),
				"method": ctx.Method(),
				"path":   ctx.Path(),
			})
		}

		if strings.HasPrefix(ctx.Path(), "/api") {
			return ctx.Status(code).JSON(ErrorResponse(code, message))
		}
		ctx.Set(fiber.HeaderContentType, fiber.MIMETextPlainCharsetUTF8)
		return ctx.Status(code).SendString(message)
	}
}

// ErrorHandlerMiddleware applies ErrorHandler inside the middleware chain so later
// middleware (metrics, tracing) observe the final status.
func ErrorHandlerMiddleware(log logger.ILogger) fiber.Handler {
	handle := ErrorHandler(log)
	return func(ctx *fiber.Ctx) error {
		if err := ctx.Next(); err != nil {
			return handle(ctx, err)
		}
		return nil
	}
}
