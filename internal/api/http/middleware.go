package http

import (
	"context"
	"runtime/debug"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/stay-fcsd/ecommerce-api/internal/observability"
	apperrors "github.com/stay-fcsd/ecommerce-api/pkg/util"
)

// errorResponse is the wire shape for all failed requests.
type errorResponse struct {
	Status     int                    `json:"status"`
	Message    string                 `json:"message"`
	Errors     []apperrors.FieldError `json:"errors,omitempty"`
	StackTrace string                 `json:"stackTrace,omitempty"`
}

// RegisterMiddlewares attaches global middlewares such as error handling and logging.
func RegisterMiddlewares(app *fiber.App, logger *zap.Logger, metrics *observability.Metrics, timeout time.Duration, debugErrors bool) {
	if timeout > 0 {
		app.Use(requestTimeoutMiddleware(timeout))
	}
	app.Use(errorHandlingMiddleware(logger, metrics, debugErrors))
	app.Use(observability.RequestLogger(logger, metrics))
}

func requestTimeoutMiddleware(timeout time.Duration) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ctx, cancel := context.WithTimeout(c.UserContext(), timeout)
		defer cancel()
		c.SetUserContext(ctx)
		return c.Next()
	}
}

// errorHandlingMiddleware recovers panics and translates typed failures into
// the {status, message, errors} body. Stack traces are only attached when the
// debug flag is on and the caller asked with ?trace=true.
func errorHandlingMiddleware(logger *zap.Logger, metrics *observability.Metrics, debugErrors bool) fiber.Handler {
	return func(c *fiber.Ctx) (err error) {
		defer func() {
			var stack []byte
			if r := recover(); r != nil {
				stack = debug.Stack()
				logger.Error("panic recovered", zap.Any("panic", r), zap.ByteString("stack", stack))
				err = apperrors.NewInternalError(nil)
			}
			if err == nil {
				return
			}

			domainErr := apperrors.ToDomainError(err)
			metrics.RecordError(c.Path(), c.Method(), domainErr.Code)
			if domainErr.HTTPStatus >= 500 {
				logger.Error("request failed", zap.Error(domainErr))
			}

			response := errorResponse{
				Status:  domainErr.HTTPStatus,
				Message: domainErr.Message,
				Errors:  domainErr.FieldErrors,
			}
			if debugErrors && c.Query("trace") == "true" {
				if len(stack) > 0 {
					response.StackTrace = string(stack)
				} else if domainErr.Err != nil {
					response.StackTrace = domainErr.Err.Error()
				}
			}

			c.Status(domainErr.HTTPStatus)
			_ = c.JSON(response)
			err = nil
		}()
		return c.Next()
	}
}
