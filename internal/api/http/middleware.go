package http

import (
	"context"
	"runtime/debug"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"go.uber.org/zap"

	"github.com/spec-kit/helpdesk/internal/config"
	"github.com/spec-kit/helpdesk/internal/observability"
	apperrors "github.com/spec-kit/helpdesk/pkg/util/errorutil"
)

// RegisterMiddlewares attaches global middlewares: request id, security headers, CORS, the
// request timeout, the error envelope and request logging.
func RegisterMiddlewares(app *fiber.App, cfg config.AppConfig, logger *zap.Logger) {
	app.Use(requestid.New())
	app.Use(helmet.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: strings.Join(cfg.CORSOrigins, ","),
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
	}))
	if timeout := cfg.RequestTimeout(); timeout > 0 {
		app.Use(requestTimeoutMiddleware(timeout))
	}
	app.Use(errorHandlingMiddleware(logger))
	app.Use(observability.RequestLogger(logger))
}

func requestTimeoutMiddleware(timeout time.Duration) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ctx, cancel := context.WithTimeout(c.UserContext(), timeout)
		defer cancel()
		c.SetUserContext(ctx)
		return c.Next()
	}
}

// errorHandlingMiddleware renders every returned error and recovered panic as
// {"error":{"title","message"},"status"}.
func errorHandlingMiddleware(logger *zap.Logger) fiber.Handler {
	return func(c *fiber.Ctx) (err error) {
		defer func() {
			if r := recover(); r != nil {
				logger.Error("panic recovered", zap.Any("panic", r), zap.ByteString("stack", debug.Stack()))
				err = apperrors.NewInternalError(nil)
			}
			if err != nil {
				err = writeError(c, logger, err)
			}
		}()
		return c.Next()
	}
}

func writeError(c *fiber.Ctx, logger *zap.Logger, err error) error {
	domainErr := apperrors.ToDomainError(err)
	observability.HTTPErrorsTotal.WithLabelValues(c.Method(), c.Route().Path, domainErr.Code).Inc()
	if domainErr.HTTPStatus >= fiber.StatusInternalServerError {
		logger.Error("request failed",
			zap.String("path", c.Path()),
			zap.String("code", domainErr.Code),
			zap.Error(domainErr))
	}

	body := fiber.Map{
		"error": fiber.Map{
			"title":   domainErr.Title,
			"message": domainErr.Message,
		},
		"status": domainErr.HTTPStatus,
	}
	if len(domainErr.Details) > 0 && domainErr.HTTPStatus < fiber.StatusInternalServerError {
		body["error"].(fiber.Map)["details"] = domainErr.Details
	}
	return c.Status(domainErr.HTTPStatus).JSON(body)
}
