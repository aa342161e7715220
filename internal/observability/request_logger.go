package observability

import (
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	apperrors "github.com/spec-kit/helpdesk/pkg/util/errorutil"
)

// AccountIDLocal is the fiber.Ctx locals key the guard fills with the caller's account id.
const AccountIDLocal = "account_id"

// RequestLogger logs every request and records HTTP metrics. A failed request is reported with
// the status its error will be rendered with.
func RequestLogger(logger *zap.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()

		status := c.Response().StatusCode()
		if err != nil {
			status = apperrors.ToDomainError(err).HTTPStatus
		}
		route := c.Route().Path
		elapsed := time.Since(start)

		HTTPRequestsTotal.WithLabelValues(c.Method(), route, strconv.Itoa(status)).Inc()
		HTTPRequestDurationSeconds.WithLabelValues(c.Method(), route).Observe(elapsed.Seconds())

		fields := []zap.Field{
			zap.String("method", c.Method()),
			zap.String("path", c.Path()),
			zap.Int("status", status),
			zap.Duration("latency", elapsed),
			zap.String("request_id", c.GetRespHeader(fiber.HeaderXRequestID)),
		}
		if accountID, ok := c.Locals(AccountIDLocal).(string); ok && accountID != "" {
			fields = append(fields, zap.String("account_id", accountID))
		}
		logger.Info("request", fields...)
		return err
	}
}
