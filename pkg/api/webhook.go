package api

import (
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// webhook groups the route handlers sharing the provider and logger.
type webhook struct {
	provider StatusProvider
	logger   *zap.Logger
}

// Health answers liveness probes.
func Health(ctx *fiber.Ctx) error {
	return ctx.Status(fiber.StatusOK).JSON(Message{Message: "ok"})
}

func (w webhook) logRequest(name string, ctx *fiber.Ctx) {
	w.logger.Info(name+" endpoint called",
		zap.String("remote_ip", ctx.IP()),
		zap.String("method", ctx.Method()),
		zap.String("path", ctx.Path()),
		zap.String("user_agent", string(ctx.Request().Header.UserAgent())),
		zap.String("request_id", ctx.GetRespHeader("X-Request-ID", "-")))
}
