package api

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	pkgerrors "github.com/netguru/dyndns-updater/pkg/errors"
)

func (w webhook) Status(ctx *fiber.Ctx) error {
	w.logRequest("Status", ctx)

	status, err := w.provider.Status()
	if err != nil {
		if errors.Is(err, pkgerrors.ErrStatusUnavailable) {
			return ctx.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
				"error": err.Error(),
			})
		}

		w.logger.Error("Failed to get status",
			zap.String(logFieldError, err.Error()))
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error":   "Failed to retrieve status",
			"details": err.Error(),
		})
	}

	w.logger.Debug("Returning status",
		zap.Int("cycle", status.Cycle),
		zap.String("outcome", status.Outcome))

	ctx.Response().Header.Set(contentTypeHeader, contentTypeJSON)
	return ctx.Status(fiber.StatusOK).JSON(status)
}
