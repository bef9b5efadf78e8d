package api

import (
	"encoding/json"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

func (w webhook) GetDomainFilter(ctx *fiber.Ctx) error {
	w.logRequest("GetDomainFilter", ctx)

	domainFilter, err := json.Marshal(w.provider.GetDomainFilter())
	if err != nil {
		w.logger.Error("Failed to marshal domain filter response",
			zap.Error(err))
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error":   "Failed to marshal domain filter response",
			"details": err.Error(),
		})
	}
	ctx.Response().Header.Set(contentTypeHeader, contentTypeJSON)

	return ctx.Send(domainFilter)
}
