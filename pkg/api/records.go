package api

import (
	"encoding/json"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

func (w webhook) Records(ctx *fiber.Ctx) error {
	w.logRequest("Records", ctx)

	records, err := w.provider.Records(ctx.UserContext())
	if err != nil {
		w.logger.Error("Failed to get records from provider",
			zap.Error(err),
			zap.String("error_type", "provider_error"))

		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error":   "Failed to retrieve DNS records",
			"details": err.Error(),
		})
	}

	// If no records were returned, log a warning but return an empty array (not an error)
	if len(records) == 0 {
		w.logger.Warn("No records returned from provider")
	}

	w.logger.Debug("Returning records",
		zap.Int("count", len(records)))

	response, err := json.Marshal(records)
	if err != nil {
		w.logger.Error("Failed to marshal records response",
			zap.Error(err))
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to marshal records response",
		})
	}

	ctx.Response().Header.Set(varyHeader, "Accept-Encoding")
	ctx.Response().Header.Set(contentTypeHeader, contentTypeJSON)

	return ctx.Send(response)
}
