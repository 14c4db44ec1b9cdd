package controller

import (
	"student-risk-be/internal/dto"
	"student-risk-be/internal/pkg/metrics"
	"student-risk-be/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
)

type IHealthController interface {
	RegisterRoutes(r fiber.Router)
	Health(ctx *fiber.Ctx) error
}

type healthController struct {
	predictions service.IPredictionService
	metrics     *metrics.Metrics
}

func NewHealthController(predictions service.IPredictionService, m *metrics.Metrics) IHealthController {
	return &healthController{predictions: predictions, metrics: m}
}

func (c *healthController) RegisterRoutes(r fiber.Router) {
	r.Get("/healthz", c.Health)
	r.Get("/metrics", adaptor.HTTPHandler(c.metrics.Handler()))
}

func (c *healthController) Health(ctx *fiber.Ctx) error {
	return ctx.JSON(dto.HealthResponse{
		Status:       "ok",
		ModelVersion: c.predictions.ModelVersion(),
	})
}
