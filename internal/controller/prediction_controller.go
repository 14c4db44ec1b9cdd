package controller

import (
	"bytes"
	"encoding/json"
	"errors"

	"student-risk-be/internal/dto"
	"student-risk-be/internal/entity"
	"student-risk-be/internal/pkg/serverutils"
	"student-risk-be/internal/service"
	"student-risk-be/pkg/predictor"

	"github.com/gofiber/fiber/v2"
)

const (
	msgBodyNotObject    = "Request body must be a JSON object"
	msgAPIPredictFailed = "Prediction failed"
)

type IPredictionController interface {
	RegisterRoutes(api fiber.Router, guards ...fiber.Handler)
	Predict(ctx *fiber.Ctx) error
	Features(ctx *fiber.Ctx) error
}

type predictionController struct {
	service service.IPredictionService
}

func NewPredictionController(service service.IPredictionService) IPredictionController {
	return &predictionController{service: service}
}

// RegisterRoutes mounts the prediction API. guards run before /predict only.
func (c *predictionController) RegisterRoutes(api fiber.Router, guards ...fiber.Handler) {
	handlers := append(guards, c.Predict)
	api.Post("/predict", handlers...)
	api.Get("/features", c.Features)
}

func (c *predictionController) Predict(ctx *fiber.Ctx) error {
	var raw predictor.RawInput
	dec := json.NewDecoder(bytes.NewReader(ctx.Body()))
	dec.UseNumber()
	if err := dec.Decode(&raw); err != nil || raw == nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(dto.PredictErrorResponse{Error: msgBodyNotObject})
	}

	var userId *uint
	if id, ok := ctx.Locals(serverutils.LocalUserID).(uint); ok {
		userId = &id
	}

	prediction, err := c.service.Predict(ctx.UserContext(), raw, userId, entity.PredictionSourceAPI)
	if err != nil {
		if errors.Is(err, predictor.ErrInvalidInput) {
			return ctx.Status(fiber.StatusBadRequest).JSON(dto.PredictErrorResponse{Error: err.Error()})
		}
		return ctx.Status(fiber.StatusInternalServerError).JSON(dto.PredictErrorResponse{Error: msgAPIPredictFailed})
	}

	return ctx.JSON(dto.PredictResponse{
		Prediction: string(prediction.Label),
		Confidence: prediction.Confidence,
	})
}

func (c *predictionController) Features(ctx *fiber.Ctx) error {
	return ctx.JSON(c.service.Features())
}
