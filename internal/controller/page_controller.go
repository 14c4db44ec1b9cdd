package controller

import (
	"errors"
	"strconv"
	"strings"

	"student-risk-be/internal/dto"
	"student-risk-be/internal/entity"
	"student-risk-be/internal/pkg/serverutils"
	"student-risk-be/internal/service"
	"student-risk-be/pkg/predictor"

	"github.com/gofiber/fiber/v2"
)

const msgPredictionFailed = "Error making prediction"

type IPageController interface {
	RegisterRoutes(r fiber.Router)
	Index(ctx *fiber.Ctx) error
	Predict(ctx *fiber.Ctx) error
	Profile(ctx *fiber.Ctx) error
}

type pageController struct {
	predictions service.IPredictionService
	constraints *predictor.ConstraintTable
	sessions    *serverutils.SessionManager
}

func NewPageController(predictions service.IPredictionService, constraints *predictor.ConstraintTable, sessions *serverutils.SessionManager) IPageController {
	return &pageController{
		predictions: predictions,
		constraints: constraints,
		sessions:    sessions,
	}
}

func (c *pageController) RegisterRoutes(r fiber.Router) {
	protected := c.sessions.RequireLogin()
	r.Get("/", protected, c.Index)
	r.Post("/", protected, c.Predict)
	r.Get("/profile", protected, c.Profile)
}

type formOption struct {
	Value    int
	Selected bool
}

type formField struct {
	Id      string
	Name    string
	Label   string
	Options []formOption
	Min     float64
	Max     float64
	Value   string
}

// formFields lays out one input per model feature, keeping what the user submitted.
func (c *pageController) formFields(submitted map[string]string) []formField {
	constraints := c.constraints.Constraints()
	fields := make([]formField, 0, len(constraints))
	for i, fc := range constraints {
		value := submitted[fc.Name]
		f := formField{
			Id:    "feature-" + strconv.Itoa(i),
			Name:  fc.Name,
			Label: fc.Label,
			Value: value,
		}
		if fc.Kind == predictor.KindCategorical {
			for _, code := range fc.Allowed {
				f.Options = append(f.Options, formOption{Value: code, Selected: value == strconv.Itoa(code)})
			}
		} else {
			f.Min, f.Max = fc.Min, fc.Max
		}
		fields = append(fields, f)
	}
	return fields
}

func (c *pageController) Index(ctx *fiber.Ctx) error {
	return render(ctx, c.sessions, "index", "Predict", fiber.Map{
		"Fields": c.formFields(nil),
	})
}

func (c *pageController) Predict(ctx *fiber.Ctx) error {
	submitted := make(map[string]string, c.constraints.Len())
	raw := make(predictor.RawInput, c.constraints.Len())
	for _, name := range c.constraints.Names() {
		value := strings.TrimSpace(ctx.FormValue(name))
		submitted[name] = value
		if value != "" {
			raw[name] = value
		}
	}

	data := fiber.Map{"Fields": c.formFields(submitted)}

	userId := c.sessions.Current(ctx).UserId
	prediction, err := c.predictions.Predict(ctx.UserContext(), raw, &userId, entity.PredictionSourceForm)
	switch {
	case err == nil:
		data["Prediction"] = prediction.Summary()
		data["PredictionClass"] = "danger"
		if prediction.Label == predictor.LabelGraduate {
			data["PredictionClass"] = "success"
		}
	case errors.Is(err, predictor.ErrInvalidInput):
		data["Error"] = err.Error()
	default:
		data["Error"] = msgPredictionFailed
	}

	return render(ctx, c.sessions, "index", "Predict", data)
}

func (c *pageController) Profile(ctx *fiber.Ctx) error {
	session := c.sessions.Current(ctx)
	count, records, err := c.predictions.History(ctx.UserContext(), session.UserId)
	if err != nil {
		return err
	}

	profile := dto.ProfileResponse{
		Email:           session.Email,
		PredictionCount: count,
		Recent:          make([]dto.PredictionHistoryItem, 0, len(records)),
	}
	for _, r := range records {
		profile.Recent = append(profile.Recent, dto.PredictionHistoryItem{
			Label:      r.Label,
			Confidence: r.Confidence,
			Source:     string(r.Source),
			CreatedAt:  r.CreatedAt,
		})
	}

	return render(ctx, c.sessions, "profile", "Profile", fiber.Map{"Profile": profile})
}
