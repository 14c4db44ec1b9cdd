package service

import (
	"context"
	"errors"
	"time"

	"student-risk-be/internal/dto"
	"student-risk-be/internal/entity"
	"student-risk-be/internal/pkg/logger"
	"student-risk-be/internal/pkg/metrics"
	"student-risk-be/internal/repository/specification"
	"student-risk-be/internal/repository/unitofwork"
	"student-risk-be/pkg/events"
	"student-risk-be/pkg/predictor"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

// RecentPredictions is how many records the profile page lists.
const RecentPredictions = 5

type IPredictionService interface {
	Predict(ctx context.Context, raw predictor.RawInput, userId *uint, source entity.PredictionSource) (*predictor.Prediction, error)
	Features() *dto.FeaturesResponse
	History(ctx context.Context, userId uint) (int64, []*entity.PredictionRecord, error)
	ModelVersion() string
}

type predictionService struct {
	predictor      *predictor.Predictor
	uowFactory     unitofwork.RepositoryFactory
	eventPublisher events.Publisher
	metrics        *metrics.Metrics
	logger         logger.ILogger
}

func NewPredictionService(
	p *predictor.Predictor,
	uowFactory unitofwork.RepositoryFactory,
	eventPublisher events.Publisher,
	m *metrics.Metrics,
	log logger.ILogger,
) IPredictionService {
	return &predictionService{
		predictor:      p,
		uowFactory:     uowFactory,
		eventPublisher: eventPublisher,
		metrics:        m,
		logger:         log,
	}
}

func (s *predictionService) ModelVersion() string {
	return s.predictor.Version()
}

// Predict returns the predictor's error unchanged so callers can tell validation
// failures (shown verbatim) from pipeline and model failures (shown generically).
func (s *predictionService) Predict(ctx context.Context, raw predictor.RawInput, userId *uint, source entity.PredictionSource) (*predictor.Prediction, error) {
	ctx, span := otel.Tracer("prediction").Start(ctx, "prediction.Predict")
	defer span.End()
	span.SetAttributes(
		attribute.String("prediction.source", string(source)),
		attribute.String("model.version", s.predictor.Version()),
	)

	start := time.Now()
	values, err := s.predictor.Validate(raw)
	if err != nil {
		s.metrics.PredictionFailed("validation")
		span.SetStatus(codes.Error, "validation failed")
		return nil, err
	}

	prediction, err := s.predictor.PredictValues(values)
	if err != nil {
		kind := "model"
		if errors.Is(err, predictor.ErrPreprocessing) {
			kind = "preprocessing"
		}
		s.metrics.PredictionFailed(kind)
		span.RecordError(err)
		span.SetStatus(codes.Error, kind+" failed")
		s.logger.Error("PREDICTION", "Prediction failed", map[string]interface{}{
			"kind":   kind,
			"source": string(source),
			"error":  err,
		})
		return nil, err
	}

	s.metrics.ObservePrediction(string(prediction.Label), string(source), time.Since(start))
	span.SetAttributes(
		attribute.String("prediction.label", string(prediction.Label)),
		attribute.Float64("prediction.confidence", prediction.Confidence),
	)

	s.record(ctx, values, prediction, userId, source)
	return prediction, nil
}

// record persists the outcome and emits the audit event. Failures here never reach the caller.
func (s *predictionService) record(ctx context.Context, values predictor.Values, prediction *predictor.Prediction, userId *uint, source entity.PredictionSource) {
	rec := &entity.PredictionRecord{
		UserId:       userId,
		Source:       source,
		Label:        string(prediction.Label),
		Confidence:   prediction.Confidence,
		ModelVersion: s.predictor.Version(),
		Features:     values,
		CreatedAt:    time.Now(),
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	if err := uow.PredictionRepository().Create(ctx, rec); err != nil {
		s.logger.Warn("PREDICTION", "Failed to store prediction record", map[string]interface{}{
			"error": err.Error(),
		})
	}

	if s.eventPublisher == nil {
		return
	}
	data := map[string]interface{}{
		"label":         rec.Label,
		"confidence":    rec.Confidence,
		"source":        string(source),
		"model_version": rec.ModelVersion,
	}
	if userId != nil {
		data["user_id"] = *userId
	}
	if err := s.eventPublisher.Publish(ctx, events.New(events.PredictionMade, data)); err != nil {
		s.logger.Warn("PREDICTION", "Failed to publish event", map[string]interface{}{
			"error": err.Error(),
		})
	}
}

func (s *predictionService) Features() *dto.FeaturesResponse {
	constraints := s.predictor.Constraints().Constraints()
	features := make([]dto.FeatureResponse, 0, len(constraints))
	for _, c := range constraints {
		f := dto.FeatureResponse{
			Name:  c.Name,
			Kind:  string(c.Kind),
			Label: c.Label,
		}
		if c.Kind == predictor.KindCategorical {
			f.Allowed = c.Allowed
		} else {
			lo, hi := c.Min, c.Max
			f.Min, f.Max = &lo, &hi
		}
		features = append(features, f)
	}
	return &dto.FeaturesResponse{
		ModelVersion: s.predictor.Version(),
		Features:     features,
	}
}

func (s *predictionService) History(ctx context.Context, userId uint) (int64, []*entity.PredictionRecord, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	owner := specification.UserOwnedBy{UserID: userId}

	count, err := uow.PredictionRepository().Count(ctx, owner)
	if err != nil {
		return 0, nil, err
	}
	recent, err := uow.PredictionRepository().FindAll(ctx, owner, specification.Latest{Limit: RecentPredictions})
	if err != nil {
		return 0, nil, err
	}
	return count, recent, nil
}
