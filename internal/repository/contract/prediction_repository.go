package contract

import (
	"context"

	"student-risk-be/internal/entity"
	"student-risk-be/internal/repository/specification"
)

type PredictionRepository interface {
	Create(ctx context.Context, record *entity.PredictionRecord) error
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.PredictionRecord, error)
	Count(ctx context.Context, specs ...specification.Specification) (int64, error)
}
