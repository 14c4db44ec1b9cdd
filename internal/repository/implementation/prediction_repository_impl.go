package implementation

import (
	"context"

	"student-risk-be/internal/entity"
	"student-risk-be/internal/mapper"
	"student-risk-be/internal/model"
	"student-risk-be/internal/repository/contract"
	"student-risk-be/internal/repository/specification"

	"gorm.io/gorm"
)

type PredictionRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.PredictionRecordMapper
}

func NewPredictionRepository(db *gorm.DB) contract.PredictionRepository {
	return &PredictionRepositoryImpl{
		db:     db,
		mapper: mapper.NewPredictionRecordMapper(),
	}
}

func (r *PredictionRepositoryImpl) Create(ctx context.Context, record *entity.PredictionRecord) error {
	m, err := r.mapper.ToModel(record)
	if err != nil {
		return err
	}
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return err
	}
	record.Id = m.Id
	record.CreatedAt = m.CreatedAt
	return nil
}

func (r *PredictionRepositoryImpl) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.PredictionRecord, error) {
	var records []*model.PredictionRecord
	query := applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.Find(&records).Error; err != nil {
		return nil, err
	}
	return r.mapper.ToEntities(records)
}

func (r *PredictionRepositoryImpl) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	var count int64
	query := applySpecifications(r.db.WithContext(ctx).Model(&model.PredictionRecord{}), specs...)
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}
