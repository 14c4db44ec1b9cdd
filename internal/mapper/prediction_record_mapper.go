package mapper

import (
	"encoding/json"
	"fmt"

	"student-risk-be/internal/entity"
	"student-risk-be/internal/model"

	"gorm.io/datatypes"
)

type PredictionRecordMapper struct{}

func NewPredictionRecordMapper() *PredictionRecordMapper {
	return &PredictionRecordMapper{}
}

func (m *PredictionRecordMapper) ToEntity(r *model.PredictionRecord) (*entity.PredictionRecord, error) {
	if r == nil {
		return nil, nil
	}
	var features map[string]float64
	if len(r.Features) > 0 {
		if err := json.Unmarshal(r.Features, &features); err != nil {
			return nil, fmt.Errorf("decode features of prediction %d: %w", r.Id, err)
		}
	}
	return &entity.PredictionRecord{
		Id:           r.Id,
		UserId:       r.UserId,
		Source:       entity.PredictionSource(r.Source),
		Label:        r.Label,
		Confidence:   r.Confidence,
		ModelVersion: r.ModelVersion,
		Features:     features,
		CreatedAt:    r.CreatedAt,
	}, nil
}

func (m *PredictionRecordMapper) ToModel(r *entity.PredictionRecord) (*model.PredictionRecord, error) {
	if r == nil {
		return nil, nil
	}
	features, err := json.Marshal(r.Features)
	if err != nil {
		return nil, err
	}
	return &model.PredictionRecord{
		Id:           r.Id,
		UserId:       r.UserId,
		Source:       string(r.Source),
		Label:        r.Label,
		Confidence:   r.Confidence,
		ModelVersion: r.ModelVersion,
		Features:     datatypes.JSON(features),
		CreatedAt:    r.CreatedAt,
	}, nil
}

func (m *PredictionRecordMapper) ToEntities(records []*model.PredictionRecord) ([]*entity.PredictionRecord, error) {
	entities := make([]*entity.PredictionRecord, 0, len(records))
	for _, r := range records {
		e, err := m.ToEntity(r)
		if err != nil {
			return nil, err
		}
		entities = append(entities, e)
	}
	return entities, nil
}
