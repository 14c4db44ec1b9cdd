package entity

import "time"

type PredictionSource string

const (
	PredictionSourceForm PredictionSource = "form"
	PredictionSourceAPI  PredictionSource = "api"
)

type PredictionRecord struct {
	Id           uint
	UserId       *uint
	Source       PredictionSource
	Label        string
	Confidence   float64
	ModelVersion string
	Features     map[string]float64
	CreatedAt    time.Time
}
