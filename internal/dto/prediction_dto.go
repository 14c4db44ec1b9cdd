package dto

import "time"

type PredictResponse struct {
	Prediction string  `json:"prediction"`
	Confidence float64 `json:"confidence"`
}

type PredictErrorResponse struct {
	Error string `json:"error"`
}

type FeatureResponse struct {
	Name    string   `json:"name"`
	Kind    string   `json:"kind"`
	Label   string   `json:"label"`
	Allowed []int    `json:"allowed_values,omitempty"`
	Min     *float64 `json:"min,omitempty"`
	Max     *float64 `json:"max,omitempty"`
}

type FeaturesResponse struct {
	ModelVersion string            `json:"model_version"`
	Features     []FeatureResponse `json:"features"`
}

type HealthResponse struct {
	Status       string `json:"status"`
	ModelVersion string `json:"model_version"`
}

type PredictionHistoryItem struct {
	Label      string    `json:"label"`
	Confidence float64   `json:"confidence"`
	Source     string    `json:"source"`
	CreatedAt  time.Time `json:"created_at"`
}

func (i PredictionHistoryItem) Percent() float64 {
	return i.Confidence * 100
}

type ProfileResponse struct {
	Email           string                  `json:"email"`
	PredictionCount int64                   `json:"prediction_count"`
	Recent          []PredictionHistoryItem `json:"recent"`
}
