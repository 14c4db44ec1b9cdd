// Package predictor validates raw student records, replays the fitted preprocessing stages and
// scores the result with the trained dropout/graduation classifier.
package predictor

import (
	"errors"
	"fmt"
	"math"
)

type Label string

const (
	LabelGraduate Label = "Graduate"
	LabelDropout  Label = "Dropout"
)

// PositiveClass is the training label that means the student graduated.
const PositiveClass = 1

type Prediction struct {
	Label         Label
	Class         int
	Confidence    float64
	Probabilities []float64
}

// Summary renders the prediction the way the form page shows it.
func (p *Prediction) Summary() string {
	return fmt.Sprintf("%s (Confidence: %.1f%%)", p.Label, p.Confidence*100)
}

// Predictor bundles the constraint table, pipeline and classifier loaded at startup.
// Nothing in it changes after construction.
type Predictor struct {
	table    *ConstraintTable
	pipeline *Pipeline
	model    Classifier
	version  string
}

func New(table *ConstraintTable, pipeline *Pipeline, model Classifier, version string) (*Predictor, error) {
	if table.Len() != pipeline.NumSelected() {
		return nil, fmt.Errorf("constraint table has %d features but the selector keeps %d", table.Len(), pipeline.NumSelected())
	}
	if model.NumFeatures() != pipeline.NumSelected() {
		return nil, fmt.Errorf("model expects %d features but the pipeline produces %d", model.NumFeatures(), pipeline.NumSelected())
	}
	return &Predictor{
		table:    table,
		pipeline: pipeline,
		model:    model,
		version:  version,
	}, nil
}

func (p *Predictor) Constraints() *ConstraintTable { return p.table }

func (p *Predictor) Pipeline() *Pipeline { return p.pipeline }

func (p *Predictor) Version() string { return p.version }

func (p *Predictor) Validate(raw RawInput) (Values, error) {
	return Validate(raw, p.table)
}

// Predict validates raw, preprocesses it and classifies the result.
func (p *Predictor) Predict(raw RawInput) (*Prediction, error) {
	values, err := Validate(raw, p.table)
	if err != nil {
		return nil, err
	}
	return p.PredictValues(values)
}

func (p *Predictor) PredictValues(values Values) (*Prediction, error) {
	vector, err := p.pipeline.Transform(values)
	if err != nil {
		return nil, err
	}
	return p.Classify(vector)
}

func (p *Predictor) Classify(vector []float64) (*Prediction, error) {
	proba, err := p.model.PredictProba(vector)
	if err != nil {
		if errors.Is(err, ErrPrediction) {
			return nil, err
		}
		return nil, &PredictionError{Cause: err}
	}

	classes := p.model.Classes()
	if len(proba) != len(classes) {
		return nil, &PredictionError{Cause: fmt.Errorf("model returned %d probabilities for %d classes", len(proba), len(classes))}
	}

	best := 0
	for i, v := range proba {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return nil, &PredictionError{Cause: fmt.Errorf("non-finite probability for class %d", classes[i])}
		}
		if v > proba[best] {
			best = i
		}
	}

	label := LabelDropout
	if classes[best] == PositiveClass {
		label = LabelGraduate
	}
	return &Prediction{
		Label:         label,
		Class:         classes[best],
		Confidence:    proba[best],
		Probabilities: proba,
	}, nil
}
