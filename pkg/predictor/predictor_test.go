package predictor

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testCatalog = map[string]CatalogEntry{
	"Gender": {Kind: KindCategorical, Label: "Gender"},
	"Age":    {Kind: KindNumeric, Min: 18, Max: 80, Label: "Age"},
	"Grade":  {Kind: KindNumeric, Min: 0, Max: 20, Label: "Grade"},
}

// newTestPredictor wires a four column pipeline where "Course" is never asked for and
// falls back to the 0.0 imputation.
func newTestPredictor(t *testing.T) *Predictor {
	t.Helper()

	table, err := BuildConstraintTable(
		[]string{"Gender", "Age", "Grade"},
		map[string][]int{"Gender": {0, 1}},
		testCatalog,
	)
	require.NoError(t, err)

	pipeline, err := NewPipeline(
		[]string{"Gender", "Age", "Course", "Grade"},
		MinMaxScaler{DataMin: []float64{0, 18, 1, 0}, DataMax: []float64{1, 80, 10, 20}},
		FeatureSelector{Support: []int{0, 1, 3}},
		StandardScaler{Mean: []float64{0.5, 0.25, 0.5}, Scale: []float64{0.5, 0.25, 0.25}},
	)
	require.NoError(t, err)

	model, err := NewClassifier(ModelSpec{
		Type:      ModelLogisticRegression,
		Classes:   []int{0, 1},
		NFeatures: 3,
		Coef:      [][]float64{{1, -1, 0.5}},
		Intercept: []float64{0},
	})
	require.NoError(t, err)

	p, err := New(table, pipeline, model, "test")
	require.NoError(t, err)
	return p
}

func TestPredictor_Predict(t *testing.T) {
	p := newTestPredictor(t)

	res, err := p.Predict(RawInput{"Gender": "1", "Age": "49", "Grade": 15.0})
	require.NoError(t, err)

	want := 1 / (1 + math.Exp(-0.5))
	assert.Equal(t, LabelGraduate, res.Label)
	assert.Equal(t, 1, res.Class)
	assert.InDelta(t, want, res.Confidence, 1e-12)
	assert.InDeltaSlice(t, []float64{1 - want, want}, res.Probabilities, 1e-12)
	assert.Equal(t, "Graduate (Confidence: 62.2%)", res.Summary())
}

func TestPredictor_PredictDropout(t *testing.T) {
	p := newTestPredictor(t)

	// standardized vector is (-1, 1, -1): z = -1 - 1 - 0.5
	res, err := p.Predict(RawInput{"Gender": 0, "Age": 49, "Grade": 5})
	require.NoError(t, err)

	assert.Equal(t, LabelDropout, res.Label)
	assert.Equal(t, 0, res.Class)
	assert.InDelta(t, 1-1/(1+math.Exp(2.5)), res.Confidence, 1e-12)
}

func TestPredictor_ValidationShortCircuits(t *testing.T) {
	p := newTestPredictor(t)

	_, err := p.Predict(RawInput{"Gender": "1", "Age": "49"})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidInput)
	assert.EqualError(t, err, "Missing value for Grade")
}

func TestPredictor_ConfidenceIsAtLeastHalf(t *testing.T) {
	p := newTestPredictor(t)

	for gender := 0; gender <= 1; gender++ {
		for age := 18.0; age <= 80; age += 7.75 {
			for grade := 0.0; grade <= 20; grade += 2.5 {
				res, err := p.Predict(RawInput{"Gender": gender, "Age": age, "Grade": grade})
				require.NoError(t, err)
				assert.GreaterOrEqual(t, res.Confidence, 0.5)
				assert.LessOrEqual(t, res.Confidence, 1.0)
				assert.InDelta(t, 1.0, res.Probabilities[0]+res.Probabilities[1], 1e-12)
			}
		}
	}
}

func TestPredictor_ClassifyShapeMismatch(t *testing.T) {
	p := newTestPredictor(t)

	_, err := p.Classify([]float64{1, 2})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrPrediction)

	var predErr *PredictionError
	assert.ErrorAs(t, err, &predErr)
}

func TestNew_RejectsMismatchedShapes(t *testing.T) {
	p := newTestPredictor(t)

	wide, err := NewClassifier(ModelSpec{
		Type:      ModelLogisticRegression,
		Classes:   []int{0, 1},
		NFeatures: 4,
		Coef:      [][]float64{{1, 1, 1, 1}},
		Intercept: []float64{0},
	})
	require.NoError(t, err)

	_, err = New(p.Constraints(), p.Pipeline(), wide, "wide")
	assert.ErrorContains(t, err, "model expects 4 features but the pipeline produces 3")
}

func TestBuildConstraintTable(t *testing.T) {
	tests := []struct {
		name        string
		features    []string
		categorical map[string][]int
		wantErr     string
	}{
		{
			name:        "complete",
			features:    []string{"Grade", "Gender"},
			categorical: map[string][]int{"Gender": {0, 1}},
		},
		{
			name:        "feature without catalog entry",
			features:    []string{"Gender", "Height"},
			categorical: map[string][]int{"Gender": {0, 1}},
			wantErr:     `no constraint defined for trained feature "Height"`,
		},
		{
			name:     "categorical without domain",
			features: []string{"Gender"},
			wantErr:  `no categorical domain for feature "Gender"`,
		},
		{
			name:        "duplicate feature",
			features:    []string{"Age", "Age"},
			categorical: nil,
			wantErr:     `duplicate constraint for "Age"`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			table, err := BuildConstraintTable(tt.features, tt.categorical, testCatalog)
			if tt.wantErr != "" {
				assert.EqualError(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.features, table.Names())
		})
	}
}
