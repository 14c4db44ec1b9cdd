package predictor

import (
	"encoding/json"
	"fmt"
	"math"
	"slices"
)

// Classifier is a fitted model that scores a preprocessed vector.
type Classifier interface {
	NumFeatures() int
	// Classes lists the training labels in the order PredictProba reports them.
	Classes() []int
	PredictProba(x []float64) ([]float64, error)
}

const (
	ModelLogisticRegression = "logistic_regression"
	ModelRandomForest       = "random_forest"
)

// ModelSpec is the serialized form of a fitted classifier. Tree arrays follow the
// scikit-learn layout: children_left is -1 for leaves, value holds per-class weights.
type ModelSpec struct {
	Type      string      `json:"type"`
	Classes   []int       `json:"classes"`
	NFeatures int         `json:"n_features"`
	Coef      [][]float64 `json:"coef,omitempty"`
	Intercept []float64   `json:"intercept,omitempty"`
	Trees     []TreeSpec  `json:"trees,omitempty"`
}

type TreeSpec struct {
	ChildrenLeft  []int       `json:"children_left"`
	ChildrenRight []int       `json:"children_right"`
	Feature       []int       `json:"feature"`
	Threshold     []float64   `json:"threshold"`
	Value         [][]float64 `json:"value"`
}

// DecodeModel parses a serialized ModelSpec and builds the matching classifier.
func DecodeModel(data []byte) (Classifier, error) {
	var spec ModelSpec
	if err := json.Unmarshal(data, &spec); err != nil {
		return nil, fmt.Errorf("decode model: %w", err)
	}
	return NewClassifier(spec)
}

func NewClassifier(spec ModelSpec) (Classifier, error) {
	if len(spec.Classes) < 2 {
		return nil, fmt.Errorf("model needs at least two classes, got %d", len(spec.Classes))
	}
	if spec.NFeatures <= 0 {
		return nil, fmt.Errorf("model has no input features")
	}
	switch spec.Type {
	case ModelLogisticRegression:
		return newLogisticRegression(spec)
	case ModelRandomForest:
		return newRandomForest(spec)
	default:
		return nil, fmt.Errorf("unsupported model type %q", spec.Type)
	}
}

type LogisticRegression struct {
	classes   []int
	coef      [][]float64
	intercept []float64
}

func newLogisticRegression(spec ModelSpec) (*LogisticRegression, error) {
	rows := len(spec.Classes)
	if rows == 2 {
		rows = 1
	}
	if len(spec.Coef) != rows || len(spec.Intercept) != rows {
		return nil, fmt.Errorf("logistic regression with %d classes needs %d coefficient rows, got %d coef / %d intercept",
			len(spec.Classes), rows, len(spec.Coef), len(spec.Intercept))
	}
	for i, row := range spec.Coef {
		if len(row) != spec.NFeatures {
			return nil, fmt.Errorf("coefficient row %d has %d weights, expected %d", i, len(row), spec.NFeatures)
		}
	}
	coef := make([][]float64, len(spec.Coef))
	for i, row := range spec.Coef {
		coef[i] = slices.Clone(row)
	}
	return &LogisticRegression{
		classes:   slices.Clone(spec.Classes),
		coef:      coef,
		intercept: slices.Clone(spec.Intercept),
	}, nil
}

func (m *LogisticRegression) NumFeatures() int { return len(m.coef[0]) }

func (m *LogisticRegression) Classes() []int { return slices.Clone(m.classes) }

func (m *LogisticRegression) PredictProba(x []float64) ([]float64, error) {
	if len(x) != m.NumFeatures() {
		return nil, &PredictionError{Cause: fmt.Errorf("model expects %d features, got %d", m.NumFeatures(), len(x))}
	}

	scores := make([]float64, len(m.coef))
	for i, row := range m.coef {
		z := m.intercept[i]
		for j, w := range row {
			z += w * x[j]
		}
		scores[i] = z
	}

	if len(scores) == 1 {
		p := 1 / (1 + math.Exp(-scores[0]))
		return []float64{1 - p, p}, nil
	}
	return softmax(scores), nil
}

func softmax(scores []float64) []float64 {
	peak := slices.Max(scores)
	out := make([]float64, len(scores))
	var sum float64
	for i, s := range scores {
		out[i] = math.Exp(s - peak)
		sum += out[i]
	}
	for i := range out {
		out[i] /= sum
	}
	return out
}

type RandomForest struct {
	classes   []int
	nFeatures int
	trees     []TreeSpec
}

func newRandomForest(spec ModelSpec) (*RandomForest, error) {
	if len(spec.Trees) == 0 {
		return nil, fmt.Errorf("random forest has no trees")
	}
	for i, t := range spec.Trees {
		if err := checkTree(t, spec.NFeatures, len(spec.Classes)); err != nil {
			return nil, fmt.Errorf("tree %d: %w", i, err)
		}
	}
	return &RandomForest{
		classes:   slices.Clone(spec.Classes),
		nFeatures: spec.NFeatures,
		trees:     spec.Trees,
	}, nil
}

func checkTree(t TreeSpec, nFeatures, nClasses int) error {
	n := len(t.ChildrenLeft)
	if n == 0 {
		return fmt.Errorf("no nodes")
	}
	if len(t.ChildrenRight) != n || len(t.Feature) != n || len(t.Threshold) != n || len(t.Value) != n {
		return fmt.Errorf("node arrays have mismatched lengths")
	}
	for i := 0; i < n; i++ {
		if len(t.Value[i]) != nClasses {
			return fmt.Errorf("node %d has %d class weights, expected %d", i, len(t.Value[i]), nClasses)
		}
		left, right := t.ChildrenLeft[i], t.ChildrenRight[i]
		if left == -1 {
			continue
		}
		if left <= i || left >= n || right <= i || right >= n {
			return fmt.Errorf("node %d has children (%d, %d) outside the tree", i, left, right)
		}
		if t.Feature[i] < 0 || t.Feature[i] >= nFeatures {
			return fmt.Errorf("node %d splits on feature %d of %d", i, t.Feature[i], nFeatures)
		}
	}
	return nil
}

func (m *RandomForest) NumFeatures() int { return m.nFeatures }

func (m *RandomForest) Classes() []int { return slices.Clone(m.classes) }

func (m *RandomForest) PredictProba(x []float64) ([]float64, error) {
	if len(x) != m.nFeatures {
		return nil, &PredictionError{Cause: fmt.Errorf("model expects %d features, got %d", m.nFeatures, len(x))}
	}

	proba := make([]float64, len(m.classes))
	for _, t := range m.trees {
		leaf := 0
		// children always have larger indices than their parent, so this terminates
		for t.ChildrenLeft[leaf] != -1 {
			if x[t.Feature[leaf]] <= t.Threshold[leaf] {
				leaf = t.ChildrenLeft[leaf]
			} else {
				leaf = t.ChildrenRight[leaf]
			}
		}

		var total float64
		for _, w := range t.Value[leaf] {
			total += w
		}
		if total <= 0 {
			return nil, &PredictionError{Cause: fmt.Errorf("leaf %d has no class weight", leaf)}
		}
		for i, w := range t.Value[leaf] {
			proba[i] += w / total
		}
	}
	for i := range proba {
		proba[i] /= float64(len(m.trees))
	}
	return proba, nil
}
