package predictor

import (
	"fmt"
	"math"
	"slices"
)

// MinMaxScaler holds the per-column bounds captured when the scaler was fit.
type MinMaxScaler struct {
	DataMin []float64 `json:"data_min"`
	DataMax []float64 `json:"data_max"`
}

// FeatureSelector keeps the columns listed in Support, in ascending order.
type FeatureSelector struct {
	Support []int `json:"support"`
}

// StandardScaler holds the per-column mean and standard deviation of the selected columns.
type StandardScaler struct {
	Mean  []float64 `json:"mean"`
	Scale []float64 `json:"scale"`
}

// Pipeline replays the fitted rescale, select and standardize stages.
// It is immutable after construction and safe for concurrent use.
type Pipeline struct {
	columns  []string
	minmax   MinMaxScaler
	selector FeatureSelector
	standard StandardScaler
}

func NewPipeline(columns []string, minmax MinMaxScaler, selector FeatureSelector, standard StandardScaler) (*Pipeline, error) {
	n := len(columns)
	if n == 0 {
		return nil, fmt.Errorf("pipeline needs at least one original column")
	}
	if len(minmax.DataMin) != n || len(minmax.DataMax) != n {
		return nil, fmt.Errorf("min-max scaler fit on %d/%d columns, expected %d",
			len(minmax.DataMin), len(minmax.DataMax), n)
	}
	if len(selector.Support) == 0 {
		return nil, fmt.Errorf("feature selector keeps no columns")
	}
	for i, idx := range selector.Support {
		if idx < 0 || idx >= n {
			return nil, fmt.Errorf("selected column %d out of range [0, %d)", idx, n)
		}
		if i > 0 && idx <= selector.Support[i-1] {
			return nil, fmt.Errorf("selected columns must be strictly ascending, got %d after %d", idx, selector.Support[i-1])
		}
	}
	k := len(selector.Support)
	if len(standard.Mean) != k || len(standard.Scale) != k {
		return nil, fmt.Errorf("standard scaler fit on %d/%d columns, expected %d",
			len(standard.Mean), len(standard.Scale), k)
	}

	return &Pipeline{
		columns: slices.Clone(columns),
		minmax: MinMaxScaler{
			DataMin: slices.Clone(minmax.DataMin),
			DataMax: slices.Clone(minmax.DataMax),
		},
		selector: FeatureSelector{Support: slices.Clone(selector.Support)},
		standard: StandardScaler{
			Mean:  slices.Clone(standard.Mean),
			Scale: slices.Clone(standard.Scale),
		},
	}, nil
}

// NumColumns is the width of the dense input row.
func (p *Pipeline) NumColumns() int { return len(p.columns) }

// NumSelected is the width of the vector handed to the classifier.
func (p *Pipeline) NumSelected() int { return len(p.selector.Support) }

// SelectedColumns names the columns kept by the selector, in output order.
func (p *Pipeline) SelectedColumns() []string {
	names := make([]string, len(p.selector.Support))
	for i, idx := range p.selector.Support {
		names[i] = p.columns[idx]
	}
	return names
}

// Transform produces the model-ready vector for values.
//
// Original columns missing from values are imputed with 0.0 before scaling. That constant
// matches the imputation used when the artifacts were fit and must not change independently
// of them.
func (p *Pipeline) Transform(values Values) ([]float64, error) {
	row := p.Dense(values)

	scaled, err := p.Rescale(row)
	if err != nil {
		return nil, err
	}
	selected, err := p.Select(scaled)
	if err != nil {
		return nil, err
	}
	return p.Standardize(selected)
}

// Dense lays values out in original column order.
func (p *Pipeline) Dense(values Values) []float64 {
	row := make([]float64, len(p.columns))
	for i, name := range p.columns {
		row[i] = values[name]
	}
	return row
}

func (p *Pipeline) Rescale(row []float64) ([]float64, error) {
	if len(row) != len(p.columns) {
		return nil, &PreprocessingError{Cause: fmt.Errorf("min-max scaler expects %d columns, got %d", len(p.columns), len(row))}
	}
	out := make([]float64, len(row))
	for i, x := range row {
		out[i] = (x - p.minmax.DataMin[i]) / nonZero(p.minmax.DataMax[i]-p.minmax.DataMin[i])
	}
	return out, nil
}

func (p *Pipeline) Select(row []float64) ([]float64, error) {
	if len(row) != len(p.columns) {
		return nil, &PreprocessingError{Cause: fmt.Errorf("selector expects %d columns, got %d", len(p.columns), len(row))}
	}
	out := make([]float64, len(p.selector.Support))
	for i, idx := range p.selector.Support {
		out[i] = row[idx]
	}
	return out, nil
}

func (p *Pipeline) Standardize(row []float64) ([]float64, error) {
	if len(row) != len(p.standard.Mean) {
		return nil, &PreprocessingError{Cause: fmt.Errorf("standard scaler expects %d columns, got %d", len(p.standard.Mean), len(row))}
	}
	out := make([]float64, len(row))
	for i, x := range row {
		v := (x - p.standard.Mean[i]) / nonZero(p.standard.Scale[i])
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return nil, &PreprocessingError{Cause: fmt.Errorf("non-finite value in column %q", p.columns[p.selector.Support[i]])}
		}
		out[i] = v
	}
	return out, nil
}

// nonZero mirrors scikit-learn: constant columns are divided by one instead of zero.
func nonZero(d float64) float64 {
	if d == 0 {
		return 1
	}
	return d
}
