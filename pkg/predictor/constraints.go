package predictor

import (
	"fmt"
	"slices"
)

type Kind string

const (
	KindCategorical Kind = "categorical"
	KindNumeric     Kind = "numeric"
)

// FeatureConstraint describes what a single model input accepts.
type FeatureConstraint struct {
	Name    string  `json:"name"`
	Kind    Kind    `json:"kind"`
	Allowed []int   `json:"allowed_values,omitempty"`
	Min     float64 `json:"min"`
	Max     float64 `json:"max"`
	Label   string  `json:"label"`
}

func (c FeatureConstraint) Allows(code int) bool {
	return slices.Contains(c.Allowed, code)
}

// ConstraintTable keeps constraints in model feature order.
type ConstraintTable struct {
	constraints []FeatureConstraint
	index       map[string]int
}

func NewConstraintTable(constraints []FeatureConstraint) (*ConstraintTable, error) {
	t := &ConstraintTable{
		constraints: make([]FeatureConstraint, 0, len(constraints)),
		index:       make(map[string]int, len(constraints)),
	}
	for _, c := range constraints {
		if c.Name == "" {
			return nil, fmt.Errorf("constraint without a feature name")
		}
		if _, dup := t.index[c.Name]; dup {
			return nil, fmt.Errorf("duplicate constraint for %q", c.Name)
		}
		switch c.Kind {
		case KindCategorical:
			if len(c.Allowed) == 0 {
				return nil, fmt.Errorf("categorical feature %q has no allowed values", c.Name)
			}
		case KindNumeric:
			if c.Min > c.Max {
				return nil, fmt.Errorf("numeric feature %q has min %v above max %v", c.Name, c.Min, c.Max)
			}
		default:
			return nil, fmt.Errorf("feature %q has unknown kind %q", c.Name, c.Kind)
		}
		t.index[c.Name] = len(t.constraints)
		t.constraints = append(t.constraints, c)
	}
	return t, nil
}

func (t *ConstraintTable) Len() int { return len(t.constraints) }

// Constraints returns a copy of the table in order.
func (t *ConstraintTable) Constraints() []FeatureConstraint {
	return slices.Clone(t.constraints)
}

func (t *ConstraintTable) Names() []string {
	names := make([]string, len(t.constraints))
	for i, c := range t.constraints {
		names[i] = c.Name
	}
	return names
}

func (t *ConstraintTable) Get(name string) (FeatureConstraint, bool) {
	i, ok := t.index[name]
	if !ok {
		return FeatureConstraint{}, false
	}
	return t.constraints[i], true
}

// CatalogEntry is the static, code-owned part of a constraint: kind, display label and, for
// numeric features, the accepted range. Categorical domains come from the artifacts.
type CatalogEntry struct {
	Kind  Kind
	Min   float64
	Max   float64
	Label string
}

// DefaultCatalog covers the fifteen features the shipped model was fit on.
var DefaultCatalog = map[string]CatalogEntry{
	"Marital status":          {Kind: KindCategorical, Label: "Marital Status"},
	"Application mode":        {Kind: KindCategorical, Label: "Application Mode"},
	"Previous qualification":  {Kind: KindCategorical, Label: "Previous Qualification"},
	"Displaced":               {Kind: KindCategorical, Label: "Displaced"},
	"Debtor":                  {Kind: KindCategorical, Label: "Debtor Status"},
	"Tuition fees up to date": {Kind: KindCategorical, Label: "Tuition Fees Up to Date"},
	"Gender":                  {Kind: KindCategorical, Label: "Gender (0=Female, 1=Male)"},
	"Scholarship holder":      {Kind: KindCategorical, Label: "Scholarship Holder"},
	"Age at enrollment":       {Kind: KindNumeric, Min: 18, Max: 80, Label: "Age at Enrollment"},

	"Curricular units 1st sem (approved)":            {Kind: KindNumeric, Min: 0, Max: 60, Label: "1st Semester - Approved Units"},
	"Curricular units 1st sem (grade)":               {Kind: KindNumeric, Min: 0, Max: 20, Label: "1st Semester - Average Grade"},
	"Curricular units 1st sem (without evaluations)": {Kind: KindNumeric, Min: 0, Max: 60, Label: "1st Semester - Units Without Evaluations"},
	"Curricular units 2nd sem (approved)":            {Kind: KindNumeric, Min: 0, Max: 60, Label: "2nd Semester - Approved Units"},
	"Curricular units 2nd sem (grade)":               {Kind: KindNumeric, Min: 0, Max: 20, Label: "2nd Semester - Average Grade"},
	"Curricular units 2nd sem (without evaluations)": {Kind: KindNumeric, Min: 0, Max: 60, Label: "2nd Semester - Units Without Evaluations"},
}

// BuildConstraintTable joins the ordered list of trained features with the catalog and the
// categorical value domains. Every trained feature must resolve to exactly one constraint.
func BuildConstraintTable(featureNames []string, categorical map[string][]int, catalog map[string]CatalogEntry) (*ConstraintTable, error) {
	constraints := make([]FeatureConstraint, 0, len(featureNames))
	for _, name := range featureNames {
		entry, ok := catalog[name]
		if !ok {
			return nil, fmt.Errorf("no constraint defined for trained feature %q", name)
		}
		c := FeatureConstraint{Name: name, Kind: entry.Kind, Label: entry.Label}
		switch entry.Kind {
		case KindCategorical:
			values, ok := categorical[name]
			if !ok {
				return nil, fmt.Errorf("no categorical domain for feature %q", name)
			}
			c.Allowed = slices.Clone(values)
		case KindNumeric:
			c.Min, c.Max = entry.Min, entry.Max
		}
		constraints = append(constraints, c)
	}
	return NewConstraintTable(constraints)
}
