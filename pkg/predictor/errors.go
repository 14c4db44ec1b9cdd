package predictor

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

var (
	// ErrInvalidInput matches every user-correctable validation failure.
	ErrInvalidInput = errors.New("invalid input")
	// ErrPreprocessing matches failures raised by the preprocessing pipeline.
	ErrPreprocessing = errors.New("preprocessing failed")
	// ErrPrediction matches failures raised by the classifier.
	ErrPrediction = errors.New("prediction failed")
)

type MissingFeatureError struct {
	Name string
}

func (e *MissingFeatureError) Error() string {
	return fmt.Sprintf("Missing value for %s", e.Name)
}

func (e *MissingFeatureError) Is(target error) bool { return target == ErrInvalidInput }

type InvalidCategoricalValueError struct {
	Name    string
	Value   string
	Allowed []int
}

func (e *InvalidCategoricalValueError) Error() string {
	return fmt.Sprintf("%s: Invalid value %s. Allowed: %s", e.Name, e.Value, formatInts(e.Allowed))
}

func (e *InvalidCategoricalValueError) Is(target error) bool { return target == ErrInvalidInput }

type OutOfRangeError struct {
	Name  string
	Value float64
	Min   float64
	Max   float64
}

func (e *OutOfRangeError) Error() string {
	return fmt.Sprintf("%s: Value %s outside range [%s, %s]",
		e.Name, formatFloat(e.Value), formatFloat(e.Min), formatFloat(e.Max))
}

func (e *OutOfRangeError) Is(target error) bool { return target == ErrInvalidInput }

type InvalidNumericValueError struct {
	Name  string
	Value string
}

func (e *InvalidNumericValueError) Error() string {
	return fmt.Sprintf("%s: Invalid numeric value", e.Name)
}

func (e *InvalidNumericValueError) Is(target error) bool { return target == ErrInvalidInput }

// PreprocessingError wraps any rejection raised while transforming a validated input.
type PreprocessingError struct {
	Cause error
}

func (e *PreprocessingError) Error() string {
	return fmt.Sprintf("Error during preprocessing: %v", e.Cause)
}

func (e *PreprocessingError) Unwrap() error { return e.Cause }

func (e *PreprocessingError) Is(target error) bool { return target == ErrPreprocessing }

// PredictionError wraps shape mismatches and internal classifier failures.
type PredictionError struct {
	Cause error
}

func (e *PredictionError) Error() string {
	return fmt.Sprintf("Error during prediction: %v", e.Cause)
}

func (e *PredictionError) Unwrap() error { return e.Cause }

func (e *PredictionError) Is(target error) bool { return target == ErrPrediction }

func formatInts(values []int) string {
	parts := make([]string, len(values))
	for i, v := range values {
		parts[i] = strconv.Itoa(v)
	}
	return "[" + strings.Join(parts, ", ") + "]"
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
