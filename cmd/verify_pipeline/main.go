package main

import (
	"flag"
	"fmt"
	"os"

	"student-risk-be/pkg/predictor"

	"github.com/fatih/color"
)

// reference is the record the exported artifacts were checked against when the model was trained.
var reference = []struct {
	name  string
	value string
}{
	{"Marital status", "1"},
	{"Application mode", "1"},
	{"Previous qualification", "1"},
	{"Displaced", "0"},
	{"Debtor", "0"},
	{"Tuition fees up to date", "1"},
	{"Gender", "0"},
	{"Scholarship holder", "0"},
	{"Age at enrollment", "25"},
	{"Curricular units 1st sem (approved)", "10"},
	{"Curricular units 1st sem (grade)", "14.5"},
	{"Curricular units 1st sem (without evaluations)", "2"},
	{"Curricular units 2nd sem (approved)", "12"},
	{"Curricular units 2nd sem (grade)", "15.0"},
	{"Curricular units 2nd sem (without evaluations)", "1"},
}

func fail(format string, args ...interface{}) {
	color.Red(format, args...)
	os.Exit(1)
}

func main() {
	dir := flag.String("artifacts", "artifacts", "directory holding the exported model artifacts")
	flag.Parse()

	color.Cyan("🔍 Verifying preprocessing pipeline in %s\n", *dir)

	manifest, err := predictor.LoadManifest(*dir)
	if err != nil {
		fail("Failed to read manifest: %v", err)
	}
	fmt.Printf("Model version: %s\n", manifest.Version)

	p, err := predictor.Load(*dir)
	if err != nil {
		fail("Failed to load artifacts: %v", err)
	}
	pipeline := p.Pipeline()
	fmt.Printf("Original columns: %d, selected features: %d\n", pipeline.NumColumns(), pipeline.NumSelected())

	raw := make(predictor.RawInput, len(reference))
	for _, r := range reference {
		raw[r.name] = r.value
	}

	values, err := p.Validate(raw)
	if err != nil {
		fail("Reference input rejected: %v", err)
	}
	color.Green("✓ Validation passed (%d features)", len(values))

	dense := pipeline.Dense(values)
	color.Yellow("\n[1] Dense vector: shape (1, %d)", len(dense))

	scaled, err := pipeline.Rescale(dense)
	if err != nil {
		fail("Min-max scaling failed: %v", err)
	}
	color.Yellow("[2] Min-max scaled: shape (1, %d)", len(scaled))

	selected, err := pipeline.Select(scaled)
	if err != nil {
		fail("Feature selection failed: %v", err)
	}
	color.Yellow("[3] Selected: shape (1, %d)", len(selected))

	standardized, err := pipeline.Standardize(selected)
	if err != nil {
		fail("Standardization failed: %v", err)
	}
	color.Yellow("[4] Standardized: shape (1, %d)", len(standardized))

	for i, name := range pipeline.SelectedColumns() {
		fmt.Printf("    %-48s % .6f\n", name, standardized[i])
	}

	prediction, err := p.Classify(standardized)
	if err != nil {
		fail("Classification failed: %v", err)
	}
	color.Green("\n✅ %s", prediction.Summary())
}
