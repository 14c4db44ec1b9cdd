package predictor

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const artifactDir = "../../artifacts"

// referenceInput is the record used to check the exported artifacts end to end.
func referenceInput() RawInput {
	names := []string{
		"Marital status",
		"Application mode",
		"Previous qualification",
		"Displaced",
		"Debtor",
		"Tuition fees up to date",
		"Gender",
		"Scholarship holder",
		"Age at enrollment",
		"Curricular units 1st sem (approved)",
		"Curricular units 1st sem (grade)",
		"Curricular units 1st sem (without evaluations)",
		"Curricular units 2nd sem (approved)",
		"Curricular units 2nd sem (grade)",
		"Curricular units 2nd sem (without evaluations)",
	}
	values := []string{"1", "1", "1", "0", "0", "1", "0", "0", "25", "10", "14.5", "2", "12", "15.0", "1"}

	raw := make(RawInput, len(names))
	for i, name := range names {
		raw[name] = values[i]
	}
	return raw
}

func TestLoad_ReferenceRecord(t *testing.T) {
	p, err := Load(artifactDir)
	require.NoError(t, err)
	assert.Equal(t, "2024.11-logreg-k15", p.Version())
	assert.Equal(t, 15, p.Constraints().Len())
	assert.Equal(t, 34, p.Pipeline().NumColumns())
	assert.Equal(t, p.Constraints().Names(), p.Pipeline().SelectedColumns())

	values, err := p.Validate(referenceInput())
	require.NoError(t, err)

	vector, err := p.Pipeline().Transform(values)
	require.NoError(t, err)
	require.Len(t, vector, 15)
	assert.InDelta(t, -0.29397192, vector[0], 1e-6)
	assert.InDelta(t, -1.01152, vector[1], 1e-6)
	assert.InDelta(t, 2.69855072, vector[11], 1e-6)
	assert.InDelta(t, 1.12971823, vector[14], 1e-6)

	res, err := p.Predict(referenceInput())
	require.NoError(t, err)
	assert.Equal(t, LabelGraduate, res.Label)
	assert.InDelta(t, 0.99887037, res.Confidence, 1e-6)
	assert.Equal(t, "Graduate (Confidence: 99.9%)", res.Summary())
}

func TestLoad_RejectsOutOfDomainReferenceValues(t *testing.T) {
	p, err := Load(artifactDir)
	require.NoError(t, err)

	raw := referenceInput()
	raw["Application mode"] = "3"
	_, err = p.Predict(raw)
	assert.ErrorIs(t, err, ErrInvalidInput)
	assert.ErrorContains(t, err, "Application mode: Invalid value 3")

	raw = referenceInput()
	raw["Age at enrollment"] = "17"
	_, err = p.Predict(raw)
	assert.EqualError(t, err, "Age at enrollment: Value 17 outside range [18, 80]")
}

func copyArtifacts(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	entries, err := os.ReadDir(artifactDir)
	require.NoError(t, err)
	for _, e := range entries {
		data, err := os.ReadFile(filepath.Join(artifactDir, e.Name()))
		require.NoError(t, err)
		require.NoError(t, os.WriteFile(filepath.Join(dir, e.Name()), data, 0o644))
	}
	return dir
}

func TestLoadArtifacts_MissingFile(t *testing.T) {
	dir := copyArtifacts(t)
	require.NoError(t, os.Remove(filepath.Join(dir, "standard_scaler.json")))

	_, err := LoadArtifacts(dir)
	require.Error(t, err)
	assert.ErrorContains(t, err, "read artifact")
	assert.ErrorContains(t, err, "standard_scaler.json")
}

func TestLoadArtifacts_Malformed(t *testing.T) {
	dir := copyArtifacts(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "selectkbest.json"), []byte("{"), 0o644))

	_, err := LoadArtifacts(dir)
	assert.ErrorContains(t, err, "decode selectkbest.json")
}

func TestLoadManifest_DefaultsAndEnvOverride(t *testing.T) {
	dir := copyArtifacts(t)
	require.NoError(t, os.Remove(filepath.Join(dir, ManifestFile)))

	m, err := LoadManifest(dir)
	require.NoError(t, err)
	assert.Equal(t, DefaultManifest(), m)

	require.NoError(t, os.Rename(filepath.Join(dir, "model.json"), filepath.Join(dir, "model-v2.json")))
	t.Setenv("PREDICTOR_FILES__MODEL", "model-v2.json")
	t.Setenv("PREDICTOR_VERSION", "v2")

	p, err := Load(dir)
	require.NoError(t, err)
	assert.Equal(t, "v2", p.Version())
}

func TestArtifacts_BuildChecksFeatureCount(t *testing.T) {
	a, err := LoadArtifacts(artifactDir)
	require.NoError(t, err)

	a.FeatureNames = a.FeatureNames[:14]
	_, err = a.Build(DefaultCatalog)
	assert.EqualError(t, err, "14 feature names for 15 selected columns")
}
