package predictor

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

const (
	ManifestFile = "manifest.yaml"
	envPrefix    = "PREDICTOR_"
)

// Manifest names the artifact files inside an artifact directory.
type Manifest struct {
	Version string        `koanf:"version"`
	Files   ManifestFiles `koanf:"files"`
}

type ManifestFiles struct {
	Model               string `koanf:"model"`
	MinMaxScaler        string `koanf:"minmax_scaler"`
	Selector            string `koanf:"selector"`
	StandardScaler      string `koanf:"standard_scaler"`
	FeatureNames        string `koanf:"feature_names"`
	CategoricalFeatures string `koanf:"categorical_features"`
	OriginalColumns     string `koanf:"original_columns"`
}

func DefaultManifest() Manifest {
	return Manifest{
		Version: "unversioned",
		Files: ManifestFiles{
			Model:               "model.json",
			MinMaxScaler:        "minmax_scaler.json",
			Selector:            "selectkbest.json",
			StandardScaler:      "standard_scaler.json",
			FeatureNames:        "feature_names.json",
			CategoricalFeatures: "categorical_features.json",
			OriginalColumns:     "original_columns.json",
		},
	}
}

// Artifacts is everything fit offline that the predictor replays at request time.
type Artifacts struct {
	Manifest            Manifest
	Model               Classifier
	MinMax              MinMaxScaler
	Selector            FeatureSelector
	Standard            StandardScaler
	FeatureNames        []string
	CategoricalFeatures map[string][]int
	OriginalColumns     []string
}

// LoadManifest layers defaults, an optional manifest.yaml in dir, and PREDICTOR_ env vars.
// Env keys use a double underscore for nesting, e.g. PREDICTOR_FILES__MODEL.
func LoadManifest(dir string) (Manifest, error) {
	k := koanf.New(".")

	path := filepath.Join(dir, ManifestFile)
	if _, err := os.Stat(path); err == nil {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return Manifest{}, fmt.Errorf("read %s: %w", path, err)
		}
	} else if !errors.Is(err, os.ErrNotExist) {
		return Manifest{}, fmt.Errorf("stat %s: %w", path, err)
	}

	envProvider := env.Provider(envPrefix, ".", func(s string) string {
		s = strings.ToLower(strings.TrimPrefix(s, envPrefix))
		return strings.ReplaceAll(s, "__", ".")
	})
	if err := k.Load(envProvider, nil); err != nil {
		return Manifest{}, err
	}

	m := DefaultManifest()
	if err := k.UnmarshalWithConf("", &m, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return Manifest{}, fmt.Errorf("decode manifest: %w", err)
	}
	return m, nil
}

// LoadArtifacts reads every artifact named by the manifest. Any missing or malformed file is
// an error; callers are expected to abort startup on it.
func LoadArtifacts(dir string) (*Artifacts, error) {
	m, err := LoadManifest(dir)
	if err != nil {
		return nil, err
	}

	a := &Artifacts{Manifest: m}

	raw, err := readArtifact(dir, m.Files.Model)
	if err != nil {
		return nil, err
	}
	if a.Model, err = DecodeModel(raw); err != nil {
		return nil, fmt.Errorf("%s: %w", m.Files.Model, err)
	}

	decoders := []struct {
		name string
		dst  any
	}{
		{m.Files.MinMaxScaler, &a.MinMax},
		{m.Files.Selector, &a.Selector},
		{m.Files.StandardScaler, &a.Standard},
		{m.Files.FeatureNames, &a.FeatureNames},
		{m.Files.CategoricalFeatures, &a.CategoricalFeatures},
		{m.Files.OriginalColumns, &a.OriginalColumns},
	}
	for _, d := range decoders {
		raw, err := readArtifact(dir, d.name)
		if err != nil {
			return nil, err
		}
		if err := json.Unmarshal(raw, d.dst); err != nil {
			return nil, fmt.Errorf("decode %s: %w", d.name, err)
		}
	}
	return a, nil
}

func readArtifact(dir, name string) ([]byte, error) {
	if name == "" {
		return nil, fmt.Errorf("artifact file name is empty")
	}
	path := filepath.Join(dir, name)
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read artifact %s: %w", path, err)
	}
	return data, nil
}

// Build assembles the predictor, checking only that the artifact shapes line up.
func (a *Artifacts) Build(catalog map[string]CatalogEntry) (*Predictor, error) {
	if len(a.FeatureNames) != len(a.Selector.Support) {
		return nil, fmt.Errorf("%d feature names for %d selected columns", len(a.FeatureNames), len(a.Selector.Support))
	}
	table, err := BuildConstraintTable(a.FeatureNames, a.CategoricalFeatures, catalog)
	if err != nil {
		return nil, err
	}
	pipeline, err := NewPipeline(a.OriginalColumns, a.MinMax, a.Selector, a.Standard)
	if err != nil {
		return nil, err
	}
	return New(table, pipeline, a.Model, a.Manifest.Version)
}

// Load reads the artifacts in dir and builds a predictor with the default catalog.
func Load(dir string) (*Predictor, error) {
	a, err := LoadArtifacts(dir)
	if err != nil {
		return nil, err
	}
	return a.Build(DefaultCatalog)
}
