package explain

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"slices"
	"time"

	"github.com/couchcryptid/crop-loss-service/internal/domain"
	"gonum.org/v1/gonum/floats"
)

// Artifact versions and model types this package can evaluate.
const (
	ArtifactSchemaVersion = 1
	ModelTypeLinear       = "linear"
)

// Artifact is a trained regression model exported by the offline trainer.
type Artifact struct {
	SchemaVersion      int                       `json:"schema_version"`
	ModelType          string                    `json:"model_type"`
	FeatureNames       []string                  `json:"feature_names"`
	Intercept          float64                   `json:"intercept"`
	Coefficients       []float64                 `json:"coefficients"`
	FeatureImportances []float64                 `json:"feature_importances,omitempty"`
	Encoders           map[string]map[string]int `json:"encoders,omitempty"`
	TrainedAt          time.Time                 `json:"trained_at"`
}

// LoadArtifact reads and validates an artifact file.
func LoadArtifact(path string) (*Artifact, error) {
	f, err := os.Open(path) //nolint:gosec // operator-supplied model path
	if err != nil {
		return nil, fmt.Errorf("open model artifact: %w", err)
	}
	defer f.Close()
	return ReadArtifact(f)
}

// ReadArtifact decodes and validates an artifact. Unknown keys are rejected.
func ReadArtifact(r io.Reader) (*Artifact, error) {
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()

	var a Artifact
	if err := dec.Decode(&a); err != nil {
		return nil, fmt.Errorf("decode model artifact: %w", err)
	}
	if err := a.Validate(); err != nil {
		return nil, err
	}
	return &a, nil
}

// Validate checks the artifact's internal consistency.
func (a *Artifact) Validate() error {
	if a.SchemaVersion != ArtifactSchemaVersion {
		return fmt.Errorf("unsupported model schema_version %d (want %d)", a.SchemaVersion, ArtifactSchemaVersion)
	}
	if a.ModelType != ModelTypeLinear {
		return fmt.Errorf("unsupported model_type %q", a.ModelType)
	}
	if len(a.FeatureNames) == 0 {
		return errors.New("model artifact declares no features")
	}
	if len(a.Coefficients) != len(a.FeatureNames) {
		return fmt.Errorf("model has %d coefficients for %d features", len(a.Coefficients), len(a.FeatureNames))
	}
	if n := len(a.FeatureImportances); n != 0 && n != len(a.FeatureNames) {
		return fmt.Errorf("model has %d feature importances for %d features", n, len(a.FeatureNames))
	}
	if floats.HasNaN(a.Coefficients) || floats.HasNaN(a.FeatureImportances) {
		return errors.New("model artifact contains NaN weights")
	}
	for feature := range a.Encoders {
		if !slices.Contains(a.FeatureNames, feature) {
			return fmt.Errorf("encoder references undeclared feature %q", feature)
		}
	}
	return nil
}

// Bind succeeds only when the artifact's features equal schema exactly,
// names and order. Columns are never realigned.
func (a *Artifact) Bind(schema []string) error {
	if !slices.Equal(a.FeatureNames, schema) {
		return fmt.Errorf("%w: model declares %v, live schema is %v",
			domain.ErrModelSchemaMismatch, a.FeatureNames, schema)
	}
	return nil
}

// Predict evaluates the linear model over values in schema order.
func (a *Artifact) Predict(values []float64) float64 {
	return a.Intercept + floats.Dot(a.Coefficients, values)
}

// Importances returns the model's native feature importances, or nil when the
// artifact does not carry them.
func (a *Artifact) Importances() []float64 {
	if len(a.FeatureImportances) == 0 {
		return nil
	}
	return slices.Clone(a.FeatureImportances)
}
