package explain

import (
	"log/slog"

	"github.com/couchcryptid/crop-loss-service/internal/domain"
)

// Strategy names the scoring path used for a prediction.
type Strategy string

const (
	StrategyRule    Strategy = "rule"
	StrategyTrained Strategy = "trained"
)

const (
	ruleConfidence    = 0.85
	trainedConfidence = 0.92
)

// Model scores feature vectors. It is read-only after construction and safe
// for concurrent use.
type Model struct {
	trained *Artifact
}

// NewRuleModel returns a model that always uses the rule strategy.
func NewRuleModel() *Model {
	return &Model{}
}

// NewModel binds a trained artifact to the live feature schema. When the
// artifact is nil or its schema does not match, the model stays on the rule
// strategy and the mismatch is logged.
func NewModel(artifact *Artifact, logger *slog.Logger) *Model {
	if artifact == nil {
		return NewRuleModel()
	}
	if err := artifact.Bind(domain.FeatureNames()); err != nil {
		logger.Warn("trained model rejected, using rule strategy", "error", err)
		return NewRuleModel()
	}
	logger.Info("trained model bound",
		"model_type", artifact.ModelType,
		"trained_at", artifact.TrainedAt,
		"native_importances", len(artifact.FeatureImportances) > 0,
	)
	return &Model{trained: artifact}
}

// Strategy reports which scoring path Predict uses.
func (m *Model) Strategy() Strategy {
	if m.trained != nil {
		return StrategyTrained
	}
	return StrategyRule
}

// Confidence is the fixed confidence of the active strategy.
func (m *Model) Confidence() float64 {
	if m.trained != nil {
		return trainedConfidence
	}
	return ruleConfidence
}

// Predict returns the clamped loss percentage and the ranked attribution for v.
func (m *Model) Predict(v domain.FeatureVector) (float64, []domain.FeatureExplanation) {
	if m.trained == nil {
		return RuleLoss(v), Attribute(v, RuleImportances(v))
	}

	loss := domain.Clamp(m.trained.Predict(v.Values()), 0, 100)
	importances := m.trained.Importances()
	if importances == nil {
		importances = RuleImportances(v)
	}
	return loss, Attribute(v, importances)
}
