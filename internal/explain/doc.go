// Package explain predicts crop loss from a feature vector, attributes the
// prediction to individual features and renders the attribution as a
// farmer-facing narrative with a PMFBY eligibility verdict.
//
// Two scoring strategies exist. The rule strategy adds fixed stress terms to
// the NDVI decline. The trained strategy evaluates a linear model loaded from
// a JSON artifact, and is only used when the artifact's feature schema equals
// the live schema exactly.
package explain
