package domain

import (
	"context"
	"time"
)

// EstimateEvent is the audit record of one orchestrated estimate.
type EstimateEvent struct {
	ID         string           `json:"id"`
	Request    EstimateRequest  `json:"request"`
	Estimate   CropLossEstimate `json:"estimate"`
	ProducedAt time.Time        `json:"produced_at"`
}

type requestIDKey struct{}

// WithRequestID returns a context carrying the caller's request ID.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, id)
}

// RequestIDFromContext returns the request ID stored by WithRequestID, if any.
func RequestIDFromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(requestIDKey{}).(string)
	return id, ok && id != ""
}
