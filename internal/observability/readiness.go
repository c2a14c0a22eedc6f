package observability

import (
	"context"
	"fmt"

	sharedobs "github.com/couchcryptid/storm-data-shared/observability"
)

// NamedCheck is one dependency probed by /readyz.
type NamedCheck struct {
	Name    string
	Checker sharedobs.ReadinessChecker
}

// ReadinessGroup is ready only when every check passes. The first failure is
// reported with its name.
type ReadinessGroup []NamedCheck

// CheckReadiness implements sharedobs.ReadinessChecker.
func (g ReadinessGroup) CheckReadiness(ctx context.Context) error {
	for _, c := range g {
		if err := c.Checker.CheckReadiness(ctx); err != nil {
			return fmt.Errorf("%s: %w", c.Name, err)
		}
	}
	return nil
}
