// Package sink defines output backends for completed run results.
package sink

import (
	"context"

	"github.com/hazyhaar/sitecheck/sitecheck/finding"
)

// Sink delivers finalized run results to a backend (JSON lines, webhook,
// in-process callback).
type Sink interface {
	Send(ctx context.Context, res *finding.RunResult) error
	Close() error
}

type envelope struct {
	Type string `json:"type"`
	Data any    `json:"data"`
}
