package sink

import (
	"context"

	"github.com/hazyhaar/sitecheck/sitecheck/finding"
)

// ResultFunc is called for each finalized run.
type ResultFunc func(ctx context.Context, res *finding.RunResult) error

// Callback delivers results via a Go function call, for embedding
// sitecheck in another program.
type Callback struct {
	fn ResultFunc
}

// NewCallback creates a Callback sink. fn may be nil.
func NewCallback(fn ResultFunc) *Callback {
	return &Callback{fn: fn}
}

func (c *Callback) Send(ctx context.Context, res *finding.RunResult) error {
	if c.fn != nil {
		return c.fn(ctx, res)
	}
	return nil
}

func (c *Callback) Close() error { return nil }
