package sitecheck

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/hazyhaar/sitecheck/sitecheck/finding"
	"github.com/hazyhaar/sitecheck/sitecheck/internal/sink"
)

// Sink is the output interface for completed runs.
type Sink = sink.Sink

// NewJSONLSink writes one JSON line per run to w (os.Stdout if nil).
func NewJSONLSink(w io.Writer) Sink {
	return sink.NewJSONL(w)
}

// OpenJSONLSink appends JSON lines to the file at path.
func OpenJSONLSink(path string) (Sink, error) {
	return sink.OpenJSONL(path)
}

// NewWebhookSink creates a webhook POST sink with retry.
func NewWebhookSink(url string, logger *slog.Logger) Sink {
	return sink.NewWebhook(url, sink.WithWebhookLogger(logger))
}

// NewCallbackSink creates an in-process sink calling fn for each run.
func NewCallbackSink(fn func(ctx context.Context, res *finding.RunResult) error) Sink {
	return sink.NewCallback(fn)
}

// OpenSinks builds the sinks described by cfgs. stdout is where "stdout"
// sinks and path-less "jsonl" sinks write. On error, sinks already opened
// are closed.
func OpenSinks(cfgs []SinkConfig, stdout io.Writer, logger *slog.Logger) ([]Sink, error) {
	var out []Sink
	for i, sc := range cfgs {
		switch {
		case sc.Type == "webhook":
			out = append(out, NewWebhookSink(sc.URL, logger))
		case sc.Type == "stdout", sc.Type == "jsonl" && sc.Path == "":
			out = append(out, NewJSONLSink(stdout))
		case sc.Type == "jsonl":
			s, err := OpenJSONLSink(sc.Path)
			if err != nil {
				closeAll(out)
				return nil, fmt.Errorf("sitecheck: sink %d: %w", i, err)
			}
			out = append(out, s)
		default:
			closeAll(out)
			return nil, fmt.Errorf("sitecheck: sink %d: unknown type %q", i, sc.Type)
		}
	}
	return out, nil
}

func closeAll(sinks []Sink) {
	for _, s := range sinks {
		s.Close()
	}
}
