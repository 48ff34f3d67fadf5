package sink

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/hazyhaar/sitecheck/sitecheck/finding"
)

// JSONL writes one JSON line per run to an io.Writer.
type JSONL struct {
	mu     sync.Mutex
	enc    *json.Encoder
	closer io.Closer
}

// NewJSONL creates a JSONL sink. If w is nil, os.Stdout is used.
func NewJSONL(w io.Writer) *JSONL {
	if w == nil {
		w = os.Stdout
	}
	return &JSONL{enc: json.NewEncoder(w)}
}

// OpenJSONL appends JSON lines to the file at path, creating it if needed.
func OpenJSONL(path string) (*JSONL, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("jsonl: open: %w", err)
	}
	s := NewJSONL(f)
	s.closer = f
	return s, nil
}

func (s *JSONL) Send(_ context.Context, res *finding.RunResult) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.enc.Encode(envelope{Type: "run", Data: res})
}

func (s *JSONL) Close() error {
	if s.closer != nil {
		return s.closer.Close()
	}
	return nil
}
