package docserver

import (
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeSite(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "index.html"), []byte("<nav class=\"nav\"></nav>"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "app.js"), []byte("console.log('hi')"), 0o644); err != nil {
		t.Fatal(err)
	}
	return filepath.Join(dir, "index.html")
}

func get(t *testing.T, url string) (int, string) {
	t.Helper()
	resp, err := http.Get(url)
	if err != nil {
		t.Fatalf("GET %s: %v", url, err)
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)
	return resp.StatusCode, string(body)
}

func TestServer_ServesDocumentAndSiblings(t *testing.T) {
	s, err := New(writeSite(t), nil)
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()

	docURL, err := s.Start()
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	if !strings.HasPrefix(docURL, "http://127.0.0.1:") || !strings.HasSuffix(docURL, "/index.html") {
		t.Fatalf("url: got %q", docURL)
	}

	code, body := get(t, docURL)
	if code != http.StatusOK {
		t.Fatalf("status: got %d, want 200", code)
	}
	if !strings.Contains(body, `class="nav"`) {
		t.Errorf("body: got %q", body)
	}

	code, body = get(t, s.BaseURL()+"/app.js")
	if code != http.StatusOK || !strings.Contains(body, "console.log") {
		t.Errorf("sibling: got %d %q", code, body)
	}

	code, _ = get(t, s.BaseURL()+"/missing.css")
	if code != http.StatusNotFound {
		t.Errorf("missing: got %d, want 404", code)
	}

	code, _ = get(t, s.BaseURL()+"/healthz")
	if code != http.StatusNoContent {
		t.Errorf("healthz: got %d, want 204", code)
	}
}

func TestServer_StartTwiceReturnsSameURL(t *testing.T) {
	s, err := New(writeSite(t), nil)
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()

	first, err := s.Start()
	if err != nil {
		t.Fatal(err)
	}
	second, err := s.Start()
	if err != nil {
		t.Fatal(err)
	}
	if first != second {
		t.Errorf("got %q then %q", first, second)
	}
}

func TestServer_Close(t *testing.T) {
	s, err := New(writeSite(t), nil)
	if err != nil {
		t.Fatal(err)
	}
	if err := s.Close(); err != nil {
		t.Fatalf("close before start: %v", err)
	}
	docURL, err := s.Start()
	if err != nil {
		t.Fatal(err)
	}
	if err := s.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	if err := s.Close(); err != nil {
		t.Fatalf("second close: %v", err)
	}
	if _, err := http.Get(docURL); err == nil {
		t.Error("expected request to fail after Close")
	}
}

func TestNew_Errors(t *testing.T) {
	if _, err := New(filepath.Join(t.TempDir(), "nope.html"), nil); err == nil {
		t.Error("missing file: expected error")
	}
	if _, err := New(t.TempDir(), nil); err == nil {
		t.Error("directory: expected error")
	}
}

func TestServer_StartThenImmediateClose(t *testing.T) {
	path := writeSite(t)
	for i := 0; i < 50; i++ {
		s, err := New(path, nil)
		if err != nil {
			t.Fatal(err)
		}
		if _, err := s.Start(); err != nil {
			t.Fatalf("start %d: %v", i, err)
		}
		if err := s.Close(); err != nil {
			t.Fatalf("close %d: %v", i, err)
		}
	}
}
