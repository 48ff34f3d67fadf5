package sitecheck

import (
	"bytes"
	"context"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/go-rod/rod/lib/launcher"
)

func TestRun_RealBrowser(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping browser test in short mode")
	}
	if _, ok := launcher.LookPath(); !ok {
		t.Skip("no Chrome/Chromium found")
	}

	for _, provider := range []string{"rod", "chromedp"} {
		t.Run(provider, func(t *testing.T) {
			abs, err := filepath.Abs(filepath.Join("testdata", "index.html"))
			if err != nil {
				t.Fatal(err)
			}
			cfg := DefaultConfig()
			cfg.Target = abs
			cfg.Browser.Provider = provider
			cfg.Browser.NavigationTimeout = 20 * time.Second

			ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
			defer cancel()

			var stdout, stderr bytes.Buffer
			code := Run(ctx, cfg, &stdout, &stderr, nil)
			if strings.HasPrefix(stderr.String(), "Test failed: sitecheck: open browser") {
				t.Skipf("browser unavailable: %s", stderr.String())
			}
			if code != 0 {
				t.Fatalf("exit code: got %d\nstdout:\n%s\nstderr:\n%s", code, stdout.String(), stderr.String())
			}
			out := stdout.String()
			for _, want := range []string{
				"✓ Found 3 images",
				"✓ Found 5 navigation links",
				"✓ Contact form found",
				"✓ All tests passed! No errors detected.",
				"⚠ 1 warning(s):\n  - analytics disabled",
			} {
				if !strings.Contains(out, want) {
					t.Errorf("stdout missing %q:\n%s", want, out)
				}
			}
		})
	}
}
