package sitecheck

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/hazyhaar/sitecheck/sitecheck/finding"
	"github.com/hazyhaar/sitecheck/sitecheck/internal/docserver"
	"github.com/hazyhaar/sitecheck/sitecheck/internal/report"
	"github.com/hazyhaar/sitecheck/sitecheck/internal/sink"
)

// Run performs one complete check as configured by cfg: it prints the
// report to stdout, delivers the result to the configured sinks and the
// history, and returns the process exit code. Failures before the page is
// loaded are printed to stderr as "Test failed: <message>" and yield 1.
// Sink and history failures are logged and never change the exit code.
func Run(ctx context.Context, cfg *Config, stdout, stderr io.Writer, logger *slog.Logger) int {
	provider, err := NewProvider(cfg.Browser, logger)
	if err != nil {
		return report.New(stdout, report.WithErrorWriter(stderr)).Fatal(err)
	}
	return run(ctx, cfg, provider, stdout, stderr, logger)
}

func run(ctx context.Context, cfg *Config, provider Provider, stdout, stderr io.Writer, logger *slog.Logger) int {
	if logger == nil {
		logger = slog.Default()
	}
	rep := report.New(stdout, report.WithErrorWriter(stderr), report.WithStrict(cfg.Strict))

	list := DefaultChecklist()
	if cfg.Checklist != "" {
		l, err := LoadChecklist(cfg.Checklist)
		if err != nil {
			return rep.Fatal(err)
		}
		list = l
	}

	target, local, err := ResolveTarget(cfg.Target)
	if err != nil {
		return rep.Fatal(err)
	}
	if cfg.Serve {
		if local == "" {
			logger.Warn("sitecheck: serve ignored for non-file target", "target", target)
		} else {
			srv, err := docserver.New(local, logger)
			if err != nil {
				return rep.Fatal(err)
			}
			defer srv.Close()
			if target, err = srv.Start(); err != nil {
				return rep.Fatal(err)
			}
		}
	}

	sinks, err := OpenSinks(cfg.Sinks, stdout, logger)
	if err != nil {
		return rep.Fatal(err)
	}
	router := sink.NewRouter(logger, sinks...)
	defer router.Close()

	v := NewVerifier(provider,
		WithChecklist(list),
		WithProgress(rep),
		WithLogger(logger),
	)
	res, err := v.Verify(ctx, target)
	if err != nil {
		return rep.Fatal(err)
	}

	code := rep.Summary(res)
	deliver(ctx, res, router, cfg.History.Path, logger)
	return code
}

func deliver(ctx context.Context, res *finding.RunResult, router *sink.Router, historyPath string, logger *slog.Logger) {
	if router.Len() > 0 {
		if err := router.Send(ctx, res); err != nil {
			logger.Warn("sitecheck: deliver result", "run_id", res.ID, "error", err)
		}
	}

	if historyPath == "" {
		return
	}
	store, err := OpenHistory(historyPath)
	if err != nil {
		logger.Warn("sitecheck: open history", "path", historyPath, "error", err)
		return
	}
	defer store.Close()
	if err := store.Record(ctx, res); err != nil {
		logger.Warn("sitecheck: record history", "run_id", res.ID, "error", err)
	}
}

// ResolveTarget turns a target into the URL to navigate to. http, https
// and file URLs are returned unchanged. Anything else is a file path: an
// absolute path is used as is; a relative one is looked up next to the
// executable first, then in the working directory. local is the resolved
// file path, or "" for http(s) targets.
func ResolveTarget(target string) (u string, local string, err error) {
	if target == "" {
		target = "index.html"
	}
	if parsed, perr := url.Parse(target); perr == nil {
		switch strings.ToLower(parsed.Scheme) {
		case "http", "https":
			return target, "", nil
		case "file":
			return target, filepath.FromSlash(parsed.Path), nil
		}
	}

	path := target
	if !filepath.IsAbs(path) {
		path, err = locate(target)
		if err != nil {
			return "", "", err
		}
	}
	return fileURL(path), path, nil
}

// locate resolves a relative path against the executable's directory,
// then the working directory. When the file exists in neither, the
// executable-relative path is returned so the navigation error names it.
func locate(rel string) (string, error) {
	var candidates []string
	if exe, err := os.Executable(); err == nil {
		if resolved, err := filepath.EvalSymlinks(exe); err == nil {
			exe = resolved
		}
		candidates = append(candidates, filepath.Join(filepath.Dir(exe), rel))
	}
	if wd, err := os.Getwd(); err == nil {
		candidates = append(candidates, filepath.Join(wd, rel))
	}
	if len(candidates) == 0 {
		return "", fmt.Errorf("sitecheck: cannot resolve %s", rel)
	}

	for _, c := range candidates {
		if info, err := os.Stat(c); err == nil && !info.IsDir() {
			return c, nil
		}
	}
	return candidates[0], nil
}

func fileURL(path string) string {
	p := filepath.ToSlash(path)
	if !strings.HasPrefix(p, "/") {
		p = "/" + p
	}
	return (&url.URL{Scheme: "file", Path: p}).String()
}
