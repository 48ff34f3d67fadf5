// Command sitecheck loads a landing page in headless Chrome and verifies
// that its sections are present.
//
// Usage:
//
//	sitecheck                              # index.html next to the binary
//	sitecheck ./public/index.html          # a local file
//	sitecheck https://staging.example.com  # a deployed page
//	sitecheck --serve --strict index.html  # over loopback HTTP, page errors fail
//	sitecheck history --limit 10           # recent runs from the history db
//
// The exit code is 0 when every check passed and 1 otherwise.
package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/hazyhaar/sitecheck/sitecheck"
)

// version is set at build time via -ldflags.
var version = "dev"

type rootFlags struct {
	config    string
	dotenv    string
	target    string
	checklist string
	provider  string
	headful   bool
	remote    string
	stealth   bool
	serve     bool
	strict    bool
	jsonl     string
	webhooks  []string
	history   string
	logLevel  string
	timeout   time.Duration
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	code := execute(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

// runFunc performs one check and returns the exit code.
type runFunc func(ctx context.Context, cfg *sitecheck.Config, stdout, stderr io.Writer, logger *slog.Logger) int

// execute runs the command line and returns the process exit code.
func execute(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	code := 0
	root := newRootCmd(&code, sitecheck.Run)
	root.SetArgs(args)
	root.SetOut(stdout)
	root.SetErr(stderr)
	if err := root.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(stderr, err)
		return 1
	}
	return code
}

func newRootCmd(code *int, run runFunc) *cobra.Command {
	var f rootFlags

	root := &cobra.Command{
		Use:   "sitecheck [target]",
		Short: "Smoke-test a landing page in headless Chrome",
		Long: "sitecheck loads a page in headless Chrome, checks that each expected\n" +
			"section is present, counts images and navigation links, and reports\n" +
			"console errors, warnings and uncaught exceptions.",
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		Version:       version,
		CompletionOptions: cobra.CompletionOptions{
			HiddenDefaultCmd: true,
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 1 {
				if err := cmd.Flags().Set("target", args[0]); err != nil {
					return err
				}
			}
			cfg, err := loadConfig(cmd, &f)
			if err != nil {
				return err
			}
			logger := newLogger(cmd.ErrOrStderr(), cfg.LogLevel)
			*code = run(cmd.Context(), cfg, cmd.OutOrStdout(), cmd.ErrOrStderr(), logger)
			return nil
		},
	}

	pf := root.PersistentFlags()
	pf.StringVar(&f.config, "config", "", "path to sitecheck.yaml")
	pf.StringVar(&f.dotenv, "dotenv", ".env", "path to a .env file (skipped when absent)")
	pf.StringVar(&f.history, "history", "", "SQLite run history path")
	pf.StringVar(&f.logLevel, "log-level", "", "log level: debug, info, warn, error")

	fl := root.Flags()
	fl.StringVar(&f.target, "target", "", "file path or URL to check (default index.html next to the binary)")
	fl.StringVar(&f.checklist, "checklist", "", "YAML checklist replacing the built-in one")
	fl.StringVar(&f.provider, "provider", "", "browser automation provider: rod, chromedp")
	fl.BoolVar(&f.headful, "headful", false, "show the browser window")
	fl.StringVar(&f.remote, "remote", "", "control URL of an already running Chrome (rod)")
	fl.BoolVar(&f.stealth, "stealth", false, "create the page through go-rod/stealth")
	fl.BoolVar(&f.serve, "serve", false, "serve the target's directory over loopback HTTP")
	fl.BoolVar(&f.strict, "strict", false, "fail the run on console errors and page exceptions")
	fl.StringVar(&f.jsonl, "jsonl", "", "append the run as a JSON line to this file (- for stdout)")
	fl.StringArrayVar(&f.webhooks, "webhook", nil, "POST the run to this URL (repeatable)")
	fl.DurationVar(&f.timeout, "timeout", 0, "navigation timeout (default 30s)")

	root.AddCommand(newHistoryCmd(&f))
	return root
}

// loadConfig merges, lowest precedence first: defaults, the config file,
// the .env file and SITECHECK_* variables, then explicitly set flags.
func loadConfig(cmd *cobra.Command, f *rootFlags) (*sitecheck.Config, error) {
	cfg := sitecheck.DefaultConfig()
	if f.config != "" {
		c, err := sitecheck.LoadConfigFile(f.config)
		if err != nil {
			return nil, err
		}
		cfg = c
	}

	if err := sitecheck.LoadDotEnv(f.dotenv); err != nil {
		return nil, err
	}
	if err := cfg.ApplyEnv(os.Getenv); err != nil {
		return nil, err
	}

	changed := func(name string) bool {
		fl := cmd.Flags().Lookup(name)
		return fl != nil && fl.Changed
	}
	if changed("target") {
		cfg.Target = f.target
	}
	if changed("checklist") {
		cfg.Checklist = f.checklist
	}
	if changed("provider") {
		cfg.Browser.Provider = f.provider
	}
	if changed("headful") {
		headless := !f.headful
		cfg.Browser.Headless = &headless
	}
	if changed("remote") {
		cfg.Browser.Remote = f.remote
	}
	if changed("stealth") {
		cfg.Browser.Stealth = f.stealth
	}
	if changed("serve") {
		cfg.Serve = f.serve
	}
	if changed("strict") {
		cfg.Strict = f.strict
	}
	if changed("timeout") {
		cfg.Browser.NavigationTimeout = f.timeout
	}
	if changed("history") {
		cfg.History.Path = f.history
	}
	if changed("log-level") {
		cfg.LogLevel = f.logLevel
	}
	if changed("jsonl") {
		path := f.jsonl
		if path == "-" {
			path = ""
		}
		cfg.Sinks = append(cfg.Sinks, sitecheck.SinkConfig{Type: "jsonl", Path: path})
	}
	for _, u := range f.webhooks {
		cfg.Sinks = append(cfg.Sinks, sitecheck.SinkConfig{Type: "webhook", URL: u})
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func newLogger(w io.Writer, level string) *slog.Logger {
	return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: parseLevel(level)}))
}

func parseLevel(s string) slog.Level {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "error":
		return slog.LevelError
	default:
		return slog.LevelWarn
	}
}
