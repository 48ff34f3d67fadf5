package browser

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/cdproto/runtime"
	"github.com/chromedp/chromedp"
)

// Chromedp is a Provider driving Chrome through chromedp. It does not
// support remote control URLs, stealth pages or resource blocking.
type Chromedp struct {
	cfg Config
}

// NewChromedp creates a chromedp Provider.
func NewChromedp(cfg Config) *Chromedp {
	cfg.defaults()
	return &Chromedp{cfg: cfg}
}

// Open starts a Chrome process and a fresh tab, with the Runtime and
// Network domains enabled before any navigation.
func (c *Chromedp) Open(ctx context.Context) (Session, error) {
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", c.cfg.Headless),
		chromedp.Flag("disable-gpu", true),
	)
	if c.cfg.Bin != "" {
		opts = append(opts, chromedp.ExecPath(c.cfg.Bin))
	}

	allocCtx, allocCancel := chromedp.NewExecAllocator(ctx, opts...)
	tabCtx, tabCancel := chromedp.NewContext(allocCtx)

	s := &cdpSession{
		cfg:         c.cfg,
		ctx:         tabCtx,
		cancelTab:   tabCancel,
		cancelAlloc: allocCancel,
		inflight:    make(map[network.RequestID]struct{}),
	}
	chromedp.ListenTarget(tabCtx, s.onEvent)

	if err := chromedp.Run(tabCtx, runtime.Enable(), network.Enable()); err != nil {
		s.Close()
		return nil, fmt.Errorf("browser: chromedp start: %w", err)
	}
	c.cfg.Logger.Info("browser: chromedp tab ready", "headless", c.cfg.Headless)
	return s, nil
}

type cdpSession struct {
	cfg         Config
	ctx         context.Context
	cancelTab   context.CancelFunc
	cancelAlloc context.CancelFunc

	mu           sync.Mutex
	onConsole    func(level, text string)
	onException  func(message string)
	inflight     map[network.RequestID]struct{}
	lastActivity time.Time
	closed       bool
}

// onEvent runs on the target's event goroutine and must not block.
func (s *cdpSession) onEvent(ev interface{}) {
	switch e := ev.(type) {
	case *runtime.EventConsoleAPICalled:
		parts := make([]string, 0, len(e.Args))
		for _, a := range e.Args {
			parts = append(parts, remoteText(string(a.Type), a.Description,
				string(a.UnserializableValue), []byte(a.Value)))
		}
		s.mu.Lock()
		fn := s.onConsole
		s.mu.Unlock()
		if fn != nil {
			fn(string(e.Type), joinArgs(parts))
		}

	case *runtime.EventExceptionThrown:
		d := e.ExceptionDetails
		if d == nil {
			return
		}
		var desc, value string
		if d.Exception != nil {
			desc = d.Exception.Description
			if len(d.Exception.Value) > 0 {
				value = remoteText(string(d.Exception.Type), "", "", []byte(d.Exception.Value))
			}
		}
		s.mu.Lock()
		fn := s.onException
		s.mu.Unlock()
		if fn != nil {
			fn(exceptionText(d.Text, desc, value))
		}

	case *network.EventRequestWillBeSent:
		s.trackRequest(e.RequestID, true)
	case *network.EventLoadingFinished:
		s.trackRequest(e.RequestID, false)
	case *network.EventLoadingFailed:
		s.trackRequest(e.RequestID, false)
	}
}

func (s *cdpSession) trackRequest(id network.RequestID, started bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if started {
		s.inflight[id] = struct{}{}
	} else {
		delete(s.inflight, id)
	}
	s.lastActivity = time.Now()
}

// idle reports whether no request is in flight and none has started or
// finished for the idle window.
func (s *cdpSession) idle(now time.Time) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.inflight) == 0 && now.Sub(s.lastActivity) >= s.cfg.IdleWindow
}

func (s *cdpSession) OnConsole(fn func(level, text string)) {
	s.mu.Lock()
	s.onConsole = fn
	s.mu.Unlock()
}

func (s *cdpSession) OnException(fn func(message string)) {
	s.mu.Lock()
	s.onException = fn
	s.mu.Unlock()
}

// scoped derives a chromedp context from the tab that is also cancelled
// when ctx is done.
func (s *cdpSession) scoped(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	var run context.Context
	var cancel context.CancelFunc
	if timeout > 0 {
		run, cancel = context.WithTimeout(s.ctx, timeout)
	} else {
		run, cancel = context.WithCancel(s.ctx)
	}
	stop := context.AfterFunc(ctx, cancel)
	return run, func() {
		stop()
		cancel()
	}
}

func (s *cdpSession) Navigate(ctx context.Context, url string) error {
	run, cancel := s.scoped(ctx, s.cfg.NavigationTimeout)
	defer cancel()

	if err := chromedp.Run(run, chromedp.Navigate(url)); err != nil {
		return &NavigationError{URL: url, Err: err}
	}

	ticker := time.NewTicker(50 * time.Millisecond)
	defer ticker.Stop()
	for {
		select {
		case <-run.Done():
			return &NavigationError{URL: url, Err: run.Err()}
		case now := <-ticker.C:
			if s.idle(now) {
				return nil
			}
		}
	}
}

func (s *cdpSession) Has(ctx context.Context, selector string) (bool, error) {
	n, err := s.Count(ctx, selector)
	return n > 0, err
}

func (s *cdpSession) Count(ctx context.Context, selector string) (int, error) {
	sel, err := json.Marshal(selector)
	if err != nil {
		return 0, fmt.Errorf("browser: encode selector: %w", err)
	}

	run, cancel := s.scoped(ctx, 0)
	defer cancel()

	var n int
	expr := fmt.Sprintf("document.querySelectorAll(%s).length", sel)
	if err := chromedp.Run(run, chromedp.Evaluate(expr, &n)); err != nil {
		return 0, fmt.Errorf("browser: query all %q: %w", selector, err)
	}
	return n, nil
}

// Close closes the tab and browser, then kills the allocator's process and
// removes its profile directory.
func (s *cdpSession) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	s.mu.Unlock()

	err := chromedp.Cancel(s.ctx)
	s.cancelTab()
	s.cancelAlloc()
	if err != nil {
		s.cfg.Logger.Warn("browser: chromedp close", "error", err)
		return fmt.Errorf("browser: close: %w", err)
	}
	return nil
}
