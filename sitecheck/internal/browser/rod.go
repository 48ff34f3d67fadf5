package browser

import (
	"context"
	"fmt"
	"sync"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
	"github.com/go-rod/stealth"
)

// Rod is the default Provider, driving Chrome through go-rod.
type Rod struct {
	cfg Config
}

// NewRod creates a rod Provider.
func NewRod(cfg Config) *Rod {
	cfg.defaults()
	return &Rod{cfg: cfg}
}

// Open launches Chrome (or connects to a remote instance), creates an
// incognito browser context and a page inside it, and starts listening
// for Runtime events.
func (r *Rod) Open(ctx context.Context) (Session, error) {
	s := &rodSession{cfg: r.cfg}
	if err := s.start(ctx); err != nil {
		s.Close()
		return nil, err
	}
	return s, nil
}

type rodSession struct {
	cfg Config

	lnch    *launcher.Launcher
	browser *rod.Browser
	incog   *rod.Browser
	page    *rod.Page
	router  *rod.HijackRouter

	stopEvents context.CancelFunc
	eventsDone chan struct{}

	mu          sync.Mutex
	onConsole   func(level, text string)
	onException func(message string)
	closed      bool
}

func (s *rodSession) start(ctx context.Context) error {
	log := s.cfg.Logger

	var wsURL string
	if s.cfg.RemoteURL != "" {
		wsURL = s.cfg.RemoteURL
		log.Info("browser: connecting to remote", "url", wsURL)
	} else {
		l := launcher.New().Context(ctx).Headless(s.cfg.Headless)
		if s.cfg.Bin != "" {
			l = l.Bin(s.cfg.Bin)
		}

		u, err := l.Launch()
		if err != nil {
			return fmt.Errorf("browser: launch: %w", err)
		}
		wsURL = u
		s.lnch = l
		log.Info("browser: launched local chrome", "url", wsURL, "headless", s.cfg.Headless)
	}

	b := rod.New().ControlURL(wsURL)
	if err := b.Connect(); err != nil {
		return fmt.Errorf("browser: connect: %w", err)
	}
	s.browser = b

	incog, err := b.Incognito()
	if err != nil {
		return fmt.Errorf("browser: new context: %w", err)
	}
	s.incog = incog

	var page *rod.Page
	if s.cfg.Stealth {
		page, err = stealth.Page(incog)
	} else {
		page, err = incog.Page(proto.TargetCreateTarget{URL: ""})
	}
	if err != nil {
		return fmt.Errorf("browser: create page: %w", err)
	}
	s.page = page

	if len(s.cfg.ResourceBlocking) > 0 {
		s.router = applyResourceBlocking(page, s.cfg.ResourceBlocking)
	}

	return s.listen()
}

// listen subscribes to console and exception events. The subscription is
// in place when listen returns, so nothing emitted by a later Navigate is
// missed.
func (s *rodSession) listen() error {
	if err := (proto.RuntimeEnable{}).Call(s.page); err != nil {
		return fmt.Errorf("browser: enable runtime: %w", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	s.stopEvents = cancel
	s.eventsDone = make(chan struct{})

	wait := s.page.Context(ctx).EachEvent(
		func(e *proto.RuntimeConsoleAPICalled) {
			parts := make([]string, 0, len(e.Args))
			for _, a := range e.Args {
				parts = append(parts, remoteText(string(a.Type), a.Description,
					string(a.UnserializableValue), []byte(a.Value.JSON("", ""))))
			}
			s.console(string(e.Type), joinArgs(parts))
		},
		func(e *proto.RuntimeExceptionThrown) {
			d := e.ExceptionDetails
			if d == nil {
				return
			}
			var desc, value string
			if d.Exception != nil {
				desc = d.Exception.Description
				if !d.Exception.Value.Nil() {
					value = d.Exception.Value.Str()
				}
			}
			s.exception(exceptionText(d.Text, desc, value))
		},
	)

	go func() {
		defer close(s.eventsDone)
		wait()
	}()
	return nil
}

func (s *rodSession) OnConsole(fn func(level, text string)) {
	s.mu.Lock()
	s.onConsole = fn
	s.mu.Unlock()
}

func (s *rodSession) OnException(fn func(message string)) {
	s.mu.Lock()
	s.onException = fn
	s.mu.Unlock()
}

func (s *rodSession) console(level, text string) {
	s.mu.Lock()
	fn := s.onConsole
	s.mu.Unlock()
	if fn != nil {
		fn(level, text)
	}
}

func (s *rodSession) exception(message string) {
	s.mu.Lock()
	fn := s.onException
	s.mu.Unlock()
	if fn != nil {
		fn(message)
	}
}

// Navigate loads url and waits until the load event has fired and no
// request has been in flight for the idle window.
func (s *rodSession) Navigate(ctx context.Context, url string) error {
	navCtx, cancel := context.WithTimeout(ctx, s.cfg.NavigationTimeout)
	defer cancel()

	page := s.page.Context(navCtx)
	waitIdle := page.WaitRequestIdle(s.cfg.IdleWindow, nil, nil, nil)

	if err := page.Navigate(url); err != nil {
		return &NavigationError{URL: url, Err: err}
	}
	if err := page.WaitLoad(); err != nil {
		return &NavigationError{URL: url, Err: err}
	}
	waitIdle()

	if err := navCtx.Err(); err != nil {
		return &NavigationError{URL: url, Err: err}
	}
	return nil
}

func (s *rodSession) Has(ctx context.Context, selector string) (bool, error) {
	has, _, err := s.page.Context(ctx).Has(selector)
	if err != nil {
		return false, fmt.Errorf("browser: query %q: %w", selector, err)
	}
	return has, nil
}

func (s *rodSession) Count(ctx context.Context, selector string) (int, error) {
	els, err := s.page.Context(ctx).Elements(selector)
	if err != nil {
		return 0, fmt.Errorf("browser: query all %q: %w", selector, err)
	}
	return len(els), nil
}

// Close stops the event listener, then releases the page, the incognito
// context, and (for a local launch) the browser process. Safe to call on a
// partially started session and more than once.
func (s *rodSession) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	s.mu.Unlock()

	if s.stopEvents != nil {
		s.stopEvents()
		<-s.eventsDone
	}

	var firstErr error
	keep := func(err error) {
		if err != nil && firstErr == nil {
			firstErr = err
		}
	}

	if s.router != nil {
		keep(s.router.Stop())
	}
	if s.page != nil {
		keep(s.page.Close())
	}
	if s.incog != nil {
		keep(s.incog.Close())
	}
	// A remote browser is shared; only the context created here is ours.
	if s.browser != nil && s.cfg.RemoteURL == "" {
		keep(s.browser.Close())
	}
	if s.lnch != nil {
		s.lnch.Cleanup()
	}

	if firstErr != nil {
		s.cfg.Logger.Warn("browser: close", "error", firstErr)
		return fmt.Errorf("browser: close: %w", firstErr)
	}
	return nil
}
