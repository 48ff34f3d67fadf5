package sitecheck

import (
	"context"
	"errors"
	"sync"

	"github.com/hazyhaar/sitecheck/sitecheck/finding"
)

type consoleMsg struct{ level, text string }

// fakePage describes what the fake browser sees once navigation succeeds.
type fakePage struct {
	present    map[string]bool
	counts     map[string]int
	lookupErr  map[string]error
	navErr     error
	console    []consoleMsg // emitted during Navigate
	exceptions []string     // emitted during Navigate
	onClose    []string     // exceptions still in flight when Close is called
	cancelOn   string       // selector whose lookup cancels the run
	cancel     context.CancelFunc
}

// landingPage has every checked section, 5 images and 6 nav links.
func landingPage() *fakePage {
	p := &fakePage{
		present: map[string]bool{},
		counts:  map[string]int{"img": 5, ".nav-links a": 6},
	}
	l := DefaultChecklist()
	for _, c := range l.Checks {
		p.present[c.Selector] = true
	}
	for _, c := range l.AdHoc {
		p.present[c.Selector] = true
	}
	return p
}

type fakeProvider struct {
	page    *fakePage
	openErr error

	mu       sync.Mutex
	sessions []*fakeSession
}

func (p *fakeProvider) Open(context.Context) (Session, error) {
	if p.openErr != nil {
		return nil, p.openErr
	}
	s := &fakeSession{page: p.page}
	p.mu.Lock()
	p.sessions = append(p.sessions, s)
	p.mu.Unlock()
	return s, nil
}

func (p *fakeProvider) session() *fakeSession {
	p.mu.Lock()
	defer p.mu.Unlock()
	if len(p.sessions) == 0 {
		return nil
	}
	return p.sessions[len(p.sessions)-1]
}

type fakeSession struct {
	page *fakePage

	mu          sync.Mutex
	onConsole   func(level, text string)
	onException func(message string)
	navigated   []string
	queries     []string
	closed      int
}

func (s *fakeSession) OnConsole(fn func(level, text string)) { s.onConsole = fn }

func (s *fakeSession) OnException(fn func(message string)) { s.onException = fn }

// Navigate delivers the page's diagnostics from another goroutine, the way
// a real browser binding does.
func (s *fakeSession) Navigate(_ context.Context, url string) error {
	s.mu.Lock()
	s.navigated = append(s.navigated, url)
	s.mu.Unlock()

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for _, m := range s.page.console {
			if s.onConsole != nil {
				s.onConsole(m.level, m.text)
			}
		}
		for _, e := range s.page.exceptions {
			if s.onException != nil {
				s.onException(e)
			}
		}
	}()
	wg.Wait()
	return s.page.navErr
}

func (s *fakeSession) Has(ctx context.Context, selector string) (bool, error) {
	s.record(selector)
	if selector == s.page.cancelOn && s.page.cancel != nil {
		s.page.cancel()
		return false, ctx.Err()
	}
	if err := s.page.lookupErr[selector]; err != nil {
		return false, err
	}
	return s.page.present[selector], nil
}

func (s *fakeSession) Count(_ context.Context, selector string) (int, error) {
	s.record(selector)
	if err := s.page.lookupErr[selector]; err != nil {
		return 0, err
	}
	return s.page.counts[selector], nil
}

func (s *fakeSession) Close() error {
	for _, e := range s.page.onClose {
		if s.onException != nil {
			s.onException(e)
		}
	}
	s.mu.Lock()
	s.closed++
	s.mu.Unlock()
	return nil
}

func (s *fakeSession) record(selector string) {
	s.mu.Lock()
	s.queries = append(s.queries, selector)
	s.mu.Unlock()
}

// recorder captures Progress events in order.
type recorder struct {
	events []string
}

func (r *recorder) Loaded(url string) { r.events = append(r.events, "loaded") }

func (r *recorder) Finding(f finding.Finding) {
	if f.Passed {
		r.events = append(r.events, "pass:"+f.Label)
		return
	}
	r.events = append(r.events, "fail:"+f.Label)
}

func (r *recorder) Counts(images, navLinks int) { r.events = append(r.events, "counts") }

var errLookup = errors.New("lookup exploded")
