package search

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gdamore/tcell/v2"

	"github.com/baaaaaaaka/jdeps/internal/deps"
	"github.com/baaaaaaaka/jdeps/internal/tui"
)

type sizedScreen struct {
	tcell.Screen
}

func (s *sizedScreen) Init() error {
	if err := s.Screen.Init(); err != nil {
		return err
	}
	s.Screen.SetSize(80, 24)
	return nil
}

func useSimulationScreen(t *testing.T) tcell.Screen {
	t.Helper()
	screen := tcell.NewSimulationScreen("UTF-8")
	prevNewScreen, prevCheck := newScreen, checkTerminal
	newScreen = func() (tcell.Screen, error) {
		return &sizedScreen{Screen: screen}, nil
	}
	checkTerminal = func() error { return nil }
	t.Cleanup(func() {
		newScreen = prevNewScreen
		checkTerminal = prevCheck
	})
	return screen
}

func readScreenLine(screen tcell.Screen, y int) string {
	w, _ := screen.Size()
	var buf strings.Builder
	for x := 0; x < w; x++ {
		ch, _, _, _ := screen.GetContent(x, y)
		if ch == 0 {
			ch = ' '
		}
		buf.WriteRune(ch)
	}
	return buf.String()
}

// waitFor polls the screen until row y satisfies match. It runs on helper
// goroutines, so it reports instead of failing the test.
func waitFor(screen tcell.Screen, y int, match func(string) bool) bool {
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if match(readScreenLine(screen, y)) {
			return true
		}
		time.Sleep(5 * time.Millisecond)
	}
	return false
}

func hasPrefix(prefix string) func(string) bool {
	return func(line string) bool { return strings.HasPrefix(line, prefix) }
}

func typeText(screen tcell.Screen, text string) {
	for _, r := range text {
		_ = screen.PostEvent(tcell.NewEventKey(tcell.KeyRune, r, tcell.ModNone))
	}
}

type fakeLookup struct {
	mu      sync.Mutex
	queries []string
	results []deps.Dependency
	err     error
}

func (f *fakeLookup) Lookup(_ context.Context, query string) ([]deps.Dependency, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.queries = append(f.queries, query)
	return f.results, f.err
}

func (f *fakeLookup) calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.queries...)
}

func TestRunReturnsSelectionOnEnter(t *testing.T) {
	screen := useSimulationScreen(t)
	fake := &fakeLookup{results: []deps.Dependency{
		{GroupID: "junit", ArtifactID: "junit", Version: "4.13.2"},
		{GroupID: "org.junit", ArtifactID: "junit-bom", Version: "5.10.1"},
	}}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	go func() {
		time.Sleep(50 * time.Millisecond)
		typeText(screen, "junit")
		if !waitFor(screen, 21, hasPrefix("→ 0|junit:junit:4.13.2")) {
			t.Errorf("results never rendered: %q", readScreenLine(screen, 21))
			_ = screen.PostEvent(tcell.NewEventKey(tcell.KeyCtrlC, 0, tcell.ModNone))
			return
		}
		_ = screen.PostEvent(tcell.NewEventKey(tcell.KeyUp, 0, tcell.ModNone))
		if !waitFor(screen, 20, hasPrefix("→ 1|")) {
			t.Errorf("selection never moved: %q", readScreenLine(screen, 20))
		}
		_ = screen.PostEvent(tcell.NewEventKey(tcell.KeyEnter, 0, tcell.ModNone))
	}()

	selection, err := Run(ctx, Options{Lookup: fake.Lookup, Debounce: 100 * time.Millisecond})
	if err != nil {
		t.Fatalf("Run error: %v", err)
	}
	if selection == nil || selection.ArtifactID != "junit-bom" {
		t.Fatalf("unexpected selection %#v", selection)
	}
	if got := fake.calls(); len(got) != 1 || got[0] != "junit" {
		t.Fatalf("expected one lookup for the final text, got %q", got)
	}
}

func TestRunCtrlCReturnsNil(t *testing.T) {
	screen := useSimulationScreen(t)
	fake := &fakeLookup{}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	go func() {
		time.Sleep(50 * time.Millisecond)
		_ = screen.PostEvent(tcell.NewEventKey(tcell.KeyCtrlC, 0, tcell.ModNone))
	}()

	selection, err := Run(ctx, Options{Lookup: fake.Lookup, Debounce: 30 * time.Millisecond})
	if err != nil {
		t.Fatalf("Run error: %v", err)
	}
	if selection != nil {
		t.Fatalf("expected no selection, got %#v", selection)
	}
	if got := fake.calls(); len(got) != 0 {
		t.Fatalf("expected no lookups, got %q", got)
	}
}

func TestRunShowsLookupFailure(t *testing.T) {
	screen := useSimulationScreen(t)
	fake := &fakeLookup{err: errors.New("connection refused")}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	go func() {
		time.Sleep(50 * time.Millisecond)
		typeText(screen, "x")
		if !waitFor(screen, 0, func(line string) bool { return strings.Contains(line, "connection refused") }) {
			t.Errorf("failure never rendered: %q", readScreenLine(screen, 0))
		}
		_ = screen.PostEvent(tcell.NewEventKey(tcell.KeyESC, 0, tcell.ModNone))
	}()

	selection, err := Run(ctx, Options{Lookup: fake.Lookup, Debounce: 10 * time.Millisecond})
	if err != nil || selection != nil {
		t.Fatalf("unexpected result %#v, %v", selection, err)
	}
	if got := fake.calls(); len(got) != 1 || got[0] != "x" {
		t.Fatalf("expected one lookup, got %q", got)
	}
}

func TestRunStopsOnContextCancel(t *testing.T) {
	useSimulationScreen(t)
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := Run(ctx, Options{Lookup: (&fakeLookup{}).Lookup})
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected deadline error, got %v", err)
	}
}

func TestRunRequiresTerminal(t *testing.T) {
	prevCheck := checkTerminal
	checkTerminal = func() error { return errors.New("stdin is not a terminal") }
	t.Cleanup(func() { checkTerminal = prevCheck })

	_, err := Run(context.Background(), Options{Lookup: (&fakeLookup{}).Lookup})
	var rm *tui.RawModeError
	if !errors.As(err, &rm) {
		t.Fatalf("expected RawModeError, got %v", err)
	}
}

func TestRunScreenFailure(t *testing.T) {
	useSimulationScreen(t)
	newScreen = func() (tcell.Screen, error) { return nil, errors.New("no terminfo") }

	_, err := Run(context.Background(), Options{Lookup: (&fakeLookup{}).Lookup})
	var rm *tui.RawModeError
	if !errors.As(err, &rm) || !strings.Contains(err.Error(), "no terminfo") {
		t.Fatalf("expected RawModeError, got %v", err)
	}
}

func TestRunRequiresLookup(t *testing.T) {
	if _, err := Run(context.Background(), Options{}); err == nil {
		t.Fatalf("expected error without lookup")
	}
}

// gatedLookup blocks each query until its gate is closed.
type gatedLookup struct {
	started chan string
	gates   map[string]chan struct{}
}

func (g *gatedLookup) Lookup(ctx context.Context, query string) ([]deps.Dependency, error) {
	g.started <- query
	if gate, ok := g.gates[query]; ok {
		select {
		case <-gate:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	return []deps.Dependency{{GroupID: "g", ArtifactID: query, Version: "1"}}, nil
}

func TestRunDropsResultsForSupersededInput(t *testing.T) {
	screen := useSimulationScreen(t)
	fake := &gatedLookup{
		started: make(chan string, 4),
		gates: map[string]chan struct{}{
			"ab":  make(chan struct{}),
			"abc": make(chan struct{}),
		},
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	go func() {
		quit := func() { _ = screen.PostEvent(tcell.NewEventKey(tcell.KeyCtrlC, 0, tcell.ModNone)) }
		time.Sleep(50 * time.Millisecond)
		typeText(screen, "ab")
		if q := <-fake.started; q != "ab" {
			t.Errorf("expected lookup for ab, got %q", q)
		}
		typeText(screen, "c")
		if !waitFor(screen, 23, hasPrefix("> abc")) {
			t.Errorf("input never updated: %q", readScreenLine(screen, 23))
			quit()
			return
		}
		close(fake.gates["ab"])
		if q := <-fake.started; q != "abc" {
			t.Errorf("expected lookup for abc, got %q", q)
		}
		if !waitFor(screen, 0, func(line string) bool { return strings.Contains(line, `searching "abc"`) }) {
			t.Errorf("lookup for abc never shown: %q", readScreenLine(screen, 0))
		}
		if row := readScreenLine(screen, 21); strings.Contains(row, "g:ab:1") {
			t.Errorf("results for superseded input were shown: %q", row)
		}
		close(fake.gates["abc"])
		if !waitFor(screen, 21, hasPrefix("→ 0|g:abc:1")) {
			t.Errorf("results for abc never rendered: %q", readScreenLine(screen, 21))
			quit()
			return
		}
		_ = screen.PostEvent(tcell.NewEventKey(tcell.KeyEnter, 0, tcell.ModNone))
	}()

	selection, err := Run(ctx, Options{Lookup: fake.Lookup, Debounce: 30 * time.Millisecond})
	if err != nil {
		t.Fatalf("Run error: %v", err)
	}
	if selection == nil || selection.ArtifactID != "abc" {
		t.Fatalf("unexpected selection %#v", selection)
	}
}
