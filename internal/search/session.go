// Package search wires the interactive session: key capture, the debounce
// scheduler, the lookup task and the viewport.
package search

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/gdamore/tcell/v2"
	"golang.org/x/sync/errgroup"
	"golang.org/x/term"

	"github.com/baaaaaaaka/jdeps/internal/debounce"
	"github.com/baaaaaaaka/jdeps/internal/deps"
	"github.com/baaaaaaaka/jdeps/internal/event"
	"github.com/baaaaaaaka/jdeps/internal/logging"
	"github.com/baaaaaaaka/jdeps/internal/tui"
)

var (
	newScreen     = tcell.NewScreen
	checkTerminal = requireTerminal
)

// LookupFunc resolves a query into dependencies.
type LookupFunc func(ctx context.Context, query string) ([]deps.Dependency, error)

type Options struct {
	Lookup   LookupFunc
	Debounce time.Duration
	Logger   *slog.Logger
}

// Run takes over the terminal until the user exits or accepts a result.
// It returns the accepted dependency, or nil on exit.
func Run(ctx context.Context, opts Options) (*deps.Dependency, error) {
	if opts.Lookup == nil {
		return nil, errors.New("missing lookup function")
	}
	logger := opts.Logger
	if logger == nil {
		logger = logging.Discard()
	}
	if err := checkTerminal(); err != nil {
		return nil, &tui.RawModeError{Err: err}
	}

	screen, err := tui.OpenScreen(newScreen)
	if err != nil {
		return nil, err
	}
	defer screen.Close()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	commands := event.NewQueue[tui.Command]()
	queries := event.NewQueue[tui.Query]()
	scheduler := debounce.New[tui.Query](queries)
	capture := &tui.Capture{
		Events:   screen.Screen(),
		Commands: commands,
		Queries:  scheduler,
		Delay:    opts.Debounce,
	}
	lookups := &lookupTask{
		queries:  queries,
		commands: commands,
		lookup:   opts.Lookup,
		log:      logger,
	}

	var g errgroup.Group
	g.Go(func() error { return contain(logger, "scheduler", scheduler.Run()) })
	g.Go(func() error { return contain(logger, "lookup", lookups.run(ctx)) })
	g.Go(func() error { return contain(logger, "capture", capture.Run()) })

	logger.Info("session started", "debounce", opts.Debounce)
	view := tui.NewViewport(tui.NewScreenTerminal(screen.Screen()), logger)
	selection, err := view.Listen(ctx, commands)

	cancel()
	scheduler.Stop()
	commands.Close()
	screen.Close()
	_ = g.Wait()
	queries.Close()

	if err != nil {
		return nil, err
	}
	if selection != nil {
		logger.Info("session accepted", "dependency", selection.Coordinates())
	} else {
		logger.Info("session exited")
	}
	return selection, nil
}

func requireTerminal() error {
	for _, f := range []*os.File{os.Stdin, os.Stdout} {
		if !term.IsTerminal(int(f.Fd())) {
			return fmt.Errorf("%s is not a terminal", f.Name())
		}
	}
	return nil
}

// contain logs a background task failure without ending the session.
func contain(logger *slog.Logger, task string, err error) error {
	if err == nil || errors.Is(err, context.Canceled) {
		logger.Debug("task finished", "task", task)
		return nil
	}
	if errors.Is(err, event.ErrChannelClosed) {
		logger.Debug("task stopped by shutdown", "task", task, "err", err)
		return nil
	}
	logger.Error("task failed", "task", task, "err", err)
	return nil
}
