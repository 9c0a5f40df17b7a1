package tui

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/baaaaaaaka/jdeps/internal/deps"
)

const idleStatus = "type an artifact id to search"

// Source yields commands for the viewport.
type Source interface {
	Recv(ctx context.Context) (Command, error)
}

// Viewport holds the result list, the selection and the input line, and
// redraws the terminal after every command.
//
// selected is -1 only while items is empty. offset is the index of the
// item drawn on the bottom result row.
type Viewport struct {
	term Terminal
	log  *slog.Logger

	items    []deps.Dependency
	input    string
	selected int
	offset   int

	status  string
	failed  bool
	lastSeq uint64
}

func NewViewport(term Terminal, logger *slog.Logger) *Viewport {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Viewport{
		term:     term,
		log:      logger,
		selected: -1,
		status:   idleStatus,
	}
}

// Listen draws the initial frame and applies commands until Exit or Accept.
// Accept returns the selected dependency; Exit returns nil.
func (v *Viewport) Listen(ctx context.Context, src Source) (*deps.Dependency, error) {
	if err := v.render(); err != nil {
		return nil, err
	}
	for {
		cmd, err := src.Recv(ctx)
		if err != nil {
			v.clear()
			if ctxErr := ctx.Err(); ctxErr != nil {
				return nil, ctxErr
			}
			return nil, fmt.Errorf("receive command: %w", err)
		}
		done, selection, err := v.handle(cmd)
		if err != nil {
			return nil, err
		}
		if done {
			return selection, nil
		}
	}
}

// Selected returns a copy of the highlighted dependency, or nil.
func (v *Viewport) Selected() *deps.Dependency {
	if v.selected < 0 || v.selected >= len(v.items) {
		return nil
	}
	d := v.items[v.selected]
	return &d
}

func (v *Viewport) handle(cmd Command) (bool, *deps.Dependency, error) {
	switch c := cmd.(type) {
	case Exit:
		v.clear()
		return true, nil, nil
	case Accept:
		selection := v.Selected()
		if selection == nil {
			return false, nil, nil
		}
		v.clear()
		return true, selection, nil
	case Up:
		if v.selected < len(v.items)-1 {
			v.selected++
		}
	case Down:
		if v.selected > 0 {
			v.selected--
		}
	case InputChanged:
		v.input = c.Value
		v.lastSeq = max(v.lastSeq, c.Seq)
	case LookupStarted:
		if v.stale(c.Seq) {
			return false, nil, nil
		}
		v.status = fmt.Sprintf("searching %q...", c.Query)
		v.failed = false
	case ResultsUpdated:
		if v.stale(c.Seq) {
			return false, nil, nil
		}
		v.items = c.Items
		v.failed = false
		if c.Query == "" {
			v.status = idleStatus
		} else {
			v.status = fmt.Sprintf("%d results for %q", len(c.Items), c.Query)
		}
	case LookupFailed:
		if v.stale(c.Seq) {
			return false, nil, nil
		}
		v.status = fmt.Sprintf("lookup %q failed: %v", c.Query, c.Err)
		v.failed = true
	case Resize:
		if err := v.term.Sync(); err != nil {
			return false, nil, &RenderError{Op: "sync", Err: err}
		}
	case nil:
		return false, nil, errors.New("nil command")
	default:
		return false, nil, fmt.Errorf("unknown command %T", cmd)
	}
	return false, nil, v.render()
}

// stale reports whether a lookup update belongs to a query older than the
// current input or the last update applied.
func (v *Viewport) stale(seq uint64) bool {
	if seq < v.lastSeq {
		v.log.Debug("dropping stale lookup update", "seq", seq, "last", v.lastSeq)
		return true
	}
	v.lastSeq = seq
	return false
}

func visibleRows(height int) int {
	return max(1, height-2)
}

func (v *Viewport) clampAndScroll(visible int) {
	n := len(v.items)
	if n == 0 {
		v.selected = -1
		v.offset = 0
		return
	}
	if v.selected < 0 {
		v.selected = 0
	}
	if v.selected >= n {
		v.selected = n - 1
	}
	if v.offset >= n {
		v.offset = n - 1
	}
	if v.selected < v.offset {
		v.offset = v.selected
	}
	if v.selected >= v.offset+visible {
		v.offset = v.selected - visible + 1
	}
	// Keep the window full after a shrink without losing the selection.
	lo := max(0, v.selected-visible+1)
	hi := min(v.selected, max(0, n-visible))
	v.offset = max(lo, min(v.offset, hi))
}

// clear blanks the terminal. Failures are ignored since the session is
// ending anyway.
func (v *Viewport) clear() {
	if err := v.term.Clear(); err != nil {
		v.log.Debug("clear terminal failed", "err", err)
		return
	}
	if err := v.term.Flush(); err != nil {
		v.log.Debug("flush terminal failed", "err", err)
	}
}
