package search

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/baaaaaaaka/jdeps/internal/deps"
	"github.com/baaaaaaaka/jdeps/internal/event"
	"github.com/baaaaaaaka/jdeps/internal/tui"
)

type lookupTask struct {
	queries  *event.Queue[tui.Query]
	commands event.Sink[tui.Command]
	lookup   LookupFunc
	log      *slog.Logger
}

// run resolves debounced queries one at a time until ctx ends or a queue
// closes. Lookup failures become LookupFailed commands.
func (t *lookupTask) run(ctx context.Context) error {
	for {
		q, err := t.queries.Recv(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return fmt.Errorf("receive query: %w", err)
		}
		q = t.latest(ctx, q)
		if err := t.resolve(ctx, q); err != nil {
			return err
		}
	}
}

// latest skips queries that a newer queued query has superseded.
func (t *lookupTask) latest(ctx context.Context, q tui.Query) tui.Query {
	for t.queries.Len() > 0 {
		next, err := t.queries.Recv(ctx)
		if err != nil {
			break
		}
		t.log.Debug("skipping superseded query", "seq", q.Seq, "next", next.Seq)
		q = next
	}
	return q
}

func (t *lookupTask) resolve(ctx context.Context, q tui.Query) error {
	text := strings.TrimSpace(q.Text)
	if text == "" {
		return t.send(tui.ResultsUpdated{Seq: q.Seq, Query: text})
	}
	if err := t.send(tui.LookupStarted{Seq: q.Seq, Query: text}); err != nil {
		return err
	}

	start := time.Now()
	items, err := t.call(ctx, text)
	if err != nil {
		if ctx.Err() != nil {
			return nil
		}
		t.log.Warn("lookup failed", "seq", q.Seq, "query", text, "err", err)
		return t.send(tui.LookupFailed{Seq: q.Seq, Query: text, Err: err})
	}
	t.log.Info("lookup finished", "seq", q.Seq, "query", text, "results", len(items), "elapsed", time.Since(start))
	return t.send(tui.ResultsUpdated{Seq: q.Seq, Query: text, Items: items})
}

func (t *lookupTask) call(ctx context.Context, text string) (items []deps.Dependency, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("lookup panicked: %v", r)
		}
	}()
	return t.lookup(ctx, text)
}

func (t *lookupTask) send(cmd tui.Command) error {
	if err := t.commands.Send(cmd); err != nil {
		return fmt.Errorf("send %T: %w", cmd, err)
	}
	return nil
}
