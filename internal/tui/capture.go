package tui

import (
	"fmt"
	"time"

	"github.com/gdamore/tcell/v2"

	"github.com/baaaaaaaka/jdeps/internal/event"
)

// EventSource is the part of tcell.Screen that capture reads from.
type EventSource interface {
	PollEvent() tcell.Event
}

// Scheduler debounces queries.
type Scheduler interface {
	Schedule(q Query, delay time.Duration)
	Stop()
}

// Capture turns terminal events into viewport commands and keeps the input
// buffer. Every edit schedules a debounced query tagged with a new sequence
// number.
type Capture struct {
	Events   EventSource
	Commands event.Sink[Command]
	Queries  Scheduler
	Delay    time.Duration

	buf []byte
	seq uint64
}

// Run reads events until Ctrl-C or Esc, or until the event source is
// finalized.
func (c *Capture) Run() error {
	for {
		ev := c.Events.PollEvent()
		if ev == nil {
			return nil
		}
		cmd, quit := c.translate(ev)
		if cmd == nil {
			continue
		}
		if err := c.Commands.Send(cmd); err != nil {
			return fmt.Errorf("send %T: %w", cmd, err)
		}
		if quit {
			c.Queries.Stop()
			return nil
		}
	}
}

func (c *Capture) translate(ev tcell.Event) (Command, bool) {
	switch ev := ev.(type) {
	case *tcell.EventResize:
		return Resize{}, false
	case *tcell.EventKey:
		switch ev.Key() {
		case tcell.KeyCtrlC, tcell.KeyESC:
			return Exit{}, true
		case tcell.KeyUp:
			return Up{}, false
		case tcell.KeyDown:
			return Down{}, false
		case tcell.KeyEnter:
			return Accept{}, false
		case tcell.KeyBackspace, tcell.KeyBackspace2:
			if len(c.buf) == 0 {
				return nil, false
			}
			c.buf = c.buf[:len(c.buf)-1]
			return c.edited(), false
		case tcell.KeyRune:
			r := ev.Rune()
			if r < ' ' || r > '~' || ev.Modifiers()&(tcell.ModAlt|tcell.ModMeta) != 0 {
				return nil, false
			}
			c.buf = append(c.buf, byte(r))
			return c.edited(), false
		}
	}
	return nil, false
}

func (c *Capture) edited() Command {
	c.seq++
	text := string(c.buf)
	c.Queries.Schedule(Query{Seq: c.seq, Text: text}, c.Delay)
	return InputChanged{Seq: c.seq, Value: text}
}
