package tui

import (
	"fmt"
	"sync"

	"github.com/gdamore/tcell/v2"
)

// Terminal is the drawing surface the viewport renders to.
type Terminal interface {
	Size() (width, height int)
	Clear() error
	Text(x, y int, text string, style tcell.Style) error
	ShowCursor(x, y int) error
	Flush() error
	Sync() error
}

// RenderError reports a failed write to the terminal. It ends the render loop.
type RenderError struct {
	Op  string
	Err error
}

func (e *RenderError) Error() string { return fmt.Sprintf("render %s: %v", e.Op, e.Err) }

func (e *RenderError) Unwrap() error { return e.Err }

// RawModeError reports that the terminal could not be taken over.
type RawModeError struct {
	Err error
}

func (e *RawModeError) Error() string { return fmt.Sprintf("acquire terminal: %v", e.Err) }

func (e *RawModeError) Unwrap() error { return e.Err }

// Screen owns a tcell screen in raw mode until Close.
type Screen struct {
	screen tcell.Screen
	once   sync.Once
}

// OpenScreen creates and initializes a screen. A nil factory means
// tcell.NewScreen.
func OpenScreen(newScreen func() (tcell.Screen, error)) (*Screen, error) {
	if newScreen == nil {
		newScreen = tcell.NewScreen
	}
	s, err := newScreen()
	if err != nil {
		return nil, &RawModeError{Err: err}
	}
	if err := s.Init(); err != nil {
		return nil, &RawModeError{Err: err}
	}
	return &Screen{screen: s}, nil
}

func (s *Screen) Screen() tcell.Screen { return s.screen }

// Close restores the terminal. It is safe to call more than once.
func (s *Screen) Close() {
	s.once.Do(s.screen.Fini)
}

type screenTerminal struct {
	screen tcell.Screen
}

func NewScreenTerminal(screen tcell.Screen) Terminal {
	return screenTerminal{screen: screen}
}

func (t screenTerminal) Size() (int, int) { return t.screen.Size() }

func (t screenTerminal) Clear() error {
	t.screen.Clear()
	return nil
}

func (t screenTerminal) Text(x, y int, text string, style tcell.Style) error {
	writeText(t.screen, x, y, text, style)
	return nil
}

func (t screenTerminal) ShowCursor(x, y int) error {
	t.screen.ShowCursor(x, y)
	return nil
}

func (t screenTerminal) Flush() error {
	t.screen.Show()
	return nil
}

func (t screenTerminal) Sync() error {
	t.screen.Sync()
	return nil
}
