package tui

import (
	"fmt"
	"strings"

	"github.com/gdamore/tcell/v2"
)

const selectedMarker = '→'

func (v *Viewport) render() error {
	width, height := v.term.Size()
	visible := visibleRows(height)
	v.clampAndScroll(visible)

	if err := v.term.Clear(); err != nil {
		return &RenderError{Op: "clear", Err: err}
	}

	headerStyle := tcell.StyleDefault.Reverse(true)
	if v.failed {
		headerStyle = headerStyle.Foreground(tcell.ColorRed)
	}
	header := padRight(truncate(" jdeps  "+v.status, width), width)
	if err := v.text(0, 0, header, headerStyle); err != nil {
		return err
	}

	// Results grow upward from the row above the separator.
	for k := 0; k < visible; k++ {
		i := v.offset + k
		y := height - 3 - k
		if i >= len(v.items) || y < 0 {
			break
		}
		marker := ' '
		style := tcell.StyleDefault
		if i == v.selected {
			marker = selectedMarker
			style = style.Bold(true)
		}
		line := fmt.Sprintf("%c %d|%s", marker, i, v.items[i].Coordinates())
		if err := v.text(0, y, padRight(truncate(line, width), width), style); err != nil {
			return err
		}
	}

	if y := height - 2; y >= 0 {
		if err := v.text(0, y, strings.Repeat(string(tcell.RuneHLine), max(0, width)), tcell.StyleDefault); err != nil {
			return err
		}
	}

	y := max(0, height-1)
	if err := v.text(0, y, ">", tcell.StyleDefault.Bold(true)); err != nil {
		return err
	}
	input := tail(v.input, width-2)
	if err := v.text(2, y, input, tcell.StyleDefault); err != nil {
		return err
	}
	if err := v.term.ShowCursor(2+displayWidth(input), y); err != nil {
		return &RenderError{Op: "cursor", Err: err}
	}
	if err := v.term.Flush(); err != nil {
		return &RenderError{Op: "flush", Err: err}
	}
	return nil
}

func (v *Viewport) text(x, y int, s string, style tcell.Style) error {
	if err := v.term.Text(x, y, s, style); err != nil {
		return &RenderError{Op: "write", Err: err}
	}
	return nil
}
