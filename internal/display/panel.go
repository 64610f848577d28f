package display

import (
	"context"
	"fmt"
	"io"
	"strings"
	"sync"
	"unicode/utf8"

	"subwayboard/internal/board"
)

// PanelRenderer draws the board as four text rows, a label row and a times
// row per direction, the layout used on the 64x32 matrix.
type PanelRenderer struct {
	mu    sync.Mutex
	w     io.Writer
	width int
	clear bool
}

// NewPanelRenderer creates a panel writer. Rows are cut to width characters
// when width is positive. With clear set, each frame starts with an ANSI
// clear-screen sequence.
func NewPanelRenderer(w io.Writer, width int, clear bool) *PanelRenderer {
	return &PanelRenderer{w: w, width: width, clear: clear}
}

// Render implements board.Renderer.
func (p *PanelRenderer) Render(_ context.Context, b board.Board) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	var sb strings.Builder
	if p.clear {
		sb.WriteString("\x1b[H\x1b[2J")
	}
	for _, row := range Rows(b) {
		sb.WriteString(p.fit(row))
		sb.WriteByte('\n')
	}
	if _, err := io.WriteString(p.w, sb.String()); err != nil {
		return fmt.Errorf("write panel: %w", err)
	}
	return nil
}

// fit cuts s to the panel width in runes.
func (p *PanelRenderer) fit(s string) string {
	if p.width <= 0 || utf8.RuneCountInString(s) <= p.width {
		return s
	}
	return string([]rune(s)[:p.width])
}

// Rows returns the panel rows for b: north label, north times, south label,
// south times. Empty time rows read "--".
func Rows(b board.Board) []string {
	return []string{
		b.NorthLabel,
		orDash(b.North),
		b.SouthLabel,
		orDash(b.South),
	}
}

func orDash(s string) string {
	if s == "" {
		return "--"
	}
	return s
}
