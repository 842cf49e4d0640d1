package tui

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/x/ansi"

	"github.com/colonyops/rtgrep/internal/core/lines"
	"github.com/colonyops/rtgrep/internal/core/styles"
	"github.com/colonyops/rtgrep/pkg/utils"
)

// inputHeight is the space reserved below the results for the separator and
// the input row.
const inputHeight = 3

// tabWidth matches the default terminal tab stops.
const tabWidth = 8

// Defaults for RenderOptions.
const (
	DefaultPrompt = "> "
	DefaultMarker = "▶"
)

// RenderOptions configures a Renderer.
type RenderOptions struct {
	Prompt string
	Marker string
}

// Renderer draws the search view with explicit cursor addressing. Only what
// changed since the previous frame is written, and every frame reaches the
// terminal in one write.
//
// Layout for a terminal of height H, rows 1-based:
//
//	1..H-4   result rows
//	H-2      separator
//	H-1      input row
type Renderer struct {
	out    io.Writer
	frame  utils.DeferredWriter
	width  int
	height int
	prompt string
	marker string

	drawnCount     int
	lastPattern    string
	separatorDrawn bool
	inputDirty     bool
}

// NewRenderer creates a renderer for a width x height terminal.
func NewRenderer(out io.Writer, width, height int, opts RenderOptions) *Renderer {
	if opts.Prompt == "" {
		opts.Prompt = DefaultPrompt
	}
	if opts.Marker == "" {
		opts.Marker = DefaultMarker
	}
	return &Renderer{
		out:        out,
		width:      width,
		height:     height,
		prompt:     opts.Prompt,
		marker:     opts.Marker,
		inputDirty: true,
	}
}

// Rows is the number of result rows that fit on screen.
func (r *Renderer) Rows() int {
	return max(0, r.height-inputHeight-1)
}

// Size returns the terminal size the renderer draws for.
func (r *Renderer) Size() (width, height int) { return r.width, r.height }

// Resize changes the terminal size. Separator and input are redrawn on the
// next frame; result rows need a full redraw from the caller.
func (r *Renderer) Resize(width, height int) {
	r.width = width
	r.height = height
	r.separatorDrawn = false
	r.inputDirty = true
}

// Draw renders one frame. items are the pane items, item 0 on the first row.
func (r *Renderer) Draw(pattern string, items []lines.Item, fullRedraw bool) error {
	rows := r.Rows()
	visible := min(rows, len(items))

	switch {
	case fullRedraw:
		r.frame.WriteString(ansi.CursorHomePosition + ansi.EraseScreenBelow)
		for i := range visible {
			r.drawRow(i, items[i])
		}
		r.separatorDrawn = false
		r.inputDirty = true
	case len(items) > r.drawnCount:
		if len(items)-r.drawnCount >= rows {
			for i := range visible {
				r.drawRow(i, items[i])
			}
		} else {
			for i := r.drawnCount; i < visible; i++ {
				r.drawRow(i, items[i])
			}
		}
	}
	r.drawnCount = len(items)

	if !r.separatorDrawn && r.height > 2 {
		r.frame.WriteString(ansi.CursorPosition(1, r.height-2) + ansi.EraseLineRight)
		r.frame.WriteString(styles.SeparatorStyle.Render(strings.Repeat("─", r.width)))
		r.separatorDrawn = true
	}

	if (pattern != r.lastPattern || r.inputDirty) && r.height > 1 {
		r.drawInput(pattern)
		r.lastPattern = pattern
		r.inputDirty = false
	}

	if err := r.frame.Flush(r.out); err != nil {
		return fmt.Errorf("draw: %w", err)
	}
	return nil
}

func (r *Renderer) drawRow(i int, item lines.Item) {
	marker := strings.Repeat(" ", ansi.StringWidth(r.marker))
	if item.Selected {
		marker = styles.MarkerStyle.Render(r.marker)
	}

	room := max(0, r.width-ansi.StringWidth(r.marker))
	content := ansi.Truncate(expandTabs(item.Content), room, "")

	r.frame.WriteString(ansi.CursorPosition(1, i+1) + ansi.EraseLineRight)
	r.frame.WriteString(marker + content + ansi.ResetStyle)
}

// expandTabs replaces tabs with spaces up to the next tab stop and drops
// carriage returns, so the width ansi measures is the width the terminal
// draws. Columns are counted from the start of the content.
func expandTabs(s string) string {
	if !strings.ContainsAny(s, "\t\r") {
		return s
	}
	s = strings.ReplaceAll(s, "\r", "")

	var b strings.Builder
	col := 0
	for i, seg := range strings.Split(s, "\t") {
		if i > 0 {
			n := tabWidth - col%tabWidth
			b.WriteString(strings.Repeat(" ", n))
			col += n
		}
		b.WriteString(seg)
		col += ansi.StringWidth(seg)
	}
	return b.String()
}

// drawInput renders `| <prompt><pattern>  ...  |`. A pattern wider than the
// row shows its tail so the cursor end stays visible.
func (r *Renderer) drawInput(pattern string) {
	room := r.width - 3 - ansi.StringWidth(r.prompt)
	shown := pattern
	if room < 0 {
		room = 0
	}
	if len(shown) > room {
		shown = shown[len(shown)-room:]
	}
	pad := max(0, room-len(shown))

	r.frame.WriteString(ansi.CursorPosition(1, r.height-1) + ansi.EraseLineRight)
	r.frame.WriteString(styles.FrameStyle.Render("|") + " ")
	r.frame.WriteString(styles.PromptStyle.Render(r.prompt))
	r.frame.WriteString(styles.PatternStyle.Render(shown))
	r.frame.WriteString(strings.Repeat(" ", pad))
	r.frame.WriteString(styles.FrameStyle.Render("|"))
}
