package tui

import (
	"bufio"
	"fmt"
	"io"

	"github.com/colonyops/rtgrep/internal/core/lines"
	"github.com/colonyops/rtgrep/pkg/iojson"
)

// Output formats accepted by WriteResults.
const (
	FormatText = "text"
	FormatJSON = "json"
)

// ResultOptions selects what WriteResults prints.
type ResultOptions struct {
	Format string
	// SelectedOnly prints only selected lines when at least one is
	// selected, and every line otherwise.
	SelectedOnly bool
}

// WriteResults prints the collected lines once the view is gone: one line
// per item as text, or one JSON object per item.
func WriteResults(w io.Writer, items []lines.Item, opts ResultOptions) error {
	if opts.SelectedOnly {
		if selected := selectedItems(items); len(selected) > 0 {
			items = selected
		}
	}

	switch opts.Format {
	case FormatJSON:
		return iojson.WriteLines(w, items)
	case FormatText, "":
		bw := bufio.NewWriter(w)
		for _, it := range items {
			_, _ = bw.WriteString(it.Content)
			_ = bw.WriteByte('\n')
		}
		return bw.Flush()
	default:
		return fmt.Errorf("unknown output format %q", opts.Format)
	}
}

func selectedItems(items []lines.Item) []lines.Item {
	var out []lines.Item
	for _, it := range items {
		if it.Selected {
			out = append(out, it)
		}
	}
	return out
}
