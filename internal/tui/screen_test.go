package tui

import (
	"strconv"
	"strings"
	"unicode/utf8"
)

// screen is a minimal terminal emulator for the sequences the renderer
// emits: cursor position, erase below, erase line right and SGR (ignored).
type screen struct {
	width, height int
	cells         [][]rune
	row, col      int
}

func newScreen(width, height int) *screen {
	s := &screen{width: width, height: height}
	s.cells = make([][]rune, height)
	for i := range s.cells {
		s.cells[i] = blankRow(width)
	}
	return s
}

func blankRow(width int) []rune {
	return []rune(strings.Repeat(" ", width))
}

func (s *screen) feed(out string) {
	for len(out) > 0 {
		if strings.HasPrefix(out, "\x1b[") {
			end := strings.IndexFunc(out[2:], func(r rune) bool { return r >= 0x40 && r <= 0x7e })
			if end < 0 {
				return
			}
			params := out[2 : 2+end]
			s.csi(params, out[2+end])
			out = out[3+end:]
			continue
		}
		if out[0] == 0x1b {
			// other escapes, e.g. cursor visibility, are two bytes plus params
			out = out[1:]
			continue
		}

		r, size := utf8.DecodeRuneInString(out)
		out = out[size:]
		if s.row < s.height && s.col < s.width {
			s.cells[s.row][s.col] = r
		}
		s.col++
	}
}

func (s *screen) csi(params string, final byte) {
	switch final {
	case 'H':
		row, col := 1, 1
		if params != "" {
			parts := strings.Split(params, ";")
			row = atoiDefault(parts[0], 1)
			if len(parts) > 1 {
				col = atoiDefault(parts[1], 1)
			}
		}
		s.row, s.col = row-1, col-1
	case 'J':
		for r := s.row; r < s.height; r++ {
			start := 0
			if r == s.row {
				start = s.col
			}
			for c := start; c < s.width; c++ {
				s.cells[r][c] = ' '
			}
		}
	case 'K':
		if s.row < s.height {
			for c := s.col; c < s.width; c++ {
				s.cells[s.row][c] = ' '
			}
		}
	}
}

func atoiDefault(s string, def int) int {
	n, err := strconv.Atoi(s)
	if err != nil || n == 0 {
		return def
	}
	return n
}

// line returns row (1-based) with trailing blanks removed.
func (s *screen) line(row int) string {
	return strings.TrimRight(string(s.cells[row-1]), " ")
}
