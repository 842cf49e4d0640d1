package search

// Assembler turns a byte stream into lines. Bytes arrive in arbitrary chunks;
// a line is complete when its newline arrives. Lines longer than the limit
// keep their first limit bytes and the rest is dropped up to the newline.
type Assembler struct {
	limit int
	buf   []byte
	lines []string
}

// NewAssembler returns an assembler that truncates lines to limit bytes. A
// non-positive limit disables truncation.
func NewAssembler(limit int) *Assembler {
	return &Assembler{limit: limit}
}

// Write feeds bytes into the assembler. It never fails.
func (a *Assembler) Write(p []byte) (int, error) {
	for _, b := range p {
		if b == '\n' {
			a.lines = append(a.lines, string(a.buf))
			a.buf = a.buf[:0]
			continue
		}
		if a.limit > 0 && len(a.buf) >= a.limit {
			continue
		}
		a.buf = append(a.buf, b)
	}
	return len(p), nil
}

// Next pops the oldest completed line.
func (a *Assembler) Next() (string, bool) {
	if len(a.lines) == 0 {
		return "", false
	}
	line := a.lines[0]
	a.lines[0] = ""
	a.lines = a.lines[1:]
	return line, true
}

// Pending returns the number of completed lines not yet popped.
func (a *Assembler) Pending() int { return len(a.lines) }

// Flush completes a trailing partial line, if any.
func (a *Assembler) Flush() {
	if len(a.buf) == 0 {
		return
	}
	a.lines = append(a.lines, string(a.buf))
	a.buf = a.buf[:0]
}

// Reset discards everything, completed or not.
func (a *Assembler) Reset() {
	a.buf = a.buf[:0]
	a.lines = nil
}
