package errz

import (
	"fmt"
	"strings"
)

// SourceLocation points at the text an error is about. Line and Column
// are 1-based.
type SourceLocation struct {
	Filename  string
	Line      int
	Column    int
	EndColumn int    // column just past the offending text, 0 when unknown
	Source    string // full text of Line
}

func (s SourceLocation) String() string {
	if s.Filename == "" {
		return fmt.Sprintf("%d:%d", s.Line, s.Column)
	}
	return fmt.Sprintf("%s:%d:%d", s.Filename, s.Line, s.Column)
}

// IsZero reports whether no position was recorded.
func (s SourceLocation) IsZero() bool {
	return s.Line == 0 && s.Column == 0
}

// StackFrame is one active call at the time an error was raised.
type StackFrame struct {
	Function string
	Location SourceLocation
}

func (f StackFrame) String() string {
	if f.Function == "" {
		return "at " + f.Location.String()
	}
	return fmt.Sprintf("at %s (%s)", f.Function, f.Location)
}

// FormatStackTrace renders frames innermost first, one per line. It
// returns "" for an empty stack.
func FormatStackTrace(frames []StackFrame) string {
	if len(frames) == 0 {
		return ""
	}
	var b strings.Builder
	b.WriteString("Stack trace:\n")
	for _, frame := range frames {
		fmt.Fprintf(&b, "  %s\n", frame)
	}
	return b.String()
}
