package bytecode

import "fmt"

// SourceLocation represents a position in source code. The filename and
// source text are stored once on the Code.
type SourceLocation struct {
	Line      int // 1-based line number
	Column    int // 1-based column number
	EndColumn int // 1-based column after the node; 0 if unknown
}

// String returns a formatted string representation of the source location.
func (s SourceLocation) String() string {
	return fmt.Sprintf("%d:%d", s.Line, s.Column)
}

// IsZero returns true if the location has not been set.
func (s SourceLocation) IsZero() bool {
	return s.Line == 0 && s.Column == 0
}
