package errz

import (
	"fmt"
	"strings"

	"github.com/fatih/color"
)

// FriendlyError is an interface for errors that have a human friendly message
// in addition to a the lower level default error message.
type FriendlyError interface {
	Error() string
	FriendlyErrorMessage() string
}

// Formatter renders errors with source context and optional colors.
type Formatter struct {
	// UseColor enables ANSI color codes in output.
	UseColor bool
}

// NewFormatter creates a new error formatter.
func NewFormatter(useColor bool) *Formatter {
	return &Formatter{UseColor: useColor}
}

func (f *Formatter) paint(attr color.Attribute, s string) string {
	if !f.UseColor {
		return s
	}
	c := color.New(attr)
	c.EnableColor()
	return c.Sprint(s)
}

// Format renders the error in a compact Rust-like layout:
//
//	type mismatch: unsupported operand types for +: number and string
//	  --> main.ss:3:7
//	   |
//	 3 | let y = x + "a"
//	   |       ^^^^^^^^^
func (f *Formatter) Format(e *Error) string {
	var b strings.Builder
	b.WriteString(f.paint(color.FgRed, e.Kind.String()))
	b.WriteString(": ")
	b.WriteString(e.Message)
	b.WriteString("\n")
	if !e.Location.IsZero() {
		width := len(fmt.Sprintf("%d", e.Location.Line))
		pad := strings.Repeat(" ", width)
		fmt.Fprintf(&b, "%s %s %s\n", pad, f.paint(color.FgCyan, "-->"), e.Location)
		if e.Location.Source != "" {
			fmt.Fprintf(&b, "%s %s\n", pad, f.paint(color.FgHiBlack, "|"))
			fmt.Fprintf(&b, "%s %s %s\n",
				f.paint(color.FgHiBlack, fmt.Sprintf("%d", e.Location.Line)),
				f.paint(color.FgHiBlack, "|"), e.Location.Source)
			if e.Location.Column > 0 {
				n := 1
				if e.Location.EndColumn > e.Location.Column {
					n = e.Location.EndColumn - e.Location.Column
				}
				fmt.Fprintf(&b, "%s %s %s%s\n", pad, f.paint(color.FgHiBlack, "|"),
					strings.Repeat(" ", e.Location.Column-1),
					f.paint(color.FgHiRed, strings.Repeat("^", n)))
			}
		}
	}
	if len(e.Stack) > 0 {
		b.WriteString("\n")
		b.WriteString(FormatStackTrace(e.Stack))
	}
	return b.String()
}

// FriendlyErrorMessage returns a human-friendly error message with visual
// context including source snippets and stack traces.
func (e *Error) FriendlyErrorMessage() string {
	return NewFormatter(false).Format(e)
}
