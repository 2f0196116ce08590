package token

import (
	"strings"
	"testing"

	"github.com/deepnoodle-ai/wonton/assert"
)

// Test looking up values succeeds, then fails
func TestLookup(t *testing.T) {
	for key, val := range keywords {

		// Obviously this will pass.
		if LookupIdentifier(key) != val {
			t.Errorf("Lookup of %s failed", key)
		}

		// Once the keywords are uppercase they'll no longer
		// match - so we find them as identifiers.
		if LookupIdentifier(strings.ToUpper(key)) != IDENT {
			t.Errorf("Lookup of %s failed", key)
		}
	}
}

func TestNullIsNil(t *testing.T) {
	assert.Equal(t, LookupIdentifier("null"), NIL)
	assert.Equal(t, LookupIdentifier("nil"), NIL)
}

func TestIsKeyword(t *testing.T) {
	assert.True(t, IsKeyword("while"))
	assert.True(t, IsKeyword("of"))
	assert.False(t, IsKeyword("log"))
}

func TestPosition(t *testing.T) {
	tok := Token{
		Type:    IDENT,
		Literal: "foo",
		StartPosition: Position{
			Line:   2,
			Column: 0,
		},
	}
	// Switches to 1-indexed
	assert.Equal(t, tok.StartPosition.LineNumber(), 3)
	assert.Equal(t, tok.StartPosition.ColumnNumber(), 1)
}

func TestAdvance(t *testing.T) {
	p := Position{Offset: 10, LineStart: 8, Line: 1, Column: 2, File: "a.ss"}
	q := p.Advance(3)
	assert.Equal(t, q.Offset, 13)
	assert.Equal(t, q.Column, 5)
	assert.Equal(t, q.Line, 1)
	assert.Equal(t, q.File, "a.ss")
	assert.True(t, q.IsValid())
	assert.True(t, Position{}.IsValid())
	assert.False(t, NoPos.IsValid())
}
