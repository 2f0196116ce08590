// Package safescript embeds a small, sandboxed scripting language in Go
// programs.
//
// A host configures a runtime with a Builder, registers native functions,
// initializes it and runs scripts:
//
//	rt := safescript.New().
//		AddNativeFunction("greet", greet).
//		WithBackend(backend.VM).
//		Build()
//	if err := rt.Init(); err != nil {
//		return err
//	}
//	result, err := rt.RunString(ctx, `greet("world")`)
//
// Scripts can only reach the host through registered native functions.
// Every runtime error is an *errz.Error carrying a kind, a source location
// and a script stack trace.
package safescript

import (
	"github.com/safescript/safescript/internal/lexer"
	"github.com/safescript/safescript/internal/token"
	"github.com/safescript/safescript/native"
	"github.com/safescript/safescript/object"
)

// Value is a script value.
type Value = object.Object

// Token is a lexical token.
type Token = token.Token

// NativeFunc is a host function callable from scripts.
type NativeFunc = native.Func

// Tokenize returns the tokens of source, ending with an EOF token. Lexical
// errors are *errz.Error values of kind Lex.
func Tokenize(source string) ([]Token, error) {
	return lexer.Tokenize(source)
}

// FromGo converts a Go value into a script value, for use in native
// functions.
func FromGo(v any) (Value, error) {
	return object.FromGo(v)
}

// ToGo converts a script value into its Go equivalent.
func ToGo(v Value) any {
	return object.ToGo(v)
}
