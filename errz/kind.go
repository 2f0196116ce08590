// Package errz defines the error taxonomy shared by every stage of the
// SafeScript pipeline, from lexing through execution.
package errz

// Kind represents the category of an error.
type Kind int

const (
	// KindUnknown is used for errors that did not originate in SafeScript.
	KindUnknown Kind = iota
	// Lex indicates malformed source text.
	Lex
	// Parse indicates a malformed token stream.
	Parse
	// TypeMismatch indicates an operation was applied to unsupported values.
	TypeMismatch
	// UndefinedIdentifier indicates a name could not be resolved.
	UndefinedIdentifier
	// DuplicateBinding indicates a name was bound twice in the same scope or
	// native table.
	DuplicateBinding
	// StackOverflow indicates the call depth limit was exceeded.
	StackOverflow
	// NativeFunctionFailure indicates a host function returned an error or
	// panicked.
	NativeFunctionFailure
	// ArityMismatch indicates a call supplied the wrong number of arguments.
	ArityMismatch
	// IndexOutOfRange indicates a list or string index was out of bounds.
	IndexOutOfRange
	// ConstAssignment indicates an assignment to a constant binding.
	ConstAssignment
	// Thrown indicates a value raised by a throw statement was not caught.
	Thrown
	// Io indicates a failure reading a script from disk.
	Io
	// NotInitialized indicates the runtime was used before Init.
	NotInitialized
	// AlreadyRunning indicates a run was started while another was active.
	AlreadyRunning
	// Cancelled indicates the execution context was cancelled.
	Cancelled
	// InvalidBytecode indicates serialized bytecode could not be decoded.
	InvalidBytecode
	// Unsupported indicates an operation the configured backend cannot
	// perform.
	Unsupported
)

var kindNames = map[Kind]string{
	KindUnknown:           "error",
	Lex:                   "lex error",
	Parse:                 "parse error",
	TypeMismatch:          "type mismatch",
	UndefinedIdentifier:   "undefined identifier",
	DuplicateBinding:      "duplicate binding",
	StackOverflow:         "stack overflow",
	NativeFunctionFailure: "native function failure",
	ArityMismatch:         "arity mismatch",
	IndexOutOfRange:       "index out of range",
	ConstAssignment:       "const assignment",
	Thrown:                "uncaught throw",
	Io:                    "io error",
	NotInitialized:        "not initialized",
	AlreadyRunning:        "already running",
	Cancelled:             "cancelled",
	InvalidBytecode:       "invalid bytecode",
	Unsupported:           "unsupported",
}

// String returns the string representation of the error kind.
func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return "error"
}

var kindIdents = map[Kind]string{
	KindUnknown:           "Error",
	Lex:                   "LexError",
	Parse:                 "ParseError",
	TypeMismatch:          "TypeMismatch",
	UndefinedIdentifier:   "UndefinedIdentifier",
	DuplicateBinding:      "DuplicateBinding",
	StackOverflow:         "StackOverflow",
	NativeFunctionFailure: "NativeFunctionFailure",
	ArityMismatch:         "ArityMismatch",
	IndexOutOfRange:       "IndexOutOfRange",
	ConstAssignment:       "ConstAssignment",
	Thrown:                "Thrown",
	Io:                    "IoError",
	NotInitialized:        "NotInitialized",
	AlreadyRunning:        "AlreadyRunning",
	Cancelled:             "Cancelled",
	InvalidBytecode:       "InvalidBytecode",
	Unsupported:           "Unsupported",
}

// Name returns the identifier form of the kind, as exposed to scripts
// through the kind attribute of caught errors.
func (k Kind) Name() string {
	if name, ok := kindIdents[k]; ok {
		return name
	}
	return "Error"
}

// IsRuntime returns true for kinds raised while a program executes.
func (k Kind) IsRuntime() bool {
	switch k {
	case TypeMismatch, UndefinedIdentifier, DuplicateBinding, StackOverflow,
		NativeFunctionFailure, ArityMismatch, IndexOutOfRange,
		ConstAssignment, Thrown:
		return true
	}
	return false
}

// Catchable returns true if a script try/catch may recover from this kind.
func (k Kind) Catchable() bool {
	return k.IsRuntime() && k != StackOverflow
}
