// Package bytecode provides immutable representations of compiled
// SafeScript code.
//
// The compiler produces a [Code] tree: the top-level code block plus one
// child per function body. Function bodies are referenced from the constant
// pool through [Function] templates, which the virtual machine turns into
// closures at run time.
//
// All types are immutable after construction. Constructors copy their input
// slices and accessors are index based, so a Code may be shared by any
// number of virtual machines.
//
// Constants are stored as plain Go values (nil, bool, float64, string and
// *Function) so this package depends only on op and errz.
//
// Code trees can be serialized with [Marshal] and restored with
// [Unmarshal]. The encoding is JSON with a versioned header:
//
//	{"format":"safescript-bytecode","version":1,"codes":[...]}
package bytecode
