package vm

import (
	"github.com/safescript/safescript/bytecode"
	"github.com/safescript/safescript/op"
)

// Observer is an interface for observing VM execution events. It can be used
// for tracing, profiling or coverage without modifying the VM. Embed
// NoOpObserver to implement only some of the methods.
//
// Observer methods are called synchronously during execution. Returning
// false from any of them halts execution.
type Observer interface {
	// OnStep is called before each instruction executes.
	OnStep(event StepEvent) bool

	// OnCall is called when a script or native function is invoked.
	OnCall(event CallEvent) bool

	// OnReturn is called when a function returns.
	OnReturn(event ReturnEvent) bool
}

// StepEvent contains information about a single instruction step.
type StepEvent struct {
	IP         int
	Opcode     op.Code
	OpcodeName string
	Location   bytecode.SourceLocation
	StackDepth int
	FrameDepth int
}

// CallEvent contains information about a function call.
type CallEvent struct {
	// FunctionName is empty for anonymous functions.
	FunctionName string
	ArgCount     int
	Native       bool
	Location     bytecode.SourceLocation
	// FrameDepth is the call stack depth after the call.
	FrameDepth int
}

// ReturnEvent contains information about a function return.
type ReturnEvent struct {
	FunctionName string
	Location     bytecode.SourceLocation
	// FrameDepth is the call stack depth after returning.
	FrameDepth int
}

// NoOpObserver is an Observer that does nothing.
type NoOpObserver struct{}

func (NoOpObserver) OnStep(StepEvent) bool     { return true }
func (NoOpObserver) OnCall(CallEvent) bool     { return true }
func (NoOpObserver) OnReturn(ReturnEvent) bool { return true }

var _ Observer = NoOpObserver{}
