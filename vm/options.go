package vm

import (
	"github.com/safescript/safescript/native"
	"github.com/safescript/safescript/scope"
)

// Option is a configuration function for a Virtual Machine.
type Option func(*VirtualMachine)

// WithNatives installs the native bindings in the root scope of the arena
// the VM creates. It has no effect together with WithScope, whose arena is
// expected to hold its bindings already.
func WithNatives(natives *native.Table) Option {
	return func(vm *VirtualMachine) {
		vm.natives = natives
	}
}

// WithScope runs the program directly in the given scope of an existing
// arena. Definitions made by the program outlive the run, which is how the
// REPL keeps state between inputs.
func WithScope(arena *scope.Arena, id scope.ID) Option {
	return func(vm *VirtualMachine) {
		vm.arena = arena
		vm.programScope = id
	}
}

// WithMaxFrameDepth sets the maximum call depth. Exceeding it fails with a
// StackOverflow error. The default is DefaultMaxFrameDepth.
func WithMaxFrameDepth(depth int) Option {
	return func(vm *VirtualMachine) {
		if depth > 0 {
			vm.maxFrameDepth = depth
		}
	}
}

// WithContextCheckInterval sets how often the VM checks ctx.Done() during
// execution, in number of instructions. A value of 0 disables the
// deterministic check, relying only on the goroutine that watches the
// context. The default is DefaultContextCheckInterval.
func WithContextCheckInterval(interval int) Option {
	return func(vm *VirtualMachine) {
		vm.contextCheckInterval = interval
	}
}

// WithObserver sets an observer for VM execution events. Observer methods
// are called synchronously, and returning false from any of them halts
// execution.
func WithObserver(observer Observer) Option {
	return func(vm *VirtualMachine) {
		vm.observer = observer
	}
}
