// Package vm provides a VirtualMachine that executes compiled SafeScript
// code.
package vm

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/safescript/safescript/bytecode"
	"github.com/safescript/safescript/errz"
	"github.com/safescript/safescript/native"
	"github.com/safescript/safescript/object"
	"github.com/safescript/safescript/op"
	"github.com/safescript/safescript/scope"
)

const (
	// DefaultMaxFrameDepth is the default limit on nested calls.
	DefaultMaxFrameDepth = 1000

	// DefaultContextCheckInterval is the number of instructions between
	// deterministic checks of ctx.Done(). Set to 0 to disable.
	DefaultContextCheckInterval = 1000
)

// VirtualMachine executes one compiled program. It is not safe for
// concurrent use; a second Run while one is active fails with an
// AlreadyRunning error.
type VirtualMachine struct {
	main     *bytecode.Code
	ip       int
	stack    []object.Object
	frames   []*frame
	handlers []handler
	halt     int32

	arena        *scope.Arena
	programScope scope.ID
	ownsScope    bool
	natives      *native.Table

	constants map[*bytecode.Code][]object.Object

	maxFrameDepth        int
	contextCheckInterval int
	observer             Observer

	running  bool
	runMutex sync.Mutex
}

// New creates a new Virtual Machine for the given code.
func New(main *bytecode.Code, options ...Option) *VirtualMachine {
	vm := &VirtualMachine{
		main:                 main,
		programScope:         scope.None,
		constants:            map[*bytecode.Code][]object.Object{},
		maxFrameDepth:        DefaultMaxFrameDepth,
		contextCheckInterval: DefaultContextCheckInterval,
	}
	for _, opt := range options {
		opt(vm)
	}
	return vm
}

func (vm *VirtualMachine) start(ctx context.Context) (func(), error) {
	vm.runMutex.Lock()
	defer vm.runMutex.Unlock()
	if vm.running {
		return nil, errz.New(errz.AlreadyRunning, "virtual machine is already running")
	}
	vm.running = true
	// Halt execution when the context is cancelled
	atomic.StoreInt32(&vm.halt, 0)
	done := make(chan struct{})
	if doneChan := ctx.Done(); doneChan != nil {
		go func() {
			select {
			case <-doneChan:
				atomic.StoreInt32(&vm.halt, 1)
			case <-done:
			}
		}()
	}
	return func() {
		close(done)
		vm.runMutex.Lock()
		vm.running = false
		vm.runMutex.Unlock()
	}, nil
}

// Run executes the program and returns the value it leaves on the stack:
// the value of its final expression statement, or nil.
func (vm *VirtualMachine) Run(ctx context.Context) (result object.Object, err error) {
	stop, err := vm.start(ctx)
	if err != nil {
		return nil, err
	}
	defer func() {
		if r := recover(); r != nil {
			err = errz.Newf(errz.KindUnknown, "virtual machine panic: %v", r)
		}
		stop()
	}()

	if vm.arena == nil {
		vm.arena = scope.NewArena()
		if err := vm.natives.Install(vm.arena, scope.Root); err != nil {
			return nil, err
		}
		vm.ownsScope = true
	}
	if vm.ownsScope {
		// Each run of an owned arena starts from a fresh program scope
		vm.arena.Release(vm.programScope)
		vm.programScope = vm.arena.Push(scope.Root)
	}
	vm.ip = 0
	vm.stack = vm.stack[:0]
	vm.handlers = vm.handlers[:0]
	vm.frames = append(vm.frames[:0], &frame{
		code:      vm.main,
		scope:     vm.programScope,
		outer:     vm.programScope,
		constants: vm.loadConstants(vm.main),
	})

	if err := vm.eval(ctx); err != nil {
		vm.unwindAll()
		return nil, err
	}
	return vm.TOS(), nil
}

// TOS returns the top of the stack, or nil if the stack is empty.
func (vm *VirtualMachine) TOS() object.Object {
	if len(vm.stack) == 0 {
		return object.Nil
	}
	return vm.stack[len(vm.stack)-1]
}

func (vm *VirtualMachine) push(obj object.Object) {
	vm.stack = append(vm.stack, obj)
}

func (vm *VirtualMachine) pop() object.Object {
	n := len(vm.stack) - 1
	obj := vm.stack[n]
	vm.stack[n] = nil
	vm.stack = vm.stack[:n]
	return obj
}

func (vm *VirtualMachine) fetch(f *frame) uint16 {
	operand := f.code.InstructionAt(vm.ip)
	vm.ip++
	return uint16(operand)
}

func (vm *VirtualMachine) currentFrame() *frame {
	return vm.frames[len(vm.frames)-1]
}

func (vm *VirtualMachine) eval(ctx context.Context) error {
	var instructionCount int
	checkInterval := vm.contextCheckInterval
	doneChan := ctx.Done()

	for {
		if atomic.LoadInt32(&vm.halt) == 1 {
			return cancelled(ctx)
		}
		// Deterministic check of ctx.Done() every N instructions.
		if checkInterval > 0 && doneChan != nil {
			instructionCount++
			if instructionCount >= checkInterval {
				instructionCount = 0
				select {
				case <-doneChan:
					return cancelled(ctx)
				default:
				}
			}
		}

		f := vm.currentFrame()
		if vm.ip >= f.code.InstructionCount() {
			return errz.Newf(errz.InvalidBytecode, "instruction pointer %d out of range in %s", vm.ip, f.code.Name())
		}
		// Position of the current instruction. Jump deltas are relative to it.
		pos := vm.ip
		opcode := f.code.InstructionAt(pos)

		if vm.observer != nil {
			event := StepEvent{
				IP:         pos,
				Opcode:     opcode,
				OpcodeName: op.GetInfo(opcode).Name,
				Location:   f.code.LocationAt(pos),
				StackDepth: len(vm.stack),
				FrameDepth: len(vm.frames),
			}
			if !vm.observer.OnStep(event) {
				return errz.New(errz.Cancelled, "execution halted by observer")
			}
		}
		vm.ip++

		done, err := vm.step(ctx, f, pos, opcode)
		if err != nil {
			err = vm.decorate(err, pos)
			if vm.catch(err) {
				continue
			}
			return err
		}
		if done {
			return nil
		}
	}
}

// step executes one instruction. It returns true when the program halts.
func (vm *VirtualMachine) step(ctx context.Context, f *frame, pos int, opcode op.Code) (bool, error) {
	switch opcode {
	case op.Nop:
	case op.Halt:
		return true, nil
	case op.LoadConst:
		vm.push(f.constants[vm.fetch(f)])
	case op.Nil:
		vm.push(object.Nil)
	case op.True:
		vm.push(object.True)
	case op.False:
		vm.push(object.False)
	case op.LoadName:
		value, err := vm.arena.Lookup(f.scope, f.code.NameAt(int(vm.fetch(f))))
		if err != nil {
			return false, err
		}
		vm.push(value)
	case op.StoreName:
		name := f.code.NameAt(int(vm.fetch(f)))
		if err := vm.arena.Assign(f.scope, name, vm.TOS()); err != nil {
			return false, err
		}
	case op.DefineName:
		name := f.code.NameAt(int(vm.fetch(f)))
		var flags scope.Flags
		if vm.fetch(f) == op.DefineConst {
			flags = scope.Const
		}
		if err := vm.arena.Define(f.scope, name, vm.pop(), flags); err != nil {
			return false, err
		}
	case op.LoadAttr:
		name := f.code.NameAt(int(vm.fetch(f)))
		value, err := object.GetAttr(vm.pop(), name)
		if err != nil {
			return false, err
		}
		vm.push(value)
	case op.StoreAttr:
		name := f.code.NameAt(int(vm.fetch(f)))
		value := vm.pop()
		obj := vm.pop()
		if err := object.SetAttr(obj, name, value); err != nil {
			return false, err
		}
		vm.push(value)
	case op.BinarySubscr:
		index := vm.pop()
		container := vm.pop()
		value, err := object.GetItem(container, index)
		if err != nil {
			return false, err
		}
		vm.push(value)
	case op.StoreSubscr:
		value := vm.pop()
		index := vm.pop()
		container := vm.pop()
		if err := object.SetItem(container, index, value); err != nil {
			return false, err
		}
		vm.push(value)
	case op.BinaryOp:
		opType := op.BinaryOpType(vm.fetch(f))
		b := vm.pop()
		a := vm.pop()
		result, err := object.BinaryOp(opType, a, b)
		if err != nil {
			return false, err
		}
		vm.push(result)
	case op.CompareOp:
		opType := op.CompareOpType(vm.fetch(f))
		b := vm.pop()
		a := vm.pop()
		result, err := object.Compare(opType, a, b)
		if err != nil {
			return false, err
		}
		vm.push(result)
	case op.UnaryNegative:
		result, err := object.Negate(vm.pop())
		if err != nil {
			return false, err
		}
		vm.push(result)
	case op.UnaryNot:
		vm.push(object.Not(vm.pop()))
	case op.BuildList:
		count := int(vm.fetch(f))
		items := make([]object.Object, count)
		copy(items, vm.stack[len(vm.stack)-count:])
		vm.drop(count)
		vm.push(object.NewList(items))
	case op.BuildMap:
		count := int(vm.fetch(f))
		m := object.NewOrderedMap()
		pairs := vm.stack[len(vm.stack)-2*count:]
		for i := 0; i < count; i++ {
			key, ok := pairs[2*i].(*object.String)
			if !ok {
				return false, object.TypeErrorf("map key must be a string (got %s)", object.TypeName(pairs[2*i]))
			}
			m.Set(key.Value(), pairs[2*i+1])
		}
		vm.drop(2 * count)
		vm.push(m)
	case op.Copy:
		offset := int(vm.fetch(f))
		vm.push(vm.stack[len(vm.stack)-1-offset])
	case op.PopTop:
		vm.pop()
	case op.JumpForward:
		vm.ip = pos + int(vm.fetch(f))
	case op.JumpBackward:
		vm.ip = pos - int(vm.fetch(f))
	case op.PopJumpForwardIfFalse:
		delta := int(vm.fetch(f))
		if !object.IsTruthy(vm.pop()) {
			vm.ip = pos + delta
		}
	case op.PopJumpForwardIfTrue:
		delta := int(vm.fetch(f))
		if object.IsTruthy(vm.pop()) {
			vm.ip = pos + delta
		}
	case op.PopJumpForwardIfNotNil:
		delta := int(vm.fetch(f))
		if vm.pop() != object.Nil {
			vm.ip = pos + delta
		}
	case op.GetIter:
		iter, err := object.Iterate(vm.pop())
		if err != nil {
			return false, err
		}
		vm.push(iter)
	case op.ForIter:
		delta := int(vm.fetch(f))
		iter, ok := vm.TOS().(*object.Iterator)
		if !ok {
			return false, errz.New(errz.InvalidBytecode, "for loop without an iterator")
		}
		if item, ok := iter.Next(); ok {
			vm.push(item)
		} else {
			vm.pop()
			vm.ip = pos + delta
		}
	case op.PushScope:
		f.scope = vm.arena.Push(f.scope)
	case op.PopScope:
		parent := vm.arena.Parent(f.scope)
		vm.arena.Release(f.scope)
		f.scope = parent
	case op.MakeFunction:
		idx := int(vm.fetch(f))
		tmpl, ok := f.code.ConstantAt(idx).(*bytecode.Function)
		if !ok {
			return false, errz.Newf(errz.InvalidBytecode, "constant %d is not a function", idx)
		}
		vm.arena.Pin(f.scope)
		vm.push(object.NewFunction(tmpl, f.scope))
	case op.Call:
		return false, vm.call(ctx, f, int(vm.fetch(f)))
	case op.ReturnValue:
		return vm.ret()
	case op.PushExcept:
		h := f.code.ExceptionHandlerAt(int(vm.fetch(f)))
		vm.handlers = append(vm.handlers, handler{
			catchIP: h.CatchStart,
			sp:      len(vm.stack),
			scope:   f.scope,
			fp:      len(vm.frames) - 1,
		})
	case op.PopExcept:
		vm.handlers = vm.handlers[:len(vm.handlers)-1]
	case op.Throw:
		return false, object.Throw(vm.pop())
	default:
		return false, errz.Newf(errz.InvalidBytecode, "unknown opcode %d", opcode)
	}
	return false, nil
}

func (vm *VirtualMachine) drop(n int) {
	for i := 0; i < n; i++ {
		vm.pop()
	}
}

func (vm *VirtualMachine) call(ctx context.Context, f *frame, argc int) error {
	base := len(vm.stack) - argc - 1
	callee := vm.stack[base]
	args := make([]object.Object, argc)
	copy(args, vm.stack[base+1:])

	switch fn := callee.(type) {
	case *object.Builtin:
		if vm.observer != nil {
			if !vm.observer.OnCall(CallEvent{
				FunctionName: fn.Key(),
				ArgCount:     argc,
				Native:       true,
				Location:     f.code.LocationAt(vm.ip - 1),
				FrameDepth:   len(vm.frames),
			}) {
				return errz.New(errz.Cancelled, "execution halted by observer")
			}
		}
		result, err := native.Call(ctx, fn, args)
		if err != nil {
			return err
		}
		vm.drop(argc + 1)
		vm.push(result)
		return nil
	case *object.Function:
		tmpl, ok := fn.Code().(*bytecode.Function)
		if !ok {
			return object.TypeErrorf("%s was not compiled for this virtual machine", fn.Inspect())
		}
		if err := object.CheckArity(fn, argc); err != nil {
			return err
		}
		if len(vm.frames) >= vm.maxFrameDepth {
			return errz.Newf(errz.StackOverflow, "maximum call depth exceeded (%d)", vm.maxFrameDepth)
		}
		callScope := vm.arena.Push(fn.Scope())
		for i, arg := range args {
			if err := vm.arena.Define(callScope, tmpl.Parameter(i), arg, 0); err != nil {
				vm.arena.Release(callScope)
				return err
			}
		}
		if vm.observer != nil {
			if !vm.observer.OnCall(CallEvent{
				FunctionName: fn.Name(),
				ArgCount:     argc,
				Location:     f.code.LocationAt(vm.ip - 1),
				FrameDepth:   len(vm.frames) + 1,
			}) {
				vm.arena.Release(callScope)
				return errz.New(errz.Cancelled, "execution halted by observer")
			}
		}
		vm.drop(argc + 1)
		vm.frames = append(vm.frames, &frame{
			code:       tmpl.Code(),
			fn:         fn,
			returnAddr: vm.ip,
			base:       base,
			scope:      callScope,
			outer:      fn.Scope(),
			constants:  vm.loadConstants(tmpl.Code()),
		})
		vm.ip = 0
		return nil
	}
	return object.TypeErrorf("%s is not callable", object.TypeName(callee))
}

// ret returns from the current frame. It reports true if the frame was the
// program itself.
func (vm *VirtualMachine) ret() (bool, error) {
	result := vm.pop()
	fp := len(vm.frames) - 1
	f := vm.frames[fp]
	if fp == 0 {
		vm.push(result)
		return true, nil
	}
	// Drop handlers of try blocks the return left
	for len(vm.handlers) > 0 && vm.handlers[len(vm.handlers)-1].fp >= fp {
		vm.handlers = vm.handlers[:len(vm.handlers)-1]
	}
	vm.arena.ReleaseTo(f.scope, f.outer)
	vm.stack = vm.stack[:f.base]
	vm.frames[fp] = nil
	vm.frames = vm.frames[:fp]
	vm.ip = f.returnAddr
	vm.push(result)
	if vm.observer != nil {
		caller := vm.currentFrame()
		if !vm.observer.OnReturn(ReturnEvent{
			FunctionName: f.fn.Name(),
			Location:     caller.code.LocationAt(vm.ip - 1),
			FrameDepth:   len(vm.frames),
		}) {
			return false, errz.New(errz.Cancelled, "execution halted by observer")
		}
	}
	return false, nil
}

// catch transfers control to the innermost active try block, if the error
// can be caught. The frames and scopes above the handler are discarded and
// the caught value is pushed for the catch clause.
func (vm *VirtualMachine) catch(err error) bool {
	if len(vm.handlers) == 0 {
		return false
	}
	value, ok := object.Caught(err)
	if !ok {
		return false
	}
	h := vm.handlers[len(vm.handlers)-1]
	vm.handlers = vm.handlers[:len(vm.handlers)-1]
	for len(vm.frames)-1 > h.fp {
		f := vm.frames[len(vm.frames)-1]
		vm.arena.ReleaseTo(f.scope, f.outer)
		vm.frames[len(vm.frames)-1] = nil
		vm.frames = vm.frames[:len(vm.frames)-1]
	}
	f := vm.currentFrame()
	vm.arena.ReleaseTo(f.scope, h.scope)
	f.scope = h.scope
	for len(vm.stack) > h.sp {
		vm.pop()
	}
	vm.push(value)
	vm.ip = h.catchIP
	return true
}

// unwindAll releases the scopes of every frame after an uncaught error.
func (vm *VirtualMachine) unwindAll() {
	for i := len(vm.frames) - 1; i >= 0; i-- {
		f := vm.frames[i]
		vm.arena.ReleaseTo(f.scope, f.outer)
	}
	vm.frames = vm.frames[:0]
	vm.handlers = vm.handlers[:0]
}

func (vm *VirtualMachine) loadConstants(code *bytecode.Code) []object.Object {
	if constants, ok := vm.constants[code]; ok {
		return constants
	}
	constants := make([]object.Object, code.ConstantCount())
	for i := range constants {
		switch c := code.ConstantAt(i).(type) {
		case nil:
			constants[i] = object.Nil
		case bool:
			constants[i] = object.NewBool(c)
		case float64:
			constants[i] = object.NewNumber(c)
		case string:
			constants[i] = object.NewString(c)
		default:
			// Functions are loaded by MakeFunction
			constants[i] = object.Nil
		}
	}
	vm.constants[code] = constants
	return constants
}

// decorate attaches the location of the failing instruction and the script
// call stack to err.
func (vm *VirtualMachine) decorate(err error, pos int) error {
	e, ok := errz.As(err)
	if !ok {
		e = errz.Wrap(errz.KindUnknown, err, "")
		err = e
	}
	f := vm.currentFrame()
	e.WithLocation(vm.location(f.code, pos))
	e.WithStack(vm.captureStack(pos))
	return err
}

func (vm *VirtualMachine) location(code *bytecode.Code, ip int) errz.SourceLocation {
	loc := code.LocationAt(ip)
	if loc.IsZero() {
		return errz.SourceLocation{}
	}
	return errz.SourceLocation{
		Filename:  code.Filename(),
		Line:      loc.Line,
		Column:    loc.Column,
		EndColumn: loc.EndColumn,
		Source:    code.GetSourceLine(loc.Line),
	}
}

// captureStack builds a stack trace from the active frames, innermost first.
func (vm *VirtualMachine) captureStack(pos int) []errz.StackFrame {
	frames := make([]errz.StackFrame, 0, len(vm.frames))
	ip := pos
	for i := len(vm.frames) - 1; i >= 0; i-- {
		f := vm.frames[i]
		frames = append(frames, errz.StackFrame{
			Function: f.name(),
			Location: vm.location(f.code, ip),
		})
		// The caller is paused on the operand of its Call instruction
		ip = f.returnAddr - 1
	}
	return frames
}

func cancelled(ctx context.Context) error {
	cause := ctx.Err()
	if cause == nil {
		cause = context.Canceled
	}
	return errz.Wrap(errz.Cancelled, cause, "execution cancelled")
}

func (vm *VirtualMachine) String() string {
	return fmt.Sprintf("vm(%s)", vm.main.Name())
}
