// Package compiler compiles a SafeScript syntax tree into bytecode.
//
// Compilation is a single pass over the tree. Forward jumps are emitted with
// a placeholder operand and patched once their target is known. Jump
// operands are deltas relative to the position of the jump instruction.
//
// Variables are resolved by name at run time against the scope arena, the
// same scopes the interpreter uses. Each block, loop iteration and catch
// clause compiles to a PushScope/PopScope pair, and named function
// declarations are hoisted to the top of their block.
package compiler

import (
	"fmt"
	"math"

	"github.com/safescript/safescript/ast"
	"github.com/safescript/safescript/bytecode"
	"github.com/safescript/safescript/errz"
	"github.com/safescript/safescript/internal/token"
	"github.com/safescript/safescript/op"
)

const (
	// MaxArgs is the maximum number of arguments in a call.
	MaxArgs = 255

	// Placeholder is a temporary operand written for forward jumps, always
	// replaced before compilation is complete.
	Placeholder = uint16(math.MaxUint16)

	mainName = "__main__"
)

// Config holds compiler configuration options.
type Config struct {
	// Filename is the source filename, recorded for error messages.
	Filename string

	// Source is the original source code, recorded for error messages.
	Source string
}

// Compiler compiles a syntax tree into bytecode.
type Compiler struct {
	main    *code
	current *code

	// Set on a compilation error that is awkward to propagate
	failure error

	filename string

	// Node being compiled, used for the source map
	currentNode ast.Node
}

// Compile compiles the program and returns immutable bytecode. Pass nil for
// cfg to use default settings.
func Compile(program *ast.Program, cfg *Config) (*bytecode.Code, error) {
	c := New(cfg)
	return c.CompileProgram(program)
}

// New creates a Compiler. Pass nil for cfg to use defaults.
func New(cfg *Config) *Compiler {
	c := &Compiler{main: newCode(mainName, nil)}
	if cfg != nil {
		c.filename = cfg.Filename
		c.main.source = cfg.Source
	}
	c.main.filename = c.filename
	c.current = c.main
	return c
}

// CompileProgram compiles a whole program. The compiled code leaves the
// value of the final expression statement, or nil, on the stack and halts.
func (c *Compiler) CompileProgram(program *ast.Program) (*bytecode.Code, error) {
	if c.main.source == "" {
		c.main.source = program.String()
	}
	c.currentNode = program
	if err := c.compileHoisted(program.Stmts); err != nil {
		return nil, err
	}
	stmts := program.Stmts
	var result *ast.ExprStmt
	if n := len(stmts); n > 0 {
		if exprStmt, ok := stmts[n-1].(*ast.ExprStmt); ok {
			result = exprStmt
			stmts = stmts[:n-1]
		}
	}
	for _, stmt := range stmts {
		if err := c.compileStmt(stmt); err != nil {
			return nil, err
		}
	}
	if result != nil {
		c.currentNode = result
		if err := c.compile(result.X); err != nil {
			return nil, err
		}
	} else {
		c.emit(op.Nil)
	}
	c.emit(op.Halt)
	if c.failure != nil {
		return nil, c.failure
	}
	return c.main.toBytecode(), nil
}

// compile the given node and all its children. Statements leave the stack
// as they found it; expressions push exactly one value.
func (c *Compiler) compile(node ast.Node) error {
	prev := c.currentNode
	c.currentNode = node
	defer func() { c.currentNode = prev }()

	switch node := node.(type) {
	// Statements
	case *ast.Block:
		return c.compileBlock(node)
	case *ast.ExprStmt:
		if err := c.compile(node.X); err != nil {
			return err
		}
		c.emit(op.PopTop)
	case *ast.Var:
		return c.compileVar(node)
	case *ast.Return:
		return c.compileReturn(node)
	case *ast.If:
		return c.compileIf(node)
	case *ast.While:
		return c.compileWhile(node)
	case *ast.ForOf:
		return c.compileForOf(node)
	case *ast.Break:
		return c.compileBreak(node)
	case *ast.Continue:
		return c.compileContinue(node)
	case *ast.Throw:
		if err := c.compile(node.Value); err != nil {
			return err
		}
		c.emit(op.Throw)
	case *ast.Try:
		return c.compileTry(node)

	// Expressions
	case *ast.Func:
		return c.compileFunc(node)
	case *ast.Nil:
		c.emit(op.Nil)
	case *ast.Bool:
		if node.Value {
			c.emit(op.True)
		} else {
			c.emit(op.False)
		}
	case *ast.Number:
		c.emit(op.LoadConst, c.constant(node.Value))
	case *ast.String:
		c.emit(op.LoadConst, c.constant(node.Value))
	case *ast.Ident:
		c.emit(op.LoadName, c.name(node.Name))
	case *ast.List:
		return c.compileList(node)
	case *ast.Map:
		return c.compileMap(node)
	case *ast.Prefix:
		return c.compilePrefix(node)
	case *ast.Infix:
		return c.compileInfix(node)
	case *ast.Ternary:
		return c.compileTernary(node)
	case *ast.Assign:
		return c.compileAssign(node)
	case *ast.Call:
		return c.compileCall(node)
	case *ast.GetAttr:
		if err := c.compile(node.X); err != nil {
			return err
		}
		c.emit(op.LoadAttr, c.name(node.Attr.Name))
	case *ast.Index:
		if err := c.compile(node.X); err != nil {
			return err
		}
		if err := c.compile(node.Index); err != nil {
			return err
		}
		c.emit(op.BinarySubscr)
	default:
		return c.formatError(fmt.Sprintf("unsupported syntax node %T", node), node.Pos())
	}
	return nil
}

// compileHoisted defines the function declarations made directly in stmts.
func (c *Compiler) compileHoisted(stmts []ast.Stmt) error {
	for _, fn := range ast.FuncDecls(stmts) {
		prev := c.currentNode
		c.currentNode = fn
		err := c.compileFunc(fn)
		if err == nil {
			c.emit(op.DefineName, c.name(fn.Name.Name), op.DefineLet)
		}
		c.currentNode = prev
		if err != nil {
			return err
		}
	}
	return nil
}

func (c *Compiler) compileStmts(stmts []ast.Stmt) error {
	if err := c.compileHoisted(stmts); err != nil {
		return err
	}
	for _, stmt := range stmts {
		if err := c.compileStmt(stmt); err != nil {
			return err
		}
	}
	return nil
}

// compileStmt compiles a statement, skipping function declarations since
// they were hoisted to the top of the block.
func (c *Compiler) compileStmt(stmt ast.Stmt) error {
	if fn, ok := stmt.(*ast.Func); ok && fn.Name != nil {
		return nil
	}
	return c.compile(stmt)
}

func (c *Compiler) pushScope() {
	c.emit(op.PushScope)
	c.current.scopeDepth++
}

func (c *Compiler) popScope() {
	c.emit(op.PopScope)
	c.current.scopeDepth--
}

func (c *Compiler) compileBlock(node *ast.Block) error {
	c.pushScope()
	if err := c.compileStmts(node.Stmts); err != nil {
		return err
	}
	c.popScope()
	return nil
}

func (c *Compiler) compileVar(node *ast.Var) error {
	if node.Value != nil {
		if err := c.compile(node.Value); err != nil {
			return err
		}
	} else {
		c.emit(op.Nil)
	}
	flags := op.DefineLet
	if node.Const {
		flags = op.DefineConst
	}
	c.emit(op.DefineName, c.name(node.Name.Name), flags)
	return nil
}

func (c *Compiler) compileFunc(node *ast.Func) error {
	var name string
	if node.Name != nil {
		name = node.Name.Name
	}
	codeName := name
	if codeName == "" {
		codeName = "anonymous"
	}
	body := newCode(codeName, c.current)
	body.filename = c.filename
	c.current.children = append(c.current.children, body)

	parent := c.current
	c.current = body
	err := c.compileStmts(node.Body.Stmts)
	if err == nil && !node.Body.EndsWithReturn() {
		c.emit(op.Nil)
		c.emit(op.ReturnValue)
	}
	c.current = parent
	if err != nil {
		return err
	}

	fn := &function{name: name, params: node.ParamNames(), body: body}
	c.emit(op.MakeFunction, c.constant(fn))
	return nil
}

func (c *Compiler) compileReturn(node *ast.Return) error {
	if node.Value != nil {
		if err := c.compile(node.Value); err != nil {
			return err
		}
	} else {
		c.emit(op.Nil)
	}
	c.emit(op.ReturnValue)
	return nil
}

func (c *Compiler) compileIf(node *ast.If) error {
	if err := c.compile(node.Cond); err != nil {
		return err
	}
	jumpIfFalsePos := c.emit(op.PopJumpForwardIfFalse, Placeholder)
	if err := c.compile(node.Consequence); err != nil {
		return err
	}
	if node.Alternative == nil {
		return c.patchJump(jumpIfFalsePos)
	}
	// Skip the alternative when the consequence ran
	jumpForwardPos := c.emit(op.JumpForward, Placeholder)
	if err := c.patchJump(jumpIfFalsePos); err != nil {
		return err
	}
	if err := c.compile(node.Alternative); err != nil {
		return err
	}
	return c.patchJump(jumpForwardPos)
}

func (c *Compiler) startLoop(continuePos int, hasIterator bool) *loop {
	l := &loop{
		scopeDepth:   c.current.scopeDepth,
		handlerDepth: c.current.handlerDepth,
		continuePos:  continuePos,
		hasIterator:  hasIterator,
	}
	c.current.loops = append(c.current.loops, l)
	return l
}

func (c *Compiler) endLoop(l *loop) error {
	code := c.current
	code.loops = code.loops[:len(code.loops)-1]
	for _, pos := range l.breakPos {
		if err := c.patchJump(pos); err != nil {
			return err
		}
	}
	return nil
}

func (c *Compiler) compileWhile(node *ast.While) error {
	startPos := c.currentPosition()
	if err := c.compile(node.Cond); err != nil {
		return err
	}
	jumpIfFalsePos := c.emit(op.PopJumpForwardIfFalse, Placeholder)
	l := c.startLoop(startPos, false)
	if err := c.compileBlock(node.Body); err != nil {
		return err
	}
	if err := c.emitJumpBackward(startPos); err != nil {
		return err
	}
	if err := c.patchJump(jumpIfFalsePos); err != nil {
		return err
	}
	return c.endLoop(l)
}

func (c *Compiler) compileForOf(node *ast.ForOf) error {
	if err := c.compile(node.Iter); err != nil {
		return err
	}
	// Iteration errors point at the iterable.
	c.currentNode = node.Iter
	c.emit(op.GetIter)
	c.currentNode = node
	iterPos := c.emit(op.ForIter, Placeholder)
	l := c.startLoop(iterPos, true)

	// Each iteration gets a fresh scope holding the loop variable
	c.pushScope()
	flags := op.DefineLet
	if node.Const {
		flags = op.DefineConst
	}
	c.emit(op.DefineName, c.name(node.Name.Name), flags)
	if err := c.compileStmts(node.Body.Stmts); err != nil {
		return err
	}
	c.popScope()

	if err := c.emitJumpBackward(iterPos); err != nil {
		return err
	}
	// ForIter pops the exhausted iterator and jumps here
	if err := c.patchJump(iterPos); err != nil {
		return err
	}
	return c.endLoop(l)
}

// unwindTo emits the instructions that leave the scopes and handlers opened
// since the loop was entered.
func (c *Compiler) unwindTo(l *loop) {
	for i := c.current.handlerDepth; i > l.handlerDepth; i-- {
		c.emit(op.PopExcept)
	}
	for i := c.current.scopeDepth; i > l.scopeDepth; i-- {
		c.emit(op.PopScope)
	}
}

func (c *Compiler) compileBreak(node *ast.Break) error {
	l := c.current.currentLoop()
	if l == nil {
		return c.formatError("break outside of a loop", node.Pos())
	}
	c.unwindTo(l)
	if l.hasIterator {
		c.emit(op.PopTop)
	}
	l.breakPos = append(l.breakPos, c.emit(op.JumpForward, Placeholder))
	return nil
}

func (c *Compiler) compileContinue(node *ast.Continue) error {
	l := c.current.currentLoop()
	if l == nil {
		return c.formatError("continue outside of a loop", node.Pos())
	}
	c.unwindTo(l)
	return c.emitJumpBackward(l.continuePos)
}

func (c *Compiler) compileTry(node *ast.Try) error {
	handlerIndex := len(c.current.handlers)
	c.current.handlers = append(c.current.handlers, bytecode.ExceptionHandler{})

	tryStart := c.emit(op.PushExcept, uint16(handlerIndex))
	c.current.handlerDepth++
	if err := c.compileBlock(node.Body); err != nil {
		return err
	}
	tryEnd := c.emit(op.PopExcept)
	c.current.handlerDepth--
	jumpPos := c.emit(op.JumpForward, Placeholder)

	// The virtual machine enters the catch block with the handler removed
	// and the caught value on the stack.
	catchStart := c.currentPosition()
	c.pushScope()
	if node.CatchIdent != nil {
		c.emit(op.DefineName, c.name(node.CatchIdent.Name), op.DefineLet)
	} else {
		c.emit(op.PopTop)
	}
	if err := c.compileStmts(node.CatchBlock.Stmts); err != nil {
		return err
	}
	c.popScope()
	if err := c.patchJump(jumpPos); err != nil {
		return err
	}
	c.current.handlers[handlerIndex] = bytecode.ExceptionHandler{
		TryStart:   tryStart,
		TryEnd:     tryEnd,
		CatchStart: catchStart,
	}
	return nil
}

func (c *Compiler) compileList(node *ast.List) error {
	if len(node.Items) > math.MaxUint16 {
		return c.formatError("list literal has too many items", node.Pos())
	}
	for _, item := range node.Items {
		if err := c.compile(item); err != nil {
			return err
		}
	}
	c.emit(op.BuildList, uint16(len(node.Items)))
	return nil
}

func (c *Compiler) compileMap(node *ast.Map) error {
	if len(node.Items) > math.MaxUint16 {
		return c.formatError("map literal has too many items", node.Pos())
	}
	for _, item := range node.Items {
		c.emit(op.LoadConst, c.constant(item.Key.Value))
		if err := c.compile(item.Value); err != nil {
			return err
		}
	}
	c.emit(op.BuildMap, uint16(len(node.Items)))
	return nil
}

func (c *Compiler) compilePrefix(node *ast.Prefix) error {
	if err := c.compile(node.X); err != nil {
		return err
	}
	switch node.Op {
	case "!":
		c.emit(op.UnaryNot)
	case "-":
		c.emit(op.UnaryNegative)
	default:
		return c.formatError(fmt.Sprintf("unknown operator %q", node.Op), node.Pos())
	}
	return nil
}

func (c *Compiler) compileInfix(node *ast.Infix) error {
	switch node.Op {
	case "&&":
		return c.compileShortCircuit(node, op.PopJumpForwardIfFalse)
	case "||":
		return c.compileShortCircuit(node, op.PopJumpForwardIfTrue)
	case "??":
		return c.compileShortCircuit(node, op.PopJumpForwardIfNotNil)
	}
	if err := c.compile(node.X); err != nil {
		return err
	}
	if err := c.compile(node.Y); err != nil {
		return err
	}
	if binop, ok := op.BinaryOpFromString(node.Op); ok {
		c.emit(op.BinaryOp, uint16(binop))
		return nil
	}
	if cmp, ok := op.CompareOpFromString(node.Op); ok {
		c.emit(op.CompareOp, uint16(cmp))
		return nil
	}
	return c.formatError(fmt.Sprintf("unknown operator %q", node.Op), node.Pos())
}

// compileShortCircuit compiles &&, || and ??. The left operand is the
// result when the jump is taken, otherwise it is dropped and the right
// operand is evaluated.
func (c *Compiler) compileShortCircuit(node *ast.Infix, jump op.Code) error {
	if err := c.compile(node.X); err != nil {
		return err
	}
	c.emit(op.Copy, 0)
	jumpPos := c.emit(jump, Placeholder)
	c.emit(op.PopTop)
	if err := c.compile(node.Y); err != nil {
		return err
	}
	return c.patchJump(jumpPos)
}

func (c *Compiler) compileTernary(node *ast.Ternary) error {
	if err := c.compile(node.Cond); err != nil {
		return err
	}
	jumpIfFalsePos := c.emit(op.PopJumpForwardIfFalse, Placeholder)
	if err := c.compile(node.IfTrue); err != nil {
		return err
	}
	jumpForwardPos := c.emit(op.JumpForward, Placeholder)
	if err := c.patchJump(jumpIfFalsePos); err != nil {
		return err
	}
	if err := c.compile(node.IfFalse); err != nil {
		return err
	}
	return c.patchJump(jumpForwardPos)
}

// compoundOp returns the operator of a compound assignment such as +=.
func compoundOp(assignOp string) (op.BinaryOpType, bool, error) {
	if assignOp == "=" {
		return 0, false, nil
	}
	binop, ok := op.BinaryOpFromString(assignOp[:len(assignOp)-1])
	if !ok {
		return 0, false, fmt.Errorf("unknown assignment operator %q", assignOp)
	}
	return binop, true, nil
}

// compileAssign leaves the assigned value on the stack, so assignments can
// be used as expressions.
func (c *Compiler) compileAssign(node *ast.Assign) error {
	binop, compound, err := compoundOp(node.Op)
	if err != nil {
		return c.formatError(err.Error(), node.Pos())
	}
	switch target := node.Target.(type) {
	case *ast.Ident:
		name := c.name(target.Name)
		if compound {
			c.emit(op.LoadName, name)
		}
		if err := c.compile(node.Value); err != nil {
			return err
		}
		if compound {
			c.emit(op.BinaryOp, uint16(binop))
		}
		c.emit(op.StoreName, name)
	case *ast.Index:
		if err := c.compile(target.X); err != nil {
			return err
		}
		if err := c.compile(target.Index); err != nil {
			return err
		}
		if compound {
			// Duplicate container and index to read the current value
			c.emit(op.Copy, 1)
			c.emit(op.Copy, 1)
			c.emit(op.BinarySubscr)
		}
		if err := c.compile(node.Value); err != nil {
			return err
		}
		if compound {
			c.emit(op.BinaryOp, uint16(binop))
		}
		c.emit(op.StoreSubscr)
	case *ast.GetAttr:
		name := c.name(target.Attr.Name)
		if err := c.compile(target.X); err != nil {
			return err
		}
		if compound {
			c.emit(op.Copy, 0)
			c.emit(op.LoadAttr, name)
		}
		if err := c.compile(node.Value); err != nil {
			return err
		}
		if compound {
			c.emit(op.BinaryOp, uint16(binop))
		}
		c.emit(op.StoreAttr, name)
	default:
		return c.formatError("invalid assignment target", node.Pos())
	}
	return nil
}

func (c *Compiler) compileCall(node *ast.Call) error {
	if len(node.Args) > MaxArgs {
		return c.formatError(fmt.Sprintf("too many arguments (max %d)", MaxArgs), node.Pos())
	}
	if err := c.compile(node.Fun); err != nil {
		return err
	}
	for _, arg := range node.Args {
		if err := c.compile(arg); err != nil {
			return err
		}
	}
	c.emit(op.Call, uint16(len(node.Args)))
	return nil
}

func (c *Compiler) currentPosition() int {
	return len(c.current.instructions)
}

// patchJump points the forward jump at pos to the current position.
func (c *Compiler) patchJump(pos int) error {
	delta := c.currentPosition() - pos
	if delta > int(Placeholder)-1 {
		return c.formatError("jump destination is too far away", c.currentNode.Pos())
	}
	c.changeOperand(pos, uint16(delta))
	return nil
}

func (c *Compiler) emitJumpBackward(target int) error {
	delta := c.currentPosition() - target
	if delta > int(Placeholder)-1 {
		return c.formatError("jump destination is too far away", c.currentNode.Pos())
	}
	c.emit(op.JumpBackward, uint16(delta))
	return nil
}

func (c *Compiler) changeOperand(instructionIndex int, operand uint16) {
	c.current.instructions[instructionIndex+1] = op.Code(operand)
}

func (c *Compiler) constant(value any) uint16 {
	code := c.current
	if len(code.constants) >= math.MaxUint16 {
		c.failure = c.formatError("number of constants exceeded limits", c.currentNode.Pos())
		return 0
	}
	code.constants = append(code.constants, value)
	return uint16(len(code.constants) - 1)
}

// name returns the index of name in the current code's name table.
func (c *Compiler) name(name string) uint16 {
	code := c.current
	if idx, ok := code.nameIndex[name]; ok {
		return idx
	}
	if len(code.names) >= math.MaxUint16 {
		c.failure = c.formatError("number of names exceeded limits", c.currentNode.Pos())
		return 0
	}
	idx := uint16(len(code.names))
	code.names = append(code.names, name)
	code.nameIndex[name] = idx
	return idx
}

func (c *Compiler) emit(opcode op.Code, operands ...uint16) int {
	inst := makeInstruction(opcode, operands...)
	code := c.current
	pos := len(code.instructions)
	code.instructions = append(code.instructions, inst...)
	loc := c.currentLocation()
	for range inst {
		code.locations = append(code.locations, loc)
	}
	return pos
}

func (c *Compiler) currentLocation() bytecode.SourceLocation {
	if c.currentNode == nil {
		return bytecode.SourceLocation{}
	}
	pos := c.currentNode.Pos()
	if !pos.IsValid() {
		return bytecode.SourceLocation{}
	}
	end := c.currentNode.End()
	endColumn := 0
	if end.Line == pos.Line {
		endColumn = end.ColumnNumber()
	}
	return bytecode.SourceLocation{
		Line:      pos.LineNumber(),
		Column:    pos.ColumnNumber(),
		EndColumn: endColumn,
	}
}

func makeInstruction(opcode op.Code, operands ...uint16) []op.Code {
	info := op.GetInfo(opcode)
	if len(operands) != info.OperandCount {
		panic(fmt.Sprintf("compile error: %s takes %d operands", info.Name, info.OperandCount))
	}
	instruction := make([]op.Code, 1+len(operands))
	instruction[0] = opcode
	for i, o := range operands {
		instruction[i+1] = op.Code(o)
	}
	return instruction
}

// formatError creates a compile error located at pos.
func (c *Compiler) formatError(msg string, pos token.Position) error {
	return errz.Newf(errz.Parse, "compile error: %s", msg).WithLocation(errz.SourceLocation{
		Filename: c.filename,
		Line:     pos.LineNumber(),
		Column:   pos.ColumnNumber(),
		Source:   c.main.sourceLine(pos.LineNumber()),
	})
}
