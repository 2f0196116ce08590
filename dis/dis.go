// Package dis disassembles SafeScript bytecode into a readable listing.
package dis

import (
	"fmt"
	"io"
	"strings"

	"github.com/deepnoodle-ai/wonton/color"
	"github.com/safescript/safescript/bytecode"
	"github.com/safescript/safescript/internal/table"
	"github.com/safescript/safescript/object"
	"github.com/safescript/safescript/op"
)

// Instruction represents a single bytecode instruction and its operands.
type Instruction struct {
	Offset     int
	Name       string
	Opcode     op.Code
	Operands   []op.Code
	Annotation string
	Constant   any
}

// Disassemble returns a parsed representation of the given bytecode.
func Disassemble(code *bytecode.Code) ([]Instruction, error) {
	var instructions []Instruction
	count := code.InstructionCount()
	for offset := 0; offset < count; {
		opcode := code.InstructionAt(offset)
		info := op.GetInfo(opcode)
		if !op.IsValid(opcode) {
			return nil, fmt.Errorf("invalid opcode %d at offset %d", opcode, offset)
		}
		if offset+info.OperandCount >= count {
			return nil, fmt.Errorf("truncated %s at offset %d", info.Name, offset)
		}
		operands := make([]op.Code, info.OperandCount)
		for i := range operands {
			operands[i] = code.InstructionAt(offset + 1 + i)
		}
		instr := Instruction{
			Offset:   offset,
			Name:     info.Name,
			Opcode:   opcode,
			Operands: operands,
		}
		if err := annotate(code, &instr); err != nil {
			return nil, err
		}
		instructions = append(instructions, instr)
		offset += 1 + info.OperandCount
	}
	return instructions, nil
}

func annotate(code *bytecode.Code, instr *Instruction) error {
	var err error
	switch instr.Opcode {
	case op.LoadName, op.StoreName, op.LoadAttr, op.StoreAttr:
		instr.Annotation, err = getName(code, int(instr.Operands[0]))
	case op.DefineName:
		instr.Annotation, err = getName(code, int(instr.Operands[0]))
		if err == nil && uint16(instr.Operands[1]) == op.DefineConst {
			instr.Annotation = "const " + instr.Annotation
		}
	case op.BinaryOp:
		instr.Annotation = op.BinaryOpType(instr.Operands[0]).String()
	case op.CompareOp:
		instr.Annotation = op.CompareOpType(instr.Operands[0]).String()
	case op.LoadConst, op.MakeFunction:
		instr.Constant, err = getConstantValue(code, int(instr.Operands[0]))
	case op.JumpForward, op.PopJumpForwardIfFalse, op.PopJumpForwardIfTrue,
		op.PopJumpForwardIfNotNil, op.ForIter:
		instr.Annotation = fmt.Sprintf("to %d", instr.Offset+int(instr.Operands[0]))
	case op.JumpBackward:
		instr.Annotation = fmt.Sprintf("to %d", instr.Offset-int(instr.Operands[0]))
	case op.PushExcept:
		idx := int(instr.Operands[0])
		if idx >= code.ExceptionHandlerCount() {
			return fmt.Errorf("exception handler index out of range: %d", idx)
		}
		instr.Annotation = fmt.Sprintf("catch at %d", code.ExceptionHandlerAt(idx).CatchStart)
	}
	return err
}

// italic applies italic formatting (ANSI code 3) if colors are enabled.
func italic(s string) string {
	if !color.Enabled {
		return s
	}
	return "\033[3m" + s + "\033[0m"
}

// bold applies bold formatting if colors are enabled.
func bold(s string) string {
	if !color.Enabled {
		return s
	}
	return color.ApplyBold(s)
}

// Print a string representation of the given instructions to the given writer.
func Print(instructions []Instruction, writer io.Writer) {
	var lines [][]string
	for _, instr := range instructions {
		var values []string
		values = append(values, fmt.Sprintf("%d", instr.Offset))
		values = append(values, bold(instr.Name))
		values = append(values, formatOperands(instr.Operands))
		if instr.Constant != nil {
			values = append(values, formatConstant(instr.Constant))
		} else if instr.Annotation != "" {
			values = append(values, color.Colorize(color.BrightCyan, instr.Annotation))
		} else {
			values = append(values, "")
		}
		lines = append(lines, values)
	}

	table.NewTable(writer).
		WithHeader([]string{"OFFSET", "OPCODE", "OPERANDS", "INFO"}).
		WithColumnAlignment([]table.Alignment{
			table.AlignRight,
			table.AlignLeft,
			table.AlignRight,
			table.AlignLeft,
		}).
		WithHeaderAlignment([]table.Alignment{
			table.AlignCenter,
			table.AlignCenter,
			table.AlignCenter,
			table.AlignCenter,
		}).
		WithRows(lines).
		Render()
}

// PrintCode prints the listing of code followed by the listings of every
// function compiled within it.
func PrintCode(code *bytecode.Code, writer io.Writer) error {
	for i, c := range code.Flatten() {
		instructions, err := Disassemble(c)
		if err != nil {
			return err
		}
		if i > 0 {
			fmt.Fprintln(writer)
		}
		fmt.Fprintln(writer, bold(c.Name()))
		Print(instructions, writer)
	}
	return nil
}

func formatConstant(constant any) string {
	switch c := constant.(type) {
	case float64:
		return color.Colorize(color.Yellow, object.FormatNumber(c))
	case string:
		if len(c) > 80 {
			c = c[:77] + "..."
		}
		return color.Colorize(color.Green, fmt.Sprintf("%q", c))
	case *bytecode.Function:
		name := c.Name()
		if name == "" {
			name = italic("<anonymous>")
		}
		return color.Colorize(color.Magenta, fmt.Sprintf("func:%s", name))
	default:
		return bold(fmt.Sprintf("%v", c))
	}
}

func formatOperands(ops []op.Code) string {
	var sb strings.Builder
	for i, op := range ops {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(fmt.Sprintf("%d", op))
	}
	return sb.String()
}

func getConstantValue(code *bytecode.Code, index int) (any, error) {
	if code.ConstantCount() <= index {
		return nil, fmt.Errorf("constant index out of range: %d", index)
	}
	return code.ConstantAt(index), nil
}

func getName(code *bytecode.Code, index int) (string, error) {
	if code.NameCount() <= index {
		return "", fmt.Errorf("name index out of range: %d", index)
	}
	return code.NameAt(index), nil
}
