package dis

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/deepnoodle-ai/wonton/assert"
	"github.com/deepnoodle-ai/wonton/color"
	"github.com/safescript/safescript/bytecode"
	"github.com/safescript/safescript/compiler"
	"github.com/safescript/safescript/op"
	"github.com/safescript/safescript/parser"
)

func compile(t *testing.T, src string) *bytecode.Code {
	t.Helper()
	program, err := parser.Parse(context.Background(), src)
	assert.Nil(t, err)
	code, err := compiler.Compile(program, nil)
	assert.Nil(t, err)
	return code
}

func TestFunctionDisassembly(t *testing.T) {
	// Disable colors for consistent test output
	color.Enabled = false
	defer func() { color.Enabled = true }()
	code := compile(t, `
	function f() {
		42
		error("kaboom")
	}`)
	assert.Equal(t, code.ConstantCount(), 1)

	f, ok := code.ConstantAt(0).(*bytecode.Function)
	assert.True(t, ok)
	instructions, err := Disassemble(f.Code())
	assert.Nil(t, err)

	var buf bytes.Buffer
	Print(instructions, &buf)

	expected := strings.TrimSpace(`
+--------+--------------+----------+----------+
| OFFSET |    OPCODE    | OPERANDS |   INFO   |
+--------+--------------+----------+----------+
|      0 | LOAD_CONST   |        0 | 42       |
|      2 | POP_TOP      |          |          |
|      3 | LOAD_NAME    |        0 | error    |
|      5 | LOAD_CONST   |        1 | "kaboom" |
|      7 | CALL         |        1 |          |
|      9 | POP_TOP      |          |          |
|     10 | NIL          |          |          |
|     11 | RETURN_VALUE |          |          |
+--------+--------------+----------+----------+
`)
	assert.Equal(t, buf.String(), expected+"\n")
}

func TestAnnotations(t *testing.T) {
	code := compile(t, `
const n = 1
while (n < 2) { break }
try { throw n } catch { }`)
	instructions, err := Disassemble(code)
	assert.Nil(t, err)

	annotations := map[string][]string{}
	for _, instr := range instructions {
		if instr.Annotation != "" {
			annotations[instr.Name] = append(annotations[instr.Name], instr.Annotation)
		}
	}
	assert.Equal(t, annotations["DEFINE_NAME"], []string{"const n"})
	assert.Equal(t, annotations["COMPARE_OP"], []string{"<"})
	assert.Equal(t, len(annotations["JUMP_FORWARD"]), 2)
	assert.True(t, strings.HasPrefix(annotations["PUSH_EXCEPT"][0], "catch at "))
	assert.True(t, strings.HasPrefix(annotations["JUMP_BACKWARD"][0], "to "))
}

func TestPrintCode(t *testing.T) {
	color.Enabled = false
	defer func() { color.Enabled = true }()
	code := compile(t, "function add(a, b) { return a + b }\nlet f = function() { }")

	var buf bytes.Buffer
	assert.Nil(t, PrintCode(code, &buf))
	out := buf.String()
	assert.True(t, strings.HasPrefix(out, "__main__\n"))
	assert.True(t, strings.Contains(out, "\nadd\n"))
	assert.True(t, strings.Contains(out, "\nanonymous\n"))
	assert.True(t, strings.Contains(out, "func:add"))
	assert.True(t, strings.Contains(out, "func:<anonymous>"))
}

func TestDisassembleRejectsTruncatedCode(t *testing.T) {
	code := bytecode.NewCode(bytecode.CodeParams{
		Name:         "bad",
		Instructions: []op.Code{op.LoadConst},
	})
	_, err := Disassemble(code)
	assert.NotNil(t, err)
}
