package bytecode

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/safescript/safescript/errz"
	"github.com/safescript/safescript/op"
)

const (
	// Format identifies serialized SafeScript bytecode.
	Format = "safescript-bytecode"
	// Version is the serialization version written by Marshal. Unmarshal
	// accepts only this version.
	Version = 1
)

// Marshal converts a Code tree into its JSON representation.
func Marshal(code *Code) ([]byte, error) {
	state, err := stateFromCode(code)
	if err != nil {
		return nil, err
	}
	return json.Marshal(state)
}

// Unmarshal restores a Code tree written by Marshal. Data with a different
// format or version, or that does not decode to well formed code, fails
// with an InvalidBytecode error.
func Unmarshal(data []byte) (*Code, error) {
	var header struct {
		Format  string `json:"format"`
		Version int    `json:"version"`
	}
	if err := json.Unmarshal(data, &header); err != nil {
		return nil, errz.Wrap(errz.InvalidBytecode, err, "malformed bytecode")
	}
	if header.Format != Format {
		return nil, errz.Newf(errz.InvalidBytecode, "unknown bytecode format %q", header.Format)
	}
	if header.Version != Version {
		return nil, errz.Newf(errz.InvalidBytecode,
			"unsupported bytecode version %d (expected %d)", header.Version, Version)
	}
	var state codeState
	if err := json.Unmarshal(data, &state); err != nil {
		return nil, errz.Wrap(errz.InvalidBytecode, err, "malformed bytecode")
	}
	code, err := codeFromState(&state)
	if err != nil {
		return nil, errz.Wrap(errz.InvalidBytecode, err, "")
	}
	return code, nil
}

type constantDef struct {
	Type  string          `json:"type"`
	Value json.RawMessage `json:"value,omitempty"`
}

type functionDef struct {
	Name       string   `json:"name,omitempty"`
	Parameters []string `json:"parameters"`
	CodeIndex  int      `json:"code_index"`
}

type handlerDef struct {
	TryStart   int `json:"try_start"`
	TryEnd     int `json:"try_end"`
	CatchStart int `json:"catch_start"`
}

type codeDef struct {
	Name         string           `json:"name"`
	ChildIndices []int            `json:"child_indices,omitempty"`
	Instructions []op.Code        `json:"instructions"`
	Constants    []constantDef    `json:"constants"`
	Names        []string         `json:"names"`
	Source       string           `json:"source,omitempty"`
	Filename     string           `json:"filename,omitempty"`
	Locations    []SourceLocation `json:"locations,omitempty"`
	Handlers     []handlerDef     `json:"handlers,omitempty"`
}

type codeState struct {
	Format  string     `json:"format"`
	Version int        `json:"version"`
	Codes   []*codeDef `json:"codes"`
}

func stateFromCode(code *Code) (*codeState, error) {
	allCodes := code.Flatten()
	index := make(map[*Code]int, len(allCodes))
	for i, c := range allCodes {
		index[c] = i
	}
	state := &codeState{
		Format:  Format,
		Version: Version,
		Codes:   make([]*codeDef, len(allCodes)),
	}
	for i, c := range allCodes {
		constants := make([]constantDef, c.ConstantCount())
		for j := range constants {
			def, err := marshalConstant(c.ConstantAt(j), index)
			if err != nil {
				return nil, err
			}
			constants[j] = def
		}
		handlers := make([]handlerDef, c.ExceptionHandlerCount())
		for j := range handlers {
			h := c.ExceptionHandlerAt(j)
			handlers[j] = handlerDef{TryStart: h.TryStart, TryEnd: h.TryEnd, CatchStart: h.CatchStart}
		}
		var children []int
		for j := 0; j < c.ChildCount(); j++ {
			children = append(children, index[c.ChildAt(j)])
		}
		def := &codeDef{
			Name:         c.Name(),
			ChildIndices: children,
			Instructions: c.instructions,
			Constants:    constants,
			Names:        c.names,
			Filename:     c.Filename(),
			Locations:    c.locations,
			Handlers:     handlers,
		}
		// Only the program carries the source text.
		if c.parent == nil {
			def.Source = c.Source()
		}
		state.Codes[i] = def
	}
	return state, nil
}

func marshalConstant(c any, index map[*Code]int) (constantDef, error) {
	var (
		typ   string
		value any
	)
	switch v := c.(type) {
	case nil:
		return constantDef{Type: "nil"}, nil
	case bool:
		typ, value = "bool", v
	case float64:
		// Stored as text since JSON has no infinities.
		typ, value = "number", strconv.FormatFloat(v, 'g', -1, 64)
	case string:
		typ, value = "string", v
	case *Function:
		codeIndex, ok := index[v.Code()]
		if !ok {
			return constantDef{}, fmt.Errorf("function %q body is not a child code block", v.Name())
		}
		typ, value = "function", functionDef{
			Name:       v.Name(),
			Parameters: v.Params(),
			CodeIndex:  codeIndex,
		}
	default:
		return constantDef{}, fmt.Errorf("unknown constant type: %T", c)
	}
	data, err := json.Marshal(value)
	if err != nil {
		return constantDef{}, err
	}
	return constantDef{Type: typ, Value: data}, nil
}

func codeFromState(state *codeState) (*Code, error) {
	if len(state.Codes) == 0 {
		return nil, fmt.Errorf("no code blocks")
	}
	// Children always come after their parent in the flattened form, so
	// building in reverse order builds children first.
	codes := make([]*Code, len(state.Codes))
	for i := len(state.Codes) - 1; i >= 0; i-- {
		def := state.Codes[i]
		if def == nil {
			return nil, fmt.Errorf("code block %d is empty", i)
		}
		if err := validateInstructions(def); err != nil {
			return nil, fmt.Errorf("code block %d: %w", i, err)
		}
		var children []*Code
		for _, childIdx := range def.ChildIndices {
			if childIdx <= i || childIdx >= len(codes) {
				return nil, fmt.Errorf("code block %d: invalid child index %d", i, childIdx)
			}
			children = append(children, codes[childIdx])
		}
		constants := make([]any, len(def.Constants))
		for j, cdef := range def.Constants {
			c, err := unmarshalConstant(cdef, codes, i)
			if err != nil {
				return nil, fmt.Errorf("code block %d constant %d: %w", i, j, err)
			}
			constants[j] = c
		}
		handlers := make([]ExceptionHandler, len(def.Handlers))
		for j, h := range def.Handlers {
			handlers[j] = ExceptionHandler{TryStart: h.TryStart, TryEnd: h.TryEnd, CatchStart: h.CatchStart}
		}
		codes[i] = NewCode(CodeParams{
			Name:              def.Name,
			Children:          children,
			Instructions:      def.Instructions,
			Constants:         constants,
			Names:             def.Names,
			Source:            def.Source,
			Filename:          def.Filename,
			Locations:         def.Locations,
			ExceptionHandlers: handlers,
		})
	}
	return codes[0], nil
}

func unmarshalConstant(def constantDef, codes []*Code, owner int) (any, error) {
	switch def.Type {
	case "nil":
		return nil, nil
	case "bool":
		var v bool
		err := json.Unmarshal(def.Value, &v)
		return v, err
	case "number":
		var text string
		if err := json.Unmarshal(def.Value, &text); err != nil {
			return nil, err
		}
		return strconv.ParseFloat(text, 64)
	case "string":
		var v string
		err := json.Unmarshal(def.Value, &v)
		return v, err
	case "function":
		var v functionDef
		if err := json.Unmarshal(def.Value, &v); err != nil {
			return nil, err
		}
		if v.CodeIndex <= owner || v.CodeIndex >= len(codes) {
			return nil, fmt.Errorf("invalid function code index %d", v.CodeIndex)
		}
		return NewFunction(FunctionParams{
			Name:       v.Name,
			Parameters: v.Parameters,
			Code:       codes[v.CodeIndex],
		}), nil
	}
	return nil, fmt.Errorf("unknown constant type: %q", def.Type)
}

// validateInstructions checks that every opcode is known and has all of its
// operands.
func validateInstructions(def *codeDef) error {
	for ip := 0; ip < len(def.Instructions); {
		code := def.Instructions[ip]
		if !op.IsValid(code) {
			return fmt.Errorf("invalid opcode %d at %d", code, ip)
		}
		ip += 1 + op.GetInfo(code).OperandCount
		if ip > len(def.Instructions) {
			return fmt.Errorf("truncated instruction %s", op.GetInfo(code).Name)
		}
	}
	if len(def.Locations) > len(def.Instructions) {
		return fmt.Errorf("more locations than instructions")
	}
	return nil
}
