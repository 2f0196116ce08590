package object

import (
	"encoding/json"
	"fmt"
)

// Module is a named, read-only group of builtins such as ops.
type Module struct {
	name    string
	members map[string]Object
}

func (m *Module) Type() Type {
	return MODULE
}

func (m *Module) Name() string {
	return m.name
}

func (m *Module) Inspect() string {
	return fmt.Sprintf("module(%s)", m.name)
}

func (m *Module) String() string {
	return m.Inspect()
}

func (m *Module) Interface() any {
	return nil
}

func (m *Module) Equals(other Object) bool {
	otherMod, ok := other.(*Module)
	return ok && m == otherMod
}

func (m *Module) IsTruthy() bool {
	return true
}

// Member returns the named member.
func (m *Module) Member(name string) (Object, bool) {
	v, ok := m.members[name]
	return v, ok
}

// MemberNames returns the member names in sorted order.
func (m *Module) MemberNames() []string {
	return Keys(m.members)
}

func (m *Module) MarshalJSON() ([]byte, error) {
	return json.Marshal(m.Inspect())
}

func NewModule(name string, members map[string]Object) *Module {
	copied := make(map[string]Object, len(members))
	for k, v := range members {
		copied[k] = v
	}
	return &Module{name: name, members: copied}
}
