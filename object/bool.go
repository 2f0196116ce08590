package object

import "strconv"

// Bool wraps bool and implements Object.
type Bool struct {
	value bool
}

func (b *Bool) Type() Type {
	return BOOL
}

func (b *Bool) Value() bool {
	return b.value
}

func (b *Bool) Inspect() string {
	return strconv.FormatBool(b.value)
}

func (b *Bool) String() string {
	return b.Inspect()
}

func (b *Bool) Interface() any {
	return b.value
}

func (b *Bool) Equals(other Object) bool {
	otherBool, ok := other.(*Bool)
	return ok && b.value == otherBool.value
}

func (b *Bool) IsTruthy() bool {
	return b.value
}

func (b *Bool) MarshalJSON() ([]byte, error) {
	return []byte(b.Inspect()), nil
}

// NewBool returns True or False.
func NewBool(value bool) *Bool {
	if value {
		return True
	}
	return False
}
