package object

import (
	"encoding/json"
	"math"
	"strconv"
)

// Number wraps float64 and implements Object. All SafeScript numbers are
// IEEE-754 doubles.
type Number struct {
	value float64
}

func (n *Number) Type() Type {
	return NUMBER
}

func (n *Number) Value() float64 {
	return n.value
}

func (n *Number) Inspect() string {
	return FormatNumber(n.value)
}

func (n *Number) String() string {
	return n.Inspect()
}

func (n *Number) Interface() any {
	return n.value
}

func (n *Number) Equals(other Object) bool {
	otherNum, ok := other.(*Number)
	return ok && n.value == otherNum.value
}

// IsTruthy returns false for zero and NaN.
func (n *Number) IsTruthy() bool {
	return n.value != 0 && !math.IsNaN(n.value)
}

// IsInteger returns true if the number has no fractional part.
func (n *Number) IsInteger() bool {
	return !math.IsInf(n.value, 0) && n.value == math.Trunc(n.value)
}

func (n *Number) MarshalJSON() ([]byte, error) {
	if math.IsNaN(n.value) || math.IsInf(n.value, 0) {
		return json.Marshal(n.Inspect())
	}
	return json.Marshal(n.value)
}

func NewNumber(value float64) *Number {
	return &Number{value: value}
}

// FormatNumber renders a float64 the way scripts print numbers: integral
// values have no decimal point and very large or small magnitudes use
// exponent notation.
func FormatNumber(v float64) string {
	switch {
	case math.IsNaN(v):
		return "NaN"
	case math.IsInf(v, 1):
		return "Infinity"
	case math.IsInf(v, -1):
		return "-Infinity"
	}
	abs := math.Abs(v)
	if abs != 0 && (abs >= 1e21 || abs < 1e-6) {
		return strconv.FormatFloat(v, 'g', -1, 64)
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}
