package object

import (
	"encoding/json"
	"strconv"
	"unicode/utf8"
)

// String wraps string and implements Object.
type String struct {
	value string
}

func (s *String) Type() Type {
	return STRING
}

func (s *String) Value() string {
	return s.value
}

func (s *String) Inspect() string {
	return strconv.Quote(s.value)
}

func (s *String) String() string {
	return s.value
}

func (s *String) Interface() any {
	return s.value
}

func (s *String) Equals(other Object) bool {
	otherStr, ok := other.(*String)
	return ok && s.value == otherStr.value
}

func (s *String) IsTruthy() bool {
	return s.value != ""
}

// Len returns the number of characters (runes) in the string.
func (s *String) Len() int {
	return utf8.RuneCountInString(s.value)
}

// Runes returns the characters of the string.
func (s *String) Runes() []rune {
	return []rune(s.value)
}

func (s *String) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.value)
}

func NewString(s string) *String {
	return &String{value: s}
}
