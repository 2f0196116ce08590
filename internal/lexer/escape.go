package lexer

import (
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"
)

// Unescape decodes the escape sequences in the body of a string literal. On
// failure it returns the byte offset of the offending backslash.
//
// Supported escapes: \n \t \r \0 \\ \' \" \xHH and \u{H...}.
func Unescape(s string) (string, int, error) {
	if strings.IndexByte(s, '\\') < 0 {
		return s, 0, nil
	}
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); {
		ch := s[i]
		if ch != '\\' {
			b.WriteByte(ch)
			i++
			continue
		}
		if i+1 >= len(s) {
			return "", i, fmt.Errorf("invalid escape sequence: \\")
		}
		switch esc := s[i+1]; esc {
		case 'n':
			b.WriteByte('\n')
			i += 2
		case 't':
			b.WriteByte('\t')
			i += 2
		case 'r':
			b.WriteByte('\r')
			i += 2
		case '0':
			b.WriteByte(0)
			i += 2
		case '\\', '\'', '"':
			b.WriteByte(esc)
			i += 2
		case 'x':
			if i+4 > len(s) {
				return "", i, fmt.Errorf("invalid escape sequence: %s", s[i:])
			}
			v, err := strconv.ParseUint(s[i+2:i+4], 16, 8)
			if err != nil {
				return "", i, fmt.Errorf("invalid escape sequence: %s", s[i:i+4])
			}
			b.WriteByte(byte(v))
			i += 4
		case 'u':
			if i+2 >= len(s) || s[i+2] != '{' {
				return "", i, fmt.Errorf("invalid escape sequence: \\u")
			}
			end := strings.IndexByte(s[i+2:], '}')
			if end < 0 {
				return "", i, fmt.Errorf("invalid escape sequence: %s", s[i:])
			}
			seq := s[i : i+end+3]
			hex := s[i+3 : i+end+2]
			if len(hex) == 0 || len(hex) > 6 {
				return "", i, fmt.Errorf("invalid escape sequence: %s", seq)
			}
			v, err := strconv.ParseUint(hex, 16, 32)
			if err != nil || !utf8.ValidRune(rune(v)) {
				return "", i, fmt.Errorf("invalid escape sequence: %s", seq)
			}
			b.WriteRune(rune(v))
			i += len(seq)
		default:
			return "", i, fmt.Errorf("invalid escape sequence: \\%c", esc)
		}
	}
	return b.String(), 0, nil
}

// Quote renders s as a double-quoted string literal using only the escapes
// accepted by Unescape.
func Quote(s string) string {
	var b strings.Builder
	b.Grow(len(s) + 2)
	b.WriteByte('"')
	for _, r := range s {
		switch r {
		case '\n':
			b.WriteString(`\n`)
		case '\t':
			b.WriteString(`\t`)
		case '\r':
			b.WriteString(`\r`)
		case 0:
			b.WriteString(`\0`)
		case '\\':
			b.WriteString(`\\`)
		case '"':
			b.WriteString(`\"`)
		default:
			if r < 0x20 || r == 0x7f {
				fmt.Fprintf(&b, `\x%02x`, r)
			} else {
				b.WriteRune(r)
			}
		}
	}
	b.WriteByte('"')
	return b.String()
}
