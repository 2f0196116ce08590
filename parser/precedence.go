package parser

import "github.com/safescript/safescript/internal/token"

// Precedence order for operators, lowest to highest. Assignment, ternary and
// exponentiation are right-associative; everything else is left-associative.
const (
	_ int = iota
	LOWEST
	ASSIGN      // = += -= *= /= %=
	TERNARY     // ? :
	NULLISH     // ??
	OR          // ||
	AND         // &&
	EQUALS      // == or !=
	LESSGREATER // > >= < <=
	SUM         // + or -
	PRODUCT     // * / %
	POWER       // **
	PREFIX      // -X or !X
	CALL        // myFunction(X), array[index], obj.attr
)

// Precedences for each token type
var precedences = map[token.Type]int{
	token.ASSIGN:          ASSIGN,
	token.PLUS_EQUALS:     ASSIGN,
	token.MINUS_EQUALS:    ASSIGN,
	token.ASTERISK_EQUALS: ASSIGN,
	token.SLASH_EQUALS:    ASSIGN,
	token.MOD_EQUALS:      ASSIGN,
	token.QUESTION:        TERNARY,
	token.NULLISH:         NULLISH,
	token.OR:              OR,
	token.AND:             AND,
	token.EQ:              EQUALS,
	token.NOT_EQ:          EQUALS,
	token.LT:              LESSGREATER,
	token.LT_EQUALS:       LESSGREATER,
	token.GT:              LESSGREATER,
	token.GT_EQUALS:       LESSGREATER,
	token.PLUS:            SUM,
	token.MINUS:           SUM,
	token.SLASH:           PRODUCT,
	token.ASTERISK:        PRODUCT,
	token.MOD:             PRODUCT,
	token.POW:             POWER,
	token.LPAREN:          CALL,
	token.LBRACKET:        CALL,
	token.PERIOD:          CALL,
}

// Precedence returns the binding power of an infix operator, or LOWEST if
// the operator is unknown.
func Precedence(op string) int {
	if p, ok := precedences[token.Type(op)]; ok {
		return p
	}
	return LOWEST
}
