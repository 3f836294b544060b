package parser

import "github.com/lacelang/lace/internal/token"

// Precedence order for operators
const (
	_ int = iota
	LOWEST
	OR          // or
	AND         // and
	EQUALS      // == or !=
	LESSGREATER // > or <
	SUM         // + or -
	PRODUCT     // * / % << >>
	POWER       // **
	CAST        // x as int
	PREFIX      // -X or !X or typeof X
	CALL        // myFunction(X)
)

// Precedences for each token type
var precedences = map[token.Type]int{
	token.OR:        OR,
	token.AND:       AND,
	token.EQ:        EQUALS,
	token.NOT_EQ:    EQUALS,
	token.LT:        LESSGREATER,
	token.LT_EQUALS: LESSGREATER,
	token.GT:        LESSGREATER,
	token.GT_EQUALS: LESSGREATER,
	token.PLUS:      SUM,
	token.MINUS:     SUM,
	token.ASTERISK:  PRODUCT,
	token.SLASH:     PRODUCT,
	token.MOD:       PRODUCT,
	token.LT_LT:     PRODUCT,
	token.GT_GT:     PRODUCT,
	token.POW:       POWER,
	token.AS:        CAST,
	token.LPAREN:    CALL,
}
