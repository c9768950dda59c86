// Package token defines the lexical tokens produced when scanning dbt model SQL.
//
// The set is intentionally small: only the keywords that delimit a SELECT list,
// a FROM clause or a WITH block are distinguished. Every other word is an IDENT.
package token

import "fmt"

// TokenType represents the type of a lexical token.
//
//nolint:revive // token.TokenType reads better at call sites than token.Type
type TokenType int32

const (
	// Special tokens
	EOF TokenType = iota
	ILLEGAL

	// Literals
	IDENT  // identifier or non-structural keyword
	NUMBER // 123, 45.67, 1e10
	STRING // 'hello'
	MACRO  // {{ ref('orders') }}

	// Operators
	PLUS      // +
	MINUS     // -
	STAR      // *
	SLASH     // /
	PERCENT   // %
	DPIPE     // ||
	EQ        // =
	NE        // != or <>
	LT        // <
	GT        // >
	LE        // <=
	GE        // >=
	DOT       // .
	COMMA     // ,
	LPAREN    // (
	RPAREN    // )
	LBRACKET  // [
	RBRACKET  // ]
	LBRACE    // {
	RBRACE    // }
	COLON     // :
	DCOLON    // ::
	SEMICOLON // ;
	ARROW     // ->

	// Keywords (alphabetical)
	ALL
	AS
	BY
	CASE
	CROSS
	DISTINCT
	END
	EXCEPT
	FROM
	FULL
	GROUP
	HAVING
	INNER
	INTERSECT
	JOIN
	LATERAL
	LEFT
	LIMIT
	MINUS_KW // Snowflake set operator MINUS
	NATURAL
	ON
	ORDER
	OUTER
	QUALIFY
	RECURSIVE
	RIGHT
	SELECT
	TOP
	UNION
	USING
	WHERE
	WINDOW
	WITH
)

// String returns a human-readable representation of the token type.
func (t TokenType) String() string {
	if name, ok := tokenNames[t]; ok {
		return name
	}
	return fmt.Sprintf("TOKEN(%d)", t)
}

var tokenNames = map[TokenType]string{
	EOF:     "EOF",
	ILLEGAL: "ILLEGAL",

	IDENT:  "IDENT",
	NUMBER: "NUMBER",
	STRING: "STRING",
	MACRO:  "MACRO",

	PLUS:      "+",
	MINUS:     "-",
	STAR:      "*",
	SLASH:     "/",
	PERCENT:   "%",
	DPIPE:     "||",
	EQ:        "=",
	NE:        "!=",
	LT:        "<",
	GT:        ">",
	LE:        "<=",
	GE:        ">=",
	DOT:       ".",
	COMMA:     ",",
	LPAREN:    "(",
	RPAREN:    ")",
	LBRACKET:  "[",
	RBRACKET:  "]",
	LBRACE:    "{",
	RBRACE:    "}",
	COLON:     ":",
	DCOLON:    "::",
	SEMICOLON: ";",
	ARROW:     "->",

	ALL:       "ALL",
	AS:        "AS",
	BY:        "BY",
	CASE:      "CASE",
	CROSS:     "CROSS",
	DISTINCT:  "DISTINCT",
	END:       "END",
	EXCEPT:    "EXCEPT",
	FROM:      "FROM",
	FULL:      "FULL",
	GROUP:     "GROUP",
	HAVING:    "HAVING",
	INNER:     "INNER",
	INTERSECT: "INTERSECT",
	JOIN:      "JOIN",
	LATERAL:   "LATERAL",
	LEFT:      "LEFT",
	LIMIT:     "LIMIT",
	MINUS_KW:  "MINUS",
	NATURAL:   "NATURAL",
	ON:        "ON",
	ORDER:     "ORDER",
	OUTER:     "OUTER",
	QUALIFY:   "QUALIFY",
	RECURSIVE: "RECURSIVE",
	RIGHT:     "RIGHT",
	SELECT:    "SELECT",
	TOP:       "TOP",
	UNION:     "UNION",
	USING:     "USING",
	WHERE:     "WHERE",
	WINDOW:    "WINDOW",
	WITH:      "WITH",
}

// keywords maps lowercase keyword strings to their token types.
var keywords = map[string]TokenType{
	"all":       ALL,
	"as":        AS,
	"by":        BY,
	"case":      CASE,
	"cross":     CROSS,
	"distinct":  DISTINCT,
	"end":       END,
	"except":    EXCEPT,
	"from":      FROM,
	"full":      FULL,
	"group":     GROUP,
	"having":    HAVING,
	"inner":     INNER,
	"intersect": INTERSECT,
	"join":      JOIN,
	"lateral":   LATERAL,
	"left":      LEFT,
	"limit":     LIMIT,
	"minus":     MINUS_KW,
	"natural":   NATURAL,
	"on":        ON,
	"order":     ORDER,
	"outer":     OUTER,
	"qualify":   QUALIFY,
	"recursive": RECURSIVE,
	"right":     RIGHT,
	"select":    SELECT,
	"top":       TOP,
	"union":     UNION,
	"using":     USING,
	"where":     WHERE,
	"window":    WINDOW,
	"with":      WITH,
}

// LookupIdent returns the keyword token type for a lowercase identifier,
// or IDENT when the word is not a keyword.
func LookupIdent(ident string) TokenType {
	if tok, ok := keywords[ident]; ok {
		return tok
	}
	return IDENT
}

// IsKeyword returns true if the token type is a keyword.
func IsKeyword(t TokenType) bool {
	return t >= ALL && t <= WITH
}

// IsOperator returns true if the token type is an operator.
func IsOperator(t TokenType) bool {
	return t >= PLUS && t <= ARROW
}

// Position represents a location in the source.
type Position struct {
	Line   int // 1-based line number
	Column int // 1-based column number
	Offset int // 0-based byte offset
}

// String formats the position as line:column.
func (p Position) String() string {
	return fmt.Sprintf("%d:%d", p.Line, p.Column)
}

// Token represents a lexical token with position information.
type Token struct {
	Type    TokenType
	Literal string
	Quoted  bool // identifier was written in double quotes or backticks
	Pos     Position
}

// Is reports whether the token has the given type.
func (t Token) Is(tt TokenType) bool {
	return t.Type == tt
}

// IsWord reports whether the token is an identifier or a keyword, i.e.
// something that could name a column when used as an alias.
func (t Token) IsWord() bool {
	return t.Type == IDENT || IsKeyword(t.Type)
}
