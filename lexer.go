// lexer.go — scanner for the analysis language.
//
// The surface syntax is a small, newline-terminated statement language:
//
//	choose group_var = ["condition", "batch"]
//	n = len(data)
//	if n > 10 then
//	    measure effect = mean(data) - baseline
//	end
//
// '#' starts a comment to end of line. Statements end at newlines; the parser
// treats NEWLINE as a statement separator, so the lexer emits it explicitly.
package multiverses

import (
	"fmt"
	"strconv"
	"strings"
)

// TokenType represents the kind of token.
type TokenType int

const (
	// Special
	EOF TokenType = iota
	NEWLINE

	// Punctuation
	LROUND  // "("
	RROUND  // ")"
	LSQUARE // "["
	RSQUARE // "]"
	COMMA   // ","

	// Operators
	PLUS
	MINUS
	MULT
	DIV
	MOD
	ASSIGN // "="
	EQ     // "=="
	NEQ    // "!="
	LESS
	LESS_EQ
	GREATER
	GREATER_EQ

	// Literals & identifiers
	ID
	STRING
	INTEGER
	NUMBER
	BOOLEAN
	NULL

	// Keywords
	AND
	OR
	NOT
	CHOOSE
	MEASURE
	IF
	THEN
	ELIF
	ELSE
	END
	WHILE
	FOR
	IN
	DO
)

// Token is a lexical token with optional literal value.
type Token struct {
	Type    TokenType
	Lexeme  string      // raw text slice
	Literal interface{} // parsed value for literals
	Line    int         // 1-based
	Col     int         // 0-based
}

var keywords = map[string]TokenType{
	"null":    NULL,
	"true":    BOOLEAN,
	"false":   BOOLEAN,
	"and":     AND,
	"or":      OR,
	"not":     NOT,
	"choose":  CHOOSE,
	"measure": MEASURE,
	"if":      IF,
	"then":    THEN,
	"elif":    ELIF,
	"else":    ELSE,
	"end":     END,
	"while":   WHILE,
	"for":     FOR,
	"in":      IN,
	"do":      DO,
}

// LexError is a scanning failure with a 1-based line and 0-based column.
type LexError struct {
	Line int
	Col  int
	Msg  string
}

func (e *LexError) Error() string {
	return fmt.Sprintf("lex error at %d:%d: %s", e.Line, e.Col+1, e.Msg)
}

type lexer struct {
	src    string
	start  int
	cur    int
	line   int
	col    int
	tokens []Token
}

// Lex scans src into a token stream terminated by EOF.
func Lex(src string) ([]Token, error) {
	lx := &lexer{src: src, line: 1}
	for !lx.atEnd() {
		lx.start = lx.cur
		if err := lx.scanToken(); err != nil {
			return nil, err
		}
	}
	lx.start = lx.cur
	lx.emit(EOF, nil)
	return lx.tokens, nil
}

func (lx *lexer) atEnd() bool { return lx.cur >= len(lx.src) }

func (lx *lexer) advance() byte {
	c := lx.src[lx.cur]
	lx.cur++
	lx.col++
	return c
}

func (lx *lexer) peek() byte {
	if lx.atEnd() {
		return 0
	}
	return lx.src[lx.cur]
}

func (lx *lexer) match(c byte) bool {
	if lx.atEnd() || lx.src[lx.cur] != c {
		return false
	}
	lx.cur++
	lx.col++
	return true
}

func (lx *lexer) emit(tt TokenType, lit interface{}) {
	lex := lx.src[lx.start:lx.cur]
	lx.tokens = append(lx.tokens, Token{
		Type:    tt,
		Lexeme:  lex,
		Literal: lit,
		Line:    lx.line,
		Col:     lx.col - len(lex),
	})
}

func (lx *lexer) errf(format string, args ...interface{}) error {
	return &LexError{Line: lx.line, Col: lx.col, Msg: fmt.Sprintf(format, args...)}
}

func (lx *lexer) scanToken() error {
	c := lx.advance()
	switch c {
	case ' ', '\t', '\r':
		return nil
	case '\n':
		// Collapse is left to the parser; every newline is a separator.
		lx.emit(NEWLINE, nil)
		lx.line++
		lx.col = 0
		return nil
	case '#':
		for !lx.atEnd() && lx.peek() != '\n' {
			lx.advance()
		}
		return nil
	case '(':
		lx.emit(LROUND, nil)
	case ')':
		lx.emit(RROUND, nil)
	case '[':
		lx.emit(LSQUARE, nil)
	case ']':
		lx.emit(RSQUARE, nil)
	case ',':
		lx.emit(COMMA, nil)
	case '+':
		lx.emit(PLUS, nil)
	case '-':
		lx.emit(MINUS, nil)
	case '*':
		lx.emit(MULT, nil)
	case '/':
		lx.emit(DIV, nil)
	case '%':
		lx.emit(MOD, nil)
	case '=':
		if lx.match('=') {
			lx.emit(EQ, nil)
		} else {
			lx.emit(ASSIGN, nil)
		}
	case '!':
		if lx.match('=') {
			lx.emit(NEQ, nil)
		} else {
			return lx.errf("unexpected character %q", c)
		}
	case '<':
		if lx.match('=') {
			lx.emit(LESS_EQ, nil)
		} else {
			lx.emit(LESS, nil)
		}
	case '>':
		if lx.match('=') {
			lx.emit(GREATER_EQ, nil)
		} else {
			lx.emit(GREATER, nil)
		}
	case '"':
		return lx.scanString()
	default:
		if isDigit(c) {
			return lx.scanNumber()
		}
		if isAlpha(c) {
			lx.scanIdent()
			return nil
		}
		return lx.errf("unexpected character %q", c)
	}
	return nil
}

func (lx *lexer) scanString() error {
	var sb strings.Builder
	for {
		if lx.atEnd() || lx.peek() == '\n' {
			return lx.errf("unterminated string")
		}
		c := lx.advance()
		if c == '"' {
			break
		}
		if c == '\\' {
			if lx.atEnd() {
				return lx.errf("unterminated string")
			}
			e := lx.advance()
			switch e {
			case 'n':
				sb.WriteByte('\n')
			case 't':
				sb.WriteByte('\t')
			case '\\', '"':
				sb.WriteByte(e)
			default:
				return lx.errf("unknown escape \\%c", e)
			}
			continue
		}
		sb.WriteByte(c)
	}
	lx.emit(STRING, sb.String())
	return nil
}

func (lx *lexer) scanNumber() error {
	for isDigit(lx.peek()) {
		lx.advance()
	}
	isFloat := false
	if lx.peek() == '.' && lx.cur+1 < len(lx.src) && isDigit(lx.src[lx.cur+1]) {
		isFloat = true
		lx.advance()
		for isDigit(lx.peek()) {
			lx.advance()
		}
	}
	text := lx.src[lx.start:lx.cur]
	if isFloat {
		f, err := strconv.ParseFloat(text, 64)
		if err != nil {
			return lx.errf("bad number %q", text)
		}
		lx.emit(NUMBER, f)
		return nil
	}
	n, err := strconv.ParseInt(text, 10, 64)
	if err != nil {
		return lx.errf("bad integer %q", text)
	}
	lx.emit(INTEGER, n)
	return nil
}

func (lx *lexer) scanIdent() {
	for isAlphaNum(lx.peek()) {
		lx.advance()
	}
	text := lx.src[lx.start:lx.cur]
	if tt, ok := keywords[text]; ok {
		switch tt {
		case BOOLEAN:
			lx.emit(BOOLEAN, text == "true")
		case NULL:
			lx.emit(NULL, nil)
		default:
			lx.emit(tt, nil)
		}
		return
	}
	lx.emit(ID, text)
}

func isDigit(c byte) bool { return c >= '0' && c <= '9' }
func isAlpha(c byte) bool {
	return c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}
func isAlphaNum(c byte) bool { return isAlpha(c) || isDigit(c) }
