// parser.go — Pratt parser for the analysis language, producing compact
// S-expressions.
//
// The AST is a tree of S-expressions: []any whose first element is a string
// tag. Node shapes:
//
//	("block", stmt1, stmt2, ...)
//
// Statements:
//
//	("assign",  target, value)        // "=" (right-assoc); target normally ("id", name)
//	("choose",  inner)                // 'choose' marker; inner should be an assign
//	("measure", inner)                // 'measure' marker; inner should be an assign
//	("if", ("pair", cond1, blk1), ..., elseBlk?)
//	("while", cond, bodyBlock)
//	("for", ("id", name), iterExpr, bodyBlock)
//
// Expressions:
//
//	("id", string) ("int", int64) ("num", float64) ("str", string)
//	("bool", bool) ("null")
//	("unop",  op, rhs)                // prefix "-" or "not"
//	("binop", op, lhs, rhs)           // arithmetic, comparison, "and", "or"
//	("call",  callee, arg1, ...)
//	("idx",   obj, indexExpr)
//	("array", e1, e2, ...)
//
// The 'choose'/'measure' keywords wrap whatever expression follows them; shape
// validation (assign-to-identifier, possibility arity) is the scanner's job,
// not the parser's, so programmatically built trees get the same checks as
// parsed ones.
package multiverses

import "fmt"

// S is the S-expression node type shared by the whole engine.
type S = []any

// L builds an S node from a tag and parts.
func L(tag string, parts ...any) S { return append([]any{tag}, parts...) }

// ParseError is a syntax failure with a 1-based line and 0-based column.
type ParseError struct {
	Line int
	Col  int
	Msg  string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse error at %d:%d: %s", e.Line, e.Col+1, e.Msg)
}

// Parse scans and parses src into a ("block", ...) tree.
func Parse(src string) (S, error) {
	toks, err := Lex(src)
	if err != nil {
		return nil, err
	}
	p := &parser{toks: toks}
	return p.program()
}

type parser struct {
	toks []Token
	i    int
}

func (p *parser) atEnd() bool { return p.peek().Type == EOF }

func (p *parser) peek() Token {
	if p.i >= len(p.toks) {
		return p.toks[len(p.toks)-1] // EOF
	}
	return p.toks[p.i]
}

func (p *parser) prev() Token { return p.toks[p.i-1] }

func (p *parser) match(tt ...TokenType) bool {
	for _, t := range tt {
		if p.peek().Type == t {
			p.i++
			return true
		}
	}
	return false
}

func (p *parser) need(t TokenType, msg string) (Token, error) {
	if p.peek().Type == t {
		p.i++
		return p.prev(), nil
	}
	return Token{}, p.errAt(p.peek(), msg)
}

func (p *parser) errAt(t Token, msg string) error {
	return &ParseError{Line: t.Line, Col: t.Col, Msg: msg}
}

func (p *parser) skipNewlines() {
	for p.peek().Type == NEWLINE {
		p.i++
	}
}

// ─────────────────────────── precedence ───────────────────────────

func lbp(t TokenType) (int, bool) {
	switch t {
	case MULT, DIV, MOD:
		return 70, true
	case PLUS, MINUS:
		return 60, true
	case LESS, LESS_EQ, GREATER, GREATER_EQ:
		return 50, true
	case EQ, NEQ:
		return 40, true
	case AND:
		return 30, true
	case OR:
		return 20, true
	case ASSIGN:
		return 10, true
	}
	return 0, false
}

func binopName(t TokenType) string {
	switch t {
	case PLUS:
		return "+"
	case MINUS:
		return "-"
	case MULT:
		return "*"
	case DIV:
		return "/"
	case MOD:
		return "%"
	case LESS:
		return "<"
	case LESS_EQ:
		return "<="
	case GREATER:
		return ">"
	case GREATER_EQ:
		return ">="
	case EQ:
		return "=="
	case NEQ:
		return "!="
	case AND:
		return "and"
	case OR:
		return "or"
	}
	return "?"
}

// ─────────────────────── program / blocks ───────────────────────

func (p *parser) program() (S, error) {
	blk, err := p.blockUntil(EOF)
	if err != nil {
		return nil, err
	}
	if !p.atEnd() {
		return nil, p.errAt(p.peek(), "unexpected token "+p.peek().Lexeme)
	}
	return blk, nil
}

// blockUntil parses newline-separated statements until a stop token.
func (p *parser) blockUntil(stops ...TokenType) (S, error) {
	stop := map[TokenType]bool{}
	for _, s := range stops {
		stop[s] = true
	}
	items := []any{}
	for {
		p.skipNewlines()
		if p.atEnd() || stop[p.peek().Type] {
			return L("block", items...), nil
		}
		st, err := p.statement()
		if err != nil {
			return nil, err
		}
		items = append(items, st)
		if !p.atEnd() && !stop[p.peek().Type] {
			if _, err := p.need(NEWLINE, "expected end of statement"); err != nil {
				return nil, err
			}
		}
	}
}

func (p *parser) statement() (S, error) {
	switch p.peek().Type {
	case CHOOSE:
		p.i++
		inner, err := p.expr(0)
		if err != nil {
			return nil, err
		}
		return L("choose", inner), nil
	case MEASURE:
		p.i++
		inner, err := p.expr(0)
		if err != nil {
			return nil, err
		}
		return L("measure", inner), nil
	case IF:
		p.i++
		return p.ifStmt()
	case WHILE:
		p.i++
		return p.whileStmt()
	case FOR:
		p.i++
		return p.forStmt()
	}
	return p.expr(0)
}

func (p *parser) ifStmt() (S, error) {
	cond, err := p.expr(0)
	if err != nil {
		return nil, err
	}
	if _, err := p.need(THEN, "expected 'then'"); err != nil {
		return nil, err
	}
	thenBlk, err := p.blockUntil(END, ELIF, ELSE)
	if err != nil {
		return nil, err
	}
	arms := []any{L("pair", cond, thenBlk)}

	for p.match(ELIF) {
		c, err := p.expr(0)
		if err != nil {
			return nil, err
		}
		if _, err := p.need(THEN, "expected 'then'"); err != nil {
			return nil, err
		}
		b, err := p.blockUntil(END, ELIF, ELSE)
		if err != nil {
			return nil, err
		}
		arms = append(arms, L("pair", c, b))
	}

	if p.match(ELSE) {
		b, err := p.blockUntil(END)
		if err != nil {
			return nil, err
		}
		arms = append(arms, b)
	}
	if _, err := p.need(END, "expected 'end'"); err != nil {
		return nil, err
	}
	return L("if", arms...), nil
}

func (p *parser) whileStmt() (S, error) {
	cond, err := p.expr(0)
	if err != nil {
		return nil, err
	}
	if _, err := p.need(DO, "expected 'do'"); err != nil {
		return nil, err
	}
	body, err := p.blockUntil(END)
	if err != nil {
		return nil, err
	}
	if _, err := p.need(END, "expected 'end'"); err != nil {
		return nil, err
	}
	return L("while", cond, body), nil
}

func (p *parser) forStmt() (S, error) {
	name, err := p.need(ID, "expected loop variable")
	if err != nil {
		return nil, err
	}
	if _, err := p.need(IN, "expected 'in'"); err != nil {
		return nil, err
	}
	iter, err := p.expr(0)
	if err != nil {
		return nil, err
	}
	if _, err := p.need(DO, "expected 'do'"); err != nil {
		return nil, err
	}
	body, err := p.blockUntil(END)
	if err != nil {
		return nil, err
	}
	if _, err := p.need(END, "expected 'end'"); err != nil {
		return nil, err
	}
	return L("for", L("id", name.Literal.(string)), iter, body), nil
}

// ───────────────────────── expressions ─────────────────────────

func (p *parser) expr(minBP int) (S, error) {
	left, err := p.prefix()
	if err != nil {
		return nil, err
	}
	for {
		left, err = p.postfix(left)
		if err != nil {
			return nil, err
		}
		bp, ok := lbp(p.peek().Type)
		if !ok || bp < minBP {
			return left, nil
		}
		op := p.peek()
		p.i++
		if op.Type == ASSIGN {
			// Right-assoc; '=' builds an assign node, not a binop.
			rhs, err := p.expr(bp)
			if err != nil {
				return nil, err
			}
			left = L("assign", left, rhs)
			continue
		}
		rhs, err := p.expr(bp + 1)
		if err != nil {
			return nil, err
		}
		left = L("binop", binopName(op.Type), left, rhs)
	}
}

func (p *parser) prefix() (S, error) {
	t := p.peek()
	switch t.Type {
	case INTEGER:
		p.i++
		return L("int", t.Literal.(int64)), nil
	case NUMBER:
		p.i++
		return L("num", t.Literal.(float64)), nil
	case STRING:
		p.i++
		return L("str", t.Literal.(string)), nil
	case BOOLEAN:
		p.i++
		return L("bool", t.Literal.(bool)), nil
	case NULL:
		p.i++
		return L("null"), nil
	case ID:
		p.i++
		return L("id", t.Literal.(string)), nil
	case MINUS:
		p.i++
		rhs, err := p.expr(80)
		if err != nil {
			return nil, err
		}
		return L("unop", "-", rhs), nil
	case NOT:
		p.i++
		rhs, err := p.expr(25)
		if err != nil {
			return nil, err
		}
		return L("unop", "not", rhs), nil
	case LROUND:
		p.i++
		inner, err := p.expr(0)
		if err != nil {
			return nil, err
		}
		if _, err := p.need(RROUND, "expected ')'"); err != nil {
			return nil, err
		}
		return inner, nil
	case LSQUARE:
		p.i++
		return p.arrayLiteral()
	}
	return nil, p.errAt(t, "expected expression")
}

func (p *parser) arrayLiteral() (S, error) {
	items := []any{}
	p.skipNewlines()
	if p.match(RSQUARE) {
		return L("array", items...), nil
	}
	for {
		e, err := p.expr(0)
		if err != nil {
			return nil, err
		}
		items = append(items, e)
		p.skipNewlines()
		if p.match(COMMA) {
			p.skipNewlines()
			continue
		}
		if _, err := p.need(RSQUARE, "expected ']' or ','"); err != nil {
			return nil, err
		}
		return L("array", items...), nil
	}
}

// postfix handles call and index suffixes: f(a, b) and xs[i].
func (p *parser) postfix(left S) (S, error) {
	for {
		switch p.peek().Type {
		case LROUND:
			p.i++
			args := []any{left}
			if !p.match(RROUND) {
				for {
					a, err := p.expr(0)
					if err != nil {
						return nil, err
					}
					args = append(args, a)
					if p.match(COMMA) {
						continue
					}
					if _, err := p.need(RROUND, "expected ')' or ','"); err != nil {
						return nil, err
					}
					break
				}
			}
			left = L("call", args...)
		case LSQUARE:
			p.i++
			idx, err := p.expr(0)
			if err != nil {
				return nil, err
			}
			if _, err := p.need(RSQUARE, "expected ']'"); err != nil {
				return nil, err
			}
			left = L("idx", left, idx)
		default:
			return left, nil
		}
	}
}
