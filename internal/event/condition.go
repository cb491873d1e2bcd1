package event

import (
	"strings"

	apperrors "github.com/louisbranch/almanac/internal/errors"
)

// Condition is a compiled conditional-event expression. It is evaluated
// against the registry of active event states built during a query.
//
// The language is deliberately small: equality and membership tests over
// event state strings combined with not/and/or, never general scripting.
//
//	event(bandit_raid) active
//	event(weather) is storm
//	event(weather) in [storm, blizzard] and not event(festival) active
type Condition interface {
	// Eval reports whether the condition holds for the registry.
	// Unknown event ids evaluate to false rather than failing, so one
	// malformed conditional cannot break a whole query.
	Eval(states map[string]string) bool
}

// ParseCondition compiles a condition expression.
func ParseCondition(expr string) (Condition, error) {
	p := &condParser{tokens: lexCondition(expr), expr: expr}
	cond, err := p.parseOr()
	if err != nil {
		return nil, err
	}
	if p.pos != len(p.tokens) {
		return nil, p.syntaxError()
	}
	return cond, nil
}

type condParser struct {
	tokens []string
	pos    int
	expr   string
}

func (p *condParser) syntaxError() error {
	return apperrors.Newf(apperrors.CodeConditionSyntax, "condition expression %q is not valid", p.expr).
		WithMetadata(map[string]string{"Expression": p.expr})
}

func (p *condParser) peek() string {
	if p.pos >= len(p.tokens) {
		return ""
	}
	return p.tokens[p.pos]
}

func (p *condParser) next() string {
	tok := p.peek()
	p.pos++
	return tok
}

func (p *condParser) expect(tok string) error {
	if p.next() != tok {
		return p.syntaxError()
	}
	return nil
}

func (p *condParser) parseOr() (Condition, error) {
	left, err := p.parseAnd()
	if err != nil {
		return nil, err
	}
	for p.peek() == "or" {
		p.next()
		right, err := p.parseAnd()
		if err != nil {
			return nil, err
		}
		left = orCond{left, right}
	}
	return left, nil
}

func (p *condParser) parseAnd() (Condition, error) {
	left, err := p.parseUnary()
	if err != nil {
		return nil, err
	}
	for p.peek() == "and" {
		p.next()
		right, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		left = andCond{left, right}
	}
	return left, nil
}

func (p *condParser) parseUnary() (Condition, error) {
	if p.peek() == "not" {
		p.next()
		inner, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return notCond{inner}, nil
	}
	return p.parsePrimary()
}

func (p *condParser) parsePrimary() (Condition, error) {
	switch p.peek() {
	case "(":
		p.next()
		inner, err := p.parseOr()
		if err != nil {
			return nil, err
		}
		if err := p.expect(")"); err != nil {
			return nil, err
		}
		return inner, nil
	case "event":
		return p.parseEventTest()
	default:
		return nil, p.syntaxError()
	}
}

func (p *condParser) parseEventTest() (Condition, error) {
	if err := p.expect("event"); err != nil {
		return nil, err
	}
	if err := p.expect("("); err != nil {
		return nil, err
	}
	id := p.next()
	if id == "" || isReserved(id) {
		return nil, p.syntaxError()
	}
	if err := p.expect(")"); err != nil {
		return nil, err
	}

	switch p.next() {
	case "active":
		return activeCond{id: id}, nil
	case "is":
		state := p.next()
		if state == "" || isReserved(state) {
			return nil, p.syntaxError()
		}
		return stateCond{id: id, state: state}, nil
	case "in":
		if err := p.expect("["); err != nil {
			return nil, err
		}
		var states []string
		for {
			state := p.next()
			if state == "" || isReserved(state) {
				return nil, p.syntaxError()
			}
			states = append(states, state)
			sep := p.next()
			if sep == "]" {
				break
			}
			if sep != "," {
				return nil, p.syntaxError()
			}
		}
		return memberCond{id: id, states: states}, nil
	default:
		return nil, p.syntaxError()
	}
}

func isReserved(tok string) bool {
	switch tok {
	case "event", "is", "in", "active", "not", "and", "or", "(", ")", "[", "]", ",":
		return true
	}
	return false
}

// lexCondition splits an expression into word and punctuation tokens.
// Keywords lex case-insensitively; event ids and state names keep their
// case and match registry entries exactly.
func lexCondition(expr string) []string {
	var tokens []string
	var word strings.Builder
	flush := func() {
		if word.Len() == 0 {
			return
		}
		tok := word.String()
		if lower := strings.ToLower(tok); isReserved(lower) {
			tok = lower
		}
		tokens = append(tokens, tok)
		word.Reset()
	}
	for _, r := range expr {
		switch r {
		case '(', ')', '[', ']', ',':
			flush()
			tokens = append(tokens, string(r))
		case ' ', '\t', '\n':
			flush()
		default:
			word.WriteRune(r)
		}
	}
	flush()
	return tokens
}

type activeCond struct{ id string }

func (c activeCond) Eval(states map[string]string) bool {
	_, ok := states[c.id]
	return ok
}

type stateCond struct {
	id    string
	state string
}

func (c stateCond) Eval(states map[string]string) bool {
	state, ok := states[c.id]
	return ok && state == c.state
}

type memberCond struct {
	id     string
	states []string
}

func (c memberCond) Eval(states map[string]string) bool {
	state, ok := states[c.id]
	if !ok {
		return false
	}
	for _, candidate := range c.states {
		if state == candidate {
			return true
		}
	}
	return false
}

type notCond struct{ inner Condition }

func (c notCond) Eval(states map[string]string) bool {
	return !c.inner.Eval(states)
}

type andCond struct{ left, right Condition }

func (c andCond) Eval(states map[string]string) bool {
	return c.left.Eval(states) && c.right.Eval(states)
}

type orCond struct{ left, right Condition }

func (c orCond) Eval(states map[string]string) bool {
	return c.left.Eval(states) || c.right.Eval(states)
}
