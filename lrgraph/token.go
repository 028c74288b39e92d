package lrgraph

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"oss.terrastruct.com/xdefer"
)

type TokenType string

const (
	TokenConstant TokenType = "Constant"
	TokenRegex    TokenType = "Regex"
	TokenEOF      TokenType = "Eof"
)

// Token is a terminal of the grammar as the parser engine emits it.
// A bare JSON string decodes as a constant token.
type Token struct {
	Type  TokenType `json:"type"`
	Value string    `json:"value,omitempty"`
}

func (t Token) String() string {
	switch t.Type {
	case TokenRegex:
		return "%" + t.Value
	case TokenEOF:
		return "$"
	default:
		return t.Value
	}
}

func (t *Token) UnmarshalJSON(b []byte) (err error) {
	defer xdefer.Errorf(&err, "failed to unmarshal Token from %q", b)

	if isJSONString(b) {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*t = Token{Type: TokenConstant, Value: s}
		return nil
	}

	var raw struct {
		Type  TokenType `json:"type"`
		Value string    `json:"value"`
	}
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	switch raw.Type {
	case TokenConstant, TokenRegex, TokenEOF:
	case "":
		raw.Type = TokenConstant
	default:
		return fmt.Errorf("unknown token type %q", raw.Type)
	}
	*t = Token(raw)
	return nil
}

// Atom is one element of a rule's pattern: either a grammar symbol or a token.
// It is also the key of a state transition.
type Atom struct {
	Symbol string
	Token  *Token
}

func (a Atom) String() string {
	if a.Token != nil {
		return a.Token.String()
	}
	return a.Symbol
}

func (a *Atom) UnmarshalJSON(b []byte) (err error) {
	defer xdefer.Errorf(&err, "failed to unmarshal Atom from %q", b)

	if isJSONString(b) {
		*a = Atom{}
		return json.Unmarshal(b, &a.Symbol)
	}

	var raw struct {
		Type  string          `json:"type"`
		Value json.RawMessage `json:"value"`
	}
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	switch raw.Type {
	case "Symbol":
		*a = Atom{}
		return json.Unmarshal(raw.Value, &a.Symbol)
	case "Token":
		tok := &Token{}
		if err := json.Unmarshal(raw.Value, tok); err != nil {
			return err
		}
		*a = Atom{Token: tok}
		return nil
	default:
		return fmt.Errorf("unknown atom type %q", raw.Type)
	}
}

type Rule struct {
	Symbol  string `json:"symbol"`
	Pattern []Atom `json:"pattern"`
}

// Item is an LR item: a rule, the dot position within its pattern and the
// lookahead set.
type Item struct {
	Rule      Rule    `json:"rule"`
	Dot       int     `json:"dot"`
	Lookahead []Token `json:"lookahead"`
}

// String renders the item the way it is shown inside a state, e.g.
// "E -> E . + T [$, +]".
func (it Item) String() string {
	var sb strings.Builder
	sb.WriteString(it.Rule.Symbol)
	sb.WriteString(" ->")
	for i, atom := range it.Rule.Pattern {
		if i == it.Dot {
			sb.WriteString(" .")
		}
		sb.WriteByte(' ')
		sb.WriteString(atom.String())
	}
	if it.Dot >= len(it.Rule.Pattern) {
		sb.WriteString(" .")
	}
	if len(it.Lookahead) > 0 {
		la := make([]string, len(it.Lookahead))
		for i, t := range it.Lookahead {
			la[i] = t.String()
		}
		sb.WriteString(" [")
		sb.WriteString(strings.Join(la, ", "))
		sb.WriteByte(']')
	}
	return sb.String()
}

func isJSONString(b []byte) bool {
	b = bytes.TrimSpace(b)
	return len(b) > 0 && b[0] == '"'
}

func firstByte(b []byte) byte {
	b = bytes.TrimSpace(b)
	if len(b) == 0 {
		return 0
	}
	return b[0]
}
