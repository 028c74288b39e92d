package lrgraph

import (
	"encoding/json"
	"fmt"

	"oss.terrastruct.com/xdefer"
)

// Tree is a derivation tree. Exactly one of Terminal and NonTerminal is set.
type Tree struct {
	Terminal    *Terminal
	NonTerminal *NonTerminal
}

type Terminal struct {
	Token Token  `json:"token"`
	Slice string `json:"slice"`
}

type NonTerminal struct {
	Symbol  string  `json:"symbol"`
	Pattern []*Tree `json:"pattern"`
}

func NewTerminal(slice string) *Tree {
	return &Tree{Terminal: &Terminal{
		Token: Token{Type: TokenConstant, Value: slice},
		Slice: slice,
	}}
}

func NewNonTerminal(symbol string, children ...*Tree) *Tree {
	return &Tree{NonTerminal: &NonTerminal{
		Symbol:  symbol,
		Pattern: children,
	}}
}

func (t *Tree) IsTerminal() bool {
	return t.Terminal != nil
}

// Text is what a node shows: the matched slice of a terminal or the symbol of a
// non-terminal.
func (t *Tree) Text() string {
	if t.Terminal != nil {
		if t.Terminal.Slice == "" {
			return t.Terminal.Token.String()
		}
		return t.Terminal.Slice
	}
	if t.NonTerminal != nil {
		return t.NonTerminal.Symbol
	}
	return ""
}

// Children is nil for terminals and for non-terminals with an empty pattern.
func (t *Tree) Children() []*Tree {
	if t.NonTerminal == nil {
		return nil
	}
	return t.NonTerminal.Pattern
}

func (t *Tree) UnmarshalJSON(b []byte) (err error) {
	defer xdefer.Errorf(&err, "failed to unmarshal Tree")

	var raw struct {
		Type  string          `json:"type"`
		Value json.RawMessage `json:"value"`
	}
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}

	switch raw.Type {
	case "Terminal":
		term := &Terminal{}
		if err := json.Unmarshal(raw.Value, term); err != nil {
			return err
		}
		*t = Tree{Terminal: term}
	case "NonTerminal":
		nt := &NonTerminal{}
		if err := json.Unmarshal(raw.Value, nt); err != nil {
			return err
		}
		pattern := nt.Pattern[:0]
		for _, c := range nt.Pattern {
			if c != nil {
				pattern = append(pattern, c)
			}
		}
		nt.Pattern = pattern
		*t = Tree{NonTerminal: nt}
	default:
		return fmt.Errorf("unknown tree node type %q", raw.Type)
	}
	return nil
}

func (t *Tree) MarshalJSON() ([]byte, error) {
	if t.Terminal != nil {
		return json.Marshal(struct {
			Type  string    `json:"type"`
			Value *Terminal `json:"value"`
		}{"Terminal", t.Terminal})
	}
	return json.Marshal(struct {
		Type  string       `json:"type"`
		Value *NonTerminal `json:"value"`
	}{"NonTerminal", t.NonTerminal})
}
