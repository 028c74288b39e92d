package lrgraph

import (
	"encoding/json"
	"errors"

	"oss.terrastruct.com/xdefer"
)

type Kind string

const (
	KindAutomaton Kind = "automaton"
	KindTree      Kind = "tree"
)

// Document is a parsed input file. Exactly one of Automaton and Tree is set.
type Document struct {
	Kind      Kind
	Automaton *Automaton
	Tree      *Tree
}

// Parse decodes either an automaton ({"states": [...]}) or a derivation tree
// ({"type": ..., "value": ...}).
func Parse(b []byte) (_ *Document, err error) {
	defer xdefer.Errorf(&err, "failed to parse input")

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(b, &fields); err != nil {
		return nil, err
	}

	if _, ok := fields["states"]; ok {
		a := &Automaton{}
		if err := json.Unmarshal(b, a); err != nil {
			return nil, err
		}
		return &Document{Kind: KindAutomaton, Automaton: a}, nil
	}
	if _, ok := fields["type"]; ok {
		t := &Tree{}
		if err := json.Unmarshal(b, t); err != nil {
			return nil, err
		}
		return &Document{Kind: KindTree, Tree: t}, nil
	}
	return nil, errors.New(`expected an automaton with "states" or a tree with "type"`)
}
