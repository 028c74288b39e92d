package lrgraph

import (
	"encoding/json"
	"fmt"
	"sort"

	"golang.org/x/exp/maps"

	"oss.terrastruct.com/xdefer"
)

// Automaton is the LR automaton computed by the parser engine.
type Automaton struct {
	States []*State `json:"states"`
}

// State is one automaton state. Items are kept in their display form.
type State struct {
	ID          int          `json:"id"`
	Items       []string     `json:"items"`
	Transitions []Transition `json:"transitions"`
}

// Transition is a labelled edge to the state with id Target.
type Transition struct {
	Symbol string `json:"symbol"`
	Target int    `json:"target"`
}

// UnmarshalJSON accepts items either as display strings or as structured items, and
// transitions either as a symbol -> target object, as a list of {symbol, target}
// objects or as a list of [atom, target] pairs.
// Object transitions carry no order so they are sorted by symbol.
func (s *State) UnmarshalJSON(b []byte) (err error) {
	defer xdefer.Errorf(&err, "failed to unmarshal State")

	var raw struct {
		ID          int               `json:"id"`
		Items       []json.RawMessage `json:"items"`
		Transitions json.RawMessage   `json:"transitions"`
	}
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}

	st := State{ID: raw.ID}
	for _, rawItem := range raw.Items {
		if isJSONString(rawItem) {
			var line string
			if err := json.Unmarshal(rawItem, &line); err != nil {
				return err
			}
			st.Items = append(st.Items, line)
			continue
		}
		var it Item
		if err := json.Unmarshal(rawItem, &it); err != nil {
			return fmt.Errorf("state %d: %w", raw.ID, err)
		}
		st.Items = append(st.Items, it.String())
	}

	st.Transitions, err = decodeTransitions(raw.Transitions)
	if err != nil {
		return fmt.Errorf("state %d: %w", raw.ID, err)
	}
	*s = st
	return nil
}

func decodeTransitions(b json.RawMessage) ([]Transition, error) {
	switch firstByte(b) {
	case 0, 'n':
		return nil, nil
	case '{':
		var m map[string]int
		if err := json.Unmarshal(b, &m); err != nil {
			return nil, err
		}
		symbols := maps.Keys(m)
		sort.Strings(symbols)
		transitions := make([]Transition, 0, len(symbols))
		for _, sym := range symbols {
			transitions = append(transitions, Transition{Symbol: sym, Target: m[sym]})
		}
		return transitions, nil
	case '[':
		var elems []json.RawMessage
		if err := json.Unmarshal(b, &elems); err != nil {
			return nil, err
		}
		transitions := make([]Transition, 0, len(elems))
		for _, e := range elems {
			tr, err := decodeTransition(e)
			if err != nil {
				return nil, err
			}
			transitions = append(transitions, tr)
		}
		return transitions, nil
	default:
		return nil, fmt.Errorf("unexpected transitions %s", b)
	}
}

func decodeTransition(b json.RawMessage) (Transition, error) {
	if firstByte(b) == '[' {
		var pair []json.RawMessage
		if err := json.Unmarshal(b, &pair); err != nil {
			return Transition{}, err
		}
		if len(pair) != 2 {
			return Transition{}, fmt.Errorf("transition pair must have 2 elements, got %d", len(pair))
		}
		var atom Atom
		if err := json.Unmarshal(pair[0], &atom); err != nil {
			return Transition{}, err
		}
		var target int
		if err := json.Unmarshal(pair[1], &target); err != nil {
			return Transition{}, err
		}
		return Transition{Symbol: atom.String(), Target: target}, nil
	}

	var raw struct {
		Symbol Atom `json:"symbol"`
		Target int  `json:"target"`
	}
	if err := json.Unmarshal(b, &raw); err != nil {
		return Transition{}, err
	}
	return Transition{Symbol: raw.Symbol.String(), Target: raw.Target}, nil
}
