package game

import (
	"encoding/json"
	"fmt"
)

// ActionLog is the append-only, sequence-ordered record of a hand. Entries
// are only ever added at the end or dropped from the end with Truncate, so a
// view returned by Actions never aliases the authoritative slice.
type ActionLog struct {
	actions []Action
}

// NewActionLog builds a log from actions that are already in ascending
// sequence order.
func NewActionLog(actions ...Action) (*ActionLog, error) {
	l := &ActionLog{}
	if err := l.Append(actions...); err != nil {
		return nil, err
	}
	return l, nil
}

// Len returns the number of recorded actions.
func (l *ActionLog) Len() int {
	if l == nil {
		return 0
	}
	return len(l.actions)
}

// At returns the i-th action in sequence order.
func (l *ActionLog) At(i int) Action {
	return l.actions[i]
}

// Last returns the most recent action.
func (l *ActionLog) Last() (Action, bool) {
	if l.Len() == 0 {
		return Action{}, false
	}
	return l.actions[len(l.actions)-1], true
}

// Actions returns a copy of the log.
func (l *ActionLog) Actions() []Action {
	if l.Len() == 0 {
		return []Action{}
	}
	out := make([]Action, len(l.actions))
	copy(out, l.actions)
	return out
}

// NextSequence returns one more than the highest recorded sequence number,
// or 1 for an empty log.
func (l *ActionLog) NextSequence() int {
	last, ok := l.Last()
	if !ok {
		return 1
	}
	return last.Sequence + 1
}

// Append adds actions to the end of the log. Every sequence number must be
// greater than the one before it.
func (l *ActionLog) Append(actions ...Action) error {
	next := 0
	if last, ok := l.Last(); ok {
		next = last.Sequence
	}
	for _, a := range actions {
		if a.Sequence <= next {
			return fmt.Errorf("sequence %d does not follow %d", a.Sequence, next)
		}
		next = a.Sequence
	}
	l.actions = append(l.actions, actions...)
	return nil
}

// Truncate drops every action from position n onwards.
func (l *ActionLog) Truncate(n int) {
	if n < 0 {
		n = 0
	}
	if n >= l.Len() {
		return
	}
	l.actions = l.actions[:n]
}

// MarshalJSON encodes the log as a plain array.
func (l ActionLog) MarshalJSON() ([]byte, error) {
	return json.Marshal(l.Actions())
}

// UnmarshalJSON decodes an array of actions, enforcing sequence order.
func (l *ActionLog) UnmarshalJSON(data []byte) error {
	var actions []Action
	if err := json.Unmarshal(data, &actions); err != nil {
		return err
	}
	fresh := ActionLog{}
	if err := fresh.Append(actions...); err != nil {
		return err
	}
	*l = fresh
	return nil
}
