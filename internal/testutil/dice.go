package testutil

import "sync"

// ScriptedDice replays a fixed sequence of draws, cycling when exhausted.
// Values are reduced modulo n so a script stays valid for any IntN argument.
type ScriptedDice struct {
	mu     sync.Mutex
	values []int
	next   int
	calls  int
}

// NewScriptedDice creates dice that return values in order.
func NewScriptedDice(values ...int) *ScriptedDice {
	if len(values) == 0 {
		values = []int{1}
	}
	return &ScriptedDice{values: values}
}

// NeverFail returns dice whose draw never hits the failure sentinel (0).
func NeverFail() *ScriptedDice { return NewScriptedDice(1) }

// AlwaysFail returns dice whose draw always hits the failure sentinel (0).
func AlwaysFail() *ScriptedDice { return NewScriptedDice(0) }

// IntN implements core.Dice.
func (d *ScriptedDice) IntN(n int) int {
	d.mu.Lock()
	defer d.mu.Unlock()
	v := d.values[d.next%len(d.values)]
	d.next++
	d.calls++
	return v % n
}

// Calls returns how many draws were made.
func (d *ScriptedDice) Calls() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.calls
}
