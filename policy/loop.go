package policy

import (
	"context"
	"sync"

	"github.com/hupe1980/racetrack/core"
)

// Loop cycles through a command sequence. With MaxIterations > 0 it reports
// core.ErrPolicyExhausted after that many full passes; 0 loops forever.
type Loop struct {
	mu            sync.Mutex
	commands      []core.Command
	maxIterations int
	pos           int
	iteration     int
}

// NewLoop creates a looping policy. An empty sequence is exhausted immediately.
func NewLoop(cmds []core.Command, maxIterations int) *Loop {
	cp := make([]core.Command, len(cmds))
	copy(cp, cmds)
	return &Loop{commands: cp, maxIterations: maxIterations}
}

// Next implements core.Policy.
func (l *Loop) Next(ctx context.Context, _ core.Observation) (core.Command, error) {
	if err := ctx.Err(); err != nil {
		return core.Command{}, err
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	if len(l.commands) == 0 {
		return core.Command{}, core.ErrPolicyExhausted
	}
	if l.maxIterations > 0 && l.iteration >= l.maxIterations {
		return core.Command{}, core.ErrPolicyExhausted
	}
	cmd := l.commands[l.pos]
	l.pos++
	if l.pos == len(l.commands) {
		l.pos = 0
		l.iteration++
	}
	return cmd, nil
}

// Iterations returns the number of completed passes.
func (l *Loop) Iterations() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.iteration
}
