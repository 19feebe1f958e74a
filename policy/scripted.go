package policy

import (
	"context"
	"sync"

	"github.com/hupe1980/racetrack/core"
)

// Scripted replays a fixed sequence of commands in order and then reports
// core.ErrPolicyExhausted.
type Scripted struct {
	mu       sync.Mutex
	commands []core.Command
	next     int
}

// NewScripted creates a policy that returns cmds one per tick.
func NewScripted(cmds ...core.Command) *Scripted {
	cp := make([]core.Command, len(cmds))
	copy(cp, cmds)
	return &Scripted{commands: cp}
}

// Repeat builds a Scripted policy issuing cmd n times.
func Repeat(cmd core.Command, n int) *Scripted {
	cmds := make([]core.Command, n)
	for i := range cmds {
		cmds[i] = cmd
	}
	return &Scripted{commands: cmds}
}

// Next implements core.Policy.
func (s *Scripted) Next(ctx context.Context, _ core.Observation) (core.Command, error) {
	if err := ctx.Err(); err != nil {
		return core.Command{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.next >= len(s.commands) {
		return core.Command{}, core.ErrPolicyExhausted
	}
	cmd := s.commands[s.next]
	s.next++
	return cmd, nil
}

// Remaining returns how many commands are left.
func (s *Scripted) Remaining() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.commands) - s.next
}
