package policy

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"sync"
	"time"

	"github.com/hupe1980/racetrack/core"
	"github.com/hupe1980/racetrack/internal/util"
	"github.com/hupe1980/racetrack/logging"
	"github.com/hupe1980/racetrack/model"
)

// AccelerateToolName is the tool a model calls to choose the next command.
const AccelerateToolName = "apply_acceleration"

// DefaultInstruction is the system instruction used when none is configured.
const DefaultInstruction = `You drive a racecar on an unbounded integer grid.
Each tick you choose an acceleration change dx, dy, each one of -1, 0 or 1.
The change is added to the car's running acceleration total, the total is added
to the velocity, and velocity is clamped to [-{{.max_speed}}, {{.max_speed}}] per axis.
One command in five is randomly lost.`

// ErrUnparseableReply is returned when a model reply contains neither a tool
// call nor a "dx,dy" pair.
var ErrUnparseableReply = errors.New("model reply does not contain a command")

var commandPattern = regexp.MustCompile(`(-?\d+)\s*,\s*(-?\d+)`)

type accelerateArgs struct {
	DX int `json:"dx" description:"acceleration change on the x axis" enum:"-1,0,1"`
	DY int `json:"dy" description:"acceleration change on the y axis" enum:"-1,0,1"`
}

// ModelOptions configures a ModelPolicy.
//
// Use functional options with NewModelPolicy to override defaults.
type ModelOptions struct {
	Instruction           Instruction
	EnableFunctionCalling bool
	EnableStreaming       bool
	// MaxModelCalls caps the number of model requests; 0 means unlimited.
	MaxModelCalls int
	// MaxHistoryMessages bounds how many previous prompt/reply messages are
	// sent back to the model; 0 disables history.
	MaxHistoryMessages int
	Logger             logging.Logger
}

// ModelPolicy asks a language model for every command. The model either
// calls the apply_acceleration tool or replies with text containing "dx,dy".
// The command is returned as the model proposed it; range checking is left to
// the car, which rejects invalid commands without aborting the tick.
type ModelPolicy struct {
	llm             model.Model
	instruction     Instruction
	functionCalling bool
	streaming       bool
	maxHistory      int
	limiter         *core.CallLimiter
	logger          logging.Logger
	schema          map[string]any

	mu      sync.Mutex
	history []model.Message
}

// NewModelPolicy creates a model-driven policy with sensible defaults:
// the DefaultInstruction, tool calling when the model supports it, no
// streaming, at most 1000 model calls and 6 history messages.
func NewModelPolicy(llm model.Model, optFns ...func(o *ModelOptions)) *ModelPolicy {
	opts := ModelOptions{
		Instruction:           NewInstructionFromText(DefaultInstruction),
		EnableFunctionCalling: llm.Info().SupportsTools,
		MaxModelCalls:         1000,
		MaxHistoryMessages:    6,
	}

	for _, fn := range optFns {
		fn(&opts)
	}

	return &ModelPolicy{
		llm:             llm,
		instruction:     opts.Instruction,
		functionCalling: opts.EnableFunctionCalling,
		streaming:       opts.EnableStreaming,
		maxHistory:      opts.MaxHistoryMessages,
		limiter:         core.NewCallLimiter(opts.MaxModelCalls),
		logger:          logging.OrNoOp(opts.Logger),
		schema:          util.CreateSchema(accelerateArgs{}),
	}
}

// Next implements core.Policy.
func (p *ModelPolicy) Next(ctx context.Context, obs core.Observation) (core.Command, error) {
	if err := p.limiter.Increment(); err != nil {
		return core.Command{}, err
	}

	instruction, err := p.instruction.Resolve(obs)
	if err != nil {
		return core.Command{}, fmt.Errorf("resolve instruction: %w", err)
	}

	prompt := Prompt(obs)
	req := model.Request{
		Instructions: instruction,
		Messages:     append(p.History(), model.Message{Role: "user", Text: prompt}),
		Stream:       p.streaming,
	}
	if p.functionCalling {
		req.Tools = []model.ToolDefinition{{
			Name:        AccelerateToolName,
			Description: "Apply an acceleration change to the racecar for this tick.",
			Parameters:  p.schema,
		}}
	}

	start := time.Now()
	resp, err := model.Collect(ctx, p.llm, req)
	p.logModelCall(resp, time.Since(start), err)
	if err != nil {
		return core.Command{}, fmt.Errorf("model call: %w", err)
	}

	cmd, err := p.parse(resp)
	if err != nil {
		return core.Command{}, err
	}

	p.remember(prompt, cmd)
	p.logger.Debug("model proposed command %s at tick %d", cmd, obs.Tick)

	return cmd, nil
}

// History returns a copy of the retained prompt/reply messages.
func (p *ModelPolicy) History() []model.Message {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]model.Message, len(p.history))
	copy(out, p.history)
	return out
}

// Calls returns how many model requests the policy has made.
func (p *ModelPolicy) Calls() int { return p.limiter.Count() }

func (p *ModelPolicy) parse(resp model.Response) (core.Command, error) {
	for _, tc := range resp.ToolCalls {
		if tc.Name != AccelerateToolName {
			continue
		}
		var params map[string]any
		if err := json.Unmarshal(tc.Arguments, &params); err != nil {
			return core.Command{}, fmt.Errorf("decode %s arguments: %w", AccelerateToolName, err)
		}
		if err := util.ValidateParameters(params, p.schema); err != nil {
			return core.Command{}, fmt.Errorf("invalid %s arguments: %w", AccelerateToolName, err)
		}
		var args accelerateArgs
		if err := json.Unmarshal(tc.Arguments, &args); err != nil {
			return core.Command{}, fmt.Errorf("decode %s arguments: %w", AccelerateToolName, err)
		}
		return core.NewCommand(args.DX, args.DY), nil
	}
	return ParseCommand(resp.Text)
}

func (p *ModelPolicy) remember(prompt string, cmd core.Command) {
	if p.maxHistory <= 0 {
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.history = append(p.history,
		model.Message{Role: "user", Text: prompt},
		model.Message{Role: "assistant", Text: fmt.Sprintf("%d,%d", cmd.DX, cmd.DY)},
	)
	if over := len(p.history) - p.maxHistory; over > 0 {
		p.history = append([]model.Message(nil), p.history[over:]...)
	}
}

func (p *ModelPolicy) logModelCall(resp model.Response, dur time.Duration, err error) {
	tokens := 0
	if resp.Usage != nil {
		tokens = resp.Usage.TotalTokens
	}
	if ml, ok := p.logger.(interface {
		LogModelCall(model string, tokens int, dur time.Duration, success bool, err error)
	}); ok {
		ml.LogModelCall(p.llm.Info().Name, tokens, dur, err == nil, err)
		return
	}
	if err != nil {
		p.logger.Error("model call to %s failed after %s: %v", p.llm.Info().Name, dur, err)
	}
}

// Prompt renders the per-tick user message sent to the model.
func Prompt(obs core.Observation) string {
	return fmt.Sprintf(
		"Tick %d. Position %s, velocity %s, acceleration total %s. Reply with the acceleration change as dx,dy.",
		obs.Tick, obs.Position, obs.Velocity, obs.Acceleration,
	)
}

// ParseCommand extracts the first "dx,dy" integer pair from text.
func ParseCommand(text string) (core.Command, error) {
	m := commandPattern.FindStringSubmatch(text)
	if m == nil {
		return core.Command{}, fmt.Errorf("%w: %q", ErrUnparseableReply, text)
	}
	dx, err := strconv.Atoi(m[1])
	if err != nil {
		return core.Command{}, fmt.Errorf("%w: %q", ErrUnparseableReply, text)
	}
	dy, err := strconv.Atoi(m[2])
	if err != nil {
		return core.Command{}, fmt.Errorf("%w: %q", ErrUnparseableReply, text)
	}
	return core.NewCommand(dx, dy), nil
}
