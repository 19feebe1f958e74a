package policy

import (
	"context"
	"errors"
	"testing"

	"github.com/hupe1980/racetrack/core"
	"github.com/hupe1980/racetrack/internal/testutil"
	"github.com/hupe1980/racetrack/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// mockLLM is a testify mock implementing model.Model.
type mockLLM struct{ mock.Mock }

func (m *mockLLM) Generate(ctx context.Context, req model.Request) (<-chan model.Response, <-chan error) {
	args := m.Called(ctx, req)

	respCh := make(chan model.Response, 1)
	errCh := make(chan error, 1)
	if err := args.Error(1); err != nil {
		errCh <- err
	} else {
		respCh <- args.Get(0).(model.Response)
	}
	close(respCh)
	close(errCh)

	return respCh, errCh
}

func (m *mockLLM) Info() model.Info {
	args := m.Called()
	return args.Get(0).(model.Info)
}

func TestModelPolicy_ToolCall(t *testing.T) {
	obs := core.Observation{CarID: "red", Tick: 2, Velocity: core.Vec{X: 1}}
	llm := model.NewMockModel("mock", "mock")
	llm.AddToolCall(Prompt(obs), AccelerateToolName, `{"dx":1,"dy":-1}`)

	p := NewModelPolicy(llm)
	cmd, err := p.Next(context.Background(), obs)

	require.NoError(t, err)
	assert.Equal(t, core.NewCommand(1, -1), cmd)

	reqs := llm.Requests()
	require.Len(t, reqs, 1)
	require.Len(t, reqs[0].Tools, 1)
	assert.Equal(t, AccelerateToolName, reqs[0].Tools[0].Name)
	assert.Equal(t, "object", reqs[0].Tools[0].Parameters["type"])
	assert.Contains(t, reqs[0].Instructions, "[-5, 5]")
	assert.Equal(t, Prompt(obs), reqs[0].Messages[len(reqs[0].Messages)-1].Text)
	assert.Equal(t, 1, p.Calls())
}

func TestModelPolicy_TextReply(t *testing.T) {
	llm := model.NewMockModel("mock", "mock")
	llm.SetFallback(model.Response{Text: "I will brake: -1, 0"})

	p := NewModelPolicy(llm, func(o *ModelOptions) {
		o.EnableFunctionCalling = false
		o.EnableStreaming = true
	})
	cmd, err := p.Next(context.Background(), core.Observation{})

	require.NoError(t, err)
	assert.Equal(t, core.NewCommand(-1, 0), cmd)
	assert.Empty(t, llm.Requests()[0].Tools)
	assert.True(t, llm.Requests()[0].Stream)
}

func TestModelPolicy_OutOfRangeIsPassedThrough(t *testing.T) {
	llm := model.NewMockModel("mock", "mock")
	llm.SetFallback(model.Response{ToolCalls: []model.ToolCall{{Name: AccelerateToolName, Arguments: []byte(`{"dx":2,"dy":0}`)}}})

	cmd, err := NewModelPolicy(llm).Next(context.Background(), core.Observation{})

	require.NoError(t, err)
	assert.Equal(t, core.NewCommand(2, 0), cmd)
	assert.ErrorIs(t, cmd.Validate(), core.ErrInvalidCommand)
}

func TestModelPolicy_InvalidToolArguments(t *testing.T) {
	tests := []struct {
		name string
		args string
	}{
		{"wrong type", `{"dx":"left","dy":0}`},
		{"missing field", `{"dx":1}`},
		{"not json", `dx=1`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			llm := model.NewMockModel("mock", "mock")
			llm.SetFallback(model.Response{ToolCalls: []model.ToolCall{{Name: AccelerateToolName, Arguments: []byte(tt.args)}}})

			_, err := NewModelPolicy(llm).Next(context.Background(), core.Observation{})
			assert.ErrorContains(t, err, AccelerateToolName)
		})
	}
}

func TestModelPolicy_UnparseableReply(t *testing.T) {
	llm := model.NewMockModel("mock", "mock")
	llm.SetFallback(model.Response{Text: "full throttle!"})

	_, err := NewModelPolicy(llm).Next(context.Background(), core.Observation{})

	assert.ErrorIs(t, err, ErrUnparseableReply)
}

func TestModelPolicy_CallLimit(t *testing.T) {
	llm := model.NewMockModel("mock", "mock")
	llm.SetFallback(model.Response{Text: "0,0"})

	p := NewModelPolicy(llm, func(o *ModelOptions) { o.MaxModelCalls = 2 })
	for range 2 {
		_, err := p.Next(context.Background(), core.Observation{})
		require.NoError(t, err)
	}

	_, err := p.Next(context.Background(), core.Observation{})
	assert.ErrorIs(t, err, core.ErrCallLimitExceeded)
	assert.Len(t, llm.Requests(), 2)
}

func TestModelPolicy_History(t *testing.T) {
	llm := model.NewMockModel("mock", "mock")
	llm.SetFallback(model.Response{Text: "1,1"})

	p := NewModelPolicy(llm, func(o *ModelOptions) { o.MaxHistoryMessages = 2 })
	for tick := range 3 {
		_, err := p.Next(context.Background(), core.Observation{Tick: tick})
		require.NoError(t, err)
	}

	history := p.History()
	require.Len(t, history, 2)
	assert.Equal(t, Prompt(core.Observation{Tick: 2}), history[0].Text)
	assert.Equal(t, "assistant", history[1].Role)
	assert.Equal(t, "1,1", history[1].Text)

	reqs := llm.Requests()
	assert.Len(t, reqs[0].Messages, 1)
	assert.Len(t, reqs[2].Messages, 3)

	noHistory := NewModelPolicy(llm, func(o *ModelOptions) { o.MaxHistoryMessages = 0 })
	_, err := noHistory.Next(context.Background(), core.Observation{})
	require.NoError(t, err)
	assert.Empty(t, noHistory.History())
}

func TestModelPolicy_ModelError(t *testing.T) {
	boom := errors.New("rate limited")
	llm := &mockLLM{}
	llm.On("Info").Return(model.Info{Name: "flaky", Provider: "test"})
	llm.On("Generate", mock.Anything, mock.Anything).Return(model.Response{}, boom)

	logger := testutil.NewRecordingLogger()
	p := NewModelPolicy(llm, func(o *ModelOptions) { o.Logger = logger })

	_, err := p.Next(context.Background(), core.Observation{})

	assert.ErrorIs(t, err, boom)
	assert.ErrorContains(t, err, "model call")
	assert.True(t, logger.Contains("ERROR", "model call to flaky failed"))
	llm.AssertExpectations(t)
}

func TestModelPolicy_DynamicInstruction(t *testing.T) {
	llm := &mockLLM{}
	llm.On("Info").Return(model.Info{Name: "m", SupportsTools: false})
	llm.On("Generate", mock.Anything, mock.MatchedBy(func(req model.Request) bool {
		return req.Instructions == "go right, car blue" && len(req.Tools) == 0
	})).Return(model.Response{Text: "1,0"}, nil)

	p := NewModelPolicy(llm, func(o *ModelOptions) {
		o.Instruction = NewInstructionFromFunc(func(obs core.Observation) (string, error) {
			return "go right, car " + obs.CarID, nil
		})
	})

	cmd, err := p.Next(context.Background(), core.Observation{CarID: "blue"})

	require.NoError(t, err)
	assert.Equal(t, core.NewCommand(1, 0), cmd)
	llm.AssertExpectations(t)
}

func TestParseCommand(t *testing.T) {
	tests := []struct {
		text string
		want core.Command
	}{
		{"1,0", core.NewCommand(1, 0)},
		{"dx, dy = -1 , 1", core.NewCommand(-1, 1)},
		{"Accelerate with 0,-1 now", core.NewCommand(0, -1)},
		{"3,4", core.NewCommand(3, 4)},
	}

	for _, tt := range tests {
		got, err := ParseCommand(tt.text)
		require.NoError(t, err, tt.text)
		assert.Equal(t, tt.want, got, tt.text)
	}

	_, err := ParseCommand("no numbers here")
	assert.ErrorIs(t, err, ErrUnparseableReply)
}
