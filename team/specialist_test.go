package team

import (
	"context"
	"errors"
	"testing"

	"github.com/hupe1980/agentfleet/logging"
	"github.com/hupe1980/agentfleet/model"
	"github.com/hupe1980/agentfleet/tool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeTool records invocations and returns a canned result or error.
type fakeTool struct {
	name   string
	result any
	err    error
	calls  []map[string]any
}

func (f *fakeTool) Name() string               { return f.name }
func (f *fakeTool) Description() string        { return "fake tool for tests" }
func (f *fakeTool) Parameters() map[string]any { return map[string]any{"type": "object"} }

func (f *fakeTool) Call(_ context.Context, args map[string]any) (any, error) {
	f.calls = append(f.calls, args)
	if f.err != nil {
		return nil, f.err
	}
	return f.result, nil
}

func TestRespondWithoutTools(t *testing.T) {
	llm := model.NewMockModel("m", "test")
	llm.AddResponse("ping", "pong")

	s := newTestSpecialist("Echo", "Echoes things", llm)

	out, err := s.Respond(context.Background(), nil, "ping")
	require.NoError(t, err)
	assert.Equal(t, "pong", out)

	reqs := llm.Requests()
	require.Len(t, reqs, 1)
	assert.Empty(t, reqs[0].Tools)
	assert.Contains(t, reqs[0].Instructions, "Echo")
}

func TestRespondRunsToolLoop(t *testing.T) {
	search := &fakeTool{name: "web_search", result: map[string]any{"answer": "Go 1.24 released"}}

	llm := model.NewMockModel("m", "test")
	llm.Enqueue(
		&model.Response{
			ToolCalls:    []model.ToolCall{{ID: "c1", Name: "web_search", Arguments: `{"query":"go release"}`}},
			FinishReason: "tool_calls",
		},
		&model.Response{Text: "Go 1.24 is out.", FinishReason: "stop"},
	)

	s := &Specialist{
		name:   "Researcher",
		role:   "Finds information",
		llm:    llm,
		tools:  map[string]tool.Tool{"web_search": search},
		logger: logging.NoOpLogger{},
	}

	out, err := s.Respond(context.Background(), nil, "what is new in go?")
	require.NoError(t, err)
	assert.Equal(t, "Go 1.24 is out.", out)

	require.Len(t, search.calls, 1)
	assert.Equal(t, "go release", search.calls[0]["query"])

	// The second request carries the assistant tool call plus the tool result.
	reqs := llm.Requests()
	require.Len(t, reqs, 2)
	msgs := reqs[1].Messages
	require.Len(t, msgs, 3)
	assert.Equal(t, "assistant", msgs[1].Role)
	assert.Equal(t, "tool", msgs[2].Role)
	assert.Equal(t, "c1", msgs[2].ToolCallID)
	assert.Contains(t, msgs[2].Content, "Go 1.24 released")
}

func TestRespondReportsToolErrorToModel(t *testing.T) {
	failing := &fakeTool{name: "web_search", err: errors.New("upstream timeout")}

	llm := model.NewMockModel("m", "test")
	llm.Enqueue(
		&model.Response{
			ToolCalls:    []model.ToolCall{{ID: "c1", Name: "web_search", Arguments: `{}`}},
			FinishReason: "tool_calls",
		},
		&model.Response{Text: "The search is unavailable right now.", FinishReason: "stop"},
	)

	s := &Specialist{
		name:   "Researcher",
		role:   "Finds information",
		llm:    llm,
		tools:  map[string]tool.Tool{"web_search": failing},
		logger: logging.NoOpLogger{},
	}

	out, err := s.Respond(context.Background(), nil, "search something")
	require.NoError(t, err)
	assert.Equal(t, "The search is unavailable right now.", out)

	reqs := llm.Requests()
	require.Len(t, reqs, 2)
	toolMsg := reqs[1].Messages[2]
	assert.Equal(t, "tool", toolMsg.Role)
	assert.Contains(t, toolMsg.Content, "upstream timeout")
}

func TestRespondUnknownToolCall(t *testing.T) {
	llm := model.NewMockModel("m", "test")
	llm.Enqueue(
		&model.Response{
			ToolCalls:    []model.ToolCall{{ID: "c1", Name: "teleport", Arguments: `{}`}},
			FinishReason: "tool_calls",
		},
		&model.Response{Text: "I cannot do that.", FinishReason: "stop"},
	)

	s := newTestSpecialist("Limited", "Has no tools", llm)

	out, err := s.Respond(context.Background(), nil, "teleport me")
	require.NoError(t, err)
	assert.Equal(t, "I cannot do that.", out)

	reqs := llm.Requests()
	require.Len(t, reqs, 2)
	assert.Contains(t, reqs[1].Messages[2].Content, "not available")
}

func TestRespondBoundsToolRounds(t *testing.T) {
	spinner := &fakeTool{name: "loop", result: "again"}

	llm := model.NewMockModel("m", "test")
	looping := &model.Response{
		ToolCalls:    []model.ToolCall{{ID: "c", Name: "loop", Arguments: `{}`}},
		FinishReason: "tool_calls",
	}
	for i := 0; i <= maxToolRounds+1; i++ {
		llm.Enqueue(looping)
	}

	s := &Specialist{
		name:   "Spinner",
		role:   "Loops forever",
		llm:    llm,
		tools:  map[string]tool.Tool{"loop": spinner},
		logger: logging.NoOpLogger{},
	}

	_, err := s.Respond(context.Background(), nil, "go")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "tool rounds")
}
