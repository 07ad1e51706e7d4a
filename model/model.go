// Package model defines the normalized request/response contract between
// specialists and language model providers, plus a deterministic MockModel
// for tests. Provider adapters live in the subpackages (openai, anthropic,
// gemini, groq) and translate to and from the vendor SDKs.
package model

import (
	"context"
	"fmt"
	"sync"
)

// ToolCall represents a function call request surfaced by a model provider.
// Unified across vendors so downstream logic does not need per-provider
// branching.
type ToolCall struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Arguments string `json:"arguments"` // JSON string of arguments
}

// ToolDefinition declaratively exposes a callable function to the model.
// Parameters is a JSON Schema object (draft agnostic, minimal subset).
type ToolDefinition struct {
	Name        string         `json:"name"`
	Description string         `json:"description"`
	Parameters  map[string]any `json:"parameters"`
}

// Message is one chat turn in provider-neutral form. ToolCalls is set on
// assistant turns that requested tools; ToolCallID on the matching tool
// result turns.
type Message struct {
	Role       string     `json:"role"` // "system", "user", "assistant" or "tool"
	Content    string     `json:"content"`
	ToolCalls  []ToolCall `json:"tool_calls,omitempty"`
	ToolCallID string     `json:"tool_call_id,omitempty"`
}

// Request captures the normalized model input produced by specialists and
// the router.
type Request struct {
	Instructions string           `json:"instructions"` // system prompt
	Messages     []Message        `json:"messages"`
	Tools        []ToolDefinition `json:"tools,omitempty"`
}

// Response is the completed output of one generation call. A response with
// ToolCalls set asks the caller to execute them and continue the exchange.
type Response struct {
	Text         string     `json:"text"`
	ToolCalls    []ToolCall `json:"tool_calls,omitempty"`
	FinishReason string     `json:"finish_reason"`
}

// Info contains metadata about a model implementation.
type Info struct {
	Name     string `json:"name"`
	Provider string `json:"provider"`
}

// Model is the minimal interface required to drive generation. Generate
// blocks until the provider returns a complete response; callers pass a
// context for cancellation and deadlines.
type Model interface {
	Generate(ctx context.Context, req Request) (*Response, error)

	// Info returns information about the model implementation.
	Info() Info
}

// MockModel is a lightweight in-memory Model useful for tests. Responses can
// be keyed by the latest user/tool message, or queued in order via Enqueue.
type MockModel struct {
	mu        sync.Mutex
	info      Info
	responses map[string]*Response
	queue     []*Response
	calls     int
	requests  []Request
}

// NewMockModel constructs a MockModel.
func NewMockModel(name, provider string) *MockModel {
	return &MockModel{
		info:      Info{Name: name, Provider: provider},
		responses: make(map[string]*Response),
	}
}

// AddResponse registers a deterministic canned completion for an input prompt.
func (m *MockModel) AddResponse(prompt, text string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.responses[prompt] = &Response{Text: text, FinishReason: "stop"}
}

// Enqueue appends responses returned in order before any keyed lookup.
func (m *MockModel) Enqueue(resps ...*Response) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.queue = append(m.queue, resps...)
}

// Calls returns how many times Generate has been invoked.
func (m *MockModel) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

// Requests returns a copy of every request seen so far.
func (m *MockModel) Requests() []Request {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Request, len(m.requests))
	copy(out, m.requests)
	return out
}

// Generate implements Model.
func (m *MockModel) Generate(ctx context.Context, req Request) (*Response, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	m.requests = append(m.requests, req)

	if len(m.queue) > 0 {
		resp := m.queue[0]
		m.queue = m.queue[1:]
		return resp, nil
	}

	var input string
	if len(req.Messages) > 0 {
		input = req.Messages[len(req.Messages)-1].Content
	}
	if resp, ok := m.responses[input]; ok {
		return resp, nil
	}
	return &Response{Text: fmt.Sprintf("Mock response to: %s", input), FinishReason: "stop"}, nil
}

// Info implements Model.
func (m *MockModel) Info() Info { return m.info }
