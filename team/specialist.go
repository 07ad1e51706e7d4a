package team

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/hupe1980/agentfleet/core"
	"github.com/hupe1980/agentfleet/logging"
	"github.com/hupe1980/agentfleet/model"
	"github.com/hupe1980/agentfleet/tool"
)

// maxToolRounds bounds the generate -> execute tools -> regenerate loop so a
// confused model cannot spin forever.
const maxToolRounds = 4

// Specialist is one assembled team member: a role-scoped model plus its bound
// tool capabilities. Specialists carry no conversation state; history is
// supplied per call.
type Specialist struct {
	name   string
	role   string
	llm    model.Model
	tools  map[string]tool.Tool
	logger logging.Logger
}

// Name returns the specialist's configured name.
func (s *Specialist) Name() string { return s.name }

// Role returns the specialist's configured role description.
func (s *Specialist) Role() string { return s.role }

// Tools returns the names of the bound tools.
func (s *Specialist) Tools() []string {
	names := make([]string, 0, len(s.tools))
	for name := range s.tools {
		names = append(names, name)
	}
	return names
}

// instructions renders the specialist's system prompt.
func (s *Specialist) instructions() string {
	return fmt.Sprintf("You are %s. %s\nCurrent date and time: %s\nAnswer the user directly and use your tools when they help.",
		s.name, s.role, time.Now().Format(time.RFC1123))
}

// toolDefinitions exposes the bound tools to the model.
func (s *Specialist) toolDefinitions() []model.ToolDefinition {
	if len(s.tools) == 0 {
		return nil
	}
	defs := make([]model.ToolDefinition, 0, len(s.tools))
	for _, t := range s.tools {
		defs = append(defs, model.ToolDefinition{
			Name:        t.Name(),
			Description: t.Description(),
			Parameters:  t.Parameters(),
		})
	}
	return defs
}

// Respond answers one message given the prior conversation, running the tool
// call loop until the model produces a final text response.
func (s *Specialist) Respond(ctx context.Context, history []core.Message, message string) (string, error) {
	messages := make([]model.Message, 0, len(history)+1)
	for _, m := range history {
		messages = append(messages, model.Message{Role: m.Role, Content: m.Content})
	}
	messages = append(messages, model.Message{Role: "user", Content: message})

	req := model.Request{
		Instructions: s.instructions(),
		Messages:     messages,
		Tools:        s.toolDefinitions(),
	}

	for round := 0; ; round++ {
		start := time.Now()
		resp, err := s.llm.Generate(ctx, req)
		if err != nil {
			s.logger.Error("specialist.generate.failed", "specialist", s.name, "error", err)
			return "", err
		}
		s.logger.Debug("specialist.generate.done",
			"specialist", s.name,
			"duration", time.Since(start),
			"tool_calls", len(resp.ToolCalls),
		)

		if len(resp.ToolCalls) == 0 {
			return resp.Text, nil
		}
		if round >= maxToolRounds {
			return "", fmt.Errorf("specialist %q exceeded %d tool rounds", s.name, maxToolRounds)
		}

		req.Messages = append(req.Messages, model.Message{
			Role:      "assistant",
			Content:   resp.Text,
			ToolCalls: resp.ToolCalls,
		})
		for _, call := range resp.ToolCalls {
			req.Messages = append(req.Messages, s.executeToolCall(ctx, call))
		}
	}
}

// executeToolCall runs one requested tool and renders its outcome as a tool
// message. Tool failures are reported back to the model instead of aborting
// the turn; the model decides how to proceed.
func (s *Specialist) executeToolCall(ctx context.Context, call model.ToolCall) model.Message {
	msg := model.Message{Role: "tool", ToolCallID: call.ID}

	t, ok := s.tools[call.Name]
	if !ok {
		msg.Content = fmt.Sprintf("error: tool %q is not available", call.Name)
		return msg
	}

	args := map[string]any{}
	if call.Arguments != "" {
		if err := json.Unmarshal([]byte(call.Arguments), &args); err != nil {
			msg.Content = fmt.Sprintf("error: invalid tool arguments: %v", err)
			return msg
		}
	}

	start := time.Now()
	result, err := t.Call(ctx, args)
	if err != nil {
		s.logger.Warn("specialist.tool.failed", "specialist", s.name, "tool", call.Name, "error", err)
		msg.Content = fmt.Sprintf("error: %v", err)
		return msg
	}
	s.logger.Debug("specialist.tool.done", "specialist", s.name, "tool", call.Name, "duration", time.Since(start))

	rendered, err := json.Marshal(result)
	if err != nil {
		msg.Content = fmt.Sprintf("%v", result)
		return msg
	}
	msg.Content = string(rendered)
	return msg
}
