package team

import (
	"context"
	"fmt"
	"strings"

	"github.com/hupe1980/agentfleet/core"
	"github.com/hupe1980/agentfleet/logging"
	"github.com/hupe1980/agentfleet/model"
)

// routerHistoryWindow caps how many prior turns the router sees. Routing only
// needs recent context, not the full transcript.
const routerHistoryWindow = 10

// router selects which specialist answers a message. It issues no answer
// content itself; the selection is delegated to its model and parsed from the
// reply.
type router struct {
	llm          model.Model
	instructions string
	logger       logging.Logger
}

// instructionsFor renders the routing system prompt: the configured
// instructions plus the team roster.
func (r *router) instructionsFor(specialists []*Specialist) string {
	var b strings.Builder
	b.WriteString(r.instructions)
	b.WriteString("\n\nYour team:\n")
	for _, s := range specialists {
		fmt.Fprintf(&b, "- %s: %s\n", s.Name(), s.Role())
	}
	b.WriteString("\nRespond with exactly one name from the list above and nothing else.")
	return b.String()
}

// route asks the model to pick a specialist and resolves the reply against
// the roster. An empty name means the reply matched nobody.
func (r *router) route(
	ctx context.Context,
	specialists []*Specialist,
	history []core.Message,
	message string,
) (string, error) {
	if len(history) > routerHistoryWindow {
		history = history[len(history)-routerHistoryWindow:]
	}

	messages := make([]model.Message, 0, len(history)+1)
	for _, m := range history {
		messages = append(messages, model.Message{Role: m.Role, Content: m.Content})
	}
	messages = append(messages, model.Message{Role: "user", Content: message})

	resp, err := r.llm.Generate(ctx, model.Request{
		Instructions: r.instructionsFor(specialists),
		Messages:     messages,
	})
	if err != nil {
		return "", err
	}

	name := resolveSpecialistName(resp.Text, specialists)
	r.logger.Debug("router.selected", "raw", resp.Text, "specialist", name)
	return name, nil
}

// resolveSpecialistName matches a model reply against the roster: exact match
// first, then a case-insensitive containment scan in roster order.
func resolveSpecialistName(reply string, specialists []*Specialist) string {
	trimmed := strings.TrimSpace(strings.Trim(strings.TrimSpace(reply), `"'.`))
	for _, s := range specialists {
		if strings.EqualFold(trimmed, s.Name()) {
			return s.Name()
		}
	}
	lower := strings.ToLower(reply)
	for _, s := range specialists {
		if strings.Contains(lower, strings.ToLower(s.Name())) {
			return s.Name()
		}
	}
	return ""
}
