package core

import "time"

// Message is one persisted turn of a conversation. Role follows the usual
// chat convention ("user" or "assistant"); Specialist records which team
// member produced an assistant turn.
type Message struct {
	Role       string    `json:"role"`
	Content    string    `json:"content"`
	Specialist string    `json:"specialist,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}

// Reply is the outcome of dispatching one message to an orchestrator.
type Reply struct {
	Content    string `json:"content"`
	Specialist string `json:"specialist"` // team member that answered
}
