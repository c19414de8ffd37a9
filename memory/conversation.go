package memory

import (
	"github.com/SaiNageswarS/opentargets-agent/llm"
)

// Conversation represents a conversation session with messages and the
// key/value state agents write their outputs to.
type Conversation struct {
	ID        string            `json:"id"`
	Messages  []llm.Message     `json:"messages"`
	State     map[string]string `json:"state,omitempty"`
	UpdatedAt int64             `json:"updated_at,omitempty"`
}

func NewConversation(id string) *Conversation {
	return &Conversation{ID: id, State: map[string]string{}}
}

func (m *Conversation) AddUserMessage(content string) {
	m.Messages = append(m.Messages, llm.Message{Role: "user", Content: content})
}

func (m *Conversation) AddAssistantMessage(content string) {
	m.Messages = append(m.Messages, llm.Message{Role: "assistant", Content: content})
}

func (m *Conversation) AddToolResult(content string) {
	m.Messages = append(m.Messages, llm.Message{Role: "user", Content: content, IsToolResult: true})
}
