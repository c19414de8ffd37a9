package memory

import (
	"context"
	"errors"
	"time"

	"github.com/SaiNageswarS/go-api-boot/logger"
	"github.com/SaiNageswarS/opentargets-agent/llm"
	"go.uber.org/zap"
)

// ConversationManager handles conversation-related operations
type ConversationManager struct {
	store   SessionStore
	maxMsgs int
}

func NewConversationManager(store SessionStore, maxMsgs int) *ConversationManager {
	return &ConversationManager{
		store:   store,
		maxMsgs: maxMsgs,
	}
}

// LoadSession loads previous conversation messages for a session. Unknown
// sessions and store failures yield an empty conversation with that id.
func (cm *ConversationManager) LoadSession(ctx context.Context, sessionID string) *Conversation {
	if cm.store == nil || sessionID == "" {
		return NewConversation(sessionID)
	}

	conversation, err := cm.store.Load(ctx, sessionID)
	if errors.Is(err, ErrSessionNotFound) {
		return NewConversation(sessionID)
	}
	if err != nil {
		logger.Error("Failed to find session", zap.String("session_id", sessionID), zap.Error(err))
		return NewConversation(sessionID)
	}

	return conversation
}

// GetSession returns the stored conversation or ErrSessionNotFound.
func (cm *ConversationManager) GetSession(ctx context.Context, sessionID string) (*Conversation, error) {
	if cm.store == nil {
		return nil, ErrSessionNotFound
	}
	return cm.store.Load(ctx, sessionID)
}

// SaveSession trims and saves the conversation. Conversations without an id
// are not persisted.
func (cm *ConversationManager) SaveSession(ctx context.Context, conversation *Conversation) error {
	if cm.store == nil || conversation.ID == "" {
		return nil
	}

	conversation.Messages = cm.trimForSession(conversation.Messages)
	conversation.UpdatedAt = time.Now().UnixMilli()

	if err := cm.store.Save(ctx, conversation); err != nil {
		logger.Error("Failed to save session", zap.String("session_id", conversation.ID), zap.Error(err))
		return err
	}

	return nil
}

// trimForSession keeps the last maxMsgs "user" messages and any number of
// "assistant" (and tool result) messages that follow them.
// If there are fewer than maxMsgs user messages total, it returns msgs unchanged.
func (cm *ConversationManager) trimForSession(msgs []llm.Message) []llm.Message {
	if cm.maxMsgs <= 0 || len(msgs) == 0 {
		return []llm.Message{}
	}

	usersSeen := 0
	start := 0 // default: keep all if we don't exceed maxMsgs users
	for i := len(msgs) - 1; i >= 0; i-- {
		if msgs[i].Role == "user" && !msgs[i].IsToolResult {
			usersSeen++
			if usersSeen == cm.maxMsgs {
				start = i
				break
			}
		}
	}

	return msgs[start:]
}

func (cm *ConversationManager) GetMaxMessages() int {
	return cm.maxMsgs
}
