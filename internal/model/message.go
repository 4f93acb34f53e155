package model

import (
	"strings"
	"time"
)

// MessageRole is who produced a transcript turn
type MessageRole string

const (
	RoleAgent MessageRole = "agent" // The AI interview moderator
	RoleUser  MessageRole = "user"  // The simulated participant
)

// MessageMetadata annotates a transcript turn
type MessageMetadata struct {
	QuestionID       string  `json:"questionId,omitempty" bson:"questionId,omitempty"`
	IsProbe          bool    `json:"isProbe,omitempty" bson:"isProbe,omitempty"`
	WordCount        int     `json:"wordCount,omitempty" bson:"wordCount,omitempty"`
	DurationSec      float64 `json:"duration,omitempty" bson:"duration,omitempty"`
	ForcedCompletion bool    `json:"forcedCompletion,omitempty" bson:"forcedCompletion,omitempty"`
}

// ConversationMessage is one appended-only transcript turn.
// Timestamps are monotonically non-decreasing within a run.
type ConversationMessage struct {
	Role      MessageRole      `json:"role" bson:"role"`
	Content   string           `json:"content" bson:"content"`
	Timestamp time.Time        `json:"timestamp" bson:"timestamp"`
	Metadata  *MessageMetadata `json:"metadata,omitempty" bson:"metadata,omitempty"`
}

// NewMessage creates a turn with the given role and content
func NewMessage(role MessageRole, content string, ts time.Time, meta *MessageMetadata) ConversationMessage {
	return ConversationMessage{
		Role:      role,
		Content:   content,
		Timestamp: ts,
		Metadata:  meta,
	}
}

// WordCount counts whitespace-separated words in content
func (m *ConversationMessage) WordCount() int {
	return len(strings.Fields(m.Content))
}
