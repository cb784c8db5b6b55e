package domain

import (
	"strings"
	"time"
)

// Role is the author of a chat message.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleSystem    Role = "system"
)

// DefaultChatTitle is used when the first message has no words.
const DefaultChatTitle = "New chat"

// chatTitleWords is how many words of the first message make up a title.
const chatTitleWords = 5

// Chat groups messages into one conversation.
type Chat struct {
	ID        string
	Title     string
	CreatedAt time.Time
}

// Message is one entry in the append-only conversation log.
// ID is assigned by the store and increases with insertion order.
type Message struct {
	ID        int64
	ChatID    string
	Role      Role
	Content   string
	CreatedAt time.Time
}

// ChatTitle derives a chat title from the first user message.
func ChatTitle(firstMessage string) string {
	words := strings.Fields(firstMessage)
	if len(words) == 0 {
		return DefaultChatTitle
	}
	if len(words) > chatTitleWords {
		words = words[:chatTitleWords]
	}
	return strings.Join(words, " ")
}

var stopWords = map[string]struct{}{
	"exit": {},
	"quit": {},
	"bye":  {},
}

// IsStopMessage reports whether the user asked to end the conversation loop.
func IsStopMessage(content string) bool {
	_, ok := stopWords[strings.ToLower(strings.TrimSpace(content))]
	return ok
}
