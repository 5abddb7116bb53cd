package models

import (
	"time"
)

// Message roles
const (
	RoleUser      = "user"
	RoleCharacter = "character"
)

// Message is one turn of a conversation. The json names match the browser
// client's serialized shape.
type Message struct {
	ID            string    `json:"id"`
	Role          string    `json:"type"`
	Content       string    `json:"content"`
	Timestamp     time.Time `json:"timestamp"`
	IsComplete    bool      `json:"isComplete"`
	CanContinue   bool      `json:"canContinue,omitempty"`
	AttachedImage string    `json:"attachedImage,omitempty"`
}

// Session is one conversation thread tied to a persona.
type Session struct {
	ID           string    `json:"id"`
	PersonaID    string    `json:"personaId"`
	Title        string    `json:"title"`
	Messages     []Message `json:"messages"`
	CreatedAt    time.Time `json:"createdAt"`
	LastActiveAt time.Time `json:"lastActiveAt"`
	IsActive     bool      `json:"isActive"`
}

// UserMessages returns the content of up to max user messages in order.
func (s *Session) UserMessages(max int) []string {
	var out []string
	for _, m := range s.Messages {
		if m.Role != RoleUser {
			continue
		}
		out = append(out, m.Content)
		if len(out) == max {
			break
		}
	}
	return out
}

// CountRoles returns the number of user and character messages.
func (s *Session) CountRoles() (users, characters int) {
	for _, m := range s.Messages {
		switch m.Role {
		case RoleUser:
			users++
		case RoleCharacter:
			characters++
		}
	}
	return users, characters
}

// SessionSummary is the sidebar view of a session.
type SessionSummary struct {
	ID           string    `json:"id"`
	PersonaID    string    `json:"personaId"`
	PersonaName  string    `json:"personaName"`
	Title        string    `json:"title"`
	LastMessage  string    `json:"lastMessage,omitempty"`
	MessageCount int       `json:"messageCount"`
	CreatedAt    time.Time `json:"createdAt"`
	LastActiveAt time.Time `json:"lastActiveAt"`
}

// StorageInfo is the advisory storage usage report.
type StorageInfo struct {
	UsedBytes     int64 `json:"used"`
	CapacityBytes int64 `json:"total"`
	SessionCount  int   `json:"sessionCount"`
	Warning       bool  `json:"warning"`
}
