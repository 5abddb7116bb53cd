package models

import (
	"encoding/json"
	"fmt"
	"sort"
	"time"
)

// NormalizeSessions parses serialized session data into the canonical slice
// form. Three shapes are accepted for backward compatibility: a bare array,
// an object with a "sessions" array field, and a map keyed by session id.
// Individual fields are normalized totally: missing or malformed fields get
// defaults rather than failing the whole document. Only a structurally
// unreadable document returns an error.
func NormalizeSessions(data []byte) ([]Session, error) {
	var doc any
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("unreadable session data: %w", err)
	}

	switch v := doc.(type) {
	case nil:
		return []Session{}, nil
	case []any:
		return normalizeList(v), nil
	case map[string]any:
		if raw, ok := v["sessions"]; ok {
			list, ok := raw.([]any)
			if !ok {
				return nil, fmt.Errorf("sessions field is not an array")
			}
			return normalizeList(list), nil
		}
		// Map keyed by session id: normalize values in key order so the
		// result is deterministic.
		keys := make([]string, 0, len(v))
		for k := range v {
			keys = append(keys, k)
		}
		sort.Strings(keys)

		sessions := make([]Session, 0, len(keys))
		for _, k := range keys {
			if s, ok := normalizeSession(v[k]); ok {
				if s.ID == "" {
					s.ID = k
				}
				sessions = append(sessions, s)
			}
		}
		return sessions, nil
	default:
		return nil, fmt.Errorf("session data has unsupported shape %T", doc)
	}
}

func normalizeList(list []any) []Session {
	sessions := make([]Session, 0, len(list))
	for _, raw := range list {
		if s, ok := normalizeSession(raw); ok && s.ID != "" {
			sessions = append(sessions, s)
		}
	}
	return sessions
}

// normalizeSession converts one untyped record into a Session, filling
// defaults. It reports false only for records that are not objects.
func normalizeSession(raw any) (Session, bool) {
	obj, ok := raw.(map[string]any)
	if !ok {
		return Session{}, false
	}

	s := Session{
		ID:        asString(obj["id"]),
		PersonaID: firstString(obj, "personaId", "characterId"),
		Title:     asString(obj["title"]),
		IsActive:  asBool(obj["isActive"]),
	}

	s.CreatedAt = asTime(obj["createdAt"])
	if s.CreatedAt.IsZero() {
		s.CreatedAt = time.Now()
	}
	s.LastActiveAt = asTime(obj["lastActiveAt"])
	if s.LastActiveAt.Before(s.CreatedAt) {
		s.LastActiveAt = s.CreatedAt
	}

	if list, ok := obj["messages"].([]any); ok {
		s.Messages = make([]Message, 0, len(list))
		for _, m := range list {
			if msg, ok := normalizeMessage(m); ok {
				s.Messages = append(s.Messages, msg)
			}
		}
	} else {
		s.Messages = []Message{}
	}

	if s.Title == "" {
		s.Title = "未命名会话"
	}

	return s, true
}

func normalizeMessage(raw any) (Message, bool) {
	obj, ok := raw.(map[string]any)
	if !ok {
		return Message{}, false
	}

	m := Message{
		ID:            asString(obj["id"]),
		Role:          asString(obj["type"]),
		Content:       asString(obj["content"]),
		IsComplete:    true,
		CanContinue:   asBool(obj["canContinue"]),
		AttachedImage: asString(obj["attachedImage"]),
	}

	if m.Role != RoleUser {
		m.Role = RoleCharacter
	}
	if complete, ok := obj["isComplete"].(bool); ok {
		m.IsComplete = complete
	}
	m.Timestamp = asTime(obj["timestamp"])
	if m.Timestamp.IsZero() {
		m.Timestamp = time.Now()
	}

	return m, true
}

func asString(v any) string {
	s, _ := v.(string)
	return s
}

func firstString(obj map[string]any, keys ...string) string {
	for _, k := range keys {
		if s := asString(obj[k]); s != "" {
			return s
		}
	}
	return ""
}

func asBool(v any) bool {
	b, _ := v.(bool)
	return b
}

// asTime parses ISO-8601 timestamps; anything else yields the zero time.
func asTime(v any) time.Time {
	s, ok := v.(string)
	if !ok {
		return time.Time{}
	}
	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return t
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t
	}
	return time.Time{}
}
