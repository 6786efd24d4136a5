// Package models defines the records that flow through threadreport.
package models

import (
	"errors"
	"strings"
	"time"
)

// MessageType categorizes who opened a conversation.
type MessageType string

const (
	// MessageTypeQuestion is a message written by a user.
	MessageTypeQuestion MessageType = "question"
	// MessageTypeMail is a message sent by the system (CC) to a user.
	MessageTypeMail MessageType = "mail"
	// MessageTypeNote is an internal note.
	MessageTypeNote MessageType = "note"
)

// Origin describes how a thread was started.
type Origin int

const (
	// OriginNote covers notes and any type the classifier does not know.
	OriginNote Origin = iota
	// OriginUser marks threads opened by a user question.
	OriginUser
	// OriginSystem marks threads opened by a system mail.
	OriginSystem
)

// Message validation errors.
var (
	ErrInvalidMessage = errors.New("invalid message")
	ErrSelfParent     = errors.New("message is its own parent")
)

// Message is a single entry of the message log.
type Message struct {
	// ID uniquely identifies the message.
	ID string `json:"id"`

	// ParentID is the message this one replies to. Empty for thread roots.
	ParentID string `json:"parent_id,omitempty"`

	// UserID is the author.
	UserID string `json:"user_id"`

	// Subject is nil when the source record carries no subject at all.
	Subject *string `json:"subject,omitempty"`

	// Body is the raw markup body.
	Body string `json:"body"`

	// Type keeps the source spelling; Origin compares case-insensitively.
	Type MessageType `json:"type"`

	// Timestamp is seconds since the Unix epoch.
	Timestamp int64 `json:"timestamp"`
}

// IsRoot reports whether the message starts a thread.
func (m *Message) IsRoot() bool {
	return strings.TrimSpace(m.ParentID) == ""
}

// Time returns the timestamp as a time.Time.
func (m *Message) Time() time.Time {
	return time.Unix(m.Timestamp, 0)
}

// Origin classifies the message as a thread opener.
func (m *Message) Origin() Origin {
	switch {
	case strings.EqualFold(string(m.Type), string(MessageTypeQuestion)):
		return OriginUser
	case strings.EqualFold(string(m.Type), string(MessageTypeMail)):
		return OriginSystem
	default:
		return OriginNote
	}
}

// Validate checks the fields every message needs before it can be stored.
func (m *Message) Validate() error {
	validation := &ValidationErrors{}
	if strings.TrimSpace(m.ID) == "" {
		validation.Add("id", ErrInvalidMessage)
	}
	if strings.TrimSpace(m.UserID) == "" {
		validation.Add("user", ErrInvalidMessage)
	}
	if m.ID != "" && m.ID == m.ParentID {
		validation.Add("parent", ErrSelfParent)
	}
	return validation.Err()
}
