package domain

import "time"

// MessageLevel classifies a status message pushed to the notify channel.
type MessageLevel string

const (
	LevelInfo    MessageLevel = "INFO"
	LevelSuccess MessageLevel = "SUCCESS"
	LevelError   MessageLevel = "ERROR"
	LevelAI      MessageLevel = "AI"
)

// Message is a human-readable status line for the display collaborator.
type Message struct {
	Level     MessageLevel `json:"level"`
	Text      string       `json:"text"`
	Timestamp time.Time    `json:"timestamp"`
}
