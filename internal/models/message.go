package models

import "time"

type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleSystem    Role = "system"
)

// Message is one chat turn as stored in the transcript.
type Message struct {
	ID          string       `json:"id"`
	ThreadID    string       `json:"thread_id"`
	Role        Role         `json:"role"`
	Content     string       `json:"content"`
	Timestamp   time.Time    `json:"timestamp"`
	TaskType    string       `json:"task_type,omitempty"`
	MediaURL    string       `json:"media_url,omitempty"`
	MediaType   string       `json:"media_type,omitempty"`
	Assumptions []Assumption `json:"assumptions,omitempty"`
	Feedback    string       `json:"feedback,omitempty"`
}

// Assumption is a default the system filled in on the user's behalf,
// surfaced so the user can correct it.
type Assumption struct {
	Key      string `json:"key"`
	Value    string `json:"value"`
	Editable bool   `json:"editable"`
}

// ClarifyingQuestion is one structured question the interpreter asks when a
// request is too ambiguous to act on.
type ClarifyingQuestion struct {
	ID          string `json:"id"`
	Question    string `json:"question"`
	Placeholder string `json:"placeholder,omitempty"`
	Required    bool   `json:"required"`
}
