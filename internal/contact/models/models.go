package models

import "time"

// Field bounds, in characters.
const (
	NameMinLen    = 2
	NameMaxLen    = 30
	EmailMaxLen   = 160
	SubjectMinLen = 2
	SubjectMaxLen = 160
	MessageMinLen = 10
	MessageMaxLen = 300
)

// DefaultLanguage is recorded when the submission carries no lang tag.
const DefaultLanguage = "en"

// Submission is a structurally valid contact form payload. Every bound
// above has been enforced before a Submission exists.
type Submission struct {
	Name    string
	Email   string
	Subject string
	Message string
	// TimestampMillis is the client-side form render time, if sent.
	TimestampMillis *int64
	// Honeypot is the hidden "company" field; humans leave it empty.
	Honeypot     string
	CaptchaToken string
	Language     string
}

// OutboundMessage is what gets archived and sent. Name, subject and message
// have been sanitized; the email is passed through so it stays deliverable.
type OutboundMessage struct {
	Name            string    `json:"name"`
	Email           string    `json:"email"`
	Subject         string    `json:"subject"`
	Message         string    `json:"message"`
	TimestampMillis *int64    `json:"ts,omitempty"`
	Language        string    `json:"lang"`
	CreatedAt       time.Time `json:"createdAt"`
}

// Issue is a field-level problem reported to the caller.
type Issue struct {
	Path    string `json:"path"`
	Message string `json:"message"`
}
