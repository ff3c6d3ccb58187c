package events

import (
	"time"

	"github.com/spec-kit/classroom-service/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventUserRegistered EventType = "user_registered"
	EventUserLoggedIn   EventType = "user_logged_in"
	EventTokenRefreshed EventType = "token_refreshed"
	EventStudentCreated EventType = "student_created"
	EventStudentUpdated EventType = "student_updated"
	EventStudentDeleted EventType = "student_deleted"
)

// Actor identifies who triggered an event.
type Actor struct {
	UserID   string      `json:"user_id"`
	Username string      `json:"username"`
	Role     domain.Role `json:"role"`
}

// Event represents a domain event emitted by services.
type Event struct {
	ID        string      `json:"id"`
	Type      EventType   `json:"type"`
	Actor     Actor       `json:"actor"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload"`
}

// TokenIssuedPayload accompanies login and refresh events.
type TokenIssuedPayload struct {
	ExpiresAt time.Time `json:"expires_at"`
}

// StudentChangedPayload accompanies student lifecycle events.
type StudentChangedPayload struct {
	StudentID string `json:"student_id"`
	StudentNo string `json:"student_no,omitempty"`
}
