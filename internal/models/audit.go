package models

import (
	"time"

	"github.com/google/uuid"
)

// EventType is the kind of authentication event recorded in the audit log.
type EventType string

const (
	EventLoginSuccess EventType = "login_success"
	EventLoginFailure EventType = "login_failure"
	EventLogout       EventType = "logout"
)

// Valid reports whether e is a known event type.
func (e EventType) Valid() bool {
	switch e {
	case EventLoginSuccess, EventLoginFailure, EventLogout:
		return true
	}
	return false
}

// AuditEntry is an append-only record of an authentication event.
type AuditEntry struct {
	ID        uuid.UUID  // UUIDv7
	UserID    *uuid.UUID // nil when the identity is unknown
	EventType EventType
	IPAddress string
	Timestamp time.Time
}
