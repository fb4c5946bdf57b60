package domain

import (
	"strings"
	"time"
)

// Role is fixed when a user is created.
type Role string

const (
	RoleStudent Role = "STUDENT"
	RoleTeacher Role = "TEACHER"
	RoleVisitor Role = "VISITOR"
)

// legacy role names found in older data files
var roleAliases = map[string]Role{
	"ALUNO":     RoleStudent,
	"PROFESSOR": RoleTeacher,
	"VISITANTE": RoleVisitor,
}

// ParseRole resolves a role name case-insensitively.
func ParseRole(raw string) (Role, error) {
	key := strings.ToUpper(strings.TrimSpace(raw))
	switch Role(key) {
	case RoleStudent, RoleTeacher, RoleVisitor:
		return Role(key), nil
	}
	if role, ok := roleAliases[key]; ok {
		return role, nil
	}
	return "", &ValidationError{Field: "role", Value: raw, Reason: "expected STUDENT, TEACHER or VISITOR"}
}

// Roles lists the accepted roles in display order.
func Roles() []Role {
	return []Role{RoleStudent, RoleTeacher, RoleVisitor}
}

// LedgerRecord is the persisted form of a user, keyed by username.
type LedgerRecord struct {
	Role   Role     `json:"role"`
	Points int      `json:"points"`
	Level  int      `json:"level"`
	Medals []string `json:"medals"`
}

// EventKind names a domain event.
type EventKind string

const (
	EventPointsGained  EventKind = "POINTS_GAINED"
	EventMedalUnlocked EventKind = "MEDAL_UNLOCKED"
)

// Event is published synchronously by the points engine.
type Event struct {
	Kind     EventKind
	Username string
	Points   int
	Total    int
	Medal    string
}

// Payload returns the event metadata without the username.
func (e Event) Payload() map[string]any {
	switch e.Kind {
	case EventPointsGained:
		return map[string]any{"points": e.Points, "total": e.Total}
	case EventMedalUnlocked:
		return map[string]any{"medal": e.Medal}
	default:
		return map[string]any{}
	}
}

// AuditRecord is one immutable line of the audit log.
type AuditRecord struct {
	ID        string         `json:"id,omitempty"`
	Timestamp time.Time      `json:"ts"`
	Event     string         `json:"event"`
	Username  string         `json:"username"`
	Meta      map[string]any `json:"meta"`
}
