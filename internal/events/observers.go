package events

import (
	"context"
	"fmt"
	"io"

	"quiz-rewards-engine/internal/domain"
)

// ConsoleNotifier prints a line per event.
type ConsoleNotifier struct {
	out io.Writer
}

func NewConsoleNotifier(out io.Writer) *ConsoleNotifier {
	return &ConsoleNotifier{out: out}
}

func (n *ConsoleNotifier) Update(event domain.Event) error {
	var err error
	switch event.Kind {
	case domain.EventPointsGained:
		_, err = fmt.Fprintf(n.out, "[NOTIF] %s gained %d points (total=%d).\n", event.Username, event.Points, event.Total)
	case domain.EventMedalUnlocked:
		_, err = fmt.Fprintf(n.out, "[NOTIF] %s unlocked medal: %s.\n", event.Username, event.Medal)
	}
	return err
}

// Appender is the slice of the audit log the observer needs.
type Appender interface {
	Add(ctx context.Context, event, username string, meta map[string]any) error
}

// AuditObserver appends every event to an audit log.
type AuditObserver struct {
	audit Appender
}

func NewAuditObserver(audit Appender) *AuditObserver {
	return &AuditObserver{audit: audit}
}

func (o *AuditObserver) Update(event domain.Event) error {
	return o.audit.Add(context.Background(), string(event.Kind), event.Username, event.Payload())
}
