// Package events writes the audit trail of user actions.
package events

import (
	"context"
	"log"

	"github.com/sujalbistaa/postboard/internal/models"
)

// Recorder persists events.
type Recorder interface {
	CreateEvent(ctx context.Context, event *models.Event) error
}

// Logger records one Event row per audited action. Failures are logged and
// never fail the action that triggered them.
type Logger struct {
	rec Recorder
}

func NewLogger(rec Recorder) *Logger {
	return &Logger{rec: rec}
}

// Log records eventType for userID. data may be empty.
func (l *Logger) Log(ctx context.Context, userID uint, eventType, data string) {
	event := &models.Event{UserID: userID, EventType: eventType}
	if data != "" {
		event.EventData = &data
	}
	if err := l.rec.CreateEvent(ctx, event); err != nil {
		log.Printf("Error logging %q event for user %d: %v", eventType, userID, err)
	}
}
