package notify

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog"

	"github.com/noah-isme/gema-activity-export/internal/dto"
)

// Publisher is the subset of a NATS connection used for announcements.
type Publisher interface {
	Publish(subject string, data []byte) error
	FlushWithContext(ctx context.Context) error
}

var _ Publisher = (*nats.Conn)(nil)

// Announcer tells subscribers a fresh activities document is available.
type Announcer struct {
	publisher Publisher
	subject   string
	logger    zerolog.Logger
}

// NewAnnouncer constructs an announcer. A nil publisher turns Announce into a no-op.
func NewAnnouncer(publisher Publisher, subject string, logger zerolog.Logger) *Announcer {
	return &Announcer{
		publisher: publisher,
		subject:   subject,
		logger:    logger.With().Str("component", "export_announcer").Logger(),
	}
}

// Enabled reports whether announcements are delivered anywhere.
func (a *Announcer) Enabled() bool {
	return a != nil && a.publisher != nil && a.subject != ""
}

// Announce publishes event and waits for the server to acknowledge the flush.
func (a *Announcer) Announce(ctx context.Context, event dto.ExportedEvent) error {
	if !a.Enabled() {
		return nil
	}

	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("encode export event: %w", err)
	}

	if err := a.publisher.Publish(a.subject, payload); err != nil {
		return fmt.Errorf("publish export event: %w", err)
	}

	if err := a.publisher.FlushWithContext(ctx); err != nil {
		return fmt.Errorf("flush export event: %w", err)
	}

	a.logger.Debug().Str("subject", a.subject).Str("run_id", event.RunID).Msg("export announced")
	return nil
}
