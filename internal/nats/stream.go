package nats

import (
	"context"
	"fmt"
	"time"

	"github.com/nats-io/nats.go/jetstream"
)

const streamName = "dealdesk_activity"

// Activity event kinds.
const (
	KindReport   = "report"
	KindResource = "resource"
	KindExport   = "export"
	KindSession  = "session"
)

// SubjectForUser returns the wildcard subject covering every activity event
// recorded for a user, e.g. "dealdesk.ssmith.>".
func SubjectForUser(user string) string {
	return fmt.Sprintf("dealdesk.%s.>", user)
}

// SubjectForEvent returns the subject for one event kind under a user,
// e.g. "dealdesk.ssmith.report".
func SubjectForEvent(user, kind string) string {
	return fmt.Sprintf("dealdesk.%s.%s", user, kind)
}

// SetupStream creates or updates the activity stream. Events are kept on
// disk for 30 days across all users.
func SetupStream(ctx context.Context, js jetstream.JetStream) (jetstream.Stream, error) {
	return js.CreateOrUpdateStream(ctx, jetstream.StreamConfig{
		Name:     streamName,
		Subjects: []string{"dealdesk.>"},
		Storage:  jetstream.FileStorage,
		MaxAge:   30 * 24 * time.Hour,
	})
}
