// Package activity keeps a local append-only audit log of what the operator
// did: reports saved, resources changed, exports written. Events live in an
// embedded JetStream stream so the log survives restarts without a database.
package activity

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/nats-io/nats.go/jetstream"
	"github.com/rs/xid"

	"github.com/sbrock928/dealdesk/internal/logger"
	"github.com/sbrock928/dealdesk/internal/nats"
)

// Event is one audit record.
type Event struct {
	ID        string          `json:"id"`
	Timestamp time.Time       `json:"timestamp"`
	User      string          `json:"user"`
	Kind      string          `json:"kind"`   // report, resource, export, session
	Action    string          `json:"action"` // created, updated, deleted, exported, ...
	Data      string          `json:"data"`   // human-readable summary
	Meta      json.RawMessage `json:"meta,omitempty"`
}

// Store publishes and replays activity events.
type Store struct {
	js     jetstream.JetStream
	stream jetstream.Stream
}

// NewStore wraps a JetStream context and the activity stream.
func NewStore(js jetstream.JetStream, stream jetstream.Stream) *Store {
	return &Store{js: js, stream: stream}
}

// Record appends one event. The ID and timestamp are assigned here.
func (s *Store) Record(ctx context.Context, event Event) (Event, error) {
	if event.User == "" {
		return Event{}, fmt.Errorf("activity event requires a user")
	}
	event.ID = xid.New().String()
	event.Timestamp = time.Now()

	data, err := json.Marshal(event)
	if err != nil {
		return Event{}, fmt.Errorf("marshaling activity event: %w", err)
	}

	subject := nats.SubjectForEvent(event.User, event.Kind)
	if _, err := s.js.Publish(ctx, subject, data); err != nil {
		return Event{}, fmt.Errorf("publishing activity event: %w", err)
	}

	logger.Debug("activity: %s %s %s", event.User, event.Kind, event.Action)
	return event, nil
}

// Query filters a replay of the activity log.
type Query struct {
	User   string // required
	Kind   string // optional kind filter
	Search string // optional case-insensitive substring of Data
	Limit  int    // 0 means no limit
}

// List replays a user's events oldest-first, applying the query filters.
func (s *Store) List(ctx context.Context, q Query) ([]Event, error) {
	if q.User == "" {
		return nil, fmt.Errorf("activity query requires a user")
	}

	filter := nats.SubjectForUser(q.User)
	if q.Kind != "" {
		filter = nats.SubjectForEvent(q.User, q.Kind)
	}

	consumer, err := s.stream.CreateOrUpdateConsumer(ctx, jetstream.ConsumerConfig{
		FilterSubject: filter,
		DeliverPolicy: jetstream.DeliverAllPolicy,
		AckPolicy:     jetstream.AckExplicitPolicy,
	})
	if err != nil {
		return nil, fmt.Errorf("creating activity consumer: %w", err)
	}

	var events []Event
	search := strings.ToLower(q.Search)

	const batchSize = 1000
	for {
		msgs, err := consumer.FetchNoWait(batchSize)
		if err != nil {
			break
		}

		count := 0
		for msg := range msgs.Messages() {
			count++
			var event Event
			if err := json.Unmarshal(msg.Data(), &event); err != nil {
				var seq uint64
				if meta, merr := msg.Metadata(); merr == nil {
					seq = meta.Sequence.Stream
				}
				logger.Warn("skipping malformed activity event (seq=%d): %v", seq, err)
				_ = msg.Ack()
				continue
			}
			if search != "" && !strings.Contains(strings.ToLower(event.Data), search) {
				_ = msg.Ack()
				continue
			}
			events = append(events, event)
			_ = msg.Ack()
		}
		if count == 0 {
			break
		}
	}

	if q.Limit > 0 && len(events) > q.Limit {
		events = events[len(events)-q.Limit:]
	}
	return events, nil
}
