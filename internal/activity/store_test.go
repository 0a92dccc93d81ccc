package activity

import (
	"context"
	"testing"

	"github.com/sbrock928/dealdesk/internal/nats"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	ctx := context.Background()

	ns, err := nats.StartEmbedded(t.TempDir())
	if err != nil {
		t.Fatalf("failed to start NATS: %v", err)
	}
	t.Cleanup(ns.Shutdown)

	nc, err := nats.ConnectInProcess(ns)
	if err != nil {
		t.Fatalf("failed to connect: %v", err)
	}
	t.Cleanup(nc.Close)

	js, err := nats.CreateJetStream(nc)
	if err != nil {
		t.Fatalf("failed to create JetStream: %v", err)
	}

	stream, err := nats.SetupStream(ctx, js)
	if err != nil {
		t.Fatalf("failed to setup stream: %v", err)
	}

	return NewStore(js, stream)
}

func TestRecordAndList(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	events := []Event{
		{User: "ssmith", Kind: nats.KindReport, Action: "created", Data: "Monthly Deal Report"},
		{User: "ssmith", Kind: nats.KindExport, Action: "exported", Data: "Monthly Deal Report cycle 202607"},
		{User: "ssmith", Kind: nats.KindReport, Action: "updated", Data: "Monthly Deal Report"},
		{User: "jdoe", Kind: nats.KindReport, Action: "created", Data: "Tranche Detail"},
	}
	for _, e := range events {
		rec, err := store.Record(ctx, e)
		if err != nil {
			t.Fatalf("Record failed: %v", err)
		}
		if rec.ID == "" || rec.Timestamp.IsZero() {
			t.Errorf("expected assigned id and timestamp, got %+v", rec)
		}
	}

	t.Run("lists only the requested user", func(t *testing.T) {
		got, err := store.List(ctx, Query{User: "ssmith"})
		if err != nil {
			t.Fatalf("List failed: %v", err)
		}
		if len(got) != 3 {
			t.Fatalf("expected 3 events, got %d", len(got))
		}
		if got[0].Action != "created" || got[2].Action != "updated" {
			t.Errorf("events out of order: %+v", got)
		}
	})

	t.Run("filters by kind", func(t *testing.T) {
		got, err := store.List(ctx, Query{User: "ssmith", Kind: nats.KindExport})
		if err != nil {
			t.Fatalf("List failed: %v", err)
		}
		if len(got) != 1 || got[0].Kind != nats.KindExport {
			t.Errorf("unexpected events: %+v", got)
		}
	})

	t.Run("filters by search substring", func(t *testing.T) {
		got, err := store.List(ctx, Query{User: "ssmith", Search: "cycle 202607"})
		if err != nil {
			t.Fatalf("List failed: %v", err)
		}
		if len(got) != 1 || got[0].Kind != nats.KindExport {
			t.Errorf("unexpected events: %+v", got)
		}
	})

	t.Run("limit keeps the newest events", func(t *testing.T) {
		got, err := store.List(ctx, Query{User: "ssmith", Limit: 2})
		if err != nil {
			t.Fatalf("List failed: %v", err)
		}
		if len(got) != 2 {
			t.Fatalf("expected 2 events, got %d", len(got))
		}
		if got[1].Action != "updated" {
			t.Errorf("expected newest event last, got %+v", got)
		}
	})
}

func TestListSkipsMalformedEvents(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	if _, err := store.Record(ctx, Event{User: "ssmith", Kind: nats.KindReport, Action: "created", Data: "Monthly"}); err != nil {
		t.Fatalf("Record failed: %v", err)
	}
	// Raw bytes on the same subject, bypassing Record.
	if _, err := store.js.Publish(ctx, nats.SubjectForEvent("ssmith", nats.KindReport), []byte("not json")); err != nil {
		t.Fatalf("publish failed: %v", err)
	}

	got, err := store.List(ctx, Query{User: "ssmith"})
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(got) != 1 || got[0].Action != "created" {
		t.Errorf("expected the malformed event to be skipped, got %+v", got)
	}
}

func TestRecordRequiresUser(t *testing.T) {
	store := newTestStore(t)
	if _, err := store.Record(context.Background(), Event{Kind: nats.KindReport}); err == nil {
		t.Error("expected error for missing user")
	}
	if _, err := store.List(context.Background(), Query{}); err == nil {
		t.Error("expected error for missing user in query")
	}
}
