package repository

import (
	"testing"
	"time"

	"zxtrack/internal/core/model"
)

func storedEvent(t *testing.T, repo EventRepository, when time.Time, imei, kind string) *model.Event {
	t.Helper()
	event := model.NewEvent(when, imei, "10.0.0.1:5000", 0x10, kind, true, []byte{0x01})
	if err := repo.Store(event); err != nil {
		t.Fatalf("Store: %v", err)
	}
	return event
}

func TestEventStoreIsIdempotent(t *testing.T) {
	repo := NewInMemoryEventRepository()
	when := time.Date(2021, 7, 30, 12, 30, 45, 0, time.UTC)

	first := storedEvent(t, repo, when, "111", "GPS_POSITIONING")
	second := model.NewEvent(when, "111", "10.0.0.1:5000", 0x10, "GPS_POSITIONING", true, []byte{0x01})
	if second.ID != first.ID {
		t.Fatalf("same tuple produced different IDs %s vs %s", first.ID, second.ID)
	}
	if err := repo.Store(second); err != nil {
		t.Fatalf("Store duplicate: %v", err)
	}

	events, err := repo.Backlog("111", nil, 0)
	if err != nil {
		t.Fatalf("Backlog: %v", err)
	}
	if len(events) != 1 {
		t.Errorf("got %d events, want 1", len(events))
	}
}

func TestEventBacklogOrderAndFilter(t *testing.T) {
	repo := NewInMemoryEventRepository()
	base := time.Date(2021, 7, 30, 12, 0, 0, 0, time.UTC)

	storedEvent(t, repo, base.Add(2*time.Minute), "111", "STATUS")
	storedEvent(t, repo, base, "111", "GPS_POSITIONING")
	storedEvent(t, repo, base.Add(time.Minute), "111", "GPS_POSITIONING")
	storedEvent(t, repo, base, "222", "GPS_POSITIONING")

	events, err := repo.Backlog("111", []string{"GPS_POSITIONING"}, 0)
	if err != nil {
		t.Fatalf("Backlog: %v", err)
	}
	if len(events) != 2 {
		t.Fatalf("got %d events, want 2", len(events))
	}
	if !events[0].Time.Before(events[1].Time) {
		t.Error("backlog not in oldest-first order")
	}
	for _, e := range events {
		if e.IMEI != "111" || e.Kind != "GPS_POSITIONING" {
			t.Errorf("unexpected event %s from %s", e.Kind, e.IMEI)
		}
	}
}

func TestEventBacklogLimitKeepsNewest(t *testing.T) {
	repo := NewInMemoryEventRepository()
	base := time.Date(2021, 7, 30, 12, 0, 0, 0, time.UTC)
	for i := 0; i < 5; i++ {
		storedEvent(t, repo, base.Add(time.Duration(i)*time.Minute), "111", "HEARTBEAT")
	}

	events, err := repo.Backlog("111", nil, 2)
	if err != nil {
		t.Fatalf("Backlog: %v", err)
	}
	if len(events) != 2 {
		t.Fatalf("got %d events, want 2", len(events))
	}
	if got := events[1].Time; !got.Equal(base.Add(4 * time.Minute)) {
		t.Errorf("newest event at %v, want %v", got, base.Add(4*time.Minute))
	}
}
