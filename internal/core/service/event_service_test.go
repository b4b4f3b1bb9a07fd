package service

import (
	"testing"
	"time"

	"zxtrack/internal/core/repository"
)

func TestRecordDerivesKindFromPacket(t *testing.T) {
	svc := NewEventService(repository.NewInMemoryEventRepository())
	when := time.Date(2021, 7, 30, 12, 30, 45, 0, time.UTC)

	event, err := svc.Record(when, "111", "10.0.0.1:5000", true, []byte{1, 0x08})
	if err != nil {
		t.Fatalf("Record: %v", err)
	}
	if event.Kind != "HEARTBEAT" {
		t.Errorf("kind = %q, want HEARTBEAT", event.Kind)
	}
	if event.Proto != 0x08 {
		t.Errorf("proto = %#x, want 0x08", event.Proto)
	}

	event, err = svc.Record(when, "111", "10.0.0.1:5000", true, []byte{1, 0x7F})
	if err != nil {
		t.Fatalf("Record: %v", err)
	}
	if event.Kind != "UNKNOWN" {
		t.Errorf("kind = %q, want UNKNOWN for unregistered proto", event.Kind)
	}
}

func TestBacklogPrefixResolution(t *testing.T) {
	repo := repository.NewInMemoryEventRepository()
	svc := NewEventService(repo)
	when := time.Date(2021, 7, 30, 12, 0, 0, 0, time.UTC)

	if _, err := svc.Record(when, "111", "10.0.0.1:5000", true, []byte{1, 0x08}); err != nil {
		t.Fatalf("Record: %v", err)
	}
	if _, err := svc.Record(when.Add(time.Minute), "111", "10.0.0.1:5000", true, []byte{1, 0x10}); err != nil {
		t.Fatalf("Record: %v", err)
	}

	events, err := svc.Backlog("111", "GPS", 10)
	if err != nil {
		t.Fatalf("Backlog: %v", err)
	}
	if len(events) != 1 || events[0].Kind != "GPS_POSITIONING" {
		t.Errorf("got %d events, want the single GPS fix", len(events))
	}

	if _, err := svc.Backlog("", "", 10); err == nil {
		t.Error("Backlog accepted an empty IMEI")
	}
	if _, err := svc.Backlog("111", "NOPE", 10); err == nil {
		t.Error("Backlog accepted a prefix that matches nothing")
	}
}
