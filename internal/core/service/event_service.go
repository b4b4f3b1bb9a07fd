package service

import (
	"fmt"
	"time"

	"zxtrack/internal/core/model"
	"zxtrack/internal/core/repository"
	"zxtrack/internal/protocol/zx303"
)

type EventService interface {
	// Record stores one raw exchange, deriving proto and kind name
	// from the packet header. Duplicate exchanges are ignored.
	Record(when time.Time, imei, peerAddr string, incoming bool, packet []byte) (*model.Event, error)
	// Backlog replays stored events for a device, oldest first,
	// restricted to kinds matching the given catalogue name prefix
	// (empty prefix means all kinds).
	Backlog(imei, prefix string, limit int) ([]*model.Event, error)
}

type eventService struct {
	eventRepo repository.EventRepository
}

func NewEventService(eventRepo repository.EventRepository) EventService {
	return &eventService{eventRepo: eventRepo}
}

func (s *eventService) Record(when time.Time, imei, peerAddr string, incoming bool, packet []byte) (*model.Event, error) {
	proto := zx303.ProtoOfPacket(packet)
	kind := zx303.Lookup(proto)
	var payload []byte
	if len(packet) > 2 {
		payload = packet[2:]
	}
	event := model.NewEvent(when, imei, peerAddr, proto, kind.Name, incoming, payload)
	if err := s.eventRepo.Store(event); err != nil {
		return nil, err
	}
	return event, nil
}

func (s *eventService) Backlog(imei, prefix string, limit int) ([]*model.Event, error) {
	if imei == "" {
		return nil, fmt.Errorf("imei is required")
	}
	var kinds []string
	if prefix != "" {
		matches := zx303.KindsByPrefix(prefix)
		if len(matches) == 0 {
			return nil, fmt.Errorf("no kind matches prefix %q", prefix)
		}
		for _, k := range matches {
			kinds = append(kinds, k.Name)
		}
	}
	return s.eventRepo.Backlog(imei, kinds, limit)
}
