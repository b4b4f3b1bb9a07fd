package repository

import (
	"sort"
	"sync"

	"zxtrack/internal/core/model"
)

type inMemoryEventRepository struct {
	events map[string]*model.Event
	mutex  sync.RWMutex
}

func NewInMemoryEventRepository() EventRepository {
	return &inMemoryEventRepository{
		events: make(map[string]*model.Event),
	}
}

func (r *inMemoryEventRepository) Store(event *model.Event) error {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	if _, exists := r.events[event.ID]; exists {
		return nil
	}
	r.events[event.ID] = event
	return nil
}

func (r *inMemoryEventRepository) Backlog(imei string, kinds []string, limit int) ([]*model.Event, error) {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	wanted := make(map[string]bool, len(kinds))
	for _, k := range kinds {
		wanted[k] = true
	}

	var result []*model.Event
	for _, event := range r.events {
		if event.IMEI != imei {
			continue
		}
		if len(wanted) > 0 && !wanted[event.Kind] {
			continue
		}
		result = append(result, event)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Time.Before(result[j].Time) })
	if limit > 0 && len(result) > limit {
		result = result[len(result)-limit:]
	}
	return result, nil
}
