package handler

import (
	"encoding/json"
	"net/http"
	"strconv"

	"zxtrack/internal/core/service"
)

type EventHandler struct {
	eventService service.EventService
}

func NewEventHandler(eventService service.EventService) *EventHandler {
	return &EventHandler{
		eventService: eventService,
	}
}

// GetBacklog returns stored wire exchanges for one device, oldest
// first, optionally narrowed to a kind-name prefix such as "GPS".
func (h *EventHandler) GetBacklog(w http.ResponseWriter, r *http.Request) {
	imei := r.URL.Query().Get("imei")
	if imei == "" {
		http.Error(w, "IMEI required", http.StatusBadRequest)
		return
	}

	prefix := r.URL.Query().Get("prefix")

	limit := 50
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			http.Error(w, "Invalid limit", http.StatusBadRequest)
			return
		}
		limit = n
	}

	events, err := h.eventService.Backlog(imei, prefix, limit)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(events)
}
