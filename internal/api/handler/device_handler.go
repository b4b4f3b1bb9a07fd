package handler

import (
	"encoding/json"
	"net/http"

	"zxtrack/internal/cache"
)

type DeviceHandler struct {
	sessions *cache.Sessions
}

func NewDeviceHandler(sessions *cache.Sessions) *DeviceHandler {
	return &DeviceHandler{
		sessions: sessions,
	}
}

// GetDevice returns the live session of a connected tracker.
func (h *DeviceHandler) GetDevice(w http.ResponseWriter, r *http.Request) {
	imei := r.URL.Query().Get("imei")
	if imei == "" {
		http.Error(w, "IMEI required", http.StatusBadRequest)
		return
	}

	device, err := h.sessions.Get(r.Context(), imei)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	if device == nil {
		http.Error(w, "Device not connected", http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(device)
}
