package handler

import (
	"encoding/hex"
	"encoding/json"
	"net/http"

	"zxtrack/internal/bus"
	"zxtrack/internal/core/service"
)

type DownlinkHandler struct {
	bus *bus.Bus
}

func NewDownlinkHandler(b *bus.Bus) *DownlinkHandler {
	return &DownlinkHandler{
		bus: b,
	}
}

type downlinkRequest struct {
	IMEI   string                 `json:"imei"`
	Kind   string                 `json:"kind"`
	Params map[string]interface{} `json:"params,omitempty"`
}

type downlinkResponse struct {
	IMEI   string `json:"imei"`
	Kind   string `json:"kind"`
	Packet string `json:"packet"` // hex of the queued envelope
}

// Send builds one outbound envelope from a kind-name prefix plus
// parameters and queues it for delivery to the device.
func (h *DownlinkHandler) Send(w http.ResponseWriter, r *http.Request) {
	var req downlinkRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if req.IMEI == "" {
		http.Error(w, "IMEI required", http.StatusBadRequest)
		return
	}
	if req.Kind == "" {
		http.Error(w, "Kind required", http.StatusBadRequest)
		return
	}

	packet, err := service.BuildCommand(req.Kind, req.Params)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	if h.bus == nil {
		http.Error(w, "Downlink delivery not configured", http.StatusServiceUnavailable)
		return
	}
	if err := h.bus.SendCommand(bus.Command{IMEI: req.IMEI, Packet: packet}); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(downlinkResponse{
		IMEI:   req.IMEI,
		Kind:   req.Kind,
		Packet: hex.EncodeToString(packet),
	})
}
