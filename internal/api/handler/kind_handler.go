package handler

import (
	"encoding/json"
	"net/http"
	"strconv"

	"zxtrack/internal/protocol/zx303"
)

type KindHandler struct{}

func NewKindHandler() *KindHandler {
	return &KindHandler{}
}

type kindView struct {
	Proto   uint16 `json:"proto"`
	Name    string `json:"name"`
	Respond string `json:"respond"`
}

func viewOf(k *zx303.Kind) kindView {
	return kindView{
		Proto:   k.Proto,
		Name:    k.Name,
		Respond: k.Respond.String(),
	}
}

// GetKinds lists the message catalogue, optionally narrowed by a
// case-insensitive name prefix.
func (h *KindHandler) GetKinds(w http.ResponseWriter, r *http.Request) {
	var matches []*zx303.Kind
	if prefix := r.URL.Query().Get("prefix"); prefix != "" {
		matches = zx303.KindsByPrefix(prefix)
	} else {
		matches = zx303.Kinds()
	}

	views := make([]kindView, len(matches))
	for i, k := range matches {
		views[i] = viewOf(k)
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(views)
}

// GetKind resolves one catalogue entry by exact name or by protocol
// number (decimal or 0x-prefixed hex).
func (h *KindHandler) GetKind(w http.ResponseWriter, r *http.Request) {
	var kind *zx303.Kind
	switch {
	case r.URL.Query().Get("name") != "":
		k, ok := zx303.LookupName(r.URL.Query().Get("name"))
		if !ok {
			http.Error(w, "Unknown kind", http.StatusNotFound)
			return
		}
		kind = k
	case r.URL.Query().Get("proto") != "":
		proto, err := strconv.ParseUint(r.URL.Query().Get("proto"), 0, 16)
		if err != nil {
			http.Error(w, "Invalid proto number", http.StatusBadRequest)
			return
		}
		kind = zx303.Lookup(uint16(proto))
	default:
		http.Error(w, "Kind name or proto required", http.StatusBadRequest)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(viewOf(kind))
}
