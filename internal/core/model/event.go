package model

import (
	"crypto/sha256"
	"encoding/hex"
	"time"
)

// Event is one raw protocol exchange with a device, as received or as
// sent. The payload is stored verbatim; decoding happens elsewhere.
type Event struct {
	ID         string    `bson:"_id" json:"id"`
	Time       time.Time `bson:"time" json:"time"`
	IMEI       string    `bson:"imei,omitempty" json:"imei,omitempty"` // empty until login is observed
	PeerAddr   string    `bson:"peeraddr" json:"peerAddr"`
	Proto      uint16    `bson:"proto" json:"proto"`
	Kind       string    `bson:"kind" json:"kind"`
	IsIncoming bool      `bson:"isincoming" json:"isIncoming"`
	Payload    []byte    `bson:"payload" json:"payload"`
}

// NewEvent builds an event with a deterministic ID derived from the
// full tuple, so storing the same exchange twice is a no-op.
func NewEvent(when time.Time, imei, peerAddr string, proto uint16, kind string, incoming bool, payload []byte) *Event {
	e := &Event{
		Time:       when.UTC(),
		IMEI:       imei,
		PeerAddr:   peerAddr,
		Proto:      proto,
		Kind:       kind,
		IsIncoming: incoming,
		Payload:    payload,
	}
	e.ID = e.fingerprint()
	return e
}

func (e *Event) fingerprint() string {
	h := sha256.New()
	h.Write([]byte(e.Time.Format(time.RFC3339Nano)))
	h.Write([]byte{0})
	h.Write([]byte(e.IMEI))
	h.Write([]byte{0})
	h.Write([]byte(e.PeerAddr))
	h.Write([]byte{0, byte(e.Proto >> 8), byte(e.Proto)})
	if e.IsIncoming {
		h.Write([]byte{1})
	} else {
		h.Write([]byte{0})
	}
	h.Write(e.Payload)
	return hex.EncodeToString(h.Sum(nil))
}
