package model

import (
	"time"
)

// Device is the live view of one connected tracker, keyed by IMEI.
// There is no enrollment step: a device exists once it logs in.
type Device struct {
	IMEI        string    `json:"imei"`
	PeerAddr    string    `json:"peerAddr"`
	ConnectedAt time.Time `json:"connectedAt"`
	LastSeen    time.Time `json:"lastSeen"`
	Firmware    byte      `json:"firmware"`
	Battery     int       `json:"battery,omitempty"` // percent, 0 until a status report
}

// NewDevice records a freshly logged-in tracker.
func NewDevice(imei, peerAddr string, firmware byte) *Device {
	now := time.Now().UTC()
	return &Device{
		IMEI:        imei,
		PeerAddr:    peerAddr,
		ConnectedAt: now,
		LastSeen:    now,
		Firmware:    firmware,
	}
}

// Touch refreshes the liveness timestamp.
func (d *Device) Touch() {
	d.LastSeen = time.Now().UTC()
}
