// Package zx303 implements the binary protocol spoken by zx303
// ("ZhongXun Topin Locator") GPS+GPRS tracker devices.
//
// A packet on the wire is [length][proto][payload]. There is no
// checksum and no authentication; the codec faithfully (de)serializes
// what the device sends and derives the acknowledgement bytes the
// device expects, nothing more.
package zx303

import (
	"errors"
	"fmt"
	"time"
)

// Respond classifies what the server must send back for a message kind.
type Respond int

const (
	// RespondNone means the message is a device-only notification.
	RespondNone Respond = iota
	// RespondInline means the acknowledgement is fully determined by
	// the protocol number and can be derived without application logic.
	RespondInline
	// RespondExt means the reply content depends on application state
	// and must be supplied by the caller.
	RespondExt
)

func (r Respond) String() string {
	switch r {
	case RespondNone:
		return "none"
	case RespondInline:
		return "inline"
	case RespondExt:
		return "external"
	}
	return fmt.Sprintf("respond(%d)", int(r))
}

// GeoFix is the decoded position bundle from a GPS positioning message.
type GeoFix struct {
	DevTime   time.Time // zero when the device sent an all-zero timestamp
	Latitude  float64
	Longitude float64
	Speed     uint8
	Heading   uint16 // low 10 bits of the flags field, 0-1023
	Valid     bool
	Flags     uint16 // raw flags word as received
}

// HasTime reports whether the device included its own timestamp.
func (f GeoFix) HasTime() bool {
	return !f.DevTime.IsZero()
}

// WifiAP is one scanned access point record.
type WifiAP struct {
	MAC    string // colon-separated uppercase hex
	Signal int    // dBm, negative
}

// GsmCell is one scanned GSM cell record.
type GsmCell struct {
	LAC    uint16
	CellID uint16
	Signal int // dBm, negative
}

// Common structural errors.
var (
	ErrTruncated    = errors.New("packet too short")
	ErrShortPayload = errors.New("payload too short for declared fields")
	ErrBadTimeB     = errors.New("packed-decimal timestamp is not numeric")
	ErrBadHHMM      = errors.New("time of day must be 4 digits HHMM, 0000-2359")
	ErrBadPhone     = errors.New("phone number must be ASCII digits without separators")
)

// DecodeError reports a structural decode failure. The envelope is
// still delivered to the caller as an Unknown message carrying the
// raw bytes, so a malformed packet never costs the stream position.
type DecodeError struct {
	Proto   uint16
	Cause   error
	Partial Message // what was built before the failure, may be nil
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("decoding proto 0x%02x: %v", e.Proto, e.Cause)
}

func (e *DecodeError) Unwrap() error { return e.Cause }

// Raw keeps the wire frame of a decoded message for diagnostics.
// Length is the declared value from the header, which for the Wi-Fi
// positioning kinds counts access point records rather than bytes.
type Raw struct {
	Length  byte
	Payload []byte
}

// Message is a decoded inbound packet.
type Message interface {
	Kind() *Kind
	Proto() uint16
	Name() string
	Frame() Raw
}

// Outbound is a validated message ready to be framed for the device.
// Construction validates all parameters eagerly, so encoding a built
// value cannot fail.
type Outbound interface {
	Proto() uint16
	EncodePayload() []byte
}

type base struct {
	kind *Kind
	raw  Raw
}

func (m *base) Kind() *Kind   { return m.kind }
func (m *base) Proto() uint16 { return m.kind.Proto }
func (m *base) Name() string  { return m.kind.Name }
func (m *base) Frame() Raw    { return m.raw }
