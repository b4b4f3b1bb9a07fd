package zx303

import (
	"log"
	"time"
)

// Parse decodes one [length][proto][payload] envelope. It always
// returns a usable Message: unregistered proto numbers come back as
// *Unknown with the wire proto preserved, and structural failures of
// known kinds come back as *Unknown carrying the cause, together with
// a non-nil *DecodeError. Parse never panics and never drops bytes.
func Parse(packet []byte) (Message, error) {
	if len(packet) < 2 {
		raw := Raw{Payload: append([]byte(nil), packet...)}
		err := &DecodeError{Proto: ProtoUnknown, Cause: ErrTruncated}
		m := &Unknown{base: base{kind: KindUnknown, raw: raw}, WireProto: ProtoUnknown, Cause: err}
		err.Partial = m
		return m, err
	}
	length, proto := packet[0], uint16(packet[1])
	raw := Raw{Length: length, Payload: append([]byte(nil), packet[2:]...)}
	checkLength(proto, length, len(raw.Payload))
	kind := Lookup(proto)
	if kind == KindUnknown {
		// Not an error: undocumented firmware speaks undocumented
		// numbers, and the payload is preserved verbatim.
		return &Unknown{base: base{kind: KindUnknown, raw: raw}, WireProto: proto}, nil
	}
	if kind.decode == nil {
		return &Generic{base: base{kind: kind, raw: raw}}, nil
	}
	msg, err := kind.decode(kind, raw)
	if err != nil {
		derr := &DecodeError{Proto: proto, Cause: err, Partial: msg}
		return &Unknown{base: base{kind: KindUnknown, raw: raw}, WireProto: proto, Cause: derr}, derr
	}
	return msg, nil
}

// checkLength is a soft consistency check between the declared length
// and the actual payload size. The adjustment constant is a quirk of
// the device firmware: +2 for STATUS, +4 for everything else. The two
// Wi-Fi positioning kinds are skipped because their length field is a
// record count, not a byte count.
func checkLength(proto uint16, length byte, payloadLen int) {
	if proto == ProtoWifiPositioning || proto == ProtoWifiOfflinePositioning {
		return
	}
	adjust := 4
	if proto == ProtoStatus {
		adjust = 2
	}
	if length > 1 && payloadLen+adjust != int(length) {
		log.Printf("[zx303] proto 0x%02x declares length %d but payload is %d+%d bytes",
			proto, length, payloadLen, adjust)
	}
}

// Serialize frames an outbound message: declared length is payload
// size plus one for the proto byte. No start/end markers are emitted;
// the deprecated ASCII framing lives in Enframe, not here.
func Serialize(msg Outbound) []byte {
	return frame(msg.Proto(), msg.EncodePayload())
}

func frame(proto uint16, payload []byte) []byte {
	packet := make([]byte, 0, 2+len(payload))
	packet = append(packet, byte(len(payload)+1), byte(proto))
	return append(packet, payload...)
}

// InlineResponse derives the automatic acknowledgement for a raw
// inbound packet, or nil when the kind wants no inline reply. Only the
// proto byte is examined: inline responses are, by construction,
// independent of inbound payload content.
func InlineResponse(packet []byte) []byte {
	if len(packet) < 2 {
		return nil
	}
	kind := Lookup(uint16(packet[1]))
	if kind.Respond != RespondInline {
		return nil
	}
	var payload []byte
	if kind.inline != nil {
		payload = kind.inline(time.Now().UTC())
	}
	return frame(kind.Proto, payload)
}

// ProtoOfPacket reports the proto byte of a raw packet without
// decoding it.
func ProtoOfPacket(packet []byte) uint16 {
	if len(packet) < 2 {
		return ProtoUnknown
	}
	return uint16(packet[1])
}

// IMEIFromPacket extracts the device identity from a raw LOGIN packet,
// or "" for any other packet. The collector uses this to bind a
// connection to a device before full decode.
func IMEIFromPacket(packet []byte) string {
	if ProtoOfPacket(packet) != ProtoLogin {
		return ""
	}
	msg, err := Parse(packet)
	if err != nil {
		return ""
	}
	login, ok := msg.(*Login)
	if !ok {
		return ""
	}
	return login.IMEI
}

// IsGoodbye reports whether the packet announces that the device is
// about to drop the connection.
func IsGoodbye(packet []byte) bool {
	return ProtoOfPacket(packet) == ProtoHibernation
}
