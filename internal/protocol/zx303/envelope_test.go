package zx303

import (
	"bytes"
	"errors"
	"testing"
	"time"
)

func TestParseLoginScenario(t *testing.T) {
	packet := []byte{
		9,    // declared length
		0x01, // proto: LOGIN
		0x03, 0x57, 0x93, 0x00, 0x84, 0x90, 0x02, 0x42, // IMEI
		0x11, // firmware version
	}
	msg, err := Parse(packet)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	login, ok := msg.(*Login)
	if !ok {
		t.Fatalf("got %T, want *Login", msg)
	}
	if login.IMEI != "0357930084900242" {
		t.Errorf("IMEI = %q", login.IMEI)
	}
	if login.Version != 0x11 {
		t.Errorf("version = %#x", login.Version)
	}

	ack := InlineResponse(packet)
	if !bytes.Equal(ack, []byte{1, 0x01}) {
		t.Errorf("inline ack = % x, want 01 01", ack)
	}
}

func TestParseEmptyLoginIsDecodeError(t *testing.T) {
	msg, err := Parse([]byte{1, 0x01})
	var derr *DecodeError
	if !errors.As(err, &derr) {
		t.Fatalf("error = %v, want *DecodeError", err)
	}
	unk, ok := msg.(*Unknown)
	if !ok {
		t.Fatalf("got %T, want *Unknown", msg)
	}
	if unk.Proto() != ProtoLogin {
		t.Errorf("proto = %#x, want 0x01", unk.Proto())
	}
	if unk.Cause == nil {
		t.Error("cause not attached")
	}
}

func TestParseUnknownProtoPreservesBytes(t *testing.T) {
	payload := []byte{0xDE, 0xAD, 0xBE, 0xEF}
	packet := append([]byte{5, 0x7F}, payload...)
	msg, err := Parse(packet)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	unk, ok := msg.(*Unknown)
	if !ok {
		t.Fatalf("got %T, want *Unknown", msg)
	}
	if unk.Proto() != 0x7F {
		t.Errorf("proto = %#x, want 0x7f", unk.Proto())
	}
	if !bytes.Equal(unk.Frame().Payload, payload) {
		t.Errorf("payload = % x, want % x", unk.Frame().Payload, payload)
	}
	if unk.Cause != nil {
		t.Errorf("unexpected cause %v for a merely unregistered proto", unk.Cause)
	}
}

func TestParseTruncatedPacket(t *testing.T) {
	msg, err := Parse([]byte{0x01})
	if err == nil {
		t.Fatal("expected decode error")
	}
	if _, ok := msg.(*Unknown); !ok {
		t.Fatalf("got %T, want *Unknown", msg)
	}
}

func TestSerializeLengthInvariant(t *testing.T) {
	msgs := []Outbound{
		StatusOut{UploadInterval: 25},
		SupervisionOut{Status: 2},
		HibernationOut{},
		PositionUploadIntervalOut{Interval: 600},
		NewWifiPositioningEmpty(),
		NewWifiPositioningResult(52.52, 13.405),
	}
	for _, m := range msgs {
		packet := Serialize(m)
		if len(packet) < 2 {
			t.Fatalf("packet too short: % x", packet)
		}
		if int(packet[0]) != len(packet[2:])+1 {
			t.Errorf("proto %#x: length byte %d, payload %d bytes",
				m.Proto(), packet[0], len(packet[2:]))
		}
		if packet[1] != byte(m.Proto()) {
			t.Errorf("proto byte = %#x, want %#x", packet[1], m.Proto())
		}
	}
}

func TestInlineResponses(t *testing.T) {
	tests := []struct {
		name       string
		proto      uint16
		payloadLen int  // expected ack payload size
		none       bool // no inline response expected
	}{
		{"login ack is empty", ProtoLogin, 0, false},
		{"heartbeat ack is empty", ProtoHeartbeat, 0, false},
		{"gps fix echoes server time", ProtoGPSPositioning, 6, false},
		{"offline gps fix echoes server time", ProtoGPSOfflinePositioning, 6, false},
		{"offline wifi echoes packed time", ProtoWifiOfflinePositioning, 6, false},
		{"time wants full year", ProtoTime, 7, false},
		{"status is external", ProtoStatus, 0, true},
		{"wifi positioning is external", ProtoWifiPositioning, 0, true},
		{"supervision is outbound only", ProtoSupervision, 0, true},
		{"unknown gets nothing", 0x7F, 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			packet := []byte{1, byte(tt.proto)}
			resp := InlineResponse(packet)
			if tt.none {
				if resp != nil {
					t.Fatalf("unexpected inline response % x", resp)
				}
				return
			}
			if resp == nil {
				t.Fatal("no inline response")
			}
			if resp[1] != byte(tt.proto) {
				t.Errorf("ack proto = %#x, want %#x", resp[1], tt.proto)
			}
			if got := len(resp) - 2; got != tt.payloadLen {
				t.Errorf("ack payload = %d bytes, want %d", got, tt.payloadLen)
			}
			if int(resp[0]) != tt.payloadLen+1 {
				t.Errorf("ack length byte = %d, want %d", resp[0], tt.payloadLen+1)
			}
		})
	}
}

func TestInlineResponseGPSTimeIsCurrent(t *testing.T) {
	before := time.Now().UTC()
	resp := InlineResponse([]byte{1, byte(ProtoGPSPositioning)})
	after := time.Now().UTC()
	got := decodeTimeA(resp[2:])
	if got.Before(before.Truncate(time.Second)) || got.After(after.Add(time.Second)) {
		t.Errorf("echoed time %v outside [%v, %v]", got, before, after)
	}
}

func TestOutboundRoundTrip(t *testing.T) {
	// Kinds that define both directions must decode their own
	// encoded defaults back to the same field values.
	out := PositionUploadIntervalOut{Interval: 600}
	msg, err := Parse(Serialize(out))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	in, ok := msg.(*PositionUploadInterval)
	if !ok {
		t.Fatalf("got %T, want *PositionUploadInterval", msg)
	}
	if in.Interval != 600 {
		t.Errorf("interval = %d, want 600", in.Interval)
	}
}

func TestLegacyFraming(t *testing.T) {
	packet := []byte{1, 0x08}
	framed := Enframe(packet)
	if !bytes.HasPrefix(framed, []byte("xx")) || !bytes.HasSuffix(framed, []byte("\r\n")) {
		t.Fatalf("framed = % x", framed)
	}
	inner, err := Deframe(framed)
	if err != nil {
		t.Fatalf("Deframe: %v", err)
	}
	if !bytes.Equal(inner, packet) {
		t.Errorf("inner = % x, want % x", inner, packet)
	}
	if _, err := Deframe(packet); err == nil {
		t.Error("Deframe accepted an unframed packet")
	}
}
