package service

import (
	"testing"

	"zxtrack/internal/protocol/zx303"
)

func parseMessage(t *testing.T, packet []byte) zx303.Message {
	t.Helper()
	msg, err := zx303.Parse(packet)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	return msg
}

func TestTermConfigStatusResponse(t *testing.T) {
	conf := DefaultTermConfig()
	conf.StatusIntervalMinutes = 30
	svc := NewTermConfigService(conf, nil)

	msg := parseMessage(t, []byte{6, 0x13, 0x50, 0x11, 0x08, 0x04})
	out, err := svc.Response(msg)
	if err != nil {
		t.Fatalf("Response: %v", err)
	}
	status, ok := out.(zx303.StatusOut)
	if !ok {
		t.Fatalf("got %T, want zx303.StatusOut", out)
	}
	if status.UploadInterval != 30 {
		t.Errorf("upload interval = %d, want 30", status.UploadInterval)
	}
}

func TestTermConfigSetupResponse(t *testing.T) {
	svc := NewTermConfigService(DefaultTermConfig(), nil)

	out, err := svc.Response(parseMessage(t, []byte{1, 0x57}))
	if err != nil {
		t.Fatalf("Response: %v", err)
	}
	packet := zx303.Serialize(out)
	if packet[1] != 0x57 {
		t.Errorf("reply proto = %#x, want 0x57", packet[1])
	}
}

func TestTermConfigUploadIntervalResponse(t *testing.T) {
	conf := DefaultTermConfig()
	conf.UploadIntervalSeconds = 600
	svc := NewTermConfigService(conf, nil)

	out, err := svc.Response(parseMessage(t, []byte{3, 0x98, 0x00, 0x0A}))
	if err != nil {
		t.Fatalf("Response: %v", err)
	}
	interval, ok := out.(zx303.PositionUploadIntervalOut)
	if !ok {
		t.Fatalf("got %T, want zx303.PositionUploadIntervalOut", out)
	}
	if interval.Interval != 600 {
		t.Errorf("interval = %d, want 600", interval.Interval)
	}
}

func TestTermConfigRejectsInlineKinds(t *testing.T) {
	svc := NewTermConfigService(DefaultTermConfig(), nil)
	if _, err := svc.Response(parseMessage(t, []byte{1, 0x08})); err == nil {
		t.Error("Response accepted a kind with an inline acknowledgement")
	}
}
