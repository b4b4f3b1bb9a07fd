package zx303

import (
	"bytes"
	"fmt"
)

// Older device firmware wraps every envelope in ASCII markers:
// "xx" before the length byte and "\r\n" after the payload. The
// convention is unsound (the markers can appear inside payload data)
// and superseded by plain length-prefixed envelopes, so it is kept
// out of the envelope codec entirely. Nothing in the collector path
// uses these functions; they exist for old hardware only.

var (
	legacyStart = []byte("xx")
	legacyEnd   = []byte("\r\n")
)

// Enframe wraps a serialized envelope in the legacy ASCII markers.
//
// Deprecated: only for compatibility with pre-zx303 firmware.
func Enframe(packet []byte) []byte {
	out := make([]byte, 0, len(packet)+4)
	out = append(out, legacyStart...)
	out = append(out, packet...)
	return append(out, legacyEnd...)
}

// Deframe strips the legacy ASCII markers and returns the inner
// envelope.
//
// Deprecated: only for compatibility with pre-zx303 firmware.
func Deframe(framed []byte) ([]byte, error) {
	if len(framed) < 6 || !bytes.HasPrefix(framed, legacyStart) || !bytes.HasSuffix(framed, legacyEnd) {
		return nil, fmt.Errorf("%w: not a legacy-framed packet", ErrTruncated)
	}
	return framed[2 : len(framed)-2], nil
}
