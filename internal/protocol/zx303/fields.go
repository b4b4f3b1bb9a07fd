package zx303

import (
	"fmt"
	"strings"
	"time"
)

// Coordinates travel as unsigned fixed point: degrees * 30000 * 60.
const coordUnit = 30000 * 60

// decodeGeo turns the raw coordinate block into a GeoFix. The 32-bit
// magnitudes carry no sign; it comes from the flags word, where a set
// bit flips longitude and a clear bit flips latitude. Both axes use
// multiplier -1 when flipped (the legacy -2 longitude multiplier is a
// bug: it cannot yield a coordinate on Earth for any magnitude that
// decodes to a valid unflipped longitude).
func decodeGeo(lat, lon uint32, speed uint8, flags uint16) GeoFix {
	fix := GeoFix{Speed: speed, Flags: flags}
	fix.Valid = flags&0b0001000000000000 != 0 // bit 3
	flipLon := flags&0b0000100000000000 != 0  // bit 4
	flipLat := flags&0b0000010000000000 == 0  // bit 5, inverted
	fix.Heading = flags & 0b0000001111111111  // bits 6 - last
	fix.Latitude = float64(lat) / coordUnit
	fix.Longitude = float64(lon) / coordUnit
	if flipLat {
		fix.Latitude = -fix.Latitude
	}
	if flipLon {
		fix.Longitude = -fix.Longitude
	}
	return fix
}

// decodeTimeA reads six raw bytes: year-2000, month, day, hour,
// minute, second. All zeroes means the device sent no timestamp.
func decodeTimeA(b []byte) time.Time {
	if len(b) < 6 {
		return time.Time{}
	}
	if b[0]|b[1]|b[2]|b[3]|b[4]|b[5] == 0 {
		return time.Time{}
	}
	return time.Date(2000+int(b[0]), time.Month(b[1]), int(b[2]),
		int(b[3]), int(b[4]), int(b[5]), 0, time.UTC)
}

// encodeTimeA produces the six-byte raw form of t.
func encodeTimeA(t time.Time) []byte {
	t = t.UTC()
	return []byte{
		byte(t.Year() % 100), byte(t.Month()), byte(t.Day()),
		byte(t.Hour()), byte(t.Minute()), byte(t.Second()),
	}
}

// decodeTimeB reads six packed-decimal bytes as YYMMDDHHMMSS. Only the
// Wi-Fi positioning kinds use this form.
func decodeTimeB(b []byte) (time.Time, error) {
	if len(b) < 6 {
		return time.Time{}, ErrShortPayload
	}
	if b[0]|b[1]|b[2]|b[3]|b[4]|b[5] == 0 {
		return time.Time{}, nil
	}
	var v [6]int
	for i, x := range b[:6] {
		hi, lo := int(x>>4), int(x&0x0F)
		if hi > 9 || lo > 9 {
			return time.Time{}, ErrBadTimeB
		}
		v[i] = hi*10 + lo
	}
	return time.Date(2000+v[0], time.Month(v[1]), v[2],
		v[3], v[4], v[5], 0, time.UTC), nil
}

// encodeTimeB produces the six packed-decimal bytes of t.
func encodeTimeB(t time.Time) []byte {
	t = t.UTC()
	pack := func(v int) byte { return byte(v/10)<<4 | byte(v%10) }
	return []byte{
		pack(t.Year() % 100), pack(int(t.Month())), pack(t.Day()),
		pack(t.Hour()), pack(t.Minute()), pack(t.Second()),
	}
}

// formatMAC renders a 6-byte hardware address as colon-separated hex.
func formatMAC(b []byte) string {
	parts := make([]string, len(b))
	for i, x := range b {
		parts[i] = fmt.Sprintf("%02X", x)
	}
	return strings.Join(parts, ":")
}

// parseWifiAPs reads n 7-byte records: 6-byte MAC plus signal strength
// stored as a positive magnitude whose semantic value is its negation.
// n comes from the envelope length field, not from the payload.
func parseWifiAPs(b []byte, n int) ([]WifiAP, error) {
	if len(b) < n*7 {
		return nil, ErrShortPayload
	}
	aps := make([]WifiAP, 0, n)
	for i := 0; i < n; i++ {
		rec := b[i*7 : i*7+7]
		aps = append(aps, WifiAP{MAC: formatMAC(rec[:6]), Signal: -int(rec[6])})
	}
	return aps, nil
}

// parseGsmCells reads a count byte, MCC, MNC and count 5-byte records.
func parseGsmCells(b []byte) (mcc uint16, mnc byte, cells []GsmCell, err error) {
	if len(b) < 4 {
		return 0, 0, nil, ErrShortPayload
	}
	n := int(b[0])
	mcc = uint16(b[1])<<8 | uint16(b[2])
	mnc = b[3]
	if len(b) < 4+n*5 {
		return 0, 0, nil, ErrShortPayload
	}
	cells = make([]GsmCell, 0, n)
	for i := 0; i < n; i++ {
		rec := b[4+i*5 : 9+i*5]
		cells = append(cells, GsmCell{
			LAC:    uint16(rec[0])<<8 | uint16(rec[1]),
			CellID: uint16(rec[2])<<8 | uint16(rec[3]),
			Signal: -int(rec[4]),
		})
	}
	return mcc, mnc, cells, nil
}

// packHHMM validates a 4-digit HHMM string and converts it to two
// packed-decimal bytes, e.g. "2359" -> 0x23 0x59. Validation happens
// here, at construction time, never at encode time.
func packHHMM(s string) ([2]byte, error) {
	if len(s) != 4 {
		return [2]byte{}, fmt.Errorf("%w: %q", ErrBadHHMM, s)
	}
	for _, c := range s {
		if c < '0' || c > '9' {
			return [2]byte{}, fmt.Errorf("%w: %q", ErrBadHHMM, s)
		}
	}
	hh := 10*int(s[0]-'0') + int(s[1]-'0')
	mm := 10*int(s[2]-'0') + int(s[3]-'0')
	if hh > 23 || mm > 59 {
		return [2]byte{}, fmt.Errorf("%w: %q", ErrBadHHMM, s)
	}
	return [2]byte{byte(hh/10)<<4 | byte(hh%10), byte(mm/10)<<4 | byte(mm%10)}, nil
}

// checkPhone accepts an empty string or plain ASCII digits. Numbers
// are joined with ";" on the wire, so separators cannot appear inside.
func checkPhone(s string) error {
	for _, c := range s {
		if c < '0' || c > '9' {
			return fmt.Errorf("%w: %q", ErrBadPhone, s)
		}
	}
	return nil
}

// pack3b keeps the low 3 bytes of v, big endian.
func pack3b(v uint32) []byte {
	return []byte{byte(v >> 16), byte(v >> 8), byte(v)}
}

func packU16(v uint16) []byte {
	return []byte{byte(v >> 8), byte(v)}
}
