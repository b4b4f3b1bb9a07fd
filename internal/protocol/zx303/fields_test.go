package zx303

import (
	"encoding/binary"
	"testing"
	"time"
)

func TestCoordinateSignConvention(t *testing.T) {
	// Magnitude for 45 degrees: 45 * 30000 * 60.
	const mag = 45 * coordUnit
	tests := []struct {
		name     string
		flags    uint16
		wantLat  float64
		wantLon  float64
	}{
		{"lat positive, lon positive", 0b0000010000000000, 45, 45},
		{"lat positive, lon negative", 0b0000110000000000, 45, -45},
		{"lat negative, lon positive", 0b0000000000000000, -45, 45},
		{"lat negative, lon negative", 0b0000100000000000, -45, -45},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fix := decodeGeo(mag, mag, 0, tt.flags)
			if fix.Latitude != tt.wantLat {
				t.Errorf("latitude = %v, want %v", fix.Latitude, tt.wantLat)
			}
			if fix.Longitude != tt.wantLon {
				t.Errorf("longitude = %v, want %v", fix.Longitude, tt.wantLon)
			}
		})
	}
}

func TestCoordinateZeroMagnitude(t *testing.T) {
	fix := decodeGeo(0, 0, 0, 0)
	if fix.Latitude != 0 || fix.Longitude != 0 {
		t.Errorf("zero magnitude decoded to %v, %v", fix.Latitude, fix.Longitude)
	}
}

func TestGeoFlagsBits(t *testing.T) {
	fix := decodeGeo(0, 0, 55, 0b0001010000000000|723)
	if !fix.Valid {
		t.Error("validity bit not decoded")
	}
	if fix.Heading != 723 {
		t.Errorf("heading = %d, want 723", fix.Heading)
	}
	if fix.Speed != 55 {
		t.Errorf("speed = %d, want 55", fix.Speed)
	}
}

func TestTimeADecode(t *testing.T) {
	got := decodeTimeA([]byte{21, 7, 15, 12, 30, 45})
	want := time.Date(2021, 7, 15, 12, 30, 45, 0, time.UTC)
	if !got.Equal(want) {
		t.Errorf("decodeTimeA = %v, want %v", got, want)
	}
}

func TestTimeAAllZeroIsAbsent(t *testing.T) {
	got := decodeTimeA([]byte{0, 0, 0, 0, 0, 0})
	if !got.IsZero() {
		t.Errorf("all-zero timestamp decoded to %v, want absent", got)
	}
}

func TestTimeBRoundTrip(t *testing.T) {
	want := time.Date(2021, 7, 15, 12, 30, 45, 0, time.UTC)
	b := encodeTimeB(want)
	wantBytes := []byte{0x21, 0x07, 0x15, 0x12, 0x30, 0x45}
	for i := range wantBytes {
		if b[i] != wantBytes[i] {
			t.Fatalf("encodeTimeB = % x, want % x", b, wantBytes)
		}
	}
	got, err := decodeTimeB(b)
	if err != nil {
		t.Fatalf("decodeTimeB: %v", err)
	}
	if !got.Equal(want) {
		t.Errorf("round trip = %v, want %v", got, want)
	}
}

func TestTimeBRejectsNonDecimal(t *testing.T) {
	if _, err := decodeTimeB([]byte{0x2A, 0x07, 0x15, 0x12, 0x30, 0x45}); err == nil {
		t.Error("expected error for nibble > 9")
	}
}

func TestParseWifiAPs(t *testing.T) {
	b := []byte{
		0xDE, 0xAD, 0xBE, 0xEF, 0x00, 0x01, 0x41,
		0x12, 0x34, 0x56, 0x78, 0x9A, 0xBC, 0x55,
	}
	aps, err := parseWifiAPs(b, 2)
	if err != nil {
		t.Fatalf("parseWifiAPs: %v", err)
	}
	if aps[0].MAC != "DE:AD:BE:EF:00:01" || aps[0].Signal != -65 {
		t.Errorf("ap[0] = %+v", aps[0])
	}
	if aps[1].MAC != "12:34:56:78:9A:BC" || aps[1].Signal != -85 {
		t.Errorf("ap[1] = %+v", aps[1])
	}
	if _, err := parseWifiAPs(b, 3); err == nil {
		t.Error("expected error for record count past payload end")
	}
}

func TestParseGsmCells(t *testing.T) {
	b := []byte{
		2,          // count
		0x01, 0x04, // MCC 260
		0x02,       // MNC
		0x12, 0x34, 0xAB, 0xCD, 0x50,
		0x00, 0x10, 0x00, 0x20, 0x3C,
	}
	mcc, mnc, cells, err := parseGsmCells(b)
	if err != nil {
		t.Fatalf("parseGsmCells: %v", err)
	}
	if mcc != 260 || mnc != 2 {
		t.Errorf("mcc/mnc = %d/%d", mcc, mnc)
	}
	if len(cells) != 2 {
		t.Fatalf("got %d cells, want 2", len(cells))
	}
	if cells[0].LAC != 0x1234 || cells[0].CellID != 0xABCD || cells[0].Signal != -80 {
		t.Errorf("cell[0] = %+v", cells[0])
	}
	if cells[1].Signal != -60 {
		t.Errorf("cell[1] = %+v", cells[1])
	}
}

func TestPackHHMM(t *testing.T) {
	tests := []struct {
		in      string
		want    [2]byte
		wantErr bool
	}{
		{"0000", [2]byte{0x00, 0x00}, false},
		{"2359", [2]byte{0x23, 0x59}, false},
		{"0930", [2]byte{0x09, 0x30}, false},
		{"2400", [2]byte{}, true},
		{"1260", [2]byte{}, true},
		{"12:0", [2]byte{}, true},
		{"123", [2]byte{}, true},
		{"", [2]byte{}, true},
	}
	for _, tt := range tests {
		got, err := packHHMM(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("packHHMM(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if !tt.wantErr && got != tt.want {
			t.Errorf("packHHMM(%q) = % x, want % x", tt.in, got, tt.want)
		}
	}
}

func TestGeoMagnitudeEncodingAssumption(t *testing.T) {
	// Sanity-pin the fixed point unit against a real-world value:
	// 52.5200 degrees is 94,536,000 units.
	var buf [4]byte
	binary.BigEndian.PutUint32(buf[:], 94536000)
	fix := decodeGeo(binary.BigEndian.Uint32(buf[:]), 0, 0, 0b0000010000000000)
	if fix.Latitude < 52.5199 || fix.Latitude > 52.5201 {
		t.Errorf("latitude = %v, want 52.52", fix.Latitude)
	}
}
