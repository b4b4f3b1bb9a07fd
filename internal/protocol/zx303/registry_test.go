package zx303

import "testing"

func TestLookupReturnsOwnProto(t *testing.T) {
	for _, k := range Kinds() {
		if got := Lookup(k.Proto); got.Proto != k.Proto {
			t.Errorf("Lookup(0x%02x).Proto = 0x%02x", k.Proto, got.Proto)
		}
	}
}

func TestLookupUnregisteredFallsBack(t *testing.T) {
	if got := Lookup(0x7F); got != KindUnknown {
		t.Errorf("Lookup(0x7F) = %v, want the Unknown kind", got.Name)
	}
}

func TestLookupName(t *testing.T) {
	k, ok := LookupName("WIFI_POSITIONING")
	if !ok || k.Proto != ProtoWifiPositioning {
		t.Errorf("LookupName(WIFI_POSITIONING) = %v, %v", k, ok)
	}
	if _, ok := LookupName("NO_SUCH_KIND"); ok {
		t.Error("LookupName matched a nonexistent name")
	}
}

func TestKindsByPrefix(t *testing.T) {
	tests := []struct {
		prefix string
		want   int
	}{
		{"HEART", 1},
		{"heart", 1}, // case insensitive
		{"GPS_POSITIONING", 1},
		{"GPS", 4}, // GPS_POSITIONING, GPS_OFFLINE_POSITIONING, GPS_LBS_SWITCH_TIMES, GPS_OFF_PERIOD
		{"WIFI", 2},
		{"ZZZ", 0},
	}
	for _, tt := range tests {
		if got := KindsByPrefix(tt.prefix); len(got) != tt.want {
			names := make([]string, len(got))
			for i, k := range got {
				names[i] = k.Name
			}
			t.Errorf("KindsByPrefix(%q) = %v, want %d matches", tt.prefix, names, tt.want)
		}
	}
}

func TestCatalogueResponsePolicies(t *testing.T) {
	tests := []struct {
		proto uint16
		want  Respond
	}{
		{ProtoLogin, RespondInline},
		{ProtoHeartbeat, RespondInline},
		{ProtoGPSPositioning, RespondInline},
		{ProtoGPSOfflinePositioning, RespondInline},
		{ProtoStatus, RespondExt},
		{ProtoWifiOfflinePositioning, RespondInline},
		{ProtoWifiPositioning, RespondExt},
		{ProtoSetup, RespondExt},
		{ProtoUnknown, RespondNone},
		{ProtoSupervision, RespondNone},
	}
	for _, tt := range tests {
		if got := Lookup(tt.proto).Respond; got != tt.want {
			t.Errorf("kind 0x%02x policy = %v, want %v", tt.proto, got, tt.want)
		}
	}
}
