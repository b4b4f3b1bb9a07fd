package zx303

import (
	"fmt"
	"sort"
	"strings"
	"time"
)

// Protocol numbers. The wire carries a single byte; ProtoUnknown sits
// outside the byte range so the sentinel can never collide with a real
// packet.
const (
	ProtoLogin                  uint16 = 0x01
	ProtoSupervision            uint16 = 0x05
	ProtoHeartbeat              uint16 = 0x08
	ProtoGPSPositioning         uint16 = 0x10
	ProtoGPSOfflinePositioning  uint16 = 0x11
	ProtoStatus                 uint16 = 0x13
	ProtoHibernation            uint16 = 0x14
	ProtoReset                  uint16 = 0x15
	ProtoWhitelistTotal         uint16 = 0x16
	ProtoWifiOfflinePositioning uint16 = 0x17
	ProtoTime                   uint16 = 0x30
	ProtoProhibitLBS            uint16 = 0x33
	ProtoGPSLBSSwitchTimes      uint16 = 0x34
	ProtoRemoteMonitorPhone     uint16 = 0x40
	ProtoSOSPhone               uint16 = 0x41
	ProtoDadPhone               uint16 = 0x42
	ProtoMomPhone               uint16 = 0x43
	ProtoStopUpload             uint16 = 0x44
	ProtoGPSOffPeriod           uint16 = 0x46
	ProtoDNDPeriod              uint16 = 0x47
	ProtoRestartShutdown        uint16 = 0x48
	ProtoDevice                 uint16 = 0x49
	ProtoAlarmClock             uint16 = 0x50
	ProtoStopAlarm              uint16 = 0x56
	ProtoSetup                  uint16 = 0x57
	ProtoSynchronousWhitelist   uint16 = 0x58
	ProtoRestorePassword        uint16 = 0x67
	ProtoWifiPositioning        uint16 = 0x69
	ProtoManualPositioning      uint16 = 0x80
	ProtoBatteryCharge          uint16 = 0x81
	ProtoChargerConnected       uint16 = 0x82
	ProtoChargerDisconnected    uint16 = 0x83
	ProtoVibrationReceived      uint16 = 0x94
	ProtoPositionUploadInterval uint16 = 0x98
	ProtoSOSAlarm               uint16 = 0x99
	ProtoUnknown                uint16 = 256
)

// Kind describes one registered message type: its protocol number,
// name, response policy and the per-direction codec rules.
type Kind struct {
	Proto   uint16
	Name    string
	Respond Respond

	// decode turns the raw frame into the typed inbound message.
	// Nil means the kind carries no structured inbound fields.
	decode func(k *Kind, raw Raw) (Message, error)
	// inline produces the payload of the automatic acknowledgement.
	// Nil with Respond==RespondInline means an empty-payload ack.
	inline func(now time.Time) []byte
}

// KindUnknown is the catch-all for unrecognized protocol numbers. Its
// static proto is a sentinel; decoded instances report the true wire
// value instead.
var KindUnknown = &Kind{Proto: ProtoUnknown, Name: "UNKNOWN", Respond: RespondNone}

var kinds = []*Kind{
	KindUnknown,
	{Proto: ProtoLogin, Name: "LOGIN", Respond: RespondInline, decode: decodeLogin},
	{Proto: ProtoSupervision, Name: "SUPERVISION", Respond: RespondNone},
	{Proto: ProtoHeartbeat, Name: "HEARTBEAT", Respond: RespondInline},
	{Proto: ProtoGPSPositioning, Name: "GPS_POSITIONING", Respond: RespondInline,
		decode: decodeGPSPositioning, inline: encodeTimeA},
	{Proto: ProtoGPSOfflinePositioning, Name: "GPS_OFFLINE_POSITIONING", Respond: RespondInline,
		decode: decodeGPSPositioning, inline: encodeTimeA},
	{Proto: ProtoStatus, Name: "STATUS", Respond: RespondExt, decode: decodeStatus},
	{Proto: ProtoHibernation, Name: "HIBERNATION", Respond: RespondExt},
	{Proto: ProtoReset, Name: "RESET", Respond: RespondExt},
	{Proto: ProtoWhitelistTotal, Name: "WHITELIST_TOTAL", Respond: RespondNone},
	{Proto: ProtoWifiOfflinePositioning, Name: "WIFI_OFFLINE_POSITIONING", Respond: RespondInline,
		decode: decodeWifiPositioning, inline: encodeTimeB},
	{Proto: ProtoTime, Name: "TIME", Respond: RespondInline, inline: encodeTimeFull},
	{Proto: ProtoProhibitLBS, Name: "PROHIBIT_LBS", Respond: RespondNone},
	{Proto: ProtoGPSLBSSwitchTimes, Name: "GPS_LBS_SWITCH_TIMES", Respond: RespondNone},
	{Proto: ProtoRemoteMonitorPhone, Name: "REMOTE_MONITOR_PHONE", Respond: RespondNone},
	{Proto: ProtoSOSPhone, Name: "SOS_PHONE", Respond: RespondNone},
	{Proto: ProtoDadPhone, Name: "DAD_PHONE", Respond: RespondNone},
	{Proto: ProtoMomPhone, Name: "MOM_PHONE", Respond: RespondNone},
	{Proto: ProtoStopUpload, Name: "STOP_UPLOAD", Respond: RespondNone},
	{Proto: ProtoGPSOffPeriod, Name: "GPS_OFF_PERIOD", Respond: RespondNone},
	{Proto: ProtoDNDPeriod, Name: "DND_PERIOD", Respond: RespondNone},
	{Proto: ProtoRestartShutdown, Name: "RESTART_SHUTDOWN", Respond: RespondNone},
	{Proto: ProtoDevice, Name: "DEVICE", Respond: RespondNone},
	{Proto: ProtoAlarmClock, Name: "ALARM_CLOCK", Respond: RespondNone},
	{Proto: ProtoStopAlarm, Name: "STOP_ALARM", Respond: RespondInline, decode: decodeStopAlarm},
	{Proto: ProtoSetup, Name: "SETUP", Respond: RespondExt},
	{Proto: ProtoSynchronousWhitelist, Name: "SYNCHRONOUS_WHITELIST", Respond: RespondInline},
	{Proto: ProtoRestorePassword, Name: "RESTORE_PASSWORD", Respond: RespondInline},
	{Proto: ProtoWifiPositioning, Name: "WIFI_POSITIONING", Respond: RespondExt,
		decode: decodeWifiPositioning},
	{Proto: ProtoManualPositioning, Name: "MANUAL_POSITIONING", Respond: RespondExt,
		decode: decodeManualPositioning},
	{Proto: ProtoBatteryCharge, Name: "BATTERY_CHARGE", Respond: RespondInline},
	{Proto: ProtoChargerConnected, Name: "CHARGER_CONNECTED", Respond: RespondInline},
	{Proto: ProtoChargerDisconnected, Name: "CHARGER_DISCONNECTED", Respond: RespondInline},
	{Proto: ProtoVibrationReceived, Name: "VIBRATION_RECEIVED", Respond: RespondInline},
	{Proto: ProtoPositionUploadInterval, Name: "POSITION_UPLOAD_INTERVAL", Respond: RespondExt,
		decode: decodePositionUploadInterval},
	{Proto: ProtoSOSAlarm, Name: "SOS_ALARM", Respond: RespondInline},
}

var (
	kindsByProto map[uint16]*Kind
	kindsByName  map[string]*Kind
)

func init() {
	kindsByProto = make(map[uint16]*Kind, len(kinds))
	kindsByName = make(map[string]*Kind, len(kinds))
	for _, k := range kinds {
		if _, dup := kindsByProto[k.Proto]; dup {
			panic(fmt.Sprintf("zx303: duplicate proto number 0x%02x", k.Proto))
		}
		if _, dup := kindsByName[k.Name]; dup {
			panic(fmt.Sprintf("zx303: duplicate kind name %q", k.Name))
		}
		kindsByProto[k.Proto] = k
		kindsByName[k.Name] = k
	}
}

// Lookup resolves a protocol number to its kind. Unregistered numbers
// resolve to KindUnknown; Lookup never fails.
func Lookup(proto uint16) *Kind {
	if k, ok := kindsByProto[proto]; ok {
		return k
	}
	return KindUnknown
}

// LookupName resolves an exact kind name.
func LookupName(name string) (*Kind, bool) {
	k, ok := kindsByName[name]
	return k, ok
}

// KindsByPrefix returns every kind whose name starts with the given
// prefix, case insensitively, sorted by name. A single-element result
// is an unambiguous match; zero or several elements are returned as-is
// and the caller decides.
func KindsByPrefix(prefix string) []*Kind {
	prefix = strings.ToUpper(prefix)
	var matches []*Kind
	for _, k := range kinds {
		if strings.HasPrefix(k.Name, prefix) {
			matches = append(matches, k)
		}
	}
	sort.Slice(matches, func(i, j int) bool { return matches[i].Name < matches[j].Name })
	return matches
}

// Kinds returns the full catalogue, sorted by proto number.
func Kinds() []*Kind {
	out := make([]*Kind, len(kinds))
	copy(out, kinds)
	sort.Slice(out, func(i, j int) bool { return out[i].Proto < out[j].Proto })
	return out
}

// encodeTimeFull is the TIME acknowledgement payload: a full 16-bit
// year followed by month, day, hour, minute, second.
func encodeTimeFull(now time.Time) []byte {
	now = now.UTC()
	b := packU16(uint16(now.Year()))
	return append(b, byte(now.Month()), byte(now.Day()),
		byte(now.Hour()), byte(now.Minute()), byte(now.Second()))
}
