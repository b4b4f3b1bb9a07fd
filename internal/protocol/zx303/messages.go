package zx303

import (
	"encoding/binary"
	"encoding/hex"
	"fmt"
	"time"
)

// Inbound messages. Each kind with structured fields gets its own
// type; everything else decodes to Generic.

// Generic is the decoded form of kinds that carry no structured
// inbound fields. The raw payload stays available through Frame().
type Generic struct {
	base
}

// Unknown is the decoded form of unregistered protocol numbers and of
// known kinds whose payload failed structural decode. It preserves the
// payload verbatim and reports the true wire proto number.
type Unknown struct {
	base
	WireProto uint16
	Cause     error // non-nil when a known kind failed to decode
}

func (m *Unknown) Proto() uint16 { return m.WireProto }

// Login is the first message on a connection: the device identity and
// firmware version.
type Login struct {
	base
	IMEI    string // hex of all payload bytes but the last
	Version byte
}

func decodeLogin(k *Kind, raw Raw) (Message, error) {
	if len(raw.Payload) < 2 {
		return nil, ErrShortPayload
	}
	return &Login{
		base:    base{kind: k, raw: raw},
		IMEI:    hex.EncodeToString(raw.Payload[:len(raw.Payload)-1]),
		Version: raw.Payload[len(raw.Payload)-1],
	}, nil
}

// GPSPositioning is a live (0x10) or stored (0x11) satellite fix.
type GPSPositioning struct {
	base
	Fix        GeoFix
	DataLength byte // high nibble of the precision byte
	Satellites byte // low nibble
}

func decodeGPSPositioning(k *Kind, raw Raw) (Message, error) {
	p := raw.Payload
	if len(p) < 18 {
		return nil, ErrShortPayload
	}
	fix := decodeGeo(
		binary.BigEndian.Uint32(p[7:11]),
		binary.BigEndian.Uint32(p[11:15]),
		p[15],
		binary.BigEndian.Uint16(p[16:18]),
	)
	fix.DevTime = decodeTimeA(p[:6])
	return &GPSPositioning{
		base:       base{kind: k, raw: raw},
		Fix:        fix,
		DataLength: p[6] >> 4,
		Satellites: p[6] & 0x0F,
	}, nil
}

// Status is the periodic device self-report. The signal byte is only
// present in the five-byte variant.
type Status struct {
	base
	Battery   byte // percent
	Version   byte
	Timezone  byte
	Interval  byte // upload interval, minutes
	Signal    byte
	HasSignal bool
}

func decodeStatus(k *Kind, raw Raw) (Message, error) {
	p := raw.Payload
	if len(p) < 4 {
		return nil, ErrShortPayload
	}
	m := &Status{
		base:     base{kind: k, raw: raw},
		Battery:  p[0],
		Version:  p[1],
		Timezone: p[2],
		Interval: p[3],
	}
	if len(p) >= 5 {
		m.Signal = p[4]
		m.HasSignal = true
	}
	return m, nil
}

// WifiPositioning is a Wi-Fi/GSM scan report (0x69 online, 0x17
// offline). The envelope length field counts access point records
// here, not payload bytes.
type WifiPositioning struct {
	base
	DevTime  time.Time // zero when absent; packed-decimal on the wire
	WifiAPs  []WifiAP
	MCC      uint16
	MNC      byte
	GsmCells []GsmCell
}

func decodeWifiPositioning(k *Kind, raw Raw) (Message, error) {
	p := raw.Payload
	if len(p) < 6 {
		return nil, ErrShortPayload
	}
	devtime, err := decodeTimeB(p[:6])
	if err != nil {
		return nil, err
	}
	aps, err := parseWifiAPs(p[6:], int(raw.Length))
	if err != nil {
		return nil, err
	}
	mcc, mnc, cells, err := parseGsmCells(p[6+int(raw.Length)*7:])
	if err != nil {
		return nil, err
	}
	return &WifiPositioning{
		base:     base{kind: k, raw: raw},
		DevTime:  devtime,
		WifiAPs:  aps,
		MCC:      mcc,
		MNC:      mnc,
		GsmCells: cells,
	}, nil
}

// StopAlarm reports that the user stopped a ringing alarm.
type StopAlarm struct {
	base
	Flag byte
}

func decodeStopAlarm(k *Kind, raw Raw) (Message, error) {
	if len(raw.Payload) < 1 {
		return nil, ErrShortPayload
	}
	return &StopAlarm{base: base{kind: k, raw: raw}, Flag: raw.Payload[0]}, nil
}

// ManualPositioning is the device explaining why it asks the server
// for a position.
type ManualPositioning struct {
	base
	Flag   byte
	Reason string
}

var manualPositioningReasons = map[byte]string{
	1: "Incorrect time",
	2: "LBS less",
	3: "WiFi less",
	4: "LBS search > 3 times",
	5: "Same LBS and WiFi data",
	6: "LBS prohibited, WiFi absent",
	7: "GPS spacing < 50 m",
}

func decodeManualPositioning(k *Kind, raw Raw) (Message, error) {
	if len(raw.Payload) < 1 {
		return nil, ErrShortPayload
	}
	flag := raw.Payload[0]
	reason, ok := manualPositioningReasons[flag]
	if !ok {
		reason = "Unknown"
	}
	return &ManualPositioning{base: base{kind: k, raw: raw}, Flag: flag, Reason: reason}, nil
}

// PositionUploadInterval is the device acknowledging an interval change.
type PositionUploadInterval struct {
	base
	Interval uint16 // seconds
}

func decodePositionUploadInterval(k *Kind, raw Raw) (Message, error) {
	if len(raw.Payload) < 2 {
		return nil, ErrShortPayload
	}
	return &PositionUploadInterval{
		base:     base{kind: k, raw: raw},
		Interval: binary.BigEndian.Uint16(raw.Payload[:2]),
	}, nil
}

// Outbound messages. Constructors validate every parameter, so the
// EncodePayload methods cannot fail.

// SupervisionOut sets the call answering mode (1 pickup effect,
// 2 auto-answer two-way, 3 manual answer).
type SupervisionOut struct{ Status byte }

func (m SupervisionOut) Proto() uint16         { return ProtoSupervision }
func (m SupervisionOut) EncodePayload() []byte { return []byte{m.Status} }

// StatusOut is the external reply to STATUS: the upload interval in
// minutes the device should use.
type StatusOut struct{ UploadInterval byte }

// DefaultUploadInterval is used when no per-deployment value is configured.
const DefaultUploadInterval byte = 25

func (m StatusOut) Proto() uint16         { return ProtoStatus }
func (m StatusOut) EncodePayload() []byte { return []byte{m.UploadInterval} }

// HibernationOut sends the device to sleep.
type HibernationOut struct{}

func (HibernationOut) Proto() uint16         { return ProtoHibernation }
func (HibernationOut) EncodePayload() []byte { return nil }

// ResetOut initiates a factory reset.
type ResetOut struct{}

func (ResetOut) Proto() uint16         { return ProtoReset }
func (ResetOut) EncodePayload() []byte { return nil }

// WhitelistTotalOut starts a whitelist sync with the entry count.
type WhitelistTotalOut struct{ Number byte }

func (m WhitelistTotalOut) Proto() uint16         { return ProtoWhitelistTotal }
func (m WhitelistTotalOut) EncodePayload() []byte { return []byte{m.Number} }

// ProhibitLBSOut toggles LBS-only positioning (0 off, 1 on).
type ProhibitLBSOut struct{ Status byte }

func (m ProhibitLBSOut) Proto() uint16         { return ProtoProhibitLBS }
func (m ProhibitLBSOut) EncodePayload() []byte { return []byte{m.Status} }

// GPSLBSSwitchTimesOut configures GPS/LBS scheduling. Times travel as
// packed decimal HHMM.
type GPSLBSSwitchTimesOut struct {
	gpsOn           byte
	setUploadPeriod byte
	uploadFrom      [2]byte
	uploadTo        [2]byte
	lbsOn           byte
	setBootTime     byte
	bootTime        [2]byte
	setShutdownTime byte
	shutdownTime    [2]byte
}

// NewGPSLBSSwitchTimes validates the four HHMM strings eagerly.
func NewGPSLBSSwitchTimes(gpsOn, setUploadPeriod bool, uploadFrom, uploadTo string,
	lbsOn, setBootTime bool, bootTime string, setShutdownTime bool, shutdownTime string,
) (GPSLBSSwitchTimesOut, error) {
	var m GPSLBSSwitchTimesOut
	var err error
	if m.uploadFrom, err = packHHMM(uploadFrom); err != nil {
		return m, err
	}
	if m.uploadTo, err = packHHMM(uploadTo); err != nil {
		return m, err
	}
	if m.bootTime, err = packHHMM(bootTime); err != nil {
		return m, err
	}
	if m.shutdownTime, err = packHHMM(shutdownTime); err != nil {
		return m, err
	}
	m.gpsOn = boolByte(gpsOn)
	m.setUploadPeriod = boolByte(setUploadPeriod)
	m.lbsOn = boolByte(lbsOn)
	m.setBootTime = boolByte(setBootTime)
	m.setShutdownTime = boolByte(setShutdownTime)
	return m, nil
}

func (m GPSLBSSwitchTimesOut) Proto() uint16 { return ProtoGPSLBSSwitchTimes }

func (m GPSLBSSwitchTimesOut) EncodePayload() []byte {
	p := []byte{m.gpsOn, m.setUploadPeriod}
	p = append(p, m.uploadFrom[:]...)
	p = append(p, m.uploadTo[:]...)
	p = append(p, m.lbsOn, m.setBootTime)
	p = append(p, m.bootTime[:]...)
	p = append(p, m.setShutdownTime)
	p = append(p, m.shutdownTime[:]...)
	return p
}

// PhoneOut covers the four set-phone-number kinds (remote monitor,
// SOS, dad, mom), which differ only in proto number.
type PhoneOut struct {
	proto uint16
	phone string
}

func newPhoneOut(proto uint16, phone string) (PhoneOut, error) {
	if err := checkPhone(phone); err != nil {
		return PhoneOut{}, err
	}
	return PhoneOut{proto: proto, phone: phone}, nil
}

// NewRemoteMonitorPhone sets the number the device dials for remote listening.
func NewRemoteMonitorPhone(phone string) (PhoneOut, error) {
	return newPhoneOut(ProtoRemoteMonitorPhone, phone)
}

// NewSOSPhone sets the SOS number.
func NewSOSPhone(phone string) (PhoneOut, error) {
	return newPhoneOut(ProtoSOSPhone, phone)
}

// NewDadPhone sets the "dad" speed-dial number.
func NewDadPhone(phone string) (PhoneOut, error) {
	return newPhoneOut(ProtoDadPhone, phone)
}

// NewMomPhone sets the "mom" speed-dial number.
func NewMomPhone(phone string) (PhoneOut, error) {
	return newPhoneOut(ProtoMomPhone, phone)
}

func (m PhoneOut) Proto() uint16         { return m.proto }
func (m PhoneOut) EncodePayload() []byte { return []byte(m.phone) }

// StopUploadOut tells the device to stop uploading (reply to LOGIN to
// thwart an unwanted device).
type StopUploadOut struct{}

func (StopUploadOut) Proto() uint16         { return ProtoStopUpload }
func (StopUploadOut) EncodePayload() []byte { return nil }

// GPSOffPeriodOut configures the daily window with GPS off.
type GPSOffPeriodOut struct {
	onOff byte
	from  [2]byte
	to    [2]byte
}

// NewGPSOffPeriod validates the HHMM window bounds eagerly.
func NewGPSOffPeriod(on bool, from, to string) (GPSOffPeriodOut, error) {
	var m GPSOffPeriodOut
	var err error
	if m.from, err = packHHMM(from); err != nil {
		return m, err
	}
	if m.to, err = packHHMM(to); err != nil {
		return m, err
	}
	m.onOff = boolByte(on)
	return m, nil
}

func (m GPSOffPeriodOut) Proto() uint16 { return ProtoGPSOffPeriod }

func (m GPSOffPeriodOut) EncodePayload() []byte {
	p := []byte{m.onOff}
	p = append(p, m.from[:]...)
	p = append(p, m.to[:]...)
	return p
}

// DNDPeriodOut configures the two do-not-disturb windows.
type DNDPeriodOut struct {
	onOff byte
	week  byte
	from1 [2]byte
	to1   [2]byte
	from2 [2]byte
	to2   [2]byte
}

// NewDNDPeriod validates all four HHMM bounds eagerly.
func NewDNDPeriod(on bool, week byte, from1, to1, from2, to2 string) (DNDPeriodOut, error) {
	var m DNDPeriodOut
	var err error
	if m.from1, err = packHHMM(from1); err != nil {
		return m, err
	}
	if m.to1, err = packHHMM(to1); err != nil {
		return m, err
	}
	if m.from2, err = packHHMM(from2); err != nil {
		return m, err
	}
	if m.to2, err = packHHMM(to2); err != nil {
		return m, err
	}
	m.onOff = boolByte(on)
	m.week = week
	return m, nil
}

func (m DNDPeriodOut) Proto() uint16 { return ProtoDNDPeriod }

func (m DNDPeriodOut) EncodePayload() []byte {
	p := []byte{m.onOff, m.week}
	p = append(p, m.from1[:]...)
	p = append(p, m.to1[:]...)
	p = append(p, m.from2[:]...)
	p = append(p, m.to2[:]...)
	return p
}

// RestartShutdownOut restarts (1) or shuts down (2) the device.
type RestartShutdownOut struct{ Flag byte }

func (m RestartShutdownOut) Proto() uint16         { return ProtoRestartShutdown }
func (m RestartShutdownOut) EncodePayload() []byte { return []byte{m.Flag} }

// DeviceOut starts (1) or stops (0) the find-my-device beeper.
type DeviceOut struct{ Flag byte }

func (m DeviceOut) Proto() uint16         { return ProtoDevice }
func (m DeviceOut) EncodePayload() []byte { return []byte{m.Flag} }

// AlarmSlot is one of the three configurable alarm clock slots.
type AlarmSlot struct {
	Day  byte
	time [2]byte
}

// NewAlarmSlot validates the HHMM alarm time eagerly.
func NewAlarmSlot(day byte, hhmm string) (AlarmSlot, error) {
	t, err := packHHMM(hhmm)
	if err != nil {
		return AlarmSlot{}, err
	}
	return AlarmSlot{Day: day, time: t}, nil
}

// AlarmClockOut programs the three alarm clock slots.
type AlarmClockOut struct{ Slots [3]AlarmSlot }

func (m AlarmClockOut) Proto() uint16 { return ProtoAlarmClock }

func (m AlarmClockOut) EncodePayload() []byte {
	var p []byte
	for _, s := range m.Slots {
		p = append(p, s.Day)
		p = append(p, s.time[:]...)
	}
	return p
}

// SetupOut is the bundled device configuration blob.
type SetupOut struct {
	uploadIntervalSeconds uint16
	binarySwitch          byte
	alarms                [3]uint32
	dndTimeSwitch         byte
	dndTimes              [3]uint32
	gpsTimeSwitch         byte
	gpsTimeStart          uint16
	gpsTimeStop           uint16
	phoneNumbers          [3]string
}

// SetupParams are the named construction parameters of SetupOut, all
// of which have working defaults.
type SetupParams struct {
	UploadIntervalSeconds uint16
	BinarySwitch          byte
	Alarms                [3]uint32 // 24-bit packed day+HHMM values
	DNDTimeSwitch         byte
	DNDTimes              [3]uint32
	GPSTimeSwitch         byte
	GPSTimeStart          uint16
	GPSTimeStop           uint16
	PhoneNumbers          []string // at most 3, digits only
}

// DefaultSetupParams mirrors the configuration real deployments start from.
func DefaultSetupParams() SetupParams {
	return SetupParams{
		UploadIntervalSeconds: 0x0300,
		BinarySwitch:          0b00110001,
	}
}

// NewSetup validates the parameter bundle eagerly: alarm and DND
// values must fit 24 bits, at most three phone numbers, digits only.
func NewSetup(p SetupParams) (SetupOut, error) {
	var m SetupOut
	for i, v := range p.Alarms {
		if v > 0xFFFFFF {
			return m, fmt.Errorf("alarm %d does not fit 3 bytes: %#x", i, v)
		}
	}
	for i, v := range p.DNDTimes {
		if v > 0xFFFFFF {
			return m, fmt.Errorf("dnd time %d does not fit 3 bytes: %#x", i, v)
		}
	}
	if len(p.PhoneNumbers) > 3 {
		return m, fmt.Errorf("at most 3 phone numbers, got %d", len(p.PhoneNumbers))
	}
	for i, ph := range p.PhoneNumbers {
		if err := checkPhone(ph); err != nil {
			return m, err
		}
		m.phoneNumbers[i] = ph
	}
	m.uploadIntervalSeconds = p.UploadIntervalSeconds
	m.binarySwitch = p.BinarySwitch
	m.alarms = p.Alarms
	m.dndTimeSwitch = p.DNDTimeSwitch
	m.dndTimes = p.DNDTimes
	m.gpsTimeSwitch = p.GPSTimeSwitch
	m.gpsTimeStart = p.GPSTimeStart
	m.gpsTimeStop = p.GPSTimeStop
	return m, nil
}

func (m SetupOut) Proto() uint16 { return ProtoSetup }

func (m SetupOut) EncodePayload() []byte {
	p := packU16(m.uploadIntervalSeconds)
	p = append(p, m.binarySwitch)
	for _, v := range m.alarms {
		p = append(p, pack3b(v)...)
	}
	p = append(p, m.dndTimeSwitch)
	for _, v := range m.dndTimes {
		p = append(p, pack3b(v)...)
	}
	p = append(p, m.gpsTimeSwitch)
	p = append(p, packU16(m.gpsTimeStart)...)
	p = append(p, packU16(m.gpsTimeStop)...)
	for i, ph := range m.phoneNumbers {
		if i > 0 {
			p = append(p, ';')
		}
		p = append(p, ph...)
	}
	return p
}

// WifiPositioningOut answers a WIFI_POSITIONING request with resolved
// coordinates as an ASCII "lat,lon" pair, or an empty payload when the
// lookup failed.
type WifiPositioningOut struct {
	resolved bool
	lat, lon float64
}

// NewWifiPositioningResult carries resolved coordinates back to the device.
func NewWifiPositioningResult(lat, lon float64) WifiPositioningOut {
	return WifiPositioningOut{resolved: true, lat: lat, lon: lon}
}

// NewWifiPositioningEmpty is the reply when resolution failed.
func NewWifiPositioningEmpty() WifiPositioningOut {
	return WifiPositioningOut{}
}

func (m WifiPositioningOut) Proto() uint16 { return ProtoWifiPositioning }

func (m WifiPositioningOut) EncodePayload() []byte {
	if !m.resolved {
		return nil
	}
	return []byte(fmt.Sprintf("%+.8g,%+.8g", m.lat, m.lon))
}

// ManualPositioningOut acknowledges a manual positioning request.
type ManualPositioningOut struct{}

func (ManualPositioningOut) Proto() uint16         { return ProtoManualPositioning }
func (ManualPositioningOut) EncodePayload() []byte { return nil }

// PositionUploadIntervalOut sets the position upload interval in seconds.
type PositionUploadIntervalOut struct{ Interval uint16 }

func (m PositionUploadIntervalOut) Proto() uint16         { return ProtoPositionUploadInterval }
func (m PositionUploadIntervalOut) EncodePayload() []byte { return packU16(m.Interval) }

func boolByte(b bool) byte {
	if b {
		return 1
	}
	return 0
}

var _ = []Outbound{
	SupervisionOut{}, StatusOut{}, HibernationOut{}, ResetOut{},
	WhitelistTotalOut{}, ProhibitLBSOut{}, GPSLBSSwitchTimesOut{},
	PhoneOut{}, StopUploadOut{}, GPSOffPeriodOut{}, DNDPeriodOut{},
	RestartShutdownOut{}, DeviceOut{}, AlarmClockOut{}, SetupOut{},
	WifiPositioningOut{}, ManualPositioningOut{}, PositionUploadIntervalOut{},
}
