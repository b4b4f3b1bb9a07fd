package service

import (
	"fmt"
	"strings"

	"zxtrack/internal/protocol/zx303"
)

// BuildCommand resolves a kind-name prefix to exactly one outbound
// kind and constructs its wire bytes from named parameters. Operator
// tooling uses this; every parameter has the kind's documented
// default. An ambiguous or unmatched prefix is reported with the
// candidate names so the caller can decide.
func BuildCommand(prefix string, params map[string]interface{}) ([]byte, error) {
	matches := zx303.KindsByPrefix(prefix)
	if len(matches) != 1 {
		names := make([]string, len(matches))
		for i, k := range matches {
			names[i] = k.Name
		}
		return nil, fmt.Errorf("prefix %q matches %d kinds [%s]", prefix, len(matches), strings.Join(names, ", "))
	}

	out, err := buildOutbound(matches[0], params)
	if err != nil {
		return nil, fmt.Errorf("building %s: %w", matches[0].Name, err)
	}
	return zx303.Serialize(out), nil
}

func buildOutbound(kind *zx303.Kind, p map[string]interface{}) (zx303.Outbound, error) {
	switch kind.Proto {
	case zx303.ProtoSupervision:
		return zx303.SupervisionOut{Status: byteParam(p, "status", 0)}, nil
	case zx303.ProtoStatus:
		return zx303.StatusOut{UploadInterval: byteParam(p, "uploadInterval", zx303.DefaultUploadInterval)}, nil
	case zx303.ProtoHibernation:
		return zx303.HibernationOut{}, nil
	case zx303.ProtoReset:
		return zx303.ResetOut{}, nil
	case zx303.ProtoWhitelistTotal:
		return zx303.WhitelistTotalOut{Number: byteParam(p, "number", 3)}, nil
	case zx303.ProtoProhibitLBS:
		return zx303.ProhibitLBSOut{Status: byteParam(p, "status", 1)}, nil
	case zx303.ProtoGPSLBSSwitchTimes:
		return zx303.NewGPSLBSSwitchTimes(
			boolParam(p, "gpsOn", true),
			boolParam(p, "setUploadPeriod", false),
			stringParam(p, "uploadFrom", "0000"),
			stringParam(p, "uploadTo", "2359"),
			boolParam(p, "lbsOn", true),
			boolParam(p, "setBootTime", false),
			stringParam(p, "bootTime", "0000"),
			boolParam(p, "setShutdownTime", false),
			stringParam(p, "shutdownTime", "0000"),
		)
	case zx303.ProtoRemoteMonitorPhone:
		return zx303.NewRemoteMonitorPhone(stringParam(p, "phone", ""))
	case zx303.ProtoSOSPhone:
		return zx303.NewSOSPhone(stringParam(p, "phone", ""))
	case zx303.ProtoDadPhone:
		return zx303.NewDadPhone(stringParam(p, "phone", ""))
	case zx303.ProtoMomPhone:
		return zx303.NewMomPhone(stringParam(p, "phone", ""))
	case zx303.ProtoStopUpload:
		return zx303.StopUploadOut{}, nil
	case zx303.ProtoGPSOffPeriod:
		return zx303.NewGPSOffPeriod(
			boolParam(p, "on", false),
			stringParam(p, "from", "0000"),
			stringParam(p, "to", "2359"),
		)
	case zx303.ProtoDNDPeriod:
		return zx303.NewDNDPeriod(
			boolParam(p, "on", false),
			byteParam(p, "week", 3),
			stringParam(p, "from1", "0000"),
			stringParam(p, "to1", "2359"),
			stringParam(p, "from2", "0000"),
			stringParam(p, "to2", "2359"),
		)
	case zx303.ProtoRestartShutdown:
		return zx303.RestartShutdownOut{Flag: byteParam(p, "flag", 0)}, nil
	case zx303.ProtoDevice:
		return zx303.DeviceOut{Flag: byteParam(p, "flag", 0)}, nil
	case zx303.ProtoAlarmClock:
		var out zx303.AlarmClockOut
		for i := range out.Slots {
			day := byteParam(p, fmt.Sprintf("day%d", i+1), 0)
			hhmm := stringParam(p, fmt.Sprintf("time%d", i+1), "0000")
			slot, err := zx303.NewAlarmSlot(day, hhmm)
			if err != nil {
				return nil, err
			}
			out.Slots[i] = slot
		}
		return out, nil
	case zx303.ProtoSetup:
		setup := zx303.DefaultSetupParams()
		setup.UploadIntervalSeconds = u16Param(p, "uploadIntervalSeconds", setup.UploadIntervalSeconds)
		setup.BinarySwitch = byteParam(p, "binarySwitch", setup.BinarySwitch)
		setup.PhoneNumbers = stringsParam(p, "phoneNumbers")
		return zx303.NewSetup(setup)
	case zx303.ProtoWifiPositioning:
		lat, latOK := floatParam(p, "latitude")
		lon, lonOK := floatParam(p, "longitude")
		if latOK && lonOK {
			return zx303.NewWifiPositioningResult(lat, lon), nil
		}
		return zx303.NewWifiPositioningEmpty(), nil
	case zx303.ProtoManualPositioning:
		return zx303.ManualPositioningOut{}, nil
	case zx303.ProtoPositionUploadInterval:
		return zx303.PositionUploadIntervalOut{Interval: u16Param(p, "interval", 10)}, nil
	}
	return nil, fmt.Errorf("kind has no outbound construction")
}

// Parameters arrive from JSON, so numbers come in as float64.

func byteParam(p map[string]interface{}, key string, def byte) byte {
	if v, ok := p[key].(float64); ok {
		return byte(v)
	}
	return def
}

func u16Param(p map[string]interface{}, key string, def uint16) uint16 {
	if v, ok := p[key].(float64); ok {
		return uint16(v)
	}
	return def
}

func floatParam(p map[string]interface{}, key string) (float64, bool) {
	v, ok := p[key].(float64)
	return v, ok
}

func boolParam(p map[string]interface{}, key string, def bool) bool {
	if v, ok := p[key].(bool); ok {
		return v
	}
	return def
}

func stringParam(p map[string]interface{}, key, def string) string {
	if v, ok := p[key].(string); ok {
		return v
	}
	return def
}

func stringsParam(p map[string]interface{}, key string) []string {
	raw, ok := p[key].([]interface{})
	if !ok {
		return nil
	}
	out := make([]string, 0, len(raw))
	for _, el := range raw {
		if s, ok := el.(string); ok {
			out = append(out, s)
		}
	}
	return out
}
