package service

import (
	"context"
	"log"
	"time"

	"zxtrack/internal/bus"
	"zxtrack/internal/core/model"
	"zxtrack/internal/core/repository"
	"zxtrack/internal/geoloc"
	"zxtrack/internal/protocol/zx303"
)

// RectifierService turns every positioning message into a
// protocol-agnostic coordinate report. GPS fixes are stored directly;
// Wi-Fi/GSM scans go through the geolocation resolver first, and
// WIFI_POSITIONING requests additionally get their answer sent back to
// the device.
type RectifierService struct {
	resolver   geoloc.Resolver
	reportRepo repository.ReportRepository
	bus        *bus.Bus
}

func NewRectifierService(resolver geoloc.Resolver, reportRepo repository.ReportRepository, b *bus.Bus) *RectifierService {
	return &RectifierService{resolver: resolver, reportRepo: reportRepo, bus: b}
}

// Run subscribes to all positioning kinds. It returns after
// subscribing; delivery is asynchronous.
func (s *RectifierService) Run() error {
	kinds := []string{
		"GPS_POSITIONING", "GPS_OFFLINE_POSITIONING",
		"WIFI_POSITIONING", "WIFI_OFFLINE_POSITIONING",
	}
	_, err := s.bus.SubscribeKinds(kinds, func(env bus.Envelope) {
		if !env.IsIncoming {
			return
		}
		ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		if err := s.HandleEnvelope(ctx, env); err != nil {
			log.Printf("[rectifier] %s from %s: %v", env.Kind, env.IMEI, err)
		}
	})
	return err
}

// HandleEnvelope processes one broadcast positioning message.
func (s *RectifierService) HandleEnvelope(ctx context.Context, env bus.Envelope) error {
	msg, err := zx303.Parse(env.Packet)
	if err != nil {
		return err
	}
	switch m := msg.(type) {
	case *zx303.GPSPositioning:
		report := model.NewReport(env.IMEI, m.Fix.DevTime, m.Fix.Latitude, m.Fix.Longitude, m.Name())
		report.Speed = float64(m.Fix.Speed)
		report.Heading = float64(m.Fix.Heading)
		report.Valid = m.Fix.Valid
		return s.reportRepo.Store(report)
	case *zx303.WifiPositioning:
		return s.rectifyScan(ctx, env, m)
	}
	return nil
}

func (s *RectifierService) rectifyScan(ctx context.Context, env bus.Envelope, m *zx303.WifiPositioning) error {
	needsAnswer := m.Proto() == zx303.ProtoWifiPositioning
	result, err := s.resolver.Resolve(ctx, m.MCC, m.MNC, m.GsmCells, m.WifiAPs)
	if err != nil {
		// The device still expects a reply; an empty payload tells it
		// the lookup failed.
		if needsAnswer && env.IMEI != "" {
			s.sendReply(env.IMEI, zx303.NewWifiPositioningEmpty())
		}
		return err
	}
	if needsAnswer && env.IMEI != "" {
		s.sendReply(env.IMEI, zx303.NewWifiPositioningResult(result.Latitude, result.Longitude))
	}
	report := model.NewReport(env.IMEI, m.DevTime, result.Latitude, result.Longitude, m.Name())
	report.Accuracy = result.Accuracy
	return s.reportRepo.Store(report)
}

func (s *RectifierService) sendReply(imei string, out zx303.Outbound) {
	if err := s.bus.SendCommand(bus.Command{IMEI: imei, Packet: zx303.Serialize(out)}); err != nil {
		log.Printf("[rectifier] Queueing reply for %s: %v", imei, err)
	}
}
