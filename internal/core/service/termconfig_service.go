package service

import (
	"fmt"
	"log"

	"zxtrack/internal/bus"
	"zxtrack/internal/protocol/zx303"
)

// TermConfig holds the per-deployment values used to answer the kinds
// whose response depends on server configuration.
type TermConfig struct {
	StatusIntervalMinutes byte
	UploadIntervalSeconds uint16
	Setup                 zx303.SetupParams
}

// DefaultTermConfig matches what an unconfigured deployment answers.
func DefaultTermConfig() TermConfig {
	return TermConfig{
		StatusIntervalMinutes: zx303.DefaultUploadInterval,
		UploadIntervalSeconds: 10,
		Setup:                 zx303.DefaultSetupParams(),
	}
}

// TermConfigService answers the externally-responded configuration
// kinds: STATUS, SETUP and POSITION_UPLOAD_INTERVAL. It listens on the
// broadcast bus and queues each reply for the collector to deliver.
type TermConfigService struct {
	conf TermConfig
	bus  *bus.Bus
}

func NewTermConfigService(conf TermConfig, b *bus.Bus) *TermConfigService {
	return &TermConfigService{conf: conf, bus: b}
}

// Response builds the configured reply for one decoded message, or an
// error when the kind does not take an external configuration reply.
func (s *TermConfigService) Response(msg zx303.Message) (zx303.Outbound, error) {
	if msg.Kind().Respond != zx303.RespondExt {
		return nil, fmt.Errorf("kind %s does not expect an externally provided response", msg.Name())
	}
	switch msg.Proto() {
	case zx303.ProtoStatus:
		return zx303.StatusOut{UploadInterval: s.conf.StatusIntervalMinutes}, nil
	case zx303.ProtoSetup:
		return zx303.NewSetup(s.conf.Setup)
	case zx303.ProtoPositionUploadInterval:
		return zx303.PositionUploadIntervalOut{Interval: s.conf.UploadIntervalSeconds}, nil
	}
	return nil, fmt.Errorf("no configured response for kind %s", msg.Name())
}

// Run subscribes to the configuration kinds and answers each inbound
// message. It returns after subscribing; delivery is asynchronous.
func (s *TermConfigService) Run() error {
	kinds := []string{"STATUS", "SETUP", "POSITION_UPLOAD_INTERVAL"}
	_, err := s.bus.SubscribeKinds(kinds, func(env bus.Envelope) {
		if !env.IsIncoming || env.IMEI == "" {
			return
		}
		msg, err := zx303.Parse(env.Packet)
		if err != nil {
			log.Printf("[termconfig] Undecodable %s from %s: %v", env.Kind, env.IMEI, err)
			return
		}
		out, err := s.Response(msg)
		if err != nil {
			log.Printf("[termconfig] %v", err)
			return
		}
		if err := s.bus.SendCommand(bus.Command{IMEI: env.IMEI, Packet: zx303.Serialize(out)}); err != nil {
			log.Printf("[termconfig] Queueing reply for %s: %v", env.IMEI, err)
		}
	})
	return err
}
