// Package bus distributes every decoded exchange to independent
// consumers over NATS. One subject per kind name lets subscribers
// filter by catalogue prefix without seeing unrelated traffic.
package bus

import (
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/nats-io/nats.go"

	"zxtrack/internal/protocol/zx303"
)

const (
	uplinkSubjectPrefix   = "zx303.uplink."
	downlinkSubjectPrefix = "zx303.downlink."
)

// Envelope is the broadcast form of one wire exchange. Subscribers on
// distinct connections may observe envelopes out of order.
type Envelope struct {
	IsIncoming bool      `json:"isIncoming"`
	Proto      uint16    `json:"proto"`
	Kind       string    `json:"kind"`
	IMEI       string    `json:"imei,omitempty"`
	When       time.Time `json:"when"`
	PeerAddr   string    `json:"peerAddr,omitempty"`
	Packet     []byte    `json:"packet"`
}

// Command asks the collector to deliver raw bytes to a connected device.
type Command struct {
	IMEI   string `json:"imei"`
	Packet []byte `json:"packet"`
}

type Bus struct {
	nc *nats.Conn
}

// Connect dials the NATS server.
func Connect(url string) (*Bus, error) {
	nc, err := nats.Connect(url, nats.Name("zxtrack"))
	if err != nil {
		return nil, fmt.Errorf("connecting to NATS at %s: %w", url, err)
	}
	return &Bus{nc: nc}, nil
}

func (b *Bus) Close() {
	if b.nc != nil {
		b.nc.Close()
	}
}

// Publish broadcasts one decoded exchange on its kind's subject.
func (b *Bus) Publish(env Envelope) error {
	data, err := json.Marshal(env)
	if err != nil {
		return err
	}
	return b.nc.Publish(uplinkSubjectPrefix+env.Kind, data)
}

// SubscribeKinds delivers envelopes for the named kinds to handler.
func (b *Bus) SubscribeKinds(kinds []string, handler func(Envelope)) ([]*nats.Subscription, error) {
	var subs []*nats.Subscription
	for _, kind := range kinds {
		sub, err := b.nc.Subscribe(uplinkSubjectPrefix+kind, func(msg *nats.Msg) {
			var env Envelope
			if err := json.Unmarshal(msg.Data, &env); err != nil {
				log.Printf("[bus] Dropping message on %s: %v", msg.Subject, err)
				return
			}
			handler(env)
		})
		if err != nil {
			for _, s := range subs {
				s.Unsubscribe()
			}
			return nil, err
		}
		subs = append(subs, sub)
	}
	return subs, nil
}

// SubscribePrefix resolves a kind-name prefix through the registry and
// subscribes to every matching kind, e.g. "GPS" for all GPS
// positioning variants.
func (b *Bus) SubscribePrefix(prefix string, handler func(Envelope)) ([]*nats.Subscription, error) {
	matches := zx303.KindsByPrefix(prefix)
	if len(matches) == 0 {
		return nil, fmt.Errorf("no kind matches prefix %q", prefix)
	}
	names := make([]string, len(matches))
	for i, k := range matches {
		names[i] = k.Name
	}
	return b.SubscribeKinds(names, handler)
}

// SendCommand queues raw bytes for delivery to a device.
func (b *Bus) SendCommand(cmd Command) error {
	data, err := json.Marshal(cmd)
	if err != nil {
		return err
	}
	return b.nc.Publish(downlinkSubjectPrefix+cmd.IMEI, data)
}

// SubscribeCommands delivers queued commands for any device to
// handler; the collector owns this subscription.
func (b *Bus) SubscribeCommands(handler func(Command)) (*nats.Subscription, error) {
	return b.nc.Subscribe(downlinkSubjectPrefix+"*", func(msg *nats.Msg) {
		var cmd Command
		if err := json.Unmarshal(msg.Data, &cmd); err != nil {
			log.Printf("[bus] Dropping command on %s: %v", msg.Subject, err)
			return
		}
		handler(cmd)
	})
}
