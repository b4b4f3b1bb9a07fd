// Package server accepts tracker connections and moves envelopes
// between the wire and the rest of the system. Each read is treated as
// one envelope: the protocol has no checksum and its length byte is
// overloaded, so stream resynchronization is not attempted.
package server

import (
	"context"
	"fmt"
	"io"
	"log"
	"net"
	"strings"
	"sync"
	"time"

	"zxtrack/internal/bus"
	"zxtrack/internal/cache"
	"zxtrack/internal/core/model"
	"zxtrack/internal/core/service"
	"zxtrack/internal/protocol/zx303"
)

type Collector struct {
	host     string
	port     string
	listener net.Listener
	events   service.EventService
	bus      *bus.Bus // nil when no broker is configured
	sessions *cache.Sessions

	mu     sync.Mutex
	byIMEI map[string]*client
}

type client struct {
	conn net.Conn
	imei string
	peer string
}

func NewCollector(host, port string, events service.EventService, b *bus.Bus, sessions *cache.Sessions) *Collector {
	return &Collector{
		host:     host,
		port:     port,
		events:   events,
		bus:      b,
		sessions: sessions,
		byIMEI:   make(map[string]*client),
	}
}

func (s *Collector) Start() error {
	var err error
	s.listener, err = net.Listen("tcp", net.JoinHostPort(s.host, s.port))
	if err != nil {
		return fmt.Errorf("failed to start collector: %v", err)
	}

	log.Printf("[collector] Listening on %s", s.listener.Addr())

	if s.bus != nil {
		if _, err := s.bus.SubscribeCommands(s.deliverCommand); err != nil {
			s.listener.Close()
			return fmt.Errorf("failed to subscribe for downlink commands: %v", err)
		}
	}

	go s.acceptConnections()
	return nil
}

func (s *Collector) Stop() {
	if s.listener != nil {
		s.listener.Close()
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, c := range s.byIMEI {
		c.conn.Close()
	}
}

func (s *Collector) acceptConnections() {
	for {
		conn, err := s.listener.Accept()
		if err != nil {
			if strings.Contains(err.Error(), "use of closed network connection") {
				return
			}
			log.Printf("[collector] Error accepting connection: %v", err)
			continue
		}

		go s.handleConnection(conn)
	}
}

func (s *Collector) handleConnection(conn net.Conn) {
	peer := conn.RemoteAddr().String()
	log.Printf("[collector] New connection from %s", peer)

	c := &client{conn: conn, peer: peer}
	defer s.dropClient(c)

	buffer := make([]byte, 4096)
	for {
		n, err := conn.Read(buffer)
		if err != nil {
			if err != io.EOF {
				log.Printf("[collector] Error reading from %s: %v", peer, err)
			}
			return
		}

		packet := make([]byte, n)
		copy(packet, buffer[:n])

		if done := s.handlePacket(c, packet); done {
			return
		}
	}
}

// handlePacket records, publishes and acknowledges one inbound
// envelope. It reports true when the device said goodbye and the
// connection should close.
func (s *Collector) handlePacket(c *client, packet []byte) bool {
	msg, err := zx303.Parse(packet)
	if err != nil {
		log.Printf("[collector] Decode problem from %s: %v", c.peer, err)
	}

	if c.imei == "" {
		if imei := zx303.IMEIFromPacket(packet); imei != "" {
			s.bindIMEI(c, imei)
		}
	}
	if c.imei != "" && s.sessions != nil {
		if err := s.sessions.Touch(context.Background(), c.imei); err != nil {
			log.Printf("[collector] Session touch for %s: %v", c.imei, err)
		}
	}

	when := time.Now().UTC()
	if _, err := s.events.Record(when, c.imei, c.peer, true, packet); err != nil {
		log.Printf("[collector] Recording uplink from %s: %v", c.peer, err)
	}
	s.publish(true, msg.Proto(), msg.Name(), c, when, packet)

	if ack := zx303.InlineResponse(packet); ack != nil {
		if err := s.writeDownlink(c, ack); err != nil {
			log.Printf("[collector] Writing ack to %s: %v", c.peer, err)
			return true
		}
	}

	if zx303.IsGoodbye(packet) {
		log.Printf("[collector] Device %s hibernating, closing %s", c.imei, c.peer)
		return true
	}
	return false
}

// bindIMEI associates the connection with the device that logged in.
// A second login for the same IMEI replaces the first connection; the
// stale one is closed so its reader exits.
func (s *Collector) bindIMEI(c *client, imei string) {
	s.mu.Lock()
	old := s.byIMEI[imei]
	s.byIMEI[imei] = c
	c.imei = imei
	s.mu.Unlock()

	if old != nil && old.conn != c.conn {
		log.Printf("[collector] Device %s reconnected from %s, dropping %s", imei, c.peer, old.peer)
		old.conn.Close()
	}

	if s.sessions != nil {
		device := model.NewDevice(imei, c.peer, 0)
		if err := s.sessions.Register(context.Background(), device); err != nil {
			log.Printf("[collector] Session register for %s: %v", imei, err)
		}
	}
}

func (s *Collector) dropClient(c *client) {
	c.conn.Close()

	if c.imei == "" {
		return
	}
	s.mu.Lock()
	// Only forget the binding if it still points at this connection.
	if s.byIMEI[c.imei] == c {
		delete(s.byIMEI, c.imei)
		s.mu.Unlock()
		if s.sessions != nil {
			if err := s.sessions.Remove(context.Background(), c.imei); err != nil {
				log.Printf("[collector] Session remove for %s: %v", c.imei, err)
			}
		}
		return
	}
	s.mu.Unlock()
}

// deliverCommand writes a queued downlink packet to the device's live
// connection, if any.
func (s *Collector) deliverCommand(cmd bus.Command) {
	s.mu.Lock()
	c := s.byIMEI[cmd.IMEI]
	s.mu.Unlock()

	if c == nil {
		log.Printf("[collector] Device %s not connected, dropping %d byte command", cmd.IMEI, len(cmd.Packet))
		return
	}
	if err := s.writeDownlink(c, cmd.Packet); err != nil {
		log.Printf("[collector] Writing command to %s: %v", cmd.IMEI, err)
	}
}

// writeDownlink sends one outbound envelope and records it the same
// way as inbound traffic, so the event log holds both directions.
func (s *Collector) writeDownlink(c *client, packet []byte) error {
	if _, err := c.conn.Write(packet); err != nil {
		return err
	}

	when := time.Now().UTC()
	if _, err := s.events.Record(when, c.imei, c.peer, false, packet); err != nil {
		log.Printf("[collector] Recording downlink to %s: %v", c.peer, err)
	}
	kind := zx303.Lookup(zx303.ProtoOfPacket(packet))
	s.publish(false, kind.Proto, kind.Name, c, when, packet)
	return nil
}

func (s *Collector) publish(incoming bool, proto uint16, kind string, c *client, when time.Time, packet []byte) {
	if s.bus == nil {
		return
	}
	err := s.bus.Publish(bus.Envelope{
		IsIncoming: incoming,
		Proto:      proto,
		Kind:       kind,
		IMEI:       c.imei,
		When:       when,
		PeerAddr:   c.peer,
		Packet:     packet,
	})
	if err != nil {
		log.Printf("[collector] Publishing %s exchange: %v", kind, err)
	}
}
