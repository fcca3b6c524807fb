// Package wire keeps the per-connection state both ends of a MAC-Telnet
// session must agree on, and frames outgoing packets with it.
package wire

import (
	"errors"
	"fmt"
	"io"
	"net"
	"sync"

	"mactelnet-go/pkg/log"
	"mactelnet-go/pkg/protocol"
	"mactelnet-go/pkg/protocol/spec"
)

var (
	ErrVersion        = errors.New("wire: unsupported protocol version")
	ErrForeignSession = errors.New("wire: packet belongs to another session")
)

// Record is one control record to append to an outgoing packet.
type Record struct {
	Type spec.ControlType
	Data []byte
}

// Plain wraps raw terminal bytes as a record.
func Plain(data []byte) Record {
	return Record{Type: spec.ControlPlainData, Data: data}
}

// Session holds the role, addresses, session key and outgoing byte counter
// of one connection. It is safe for concurrent use.
type Session struct {
	dir    protocol.Direction
	local  net.HardwareAddr
	remote net.HardwareAddr
	key    uint16

	mu      sync.Mutex
	counter uint32
}

// NewSession creates a session that sends frames in direction dir. A client
// passes protocol.FromClient, a server protocol.FromServer.
func NewSession(dir protocol.Direction, local, remote net.HardwareAddr, key uint16) *Session {
	return &Session{
		dir:    dir,
		local:  local,
		remote: remote,
		key:    key,
	}
}

func (s *Session) Direction() protocol.Direction { return s.dir }
func (s *Session) Key() uint16                   { return s.key }

// Counter returns the current outgoing counter.
func (s *Session) Counter() uint32 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.counter
}

// NewPacket returns a packet with the session header and the current counter.
func (s *Session) NewPacket(ptype spec.PacketType) (*protocol.Packet, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return protocol.NewPacket(ptype, s.local, s.remote, s.key, s.counter, s.dir)
}

// Send builds a packet from records and writes it to w. Data packets
// advance the counter by the bytes carried after the header.
func (s *Session) Send(w io.Writer, ptype spec.PacketType, records ...Record) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	pkt, err := protocol.NewPacket(ptype, s.local, s.remote, s.key, s.counter, s.dir)
	if err != nil {
		return 0, err
	}
	for _, r := range records {
		if _, err := pkt.AddControl(r.Type, r.Data); err != nil {
			return 0, fmt.Errorf("wire: %v record: %w", r.Type, err)
		}
	}

	n, err := w.Write(pkt.Bytes())
	if err != nil {
		return n, err
	}
	if ptype == spec.TypeData {
		s.counter += uint32(pkt.Len() - protocol.HeaderSize)
	}
	log.Debug().
		Str("type", ptype.String()).
		Uint16("session", s.key).
		Uint32("counter", s.counter).
		Int("bytes", n).
		Msg("sent packet")
	return n, nil
}

// Resume sets the outgoing counter, continuing a session at a known
// byte offset.
func (s *Session) Resume(counter uint32) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.counter = counter
}

// Parse decodes a packet sent by the peer and its control records.
func (s *Session) Parse(frame []byte) (*protocol.Header, []protocol.ControlRecord, error) {
	hdr, err := decodeFrame(frame, s.dir.Opposite())
	if err != nil {
		return nil, nil, err
	}
	if hdr.SessionKey != s.key {
		return nil, nil, fmt.Errorf("%w: key %d, expected %d", ErrForeignSession, hdr.SessionKey, s.key)
	}
	records, err := protocol.ParseRecords(hdr.Payload)
	if err != nil {
		return hdr, nil, err
	}
	return hdr, records, nil
}

// Accept opens a session from the first packet a peer sent. dir is the local
// role; the session key and both addresses are taken from the frame.
func Accept(dir protocol.Direction, frame []byte) (*Session, *protocol.Header, []protocol.ControlRecord, error) {
	hdr, err := decodeFrame(frame, dir.Opposite())
	if err != nil {
		return nil, nil, nil, err
	}
	local := append(net.HardwareAddr(nil), hdr.DstMAC...)
	remote := append(net.HardwareAddr(nil), hdr.SrcMAC...)
	s := NewSession(dir, local, remote, hdr.SessionKey)

	records, err := protocol.ParseRecords(hdr.Payload)
	if err != nil {
		return s, hdr, nil, err
	}
	return s, hdr, records, nil
}

func decodeFrame(frame []byte, dir protocol.Direction) (*protocol.Header, error) {
	hdr, err := protocol.DecodeHeader(frame, dir)
	if err != nil {
		return nil, err
	}
	if hdr.Version != protocol.Version {
		return nil, fmt.Errorf("%w: %d", ErrVersion, hdr.Version)
	}
	return hdr, nil
}
