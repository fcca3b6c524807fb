package protocol

import (
	"net"

	"mactelnet-go/pkg/protocol/spec"
)

// Packet is a fixed-capacity buffer for one outgoing packet. Writes are
// append-only and never grow it past MaxPacketSize. A Packet must not be
// mutated from more than one goroutine at a time.
type Packet struct {
	data [MaxPacketSize]byte
	size int
}

// NewPacket returns a packet holding only an encoded header.
func NewPacket(ptype spec.PacketType, src, dst net.HardwareAddr, sessionKey uint16, counter uint32, dir Direction) (*Packet, error) {
	p := &Packet{}
	if err := p.Init(ptype, src, dst, sessionKey, counter, dir); err != nil {
		return nil, err
	}
	return p, nil
}

// Init discards the packet contents and writes a fresh header.
func (p *Packet) Init(ptype spec.PacketType, src, dst net.HardwareAddr, sessionKey uint16, counter uint32, dir Direction) error {
	n, err := EncodeHeader(p.data[:], ptype, src, dst, sessionKey, counter, dir)
	if err != nil {
		return err
	}
	p.size = n
	return nil
}

// Len returns the number of bytes written so far.
func (p *Packet) Len() int { return p.size }

// Bytes returns the written portion of the packet. The slice aliases the
// packet buffer.
func (p *Packet) Bytes() []byte { return p.data[:p.size] }

// Remaining reports how many bytes can still be appended.
func (p *Packet) Remaining() int { return MaxPacketSize - p.size }

// Reset empties the packet.
func (p *Packet) Reset() { p.size = 0 }
