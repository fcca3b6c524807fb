package protocol

import (
	"encoding/binary"
	"fmt"
	"net"

	"mactelnet-go/pkg/protocol/spec"
)

const (
	HeaderSize = 22
	Version    = 1
)

// ClientType is the tag a MAC-Telnet peer puts next to the session key.
const ClientType uint16 = 0x0015

// Direction names the role that produced a frame. The two roles swap the
// session key and client type fields.
type Direction uint8

const (
	FromClient Direction = iota
	FromServer
)

func (d Direction) String() string {
	if d == FromServer {
		return "from-server"
	}
	return "from-client"
}

// Opposite returns the direction of frames sent by the peer.
func (d Direction) Opposite() Direction {
	if d == FromServer {
		return FromClient
	}
	return FromServer
}

// offsets returns where the session key and the client type live.
func (d Direction) offsets() (key, client int) {
	if d == FromServer {
		return 16, 14
	}
	return 14, 16
}

// Header is a decoded view of a MAC-Telnet header. Payload aliases the
// buffer it was decoded from.
type Header struct {
	Version    uint8
	PacketType spec.PacketType
	SrcMAC     net.HardwareAddr
	DstMAC     net.HardwareAddr
	SessionKey uint16
	ClientType uint16
	Counter    uint32
	Payload    []byte
}

// EncodeHeader writes a header at the start of buf and returns HeaderSize.
func EncodeHeader(buf []byte, ptype spec.PacketType, src, dst net.HardwareAddr, sessionKey uint16, counter uint32, dir Direction) (int, error) {
	if len(buf) < HeaderSize {
		return 0, ErrInsufficientData
	}
	if len(src) != 6 || len(dst) != 6 {
		return 0, fmt.Errorf("%w: src=%s dst=%s", ErrInvalidAddress, src, dst)
	}

	buf[0] = Version
	buf[1] = byte(ptype)
	copy(buf[2:8], src)
	copy(buf[8:14], dst)

	keyOff, clientOff := dir.offsets()
	binary.BigEndian.PutUint16(buf[keyOff:], sessionKey)
	binary.BigEndian.PutUint16(buf[clientOff:], ClientType)

	binary.BigEndian.PutUint32(buf[18:22], counter)
	return HeaderSize, nil
}

// DecodeHeader parses the header at the start of data using the layout
// implied by dir.
func DecodeHeader(data []byte, dir Direction) (*Header, error) {
	if len(data) < HeaderSize {
		return nil, ErrInsufficientData
	}

	keyOff, clientOff := dir.offsets()
	h := &Header{
		Version:    data[0],
		PacketType: spec.PacketType(data[1]),
		SrcMAC:     net.HardwareAddr(data[2:8:8]),
		DstMAC:     net.HardwareAddr(data[8:14:14]),
		SessionKey: binary.BigEndian.Uint16(data[keyOff:]),
		ClientType: binary.BigEndian.Uint16(data[clientOff:]),
		Counter:    binary.BigEndian.Uint32(data[18:22]),
		Payload:    data[HeaderSize:],
	}
	return h, nil
}
