// Package rawudp assembles Ethernet+IPv4+UDP frames by hand and sends them
// on a link-layer socket, bypassing the host IP stack. MAC-Telnet uses it to
// reach peers that have no usable IP configuration.
package rawudp

import (
	"encoding/binary"
	"errors"
	"fmt"
	"net"

	"mactelnet-go/pkg/buffers"
)

const (
	EthHeaderSize  = 14
	IPv4HeaderSize = 20
	UDPHeaderSize  = 8

	// HeaderOverhead is the combined size of the three headers.
	HeaderOverhead = EthHeaderSize + IPv4HeaderSize + UDPHeaderSize

	// MaxPayloadSize is the largest payload fitting a single frame.
	MaxPayloadSize = buffers.FrameSize - HeaderOverhead
)

const (
	EthertypeIPv4 uint16 = 0x0800

	ipVersionIHL  = 0x45 // version 4, 5 words
	ipTOS         = 0x10 // low delay
	ipFlagDF      = 0x4000
	ipTTL         = 64
	ipProtocolUDP = 17
)

// BroadcastAddr is the Ethernet broadcast address.
var BroadcastAddr = net.HardwareAddr{0xff, 0xff, 0xff, 0xff, 0xff, 0xff}

var (
	ErrFrameTooLarge  = errors.New("rawudp: payload does not fit in one frame")
	ErrInvalidAddress = errors.New("rawudp: invalid address")
	ErrSend           = errors.New("rawudp: send failed")
	ErrUnsupported    = errors.New("rawudp: raw sockets unsupported on this platform")

	// ErrAllocation is returned when no frame buffer can be obtained.
	ErrAllocation = buffers.ErrAllocation
)

// Endpoints groups the link and network addresses of both ends of a frame.
type Endpoints struct {
	SrcMAC net.HardwareAddr
	DstMAC net.HardwareAddr
	Src    *net.UDPAddr
	Dst    *net.UDPAddr
}

func (e Endpoints) validate() (src, dst net.IP, err error) {
	if len(e.SrcMAC) != 6 || len(e.DstMAC) != 6 {
		return nil, nil, fmt.Errorf("%w: hardware addresses %s -> %s", ErrInvalidAddress, e.SrcMAC, e.DstMAC)
	}
	if e.Src == nil || e.Dst == nil {
		return nil, nil, fmt.Errorf("%w: missing UDP endpoint", ErrInvalidAddress)
	}
	src, dst = e.Src.IP.To4(), e.Dst.IP.To4()
	if src == nil || dst == nil {
		return nil, nil, fmt.Errorf("%w: %v -> %v is not IPv4", ErrInvalidAddress, e.Src.IP, e.Dst.IP)
	}
	if !validPort(e.Src.Port) || !validPort(e.Dst.Port) {
		return nil, nil, fmt.Errorf("%w: port %d -> %d", ErrInvalidAddress, e.Src.Port, e.Dst.Port)
	}
	return src, dst, nil
}

func validPort(p int) bool { return p >= 0 && p <= 0xffff }

// checkFrame validates a frame of payloadLen bytes against ep and a buffer
// of bufLen bytes, returning the frame length and the IPv4 addresses.
func checkFrame(bufLen int, ep Endpoints, payloadLen int) (int, net.IP, net.IP, error) {
	if payloadLen > MaxPayloadSize {
		return 0, nil, nil, fmt.Errorf("%w: %d > %d bytes", ErrFrameTooLarge, payloadLen, MaxPayloadSize)
	}
	total := HeaderOverhead + payloadLen
	if bufLen < total {
		return 0, nil, nil, fmt.Errorf("%w: buffer %d bytes, frame %d", ErrFrameTooLarge, bufLen, total)
	}
	srcIP, dstIP, err := ep.validate()
	if err != nil {
		return 0, nil, nil, err
	}
	return total, srcIP, dstIP, nil
}

// BuildFrame writes an Ethernet+IPv4+UDP frame carrying payload into buf
// and returns the frame length. id populates the IPv4 identification field.
func BuildFrame(buf []byte, ep Endpoints, id uint16, payload []byte) (int, error) {
	total, srcIP, dstIP, err := checkFrame(len(buf), ep, len(payload))
	if err != nil {
		return 0, err
	}

	// Ethernet
	copy(buf[0:6], ep.DstMAC)
	copy(buf[6:12], ep.SrcMAC)
	binary.BigEndian.PutUint16(buf[12:14], EthertypeIPv4)

	// IPv4
	ip := buf[EthHeaderSize : EthHeaderSize+IPv4HeaderSize]
	ip[0] = ipVersionIHL
	ip[1] = ipTOS
	binary.BigEndian.PutUint16(ip[2:4], uint16(IPv4HeaderSize+UDPHeaderSize+len(payload)))
	binary.BigEndian.PutUint16(ip[4:6], id)
	binary.BigEndian.PutUint16(ip[6:8], ipFlagDF)
	ip[8] = ipTTL
	ip[9] = ipProtocolUDP
	ip[10], ip[11] = 0, 0
	copy(ip[12:16], srcIP)
	copy(ip[16:20], dstIP)
	binary.BigEndian.PutUint16(ip[10:12], Checksum(ip))

	// UDP, checksum left at zero
	udp := buf[EthHeaderSize+IPv4HeaderSize : HeaderOverhead]
	binary.BigEndian.PutUint16(udp[0:2], uint16(ep.Src.Port))
	binary.BigEndian.PutUint16(udp[2:4], uint16(ep.Dst.Port))
	binary.BigEndian.PutUint16(udp[4:6], uint16(UDPHeaderSize+len(payload)))
	udp[6], udp[7] = 0, 0

	copy(buf[HeaderOverhead:], payload)
	return total, nil
}
