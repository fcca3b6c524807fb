//go:build !linux

package rawudp

import "net"

// PacketSocket is unavailable outside Linux.
type PacketSocket struct{}

func OpenPacketSocket() (*PacketSocket, error) {
	return nil, ErrUnsupported
}

func (s *PacketSocket) SendFrame(frame []byte, ifindex int, dst net.HardwareAddr, ethertype uint16) (int, error) {
	return 0, ErrUnsupported
}

func (s *PacketSocket) Close() error { return nil }
