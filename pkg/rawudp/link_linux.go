//go:build linux

package rawudp

import (
	"fmt"
	"net"

	"golang.org/x/sys/unix"
)

// htons converts a 16-bit integer from host to network byte order.
func htons(i uint16) uint16 {
	return (i<<8)&0xff00 | i>>8
}

// PacketSocket is an AF_PACKET raw socket. Frames written to it must carry
// their own Ethernet header.
type PacketSocket struct {
	fd int
}

// OpenPacketSocket opens a raw link-layer socket. It needs CAP_NET_RAW.
func OpenPacketSocket() (*PacketSocket, error) {
	fd, err := unix.Socket(unix.AF_PACKET, unix.SOCK_RAW, int(htons(unix.ETH_P_IP)))
	if err != nil {
		return nil, fmt.Errorf("linux: failed to open raw socket (AF_PACKET): %w", err)
	}
	return &PacketSocket{fd: fd}, nil
}

// SendFrame sends frame on interface ifindex to dst.
func (s *PacketSocket) SendFrame(frame []byte, ifindex int, dst net.HardwareAddr, ethertype uint16) (int, error) {
	if len(dst) != 6 {
		return 0, fmt.Errorf("%w: destination %s", ErrInvalidAddress, dst)
	}
	sll := &unix.SockaddrLinklayer{
		Protocol: htons(ethertype),
		Ifindex:  ifindex,
		Hatype:   unix.ARPHRD_ETHER,
		Pkttype:  unix.PACKET_OTHERHOST,
		Halen:    6,
	}
	copy(sll.Addr[:], dst)

	n, err := unix.SendmsgN(s.fd, frame, nil, sll, 0)
	if err != nil {
		return n, fmt.Errorf("linux: sendmsg on ifindex %d: %w", ifindex, err)
	}
	return n, nil
}

func (s *PacketSocket) Close() error {
	return unix.Close(s.fd)
}
