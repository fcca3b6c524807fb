// Package protocol implements the MAC-Telnet wire framing: the fixed 22-byte
// header carried in every frame and the control records multiplexed in the
// data region that follows it.
package protocol

import "errors"

const (
	// MaxPacketSize is the largest packet a frame may carry.
	MaxPacketSize = 1500

	// Port is the UDP port MAC-Telnet peers use on the broadcast transport.
	Port = 20561
)

var (
	// ErrInsufficientData is returned when a buffer is shorter than the
	// fixed-size structure being read or written.
	ErrInsufficientData = errors.New("protocol: insufficient data")

	// ErrOverflow is returned when appending a record would grow the packet
	// past MaxPacketSize. The packet is left untouched.
	ErrOverflow = errors.New("protocol: packet exceeds maximum size")

	// ErrInvalidLength is returned for negative lengths and for record
	// lengths that run past the end of the input.
	ErrInvalidLength = errors.New("protocol: invalid length")

	ErrInvalidAddress = errors.New("protocol: invalid hardware address")
)
