package rawudp

import (
	"fmt"
	"net"
	"sync/atomic"

	"mactelnet-go/pkg/buffers"
	"mactelnet-go/pkg/log"
)

// Link transmits a complete Ethernet frame on the interface with the given
// index, addressed to dst at the link layer.
type Link interface {
	SendFrame(frame []byte, ifindex int, dst net.HardwareAddr, ethertype uint16) (int, error)
}

// Builder wraps payloads in IPv4/UDP frames and sends them through a Link.
// It is safe for concurrent use; every frame gets its own IPv4
// identification value.
type Builder struct {
	link    Link
	ifindex int
	alloc   buffers.Allocator
	ipID    atomic.Uint32
}

// Option configures a Builder.
type Option func(*Builder)

// WithAllocator replaces the frame buffer allocator.
func WithAllocator(a buffers.Allocator) Option {
	return func(b *Builder) { b.alloc = a }
}

// NewBuilder returns a Builder sending on the interface ifindex.
func NewBuilder(link Link, ifindex int, opts ...Option) *Builder {
	b := &Builder{
		link:    link,
		ifindex: ifindex,
		alloc:   buffers.FramePool,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// nextID returns the identification for the next frame, starting at 1.
// Frames rejected before sending do not consume one.
func (b *Builder) nextID() uint16 {
	return uint16(b.ipID.Add(1))
}

// Send builds one frame from srcMAC/src to dstMAC/dst carrying payload and
// transmits it. It returns the number of payload bytes sent.
func (b *Builder) Send(srcMAC, dstMAC net.HardwareAddr, src, dst *net.UDPAddr, payload []byte) (int, error) {
	buf, err := b.alloc.Get()
	if err != nil {
		return 0, fmt.Errorf("rawudp: frame buffer: %w", err)
	}
	defer b.alloc.Put(buf)

	ep := Endpoints{SrcMAC: srcMAC, DstMAC: dstMAC, Src: src, Dst: dst}
	if _, _, _, err := checkFrame(len(buf), ep, len(payload)); err != nil {
		return 0, err
	}
	// Only frames that will be handed to the link consume an identification.
	id := b.nextID()
	n, err := BuildFrame(buf, ep, id, payload)
	if err != nil {
		return 0, err
	}

	sent, err := b.link.SendFrame(buf[:n], b.ifindex, dstMAC, EthertypeIPv4)
	if err != nil {
		return 0, fmt.Errorf("%w: %s via ifindex %d: %v", ErrSend, dstMAC, b.ifindex, err)
	}
	log.Debug().
		Uint16("ip_id", id).
		Str("dst_mac", dstMAC.String()).
		Str("dst", dst.String()).
		Int("bytes", sent).
		Msg("sent raw udp frame")

	return max(sent-HeaderOverhead, 0), nil
}
