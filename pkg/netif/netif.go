// Package netif resolves the link index and addresses of a local interface,
// which the raw frame transport needs to address frames.
package netif

import (
	"errors"
	"fmt"
	"net"
)

var ErrNoIPv4 = errors.New("netif: interface has no IPv4 address")

// Interface describes a local network interface.
type Interface struct {
	Name         string
	Index        int
	HardwareAddr net.HardwareAddr
	MTU          int
	IPv4         net.IP
}

// SourceIP returns the interface IPv4 address, or ErrNoIPv4.
func (i *Interface) SourceIP() (net.IP, error) {
	if i.IPv4 == nil {
		return nil, fmt.Errorf("%w: %s", ErrNoIPv4, i.Name)
	}
	return i.IPv4, nil
}
