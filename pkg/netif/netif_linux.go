//go:build linux

package netif

import (
	"fmt"
	"net"

	"github.com/vishvananda/netlink"
)

// Lookup resolves name via netlink. A missing IPv4 address is not an error;
// IPv4 is left nil.
func Lookup(name string) (*Interface, error) {
	link, err := netlink.LinkByName(name)
	if err != nil {
		return nil, fmt.Errorf("failed to find interface %q: %w", name, err)
	}
	attrs := link.Attrs()

	addrs, err := netlink.AddrList(link, netlink.FAMILY_V4)
	if err != nil {
		return nil, fmt.Errorf("failed to list addresses of %q: %w", name, err)
	}

	return &Interface{
		Name:         attrs.Name,
		Index:        attrs.Index,
		HardwareAddr: attrs.HardwareAddr,
		MTU:          attrs.MTU,
		IPv4:         firstIPv4(addrs),
	}, nil
}

func firstIPv4(addrs []netlink.Addr) net.IP {
	for _, a := range addrs {
		if a.IPNet == nil {
			continue
		}
		if ip4 := a.IP.To4(); ip4 != nil {
			return ip4
		}
	}
	return nil
}
