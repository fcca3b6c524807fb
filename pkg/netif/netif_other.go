//go:build !linux

package netif

import (
	"errors"
	"fmt"
)

var errUnsupported = errors.New("netif: netlink lookup requires linux")

func Lookup(name string) (*Interface, error) {
	return nil, fmt.Errorf("failed to find interface %q: %w", name, errUnsupported)
}
