package netif

import (
	"errors"
	"net"
	"testing"
)

func TestLookupMissing(t *testing.T) {
	if _, err := Lookup("mtf-does-not-exist0"); err == nil {
		t.Errorf("Expected error for unknown interface")
	}
}

func TestSourceIP(t *testing.T) {
	iface := &Interface{Name: "eth9"}
	if _, err := iface.SourceIP(); !errors.Is(err, ErrNoIPv4) {
		t.Errorf("Expected ErrNoIPv4, got %v", err)
	}
	iface.IPv4 = net.IPv4(10, 0, 0, 1).To4()
	if ip, err := iface.SourceIP(); err != nil || !ip.Equal(iface.IPv4) {
		t.Errorf("Unexpected SourceIP %v %v", ip, err)
	}
}
