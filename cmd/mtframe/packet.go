package main

import (
	"encoding/hex"
	"fmt"
	"net"
	"strconv"
	"strings"

	"github.com/urfave/cli/v2"

	"mactelnet-go/pkg/appdir"
	"mactelnet-go/pkg/config"
	"mactelnet-go/pkg/log"
	"mactelnet-go/pkg/netif"
	"mactelnet-go/pkg/protocol"
	"mactelnet-go/pkg/protocol/spec"
	"mactelnet-go/pkg/wire"
)

// packetFlags are shared by the commands that build a packet.
var packetFlags = []cli.Flag{
	&cli.UintFlag{Name: "type", Usage: "Packet `TYPE` number", Value: uint(spec.TypeData)},
	&cli.UintFlag{Name: "key", Usage: "Session `KEY` (overrides config)"},
	&cli.Uint64Flag{Name: "counter", Usage: "Byte `COUNTER` carried in the header"},
	&cli.StringFlag{Name: "src-mac", Usage: "Source hardware `ADDR` (defaults to the interface address)"},
	&cli.StringFlag{Name: "dst-mac", Usage: "Destination hardware `ADDR`"},
	&cli.StringFlag{Name: "direction", Usage: "Sending role: client or server"},
	&cli.StringFlag{Name: "interface", Aliases: []string{"i"}, Usage: "Network interface `NAME`"},
	&cli.StringSliceFlag{Name: "record", Aliases: []string{"r"}, Usage: "Control record `TYPE:HEX`, repeatable"},
	&cli.StringFlag{Name: "plain", Usage: "Plain terminal `TEXT` appended after the records"},
}

type packetTarget struct {
	settings *config.Settings
	iface    *netif.Interface // nil when not needed
	session  *wire.Session
	packet   *protocol.Packet
}

// mergeFlags applies command line overrides to the loaded configuration.
func mergeFlags(c *cli.Context, cfg *config.Config) *config.Config {
	merged := *cfg
	if c.IsSet("interface") {
		merged.Interface = c.String("interface")
	}
	if c.IsSet("src-mac") {
		merged.SourceMAC = c.String("src-mac")
	}
	if c.IsSet("dst-mac") {
		merged.DestMAC = c.String("dst-mac")
	}
	if c.IsSet("direction") {
		merged.Direction = c.String("direction")
	}
	if c.IsSet("key") {
		merged.SessionKey = uint16(c.Uint("key"))
	}
	return &merged
}

// buildPacket assembles the packet described by the flags. The interface is
// looked up when needInterface is set or no source MAC is configured.
func buildPacket(c *cli.Context, needInterface bool) (*packetTarget, *config.Config, error) {
	cfg := mergeFlags(c, loadedConfig(c))
	settings, err := cfg.Parse()
	if err != nil {
		return nil, nil, err
	}
	t := &packetTarget{settings: settings}

	if needInterface || settings.SrcMAC == nil {
		iface, err := netif.Lookup(cfg.Interface)
		if err != nil {
			return nil, nil, err
		}
		t.iface = iface
		if settings.SrcMAC == nil {
			settings.SrcMAC = iface.HardwareAddr
		}
	}

	ptype := c.Uint("type")
	if ptype > 0xff {
		return nil, nil, fmt.Errorf("packet type %d out of range", ptype)
	}
	counter := c.Uint64("counter")
	if counter > 0xffffffff {
		return nil, nil, fmt.Errorf("counter %d out of range", counter)
	}
	t.session = wire.NewSession(settings.Direction, settings.SrcMAC, settings.DstMAC, cfg.SessionKey)
	t.session.Resume(uint32(counter))
	t.packet, err = t.session.NewPacket(spec.PacketType(ptype))
	if err != nil {
		return nil, nil, err
	}

	for _, r := range c.StringSlice("record") {
		cptype, data, err := parseRecordFlag(r)
		if err != nil {
			return nil, nil, err
		}
		if _, err := t.packet.AddControl(cptype, data); err != nil {
			return nil, nil, err
		}
	}
	if plain := c.String("plain"); plain != "" {
		if _, err := t.packet.AddControl(spec.ControlPlainData, []byte(plain)); err != nil {
			return nil, nil, err
		}
	}
	return t, cfg, nil
}

// parseRecordFlag parses "TYPE:HEX" where TYPE is a number or a control
// type name such as "username".
func parseRecordFlag(s string) (spec.ControlType, []byte, error) {
	name, value, _ := strings.Cut(s, ":")
	cptype, err := parseControlType(name)
	if err != nil {
		return 0, nil, err
	}
	data, err := hex.DecodeString(value)
	if err != nil {
		return 0, nil, fmt.Errorf("record %q: %w", s, err)
	}
	return cptype, data, nil
}

func parseControlType(s string) (spec.ControlType, error) {
	if n, err := strconv.ParseUint(s, 0, 8); err == nil {
		return spec.ControlType(n), nil
	}
	for i := 0; i <= 0xff; i++ {
		ct := spec.ControlType(i)
		if name := ct.String(); name != "Unknown" && strings.EqualFold(name, s) {
			return ct, nil
		}
	}
	return 0, fmt.Errorf("unknown control type %q", s)
}

func parseDirection(s string) (protocol.Direction, error) {
	switch strings.ToLower(s) {
	case "client", "from-client":
		return protocol.FromClient, nil
	case "server", "from-server":
		return protocol.FromServer, nil
	}
	return 0, fmt.Errorf("direction %q must be client or server", s)
}

func openJournal(file string) error {
	path, err := appdir.Path(file)
	if err != nil {
		return err
	}
	return log.Init(path)
}

func formatMAC(mac net.HardwareAddr) string {
	if len(mac) == 0 {
		return "-"
	}
	return mac.String()
}
