package main

import (
	"encoding/hex"
	"fmt"
	"io"
	"net"
	"strings"

	"github.com/urfave/cli/v2"

	"mactelnet-go/pkg/hexdump"
	"mactelnet-go/pkg/log"
	"mactelnet-go/pkg/protocol"
	"mactelnet-go/pkg/rawudp"
	"mactelnet-go/pkg/wire"
)

var (
	encodeCommand = &cli.Command{
		Name:        "encode",
		Usage:       "build a packet and print it as hex",
		UsageText:   "mtframe encode [--type N] [--record TYPE:HEX ...] [--plain TEXT]",
		Description: `Builds a MAC-Telnet packet from the configuration and flags without sending it.`,
		Flags:       packetFlags,
		Action:      encodeCmd,
	}

	decodeCommand = &cli.Command{
		Name:        "decode",
		Usage:       "decode a hex packet",
		UsageText:   "mtframe decode [--direction client|server] [--key KEY] HEX",
		Description: `Decodes a MAC-Telnet packet. --direction names the role that sent it. With --key, packets of other sessions are rejected.`,
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "direction", Usage: "Role that sent the packet (default: the configured peer)"},
			&cli.UintFlag{Name: "key", Usage: "Expected session `KEY`"},
			&cli.BoolFlag{Name: "dump", Usage: "Also print a hex dump of the packet"},
		},
		Action: decodeCmd,
	}

	sendCommand = &cli.Command{
		Name:        "send",
		Usage:       "send a packet in a raw IPv4/UDP broadcast frame",
		UsageText:   "mtframe send [-i IFACE] [--record TYPE:HEX ...] [--plain TEXT]",
		Description: `Builds a MAC-Telnet packet and transmits it on a raw link-layer socket. Needs CAP_NET_RAW.`,
		Flags:       packetFlags,
		Action:      sendCmd,
	}

	journalCommand = &cli.Command{
		Name:        "journal",
		Usage:       "print the most recent journaled log events",
		UsageText:   "mtframe journal [-n COUNT]",
		Description: `Reads back events from the SQLite journal configured by log_journal.`,
		Flags: []cli.Flag{
			&cli.IntFlag{Name: "n", Value: 20, Usage: "Number of events to show"},
		},
		Action: journalCmd,
	}
)

func encodeCmd(c *cli.Context) error {
	t, _, err := buildPacket(c, false)
	if err != nil {
		return err
	}
	fmt.Fprintln(c.App.Writer, hex.EncodeToString(t.packet.Bytes()))
	return nil
}

func decodeCmd(c *cli.Context) error {
	if c.NArg() == 0 {
		return fmt.Errorf("decode: missing HEX argument")
	}
	data, err := hex.DecodeString(strings.Join(strings.Fields(strings.Join(c.Args().Slice(), "")), ""))
	if err != nil {
		return fmt.Errorf("decode: %w", err)
	}

	var dir protocol.Direction
	if c.IsSet("direction") {
		if dir, err = parseDirection(c.String("direction")); err != nil {
			return err
		}
	} else {
		settings, err := loadedConfig(c).Parse()
		if err != nil {
			return err
		}
		dir = settings.Direction.Opposite()
	}

	// The packet is parsed from the point of view of its receiver.
	var (
		hdr     *protocol.Header
		records []protocol.ControlRecord
		perr    error
	)
	if c.IsSet("key") {
		session := wire.NewSession(dir.Opposite(), nil, nil, uint16(c.Uint("key")))
		hdr, records, perr = session.Parse(data)
	} else {
		_, hdr, records, perr = wire.Accept(dir.Opposite(), data)
	}
	if hdr == nil {
		return perr
	}
	printPacket(c.App.Writer, dir, hdr, records)
	if c.Bool("dump") {
		if err := hexdump.Dump(c.App.Writer, 0, data); err != nil {
			return err
		}
	}
	return perr
}

func printPacket(w io.Writer, dir protocol.Direction, hdr *protocol.Header, records []protocol.ControlRecord) {
	fmt.Fprintf(w, "version:     %d\n", hdr.Version)
	fmt.Fprintf(w, "type:        %v (%d)\n", hdr.PacketType, hdr.PacketType)
	fmt.Fprintf(w, "direction:   %v\n", dir)
	fmt.Fprintf(w, "src:         %s\n", formatMAC(hdr.SrcMAC))
	fmt.Fprintf(w, "dst:         %s\n", formatMAC(hdr.DstMAC))
	fmt.Fprintf(w, "session key: %d\n", hdr.SessionKey)
	fmt.Fprintf(w, "client type: 0x%04x\n", hdr.ClientType)
	fmt.Fprintf(w, "counter:     %d\n", hdr.Counter)
	for i, r := range records {
		if r.IsPlain() {
			fmt.Fprintf(w, "record %d:    %v %d bytes %q\n", i, r.Type, r.Length, r.Data)
			continue
		}
		fmt.Fprintf(w, "record %d:    %v %d bytes %x\n", i, r.Type, r.Length, r.Data)
	}
}

func sendCmd(c *cli.Context) error {
	t, cfg, err := buildPacket(c, true)
	if err != nil {
		return err
	}

	srcIP := t.settings.SrcIP
	if srcIP == nil {
		if srcIP, err = t.iface.SourceIP(); err != nil {
			log.Warn().Err(err).Msg("sending from 0.0.0.0")
			srcIP = net.IPv4zero
		}
	}

	sock, err := rawudp.OpenPacketSocket()
	if err != nil {
		return err
	}
	defer sock.Close()

	b := rawudp.NewBuilder(sock, t.iface.Index)
	src := &net.UDPAddr{IP: srcIP, Port: t.settings.SrcPort}
	dst := &net.UDPAddr{IP: t.settings.DstIP, Port: t.settings.DstPort}

	n, err := b.Send(t.settings.SrcMAC, t.settings.DstMAC, src, dst, t.packet.Bytes())
	if err != nil {
		return err
	}
	log.Info().
		Str("interface", cfg.Interface).
		Str("dst_mac", t.settings.DstMAC.String()).
		Str("dst", dst.String()).
		Uint16("session", t.session.Key()).
		Int("bytes", n).
		Msg("packet sent")
	return nil
}

func journalCmd(c *cli.Context) error {
	if loadedConfig(c).LogJournal == "" {
		return fmt.Errorf("journal: log_journal is not configured")
	}
	entries, err := log.LastN(c.Int("n"))
	if err != nil {
		return err
	}
	for _, e := range entries {
		fmt.Fprintf(c.App.Writer, "%d %s %s", e.ID, e.InsertedAt, e.LogData)
	}
	return nil
}
