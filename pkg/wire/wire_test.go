package wire

import (
	"bytes"
	"errors"
	"net"
	"testing"

	"mactelnet-go/pkg/protocol"
	"mactelnet-go/pkg/protocol/spec"
)

// fakeRW is a simple in‑memory writer capturing each packet.
type fakeRW struct {
	packets [][]byte
	err     error
}

func (f *fakeRW) Write(p []byte) (int, error) {
	if f.err != nil {
		return 0, f.err
	}
	f.packets = append(f.packets, append([]byte(nil), p...))
	return len(p), nil
}

var (
	clientMAC = net.HardwareAddr{0x02, 0x00, 0x00, 0x00, 0x00, 0x01}
	serverMAC = net.HardwareAddr{0x02, 0x00, 0x00, 0x00, 0x00, 0x02}
)

func TestSendAndParse(t *testing.T) {
	client := NewSession(protocol.FromClient, clientMAC, serverMAC, 1234)
	server := NewSession(protocol.FromServer, serverMAC, clientMAC, 1234)

	fake := &fakeRW{}
	n, err := client.Send(fake, spec.TypeData,
		Record{Type: spec.ControlBeginAuth},
		Record{Type: spec.ControlUsername, Data: []byte("admin")},
		Plain([]byte("hello")),
	)
	if err != nil {
		t.Fatalf("Send failed: %v", err)
	}
	want := protocol.HeaderSize + 9 + 9 + 5 + 5
	if n != want {
		t.Fatalf("Expected %d bytes written, got %d", want, n)
	}

	hdr, records, err := server.Parse(fake.packets[0])
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if hdr.PacketType != spec.TypeData || hdr.Counter != 0 {
		t.Errorf("Unexpected header type=%v counter=%d", hdr.PacketType, hdr.Counter)
	}
	if !bytes.Equal(hdr.SrcMAC, clientMAC) || !bytes.Equal(hdr.DstMAC, serverMAC) {
		t.Errorf("Unexpected addresses %v -> %v", hdr.SrcMAC, hdr.DstMAC)
	}
	if len(records) != 3 {
		t.Fatalf("Expected 3 records, got %d", len(records))
	}
	if string(records[1].Data) != "admin" || !records[2].IsPlain() || string(records[2].Data) != "hello" {
		t.Errorf("Unexpected records %+v", records)
	}
}

func TestCounterAdvancesOnData(t *testing.T) {
	s := NewSession(protocol.FromClient, clientMAC, serverMAC, 1)
	fake := &fakeRW{}

	if _, err := s.Send(fake, spec.TypeData, Plain([]byte("abc"))); err != nil {
		t.Fatalf("Send failed: %v", err)
	}
	if s.Counter() != 3 {
		t.Errorf("Expected counter 3, got %d", s.Counter())
	}

	if _, err := s.Send(fake, spec.TypeAck); err != nil {
		t.Fatalf("Send failed: %v", err)
	}
	if s.Counter() != 3 {
		t.Errorf("Ack must not advance the counter, got %d", s.Counter())
	}

	if _, err := s.Send(fake, spec.TypeData, Record{Type: spec.ControlTermWidth, Data: []byte{80, 0}}); err != nil {
		t.Fatalf("Send failed: %v", err)
	}
	if s.Counter() != 3+11 {
		t.Errorf("Expected counter 14, got %d", s.Counter())
	}

	hdr, err := protocol.DecodeHeader(fake.packets[2], protocol.FromClient)
	if err != nil {
		t.Fatalf("DecodeHeader failed: %v", err)
	}
	if hdr.Counter != 3 {
		t.Errorf("Third packet must carry counter 3, got %d", hdr.Counter)
	}

	pkt, err := s.NewPacket(spec.TypePing)
	if err != nil {
		t.Fatalf("NewPacket failed: %v", err)
	}
	hdr, _ = protocol.DecodeHeader(pkt.Bytes(), protocol.FromClient)
	if hdr.Counter != 14 {
		t.Errorf("NewPacket must use the current counter, got %d", hdr.Counter)
	}
}

func TestSendErrors(t *testing.T) {
	s := NewSession(protocol.FromClient, clientMAC, serverMAC, 1)

	_, err := s.Send(&fakeRW{}, spec.TypeData, Plain(make([]byte, protocol.MaxPacketSize)))
	if !errors.Is(err, protocol.ErrOverflow) {
		t.Errorf("Expected ErrOverflow, got %v", err)
	}

	cause := errors.New("link down")
	if _, err := s.Send(&fakeRW{err: cause}, spec.TypeData, Plain([]byte("x"))); !errors.Is(err, cause) {
		t.Errorf("Expected write error, got %v", err)
	}
	if s.Counter() != 0 {
		t.Errorf("Failed sends must not advance the counter, got %d", s.Counter())
	}
}

func TestParseRejects(t *testing.T) {
	client := NewSession(protocol.FromClient, clientMAC, serverMAC, 1234)
	other := NewSession(protocol.FromServer, serverMAC, clientMAC, 99)

	fake := &fakeRW{}
	if _, err := other.Send(fake, spec.TypeAck); err != nil {
		t.Fatalf("Send failed: %v", err)
	}
	if _, _, err := client.Parse(fake.packets[0]); !errors.Is(err, ErrForeignSession) {
		t.Errorf("Expected ErrForeignSession, got %v", err)
	}

	bad := append([]byte(nil), fake.packets[0]...)
	bad[0] = 2
	if _, _, err := client.Parse(bad); !errors.Is(err, ErrVersion) {
		t.Errorf("Expected ErrVersion, got %v", err)
	}

	if _, _, err := client.Parse(bad[:10]); !errors.Is(err, protocol.ErrInsufficientData) {
		t.Errorf("Expected ErrInsufficientData, got %v", err)
	}
}

func TestAccept(t *testing.T) {
	client := NewSession(protocol.FromClient, clientMAC, serverMAC, 4321)
	fake := &fakeRW{}
	if _, err := client.Send(fake, spec.TypeSessionStart, Record{Type: spec.ControlBeginAuth}); err != nil {
		t.Fatalf("Send failed: %v", err)
	}

	server, hdr, records, err := Accept(protocol.FromServer, fake.packets[0])
	if err != nil {
		t.Fatalf("Accept failed: %v", err)
	}
	if server.Key() != 4321 || server.Direction() != protocol.FromServer {
		t.Errorf("Unexpected session key=%d dir=%v", server.Key(), server.Direction())
	}
	if hdr.PacketType != spec.TypeSessionStart || len(records) != 1 || records[0].Type != spec.ControlBeginAuth {
		t.Errorf("Unexpected packet %v %+v", hdr.PacketType, records)
	}

	// The accepted session answers the client and parses its next packet.
	if _, err := server.Send(fake, spec.TypeAck); err != nil {
		t.Fatalf("Send failed: %v", err)
	}
	reply, _, err := client.Parse(fake.packets[1])
	if err != nil {
		t.Fatalf("client Parse failed: %v", err)
	}
	if !bytes.Equal(reply.SrcMAC, serverMAC) || !bytes.Equal(reply.DstMAC, clientMAC) {
		t.Errorf("Reply addresses %v -> %v", reply.SrcMAC, reply.DstMAC)
	}

	fake.packets[0][0] = 9
	if _, _, _, err := Accept(protocol.FromServer, fake.packets[0]); !errors.Is(err, ErrVersion) {
		t.Errorf("Expected ErrVersion, got %v", err)
	}
}

func TestResume(t *testing.T) {
	s := NewSession(protocol.FromServer, serverMAC, clientMAC, 7)
	s.Resume(1000)

	pkt, err := s.NewPacket(spec.TypeAck)
	if err != nil {
		t.Fatalf("NewPacket failed: %v", err)
	}
	hdr, err := protocol.DecodeHeader(pkt.Bytes(), protocol.FromServer)
	if err != nil {
		t.Fatalf("DecodeHeader failed: %v", err)
	}
	if hdr.Counter != 1000 || s.Counter() != 1000 {
		t.Errorf("Expected counter 1000, got header %d session %d", hdr.Counter, s.Counter())
	}
}
