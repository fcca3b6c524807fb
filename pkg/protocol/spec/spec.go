package spec

// PacketType defines the type of a MAC-Telnet packet.
type PacketType uint8

const (
	TypeSessionStart PacketType = 0
	TypeData         PacketType = 1
	TypeAck          PacketType = 2
	TypePing         PacketType = 4
	TypePong         PacketType = 5
	TypeEnd          PacketType = 255
)

// String returns a human-readable name for the packet type
func (pt PacketType) String() string {
	switch pt {
	case TypeSessionStart:
		return "SessionStart"
	case TypeData:
		return "Data"
	case TypeAck:
		return "Ack"
	case TypePing:
		return "Ping"
	case TypePong:
		return "Pong"
	case TypeEnd:
		return "End"
	default:
		return "Unknown"
	}
}

// ControlType identifies a control record carried in a packet's data region.
type ControlType uint8

const (
	ControlBeginAuth   ControlType = 0
	ControlPassSalt    ControlType = 1
	ControlPassword    ControlType = 2
	ControlUsername    ControlType = 3
	ControlTermType    ControlType = 4
	ControlTermWidth   ControlType = 5
	ControlTermHeight  ControlType = 6
	ControlPacketError ControlType = 7
	ControlEndAuth     ControlType = 9

	// ControlPlainData is not a control record on the wire: it marks raw
	// terminal bytes that carry no magic, type or length prefix.
	ControlPlainData ControlType = 0xff
)

func (ct ControlType) String() string {
	switch ct {
	case ControlBeginAuth:
		return "BeginAuth"
	case ControlPassSalt:
		return "PassSalt"
	case ControlPassword:
		return "Password"
	case ControlUsername:
		return "Username"
	case ControlTermType:
		return "TermType"
	case ControlTermWidth:
		return "TermWidth"
	case ControlTermHeight:
		return "TermHeight"
	case ControlPacketError:
		return "PacketError"
	case ControlEndAuth:
		return "EndAuth"
	case ControlPlainData:
		return "PlainData"
	default:
		return "Unknown"
	}
}
