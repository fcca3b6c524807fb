package protocol

import (
	"bytes"
	"encoding/binary"
	"fmt"

	"mactelnet-go/pkg/protocol/spec"
)

// ControlHeaderSize is the size of the magic, type and length prefix.
const ControlHeaderSize = 9

// ControlMagic starts every typed control record.
var ControlMagic = [4]byte{0x56, 0x34, 0x12, 0xff}

// ControlRecord is a decoded control record. Data aliases the input buffer.
// Typed is set when the record carried the magic, type and length prefix,
// which is also true for a prefixed record whose type byte is 0xff.
type ControlRecord struct {
	Type   spec.ControlType
	Length uint32
	Data   []byte
	Typed  bool
}

// IsPlain reports whether the record is untagged terminal data.
func (r ControlRecord) IsPlain() bool { return !r.Typed }

// AddControl appends a control record to the packet and returns the number
// of bytes appended. Plain data is copied verbatim without a prefix.
func (p *Packet) AddControl(cptype spec.ControlType, data []byte) (int, error) {
	return p.addControl(cptype, data, cptype != spec.ControlPlainData)
}

// AddRecord appends a decoded record, keeping the prefix whenever the
// record was decoded with one.
func (p *Packet) AddRecord(rec ControlRecord) (int, error) {
	return p.addControl(rec.Type, rec.Data, rec.Typed)
}

func (p *Packet) addControl(cptype spec.ControlType, data []byte, typed bool) (int, error) {
	// Plain data is held to the same bound as a typed record.
	if p.size+ControlHeaderSize+len(data) > MaxPacketSize {
		return 0, fmt.Errorf("%w: %d+%d+%d > %d", ErrOverflow, p.size, ControlHeaderSize, len(data), MaxPacketSize)
	}

	if !typed {
		n := copy(p.data[p.size:], data)
		p.size += n
		return n, nil
	}

	buf := p.data[p.size:]
	copy(buf[0:4], ControlMagic[:])
	buf[4] = byte(cptype)
	binary.BigEndian.PutUint32(buf[5:9], uint32(len(data)))
	copy(buf[ControlHeaderSize:], data)

	n := ControlHeaderSize + len(data)
	p.size += n
	return n, nil
}

// DecodeRecord parses one record from the start of data and returns it with
// the number of bytes it spans. Input that does not begin with the control
// magic is consumed entirely as a single plain data record.
func DecodeRecord(data []byte) (ControlRecord, int, error) {
	if len(data) >= ControlHeaderSize && bytes.Equal(data[:4], ControlMagic[:]) {
		length := binary.BigEndian.Uint32(data[5:9])
		if uint64(length) > uint64(len(data)-ControlHeaderSize) {
			return ControlRecord{}, 0, fmt.Errorf("%w: record declares %d bytes, %d available",
				ErrInvalidLength, length, len(data)-ControlHeaderSize)
		}
		end := ControlHeaderSize + int(length)
		rec := ControlRecord{
			Type:   spec.ControlType(data[4]),
			Length: length,
			Data:   data[ControlHeaderSize:end:end],
			Typed:  true,
		}
		return rec, end, nil
	}

	rec := ControlRecord{
		Type:   spec.ControlPlainData,
		Length: uint32(len(data)),
		Data:   data,
	}
	return rec, len(data), nil
}

// DecodeRecordN is DecodeRecord over the first n bytes of data, where n is
// typically a receive count.
func DecodeRecordN(data []byte, n int) (ControlRecord, int, error) {
	if n < 0 || n > len(data) {
		return ControlRecord{}, 0, fmt.Errorf("%w: %d of %d", ErrInvalidLength, n, len(data))
	}
	return DecodeRecord(data[:n])
}

// ParseRecords decodes every record in a packet payload.
func ParseRecords(payload []byte) ([]ControlRecord, error) {
	var records []ControlRecord
	for len(payload) > 0 {
		rec, n, err := DecodeRecord(payload)
		if err != nil {
			return records, err
		}
		records = append(records, rec)
		payload = payload[n:]
	}
	return records, nil
}
