package rawudp

// Checksum computes the RFC 1071 Internet checksum of data. An odd trailing
// byte is summed as the high byte of a zero-padded word. The 64-bit
// accumulator cannot wrap for any slice that fits in memory.
func Checksum(data []byte) uint16 {
	var sum uint64

	for i := 0; i+1 < len(data); i += 2 {
		sum += uint64(data[i])<<8 | uint64(data[i+1])
	}
	if len(data)%2 == 1 {
		sum += uint64(data[len(data)-1]) << 8
	}

	for sum>>16 > 0 {
		sum = (sum & 0xFFFF) + (sum >> 16)
	}

	return ^uint16(sum)
}
