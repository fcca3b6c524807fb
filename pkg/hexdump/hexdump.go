// Package hexdump renders frames as offset / hex / ASCII columns.
package hexdump

import (
	"bufio"
	"fmt"
	"io"
)

const bytesPerLine = 16

// Dump writes data to w, sixteen bytes per line, with offsets starting at base.
// Byte columns are split into two groups of eight.
func Dump(w io.Writer, base uint, data []byte) error {
	bw := bufio.NewWriter(w)
	for off := 0; off < len(data); off += bytesPerLine {
		end := min(off+bytesPerLine, len(data))
		line := data[off:end]

		fmt.Fprintf(bw, "%08x  ", base+uint(off))
		for i := 0; i < bytesPerLine; i++ {
			if i < len(line) {
				fmt.Fprintf(bw, "%02x ", line[i])
			} else {
				bw.WriteString("   ")
			}
			if i == 7 {
				bw.WriteByte(' ')
			}
		}
		bw.WriteString(" |")
		for _, b := range line {
			if b < 0x20 || b > 0x7e {
				b = '.'
			}
			bw.WriteByte(b)
		}
		bw.WriteString("|\n")
	}
	return bw.Flush()
}
