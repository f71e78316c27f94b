package shared

import (
	"fmt"
	"strings"
)

// Hexdump renders data as a classic hex+ascii dump, width bytes per line.
func Hexdump(data []byte, width int) string {
	if width <= 0 {
		width = 16
	}

	var b strings.Builder
	for i := 0; i < len(data); i += width {
		end := i + width
		if end > len(data) {
			end = len(data)
		}
		chunk := data[i:end]

		hexParts := make([]string, len(chunk))
		ascii := make([]byte, len(chunk))
		for j, c := range chunk {
			hexParts[j] = fmt.Sprintf("%02x", c)
			if c >= 0x20 && c < 0x7f {
				ascii[j] = c
			} else {
				ascii[j] = '.'
			}
		}

		fmt.Fprintf(&b, "%08x  %-*s  %s\n", i, width*3, strings.Join(hexParts, " "), ascii)
	}
	return b.String()
}
