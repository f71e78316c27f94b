package classify

import (
	"strconv"
	"strings"
)

// HTTPInfo is the structured view of an HTTP/1.x response. Header parsing is
// best-effort: malformed header lines are skipped, never fatal.
type HTTPInfo struct {
	Proto       string // e.g. "HTTP/1.1"
	StatusCode  int    // 0 when the status line carried no parsable code
	StatusLine  string
	Headers     map[string]string // keys lower-cased; last value wins
	BodyPreview string
}

// Header returns a header value by case-insensitive name.
func (i *HTTPInfo) Header(name string) string {
	return i.Headers[strings.ToLower(name)]
}

const httpBodyPreviewLimit = 256

func looksLikeHTTP(data []byte) bool {
	const prefix = "HTTP/1."
	return len(data) >= len(prefix) && string(data[:len(prefix)]) == prefix
}

func parseHTTP(data []byte) *HTTPInfo {
	text := string(data)

	head := text
	var body string
	if i := strings.Index(text, "\r\n\r\n"); i >= 0 {
		head, body = text[:i], text[i+4:]
	} else if i := strings.Index(text, "\n\n"); i >= 0 {
		head, body = text[:i], text[i+2:]
	}

	lines := splitLines(head)

	info := &HTTPInfo{
		Headers:     make(map[string]string),
		BodyPreview: printablePreview([]byte(body), httpBodyPreviewLimit),
	}
	if len(lines) == 0 {
		return info
	}

	info.StatusLine = lines[0]
	parseStatusLine(lines[0], info)

	for _, line := range lines[1:] {
		name, value, ok := strings.Cut(line, ":")
		if !ok {
			continue // malformed header, skip
		}
		key := strings.ToLower(strings.TrimSpace(name))
		if key == "" || strings.ContainsAny(key, " \t") {
			continue
		}
		info.Headers[key] = strings.TrimSpace(value)
	}

	return info
}

// parseStatusLine fills Proto and StatusCode from an RFC 7231 status line,
// tolerating deviations: a missing or garbled code leaves StatusCode at 0.
func parseStatusLine(line string, info *HTTPInfo) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return
	}
	info.Proto = fields[0]
	if len(fields) < 2 {
		return
	}
	if code, err := strconv.Atoi(fields[1]); err == nil && code >= 100 && code <= 599 {
		info.StatusCode = code
	}
}

func splitLines(s string) []string {
	raw := strings.Split(s, "\n")
	lines := make([]string, 0, len(raw))
	for _, l := range raw {
		lines = append(lines, strings.TrimRight(l, "\r"))
	}
	return lines
}
