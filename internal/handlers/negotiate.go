package handlers

import (
	"strconv"
	"strings"
)

const (
	mimeJSON = "application/json"
	mimeHTML = "text/html"
)

// clientPrefersHTML сообщает, оценивает ли заголовок Accept text/html
// строго выше, чем application/json.
func clientPrefersHTML(accept string) bool {
	if strings.TrimSpace(accept) == "" {
		return false
	}
	return acceptQuality(accept, mimeHTML) > acceptQuality(accept, mimeJSON)
}

// acceptQuality возвращает наибольший q среди диапазонов, подходящих под mediaType.
func acceptQuality(accept, mediaType string) float64 {
	typ, _, _ := strings.Cut(mediaType, "/")
	best := 0.0

	for _, part := range strings.Split(accept, ",") {
		fields := strings.Split(part, ";")
		mediaRange := strings.ToLower(strings.TrimSpace(fields[0]))
		if mediaRange != mediaType && mediaRange != typ+"/*" && mediaRange != "*/*" {
			continue
		}

		q := 1.0
		for _, param := range fields[1:] {
			key, value, ok := strings.Cut(strings.TrimSpace(param), "=")
			if !ok || strings.TrimSpace(key) != "q" {
				continue
			}
			parsed, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
			if err != nil || parsed < 0 || parsed > 1 {
				parsed = 0
			}
			q = parsed
		}

		if q > best {
			best = q
		}
	}
	return best
}
