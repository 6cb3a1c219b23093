package format

import (
	"html"
	"strings"
)

// MaxMessageLen is a safe message length for Telegram text messages,
// kept below the hard API limit of 4096 to leave room for framing.
const MaxMessageLen = 4000

// EscapeHTML escapes text for inclusion in HTML parse mode messages.
func EscapeHTML(text string) string {
	return html.EscapeString(text)
}

// TruncateRunes shortens text to at most n runes, appending an ellipsis
// when anything was cut.
func TruncateRunes(text string, n int) string {
	if n <= 0 {
		return ""
	}
	runes := []rune(text)
	if len(runes) <= n {
		return text
	}
	return string(runes[:n]) + "…"
}

// JoinChunked joins lines with sep into messages not exceeding max bytes
// each. A single oversized line becomes its own chunk.
func JoinChunked(lines []string, sep string, max int) []string {
	if max <= 0 {
		max = MaxMessageLen
	}
	var (
		chunks  []string
		current strings.Builder
	)
	for _, line := range lines {
		if current.Len() > 0 && current.Len()+len(sep)+len(line) > max {
			chunks = append(chunks, current.String())
			current.Reset()
		}
		if current.Len() > 0 {
			current.WriteString(sep)
		}
		current.WriteString(line)
	}
	if current.Len() > 0 {
		chunks = append(chunks, current.String())
	}
	return chunks
}
