package callbacks

import (
	"strings"

	tele "gopkg.in/telebot.v4"
)

// ParseCallbackData parses Telebot's \f<unique>|<payload> encoding.
// Returns unique and payload (may be empty).
func ParseCallbackData(cb *tele.Callback) (string, string) {
	if cb == nil {
		return "", ""
	}
	raw := strings.TrimPrefix(cb.Data, "\f")
	parts := strings.SplitN(raw, "|", 2)
	unique := strings.TrimSpace(parts[0])
	payload := ""
	if len(parts) == 2 {
		payload = parts[1]
	}
	return unique, payload
}

// CallbackKey returns cb.Unique if present; otherwise parses it from Data.
// Unique may be empty when the update arrives via the generic OnCallback endpoint.
func CallbackKey(c tele.Context) string {
	cb := c.Callback()
	if cb == nil {
		return ""
	}
	if cb.Unique != "" {
		return cb.Unique
	}
	k, _ := ParseCallbackData(cb)
	return k
}

// CallbackPayload returns the payload part (after '|') parsed from Data.
func CallbackPayload(c tele.Context) string {
	cb := c.Callback()
	if cb == nil {
		return ""
	}
	_, payload := ParseCallbackData(cb)
	return payload
}
