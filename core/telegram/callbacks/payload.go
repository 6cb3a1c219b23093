package callbacks

import (
	"strconv"
	"strings"

	tele "gopkg.in/telebot.v4"
)

// PayloadInt64 parses the callback payload as int64.
func PayloadInt64(c tele.Context) (int64, error) {
	return strconv.ParseInt(CallbackPayload(c), 10, 64)
}

// PayloadInt parses the callback payload as int.
func PayloadInt(c tele.Context) (int, error) {
	return strconv.Atoi(CallbackPayload(c))
}

// PayloadTwoInt64 parses a callback payload like "123|456" into two int64 values.
func PayloadTwoInt64(c tele.Context, sep string) (int64, int64, error) {
	return SplitTwoInt64(CallbackPayload(c), sep)
}

// SplitTwoInt64 splits a payload string by sep and parses both halves as int64.
func SplitTwoInt64(payload, sep string) (int64, int64, error) {
	if payload == "" {
		return 0, 0, strconv.ErrSyntax
	}
	parts := strings.Split(payload, sep)
	if len(parts) != 2 {
		return 0, 0, strconv.ErrSyntax
	}
	a, err := strconv.ParseInt(parts[0], 10, 64)
	if err != nil {
		return 0, 0, err
	}
	b, err := strconv.ParseInt(parts[1], 10, 64)
	if err != nil {
		return 0, 0, err
	}
	return a, b, nil
}
