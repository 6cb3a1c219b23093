package commands

import (
	tele "gopkg.in/telebot.v4"
)

// Command describes a bot command: its handler, menu description, and metadata.
type Command struct {
	Handler     tele.HandlerFunc
	Description string
	// Usage holds a short argument hint shown in help output, e.g. "/ban <user_id> [reason]".
	Usage     string
	AdminOnly bool
	Hidden    bool
	Aliases   []string
}
