package bot

import (
	"strings"
	"testing"

	coretelegram "github.com/relaydesk/relaybot/core/telegram"
	"github.com/relaydesk/relaybot/core/telegram/commands"

	tele "gopkg.in/telebot.v4"
)

func TestAdminHelpHTML(t *testing.T) {
	noop := func(tele.Context) error { return nil }

	reg := coretelegram.NewRegistry()
	reg.RegisterCommand("/ban", commands.Command{
		Description: "Ban a user",
		Usage:       "/ban <user_id> [reason...]",
		AdminOnly:   true,
		Handler:     noop,
	})
	reg.RegisterCommand("/banned", commands.Command{
		Description: "List banned users",
		AdminOnly:   true,
		Handler:     noop,
	})
	reg.RegisterCommand("/chatid", commands.Command{
		Description: "Show the current chat id",
		AdminOnly:   true,
		Hidden:      true,
		Handler:     noop,
	})
	reg.RegisterCommand("/help", commands.Command{
		Description: "How to use the bot",
		Handler:     noop,
	})

	out := adminHelpHTML(reg)

	if !strings.Contains(out, "<code>/ban &lt;user_id&gt; [reason...]</code> - Ban a user") {
		t.Fatalf("usage hint not rendered:\n%s", out)
	}
	if !strings.Contains(out, "<code>/banned</code> - List banned users") {
		t.Fatalf("command without usage should fall back to its name:\n%s", out)
	}
	if strings.Contains(out, "/chatid") {
		t.Fatal("hidden commands must stay out of the help")
	}
	if strings.Contains(out, "/help") {
		t.Fatal("public commands must stay out of the admin section")
	}
	if strings.Index(out, "/ban ") > strings.Index(out, "/banned") {
		t.Fatal("commands not sorted")
	}
}
