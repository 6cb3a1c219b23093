package bot

import (
	"sort"
	"strconv"
	"strings"

	coretelegram "github.com/relaydesk/relaybot/core/telegram"
	"github.com/relaydesk/relaybot/core/telegram/commands"
	"github.com/relaydesk/relaybot/core/telegram/format"
	"github.com/relaydesk/relaybot/core/telegram/helpers"
	"github.com/relaydesk/relaybot/core/telegram/keyboard"
	"github.com/relaydesk/relaybot/internal/relay"
	"github.com/relaydesk/relaybot/internal/texts"

	tele "gopkg.in/telebot.v4"
)

func mainMenu() *tele.ReplyMarkup {
	return keyboard.ReplyButtons(
		[]string{labelSend, labelLang},
		[]string{labelOwner, labelHelp},
	)
}

func (a *App) buildRegistry() *coretelegram.Registry {
	reg := coretelegram.NewRegistry()

	reg.RegisterCommand("/start", commands.Command{
		Description: "Start the bot and show the menu",
		Handler:     a.cmdStart,
	})
	reg.RegisterCommand("/help", commands.Command{
		Description: "How to use the bot",
		Aliases:     []string{labelHelp},
		Handler:     a.cmdHelp,
	})
	reg.RegisterCommand("/owner", commands.Command{
		Description: "Show the owner's contact card",
		Aliases:     []string{labelOwner},
		Handler:     a.cmdOwner,
	})
	reg.RegisterCommand("/lang", commands.Command{
		Description: "Choose language",
		Aliases:     []string{labelLang},
		Handler:     a.cmdLang,
	})
	reg.RegisterCommand("/write", commands.Command{
		Description: "Prompt for a new message",
		Aliases:     []string{labelSend},
		Hidden:      true,
		Handler: func(c tele.Context) error {
			return helpers.SendText(c, writePromptText)
		},
	})

	reg.RegisterCommand("/search", commands.Command{
		Description: "Search past requests",
		Usage:       "/search <user_id | @username | keyword>",
		AdminOnly:   true,
		Handler:     a.cmdSearch,
	})
	reg.RegisterCommand("/clean", commands.Command{
		Description: "Delete all past requests",
		AdminOnly:   true,
		Handler:     a.cmdClean,
	})
	reg.RegisterCommand("/ban", commands.Command{
		Description: "Ban a user",
		Usage:       "/ban <user_id> [reason...]",
		AdminOnly:   true,
		Handler:     a.cmdBan,
	})
	reg.RegisterCommand("/unban", commands.Command{
		Description: "Lift a user's ban",
		Usage:       "/unban <user_id>",
		AdminOnly:   true,
		Handler:     a.cmdUnban,
	})
	reg.RegisterCommand("/banned", commands.Command{
		Description: "List banned users",
		AdminOnly:   true,
		Handler:     a.cmdBanned,
	})
	reg.RegisterCommand("/status", commands.Command{
		Description: "Browse users",
		AdminOnly:   true,
		Handler:     a.cmdStatus,
	})
	reg.RegisterCommand("/addgrp", commands.Command{
		Description: "Route request cards to a group",
		Usage:       "/addgrp -100xxxxxxxxxx",
		AdminOnly:   true,
		Handler:     a.cmdAddGroup,
	})
	reg.RegisterCommand("/chatid", commands.Command{
		Description: "Show the current chat id",
		AdminOnly:   true,
		Hidden:      true,
		Handler:     a.cmdChatID,
	})

	a.registerCallbacks(reg)
	a.reg = reg
	return reg
}

// adminHelpHTML renders the admin command reference from the registry so
// the help text never drifts from what is actually registered.
func adminHelpHTML(reg *coretelegram.Registry) string {
	cmds := reg.Commands()
	names := make([]string, 0, len(cmds))
	for name, meta := range cmds {
		if meta.AdminOnly && !meta.Hidden {
			names = append(names, name)
		}
	}
	sort.Strings(names)

	var b strings.Builder
	b.WriteString("\n\n<b>Admin commands</b>\n")
	for _, name := range names {
		meta := cmds[name]
		hint := name
		if meta.Usage != "" {
			hint = meta.Usage
		}
		b.WriteString("<code>" + format.EscapeHTML(hint) + "</code> - " + format.EscapeHTML(meta.Description) + "\n")
	}
	return b.String()
}

func (a *App) cmdStart(c tele.Context) error {
	sender := c.Sender()
	ctx := helpers.BuildContext(c)
	ident := relay.Identity{ID: sender.ID, Username: sender.Username, FirstName: sender.FirstName}
	if err := a.store.UpsertUser(ctx, ident.ID, ident.Username, ident.FirstName, ""); err != nil {
		return err
	}
	isOwner := a.engine.IsOwner(sender.ID)
	msg := welcomeHTML(a.cfg.Relay.OwnerUsername, isOwner, a.cfg.Relay.OwnerID)
	return helpers.SendText(c, msg, &tele.SendOptions{ParseMode: tele.ModeHTML, ReplyMarkup: mainMenu()})
}

func (a *App) cmdHelp(c tele.Context) error {
	if sender := c.Sender(); sender != nil && a.engine.IsOwner(sender.ID) {
		return helpers.SendHTML(c, helpHTML+adminHelpHTML(a.reg))
	}
	return helpers.SendHTML(c, helpHTML)
}

func (a *App) cmdOwner(c tele.Context) error {
	return helpers.SendHTML(c, ownerCardHTML(a.cfg.Relay.OwnerUsername, a.cfg.Relay.OwnerID))
}

func (a *App) cmdLang(c tele.Context) error {
	sender := c.Sender()
	ctx := helpers.BuildContext(c)
	if err := a.store.UpsertUser(ctx, sender.ID, sender.Username, sender.FirstName, ""); err != nil {
		return err
	}
	markup := keyboard.InlineButtonsRows([]keyboard.InlineBtn{
		{Text: "English", Unique: cbLang, Data: texts.LangEN},
		{Text: "Hinglish", Unique: cbLang, Data: texts.LangHI},
	})
	return helpers.SendHTML(c, texts.T(a.lang(ctx, sender.ID), "lang_choose"), markup)
}

func (a *App) cmdSearch(c tele.Context) error {
	args := c.Args()
	if len(args) == 0 {
		return helpers.SendText(c, searchUsageText)
	}
	ctx := helpers.BuildContext(c)
	chunks, err := a.console.Search(ctx, strings.Join(args, " "))
	if err != nil {
		return err
	}
	if len(chunks) == 0 {
		return helpers.SendText(c, noResultsText)
	}
	for _, chunk := range chunks {
		if err := helpers.SendText(c, chunk); err != nil {
			return err
		}
	}
	return nil
}

func (a *App) cmdClean(c tele.Context) error {
	return helpers.SendText(c, cleanConfirmText, &tele.SendOptions{ReplyMarkup: a.console.CleanConfirmMarkup()})
}

func (a *App) cmdBan(c tele.Context) error {
	args := c.Args()
	if len(args) == 0 {
		return helpers.SendText(c, banUsageText)
	}
	target, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		return helpers.SendText(c, invalidUserID)
	}
	reason := strings.Join(args[1:], " ")
	if reason == "" {
		reason = "No reason"
	}
	ctx := helpers.BuildContext(c)
	if err := a.console.Ban(ctx, target, reason); err != nil {
		return err
	}
	return helpers.SendText(c, "Banned "+args[0]+". Reason: "+reason)
}

func (a *App) cmdUnban(c tele.Context) error {
	args := c.Args()
	if len(args) == 0 {
		return helpers.SendText(c, unbanUsageText)
	}
	target, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		return helpers.SendText(c, invalidUserID)
	}
	ctx := helpers.BuildContext(c)
	if err := a.console.Unban(ctx, target); err != nil {
		return err
	}
	return helpers.SendText(c, "Unbanned "+args[0]+".")
}

func (a *App) cmdBanned(c tele.Context) error {
	ctx := helpers.BuildContext(c)
	chunks, err := a.console.Bans(ctx, 50)
	if err != nil {
		return err
	}
	if len(chunks) == 0 {
		return helpers.SendText(c, noBansText)
	}
	for _, chunk := range chunks {
		if err := helpers.SendText(c, chunk); err != nil {
			return err
		}
	}
	return nil
}

func (a *App) cmdStatus(c tele.Context) error {
	ctx := helpers.BuildContext(c)
	text, markup, err := a.console.UsersPage(ctx, 0)
	if err != nil {
		return err
	}
	return helpers.SendHTML(c, text, markup)
}

func (a *App) cmdAddGroup(c tele.Context) error {
	args := c.Args()
	if len(args) == 0 {
		return helpers.SendHTML(c, addgrpUsageHTML)
	}
	gid, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		return helpers.SendText(c, invalidGroupID)
	}
	markup := keyboard.InlineButtonsRows([]keyboard.InlineBtn{
		{Text: "Yes ✅", Unique: cbGroupYes, Data: strconv.FormatInt(gid, 10)},
	})
	return helpers.SendText(c, groupAskText, &tele.SendOptions{ReplyMarkup: markup})
}

func (a *App) cmdChatID(c tele.Context) error {
	chat := c.Chat()
	if chat == nil {
		return nil
	}
	return helpers.SendHTML(c, "Chat ID: <code>"+strconv.FormatInt(chat.ID, 10)+"</code>")
}
