package bot

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/relaydesk/relaybot/core/telegram/helpers"
	"github.com/relaydesk/relaybot/core/telegram/keyboard"
	"github.com/relaydesk/relaybot/internal/relay"
	"github.com/relaydesk/relaybot/internal/texts"

	tele "gopkg.in/telebot.v4"
)

func isMenuLabel(text string) bool {
	switch text {
	case labelSend, labelLang, labelOwner, labelHelp:
		return true
	}
	return false
}

// Active reports whether a text update belongs to the relay flow. Slash
// commands and menu labels route through the registry instead.
func (a *App) Active(c tele.Context) bool {
	if c.Sender() == nil {
		return false
	}
	text := c.Text()
	if text == "" || strings.HasPrefix(text, "/") || isMenuLabel(text) {
		return false
	}
	return true
}

// Handle runs the relay flow for one plain text message: reply completion
// for the owner, gates plus draft capture for everyone else.
func (a *App) Handle(c tele.Context) error {
	sender := c.Sender()
	ctx := helpers.BuildContext(c)
	if a.engine.IsOwner(sender.ID) {
		return a.handleOwnerText(ctx, c)
	}
	return a.handleUserText(ctx, c)
}

func (a *App) handleOwnerText(ctx context.Context, c tele.Context) error {
	if _, pending := a.engine.PendingReply(); !pending {
		return helpers.SendText(c, ownerSelfText)
	}

	res, err := a.engine.CompleteReply(ctx)
	if err != nil {
		return err
	}
	switch res.Outcome {
	case relay.CompleteNoSlot:
		return helpers.SendText(c, ownerSelfText)
	case relay.CompleteTargetMissing:
		return helpers.SendText(c, requestGoneText)
	case relay.CompleteTargetBanned:
		return helpers.SendText(c, replyBannedText)
	}

	if err := helpers.SendToHTML(c, a.tgbot(), tele.ChatID(res.Request.UserID), replyFrameHTML(c.Text())); err != nil {
		return err
	}
	return helpers.SendText(c, texts.T(a.lang(ctx, c.Sender().ID), "admin_reply_sent"))
}

func (a *App) handleUserText(ctx context.Context, c tele.Context) error {
	sender := c.Sender()
	ident := relay.Identity{ID: sender.ID, Username: sender.Username, FirstName: sender.FirstName}

	gate, remaining, err := a.engine.GateUser(ctx, sender.ID)
	if err != nil {
		return err
	}
	switch gate {
	case relay.GateBanned:
		return helpers.SendText(c, texts.T(a.lang(ctx, sender.ID), "banned"))
	case relay.GateCooldown:
		return a.showCooldown(ctx, c, sender.ID, remaining)
	}

	if err := a.engine.SubmitDraft(ctx, ident, c.Text()); err != nil {
		return err
	}
	markup := keyboard.InlineButtonsRows([]keyboard.InlineBtn{
		{Text: "Yes", Unique: cbConfirmYes},
		{Text: "No", Unique: cbConfirmNo},
	})
	return helpers.SendHTML(c, confirmPromptHTML, markup)
}

// showCooldown tells the user to wait and pins a live countdown under the
// notice. The countdown message is sent synchronously so its id is known.
func (a *App) showCooldown(ctx context.Context, c tele.Context, userID int64, remaining time.Duration) error {
	if err := c.Send(texts.T(a.lang(ctx, userID), "cooldown")); err != nil {
		return err
	}
	bot := a.tgbot()
	if bot == nil || a.cd == nil {
		return nil
	}
	secs := int(remaining.Round(time.Second) / time.Second)
	if secs < 1 {
		secs = 1
	}
	msg, err := bot.Send(tele.ChatID(userID), strconv.Itoa(secs))
	if err != nil {
		return nil
	}
	return a.cd.Start(userID, msg.ID, secs)
}

func (a *App) onUnknownMedia(c tele.Context) error {
	sender := c.Sender()
	if sender == nil || a.engine.IsOwner(sender.ID) {
		return nil
	}
	ctx := helpers.BuildContext(c)
	return helpers.SendText(c, texts.T(a.lang(ctx, sender.ID), "start"))
}
