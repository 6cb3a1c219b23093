package helpers

import (
	"errors"
	"log/slog"
	"sync/atomic"

	"github.com/relaydesk/relaybot/core/logger"
	"github.com/relaydesk/relaybot/core/telegram/sender"

	tele "gopkg.in/telebot.v4"
)

var globalDispatcher atomic.Pointer[sender.Dispatcher]

// SetDispatcher wires the asynchronous sender used by helper functions.
func SetDispatcher(d *sender.Dispatcher) {
	globalDispatcher.Store(d)
}

func currentDispatcher() *sender.Dispatcher {
	return globalDispatcher.Load()
}

// Async schedules an outbound call through the shared dispatcher, falling
// back to a synchronous call when the queue is saturated or closed. The run
// closure must be safe to invoke more than once.
func Async(c tele.Context, action, endpoint string, run func() error) error {
	disp := currentDispatcher()
	if disp == nil {
		return run()
	}

	ctx := BuildContext(c)
	if err := disp.Enqueue(ctx, action, endpoint, run); err != nil {
		if errors.Is(err, sender.ErrQueueFull) || errors.Is(err, sender.ErrQueueClosed) {
			logger.Warn(ctx, "tg.sender", "queue.fallback",
				slog.String("action", action),
				slog.String("endpoint", endpoint),
				slog.String("err", err.Error()),
			)
			return run()
		}
		return err
	}
	return nil
}

// SendText sends raw text (no parse mode) to the current recipient.
func SendText(c tele.Context, text string, opts ...*tele.SendOptions) error {
	var sendOpts *tele.SendOptions
	if len(opts) > 0 {
		sendOpts = opts[0]
	}
	return Async(c, "send.text", "sendMessage", func() error {
		if sendOpts != nil {
			return c.Send(text, sendOpts)
		}
		return c.Send(text)
	})
}

// SendHTML sends a message with HTML parse mode and optional reply markup.
func SendHTML(c tele.Context, text string, markup ...*tele.ReplyMarkup) error {
	var rm *tele.ReplyMarkup
	if len(markup) > 0 {
		rm = markup[0]
	}
	opts := &tele.SendOptions{ParseMode: tele.ModeHTML, ReplyMarkup: rm}
	return SendText(c, text, opts)
}

// MessageSender is the narrow bot surface needed for cross-chat sends.
type MessageSender interface {
	Send(to tele.Recipient, what interface{}, opts ...interface{}) (*tele.Message, error)
}

// SendToHTML sends an HTML message to an arbitrary recipient through the
// dispatcher, used for owner notifications and cross-chat relays.
func SendToHTML(c tele.Context, bot MessageSender, to tele.Recipient, text string, markup ...*tele.ReplyMarkup) error {
	var rm *tele.ReplyMarkup
	if len(markup) > 0 {
		rm = markup[0]
	}
	opts := &tele.SendOptions{ParseMode: tele.ModeHTML, ReplyMarkup: rm}
	return Async(c, "send.relay", "sendMessage", func() error {
		_, err := bot.Send(to, text, opts)
		return err
	})
}

// EditHTML edits the current message with HTML parse mode and optional markup.
func EditHTML(c tele.Context, text string, markup ...*tele.ReplyMarkup) error {
	var rm *tele.ReplyMarkup
	if len(markup) > 0 {
		rm = markup[0]
	}
	return c.Edit(text, &tele.SendOptions{ParseMode: tele.ModeHTML, ReplyMarkup: rm})
}

// EditOrSendHTML tries to edit the message or sends a new one if edit fails.
func EditOrSendHTML(c tele.Context, text string, markup ...*tele.ReplyMarkup) error {
	var rm *tele.ReplyMarkup
	if len(markup) > 0 {
		rm = markup[0]
	}
	return c.EditOrSend(text, &tele.SendOptions{ParseMode: tele.ModeHTML, ReplyMarkup: rm})
}
