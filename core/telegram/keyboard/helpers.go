package keyboard

import tele "gopkg.in/telebot.v4"

// InlineBtn describes a convenience wrapper for inline button properties.
type InlineBtn struct {
	Text   string
	Unique string
	Data   string
}

// ForceReply returns a markup that forces the user to reply.
func ForceReply() *tele.ReplyMarkup {
	return &tele.ReplyMarkup{ForceReply: true}
}

// RemoveKeyboard returns a markup that hides the reply keyboard.
func RemoveKeyboard() *tele.ReplyMarkup {
	return &tele.ReplyMarkup{RemoveKeyboard: true}
}

// ReplyButtons builds a persistent reply keyboard from rows of labels.
func ReplyButtons(rows ...[]string) *tele.ReplyMarkup {
	markup := &tele.ReplyMarkup{ResizeKeyboard: true}
	var keyboard []tele.Row
	for _, row := range rows {
		var buttons []tele.Btn
		for _, label := range row {
			buttons = append(buttons, markup.Text(label))
		}
		keyboard = append(keyboard, markup.Row(buttons...))
	}
	markup.Reply(keyboard...)
	return markup
}

// InlineButtonsRows builds an inline keyboard from rows of InlineBtn.
func InlineButtonsRows(rows ...[]InlineBtn) *tele.ReplyMarkup {
	markup := &tele.ReplyMarkup{}
	inline := make([][]tele.InlineButton, len(rows))
	for i, row := range rows {
		r := make([]tele.InlineButton, len(row))
		for j, btn := range row {
			r[j] = *markup.Data(btn.Text, btn.Unique, btn.Data).Inline()
		}
		inline[i] = r
	}
	markup.InlineKeyboard = inline
	return markup
}

// InlineButtons builds an inline keyboard placing each button on its own row.
func InlineButtons(buttons []InlineBtn) *tele.ReplyMarkup {
	rows := make([][]InlineBtn, 0, len(buttons))
	for _, b := range buttons {
		rows = append(rows, []InlineBtn{b})
	}
	return InlineButtonsRows(rows...)
}

// InlineButtonsNPerRow splits a flat list of buttons into rows with up to n
// buttons per row. If n <= 1, every button gets its own row.
func InlineButtonsNPerRow(buttons []InlineBtn, n int) *tele.ReplyMarkup {
	if n <= 1 {
		return InlineButtons(buttons)
	}
	var rows [][]InlineBtn
	for i := 0; i < len(buttons); i += n {
		end := i + n
		if end > len(buttons) {
			end = len(buttons)
		}
		rows = append(rows, buttons[i:end])
	}
	return InlineButtonsRows(rows...)
}
