package telegram

import (
	"task_practice_bot/internal/app"

	"gopkg.in/telebot.v3"
)

// MessageFromUpdate extracts the text message of an update.
// ok is false for updates the practice flow ignores: no message, no sender or no text.
func MessageFromUpdate(upd *telebot.Update) (app.IncomingMessage, bool) {
	if upd == nil {
		return app.IncomingMessage{}, false
	}
	return MessageFromTelebot(upd.Message)
}

func MessageFromTelebot(m *telebot.Message) (app.IncomingMessage, bool) {
	if m == nil || m.Chat == nil || m.Sender == nil || m.Text == "" {
		return app.IncomingMessage{}, false
	}
	return app.IncomingMessage{
		ChatID:   m.Chat.ID,
		UserID:   m.Sender.ID,
		Username: m.Sender.Username,
		Text:     m.Text,
	}, true
}
