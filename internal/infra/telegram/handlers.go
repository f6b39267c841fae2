package telegram

import (
	"context"

	"task_practice_bot/internal/app"

	"github.com/sirupsen/logrus"
	"gopkg.in/telebot.v3"
)

// MessageHandler processes one incoming chat message.
type MessageHandler interface {
	HandleMessage(ctx context.Context, msg app.IncomingMessage) error
}

// RegisterHandlers routes every text message, commands and menu buttons included, to h.
// Used in long-polling mode; webhook mode feeds the same handler from HTTP.
func RegisterHandlers(ctx context.Context, b *telebot.Bot, h MessageHandler, baseLogger *logrus.Entry) {
	handlerLogger := baseLogger.WithField("handler", "on_text")

	b.Handle(telebot.OnText, func(c telebot.Context) error {
		msg, ok := MessageFromTelebot(c.Message())
		if !ok {
			return nil
		}
		handlerLogger.WithField("user_id", msg.UserID).Debug("Message received")
		return h.HandleMessage(ctx, msg)
	})
}
