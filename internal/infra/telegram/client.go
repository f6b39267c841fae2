package telegram

import (
	"net/http"
	"time"

	"github.com/sirupsen/logrus"
	"gopkg.in/telebot.v3"
)

// SendTimeout bounds one Bot API call.
const SendTimeout = 5 * time.Second

// TelebotAdapter implements the Client interface using the gopkg.in/telebot.v3 library.
type TelebotAdapter struct {
	bot *telebot.Bot
}

func NewTelebotAdapter(b *telebot.Bot) *TelebotAdapter {
	return &TelebotAdapter{bot: b}
}

// SendMessage sends a text message to the specified chat.
func (tba *TelebotAdapter) SendMessage(chatID int64, text string, options *telebot.SendOptions) error {
	if options == nil {
		options = &telebot.SendOptions{}
	}

	recipient := &telebot.Chat{ID: chatID}
	_, err := tba.bot.Send(recipient, text, options)
	return err
}

// NewBot creates a bot for sending only (offline, no getMe call) or for long polling.
func NewBot(token string, polling bool, logger *logrus.Entry) (*telebot.Bot, error) {
	pref := telebot.Settings{
		Token:   token,
		Client:  newHTTPClient(polling),
		Offline: !polling,
		OnError: func(err error, c telebot.Context) {
			logCtx := logger.WithError(err)
			if c != nil && c.Sender() != nil && c.Chat() != nil {
				logCtx = logCtx.WithFields(logrus.Fields{"sender_id": c.Sender().ID, "chat_id": c.Chat().ID})
			}
			logCtx.Error("Telegram handler error")
		},
	}
	if polling {
		pref.Poller = &telebot.LongPoller{Timeout: 10 * time.Second}
	}
	return telebot.NewBot(pref)
}

// A long-poll getUpdates call stays open for the poller timeout, so polling bots get a wider client timeout.
func newHTTPClient(polling bool) *http.Client {
	timeout := SendTimeout
	if polling {
		timeout += 15 * time.Second
	}
	return &http.Client{Timeout: timeout}
}
