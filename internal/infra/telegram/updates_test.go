package telegram

import (
	"testing"

	"task_practice_bot/internal/app"

	"github.com/stretchr/testify/assert"
	"gopkg.in/telebot.v3"
)

func TestMessageFromUpdate(t *testing.T) {
	sender := &telebot.User{ID: 42, Username: "student"}
	chat := &telebot.Chat{ID: 1001}

	testCases := []struct {
		name   string
		update *telebot.Update
		want   app.IncomingMessage
		ok     bool
	}{
		{
			name:   "text message",
			update: &telebot.Update{Message: &telebot.Message{Sender: sender, Chat: chat, Text: "/start"}},
			want:   app.IncomingMessage{ChatID: 1001, UserID: 42, Username: "student", Text: "/start"},
			ok:     true,
		},
		{name: "nil update", update: nil},
		{name: "no message", update: &telebot.Update{}},
		{name: "no sender", update: &telebot.Update{Message: &telebot.Message{Chat: chat, Text: "hi"}}},
		{name: "no chat", update: &telebot.Update{Message: &telebot.Message{Sender: sender, Text: "hi"}}},
		{name: "photo without text", update: &telebot.Update{Message: &telebot.Message{Sender: sender, Chat: chat}}},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got, ok := MessageFromUpdate(tc.update)
			assert.Equal(t, tc.ok, ok)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestNewHTTPClient(t *testing.T) {
	assert.Equal(t, SendTimeout, newHTTPClient(false).Timeout)
	assert.Greater(t, newHTTPClient(true).Timeout, SendTimeout)
}
