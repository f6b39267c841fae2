package telegram

import "gopkg.in/telebot.v3"

//go:generate mockgen -source=./client.go -package=telegrammocks -destination=./mocks/client.mock.go Client

// Client sends outbound chat messages. Options carry the parse mode and an optional reply keyboard.
type Client interface {
	SendMessage(chatID int64, text string, options *telebot.SendOptions) error
}
