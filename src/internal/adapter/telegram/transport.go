package telegram

import (
	"context"
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/joker-bingo/payment-bot/src/internal/conversation"
)

// Transport implements conversation.Transport over the Telegram Bot API.
type Transport struct {
	bot *tgbotapi.BotAPI
}

func NewTransport(bot *tgbotapi.BotAPI) *Transport {
	return &Transport{bot: bot}
}

func (t *Transport) SendText(_ context.Context, chatID int64, text string) error {
	if _, err := t.bot.Send(tgbotapi.NewMessage(chatID, text)); err != nil {
		return fmt.Errorf("send message to chat %d: %w", chatID, err)
	}
	return nil
}

func (t *Transport) SendButtons(_ context.Context, chatID int64, text string, buttons [][]conversation.Button) (int, error) {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ReplyMarkup = inlineKeyboard(buttons)

	sent, err := t.bot.Send(msg)
	if err != nil {
		return 0, fmt.Errorf("send buttons to chat %d: %w", chatID, err)
	}
	return sent.MessageID, nil
}

func (t *Transport) SendLinkButton(_ context.Context, chatID int64, text string, label string, url string) error {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ReplyMarkup = tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(tgbotapi.NewInlineKeyboardButtonURL(label, url)),
	)

	if _, err := t.bot.Send(msg); err != nil {
		return fmt.Errorf("send link button to chat %d: %w", chatID, err)
	}
	return nil
}

func (t *Transport) SendPhoto(_ context.Context, chatID int64, path string, caption string, buttons [][]conversation.Button) error {
	photo := tgbotapi.NewPhoto(chatID, tgbotapi.FilePath(path))
	photo.Caption = caption
	if len(buttons) > 0 {
		photo.ReplyMarkup = inlineKeyboard(buttons)
	}

	if _, err := t.bot.Send(photo); err != nil {
		return fmt.Errorf("send photo to chat %d: %w", chatID, err)
	}
	return nil
}

func (t *Transport) AcknowledgeSelection(_ context.Context, callbackID string) error {
	if _, err := t.bot.Request(tgbotapi.NewCallback(callbackID, "")); err != nil {
		return fmt.Errorf("answer callback query: %w", err)
	}
	return nil
}

// ClearButtons removes the inline keyboard from an already-sent prompt.
// Editing an already-cleared message is harmless.
func (t *Transport) ClearButtons(_ context.Context, chatID int64, messageID int) error {
	edit := tgbotapi.NewEditMessageReplyMarkup(chatID, messageID, tgbotapi.InlineKeyboardMarkup{
		InlineKeyboard: [][]tgbotapi.InlineKeyboardButton{},
	})

	if _, err := t.bot.Request(edit); err != nil {
		return fmt.Errorf("clear buttons on message %d: %w", messageID, err)
	}
	return nil
}

func inlineKeyboard(buttons [][]conversation.Button) tgbotapi.InlineKeyboardMarkup {
	rows := make([][]tgbotapi.InlineKeyboardButton, 0, len(buttons))
	for _, row := range buttons {
		keyboardRow := make([]tgbotapi.InlineKeyboardButton, 0, len(row))
		for _, button := range row {
			keyboardRow = append(keyboardRow, tgbotapi.NewInlineKeyboardButtonData(button.Label, button.Data))
		}
		rows = append(rows, keyboardRow)
	}
	return tgbotapi.InlineKeyboardMarkup{InlineKeyboard: rows}
}
