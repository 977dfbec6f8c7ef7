package notifier

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"dtek-outage-monitor/internal/models"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// Notifier owns the single notification message in one chat.
type Notifier interface {
	Send(text string) (int, error)
	Edit(messageID int, text string) (models.EditResult, error)
	Delete(messageID int) (models.DeleteResult, error)
}

const (
	descNotModified    = "message is not modified"
	descDeleteNotFound = "message to delete not found"
	descEditNotFound   = "message to edit not found"
	descCantBeDeleted  = "message can't be deleted"
)

type telegramNotifier struct {
	bot    *tgbotapi.BotAPI
	chatID int64
}

func NewTelegramNotifier(token string, chatID int64) (Notifier, error) {
	return NewTelegramNotifierWithClient(token, chatID, tgbotapi.APIEndpoint, &http.Client{})
}

// NewTelegramNotifierWithClient talks to a custom Bot API endpoint, e.g. a
// local bot API server. endpoint uses the tgbotapi.APIEndpoint format.
func NewTelegramNotifierWithClient(token string, chatID int64, endpoint string, client tgbotapi.HTTPClient) (Notifier, error) {
	bot, err := tgbotapi.NewBotAPIWithClient(token, endpoint, client)
	if err != nil {
		return nil, fmt.Errorf("could not init telegram bot: %w", err)
	}
	return &telegramNotifier{bot: bot, chatID: chatID}, nil
}

func (n *telegramNotifier) Send(text string) (int, error) {
	msg := tgbotapi.NewMessage(n.chatID, text)
	msg.ParseMode = tgbotapi.ModeHTML
	msg.DisableWebPagePreview = true
	res, err := n.bot.Send(msg)
	if err != nil {
		return 0, fmt.Errorf("%w: %w", models.ErrSend, err)
	}
	if res.MessageID == 0 {
		return 0, fmt.Errorf("%w: telegram returned no message id", models.ErrSend)
	}
	return res.MessageID, nil
}

func (n *telegramNotifier) Edit(messageID int, text string) (models.EditResult, error) {
	editMsg := tgbotapi.NewEditMessageText(n.chatID, messageID, text)
	editMsg.ParseMode = tgbotapi.ModeHTML
	editMsg.DisableWebPagePreview = true
	_, err := n.bot.Request(editMsg)
	if err == nil {
		return models.EditOK, nil
	}
	if apiErrorContains(err, descNotModified) {
		return models.EditUnchanged, nil
	}
	return models.EditOK, fmt.Errorf("%w: %w", models.ErrEdit, err)
}

func (n *telegramNotifier) Delete(messageID int) (models.DeleteResult, error) {
	_, err := n.bot.Request(tgbotapi.NewDeleteMessage(n.chatID, messageID))
	if err == nil {
		return models.DeleteOK, nil
	}
	if apiErrorContains(err, descDeleteNotFound) {
		return models.DeleteAlreadyGone, nil
	}
	return models.DeleteOK, fmt.Errorf("%w: %w", models.ErrDelete, err)
}

// IsMessageGone reports whether err says the referenced message no longer
// exists or can no longer be touched by the bot.
func IsMessageGone(err error) bool {
	return apiErrorContains(err, descEditNotFound) ||
		apiErrorContains(err, descDeleteNotFound) ||
		apiErrorContains(err, descCantBeDeleted)
}

func apiErrorContains(err error, desc string) bool {
	var tgErr *tgbotapi.Error
	if !errors.As(err, &tgErr) {
		return false
	}
	return strings.Contains(strings.ToLower(tgErr.Message), desc)
}
