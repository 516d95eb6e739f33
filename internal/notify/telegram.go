package notify

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"text/template"

	tgbot "github.com/go-telegram/bot"
	tgmodels "github.com/go-telegram/bot/models"

	"storefront/internal/config"
	"storefront/internal/domain"
	"storefront/internal/templatefmt"
)

// defaultTelegramTemplate renders one stock event as an HTML message.
const defaultTelegramTemplate = `<b>{{.Name}}</b>
Stock : {{.NewStock}} ({{fmtDelta .Delta}})
Prix : {{fmtPrice .Price}}{{if .URL}}
<a href="{{.URL}}">Acheter</a>{{end}}`

// TelegramSender sends stock alerts to the Telegram Bot API.
// Params: bot token, chat id, and message template.
// Returns: Telegram alert channel sender.
type TelegramSender struct {
	client   *tgbot.Bot
	chatID   any
	template *template.Template
	initErr  error
}

// NewTelegramSender creates the Telegram sender from notify config.
// Params: Telegram notifier settings.
// Returns: initialized sender; init failures surface on first Send.
func NewTelegramSender(cfg config.TelegramNotifier) *TelegramSender {
	sender := &TelegramSender{
		chatID: normalizeChatID(cfg.ChatID),
	}

	if strings.TrimSpace(cfg.BotToken) == "" {
		sender.initErr = errors.New("telegram bot token is required")
		return sender
	}
	if strings.TrimSpace(cfg.ChatID) == "" {
		sender.initErr = errors.New("telegram chat_id is required")
		return sender
	}

	body := cfg.Template
	if strings.TrimSpace(body) == "" {
		body = defaultTelegramTemplate
	}
	compiled, err := templatefmt.ParseNotificationTemplate("telegram", body)
	if err != nil {
		sender.initErr = fmt.Errorf("parse telegram template: %w", err)
		return sender
	}
	sender.template = compiled

	options := []tgbot.Option{
		tgbot.WithSkipGetMe(),
		tgbot.WithServerURL(strings.TrimRight(cfg.APIBase, "/")),
	}
	botClient, err := tgbot.New(cfg.BotToken, options...)
	if err != nil {
		sender.initErr = fmt.Errorf("init telegram bot: %w", err)
		return sender
	}
	sender.client = botClient
	return sender
}

// Channel returns sender channel name.
// Params: none.
// Returns: static channel key.
func (s *TelegramSender) Channel() string {
	return config.NotifyChannelTelegram
}

// Send posts one rendered stock event to the Telegram chat.
// Params: context and event payload.
// Returns: render or transport error.
func (s *TelegramSender) Send(ctx context.Context, event domain.StockEvent) error {
	if s.initErr != nil {
		return s.initErr
	}
	if s.client == nil {
		return errors.New("telegram client is not initialized")
	}

	var rendered strings.Builder
	if err := s.template.Execute(&rendered, event); err != nil {
		return fmt.Errorf("render telegram message: %w", err)
	}

	sent, err := s.client.SendMessage(ctx, &tgbot.SendMessageParams{
		ChatID:    s.chatID,
		Text:      rendered.String(),
		ParseMode: tgmodels.ParseModeHTML,
	})
	if err != nil {
		return fmt.Errorf("telegram send: %w", err)
	}
	if sent == nil || sent.ID <= 0 {
		return errors.New("telegram send returned empty message id")
	}
	return nil
}

// normalizeChatID converts numeric chat IDs to int64 and keeps non-numeric IDs as string.
// Params: configured chat ID value from TOML.
// Returns: Telegram API chat id union value.
func normalizeChatID(raw string) any {
	trimmed := strings.TrimSpace(raw)
	if numeric, err := strconv.ParseInt(trimmed, 10, 64); err == nil {
		return numeric
	}
	return trimmed
}
