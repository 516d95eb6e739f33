package notify

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"storefront/internal/config"
	"storefront/internal/domain"
	"storefront/internal/permanent"
)

// ChannelSender sends one stock alert to one channel.
// Params: context and stock event payload.
// Returns: delivery error.
type ChannelSender interface {
	Channel() string
	Send(ctx context.Context, event domain.StockEvent) error
}

// Dispatcher delivers stock alerts with per-channel retry policy.
// Params: configured channel senders and retry settings.
// Returns: alert delivery behavior.
type Dispatcher struct {
	senders  map[string]ChannelSender
	retries  map[string]config.NotifyRetry
	channels []string
	logger   *slog.Logger
}

// NewDispatcher builds the alert dispatcher from enabled channels.
// Params: notify config section and logger.
// Returns: dispatcher with one sender per enabled channel.
func NewDispatcher(cfg config.NotifyConfig, logger *slog.Logger) *Dispatcher {
	dispatcher := &Dispatcher{
		senders: make(map[string]ChannelSender),
		retries: make(map[string]config.NotifyRetry),
		logger:  logger,
	}

	if cfg.Discord.Enabled {
		dispatcher.senders[config.NotifyChannelDiscord] = NewDiscordWebhookSender(cfg.Discord)
		dispatcher.retries[config.NotifyChannelDiscord] = cfg.Discord.Retry
		dispatcher.channels = append(dispatcher.channels, config.NotifyChannelDiscord)
	}
	if cfg.Telegram.Enabled {
		dispatcher.senders[config.NotifyChannelTelegram] = NewTelegramSender(cfg.Telegram)
		dispatcher.retries[config.NotifyChannelTelegram] = cfg.Telegram.Retry
		dispatcher.channels = append(dispatcher.channels, config.NotifyChannelTelegram)
	}
	return dispatcher
}

// Channels returns configured channel list.
// Params: none.
// Returns: deterministic sender keys.
func (d *Dispatcher) Channels() []string {
	return d.channels
}

// Send delivers one stock event to one channel with its retry policy.
// Params: destination channel and event payload.
// Returns: final error after retries.
func (d *Dispatcher) Send(ctx context.Context, channel string, event domain.StockEvent) error {
	sender, ok := d.senders[channel]
	if !ok {
		return fmt.Errorf("notify channel %q is not configured", channel)
	}
	return d.sendWithRetry(ctx, sender, event, d.retries[channel])
}

// sendWithRetry sends one event with channel-specific retry policy.
// Params: sender, payload, and retry policy for the sender channel.
// Returns: final error after retries; permanent errors stop retrying.
func (d *Dispatcher) sendWithRetry(ctx context.Context, sender ChannelSender, event domain.StockEvent, retry config.NotifyRetry) error {
	if !retry.Enabled {
		return sender.Send(ctx, event)
	}

	attempt := 0
	backoff := time.Duration(retry.InitialMS) * time.Millisecond
	maxBackoff := time.Duration(retry.MaxMS) * time.Millisecond
	var timer *time.Timer

	stopTimer := func() {
		if timer == nil {
			return
		}
		if !timer.Stop() {
			select {
			case <-timer.C:
			default:
			}
		}
	}

	for {
		attempt++
		err := sender.Send(ctx, event)
		if err == nil {
			stopTimer()
			if retry.LogEachAttempt && attempt > 1 && d.logger != nil {
				d.logger.Info("notify send recovered after retries", "channel", sender.Channel(), "attempt", attempt)
			}
			return nil
		}
		if retry.LogEachAttempt && d.logger != nil {
			d.logger.Warn("notify send attempt failed", "channel", sender.Channel(), "attempt", attempt, "error", err.Error())
		}

		if permanent.Is(err) {
			stopTimer()
			return fmt.Errorf("channel %s rejected event: %w", sender.Channel(), err)
		}
		if retry.MaxAttempts > 0 && attempt >= retry.MaxAttempts {
			stopTimer()
			return fmt.Errorf("channel %s failed after %d attempts: %w", sender.Channel(), attempt, err)
		}

		if timer == nil {
			timer = time.NewTimer(backoff)
		} else {
			stopTimer()
			timer.Reset(backoff)
		}
		select {
		case <-ctx.Done():
			stopTimer()
			return ctx.Err()
		case <-timer.C:
		}

		if strings.EqualFold(retry.Backoff, "exponential") {
			backoff *= 2
			if backoff > maxBackoff {
				backoff = maxBackoff
			}
		}
	}
}
