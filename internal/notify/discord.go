package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"storefront/internal/config"
	"storefront/internal/display"
	"storefront/internal/domain"
	"storefront/internal/permanent"
	"storefront/internal/templatefmt"
)

const (
	colorRestock    = 0x00ff00
	colorStockAdded = 0x3498db
	colorOutOfStock = 0xff0000
)

// DiscordWebhookSender posts stock alert embeds to one Discord webhook.
// Params: webhook URL, embed decorations, and bounded HTTP client.
// Returns: Discord alert channel sender.
type DiscordWebhookSender struct {
	client          *http.Client
	webhookURL      string
	mentionEveryone bool
	imageURL        string
	footer          string
}

// NewDiscordWebhookSender creates the webhook sender from notify config.
// Params: Discord notifier settings.
// Returns: initialized sender.
func NewDiscordWebhookSender(cfg config.DiscordNotifier) *DiscordWebhookSender {
	return &DiscordWebhookSender{
		client: &http.Client{
			Timeout: time.Duration(cfg.TimeoutSec) * time.Second,
		},
		webhookURL:      cfg.WebhookURL,
		mentionEveryone: cfg.MentionEveryone,
		imageURL:        cfg.ImageURL,
		footer:          cfg.Footer,
	}
}

// Channel returns sender channel name.
// Params: none.
// Returns: static channel key.
func (s *DiscordWebhookSender) Channel() string {
	return config.NotifyChannelDiscord
}

// webhookPayload is the webhook execute request body.
type webhookPayload struct {
	Content string          `json:"content,omitempty"`
	Embeds  []display.Embed `json:"embeds"`
}

// Send posts one stock event embed to the webhook.
// Params: context and event payload.
// Returns: transport error; 4xx responses are permanent.
func (s *DiscordWebhookSender) Send(ctx context.Context, event domain.StockEvent) error {
	payload := webhookPayload{
		Embeds: []display.Embed{s.buildEmbed(event)},
	}
	if s.mentionEveryone && event.Kind == domain.EventRestock {
		payload.Content = "@everyone"
	}

	encoded, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encode webhook payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.webhookURL, bytes.NewReader(encoded))
	if err != nil {
		return fmt.Errorf("build webhook request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("webhook request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 1<<20))

	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		return nil
	case resp.StatusCode == http.StatusTooManyRequests:
		return fmt.Errorf("webhook rate limited")
	case resp.StatusCode >= 400 && resp.StatusCode < 500:
		return permanent.Mark(fmt.Errorf("webhook rejected request with status %d", resp.StatusCode))
	default:
		return fmt.Errorf("webhook responded with status %d", resp.StatusCode)
	}
}

// buildEmbed renders one stock event into its alert embed.
// Params: event payload.
// Returns: kind-specific embed with price, stock, and buy link fields.
func (s *DiscordWebhookSender) buildEmbed(event domain.StockEvent) display.Embed {
	embed := display.Embed{
		Fields: []display.EmbedField{
			{Name: "Produit", Value: event.Name, Inline: true},
			{Name: "Stock", Value: fmt.Sprintf("%d", event.NewStock), Inline: true},
		},
	}

	switch event.Kind {
	case domain.EventRestock:
		embed.Title = "🚀 Restock !"
		embed.Description = fmt.Sprintf("Le produit **%s** est de retour en stock ! 🎉", event.Name)
		embed.Color = colorRestock
		embed.Fields = append(embed.Fields, display.EmbedField{
			Name: "Ajouté", Value: templatefmt.FormatDelta(event.Delta), Inline: true,
		})
	case domain.EventStockAdded:
		embed.Title = "📈 Stock augmenté | " + event.Name
		embed.Description = fmt.Sprintf("➕ %d unités ajoutées\n📦 Nouveau stock : **%d**", event.Delta, event.NewStock)
		embed.Color = colorStockAdded
		embed.Fields = append(embed.Fields, display.EmbedField{
			Name: "Ajouté", Value: templatefmt.FormatDelta(event.Delta), Inline: true,
		})
	case domain.EventOutOfStock:
		embed.Title = "❌ Rupture de stock | " + event.Name
		embed.Description = fmt.Sprintf("Le produit **%s** est maintenant en rupture ! 🛑", event.Name)
		embed.Color = colorOutOfStock
	}

	embed.Fields = append(embed.Fields, display.EmbedField{
		Name: "Prix", Value: templatefmt.FormatPrice(event.Price), Inline: true,
	})
	if event.URL != "" {
		embed.URL = event.URL
		embed.Fields = append(embed.Fields, display.EmbedField{
			Name: "Lien", Value: fmt.Sprintf("[Acheter](%s)", event.URL),
		})
	}
	if s.footer != "" {
		embed.Footer = &display.EmbedFooter{Text: s.footer}
	}
	if s.imageURL != "" {
		embed.Image = &display.EmbedImage{URL: s.imageURL}
	}
	return embed
}
