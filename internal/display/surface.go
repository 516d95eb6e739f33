package display

import (
	"context"
	"errors"
	"fmt"

	"storefront/internal/domain"
	"storefront/internal/templatefmt"
)

// ErrNotFound indicates the target message no longer exists on the platform.
var ErrNotFound = errors.New("message not found")

const (
	colorInStock    = 0x00ff00
	colorOutOfStock = 0xff0000
)

// Surface abstracts the chat-platform message API used for product displays.
// Params: surface and message identifiers plus rendered content.
// Returns: platform message handles and delivery errors.
type Surface interface {
	CreateMessage(ctx context.Context, surfaceID string, content MessageContent) (string, error)
	FetchMessage(ctx context.Context, surfaceID, messageID string) (MessageContent, error)
	EditMessage(ctx context.Context, surfaceID, messageID string, content MessageContent) error
}

// MessageContent is one rendered display message payload.
// Params: optional plain text and embed list.
// Returns: platform-agnostic message body.
type MessageContent struct {
	Content string  `json:"content,omitempty"`
	Embeds  []Embed `json:"embeds,omitempty"`
}

// Embed is one rich content block inside a display message.
// Params: title, description, accent color, and optional footer.
// Returns: embed payload in platform wire shape.
type Embed struct {
	Title       string       `json:"title,omitempty"`
	Description string       `json:"description,omitempty"`
	URL         string       `json:"url,omitempty"`
	Color       int          `json:"color,omitempty"`
	Fields      []EmbedField `json:"fields,omitempty"`
	Footer      *EmbedFooter `json:"footer,omitempty"`
	Image       *EmbedImage  `json:"image,omitempty"`
}

// EmbedField is one name/value pair inside an embed.
type EmbedField struct {
	Name   string `json:"name"`
	Value  string `json:"value"`
	Inline bool   `json:"inline,omitempty"`
}

// EmbedFooter is the small trailing line of an embed.
type EmbedFooter struct {
	Text string `json:"text"`
}

// EmbedImage is one embedded image reference.
type EmbedImage struct {
	URL string `json:"url"`
}

// BuildProductMessage renders one product record into its display message.
// Params: normalized product record.
// Returns: message content with stock-colored embed.
func BuildProductMessage(record domain.ProductRecord) MessageContent {
	color := colorInStock
	status := fmt.Sprintf("✅ En stock : **%d**", record.Stock)
	if record.Stock == 0 {
		color = colorOutOfStock
		status = "❌ Rupture de stock"
	}

	embed := Embed{
		Title: record.Name,
		Color: color,
		Fields: []EmbedField{
			{Name: "Stock", Value: status, Inline: true},
			{Name: "Prix", Value: templatefmt.FormatPrice(record.Price), Inline: true},
		},
	}
	if record.URL != "" {
		embed.URL = record.URL
		embed.Fields = append(embed.Fields, EmbedField{
			Name:  "Acheter",
			Value: fmt.Sprintf("[Lien](%s)", record.URL),
		})
	}

	return MessageContent{Embeds: []Embed{embed}}
}
