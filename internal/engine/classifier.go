package engine

import (
	"strings"

	"storefront/internal/config"
	"storefront/internal/domain"
)

// channelRule is one compiled keyword group bound to a channel key.
type channelRule struct {
	key      domain.ChannelKey
	keywords []string
}

// Classifier routes product names to display channels by ordered keyword match.
// Params: compiled rules in configuration order and a fallback key.
// Returns: deterministic channel assignment for any product name.
type Classifier struct {
	rules    []channelRule
	fallback domain.ChannelKey
}

// NewClassifier compiles channel rules from runtime config.
// Params: ordered channel rules and the default channel key.
// Returns: classifier with lower-cased keyword groups.
func NewClassifier(channels []config.ChannelConfig, defaultKey string) *Classifier {
	rules := make([]channelRule, 0, len(channels))
	for _, channel := range channels {
		keywords := make([]string, 0, len(channel.Keywords))
		for _, keyword := range channel.Keywords {
			trimmed := strings.ToLower(strings.TrimSpace(keyword))
			if trimmed == "" {
				continue
			}
			keywords = append(keywords, trimmed)
		}
		rules = append(rules, channelRule{
			key:      domain.ChannelKey(strings.ToLower(channel.Key)),
			keywords: keywords,
		})
	}
	return &Classifier{
		rules:    rules,
		fallback: domain.ChannelKey(strings.ToLower(defaultKey)),
	}
}

// Classify resolves the display channel for one product name.
// Params: product display name.
// Returns: first matching rule key in configuration order, fallback otherwise.
func (c *Classifier) Classify(name string) domain.ChannelKey {
	lowered := strings.ToLower(name)
	for _, rule := range c.rules {
		for _, keyword := range rule.keywords {
			if strings.Contains(lowered, keyword) {
				return rule.key
			}
		}
	}
	return c.fallback
}
