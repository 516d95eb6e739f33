package domain

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// ChannelKey identifies one destination display surface.
// Params: configured surface keys from channel rules.
// Returns: classification target for product displays.
type ChannelKey string

const (
	// ChannelNitro is the default key for nitro product displays.
	ChannelNitro ChannelKey = "nitro"
	// ChannelReactions is the default key for reaction product displays.
	ChannelReactions ChannelKey = "reactions"
	// ChannelMembers is the default key for member product displays.
	ChannelMembers ChannelKey = "members"
	// ChannelDecoration is the default key for decoration product displays.
	ChannelDecoration ChannelKey = "decoration"
	// ChannelAccount is the default key for account product displays.
	ChannelAccount ChannelKey = "account"
	// ChannelBoost is the default key for boost product displays.
	ChannelBoost ChannelKey = "boost"
)

const defaultProductName = "Unknown product"

// PriceRange stores one normalized product price as a single value or min/max span.
// Params: numeric bounds and presence flag.
// Returns: price metadata safe against missing source fields.
type PriceRange struct {
	Min   float64 `json:"min"`
	Max   float64 `json:"max"`
	Known bool    `json:"known"`
}

// Single reports whether the range collapses to one price.
// Params: none.
// Returns: true when min equals max.
func (p PriceRange) Single() bool {
	return p.Min == p.Max
}

// ProductRecord is one normalized catalog product for a tick.
// Params: stable id, display name, aggregated stock, price range, and buy URL.
// Returns: immutable per-tick product snapshot.
type ProductRecord struct {
	ID    string
	Name  string
	Stock int
	Price PriceRange
	URL   string
}

// rawProduct mirrors the heterogeneous catalog payload before normalization.
// Params: duck-typed fields observed across catalog API variants.
// Returns: intermediate shape consumed by normalizeProduct.
type rawProduct struct {
	ID             any          `json:"id"`
	ProductID      any          `json:"product_id"`
	Name           string       `json:"name"`
	StockCount     any          `json:"stock_count"`
	Stock          any          `json:"stock"`
	Price          any          `json:"price"`
	FormattedPrice any          `json:"formatted_price"`
	SalePrice      any          `json:"sale_price"`
	RegularPrice   any          `json:"regular_price"`
	URL            string       `json:"url"`
	Path           string       `json:"path"`
	Variants       []rawVariant `json:"variants"`
}

// rawVariant is one product variant sub-record from the catalog payload.
// Params: per-variant stock and price fields.
// Returns: aggregation input for stock sum and price span.
type rawVariant struct {
	Stock          any `json:"stock"`
	StockCount     any `json:"stock_count"`
	Price          any `json:"price"`
	FormattedPrice any `json:"formatted_price"`
}

// productEnvelope is the catalog list response wrapper.
// Params: data array of raw products.
// Returns: decoded payload body.
type productEnvelope struct {
	Data []rawProduct `json:"data"`
}

// DecodeProducts decodes and normalizes one catalog list payload.
// Params: raw JSON body and product URL base for records without explicit url.
// Returns: normalized product records or decode error for non-parseable body.
func DecodeProducts(raw []byte, productURLBase string) ([]ProductRecord, error) {
	var envelope productEnvelope
	if err := json.Unmarshal(raw, &envelope); err != nil {
		// Some catalog variants return the bare array without the data wrapper.
		if arrErr := json.Unmarshal(raw, &envelope.Data); arrErr != nil {
			return nil, fmt.Errorf("decode products: %w", err)
		}
	}

	records := make([]ProductRecord, 0, len(envelope.Data))
	for _, raw := range envelope.Data {
		record, ok := normalizeProduct(raw, productURLBase)
		if !ok {
			continue
		}
		records = append(records, record)
	}
	return records, nil
}

// normalizeProduct converts one raw product into the canonical record shape.
// Params: raw payload fields and product URL base.
// Returns: normalized record and false when the record carries no usable id.
func normalizeProduct(raw rawProduct, productURLBase string) (ProductRecord, bool) {
	id := coerceString(raw.ID)
	if id == "" {
		id = coerceString(raw.ProductID)
	}
	if id == "" {
		return ProductRecord{}, false
	}

	name := strings.TrimSpace(raw.Name)
	if name == "" {
		name = defaultProductName
	}

	return ProductRecord{
		ID:    id,
		Name:  name,
		Stock: normalizeStock(raw),
		Price: normalizePrice(raw),
		URL:   normalizeURL(raw, id, productURLBase),
	}, true
}

// normalizeStock resolves stock from direct fields or variant sum.
// Params: raw product payload.
// Returns: non-negative aggregated stock count.
func normalizeStock(raw rawProduct) int {
	if value, ok := coerceInt(raw.StockCount); ok {
		return clampStock(value)
	}
	if value, ok := coerceInt(raw.Stock); ok {
		return clampStock(value)
	}
	if len(raw.Variants) == 0 {
		return 0
	}
	total := 0
	for _, variant := range raw.Variants {
		if value, ok := coerceInt(variant.Stock); ok {
			total += clampStock(value)
			continue
		}
		if value, ok := coerceInt(variant.StockCount); ok {
			total += clampStock(value)
		}
	}
	return total
}

// normalizePrice resolves price from direct fields or min/max over variants.
// Params: raw product payload.
// Returns: price range with Known=false when no source field parses.
func normalizePrice(raw rawProduct) PriceRange {
	for _, candidate := range []any{raw.Price, raw.FormattedPrice, raw.SalePrice, raw.RegularPrice} {
		if value, ok := coerceFloat(candidate); ok {
			return PriceRange{Min: value, Max: value, Known: true}
		}
	}

	span := PriceRange{}
	for _, variant := range raw.Variants {
		value, ok := coerceFloat(variant.Price)
		if !ok {
			value, ok = coerceFloat(variant.FormattedPrice)
		}
		if !ok {
			continue
		}
		if !span.Known {
			span = PriceRange{Min: value, Max: value, Known: true}
			continue
		}
		if value < span.Min {
			span.Min = value
		}
		if value > span.Max {
			span.Max = value
		}
	}
	return span
}

// normalizeURL resolves buy link from explicit url or path-based fallback.
// Params: raw product payload, normalized id, and product URL base.
// Returns: canonical product URL or empty string without a base.
func normalizeURL(raw rawProduct, id, productURLBase string) string {
	if url := strings.TrimSpace(raw.URL); url != "" {
		return url
	}
	base := strings.TrimRight(strings.TrimSpace(productURLBase), "/")
	if base == "" {
		return ""
	}
	slug := strings.TrimSpace(raw.Path)
	if slug == "" {
		slug = id
	}
	return base + "/" + slug
}

func clampStock(value int) int {
	if value < 0 {
		return 0
	}
	return value
}

// coerceString converts duck-typed id values into a trimmed string.
// Params: raw value decoded as string or number.
// Returns: normalized string or empty when unusable.
func coerceString(value any) string {
	switch typed := value.(type) {
	case string:
		return strings.TrimSpace(typed)
	case float64:
		return strconv.FormatFloat(typed, 'f', -1, 64)
	case json.Number:
		return typed.String()
	default:
		return ""
	}
}

// coerceInt converts duck-typed stock values into int.
// Params: raw value decoded as number or numeric string.
// Returns: integer value and parse success flag.
func coerceInt(value any) (int, bool) {
	parsed, ok := coerceFloat(value)
	if !ok {
		return 0, false
	}
	return int(parsed), true
}

// coerceFloat converts duck-typed price values into float64.
// Params: raw value decoded as number or numeric string.
// Returns: float value and parse success flag.
func coerceFloat(value any) (float64, bool) {
	switch typed := value.(type) {
	case float64:
		return typed, true
	case json.Number:
		parsed, err := typed.Float64()
		if err != nil {
			return 0, false
		}
		return parsed, true
	case string:
		trimmed := strings.TrimSpace(typed)
		if trimmed == "" {
			return 0, false
		}
		parsed, err := strconv.ParseFloat(trimmed, 64)
		if err != nil {
			return 0, false
		}
		return parsed, true
	default:
		return 0, false
	}
}
