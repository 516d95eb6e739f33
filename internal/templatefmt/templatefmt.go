package templatefmt

import (
	"fmt"
	"text/template"

	"storefront/internal/domain"
)

// FuncMap returns shared notification template helpers.
// Params: none.
// Returns: deterministic helper map used by config validation and runtime rendering.
func FuncMap() template.FuncMap {
	return template.FuncMap{
		"fmtPrice": FormatPrice,
		"fmtDelta": FormatDelta,
	}
}

// ParseNotificationTemplate parses one notification template with shared helpers.
// Params: template name and body.
// Returns: compiled template or parse error.
func ParseNotificationTemplate(name, body string) (*template.Template, error) {
	return template.New(name).Funcs(FuncMap()).Option("missingkey=error").Parse(body)
}

// FormatPrice renders a price range in display form.
// Params: template value expected as domain.PriceRange or *domain.PriceRange.
// Returns: "12.34 €", "10.00 € – 15.00 €" for spans, or "N/A" when unknown.
func FormatPrice(value any) string {
	var price domain.PriceRange
	switch typed := value.(type) {
	case domain.PriceRange:
		price = typed
	case *domain.PriceRange:
		if typed == nil {
			return "N/A"
		}
		price = *typed
	default:
		return "N/A"
	}

	if !price.Known {
		return "N/A"
	}
	if price.Single() {
		return fmt.Sprintf("%.2f €", price.Min)
	}
	return fmt.Sprintf("%.2f € - %.2f €", price.Min, price.Max)
}

// FormatDelta renders a stock delta with explicit sign.
// Params: template value expected as int.
// Returns: "+N" for additions, plain number otherwise.
func FormatDelta(value any) string {
	delta, ok := value.(int)
	if !ok {
		return "0"
	}
	if delta > 0 {
		return fmt.Sprintf("+%d", delta)
	}
	return fmt.Sprintf("%d", delta)
}
