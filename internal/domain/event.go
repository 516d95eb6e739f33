package domain

// EventKind classifies one stock transition between two ticks.
// Params: constants restock, stock_added, and out_of_stock.
// Returns: transition kind consumed by the alert dispatcher.
type EventKind string

const (
	// EventRestock marks stock returning from zero or first appearance with stock.
	EventRestock EventKind = "restock"
	// EventStockAdded marks a stock increase on an already stocked product.
	EventStockAdded EventKind = "stock_added"
	// EventOutOfStock marks stock dropping to zero.
	EventOutOfStock EventKind = "out_of_stock"
)

// StockEvent is one detected stock transition for a product.
// Params: product identity, transition kind, and stock deltas.
// Returns: transient payload created by the diff engine, consumed once by dispatch.
type StockEvent struct {
	ProductID string     `json:"product_id"`
	Kind      EventKind  `json:"kind"`
	Name      string     `json:"name"`
	URL       string     `json:"url"`
	NewStock  int        `json:"new_stock"`
	Delta     int        `json:"delta"`
	Price     PriceRange `json:"price"`
}
