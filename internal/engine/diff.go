package engine

import "storefront/internal/domain"

// Diff compares one catalog tick against the prior stock snapshot.
// Params: records from the current fetch and prior id-to-stock snapshot.
// Returns: transition events in record order and the updated snapshot.
//
// Products absent from the current fetch keep their prior snapshot values
// and emit nothing. A stock decrease to a nonzero level emits nothing.
func Diff(records []domain.ProductRecord, snapshot map[string]int) ([]domain.StockEvent, map[string]int) {
	next := make(map[string]int, len(snapshot)+len(records))
	for id, stock := range snapshot {
		next[id] = stock
	}

	var events []domain.StockEvent
	for _, record := range records {
		prior, seen := snapshot[record.ID]
		next[record.ID] = record.Stock

		event, ok := classifyTransition(record, prior, seen)
		if !ok {
			continue
		}
		events = append(events, event)
	}
	return events, next
}

// classifyTransition applies the ordered transition rules to one record.
// Params: current record, prior stock, and prior-presence flag.
// Returns: transition event and true when a rule matches.
func classifyTransition(record domain.ProductRecord, prior int, seen bool) (domain.StockEvent, bool) {
	base := domain.StockEvent{
		ProductID: record.ID,
		Name:      record.Name,
		URL:       record.URL,
		NewStock:  record.Stock,
		Price:     record.Price,
	}

	switch {
	case !seen && record.Stock > 0:
		base.Kind = domain.EventRestock
		base.Delta = record.Stock
		return base, true
	case seen && prior == 0 && record.Stock > 0:
		base.Kind = domain.EventRestock
		base.Delta = record.Stock
		return base, true
	case seen && prior > 0 && record.Stock == 0:
		base.Kind = domain.EventOutOfStock
		return base, true
	case seen && record.Stock > prior:
		base.Kind = domain.EventStockAdded
		base.Delta = record.Stock - prior
		return base, true
	default:
		return domain.StockEvent{}, false
	}
}
