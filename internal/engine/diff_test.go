package engine

import (
	"testing"

	"storefront/internal/domain"
)

func record(id string, stock int) domain.ProductRecord {
	return domain.ProductRecord{ID: id, Name: "Product " + id, Stock: stock}
}

func TestDiffFirstSeenWithStockEmitsRestock(t *testing.T) {
	t.Parallel()

	events, next := Diff([]domain.ProductRecord{record("p1", 5)}, map[string]int{})
	if len(events) != 1 {
		t.Fatalf("expected one event, got %d", len(events))
	}
	if events[0].Kind != domain.EventRestock || events[0].Delta != 5 {
		t.Fatalf("unexpected event: %+v", events[0])
	}
	if next["p1"] != 5 {
		t.Fatalf("snapshot not updated: %+v", next)
	}
}

func TestDiffFirstSeenEmptyRecordsSilently(t *testing.T) {
	t.Parallel()

	events, next := Diff([]domain.ProductRecord{record("p1", 0)}, map[string]int{})
	if len(events) != 0 {
		t.Fatalf("expected no events, got %+v", events)
	}
	if stock, ok := next["p1"]; !ok || stock != 0 {
		t.Fatalf("expected silent zero-stock entry, got %+v", next)
	}
}

func TestDiffZeroToPositiveEmitsRestock(t *testing.T) {
	t.Parallel()

	events, _ := Diff([]domain.ProductRecord{record("p1", 3)}, map[string]int{"p1": 0})
	if len(events) != 1 || events[0].Kind != domain.EventRestock {
		t.Fatalf("expected restock, got %+v", events)
	}
	if events[0].Delta != 3 || events[0].NewStock != 3 {
		t.Fatalf("unexpected delta: %+v", events[0])
	}
}

func TestDiffPositiveToZeroEmitsOutOfStock(t *testing.T) {
	t.Parallel()

	events, _ := Diff([]domain.ProductRecord{record("p1", 0)}, map[string]int{"p1": 4})
	if len(events) != 1 || events[0].Kind != domain.EventOutOfStock {
		t.Fatalf("expected out_of_stock, got %+v", events)
	}
	if events[0].Delta != 0 || events[0].NewStock != 0 {
		t.Fatalf("unexpected delta: %+v", events[0])
	}
}

func TestDiffIncreaseEmitsStockAdded(t *testing.T) {
	t.Parallel()

	events, _ := Diff([]domain.ProductRecord{record("p1", 7)}, map[string]int{"p1": 2})
	if len(events) != 1 || events[0].Kind != domain.EventStockAdded {
		t.Fatalf("expected stock_added, got %+v", events)
	}
	if events[0].Delta != 5 {
		t.Fatalf("unexpected delta %d", events[0].Delta)
	}
}

func TestDiffDecreaseToNonzeroIsSilent(t *testing.T) {
	t.Parallel()

	events, next := Diff([]domain.ProductRecord{record("p1", 2)}, map[string]int{"p1": 5})
	if len(events) != 0 {
		t.Fatalf("expected no events, got %+v", events)
	}
	if next["p1"] != 2 {
		t.Fatalf("snapshot must still track the decrease, got %+v", next)
	}
}

func TestDiffUnchangedStockIsSilent(t *testing.T) {
	t.Parallel()

	events, _ := Diff([]domain.ProductRecord{record("p1", 5)}, map[string]int{"p1": 5})
	if len(events) != 0 {
		t.Fatalf("expected no events, got %+v", events)
	}
}

func TestDiffKeepsUnseenProducts(t *testing.T) {
	t.Parallel()

	events, next := Diff([]domain.ProductRecord{record("p2", 1)}, map[string]int{"p1": 9, "p2": 0})
	if len(events) != 1 || events[0].ProductID != "p2" {
		t.Fatalf("unexpected events: %+v", events)
	}
	if next["p1"] != 9 {
		t.Fatalf("absent product must keep its prior stock, got %+v", next)
	}
}

func TestDiffEmptyFetchEmitsNothing(t *testing.T) {
	t.Parallel()

	events, next := Diff(nil, map[string]int{"p1": 3})
	if len(events) != 0 {
		t.Fatalf("expected no events, got %+v", events)
	}
	if next["p1"] != 3 {
		t.Fatalf("expected snapshot preserved, got %+v", next)
	}
}
