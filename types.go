package baskets

import (
	"time"

	"github.com/shopspring/decimal"
)

// Delivery is a scheduled distribution event, as returned by the delivery
// list endpoint. Only deliveries whose order deadline has not passed are
// listed by the backend.
type Delivery struct {
	URL           string
	Date          time.Time
	OrderDeadline time.Time
}

// DeliveryDetail is a delivery with its orderable catalogue, grouped by
// producer.
type DeliveryDetail struct {
	ID            int
	Date          time.Time
	OrderDeadline time.Time
	Message       string
	Producers     []*Producer
}

// Producer is a supplier grouping of products within a delivery.
type Producer struct {
	Name     string
	Products []*Product
}

// Product is a single orderable product.
type Product struct {
	ID        int
	Name      string
	UnitPrice decimal.Decimal
}

// Order is a summary entry from the order list endpoint. A user has at most
// one order per delivery.
type Order struct {
	URL      string
	Delivery Delivery
	Amount   decimal.Decimal
	IsOpen   bool
}

// OrderDetail is a full order with its items. The backend owns Amount; the
// view recomputes it independently as a save-integrity check.
type OrderDetail struct {
	URL      string
	Delivery Delivery
	Items    []*OrderItem
	Amount   decimal.Decimal
	Message  string
	IsOpen   bool
}

// OrderItem is a (product, quantity) pair within an order. ProductName and
// ProductUnitPrice are the backend's saved snapshot, kept consistent even if
// the product is later modified or deleted. ProductID is 0 when the product
// has been deleted (possible on closed orders only).
type OrderItem struct {
	ProductID        int
	ProductName      string
	ProductUnitPrice decimal.Decimal
	Quantity         int
	Amount           decimal.Decimal
}

// OrderItemInput is an item to submit on create/update. Zero-quantity items
// are never submitted.
type OrderItemInput struct {
	ProductID int
	Quantity  int
}

// Row is one entry of the order list table: a delivery and the user's order
// against it, if any. OrderURL is empty when no order exists yet.
type Row struct {
	DeliveryDate  time.Time
	DeliveryURL   string
	OrderURL      string
	OrderAmount   decimal.Decimal
	OrderDeadline time.Time
}
