package baskets

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// Wire schemas for the backend JSON endpoints. Amounts and unit prices are
// decimal strings on the wire ("12.50"); dates are plain "2006-01-02"
// DateFields. Payloads are validated after decoding and rejected on shape
// mismatch instead of surfacing zero values into the view.

// wireDate unmarshals the backend's plain date format.
type wireDate struct {
	time.Time
}

const wireDateLayout = "2006-01-02"

func (d *wireDate) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	t, err := time.Parse(wireDateLayout, s)
	if err != nil {
		return fmt.Errorf("invalid date %q: %w", s, err)
	}
	d.Time = t
	return nil
}

func (d wireDate) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.Format(wireDateLayout))
}

type deliveryWire struct {
	URL           string   `json:"url" validate:"required"`
	Date          wireDate `json:"date" validate:"required"`
	OrderDeadline wireDate `json:"order_deadline" validate:"required"`
}

type productWire struct {
	ID        int             `json:"id" validate:"required"`
	Name      string          `json:"name" validate:"required"`
	UnitPrice decimal.Decimal `json:"unit_price"`
}

type producerWire struct {
	Name     string        `json:"name" validate:"required"`
	Products []productWire `json:"products" validate:"dive"`
}

type deliveryDetailWire struct {
	ID                 int            `json:"id" validate:"required"`
	Date               wireDate       `json:"date" validate:"required"`
	OrderDeadline      wireDate       `json:"order_deadline" validate:"required"`
	ProductsByProducer []producerWire `json:"products_by_producer" validate:"dive"`
	Message            string         `json:"message"`
}

type orderWire struct {
	URL      string          `json:"url" validate:"required"`
	Delivery deliveryWire    `json:"delivery" validate:"required"`
	Amount   decimal.Decimal `json:"amount"`
	IsOpen   bool            `json:"is_open"`
}

type orderItemWire struct {
	// Product is the product primary key; null when the product has been
	// deleted from a closed order.
	Product          *int            `json:"product"`
	ProductName      string          `json:"product_name"`
	ProductUnitPrice decimal.Decimal `json:"product_unit_price"`
	Quantity         int             `json:"quantity" validate:"gte=1"`
	Amount           decimal.Decimal `json:"amount"`
}

type orderDetailWire struct {
	URL      string          `json:"url" validate:"required"`
	Delivery deliveryWire    `json:"delivery" validate:"required"`
	Items    []orderItemWire `json:"items" validate:"required,min=1,dive"`
	Amount   decimal.Decimal `json:"amount"`
	Message  string          `json:"message"`
	IsOpen   bool            `json:"is_open"`
}

// orderRequestWire is the create/update body: pruned items only, delivery by
// primary key.
type orderRequestWire struct {
	Delivery int                    `json:"delivery"`
	Items    []orderItemRequestWire `json:"items"`
}

type orderItemRequestWire struct {
	Product  int `json:"product"`
	Quantity int `json:"quantity"`
}

func (w deliveryWire) toDomain() Delivery {
	return Delivery{
		URL:           w.URL,
		Date:          w.Date.Time,
		OrderDeadline: w.OrderDeadline.Time,
	}
}

func (w deliveryDetailWire) toDomain() *DeliveryDetail {
	d := &DeliveryDetail{
		ID:            w.ID,
		Date:          w.Date.Time,
		OrderDeadline: w.OrderDeadline.Time,
		Message:       w.Message,
		Producers:     make([]*Producer, len(w.ProductsByProducer)),
	}
	for i, pw := range w.ProductsByProducer {
		producer := &Producer{
			Name:     pw.Name,
			Products: make([]*Product, len(pw.Products)),
		}
		for j, prw := range pw.Products {
			producer.Products[j] = &Product{
				ID:        prw.ID,
				Name:      prw.Name,
				UnitPrice: prw.UnitPrice,
			}
		}
		d.Producers[i] = producer
	}
	return d
}

func (w orderWire) toDomain() *Order {
	return &Order{
		URL:      w.URL,
		Delivery: w.Delivery.toDomain(),
		Amount:   w.Amount,
		IsOpen:   w.IsOpen,
	}
}

func (w orderDetailWire) toDomain() *OrderDetail {
	o := &OrderDetail{
		URL:      w.URL,
		Delivery: w.Delivery.toDomain(),
		Items:    make([]*OrderItem, len(w.Items)),
		Amount:   w.Amount,
		Message:  w.Message,
		IsOpen:   w.IsOpen,
	}
	for i, iw := range w.Items {
		item := &OrderItem{
			ProductName:      iw.ProductName,
			ProductUnitPrice: iw.ProductUnitPrice,
			Quantity:         iw.Quantity,
			Amount:           iw.Amount,
		}
		if iw.Product != nil {
			item.ProductID = *iw.Product
		}
		o.Items[i] = item
	}
	return o
}
