package baskets

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// AlertKind identifies user feedback raised by a view operation. Rendering
// the matching copy is the caller's concern.
type AlertKind int

const (
	AlertNone AlertKind = iota
	AlertSaveSuccess
	AlertDeleteSuccess
	AlertSaveError
	AlertAmountMismatch
	AlertItemsRequired
	AlertDeleteFailed
	AlertLoadError
)

// Alert is the feedback currently shown above the view, if any.
type Alert struct {
	Kind AlertKind
	Err  error
}

// TitleKind distinguishes the new-order title from the existing-order one.
type TitleKind int

const (
	TitleNone TitleKind = iota
	TitleNewOrder
	TitleExistingOrder
)

// ItemView is one editable or snapshot line of the order view.
type ItemView struct {
	ProductID int
	Name      string
	UnitPrice decimal.Decimal
	Quantity  int
	Amount    decimal.Decimal
}

// ProducerView groups editable items under a producer. Badge is the sum of
// quantities across the producer's products; renderers hide it at zero.
type ProducerView struct {
	Name  string
	Badge int
	Items []ItemView
}

// ViewState is an immutable snapshot of the order view. All mutation happens
// inside the controller; callers receive copies.
type ViewState struct {
	Selected int // row index, -1 when nothing is selected
	Visible  bool
	Editable bool
	HasOrder bool

	Title        TitleKind
	DeliveryDate time.Time
	DeliveryID   int
	Deadline     time.Time
	Message      string

	// Producers carries the editable catalogue; Items carries the flattened
	// read-only snapshot of a closed order. Exactly one of the two is set.
	Producers []ProducerView
	Items     []ItemView

	Total decimal.Decimal
	Alert Alert
}

// Controller keeps the order view consistent as the user moves between
// deliveries, edits quantities and saves or deletes. Every refresh carries a
// generation stamp taken at operation start; a fetch that completes after
// the selection has moved on is discarded instead of overwriting the newer
// view.
type Controller struct {
	client   *Client
	log      *zap.Logger
	onChange func(ViewState)

	mu    sync.Mutex
	gen   uint64
	rows  []Row
	state ViewState
}

// ControllerOption configures a Controller.
type ControllerOption func(*Controller)

// WithLogger sets the controller logger.
func WithLogger(log *zap.Logger) ControllerOption {
	return func(c *Controller) { c.log = log }
}

// WithOnChange registers a callback invoked with a state snapshot after
// every applied transition. The callback runs outside the controller lock.
func WithOnChange(fn func(ViewState)) ControllerOption {
	return func(c *Controller) { c.onChange = fn }
}

// NewController creates a controller over the given order-list rows.
func NewController(client *Client, rows []Row, opts ...ControllerOption) *Controller {
	c := &Controller{
		client: client,
		log:    zap.NewNop(),
		rows:   append([]Row(nil), rows...),
		state:  ViewState{Selected: -1},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Rows returns a copy of the current order-list rows.
func (c *Controller) Rows() []Row {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]Row(nil), c.rows...)
}

// State returns a snapshot of the current view state.
func (c *Controller) State() ViewState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return copyState(c.state)
}

// Select marks a row as selected, clears any alert and refreshes the view
// from the backend. A concurrent Select supersedes this one: the slower
// fetch is discarded and ErrStaleView returned.
func (c *Controller) Select(ctx context.Context, row int) error {
	c.mu.Lock()
	if row < 0 || row >= len(c.rows) {
		c.mu.Unlock()
		return fmt.Errorf("row %d out of range", row)
	}
	c.gen++
	gen := c.gen
	r := c.rows[row]

	st := copyState(c.state)
	st.Selected = row
	st.Visible = false
	st.Alert = Alert{}
	notify := c.commit(st)
	c.mu.Unlock()
	notify()

	next, err := c.loadView(ctx, r)

	c.mu.Lock()
	if gen != c.gen {
		c.mu.Unlock()
		c.log.Debug("discarding stale view refresh", zap.Int("row", row))
		return ErrStaleView
	}
	if err != nil {
		st := copyState(c.state)
		st.Visible = false
		st.Alert = Alert{Kind: AlertLoadError, Err: err}
		notify := c.commit(st)
		c.mu.Unlock()
		notify()
		return err
	}
	next.Selected = row
	notify = c.commit(*next)
	c.mu.Unlock()
	notify()
	return nil
}

// loadView builds the next view state for a row, fetching the order first
// and the delivery detail only when an editable catalogue is needed.
func (c *Controller) loadView(ctx context.Context, r Row) (*ViewState, error) {
	if r.OrderURL == "" {
		detail, err := c.client.GetDelivery(ctx, r.DeliveryURL)
		if err != nil {
			return nil, err
		}
		st := editableState(detail)
		st.Title = TitleNewOrder
		return st, nil
	}

	order, err := c.client.GetOrder(ctx, r.OrderURL)
	if err != nil {
		return nil, err
	}

	if !order.IsOpen {
		// Historical order: render the saved item snapshot, no catalogue
		// fetch needed.
		st := &ViewState{
			Visible:      true,
			HasOrder:     true,
			Title:        TitleExistingOrder,
			DeliveryDate: order.Delivery.Date,
			Items:        snapshotItems(order),
			Total:        order.Amount.Round(2),
		}
		return st, nil
	}

	detail, err := c.client.GetDelivery(ctx, r.DeliveryURL)
	if err != nil {
		return nil, err
	}
	st := editableState(detail)
	st.Title = TitleExistingOrder
	st.HasOrder = true
	fillFromOrder(st, order)
	return st, nil
}

// SetQuantity sets the quantity of a product in the editable view, clears
// the alert and recomputes the item amount, producer badge and total.
func (c *Controller) SetQuantity(productID, quantity int) error {
	c.mu.Lock()
	if !c.state.Visible {
		c.mu.Unlock()
		return ErrNoSelection
	}
	if !c.state.Editable {
		c.mu.Unlock()
		return ErrReadOnly
	}
	if quantity < 0 {
		c.mu.Unlock()
		return ErrNegativeQuantity
	}

	st := copyState(c.state)
	found := false
	for pi := range st.Producers {
		for ii := range st.Producers[pi].Items {
			item := &st.Producers[pi].Items[ii]
			if item.ProductID == productID {
				item.Quantity = quantity
				item.Amount = itemAmount(item.UnitPrice, quantity)
				found = true
			}
		}
	}
	if !found {
		c.mu.Unlock()
		return fmt.Errorf("product %d not available in delivery", productID)
	}

	st.Alert = Alert{}
	recompute(&st)
	notify := c.commit(st)
	c.mu.Unlock()
	notify()
	return nil
}

// Save submits the current quantities: create when the row has no order,
// update otherwise. Items with quantity 0 are pruned; an all-zero view is a
// validation error and issues no request. On success the backend total is
// compared numerically against the local one; a match updates the row and
// hides the view, a mismatch raises a distinct alert while leaving the view
// open since the write has occurred.
func (c *Controller) Save(ctx context.Context) error {
	c.mu.Lock()
	if !c.state.Visible || c.state.Selected < 0 {
		c.mu.Unlock()
		return ErrNoSelection
	}
	if !c.state.Editable {
		c.mu.Unlock()
		return ErrReadOnly
	}
	gen := c.gen
	row := c.rows[c.state.Selected]
	deliveryID := c.state.DeliveryID
	local := c.state.Total
	items := pruneItems(c.state.Producers)
	if len(items) == 0 {
		st := copyState(c.state)
		st.Alert = Alert{Kind: AlertItemsRequired, Err: ErrNoItems}
		notify := c.commit(st)
		c.mu.Unlock()
		notify()
		return ErrNoItems
	}
	c.mu.Unlock()

	var (
		saved *OrderDetail
		err   error
	)
	if row.OrderURL == "" {
		saved, err = c.client.CreateOrder(ctx, deliveryID, items)
	} else {
		saved, err = c.client.UpdateOrder(ctx, row.OrderURL, deliveryID, items)
	}

	c.mu.Lock()
	if gen != c.gen {
		c.mu.Unlock()
		return ErrStaleView
	}
	if err != nil {
		st := copyState(c.state)
		st.Alert = Alert{Kind: AlertSaveError, Err: err}
		notify := c.commit(st)
		c.mu.Unlock()
		notify()
		return err
	}

	if !saved.Amount.Round(2).Equal(local.Round(2)) {
		mismatch := &AmountMismatchError{Local: local, Server: saved.Amount}
		st := copyState(c.state)
		st.Alert = Alert{Kind: AlertAmountMismatch, Err: mismatch}
		notify := c.commit(st)
		c.mu.Unlock()
		notify()
		return mismatch
	}

	// Clearing the selection supersedes any other request still in flight
	// for this row.
	c.gen++
	sel := c.state.Selected
	c.rows[sel].OrderURL = saved.URL
	c.rows[sel].OrderAmount = saved.Amount

	st := copyState(c.state)
	st.Selected = -1
	st.Visible = false
	st.Alert = Alert{Kind: AlertSaveSuccess}
	notify := c.commit(st)
	c.mu.Unlock()
	notify()
	return nil
}

// Delete deletes the selected row's order. A 204 clears the row and hides
// the view; anything else raises a delete-failed alert.
func (c *Controller) Delete(ctx context.Context) error {
	c.mu.Lock()
	if !c.state.Visible || c.state.Selected < 0 {
		c.mu.Unlock()
		return ErrNoSelection
	}
	if !c.state.Editable {
		c.mu.Unlock()
		return ErrReadOnly
	}
	if !c.state.HasOrder {
		c.mu.Unlock()
		return ErrNoOrder
	}
	gen := c.gen
	row := c.rows[c.state.Selected]
	c.mu.Unlock()

	err := c.client.DeleteOrder(ctx, row.OrderURL)

	c.mu.Lock()
	if gen != c.gen {
		c.mu.Unlock()
		return ErrStaleView
	}
	if err != nil {
		st := copyState(c.state)
		st.Alert = Alert{Kind: AlertDeleteFailed, Err: err}
		notify := c.commit(st)
		c.mu.Unlock()
		notify()
		return err
	}

	c.gen++
	sel := c.state.Selected
	c.rows[sel].OrderURL = ""
	c.rows[sel].OrderAmount = decimal.Decimal{}

	st := copyState(c.state)
	st.Selected = -1
	st.Visible = false
	st.Alert = Alert{Kind: AlertDeleteSuccess}
	notify := c.commit(st)
	c.mu.Unlock()
	notify()
	return nil
}

// commit stores the new state under the caller-held lock and returns the
// notification to run after unlocking.
func (c *Controller) commit(st ViewState) func() {
	c.state = st
	if c.onChange == nil {
		return func() {}
	}
	snapshot := copyState(st)
	fn := c.onChange
	return func() { fn(snapshot) }
}

func editableState(detail *DeliveryDetail) *ViewState {
	st := &ViewState{
		Visible:      true,
		Editable:     true,
		DeliveryDate: detail.Date,
		DeliveryID:   detail.ID,
		Deadline:     detail.OrderDeadline,
		Message:      detail.Message,
		Producers:    make([]ProducerView, len(detail.Producers)),
	}
	for i, producer := range detail.Producers {
		pv := ProducerView{
			Name:  producer.Name,
			Items: make([]ItemView, len(producer.Products)),
		}
		for j, product := range producer.Products {
			pv.Items[j] = ItemView{
				ProductID: product.ID,
				Name:      product.Name,
				UnitPrice: product.UnitPrice,
			}
		}
		st.Producers[i] = pv
	}
	recompute(st)
	return st
}

// fillFromOrder pre-fills an editable catalogue with an order's quantities.
// Order items whose product is no longer offered are skipped; the backend
// prunes these itself when the catalogue changes.
func fillFromOrder(st *ViewState, order *OrderDetail) {
	byProduct := make(map[int]*OrderItem, len(order.Items))
	for _, item := range order.Items {
		byProduct[item.ProductID] = item
	}
	for pi := range st.Producers {
		for ii := range st.Producers[pi].Items {
			item := &st.Producers[pi].Items[ii]
			if oi, ok := byProduct[item.ProductID]; ok {
				item.Quantity = oi.Quantity
				item.Amount = oi.Amount.Round(2)
			}
		}
	}
	recompute(st)
}

func snapshotItems(order *OrderDetail) []ItemView {
	items := make([]ItemView, len(order.Items))
	for i, item := range order.Items {
		items[i] = ItemView{
			ProductID: item.ProductID,
			Name:      item.ProductName,
			UnitPrice: item.ProductUnitPrice,
			Quantity:  item.Quantity,
			Amount:    item.Amount.Round(2),
		}
	}
	return items
}

// recompute refreshes item amounts, producer badges and the running total
// from the current quantities.
func recompute(st *ViewState) {
	total := decimal.Decimal{}
	for pi := range st.Producers {
		badge := 0
		for ii := range st.Producers[pi].Items {
			item := &st.Producers[pi].Items[ii]
			item.Amount = itemAmount(item.UnitPrice, item.Quantity)
			total = total.Add(item.Amount)
			badge += item.Quantity
		}
		st.Producers[pi].Badge = badge
	}
	st.Total = total.Round(2)
}

func itemAmount(unitPrice decimal.Decimal, quantity int) decimal.Decimal {
	return unitPrice.Mul(decimal.NewFromInt(int64(quantity))).Round(2)
}

func pruneItems(producers []ProducerView) []OrderItemInput {
	var items []OrderItemInput
	for _, producer := range producers {
		for _, item := range producer.Items {
			if item.Quantity > 0 {
				items = append(items, OrderItemInput{
					ProductID: item.ProductID,
					Quantity:  item.Quantity,
				})
			}
		}
	}
	return items
}

func copyState(st ViewState) ViewState {
	out := st
	if st.Producers != nil {
		out.Producers = make([]ProducerView, len(st.Producers))
		for i, producer := range st.Producers {
			out.Producers[i] = producer
			out.Producers[i].Items = append([]ItemView(nil), producer.Items...)
		}
	}
	if st.Items != nil {
		out.Items = append([]ItemView(nil), st.Items...)
	}
	return out
}

// NextOrderRows builds the "next orders" rows: upcoming deliveries joined
// with the user's open orders.
func NextOrderRows(ctx context.Context, client *Client) ([]Row, error) {
	deliveries, err := client.ListDeliveries(ctx)
	if err != nil {
		return nil, err
	}
	orders, err := client.ListOrders(ctx)
	if err != nil {
		return nil, err
	}

	byDelivery := make(map[string]*Order, len(orders))
	for _, order := range orders {
		byDelivery[order.Delivery.URL] = order
	}

	rows := make([]Row, len(deliveries))
	for i, delivery := range deliveries {
		row := Row{
			DeliveryDate:  delivery.Date,
			DeliveryURL:   delivery.URL,
			OrderDeadline: delivery.OrderDeadline,
		}
		if order, ok := byDelivery[delivery.URL]; ok {
			row.OrderURL = order.URL
			row.OrderAmount = order.Amount
		}
		rows[i] = row
	}
	return rows, nil
}

// OrderHistoryRows builds the history rows: the user's closed orders, most
// recent delivery first as returned by the backend.
func OrderHistoryRows(ctx context.Context, client *Client) ([]Row, error) {
	orders, err := client.ListOrders(ctx)
	if err != nil {
		return nil, err
	}
	var rows []Row
	for _, order := range orders {
		if order.IsOpen {
			continue
		}
		rows = append(rows, Row{
			DeliveryDate:  order.Delivery.Date,
			DeliveryURL:   order.Delivery.URL,
			OrderURL:      order.URL,
			OrderAmount:   order.Amount,
			OrderDeadline: order.Delivery.OrderDeadline,
		})
	}
	return rows, nil
}
