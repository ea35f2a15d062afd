package service

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/sync/errgroup"

	"github.com/GTDGit/catalog_api/internal/catalog"
	"github.com/GTDGit/catalog_api/internal/models"
	"github.com/GTDGit/catalog_api/internal/repository"
)

// OrderLimits caps order pages at 20 rows.
var OrderLimits = catalog.Limits{Default: 20, Max: 20}

// OrderStore is the order persistence used by OrderService.
type OrderStore interface {
	Create(ctx context.Context, o *models.Order) error
	GetByID(ctx context.Context, id string) (*models.Order, error)
	Replace(ctx context.Context, o *models.Order) error
	Delete(ctx context.Context, id string) (*models.Order, error)
	Find(ctx context.Context, q repository.OrderQuery) ([]models.Order, error)
	Count(ctx context.Context, q repository.OrderQuery) (int64, error)
}

// OrderItemInput is one requested order line.
type OrderItemInput struct {
	ProductID     string
	Quantity      int
	Price         float64
	Size          string
	Color         string
	SelectedIndex *int
}

// OrderInput carries the fields of a new order. Optional charges default
// to zero and Status defaults to Processing.
type OrderInput struct {
	UserID          string
	Items           []OrderItemInput
	ShippingAddress models.ShippingAddress
	Subtotal        float64
	Tax             float64
	ShippingCharges float64
	Discount        float64
	Total           float64
	PaymentMethod   string
	Status          string
}

// OrderUpdate changes the mutable parts of an order. Nil fields are left
// untouched. Line items and amounts are fixed once the order exists.
type OrderUpdate struct {
	Status          *string
	PaymentMethod   *string
	ShippingAddress *models.ShippingAddress
}

// OrderSearch is a parsed order search.
type OrderSearch struct {
	Query repository.OrderQuery
	Page  int
	Limit int
}

// OrderPage is one page of an order search.
type OrderPage struct {
	Orders     []models.Order
	Page       int
	Limit      int
	TotalItems int64
}

// ParseOrderSearch applies the catalog sort-key and paging rules to an
// order search. status and userID are optional filters.
func ParseOrderSearch(status, userID, sortKey, page, limit string) (*OrderSearch, error) {
	sort, err := catalog.ParseSort(sortKey, repository.OrderSortFields)
	if err != nil {
		return nil, err
	}
	q := repository.OrderQuery{Sort: sort}
	if status = strings.TrimSpace(status); status != "" {
		if q.Status, err = parseStatus(status); err != nil {
			return nil, err
		}
	}
	if userID = strings.TrimSpace(userID); userID != "" {
		if q.UserID, err = parseObjectID("userId", userID); err != nil {
			return nil, err
		}
	}
	p, l := catalog.ParsePaging(page, limit, OrderLimits)
	q.Skip, q.Limit = (p-1)*l, l
	return &OrderSearch{Query: q, Page: p, Limit: l}, nil
}

// OrderService manages customer orders.
type OrderService struct {
	orders  OrderStore
	reports ReportInvalidator
	now     func() time.Time
}

// NewOrderService constructs an OrderService.
func NewOrderService(orders OrderStore, reports ReportInvalidator) *OrderService {
	return &OrderService{orders: orders, reports: reports, now: time.Now}
}

func (s *OrderService) Get(ctx context.Context, id string) (*models.Order, error) {
	return s.orders.GetByID(ctx, id)
}

// Search returns one page of orders. The count and the page run in parallel.
func (s *OrderService) Search(ctx context.Context, search *OrderSearch) (*OrderPage, error) {
	page := &OrderPage{Page: search.Page, Limit: search.Limit}
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		page.TotalItems, err = s.orders.Count(gctx, search.Query)
		return err
	})
	g.Go(func() (err error) {
		page.Orders, err = s.orders.Find(gctx, search.Query)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("search orders: %w", err)
	}
	return page, nil
}

func (s *OrderService) Create(ctx context.Context, in OrderInput) (*models.Order, error) {
	o, err := s.build(in)
	if err != nil {
		return nil, err
	}
	if err := s.orders.Create(ctx, o); err != nil {
		return nil, err
	}
	log.Info().
		Str("order_id", o.ID.Hex()).
		Str("user_id", o.UserID.Hex()).
		Float64("total", o.Total).
		Msg("Order created")
	invalidate(ctx, s.reports)
	return o, nil
}

// Update applies a partial update. Moving an order to Delivered stamps
// DeliveredAt; moving it away clears the stamp.
func (s *OrderService) Update(ctx context.Context, id string, in OrderUpdate) (*models.Order, error) {
	o, err := s.orders.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if in.PaymentMethod != nil {
		if o.PaymentMethod, err = parsePaymentMethod(*in.PaymentMethod); err != nil {
			return nil, err
		}
	}
	if in.ShippingAddress != nil {
		addr := trimAddress(*in.ShippingAddress)
		if err := checkAddress(addr); err != nil {
			return nil, err
		}
		o.ShippingAddress = addr
	}
	if in.Status != nil {
		status, err := parseStatus(*in.Status)
		if err != nil {
			return nil, err
		}
		if status != o.Status {
			log.Info().
				Str("order_id", o.ID.Hex()).
				Str("from", string(o.Status)).
				Str("to", string(status)).
				Msg("Order status changed")
		}
		s.setStatus(o, status)
	}
	if err := s.orders.Replace(ctx, o); err != nil {
		return nil, err
	}
	invalidate(ctx, s.reports)
	return o, nil
}

func (s *OrderService) Delete(ctx context.Context, id string) (*models.Order, error) {
	o, err := s.orders.Delete(ctx, id)
	if err != nil {
		return nil, err
	}
	log.Info().Str("order_id", id).Msg("Order deleted")
	invalidate(ctx, s.reports)
	return o, nil
}

func (s *OrderService) build(in OrderInput) (*models.Order, error) {
	userID, err := parseObjectID("userId", strings.TrimSpace(in.UserID))
	if err != nil {
		return nil, err
	}
	if len(in.Items) == 0 {
		return nil, &catalog.Error{Kind: catalog.ErrMissingRequiredField, Field: "orderItems", Detail: "must not be empty"}
	}
	items := make([]models.OrderItem, 0, len(in.Items))
	for i, it := range in.Items {
		prefix := fmt.Sprintf("orderItems[%d].", i)
		pid, err := parseObjectID(prefix+"productId", strings.TrimSpace(it.ProductID))
		if err != nil {
			return nil, err
		}
		if it.Quantity < 1 {
			return nil, &catalog.Error{Kind: catalog.ErrInvalidStock, Field: prefix + "quantity", Detail: "must be at least 1"}
		}
		if err := checkAmount(prefix+"price", it.Price); err != nil {
			return nil, err
		}
		items = append(items, models.OrderItem{
			ProductID:     pid,
			Quantity:      it.Quantity,
			Price:         it.Price,
			Size:          strings.TrimSpace(it.Size),
			Color:         strings.TrimSpace(it.Color),
			SelectedIndex: it.SelectedIndex,
		})
	}

	amounts := []struct {
		field string
		value float64
	}{
		{"subtotal", in.Subtotal},
		{"tax", in.Tax},
		{"shippingCharges", in.ShippingCharges},
		{"discount", in.Discount},
		{"total", in.Total},
	}
	for _, a := range amounts {
		if err := checkAmount(a.field, a.value); err != nil {
			return nil, err
		}
	}

	addr := trimAddress(in.ShippingAddress)
	if err := checkAddress(addr); err != nil {
		return nil, err
	}
	method, err := parsePaymentMethod(in.PaymentMethod)
	if err != nil {
		return nil, err
	}
	status := models.OrderProcessing
	if strings.TrimSpace(in.Status) != "" {
		if status, err = parseStatus(in.Status); err != nil {
			return nil, err
		}
	}

	o := &models.Order{
		UserID:          userID,
		Items:           items,
		ShippingAddress: addr,
		Subtotal:        in.Subtotal,
		Tax:             in.Tax,
		ShippingCharges: in.ShippingCharges,
		Discount:        in.Discount,
		Total:           in.Total,
		PaymentMethod:   method,
	}
	s.setStatus(o, status)
	return o, nil
}

func (s *OrderService) setStatus(o *models.Order, status models.OrderStatus) {
	switch {
	case status == models.OrderDelivered && o.DeliveredAt == nil:
		at := s.now().UTC()
		o.DeliveredAt = &at
	case status != models.OrderDelivered:
		o.DeliveredAt = nil
	}
	o.Status = status
}

func parseStatus(raw string) (models.OrderStatus, error) {
	raw = strings.TrimSpace(raw)
	for _, st := range models.OrderStatuses {
		if strings.EqualFold(raw, string(st)) {
			return st, nil
		}
	}
	return "", &catalog.Error{Kind: catalog.ErrInvalidPayload, Field: "status", Detail: fmt.Sprintf("%q is not a known status", raw)}
}

func parsePaymentMethod(raw string) (models.PaymentMethod, error) {
	m := models.PaymentMethod(strings.ToUpper(strings.TrimSpace(raw)))
	if m == "" {
		return "", &catalog.Error{Kind: catalog.ErrMissingRequiredField, Field: "paymentMethod", Detail: "is required"}
	}
	if !slices.Contains(models.PaymentMethods, m) {
		return "", &catalog.Error{Kind: catalog.ErrInvalidPayload, Field: "paymentMethod", Detail: fmt.Sprintf("%q is not supported", raw)}
	}
	return m, nil
}

func parseObjectID(field, hex string) (primitive.ObjectID, error) {
	if hex == "" {
		return primitive.NilObjectID, &catalog.Error{Kind: catalog.ErrMissingRequiredField, Field: field, Detail: "is required"}
	}
	oid, err := primitive.ObjectIDFromHex(hex)
	if err != nil {
		return primitive.NilObjectID, &catalog.Error{Kind: catalog.ErrInvalidPayload, Field: field, Detail: "is not a valid id"}
	}
	return oid, nil
}

func checkAmount(field string, v float64) error {
	if v < 0 {
		return &catalog.Error{Kind: catalog.ErrInvalidPrice, Field: field, Detail: "must not be negative"}
	}
	return nil
}

func trimAddress(a models.ShippingAddress) models.ShippingAddress {
	return models.ShippingAddress{
		Address: strings.TrimSpace(a.Address),
		City:    strings.TrimSpace(a.City),
		State:   strings.TrimSpace(a.State),
		PinCode: strings.TrimSpace(a.PinCode),
		Country: strings.TrimSpace(a.Country),
	}
}

func checkAddress(a models.ShippingAddress) error {
	fields := []struct{ name, value string }{
		{"address", a.Address},
		{"city", a.City},
		{"state", a.State},
		{"pinCode", a.PinCode},
		{"country", a.Country},
	}
	for _, f := range fields {
		if f.value == "" {
			return &catalog.Error{Kind: catalog.ErrMissingRequiredField, Field: "shippingAddress." + f.name, Detail: "is required"}
		}
	}
	return nil
}
