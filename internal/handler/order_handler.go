package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/GTDGit/catalog_api/internal/models"
	"github.com/GTDGit/catalog_api/internal/service"
	"github.com/GTDGit/catalog_api/internal/utils"
)

type orderItemRequest struct {
	ProductID     string  `json:"productId" binding:"required"`
	Quantity      int     `json:"quantity" binding:"required,min=1"`
	Price         float64 `json:"price" binding:"min=0"`
	Size          string  `json:"size"`
	Color         string  `json:"color"`
	SelectedIndex *int    `json:"selectedIndex" binding:"omitempty,min=0"`
}

type shippingAddressRequest struct {
	Address string `json:"address" binding:"required"`
	City    string `json:"city" binding:"required"`
	State   string `json:"state" binding:"required"`
	PinCode string `json:"pinCode" binding:"required"`
	Country string `json:"country" binding:"required"`
}

func (r shippingAddressRequest) address() models.ShippingAddress {
	return models.ShippingAddress{
		Address: r.Address,
		City:    r.City,
		State:   r.State,
		PinCode: r.PinCode,
		Country: r.Country,
	}
}

type orderRequest struct {
	UserID          string                 `json:"userId" binding:"required"`
	OrderItems      []orderItemRequest     `json:"orderItems" binding:"required,min=1,dive"`
	ShippingAddress shippingAddressRequest `json:"shippingAddress" binding:"required"`
	Subtotal        float64                `json:"subtotal" binding:"min=0"`
	Tax             float64                `json:"tax" binding:"min=0"`
	ShippingCharges float64                `json:"shippingCharges" binding:"min=0"`
	Discount        float64                `json:"discount" binding:"min=0"`
	Total           float64                `json:"total" binding:"min=0"`
	PaymentMethod   string                 `json:"paymentMethod" binding:"required"`
	Status          string                 `json:"status"`
}

func (r orderRequest) input() service.OrderInput {
	items := make([]service.OrderItemInput, len(r.OrderItems))
	for i, it := range r.OrderItems {
		items[i] = service.OrderItemInput{
			ProductID:     it.ProductID,
			Quantity:      it.Quantity,
			Price:         it.Price,
			Size:          it.Size,
			Color:         it.Color,
			SelectedIndex: it.SelectedIndex,
		}
	}
	return service.OrderInput{
		UserID:          r.UserID,
		Items:           items,
		ShippingAddress: r.ShippingAddress.address(),
		Subtotal:        r.Subtotal,
		Tax:             r.Tax,
		ShippingCharges: r.ShippingCharges,
		Discount:        r.Discount,
		Total:           r.Total,
		PaymentMethod:   r.PaymentMethod,
		Status:          r.Status,
	}
}

type orderUpdateRequest struct {
	Status          *string                 `json:"status"`
	PaymentMethod   *string                 `json:"paymentMethod"`
	ShippingAddress *shippingAddressRequest `json:"shippingAddress"`
}

func (r orderUpdateRequest) update() service.OrderUpdate {
	u := service.OrderUpdate{Status: r.Status, PaymentMethod: r.PaymentMethod}
	if r.ShippingAddress != nil {
		addr := r.ShippingAddress.address()
		u.ShippingAddress = &addr
	}
	return u
}

// OrderHandler handles order HTTP endpoints.
type OrderHandler struct {
	orderService *service.OrderService
}

// NewOrderHandler creates a new OrderHandler.
func NewOrderHandler(orderService *service.OrderService) *OrderHandler {
	return &OrderHandler{orderService: orderService}
}

// SearchOrders handles GET /v1/admin/orders?status=&userId=&sort_by=&page=&limit=
func (h *OrderHandler) SearchOrders(c *gin.Context) {
	sortKey := c.Query("sort_by")
	if sortKey == "" {
		sortKey = c.Query("sort")
	}
	search, err := service.ParseOrderSearch(c.Query("status"), c.Query("userId"), sortKey, c.Query("page"), c.Query("limit"))
	if err != nil {
		respondError(c, err)
		return
	}
	page, err := h.orderService.Search(c.Request.Context(), search)
	if err != nil {
		respondError(c, err)
		return
	}
	utils.SuccessWithPagination(c, http.StatusOK, "Orders retrieved", page.Orders, page.Page, page.Limit, int(page.TotalItems))
}

// GetOrder handles GET /v1/admin/orders/:id
func (h *OrderHandler) GetOrder(c *gin.Context) {
	o, err := h.orderService.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	utils.Success(c, http.StatusOK, "Order retrieved", o)
}

// CreateOrder handles POST /v1/admin/orders
func (h *OrderHandler) CreateOrder(c *gin.Context) {
	var req orderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}
	o, err := h.orderService.Create(c.Request.Context(), req.input())
	if err != nil {
		respondError(c, err)
		return
	}
	utils.Success(c, http.StatusCreated, "Order created", o)
}

// UpdateOrder handles PUT /v1/admin/orders/:id
func (h *OrderHandler) UpdateOrder(c *gin.Context) {
	var req orderUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}
	o, err := h.orderService.Update(c.Request.Context(), c.Param("id"), req.update())
	if err != nil {
		respondError(c, err)
		return
	}
	utils.Success(c, http.StatusOK, "Order updated", o)
}

// DeleteOrder handles DELETE /v1/admin/orders/:id
func (h *OrderHandler) DeleteOrder(c *gin.Context) {
	o, err := h.orderService.Delete(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	utils.Success(c, http.StatusOK, "Order deleted", o)
}
