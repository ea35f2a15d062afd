package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/GTDGit/catalog_api/internal/service"
	"github.com/GTDGit/catalog_api/internal/utils"
)

type couponRequest struct {
	Code            string     `json:"code" binding:"omitempty,min=3,max=32,alphanum"`
	DiscountPercent int        `json:"discountPercent" binding:"required,min=1,max=100"`
	IsActive        *bool      `json:"isActive"`
	ExpiresAt       *time.Time `json:"expiresAt"`
}

func (r couponRequest) input() service.CouponInput {
	return service.CouponInput{
		Code:            r.Code,
		DiscountPercent: r.DiscountPercent,
		IsActive:        r.IsActive,
		ExpiresAt:       r.ExpiresAt,
	}
}

// CouponHandler handles coupon HTTP endpoints.
type CouponHandler struct {
	couponService *service.CouponService
}

// NewCouponHandler creates a new CouponHandler.
func NewCouponHandler(couponService *service.CouponService) *CouponHandler {
	return &CouponHandler{couponService: couponService}
}

// ListCoupons handles GET /v1/admin/coupons
func (h *CouponHandler) ListCoupons(c *gin.Context) {
	coupons, err := h.couponService.List(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	utils.Success(c, http.StatusOK, "Coupons retrieved", coupons)
}

// GetCoupon handles GET /v1/admin/coupons/:id
func (h *CouponHandler) GetCoupon(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}
	coupon, err := h.couponService.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	utils.Success(c, http.StatusOK, "Coupon retrieved", coupon)
}

// CreateCoupon handles POST /v1/admin/coupons
func (h *CouponHandler) CreateCoupon(c *gin.Context) {
	var req couponRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}
	coupon, err := h.couponService.Create(c.Request.Context(), req.input())
	if err != nil {
		respondError(c, err)
		return
	}
	utils.Success(c, http.StatusCreated, "Coupon created", coupon)
}

// UpdateCoupon handles PUT /v1/admin/coupons/:id
func (h *CouponHandler) UpdateCoupon(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}
	var req couponRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}
	coupon, err := h.couponService.Update(c.Request.Context(), id, req.input())
	if err != nil {
		respondError(c, err)
		return
	}
	utils.Success(c, http.StatusOK, "Coupon updated", coupon)
}

// DeleteCoupon handles DELETE /v1/admin/coupons/:id
func (h *CouponHandler) DeleteCoupon(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}
	if err := h.couponService.Delete(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	utils.Success(c, http.StatusOK, "Coupon deleted", nil)
}

// ValidateCoupon handles GET /v1/coupons/:code
func (h *CouponHandler) ValidateCoupon(c *gin.Context) {
	coupon, err := h.couponService.Validate(c.Request.Context(), c.Param("code"))
	if err != nil {
		respondError(c, err)
		return
	}
	utils.Success(c, http.StatusOK, "Coupon is valid", gin.H{
		"code":            coupon.Code,
		"discountPercent": coupon.DiscountPercent,
		"expiresAt":       coupon.ExpiresAt,
	})
}
