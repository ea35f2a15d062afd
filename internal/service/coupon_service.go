package service

import (
	"context"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/GTDGit/catalog_api/internal/catalog"
	"github.com/GTDGit/catalog_api/internal/models"
	"github.com/GTDGit/catalog_api/internal/utils"
)

// CouponStore is the coupon persistence used by CouponService.
type CouponStore interface {
	Create(ctx context.Context, c *models.Coupon) error
	GetByID(ctx context.Context, id int) (*models.Coupon, error)
	GetByCode(ctx context.Context, code string) (*models.Coupon, error)
	List(ctx context.Context) ([]models.Coupon, error)
	Update(ctx context.Context, c *models.Coupon) error
	Delete(ctx context.Context, id int) error
}

// CouponInput carries the writable coupon fields. An empty Code on create
// generates one.
type CouponInput struct {
	Code            string
	DiscountPercent int
	IsActive        *bool
	ExpiresAt       *time.Time
}

// CouponService manages discount coupons.
type CouponService struct {
	coupons CouponStore
	now     func() time.Time
}

// NewCouponService constructs a CouponService.
func NewCouponService(coupons CouponStore) *CouponService {
	return &CouponService{coupons: coupons, now: time.Now}
}

func (s *CouponService) List(ctx context.Context) ([]models.Coupon, error) {
	return s.coupons.List(ctx)
}

func (s *CouponService) Get(ctx context.Context, id int) (*models.Coupon, error) {
	return s.coupons.GetByID(ctx, id)
}

func (s *CouponService) Create(ctx context.Context, in CouponInput) (*models.Coupon, error) {
	if err := checkDiscount(in.DiscountPercent); err != nil {
		return nil, err
	}
	code := strings.ToUpper(strings.TrimSpace(in.Code))
	if code == "" {
		generated, err := utils.GenerateCouponCode("")
		if err != nil {
			return nil, err
		}
		code = generated
	}

	c := &models.Coupon{
		Code:            code,
		DiscountPercent: in.DiscountPercent,
		IsActive:        in.IsActive == nil || *in.IsActive,
		ExpiresAt:       in.ExpiresAt,
	}
	if err := s.coupons.Create(ctx, c); err != nil {
		return nil, err
	}
	log.Info().Int("coupon_id", c.ID).Str("code", c.Code).Msg("Coupon created")
	return c, nil
}

func (s *CouponService) Update(ctx context.Context, id int, in CouponInput) (*models.Coupon, error) {
	if err := checkDiscount(in.DiscountPercent); err != nil {
		return nil, err
	}
	c, err := s.coupons.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if code := strings.ToUpper(strings.TrimSpace(in.Code)); code != "" {
		c.Code = code
	}
	c.DiscountPercent = in.DiscountPercent
	if in.IsActive != nil {
		c.IsActive = *in.IsActive
	}
	c.ExpiresAt = in.ExpiresAt
	if err := s.coupons.Update(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

func (s *CouponService) Delete(ctx context.Context, id int) error {
	return s.coupons.Delete(ctx, id)
}

// Validate returns the coupon for code if it is active and unexpired.
func (s *CouponService) Validate(ctx context.Context, code string) (*models.Coupon, error) {
	c, err := s.coupons.GetByCode(ctx, strings.ToUpper(strings.TrimSpace(code)))
	if err != nil {
		return nil, err
	}
	if !c.Usable(s.now()) {
		return nil, utils.ErrCouponUnavailable
	}
	return c, nil
}

func checkDiscount(pct int) error {
	if pct < 1 || pct > 100 {
		return &catalog.Error{Kind: catalog.ErrInvalidPrice, Field: "discountPercent", Detail: "must be between 1 and 100"}
	}
	return nil
}
