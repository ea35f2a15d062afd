package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/GTDGit/catalog_api/internal/catalog"
	"github.com/GTDGit/catalog_api/internal/service"
	"github.com/GTDGit/catalog_api/internal/utils"
)

type brandRequest struct {
	Name string `json:"name" binding:"required,min=3"`
}

// BrandHandler handles brand HTTP endpoints.
type BrandHandler struct {
	brandService *service.BrandService
	limits       catalog.Limits
}

// NewBrandHandler creates a new BrandHandler.
func NewBrandHandler(brandService *service.BrandService, limits catalog.Limits) *BrandHandler {
	return &BrandHandler{brandService: brandService, limits: limits}
}

// ListBrands handles GET /v1/brands
func (h *BrandHandler) ListBrands(c *gin.Context) {
	brands, err := h.brandService.List(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	utils.Success(c, http.StatusOK, "Brands retrieved", brands)
}

// SearchBrands handles GET /v1/brands/search?q=&sort_by=&page=&limit=
func (h *BrandHandler) SearchBrands(c *gin.Context) {
	search, err := parseLabelSearch(c, h.limits)
	if err != nil {
		respondError(c, err)
		return
	}
	brands, total, err := h.brandService.Search(c.Request.Context(), search)
	if err != nil {
		respondError(c, err)
		return
	}
	utils.SuccessWithPagination(c, http.StatusOK, "Brands retrieved", brands, search.Page, search.Limit, total)
}

// GetBrand handles GET /v1/brands/:id
func (h *BrandHandler) GetBrand(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}
	b, err := h.brandService.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	utils.Success(c, http.StatusOK, "Brand retrieved", b)
}

// CreateBrand handles POST /v1/admin/brands
func (h *BrandHandler) CreateBrand(c *gin.Context) {
	var req brandRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}
	b, err := h.brandService.Create(c.Request.Context(), req.Name)
	if err != nil {
		respondError(c, err)
		return
	}
	utils.Success(c, http.StatusCreated, "Brand created", b)
}

// UpdateBrand handles PUT /v1/admin/brands/:id
func (h *BrandHandler) UpdateBrand(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}
	var req brandRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}
	b, err := h.brandService.Update(c.Request.Context(), id, req.Name)
	if err != nil {
		respondError(c, err)
		return
	}
	utils.Success(c, http.StatusOK, "Brand updated", b)
}

// DeleteBrand handles DELETE /v1/admin/brands/:id
func (h *BrandHandler) DeleteBrand(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}
	if err := h.brandService.Delete(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	utils.Success(c, http.StatusOK, "Brand deleted", nil)
}

func parseLabelSearch(c *gin.Context, limits catalog.Limits) (*service.LabelSearch, error) {
	sortKey := c.Query("sort_by")
	if sortKey == "" {
		sortKey = c.Query("sort")
	}
	return service.ParseLabelSearch(c.Query("q"), sortKey, c.Query("page"), c.Query("limit"), limits)
}

// paramID parses the :id path parameter, writing a 400 when it is invalid.
func paramID(c *gin.Context) (int, bool) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id <= 0 {
		utils.Error(c, http.StatusBadRequest, "INVALID_ID", "Invalid ID")
		return 0, false
	}
	return id, true
}
