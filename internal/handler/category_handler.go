package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/GTDGit/catalog_api/internal/catalog"
	"github.com/GTDGit/catalog_api/internal/service"
	"github.com/GTDGit/catalog_api/internal/utils"
)

type categoryRequest struct {
	Name  string  `json:"name" binding:"required,min=3"`
	Image *string `json:"image" binding:"omitempty,url"`
}

// CategoryHandler handles category HTTP endpoints.
type CategoryHandler struct {
	categoryService *service.CategoryService
	limits          catalog.Limits
}

// NewCategoryHandler creates a new CategoryHandler.
func NewCategoryHandler(categoryService *service.CategoryService, limits catalog.Limits) *CategoryHandler {
	return &CategoryHandler{categoryService: categoryService, limits: limits}
}

// ListCategories handles GET /v1/categories
func (h *CategoryHandler) ListCategories(c *gin.Context) {
	categories, err := h.categoryService.List(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	utils.Success(c, http.StatusOK, "Categories retrieved", categories)
}

// SearchCategories handles GET /v1/categories/search
func (h *CategoryHandler) SearchCategories(c *gin.Context) {
	search, err := parseLabelSearch(c, h.limits)
	if err != nil {
		respondError(c, err)
		return
	}
	categories, total, err := h.categoryService.Search(c.Request.Context(), search)
	if err != nil {
		respondError(c, err)
		return
	}
	utils.SuccessWithPagination(c, http.StatusOK, "Categories retrieved", categories, search.Page, search.Limit, total)
}

// GetCategory handles GET /v1/categories/:id
func (h *CategoryHandler) GetCategory(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}
	cat, err := h.categoryService.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	utils.Success(c, http.StatusOK, "Category retrieved", cat)
}

// CreateCategory handles POST /v1/admin/categories
func (h *CategoryHandler) CreateCategory(c *gin.Context) {
	var req categoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}
	cat, err := h.categoryService.Create(c.Request.Context(), req.Name, req.Image)
	if err != nil {
		respondError(c, err)
		return
	}
	utils.Success(c, http.StatusCreated, "Category created", cat)
}

// UpdateCategory handles PUT /v1/admin/categories/:id
func (h *CategoryHandler) UpdateCategory(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}
	var req categoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}
	cat, err := h.categoryService.Update(c.Request.Context(), id, req.Name, req.Image)
	if err != nil {
		respondError(c, err)
		return
	}
	utils.Success(c, http.StatusOK, "Category updated", cat)
}

// DeleteCategory handles DELETE /v1/admin/categories/:id
func (h *CategoryHandler) DeleteCategory(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}
	if err := h.categoryService.Delete(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	utils.Success(c, http.StatusOK, "Category deleted", nil)
}
