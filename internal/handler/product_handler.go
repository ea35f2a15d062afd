package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/GTDGit/catalog_api/internal/catalog"
	"github.com/GTDGit/catalog_api/internal/service"
	"github.com/GTDGit/catalog_api/internal/utils"
)

// ProductHandler handles product HTTP endpoints.
type ProductHandler struct {
	productService *service.ProductService
	mediaService   *service.MediaService
}

// NewProductHandler creates a new ProductHandler.
func NewProductHandler(productService *service.ProductService, mediaService *service.MediaService) *ProductHandler {
	return &ProductHandler{productService: productService, mediaService: mediaService}
}

// SearchProducts handles GET /v1/products
func (h *ProductHandler) SearchProducts(c *gin.Context) {
	result, err := h.productService.Search(c.Request.Context(), c.Request.URL.Query())
	if err != nil {
		respondError(c, err)
		return
	}
	utils.SuccessWithPage(c, http.StatusOK, "Products retrieved", result.Products, utils.Pagination{
		Page:       result.Page,
		Limit:      result.Limit,
		TotalItems: int(result.TotalItems),
		TotalPages: result.TotalPages,
	})
}

// GetProduct handles GET /v1/products/:id
func (h *ProductHandler) GetProduct(c *gin.Context) {
	p, err := h.productService.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	utils.Success(c, http.StatusOK, "Product retrieved", p)
}

// ListGroup handles GET /v1/products/group/:groupId
func (h *ProductHandler) ListGroup(c *gin.Context) {
	products, err := h.productService.ListGroup(c.Request.Context(), c.Param("groupId"))
	if err != nil {
		respondError(c, err)
		return
	}
	utils.Success(c, http.StatusOK, "Product group retrieved", products)
}

// CreateProduct handles POST /v1/admin/products
func (h *ProductHandler) CreateProduct(c *gin.Context) {
	raw, err := c.GetRawData()
	if err != nil {
		bindError(c, err)
		return
	}
	p, err := h.productService.Create(c.Request.Context(), raw)
	if err != nil {
		respondError(c, err)
		return
	}
	utils.Success(c, http.StatusCreated, "Product created", p)
}

// UpdateProduct handles PUT /v1/admin/products/:id
func (h *ProductHandler) UpdateProduct(c *gin.Context) {
	raw, err := c.GetRawData()
	if err != nil {
		bindError(c, err)
		return
	}
	p, err := h.productService.Update(c.Request.Context(), c.Param("id"), raw)
	if err != nil {
		respondError(c, err)
		return
	}
	utils.Success(c, http.StatusOK, "Product updated", p)
}

// DeleteProduct handles DELETE /v1/admin/products/:id
func (h *ProductHandler) DeleteProduct(c *gin.Context) {
	if err := h.productService.Delete(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	utils.Success(c, http.StatusOK, "Product deleted", nil)
}

// ReplaceImage handles PUT /v1/admin/products/:id/images/:slot (multipart field "image")
func (h *ProductHandler) ReplaceImage(c *gin.Context) {
	slot, err := strconv.Atoi(c.Param("slot"))
	if err != nil {
		respondError(c, &catalog.Error{Kind: catalog.ErrInvalidPayload, Field: "slot", Detail: "must be an integer"})
		return
	}
	fh, err := c.FormFile("image")
	if err != nil {
		respondError(c, &catalog.Error{Kind: catalog.ErrMissingRequiredField, Field: "image"})
		return
	}
	upload := toUpload(fh)
	if err := h.mediaService.CheckImage(upload); err != nil {
		respondError(c, err)
		return
	}

	file, err := upload.Open()
	if err != nil {
		bindError(c, err)
		return
	}
	defer file.Close()

	p, err := h.productService.ReplaceImage(c.Request.Context(), c.Param("id"), slot, upload.Filename, file, upload.ContentType)
	if err != nil {
		respondError(c, err)
		return
	}
	utils.Success(c, http.StatusOK, "Product image replaced", p)
}
