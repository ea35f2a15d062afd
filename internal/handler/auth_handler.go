package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/GTDGit/catalog_api/internal/service"
	"github.com/GTDGit/catalog_api/internal/utils"
)

type AuthHandler struct {
	authService *service.AdminAuthService
}

func NewAuthHandler(authService *service.AdminAuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

// Login handles POST /v1/admin/auth/login
func (h *AuthHandler) Login(c *gin.Context) {
	var req struct {
		Email    string `json:"email" binding:"required,email"`
		Password string `json:"password" binding:"required"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		utils.Error(c, http.StatusBadRequest, "INVALID_REQUEST", "Invalid request body")
		return
	}

	token, user, err := h.authService.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		respondError(c, err)
		return
	}

	utils.Success(c, http.StatusOK, "Login successful", gin.H{
		"token": token,
		"user":  user,
	})
}

// Me handles GET /v1/admin/auth/me
func (h *AuthHandler) Me(c *gin.Context) {
	utils.Success(c, http.StatusOK, "Authenticated", gin.H{
		"userId": c.GetInt("user_id"),
		"email":  c.GetString("email"),
	})
}
