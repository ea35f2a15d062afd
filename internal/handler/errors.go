package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/GTDGit/catalog_api/internal/catalog"
	"github.com/GTDGit/catalog_api/internal/utils"
)

// shapeConflicts are validation failures about how variants relate rather
// than about a single malformed value.
var shapeConflicts = []error{
	catalog.ErrColorSizeMismatch,
	catalog.ErrInvalidSizeList,
	catalog.ErrInvalidColorList,
}

// respondError maps service errors to the API envelope. Unknown errors are
// logged and reported as a generic internal error.
func respondError(c *gin.Context, err error) {
	var ce *catalog.Error
	if errors.As(err, &ce) {
		status := http.StatusBadRequest
		for _, kind := range shapeConflicts {
			if errors.Is(ce.Kind, kind) {
				status = http.StatusUnprocessableEntity
				break
			}
		}
		utils.FieldError(c, status, ce.Kind.Error(), ce.Field, ce.Message())
		return
	}

	switch {
	case errors.Is(err, utils.ErrNotFound):
		utils.Error(c, http.StatusNotFound, "NOT_FOUND", "Resource not found")
	case errors.Is(err, utils.ErrDuplicateUniqueField):
		utils.Error(c, http.StatusConflict, "DUPLICATE_UNIQUE_FIELD", "A record with the same unique value already exists")
	case errors.Is(err, utils.ErrInvalidCredentials):
		utils.Error(c, http.StatusUnauthorized, "INVALID_CREDENTIALS", "Invalid email or password")
	case errors.Is(err, utils.ErrAccountInactive):
		utils.Error(c, http.StatusForbidden, "ACCOUNT_INACTIVE", "Account is inactive")
	case errors.Is(err, utils.ErrCouponUnavailable):
		utils.Error(c, http.StatusGone, "COUPON_UNAVAILABLE", "Coupon is inactive or expired")
	default:
		log.Error().Err(err).
			Str("request_id", c.GetString("request_id")).
			Str("path", c.Request.URL.Path).
			Msg("Unhandled error")
		utils.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Internal server error")
	}
}

// bindError reports a malformed request body.
func bindError(c *gin.Context, err error) {
	utils.Error(c, http.StatusBadRequest, "INVALID_REQUEST", err.Error())
}
