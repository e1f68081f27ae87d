package response

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"ecobuild/internal/pkg/apperrors"
)

func Success(c *gin.Context, statusCode int, data interface{}) {
	c.JSON(statusCode, gin.H{
		"success": true,
		"data":    data,
	})
}

func Error(c *gin.Context, statusCode int, code string, message string) {
	c.JSON(statusCode, gin.H{
		"success": false,
		"error": gin.H{
			"code":    code,
			"message": message,
		},
	})
}

// ParamID parses an int64 path parameter, writing the error response
// itself on failure. Shared by every handler nested under /projects/:id.
func ParamID(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		Error(c, http.StatusBadRequest, "INVALID_ID", "invalid "+name+" parameter")
		return 0, false
	}
	return id, true
}

// FromError maps a classified service error to an HTTP status.
// Unclassified errors are treated as internal.
func FromError(c *gin.Context, err error) {
	switch apperrors.KindOf(err) {
	case apperrors.KindValidation:
		Error(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
	case apperrors.KindNotFound:
		Error(c, http.StatusNotFound, "NOT_FOUND", err.Error())
	case apperrors.KindExternalService:
		Error(c, http.StatusBadGateway, "EXTERNAL_SERVICE_ERROR", err.Error())
	case apperrors.KindBusinessRule:
		Error(c, http.StatusConflict, "BUSINESS_RULE_VIOLATION", err.Error())
	default:
		Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
	}
}
