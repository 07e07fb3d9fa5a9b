package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ajharbinger/card-recommender/internal/errors"
)

// respondError writes err as a JSON error body with the status its code maps to
func respondError(c *gin.Context, err error) {
	status := errors.HTTPStatus(err)

	appErr, ok := errors.As(err)
	if !ok {
		c.JSON(status, gin.H{"error": "Internal server error", "code": errors.ErrCodeInternalError})
		return
	}

	body := gin.H{
		"error": appErr.Message,
		"code":  appErr.Code,
	}
	if appErr.Faults != nil {
		body["faults"] = appErr.Faults
	}
	if appErr.Details != "" && status < http.StatusInternalServerError {
		body["details"] = appErr.Details
	}
	c.JSON(status, body)
}

// respondBindError reports a request body that could not be decoded
func respondBindError(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, gin.H{
		"error": "Invalid request format: " + err.Error(),
		"code":  errors.ErrCodeInvalidInput,
	})
}
