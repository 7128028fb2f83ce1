package utils

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/sharath018/donor-backoffice-backend/internal/apperror"
	"go.uber.org/zap"
)

// RetryAfterSeconds is sent with timeout responses.
const RetryAfterSeconds = 5

// RespondOK writes the success envelope.
func RespondOK(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, gin.H{"success": true, "data": data})
}

// RespondCreated writes the success envelope with 201.
func RespondCreated(c *gin.Context, data interface{}) {
	c.JSON(http.StatusCreated, gin.H{"success": true, "data": data})
}

// RespondError maps err to its status. Store failures are logged with the full
// cause and answered with a generic message.
func RespondError(c *gin.Context, logger *zap.Logger, err error) {
	kind := apperror.KindOf(err)
	status := apperror.HTTPStatus(kind)

	switch kind {
	case apperror.KindStore:
		logger.Error("request failed",
			zap.String("method", c.Request.Method),
			zap.String("path", c.FullPath()),
			zap.String("query", c.Request.URL.RawQuery),
			zap.String("request_id", c.GetString("request_id")),
			zap.Error(err),
		)
	case apperror.KindTimeout:
		c.Header("Retry-After", strconv.Itoa(RetryAfterSeconds))
		logger.Warn("request timed out",
			zap.String("path", c.FullPath()),
			zap.String("request_id", c.GetString("request_id")),
		)
	}

	c.AbortWithStatusJSON(status, gin.H{
		"success": false,
		"error":   apperror.PublicMessage(err),
		"kind":    kind,
	})
}

// RespondFile writes an exported report as an attachment.
func RespondFile(c *gin.Context, filename, mimeType string, data []byte) {
	c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
	c.Data(http.StatusOK, mimeType, data)
}
