package middleware

import (
	"mime"
	"net/http"

	"github.com/gin-gonic/gin"
)

// JSONMiddleware marks responses as JSON and rejects request bodies that
// declare another content type.
func JSONMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Content-Type", "application/json; charset=utf-8")

		if c.Request.Method == http.MethodPost || c.Request.Method == http.MethodPut || c.Request.Method == http.MethodPatch {
			if contentType := c.GetHeader("Content-Type"); contentType != "" {
				mediaType, _, err := mime.ParseMediaType(contentType)
				if err != nil || mediaType != "application/json" {
					c.AbortWithStatusJSON(http.StatusUnsupportedMediaType, gin.H{
						"success": false,
						"error":   "Content-Type must be application/json",
					})
					return
				}
			}
		}

		c.Next()
	}
}
