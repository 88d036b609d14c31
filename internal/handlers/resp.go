package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"outfit-studio-backend/internal/models"
)

// Every JSON API route answers HTTP 200 and signals the outcome through
// the envelope's code field. Client code depends on this; do not switch
// to HTTP statuses.

func respData(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, models.Envelope{
		Code:    0,
		Message: "ok",
		Data:    data,
	})
}

func respErr(c *gin.Context, message string) {
	c.JSON(http.StatusOK, models.Envelope{
		Code:    -1,
		Message: message,
	})
}

func isDataURL(value string) bool {
	return strings.HasPrefix(value, "data:")
}

// extFromURL derives a known image extension from a URL path, defaulting
// to png. jpeg collapses to jpg.
func extFromURL(value string) string {
	sanitized := value
	if i := strings.IndexAny(sanitized, "?#"); i != -1 {
		sanitized = sanitized[:i]
	}
	dot := strings.LastIndex(sanitized, ".")
	if dot == -1 {
		return "png"
	}
	ext := strings.ToLower(sanitized[dot+1:])
	switch ext {
	case "jpeg":
		return "jpg"
	case "png", "webp", "jpg":
		return ext
	}
	return "png"
}

func contentTypeForExt(ext string) string {
	switch ext {
	case "png":
		return "image/png"
	case "webp":
		return "image/webp"
	case "jpg":
		return "image/jpeg"
	}
	return "application/octet-stream"
}
