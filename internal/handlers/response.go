package handlers

import (
	"net/http"

	"thermowatch/internal/apperr"

	"github.com/gin-gonic/gin"
)

const (
	errInternal          = "internal error"
	errBrokerUnavailable = "broker unavailable"
	errNoReadings        = "no readings recorded"
	errNoThreshold       = "no threshold configured"
)

// Centralized error logging and response.
func (h *Handler) logAndJSONError(c *gin.Context, httpCode int, userMsg, logKey string, err error, kv ...interface{}) {
	if h.log != nil && err != nil {
		fields := append([]interface{}{"err", err}, kv...)
		h.log.Errorw(logKey, fields...)
	}
	c.JSON(httpCode, gin.H{"error": userMsg})
}

// respondError maps err to its status code. Client errors echo the message,
// server errors are logged and answered with a generic one.
func (h *Handler) respondError(c *gin.Context, logKey string, err error, kv ...interface{}) {
	code := apperr.HTTPStatus(err)
	switch {
	case code == http.StatusServiceUnavailable:
		h.logAndJSONError(c, code, errBrokerUnavailable, logKey, err, kv...)
	case code >= http.StatusInternalServerError:
		h.logAndJSONError(c, code, errInternal, logKey, err, kv...)
	default:
		if h.log != nil {
			h.log.Infow(logKey, append([]interface{}{"err", err}, kv...)...)
		}
		c.JSON(code, gin.H{"error": err.Error()})
	}
}

// bindJSONOrBadRequest tries to bind the request body into dst and writes a 400 JSON on failure.
// Returns false if the request was already handled (aborted), true otherwise.
func (h *Handler) bindJSONOrBadRequest(c *gin.Context, dst any) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		if h.log != nil {
			h.log.Infow("bad_request_body", "path", c.FullPath(), "err", err)
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return false
	}
	return true
}
