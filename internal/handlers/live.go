package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// @Summary      Live broker status
// @Description  Connection state of the broker session and the last raw value received, accepted or not.
// @Tags         live
// @Produce      json
// @Success      200  {object}  models.LiveStatus
// @Failure      500  {object}  map[string]string
// @Router       /api/live [get]
func (h *Handler) getLive(c *gin.Context) {
	st, err := h.services.Live.Status(c.Request.Context())
	if err != nil {
		h.respondError(c, "live_status_failed", err)
		return
	}
	c.JSON(http.StatusOK, st)
}
