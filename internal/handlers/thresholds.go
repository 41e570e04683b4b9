package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// thresholdRequest is the body of a threshold change.
type thresholdRequest struct {
	Value *float64 `json:"value" binding:"required" example:"30"`
	Note  string   `json:"note,omitempty" example:"summer profile"`
}

// @Summary      Threshold history
// @Description  Newest first. The first entry is the current threshold.
// @Tags         thresholds
// @Produce      json
// @Success      200  {array}   models.ThresholdSetting
// @Failure      500  {object}  map[string]string
// @Router       /api/thresholds [get]
func (h *Handler) listThresholds(c *gin.Context) {
	list, err := h.services.Thresholds.List(c.Request.Context())
	if err != nil {
		h.respondError(c, "thresholds_list_failed", err)
		return
	}
	c.JSON(http.StatusOK, list)
}

// @Summary      Current threshold
// @Description  Falls back to the configured default when none has been recorded.
// @Tags         thresholds
// @Produce      json
// @Success      200  {object}  models.ThresholdSetting
// @Failure      404  {object}  map[string]string
// @Failure      500  {object}  map[string]string
// @Router       /api/thresholds/latest [get]
func (h *Handler) latestThreshold(c *gin.Context) {
	t, ok, err := h.services.Thresholds.Current(c.Request.Context())
	if err != nil {
		h.respondError(c, "threshold_current_failed", err)
		return
	}
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": errNoThreshold})
		return
	}
	c.JSON(http.StatusOK, t)
}

// @Summary      Record a threshold
// @Tags         thresholds
// @Accept       json
// @Produce      json
// @Param        input  body      thresholdRequest  true  "threshold"
// @Success      201    {object}  models.ThresholdSetting
// @Failure      400    {object}  map[string]string
// @Failure      401    {object}  map[string]string
// @Failure      403    {object}  map[string]string
// @Failure      500    {object}  map[string]string
// @Router       /api/thresholds [post]
// @Security     BearerAuth
func (h *Handler) createThreshold(c *gin.Context) {
	var input thresholdRequest
	if ok := h.bindJSONOrBadRequest(c, &input); !ok {
		return
	}

	p := principalFrom(c)
	t, err := h.services.Thresholds.Record(c.Request.Context(), p, *input.Value, input.Note)
	if err != nil {
		h.respondError(c, "threshold_record_failed", err, "value", *input.Value, "user", p.Username)
		return
	}
	c.JSON(http.StatusCreated, t)
}

// @Summary      Delete a threshold
// @Description  Succeeds when the id does not exist. The next newest entry becomes current.
// @Tags         thresholds
// @Param        id   path  string  true  "Threshold ID"
// @Success      204
// @Failure      401  {object}  map[string]string
// @Failure      403  {object}  map[string]string
// @Failure      500  {object}  map[string]string
// @Router       /api/thresholds/{id} [delete]
// @Security     BearerAuth
func (h *Handler) removeThreshold(c *gin.Context) {
	id := c.Param("id")
	if err := h.services.Thresholds.Remove(c.Request.Context(), principalFrom(c), id); err != nil {
		h.respondError(c, "threshold_remove_failed", err, "id", id)
		return
	}
	c.Status(http.StatusNoContent)
}

// @Summary      Delete the whole threshold history
// @Tags         thresholds
// @Success      204
// @Failure      401  {object}  map[string]string
// @Failure      403  {object}  map[string]string
// @Failure      500  {object}  map[string]string
// @Router       /api/thresholds/clear [delete]
// @Security     BearerAuth
func (h *Handler) clearThresholds(c *gin.Context) {
	if err := h.services.Thresholds.Clear(c.Request.Context(), principalFrom(c)); err != nil {
		h.respondError(c, "thresholds_clear_failed", err)
		return
	}
	c.Status(http.StatusNoContent)
}
