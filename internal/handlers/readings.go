package handlers

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"thermowatch/internal/models"
	"thermowatch/internal/service"

	"github.com/gin-gonic/gin"
)

// readingRequest is the body of a manual reading submission.
type readingRequest struct {
	Value      *float64  `json:"value" binding:"required" example:"31.5"`
	ObservedAt time.Time `json:"observed_at,omitempty" example:"2025-08-27T15:04:05Z"`
}

// queryInt reads an optional non-negative integer query parameter.
// A missing parameter yields 0.
func queryInt(c *gin.Context, name string) (int, error) {
	s := c.Query(name)
	if s == "" {
		return 0, nil
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("invalid '%s': must be an integer", name)
	}
	return v, nil
}

func pageQueryFrom(c *gin.Context) (service.PageQuery, error) {
	var (
		q   service.PageQuery
		err error
	)
	if q.Limit, err = queryInt(c, "limit"); err != nil {
		return q, err
	}
	if q.Offset, err = queryInt(c, "offset"); err != nil {
		return q, err
	}
	if q.Page, err = queryInt(c, "page"); err != nil {
		return q, err
	}
	return q, nil
}

// @Summary      List accepted readings
// @Description  Newest first by observed_at. 'page' (1-based) overrides 'offset' when given.
// @Tags         readings
// @Produce      json
// @Param        limit   query     int  false  "Page size"  example(10)
// @Param        offset  query     int  false  "Rows to skip"
// @Param        page    query     int  false  "1-based page number"
// @Success      200     {object}  models.ReadingPage
// @Failure      400     {object}  map[string]string
// @Failure      500     {object}  map[string]string
// @Router       /api/readings [get]
func (h *Handler) listReadings(c *gin.Context) {
	q, err := pageQueryFrom(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	page, err := h.services.Readings.List(c.Request.Context(), q)
	if err != nil {
		h.respondError(c, "readings_list_failed", err, "limit", q.Limit, "offset", q.Offset, "page", q.Page)
		return
	}
	c.JSON(http.StatusOK, page)
}

// @Summary      Most recent accepted reading
// @Tags         readings
// @Produce      json
// @Success      200  {object}  models.SensorReading
// @Failure      404  {object}  map[string]string
// @Failure      500  {object}  map[string]string
// @Router       /api/readings/latest [get]
func (h *Handler) latestReading(c *gin.Context) {
	r, ok, err := h.services.Readings.Latest(c.Request.Context())
	if err != nil {
		h.respondError(c, "readings_latest_failed", err)
		return
	}
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": errNoReadings})
		return
	}
	c.JSON(http.StatusOK, r)
}

// @Summary      Submit a reading
// @Description  Evaluates the value against the current threshold. Accepted readings are stored and returned with 201.
// @Tags         readings
// @Accept       json
// @Produce      json
// @Param        input  body      readingRequest  true  "reading"
// @Success      201    {object}  models.Evaluation
// @Success      200    {object}  models.Evaluation  "not accepted"
// @Failure      400    {object}  map[string]string
// @Failure      401    {object}  map[string]string
// @Failure      500    {object}  map[string]string
// @Router       /api/readings [post]
// @Security     BearerAuth
func (h *Handler) submitReading(c *gin.Context) {
	var input readingRequest
	if ok := h.bindJSONOrBadRequest(c, &input); !ok {
		return
	}

	now := time.Now().UTC()
	raw := models.RawReading{
		Value:      *input.Value,
		ObservedAt: input.ObservedAt,
		ReceivedAt: now,
	}
	if raw.ObservedAt.IsZero() {
		raw.ObservedAt = now
	}

	ev, err := h.services.Ingestion.Evaluate(c.Request.Context(), raw)
	if err != nil {
		h.respondError(c, "reading_submit_failed", err, "value", raw.Value, "user", principalFrom(c).Username)
		return
	}
	if !ev.Accepted {
		c.JSON(http.StatusOK, ev)
		return
	}
	c.JSON(http.StatusCreated, ev)
}

// @Summary      Delete a reading
// @Description  Succeeds when the id does not exist.
// @Tags         readings
// @Param        id   path  string  true  "Reading ID"
// @Success      204
// @Failure      401  {object}  map[string]string
// @Failure      403  {object}  map[string]string
// @Failure      500  {object}  map[string]string
// @Router       /api/readings/{id} [delete]
// @Security     BearerAuth
func (h *Handler) removeReading(c *gin.Context) {
	id := c.Param("id")
	if err := h.services.Readings.Remove(c.Request.Context(), principalFrom(c), id); err != nil {
		h.respondError(c, "reading_remove_failed", err, "id", id)
		return
	}
	c.Status(http.StatusNoContent)
}

// @Summary      Delete all readings
// @Tags         readings
// @Success      204
// @Failure      401  {object}  map[string]string
// @Failure      403  {object}  map[string]string
// @Failure      500  {object}  map[string]string
// @Router       /api/readings/clear [delete]
// @Security     BearerAuth
func (h *Handler) clearReadings(c *gin.Context) {
	if err := h.services.Readings.Clear(c.Request.Context(), principalFrom(c)); err != nil {
		h.respondError(c, "readings_clear_failed", err)
		return
	}
	c.Status(http.StatusNoContent)
}
