package api

import (
	"net/http"

	"tourbook/internal/handler/httperr"
	"tourbook/internal/usecase/queries"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type AvailabilityHandler struct {
	q queries.AvailabilityQueries
}

func NewAvailabilityHandler(q queries.AvailabilityQueries) *AvailabilityHandler {
	return &AvailabilityHandler{q: q}
}

// @Summary Check guide availability
// @Description Check whether a guide can take a tour on the given date and time window
// @Tags guides
// @Produce json
// @Security BearerAuth
// @Param id path string true "Guide ID"
// @Param date query string true "Tour date (YYYY-MM-DD)"
// @Param start_time query string true "Start time (HH:MM)"
// @Param end_time query string true "End time (HH:MM)"
// @Success 200 {object} queries.AvailabilityView
// @Failure 400 {object} httperr.Response
// @Failure 401 {object} httperr.Response
// @Failure 422 {object} httperr.Response
// @Router /guides/{id}/availability [get]
func (h *AvailabilityHandler) Check(c *gin.Context) {
	guideID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, err, "Invalid guide ID format", nil)
		return
	}

	view, err := h.q.CheckAvailability(c.Request.Context(), queries.CheckAvailabilityInput{
		GuideID:   guideID,
		Date:      c.Query("date"),
		StartTime: c.Query("start_time"),
		EndTime:   c.Query("end_time"),
	})
	if err != nil {
		httperr.Abort(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}
