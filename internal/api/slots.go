package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// slotTimeLayout renders a slot as its time of day, e.g. "10:00".
const slotTimeLayout = "15:04"

// dateLayout parses the date query parameter.
const dateLayout = "2006-01-02"

// SlotHandler serves slot occupancy lookups.
type SlotHandler struct {
	queries QueryService
	log     *logrus.Logger
}

// NewSlotHandler creates a SlotHandler.
func NewSlotHandler(queries QueryService, log *logrus.Logger) *SlotHandler {
	return &SlotHandler{queries: queries, log: log}
}

// GetBookedSlots handles GET /api/v1/properties/:id/slots?date=YYYY-MM-DD.
func (h *SlotHandler) GetBookedSlots(c *gin.Context) {
	propertyID := c.Param("id")
	if propertyID == "" {
		respondError(c, http.StatusBadRequest, ErrCodeInvalidRequest, "property id is required")

		return
	}

	day, err := time.ParseInLocation(dateLayout, c.Query("date"), time.UTC)
	if err != nil {
		respondError(c, http.StatusBadRequest, ErrCodeInvalidRequest, "date must be formatted YYYY-MM-DD")

		return
	}

	slots, err := h.queries.BookedSlots(c.Request.Context(), propertyID, day)
	if err != nil {
		respondServiceError(c, h.log.WithField("property_id", propertyID), err, "querying booked slots")

		return
	}

	formatted := make([]string, len(slots))
	for i, slot := range slots {
		formatted[i] = slot.UTC().Format(slotTimeLayout)
	}

	c.JSON(http.StatusOK, gin.H{
		"property_id": propertyID,
		"date":        day.Format(dateLayout),
		"slots":       formatted,
	})
}
