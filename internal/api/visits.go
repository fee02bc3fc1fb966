// Package api provides HTTP handlers for the visit scheduler.
package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/fvnks/konecte.cl-sub001/internal/models"
)

// VisitHandler serves visit creation, action, and listing endpoints.
type VisitHandler struct {
	requests RequestService
	actions  ActionService
	queries  QueryService
	log      *logrus.Logger
}

// NewVisitHandler creates a VisitHandler with the given services and logger.
func NewVisitHandler(requests RequestService, actions ActionService, queries QueryService, log *logrus.Logger) *VisitHandler {
	return &VisitHandler{requests: requests, actions: actions, queries: queries, log: log}
}

// Propose handles POST /api/v1/visits.
func (h *VisitHandler) Propose(c *gin.Context) {
	var req models.ProposeVisitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, ErrCodeInvalidRequest, "invalid request body")

		return
	}

	visit, err := h.requests.ProposeVisit(c.Request.Context(), req)
	if err != nil {
		respondServiceError(c, h.log.WithFields(logrus.Fields{
			"property_id": req.PropertyID,
			"actor_id":    req.VisitorID,
		}), err, "proposing visit")

		return
	}

	h.log.WithFields(logrus.Fields{"action": "visit.propose", "visit_id": visit.ID, "visitor_id": visit.VisitorID}).Info("audit")

	c.JSON(http.StatusCreated, visit)
}

// AdminSchedule handles POST /api/v1/visits/admin.
func (h *VisitHandler) AdminSchedule(c *gin.Context) {
	var req models.AdminScheduleVisitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, ErrCodeInvalidRequest, "invalid request body")

		return
	}

	visit, err := h.requests.AdminScheduleVisit(c.Request.Context(), req)
	if err != nil {
		respondServiceError(c, h.log.WithFields(logrus.Fields{
			"property_id": req.PropertyID,
			"actor_id":    req.ActorID,
		}), err, "scheduling visit")

		return
	}

	h.log.WithFields(logrus.Fields{"action": "visit.admin_schedule", "visit_id": visit.ID, "actor_id": req.ActorID}).Info("audit")

	c.JSON(http.StatusCreated, visit)
}

// ApplyAction handles POST /api/v1/visits/:id/actions.
func (h *VisitHandler) ApplyAction(c *gin.Context) {
	visitID, ok := parseVisitID(c)
	if !ok {
		return
	}

	var req models.ApplyActionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, ErrCodeInvalidRequest, "invalid request body")

		return
	}

	visit, err := h.actions.ApplyAction(c.Request.Context(), visitID, req)
	if err != nil {
		respondServiceError(c, h.log.WithFields(logrus.Fields{
			"visit_id": visitID,
			"actor_id": req.ActorID,
		}), err, "applying visit action")

		return
	}

	h.log.WithFields(logrus.Fields{
		"action":   "visit.apply_action",
		"visit_id": visit.ID,
		"actor_id": req.ActorID,
		"applied":  req.Action,
		"status":   visit.Status,
	}).Info("audit")

	c.JSON(http.StatusOK, visit)
}

// Get handles GET /api/v1/visits/:id.
func (h *VisitHandler) Get(c *gin.Context) {
	visitID, ok := parseVisitID(c)
	if !ok {
		return
	}

	visit, err := h.queries.GetVisit(c.Request.Context(), visitID)
	if err != nil {
		respondServiceError(c, h.log.WithField("visit_id", visitID), err, "getting visit")

		return
	}

	c.JSON(http.StatusOK, visit)
}

// ListForUser handles GET /api/v1/visits?user_id=.
func (h *VisitHandler) ListForUser(c *gin.Context) {
	userID := c.Query("user_id")
	if userID == "" {
		respondError(c, http.StatusBadRequest, ErrCodeInvalidRequest, "user_id is required")

		return
	}

	visits, err := h.queries.ListVisitsForUser(c.Request.Context(), userID)
	if err != nil {
		respondServiceError(c, h.log.WithField("user_id", userID), err, "listing visits for user")

		return
	}

	c.JSON(http.StatusOK, gin.H{"visits": visits})
}

// ListForProperty handles GET /api/v1/properties/:id/visits.
func (h *VisitHandler) ListForProperty(c *gin.Context) {
	propertyID := c.Param("id")
	if propertyID == "" {
		respondError(c, http.StatusBadRequest, ErrCodeInvalidRequest, "property id is required")

		return
	}

	visits, err := h.queries.ListVisitsForProperty(c.Request.Context(), propertyID)
	if err != nil {
		respondServiceError(c, h.log.WithField("property_id", propertyID), err, "listing visits for property")

		return
	}

	c.JSON(http.StatusOK, gin.H{"visits": visits})
}

// ListForAdmin handles GET /api/v1/admin/visits.
func (h *VisitHandler) ListForAdmin(c *gin.Context) {
	opts := models.AdminListOpts{
		OrderBy: c.Query("order_by"),
		Limit:   parseInt(c.DefaultQuery("limit", "50"), 50),
		Offset:  parseOffset(c.DefaultQuery("offset", "0")),
	}

	if status := c.Query("status"); status != "" {
		opts.Status = models.VisitStatus(status)
		if !opts.Status.Valid() {
			respondError(c, http.StatusBadRequest, ErrCodeInvalidRequest, "unknown status filter")

			return
		}
	}

	visits, err := h.queries.ListVisitsForAdmin(c.Request.Context(), opts)
	if err != nil {
		respondServiceError(c, h.log, err, "listing visits for admin")

		return
	}

	c.JSON(http.StatusOK, gin.H{"visits": visits})
}

// parseVisitID reads and validates the :id path parameter.
func parseVisitID(c *gin.Context) (uuid.UUID, bool) {
	visitID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		respondError(c, http.StatusBadRequest, ErrCodeInvalidRequest, "visit id must be a UUID")

		return uuid.Nil, false
	}

	return visitID, true
}
