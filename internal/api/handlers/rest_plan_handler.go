package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/inocenciorjr/MEDBRAVE.APP-sub007/internal/api/middleware"
	"github.com/inocenciorjr/MEDBRAVE.APP-sub007/internal/models"
	"github.com/inocenciorjr/MEDBRAVE.APP-sub007/internal/services"
)

// RestPlanHandler handles REST requests for financial plans and their
// lifecycle.
type RestPlanHandler struct {
	planService      services.IPlanService
	lifecycleService services.ILifecycleService
}

// NewRestPlanHandler creates a new RestPlanHandler.
func NewRestPlanHandler(planService services.IPlanService, lifecycleService services.ILifecycleService) *RestPlanHandler {
	return &RestPlanHandler{planService: planService, lifecycleService: lifecycleService}
}

func mentorFromContext(c *gin.Context) (uuid.UUID, bool) {
	mentorID, ok := middleware.MentorID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Authentication required"})
		return uuid.Nil, false
	}
	return mentorID, true
}

func pathUUID(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid " + name})
		return uuid.Nil, false
	}
	return id, true
}

// ListPlans handles GET /v1/mentorship/financial/mentees
func (h *RestPlanHandler) ListPlans(c *gin.Context) {
	mentorID, ok := mentorFromContext(c)
	if !ok {
		return
	}

	filters := services.PlanFilters{}
	if status := c.Query("status"); status != "" {
		filters.Statuses = []models.PlanStatus{models.PlanStatus(status)}
	}
	if menteeStr := c.Query("menteeId"); menteeStr != "" {
		menteeID, err := uuid.Parse(menteeStr)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid menteeId"})
			return
		}
		filters.MenteeID = &menteeID
	}
	if before := c.Query("expiringBefore"); before != "" {
		t, err := time.Parse(time.RFC3339, before)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid expiringBefore"})
			return
		}
		filters.ExpiringBefore = &t
	}

	plans, total, err := h.planService.ListPlans(c.Request.Context(), mentorID, filters)
	if err != nil {
		respondError(c, err, "Failed to list financial plans")
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": plans, "total": total})
}

// GetPlan handles GET /v1/mentorship/financial/mentee/:mentorshipId
func (h *RestPlanHandler) GetPlan(c *gin.Context) {
	mentorID, ok := mentorFromContext(c)
	if !ok {
		return
	}
	mentorshipID, ok := pathUUID(c, "mentorshipId")
	if !ok {
		return
	}

	plan, err := h.planService.GetPlanByMentorship(c.Request.Context(), mentorshipID, mentorID)
	if err != nil {
		respondError(c, err, "Failed to load financial plan")
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": plan})
}

// CreatePlan handles POST /v1/mentorship/financial/mentees/:mentorshipId
func (h *RestPlanHandler) CreatePlan(c *gin.Context) {
	mentorID, ok := mentorFromContext(c)
	if !ok {
		return
	}
	mentorshipID, ok := pathUUID(c, "mentorshipId")
	if !ok {
		return
	}

	var payload services.CreatePlanPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body: " + err.Error()})
		return
	}
	payload.MentorshipID = mentorshipID

	plan, err := h.planService.CreatePlan(c.Request.Context(), mentorID, payload)
	if err != nil {
		respondError(c, err, "Failed to create financial plan")
		return
	}
	c.JSON(http.StatusCreated, gin.H{"data": plan})
}

// UpdatePlan handles PUT /v1/mentorship/financial/mentee/:mentorshipId
func (h *RestPlanHandler) UpdatePlan(c *gin.Context) {
	mentorID, ok := mentorFromContext(c)
	if !ok {
		return
	}
	mentorshipID, ok := pathUUID(c, "mentorshipId")
	if !ok {
		return
	}

	var payload services.UpdatePlanPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body: " + err.Error()})
		return
	}

	plan, err := h.planService.GetPlanByMentorship(c.Request.Context(), mentorshipID, mentorID)
	if err != nil {
		respondError(c, err, "Failed to load financial plan")
		return
	}

	updated, err := h.planService.UpdatePlan(c.Request.Context(), plan.ID, mentorID, payload)
	if err != nil {
		respondError(c, err, "Failed to update financial plan")
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": updated})
}

type suspendRequest struct {
	Reason string `json:"reason"`
}

// SuspendPlan handles POST /v1/mentorship/financial/mentees/:mentorshipId/suspend
func (h *RestPlanHandler) SuspendPlan(c *gin.Context) {
	mentorID, ok := mentorFromContext(c)
	if !ok {
		return
	}
	mentorshipID, ok := pathUUID(c, "mentorshipId")
	if !ok {
		return
	}

	var req suspendRequest
	_ = c.ShouldBindJSON(&req)

	if err := h.lifecycleService.SuspendPlan(c.Request.Context(), mentorshipID, mentorID, req.Reason); err != nil {
		respondError(c, err, "Failed to suspend plan")
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

type reactivateRequest struct {
	NewExpirationDate *time.Time `json:"newExpirationDate"`
}

// ReactivatePlan handles POST /v1/mentorship/financial/mentees/:mentorshipId/reactivate
func (h *RestPlanHandler) ReactivatePlan(c *gin.Context) {
	mentorID, ok := mentorFromContext(c)
	if !ok {
		return
	}
	mentorshipID, ok := pathUUID(c, "mentorshipId")
	if !ok {
		return
	}

	var req reactivateRequest
	_ = c.ShouldBindJSON(&req)

	if err := h.lifecycleService.ReactivatePlan(c.Request.Context(), mentorshipID, mentorID, req.NewExpirationDate); err != nil {
		respondError(c, err, "Failed to reactivate plan")
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// ExpirePlan handles POST /v1/mentorship/financial/mentees/:mentorshipId/expire
func (h *RestPlanHandler) ExpirePlan(c *gin.Context) {
	mentorID, ok := mentorFromContext(c)
	if !ok {
		return
	}
	mentorshipID, ok := pathUUID(c, "mentorshipId")
	if !ok {
		return
	}

	if err := h.lifecycleService.ExpirePlan(c.Request.Context(), mentorshipID, mentorID); err != nil {
		respondError(c, err, "Failed to expire plan")
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

type extendRequest struct {
	NewExpirationDate   time.Time `json:"newExpirationDate" binding:"required"`
	RegenerateReminders *bool     `json:"regenerateReminders"`
}

// ExtendPlan handles POST /v1/mentorship/financial/mentees/:mentorshipId/extend
func (h *RestPlanHandler) ExtendPlan(c *gin.Context) {
	mentorID, ok := mentorFromContext(c)
	if !ok {
		return
	}
	mentorshipID, ok := pathUUID(c, "mentorshipId")
	if !ok {
		return
	}

	var req extendRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body: " + err.Error()})
		return
	}

	regenerate := true
	if req.RegenerateReminders != nil {
		regenerate = *req.RegenerateReminders
	}

	if err := h.lifecycleService.ExtendPlan(c.Request.Context(), mentorshipID, mentorID, req.NewExpirationDate, regenerate); err != nil {
		respondError(c, err, "Failed to extend plan")
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}
