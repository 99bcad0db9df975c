package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/inocenciorjr/MEDBRAVE.APP-sub007/internal/services"
)

// RestChargeHandler handles REST requests for one-off mentorship
// charges.
type RestChargeHandler struct {
	chargeService services.IChargeService
}

// NewRestChargeHandler creates a new RestChargeHandler.
func NewRestChargeHandler(chargeService services.IChargeService) *RestChargeHandler {
	return &RestChargeHandler{chargeService: chargeService}
}

// ListCharges handles GET /v1/mentorship/financial/mentee/:mentorshipId/charges
func (h *RestChargeHandler) ListCharges(c *gin.Context) {
	mentorID, ok := mentorFromContext(c)
	if !ok {
		return
	}
	mentorshipID, ok := pathUUID(c, "mentorshipId")
	if !ok {
		return
	}

	charges, err := h.chargeService.ListCharges(c.Request.Context(), mentorshipID, mentorID)
	if err != nil {
		respondError(c, err, "Failed to list charges")
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": charges})
}

// CreateCharge handles POST /v1/mentorship/financial/mentee/:mentorshipId/charges
func (h *RestChargeHandler) CreateCharge(c *gin.Context) {
	mentorID, ok := mentorFromContext(c)
	if !ok {
		return
	}
	mentorshipID, ok := pathUUID(c, "mentorshipId")
	if !ok {
		return
	}

	var payload services.CreateChargePayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body: " + err.Error()})
		return
	}

	charge, err := h.chargeService.CreateCharge(c.Request.Context(), mentorshipID, mentorID, payload)
	if err != nil {
		respondError(c, err, "Failed to create charge")
		return
	}
	c.JSON(http.StatusCreated, gin.H{"data": charge})
}

// UpdateCharge handles PUT /v1/mentorship/financial/charges/:chargeId
func (h *RestChargeHandler) UpdateCharge(c *gin.Context) {
	mentorID, ok := mentorFromContext(c)
	if !ok {
		return
	}
	chargeID, ok := pathUUID(c, "chargeId")
	if !ok {
		return
	}

	var payload services.UpdateChargePayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body: " + err.Error()})
		return
	}

	charge, err := h.chargeService.UpdateCharge(c.Request.Context(), chargeID, mentorID, payload)
	if err != nil {
		respondError(c, err, "Failed to update charge")
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": charge})
}

// DeleteCharge handles DELETE /v1/mentorship/financial/charges/:chargeId
func (h *RestChargeHandler) DeleteCharge(c *gin.Context) {
	mentorID, ok := mentorFromContext(c)
	if !ok {
		return
	}
	chargeID, ok := pathUUID(c, "chargeId")
	if !ok {
		return
	}

	if err := h.chargeService.DeleteCharge(c.Request.Context(), chargeID, mentorID); err != nil {
		respondError(c, err, "Failed to delete charge")
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// MarkChargeAsPaid handles POST /v1/mentorship/financial/charges/:chargeId/mark-paid
func (h *RestChargeHandler) MarkChargeAsPaid(c *gin.Context) {
	mentorID, ok := mentorFromContext(c)
	if !ok {
		return
	}
	chargeID, ok := pathUUID(c, "chargeId")
	if !ok {
		return
	}

	charge, err := h.chargeService.MarkChargeAsPaid(c.Request.Context(), chargeID, mentorID)
	if err != nil {
		respondError(c, err, "Failed to mark charge as paid")
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": charge})
}

// SendChargeReminder handles POST /v1/mentorship/financial/charges/:chargeId/send-reminder
func (h *RestChargeHandler) SendChargeReminder(c *gin.Context) {
	mentorID, ok := mentorFromContext(c)
	if !ok {
		return
	}
	chargeID, ok := pathUUID(c, "chargeId")
	if !ok {
		return
	}

	if err := h.chargeService.SendChargeReminder(c.Request.Context(), chargeID, mentorID); err != nil {
		respondError(c, err, "Failed to send charge reminder")
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}
