package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/inocenciorjr/MEDBRAVE.APP-sub007/internal/models"
	"github.com/inocenciorjr/MEDBRAVE.APP-sub007/internal/services"
)

// RestReminderHandler handles REST requests for billing reminders and
// payment history.
type RestReminderHandler struct {
	reminderService services.IReminderService
	paymentService  services.IPaymentService
}

// NewRestReminderHandler creates a new RestReminderHandler.
func NewRestReminderHandler(reminderService services.IReminderService, paymentService services.IPaymentService) *RestReminderHandler {
	return &RestReminderHandler{reminderService: reminderService, paymentService: paymentService}
}

// ListReminders handles GET /v1/mentorship/financial/reminders
func (h *RestReminderHandler) ListReminders(c *gin.Context) {
	mentorID, ok := mentorFromContext(c)
	if !ok {
		return
	}

	filters := services.ReminderFilters{}
	if status := c.Query("status"); status != "" {
		filters.Statuses = []models.ReminderStatus{models.ReminderStatus(status)}
	}
	if menteeStr := c.Query("menteeId"); menteeStr != "" {
		menteeID, err := uuid.Parse(menteeStr)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid menteeId"})
			return
		}
		filters.MenteeID = &menteeID
	}
	if start := c.Query("dueDateStart"); start != "" {
		t, err := time.Parse(time.RFC3339, start)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid dueDateStart"})
			return
		}
		filters.DueDateStart = &t
	}
	if end := c.Query("dueDateEnd"); end != "" {
		t, err := time.Parse(time.RFC3339, end)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid dueDateEnd"})
			return
		}
		filters.DueDateEnd = &t
	}

	reminders, total, err := h.reminderService.ListReminders(c.Request.Context(), mentorID, filters)
	if err != nil {
		respondError(c, err, "Failed to list reminders")
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": reminders, "total": total})
}

// RemindersByMentorship handles GET /v1/mentorship/financial/mentorship/:mentorshipId/reminders
func (h *RestReminderHandler) RemindersByMentorship(c *gin.Context) {
	mentorID, ok := mentorFromContext(c)
	if !ok {
		return
	}
	mentorshipID, ok := pathUUID(c, "mentorshipId")
	if !ok {
		return
	}

	reminders, err := h.reminderService.RemindersByMentorship(c.Request.Context(), mentorshipID, mentorID)
	if err != nil {
		respondError(c, err, "Failed to load reminders")
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": reminders})
}

// TodayReminders handles GET /v1/mentorship/financial/reminders/today
func (h *RestReminderHandler) TodayReminders(c *gin.Context) {
	mentorID, ok := mentorFromContext(c)
	if !ok {
		return
	}

	reminders, err := h.reminderService.TodayReminders(c.Request.Context(), mentorID)
	if err != nil {
		respondError(c, err, "Failed to load today's reminders")
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": reminders})
}

// WeekReminders handles GET /v1/mentorship/financial/reminders/week
func (h *RestReminderHandler) WeekReminders(c *gin.Context) {
	mentorID, ok := mentorFromContext(c)
	if !ok {
		return
	}

	reminders, err := h.reminderService.WeekReminders(c.Request.Context(), mentorID)
	if err != nil {
		respondError(c, err, "Failed to load week's reminders")
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": reminders})
}

type confirmPaymentRequest struct {
	Notes string `json:"notes"`
}

// ConfirmPayment handles POST /v1/mentorship/financial/reminders/:reminderId/confirm
func (h *RestReminderHandler) ConfirmPayment(c *gin.Context) {
	mentorID, ok := mentorFromContext(c)
	if !ok {
		return
	}
	reminderID, ok := pathUUID(c, "reminderId")
	if !ok {
		return
	}

	var req confirmPaymentRequest
	_ = c.ShouldBindJSON(&req)

	reminder, payment, err := h.paymentService.ConfirmPayment(c.Request.Context(), reminderID, mentorID, req.Notes)
	if err != nil {
		respondError(c, err, "Failed to confirm payment")
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": gin.H{"reminder": reminder, "payment": payment}})
}

// RevertPayment handles POST /v1/mentorship/financial/reminders/:reminderId/revert
func (h *RestReminderHandler) RevertPayment(c *gin.Context) {
	mentorID, ok := mentorFromContext(c)
	if !ok {
		return
	}
	reminderID, ok := pathUUID(c, "reminderId")
	if !ok {
		return
	}

	reminder, err := h.paymentService.RevertPayment(c.Request.Context(), reminderID, mentorID)
	if err != nil {
		respondError(c, err, "Failed to revert payment")
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": reminder})
}

// CancelReminder handles POST /v1/mentorship/financial/reminders/:reminderId/cancel
func (h *RestReminderHandler) CancelReminder(c *gin.Context) {
	mentorID, ok := mentorFromContext(c)
	if !ok {
		return
	}
	reminderID, ok := pathUUID(c, "reminderId")
	if !ok {
		return
	}

	if err := h.paymentService.CancelReminder(c.Request.Context(), reminderID, mentorID); err != nil {
		respondError(c, err, "Failed to cancel reminder")
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

type rescheduleRequest struct {
	NewDueDate time.Time `json:"newDueDate" binding:"required"`
}

// RescheduleReminder handles PUT /v1/mentorship/financial/reminders/:reminderId/date
func (h *RestReminderHandler) RescheduleReminder(c *gin.Context) {
	mentorID, ok := mentorFromContext(c)
	if !ok {
		return
	}
	reminderID, ok := pathUUID(c, "reminderId")
	if !ok {
		return
	}

	var req rescheduleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body: " + err.Error()})
		return
	}

	reminder, err := h.reminderService.RescheduleReminder(c.Request.Context(), reminderID, mentorID, req.NewDueDate)
	if err != nil {
		respondError(c, err, "Failed to reschedule reminder")
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": reminder})
}

// ListPayments handles GET /v1/mentorship/financial/payments
func (h *RestReminderHandler) ListPayments(c *gin.Context) {
	mentorID, ok := mentorFromContext(c)
	if !ok {
		return
	}

	var menteeID *uuid.UUID
	if menteeStr := c.Query("menteeId"); menteeStr != "" {
		id, err := uuid.Parse(menteeStr)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid menteeId"})
			return
		}
		menteeID = &id
	}

	payments, err := h.paymentService.ListPayments(c.Request.Context(), mentorID, menteeID, 0)
	if err != nil {
		respondError(c, err, "Failed to list payments")
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": payments})
}
