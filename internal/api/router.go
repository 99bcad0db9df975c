package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/inocenciorjr/MEDBRAVE.APP-sub007/internal/api/handlers"
	"github.com/inocenciorjr/MEDBRAVE.APP-sub007/internal/api/middleware"
	"github.com/inocenciorjr/MEDBRAVE.APP-sub007/internal/cache"
	"github.com/inocenciorjr/MEDBRAVE.APP-sub007/internal/config"
	"github.com/inocenciorjr/MEDBRAVE.APP-sub007/internal/services"
	"github.com/inocenciorjr/MEDBRAVE.APP-sub007/internal/utils"
)

// SetupRouter configures and returns the main Gin engine.
func SetupRouter(cfg *config.Config, db *mongo.Database, rdb *redis.Client, notifier services.ChargeNotifier) *gin.Engine {
	clock := utils.NewSystemClock()
	statsCache := cache.NewStatsCache(rdb, cfg.StatsCacheTTL)

	planService := services.NewPlanService(db, cfg, clock, statsCache)
	paymentService := services.NewPaymentService(db, cfg, clock, statsCache)
	reminderService := services.NewReminderService(db, clock)
	lifecycleService := services.NewLifecycleService(db, clock, planService, statsCache)
	statsService := services.NewStatsService(db, clock, statsCache)
	reportService := services.NewReportService(db, cfg, clock)
	chargeService := services.NewChargeService(db, clock, notifier)

	r := gin.Default()

	rateLimiter := middleware.NewRateLimiterMiddleware(cfg)
	r.Use(middleware.CORSMiddleware())
	r.Use(rateLimiter.Limit())

	planHandler := handlers.NewRestPlanHandler(planService, lifecycleService)
	reminderHandler := handlers.NewRestReminderHandler(reminderService, paymentService)
	reportHandler := handlers.NewRestReportHandler(statsService, reportService)
	chargeHandler := handlers.NewRestChargeHandler(chargeService)

	v1 := r.Group("/v1")
	{
		v1.GET("/ping", func(c *gin.Context) {
			c.String(http.StatusOK, "pong")
		})

		financial := v1.Group("/mentorship/financial")
		financial.Use(middleware.AuthMiddleware(cfg.JwtSecret))
		{
			financial.GET("/stats", reportHandler.GetStats)

			financial.GET("/mentees", planHandler.ListPlans)
			financial.GET("/mentee/:mentorshipId", planHandler.GetPlan)
			financial.PUT("/mentee/:mentorshipId", planHandler.UpdatePlan)
			financial.POST("/mentees/:mentorshipId", planHandler.CreatePlan)
			financial.POST("/mentees/:mentorshipId/suspend", planHandler.SuspendPlan)
			financial.POST("/mentees/:mentorshipId/reactivate", planHandler.ReactivatePlan)
			financial.POST("/mentees/:mentorshipId/expire", planHandler.ExpirePlan)
			financial.POST("/mentees/:mentorshipId/extend", planHandler.ExtendPlan)

			financial.GET("/mentee/:mentorshipId/charges", chargeHandler.ListCharges)
			financial.POST("/mentee/:mentorshipId/charges", chargeHandler.CreateCharge)
			financial.PUT("/charges/:chargeId", chargeHandler.UpdateCharge)
			financial.DELETE("/charges/:chargeId", chargeHandler.DeleteCharge)
			financial.POST("/charges/:chargeId/mark-paid", chargeHandler.MarkChargeAsPaid)
			financial.POST("/charges/:chargeId/send-reminder", chargeHandler.SendChargeReminder)

			financial.GET("/mentorship/:mentorshipId/reminders", reminderHandler.RemindersByMentorship)
			financial.GET("/reminders", reminderHandler.ListReminders)
			financial.GET("/reminders/today", reminderHandler.TodayReminders)
			financial.GET("/reminders/week", reminderHandler.WeekReminders)
			financial.POST("/reminders/:reminderId/confirm", reminderHandler.ConfirmPayment)
			financial.POST("/reminders/:reminderId/revert", reminderHandler.RevertPayment)
			financial.POST("/reminders/:reminderId/cancel", reminderHandler.CancelReminder)
			financial.PUT("/reminders/:reminderId/date", reminderHandler.RescheduleReminder)

			financial.GET("/payments", reminderHandler.ListPayments)

			financial.GET("/report", reportHandler.GetReport)
			financial.GET("/report/monthly", reportHandler.GetMonthlyRevenue)
			financial.GET("/report/by-payment-type", reportHandler.GetRevenueByPaymentType)
			financial.GET("/report/top-mentees", reportHandler.GetTopMentees)
		}
	}

	return r
}
