package router

import (
	"gym_crm_backend/internal/handlers"
	"gym_crm_backend/internal/middleware"
	"gym_crm_backend/internal/models"

	"github.com/gin-gonic/gin"
)

// SetupPublicAuthRoutes sets up login and registration.
func SetupPublicAuthRoutes(group *gin.RouterGroup, authHandler *handlers.AuthHandler) {
	group.POST("/register", authHandler.Register)
	group.POST("/login", authHandler.Login)
	group.POST("/refresh-token", authHandler.RefreshToken)
}

// SetupAuthenticatedAuthRoutes sets up the routes that need a valid token.
func SetupAuthenticatedAuthRoutes(group *gin.RouterGroup, authHandler *handlers.AuthHandler) {
	group.GET("/me", authHandler.GetProfile)
	group.POST("/logout", authHandler.Logout)
}

// SetupSelfCheckInRoutes sets up the kiosk toggle endpoint.
func SetupSelfCheckInRoutes(apiGroup *gin.RouterGroup, selfCheckInHandler *handlers.SelfCheckInHandler) {
	apiGroup.POST("/self-checkin", selfCheckInHandler.Toggle)
}

// SetupStoreRoutes sets up the store and staff-roster routes.
func SetupStoreRoutes(authenticatedGroup *gin.RouterGroup, storeHandler *handlers.StoreHandler) {
	storeRoutes := authenticatedGroup.Group("/stores")
	storeRoutes.Use(middleware.RoleAuthMiddleware(models.RoleOwner, models.RoleStaff))
	{
		storeRoutes.GET("", storeHandler.GetStores)
		storeRoutes.GET("/:id", storeHandler.GetStoreByID)
		storeRoutes.POST("/:id/qr-token", storeHandler.RotateQRToken)
		storeRoutes.GET("/:id/staff", storeHandler.GetStaffRoster)
		storeRoutes.DELETE("/:id/staff/:userId", storeHandler.RemoveStaff)
	}

	assignmentRoutes := authenticatedGroup.Group("/staff-assignments")
	assignmentRoutes.Use(middleware.RoleAuthMiddleware(models.RoleOwner, models.RoleStaff))
	{
		assignmentRoutes.POST("", storeHandler.AssignStaff)
	}

	ownerRoutes := authenticatedGroup.Group("/stores")
	ownerRoutes.Use(middleware.RoleAuthMiddleware(models.RoleOwner))
	{
		ownerRoutes.POST("", storeHandler.CreateStore)
		ownerRoutes.PUT("/:id", storeHandler.UpdateStore)
	}
}

// SetupPlanRoutes sets up the membership plan routes.
func SetupPlanRoutes(authenticatedGroup *gin.RouterGroup, planHandler *handlers.PlanHandler) {
	planRoutes := authenticatedGroup.Group("/plans")
	planRoutes.Use(middleware.RoleAuthMiddleware(models.RoleOwner, models.RoleStaff))
	{
		planRoutes.GET("", planHandler.GetPlans)
		planRoutes.GET("/:id", planHandler.GetPlanByID)
	}

	ownerPlanRoutes := authenticatedGroup.Group("/plans")
	ownerPlanRoutes.Use(middleware.RoleAuthMiddleware(models.RoleOwner))
	{
		ownerPlanRoutes.POST("", planHandler.CreatePlan)
		ownerPlanRoutes.PUT("/:id", planHandler.UpdatePlan)
	}
}

// SetupMemberRoutes sets up the member routes.
func SetupMemberRoutes(authenticatedGroup *gin.RouterGroup, memberHandler *handlers.MemberHandler) {
	memberRoutes := authenticatedGroup.Group("/members")
	memberRoutes.Use(middleware.RoleAuthMiddleware(models.RoleOwner, models.RoleStaff))
	{
		memberRoutes.POST("", memberHandler.CreateMember)
		memberRoutes.GET("", memberHandler.GetMembers)
		memberRoutes.GET("/:id", memberHandler.GetMemberByID)
		memberRoutes.PUT("/:id", memberHandler.UpdateMember)
		memberRoutes.DELETE("/:id", memberHandler.DeleteMember)
	}
}

// SetupTrainerRoutes sets up the trainer routes.
func SetupTrainerRoutes(authenticatedGroup *gin.RouterGroup, trainerHandler *handlers.TrainerHandler) {
	trainerRoutes := authenticatedGroup.Group("/trainers")
	trainerRoutes.Use(middleware.RoleAuthMiddleware(models.RoleOwner, models.RoleStaff))
	{
		trainerRoutes.POST("", trainerHandler.CreateTrainer)
		trainerRoutes.GET("", trainerHandler.GetTrainers)
		trainerRoutes.GET("/:id", trainerHandler.GetTrainerByID)
		trainerRoutes.PUT("/:id", trainerHandler.UpdateTrainer)
	}
}

// SetupCheckInRoutes sets up the presence ledger routes.
func SetupCheckInRoutes(authenticatedGroup *gin.RouterGroup, checkInHandler *handlers.CheckInHandler) {
	checkInRoutes := authenticatedGroup.Group("/check-ins")
	checkInRoutes.Use(middleware.RoleAuthMiddleware(models.RoleOwner, models.RoleStaff))
	{
		checkInRoutes.POST("", checkInHandler.CheckIn)
		checkInRoutes.PUT("/:id/checkout", checkInHandler.CheckOut)
		checkInRoutes.GET("/status", checkInHandler.GetStatusBoard)
	}
}

// SetupReservationRoutes sets up the reservation lifecycle routes.
func SetupReservationRoutes(authenticatedGroup *gin.RouterGroup, reservationHandler *handlers.ReservationHandler) {
	reservationRoutes := authenticatedGroup.Group("/reservations")
	reservationRoutes.Use(middleware.RoleAuthMiddleware(models.RoleOwner, models.RoleStaff))
	{
		reservationRoutes.POST("", reservationHandler.CreateReservation)
		reservationRoutes.GET("", reservationHandler.GetReservations)
		reservationRoutes.GET("/:id", reservationHandler.GetReservationByID)
		reservationRoutes.PATCH("/:id/status", reservationHandler.Transition)
	}
}

// SetupDashboardRoutes sets up the dashboard routes.
func SetupDashboardRoutes(authenticatedGroup *gin.RouterGroup, dashboardHandler *handlers.DashboardHandler) {
	dashboardRoutes := authenticatedGroup.Group("/dashboard")
	dashboardRoutes.Use(middleware.RoleAuthMiddleware(models.RoleOwner, models.RoleStaff))
	{
		dashboardRoutes.GET("/summary", dashboardHandler.GetStoreSummary)
		dashboardRoutes.GET("/stores", dashboardHandler.GetAccessibleStores)
	}
}

// SetupSalesRoutes sets up the daily sales routes.
func SetupSalesRoutes(authenticatedGroup *gin.RouterGroup, salesHandler *handlers.SalesHandler) {
	salesRoutes := authenticatedGroup.Group("/sales")
	salesRoutes.Use(middleware.RoleAuthMiddleware(models.RoleOwner, models.RoleStaff))
	{
		salesRoutes.POST("", salesHandler.CreateSalesRecord)
		salesRoutes.GET("", salesHandler.GetSalesRecords)
		salesRoutes.GET("/summary", salesHandler.GetSalesSummary)
		salesRoutes.DELETE("/:id", salesHandler.DeleteSalesRecord)
	}
}
