package router

import (
	"database/sql"
	"time"

	"gym_crm_backend/internal/handlers"
	"gym_crm_backend/internal/middleware"
	"gym_crm_backend/internal/repositories"
	"gym_crm_backend/internal/services"

	"github.com/gin-gonic/gin"
)

// Config carries the startup settings the router wiring needs. The JWT
// signing secret itself is installed once through utils.InitJWT at boot.
type Config struct {
	JWTExpiration  time.Duration
	DefaultStoreID int64
}

// Setup initializes the routing for the application.
func Setup(engine *gin.Engine, db *sql.DB, cfg Config) {
	// Initialize Repositories
	authRepo := repositories.NewAuthRepository(db)
	storeRepo := repositories.NewStoreRepository(db)
	planRepo := repositories.NewPlanRepository(db)
	memberRepo := repositories.NewMemberRepository(db)
	trainerRepo := repositories.NewTrainerRepository(db)
	checkInRepo := repositories.NewCheckInRepository(db)
	reservationRepo := repositories.NewReservationRepository(db)
	salesRepo := repositories.NewSalesRepository(db)
	dashboardRepo := repositories.NewDashboardRepository(db)

	// Initialize Services
	authService := services.NewAuthService(authRepo, db, cfg.JWTExpiration)
	accessService := services.NewAccessService(storeRepo)
	storeService := services.NewStoreService(storeRepo, authRepo, db)
	planService := services.NewPlanService(planRepo, db)
	memberService := services.NewMemberService(memberRepo, planRepo, db)
	trainerService := services.NewTrainerService(trainerRepo, storeRepo, db)
	checkInService := services.NewCheckInService(checkInRepo, memberRepo, db)
	reservationService := services.NewReservationService(reservationRepo, memberRepo, trainerRepo, db)
	selfCheckInService := services.NewSelfCheckInService(checkInRepo, memberRepo, storeRepo)
	dashboardService := services.NewDashboardService(dashboardRepo, checkInRepo, reservationRepo, salesRepo)
	salesService := services.NewSalesService(salesRepo, db)

	// Initialize Handlers
	authHandler := handlers.NewAuthHandler(authService)
	storeHandler := handlers.NewStoreHandler(storeService, accessService)
	planHandler := handlers.NewPlanHandler(planService)
	memberHandler := handlers.NewMemberHandler(memberService, accessService)
	trainerHandler := handlers.NewTrainerHandler(trainerService, accessService)
	checkInHandler := handlers.NewCheckInHandler(checkInService, accessService)
	reservationHandler := handlers.NewReservationHandler(reservationService, trainerService, accessService)
	selfCheckInHandler := handlers.NewSelfCheckInHandler(selfCheckInService, cfg.DefaultStoreID)
	dashboardHandler := handlers.NewDashboardHandler(dashboardService, accessService)
	salesHandler := handlers.NewSalesHandler(salesService, accessService)

	apiV1 := engine.Group("/api/v1")

	// Public routes: login/registration and the kiosk toggle. The kiosk
	// authenticates its store through the QR token instead of a JWT.
	SetupPublicAuthRoutes(apiV1.Group("/auth"), authHandler)
	SetupSelfCheckInRoutes(apiV1, selfCheckInHandler)

	authenticated := apiV1.Group("")
	authenticated.Use(middleware.AuthMiddleware())
	{
		SetupAuthenticatedAuthRoutes(authenticated.Group("/auth"), authHandler)

		SetupStoreRoutes(authenticated, storeHandler)
		SetupPlanRoutes(authenticated, planHandler)
		SetupMemberRoutes(authenticated, memberHandler)
		SetupTrainerRoutes(authenticated, trainerHandler)
		SetupCheckInRoutes(authenticated, checkInHandler)
		SetupReservationRoutes(authenticated, reservationHandler)
		SetupDashboardRoutes(authenticated, dashboardHandler)
		SetupSalesRoutes(authenticated, salesHandler)
	}
}
