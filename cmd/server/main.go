package main

import (
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"gym_crm_backend/internal/database"
	"gym_crm_backend/internal/router"
	"gym_crm_backend/pkg/utils"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

func main() {
	// Initialize Logger
	utils.InitLogger()

	// .env is optional; real deployments set the environment directly.
	if err := godotenv.Load(); err != nil {
		utils.LogDebug("No .env file found, using process environment")
	}

	// Load database configuration from environment variables
	dbHost := utils.Getenv("DB_HOST", "localhost")
	dbPort := utils.Getenv("DB_PORT", "5432")
	dbUser := utils.Getenv("DB_USER", "gym_crm_user")
	dbPassword := utils.Getenv("DB_PASSWORD", "gym_crm_password")
	dbName := utils.Getenv("DB_NAME", "gym_crm_db")
	dbSSLMode := utils.Getenv("DB_SSLMODE", "disable")
	dbSchemaPath := utils.Getenv("DB_SCHEMA_PATH", "")

	// Initialize Database
	database.InitDB(dbHost, dbPort, dbUser, dbPassword, dbName, dbSSLMode, dbSchemaPath)

	// JWT configuration. The same secret signs tokens in the auth service
	// and verifies them in the middleware.
	jwtSecret := utils.Getenv("JWT_SECRET", "")
	if jwtSecret == "" {
		log.Warn().Msg("JWT_SECRET is not set, falling back to the development secret")
		jwtSecret = "gym-crm-dev-secret"
	}
	utils.InitJWT(jwtSecret)

	jwtExpHours, err := strconv.Atoi(utils.Getenv("JWT_EXPIRATION_HOURS", "24"))
	if err != nil || jwtExpHours <= 0 {
		jwtExpHours = 24
	}

	defaultStoreID, err := strconv.ParseInt(utils.Getenv("DEFAULT_STORE_ID", "0"), 10, 64)
	if err != nil {
		defaultStoreID = 0
	}

	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.Use(utils.GinLogger())

	// CORS configuration
	corsAllowedOriginsEnv := os.Getenv("CORS_ALLOWED_ORIGINS")
	var allowedOrigins []string
	if corsAllowedOriginsEnv != "" {
		allowedOrigins = strings.Split(corsAllowedOriginsEnv, ",")
	} else {
		allowedOrigins = []string{"http://localhost:3000", "http://localhost:3001"}
	}

	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = allowedOrigins
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Length", "Content-Type", "Authorization"}
	corsConfig.AllowCredentials = true
	engine.Use(cors.New(corsConfig))

	engine.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong"})
	})

	// Setup all application routes
	router.Setup(engine, database.GetDB(), router.Config{
		JWTExpiration:  time.Duration(jwtExpHours) * time.Hour,
		DefaultStoreID: defaultStoreID,
	})

	// Server port configuration
	port := utils.Getenv("PORT", "8080")
	utils.LogInfo("Server starting", map[string]interface{}{"port": port})

	if err := engine.Run(":" + port); err != nil {
		log.Fatal().Err(err).Msg("Failed to start server")
	}
}
