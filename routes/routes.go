package routes

import (
	"log/slog"
	"net/http"

	"MediChain/cache"
	"MediChain/config"
	"MediChain/controllers"
	"MediChain/database"
	"MediChain/filestore"
	"MediChain/handlers"
	"MediChain/ledger"
	"MediChain/middlewares"
	"MediChain/repositories"
	"MediChain/services"
	"MediChain/utils"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// Dependencies are the long-lived handles the server is built from.
type Dependencies struct {
	Config *config.AppConfig
	Log    *slog.Logger
	DB     *gorm.DB
	Cache  *cache.Cache
	Tokens *utils.TokenMaker
	Mailer services.ResetMailer
	Mirror ledger.Mirror
	// Chain is nil when the ledger is disabled.
	Chain *ledger.Chain
	Files *filestore.Store
}

// SetupRoutes initializes the routes and middleware for the server
func SetupRoutes(deps Dependencies) http.Handler {
	cfg := deps.Config
	if cfg.IsDevelopment() {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.MaxMultipartMemory = cfg.MaxUploadBytes

	router.Use(middlewares.CorsMiddleware(middlewares.DefaultCorsConfig(cfg.AllowedOrigins())))
	router.Use(middlewares.NewRateLimiterMiddleware(middlewares.RateLimiterConfig{
		RequestsPerSecond: cfg.RateLimitRPS,
		Burst:             cfg.RateLimitBurst,
	}))
	router.Use(middlewares.LoggingMiddleware(deps.Log))

	accountRepo := repositories.NewAccountRepository(deps.DB, deps.Cache, deps.Log)
	appointmentRepo := repositories.NewAppointmentRepository(deps.DB)
	recordRepo := repositories.NewRecordRepository(deps.DB, deps.Cache, deps.Log)

	admin := services.AdminIdentity{
		Name:          cfg.AdminName,
		Email:         cfg.AdminEmail,
		Password:      cfg.AdminPassword,
		WalletAddress: cfg.AdminWallet,
	}

	authService := services.NewAuthService(accountRepo, deps.Cache, deps.Cache, deps.Tokens, deps.Mailer, deps.Mirror, admin, deps.Log)
	userService := services.NewUserService(accountRepo, recordRepo, deps.Cache, deps.Mirror, admin, deps.Log)
	appointmentService := services.NewAppointmentService(appointmentRepo, accountRepo, recordRepo, deps.Log)
	recordService := services.NewRecordService(recordRepo, accountRepo, deps.Mirror, deps.Log)
	dashboardService := services.NewDashboardService(accountRepo, appointmentRepo, recordRepo)

	var chain handlers.LedgerReader
	if deps.Chain != nil {
		chain = deps.Chain
	}

	auth := middlewares.TokenAuthMiddleware(deps.Tokens)
	storeCheck := middlewares.StoreAvailable(database.Pinger{DB: deps.DB})

	controllers.SetupRootRoute(router)
	controllers.NewAuthController(handlers.NewAuthHandler(authService)).RegisterRoutes(router, storeCheck)
	controllers.SetupEHRRoutes(router, controllers.EHRHandlers{
		Users:        handlers.NewUserHandler(userService),
		Appointments: handlers.NewAppointmentHandler(appointmentService),
		Records:      handlers.NewRecordHandler(recordService),
		Files:        handlers.NewFileHandler(deps.Files),
		Dashboard:    handlers.NewDashboardHandler(dashboardService),
		Ledger:       handlers.NewLedgerHandler(chain),
	}, auth, storeCheck)

	return router
}
