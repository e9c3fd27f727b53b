package controllers

import (
	"MediChain/handlers"
	"MediChain/middlewares"
	"MediChain/models"

	"github.com/gin-gonic/gin"
)

// EHRHandlers groups the handlers behind bearer authentication.
type EHRHandlers struct {
	Users        *handlers.UserHandler
	Appointments *handlers.AppointmentHandler
	Records      *handlers.RecordHandler
	Files        *handlers.FileHandler
	Dashboard    *handlers.DashboardHandler
	Ledger       *handlers.LedgerHandler
}

// SetupEHRRoutes mounts the authenticated API. Role gates at the route
// level mirror the checks the services make themselves.
func SetupEHRRoutes(router gin.IRouter, h EHRHandlers, auth, storeCheck gin.HandlerFunc) {
	files := router.Group("/", auth)
	{
		files.POST("/upload-file", h.Files.UploadFile)
		files.GET("/file/:hash", h.Files.GetFile)
	}

	api := router.Group("/", auth, storeCheck)
	{
		api.GET("/doctors", h.Users.ListDoctors)
		api.PUT("/users/:id", h.Users.UpdateUser)
		api.PUT("/users/:id/change-password", h.Users.ChangePassword)

		api.POST("/appointments", h.Appointments.CreateAppointment)
		api.GET("/appointments", h.Appointments.GetAllAppointments)
		api.PUT("/appointments/:id/status", h.Appointments.UpdateStatus)
		api.PUT("/appointments/:id/response", h.Appointments.Respond)
		api.GET("/appointments/:id/patient-records", h.Appointments.PatientRecords)

		api.POST("/uploadRecord", h.Records.UploadRecord)
		api.POST("/addNotes", h.Records.AddNotes)
		api.GET("/records", h.Records.GetOwnRecords)
		api.GET("/records/:patientId", h.Records.GetPatientRecords)
	}

	admin := router.Group("/", auth, middlewares.RoleAuthMiddleware(models.RoleAdmin), storeCheck)
	{
		admin.GET("/users", h.Users.ListUsers)
		admin.POST("/users", h.Users.CreateUser)
		admin.DELETE("/users/:id", h.Users.DeleteUser)
		admin.GET("/dashboard/stats", h.Dashboard.GetStats)
	}

	ledger := router.Group("/ledger", auth)
	{
		ledger.GET("/verify", middlewares.RoleAuthMiddleware(models.RoleAdmin), h.Ledger.Verify)
		ledger.GET("/records/:wallet", middlewares.RoleAuthMiddleware(models.RoleDoctor, models.RoleAdmin), h.Ledger.WalletEvents)
	}
}
