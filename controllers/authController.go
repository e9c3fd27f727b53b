package controllers

import (
	"MediChain/handlers"

	"github.com/gin-gonic/gin"
)

type AuthController struct {
	Handler *handlers.AuthHandler
}

// NewAuthController creates a new AuthController with the given AuthHandler
func NewAuthController(authHandler *handlers.AuthHandler) *AuthController {
	return &AuthController{
		Handler: authHandler,
	}
}

// RegisterRoutes mounts the public authentication routes. storeCheck runs
// before every route that reads the directory.
func (ac *AuthController) RegisterRoutes(router gin.IRouter, storeCheck gin.HandlerFunc) {
	router.POST("/registerAdmin", ac.Handler.RegisterAdmin)

	// Built-in admin login works without the database.
	router.POST("/login", ac.Handler.Login)

	public := router.Group("/", storeCheck)
	{
		public.POST("/registerPatient", ac.Handler.RegisterPatient)
		public.POST("/registerDoctor", ac.Handler.RegisterDoctor)
		public.POST("/forgot-password", ac.Handler.ForgotPassword)
		public.POST("/reset-password", ac.Handler.ResetPassword)
	}
}
