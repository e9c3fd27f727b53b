package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// rootHandler handles requests to the root path
func rootHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"message": "MediChain EHR API is running"})
}

// SetupRootRoute sets up routes for the application
func SetupRootRoute(router gin.IRouter) {
	router.GET("/", rootHandler)
}
