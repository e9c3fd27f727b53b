package handlers

import (
	"MediChain/apperror"
	"MediChain/middlewares"
	"MediChain/models"

	"github.com/gin-gonic/gin"
)

const msgInvalidBody = "Invalid request body"

// callerClaims returns the authenticated caller, writing a 401 when the
// route was reached without one.
func callerClaims(c *gin.Context) (*models.Claims, bool) {
	claims, err := middlewares.ClaimsFromContext(c.Request.Context())
	if err != nil {
		middlewares.HttpError(c, apperror.NewUnauthenticated("Access token required"))
		return nil, false
	}
	return claims, true
}

// bindJSON decodes the body into dst, writing a 400 on failure.
func bindJSON(c *gin.Context, dst interface{}) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		middlewares.BadRequest(c, msgInvalidBody)
		return false
	}
	return true
}
