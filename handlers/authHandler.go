package handlers

import (
	"net/http"

	"MediChain/middlewares"
	"MediChain/models"
	"MediChain/services"

	"github.com/gin-gonic/gin"
)

type AuthHandler struct {
	service services.AuthService
}

func NewAuthHandler(service services.AuthService) *AuthHandler {
	return &AuthHandler{service: service}
}

// Login authenticates the user and returns a session token with the profile.
func (h *AuthHandler) Login(c *gin.Context) {
	var credentials struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if !bindJSON(c, &credentials) {
		return
	}

	result, err := h.service.Login(c.Request.Context(), credentials.Email, credentials.Password)
	if err != nil {
		middlewares.HttpError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Login successful",
		"token":   result.Token,
		"user":    result.User,
	})
}

func (h *AuthHandler) RegisterPatient(c *gin.Context) {
	h.register(c, models.RolePatient, "Patient registered successfully")
}

func (h *AuthHandler) RegisterDoctor(c *gin.Context) {
	h.register(c, models.RoleDoctor, "Doctor registered successfully")
}

// RegisterAdmin is always refused; administrators are configured, not registered.
func (h *AuthHandler) RegisterAdmin(c *gin.Context) {
	c.JSON(http.StatusForbidden, gin.H{
		"error": "Admin registration is disabled. Only predefined admin accounts exist.",
	})
}

func (h *AuthHandler) register(c *gin.Context, role models.Role, message string) {
	var input services.AccountInput
	if !bindJSON(c, &input) {
		return
	}

	result, err := h.service.Register(c.Request.Context(), input, role)
	if err != nil {
		middlewares.HttpError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": message,
		"token":   result.Token,
		"user":    result.User,
	})
}

// ForgotPassword always answers the same way whether or not the email exists.
func (h *AuthHandler) ForgotPassword(c *gin.Context) {
	var data struct {
		Email string `json:"email"`
	}
	if !bindJSON(c, &data) {
		return
	}

	if err := h.service.RequestPasswordReset(c.Request.Context(), data.Email); err != nil {
		middlewares.HttpError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "If the email is registered, a reset code has been sent"})
}

func (h *AuthHandler) ResetPassword(c *gin.Context) {
	var data struct {
		Email       string `json:"email"`
		Code        string `json:"code"`
		NewPassword string `json:"newPassword"`
	}
	if !bindJSON(c, &data) {
		return
	}

	if err := h.service.ResetPassword(c.Request.Context(), data.Email, data.Code, data.NewPassword); err != nil {
		middlewares.HttpError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Password reset successfully"})
}
