package handlers

import (
	"net/http"

	"MediChain/middlewares"
	"MediChain/services"

	"github.com/gin-gonic/gin"
)

type UserHandler struct {
	service services.UserService
}

func NewUserHandler(service services.UserService) *UserHandler {
	return &UserHandler{service: service}
}

// ListUsers returns every account, optionally filtered by ?role=.
func (h *UserHandler) ListUsers(c *gin.Context) {
	claims, ok := callerClaims(c)
	if !ok {
		return
	}

	users, err := h.service.List(c.Request.Context(), claims, c.Query("role"))
	if err != nil {
		middlewares.HttpError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"users": users})
}

func (h *UserHandler) ListDoctors(c *gin.Context) {
	claims, ok := callerClaims(c)
	if !ok {
		return
	}

	doctors, err := h.service.ListDoctors(c.Request.Context(), claims)
	if err != nil {
		middlewares.HttpError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"doctors": doctors})
}

func (h *UserHandler) CreateUser(c *gin.Context) {
	claims, ok := callerClaims(c)
	if !ok {
		return
	}
	var input services.AccountInput
	if !bindJSON(c, &input) {
		return
	}

	user, err := h.service.Create(c.Request.Context(), claims, input)
	if err != nil {
		middlewares.HttpError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "User created successfully", "user": user})
}

// UpdateUser changes the role (admin) and/or the profile (self or admin).
func (h *UserHandler) UpdateUser(c *gin.Context) {
	claims, ok := callerClaims(c)
	if !ok {
		return
	}
	var input services.UpdateUserInput
	if !bindJSON(c, &input) {
		return
	}

	user, err := h.service.Update(c.Request.Context(), claims, c.Param("id"), input)
	if err != nil {
		middlewares.HttpError(c, err)
		return
	}

	message := "Profile updated successfully"
	if input.Role != nil {
		message = "User updated successfully"
	}
	c.JSON(http.StatusOK, gin.H{"message": message, "user": user})
}

func (h *UserHandler) DeleteUser(c *gin.Context) {
	claims, ok := callerClaims(c)
	if !ok {
		return
	}

	if err := h.service.Delete(c.Request.Context(), claims, c.Param("id")); err != nil {
		middlewares.HttpError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "User deleted successfully"})
}

func (h *UserHandler) ChangePassword(c *gin.Context) {
	claims, ok := callerClaims(c)
	if !ok {
		return
	}
	var data struct {
		CurrentPassword string `json:"currentPassword"`
		NewPassword     string `json:"newPassword"`
	}
	if !bindJSON(c, &data) {
		return
	}

	err := h.service.ChangePassword(c.Request.Context(), claims, c.Param("id"), data.CurrentPassword, data.NewPassword)
	if err != nil {
		middlewares.HttpError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Password changed successfully"})
}
