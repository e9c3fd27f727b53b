package handlers

import (
	"net/http"

	"MediChain/middlewares"
	"MediChain/models"
	"MediChain/services"

	"github.com/gin-gonic/gin"
)

type AppointmentHandler struct {
	service services.AppointmentService
}

func NewAppointmentHandler(service services.AppointmentService) *AppointmentHandler {
	return &AppointmentHandler{service: service}
}

func (h *AppointmentHandler) CreateAppointment(c *gin.Context) {
	claims, ok := callerClaims(c)
	if !ok {
		return
	}
	var input services.CreateAppointmentInput
	if !bindJSON(c, &input) {
		return
	}

	appointment, err := h.service.Create(c.Request.Context(), claims, input)
	if err != nil {
		middlewares.HttpError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"message":     "Appointment scheduled successfully",
		"appointment": appointment,
	})
}

func (h *AppointmentHandler) GetAllAppointments(c *gin.Context) {
	claims, ok := callerClaims(c)
	if !ok {
		return
	}

	appointments, err := h.service.List(c.Request.Context(), claims)
	if err != nil {
		middlewares.HttpError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"appointments": appointments})
}

func (h *AppointmentHandler) UpdateStatus(c *gin.Context) {
	claims, ok := callerClaims(c)
	if !ok {
		return
	}
	var data struct {
		Status models.AppointmentStatus `json:"status"`
	}
	if !bindJSON(c, &data) {
		return
	}

	appointment, err := h.service.UpdateStatus(c.Request.Context(), claims, c.Param("id"), data.Status)
	if err != nil {
		middlewares.HttpError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message":     "Appointment status updated successfully",
		"appointment": appointment,
	})
}

func (h *AppointmentHandler) Respond(c *gin.Context) {
	claims, ok := callerClaims(c)
	if !ok {
		return
	}
	var input services.RespondInput
	if !bindJSON(c, &input) {
		return
	}

	appointment, err := h.service.Respond(c.Request.Context(), claims, c.Param("id"), input)
	if err != nil {
		middlewares.HttpError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message":     "Doctor response added successfully",
		"appointment": appointment,
	})
}

func (h *AppointmentHandler) PatientRecords(c *gin.Context) {
	claims, ok := callerClaims(c)
	if !ok {
		return
	}

	view, err := h.service.PatientRecords(c.Request.Context(), claims, c.Param("id"))
	if err != nil {
		middlewares.HttpError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}
