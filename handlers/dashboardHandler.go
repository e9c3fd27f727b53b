package handlers

import (
	"net/http"

	"MediChain/middlewares"
	"MediChain/services"

	"github.com/gin-gonic/gin"
)

type DashboardHandler struct {
	service services.DashboardService
}

func NewDashboardHandler(service services.DashboardService) *DashboardHandler {
	return &DashboardHandler{service: service}
}

func (h *DashboardHandler) GetStats(c *gin.Context) {
	claims, ok := callerClaims(c)
	if !ok {
		return
	}

	stats, err := h.service.Stats(c.Request.Context(), claims)
	if err != nil {
		middlewares.HttpError(c, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}
