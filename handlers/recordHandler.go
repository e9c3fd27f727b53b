package handlers

import (
	"net/http"

	"MediChain/middlewares"
	"MediChain/services"

	"github.com/gin-gonic/gin"
)

type RecordHandler struct {
	service services.RecordService
}

func NewRecordHandler(service services.RecordService) *RecordHandler {
	return &RecordHandler{service: service}
}

func (h *RecordHandler) UploadRecord(c *gin.Context) {
	claims, ok := callerClaims(c)
	if !ok {
		return
	}
	var input services.UploadRecordInput
	if !bindJSON(c, &input) {
		return
	}

	record, err := h.service.Upload(c.Request.Context(), claims, input)
	if err != nil {
		middlewares.HttpError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "Record uploaded successfully", "record": record})
}

func (h *RecordHandler) AddNotes(c *gin.Context) {
	claims, ok := callerClaims(c)
	if !ok {
		return
	}
	var data struct {
		RecordID   string `json:"recordId"`
		DoctorNote string `json:"doctorNote"`
	}
	if !bindJSON(c, &data) {
		return
	}

	record, err := h.service.SetDoctorNote(c.Request.Context(), claims, data.RecordID, data.DoctorNote)
	if err != nil {
		middlewares.HttpError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Notes updated successfully", "document": record})
}

// GetOwnRecords lists the calling patient's records.
func (h *RecordHandler) GetOwnRecords(c *gin.Context) {
	claims, ok := callerClaims(c)
	if !ok {
		return
	}

	records, err := h.service.ListOwn(c.Request.Context(), claims)
	if err != nil {
		middlewares.HttpError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"records": records})
}

// GetPatientRecords lists a patient's records by wallet address.
func (h *RecordHandler) GetPatientRecords(c *gin.Context) {
	claims, ok := callerClaims(c)
	if !ok {
		return
	}

	list, err := h.service.ListFor(c.Request.Context(), claims, c.Param("patientId"))
	if err != nil {
		middlewares.HttpError(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}
