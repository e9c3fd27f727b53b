package handlers

import (
	"errors"
	"fmt"
	"net/http"

	"MediChain/apperror"
	"MediChain/filestore"
	"MediChain/middlewares"

	"github.com/gin-gonic/gin"
)

type FileHandler struct {
	store *filestore.Store
}

func NewFileHandler(store *filestore.Store) *FileHandler {
	return &FileHandler{store: store}
}

// UploadFile stores the multipart field "file" and returns its hash.
func (h *FileHandler) UploadFile(c *gin.Context) {
	if _, ok := callerClaims(c); !ok {
		return
	}

	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.store.MaxSize()+1<<20)
	header, err := c.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			middlewares.BadRequest(c, h.tooLargeMessage())
			return
		}
		middlewares.BadRequest(c, "No file uploaded")
		return
	}
	if header.Size > h.store.MaxSize() {
		middlewares.BadRequest(c, h.tooLargeMessage())
		return
	}

	file, err := header.Open()
	if err != nil {
		middlewares.HttpError(c, apperror.NewInternal("failed to read upload", err))
		return
	}
	defer file.Close()

	stored, err := h.store.Save(header.Filename, file)
	switch {
	case errors.Is(err, filestore.ErrTooLarge):
		middlewares.BadRequest(c, h.tooLargeMessage())
		return
	case errors.Is(err, filestore.ErrUnsupportedType), errors.Is(err, filestore.ErrInvalidName):
		middlewares.BadRequest(c, err.Error())
		return
	case err != nil:
		middlewares.HttpError(c, apperror.NewInternal("failed to store file", err))
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"file":    stored,
	})
}

// GetFile serves a stored upload, or a placeholder for legacy hashes.
func (h *FileHandler) GetFile(c *gin.Context) {
	if _, ok := callerClaims(c); !ok {
		return
	}

	content, err := h.store.Open(c.Param("hash"))
	switch {
	case errors.Is(err, filestore.ErrInvalidName):
		middlewares.BadRequest(c, "Invalid file hash")
		return
	case errors.Is(err, filestore.ErrNotFound):
		middlewares.HttpError(c, apperror.NewNotFound("File not found"))
		return
	case err != nil:
		middlewares.HttpError(c, apperror.NewInternal("failed to open file", err))
		return
	}

	if content.Data != nil {
		c.Data(http.StatusOK, content.ContentType, content.Data)
		return
	}
	c.Header("Content-Type", content.ContentType)
	c.File(content.Path)
}

func (h *FileHandler) tooLargeMessage() string {
	return fmt.Sprintf("File too large. Maximum size is %dMB", h.store.MaxSize()>>20)
}
