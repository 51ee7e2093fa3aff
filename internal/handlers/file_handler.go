package handlers

import (
	"context"
	"errors"

	"github.com/fathima-sithara/music-share/internal/models"
	service "github.com/fathima-sithara/music-share/internal/services"
	utils "github.com/fathima-sithara/music-share/internal/utils"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// FileService is what the HTTP layer needs from the service package.
type FileService interface {
	Upload(ctx context.Context, in service.UploadInput) (*models.FileRecord, error)
	GetByID(ctx context.Context, id string) (*models.FileRecord, error)
	ResolveDownloadURL(ctx context.Context, id string) (string, error)
}

// UploadObserver is told about every accepted upload.
type UploadObserver interface {
	ObserveUpload(result string, size int64)
}

type Handler struct {
	svc      FileService
	log      *zap.SugaredLogger
	observer UploadObserver
}

func NewHandler(svc FileService, log *zap.SugaredLogger, observer UploadObserver) *Handler {
	return &Handler{svc: svc, log: log, observer: observer}
}

func (h *Handler) observe(result string, size int64) {
	if h.observer != nil {
		h.observer.ObserveUpload(result, size)
	}
}

// POST /api/upload (multipart/form-data 'file')
func (h *Handler) Upload(c *fiber.Ctx) error {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		h.observe("rejected", 0)
		return utils.JSONError(c, fiber.StatusBadRequest, "No file uploaded")
	}
	ct := utils.ContentTypeOf(fileHeader)
	if err := utils.ValidateAudioFile(fileHeader.Filename, ct, fileHeader.Size); err != nil {
		h.observe("rejected", fileHeader.Size)
		return utils.JSONError(c, fiber.StatusBadRequest, "Only audio files are accepted")
	}

	f, err := fileHeader.Open()
	if err != nil {
		h.observe("failed", fileHeader.Size)
		return utils.JSONErrorDetails(c, fiber.StatusInternalServerError, "Upload failed", err)
	}
	defer f.Close()

	rec, err := h.svc.Upload(c.UserContext(), service.UploadInput{
		Filename:    fileHeader.Filename,
		ContentType: ct,
		Size:        fileHeader.Size,
		Body:        f,
	})
	if err != nil {
		if errors.Is(err, utils.ErrInvalidFile) || errors.Is(err, utils.ErrNotAudio) {
			h.observe("rejected", fileHeader.Size)
			return utils.JSONError(c, fiber.StatusBadRequest, "Only audio files are accepted")
		}
		h.log.Errorw("upload failed", "filename", fileHeader.Filename, "err", err)
		h.observe("failed", fileHeader.Size)
		return utils.JSONErrorDetails(c, fiber.StatusInternalServerError, "Upload failed", err)
	}

	h.log.Infow("file uploaded", "file_id", rec.ID.Hex(), "filename", rec.Filename, "size", rec.Size)
	h.observe("stored", rec.Size)
	return utils.JSONSuccess(c, fiber.StatusOK, models.UploadResult{
		Success:     true,
		FileID:      rec.ID.Hex(),
		DownloadURL: rec.Path,
	})
}

// GET /api/file/:id
func (h *Handler) GetFile(c *fiber.Ctx) error {
	rec, err := h.svc.GetByID(c.UserContext(), c.Params("id"))
	if err != nil {
		if errors.Is(err, utils.ErrFileNotFound) {
			return utils.JSONError(c, fiber.StatusNotFound, "File not found")
		}
		h.log.Errorw("file lookup failed", "id", c.Params("id"), "err", err)
		return utils.JSONError(c, fiber.StatusInternalServerError, "Server error")
	}
	return utils.JSONSuccess(c, fiber.StatusOK, rec)
}

// GET /api/download/:id -> forced-download url
func (h *Handler) Download(c *fiber.Ctx) error {
	u, err := h.svc.ResolveDownloadURL(c.UserContext(), c.Params("id"))
	if err != nil {
		if errors.Is(err, utils.ErrFileNotFound) {
			return utils.JSONError(c, fiber.StatusNotFound, "File not found")
		}
		h.log.Errorw("download resolution failed", "id", c.Params("id"), "err", err)
		return utils.JSONError(c, fiber.StatusInternalServerError, "Download failed")
	}
	return utils.JSONSuccess(c, fiber.StatusOK, models.DownloadResult{URL: u})
}

func (h *Handler) Health(c *fiber.Ctx) error {
	return c.SendString("Server Music Sharing is RUNNING!")
}
