package handlers

import (
	"errors"
	"net/http"

	"photo-share/internal/models"
	"photo-share/internal/observability"
	"photo-share/internal/services"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// UploadPhotoHandler accepts a multipart form with fields "title" and "file".
func UploadPhotoHandler(photos *services.PhotoService, metrics *observability.Metrics, logger *zap.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		req := services.UploadRequest{Title: c.FormValue("title")}

		// A missing file is reported by the service, after nothing was written.
		if fileHeader, err := c.FormFile("file"); err == nil {
			f, err := fileHeader.Open()
			if err != nil {
				return c.Status(http.StatusBadRequest).JSON(fiber.Map{"error": "unreadable file"})
			}
			defer f.Close()

			req.Filename = fileHeader.Filename
			req.ContentType = fileHeader.Header.Get(fiber.HeaderContentType)
			req.File = f
		}

		photo, err := photos.Upload(c.UserContext(), req)
		if err != nil {
			status, body, result := uploadFailure(err)
			metrics.Uploads.WithLabelValues(result).Inc()
			if status >= http.StatusInternalServerError {
				logger.Error("upload failed", zap.String("filename", req.Filename), zap.Error(err))
			}
			return c.Status(status).JSON(body)
		}
		metrics.Uploads.WithLabelValues("ok").Inc()

		if c.Get("HX-Request") != "" {
			return c.JSON(models.UploadResponse{OK: true, ID: photo.ID})
		}
		return c.Redirect("/", http.StatusFound)
	}
}

func uploadFailure(err error) (int, fiber.Map, string) {
	switch {
	case errors.Is(err, services.ErrNoFile):
		return http.StatusBadRequest, fiber.Map{"error": "no file"}, "no_file"
	case errors.Is(err, services.ErrUnsupportedType):
		return http.StatusUnsupportedMediaType, fiber.Map{"error": "unsupported type"}, "unsupported_type"
	case errors.Is(err, services.ErrInvalidImage):
		return http.StatusUnprocessableEntity, fiber.Map{"error": "invalid image"}, "invalid_image"
	default:
		return http.StatusInternalServerError, fiber.Map{"error": "storage failure"}, "error"
	}
}
