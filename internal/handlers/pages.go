package handlers

import (
	"net/http"

	"photo-share/internal/services"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// IndexHandler renders every photo, newest first.
func IndexHandler(photos *services.PhotoService, logger *zap.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		list, err := photos.List(c.UserContext())
		if err != nil {
			logger.Error("list photos", zap.Error(err))
			return c.Status(http.StatusInternalServerError).JSON(fiber.Map{"error": "failed to fetch photos"})
		}
		return c.Render("index", fiber.Map{"Title": "Photos", "Photos": list}, "layout")
	}
}

func UploadFormHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		return c.Render("upload", fiber.Map{"Title": "Upload"}, "layout")
	}
}
