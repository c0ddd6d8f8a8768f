package handlers

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"

	"photo-share/internal/services"
	"photo-share/internal/utils"

	"github.com/gofiber/fiber/v2"
)

// MediaHandler serves files stored directly under root by name. When sniff
// is set the Content-Type comes from the file's bytes rather than its
// extension (thumbnails of WEBP uploads are JPEG-encoded).
func MediaHandler(root string, sniff bool) fiber.Handler {
	return func(c *fiber.Ctx) error {
		path, err := resolveMedia(root, c.Params("filename"))
		if errors.Is(err, services.ErrNotFound) {
			return c.Status(http.StatusNotFound).JSON(fiber.Map{"error": "not found"})
		}
		if err != nil {
			return err
		}

		if err := c.SendFile(path); err != nil {
			return err
		}
		if sniff {
			if ct := sniffContentType(path); ct != "" {
				c.Set(fiber.HeaderContentType, ct)
			}
		}
		return nil
	}
}

// resolveMedia returns the path of a regular file named by the escaped
// route parameter. Unsafe or missing names yield services.ErrNotFound.
func resolveMedia(root, param string) (string, error) {
	name, err := url.PathUnescape(param)
	if err != nil {
		return "", fmt.Errorf("%q: %w", param, services.ErrNotFound)
	}
	path, err := utils.ResolveMediaPath(root, name)
	if err != nil {
		return "", fmt.Errorf("%q: %w", name, services.ErrNotFound)
	}
	info, err := os.Stat(path)
	if err != nil || !info.Mode().IsRegular() {
		return "", fmt.Errorf("%q: %w", name, services.ErrNotFound)
	}
	return path, nil
}

func sniffContentType(path string) string {
	f, err := os.Open(path)
	if err != nil {
		return ""
	}
	defer f.Close()

	buf := make([]byte, 512)
	n, err := io.ReadFull(f, buf)
	if err != nil && err != io.ErrUnexpectedEOF {
		return ""
	}
	return http.DetectContentType(buf[:n])
}
