package web

import (
	"bytes"
	"io"
	"strings"
	"testing"
	"time"

	"photo-share/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func render(t *testing.T, name string, data fiber.Map) string {
	t.Helper()
	engine, err := NewEngine()
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, engine.Render(&buf, name, data, "layout"))
	return buf.String()
}

func TestRenderIndex(t *testing.T) {
	html := render(t, "index", fiber.Map{
		"Title": "Photos",
		"Photos": []models.Photo{
			{ID: 2, Filename: "b.png", Title: "<b>bold</b>", CreatedAt: time.Now()},
			{ID: 1, Filename: "a.jpg", CreatedAt: time.Now()},
		},
	})

	assert.Contains(t, html, "<title>Photos · Photo Share</title>")
	assert.Contains(t, html, `src="/media/thumbs/b.png"`)
	assert.Contains(t, html, `href="/media/originals/a.jpg"`)
	assert.Contains(t, html, "&lt;b&gt;bold&lt;/b&gt;")
	assert.Contains(t, html, "(untitled)")
	assert.Less(t, strings.Index(html, "b.png"), strings.Index(html, "a.jpg"))
}

func TestRenderEmptyIndexAndUpload(t *testing.T) {
	html := render(t, "index", fiber.Map{"Title": "Photos"})
	assert.Contains(t, html, "No photos yet")

	html = render(t, "upload", fiber.Map{"Title": "Upload"})
	assert.Contains(t, html, `name="file"`)
	assert.Contains(t, html, `enctype="multipart/form-data"`)
	assert.Contains(t, html, "</html>")
}

func TestStaticAssets(t *testing.T) {
	f, err := Static().Open("app.js")
	require.NoError(t, err)
	defer f.Close()

	body, err := io.ReadAll(f)
	require.NoError(t, err)
	assert.Contains(t, string(body), "new_photo")
}
