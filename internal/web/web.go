// Package web holds the embedded HTML templates and browser assets.
package web

import (
	"embed"
	"io/fs"
	"net/http"
	"time"

	"github.com/gofiber/template/html/v2"
)

//go:embed templates/*.html static/*
var assets embed.FS

// NewEngine returns the Fiber view engine over the embedded templates.
// Pages render inside the "layout" template.
func NewEngine() (*html.Engine, error) {
	engine := html.NewFileSystem(sub("templates"), ".html")
	engine.AddFunc("when", func(t time.Time) string {
		return t.Local().Format("2006-01-02 15:04")
	})
	if err := engine.Load(); err != nil {
		return nil, err
	}
	return engine, nil
}

// Static exposes the files under static/.
func Static() http.FileSystem {
	return sub("static")
}

func sub(dir string) http.FileSystem {
	s, err := fs.Sub(assets, dir)
	if err != nil {
		panic(err)
	}
	return http.FS(s)
}
