package http

import (
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
)

// StaticConfig controls the well-known boilerplate endpoints.
type StaticConfig struct {
	Dir             string
	Debug           bool
	RobotsMaxAge    int
	SecurityMaxAge  int
	FaviconMaxAge   int
	SecurityContact string
}

const defaultRobots = "User-agent: *\nDisallow:\n"

const fallbackFavicon = `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 100 100"><text y=".9em" font-size="90">🚀</text></svg>`

// faviconPaths is the icon family browsers probe for at the site root.
var faviconPaths = []string{
	"/android-chrome-192x192.png",
	"/android-chrome-512x512.png",
	"/apple-touch-icon.png",
	"/browserconfig.xml",
	"/favicon-16x16.png",
	"/favicon-32x32.png",
	"/favicon.ico",
	"/mstile-150x150.png",
	"/safari-pinned-tab.svg",
}

var assetContentTypes = map[string]string{
	".png": "image/png",
	".ico": "image/x-icon",
	".svg": "image/svg+xml",
	".xml": "application/xml",
}

func (h *Handler) registerWellKnown(router *gin.Engine) {
	router.GET("/", h.index)
	router.GET("/robots.txt", h.robotsTxt)
	router.GET("/.well-known/security.txt", h.securityTxt)
	for _, p := range faviconPaths {
		router.GET(p, h.favicon)
	}
}

func (h *Handler) index(c *gin.Context) {
	if body, ok := h.staticAsset("index.html"); ok {
		c.Data(http.StatusOK, "text/html; charset=utf-8", body)
		return
	}
	c.Data(http.StatusOK, "text/html; charset=utf-8", []byte("<!doctype html><title>koruva</title><h1>koruva</h1>\n"))
}

func (h *Handler) robotsTxt(c *gin.Context) {
	h.setCacheControl(c, h.static.RobotsMaxAge)

	body, ok := h.staticAsset("robots.txt")
	if !ok {
		body = []byte(defaultRobots)
	}
	c.Data(http.StatusOK, "text/plain; charset=utf-8", body)
}

// securityTxt renders the security contact with an Expires line one
// year out, per the well-known security.txt convention.
func (h *Handler) securityTxt(c *gin.Context) {
	h.setCacheControl(c, h.static.SecurityMaxAge)

	body := fmt.Sprintf("Contact: %s\nExpires: %d-01-01T00:00:00Z\n", h.static.SecurityContact, time.Now().Year()+1)
	c.Data(http.StatusOK, "text/plain; charset=utf-8", []byte(body))
}

func (h *Handler) favicon(c *gin.Context) {
	h.setCacheControl(c, h.static.FaviconMaxAge)

	name := strings.TrimPrefix(c.Request.URL.Path, "/")
	if body, ok := h.staticAsset(name); ok {
		contentType := assetContentTypes[filepath.Ext(name)]
		if contentType == "" {
			contentType = "application/octet-stream"
		}
		c.Data(http.StatusOK, contentType, body)
		return
	}
	c.Data(http.StatusOK, "image/svg+xml", []byte(fallbackFavicon))
}

func (h *Handler) setCacheControl(c *gin.Context, maxAge int) {
	if h.static.Debug {
		maxAge = 0
	}
	c.Header("Cache-Control", fmt.Sprintf("public, max-age=%d, immutable", maxAge))
}

// staticAsset reads a file from the static dir, memoizing hits unless
// debug mode is on.
func (h *Handler) staticAsset(name string) ([]byte, bool) {
	if h.static.Dir == "" {
		return nil, false
	}

	if !h.static.Debug {
		if body, ok := h.assets.Get(name); ok {
			return body, true
		}
	}

	path := filepath.Join(h.static.Dir, filepath.FromSlash(name))
	if rel, err := filepath.Rel(h.static.Dir, path); err != nil || strings.HasPrefix(rel, "..") {
		return nil, false
	}

	body, err := os.ReadFile(path)
	if err != nil {
		return nil, false
	}
	if !h.static.Debug {
		h.assets.Add(name, body)
	}
	return body, true
}
