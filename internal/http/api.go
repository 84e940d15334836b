package http

import (
	"database/sql"
	"errors"
	"net/http"
	"path"
	"strconv"
	"strings"
	"time"

	"github.com/getsentry/sentry-go"
	sentrygin "github.com/getsentry/sentry-go/gin"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	lru "github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/sirupsen/logrus"

	"koruva/internal/domain"
	"koruva/internal/pagination"
	"koruva/internal/service"
	"koruva/internal/storage"
)

// Handler wires HTTP routes to domain services.
type Handler struct {
	notes     service.NoteService
	users     service.UserService
	media     storage.Service
	db        *sql.DB
	logger    *logrus.Logger
	jwtSecret []byte
	tokenTTL  time.Duration
	static    StaticConfig
	assets    *lru.LRU[string, []byte]
}

// Deps bundles everything a Handler needs.
type Deps struct {
	Notes     service.NoteService
	Users     service.UserService
	Media     storage.Service
	DB        *sql.DB
	Logger    *logrus.Logger
	JWTSecret string
	TokenTTL  time.Duration
	Static    StaticConfig
}

func NewHandler(deps Deps) *Handler {
	return &Handler{
		notes:     deps.Notes,
		users:     deps.Users,
		media:     deps.Media,
		db:        deps.DB,
		logger:    deps.Logger,
		jwtSecret: []byte(deps.JWTSecret),
		tokenTTL:  deps.TokenTTL,
		static:    deps.Static,
		assets:    lru.NewLRU[string, []byte](32, nil, time.Hour),
	}
}

// mediaURLExpiry bounds how long presigned media links stay valid.
const mediaURLExpiry = 15 * time.Minute

// NewRouter assembles the gin engine. With sentry enabled, panics are
// captured and re-raised for the recovery middleware to turn into 500s.
func NewRouter(debug, sentryEnabled bool) *gin.Engine {
	if debug {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	if sentryEnabled {
		router.Use(sentrygin.New(sentrygin.Options{Repanic: true}))
	}
	return router
}

func (h *Handler) RegisterRoutes(router *gin.Engine) {
	router.Use(corsMiddleware())

	h.registerWellKnown(router)

	router.GET("/health/live", h.healthLive)
	router.GET("/health/ready", h.healthReady)

	api := router.Group("/api")
	{
		api.POST("/auth/register", h.register)
		api.POST("/auth/login", h.login)

		authed := api.Group("", h.requireAuth())
		{
			authed.GET("/notes", h.listNotes)
			authed.POST("/notes", h.createNote)
			authed.GET("/notes/:id", h.getNote)
			authed.PATCH("/notes/:id", h.patchNote)
			authed.DELETE("/notes/:id", h.deleteNote)

			authed.GET("/media", h.listMedia)
			authed.POST("/media", h.uploadMedia)
			authed.DELETE("/media/*key", h.deleteMedia)
		}
	}
}

func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Origin, Content-Type, Accept, Authorization")
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}

// handleError maps typed service/pagination errors to client responses
// and ships everything unexpected to sentry.
func (h *Handler) handleError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrNoteNotFound), errors.Is(err, pagination.ErrPageNotFound),
		errors.Is(err, storage.ErrObjectNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrInvalidCredentials), errors.Is(err, service.ErrInvalidRegistrationPassword):
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrUserAlreadyExists):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	default:
		sentry.CaptureException(err)
		h.logger.Errorf("%s %s: %v", c.Request.Method, c.Request.URL.Path, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}

func (h *Handler) healthLive(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (h *Handler) healthReady(c *gin.Context) {
	if err := h.db.PingContext(c.Request.Context()); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status": "error",
			"checks": map[string]string{"database": "unhealthy: " + err.Error()},
		})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"status": "ok",
		"checks": map[string]string{"database": "healthy"},
	})
}

type createNoteRequest struct {
	Title string `json:"title" binding:"required"`
	Body  string `json:"body"`
}

type patchNoteRequest struct {
	Title *string `json:"title"`
	Body  *string `json:"body"`
}

func (h *Handler) createNote(c *gin.Context) {
	var req createNoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	note, err := h.notes.CreateNote(c.Request.Context(), currentUser(c).ID, req.Title, req.Body)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusCreated, noteToResponse(*note))
}

func (h *Handler) listNotes(c *gin.Context) {
	page, err := h.notes.ListNotes(c.Request.Context(), c.Query("page"))
	if err != nil {
		h.handleError(c, err)
		return
	}

	notes := make([]NoteResponse, len(page.Notes))
	for i := range page.Notes {
		notes[i] = noteToResponse(page.Notes[i])
	}
	c.JSON(http.StatusOK, NoteListResponse{
		Notes:      notes,
		Pagination: pageToResponse(page.Page),
	})
}

func (h *Handler) getNote(c *gin.Context) {
	id, ok := noteID(c)
	if !ok {
		return
	}

	note, err := h.notes.GetNote(c.Request.Context(), id)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, noteToResponse(*note))
}

func (h *Handler) patchNote(c *gin.Context) {
	id, ok := noteID(c)
	if !ok {
		return
	}

	var req patchNoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	note, err := h.notes.PatchNote(c.Request.Context(), id, service.NotePatch{
		Title: req.Title,
		Body:  req.Body,
	})
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, noteToResponse(*note))
}

func (h *Handler) deleteNote(c *gin.Context) {
	id, ok := noteID(c)
	if !ok {
		return
	}

	if err := h.notes.DeleteNote(c.Request.Context(), id); err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"deleted": id})
}

func noteID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid note id"})
		return 0, false
	}
	return id, true
}

func (h *Handler) listMedia(c *gin.Context) {
	if h.media == nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "media storage not configured"})
		return
	}

	objects, err := h.media.List(c.Request.Context(), c.Query("prefix"))
	if err != nil {
		h.handleError(c, err)
		return
	}

	resp := make([]MediaObjectResponse, len(objects))
	for i := range objects {
		resp[i] = objectToResponse(objects[i])
		url, err := h.media.URL(c.Request.Context(), objects[i].Key, mediaURLExpiry)
		if err != nil {
			h.handleError(c, err)
			return
		}
		resp[i].URL = url
	}
	c.JSON(http.StatusOK, resp)
}

func (h *Handler) uploadMedia(c *gin.Context) {
	if h.media == nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "media storage not configured"})
		return
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "file form field is required"})
		return
	}

	f, err := fileHeader.Open()
	if err != nil {
		h.handleError(c, err)
		return
	}
	defer f.Close()

	key := uuid.NewString() + path.Ext(fileHeader.Filename)
	location, err := h.media.Put(c.Request.Context(), key, f, fileHeader.Header.Get("Content-Type"))
	if err != nil {
		h.handleError(c, err)
		return
	}

	url, err := h.media.URL(c.Request.Context(), key, mediaURLExpiry)
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"key":      key,
		"location": location,
		"size":     fileHeader.Size,
		"url":      url,
	})
}

func (h *Handler) deleteMedia(c *gin.Context) {
	if h.media == nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "media storage not configured"})
		return
	}

	key := strings.Trim(c.Param("key"), "/")
	if key == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "object key is required"})
		return
	}

	if err := h.media.Delete(c.Request.Context(), key); err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"deleted": key})
}

type NoteResponse struct {
	ID        int64  `json:"id"`
	Title     string `json:"title"`
	Body      string `json:"body"`
	AuthorID  int64  `json:"author_id"`
	CreatedAt string `json:"created_at"`
	UpdatedAt string `json:"updated_at"`
	IsEdited  bool   `json:"is_edited"`
}

type PaginationResponse struct {
	Page        int  `json:"page"`
	TotalItems  int  `json:"total_items"`
	TotalPages  int  `json:"total_pages"`
	HasNext     bool `json:"has_next"`
	HasPrevious bool `json:"has_previous"`
}

type NoteListResponse struct {
	Notes      []NoteResponse     `json:"notes"`
	Pagination PaginationResponse `json:"pagination"`
}

type MediaObjectResponse struct {
	Key          string  `json:"key"`
	Size         int64   `json:"size"`
	URL          string  `json:"url,omitempty"`
	LastModified *string `json:"last_modified,omitempty"`
}

func noteToResponse(note domain.Note) NoteResponse {
	return NoteResponse{
		ID:        note.ID,
		Title:     note.Title,
		Body:      note.Body,
		AuthorID:  note.AuthorID,
		CreatedAt: note.CreatedAt.Format(time.RFC3339),
		UpdatedAt: note.UpdatedAt.Format(time.RFC3339),
		IsEdited:  note.IsEdited(),
	}
}

func pageToResponse(page pagination.Page) PaginationResponse {
	return PaginationResponse{
		Page:        page.Number,
		TotalItems:  page.TotalItems,
		TotalPages:  page.TotalPages,
		HasNext:     page.HasNext(),
		HasPrevious: page.HasPrevious(),
	}
}

func objectToResponse(obj storage.ObjectInfo) MediaObjectResponse {
	resp := MediaObjectResponse{
		Key:  obj.Key,
		Size: obj.Size,
	}
	if obj.LastModified != nil && !obj.LastModified.IsZero() {
		v := obj.LastModified.Format(time.RFC3339)
		resp.LastModified = &v
	}
	return resp
}
