package server

import (
	"bytes"
	"fmt"
	"image"
	"io"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"

	_ "image/jpeg"
	_ "image/png"
)

// UploadHandler stores drawing underlays in per-session directories and
// serves them back.
type UploadHandler struct {
	dataDir  string
	sessions *SessionRepository
}

// NewUploadHandler wraps the storage root and the session registry.
func NewUploadHandler(dataDir string, sessions *SessionRepository) *UploadHandler {
	return &UploadHandler{dataDir: dataDir, sessions: sessions}
}

var allowedUploadExt = map[string]bool{
	".png":  true,
	".jpg":  true,
	".jpeg": true,
}

func (h *UploadHandler) uploadsDir(sessionID int) string {
	return filepath.Join(h.dataDir, fmt.Sprintf("session_%d", sessionID), "uploads")
}

// Upload accepts a multipart drawing image, records it against the
// session and reports its pixel dimensions. The session id may arrive
// as a query parameter or a form field.
func (h *UploadHandler) Upload(c fiber.Ctx) error {
	sessionID := 0
	if q := c.Query("session_id"); q != "" {
		sessionID, _ = strconv.Atoi(q)
	}
	if sessionID == 0 {
		if v := c.FormValue("session_id"); v != "" {
			sessionID, _ = strconv.Atoi(v)
		}
	}
	if sessionID == 0 {
		return fail(c, http.StatusBadRequest, "session_id is required")
	}

	if _, err := h.sessions.Get(c.Context(), sessionID); err != nil {
		return failFromError(c, err)
	}

	fileHeader, err := c.FormFile("document")
	if err != nil {
		return fail(c, http.StatusBadRequest, "document file is required")
	}

	ext := strings.ToLower(filepath.Ext(fileHeader.Filename))
	if !allowedUploadExt[ext] {
		return fail(c, http.StatusBadRequest, fmt.Sprintf("unsupported document type %q", ext))
	}

	file, err := fileHeader.Open()
	if err != nil {
		return failFromError(c, fmt.Errorf("open upload: %w", err))
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return failFromError(c, fmt.Errorf("read upload: %w", err))
	}

	dir := h.uploadsDir(sessionID)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return failFromError(c, fmt.Errorf("create uploads dir: %w", err))
	}

	storedName := uuid.NewString() + ext
	if err := os.WriteFile(filepath.Join(dir, storedName), data, 0o644); err != nil {
		return failFromError(c, fmt.Errorf("store upload: %w", err))
	}

	var warnings []string
	width, height := 0, 0
	var boundaryBox fiber.Map
	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		warnings = append(warnings, "could not read image dimensions: "+err.Error())
	} else {
		width, height = cfg.Width, cfg.Height
		boundaryBox = fiber.Map{
			"minX": 0.0,
			"minY": 0.0,
			"maxX": float64(width),
			"maxY": float64(height),
		}
	}
	if warnings == nil {
		warnings = []string{}
	}

	relPath := filepath.ToSlash(filepath.Join("uploads", storedName))
	if _, err := h.sessions.Update(c.Context(), sessionID, nil, nil, &relPath, nil); err != nil {
		log.Printf("record upload for session %d: %v", sessionID, err)
	}

	return c.Status(http.StatusCreated).JSON(fiber.Map{
		"message": "Document stored successfully.",
		"payload": fiber.Map{
			"originalFilename":   fileHeader.Filename,
			"storedFilename":     storedName,
			"storedRelativePath": relPath,
			"imageUrl":           fmt.Sprintf("/uploads/%d/%s", sessionID, storedName),
			"imageWidth":         width,
			"imageHeight":        height,
			"boundaryBox":        boundaryBox,
			"warnings":           warnings,
		},
	})
}

// Serve streams a previously uploaded file.
func (h *UploadHandler) Serve(c fiber.Ctx) error {
	sessionID, err := strconv.Atoi(c.Params("sessionId"))
	if err != nil {
		return fail(c, http.StatusBadRequest, "invalid session id")
	}

	filename := filepath.Base(c.Params("filename"))
	path := filepath.Join(h.uploadsDir(sessionID), filename)
	if _, err := os.Stat(path); err != nil {
		return fail(c, http.StatusNotFound, fmt.Sprintf("File %s not found in session %d", filename, sessionID))
	}
	return c.SendFile(path)
}
