package server

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/gofiber/fiber/v3"
)

// SessionHandler serves the session registry endpoints.
type SessionHandler struct {
	repo *SessionRepository
}

// NewSessionHandler wraps the repository.
func NewSessionHandler(repo *SessionRepository) *SessionHandler {
	return &SessionHandler{repo: repo}
}

type createSessionRequest struct {
	SessionName string `json:"session_name"`
	UserComment string `json:"user_comment"`
}

// Create registers a new session.
func (h *SessionHandler) Create(c fiber.Ctx) error {
	var req createSessionRequest
	if err := json.Unmarshal(c.Body(), &req); err != nil {
		return fail(c, http.StatusBadRequest, "invalid json")
	}
	if req.SessionName == "" {
		return fail(c, http.StatusBadRequest, "session_name is required")
	}

	s, err := h.repo.Create(c.Context(), req.SessionName, req.UserComment)
	if err != nil {
		return failFromError(c, err)
	}
	return c.Status(http.StatusCreated).JSON(s)
}

type updateSessionRequest struct {
	SessionName      *string `json:"session_name"`
	UserComment      *string `json:"user_comment"`
	ProcessedDrawing *string `json:"processed_drawing"`
	GeometryStorage  *string `json:"geometry_storage"`
}

// Update patches session fields.
func (h *SessionHandler) Update(c fiber.Ctx) error {
	id, err := sessionID(c)
	if err != nil {
		return fail(c, http.StatusBadRequest, "invalid session id")
	}

	var req updateSessionRequest
	if err := json.Unmarshal(c.Body(), &req); err != nil {
		return fail(c, http.StatusBadRequest, "invalid json")
	}

	s, err := h.repo.Update(c.Context(), id, req.SessionName, req.UserComment, req.ProcessedDrawing, req.GeometryStorage)
	if err != nil {
		return failFromError(c, err)
	}
	return c.JSON(s)
}

// Activate marks a session active.
func (h *SessionHandler) Activate(c fiber.Ctx) error {
	id, err := sessionID(c)
	if err != nil {
		return fail(c, http.StatusBadRequest, "invalid session id")
	}

	s, err := h.repo.Activate(c.Context(), id)
	if err != nil {
		return failFromError(c, err)
	}
	return c.JSON(s)
}

// Get returns one session.
func (h *SessionHandler) Get(c fiber.Ctx) error {
	id, err := strconv.Atoi(c.Params("sessionId"))
	if err != nil {
		return fail(c, http.StatusBadRequest, "invalid session id")
	}

	s, err := h.repo.Get(c.Context(), id)
	if err != nil {
		return failFromError(c, err)
	}
	return c.JSON(s)
}

// List returns every session.
func (h *SessionHandler) List(c fiber.Ctx) error {
	sessions, err := h.repo.List(c.Context())
	if err != nil {
		return failFromError(c, err)
	}
	if sessions == nil {
		sessions = []*Session{}
	}
	return c.JSON(sessions)
}
