package server

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"

	"github.com/gofiber/fiber/v3"

	"github.com/Nukpro/DeedRecreator/internal/export"
	"github.com/Nukpro/DeedRecreator/internal/geom"
	"github.com/Nukpro/DeedRecreator/internal/store"
	"github.com/Nukpro/DeedRecreator/internal/survey"
)

// GeometryHandler serves the geometry editing endpoints.
type GeometryHandler struct {
	svc *GeometryService
}

// NewGeometryHandler wraps the service.
func NewGeometryHandler(svc *GeometryService) *GeometryHandler {
	return &GeometryHandler{svc: svc}
}

func fail(c fiber.Ctx, status int, message string) error {
	return c.Status(status).JSON(fiber.Map{"success": false, "message": message})
}

func sessionID(c fiber.Ctx) (int, error) {
	return strconv.Atoi(c.Params("sessionId"))
}

func failFromError(c fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, ErrObjectNotFound), errors.Is(err, ErrSessionNotFound),
		errors.Is(err, store.ErrVersionMissing):
		return fail(c, http.StatusNotFound, err.Error())
	case errors.Is(err, store.ErrNothingToUndo), errors.Is(err, survey.ErrInvalidFormat),
		errors.Is(err, ErrNotLineSegment), errors.Is(err, ErrBadObjectType):
		return fail(c, http.StatusBadRequest, err.Error())
	default:
		log.Printf("geometry handler error: %v", err)
		return fail(c, http.StatusInternalServerError, "Internal server error")
	}
}

// GetGeometry returns the current document of a session.
func (h *GeometryHandler) GetGeometry(c fiber.Ctx) error {
	id, err := sessionID(c)
	if err != nil {
		return fail(c, http.StatusBadRequest, "invalid session id")
	}

	doc, err := h.svc.Load(id)
	if err != nil {
		return failFromError(c, err)
	}
	data, err := geom.MarshalDocument(doc)
	if err != nil {
		return failFromError(c, err)
	}
	c.Set("Content-Type", "application/json")
	return c.Send(data)
}

// SaveGeometry replaces the full document state.
func (h *GeometryHandler) SaveGeometry(c fiber.Ctx) error {
	id, err := sessionID(c)
	if err != nil {
		return fail(c, http.StatusBadRequest, "invalid session id")
	}

	doc, err := geom.UnmarshalDocument(c.Body())
	if err != nil {
		return fail(c, http.StatusBadRequest, err.Error())
	}
	doc, err = h.svc.SaveFull(id, doc)
	if err != nil {
		return failFromError(c, err)
	}
	return c.JSON(fiber.Map{"success": true, "version": doc.Version})
}

type addPointRequest struct {
	X          float64        `json:"x"`
	Y          float64        `json:"y"`
	Attributes map[string]any `json:"attributes,omitempty"`
}

// AddPoint appends a new point.
func (h *GeometryHandler) AddPoint(c fiber.Ctx) error {
	id, err := sessionID(c)
	if err != nil {
		return fail(c, http.StatusBadRequest, "invalid session id")
	}

	var req addPointRequest
	if err := json.Unmarshal(c.Body(), &req); err != nil {
		return fail(c, http.StatusBadRequest, "Invalid coordinates: "+err.Error())
	}

	doc, p, err := h.svc.AddPoint(id, req.X, req.Y, req.Attributes)
	if err != nil {
		return failFromError(c, err)
	}
	return c.JSON(fiber.Map{"success": true, "version": doc.Version, "point": p})
}

type updatePointRequest struct {
	X          *float64       `json:"x"`
	Y          *float64       `json:"y"`
	Layer      *string        `json:"layer"`
	Attributes map[string]any `json:"attributes"`
}

// UpdatePoint patches an existing point.
func (h *GeometryHandler) UpdatePoint(c fiber.Ctx) error {
	id, err := sessionID(c)
	if err != nil {
		return fail(c, http.StatusBadRequest, "invalid session id")
	}

	var req updatePointRequest
	if err := json.Unmarshal(c.Body(), &req); err != nil {
		return fail(c, http.StatusBadRequest, "Invalid data: "+err.Error())
	}
	if req.X == nil && req.Y == nil && req.Layer == nil && req.Attributes == nil {
		return fail(c, http.StatusBadRequest, "At least one field must be provided")
	}

	doc, err := h.svc.UpdatePoint(id, c.Params("pointId"), req.X, req.Y, req.Layer, req.Attributes)
	if err != nil {
		return failFromError(c, err)
	}
	return c.JSON(fiber.Map{"success": true, "version": doc.Version})
}

type addSegmentRequest struct {
	StartX     float64        `json:"startX"`
	StartY     float64        `json:"startY"`
	EndX       float64        `json:"endX"`
	EndY       float64        `json:"endY"`
	Attributes map[string]any `json:"attributes,omitempty"`
}

// AddSegment appends a new line segment.
func (h *GeometryHandler) AddSegment(c fiber.Ctx) error {
	id, err := sessionID(c)
	if err != nil {
		return fail(c, http.StatusBadRequest, "invalid session id")
	}

	var req addSegmentRequest
	if err := json.Unmarshal(c.Body(), &req); err != nil {
		return fail(c, http.StatusBadRequest, "Invalid coordinates: "+err.Error())
	}

	doc, seg, err := h.svc.AddSegment(id, req.StartX, req.StartY, req.EndX, req.EndY, req.Attributes)
	if err != nil {
		return failFromError(c, err)
	}
	raw, err := geom.MarshalSegment(seg)
	if err != nil {
		return failFromError(c, err)
	}
	return c.JSON(fiber.Map{"success": true, "version": doc.Version, "segment": json.RawMessage(raw)})
}

type updateSegmentRequest struct {
	StartX     *float64       `json:"startX"`
	StartY     *float64       `json:"startY"`
	EndX       *float64       `json:"endX"`
	EndY       *float64       `json:"endY"`
	Layer      *string        `json:"layer"`
	Attributes map[string]any `json:"attributes"`
}

// UpdateSegment moves both endpoints of a line segment.
func (h *GeometryHandler) UpdateSegment(c fiber.Ctx) error {
	id, err := sessionID(c)
	if err != nil {
		return fail(c, http.StatusBadRequest, "invalid session id")
	}

	var req updateSegmentRequest
	if err := json.Unmarshal(c.Body(), &req); err != nil {
		return fail(c, http.StatusBadRequest, "Invalid data: "+err.Error())
	}
	if req.StartX == nil || req.StartY == nil || req.EndX == nil || req.EndY == nil {
		return fail(c, http.StatusBadRequest, "All coordinates must be provided")
	}

	doc, err := h.svc.UpdateSegment(id, c.Params("segmentId"),
		*req.StartX, *req.StartY, *req.EndX, *req.EndY, req.Layer, req.Attributes)
	if err != nil {
		return failFromError(c, err)
	}
	return c.JSON(fiber.Map{"success": true, "version": doc.Version})
}

type recalculateRequest struct {
	Quadrant     *string  `json:"quadrant"`
	Bearing      *float64 `json:"bearing"`
	Distance     *float64 `json:"distance"`
	BlockedPoint string   `json:"blockedPoint"`
}

// RecalculateSegment repositions a line segment endpoint from polar
// parameters. Validation failures never touch the stored state.
func (h *GeometryHandler) RecalculateSegment(c fiber.Ctx) error {
	id, err := sessionID(c)
	if err != nil {
		return fail(c, http.StatusBadRequest, "invalid session id")
	}

	var req recalculateRequest
	if err := json.Unmarshal(c.Body(), &req); err != nil {
		return fail(c, http.StatusBadRequest, "Invalid data: "+err.Error())
	}
	if req.Quadrant == nil {
		return fail(c, http.StatusBadRequest, "quadrant is required")
	}
	if req.Bearing == nil {
		return fail(c, http.StatusBadRequest, "bearing is required")
	}
	if req.Distance == nil {
		return fail(c, http.StatusBadRequest, "distance is required")
	}

	quadrant := survey.Quadrant(*req.Quadrant)
	if !quadrant.Valid() {
		return fail(c, http.StatusBadRequest, "Invalid quadrant: "+*req.Quadrant+". Must be NE, NW, SW, or SE")
	}
	if *req.Bearing < 0 || *req.Bearing > 90 {
		return fail(c, http.StatusBadRequest, "Bearing must be in range 0-90 degrees")
	}
	if *req.Distance <= 0 {
		return fail(c, http.StatusBadRequest, "Distance must be greater than 0")
	}
	blocked := req.BlockedPoint
	if blocked == "" {
		blocked = "start_pt"
	}
	if blocked != "start_pt" && blocked != "end_pt" {
		return fail(c, http.StatusBadRequest, "blockedPoint must be 'start_pt' or 'end_pt'")
	}

	doc, err := h.svc.RecalculateSegment(id, c.Params("segmentId"), quadrant, *req.Bearing, *req.Distance, blocked)
	if err != nil {
		return failFromError(c, err)
	}
	return c.JSON(fiber.Map{"success": true, "version": doc.Version})
}

// Undo rolls the session back one version.
func (h *GeometryHandler) Undo(c fiber.Ctx) error {
	id, err := sessionID(c)
	if err != nil {
		return fail(c, http.StatusBadRequest, "invalid session id")
	}

	doc, err := h.svc.Undo(id)
	if err != nil {
		return failFromError(c, err)
	}
	return c.JSON(fiber.Map{"success": true, "version": doc.Version})
}

// DeleteObject removes a point or segment.
func (h *GeometryHandler) DeleteObject(c fiber.Ctx) error {
	id, err := sessionID(c)
	if err != nil {
		return fail(c, http.StatusBadRequest, "invalid session id")
	}

	doc, err := h.svc.DeleteObject(id, c.Params("objectType"), c.Params("objectId"))
	if err != nil {
		if errors.Is(err, ErrObjectNotFound) {
			return fail(c, http.StatusNotFound, err.Error())
		}
		return failFromError(c, err)
	}
	return c.JSON(fiber.Map{"success": true, "version": doc.Version})
}

// ExportGeoJSON streams the session document as GeoJSON.
func (h *GeometryHandler) ExportGeoJSON(c fiber.Ctx) error {
	id, err := sessionID(c)
	if err != nil {
		return fail(c, http.StatusBadRequest, "invalid session id")
	}

	doc, err := h.svc.Load(id)
	if err != nil {
		return failFromError(c, err)
	}
	fc := export.ToGeoJSON(doc)
	data, err := json.MarshalIndent(fc, "", "  ")
	if err != nil {
		return failFromError(c, err)
	}
	c.Set("Content-Type", "application/geo+json")
	return c.Send(data)
}
