// Package api is the typed HTTP client for the drafterd backend.
// Every call maps to one endpoint; failures surface the server's
// message envelope and leave no client-side state behind.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	"github.com/Nukpro/DeedRecreator/internal/geom"
	"github.com/Nukpro/DeedRecreator/internal/survey"
)

// Client talks to one drafterd instance.
type Client struct {
	baseURL string
	http    *http.Client
}

// New returns a client for the given base URL.
func New(baseURL string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: 30 * time.Second},
	}
}

type errorEnvelope struct {
	Message string `json:"message"`
}

// apiError is a non-2xx response decoded from the message envelope.
type apiError struct {
	Status  int
	Message string
}

func (e *apiError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("server: %s (status %d)", e.Message, e.Status)
	}
	return fmt.Sprintf("server: status %d", e.Status)
}

func (c *Client) do(ctx context.Context, method, path string, body any) ([]byte, error) {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", method, path, err)
	}

	if resp.StatusCode >= 300 {
		var env errorEnvelope
		json.Unmarshal(data, &env)
		return nil, &apiError{Status: resp.StatusCode, Message: env.Message}
	}
	return data, nil
}

// GetGeometry loads the current session document.
func (c *Client) GetGeometry(ctx context.Context, sessionID int) (*geom.Document, error) {
	data, err := c.do(ctx, http.MethodGet, fmt.Sprintf("/api/geometry/%d", sessionID), nil)
	if err != nil {
		return nil, err
	}
	return geom.UnmarshalDocument(data)
}

type addPointResponse struct {
	Point *geom.Point `json:"point"`
}

// AddPoint creates a point at world coordinates.
func (c *Client) AddPoint(ctx context.Context, sessionID int, x, y float64) (*geom.Point, error) {
	data, err := c.do(ctx, http.MethodPost, fmt.Sprintf("/api/geometry/%d/point", sessionID),
		map[string]any{"x": x, "y": y})
	if err != nil {
		return nil, err
	}
	var resp addPointResponse
	if err := json.Unmarshal(data, &resp); err != nil {
		return nil, fmt.Errorf("decode point response: %w", err)
	}
	return resp.Point, nil
}

// UpdatePoint patches point fields; nil values are omitted.
func (c *Client) UpdatePoint(ctx context.Context, sessionID int, pointID string, x, y *float64, layer *string) error {
	body := map[string]any{}
	if x != nil {
		body["x"] = *x
	}
	if y != nil {
		body["y"] = *y
	}
	if layer != nil {
		body["layer"] = *layer
	}
	_, err := c.do(ctx, http.MethodPut, fmt.Sprintf("/api/geometry/%d/point/%s", sessionID, pointID), body)
	return err
}

type addSegmentResponse struct {
	Segment json.RawMessage `json:"segment"`
}

// AddSegment creates a line segment between two world positions.
func (c *Client) AddSegment(ctx context.Context, sessionID int, startX, startY, endX, endY float64) (geom.Segment, error) {
	data, err := c.do(ctx, http.MethodPost, fmt.Sprintf("/api/geometry/%d/segment", sessionID),
		map[string]any{"startX": startX, "startY": startY, "endX": endX, "endY": endY})
	if err != nil {
		return nil, err
	}
	var resp addSegmentResponse
	if err := json.Unmarshal(data, &resp); err != nil {
		return nil, fmt.Errorf("decode segment response: %w", err)
	}
	return geom.UnmarshalSegment(resp.Segment)
}

// UpdateSegment moves both endpoints of a line segment.
func (c *Client) UpdateSegment(ctx context.Context, sessionID int, segmentID string, startX, startY, endX, endY float64, layer *string) error {
	body := map[string]any{
		"startX": startX, "startY": startY,
		"endX": endX, "endY": endY,
	}
	if layer != nil {
		body["layer"] = *layer
	}
	_, err := c.do(ctx, http.MethodPut, fmt.Sprintf("/api/geometry/%d/segment/%s", sessionID, segmentID), body)
	return err
}

// RecalculateSegment repositions a segment endpoint from quadrant,
// bearing and distance.
func (c *Client) RecalculateSegment(ctx context.Context, sessionID int, segmentID string, quadrant survey.Quadrant, bearing, distance float64, blockedPoint string) error {
	_, err := c.do(ctx, http.MethodPut,
		fmt.Sprintf("/api/geometry/%d/segment/%s/recalculate", sessionID, segmentID),
		map[string]any{
			"quadrant":     string(quadrant),
			"bearing":      bearing,
			"distance":     distance,
			"blockedPoint": blockedPoint,
		})
	return err
}

// Undo rolls the session back one version.
func (c *Client) Undo(ctx context.Context, sessionID int) error {
	_, err := c.do(ctx, http.MethodPost, fmt.Sprintf("/api/geometry/%d/undo", sessionID), nil)
	return err
}

// DeleteObject removes a point or segment by type and id.
func (c *Client) DeleteObject(ctx context.Context, sessionID int, objectType, objectID string) error {
	_, err := c.do(ctx, http.MethodDelete, fmt.Sprintf("/api/geometry/%d/%s/%s", sessionID, objectType, objectID), nil)
	return err
}

// ExportGeoJSON downloads the session document as GeoJSON.
func (c *Client) ExportGeoJSON(ctx context.Context, sessionID int) ([]byte, error) {
	return c.do(ctx, http.MethodGet, fmt.Sprintf("/api/geometry/%d/export.geojson", sessionID), nil)
}

// BoundaryBox is the world-unit extent georeferencing an uploaded
// drawing.
type BoundaryBox struct {
	MinX float64 `json:"minX"`
	MinY float64 `json:"minY"`
	MaxX float64 `json:"maxX"`
	MaxY float64 `json:"maxY"`
}

// UploadPayload is the metadata returned for a stored drawing. The
// boundary box is nil when the server could not size the image.
type UploadPayload struct {
	OriginalFilename   string       `json:"originalFilename"`
	StoredFilename     string       `json:"storedFilename"`
	StoredRelativePath string       `json:"storedRelativePath"`
	ImageURL           string       `json:"imageUrl"`
	ImageWidth         int          `json:"imageWidth"`
	ImageHeight        int          `json:"imageHeight"`
	BoundaryBox        *BoundaryBox `json:"boundaryBox"`
	Warnings           []string     `json:"warnings"`
}

type uploadResponse struct {
	Message string        `json:"message"`
	Payload UploadPayload `json:"payload"`
}

// UploadDocument sends a drawing image as multipart form data.
func (c *Client) UploadDocument(ctx context.Context, sessionID int, filename string, content []byte) (*UploadPayload, error) {
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)

	part, err := writer.CreateFormFile("document", filename)
	if err != nil {
		return nil, err
	}
	if _, err := part.Write(content); err != nil {
		return nil, err
	}
	if err := writer.WriteField("session_id", fmt.Sprint(sessionID)); err != nil {
		return nil, err
	}
	writer.Close()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/upload-document", bytes.NewReader(body.Bytes()))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("upload document: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("upload document: %w", err)
	}
	if resp.StatusCode >= 300 {
		var env errorEnvelope
		json.Unmarshal(data, &env)
		return nil, &apiError{Status: resp.StatusCode, Message: env.Message}
	}

	var out uploadResponse
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("decode upload response: %w", err)
	}
	return &out.Payload, nil
}

// FetchImage downloads a stored drawing by its served URL path.
func (c *Client) FetchImage(ctx context.Context, urlPath string) ([]byte, error) {
	return c.do(ctx, http.MethodGet, urlPath, nil)
}
