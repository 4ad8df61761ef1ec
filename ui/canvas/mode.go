package canvas

import (
	"github.com/Nukpro/DeedRecreator/pkg/geometry"
)

// Mode selects how pointer input on the viewer is interpreted.
type Mode int

const (
	// ModeCursor picks and selects existing objects.
	ModeCursor Mode = iota
	// ModePoints places a survey point per click.
	ModePoints
	// ModeSegments builds a line from two consecutive clicks.
	ModeSegments
	// ModePolygonSelect collects lasso vertices until committed.
	ModePolygonSelect
)

// String names the mode for status messages.
func (m Mode) String() string {
	switch m {
	case ModeCursor:
		return "cursor"
	case ModePoints:
		return "points"
	case ModeSegments:
		return "segments"
	case ModePolygonSelect:
		return "polygon-select"
	}
	return "unknown"
}

// modeMachine tracks the in-progress gesture of the active mode. Segment
// starts are world coordinates so a pending segment survives pan and
// zoom; lasso vertices are world coordinates for the same reason.
type modeMachine struct {
	mode         Mode
	segmentStart *geometry.Point2D
	lasso        []geometry.Point2D
}

// Set switches modes and reports whether the mode changed. Any pending
// gesture of the previous mode is discarded; re-selecting the active
// mode keeps it.
func (m *modeMachine) Set(mode Mode) bool {
	if mode == m.mode {
		return false
	}
	m.mode = mode
	m.reset()
	return true
}

// reset drops the pending gesture without leaving the mode.
func (m *modeMachine) reset() {
	m.segmentStart = nil
	m.lasso = nil
}

// Pending reports whether a gesture is half-finished.
func (m *modeMachine) Pending() bool {
	return m.segmentStart != nil || len(m.lasso) > 0
}

// SegmentClick feeds one click to the two-click segment protocol. The
// first click arms the start anchor; the second returns both endpoints
// with done=true and clears the anchor.
func (m *modeMachine) SegmentClick(world geometry.Point2D) (start, end geometry.Point2D, done bool) {
	if m.segmentStart == nil {
		p := world
		m.segmentStart = &p
		return geometry.Point2D{}, geometry.Point2D{}, false
	}
	start = *m.segmentStart
	m.segmentStart = nil
	return start, world, true
}

// LassoAdd appends a lasso vertex.
func (m *modeMachine) LassoAdd(world geometry.Point2D) {
	m.lasso = append(m.lasso, world)
}

// LassoCommit finishes the lasso. Fewer than three vertices cannot
// bound an area, so the gesture is dropped and ok is false.
func (m *modeMachine) LassoCommit() (vertices []geometry.Point2D, ok bool) {
	vertices = m.lasso
	m.lasso = nil
	m.segmentStart = nil
	if len(vertices) < 3 {
		return nil, false
	}
	return vertices, true
}
