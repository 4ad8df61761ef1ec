// Package app provides the shared application state and its event bus.
package app

import (
	"image"
	"sync"

	"github.com/Nukpro/DeedRecreator/internal/geom"
	"github.com/Nukpro/DeedRecreator/internal/pick"
	"github.com/Nukpro/DeedRecreator/pkg/geometry"
)

// EventType identifies application events.
type EventType int

const (
	EventDocumentLoaded EventType = iota
	EventDocumentChanged
	EventSelectionChanged
	EventHoverChanged
	EventModeChanged
	EventUnderlayChanged
	EventStatusMessage
)

// EventListener is called when an event occurs.
type EventListener func(data interface{})

// Underlay is the raster drawing displayed beneath the geometry. World
// bounds place it in survey coordinates.
type Underlay struct {
	Image  image.Image
	Bounds geometry.BBox
}

// State holds the drafting session state shared between the canvas, the
// panels and the window. It is constructed once by the host and passed
// to every consumer.
type State struct {
	mu sync.RWMutex

	SessionID int
	ServerURL string

	document  *geom.Document
	selection *pick.SelectionSet
	hovered   *pick.Ref
	underlay  *Underlay

	listeners map[EventType][]EventListener
}

// NewState creates an empty session state.
func NewState() *State {
	return &State{
		document:  &geom.Document{Format: geom.FormatSession},
		selection: pick.NewSelectionSet(),
		listeners: make(map[EventType][]EventListener),
	}
}

// On registers an event listener for the specified event type.
func (s *State) On(event EventType, listener EventListener) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listeners[event] = append(s.listeners[event], listener)
}

// Emit triggers all listeners for the specified event type.
func (s *State) Emit(event EventType, data interface{}) {
	s.mu.RLock()
	listeners := s.listeners[event]
	s.mu.RUnlock()

	for _, listener := range listeners {
		listener(data)
	}
}

// Document returns the current document.
func (s *State) Document() *geom.Document {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.document
}

// SetDocument replaces the document. Selection and hover refs that no
// longer resolve are dropped so stale ids never linger after a reload.
func (s *State) SetDocument(doc *geom.Document) {
	s.mu.Lock()
	s.document = doc
	for _, r := range s.selection.Refs() {
		if !refResolves(doc, r) {
			s.selection.Remove(r)
		}
	}
	if s.hovered != nil && !refResolves(doc, *s.hovered) {
		s.hovered = nil
	}
	s.mu.Unlock()

	s.Emit(EventDocumentLoaded, doc)
}

func refResolves(doc *geom.Document, r pick.Ref) bool {
	switch r.Type {
	case pick.TypePoint:
		return doc.PointByID(r.ID) != nil
	case pick.TypeLine:
		return doc.SegmentByID(r.ID) != nil
	}
	return false
}

// Selection returns the live selection set.
func (s *State) Selection() *pick.SelectionSet {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.selection
}

// Select replaces the selection with the given refs.
func (s *State) Select(refs []pick.Ref) {
	s.mu.Lock()
	s.selection.Clear()
	s.selection.AddAll(refs)
	s.mu.Unlock()

	s.Emit(EventSelectionChanged, refs)
}

// ClearSelection empties the selection.
func (s *State) ClearSelection() {
	s.mu.Lock()
	changed := s.selection.Len() > 0
	s.selection.Clear()
	s.mu.Unlock()

	if changed {
		s.Emit(EventSelectionChanged, []pick.Ref(nil))
	}
}

// Hovered returns the object under the cursor, or nil.
func (s *State) Hovered() *pick.Ref {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.hovered
}

// SetHovered updates the hover ref and reports whether it changed.
func (s *State) SetHovered(r *pick.Ref) bool {
	s.mu.Lock()
	same := (r == nil && s.hovered == nil) ||
		(r != nil && s.hovered != nil && *r == *s.hovered)
	if same {
		s.mu.Unlock()
		return false
	}
	s.hovered = r
	s.mu.Unlock()

	s.Emit(EventHoverChanged, r)
	return true
}

// Underlay returns the current raster underlay, or nil.
func (s *State) Underlay() *Underlay {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.underlay
}

// SetUnderlay replaces the raster underlay. Only one underlay is live
// at a time; passing nil removes it.
func (s *State) SetUnderlay(u *Underlay) {
	s.mu.Lock()
	s.underlay = u
	s.mu.Unlock()

	s.Emit(EventUnderlayChanged, u)
}
