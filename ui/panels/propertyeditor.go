package panels

import (
	"fmt"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/widget"

	"github.com/Nukpro/DeedRecreator/internal/geom"
	"github.com/Nukpro/DeedRecreator/internal/pick"
	"github.com/Nukpro/DeedRecreator/internal/survey"
)

const (
	// editorPadding keeps the floating editor clear of the container edge.
	editorPadding = 10

	editorWidth = 280

	// outsideClickGrace absorbs the click that opened the editor so it
	// does not immediately dismiss itself.
	outsideClickGrace = 300 * time.Millisecond
)

// PropertyEditor is the floating editor shown next to a picked object.
// One edit session is live at a time; showing a new object builds the
// replacement session in full before the previous one is torn down.
type PropertyEditor struct {
	root    *fyne.Container
	session *editSession
	shownAt time.Time

	onSavePoint     func(id string, e PointEdit)
	onSaveBearings  func(id string, e BearingEdit)
	onSaveEndpoints func(id string, e EndpointEdit)
}

// editSession is the widget tree and field set for one object.
type editSession struct {
	hit  pick.Hit
	card fyne.CanvasObject

	errorLabel *widget.Label

	// Point fields.
	xEntry     *widget.Entry
	yEntry     *widget.Entry
	layerEntry *widget.Entry

	// Segment fields.
	accordion     *widget.Accordion
	quadrantSel   *widget.Select
	bearingEntry  *widget.Entry
	distanceEntry *widget.Entry
	blockedSel    *widget.RadioGroup
	startXEntry   *widget.Entry
	startYEntry   *widget.Entry
	endXEntry     *widget.Entry
	endYEntry     *widget.Entry
}

// NewPropertyEditor creates a hidden editor. Root() is stacked over the
// canvas by the window.
func NewPropertyEditor() *PropertyEditor {
	return &PropertyEditor{root: container.NewWithoutLayout()}
}

// Root returns the overlay container holding the editor.
func (pe *PropertyEditor) Root() fyne.CanvasObject {
	return pe.root
}

// OnSavePoint sets the callback for a validated point save.
func (pe *PropertyEditor) OnSavePoint(fn func(id string, e PointEdit)) {
	pe.onSavePoint = fn
}

// OnSaveBearings sets the callback for a validated bearings save.
func (pe *PropertyEditor) OnSaveBearings(fn func(id string, e BearingEdit)) {
	pe.onSaveBearings = fn
}

// OnSaveEndpoints sets the callback for a validated endpoints save.
func (pe *PropertyEditor) OnSaveEndpoints(fn func(id string, e EndpointEdit)) {
	pe.onSaveEndpoints = fn
}

// Visible reports whether an edit session is live.
func (pe *PropertyEditor) Visible() bool {
	return pe.session != nil
}

// Show opens an edit session for the hit at the given canvas position,
// clamped inside the container. The new session is built before the old
// one is removed so a failure leaves the editor consistent.
func (pe *PropertyEditor) Show(hit *pick.Hit, at fyne.Position, bounds fyne.Size) {
	if hit == nil {
		pe.Hide()
		return
	}

	session, err := newEditSession(*hit, pe.save)
	if err != nil {
		return
	}

	pe.session = session
	pe.shownAt = time.Now()

	size := session.card.MinSize()
	if size.Width < editorWidth {
		size.Width = editorWidth
	}
	session.card.Resize(size)
	session.card.Move(clampPosition(at, size, bounds))

	pe.root.Objects = []fyne.CanvasObject{session.card}
	pe.root.Refresh()
}

// Hide tears down the edit session, leaving nothing referenced.
func (pe *PropertyEditor) Hide() {
	pe.session = nil
	pe.root.Objects = nil
	pe.root.Refresh()
}

// Cancel discards the edit session without saving.
func (pe *PropertyEditor) Cancel() {
	pe.Hide()
}

// HandleOutsideClick dismisses the editor unless the opening click is
// still within the grace period. Returns true when the editor closed.
// Clicks on the canvas that re-target the editor never reach here; the
// window routes those to Show instead.
func (pe *PropertyEditor) HandleOutsideClick() bool {
	if pe.session == nil {
		return false
	}
	if time.Since(pe.shownAt) < outsideClickGrace {
		return false
	}
	pe.Cancel()
	return true
}

// Save validates the visible fields and fires the matching callback.
// Validation failures keep the editor open with the message shown.
func (pe *PropertyEditor) Save() {
	pe.save()
}

func (pe *PropertyEditor) save() {
	s := pe.session
	if s == nil {
		return
	}

	switch s.hit.Type {
	case pick.TypePoint:
		edit, err := parsePointEdit(s.xEntry.Text, s.yEntry.Text, s.layerEntry.Text)
		if err != nil {
			s.errorLabel.SetText(err.Error())
			return
		}
		if pe.onSavePoint != nil {
			pe.onSavePoint(s.hit.ID, edit)
		}
	case pick.TypeLine:
		if err := pe.saveSegment(s); err != nil {
			s.errorLabel.SetText(err.Error())
			return
		}
	}
	pe.Hide()
}

func (pe *PropertyEditor) saveSegment(s *editSession) error {
	switch openAccordionIndex(s.accordion) {
	case 0:
		edit, err := parseBearingEdit(s.quadrantSel.Selected, s.bearingEntry.Text,
			s.distanceEntry.Text, blockedFromLabel(s.blockedSel.Selected))
		if err != nil {
			return err
		}
		if pe.onSaveBearings != nil {
			pe.onSaveBearings(s.hit.ID, edit)
		}
	case 1:
		edit, err := parseEndpointEdit(s.startXEntry.Text, s.startYEntry.Text,
			s.endXEntry.Text, s.endYEntry.Text, s.layerEntry.Text)
		if err != nil {
			return err
		}
		if pe.onSaveEndpoints != nil {
			pe.onSaveEndpoints(s.hit.ID, edit)
		}
	default:
		return fmt.Errorf("expand a section to edit")
	}
	return nil
}

func openAccordionIndex(acc *widget.Accordion) int {
	for i, item := range acc.Items {
		if item.Open {
			return i
		}
	}
	return -1
}

func blockedFromLabel(label string) string {
	if label == "End point" {
		return "end_pt"
	}
	return "start_pt"
}

func clampPosition(at fyne.Position, size fyne.Size, bounds fyne.Size) fyne.Position {
	x := at.X
	y := at.Y
	if x+size.Width+editorPadding > bounds.Width {
		x = bounds.Width - size.Width - editorPadding
	}
	if y+size.Height+editorPadding > bounds.Height {
		y = bounds.Height - size.Height - editorPadding
	}
	if x < editorPadding {
		x = editorPadding
	}
	if y < editorPadding {
		y = editorPadding
	}
	return fyne.NewPos(x, y)
}

func newEditSession(hit pick.Hit, onSubmit func()) (*editSession, error) {
	s := &editSession{hit: hit}
	s.errorLabel = widget.NewLabel("")
	s.errorLabel.Wrapping = fyne.TextWrapWord
	s.layerEntry = widget.NewEntry()

	submit := func(string) { onSubmit() }

	var form fyne.CanvasObject
	switch {
	case hit.Type == pick.TypePoint && hit.Point != nil:
		s.xEntry = widget.NewEntry()
		s.xEntry.SetText(formatCoord(hit.Point.X))
		s.xEntry.OnSubmitted = submit
		s.yEntry = widget.NewEntry()
		s.yEntry.SetText(formatCoord(hit.Point.Y))
		s.yEntry.OnSubmitted = submit
		s.layerEntry.SetText(hit.Point.Layer)
		s.layerEntry.OnSubmitted = submit

		form = widget.NewForm(
			widget.NewFormItem("X", s.xEntry),
			widget.NewFormItem("Y", s.yEntry),
			widget.NewFormItem("Layer", s.layerEntry),
		)
	case hit.Type == pick.TypeLine:
		line, ok := hit.Segment.(*geom.LineSegment)
		if !ok {
			return nil, fmt.Errorf("segment %s is not editable", hit.ID)
		}
		form = s.buildSegmentForm(line, submit)
	default:
		return nil, fmt.Errorf("nothing to edit")
	}

	saveBtn := widget.NewButton("Save", onSubmit)
	saveBtn.Importance = widget.HighImportance

	s.card = widget.NewCard(editorTitle(hit), "",
		container.NewVBox(form, s.errorLabel, saveBtn))
	return s, nil
}

func (s *editSession) buildSegmentForm(line *geom.LineSegment, submit func(string)) fyne.CanvasObject {
	quadrant, bearing := survey.AzimuthToBearing(line.Azimuth)

	s.quadrantSel = widget.NewSelect([]string{"NE", "SE", "SW", "NW"}, nil)
	s.quadrantSel.SetSelected(string(quadrant))
	s.bearingEntry = widget.NewEntry()
	s.bearingEntry.SetText(survey.DecimalToDMS(bearing))
	s.bearingEntry.OnSubmitted = submit
	s.distanceEntry = widget.NewEntry()
	s.distanceEntry.SetText(formatCoord(line.Length))
	s.distanceEntry.OnSubmitted = submit
	s.blockedSel = widget.NewRadioGroup([]string{"Start point", "End point"}, nil)
	s.blockedSel.SetSelected("Start point")

	bearings := widget.NewForm(
		widget.NewFormItem("Quadrant", s.quadrantSel),
		widget.NewFormItem("Bearing", s.bearingEntry),
		widget.NewFormItem("Distance", s.distanceEntry),
		widget.NewFormItem("Hold", s.blockedSel),
	)

	s.startXEntry = widget.NewEntry()
	s.startXEntry.SetText(formatCoord(line.Start.X))
	s.startXEntry.OnSubmitted = submit
	s.startYEntry = widget.NewEntry()
	s.startYEntry.SetText(formatCoord(line.Start.Y))
	s.startYEntry.OnSubmitted = submit
	s.endXEntry = widget.NewEntry()
	s.endXEntry.SetText(formatCoord(line.End.X))
	s.endXEntry.OnSubmitted = submit
	s.endYEntry = widget.NewEntry()
	s.endYEntry.SetText(formatCoord(line.End.Y))
	s.endYEntry.OnSubmitted = submit

	points := widget.NewForm(
		widget.NewFormItem("Start X", s.startXEntry),
		widget.NewFormItem("Start Y", s.startYEntry),
		widget.NewFormItem("End X", s.endXEntry),
		widget.NewFormItem("End Y", s.endYEntry),
	)

	s.layerEntry.SetText(line.Layer)
	s.layerEntry.OnSubmitted = submit

	s.accordion = widget.NewAccordion(
		widget.NewAccordionItem("Bearings", bearings),
		widget.NewAccordionItem("Points", points),
	)
	s.accordion.Open(0)

	return container.NewVBox(s.accordion,
		widget.NewForm(widget.NewFormItem("Layer", s.layerEntry)))
}

func editorTitle(hit pick.Hit) string {
	if hit.Type == pick.TypePoint {
		return "Point"
	}
	return "Segment"
}

func formatCoord(v float64) string {
	return fmt.Sprintf("%.4f", survey.RoundDisplay(v))
}
