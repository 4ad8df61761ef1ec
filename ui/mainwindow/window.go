// Package mainwindow provides the main application window.
package mainwindow

import (
	"bytes"
	"context"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"log"
	"path/filepath"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/storage"
	"fyne.io/fyne/v2/widget"

	"github.com/Nukpro/DeedRecreator/internal/api"
	"github.com/Nukpro/DeedRecreator/internal/app"
	"github.com/Nukpro/DeedRecreator/internal/pick"
	"github.com/Nukpro/DeedRecreator/internal/version"
	"github.com/Nukpro/DeedRecreator/pkg/geometry"
	"github.com/Nukpro/DeedRecreator/ui/canvas"
	"github.com/Nukpro/DeedRecreator/ui/panels"
)

// MainWindow is the primary application window.
type MainWindow struct {
	fyne.Window
	app    fyne.App
	state  *app.State
	client *api.Client

	viewer    *canvas.GeometryViewer
	editor    *panels.PropertyEditor
	statusBar *widget.Label

	modeButtons map[canvas.Mode]*widget.Button
}

// New creates the main window wired to the shared state and the
// backend client.
func New(fyneApp fyne.App, state *app.State, client *api.Client) *MainWindow {
	win := fyneApp.NewWindow("Deed Drafter")

	mw := &MainWindow{
		Window: win,
		app:    fyneApp,
		state:  state,
		client: client,
	}

	mw.setupUI()
	mw.setupMenus()
	mw.setupEventHandlers()
	mw.setupCallbacks()

	return mw
}

// setupUI creates the main UI layout.
func (mw *MainWindow) setupUI() {
	mw.viewer = canvas.NewGeometryViewer(mw.state)
	mw.editor = panels.NewPropertyEditor()
	mw.statusBar = widget.NewLabel("Ready")

	toolbar := mw.createToolbar()

	// The editor floats above the viewer in a stack.
	canvasArea := container.NewBorder(
		toolbar,
		nil,
		nil,
		nil,
		container.NewStack(mw.viewer, mw.editor.Root()),
	)

	content := container.NewBorder(
		nil,
		container.NewPadded(mw.statusBar),
		nil,
		nil,
		canvasArea,
	)

	mw.SetContent(content)
	mw.Resize(fyne.NewSize(1100, 750))
}

// createToolbar creates the toolbar with mode and view controls.
func (mw *MainWindow) createToolbar() fyne.CanvasObject {
	mw.modeButtons = make(map[canvas.Mode]*widget.Button)
	modeBtn := func(label string, mode canvas.Mode) *widget.Button {
		btn := widget.NewButton(label, func() { mw.setMode(mode) })
		mw.modeButtons[mode] = btn
		return btn
	}

	cursorBtn := modeBtn("Cursor", canvas.ModeCursor)
	pointsBtn := modeBtn("Points", canvas.ModePoints)
	segmentsBtn := modeBtn("Segments", canvas.ModeSegments)
	lassoBtn := modeBtn("Lasso", canvas.ModePolygonSelect)

	undoBtn := widget.NewButton("Undo", mw.onUndo)
	deleteBtn := widget.NewButton("Delete", mw.onDeleteSelection)
	fitBtn := widget.NewButton("Fit", func() {
		mw.editor.HandleOutsideClick()
		mw.viewer.FitToView()
	})

	mw.highlightMode(canvas.ModeCursor)

	return container.NewHBox(
		widget.NewLabel("Mode:"),
		cursorBtn,
		pointsBtn,
		segmentsBtn,
		lassoBtn,
		widget.NewSeparator(),
		undoBtn,
		deleteBtn,
		fitBtn,
	)
}

func (mw *MainWindow) setMode(mode canvas.Mode) {
	mw.editor.Cancel()
	mw.viewer.SetMode(mode)
	mw.highlightMode(mode)
	mw.updateStatus("Mode: " + mode.String())
}

func (mw *MainWindow) highlightMode(active canvas.Mode) {
	for mode, btn := range mw.modeButtons {
		if mode == active {
			btn.Importance = widget.HighImportance
		} else {
			btn.Importance = widget.MediumImportance
		}
		btn.Refresh()
	}
}

// setupMenus creates the application menus.
func (mw *MainWindow) setupMenus() {
	fileMenu := fyne.NewMenu("File",
		fyne.NewMenuItem("Upload Drawing...", mw.onUploadDrawing),
		fyne.NewMenuItemSeparator(),
		fyne.NewMenuItem("Export GeoJSON...", mw.onExportGeoJSON),
		fyne.NewMenuItemSeparator(),
		fyne.NewMenuItem("Quit", func() { mw.app.Quit() }),
	)

	editMenu := fyne.NewMenu("Edit",
		fyne.NewMenuItem("Undo", mw.onUndo),
		fyne.NewMenuItem("Delete Selection", mw.onDeleteSelection),
	)

	viewMenu := fyne.NewMenu("View",
		fyne.NewMenuItem("Fit to View", func() { mw.viewer.FitToView() }),
	)

	helpMenu := fyne.NewMenu("Help",
		fyne.NewMenuItem("About", mw.onAbout),
	)

	mw.SetMainMenu(fyne.NewMainMenu(fileMenu, editMenu, viewMenu, helpMenu))
}

// setupEventHandlers registers for application events.
func (mw *MainWindow) setupEventHandlers() {
	mw.state.On(app.EventDocumentLoaded, func(interface{}) {
		doc := mw.state.Document()
		mw.updateStatus(fmt.Sprintf("Session %d, version %d: %d points, %d segments",
			mw.state.SessionID, doc.Version, len(doc.Points), len(doc.Segments)))
	})

	mw.state.On(app.EventStatusMessage, func(data interface{}) {
		if msg, ok := data.(string); ok {
			mw.updateStatus(msg)
		}
	})

	mw.Canvas().SetOnTypedKey(func(e *fyne.KeyEvent) {
		switch e.Name {
		case fyne.KeyEscape:
			if mw.editor.Visible() {
				mw.editor.Cancel()
			}
		case fyne.KeyReturn, fyne.KeyEnter:
			if mw.editor.Visible() {
				mw.editor.Save()
			}
		}
	})
}

// setupCallbacks wires viewer gestures and editor saves to the backend.
// Every mutation reloads the document on success; failures leave the
// local state untouched.
func (mw *MainWindow) setupCallbacks() {
	mw.viewer.OnPointPlaced(func(world geometry.Point2D) {
		mw.mutate("add point", func(ctx context.Context) error {
			_, err := mw.client.AddPoint(ctx, mw.state.SessionID, world.X, world.Y)
			return err
		})
	})

	mw.viewer.OnSegmentPlaced(func(start, end geometry.Point2D) {
		mw.mutate("add segment", func(ctx context.Context) error {
			_, err := mw.client.AddSegment(ctx, mw.state.SessionID,
				start.X, start.Y, end.X, end.Y)
			return err
		})
	})

	// Clicks on the canvas never dismiss the editor; a miss only clears
	// the selection. Dismissal comes from chrome outside the canvas.
	mw.viewer.OnObjectClick(func(hit *pick.Hit) {
		if hit == nil {
			return
		}
		pos := mw.viewer.Transform().WorldToCanvas(objectAnchor(hit))
		mw.editor.Show(hit, fyne.NewPos(float32(pos.X)+16, float32(pos.Y)+16), mw.viewer.Size())
	})

	mw.viewer.OnPolygonSelect(func(vertices []geometry.Point2D, refs []pick.Ref) {
		mw.updateStatus(fmt.Sprintf("Selected %d objects inside %d-sided lasso", len(refs), len(vertices)))
	})

	mw.editor.OnSavePoint(func(id string, e panels.PointEdit) {
		mw.mutate("update point", func(ctx context.Context) error {
			layer := e.Layer
			return mw.client.UpdatePoint(ctx, mw.state.SessionID, id, &e.X, &e.Y, &layer)
		})
	})

	mw.editor.OnSaveBearings(func(id string, e panels.BearingEdit) {
		mw.mutate("recalculate segment", func(ctx context.Context) error {
			return mw.client.RecalculateSegment(ctx, mw.state.SessionID, id,
				e.Quadrant, e.Bearing, e.Distance, e.BlockedPoint)
		})
	})

	mw.editor.OnSaveEndpoints(func(id string, e panels.EndpointEdit) {
		mw.mutate("update segment", func(ctx context.Context) error {
			var layer *string
			if e.Layer != "" {
				layer = &e.Layer
			}
			return mw.client.UpdateSegment(ctx, mw.state.SessionID, id,
				e.StartX, e.StartY, e.EndX, e.EndY, layer)
		})
	})
}

// mutate runs one backend mutation off the UI goroutine and reloads the
// document when it succeeds.
func (mw *MainWindow) mutate(action string, fn func(ctx context.Context) error) {
	go func() {
		ctx := context.Background()
		if err := fn(ctx); err != nil {
			log.Printf("%s: %v", action, err)
			mw.state.Emit(app.EventStatusMessage, fmt.Sprintf("Failed to %s: %v", action, err))
			return
		}
		mw.reloadDocument(ctx)
	}()
}

func (mw *MainWindow) reloadDocument(ctx context.Context) {
	doc, err := mw.client.GetGeometry(ctx, mw.state.SessionID)
	if err != nil {
		log.Printf("reload document: %v", err)
		mw.state.Emit(app.EventStatusMessage, fmt.Sprintf("Failed to reload: %v", err))
		return
	}
	mw.state.SetDocument(doc)
}

// LoadSession fetches the session document and frames it.
func (mw *MainWindow) LoadSession() {
	go func() {
		mw.reloadDocument(context.Background())
		mw.viewer.FitToView()
	}()
}

func (mw *MainWindow) updateStatus(text string) {
	mw.statusBar.SetText(text)
}

func objectAnchor(hit *pick.Hit) geometry.Point2D {
	if hit.Point != nil {
		return hit.Point.Position()
	}
	if hit.Segment != nil {
		start, end := hit.Segment.Endpoints()
		return geometry.Point2D{X: (start.X + end.X) / 2, Y: (start.Y + end.Y) / 2}
	}
	return geometry.Point2D{}
}

func (mw *MainWindow) onUndo() {
	mw.editor.Cancel()
	mw.mutate("undo", func(ctx context.Context) error {
		return mw.client.Undo(ctx, mw.state.SessionID)
	})
}

func (mw *MainWindow) onDeleteSelection() {
	refs := mw.state.Selection().Refs()
	if len(refs) == 0 {
		mw.updateStatus("Nothing selected")
		return
	}
	mw.editor.Cancel()

	mw.mutate("delete selection", func(ctx context.Context) error {
		for _, r := range refs {
			objectType := "point"
			if r.Type == pick.TypeLine {
				objectType = "segment"
			}
			if err := mw.client.DeleteObject(ctx, mw.state.SessionID, objectType, r.ID); err != nil {
				return err
			}
		}
		return nil
	})
}

func (mw *MainWindow) onUploadDrawing() {
	fd := dialog.NewFileOpen(func(reader fyne.URIReadCloser, err error) {
		if err != nil || reader == nil {
			return
		}
		defer reader.Close()

		data, err := io.ReadAll(reader)
		if err != nil {
			dialog.ShowError(err, mw.Window)
			return
		}
		name := filepath.Base(reader.URI().Path())

		go mw.uploadDrawing(name, data)
	}, mw.Window)
	fd.SetFilter(storage.NewExtensionFileFilter([]string{".png", ".jpg", ".jpeg"}))
	fd.Show()
}

// uploadDrawing sends the raster to the backend and installs it as the
// underlay. A decode failure on the way back degrades to geometry-only
// rendering.
func (mw *MainWindow) uploadDrawing(name string, data []byte) {
	ctx := context.Background()

	payload, err := mw.client.UploadDocument(ctx, mw.state.SessionID, name, data)
	if err != nil {
		log.Printf("upload drawing: %v", err)
		mw.state.Emit(app.EventStatusMessage, fmt.Sprintf("Upload failed: %v", err))
		return
	}
	for _, warn := range payload.Warnings {
		log.Printf("upload warning: %s", warn)
	}

	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		log.Printf("decode drawing %s: %v", name, err)
		mw.state.Emit(app.EventStatusMessage, "Drawing stored but could not be displayed")
		return
	}

	// Georeferenced bounds from the server place the raster in world
	// units; without them the image spans its own pixel extent.
	bounds := geometry.BBox{
		MinX: 0,
		MinY: 0,
		MaxX: float64(payload.ImageWidth),
		MaxY: float64(payload.ImageHeight),
	}
	if bb := payload.BoundaryBox; bb != nil {
		bounds = geometry.BBox{MinX: bb.MinX, MinY: bb.MinY, MaxX: bb.MaxX, MaxY: bb.MaxY}
	}

	mw.state.SetUnderlay(&app.Underlay{Image: img, Bounds: bounds})
	mw.state.Emit(app.EventStatusMessage, "Drawing uploaded: "+payload.StoredFilename)
}

func (mw *MainWindow) onExportGeoJSON() {
	fd := dialog.NewFileSave(func(writer fyne.URIWriteCloser, err error) {
		if err != nil || writer == nil {
			return
		}
		defer writer.Close()

		data, err := mw.client.ExportGeoJSON(context.Background(), mw.state.SessionID)
		if err != nil {
			dialog.ShowError(err, mw.Window)
			return
		}
		if _, err := writer.Write(data); err != nil {
			dialog.ShowError(err, mw.Window)
			return
		}
		mw.updateStatus("GeoJSON exported")
	}, mw.Window)
	fd.SetFileName(fmt.Sprintf("session_%d.geojson", mw.state.SessionID))
	fd.Show()
}

func (mw *MainWindow) onAbout() {
	dialog.ShowInformation("About Deed Drafter",
		fmt.Sprintf("Deed Drafter v%s\n\n"+
			"A land survey drafting tool for recreating deed geometry.\n\n"+
			"Built: %s\n"+
			"Commit: %s",
			version.Version, version.BuildTime, version.GitCommit),
		mw.Window)
}
