//go:build fyne && cgo

/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

package ui

import (
	"bytes"
	"context"
	"fmt"
	"image/color"
	"log/slog"
	"math/rand"
	"os"
	"path/filepath"
	"strings"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	fcanvas "fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/driver/desktop"
	"fyne.io/fyne/v2/widget"

	bcanvas "storycanvas/internal/canvas"
	"storycanvas/internal/config"
	"storycanvas/internal/crash"
	"storycanvas/internal/domain"
	"storycanvas/internal/export"
	applog "storycanvas/internal/log"
	"storycanvas/internal/storage"
	"storycanvas/internal/undo"
	"storycanvas/internal/vector"
	"storycanvas/internal/version"
)

// Run starts the Fyne-based desktop UI with the board canvas editor.
func Run(projectDir string) error {
	applog.Init(applog.FromEnv())
	l := applog.WithComponent("ui")
	l.Info("starting UI", slog.String("version", version.String()))

	cfg, _, cfgErr := config.Load()
	if cfgErr != nil {
		l.Warn("config load failed, using defaults", slog.Any("err", cfgErr))
		cfg = config.Defaults()
	}

	var ph *storage.ProjectHandle
	defer func() { crash.Recover(ph) }()

	fyneApp := app.NewWithID("storycanvas")
	w := fyneApp.NewWindow("Story Canvas")
	prefs := fyneApp.Preferences()
	winW := prefs.IntWithFallback("window.width", 1200)
	winH := prefs.IntWithFallback("window.height", 800)
	if winW < 800 {
		winW = 800
	}
	if winH < 600 {
		winH = 600
	}
	w.Resize(fyne.NewSize(float32(winW), float32(winH)))

	status := widget.NewLabel("Ready")
	bc := NewBoardCanvas()
	undoMgr := undo.NewManager(undo.Config{
		MaxBytes:    16 * 1024 * 1024,
		MaxPerBoard: 50,
		MinInterval: 300 * time.Millisecond,
	})

	var store *storage.BoardStore
	currentBoard := ""

	encodeCurrent := func() []byte {
		if bc.model == nil {
			return nil
		}
		b, err := undo.EncodeBoardState(undo.BoardState{Elements: bc.model.Elements(), Edges: bc.model.Edges()})
		if err != nil {
			return nil
		}
		return b
	}

	// Gesture bracketing: the pre-state is recorded when a gesture starts
	// and pushed as an undo step only when the gesture actually changed
	// something.
	var pendingPre []byte
	bc.onGestureStart = func() {
		pendingPre = encodeCurrent()
	}
	markSaved := func(text string) {
		status.SetText(text)
	}
	bc.onCommit = func() {
		if pendingPre == nil {
			return
		}
		cur := encodeCurrent()
		if cur != nil && !bytes.Equal(cur, pendingPre) {
			undoMgr.PushSnapshot(undo.Snapshot{BoardID: currentBoard, Blob: pendingPre, TS: time.Now()})
			markSaved(fmt.Sprintf("%d elements, %d connections", bc.model.Len(), len(bc.model.Edges())))
		}
		pendingPre = nil
	}

	applyState := func(blob []byte) {
		if ph == nil || bc.model == nil {
			return
		}
		st, err := undo.DecodeBoardState(blob)
		if err != nil {
			l.Error("restore board state failed", slog.Any("err", err))
			return
		}
		b := ph.Project.FindBoard(currentBoard)
		if b == nil {
			return
		}
		b.Elements = st.Elements
		b.Edges = st.Edges
		if err := bc.model.Load(); err != nil {
			l.Error("reload after restore failed", slog.Any("err", err))
			return
		}
		bc.Refresh()
	}

	doUndo := func() {
		s, ok := undoMgr.Undo(currentBoard)
		if !ok {
			status.SetText("Nothing to undo")
			return
		}
		applyState(s.Blob)
		status.SetText("Undid last change")
	}
	doRedo := func() {
		s, ok := undoMgr.Redo(currentBoard)
		if !ok {
			status.SetText("Nothing to redo")
			return
		}
		applyState(s.Blob)
		status.SetText("Redid change")
	}

	// Text tool: a tap in text mode places the caret; the note body is
	// collected through a dialog and committed via the session so empty
	// input follows the same commit path.
	bc.onTextCaret = func() {
		entry := widget.NewMultiLineEntry()
		entry.SetPlaceHolder("Note text")
		dialog.ShowForm("New Note", "Add", "Cancel",
			[]*widget.FormItem{widget.NewFormItem("Text", entry)},
			func(ok bool) {
				if !ok {
					bc.sess.CancelText()
					pendingPre = nil
					return
				}
				bc.sess.CommitText(entry.Text)
				bc.onCommit()
				bc.Refresh()
			}, w)
	}

	// Palette lists: selecting an entry arms a palette drag; the next tap
	// on the canvas drops the element there.
	type paletteEntry struct {
		kind  domain.ElementKind
		refID string
		label string
	}
	var paletteItems []paletteEntry
	rebuildPalette := func() {
		paletteItems = paletteItems[:0]
		if ph == nil {
			return
		}
		for _, c := range ph.Project.Characters {
			paletteItems = append(paletteItems, paletteEntry{kind: domain.KindCharacter, refID: c.ID, label: c.Name})
		}
		for _, loc := range ph.Project.Locations {
			paletteItems = append(paletteItems, paletteEntry{kind: domain.KindLocation, refID: loc.ID, label: loc.Name})
		}
		for _, pp := range ph.Project.PlotPoints {
			paletteItems = append(paletteItems, paletteEntry{kind: domain.KindPlotPoint, refID: pp.ID, label: pp.Title})
		}
	}
	paletteList := widget.NewList(
		func() int { return len(paletteItems) },
		func() fyne.CanvasObject { return widget.NewLabel("item") },
		func(i widget.ListItemID, obj fyne.CanvasObject) {
			it := paletteItems[i]
			obj.(*widget.Label).SetText(fmt.Sprintf("%s (%s)", it.label, it.kind))
		},
	)
	paletteList.OnSelected = func(i widget.ListItemID) {
		if bc.sess == nil || i < 0 || i >= len(paletteItems) {
			return
		}
		it := paletteItems[i]
		bc.sess.BeginPaletteDrag(it.kind, it.refID)
		status.SetText(fmt.Sprintf("Placing %q: click on the canvas", it.label))
		paletteList.UnselectAll()
	}
	noteBtn := widget.NewButton("New Note", func() {
		if bc.sess == nil {
			return
		}
		bc.sess.BeginPaletteDrag(domain.KindNote, "")
		status.SetText("Placing note: click on the canvas")
	})

	// Board selector.
	var boardSelect *widget.Select
	openBoard := func(boardID string) {
		if ph == nil || store == nil {
			return
		}
		model := bcanvas.NewModel(boardID, store)
		if err := model.Load(); err != nil {
			dialog.ShowError(err, w)
			return
		}
		view := bcanvas.NewViewport(func(vs domain.ViewportState) {
			_ = store.SaveViewport(boardID, vs)
		})
		vs := domain.ViewportState{Zoom: 1}
		if b := ph.Project.FindBoard(boardID); b != nil && b.Viewport.Zoom > 0 {
			vs = b.Viewport
		}
		view.Restore(vs)
		ing := bcanvas.NewIngestor(model, rand.New(rand.NewSource(time.Now().UnixNano())))
		sess := bcanvas.NewSession(model, view, ing, bcanvas.SessionOptions{
			SnapEnabled:   cfg.Canvas.SnapEnabled,
			SnapThreshold: cfg.Canvas.SnapThreshold,
		})
		grid := bcanvas.GridSettings{Spacing: cfg.Canvas.GridSpacing, MajorEvery: 5}
		rend := bcanvas.NewRenderer(model, view, sess, store, grid)
		bc.Attach(model, view, sess, rend)
		currentBoard = boardID
		status.SetText(fmt.Sprintf("Board: %s (%d elements)", boardID, model.Len()))
	}
	boardNameToID := map[string]string{}
	refreshBoards := func() {
		names := make([]string, 0)
		boardNameToID = map[string]string{}
		if ph != nil {
			for _, b := range ph.Project.Boards {
				names = append(names, b.Name)
				boardNameToID[b.Name] = b.ID
			}
		}
		boardSelect.Options = names
		boardSelect.Refresh()
	}
	boardSelect = widget.NewSelect(nil, func(name string) {
		if id, ok := boardNameToID[name]; ok && id != currentBoard {
			openBoard(id)
		}
	})
	boardSelect.PlaceHolder = "Board"

	openProjectAt := func(dir string) {
		abs, _ := filepath.Abs(dir)
		h, err := storage.Open(abs)
		if err != nil {
			dialog.ShowError(err, w)
			return
		}
		ph = h
		store = storage.NewBoardStore(ph)
		rebuildPalette()
		paletteList.Refresh()
		refreshBoards()
		if len(ph.Project.Boards) > 0 {
			boardSelect.SetSelected(ph.Project.Boards[0].Name)
			openBoard(ph.Project.Boards[0].ID)
		}
		addRecentProject(prefs, abs)
		w.SetTitle("Story Canvas — " + ph.Project.Name)
		status.SetText("Opened " + ph.Project.Name)
		go func() {
			ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()
			if rebuilt, err := storage.DetectAndRebuildIndex(ctx, ph.Root, ph.Project); err != nil {
				l.Warn("index check failed", slog.Any("err", err))
			} else if rebuilt {
				l.Info("search index rebuilt")
			}
		}()
	}

	saveProject := func() {
		if ph == nil {
			return
		}
		if err := storage.Save(ph); err != nil {
			dialog.ShowError(err, w)
			return
		}
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := storage.UpdateIndex(ctx, ph.Root, ph.Project); err != nil {
			l.Warn("index update failed", slog.Any("err", err))
		}
		if blob := encodeCurrent(); blob != nil && currentBoard != "" {
			if err := storage.SaveSnapshot(ctx, ph, currentBoard, blob, time.Now()); err != nil {
				l.Warn("board snapshot failed", slog.Any("err", err))
			} else {
				_, _ = storage.PruneOldSnapshots(ctx, ph, currentBoard, 20)
			}
		}
		status.SetText("Saved")
	}

	runExport := func(preset export.PresetName) {
		if ph == nil {
			return
		}
		go func() {
			err := export.BatchExport(ph, export.BatchOptions{Preset: preset})
			if err != nil {
				l.Error("export failed", slog.Any("err", err))
				fyne.Do(func() { dialog.ShowError(err, w) })
				return
			}
			fyne.Do(func() {
				status.SetText(fmt.Sprintf("Exported %s preset to %s", preset, filepath.Join(ph.Root, "exports", string(preset))))
			})
		}()
	}

	// Search over the embedded index; note hits jump to their board.
	searchEntry := widget.NewEntry()
	searchEntry.SetPlaceHolder("Search project…")
	searchEntry.OnSubmitted = func(q string) {
		if ph == nil || strings.TrimSpace(q) == "" {
			return
		}
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		results, err := storage.Search(ctx, ph.Root, storage.SearchQuery{Text: q, Limit: 25})
		if err != nil {
			dialog.ShowError(err, w)
			return
		}
		if len(results) == 0 {
			status.SetText("No matches for " + q)
			return
		}
		items := make([]string, len(results))
		for i, r := range results {
			items[i] = fmt.Sprintf("[%s] %s", r.Type, r.Snippet)
		}
		list := widget.NewList(
			func() int { return len(items) },
			func() fyne.CanvasObject { return widget.NewLabel("result") },
			func(i widget.ListItemID, obj fyne.CanvasObject) { obj.(*widget.Label).SetText(items[i]) },
		)
		var d dialog.Dialog
		list.OnSelected = func(i widget.ListItemID) {
			r := results[i]
			if r.BoardID != "" && r.BoardID != currentBoard {
				openBoard(r.BoardID)
				for name, id := range boardNameToID {
					if id == r.BoardID {
						boardSelect.SetSelected(name)
					}
				}
			}
			d.Hide()
		}
		d = dialog.NewCustom(fmt.Sprintf("%d matches", len(results)), "Close", container.NewStack(list), w)
		d.Resize(fyne.NewSize(520, 380))
		d.Show()
	}

	setMode := func(m bcanvas.Mode) {
		if bc.sess == nil {
			return
		}
		bc.sess.SetMode(m)
		bc.Refresh()
		status.SetText("Tool: " + string(m))
	}
	toolbar := container.NewHBox(
		widget.NewButton("Select", func() { setMode(bcanvas.ModeSelect) }),
		widget.NewButton("Connect", func() { setMode(bcanvas.ModeConnect) }),
		widget.NewButton("Pen", func() { setMode(bcanvas.ModePen) }),
		widget.NewButton("Text", func() { setMode(bcanvas.ModeText) }),
		widget.NewButton("Eraser", func() { setMode(bcanvas.ModeEraser) }),
		widget.NewSeparator(),
		boardSelect,
		widget.NewButton("+ Board", func() {
			if ph == nil {
				return
			}
			entry := widget.NewEntry()
			entry.SetText(fmt.Sprintf("Board %d", len(ph.Project.Boards)+1))
			dialog.ShowForm("New Board", "Create", "Cancel",
				[]*widget.FormItem{widget.NewFormItem("Name", entry)},
				func(ok bool) {
					if !ok {
						return
					}
					b, err := storage.AddBoard(ph, entry.Text)
					if err != nil {
						dialog.ShowError(err, w)
						return
					}
					refreshBoards()
					boardSelect.SetSelected(b.Name)
					openBoard(b.ID)
				}, w)
		}),
		widget.NewSeparator(),
		searchEntry,
	)

	fileMenu := fyne.NewMenu("File",
		fyne.NewMenuItem("Open Project…", func() {
			dlg := dialog.NewFolderOpen(func(uri fyne.ListableURI, err error) {
				if err != nil || uri == nil {
					return
				}
				openProjectAt(uri.Path())
			}, w)
			dlg.Show()
		}),
		fyne.NewMenuItem("Save", saveProject),
		fyne.NewMenuItemSeparator(),
		fyne.NewMenuItem("Export (Web)", func() { runExport(export.PresetWeb) }),
		fyne.NewMenuItem("Export (Print)", func() { runExport(export.PresetPrint) }),
	)
	// Recent projects submenu.
	if recents := loadRecentProjects(prefs); len(recents) > 0 {
		items := make([]*fyne.MenuItem, 0, len(recents))
		for _, r := range recents {
			path := r
			items = append(items, fyne.NewMenuItem(filepath.Base(path), func() { openProjectAt(path) }))
		}
		sub := fyne.NewMenuItem("Open Recent", nil)
		sub.ChildMenu = fyne.NewMenu("", items...)
		fileMenu.Items = append(fileMenu.Items, fyne.NewMenuItemSeparator(), sub)
	}
	editMenu := fyne.NewMenu("Edit",
		fyne.NewMenuItem("Undo", doUndo),
		fyne.NewMenuItem("Redo", doRedo),
	)
	boardMenu := fyne.NewMenu("Board",
		fyne.NewMenuItem("Rename…", func() {
			if ph == nil || currentBoard == "" {
				return
			}
			entry := widget.NewEntry()
			if b := ph.Project.FindBoard(currentBoard); b != nil {
				entry.SetText(b.Name)
			}
			dialog.ShowForm("Rename Board", "Rename", "Cancel",
				[]*widget.FormItem{widget.NewFormItem("Name", entry)},
				func(ok bool) {
					if !ok {
						return
					}
					if err := storage.RenameBoard(ph, currentBoard, entry.Text); err != nil {
						dialog.ShowError(err, w)
						return
					}
					refreshBoards()
					boardSelect.SetSelected(entry.Text)
				}, w)
		}),
		fyne.NewMenuItem("Delete", func() {
			if ph == nil || currentBoard == "" {
				return
			}
			dialog.ShowConfirm("Delete Board", "Delete the current board and everything on it?", func(ok bool) {
				if !ok {
					return
				}
				old := currentBoard
				if err := storage.DeleteBoard(ph, old); err != nil {
					dialog.ShowError(err, w)
					return
				}
				undoMgr.ClearBoard(old)
				refreshBoards()
				if len(ph.Project.Boards) > 0 {
					boardSelect.SetSelected(ph.Project.Boards[0].Name)
					openBoard(ph.Project.Boards[0].ID)
				}
			}, w)
		}),
	)
	w.SetMainMenu(fyne.NewMainMenu(fileMenu, editMenu, boardMenu))

	// Keyboard: deletion and escape go to the session, undo/redo to the manager.
	w.Canvas().SetOnTypedKey(func(ev *fyne.KeyEvent) {
		if bc.sess == nil {
			return
		}
		switch ev.Name {
		case fyne.KeyDelete:
			bc.onGestureStart()
			bc.sess.KeyDown(bcanvas.KeyDelete)
			bc.onCommit()
			bc.Refresh()
		case fyne.KeyBackspace:
			bc.onGestureStart()
			bc.sess.KeyDown(bcanvas.KeyBackspace)
			bc.onCommit()
			bc.Refresh()
		case fyne.KeyEscape:
			bc.sess.KeyDown(bcanvas.KeyEscape)
			bc.Refresh()
		}
	})
	w.Canvas().AddShortcut(&desktop.CustomShortcut{KeyName: fyne.KeyZ, Modifier: fyne.KeyModifierControl}, func(fyne.Shortcut) { doUndo() })
	w.Canvas().AddShortcut(&desktop.CustomShortcut{KeyName: fyne.KeyY, Modifier: fyne.KeyModifierControl}, func(fyne.Shortcut) { doRedo() })

	left := container.NewBorder(
		widget.NewLabel("Palette"), noteBtn, nil, nil,
		paletteList,
	)
	content := container.NewBorder(toolbar, status, left, nil, bc)
	w.SetContent(content)

	w.SetOnClosed(func() {
		sz := w.Canvas().Size()
		prefs.SetInt("window.width", int(sz.Width))
		prefs.SetInt("window.height", int(sz.Height))
	})

	if strings.TrimSpace(projectDir) != "" {
		if _, err := os.Stat(projectDir); err == nil {
			openProjectAt(projectDir)
		}
	}

	w.ShowAndRun()
	return nil
}

// BoardCanvas is the interactive board widget. It renders the scene graph
// produced by the canvas renderer and forwards pointer input to the session.
type BoardCanvas struct {
	widget.BaseWidget

	model *bcanvas.Model
	view  *bcanvas.Viewport
	sess  *bcanvas.Session
	rend  *bcanvas.Renderer

	onGestureStart func()
	onCommit       func()
	onTextCaret    func()

	dragging     bool
	lastX, lastY float64
}

func NewBoardCanvas() *BoardCanvas {
	bc := &BoardCanvas{}
	bc.ExtendBaseWidget(bc)
	return bc
}

// Attach points the widget at a freshly opened board.
func (b *BoardCanvas) Attach(m *bcanvas.Model, v *bcanvas.Viewport, s *bcanvas.Session, r *bcanvas.Renderer) {
	b.model = m
	b.view = v
	b.sess = s
	b.rend = r
	b.dragging = false
	b.Refresh()
}

func (b *BoardCanvas) CreateRenderer() fyne.WidgetRenderer {
	bg := fcanvas.NewRectangle(color.NRGBA{R: 245, G: 246, B: 248, A: 255})
	return &boardCanvasRenderer{bc: b, bg: bg, objects: []fyne.CanvasObject{bg}}
}

// Tapped places armed palette items, or forwards a click to the session.
func (b *BoardCanvas) Tapped(e *fyne.PointEvent) {
	if b.sess == nil {
		return
	}
	x, y := float64(e.Position.X), float64(e.Position.Y)
	if b.sess.PaletteDragActive() {
		if b.onGestureStart != nil {
			b.onGestureStart()
		}
		b.sess.MovePaletteDrag(x, y)
		b.sess.DropPaletteDrag(x, y, true)
		if b.onCommit != nil {
			b.onCommit()
		}
		b.Refresh()
		return
	}
	if b.onGestureStart != nil {
		b.onGestureStart()
	}
	b.sess.PointerDown(bcanvas.PointerEvent{X: x, Y: y})
	b.sess.PointerUp(bcanvas.PointerEvent{X: x, Y: y})
	if b.sess.Mode() == bcanvas.ModeText {
		if _, _, ok := b.sess.Caret(); ok && b.onTextCaret != nil {
			b.Refresh()
			b.onTextCaret()
			return
		}
	}
	if b.onCommit != nil {
		b.onCommit()
	}
	b.Refresh()
}

// Dragged drives move, connect, pen and eraser gestures. Dragging empty
// space in select mode pans the viewport.
func (b *BoardCanvas) Dragged(e *fyne.DragEvent) {
	if b.sess == nil {
		return
	}
	x, y := float64(e.Position.X), float64(e.Position.Y)
	if b.sess.PaletteDragActive() {
		b.sess.MovePaletteDrag(x, y)
		b.Refresh()
		return
	}
	if !b.dragging {
		b.dragging = true
		if b.onGestureStart != nil {
			b.onGestureStart()
		}
		sx := x - float64(e.Dragged.DX)
		sy := y - float64(e.Dragged.DY)
		ev := bcanvas.PointerEvent{X: sx, Y: sy}
		if b.sess.Mode() == bcanvas.ModeSelect && b.model != nil && b.view != nil {
			wx, wy := b.view.ScreenToWorld(sx, sy)
			if _, hit := b.model.HitTest(wx, wy); !hit {
				ev.PanModifier = true
			}
		}
		b.sess.PointerDown(ev)
	}
	b.sess.PointerMove(bcanvas.PointerEvent{X: x, Y: y})
	b.lastX, b.lastY = x, y
	b.Refresh()
}

func (b *BoardCanvas) DragEnd() {
	if b.sess == nil || !b.dragging {
		return
	}
	b.dragging = false
	b.sess.PointerUp(bcanvas.PointerEvent{X: b.lastX, Y: b.lastY})
	if b.onCommit != nil {
		b.onCommit()
	}
	b.Refresh()
}

// Scrolled zooms at the pointer. Fyne scroll events carry no modifier
// state, so the wheel always zooms.
func (b *BoardCanvas) Scrolled(e *fyne.ScrollEvent) {
	if b.view == nil {
		return
	}
	factor := 1.0 + float64(e.Scrolled.DY)*0.01
	if factor < 0.5 {
		factor = 0.5
	}
	if factor > 2 {
		factor = 2
	}
	b.view.ZoomAt(float64(e.Position.X), float64(e.Position.Y), factor)
	b.Refresh()
}

// MouseMoved keeps the palette ghost under the cursor.
func (b *BoardCanvas) MouseMoved(e *desktop.MouseEvent) {
	if b.sess == nil || !b.sess.PaletteDragActive() {
		return
	}
	b.sess.MovePaletteDrag(float64(e.Position.X), float64(e.Position.Y))
	b.Refresh()
}

func (b *BoardCanvas) MouseIn(*desktop.MouseEvent) {}
func (b *BoardCanvas) MouseOut()                   {}

// boardCanvasRenderer converts the vector scene graph into Fyne canvas
// objects on every refresh. The scene only carries translate and scale
// transforms, so geometry maps corner by corner.
type boardCanvasRenderer struct {
	bc      *BoardCanvas
	bg      *fcanvas.Rectangle
	objects []fyne.CanvasObject
}

func (r *boardCanvasRenderer) Destroy()                     {}
func (r *boardCanvasRenderer) Objects() []fyne.CanvasObject { return r.objects }
func (r *boardCanvasRenderer) MinSize() fyne.Size           { return fyne.NewSize(640, 480) }

func (r *boardCanvasRenderer) Layout(size fyne.Size) {
	r.rebuild(size)
}

func (r *boardCanvasRenderer) Refresh() {
	r.rebuild(r.bc.Size())
	fcanvas.Refresh(r.bc)
}

func (r *boardCanvasRenderer) rebuild(size fyne.Size) {
	r.bg.Resize(size)
	objs := []fyne.CanvasObject{r.bg}
	if r.bc.rend != nil && size.Width > 0 && size.Height > 0 {
		root := r.bc.rend.Build(float64(size.Width), float64(size.Height))
		objs = appendNodeObjects(objs, root, vector.Identity)
	}
	r.objects = objs
}

func appendNodeObjects(objs []fyne.CanvasObject, n vector.Node, parent vector.Affine2D) []fyne.CanvasObject {
	xf := parent.Mul(n.Transform())
	switch node := n.(type) {
	case *vector.Group:
		for _, ch := range node.Children {
			objs = appendNodeObjects(objs, ch, xf)
		}
	case *vector.LineNode:
		st := node.Stroke()
		if !st.Enabled {
			return objs
		}
		a := xf.Apply(node.From)
		bpt := xf.Apply(node.To)
		ln := fcanvas.NewLine(nodeColor(st.Color))
		ln.StrokeWidth = st.Width * xf.A
		ln.Position1 = fyne.NewPos(a.X, a.Y)
		ln.Position2 = fyne.NewPos(bpt.X, bpt.Y)
		objs = append(objs, ln)
	case *vector.RectNode:
		objs = append(objs, rectObject(node.Rect(), 0, node.Fill(), node.Stroke(), xf))
	case *vector.RoundedRectNode:
		objs = append(objs, rectObject(node.Rect(), node.Radius(), node.Fill(), node.Stroke(), xf))
	case *vector.TextNode:
		t := fcanvas.NewText(node.Text, nodeColor(node.Fill().Color))
		t.TextSize = node.Size * xf.A
		at := xf.Apply(node.At)
		t.Move(fyne.NewPos(at.X, at.Y-t.TextSize))
		objs = append(objs, t)
	case *vector.PathNode:
		objs = appendPathObjects(objs, node, xf)
	}
	return objs
}

func rectObject(rc vector.Rect, radius float32, f vector.Fill, s vector.Stroke, xf vector.Affine2D) fyne.CanvasObject {
	p0 := xf.Apply(vector.Pt{X: rc.X, Y: rc.Y})
	p1 := xf.Apply(vector.Pt{X: rc.X + rc.W, Y: rc.Y + rc.H})
	rect := fcanvas.NewRectangle(color.Transparent)
	if f.Enabled {
		rect.FillColor = nodeColor(f.Color)
	}
	if s.Enabled {
		rect.StrokeColor = nodeColor(s.Color)
		rect.StrokeWidth = s.Width * xf.A
	}
	rect.CornerRadius = radius * xf.A
	rect.Move(fyne.NewPos(p0.X, p0.Y))
	rect.Resize(fyne.NewSize(p1.X-p0.X, p1.Y-p0.Y))
	return rect
}

// appendPathObjects flattens curves into short line segments. Filled paths
// (arrowheads) render with their fill color as a closed outline.
func appendPathObjects(objs []fyne.CanvasObject, node *vector.PathNode, xf vector.Affine2D) []fyne.CanvasObject {
	st := node.Stroke()
	col := st.Color
	width := st.Width * xf.A
	if !st.Enabled {
		f := node.Fill()
		if !f.Enabled {
			return objs
		}
		col = f.Color
		width = 1.5 * xf.A
	}
	const steps = 12
	var cur, start vector.Pt
	havePt := false
	emit := func(to vector.Pt) {
		a := xf.Apply(cur)
		b := xf.Apply(to)
		ln := fcanvas.NewLine(nodeColor(col))
		ln.StrokeWidth = width
		ln.Position1 = fyne.NewPos(a.X, a.Y)
		ln.Position2 = fyne.NewPos(b.X, b.Y)
		objs = append(objs, ln)
		cur = to
	}
	for _, c := range node.Path().Cmds {
		switch c.Op {
		case vector.MoveTo:
			cur = vector.Pt{X: c.Data[0], Y: c.Data[1]}
			start = cur
			havePt = true
		case vector.LineTo:
			if havePt {
				emit(vector.Pt{X: c.Data[0], Y: c.Data[1]})
			}
		case vector.QuadTo:
			if havePt {
				c1 := vector.Pt{X: c.Data[0], Y: c.Data[1]}
				end := vector.Pt{X: c.Data[2], Y: c.Data[3]}
				p0 := cur
				for i := 1; i <= steps; i++ {
					t := float32(i) / steps
					u := 1 - t
					emit(vector.Pt{
						X: u*u*p0.X + 2*u*t*c1.X + t*t*end.X,
						Y: u*u*p0.Y + 2*u*t*c1.Y + t*t*end.Y,
					})
				}
			}
		case vector.CubicTo:
			if havePt {
				c1 := vector.Pt{X: c.Data[0], Y: c.Data[1]}
				c2 := vector.Pt{X: c.Data[2], Y: c.Data[3]}
				end := vector.Pt{X: c.Data[4], Y: c.Data[5]}
				p0 := cur
				for i := 1; i <= steps; i++ {
					t := float32(i) / steps
					u := 1 - t
					emit(vector.Pt{
						X: u*u*u*p0.X + 3*u*u*t*c1.X + 3*u*t*t*c2.X + t*t*t*end.X,
						Y: u*u*u*p0.Y + 3*u*u*t*c1.Y + 3*u*t*t*c2.Y + t*t*t*end.Y,
					})
				}
			}
		case vector.Close:
			if havePt {
				emit(start)
			}
		}
	}
	return objs
}

func nodeColor(c vector.Color) color.Color {
	return color.NRGBA{R: c.R, G: c.G, B: c.B, A: c.A}
}

const recentKey = "recent.projects"

func loadRecentProjects(p fyne.Preferences) []string {
	raw := p.StringWithFallback(recentKey, "")
	if raw == "" {
		return nil
	}
	var out []string
	for _, s := range strings.Split(raw, "\n") {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

func addRecentProject(p fyne.Preferences, path string) {
	items := loadRecentProjects(p)
	out := []string{path}
	for _, it := range items {
		if it != path && len(out) < 8 {
			out = append(out, it)
		}
	}
	p.SetString(recentKey, strings.Join(out, "\n"))
}
