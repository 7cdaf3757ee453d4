package viewer

import (
	"strings"

	"github.com/sqweek/dialog"
	"github.com/veandco/go-sdl2/sdl"
	"go.uber.org/zap"

	"github.com/meshworks/meshstudio/internal/engine/exporter"
	"github.com/meshworks/meshstudio/internal/engine/input"
	"github.com/meshworks/meshstudio/internal/engine/picking"
	"github.com/meshworks/meshstudio/internal/logger"
)

func (v *Viewer) handleEvent(e input.Event) {
	switch e.Type {
	case input.EventQuit:
		v.running = false
	case input.EventWindowResize:
		dw, dh := v.window.DrawableSize()
		v.renderer.Resize(dw, dh)
	case input.EventKeyDown:
		v.handleKey(e)
	case input.EventMouseDown:
		v.handleMouseDown(e)
	case input.EventMouseUp:
		v.handleMouseUp(e)
	case input.EventMouseMove:
		v.handleMouseMove(e)
	case input.EventMouseWheel:
		v.camera.HandleZoom(e.WheelY)
	case input.EventDropFile:
		v.startImport(e.File)
	}
}

func (v *Viewer) handleKey(e input.Event) {
	ctrl := input.ModCtrl(e.Mod)
	shift := input.ModShift(e.Mod)

	switch e.Key {
	case sdl.SCANCODE_1:
		v.setTool(ToolTranslate)
	case sdl.SCANCODE_2:
		v.setTool(ToolRotate)
	case sdl.SCANCODE_3:
		v.setTool(ToolScale)

	case sdl.SCANCODE_Z:
		if ctrl {
			if shift {
				v.redo()
			} else {
				v.undo()
			}
		}
	case sdl.SCANCODE_Y:
		if ctrl {
			v.redo()
		}

	case sdl.SCANCODE_A:
		if ctrl {
			v.registry.SelectAll()
		}
	case sdl.SCANCODE_ESCAPE:
		v.registry.Clear()

	case sdl.SCANCODE_H:
		v.toggleVisibility()
	case sdl.SCANCODE_R:
		if shift {
			v.normalizeScale()
		} else {
			v.resetSelected()
		}
	case sdl.SCANCODE_F:
		v.frameView()
	case sdl.SCANCODE_DELETE, sdl.SCANCODE_BACKSPACE:
		v.deleteSelected()

	case sdl.SCANCODE_O:
		if ctrl {
			v.openFileDialog()
		}
	case sdl.SCANCODE_E:
		if ctrl {
			v.exportDialog()
		}
	case sdl.SCANCODE_Q:
		if ctrl {
			v.running = false
		}
	case sdl.SCANCODE_F12:
		v.wantScreenshot = true
	}
}

func (v *Viewer) handleMouseDown(e input.Event) {
	switch e.Button {
	case sdl.BUTTON_LEFT:
		v.handlePick(e.MouseX, e.MouseY)
	case sdl.BUTTON_RIGHT:
		v.orbiting = true
	case sdl.BUTTON_MIDDLE:
		v.panning = true
	}
}

func (v *Viewer) handleMouseUp(e input.Event) {
	switch e.Button {
	case sdl.BUTTON_LEFT:
		v.endToolDrag()
		v.orbiting = false
	case sdl.BUTTON_RIGHT:
		v.orbiting = false
	case sdl.BUTTON_MIDDLE:
		v.panning = false
	}
}

func (v *Viewer) handleMouseMove(e input.Event) {
	switch {
	case v.drag != nil:
		v.updateToolDrag(e.MouseX, e.MouseY, e.DeltaX, e.DeltaY)
	case v.orbiting:
		v.camera.HandleDrag(float32(e.DeltaX), float32(e.DeltaY))
	case v.panning:
		v.camera.Pan(float32(e.DeltaX), float32(e.DeltaY))
	}
}

// handlePick resolves a left click: a hit selects (shift toggles), and
// a hit on the current selection starts a tool drag. Empty space clears
// the selection and falls back to orbiting.
func (v *Viewer) handlePick(mx, my int) {
	shift := input.ModShift(sdl.GetModState())
	hits := v.world.Intersect(v.pickRay(mx, my))
	if len(hits) == 0 {
		if !shift {
			v.registry.Clear()
		}
		v.orbiting = true
		return
	}

	rec := hits[0].Record
	if shift {
		v.registry.Toggle(rec)
	} else if !v.registry.IsSelected(rec) {
		v.registry.SelectOne(rec)
	}
	if v.registry.IsSelected(rec) {
		v.beginToolDrag(mx, my)
	}
}

// pickRay builds a world-space ray through a cursor position. Mouse
// coordinates and Size share screen units, so HiDPI scaling cancels out.
func (v *Viewer) pickRay(mx, my int) picking.Ray {
	w, h := v.window.Size()
	proj, view := v.matrices(w, h)
	return picking.ScreenToRay(float32(mx), float32(my), float32(w), float32(h), proj.Mul(view).Inverse())
}

func (v *Viewer) setTool(t Tool) {
	if v.drag != nil || v.tool == t {
		return
	}
	v.tool = t
	logger.Debug("tool changed", zap.String("tool", t.String()))
}

func (v *Viewer) undo() {
	if v.drag != nil {
		return
	}
	if v.history.Undo() {
		v.refreshAnchor()
	}
}

func (v *Viewer) redo() {
	if v.drag != nil {
		return
	}
	if v.history.Redo() {
		v.refreshAnchor()
	}
}

// refreshAnchor re-places the anchor after poses changed outside a drag.
func (v *Viewer) refreshAnchor() {
	v.anchor.SetSelection(v.registry.Selected())
}

// toggleVisibility flips the selection's visibility. Visibility is not
// part of the undo history.
func (v *Viewer) toggleVisibility() {
	for _, rec := range v.registry.Selected() {
		rec.Visible = !rec.Visible
	}
}

// resetSelected restores every selected record's import pose, as one
// undo entry.
func (v *Viewer) resetSelected() {
	if v.drag != nil {
		return
	}
	sel := v.registry.Selected()
	if len(sel) == 0 {
		return
	}
	entry := v.history.Capture(sel)
	for _, rec := range sel {
		rec.ResetToInitial()
	}
	v.history.Commit(entry)
	v.refreshAnchor()
}

// normalizeScale sets every selected record's scale back to one.
func (v *Viewer) normalizeScale() {
	if v.drag != nil {
		return
	}
	v.anchor.ApplyUniformScale(1)
}

// deleteSelected removes the selection from the world permanently. Undo
// entries referring to the removed records become harmless no-ops.
func (v *Viewer) deleteSelected() {
	if v.drag != nil {
		return
	}
	sel := v.registry.Selected()
	if len(sel) == 0 {
		return
	}
	for _, rec := range sel {
		v.world.Remove(rec)
		v.renderer.Evict(rec.ID)
		v.registry.Unregister(rec)
	}
	v.updateTitle()
	logger.Info("records deleted", zap.Int("count", len(sel)))
}

// openFileDialog asks for a model file. The native dialog runs in a
// goroutine so the loop keeps drawing; the chosen path is queued back
// to the main thread because imports register records there.
func (v *Viewer) openFileDialog() {
	go func() {
		path, err := dialog.File().
			Filter("3D models", "glb", "gltf", "fbx", "obj").
			Filter("All files", "*").
			Title("Open model").
			Load()
		if err != nil {
			if err != dialog.ErrCancelled {
				logger.Warn("open dialog failed", zap.Error(err))
			}
			return
		}
		v.mainOps <- func() { v.startImport(path) }
	}()
}

// exportDialog asks for a destination and writes the scene as GLB.
func (v *Viewer) exportDialog() {
	if len(v.registry.All()) == 0 {
		logger.Warn("export skipped, scene is empty")
		return
	}
	go func() {
		path, err := dialog.File().
			Filter("glTF binary", "glb").
			Title("Export scene").
			Save()
		if err != nil {
			if err != dialog.ErrCancelled {
				logger.Warn("save dialog failed", zap.Error(err))
			}
			return
		}
		if !strings.HasSuffix(strings.ToLower(path), ".glb") {
			path += ".glb"
		}
		v.mainOps <- func() { v.exportScene(path) }
	}()
}

func (v *Viewer) exportScene(path string) {
	records := v.registry.All()
	if err := exporter.SaveGLB(path, records); err != nil {
		logger.Error("export failed", zap.String("file", path), zap.Error(err))
		return
	}
	logger.Info("scene exported",
		zap.String("file", path),
		zap.Int("records", len(records)))
}
