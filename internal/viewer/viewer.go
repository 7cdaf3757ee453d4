// Package viewer wires the engine packages into the interactive
// application: one window, one renderer, the scene world, and the
// selection-anchored transform tools. Everything that touches SDL or
// OpenGL runs on the main thread; imports and file dialogs run in
// goroutines and hand their results back through channels drained
// between frames.
package viewer

import (
	"context"
	"fmt"
	"time"
	"unsafe"

	"github.com/chewxy/math32"
	"github.com/go-gl/gl/v4.1-core/gl"
	"go.uber.org/zap"

	"github.com/meshworks/meshstudio/internal/config"
	"github.com/meshworks/meshstudio/internal/engine/camera"
	"github.com/meshworks/meshstudio/internal/engine/debug"
	"github.com/meshworks/meshstudio/internal/engine/importer"
	"github.com/meshworks/meshstudio/internal/engine/input"
	"github.com/meshworks/meshstudio/internal/engine/model"
	"github.com/meshworks/meshstudio/internal/engine/renderer"
	"github.com/meshworks/meshstudio/internal/engine/scene"
	"github.com/meshworks/meshstudio/internal/engine/selection"
	"github.com/meshworks/meshstudio/internal/engine/texture"
	"github.com/meshworks/meshstudio/internal/engine/transform"
	"github.com/meshworks/meshstudio/internal/engine/undo"
	"github.com/meshworks/meshstudio/internal/engine/window"
	"github.com/meshworks/meshstudio/internal/logger"
	"github.com/meshworks/meshstudio/pkg/math"
)

// fieldOfView is the vertical camera FOV in radians.
const fieldOfView = math32.Pi / 4

const appTitle = "meshstudio"

// importResult carries a finished background import to the main loop.
type importResult struct {
	path    string
	records []*model.Record
	err     error
}

// Viewer is the application. Create it with New, drive it with Run,
// release it with Close. All three must run on the main goroutine.
type Viewer struct {
	config *config.Config

	window   *window.Window
	renderer *renderer.Renderer
	input    *input.Input
	camera   *camera.OrbitCamera

	world    *scene.World
	registry *selection.Registry
	history  *undo.History
	anchor   *transform.Anchor
	textures *texture.Store
	pipeline *importer.Pipeline
	capture  *debug.ScreenshotCapture

	tool     Tool
	drag     *dragState
	orbiting bool
	panning  bool

	// wantScreenshot defers the capture to just after the next render,
	// while the back buffer still holds the finished frame.
	wantScreenshot bool

	// imports receives finished background imports, mainOps receives
	// closures that must run on the main thread (dialog results).
	imports chan importResult
	mainOps chan func()
	pending int

	running bool
}

// New builds the viewer: window first, then the GL renderer against its
// context, then the scene state. On error everything already created is
// torn down.
func New(cfg *config.Config) (*Viewer, error) {
	if cfg == nil {
		cfg = config.Default()
	}

	win, err := window.New(window.Config{
		Title:  appTitle,
		Width:  cfg.Viewer.Width,
		Height: cfg.Viewer.Height,
		VSync:  cfg.Viewer.VSync,
	})
	if err != nil {
		return nil, fmt.Errorf("creating window: %w", err)
	}

	store := texture.NewStore()
	dw, dh := win.DrawableSize()
	rend, err := renderer.New(renderer.Config{Width: dw, Height: dh}, store)
	if err != nil {
		win.Close()
		return nil, fmt.Errorf("creating renderer: %w", err)
	}
	if hl := cfg.Editor.HighlightColor; hl != ([3]float32{}) {
		rend.SetHighlightColor(hl[0], hl[1], hl[2])
	}

	depth := cfg.Editor.UndoDepth
	if depth <= 0 {
		depth = undo.DefaultLimit
	}
	shotDir := cfg.Viewer.ScreenshotDir
	if shotDir == "" {
		shotDir = "screenshots"
	}

	v := &Viewer{
		config:   cfg,
		window:   win,
		renderer: rend,
		input:    input.New(),
		camera:   camera.NewOrbitCamera(),
		world:    scene.NewWorld(),
		registry: selection.NewRegistry(),
		history:  undo.NewHistory(depth),
		textures: store,
		capture:  debug.NewScreenshotCapture(shotDir, appTitle),
		imports:  make(chan importResult, 4),
		mainOps:  make(chan func(), 8),
	}
	if s := cfg.Editor.DragSensitivity; s > 0 {
		v.camera.DragSensitivity = s
	}
	if s := cfg.Editor.ZoomSensitivity; s > 0 {
		v.camera.ZoomSensitivity = s
	}
	if s := cfg.Editor.PanSensitivity; s > 0 {
		v.camera.PanSensitivity = s
	}

	v.pipeline = importer.NewPipeline(store, nil)
	v.pipeline.SetOptions(importer.Options{
		GenerateNormals: cfg.Import.GenerateNormals,
		SmoothNormals:   cfg.Import.SmoothNormals,
		DoubleSided:     cfg.Import.DoubleSided,
		Scale:           cfg.Import.Scale,
	})
	v.anchor = transform.NewAnchor(v.history)
	v.history.SetLiveCheck(v.world.Contains)
	v.registry.AddListener(func(ev selection.Event) {
		v.anchor.SetSelection(ev.Selected)
	})

	logger.Info("viewer ready",
		zap.Int("width", cfg.Viewer.Width),
		zap.Int("height", cfg.Viewer.Height),
		zap.Int("undo_depth", depth))
	return v, nil
}

// Run drives the main loop until the window closes or Quit is requested.
// Files given on the command line are imported as soon as the loop starts.
func (v *Viewer) Run(files ...string) error {
	for _, path := range files {
		v.startImport(path)
	}

	v.running = true
	frames := 0
	fpsTimer := time.Now()
	last := time.Now()

	for v.running {
		now := time.Now()
		dt := now.Sub(last).Seconds()
		last = now

		if v.input.Update() {
			break
		}
		for _, ev := range v.input.Events() {
			v.handleEvent(ev)
		}
		v.drainMainOps()
		v.applyImports()

		v.render()
		if v.wantScreenshot {
			v.wantScreenshot = false
			v.screenshot()
		}
		v.window.SwapBuffers()

		frames++
		if time.Since(fpsTimer) >= time.Second {
			logger.Debug("frame stats",
				zap.Int("fps", frames),
				zap.Float64("last_dt_ms", dt*1000),
				zap.Int("records", v.world.Count()))
			frames = 0
			fpsTimer = time.Now()
		}
	}
	return nil
}

// Close releases resources in reverse creation order.
func (v *Viewer) Close() {
	if v.renderer != nil {
		v.renderer.Close()
	}
	if v.window != nil {
		v.window.Close()
	}
	logger.Info("viewer closed")
}

func (v *Viewer) render() {
	v.renderer.Begin()

	w, h := v.window.Size()
	if w <= 0 || h <= 0 {
		return
	}
	proj, view := v.matrices(w, h)

	selected := make(map[uint64]bool)
	for _, rec := range v.registry.Selected() {
		selected[rec.ID] = true
	}
	v.renderer.Render(view, proj, v.camera.Position(), v.world.All(), func(id uint64) bool {
		return selected[id]
	})
	for _, rec := range v.registry.Selected() {
		if rec.Geometry == nil {
			continue
		}
		v.renderer.DrawBounds(view, proj, rec.WorldBounds())
	}
}

// matrices returns the projection and view matrices for the given
// viewport size in screen coordinates.
func (v *Viewer) matrices(w, h int) (proj, view math.Mat4) {
	near, far := v.camera.ClipPlanes()
	proj = math.Perspective(fieldOfView, float32(w)/float32(h), near, far)
	return proj, v.camera.ViewMatrix()
}

// drainMainOps runs closures queued by dialog goroutines. SDL and Cocoa
// window operations must happen on the main thread, so dialogs only
// queue work here instead of acting themselves.
func (v *Viewer) drainMainOps() {
	for {
		select {
		case op := <-v.mainOps:
			op()
		default:
			return
		}
	}
}

// startImport runs the pipeline in a goroutine and queues the result
// for the main loop.
func (v *Viewer) startImport(path string) {
	v.pending++
	v.updateTitle()
	logger.Info("import started", zap.String("file", path))
	go func() {
		records, err := v.pipeline.ImportFile(context.Background(), path)
		v.imports <- importResult{path: path, records: records, err: err}
	}()
}

// applyImports integrates finished imports between frames: records join
// the world and the registry, and the first content auto-frames the
// camera.
func (v *Viewer) applyImports() {
	for {
		select {
		case res := <-v.imports:
			v.pending--
			if res.err != nil {
				logger.Error("import failed",
					zap.String("file", res.path),
					zap.Error(res.err))
				v.updateTitle()
				continue
			}
			wasEmpty := v.world.Count() == 0
			for _, rec := range res.records {
				v.world.Add(rec)
				v.registry.Register(rec)
			}
			if wasEmpty && len(res.records) > 0 {
				v.frameWorld()
			}
			v.updateTitle()
			logger.Info("import finished",
				zap.String("file", res.path),
				zap.Int("records", len(res.records)))
		default:
			return
		}
	}
}

// frameView fits the camera to the selection, or to the whole world when
// nothing is selected.
func (v *Viewer) frameView() {
	sel := v.registry.Selected()
	if len(sel) == 0 {
		v.frameWorld()
		return
	}
	box := sel[0].WorldBounds()
	for _, rec := range sel[1:] {
		b := rec.WorldBounds()
		box.Min = box.Min.Min(b.Min)
		box.Max = box.Max.Max(b.Max)
	}
	v.camera.FrameBounds(box, fieldOfView)
}

func (v *Viewer) frameWorld() {
	box, ok := v.world.Bounds()
	if !ok {
		return
	}
	v.camera.FrameBounds(box, fieldOfView)
}

// screenshot reads the back buffer and saves it as a PNG.
func (v *Viewer) screenshot() {
	w, h := v.window.DrawableSize()
	if w <= 0 || h <= 0 {
		return
	}
	pixels := make([]byte, w*h*4)
	gl.ReadPixels(0, 0, int32(w), int32(h), gl.RGBA, gl.UNSIGNED_BYTE, unsafe.Pointer(&pixels[0]))

	name, err := v.capture.Capture(pixels, w, h)
	if err != nil {
		logger.Error("screenshot failed", zap.Error(err))
		return
	}
	logger.Info("screenshot saved", zap.String("file", name))
}

func (v *Viewer) updateTitle() {
	title := fmt.Sprintf("%s - %d records, %d selected",
		appTitle, v.world.Count(), v.registry.Count())
	if v.pending > 0 {
		title += fmt.Sprintf(" (importing %d)", v.pending)
	}
	v.window.SetTitle(title)
}
