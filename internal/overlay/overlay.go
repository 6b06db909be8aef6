// Package overlay provides the borderless always-on-top subtitle window.
package overlay

import (
	"image"
	"sync"
	"time"

	"gioui.org/app"
	"gioui.org/font"
	"gioui.org/io/key"
	"gioui.org/io/system"
	"gioui.org/layout"
	"gioui.org/op"
	"gioui.org/op/clip"
	"gioui.org/op/paint"
	"gioui.org/text"
	"gioui.org/unit"
	"gioui.org/widget/material"

	"livesub/internal/subtitle"
)

const windowTitle = "LiveSub - Subtitles"

// Bounds is the window position and size in pixels.
type Bounds struct {
	X, Y          int
	Width, Height int
}

// Window renders the current subtitle with the current style.
// It implements subtitle.Surface; updates while hidden are kept and
// shown on the next Show.
type Window struct {
	mu       sync.Mutex
	text     string
	style    subtitle.Style
	bounds   Bounds
	onClose  func()
	onResize func(Bounds)

	window  *app.Window
	theme   *material.Theme
	running bool
	stopCh  chan struct{}
	doneCh  chan struct{}
}

var _ subtitle.Surface = (*Window)(nil)

// New creates a hidden subtitle window.
func New(bounds Bounds, style subtitle.Style) *Window {
	return &Window{
		bounds: bounds,
		style:  style.Normalize(),
	}
}

// UpdateSubtitle replaces the displayed text.
func (w *Window) UpdateSubtitle(text string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.text = text
	if w.window != nil {
		w.window.Invalidate()
	}
}

// UpdateSubtitleStyle replaces the style wholesale.
func (w *Window) UpdateSubtitleStyle(style subtitle.Style) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.style = style.Normalize()
	if w.window != nil {
		w.window.Invalidate()
	}
}

// Text returns the current subtitle.
func (w *Window) Text() string {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.text
}

// OnClose sets the callback for ESC in the window.
func (w *Window) OnClose(fn func()) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.onClose = fn
}

// OnResize sets the callback for size changes made by the user or the
// window manager.
func (w *Window) OnResize(fn func(Bounds)) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.onResize = fn
}

// SetBounds moves and resizes the window.
func (w *Window) SetBounds(b Bounds) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.bounds = b
	if w.window != nil {
		w.window.Option(app.Size(unit.Dp(b.Width), unit.Dp(b.Height)))
		go positionWindow(windowTitle, b)
	}
}

// Show displays the window (non-blocking).
func (w *Window) Show() {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.running {
		return
	}

	w.running = true
	w.stopCh = make(chan struct{})
	w.doneCh = make(chan struct{})

	go w.runEventLoop(w.bounds, w.stopCh, w.doneCh)
}

// Hide closes the window.
func (w *Window) Hide() {
	w.mu.Lock()
	if !w.running {
		w.mu.Unlock()
		return
	}
	w.running = false
	stopCh := w.stopCh
	doneCh := w.doneCh
	w.stopCh = nil
	w.mu.Unlock()

	close(stopCh)

	// Wait for window to close
	select {
	case <-doneCh:
	case <-time.After(time.Second):
	}
}

// SetVisible shows or hides the window.
func (w *Window) SetVisible(visible bool) {
	if visible {
		w.Show()
	} else {
		w.Hide()
	}
}

// IsVisible returns true if window is currently shown.
func (w *Window) IsVisible() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.running
}

func (w *Window) runEventLoop(b Bounds, stopCh, doneCh chan struct{}) {
	defer close(doneCh)

	win := new(app.Window)
	win.Option(
		app.Title(windowTitle),
		app.Size(unit.Dp(b.Width), unit.Dp(b.Height)),
		app.Decorated(false), // Borderless
	)

	w.mu.Lock()
	w.window = win
	if w.theme == nil {
		w.theme = material.NewTheme()
	}
	w.mu.Unlock()

	defer func() {
		w.mu.Lock()
		if w.window == win {
			w.window = nil
		}
		w.mu.Unlock()
	}()

	// Position window after it appears
	go positionWindow(windowTitle, b)

	go func() {
		<-stopCh
		win.Perform(system.ActionClose)
	}()

	var ops op.Ops
	for {
		switch e := win.Event().(type) {
		case app.DestroyEvent:
			return
		case app.FrameEvent:
			gtx := app.NewContext(&ops, e)
			w.trackSize(int(gtx.Metric.PxToDp(e.Size.X)), int(gtx.Metric.PxToDp(e.Size.Y)))
			w.draw(gtx)
			e.Frame(gtx.Ops)
		}
	}
}

// trackSize records the window size in dp and reports changes.
func (w *Window) trackSize(width, height int) {
	if width <= 0 || height <= 0 {
		return
	}
	w.mu.Lock()
	if w.bounds.Width == width && w.bounds.Height == height {
		w.mu.Unlock()
		return
	}
	w.bounds.Width, w.bounds.Height = width, height
	b := w.bounds
	onResize := w.onResize
	w.mu.Unlock()

	if onResize != nil {
		go onResize(b)
	}
}

func (w *Window) draw(gtx layout.Context) {
	for {
		event, ok := gtx.Event(key.Filter{Name: key.NameEscape})
		if !ok {
			break
		}
		if e, ok := event.(key.Event); ok && e.State == key.Press {
			w.mu.Lock()
			onClose := w.onClose
			w.mu.Unlock()
			if onClose != nil {
				go onClose()
			}
			go w.Hide()
			return
		}
	}

	w.mu.Lock()
	txt := w.text
	style := w.style
	th := w.theme
	w.mu.Unlock()

	paint.FillShape(gtx.Ops, style.BackgroundColor(), clip.Rect{Max: gtx.Constraints.Max}.Op())

	if txt == "" {
		return
	}

	layout.UniformInset(unit.Dp(10)).Layout(gtx, func(gtx layout.Context) layout.Dimensions {
		return layout.Center.Layout(gtx, func(gtx layout.Context) layout.Dimensions {
			lbl := material.Label(th, unit.Sp(float32(style.FontSize)), txt)
			lbl.Color = style.TextColor()
			lbl.Alignment = text.Middle
			lbl.Font.Typeface = font.Typeface(style.FontFamily)
			lbl.Font.Weight = font.Medium
			lbl.MaxLines = maxLines(gtx.Constraints.Max, style.FontSize)
			return lbl.Layout(gtx)
		})
	})
}

// maxLines returns how many lines of the given font size fit the area.
func maxLines(area image.Point, fontSize int) int {
	if fontSize <= 0 {
		return 1
	}
	n := area.Y / (fontSize * 3 / 2)
	if n < 1 {
		return 1
	}
	return n
}

// clamp keeps the window fully inside a screen of the given size.
func clamp(b Bounds, screenW, screenH int) Bounds {
	if screenW <= 0 || screenH <= 0 {
		return b
	}
	if b.Width > screenW {
		b.Width = screenW
	}
	if b.Height > screenH {
		b.Height = screenH
	}
	if b.X+b.Width > screenW {
		b.X = screenW - b.Width
	}
	if b.Y+b.Height > screenH {
		b.Y = screenH - b.Height
	}
	if b.X < 0 {
		b.X = 0
	}
	if b.Y < 0 {
		b.Y = 0
	}
	return b
}
