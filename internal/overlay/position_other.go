//go:build !linux

package overlay

// positionWindow is a no-op outside X11; the window opens where the
// platform places it.
func positionWindow(windowTitle string, b Bounds) {}
