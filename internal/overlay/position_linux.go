//go:build linux

package overlay

import (
	"os/exec"
	"strconv"
	"strings"
	"time"
)

// positionWindow moves the window to the configured bounds and sets it
// always-on-top. Called after the window is created and visible.
func positionWindow(windowTitle string, b Bounds) {
	// Give the window time to appear
	time.Sleep(100 * time.Millisecond)

	b = clamp(b, getScreenSize())

	// Find window by title and move it
	output, err := exec.Command("xdotool", "search", "--name", windowTitle).Output()
	if err != nil {
		return
	}

	windowIDs := strings.Fields(string(output))
	if len(windowIDs) == 0 {
		return
	}
	windowID := windowIDs[0]

	exec.Command("xdotool", "windowmove", windowID, strconv.Itoa(b.X), strconv.Itoa(b.Y)).Run()

	// Try to set always-on-top using wmctrl
	if err := exec.Command("wmctrl", "-i", "-r", windowID, "-b", "add,above").Run(); err != nil {
		// wmctrl might not be installed, try xprop alternative
		exec.Command("xprop", "-id", windowID, "-f", "_NET_WM_STATE", "32a",
			"-set", "_NET_WM_STATE", "_NET_WM_STATE_ABOVE").Run()
	}
}

// getScreenSize returns the screen dimensions using xdotool.
func getScreenSize() (width, height int) {
	output, err := exec.Command("xdotool", "getdisplaygeometry").Output()
	if err != nil {
		return 0, 0
	}

	parts := strings.Fields(string(output))
	if len(parts) != 2 {
		return 0, 0
	}

	width, _ = strconv.Atoi(parts[0])
	height, _ = strconv.Atoi(parts[1])
	return width, height
}
