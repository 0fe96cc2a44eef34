package focus

import (
	"runtime"

	"github.com/go-vgo/robotgo"
)

// Robot is the robotgo-backed Apps implementation: real window activation
// and synthesized keystrokes.
type Robot struct{}

// NewRobot returns the robotgo focus service.
func NewRobot() *Robot { return &Robot{} }

func (*Robot) Foreground() (App, bool) {
	pid := robotgo.GetPid()
	if pid <= 0 {
		return App{}, false
	}
	name, _ := robotgo.FindName(pid)
	return App{PID: pid, Name: name}, true
}

func (*Robot) Activate(app App) error {
	return robotgo.ActivePid(app.PID)
}

func (*Robot) IsForeground(app App) bool {
	return robotgo.GetPid() == app.PID
}

// Paste taps the platform paste chord: cmd+v on macOS, ctrl+v elsewhere.
func (*Robot) Paste() error {
	mod := "ctrl"
	if runtime.GOOS == "darwin" {
		mod = "cmd"
	}
	return robotgo.KeyTap("v", mod)
}
