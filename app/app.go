package app

import (
	"fmt"
	"time"

	//lint:ignore ST1001 Dot import is intentional for concise Tk widget DSL builders.
	. "modernc.org/tk9.0"

	"github.com/soocke/plaque-overlay/ui/presenter"
	"github.com/soocke/plaque-overlay/ui/theme"
	"github.com/soocke/plaque-overlay/ui/view"
)

const tick = 100 * time.Millisecond

// Window is the Tk status panel.
type Window struct {
	c       *AppContainer
	title   string
	width   int
	height  int
	afterID string

	root    *view.RootView
	loop    *presenter.Loop
	capture *presenter.CapturePresenter
}

// NewApp prepares the Tk main window for the container's components.
func NewApp(title string, width, height int, c *AppContainer) *Window {
	a := &Window{c: c, title: title, width: width, height: height}
	App.WmTitle(title)
	WmProtocol(App, "WM_DELETE_WINDOW", a.exitHandler)
	WmGeometry(App, fmt.Sprintf("%dx%d+100+100", width, height))
	return a
}

// Start builds the UI, starts the update loop and blocks until the window
// is closed. Components are shut down on return.
func (a *Window) Start() {
	defer a.c.Shutdown()
	theme.InitStyles()

	a.root = view.NewRootView(a.c.Config.Source, a.c.Logger)
	a.root.Build(a.c.Reference,
		func() { a.capture.Toggle() },
		func() { theme.ToggleDark() },
		a.exitHandler,
	)
	a.loop, a.capture = a.c.Wire(a.root, a.scheduleUpdate)

	a.scheduleUpdate()
	App.Wait()
}

func (a *Window) update() {
	defer func() {
		if r := recover(); r != nil {
			if a.c.Logger != nil {
				a.c.Logger.Error("ui tick panic", "error", r)
			}
			a.scheduleUpdate()
		}
	}()
	a.loop.Tick()
}

// scheduleUpdate queues the next tick on Tk's event loop thread.
func (a *Window) scheduleUpdate() {
	a.afterID = TclAfter(tick, a.update)
}

func (a *Window) exitHandler() {
	if a.afterID != "" {
		TclAfterCancel(a.afterID)
	}
	if a.capture != nil {
		a.capture.Disable()
	}
	Destroy(App)
}
