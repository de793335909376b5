package presenter

// CaptureModel provides enabled state access.
type CaptureModel interface {
	Enabled() bool
	SetEnabled(bool) bool
}

// LifecycleContract narrows what presenter needs from the capture layer.
type LifecycleContract interface {
	Start()
	Stop()
}

// CaptureSession is told to halt when capture stops so playback pauses.
type CaptureSession interface{ Halt() }

// CaptureView updates UI elements affected by capture toggling.
type CaptureView interface {
	PreviewReset()
	SetCaptureActive(bool)
}

// CapturePresenter owns presentation logic for toggling capture state.
type CapturePresenter struct {
	model   CaptureModel
	service LifecycleContract
	session CaptureSession
	view    CaptureView
}

func NewCapturePresenter(model CaptureModel, service LifecycleContract, session CaptureSession, view CaptureView) *CapturePresenter {
	return &CapturePresenter{model: model, service: service, session: session, view: view}
}

func (c *CapturePresenter) ready() bool {
	return c != nil && c.model != nil && c.service != nil && c.view != nil && c.session != nil
}

// Enable starts the capture service. Idempotent.
func (c *CapturePresenter) Enable() {
	if !c.ready() || c.model.Enabled() {
		return
	}
	c.service.Start()
	c.model.SetEnabled(true)
	c.view.SetCaptureActive(true)
}

// Disable stops the capture service, halts tracking and resets the preview. Idempotent.
func (c *CapturePresenter) Disable() {
	if !c.ready() || !c.model.Enabled() {
		return
	}
	c.service.Stop()
	c.model.SetEnabled(false)
	c.view.PreviewReset()
	c.session.Halt()
	c.view.SetCaptureActive(false)
}

// Toggle flips enabled state delegating to Enable/Disable.
func (c *CapturePresenter) Toggle() {
	if !c.ready() {
		return
	}
	if c.model.Enabled() {
		c.Disable()
		return
	}
	c.Enable()
}
