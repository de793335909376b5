package presenter

import (
	"testing"
)

type mockModel struct{ enabled bool }

func (m *mockModel) Enabled() bool { return m.enabled }
func (m *mockModel) SetEnabled(b bool) bool {
	changed := m.enabled != b
	m.enabled = b
	return changed
}

var _ CaptureModel = (*mockModel)(nil)

type mockService struct{ started, stopped int }

func (s *mockService) Start() { s.started++ }
func (s *mockService) Stop()  { s.stopped++ }

var _ LifecycleContract = (*mockService)(nil)

type mockHalter struct{ halted int }

func (h *mockHalter) Halt() { h.halted++ }

type mockCaptureView struct {
	reset, activeCalls int
	lastActive         bool
}

func (v *mockCaptureView) PreviewReset()           { v.reset++ }
func (v *mockCaptureView) SetCaptureActive(b bool) { v.activeCalls++; v.lastActive = b }

func TestCapturePresenter_EnableDisable_Idempotent(t *testing.T) {
	m := &mockModel{}
	svc := &mockService{}
	sess := &mockHalter{}
	view := &mockCaptureView{}
	p := NewCapturePresenter(m, svc, sess, view)

	p.Enable()
	if !m.Enabled() || svc.started != 1 || !view.lastActive || view.activeCalls != 1 {
		t.Fatalf("enable failed: enabled=%v started=%d activeCalls=%d lastActive=%v", m.Enabled(), svc.started, view.activeCalls, view.lastActive)
	}
	p.Enable()
	if svc.started != 1 || view.activeCalls != 1 {
		t.Fatalf("enable not idempotent: started=%d", svc.started)
	}

	p.Disable()
	if m.Enabled() || svc.stopped != 1 || sess.halted != 1 || view.reset != 1 || view.lastActive || view.activeCalls != 2 {
		t.Fatalf("disable failed: enabled=%v stopped=%d halted=%d reset=%d activeCalls=%d", m.Enabled(), svc.stopped, sess.halted, view.reset, view.activeCalls)
	}
	p.Disable()
	if svc.stopped != 1 || sess.halted != 1 || view.reset != 1 {
		t.Fatalf("disable not idempotent: stopped=%d halted=%d reset=%d", svc.stopped, sess.halted, view.reset)
	}
}

func TestCapturePresenter_Toggle(t *testing.T) {
	m := &mockModel{}
	svc := &mockService{}
	sess := &mockHalter{}
	view := &mockCaptureView{}
	p := NewCapturePresenter(m, svc, sess, view)
	p.Toggle()
	if !m.Enabled() || svc.started != 1 {
		t.Fatalf("toggle enable failed")
	}
	p.Toggle()
	if m.Enabled() || svc.stopped != 1 || sess.halted != 1 || view.reset != 1 {
		t.Fatalf("toggle disable failed")
	}
}

func TestCapturePresenter_NilDependenciesAreNoOps(t *testing.T) {
	var p *CapturePresenter
	p.Toggle()
	p = NewCapturePresenter(&mockModel{}, nil, nil, nil)
	p.Enable()
	p.Disable()
}
