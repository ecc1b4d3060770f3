package commands

import (
	"testing"
	"time"

	"github.com/camviz/edgeview/internal/capture"
	"github.com/camviz/edgeview/internal/output"
	"github.com/camviz/edgeview/internal/session"
)

type nopBackend struct{}

func (nopBackend) Init() error                                { return nil }
func (nopBackend) DisableDither()                             {}
func (nopBackend) CompileProgram(v, f string) (uint32, error) { return 1, nil }
func (nopBackend) DeleteProgram(p uint32)                     {}
func (nopBackend) AttribLocation(p uint32, n string) int32    { return 0 }
func (nopBackend) UniformLocation(p uint32, n string) int32   { return 0 }
func (nopBackend) CreateTexture(w, h int, linear bool) uint32 { return 2 }
func (nopBackend) DeleteTexture(t uint32)                     {}
func (nopBackend) UploadTexture(t uint32, w, h int, p []byte) {}
func (nopBackend) Viewport(w, h int)                          {}
func (nopBackend) Clear()                                     {}
func (nopBackend) DrawTexturedQuad(p, t uint32, a, b, c int32, v []float32) {
}

// waitForReturn fails the test if fn does not return shortly after stop is
// closed.
func waitForReturn(t *testing.T, name string, stop chan struct{}, fn func()) {
	t.Helper()

	done := make(chan struct{})
	go func() {
		defer close(done)
		fn()
	}()

	time.Sleep(20 * time.Millisecond)
	close(stop)

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatalf("%s did not return after stop", name)
	}
}

func TestCaptureLoopStopsCleanly(t *testing.T) {
	sess := session.New(nopBackend{}, session.Options{})
	defer sess.Close()

	source, err := capture.NewPatternSource(64, 32)
	if err != nil {
		t.Fatalf("NewPatternSource failed: %v", err)
	}
	if err := source.Start(); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	defer source.Stop()

	stop := make(chan struct{})
	waitForReturn(t, "captureLoop", stop, func() {
		captureLoop(sess, source, 100, stop)
	})
}

func TestPreviewLoopStopsCleanly(t *testing.T) {
	sess := session.New(nopBackend{}, session.Options{})
	defer sess.Close()

	preview := output.NewMJPEGOutput(output.Config{Width: 64, Height: 32, FPS: 100})
	if err := preview.Start(); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	defer preview.Stop()

	stop := make(chan struct{})
	waitForReturn(t, "previewLoop", stop, func() {
		previewLoop(sess, preview, 100, 64, 32, stop)
	})
}

func TestRenderLoopStopsCleanly(t *testing.T) {
	sess := session.New(nopBackend{}, session.Options{})
	defer sess.Close()

	stop := make(chan struct{})
	waitForReturn(t, "renderLoop", stop, func() {
		renderLoop(sess, 100, stop)
	})
}
