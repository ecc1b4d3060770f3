package session

import (
	"testing"

	"github.com/camviz/edgeview/internal/capture"
	"github.com/camviz/edgeview/internal/render"
	"github.com/camviz/edgeview/internal/store"
	"github.com/camviz/edgeview/internal/transform"
)

// nopBackend satisfies render.Backend without a GL context.
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

func newTestSession(t *testing.T, opts Options) *Session {
	t.Helper()
	s := New(nopBackend{}, opts)
	t.Cleanup(s.Close)
	return s
}

func patternNV21(width, height int) []byte {
	buf := make([]byte, transform.NV21FrameLen(width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			buf[y*width+x] = byte((x + y) % 256)
		}
	}
	for i := width * height; i < len(buf); i++ {
		buf[i] = 128
	}
	return buf
}

func TestIngestThenStats(t *testing.T) {
	s := newTestSession(t, Options{})

	if err := s.Ingest(patternNV21(64, 32), 64, 32); err != nil {
		t.Fatalf("Ingest failed: %v", err)
	}

	stats := s.Stats()
	if stats.FramesIngested != 1 {
		t.Errorf("FramesIngested = %d, want 1", stats.FramesIngested)
	}
	if !stats.HasFrame {
		t.Error("HasFrame false after ingest")
	}
	if stats.FrameWidth != 64 || stats.FrameHeight != 32 {
		t.Errorf("frame = %dx%d, want 64x32", stats.FrameWidth, stats.FrameHeight)
	}
}

func TestSessionRotation(t *testing.T) {
	s := newTestSession(t, Options{RotationDegrees: 90})

	if err := s.Ingest(patternNV21(64, 32), 64, 32); err != nil {
		t.Fatalf("Ingest failed: %v", err)
	}

	stats := s.Stats()
	if stats.FrameWidth != 32 || stats.FrameHeight != 64 {
		t.Errorf("rotated frame = %dx%d, want 32x64", stats.FrameWidth, stats.FrameHeight)
	}
}

func TestModeAndOrientationSwitching(t *testing.T) {
	s := newTestSession(t, Options{})

	s.SetRenderMode(store.ModeGrayscale)
	if s.RenderMode() != store.ModeGrayscale {
		t.Errorf("RenderMode = %v, want grayscale", s.RenderMode())
	}

	s.SetOrientation(render.OrientationRotated270)
	if s.Orientation() != render.OrientationRotated270 {
		t.Errorf("Orientation = %v, want rotated-270", s.Orientation())
	}

	stats := s.Stats()
	if stats.RenderMode != "grayscale" {
		t.Errorf("stats mode = %q, want grayscale", stats.RenderMode)
	}
	if stats.Orientation != "rotated-270" {
		t.Errorf("stats orientation = %q, want rotated-270", stats.Orientation)
	}
}

func TestSurfaceLifecycle(t *testing.T) {
	s := newTestSession(t, Options{})

	// Draw before surface creation must be harmless.
	s.OnDrawFrame()

	s.OnSurfaceCreated()
	s.OnSurfaceResized(800, 600)

	if err := s.Ingest(patternNV21(64, 32), 64, 32); err != nil {
		t.Fatalf("Ingest failed: %v", err)
	}
	s.OnDrawFrame()

	if got := s.Stats().FramesRendered; got != 1 {
		t.Errorf("FramesRendered = %d, want 1", got)
	}

	s.OnSurfaceDestroyed()
	s.OnDrawFrame()
	if got := s.Stats().FramesRendered; got != 1 {
		t.Errorf("FramesRendered after destroy = %d, want still 1", got)
	}
}

func TestPatternSourceRotatedScenario(t *testing.T) {
	source, err := capture.NewPatternSource(640, 480)
	if err != nil {
		t.Fatalf("NewPatternSource failed: %v", err)
	}
	if err := source.Start(); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	defer source.Stop()

	s := newTestSession(t, Options{RotationDegrees: 90})

	frame, err := source.Grab()
	if err != nil {
		t.Fatalf("Grab failed: %v", err)
	}
	if err := s.Ingest(frame.Data, frame.Width, frame.Height); err != nil {
		t.Fatalf("Ingest failed: %v", err)
	}

	// 90 degree rotation swaps the 640x480 pattern to 480x640.
	stats := s.Stats()
	if stats.FrameWidth != 480 || stats.FrameHeight != 640 {
		t.Fatalf("published frame = %dx%d, want 480x640", stats.FrameWidth, stats.FrameHeight)
	}

	for _, mode := range []store.RenderMode{store.ModeRawCamera, store.ModeGrayscale, store.ModeEdgeDetection} {
		variant := s.Frames().Latest(mode)
		if variant.Cols() != 480 || variant.Rows() != 640 {
			t.Errorf("%v variant = %dx%d, want 480x640", mode, variant.Cols(), variant.Rows())
		}
		variant.Close()
	}

	gray := s.Frames().Latest(store.ModeGrayscale)
	px := gray.GetVecbAt(320, 240)
	if px[0] != px[1] || px[1] != px[2] {
		t.Errorf("grayscale pixel has unequal channels: %v", px)
	}
	gray.Close()

	// Edge output is essentially binary: Canny emits 0 or 255 and the
	// channel expansion preserves that.
	edges := s.Frames().Latest(store.ModeEdgeDetection)
	defer edges.Close()

	binary, lit, total := 0, 0, 0
	for y := 0; y < edges.Rows(); y += 4 {
		for x := 0; x < edges.Cols(); x += 4 {
			v := edges.GetUCharAt3(y, x, 0)
			if v == 0 || v == 255 {
				binary++
			}
			if v == 255 {
				lit++
			}
			total++
		}
	}
	if float64(binary)/float64(total) < 0.99 {
		t.Errorf("edge output not binary: %d of %d sampled pixels are 0 or 255", binary, total)
	}
	if lit == 0 {
		t.Error("edge output has no edge pixels for a high-contrast pattern")
	}
}

func TestResetDropsFrames(t *testing.T) {
	s := newTestSession(t, Options{})

	if err := s.Ingest(patternNV21(64, 32), 64, 32); err != nil {
		t.Fatalf("Ingest failed: %v", err)
	}
	s.Reset()

	if s.Stats().HasFrame {
		t.Error("HasFrame true after Reset")
	}
}
