// Package session owns one camera-to-display pipeline instance: the frame
// store, the ingest pipeline and the GPU presenter, exposed through a single
// object so multiple independent pipelines can coexist in one process.
package session

import (
	"github.com/camviz/edgeview/internal/logger"
	"github.com/camviz/edgeview/internal/pipeline"
	"github.com/camviz/edgeview/internal/render"
	"github.com/camviz/edgeview/internal/store"
)

// Options configures a Session.
type Options struct {
	// RotationDegrees is the pixel rotation applied to every ingested
	// frame. One of 0, 90, 180 or 270.
	RotationDegrees int

	// Render configures the GPU presenter.
	Render render.Options
}

// Stats is a point-in-time snapshot of session counters.
type Stats struct {
	FramesIngested uint64 `json:"frames_ingested"`
	FramesRejected uint64 `json:"frames_rejected"`
	FramesRendered uint64 `json:"frames_rendered"`
	FramesSkipped  uint64 `json:"frames_skipped"`
	HasFrame       bool   `json:"has_frame"`
	FrameWidth     int    `json:"frame_width"`
	FrameHeight    int    `json:"frame_height"`
	RenderMode     string `json:"render_mode"`
	Orientation    string `json:"orientation"`
}

// Session is the top-level pipeline object. The producer side (Ingest) and
// the consumer side (the OnSurface*/OnDrawFrame lifecycle) run on different
// goroutines; mode and orientation setters are safe from any goroutine.
type Session struct {
	frames    *store.Store
	pipeline  *pipeline.Pipeline
	presenter *render.Presenter

	rotationDegrees int
}

// New builds a session drawing through the given GPU backend.
func New(backend render.Backend, opts Options) *Session {
	frames := store.New()
	return &Session{
		frames:          frames,
		pipeline:        pipeline.New(frames),
		presenter:       render.NewPresenter(backend, frames, opts.Render),
		rotationDegrees: opts.RotationDegrees,
	}
}

// Ingest feeds one NV21 buffer through the pipeline. Called from the capture
// goroutine.
func (s *Session) Ingest(data []byte, width, height int) error {
	return s.pipeline.Ingest(data, width, height, s.rotationDegrees)
}

// SetRenderMode switches which frame variant is displayed. Takes effect on
// the next drawn frame.
func (s *Session) SetRenderMode(mode store.RenderMode) {
	s.frames.SetMode(mode)
	logger.WithComponent("session").Info().
		Str("mode", mode.String()).
		Msg("Render mode changed")
}

// RenderMode returns the current render mode.
func (s *Session) RenderMode() store.RenderMode {
	return s.frames.Mode()
}

// SetOrientation switches the draw-time orientation.
func (s *Session) SetOrientation(o render.Orientation) {
	s.presenter.SetOrientation(o)
}

// Orientation returns the current draw-time orientation.
func (s *Session) Orientation() render.Orientation {
	return s.presenter.Orientation()
}

// Surface lifecycle. All four run on the GL thread.

// OnSurfaceCreated builds the GPU resources for a new surface.
func (s *Session) OnSurfaceCreated() {
	s.presenter.Init()
}

// OnSurfaceResized follows a surface size change.
func (s *Session) OnSurfaceResized(width, height int) {
	s.presenter.Resize(width, height)
}

// OnDrawFrame renders the latest frame variant. A no-op before
// OnSurfaceCreated or after OnSurfaceDestroyed.
func (s *Session) OnDrawFrame() {
	s.presenter.RenderFrame()
}

// OnSurfaceDestroyed releases the GPU resources. The session itself stays
// usable; a later OnSurfaceCreated rebuilds them.
func (s *Session) OnSurfaceDestroyed() {
	s.presenter.Cleanup()
}

// Frames exposes the underlying store for read-side consumers such as the
// preview stream.
func (s *Session) Frames() *store.Store {
	return s.frames
}

// Stats returns a snapshot of the session counters.
func (s *Session) Stats() Stats {
	width, height := s.frames.Dimensions()
	return Stats{
		FramesIngested: s.pipeline.FramesIngested(),
		FramesRejected: s.pipeline.FramesRejected(),
		FramesRendered: s.presenter.FramesRendered(),
		FramesSkipped:  s.presenter.FramesSkipped(),
		HasFrame:       s.frames.HasFrame(),
		FrameWidth:     width,
		FrameHeight:    height,
		RenderMode:     s.frames.Mode().String(),
		Orientation:    s.presenter.Orientation().String(),
	}
}

// Reset drops all published frames. The next draw shows the placeholder
// until a new frame arrives.
func (s *Session) Reset() {
	s.frames.Reset()
	logger.WithComponent("session").Info().Msg("Session reset")
}

// Close releases everything the session owns. The GL resources must already
// have been released via OnSurfaceDestroyed on the GL thread.
func (s *Session) Close() {
	s.frames.Close()
}
