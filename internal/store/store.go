// Package store holds the latest processed frame variants shared between the
// capture (producer) side and the render (consumer) side.
//
// A single mutex guards the three variant slots. Publishing swaps all three
// inside one critical section, so a reader never observes a torn mix of old
// and new pixels within a slot; the slots themselves are updated sequentially
// in that same section, which is the documented (and sufficient) consistency
// level for a display pipeline. The render mode is a plain atomic scalar with
// read-latest semantics.
package store

import (
	"fmt"
	"sync"
	"sync/atomic"

	"gocv.io/x/gocv"
)

// RenderMode selects which frame variant the consumer reads.
type RenderMode int32

const (
	ModeRawCamera RenderMode = iota
	ModeEdgeDetection
	ModeGrayscale
	ModeDefault
	ModeInset
	ModeBorderFix
)

// Dimensions of the placeholder returned while no real frame has been
// published yet.
const (
	FallbackWidth  = 640
	FallbackHeight = 480
)

func (m RenderMode) String() string {
	switch m {
	case ModeRawCamera:
		return "raw-camera"
	case ModeEdgeDetection:
		return "edge-detection"
	case ModeGrayscale:
		return "grayscale"
	case ModeDefault:
		return "default"
	case ModeInset:
		return "inset"
	case ModeBorderFix:
		return "border-fix"
	default:
		return fmt.Sprintf("unknown(%d)", int32(m))
	}
}

// ParseMode converts a mode name back into a RenderMode.
func ParseMode(s string) (RenderMode, error) {
	switch s {
	case "raw-camera":
		return ModeRawCamera, nil
	case "edge-detection":
		return ModeEdgeDetection, nil
	case "grayscale":
		return ModeGrayscale, nil
	case "default":
		return ModeDefault, nil
	case "inset":
		return ModeInset, nil
	case "border-fix":
		return ModeBorderFix, nil
	default:
		return ModeDefault, fmt.Errorf("unknown render mode: %q", s)
	}
}

// Store keeps the raw, grayscale and processed frame variants.
type Store struct {
	mu        sync.Mutex
	raw       gocv.Mat
	gray      gocv.Mat
	processed gocv.Mat

	mode atomic.Int32

	fallback      gocv.Mat
	fallbackAlive bool
}

// New creates an empty store defaulting to edge-detection mode.
func New() *Store {
	s := &Store{
		raw:       gocv.NewMat(),
		gray:      gocv.NewMat(),
		processed: gocv.NewMat(),
	}
	s.mode.Store(int32(ModeEdgeDetection))
	return s
}

// SetMode sets the render mode. Callable from any goroutine; a concurrent
// Latest sees either the old or the new value.
func (s *Store) SetMode(mode RenderMode) {
	s.mode.Store(int32(mode))
}

// Mode returns the current render mode.
func (s *Store) Mode() RenderMode {
	return RenderMode(s.mode.Load())
}

// PublishGroup replaces all three variant slots in one critical section.
// The store takes ownership of the arguments; callers must not touch them
// afterwards.
func (s *Store) PublishGroup(raw, gray, processed gocv.Mat) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.raw.Close()
	s.gray.Close()
	s.processed.Close()
	s.raw = raw
	s.gray = gray
	s.processed = processed
}

// Latest returns an owned copy of the variant the given mode resolves to.
// An empty slot resolves to the fixed fallback placeholder, so the result is
// never empty and the presenter always has something to draw.
func (s *Store) Latest(mode RenderMode) gocv.Mat {
	s.mu.Lock()
	defer s.mu.Unlock()

	var slot gocv.Mat
	switch mode {
	case ModeRawCamera:
		slot = s.raw
	case ModeGrayscale:
		slot = s.gray
	default:
		// Edge detection, default and the presentation-tweak modes all
		// draw the processed variant.
		slot = s.processed
	}

	if slot.Empty() {
		return s.fallbackFrame().Clone()
	}
	return slot.Clone()
}

// LatestCurrent reads the variant selected by the store's own mode scalar.
func (s *Store) LatestCurrent() gocv.Mat {
	return s.Latest(s.Mode())
}

// HasFrame reports whether any real frame has been published.
func (s *Store) HasFrame() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return !s.raw.Empty()
}

// Dimensions returns the width and height of the raw slot, or zeros if no
// frame has been published.
func (s *Store) Dimensions() (width, height int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.raw.Empty() {
		return 0, 0
	}
	return s.raw.Cols(), s.raw.Rows()
}

// Reset releases all variant slots. The store stays usable; the next Latest
// serves the fallback until a new frame is published.
func (s *Store) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.raw.Close()
	s.gray.Close()
	s.processed.Close()
	s.raw = gocv.NewMat()
	s.gray = gocv.NewMat()
	s.processed = gocv.NewMat()
}

// Close releases every Mat the store owns, including the fallback. The store
// stays usable afterwards: a later Latest rebuilds the fallback, a later
// publish refills the slots.
func (s *Store) Close() {
	s.Reset()
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.fallbackAlive {
		s.fallback.Close()
		s.fallbackAlive = false
	}
}

// fallbackFrame lazily builds the solid blue placeholder. Caller holds s.mu.
func (s *Store) fallbackFrame() gocv.Mat {
	if !s.fallbackAlive {
		// Blue in BGR channel order, deliberately loud so a placeholder on
		// screen is unmistakable.
		s.fallback = gocv.NewMatWithSizeFromScalar(
			gocv.NewScalar(255, 0, 0, 0),
			FallbackHeight, FallbackWidth, gocv.MatTypeCV8UC3)
		s.fallbackAlive = true
	}
	return s.fallback
}
