// Package capture provides frame sources feeding the ingest pipeline. Every
// source hands out raw NV21 buffers, the same wire format a camera sensor
// delivers, so the pipeline exercises identical code regardless of origin.
package capture

import "github.com/camviz/edgeview/internal/transform"

// Frame is one captured NV21 buffer. Data is owned by the source and only
// valid until the next Grab call; callers needing to keep it must copy.
type Frame struct {
	Data   []byte
	Width  int
	Height int
}

// Source produces NV21 frames.
type Source interface {
	// Start acquires the underlying device or generator.
	Start() error

	// Grab blocks until the next frame is available and returns it.
	Grab() (Frame, error)

	// Stop releases the source. Grab must not be called afterwards.
	Stop() error

	// Name identifies the source kind for logs and stats.
	Name() string
}

// frameLen is a convenience alias used by the source implementations.
func frameLen(width, height int) int {
	return transform.NV21FrameLen(width, height)
}
