// Package output publishes rendered frames to observers outside the GL
// surface. The only implementation today is an MJPEG-over-HTTP preview
// stream, which lets a browser tab watch the pipeline without a GPU.
package output

import "image"

// Config describes the preview stream geometry.
type Config struct {
	Width  int
	Height int
	FPS    int
}

// Output consumes rendered frames.
type Output interface {
	Start() error
	Stop() error
	WriteFrame(frame *image.RGBA) error
	Name() string
	IsRunning() bool
}
