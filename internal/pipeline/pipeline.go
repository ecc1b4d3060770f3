// Package pipeline orchestrates the producer side: decode an incoming raw
// camera buffer, rotate it to match the sensor, derive the grayscale and
// edge-detected variants and publish all three into the shared store.
package pipeline

import (
	"fmt"
	"sync/atomic"

	"github.com/camviz/edgeview/internal/logger"
	"github.com/camviz/edgeview/internal/store"
	"github.com/camviz/edgeview/internal/transform"
)

// Pipeline turns raw NV21 buffers into published frame variants.
type Pipeline struct {
	store *store.Store

	framesIngested atomic.Uint64
	framesRejected atomic.Uint64
}

// New creates a pipeline publishing into st.
func New(st *store.Store) *Pipeline {
	return &Pipeline{store: st}
}

// Ingest processes one captured frame. data is an NV21 buffer the caller may
// reuse as soon as Ingest returns; width and height describe the luma plane;
// rotationDegrees compensates for sensor mounting and must be one of
// 0, 90, 180 or 270 (other values fall back to unrotated).
//
// A nil or empty buffer is a logged no-op. A format-conversion failure aborts
// the whole ingest and leaves the store untouched, so the consumer keeps
// rendering the previous frame. Grayscale and edge-detection failures degrade
// to a copy of the raw frame instead of aborting.
func (p *Pipeline) Ingest(data []byte, width, height, rotationDegrees int) error {
	log := logger.WithComponent("pipeline")

	if len(data) == 0 {
		log.Warn().Msg("Ingest called with empty frame buffer, skipping")
		p.framesRejected.Add(1)
		return nil
	}

	bgr, err := transform.NV21ToBGR(data, width, height)
	if err != nil {
		p.framesRejected.Add(1)
		log.Error().
			Err(err).
			Int("width", width).
			Int("height", height).
			Msg("Capture format conversion failed, dropping frame")
		return fmt.Errorf("capture format conversion: %w", err)
	}

	rotated := bgr
	if rotationDegrees != 0 {
		rotated = transform.Rotate(bgr, rotationDegrees)
		bgr.Close()
	}

	raw := rotated.Clone()

	gray, err := transform.GrayscaleDisplay(rotated)
	if err != nil {
		log.Error().
			Err(err).
			Int("width", rotated.Cols()).
			Int("height", rotated.Rows()).
			Msg("Grayscale conversion failed, falling back to raw frame")
		gray = rotated.Clone()
	}

	processed := transform.DetectEdges(rotated)
	rotated.Close()

	// The store owns the Mats once published; read dimensions first.
	outWidth, outHeight := raw.Cols(), raw.Rows()
	p.store.PublishGroup(raw, gray, processed)
	p.framesIngested.Add(1)

	log.Debug().
		Int("width", outWidth).
		Int("height", outHeight).
		Int("rotation", rotationDegrees).
		Msg("Frame variants published")
	return nil
}

// FramesIngested returns the number of frames successfully published.
func (p *Pipeline) FramesIngested() uint64 {
	return p.framesIngested.Load()
}

// FramesRejected returns the number of frames dropped before publish.
func (p *Pipeline) FramesRejected() uint64 {
	return p.framesRejected.Load()
}
