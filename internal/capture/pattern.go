package capture

import (
	"fmt"

	"github.com/camviz/edgeview/internal/logger"
)

// PatternSource generates a deterministic synthetic NV21 test pattern: a
// luma gradient with a moving vertical bar over colored quadrants. It needs
// no hardware, which makes it the default source and the one tests use.
type PatternSource struct {
	width   int
	height  int
	frame   uint64
	buf     []byte
	started bool
}

// NewPatternSource creates a generator for the given luma-plane dimensions.
// Dimensions must be positive and even, as NV21 requires.
func NewPatternSource(width, height int) (*PatternSource, error) {
	if width <= 0 || height <= 0 || width%2 != 0 || height%2 != 0 {
		return nil, fmt.Errorf("pattern source requires positive even dimensions, got %dx%d", width, height)
	}
	return &PatternSource{
		width:  width,
		height: height,
		buf:    make([]byte, frameLen(width, height)),
	}, nil
}

func (s *PatternSource) Start() error {
	s.started = true
	logger.WithComponent("capture").Info().
		Int("width", s.width).
		Int("height", s.height).
		Msg("Pattern source started")
	return nil
}

func (s *PatternSource) Grab() (Frame, error) {
	if !s.started {
		return Frame{}, fmt.Errorf("pattern source not started")
	}

	s.fill()
	s.frame++
	return Frame{Data: s.buf, Width: s.width, Height: s.height}, nil
}

// fill writes the current pattern into s.buf. The bar advances two luma
// columns per frame so edge detection always has strong verticals to find.
func (s *PatternSource) fill() {
	w, h := s.width, s.height
	barX := int(s.frame*2) % w
	barWidth := w / 16
	if barWidth < 2 {
		barWidth = 2
	}

	// Luma plane: horizontal gradient with a bright moving bar.
	for y := 0; y < h; y++ {
		row := y * w
		for x := 0; x < w; x++ {
			v := byte(x * 255 / w)
			if dx := (x - barX + w) % w; dx < barWidth {
				v = 235
			}
			s.buf[row+x] = v
		}
	}

	// Chroma plane: interleaved VU at quarter resolution, one colored
	// quadrant pair so the raw view is visibly not grayscale.
	chromaBase := w * h
	for cy := 0; cy < h/2; cy++ {
		row := chromaBase + cy*w
		for cx := 0; cx < w/2; cx++ {
			v, u := byte(128), byte(128)
			if cy < h/4 != (cx < w/4) {
				v, u = 170, 90
			}
			s.buf[row+cx*2] = v
			s.buf[row+cx*2+1] = u
		}
	}
}

func (s *PatternSource) Stop() error {
	s.started = false
	logger.WithComponent("capture").Info().Msg("Pattern source stopped")
	return nil
}

func (s *PatternSource) Name() string {
	return "pattern"
}
