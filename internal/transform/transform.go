// Package transform provides the pixel-format, geometry and filter
// conversions applied to camera frames before display.
//
// All functions return owned Mats: the caller is responsible for closing the
// result, and no result aliases the input or any internal state.
package transform

import (
	"fmt"

	"github.com/camviz/edgeview/internal/logger"
	"gocv.io/x/gocv"
)

// Canny hysteresis thresholds on the 0-255 gradient magnitude scale.
const (
	cannyLowThreshold  = 100
	cannyHighThreshold = 200
)

// NV21FrameLen returns the byte length of an NV21 frame of the given
// luma-plane dimensions.
func NV21FrameLen(width, height int) int {
	return width * height * 3 / 2
}

// NV21ToBGR converts a planar NV21 (YUV 4:2:0) buffer into a packed 3-channel
// BGR Mat. The returned Mat owns its pixels; data may be reused by the caller
// as soon as the call returns.
func NV21ToBGR(data []byte, width, height int) (bgr gocv.Mat, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("nv21 conversion panicked (%dx%d): %v", width, height, r)
		}
	}()

	if width <= 0 || height <= 0 {
		return gocv.Mat{}, fmt.Errorf("invalid frame dimensions: %dx%d", width, height)
	}
	if width%2 != 0 || height%2 != 0 {
		return gocv.Mat{}, fmt.Errorf("nv21 requires even dimensions, got %dx%d", width, height)
	}
	if len(data) != NV21FrameLen(width, height) {
		return gocv.Mat{}, fmt.Errorf("nv21 buffer length mismatch: got %d, want %d for %dx%d",
			len(data), NV21FrameLen(width, height), width, height)
	}

	// The chroma plane rides below the luma plane, so the Mat wrapping the
	// raw buffer is height + height/2 rows tall.
	yuvHeight := height + height/2
	yuv, err := gocv.NewMatFromBytes(yuvHeight, width, gocv.MatTypeCV8UC1, data)
	if err != nil {
		return gocv.Mat{}, fmt.Errorf("failed to wrap nv21 buffer: %w", err)
	}
	defer yuv.Close()

	bgr = gocv.NewMat()
	gocv.CvtColor(yuv, &bgr, gocv.ColorYUVToBGRNV21)
	if bgr.Empty() {
		bgr.Close()
		return gocv.Mat{}, fmt.Errorf("nv21 conversion produced empty frame (%dx%d)", width, height)
	}
	return bgr, nil
}

// Rotate rotates src by angleDegrees, which must be one of 0, 90, 180 or 270.
// Unsupported angles log a warning and return an unrotated copy. The result
// is always a fresh Mat, including for angle 0, so callers own it.
func Rotate(src gocv.Mat, angleDegrees int) gocv.Mat {
	dst := gocv.NewMat()
	switch angleDegrees {
	case 0:
		dst.Close()
		return src.Clone()
	case 90:
		gocv.Rotate(src, &dst, gocv.Rotate90Clockwise)
	case 180:
		gocv.Rotate(src, &dst, gocv.Rotate180Clockwise)
	case 270:
		gocv.Rotate(src, &dst, gocv.Rotate90CounterClockwise)
	default:
		logger.WithComponent("transform").Warn().
			Int("angle", angleDegrees).
			Msg("Unsupported rotation angle, using unrotated frame")
		dst.Close()
		return src.Clone()
	}
	return dst
}

// GrayscaleDisplay converts src to grayscale and expands it back to three
// channels so every frame variant shares the same channel count at upload.
func GrayscaleDisplay(src gocv.Mat) (out gocv.Mat, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("grayscale conversion panicked (%dx%d): %v", src.Cols(), src.Rows(), r)
		}
	}()

	if src.Empty() {
		return gocv.Mat{}, fmt.Errorf("grayscale conversion: input frame is empty")
	}

	gray := gocv.NewMat()
	defer gray.Close()
	gocv.CvtColor(src, &gray, gocv.ColorBGRToGray)

	out = gocv.NewMat()
	gocv.CvtColor(gray, &out, gocv.ColorGrayToBGR)
	if out.Empty() {
		out.Close()
		return gocv.Mat{}, fmt.Errorf("grayscale conversion produced empty frame (%dx%d)", src.Cols(), src.Rows())
	}
	return out, nil
}

// DetectEdges runs Canny edge detection over src and returns the result
// expanded back to three channels. On any internal failure it returns an
// unmodified copy of the input: a stale-looking frame beats a dropped one in
// a live viewfinder.
func DetectEdges(src gocv.Mat) gocv.Mat {
	out, err := detectEdges(src)
	if err != nil {
		logger.WithComponent("transform").Error().
			Err(err).
			Int("width", src.Cols()).
			Int("height", src.Rows()).
			Msg("Edge detection failed, falling back to input frame")
		return src.Clone()
	}
	return out
}

func detectEdges(src gocv.Mat) (out gocv.Mat, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("edge detection panicked: %v", r)
		}
	}()

	if src.Empty() {
		return gocv.Mat{}, fmt.Errorf("edge detection: input frame is empty")
	}

	gray := gocv.NewMat()
	defer gray.Close()
	gocv.CvtColor(src, &gray, gocv.ColorBGRToGray)

	edges := gocv.NewMat()
	defer edges.Close()
	gocv.Canny(gray, &edges, cannyLowThreshold, cannyHighThreshold)

	out = gocv.NewMat()
	gocv.CvtColor(edges, &out, gocv.ColorGrayToBGR)
	if out.Empty() {
		out.Close()
		return gocv.Mat{}, fmt.Errorf("edge detection produced empty frame (%dx%d)", src.Cols(), src.Rows())
	}
	return out, nil
}
