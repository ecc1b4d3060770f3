package output

import (
	"fmt"
	"image"

	"gocv.io/x/gocv"
	xdraw "golang.org/x/image/draw"
)

// PreviewImage converts a BGR frame Mat into an RGBA image scaled to the
// preview dimensions. Returns a fresh image every call; the Mat is left
// untouched.
func PreviewImage(frame gocv.Mat, width, height int) (*image.RGBA, error) {
	if frame.Empty() {
		return nil, fmt.Errorf("preview conversion: input frame is empty")
	}

	src, err := frame.ToImage()
	if err != nil {
		return nil, fmt.Errorf("failed to convert frame to image: %w", err)
	}

	if width <= 0 || height <= 0 {
		b := src.Bounds()
		width, height = b.Dx(), b.Dy()
	}

	dst := image.NewRGBA(image.Rect(0, 0, width, height))
	xdraw.ApproxBiLinear.Scale(dst, dst.Bounds(), src, src.Bounds(), xdraw.Src, nil)
	return dst, nil
}
