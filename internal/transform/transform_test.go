package transform

import (
	"testing"

	"gocv.io/x/gocv"
)

// grayNV21 builds an NV21 buffer with uniform luma and neutral chroma.
func grayNV21(width, height int, luma byte) []byte {
	buf := make([]byte, NV21FrameLen(width, height))
	for i := 0; i < width*height; i++ {
		buf[i] = luma
	}
	for i := width * height; i < len(buf); i++ {
		buf[i] = 128
	}
	return buf
}

func TestNV21FrameLen(t *testing.T) {
	if got := NV21FrameLen(640, 480); got != 460800 {
		t.Errorf("NV21FrameLen(640, 480) = %d, want 460800", got)
	}
	if got := NV21FrameLen(4, 2); got != 12 {
		t.Errorf("NV21FrameLen(4, 2) = %d, want 12", got)
	}
}

func TestNV21ToBGRRejectsBadInput(t *testing.T) {
	cases := []struct {
		name   string
		data   []byte
		width  int
		height int
	}{
		{"zero dimensions", make([]byte, 12), 0, 0},
		{"negative width", make([]byte, 12), -4, 2},
		{"odd width", make([]byte, NV21FrameLen(6, 4)), 5, 4},
		{"odd height", make([]byte, NV21FrameLen(6, 4)), 6, 3},
		{"short buffer", make([]byte, 10), 4, 2},
		{"long buffer", make([]byte, 20), 4, 2},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			mat, err := NV21ToBGR(tc.data, tc.width, tc.height)
			if err == nil {
				mat.Close()
				t.Fatalf("expected error for %s", tc.name)
			}
		})
	}
}

func TestNV21ToBGRConvertsGrayFrame(t *testing.T) {
	const w, h = 64, 32
	data := grayNV21(w, h, 128)

	bgr, err := NV21ToBGR(data, w, h)
	if err != nil {
		t.Fatalf("NV21ToBGR failed: %v", err)
	}
	defer bgr.Close()

	if bgr.Cols() != w || bgr.Rows() != h {
		t.Errorf("got %dx%d, want %dx%d", bgr.Cols(), bgr.Rows(), w, h)
	}
	if bgr.Channels() != 3 {
		t.Errorf("got %d channels, want 3", bgr.Channels())
	}

	// Neutral chroma means all three channels should be close to the luma.
	b := bgr.GetVecbAt(h/2, w/2)
	for ch := 0; ch < 3; ch++ {
		diff := int(b[ch]) - 128
		if diff < -10 || diff > 10 {
			t.Errorf("channel %d = %d, want close to 128", ch, b[ch])
		}
	}
}

func TestNV21ToBGRDoesNotAliasInput(t *testing.T) {
	const w, h = 16, 8
	data := grayNV21(w, h, 200)

	bgr, err := NV21ToBGR(data, w, h)
	if err != nil {
		t.Fatalf("NV21ToBGR failed: %v", err)
	}
	defer bgr.Close()

	before := bgr.GetUCharAt3(0, 0, 0)
	for i := range data {
		data[i] = 0
	}
	after := bgr.GetUCharAt3(0, 0, 0)

	if before != after {
		t.Error("converted frame changed when input buffer was reused")
	}
}

func TestRotateDimensions(t *testing.T) {
	src := gocv.NewMatWithSize(480, 640, gocv.MatTypeCV8UC3)
	defer src.Close()

	cases := []struct {
		angle      int
		wantWidth  int
		wantHeight int
	}{
		{0, 640, 480},
		{90, 480, 640},
		{180, 640, 480},
		{270, 480, 640},
		{45, 640, 480}, // unsupported, falls back to unrotated
	}

	for _, tc := range cases {
		dst := Rotate(src, tc.angle)
		if dst.Cols() != tc.wantWidth || dst.Rows() != tc.wantHeight {
			t.Errorf("Rotate(%d): got %dx%d, want %dx%d",
				tc.angle, dst.Cols(), dst.Rows(), tc.wantWidth, tc.wantHeight)
		}
		dst.Close()
	}
}

func TestRotateRoundTrip(t *testing.T) {
	src := gocv.NewMatWithSizeFromScalar(gocv.NewScalar(10, 20, 30, 0), 32, 48, gocv.MatTypeCV8UC3)
	defer src.Close()

	for _, angle := range []int{0, 90, 180, 270} {
		forward := Rotate(src, angle)
		back := Rotate(forward, (360-angle)%360)
		forward.Close()

		if back.Cols() != src.Cols() || back.Rows() != src.Rows() {
			t.Errorf("round trip %d: got %dx%d, want %dx%d",
				angle, back.Cols(), back.Rows(), src.Cols(), src.Rows())
		}
		for ch := 0; ch < 3; ch++ {
			if got, want := back.GetUCharAt3(5, 7, ch), src.GetUCharAt3(5, 7, ch); got != want {
				t.Errorf("round trip %d: channel %d = %d, want %d", angle, ch, got, want)
			}
		}
		back.Close()
	}
}

func TestRotate180MovesPixels(t *testing.T) {
	src := gocv.NewMatWithSize(4, 4, gocv.MatTypeCV8UC3)
	defer src.Close()
	src.SetUCharAt3(0, 0, 0, 255)

	dst := Rotate(src, 180)
	defer dst.Close()

	if got := dst.GetUCharAt3(3, 3, 0); got != 255 {
		t.Errorf("pixel (0,0) should land at (3,3) after 180 rotation, got %d", got)
	}
}

func TestRotateReturnsOwnedCopyForZero(t *testing.T) {
	src := gocv.NewMatWithSize(4, 4, gocv.MatTypeCV8UC3)
	dst := Rotate(src, 0)
	src.Close()

	// dst must stay valid after the source is released.
	if dst.Empty() || dst.Cols() != 4 {
		t.Error("Rotate(0) result does not own its pixels")
	}
	dst.Close()
}

func TestGrayscaleDisplayEqualChannels(t *testing.T) {
	src := gocv.NewMatWithSizeFromScalar(gocv.NewScalar(40, 120, 200, 0), 8, 8, gocv.MatTypeCV8UC3)
	defer src.Close()

	gray, err := GrayscaleDisplay(src)
	if err != nil {
		t.Fatalf("GrayscaleDisplay failed: %v", err)
	}
	defer gray.Close()

	if gray.Channels() != 3 {
		t.Fatalf("got %d channels, want 3", gray.Channels())
	}
	v := gray.GetVecbAt(4, 4)
	if v[0] != v[1] || v[1] != v[2] {
		t.Errorf("grayscale pixel has unequal channels: %v", v)
	}
}

func TestGrayscaleDisplayEmptyInput(t *testing.T) {
	empty := gocv.NewMat()
	defer empty.Close()

	if _, err := GrayscaleDisplay(empty); err == nil {
		t.Error("expected error for empty input")
	}
}

func TestDetectEdgesBinaryOutput(t *testing.T) {
	// Black frame with a white square produces strong edges.
	src := gocv.NewMatWithSize(64, 64, gocv.MatTypeCV8UC3)
	defer src.Close()
	for y := 20; y < 44; y++ {
		for x := 20; x < 44; x++ {
			for ch := 0; ch < 3; ch++ {
				src.SetUCharAt3(y, x, ch, 255)
			}
		}
	}

	edges := DetectEdges(src)
	defer edges.Close()

	if edges.Channels() != 3 {
		t.Fatalf("got %d channels, want 3", edges.Channels())
	}
	if edges.Cols() != 64 || edges.Rows() != 64 {
		t.Fatalf("got %dx%d, want 64x64", edges.Cols(), edges.Rows())
	}

	found := false
	for y := 0; y < 64 && !found; y++ {
		for x := 0; x < 64 && !found; x++ {
			if edges.GetUCharAt3(y, x, 0) == 255 {
				found = true
			}
		}
	}
	if !found {
		t.Error("no edge pixels found around a high-contrast square")
	}
}

func TestDetectEdgesEmptyInputFallsBack(t *testing.T) {
	empty := gocv.NewMat()
	defer empty.Close()

	out := DetectEdges(empty)
	defer out.Close()
	if !out.Empty() {
		t.Error("fallback for empty input should be an empty copy")
	}
}
