package capture

import (
	"fmt"

	"gocv.io/x/gocv"

	"github.com/camviz/edgeview/internal/logger"
)

// WebcamSource reads BGR frames from a V4L2 device and repacks them as NV21,
// so the device path feeds the pipeline through the same raw-buffer contract
// as a real camera sensor.
type WebcamSource struct {
	deviceID int
	width    int
	height   int

	cap *gocv.VideoCapture
	bgr gocv.Mat
	buf []byte
}

// NewWebcamSource creates a source for the given capture device. Dimensions
// are requested from the driver at Start; the actual frame size may differ
// and is reported per grabbed frame.
func NewWebcamSource(deviceID, width, height int) (*WebcamSource, error) {
	if width <= 0 || height <= 0 || width%2 != 0 || height%2 != 0 {
		return nil, fmt.Errorf("webcam source requires positive even dimensions, got %dx%d", width, height)
	}
	return &WebcamSource{
		deviceID: deviceID,
		width:    width,
		height:   height,
	}, nil
}

func (s *WebcamSource) Start() error {
	vc, err := gocv.VideoCaptureDevice(s.deviceID)
	if err != nil {
		return fmt.Errorf("failed to open capture device %d: %w", s.deviceID, err)
	}
	vc.Set(gocv.VideoCaptureFrameWidth, float64(s.width))
	vc.Set(gocv.VideoCaptureFrameHeight, float64(s.height))

	s.cap = vc
	s.bgr = gocv.NewMat()

	logger.WithComponent("capture").Info().
		Int("device", s.deviceID).
		Int("width", s.width).
		Int("height", s.height).
		Msg("Webcam source started")
	return nil
}

func (s *WebcamSource) Grab() (Frame, error) {
	if s.cap == nil {
		return Frame{}, fmt.Errorf("webcam source not started")
	}
	if ok := s.cap.Read(&s.bgr); !ok || s.bgr.Empty() {
		return Frame{}, fmt.Errorf("failed to read frame from device %d", s.deviceID)
	}

	w, h := s.bgr.Cols(), s.bgr.Rows()
	if w%2 != 0 || h%2 != 0 {
		return Frame{}, fmt.Errorf("device delivered odd frame dimensions %dx%d", w, h)
	}

	nv21, err := bgrToNV21(s.bgr, s.buf)
	if err != nil {
		return Frame{}, err
	}
	s.buf = nv21
	return Frame{Data: s.buf, Width: w, Height: h}, nil
}

// bgrToNV21 converts a packed BGR Mat to NV21 bytes. OpenCV only emits the
// planar I420 layout, so the chroma planes are re-interleaved by hand into
// the VU pairs NV21 expects. buf is reused when it has the right size.
func bgrToNV21(bgr gocv.Mat, buf []byte) ([]byte, error) {
	w, h := bgr.Cols(), bgr.Rows()

	i420 := gocv.NewMat()
	defer i420.Close()
	gocv.CvtColor(bgr, &i420, gocv.ColorBGRToYUVI420)
	if i420.Empty() {
		return nil, fmt.Errorf("i420 conversion produced empty frame (%dx%d)", w, h)
	}

	src := i420.ToBytes()
	ySize := w * h
	cSize := ySize / 4
	if len(src) != ySize+2*cSize {
		return nil, fmt.Errorf("unexpected i420 buffer length %d for %dx%d", len(src), w, h)
	}

	if len(buf) != ySize+2*cSize {
		buf = make([]byte, ySize+2*cSize)
	}
	copy(buf, src[:ySize])

	uPlane := src[ySize : ySize+cSize]
	vPlane := src[ySize+cSize:]
	chroma := buf[ySize:]
	for i := 0; i < cSize; i++ {
		chroma[i*2] = vPlane[i]
		chroma[i*2+1] = uPlane[i]
	}
	return buf, nil
}

func (s *WebcamSource) Stop() error {
	if s.cap == nil {
		return nil
	}
	err := s.cap.Close()
	s.cap = nil
	s.bgr.Close()

	logger.WithComponent("capture").Info().
		Int("device", s.deviceID).
		Msg("Webcam source stopped")
	if err != nil {
		return fmt.Errorf("failed to close capture device %d: %w", s.deviceID, err)
	}
	return nil
}

func (s *WebcamSource) Name() string {
	return "webcam"
}
