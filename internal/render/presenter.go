package render

import (
	"fmt"
	"image"
	"sync/atomic"

	"gocv.io/x/gocv"

	"github.com/camviz/edgeview/internal/logger"
	"github.com/camviz/edgeview/internal/store"
)

// Pass-through textured-quad shaders. The fragment shader samples the frame
// texture directly; all mode and orientation behavior lives in the vertex
// data fed to the draw call.
const (
	vertexShaderSrc = `attribute vec4 a_Position;
attribute vec2 a_TexCoord;
varying vec2 v_TexCoord;
void main() {
    gl_Position = a_Position;
    v_TexCoord = a_TexCoord;
}
`

	fragmentShaderSrc = `precision mediump float;
varying vec2 v_TexCoord;
uniform sampler2D u_Texture;
void main() {
    gl_FragColor = texture2D(u_Texture, v_TexCoord);
}
`
)

// Options configures a Presenter.
type Options struct {
	// TextureWidth and TextureHeight fix the GPU texture size. Every frame
	// is scaled to these dimensions before upload.
	TextureWidth  int
	TextureHeight int

	// LinearFilter selects bilinear texture filtering instead of the
	// default nearest-neighbor sampling.
	LinearFilter bool

	// Orientation is the initial draw-time orientation.
	Orientation Orientation
}

// Presenter uploads the latest frame variant into a fixed-size texture and
// draws it as a fullscreen quad. Init, Resize, RenderFrame and Cleanup must
// all run on the GL thread; SetOrientation and the counters are safe from any
// goroutine.
//
// Every GPU-path failure degrades to skipping the frame. The presenter never
// panics out of RenderFrame: the previous texture contents simply stay on
// screen.
type Presenter struct {
	backend Backend
	frames  *store.Store

	texWidth  int
	texHeight int
	linear    bool

	orientation atomic.Int32

	program    uint32
	texture    uint32
	posLoc     int32
	texLoc     int32
	samplerLoc int32
	upload     []byte
	ready      bool

	framesRendered atomic.Uint64
	framesSkipped  atomic.Uint64
}

// NewPresenter creates a presenter reading frames from frames. Zero texture
// dimensions fall back to 1024x512.
func NewPresenter(backend Backend, frames *store.Store, opts Options) *Presenter {
	if opts.TextureWidth <= 0 || opts.TextureHeight <= 0 {
		opts.TextureWidth = 1024
		opts.TextureHeight = 512
	}
	p := &Presenter{
		backend:   backend,
		frames:    frames,
		texWidth:  opts.TextureWidth,
		texHeight: opts.TextureHeight,
		linear:    opts.LinearFilter,
	}
	p.orientation.Store(int32(opts.Orientation))
	return p
}

// SetOrientation changes the draw-time orientation. Takes effect on the next
// RenderFrame.
func (p *Presenter) SetOrientation(o Orientation) {
	p.orientation.Store(int32(o))
	logger.WithComponent("render").Info().
		Str("orientation", o.String()).
		Msg("Orientation changed")
}

// Orientation returns the current draw-time orientation.
func (p *Presenter) Orientation() Orientation {
	return Orientation(p.orientation.Load())
}

// Init builds the GPU resources. Safe to call again after Cleanup when a new
// surface comes up. On any failure the presenter logs and stays inert:
// RenderFrame becomes a no-op until a later Init succeeds.
func (p *Presenter) Init() {
	log := logger.WithComponent("render")

	p.ready = false

	if err := p.backend.Init(); err != nil {
		log.Error().Err(err).Msg("GL backend initialization failed, presenter inactive")
		return
	}
	p.backend.DisableDither()

	program, err := p.backend.CompileProgram(vertexShaderSrc, fragmentShaderSrc)
	if err != nil {
		log.Error().Err(err).Msg("Shader program build failed, presenter inactive")
		return
	}
	p.program = program

	p.posLoc = p.backend.AttribLocation(program, "a_Position")
	p.texLoc = p.backend.AttribLocation(program, "a_TexCoord")
	p.samplerLoc = p.backend.UniformLocation(program, "u_Texture")
	if p.posLoc < 0 || p.texLoc < 0 || p.samplerLoc < 0 {
		log.Error().
			Int32("a_Position", p.posLoc).
			Int32("a_TexCoord", p.texLoc).
			Int32("u_Texture", p.samplerLoc).
			Msg("Shader variable lookup failed, presenter inactive")
		p.backend.DeleteProgram(program)
		p.program = 0
		return
	}

	p.texture = p.backend.CreateTexture(p.texWidth, p.texHeight, p.linear)
	p.upload = make([]byte, p.texWidth*p.texHeight*4)
	p.ready = true

	log.Info().
		Int("texture_width", p.texWidth).
		Int("texture_height", p.texHeight).
		Bool("linear_filter", p.linear).
		Msg("Presenter initialized")
}

// Ready reports whether Init completed and RenderFrame will draw.
func (p *Presenter) Ready() bool {
	return p.ready
}

// Resize updates the GL viewport after a surface size change. The texture
// size is fixed; only the viewport follows the surface.
func (p *Presenter) Resize(width, height int) {
	if !p.ready {
		return
	}
	p.backend.Viewport(width, height)
	logger.WithComponent("render").Debug().
		Int("width", width).
		Int("height", height).
		Msg("Viewport resized")
}

// RenderFrame draws the variant selected by the store's current render mode.
// Called once per display frame on the GL thread. Before a successful Init,
// or after Cleanup, it is a no-op.
func (p *Presenter) RenderFrame() {
	if !p.ready {
		return
	}

	mode := p.frames.Mode()
	if err := p.renderFrame(mode); err != nil {
		p.framesSkipped.Add(1)
		logger.WithComponent("render").Error().
			Err(err).
			Str("mode", mode.String()).
			Msg("Frame skipped")
		return
	}
	p.framesRendered.Add(1)
}

func (p *Presenter) renderFrame(mode store.RenderMode) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("render panicked: %v", r)
		}
	}()

	p.backend.Clear()

	frame := p.frames.Latest(mode)
	defer frame.Close()
	if frame.Empty() {
		return fmt.Errorf("no frame available")
	}

	rgba, err := toRGBA(frame)
	if err != nil {
		return err
	}
	defer rgba.Close()

	if !rgba.IsContinuous() {
		cont := rgba.Clone()
		rgba.Close()
		rgba = cont
	}

	if rgba.Cols() != p.texWidth || rgba.Rows() != p.texHeight {
		scaled := gocv.NewMat()
		gocv.Resize(rgba, &scaled, image.Pt(p.texWidth, p.texHeight), 0, 0, gocv.InterpolationLinear)
		rgba.Close()
		rgba = scaled
	}

	pixels := rgba.ToBytes()
	if len(pixels) != len(p.upload) {
		return fmt.Errorf("upload size mismatch: got %d bytes, want %d", len(pixels), len(p.upload))
	}
	copy(p.upload, pixels)

	if mode == store.ModeBorderFix {
		p.clearBorder()
	}

	p.backend.UploadTexture(p.texture, p.texWidth, p.texHeight, p.upload)

	verts := quadVertices(p.Orientation(), mode == store.ModeInset, p.texWidth, p.texHeight)
	p.backend.DrawTexturedQuad(p.program, p.texture, p.posLoc, p.texLoc, p.samplerLoc, verts)
	return nil
}

// clearBorder blacks out the outermost pixel ring of the upload buffer, a
// CPU-side alternative to the half-texel coordinate inset.
func (p *Presenter) clearBorder() {
	setBlack := func(off int) {
		p.upload[off] = 0
		p.upload[off+1] = 0
		p.upload[off+2] = 0
		p.upload[off+3] = 255
	}
	rowBytes := p.texWidth * 4
	for x := 0; x < p.texWidth; x++ {
		setBlack(x * 4)
		setBlack((p.texHeight-1)*rowBytes + x*4)
	}
	for y := 0; y < p.texHeight; y++ {
		setBlack(y * rowBytes)
		setBlack(y*rowBytes + (p.texWidth-1)*4)
	}
}

// toRGBA normalizes a frame to 4-channel RGBA. The result is always a fresh
// Mat owned by the caller.
func toRGBA(frame gocv.Mat) (gocv.Mat, error) {
	out := gocv.NewMat()
	switch frame.Channels() {
	case 1:
		gocv.CvtColor(frame, &out, gocv.ColorGrayToBGRA)
	case 3:
		gocv.CvtColor(frame, &out, gocv.ColorBGRToRGBA)
	case 4:
		out.Close()
		out = frame.Clone()
	default:
		out.Close()
		return gocv.Mat{}, fmt.Errorf("unsupported channel count: %d", frame.Channels())
	}
	if out.Empty() {
		out.Close()
		return gocv.Mat{}, fmt.Errorf("channel normalization produced empty frame")
	}
	return out, nil
}

// Cleanup releases GPU resources. Idempotent; the presenter can be
// re-initialized afterwards.
func (p *Presenter) Cleanup() {
	if p.texture != 0 {
		p.backend.DeleteTexture(p.texture)
		p.texture = 0
	}
	if p.program != 0 {
		p.backend.DeleteProgram(p.program)
		p.program = 0
	}
	p.upload = nil
	p.ready = false
	logger.WithComponent("render").Info().Msg("Presenter cleaned up")
}

// FramesRendered returns the number of frames drawn since creation.
func (p *Presenter) FramesRendered() uint64 {
	return p.framesRendered.Load()
}

// FramesSkipped returns the number of frames dropped by the render path.
func (p *Presenter) FramesSkipped() uint64 {
	return p.framesSkipped.Load()
}
