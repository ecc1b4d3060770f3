package render

import (
	"fmt"
	"strings"

	gl "github.com/go-gl/gl/v3.1/gles2"
)

// GLES2Backend implements Backend against an OpenGL ES 2.0 context. All
// methods must run on the thread that owns the context.
type GLES2Backend struct{}

// NewGLES2Backend returns the production GL backend.
func NewGLES2Backend() *GLES2Backend {
	return &GLES2Backend{}
}

func (b *GLES2Backend) Init() error {
	if err := gl.Init(); err != nil {
		return fmt.Errorf("failed to load GLES2 function pointers: %w", err)
	}
	return nil
}

func (b *GLES2Backend) DisableDither() {
	gl.Disable(gl.DITHER)
}

func (b *GLES2Backend) CompileProgram(vertexSrc, fragmentSrc string) (uint32, error) {
	vert, err := compileShader(vertexSrc, gl.VERTEX_SHADER)
	if err != nil {
		return 0, fmt.Errorf("vertex shader: %w", err)
	}
	defer gl.DeleteShader(vert)

	frag, err := compileShader(fragmentSrc, gl.FRAGMENT_SHADER)
	if err != nil {
		return 0, fmt.Errorf("fragment shader: %w", err)
	}
	defer gl.DeleteShader(frag)

	program := gl.CreateProgram()
	gl.AttachShader(program, vert)
	gl.AttachShader(program, frag)
	gl.LinkProgram(program)

	var status int32
	gl.GetProgramiv(program, gl.LINK_STATUS, &status)
	if status == gl.FALSE {
		var logLen int32
		gl.GetProgramiv(program, gl.INFO_LOG_LENGTH, &logLen)
		infoLog := strings.Repeat("\x00", int(logLen)+1)
		gl.GetProgramInfoLog(program, logLen, nil, gl.Str(infoLog))
		gl.DeleteProgram(program)
		return 0, fmt.Errorf("program link failed: %s", strings.TrimRight(infoLog, "\x00"))
	}
	return program, nil
}

func compileShader(src string, shaderType uint32) (uint32, error) {
	shader := gl.CreateShader(shaderType)
	csources, free := gl.Strs(src + "\x00")
	gl.ShaderSource(shader, 1, csources, nil)
	free()
	gl.CompileShader(shader)

	var status int32
	gl.GetShaderiv(shader, gl.COMPILE_STATUS, &status)
	if status == gl.FALSE {
		var logLen int32
		gl.GetShaderiv(shader, gl.INFO_LOG_LENGTH, &logLen)
		infoLog := strings.Repeat("\x00", int(logLen)+1)
		gl.GetShaderInfoLog(shader, logLen, nil, gl.Str(infoLog))
		gl.DeleteShader(shader)
		return 0, fmt.Errorf("compile failed: %s", strings.TrimRight(infoLog, "\x00"))
	}
	return shader, nil
}

func (b *GLES2Backend) DeleteProgram(program uint32) {
	gl.DeleteProgram(program)
}

func (b *GLES2Backend) AttribLocation(program uint32, name string) int32 {
	return gl.GetAttribLocation(program, gl.Str(name+"\x00"))
}

func (b *GLES2Backend) UniformLocation(program uint32, name string) int32 {
	return gl.GetUniformLocation(program, gl.Str(name+"\x00"))
}

func (b *GLES2Backend) CreateTexture(width, height int, linear bool) uint32 {
	var tex uint32
	gl.GenTextures(1, &tex)
	gl.BindTexture(gl.TEXTURE_2D, tex)

	filter := int32(gl.NEAREST)
	if linear {
		filter = gl.LINEAR
	}
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MIN_FILTER, filter)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MAG_FILTER, filter)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_S, gl.CLAMP_TO_EDGE)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_T, gl.CLAMP_TO_EDGE)

	gl.PixelStorei(gl.UNPACK_ALIGNMENT, 1)
	gl.TexImage2D(gl.TEXTURE_2D, 0, gl.RGBA, int32(width), int32(height), 0,
		gl.RGBA, gl.UNSIGNED_BYTE, nil)
	return tex
}

func (b *GLES2Backend) DeleteTexture(texture uint32) {
	gl.DeleteTextures(1, &texture)
}

func (b *GLES2Backend) UploadTexture(texture uint32, width, height int, pixels []byte) {
	gl.BindTexture(gl.TEXTURE_2D, texture)
	gl.PixelStorei(gl.UNPACK_ALIGNMENT, 1)
	gl.TexSubImage2D(gl.TEXTURE_2D, 0, 0, 0, int32(width), int32(height),
		gl.RGBA, gl.UNSIGNED_BYTE, gl.Ptr(pixels))
}

func (b *GLES2Backend) Viewport(width, height int) {
	gl.Viewport(0, 0, int32(width), int32(height))
}

func (b *GLES2Backend) Clear() {
	gl.ClearColor(0, 0, 0, 1)
	gl.Clear(gl.COLOR_BUFFER_BIT)
}

func (b *GLES2Backend) DrawTexturedQuad(program, texture uint32, posLoc, texLoc, samplerLoc int32, vertices []float32) {
	const stride = 4 * 4 // x, y, u, v as float32

	gl.UseProgram(program)
	gl.ActiveTexture(gl.TEXTURE0)
	gl.BindTexture(gl.TEXTURE_2D, texture)
	gl.Uniform1i(samplerLoc, 0)

	gl.EnableVertexAttribArray(uint32(posLoc))
	gl.VertexAttribPointer(uint32(posLoc), 2, gl.FLOAT, false, stride, gl.Ptr(vertices))
	gl.EnableVertexAttribArray(uint32(texLoc))
	gl.VertexAttribPointer(uint32(texLoc), 2, gl.FLOAT, false, stride, gl.Ptr(vertices[2:]))

	gl.DrawArrays(gl.TRIANGLE_STRIP, 0, 4)

	gl.DisableVertexAttribArray(uint32(posLoc))
	gl.DisableVertexAttribArray(uint32(texLoc))
}
