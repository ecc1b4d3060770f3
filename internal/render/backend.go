// Package render presents the latest stored frame variant on a GPU surface.
//
// The Presenter drives a small set of GL operations through the Backend
// interface so the drawing logic stays testable without a GL context.
package render

// Backend abstracts the GPU operations the presenter needs. The production
// implementation is GLES2; tests substitute a recording fake.
type Backend interface {
	// Init loads the GL function pointers. Must be called with the GL
	// context current before any other method.
	Init() error

	// DisableDither turns off framebuffer dithering for exact pixel output.
	DisableDither()

	// CompileProgram builds and links a shader program from GLSL sources.
	CompileProgram(vertexSrc, fragmentSrc string) (uint32, error)
	DeleteProgram(program uint32)

	// AttribLocation and UniformLocation resolve shader variable handles.
	// Both return a negative value when the name is not found.
	AttribLocation(program uint32, name string) int32
	UniformLocation(program uint32, name string) int32

	// CreateTexture allocates an immutable-size RGBA texture with the given
	// filtering and clamp-to-edge wrapping.
	CreateTexture(width, height int, linear bool) uint32
	DeleteTexture(texture uint32)

	// UploadTexture overwrites the full texture contents. pixels must hold
	// exactly width*height*4 bytes of RGBA data.
	UploadTexture(texture uint32, width, height int, pixels []byte)

	Viewport(width, height int)
	Clear()

	// DrawTexturedQuad renders an interleaved [x, y, u, v] triangle strip
	// sampling the given texture through the given program.
	DrawTexturedQuad(program, texture uint32, posLoc, texLoc, samplerLoc int32, vertices []float32)
}
