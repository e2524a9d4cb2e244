// Package renderer draws the cloth, the sphere colliders and the ground grid
// with OpenGL 4.1 core.
package renderer

import (
	"fmt"
	"unsafe"

	"github.com/go-gl/gl/v4.1-core/gl"
	"go.uber.org/zap"

	"github.com/Faultbox/clothsim/internal/engine/shader"
	"github.com/Faultbox/clothsim/internal/logger"
	"github.com/Faultbox/clothsim/pkg/math"
	"github.com/Faultbox/clothsim/pkg/mesh"
)

// Config holds renderer configuration.
type Config struct {
	Width  int
	Height int
}

// Colours used by the viewer.
var (
	ClothFront   = math.Vec3{X: 0.9, Y: 0.35, Z: 0.2}
	ClothBack    = math.Vec3{X: 0.85, Y: 0.7, Z: 0.3}
	EdgeColor    = math.Vec3{X: 0.1, Y: 0.1, Z: 0.1}
	SphereColor  = math.Vec3{X: 0.6, Y: 0.6, Z: 0.65}
	InsideColor  = math.Vec3{X: 0.3, Y: 0.45, Z: 0.7}
	GrabbedColor = math.Vec3{X: 0.95, Y: 0.85, Z: 0.3}
	GroundColor  = math.Vec3{X: 0.45, Y: 0.45, Z: 0.45}
)

const (
	groundSize     = 20
	sphereSlices   = 32
	sphereStacks   = 16
	backgroundGray = 0x22 / 255.0
)

// SphereDraw is one sphere to draw this frame.
type SphereDraw struct {
	Center math.Vec3
	Radius float32
	Color  math.Vec3
	Wire   bool // inside-mode containers are drawn as wireframe
}

// Frame is everything Draw needs besides the cloth buffers.
type Frame struct {
	ViewProj  math.Mat4
	ShowEdges bool
	Spheres   []SphereDraw
}

// buffers is a VAO with a position and a normal stream.
type buffers struct {
	vao, pos, nrm, ebo uint32
	count              int32
}

// Renderer handles all OpenGL rendering.
type Renderer struct {
	config Config

	lit  *shader.Program
	flat *shader.Program

	cloth     buffers
	edges     buffers // shares the cloth streams
	normals   []float32
	triangles []int32

	sphere buffers
	ground buffers

	log *zap.Logger
}

// New creates a new renderer.
// IMPORTANT: Must be called AFTER OpenGL context is created!
func New(cfg Config) (*Renderer, error) {
	r := &Renderer{
		config: cfg,
		log:    logger.Named("renderer"),
	}

	if err := gl.Init(); err != nil {
		return nil, fmt.Errorf("failed to initialize OpenGL: %w", err)
	}

	version := gl.GoStr(gl.GetString(gl.VERSION))
	rendererName := gl.GoStr(gl.GetString(gl.RENDERER))
	r.log.Info("OpenGL initialized",
		zap.String("version", version),
		zap.String("renderer", rendererName),
	)

	gl.Enable(gl.DEPTH_TEST)
	gl.DepthFunc(gl.LESS)
	gl.Enable(gl.MULTISAMPLE)
	gl.ClearColor(backgroundGray, backgroundGray, backgroundGray, 1.0)

	var err error
	if r.lit, err = shader.New(litVertexShader, litFragmentShader); err != nil {
		return nil, fmt.Errorf("lit shader: %w", err)
	}
	if r.flat, err = shader.New(flatVertexShader, flatFragmentShader); err != nil {
		r.lit.Delete()
		return nil, fmt.Errorf("flat shader: %w", err)
	}

	r.createSphere()
	r.createGround()
	gl.Viewport(0, 0, int32(cfg.Width), int32(cfg.Height))

	return r, nil
}

// Close cleans up renderer resources.
func (r *Renderer) Close() {
	r.log.Debug("closing renderer")
	for _, b := range []*buffers{&r.cloth, &r.sphere, &r.ground} {
		b.delete()
	}
	if r.edges.vao != 0 {
		gl.DeleteVertexArrays(1, &r.edges.vao)
		gl.DeleteBuffers(1, &r.edges.ebo)
	}
	r.lit.Delete()
	r.flat.Delete()
}

func (b *buffers) delete() {
	if b.vao != 0 {
		gl.DeleteVertexArrays(1, &b.vao)
	}
	for _, id := range []*uint32{&b.pos, &b.nrm, &b.ebo} {
		if *id != 0 {
			gl.DeleteBuffers(1, id)
		}
	}
	*b = buffers{}
}

// Resize handles window resize.
func (r *Renderer) Resize(width, height int) {
	r.config.Width = width
	r.config.Height = height
	gl.Viewport(0, 0, int32(width), int32(height))
	r.log.Debug("renderer resized",
		zap.Int("width", width),
		zap.Int("height", height),
	)
}

// Aspect returns width / height of the viewport.
func (r *Renderer) Aspect() float32 {
	if r.config.Height == 0 {
		return 1
	}
	return float32(r.config.Width) / float32(r.config.Height)
}

// SetCloth uploads the cloth topology. Positions follow via UpdateCloth.
func (r *Renderer) SetCloth(triangles, edges []int32, numVertices int) {
	r.cloth.delete()
	if r.edges.vao != 0 {
		gl.DeleteVertexArrays(1, &r.edges.vao)
		gl.DeleteBuffers(1, &r.edges.ebo)
		r.edges = buffers{}
	}

	r.triangles = triangles
	r.normals = make([]float32, 3*numVertices)

	size := 3 * numVertices * 4
	gl.GenBuffers(1, &r.cloth.pos)
	gl.BindBuffer(gl.ARRAY_BUFFER, r.cloth.pos)
	gl.BufferData(gl.ARRAY_BUFFER, size, nil, gl.DYNAMIC_DRAW)
	gl.GenBuffers(1, &r.cloth.nrm)
	gl.BindBuffer(gl.ARRAY_BUFFER, r.cloth.nrm)
	gl.BufferData(gl.ARRAY_BUFFER, size, nil, gl.DYNAMIC_DRAW)

	r.cloth.vao, r.cloth.ebo = r.bindStreams(r.cloth.pos, r.cloth.nrm, triangles)
	r.cloth.count = int32(len(triangles))

	r.edges.vao, r.edges.ebo = r.bindStreams(r.cloth.pos, r.cloth.nrm, edges)
	r.edges.count = int32(len(edges))

	r.log.Debug("cloth uploaded",
		zap.Int("vertices", numVertices),
		zap.Int("triangles", len(triangles)/3),
		zap.Int("edges", len(edges)/2))
}

// bindStreams creates a VAO over existing position and normal buffers with
// its own index buffer.
func (r *Renderer) bindStreams(pos, nrm uint32, indices []int32) (vao, ebo uint32) {
	gl.GenVertexArrays(1, &vao)
	gl.BindVertexArray(vao)

	gl.BindBuffer(gl.ARRAY_BUFFER, pos)
	gl.VertexAttribPointer(0, 3, gl.FLOAT, false, 3*4, nil)
	gl.EnableVertexAttribArray(0)

	gl.BindBuffer(gl.ARRAY_BUFFER, nrm)
	gl.VertexAttribPointer(1, 3, gl.FLOAT, false, 3*4, nil)
	gl.EnableVertexAttribArray(1)

	gl.GenBuffers(1, &ebo)
	gl.BindBuffer(gl.ELEMENT_ARRAY_BUFFER, ebo)
	if len(indices) > 0 {
		gl.BufferData(gl.ELEMENT_ARRAY_BUFFER, len(indices)*4, unsafe.Pointer(&indices[0]), gl.STATIC_DRAW)
	}

	gl.BindVertexArray(0)
	gl.BindBuffer(gl.ARRAY_BUFFER, 0)
	return vao, ebo
}

// UpdateCloth streams new positions and recomputes normals.
func (r *Renderer) UpdateCloth(pos []float32) {
	if r.cloth.vao == 0 || len(pos) != len(r.normals) || len(pos) == 0 {
		return
	}
	mesh.VertexNormals(pos, r.triangles, r.normals)

	gl.BindBuffer(gl.ARRAY_BUFFER, r.cloth.pos)
	gl.BufferSubData(gl.ARRAY_BUFFER, 0, len(pos)*4, unsafe.Pointer(&pos[0]))
	gl.BindBuffer(gl.ARRAY_BUFFER, r.cloth.nrm)
	gl.BufferSubData(gl.ARRAY_BUFFER, 0, len(r.normals)*4, unsafe.Pointer(&r.normals[0]))
	gl.BindBuffer(gl.ARRAY_BUFFER, 0)
}

func (r *Renderer) createSphere() {
	m := mesh.UVSphere(sphereSlices, sphereStacks)
	r.sphere = r.staticBuffers(m.Vertices, m.Vertices, m.Triangles)
}

func (r *Renderer) createGround() {
	var lines []float32
	half := float32(groundSize) / 2
	for i := 0; i <= groundSize; i++ {
		x := -half + float32(i)
		lines = append(lines,
			x, 0.002, -half, x, 0.002, half,
			-half, 0.002, x, half, 0.002, x)
	}
	up := make([]float32, len(lines))
	for i := 1; i < len(up); i += 3 {
		up[i] = 1
	}
	r.ground = r.staticBuffers(lines, up, nil)
	r.ground.count = int32(len(lines) / 3)
}

func (r *Renderer) staticBuffers(pos, nrm []float32, indices []int32) buffers {
	var b buffers
	gl.GenBuffers(1, &b.pos)
	gl.BindBuffer(gl.ARRAY_BUFFER, b.pos)
	gl.BufferData(gl.ARRAY_BUFFER, len(pos)*4, unsafe.Pointer(&pos[0]), gl.STATIC_DRAW)
	gl.GenBuffers(1, &b.nrm)
	gl.BindBuffer(gl.ARRAY_BUFFER, b.nrm)
	gl.BufferData(gl.ARRAY_BUFFER, len(nrm)*4, unsafe.Pointer(&nrm[0]), gl.STATIC_DRAW)

	b.vao, b.ebo = r.bindStreams(b.pos, b.nrm, indices)
	b.count = int32(len(indices))
	return b
}

// Begin starts a new frame.
func (r *Renderer) Begin() {
	gl.Clear(gl.COLOR_BUFFER_BIT | gl.DEPTH_BUFFER_BIT)
}

// Draw renders the ground, the spheres and the cloth.
func (r *Renderer) Draw(f Frame) {
	// Ground
	r.flat.Use()
	r.flat.SetMat4("uViewProj", f.ViewProj)
	r.flat.SetMat4("uModel", math.Identity())
	r.flat.SetVec3("uColor", GroundColor)
	gl.BindVertexArray(r.ground.vao)
	gl.DrawArrays(gl.LINES, 0, r.ground.count)

	// Spheres
	r.lit.Use()
	r.lit.SetMat4("uViewProj", f.ViewProj)
	for _, s := range f.Spheres {
		r.lit.SetMat4("uModel", math.Model(s.Center, s.Radius))
		r.lit.SetVec3("uFront", s.Color)
		r.lit.SetVec3("uBack", s.Color)
		gl.BindVertexArray(r.sphere.vao)
		if s.Wire {
			gl.PolygonMode(gl.FRONT_AND_BACK, gl.LINE)
		}
		gl.DrawElements(gl.TRIANGLES, r.sphere.count, gl.UNSIGNED_INT, nil)
		gl.PolygonMode(gl.FRONT_AND_BACK, gl.FILL)
	}

	if r.cloth.vao == 0 {
		gl.BindVertexArray(0)
		return
	}

	// Cloth, pushed back a little so its edges win the depth test
	r.lit.SetMat4("uModel", math.Identity())
	r.lit.SetVec3("uFront", ClothFront)
	r.lit.SetVec3("uBack", ClothBack)
	gl.Enable(gl.POLYGON_OFFSET_FILL)
	gl.PolygonOffset(1, 1)
	gl.BindVertexArray(r.cloth.vao)
	gl.DrawElements(gl.TRIANGLES, r.cloth.count, gl.UNSIGNED_INT, nil)
	gl.Disable(gl.POLYGON_OFFSET_FILL)

	if f.ShowEdges {
		r.flat.Use()
		r.flat.SetMat4("uViewProj", f.ViewProj)
		r.flat.SetMat4("uModel", math.Identity())
		r.flat.SetVec3("uColor", EdgeColor)
		gl.BindVertexArray(r.edges.vao)
		gl.DrawElements(gl.LINES, r.edges.count, gl.UNSIGNED_INT, nil)
	}

	gl.BindVertexArray(0)
}

// ReadPixels returns the back buffer as bottom-up RGBA rows.
func (r *Renderer) ReadPixels() ([]byte, int, int) {
	w, h := r.config.Width, r.config.Height
	pixels := make([]byte, w*h*4)
	if len(pixels) == 0 {
		return pixels, w, h
	}
	gl.PixelStorei(gl.PACK_ALIGNMENT, 1)
	gl.ReadPixels(0, 0, int32(w), int32(h), gl.RGBA, gl.UNSIGNED_BYTE, unsafe.Pointer(&pixels[0]))
	return pixels, w, h
}

// End finishes the current frame.
func (r *Renderer) End() {
	gl.Flush()
}
