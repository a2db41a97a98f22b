package software_backend

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"
	"sync"

	"github.com/Carmen-Shannon/automation/tools/worker"
	"github.com/Carmen-Shannon/kopki-go/common"
	"github.com/Carmen-Shannon/kopki-go/engine/renderer/backend"
	"github.com/chewxy/math32"
)

// Fixed-function shader locations read by the rasterizer.
const (
	locationPosition uint32 = 0
	locationColor    uint32 = 1
	locationUV       uint32 = 2
)

// maxDrawVertices bounds the vertices one draw call expands to across all of its instances.
const maxDrawVertices = 1 << 24

// fullScreenTriangle covers the whole target when a pipeline reads no position attribute.
var fullScreenTriangle = [3][2]float32{{-1, -1}, {3, -1}, {-1, 3}}

// vertex is a vertex after fetch, in clip space.
type vertex struct {
	pos      [4]float32
	color    [4]float32
	uv       [2]float32
	hasColor bool
	hasUV    bool
}

// screenVertex is a vertex after the perspective divide and viewport transform.
type screenVertex struct {
	x, y, z float64
	vertex
}

type triangle struct {
	v [3]screenVertex
	// area2 is twice the signed screen-space area, always positive after winding is normalised.
	area2 float64
}

// execute replays one recorded pass into its target.
func (b *softwareBackend) execute(p *recordedPass) error {
	if p.target.released.Load() {
		return fmt.Errorf("pass %q: target texture was released", p.label)
	}
	if p.load == backend.LoadOpClear {
		clearTexture(p.target, p.clear)
	}
	if p.depth != nil && p.depthLoad == backend.LoadOpClear {
		for i := range p.depth.depth {
			p.depth.depth[i] = p.depthClear
		}
	}

	for i, dc := range p.draws {
		if err := b.draw(p, dc); err != nil {
			return fmt.Errorf("pass %q draw %d: %w", p.label, i, err)
		}
	}
	return nil
}

func clearTexture(t *texture, c backend.Color) {
	px := encodeColor(t.format, [4]float32{float32(c.R), float32(c.G), float32(c.B), float32(c.A)})
	for i := 0; i < len(t.data); i += 4 {
		copy(t.data[i:i+4], px[:])
	}
}

// draw assembles the primitives of one draw call and rasterizes them in row bands.
func (b *softwareBackend) draw(p *recordedPass, dc drawCall) error {
	pl := dc.state.pipeline
	if pl.desc.DepthStencil != nil && p.depth == nil {
		return fmt.Errorf("pipeline %q uses depth testing but the pass has no depth attachment", pl.label)
	}
	if dc.count == 0 || dc.instances == 0 {
		return nil
	}

	if err := checkDrawRange(pl, dc); err != nil {
		return err
	}
	indices, err := vertexIndices(dc)
	if err != nil {
		return err
	}

	tris := make([]triangle, 0, len(indices)/3)
	end := uint64(dc.firstInstance) + uint64(dc.instances)
	for inst := uint64(dc.firstInstance); inst < end; inst++ {
		verts := make([]vertex, len(indices))
		for i, idx := range indices {
			v, err := fetchVertex(pl, dc.state, idx, uint32(inst))
			if err != nil {
				return err
			}
			verts[i] = v
		}
		tris = assemble(tris, pl.desc.Primitive, verts, p.target.width, p.target.height)
	}
	if len(tris) == 0 {
		return nil
	}

	sh := newShader(pl, dc.state, p)
	rows := int(p.target.height)
	bands := min(b.workers, rows)
	if bands <= 1 || b.pool == nil {
		rasterBand(tris, sh, 0, rows)
		return nil
	}

	var wg sync.WaitGroup
	for band := range bands {
		y0 := band * rows / bands
		y1 := (band + 1) * rows / bands
		wg.Add(1)
		b.pool.SubmitTask(worker.Task{
			ID: band,
			Do: func() (any, error) {
				defer wg.Done()
				rasterBand(tris, sh, y0, y1)
				return nil, nil
			},
		})
	}
	wg.Wait()
	return nil
}

// checkDrawRange rejects draws whose vertex or instance ranges overflow 32 bits, run past the
// bound per-vertex or per-instance buffers, or expand to more than maxDrawVertices vertices.
func checkDrawRange(pl *renderPipeline, dc drawCall) error {
	vertexEnd := uint64(dc.first) + uint64(dc.count)
	instanceEnd := uint64(dc.firstInstance) + uint64(dc.instances)
	if vertexEnd > math.MaxUint32+1 || instanceEnd > math.MaxUint32+1 {
		return fmt.Errorf("draw range overflows 32-bit vertex or instance indices: %w", common.ErrBufferSizeMismatch)
	}
	if uint64(dc.count)*uint64(dc.instances) > maxDrawVertices {
		return fmt.Errorf("draw of %d vertices over %d instances exceeds the limit of %d vertices",
			dc.count, dc.instances, maxDrawVertices)
	}

	for slot, layout := range pl.desc.VertexBuffers {
		end := vertexEnd
		if layout.StepMode == backend.VertexStepModeInstance {
			end = instanceEnd
		} else if dc.indexed {
			// Indexed draws address vertices through the index buffer and are checked per fetch.
			continue
		}
		var extent uint64
		for _, attr := range layout.Attributes {
			extent = max(extent, attr.Offset+attr.Format.Size())
		}
		if extent == 0 || end == 0 {
			continue
		}
		vb := dc.state.vertices[uint32(slot)]
		if (end-1)*layout.ArrayStride+extent > vb.size {
			return fmt.Errorf("draw reads %d elements from vertex buffer %q of %d bytes in slot %d: %w",
				end, vb.buf.label, vb.size, slot, common.ErrBufferSizeMismatch)
		}
	}
	return nil
}

// vertexIndices resolves the vertex index stream of a draw, applying the base vertex for indexed draws.
func vertexIndices(dc drawCall) ([]uint32, error) {
	if !dc.indexed {
		out := make([]uint32, dc.count)
		for i := range out {
			out[i] = dc.first + uint32(i)
		}
		return out, nil
	}

	ib := dc.state.index
	size := ib.format.Size()
	if (uint64(dc.first)+uint64(dc.count))*size > ib.size {
		return nil, fmt.Errorf("indices [%d, %d) exceed index buffer %q: %w",
			dc.first, uint64(dc.first)+uint64(dc.count), ib.buf.label, common.ErrBufferSizeMismatch)
	}
	out := make([]uint32, dc.count)
	data := ib.buf.data[ib.offset : ib.offset+ib.size]
	for i := range out {
		at := (uint64(dc.first) + uint64(i)) * size
		var idx int64
		if ib.format == backend.IndexFormatUint16 {
			idx = int64(binary.LittleEndian.Uint16(data[at:]))
		} else {
			idx = int64(binary.LittleEndian.Uint32(data[at:]))
		}
		idx += int64(dc.baseVertex)
		if idx < 0 {
			return nil, fmt.Errorf("index %d with base vertex %d is negative", idx-int64(dc.baseVertex), dc.baseVertex)
		}
		out[i] = uint32(idx)
	}
	return out, nil
}

// fetchVertex reads the fixed-function attributes of one vertex.
func fetchVertex(pl *renderPipeline, st drawState, index, instance uint32) (vertex, error) {
	var v vertex

	if vals, n, ok, err := readLocation(pl, st, locationPosition, index, instance); err != nil {
		return v, err
	} else if ok {
		v.pos = [4]float32{vals[0], vals[1], 0, 1}
		if n >= 3 {
			v.pos[2] = vals[2]
		}
		if n >= 4 {
			v.pos[3] = vals[3]
		}
	} else {
		corner := fullScreenTriangle[index%3]
		v.pos = [4]float32{corner[0], corner[1], 0, 1}
	}

	if vals, n, ok, err := readLocation(pl, st, locationColor, index, instance); err != nil {
		return v, err
	} else if ok {
		v.color = [4]float32{vals[0], vals[1], vals[2], 1}
		if n >= 4 {
			v.color[3] = vals[3]
		}
		v.hasColor = true
	}

	if vals, _, ok, err := readLocation(pl, st, locationUV, index, instance); err != nil {
		return v, err
	} else if ok {
		v.uv = [2]float32{vals[0], vals[1]}
		v.hasUV = true
	}
	return v, nil
}

// readLocation decodes the attribute bound to a shader location.
//
// Returns the component values, the number of components, whether the location is bound, and
// an error if the read falls outside the bound vertex buffer range.
func readLocation(pl *renderPipeline, st drawState, location, index, instance uint32) ([4]float32, int, bool, error) {
	var out [4]float32
	slot, layout, attr, ok := pl.attribute(location)
	if !ok {
		return out, 0, false, nil
	}
	vb := st.vertices[slot]

	element := uint64(index)
	if layout.StepMode == backend.VertexStepModeInstance {
		element = uint64(instance)
	}
	at := element*layout.ArrayStride + attr.Offset
	size := attr.Format.Size()
	if at+size > vb.size {
		return out, 0, false, fmt.Errorf("vertex %d location %d reads past vertex buffer %q: %w",
			element, location, vb.buf.label, common.ErrBufferSizeMismatch)
	}
	raw := vb.buf.data[vb.offset+at : vb.offset+at+size]

	switch attr.Format {
	case backend.VertexFormatUnorm8x4:
		for i := range 4 {
			out[i] = float32(raw[i]) / 255
		}
		return out, 4, true, nil
	case backend.VertexFormatUint32:
		out[0] = float32(binary.LittleEndian.Uint32(raw))
		return out, 1, true, nil
	default:
		n := int(size / 4)
		for i := range n {
			out[i] = math.Float32frombits(binary.LittleEndian.Uint32(raw[i*4:]))
		}
		return out, n, true, nil
	}
}

// assemble builds screen-space triangles from clip-space vertices, dropping culled and degenerate ones.
func assemble(dst []triangle, prim backend.PrimitiveState, verts []vertex, width, height uint32) []triangle {
	emit := func(a, b, c vertex) {
		// Primitives crossing the w <= 0 plane are dropped; there is no near-plane clipping.
		if a.pos[3] <= 0 || b.pos[3] <= 0 || c.pos[3] <= 0 {
			return
		}
		na, nb, nc := ndc(a), ndc(b), ndc(c)

		// Winding is decided in NDC where y points up, so positive area is counter-clockwise.
		area := (nb[0]-na[0])*(nc[1]-na[1]) - (nc[0]-na[0])*(nb[1]-na[1])
		if area == 0 {
			return
		}
		front := area > 0
		if prim.FrontFace == backend.FrontFaceCW {
			front = !front
		}
		switch prim.CullMode {
		case backend.CullModeBack:
			if !front {
				return
			}
		case backend.CullModeFront:
			if front {
				return
			}
		}

		t := triangle{v: [3]screenVertex{
			toScreen(a, na, width, height),
			toScreen(b, nb, width, height),
			toScreen(c, nc, width, height),
		}}
		t.area2 = edge(t.v[0], t.v[1], t.v[2].x, t.v[2].y)
		if t.area2 < 0 {
			t.v[1], t.v[2] = t.v[2], t.v[1]
			t.area2 = -t.area2
		}
		dst = append(dst, t)
	}

	switch prim.Topology {
	case backend.PrimitiveTopologyTriangleStrip:
		for i := 0; i+2 < len(verts); i++ {
			if i%2 == 0 {
				emit(verts[i], verts[i+1], verts[i+2])
			} else {
				emit(verts[i+1], verts[i], verts[i+2])
			}
		}
	default:
		for i := 0; i+2 < len(verts); i += 3 {
			emit(verts[i], verts[i+1], verts[i+2])
		}
	}
	return dst
}

func ndc(v vertex) [3]float32 {
	w := v.pos[3]
	return [3]float32{v.pos[0] / w, v.pos[1] / w, v.pos[2] / w}
}

func toScreen(v vertex, n [3]float32, width, height uint32) screenVertex {
	return screenVertex{
		x:      float64((n[0] + 1) * 0.5 * float32(width)),
		y:      float64((1 - n[1]) * 0.5 * float32(height)),
		z:      float64(n[2]),
		vertex: v,
	}
}

// edge is the edge function of a->b evaluated at (px, py).
func edge(a, b screenVertex, px, py float64) float64 {
	return (b.x-a.x)*(py-a.y) - (b.y-a.y)*(px-a.x)
}

// topLeft reports whether a->b is a top or left edge for the normalised winding.
func topLeft(a, b screenVertex) bool {
	dx, dy := b.x-a.x, b.y-a.y
	return (dy == 0 && dx > 0) || dy < 0
}

func covers(e float64, isTopLeft bool) bool {
	return e > 0 || (e == 0 && isTopLeft)
}

// rasterBand fills the rows [y0, y1) of every triangle in submission order.
func rasterBand(tris []triangle, sh *shader, y0, y1 int) {
	width := int(sh.target.width)
	for _, t := range tris {
		a, b, c := t.v[0], t.v[1], t.v[2]
		minX := max(0, int(math.Floor(min(a.x, b.x, c.x))))
		maxX := min(width-1, int(math.Ceil(max(a.x, b.x, c.x))))
		minY := max(y0, int(math.Floor(min(a.y, b.y, c.y))))
		maxY := min(y1-1, int(math.Ceil(max(a.y, b.y, c.y))))
		tlBC, tlCA, tlAB := topLeft(b, c), topLeft(c, a), topLeft(a, b)

		for y := minY; y <= maxY; y++ {
			py := float64(y) + 0.5
			for x := minX; x <= maxX; x++ {
				px := float64(x) + 0.5
				e0 := edge(b, c, px, py)
				e1 := edge(c, a, px, py)
				e2 := edge(a, b, px, py)
				if !covers(e0, tlBC) || !covers(e1, tlCA) || !covers(e2, tlAB) {
					continue
				}
				sh.shade(x, y, [3]float32{float32(e0 / t.area2), float32(e1 / t.area2), float32(e2 / t.area2)}, &t)
			}
		}
	}
}

// shader holds the per-draw fragment state.
type shader struct {
	target   *texture
	depth    *texture
	ds       *backend.DepthStencilState
	blend    backend.BlendMode
	mask     backend.ColorWriteMask
	tex      *texture
	clampUVs bool
}

func newShader(pl *renderPipeline, st drawState, p *recordedPass) *shader {
	sh := &shader{
		target: p.target,
		depth:  p.depth,
		ds:     pl.desc.DepthStencil,
		blend:  pl.desc.Target.Blend,
		mask:   pl.desc.Target.WriteMask,
	}
	if sh.mask == 0 {
		sh.mask = backend.ColorWriteMaskAll
	}
	if g, ok := st.groups[0]; ok {
		sh.tex = g.firstTexture()
		for _, e := range g.entries {
			if s, ok := e.Sampler.(*sampler); ok {
				sh.clampUVs = s.desc.AddressModeU == backend.AddressModeClampToEdge
			}
		}
	}
	return sh
}

func (sh *shader) shade(x, y int, w [3]float32, t *triangle) {
	a, b, c := &t.v[0], &t.v[1], &t.v[2]
	texel := y*int(sh.target.width) + x

	if sh.ds != nil && sh.depth != nil {
		z := float32(a.z)*w[0] + float32(b.z)*w[1] + float32(c.z)*w[2]
		if !depthPasses(sh.ds.DepthCompare, z, sh.depth.depth[texel]) {
			return
		}
		if sh.ds.DepthWriteEnabled {
			sh.depth.depth[texel] = z
		}
	}

	src := [4]float32{1, 1, 1, 1}
	if a.hasColor {
		for i := range 4 {
			src[i] = a.color[i]*w[0] + b.color[i]*w[1] + c.color[i]*w[2]
		}
	}
	if sh.tex != nil {
		var u, v float32
		if a.hasUV {
			u = a.uv[0]*w[0] + b.uv[0]*w[1] + c.uv[0]*w[2]
			v = a.uv[1]*w[0] + b.uv[1]*w[1] + c.uv[1]*w[2]
		} else {
			u = (float32(x) + 0.5) / float32(sh.target.width)
			v = (float32(y) + 0.5) / float32(sh.target.height)
		}
		s := sh.sample(u, v)
		for i := range 4 {
			src[i] *= s[i]
		}
	}

	at := texel * 4
	dst := decodeColor(sh.target.format, sh.target.data[at:at+4])
	out := blend(sh.blend, src, dst)
	for i := range 4 {
		if sh.mask&(1<<i) == 0 {
			out[i] = dst[i]
		}
	}
	px := encodeColor(sh.target.format, out)
	copy(sh.target.data[at:at+4], px[:])
}

// sample performs a nearest-neighbour lookup.
func (sh *shader) sample(u, v float32) [4]float32 {
	tw, th := float32(sh.tex.width), float32(sh.tex.height)
	if sh.clampUVs {
		u = min(max(u, 0), 1)
		v = min(max(v, 0), 1)
	} else {
		u -= math32.Floor(u)
		v -= math32.Floor(v)
	}
	tx := min(int(u*tw), int(sh.tex.width)-1)
	ty := min(int(v*th), int(sh.tex.height)-1)
	at := (ty*int(sh.tex.width) + tx) * 4
	return decodeColor(sh.tex.format, sh.tex.data[at:at+4])
}

func depthPasses(cmp backend.CompareFunction, z, stored float32) bool {
	switch cmp {
	case backend.CompareFunctionNever:
		return false
	case backend.CompareFunctionLess:
		return z < stored
	case backend.CompareFunctionLessEqual:
		return z <= stored
	case backend.CompareFunctionEqual:
		return z == stored
	case backend.CompareFunctionGreater:
		return z > stored
	default:
		return true
	}
}

func blend(mode backend.BlendMode, src, dst [4]float32) [4]float32 {
	switch mode {
	case backend.BlendModeAlpha:
		a := src[3]
		return [4]float32{
			src[0]*a + dst[0]*(1-a),
			src[1]*a + dst[1]*(1-a),
			src[2]*a + dst[2]*(1-a),
			a + dst[3]*(1-a),
		}
	case backend.BlendModeAdditive:
		return [4]float32{
			min(src[0]+dst[0], 1),
			min(src[1]+dst[1], 1),
			min(src[2]+dst[2], 1),
			min(src[3]+dst[3], 1),
		}
	default:
		return src
	}
}

func isBGRA(f backend.TextureFormat) bool {
	return f == backend.TextureFormatBGRA8Unorm || f == backend.TextureFormatBGRA8UnormSrgb
}

// decodeColor reads one texel into RGBA order. sRGB formats are stored without conversion.
func decodeColor(f backend.TextureFormat, px []byte) [4]float32 {
	c := [4]float32{float32(px[0]) / 255, float32(px[1]) / 255, float32(px[2]) / 255, float32(px[3]) / 255}
	if isBGRA(f) {
		c[0], c[2] = c[2], c[0]
	}
	return c
}

func encodeColor(f backend.TextureFormat, c [4]float32) [4]byte {
	var px [4]byte
	for i := range 4 {
		px[i] = byte(math32.Round(min(max(c[i], 0), 1) * 255))
	}
	if isBGRA(f) {
		px[0], px[2] = px[2], px[0]
	}
	return px
}

var errNoReadback = errors.New("backend does not support read-back")

// ReadPixels returns the contents of a colour texture as tightly packed RGBA bytes, swizzling
// BGRA formats. The backend must implement backend.Readback.
//
// Parameters:
//   - b: the backend that created tex
//   - tex: the texture to read
//
// Returns:
//   - []byte: RGBA pixels, row-major
//   - error: error if the backend cannot read back or tex is not a colour texture
func ReadPixels(b backend.Backend, tex backend.Texture) ([]byte, error) {
	rb, ok := b.(backend.Readback)
	if !ok {
		return nil, errNoReadback
	}
	if tex.Format().IsDepth() {
		return nil, fmt.Errorf("texture %q is a depth texture", tex.Label())
	}
	data, err := rb.ReadTexture(tex)
	if err != nil {
		return nil, err
	}
	if isBGRA(tex.Format()) {
		for i := 0; i+3 < len(data); i += 4 {
			data[i], data[i+2] = data[i+2], data[i]
		}
	}
	return data, nil
}
