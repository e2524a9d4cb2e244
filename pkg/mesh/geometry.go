package mesh

import (
	"github.com/Faultbox/clothsim/pkg/math"
)

// TriangleArea returns the area of triangle (a, b, c) in the position buffer.
func TriangleArea(pos []float32, a, b, c int) float32 {
	pa := math.At(pos, a)
	u := math.At(pos, b).Sub(pa)
	v := math.At(pos, c).Sub(pa)
	return 0.5 * u.Cross(v).Length()
}

// CotAtVertex returns the cotangent of the angle at a in triangle (a, b, c).
// Degenerate triangles (|u x v| < 1e-12) return 0.
func CotAtVertex(pos []float32, a, b, c int) float32 {
	pa := math.At(pos, a)
	u := math.At(pos, b).Sub(pa)
	v := math.At(pos, c).Sub(pa)

	den := u.Cross(v).Length()
	if den < 1e-12 {
		return 0
	}
	return u.Dot(v) / den
}

// TriangleNormal returns the unit normal of (a, b, c) with counter-clockwise
// winding. A degenerate triangle returns the unnormalized (zero) cross product.
func TriangleNormal(a, b, c math.Vec3) math.Vec3 {
	n := b.Sub(a).Cross(c.Sub(a))
	l := n.Length()
	if l == 0 {
		l = 1
	}
	return n.Scale(1 / l)
}

// ClosestPointOnTriangle returns the point of triangle (a, b, c) closest to p
// and its barycentric weights (u, v, w) for a, b and c, u+v+w = 1.
// The search walks the vertex, edge and face Voronoi regions in turn.
func ClosestPointOnTriangle(p, a, b, c math.Vec3) (math.Vec3, [3]float32) {
	ab := b.Sub(a)
	ac := c.Sub(a)

	// Vertex region A
	ap := p.Sub(a)
	d1 := ab.Dot(ap)
	d2 := ac.Dot(ap)
	if d1 <= 0 && d2 <= 0 {
		return a, [3]float32{1, 0, 0}
	}

	// Vertex region B
	bp := p.Sub(b)
	d3 := ab.Dot(bp)
	d4 := ac.Dot(bp)
	if d3 >= 0 && d4 <= d3 {
		return b, [3]float32{0, 1, 0}
	}

	// Edge region AB
	vc := d1*d4 - d3*d2
	if vc <= 0 && d1 >= 0 && d3 <= 0 {
		v := d1 / (d1 - d3)
		return a.AddScaled(ab, v), [3]float32{1 - v, v, 0}
	}

	// Vertex region C
	cp := p.Sub(c)
	d5 := ab.Dot(cp)
	d6 := ac.Dot(cp)
	if d6 >= 0 && d5 <= d6 {
		return c, [3]float32{0, 0, 1}
	}

	// Edge region AC
	vb := d5*d2 - d1*d6
	if vb <= 0 && d2 >= 0 && d6 <= 0 {
		w := d2 / (d2 - d6)
		return a.AddScaled(ac, w), [3]float32{1 - w, 0, w}
	}

	// Edge region BC
	va := d3*d6 - d5*d4
	if va <= 0 && d4-d3 >= 0 && d5-d6 >= 0 {
		w := (d4 - d3) / ((d4 - d3) + (d5 - d6))
		return b.AddScaled(c.Sub(b), w), [3]float32{0, 1 - w, w}
	}

	// Face interior
	denom := 1 / (va + vb + vc)
	v := vb * denom
	w := vc * denom
	u := 1 - v - w
	q := a.Scale(u).Add(b.Scale(v)).Add(c.Scale(w))
	return q, [3]float32{u, v, w}
}
