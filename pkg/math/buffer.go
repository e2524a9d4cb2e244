package math

// Flat buffers store one 3-float group per vertex: x,y,z of vertex i live at
// buf[3*i], buf[3*i+1], buf[3*i+2]. The kernels below address them by vertex
// index and mutate the destination in place.

// At returns the vector stored at vertex i.
func At(buf []float32, i int) Vec3 {
	return Vec3{buf[3*i], buf[3*i+1], buf[3*i+2]}
}

// SetAt stores v at vertex i.
func SetAt(buf []float32, i int, v Vec3) {
	buf[3*i] = v.X
	buf[3*i+1] = v.Y
	buf[3*i+2] = v.Z
}

// AddAt adds v*s to vertex i.
func AddAt(buf []float32, i int, v Vec3, s float32) {
	buf[3*i] += v.X * s
	buf[3*i+1] += v.Y * s
	buf[3*i+2] += v.Z * s
}

// VecCopy copies src[j] into dst[i].
func VecCopy(dst []float32, i int, src []float32, j int) {
	dst[3*i] = src[3*j]
	dst[3*i+1] = src[3*j+1]
	dst[3*i+2] = src[3*j+2]
}

// VecAdd performs dst[i] += src[j] * s.
func VecAdd(dst []float32, i int, src []float32, j int, s float32) {
	dst[3*i] += src[3*j] * s
	dst[3*i+1] += src[3*j+1] * s
	dst[3*i+2] += src[3*j+2] * s
}

// VecScale performs buf[i] *= s.
func VecScale(buf []float32, i int, s float32) {
	buf[3*i] *= s
	buf[3*i+1] *= s
	buf[3*i+2] *= s
}

// VecSetDiff stores (a[ai] - b[bi]) * s into dst[i].
func VecSetDiff(dst []float32, i int, a []float32, ai int, b []float32, bi int, s float32) {
	dst[3*i] = (a[3*ai] - b[3*bi]) * s
	dst[3*i+1] = (a[3*ai+1] - b[3*bi+1]) * s
	dst[3*i+2] = (a[3*ai+2] - b[3*bi+2]) * s
}

// VecSetCross stores a[ai] x b[bi] into dst[i].
func VecSetCross(dst []float32, i int, a []float32, ai int, b []float32, bi int) {
	ax, ay, az := a[3*ai], a[3*ai+1], a[3*ai+2]
	bx, by, bz := b[3*bi], b[3*bi+1], b[3*bi+2]
	dst[3*i] = ay*bz - az*by
	dst[3*i+1] = az*bx - ax*bz
	dst[3*i+2] = ax*by - ay*bx
}

// VecDot returns a[i] . b[j].
func VecDot(a []float32, i int, b []float32, j int) float32 {
	return a[3*i]*b[3*j] + a[3*i+1]*b[3*j+1] + a[3*i+2]*b[3*j+2]
}

// VecLengthSquared returns |buf[i]|^2.
func VecLengthSquared(buf []float32, i int) float32 {
	x, y, z := buf[3*i], buf[3*i+1], buf[3*i+2]
	return x*x + y*y + z*z
}

// VecDistSquared returns |a[i] - b[j]|^2.
func VecDistSquared(a []float32, i int, b []float32, j int) float32 {
	dx := a[3*i] - b[3*j]
	dy := a[3*i+1] - b[3*j+1]
	dz := a[3*i+2] - b[3*j+2]
	return dx*dx + dy*dy + dz*dz
}
