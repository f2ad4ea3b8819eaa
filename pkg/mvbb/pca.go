package mvbb

import (
	"gonum.org/v1/gonum/mat"

	"github.com/philipparndt/approxmvbb/pkg/geometry"
)

// principalFrame returns the eigenframe of the point covariance with Z along
// the direction of largest variance. ok is false if the decomposition fails.
func principalFrame(points []geometry.Vector3) (frame geometry.Frame, ok bool) {
	if len(points) < 2 {
		return geometry.IdentityFrame(), false
	}

	var mean geometry.Vector3
	for _, p := range points {
		mean = mean.Add(p)
	}
	mean = mean.Mul(1 / float64(len(points)))

	var cov [6]float64 // xx xy xz yy yz zz
	for _, p := range points {
		d := p.Sub(mean)
		cov[0] += d.X * d.X
		cov[1] += d.X * d.Y
		cov[2] += d.X * d.Z
		cov[3] += d.Y * d.Y
		cov[4] += d.Y * d.Z
		cov[5] += d.Z * d.Z
	}
	sym := mat.NewSymDense(3, []float64{
		cov[0], cov[1], cov[2],
		cov[1], cov[3], cov[4],
		cov[2], cov[4], cov[5],
	})

	var eig mat.EigenSym
	if !eig.Factorize(sym, true) {
		return geometry.IdentityFrame(), false
	}
	var vecs mat.Dense
	eig.VectorsTo(&vecs)

	// eigenvalues are ascending
	column := func(j int) geometry.Vector3 {
		return geometry.NewVector3(vecs.At(0, j), vecs.At(1, j), vecs.At(2, j))
	}
	z := column(2)
	if z.LengthSquared() == 0 {
		return geometry.IdentityFrame(), false
	}
	return geometry.FrameFromZ(z, column(1)), true
}
