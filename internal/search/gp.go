package search

import (
	"errors"
	"math"

	"github.com/GoSim-25-26J-441/runway-core/pkg/utils"
)

// lengthScaleGrid is tried when no length scale is configured; the one with
// the highest log marginal likelihood wins
var lengthScaleGrid = []float64{0.05, 0.1, 0.2, 0.4, 0.8, 1.6}

var errNotPositiveDefinite = errors.New("kernel matrix is not positive definite")

// gaussianProcess is a zero-mean GP with a squared-exponential kernel over
// inputs scaled to the unit cube. Targets are standardized before fitting,
// so predictions come back in standardized units with prior variance 1.
type gaussianProcess struct {
	x           [][]float64
	chol        [][]float64 // lower triangular factor of K + noise*I
	alpha       []float64   // (K + noise*I)^-1 y
	lengthScale float64
	noise       float64
	yMean       float64
	yStd        float64
	logLik      float64
}

// fitGP conditions a GP on (x, y). A non-positive lengthScale selects one
// from lengthScaleGrid by marginal likelihood.
func fitGP(x [][]float64, y []float64, lengthScale, noise float64) (*gaussianProcess, error) {
	if len(x) == 0 || len(x) != len(y) {
		return nil, errors.New("gaussian process needs matching, non-empty observations")
	}
	if lengthScale > 0 {
		return fitGPFixed(x, y, lengthScale, noise)
	}

	var best *gaussianProcess
	for _, ls := range lengthScaleGrid {
		gp, err := fitGPFixed(x, y, ls, noise)
		if err != nil {
			continue
		}
		if best == nil || gp.logLik > best.logLik {
			best = gp
		}
	}
	if best == nil {
		return nil, errNotPositiveDefinite
	}
	return best, nil
}

func fitGPFixed(x [][]float64, y []float64, lengthScale, noise float64) (*gaussianProcess, error) {
	n := len(x)
	gp := &gaussianProcess{x: x, lengthScale: lengthScale, noise: noise}

	gp.yMean, gp.yStd = utils.Mean(y), utils.StdDev(y)
	if gp.yStd == 0 || math.IsNaN(gp.yStd) {
		gp.yStd = 1
	}
	ys := make([]float64, n)
	for i, v := range y {
		ys[i] = (v - gp.yMean) / gp.yStd
	}

	k := make([][]float64, n)
	for i := range k {
		k[i] = make([]float64, n)
		for j := 0; j <= i; j++ {
			v := gp.kernel(x[i], x[j])
			k[i][j], k[j][i] = v, v
		}
	}

	// retry with growing jitter when near-duplicate points make K singular
	jitter := noise
	var chol [][]float64
	var err error
	for attempt := 0; attempt < 6; attempt++ {
		chol, err = cholesky(k, jitter)
		if err == nil {
			break
		}
		jitter = math.Max(jitter*10, 1e-8)
	}
	if err != nil {
		return nil, err
	}
	gp.chol = chol
	gp.noise = jitter
	gp.alpha = backSubstitute(chol, forwardSubstitute(chol, ys))

	gp.logLik = -0.5 * dot(ys, gp.alpha) - 0.5*float64(n)*math.Log(2*math.Pi)
	for i := 0; i < n; i++ {
		gp.logLik -= math.Log(chol[i][i])
	}
	return gp, nil
}

// kernel is exp(-r^2 / 2l^2) with r^2 the mean squared coordinate distance,
// which keeps one length scale meaningful across dimensions
func (gp *gaussianProcess) kernel(a, b []float64) float64 {
	d2 := 0.0
	for j := range a {
		d := a[j] - b[j]
		d2 += d * d
	}
	d2 /= float64(len(a))
	return math.Exp(-d2 / (2 * gp.lengthScale * gp.lengthScale))
}

// predict returns the standardized posterior mean and standard deviation at u
func (gp *gaussianProcess) predict(u []float64) (mu, sigma float64) {
	ks := make([]float64, len(gp.x))
	for i, xi := range gp.x {
		ks[i] = gp.kernel(u, xi)
	}
	mu = dot(ks, gp.alpha)
	v := forwardSubstitute(gp.chol, ks)
	variance := 1 - dot(v, v)
	if variance < 1e-12 {
		variance = 1e-12
	}
	return mu, math.Sqrt(variance)
}

// standardize maps a raw cost into the GP's standardized units
func (gp *gaussianProcess) standardize(y float64) float64 {
	return (y - gp.yMean) / gp.yStd
}

// cholesky factors a + jitter*I into L*L^T
func cholesky(a [][]float64, jitter float64) ([][]float64, error) {
	n := len(a)
	l := make([][]float64, n)
	for i := range l {
		l[i] = make([]float64, n)
	}
	for i := 0; i < n; i++ {
		for j := 0; j <= i; j++ {
			sum := a[i][j]
			if i == j {
				sum += jitter
			}
			for k := 0; k < j; k++ {
				sum -= l[i][k] * l[j][k]
			}
			if i == j {
				if sum <= 0 || math.IsNaN(sum) {
					return nil, errNotPositiveDefinite
				}
				l[i][i] = math.Sqrt(sum)
			} else {
				l[i][j] = sum / l[j][j]
			}
		}
	}
	return l, nil
}

// forwardSubstitute solves L*z = b
func forwardSubstitute(l [][]float64, b []float64) []float64 {
	z := make([]float64, len(b))
	for i := range b {
		sum := b[i]
		for k := 0; k < i; k++ {
			sum -= l[i][k] * z[k]
		}
		z[i] = sum / l[i][i]
	}
	return z
}

// backSubstitute solves L^T*x = z
func backSubstitute(l [][]float64, z []float64) []float64 {
	n := len(z)
	x := make([]float64, n)
	for i := n - 1; i >= 0; i-- {
		sum := z[i]
		for k := i + 1; k < n; k++ {
			sum -= l[k][i] * x[k]
		}
		x[i] = sum / l[i][i]
	}
	return x
}

func dot(a, b []float64) float64 {
	s := 0.0
	for i := range a {
		s += a[i] * b[i]
	}
	return s
}
