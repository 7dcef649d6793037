package imagevae

import (
	"math/rand"

	"github.com/unixpickle/anydiff"
	"github.com/unixpickle/anyvec"
)

// SampleLatent draws a latent code from the distribution
// described by mean and logStddev using the
// reparameterization trick.
//
// Fresh standard-normal noise is drawn from rng on every
// call.
// If rng is nil, the global generator is used.
func SampleLatent(mean, logStddev anydiff.Res, rng *rand.Rand) anydiff.Res {
	c := mean.Output().Creator()
	noise := c.MakeVector(mean.Output().Len())
	anyvec.Rand(noise, anyvec.Normal, rng)
	return SampleLatentNoise(mean, logStddev, anydiff.NewConst(noise))
}

// SampleLatentNoise computes mean + exp(logStddev)*noise.
//
// The result is differentiable with respect to mean and
// logStddev; the noise enters as a constant.
// For a fixed noise vector, this is a pure function.
func SampleLatentNoise(mean, logStddev, noise anydiff.Res) anydiff.Res {
	if mean.Output().Len() != logStddev.Output().Len() ||
		mean.Output().Len() != noise.Output().Len() {
		panic("mean, logStddev, and noise must have matching lengths")
	}
	return anydiff.Add(mean, anydiff.Mul(anydiff.Exp(logStddev), noise))
}
