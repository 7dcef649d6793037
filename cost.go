package imagevae

import (
	"github.com/unixpickle/anydiff"
	"github.com/unixpickle/anynet"
)

// KLDivergence computes, for each sample in the batch,
// the closed-form Kullback-Leibler divergence between the
// latent distribution described by mean and logStddev and
// a standard normal.
//
// For each sample, the divergence is
//
//	-sum(1 + log(stddev^2) - mean^2 - stddev^2)
//
// summed over the latent dimensions.
// It is non-negative, and exactly zero when the mean is 0
// and the standard deviation is 1 in every dimension.
func KLDivergence(mean, logStddev anydiff.Res, n int) anydiff.Res {
	if mean.Output().Len() != logStddev.Output().Len() {
		panic("mean and logStddev must have matching lengths")
	}
	c := mean.Output().Creator()
	logVar := anydiff.Scale(logStddev, c.MakeNumeric(2))
	return anydiff.Pool(logVar, func(logVar anydiff.Res) anydiff.Res {
		terms := anydiff.AddScalar(
			anydiff.Sub(logVar, anydiff.Add(anydiff.Square(mean), anydiff.Exp(logVar))),
			c.MakeNumeric(1),
		)
		perSample := anydiff.SumCols(&anydiff.Matrix{
			Data: terms,
			Rows: n,
			Cols: terms.Output().Len() / n,
		})
		return anydiff.Scale(perSample, c.MakeNumeric(-1))
	})
}

// CompositeCost combines a reconstruction cross-entropy
// term with the latent divergence term.
//
// Alpha=1 reduces the model to a plain autoencoder, since
// the divergence term (and its gradient) is scaled to
// zero.
// Alpha near 0 over-regularizes the latent space and
// blurs reconstructions.
type CompositeCost struct {
	// Alpha weighs the reconstruction term.
	// The divergence term is weighed by 1-Alpha.
	// It must be in [0, 1].
	Alpha float64
}

// Cost computes a per-sample cost batch.
//
// The logits argument contains the decoder's pre-sigmoid
// outputs; the reconstruction term is equivalent to
// applying a sigmoid and taking the binary cross-entropy
// against the desired images, summed over the pixels.
func (c CompositeCost) Cost(desired, logits, mean, logStddev anydiff.Res, n int) anydiff.Res {
	cr := desired.Output().Creator()
	recon := anynet.SigmoidCE{}.Cost(desired, logits, n)
	diverge := KLDivergence(mean, logStddev, n)
	return anydiff.Add(
		anydiff.Scale(recon, cr.MakeNumeric(c.Alpha)),
		anydiff.Scale(diverge, cr.MakeNumeric(1-c.Alpha)),
	)
}
