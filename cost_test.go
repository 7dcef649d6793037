package imagevae

import (
	"math"
	"testing"

	"github.com/unixpickle/anydiff"
	"github.com/unixpickle/anydiff/anydifftest"
	"github.com/unixpickle/anynet"
	"github.com/unixpickle/anyvec/anyvec32"
)

func TestKLDivergenceZero(t *testing.T) {
	mean := anydiff.NewConst(anyvec32.MakeVector(4))
	logStddev := anydiff.NewConst(anyvec32.MakeVector(4))
	out := KLDivergence(mean, logStddev, 2).Output().Data().([]float32)
	for i, x := range out {
		if math.Abs(float64(x)) > 1e-4 {
			t.Errorf("sample %d: expected 0 but got %f", i, x)
		}
	}
}

func TestKLDivergenceValues(t *testing.T) {
	mean := anydiff.NewConst(anyvec32.MakeVectorData([]float32{
		1, 0,
		0, -2,
	}))
	logStddev := anydiff.NewConst(anyvec32.MakeVectorData([]float32{
		0, 0.5,
		0, 0,
	}))
	expected := []float32{
		// -(1+0-1-1) - (1+1-0-e)
		1 + float32(math.E) - 2,
		// -(1+0-0-1) - (1+0-4-1)
		4,
	}
	actual := KLDivergence(mean, logStddev, 2).Output().Data().([]float32)
	for i, x := range expected {
		a := actual[i]
		if math.IsNaN(float64(a)) || math.Abs(float64(x-a)) > 1e-3 {
			t.Errorf("sample %d: expected %f but got %f", i, x, a)
		}
	}
}

func TestKLDivergenceProp(t *testing.T) {
	mean := anydiff.NewVar(anyvec32.MakeVectorData([]float32{0.5, -0.3, 0.2, 0.1}))
	logStddev := anydiff.NewVar(anyvec32.MakeVectorData([]float32{0.1, -0.2, 0.3, -0.1}))

	checker := &anydifftest.ResChecker{
		F: func() anydiff.Res {
			return KLDivergence(mean, logStddev, 2)
		},
		V: []*anydiff.Var{mean, logStddev},
	}
	checker.FullCheck(t)
}

func TestCompositeCostValues(t *testing.T) {
	desired := anydiff.NewConst(anyvec32.MakeVectorData([]float32{1, 0.6, 0.2, 0}))
	logits := anydiff.NewConst(anyvec32.MakeVectorData([]float32{1, 0, 2, -1}))
	mean := anydiff.NewConst(anyvec32.MakeVectorData([]float32{0.5, -1}))
	logStddev := anydiff.NewConst(anyvec32.MakeVectorData([]float32{0.2, -0.3}))

	recon := anynet.SigmoidCE{}.Cost(desired, logits, 2).Output().Data().([]float32)
	diverge := KLDivergence(mean, logStddev, 2).Output().Data().([]float32)

	cost := CompositeCost{Alpha: 0.7}
	actual := cost.Cost(desired, logits, mean, logStddev, 2).Output().Data().([]float32)
	for i := range actual {
		expected := 0.7*recon[i] + 0.3*diverge[i]
		if math.Abs(float64(expected-actual[i])) > 1e-3 {
			t.Errorf("sample %d: expected %f but got %f", i, expected, actual[i])
		}
	}
}

// With alpha=1, the divergence term must not influence
// the cost or the gradient.
func TestCompositeCostAlphaGate(t *testing.T) {
	desired := anydiff.NewConst(anyvec32.MakeVectorData([]float32{1, 0.6, 0.2, 0}))
	logits := anydiff.NewConst(anyvec32.MakeVectorData([]float32{1, 0, 2, -1}))
	mean := anydiff.NewVar(anyvec32.MakeVectorData([]float32{0.5, -1}))
	logStddev := anydiff.NewVar(anyvec32.MakeVectorData([]float32{0.2, -0.3}))

	cost := CompositeCost{Alpha: 1}.Cost(desired, logits, mean, logStddev, 2)

	expected := anynet.SigmoidCE{}.Cost(desired, logits, 2).Output().Data().([]float32)
	actual := cost.Output().Data().([]float32)
	for i, x := range expected {
		if math.Abs(float64(x-actual[i])) > 1e-3 {
			t.Errorf("sample %d: expected %f but got %f", i, x, actual[i])
		}
	}

	grad := anydiff.NewGrad(mean, logStddev)
	c := cost.Output().Creator()
	upstream := c.MakeVector(cost.Output().Len())
	upstream.AddScalar(c.MakeNumeric(1))
	cost.Propagate(upstream, grad)
	for _, v := range []*anydiff.Var{mean, logStddev} {
		for i, x := range grad[v].Data().([]float32) {
			if x != 0 {
				t.Errorf("gradient component %d should be 0 but got %f", i, x)
			}
		}
	}
}
