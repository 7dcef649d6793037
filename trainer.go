package imagevae

import (
	"errors"
	"fmt"
	"math/rand"
	"runtime"
	"sync"

	"github.com/unixpickle/anydiff"
	"github.com/unixpickle/anynet/anysgd"
	"github.com/unixpickle/anyvec"
	"github.com/unixpickle/essentials"
)

// A Batch stores a packed batch of training images.
//
// The images serve as both the network input and the
// reconstruction target.
type Batch struct {
	Images *anydiff.Const
	Num    int
}

// A Trainer can construct batches, compute gradients, and
// tally up costs for a Model.
type Trainer struct {
	Model  *Model
	Cost   CompositeCost
	Params []*anydiff.Var

	// Rng is the source of latent noise during training.
	// If it is nil, the global generator is used.
	Rng *rand.Rand

	// After every gradient computation, LastCost is set to
	// the total cost from the batch.
	LastCost anyvec.Numeric

	// StatusFunc, if non-nil, is called before every batch
	// with the batch index and the previous batch's cost.
	StatusFunc func(batch int, cost anyvec.Numeric)

	// MaxGos specifies the maximum goroutines to use
	// simultaneously for fetching samples.
	// If it is 0, GOMAXPROCS is used.
	MaxGos int
}

// Fetch produces a *Batch for the subset of samples.
// The s argument must implement SampleList.
// The batch may not be empty, and every image must have
// the model's input size.
func (t *Trainer) Fetch(s anysgd.SampleList) (anysgd.Batch, error) {
	if s.Len() == 0 {
		return nil, errors.New("fetch batch: empty batch")
	}

	l := s.(SampleList)
	ins := make([]anyvec.Vector, l.Len())

	idxChan := make(chan int, l.Len())
	for i := 0; i < l.Len(); i++ {
		idxChan <- i
	}
	close(idxChan)

	maxGos := t.MaxGos
	if maxGos == 0 {
		maxGos = runtime.GOMAXPROCS(0)
	}

	wg := sync.WaitGroup{}
	errChan := make(chan error, maxGos)
	for i := 0; i < maxGos; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range idxChan {
				sample, err := l.GetSample(i)
				if err != nil {
					errChan <- essentials.AddCtx("fetch batch", err)
					return
				}
				if sample.Image.Len() != t.Model.InputSize {
					errChan <- fmt.Errorf("fetch batch: sample %d: image length "+
						"%d (expected %d)", i, sample.Image.Len(), t.Model.InputSize)
					return
				}
				ins[i] = sample.Image
			}
		}()
	}

	wg.Wait()
	close(errChan)

	if err := <-errChan; err != nil {
		return nil, err
	}

	joined := ins[0].Creator().Concat(ins...)
	return &Batch{
		Images: anydiff.NewConst(joined),
		Num:    l.Len(),
	}, nil
}

// TotalCost computes the total cost for the *Batch.
//
// The total is a sum over the samples, not an average, so
// it scales with the batch size.
func (t *Trainer) TotalCost(b anysgd.Batch) anydiff.Res {
	batch := b.(*Batch)
	c := batch.Images.Output().Creator()
	noise := c.MakeVector(batch.Num * t.Model.LatentSize)
	anyvec.Rand(noise, anyvec.Normal, t.Rng)
	return anydiff.Sum(t.batchCost(batch.Images, batch.Num, anydiff.NewConst(noise)))
}

// batchCost computes the per-sample costs for a batch of
// images with a fixed noise vector.
//
// Reused intermediates are pooled, so the encoder trunk
// and heads are each back-propagated once per batch.
func (t *Trainer) batchCost(images anydiff.Res, n int, noise anydiff.Res) anydiff.Res {
	hidden := t.Model.Encoder.Apply(images, n)
	return anydiff.Pool(hidden, func(hidden anydiff.Res) anydiff.Res {
		mean := t.Model.MeanHead.Apply(hidden, n)
		logStddev := t.Model.StddevHead.Apply(hidden, n)
		return anydiff.Pool(mean, func(mean anydiff.Res) anydiff.Res {
			return anydiff.Pool(logStddev, func(logStddev anydiff.Res) anydiff.Res {
				code := SampleLatentNoise(mean, logStddev, noise)
				logits := t.Model.DecodeLogits(code, n)
				return t.Cost.Cost(images, logits, mean, logStddev, n)
			})
		})
	})
}

// Gradient computes the gradient for the batch's cost.
// It also sets t.LastCost to the numerical value of the
// total cost.
//
// A fresh gradient is allocated on every call, so stale
// values never carry over between batches.
//
// The b argument must be a *Batch.
func (t *Trainer) Gradient(b anysgd.Batch) anydiff.Grad {
	res := anydiff.NewGrad(t.Params...)

	cost := t.TotalCost(b)
	t.LastCost = anyvec.Sum(cost.Output())

	c := cost.Output().Creator()
	upstream := c.MakeVectorData(c.MakeNumericList([]float64{1}))
	cost.Propagate(upstream, res)

	return res
}
