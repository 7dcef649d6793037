package imagevae

import (
	"errors"
	"fmt"
	"math"
	"sync"

	"github.com/unixpickle/anynet/anysgd"
	"github.com/unixpickle/anyvec"
	"github.com/unixpickle/essentials"
)

// Train fits the model's parameters for a fixed number of
// epochs using Adam, shuffling the samples once per
// epoch.
//
// The model is mutated in place; no other goroutine may
// touch its parameters for the duration of the call.
//
// If a batch produces a non-finite cost, training halts
// with an error rather than letting the corrupted
// parameters train further.
//
// The stop channel may be nil; closing it stops training
// early without an error.
func (t *Trainer) Train(samples SampleList, epochs, batchSize int, stepSize float64,
	stop <-chan struct{}) error {
	if samples.Len() == 0 {
		return errors.New("train: empty sample list")
	}
	if t.Cost.Alpha < 0 || t.Cost.Alpha > 1 {
		return fmt.Errorf("train: alpha %v is not in [0, 1]", t.Cost.Alpha)
	}

	var haltErr error
	halted := make(chan struct{})
	var once sync.Once
	halt := func(err error) {
		once.Do(func() {
			haltErr = err
			close(halted)
		})
	}
	if stop != nil {
		go func() {
			select {
			case <-stop:
				halt(nil)
			case <-halted:
			}
		}()
	}

	target := epochs * samples.Len()
	var batch int
	s := &anysgd.SGD{
		Fetcher:     t,
		Gradienter:  t,
		Transformer: &anysgd.Adam{},
		Samples:     samples,
		Rater:       anysgd.ConstRater(stepSize),
		BatchSize:   batchSize,
	}
	s.StatusFunc = func(b anysgd.Batch) {
		if batch > 0 {
			if err := checkFiniteCost(t.LastCost, batch-1); err != nil {
				halt(err)
				return
			}
		}
		if s.NumProcessed >= target {
			halt(nil)
			return
		}
		if t.StatusFunc != nil {
			t.StatusFunc(batch, t.LastCost)
		}
		batch++
	}

	if err := s.Run(halted); err != nil {
		halt(nil)
		return essentials.AddCtx("train", err)
	}
	if haltErr != nil {
		return haltErr
	}
	return checkFiniteCost(t.LastCost, batch-1)
}

func checkFiniteCost(cost anyvec.Numeric, batch int) error {
	if cost == nil {
		return nil
	}
	val := numericValue(cost)
	if math.IsNaN(val) || math.IsInf(val, 0) {
		return fmt.Errorf("train: non-finite cost %v at batch %d", val, batch)
	}
	return nil
}

func numericValue(n anyvec.Numeric) float64 {
	switch n := n.(type) {
	case float32:
		return float64(n)
	case float64:
		return n
	default:
		panic(fmt.Sprintf("unsupported numeric type: %T", n))
	}
}
