package imagevae

import (
	"fmt"
	"math/rand"

	"github.com/unixpickle/anydiff"
	"github.com/unixpickle/anyvec"
	"github.com/unixpickle/essentials"
)

// Exemplars scans the list in order and collects the
// first sample bearing each requested label.
//
// The result is keyed by the label's value, so the labels
// need not form a dense range.
//
// If some requested labels never appear in the list, the
// exemplars that were found are returned along with an
// error naming the missing labels.
func Exemplars(list SampleList, labels []int) (map[int]anyvec.Vector, error) {
	wanted := map[int]bool{}
	for _, l := range labels {
		wanted[l] = true
	}

	res := map[int]anyvec.Vector{}
	for i := 0; i < list.Len() && len(res) < len(wanted); i++ {
		sample, err := list.GetSample(i)
		if err != nil {
			return nil, essentials.AddCtx("find exemplars", err)
		}
		if wanted[sample.Label] {
			if _, ok := res[sample.Label]; !ok {
				res[sample.Label] = sample.Image
			}
		}
	}

	var missing []int
	seen := map[int]bool{}
	for _, l := range labels {
		if _, ok := res[l]; !ok && !seen[l] {
			seen[l] = true
			missing = append(missing, l)
		}
	}
	if len(missing) > 0 {
		return res, fmt.Errorf("find exemplars: no sample for labels %v", missing)
	}
	return res, nil
}

// A Generator produces new images in the style of a class
// by sampling around one real exemplar's latent
// distribution.
type Generator struct {
	Model *Model

	// Rng is the source of latent noise.
	// If it is nil, the global generator is used.
	Rng *rand.Rand
}

// Generate encodes the exemplar once and then decodes
// count freshly sampled latent codes, each drawn with new
// noise around the exemplar's latent distribution.
//
// Every component of every output vector is in [0, 1].
func (g *Generator) Generate(exemplar anyvec.Vector, count int) []anyvec.Vector {
	mean, logStddev := g.Model.Encode(anydiff.NewConst(exemplar), 1)
	res := make([]anyvec.Vector, count)
	for i := range res {
		code := SampleLatent(mean, logStddev, g.Rng)
		res[i] = g.Model.Decode(code, 1).Output()
	}
	return res
}

// GenerateAll generates count images for each requested
// label, using the list to find one exemplar per label,
// and passes every image to emit along with its label and
// example index.
//
// Labels with an exemplar are generated and emitted even
// when other labels have none; the missing-label error is
// returned after the satisfied labels are done.
//
// If emit returns an error, generation stops immediately.
func (g *Generator) GenerateAll(list SampleList, labels []int, count int,
	emit func(label, idx int, image anyvec.Vector) error) error {
	exemplars, exErr := Exemplars(list, labels)
	for _, label := range labels {
		exemplar, ok := exemplars[label]
		if !ok {
			continue
		}
		for i, img := range g.Generate(exemplar, count) {
			if err := emit(label, i, img); err != nil {
				return essentials.AddCtx("generate", err)
			}
		}
	}
	return exErr
}
