// Command train fits a variational autoencoder to the
// MNIST handwritten digits and saves the resulting model.
package main

import (
	"flag"
	"log"
	"math/rand"
	"os"

	"github.com/unixpickle/anyvec"
	"github.com/unixpickle/anyvec/anyvec32"
	"github.com/unixpickle/essentials"
	"github.com/unixpickle/imagevae"
	"github.com/unixpickle/mnist"
	"github.com/unixpickle/rip"
	"github.com/unixpickle/serializer"
)

func main() {
	var hiddenSize, latentSize, batchSize, epochs int
	var alpha, stepSize float64
	var seed int64
	var outPath string
	flag.IntVar(&hiddenSize, "hidden", 400, "hidden layer size")
	flag.IntVar(&latentSize, "latent", 20, "latent space size")
	flag.IntVar(&batchSize, "batch", 100, "mini-batch size")
	flag.IntVar(&epochs, "epochs", 10, "number of training epochs")
	flag.Float64Var(&alpha, "alpha", 0.5, "reconstruction weight, in [0,1]")
	flag.Float64Var(&stepSize, "step", 0.001, "Adam step size")
	flag.Int64Var(&seed, "seed", 1, "seed for latent noise")
	flag.StringVar(&outPath, "out", "model_out", "output model file")
	flag.Parse()

	creator := anyvec32.CurrentCreator()

	log.Println("Loading samples...")
	var samples imagevae.SliceSampleList
	for _, s := range mnist.LoadTrainingDataSet().Samples {
		vec := creator.MakeVectorData(creator.MakeNumericList(s.Intensities))
		samples = append(samples, &imagevae.Sample{Image: vec, Label: s.Label})
	}

	model := imagevae.NewModel(creator, 28*28, hiddenSize, latentSize)
	trainer := &imagevae.Trainer{
		Model:  model,
		Cost:   imagevae.CompositeCost{Alpha: alpha},
		Params: model.Parameters(),
		Rng:    rand.New(rand.NewSource(seed)),
		StatusFunc: func(batch int, cost anyvec.Numeric) {
			log.Printf("batch %d: cost=%v", batch, cost)
		},
	}

	log.Println("Press ctrl+c once to stop...")
	err := trainer.Train(samples, epochs, batchSize, stepSize, rip.NewRIP().Chan())
	if err != nil {
		essentials.Die(err)
	}

	data, err := serializer.SerializeWithType(model)
	if err != nil {
		essentials.Die(err)
	}
	if err := os.WriteFile(outPath, data, 0644); err != nil {
		essentials.Die(err)
	}
	log.Println("Saved model to", outPath)
}
