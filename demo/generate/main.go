// Command generate loads a trained model and writes new
// images for each requested digit as PNG files, using one
// test-set image per digit as the exemplar.
package main

import (
	"flag"
	"image"
	"image/png"
	"log"
	"math/rand"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/unixpickle/anyvec"
	"github.com/unixpickle/anyvec/anyvec32"
	"github.com/unixpickle/essentials"
	"github.com/unixpickle/imagevae"
	"github.com/unixpickle/mnist"
	"github.com/unixpickle/serializer"
)

func main() {
	var modelPath, outDir, labelStr string
	var count, width int
	var seed int64
	flag.StringVar(&modelPath, "model", "model_out", "trained model file")
	flag.StringVar(&outDir, "out", "generated", "output directory")
	flag.StringVar(&labelStr, "labels", "0,1,2,3,4,5,6,7,8,9",
		"comma-separated labels to generate")
	flag.IntVar(&count, "count", 5, "images per label")
	flag.IntVar(&width, "width", 28, "image width in pixels")
	flag.Int64Var(&seed, "seed", 1, "seed for latent noise")
	flag.Parse()

	labels := parseLabels(labelStr)

	data, err := os.ReadFile(modelPath)
	if err != nil {
		essentials.Die(err)
	}
	obj, err := serializer.DeserializeWithType(data)
	if err != nil {
		essentials.Die("deserialize model:", err)
	}
	model, ok := obj.(*imagevae.Model)
	if !ok {
		essentials.Die("not a model file:", modelPath)
	}

	creator := anyvec32.CurrentCreator()
	var list imagevae.SliceSampleList
	for _, s := range mnist.LoadTestingDataSet().Samples {
		vec := creator.MakeVectorData(creator.MakeNumericList(s.Intensities))
		list = append(list, &imagevae.Sample{Image: vec, Label: s.Label})
	}

	gen := &imagevae.Generator{
		Model: model,
		Rng:   rand.New(rand.NewSource(seed)),
	}
	err = gen.GenerateAll(list, labels, count,
		func(label, idx int, img anyvec.Vector) error {
			return saveImage(outDir, label, idx, img, width)
		})
	if err != nil {
		essentials.Die(err)
	}
	log.Printf("Wrote %d images per label to %s", count, outDir)
}

func parseLabels(s string) []int {
	var res []int
	for _, part := range strings.Split(s, ",") {
		label, err := strconv.Atoi(strings.TrimSpace(part))
		if err != nil {
			essentials.Die("bad label:", part)
		}
		res = append(res, label)
	}
	return res
}

func saveImage(dir string, label, idx int, vec anyvec.Vector, width int) error {
	values := vectorFloats(vec)
	height := len(values) / width
	img := image.NewGray(image.Rect(0, 0, width, height))
	for i, v := range values {
		if v < 0 {
			v = 0
		} else if v > 1 {
			v = 1
		}
		img.Pix[i] = uint8(v*255 + 0.5)
	}

	subDir := filepath.Join(dir, strconv.Itoa(label))
	if err := os.MkdirAll(subDir, 0755); err != nil {
		return err
	}
	f, err := os.Create(filepath.Join(subDir, strconv.Itoa(idx)+".png"))
	if err != nil {
		return err
	}
	defer f.Close()
	return png.Encode(f, img)
}

func vectorFloats(vec anyvec.Vector) []float64 {
	switch data := vec.Data().(type) {
	case []float32:
		res := make([]float64, len(data))
		for i, x := range data {
			res[i] = float64(x)
		}
		return res
	case []float64:
		return data
	default:
		panic("unsupported numeric type")
	}
}
