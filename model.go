// Package imagevae implements a variational autoencoder
// over small grayscale images, along with tools for
// training it and sampling class-conditioned images from
// it.
package imagevae

import (
	"github.com/unixpickle/anydiff"
	"github.com/unixpickle/anynet"
	"github.com/unixpickle/anyvec"
	"github.com/unixpickle/essentials"
	"github.com/unixpickle/serializer"
)

func init() {
	var m Model
	serializer.RegisterTypedDeserializer(m.SerializerType(), DeserializeModel)
}

// A Model encapsulates the encoder and decoder halves of
// a variational autoencoder.
//
// The encoder is split into a shared trunk and two linear
// heads.
// The standard deviation head produces the log of the
// standard deviation, so the actual deviation is positive
// for any head output.
type Model struct {
	InputSize  int
	HiddenSize int
	LatentSize int

	// Encoder maps inputs to a hidden representation.
	Encoder anynet.Net

	// MeanHead and StddevHead map the hidden
	// representation to the latent mean and the latent
	// log standard deviation.
	MeanHead   *anynet.FC
	StddevHead *anynet.FC

	// Decoder maps latent codes back to pre-sigmoid pixel
	// logits.
	Decoder anynet.Net
}

// NewModel creates a new, randomized Model.
func NewModel(c anyvec.Creator, inSize, hiddenSize, latentSize int) *Model {
	return &Model{
		InputSize:  inSize,
		HiddenSize: hiddenSize,
		LatentSize: latentSize,
		Encoder: anynet.Net{
			anynet.NewFC(c, inSize, hiddenSize),
			anynet.ReLU,
		},
		MeanHead:   anynet.NewFC(c, hiddenSize, latentSize),
		StddevHead: anynet.NewFC(c, hiddenSize, latentSize),
		Decoder: anynet.Net{
			anynet.NewFC(c, latentSize, hiddenSize),
			anynet.ReLU,
			anynet.NewFC(c, hiddenSize, inSize),
		},
	}
}

// DeserializeModel deserializes a Model.
func DeserializeModel(d []byte) (*Model, error) {
	var inSize, hiddenSize, latentSize serializer.Int
	var m Model
	err := serializer.DeserializeAny(d, &inSize, &hiddenSize, &latentSize,
		&m.Encoder, &m.MeanHead, &m.StddevHead, &m.Decoder)
	if err != nil {
		return nil, essentials.AddCtx("deserialize Model", err)
	}
	m.InputSize = int(inSize)
	m.HiddenSize = int(hiddenSize)
	m.LatentSize = int(latentSize)
	return &m, nil
}

// Encode applies the encoder to a batch of inputs,
// producing the latent means and log standard deviations.
//
// The input length must be n times the input size.
func (m *Model) Encode(in anydiff.Res, n int) (mean, logStddev anydiff.Res) {
	hidden := m.Encoder.Apply(in, n)
	mean = m.MeanHead.Apply(hidden, n)
	logStddev = m.StddevHead.Apply(hidden, n)
	return
}

// DecodeLogits applies the decoder to a batch of latent
// codes, producing pre-sigmoid pixel logits.
func (m *Model) DecodeLogits(code anydiff.Res, n int) anydiff.Res {
	return m.Decoder.Apply(code, n)
}

// Decode is like DecodeLogits, but it applies a sigmoid
// so that every output component is in [0, 1].
func (m *Model) Decode(code anydiff.Res, n int) anydiff.Res {
	return anydiff.Sigmoid(m.DecodeLogits(code, n))
}

// Parameters returns the parameters of the model, in a
// fixed order.
func (m *Model) Parameters() []*anydiff.Var {
	var res []*anydiff.Var
	res = append(res, m.Encoder.Parameters()...)
	res = append(res, m.MeanHead.Parameters()...)
	res = append(res, m.StddevHead.Parameters()...)
	res = append(res, m.Decoder.Parameters()...)
	return res
}

// SerializerType returns the unique ID used to serialize
// a Model with the serializer package.
func (m *Model) SerializerType() string {
	return "github.com/unixpickle/imagevae.Model"
}

// Serialize serializes the model.
func (m *Model) Serialize() (d []byte, err error) {
	defer essentials.AddCtxTo("serialize Model", &err)
	return serializer.SerializeAny(
		serializer.Int(m.InputSize),
		serializer.Int(m.HiddenSize),
		serializer.Int(m.LatentSize),
		m.Encoder,
		m.MeanHead,
		m.StddevHead,
		m.Decoder,
	)
}
