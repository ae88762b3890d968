package model

import (
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/UM-CSCI-447-547-Fall-2019/13-recurrent-neural-networks/utils"
)

// State carries one (hidden x batch) matrix per layer between recurrent
// steps. Callers thread it through Step without looking inside; a fresh
// zero state comes from InitHidden.
type State []*mat.Dense

// Stepper is the two-function contract a sequence model must expose to the
// sampler. The model's internal architecture is its own business.
type Stepper interface {
	InitHidden(batchSize int) State
	Step(x *mat.Dense, h State) (logits *mat.Dense, next State)
}

// GRU is a forward-only stacked GRU with a dense readout over the
// vocabulary. Update/reset gates use sigmoid, the candidate uses tanh:
//
//	z = σ(Wz·x + Uz·h + bz)
//	r = σ(Wr·x + Ur·h + br)
//	h̃ = tanh(Wh·x + Uh·(r⊙h) + bh)
//	h' = (1-z)⊙h + z⊙h̃
type GRU struct {
	InputSize  int
	HiddenSize int
	OutputSize int

	// Per-layer gate weights; layer 0 consumes the one-hot input, deeper
	// layers consume the hidden state below them.
	Wz, Uz, Bz []*mat.Dense
	Wr, Ur, Br []*mat.Dense
	Wh, Uh, Bh []*mat.Dense

	// Readout to vocabulary logits.
	Why *mat.Dense
	By  *mat.Dense
}

// NewGRU builds a GRU stack with uniformly initialized weights.
func NewGRU(inputSize, hiddenSize, layers, outputSize int) *GRU {
	if layers < 1 {
		panic("NewGRU: need at least one layer")
	}
	g := &GRU{
		InputSize:  inputSize,
		HiddenSize: hiddenSize,
		OutputSize: outputSize,
	}
	in := inputSize
	for d := 0; d < layers; d++ {
		g.Wz = append(g.Wz, randMat(hiddenSize, in))
		g.Uz = append(g.Uz, randMat(hiddenSize, hiddenSize))
		g.Bz = append(g.Bz, mat.NewDense(hiddenSize, 1, nil))

		g.Wr = append(g.Wr, randMat(hiddenSize, in))
		g.Ur = append(g.Ur, randMat(hiddenSize, hiddenSize))
		g.Br = append(g.Br, mat.NewDense(hiddenSize, 1, nil))

		g.Wh = append(g.Wh, randMat(hiddenSize, in))
		g.Uh = append(g.Uh, randMat(hiddenSize, hiddenSize))
		g.Bh = append(g.Bh, mat.NewDense(hiddenSize, 1, nil))

		in = hiddenSize
	}
	g.Why = randMat(outputSize, hiddenSize)
	g.By = mat.NewDense(outputSize, 1, nil)
	return g
}

// Layers reports the number of stacked GRU layers.
func (g *GRU) Layers() int { return len(g.Wz) }

// InitHidden returns the zero state for the given batch size.
func (g *GRU) InitHidden(batchSize int) State {
	h := make(State, g.Layers())
	for d := range h {
		h[d] = mat.NewDense(g.HiddenSize, batchSize, nil)
	}
	return h
}

// Step consumes one sequence position. x is an (input x batch) one-hot
// matrix, h the carried state. It returns (output x batch) logits and the
// next state. Neither argument is mutated, so independent generation calls
// may run concurrently against one GRU.
func (g *GRU) Step(x *mat.Dense, h State) (*mat.Dense, State) {
	if len(h) != g.Layers() {
		panic("GRU.Step: state layer count mismatch")
	}
	next := make(State, len(h))
	in := x
	for d := range h {
		z := apply(sigmoid, addBias(add(dot(g.Wz[d], in), dot(g.Uz[d], h[d])), g.Bz[d]))
		r := apply(sigmoid, addBias(add(dot(g.Wr[d], in), dot(g.Ur[d], h[d])), g.Br[d]))
		cand := apply(tanh, addBias(add(dot(g.Wh[d], in), dot(g.Uh[d], mulElem(r, h[d]))), g.Bh[d]))
		next[d] = blend(z, h[d], cand)
		in = next[d]
	}
	logits := addBias(dot(g.Why, in), g.By)
	return logits, next
}

// blend computes (1-z)⊙h + z⊙cand.
func blend(z, h, cand *mat.Dense) *mat.Dense {
	r, c := z.Dims()
	out := mat.NewDense(r, c, nil)
	for i := 0; i < r; i++ {
		for j := 0; j < c; j++ {
			zij := z.At(i, j)
			out.Set(i, j, (1.0-zij)*h.At(i, j)+zij*cand.At(i, j))
		}
	}
	return out
}

// Small matrix helpers.

func dot(m, n mat.Matrix) *mat.Dense {
	r, _ := m.Dims()
	_, c := n.Dims()
	o := mat.NewDense(r, c, nil)
	o.Product(m, n)
	return o
}

func add(m, n mat.Matrix) *mat.Dense {
	r, c := m.Dims()
	o := mat.NewDense(r, c, nil)
	o.Add(m, n)
	return o
}

func mulElem(m, n mat.Matrix) *mat.Dense {
	r, c := m.Dims()
	o := mat.NewDense(r, c, nil)
	o.MulElem(m, n)
	return o
}

func apply(fn func(i, j int, v float64) float64, m mat.Matrix) *mat.Dense {
	r, c := m.Dims()
	o := mat.NewDense(r, c, nil)
	o.Apply(fn, m)
	return o
}

// addBias adds an (r x 1) bias column to every column of m.
func addBias(m, bias *mat.Dense) *mat.Dense {
	r, c := m.Dims()
	o := mat.NewDense(r, c, nil)
	for i := 0; i < r; i++ {
		b := bias.At(i, 0)
		for j := 0; j < c; j++ {
			o.Set(i, j, m.At(i, j)+b)
		}
	}
	return o
}

func sigmoid(i, j int, v float64) float64 {
	return 1.0 / (1.0 + math.Exp(-v))
}

func tanh(i, j int, v float64) float64 {
	return math.Tanh(v)
}

func randMat(r, c int) *mat.Dense {
	return mat.NewDense(r, c, utils.RandomArray(r*c, float64(c)))
}
