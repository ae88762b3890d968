package sampler

import (
	"math/rand/v2"
	"strings"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/UM-CSCI-447-547-Fall-2019/13-recurrent-neural-networks/IO"
	"github.com/UM-CSCI-447-547-Fall-2019/13-recurrent-neural-networks/model"
	"github.com/UM-CSCI-447-547-Fall-2019/13-recurrent-neural-networks/utils"
)

// Sampler extends a seed string one character at a time, each draw
// conditioned on everything produced so far through the model's carried
// hidden state. Each Generate call owns its hidden state, so one Sampler
// may serve concurrent calls when Src is nil (the global source) or
// otherwise safe to share.
type Sampler struct {
	Model model.Stepper
	Vocab IO.Vocabulary

	// Src seeds the categorical draws; nil uses the global source.
	Src rand.Source

	// ReencodePrefix replays the whole accumulated prefix from a zero
	// state before every draw instead of carrying the state forward. The
	// output distribution is identical for a correct recurrent model;
	// the replay costs O(T) extra steps per character.
	ReencodePrefix bool
}

// New returns a sampler over the given model and vocabulary.
func New(m model.Stepper, v IO.Vocabulary) *Sampler {
	return &Sampler{Model: m, Vocab: v}
}

// Generate returns a string of exactly length runes whose prefix is the
// lower-cased seed. Temperature divides the logits before softmax: near 0
// approaches greedy decoding, large values flatten toward uniform. The
// hidden state starts zeroed and is owned by this call alone.
func (s *Sampler) Generate(seed string, length int, temperature float64) (string, error) {
	if temperature <= 0 {
		return "", errors.Errorf("temperature must be positive, got %g", temperature)
	}
	seed = strings.ToLower(seed)
	out := []rune(seed)
	if len(out) == 0 {
		return "", errors.New("seed must not be empty")
	}
	if length < len(out) {
		return "", errors.Errorf("length %d shorter than seed (%d runes)", length, len(out))
	}
	ids, err := s.Vocab.Encode(seed)
	if err != nil {
		return "", errors.Wrap(err, "encode seed")
	}
	if length == len(out) {
		// Nothing to generate; zero model steps.
		return string(out), nil
	}

	v := s.Vocab.Size()
	var h model.State
	var logits *mat.Dense
	if !s.ReencodePrefix {
		// Prime the state on the seed; the final step's logits predict
		// the first generated character.
		h = s.Model.InitHidden(1)
		for _, id := range ids {
			logits, h = s.Model.Step(utils.OneHot(v, id), h)
		}
	}

	for pos := len(out); pos < length; pos++ {
		if s.ReencodePrefix {
			logits = s.replay(ids)
		}
		id := s.draw(logits, temperature)
		out = append(out, s.Vocab.IDToChar[id])
		ids = append(ids, id)
		if !s.ReencodePrefix && pos+1 < length {
			logits, h = s.Model.Step(utils.OneHot(v, id), h)
		}
	}
	return string(out), nil
}

// replay feeds the whole prefix through a fresh zero state and returns the
// logits at the last position.
func (s *Sampler) replay(ids []int) *mat.Dense {
	v := s.Vocab.Size()
	h := s.Model.InitHidden(1)
	var logits *mat.Dense
	for _, id := range ids {
		logits, h = s.Model.Step(utils.OneHot(v, id), h)
	}
	return logits
}

// draw samples one vocabulary index from the temperature-scaled softmax of
// a (V x 1) logits column via categorical CDF inversion.
func (s *Sampler) draw(logits *mat.Dense, temperature float64) int {
	r, _ := logits.Dims()
	scaled := mat.NewDense(r, 1, nil)
	scaled.Scale(1.0/temperature, logits)
	probs := utils.ColSoftmax(scaled)
	w := make([]float64, r)
	for i := 0; i < r; i++ {
		w[i] = probs.At(i, 0)
	}
	cat := distuv.NewCategorical(w, s.Src)
	return int(cat.Rand())
}
