package utils

import (
	"math"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat/distuv"
)

// OneHot returns an (n x 1) column with a single 1 at idx. An out-of-range
// idx yields an all-zero column.
func OneHot(n, idx int) *mat.Dense {
	v := make([]float64, n)
	if idx >= 0 && idx < n {
		v[idx] = 1.0
	}
	return mat.NewDense(n, 1, v)
}

// OneHotSeq encodes an index sequence as an (n x T) matrix with exactly one
// 1 per column, at the row equal to the index at that position.
func OneHotSeq(ids []int, n int) (*mat.Dense, error) {
	if len(ids) == 0 {
		return nil, errors.New("one-hot: empty index sequence")
	}
	out := mat.NewDense(n, len(ids), nil)
	for t, id := range ids {
		if id < 0 || id >= n {
			return nil, errors.Errorf("one-hot: index %d outside [0, %d)", id, n)
		}
		out.Set(id, t, 1.0)
	}
	return out, nil
}

// OneHotBatch encodes a batch of index sequences, one (n x T) matrix per
// example. The three axes are (batch, vocab, position).
func OneHotBatch(seqs [][]int, n int) ([]*mat.Dense, error) {
	out := make([]*mat.Dense, len(seqs))
	for b, ids := range seqs {
		m, err := OneHotSeq(ids, n)
		if err != nil {
			return nil, errors.Wrapf(err, "batch element %d", b)
		}
		out[b] = m
	}
	return out, nil
}

// ColSoftmax applies softmax across the single column of a (r x 1) vector,
// subtracting the max logit before exponentiating for numerical stability.
func ColSoftmax(v *mat.Dense) *mat.Dense {
	r, c := v.Dims()
	if c != 1 {
		panic("ColSoftmax expects a (r x 1) column vector")
	}
	out := mat.NewDense(r, 1, nil)
	mx := v.At(0, 0)
	for i := 1; i < r; i++ {
		if v.At(i, 0) > mx {
			mx = v.At(i, 0)
		}
	}
	sum := 0.0
	for i := 0; i < r; i++ {
		e := math.Exp(v.At(i, 0) - mx)
		out.Set(i, 0, e)
		sum += e
	}
	for i := 0; i < r; i++ {
		out.Set(i, 0, out.At(i, 0)/sum)
	}
	return out
}

// ArgmaxCol returns the row of the largest entry in a column vector.
func ArgmaxCol(v *mat.Dense) int {
	r, c := v.Dims()
	if c != 1 {
		panic("ArgmaxCol expects a column vector")
	}
	bestI := 0
	best := v.At(0, 0)
	for i := 1; i < r; i++ {
		if v.At(i, 0) > best {
			best = v.At(i, 0)
			bestI = i
		}
	}
	return bestI
}

// ArgmaxCols returns the per-column argmax of m, inverting OneHotSeq.
func ArgmaxCols(m *mat.Dense) []int {
	r, c := m.Dims()
	out := make([]int, c)
	for j := 0; j < c; j++ {
		bestI := 0
		best := m.At(0, j)
		for i := 1; i < r; i++ {
			if m.At(i, j) > best {
				best = m.At(i, j)
				bestI = i
			}
		}
		out[j] = bestI
	}
	return out
}

// LastCol returns a copy of the final column of m as an (r x 1) vector.
func LastCol(m *mat.Dense) *mat.Dense {
	r, c := m.Dims()
	dst := make([]float64, r)
	for i := 0; i < r; i++ {
		dst[i] = m.At(i, c-1)
	}
	return mat.NewDense(r, 1, dst)
}

func ToDense(m mat.Matrix) *mat.Dense {
	if d, ok := m.(*mat.Dense); ok {
		return d
	}
	return mat.DenseCopyOf(m)
}

// RandomArray returns 'size' samples from U(-1/sqrt(v), 1/sqrt(v)).
func RandomArray(size int, v float64) []float64 {
	dist := distuv.Uniform{
		Min: -1.0 / math.Sqrt(v+1e-12),
		Max: 1.0 / math.Sqrt(v+1e-12),
	}
	out := make([]float64, size)
	for i := range out {
		out[i] = dist.Rand()
	}
	return out
}
