package model

import (
	"bytes"
	"encoding/gob"
	"os"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/mat"
)

// matData is a gob-friendly flattening of one matrix.
type matData struct {
	Data []float64
	R, C int
}

// gruData is the serialized container: numeric weight data only.
type gruData struct {
	InputSize  int
	HiddenSize int
	OutputSize int

	Wz, Uz, Bz []matData
	Wr, Ur, Br []matData
	Wh, Uh, Bh []matData

	Why matData
	By  matData
}

// SaveGRU persists a GRU to disk using gob.
func SaveGRU(g *GRU, filename string) error {
	data := gruData{
		InputSize:  g.InputSize,
		HiddenSize: g.HiddenSize,
		OutputSize: g.OutputSize,

		Wz: flattenAll(g.Wz), Uz: flattenAll(g.Uz), Bz: flattenAll(g.Bz),
		Wr: flattenAll(g.Wr), Ur: flattenAll(g.Ur), Br: flattenAll(g.Br),
		Wh: flattenAll(g.Wh), Uh: flattenAll(g.Uh), Bh: flattenAll(g.Bh),

		Why: flatten(g.Why),
		By:  flatten(g.By),
	}

	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(data); err != nil {
		return errors.Wrap(err, "encode GRU weights")
	}
	return errors.Wrapf(os.WriteFile(filename, buf.Bytes(), 0644), "write %s", filename)
}

// LoadGRU loads a GRU saved by SaveGRU.
func LoadGRU(filename string) (*GRU, error) {
	raw, err := os.ReadFile(filename)
	if err != nil {
		return nil, errors.Wrapf(err, "read %s", filename)
	}
	var data gruData
	if err := gob.NewDecoder(bytes.NewBuffer(raw)).Decode(&data); err != nil {
		return nil, errors.Wrapf(err, "decode %s", filename)
	}
	if len(data.Wz) == 0 {
		return nil, errors.Errorf("%s holds no layers", filename)
	}

	g := &GRU{
		InputSize:  data.InputSize,
		HiddenSize: data.HiddenSize,
		OutputSize: data.OutputSize,

		Wz: rebuildAll(data.Wz), Uz: rebuildAll(data.Uz), Bz: rebuildAll(data.Bz),
		Wr: rebuildAll(data.Wr), Ur: rebuildAll(data.Ur), Br: rebuildAll(data.Br),
		Wh: rebuildAll(data.Wh), Uh: rebuildAll(data.Uh), Bh: rebuildAll(data.Bh),

		Why: rebuild(data.Why),
		By:  rebuild(data.By),
	}
	return g, nil
}

func flatten(m *mat.Dense) matData {
	r, c := m.Dims()
	raw := mat.DenseCopyOf(m).RawMatrix()
	out := matData{R: r, C: c, Data: make([]float64, len(raw.Data))}
	copy(out.Data, raw.Data)
	return out
}

func flattenAll(ms []*mat.Dense) []matData {
	out := make([]matData, len(ms))
	for i, m := range ms {
		out[i] = flatten(m)
	}
	return out
}

func rebuild(d matData) *mat.Dense {
	return mat.NewDense(d.R, d.C, d.Data)
}

func rebuildAll(ds []matData) []*mat.Dense {
	out := make([]*mat.Dense, len(ds))
	for i, d := range ds {
		out[i] = rebuild(d)
	}
	return out
}
