package model

import (
	"math"
	"path/filepath"
	"testing"

	"gonum.org/v1/gonum/mat"

	"github.com/UM-CSCI-447-547-Fall-2019/13-recurrent-neural-networks/utils"
)

func TestInitHiddenZeroed(t *testing.T) {
	g := NewGRU(5, 8, 2, 5)
	h := g.InitHidden(3)
	if len(h) != 2 {
		t.Fatalf("state has %d layers, want 2", len(h))
	}
	for d, m := range h {
		r, c := m.Dims()
		if r != 8 || c != 3 {
			t.Fatalf("layer %d dims %dx%d, want 8x3", d, r, c)
		}
		for i := 0; i < r; i++ {
			for j := 0; j < c; j++ {
				if m.At(i, j) != 0 {
					t.Fatalf("layer %d entry (%d,%d) = %g, want 0", d, i, j, m.At(i, j))
				}
			}
		}
	}
}

func TestStepShapesAndFiniteness(t *testing.T) {
	g := NewGRU(5, 8, 2, 5)
	h := g.InitHidden(1)
	logits, next := g.Step(utils.OneHot(5, 2), h)
	r, c := logits.Dims()
	if r != 5 || c != 1 {
		t.Fatalf("logits dims %dx%d, want 5x1", r, c)
	}
	if len(next) != 2 {
		t.Fatalf("next state has %d layers, want 2", len(next))
	}
	for i := 0; i < r; i++ {
		if math.IsNaN(logits.At(i, 0)) || math.IsInf(logits.At(i, 0), 0) {
			t.Fatalf("logit %d is not finite: %g", i, logits.At(i, 0))
		}
	}
}

func TestStepDoesNotMutateState(t *testing.T) {
	g := NewGRU(4, 6, 1, 4)
	h := g.InitHidden(1)
	// Advance once so the carried state is non-trivial.
	_, h = g.Step(utils.OneHot(4, 1), h)
	before := mat.DenseCopyOf(h[0])
	x := utils.OneHot(4, 3)
	xBefore := mat.DenseCopyOf(x)

	g.Step(x, h)

	if !mat.Equal(before, h[0]) {
		t.Fatal("Step mutated the carried hidden state")
	}
	if !mat.Equal(xBefore, x) {
		t.Fatal("Step mutated its input")
	}
}

func TestStepDeterministic(t *testing.T) {
	g := NewGRU(4, 6, 2, 4)
	h := g.InitHidden(1)
	x := utils.OneHot(4, 0)
	l1, _ := g.Step(x, h)
	l2, _ := g.Step(x, h)
	if !mat.Equal(l1, l2) {
		t.Fatal("same input and state produced different logits")
	}
}

func TestStepStateCarriesInformation(t *testing.T) {
	g := NewGRU(4, 6, 1, 4)
	h0 := g.InitHidden(1)
	x := utils.OneHot(4, 2)
	// Same input against zero state vs advanced state should differ:
	// the hidden state is what conditions the next prediction.
	_, h1 := g.Step(utils.OneHot(4, 1), h0)
	fromZero, _ := g.Step(x, h0)
	fromAdvanced, _ := g.Step(x, h1)
	if mat.Equal(fromZero, fromAdvanced) {
		t.Fatal("advancing the state had no effect on the logits")
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	g := NewGRU(7, 10, 2, 7)
	path := filepath.Join(t.TempDir(), "gru.gob")
	if err := SaveGRU(g, path); err != nil {
		t.Fatalf("SaveGRU: %v", err)
	}
	back, err := LoadGRU(path)
	if err != nil {
		t.Fatalf("LoadGRU: %v", err)
	}
	if back.InputSize != 7 || back.HiddenSize != 10 || back.OutputSize != 7 || back.Layers() != 2 {
		t.Fatalf("loaded sizes %d/%d/%d layers=%d", back.InputSize, back.HiddenSize, back.OutputSize, back.Layers())
	}
	// Same weights must produce the same step outputs.
	h := g.InitHidden(1)
	x := utils.OneHot(7, 3)
	want, _ := g.Step(x, h)
	got, _ := back.Step(x, back.InitHidden(1))
	if !mat.EqualApprox(want, got, 1e-15) {
		t.Fatal("loaded model disagrees with saved model")
	}
}

func TestLoadGRUMissingFile(t *testing.T) {
	if _, err := LoadGRU(filepath.Join(t.TempDir(), "nope.gob")); err == nil {
		t.Fatal("expected error for missing file")
	}
}
