package params

// GenConfig holds the corpus-preparation and generation knobs. The
// vocabulary and model are built from these and passed explicitly; they
// are never package globals.
type GenConfig struct {
	ChunkLen   int // characters per training chunk
	HiddenSize int // GRU hidden units per layer
	Layers     int // stacked GRU layers

	GenLen      int     // default generated length in characters, seed included
	Temperature float64 // default sampling temperature

	SubwordVocabSize int // target vocab size for the optional subword tokenizer
}

// Reasonable defaults for the Shakespeare exercise.
var Config = GenConfig{
	ChunkLen:   100,
	HiddenSize: 128,
	Layers:     2,

	GenLen:      500,
	Temperature: 1.0,

	SubwordVocabSize: 2048,
}
