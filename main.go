package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/UM-CSCI-447-547-Fall-2019/13-recurrent-neural-networks/IO"
	"github.com/UM-CSCI-447-547-Fall-2019/13-recurrent-neural-networks/model"
	"github.com/UM-CSCI-447-547-Fall-2019/13-recurrent-neural-networks/params"
	"github.com/UM-CSCI-447-547-Fall-2019/13-recurrent-neural-networks/sampler"
)

var (
	prepFlag     bool
	subwordFlag  bool
	generateFlag bool
	cliFlag      bool
	forceFlag    bool

	corpusPath string
	vocabPath  string
	modelPath  string
	tokPath    string

	seedFlag   string
	lengthFlag int
	tempFlag   float64
)

var log = logrus.New()

func init() {
	flag.BoolVar(&prepFlag, "prep", false, "Build the character vocabulary from the corpus and export it")
	flag.BoolVar(&subwordFlag, "subword", false, "Train a subword (BPE) tokenizer over the dialogue text")
	flag.BoolVar(&generateFlag, "generate", false, "Generate text from -seed and print it to stdout")
	flag.BoolVar(&cliFlag, "cli", false, "Interactive generation loop")
	flag.BoolVar(&forceFlag, "force", false, "Force rebuild even if cached artifacts exist")

	flag.StringVar(&corpusPath, "corpus", "data/shakespeare.txt", "Path to the corpus text file")
	flag.StringVar(&vocabPath, "vocab", "data/vocab.json", "Path to the exported character vocabulary")
	flag.StringVar(&modelPath, "model", "models/gru.gob", "Path to GRU weights (gob)")
	flag.StringVar(&tokPath, "tokenizer", "data/tokenizer.json", "Path for the subword tokenizer file")

	flag.StringVar(&seedFlag, "seed", "to be", "Seed text for generation")
	flag.IntVar(&lengthFlag, "length", params.Config.GenLen, "Total output length in characters, seed included")
	flag.Float64Var(&tempFlag, "temperature", params.Config.Temperature, "Sampling temperature (>0)")
}

func main() {
	flag.Parse()

	switch {
	case prepFlag:
		if err := prep(); err != nil {
			log.Fatal(err)
		}

	case subwordFlag:
		if _, err := IO.TrainOrLoadSubword(corpusPath, tokPath, params.Config.SubwordVocabSize); err != nil {
			log.Fatal(err)
		}
		log.WithField("path", tokPath).Info("subword tokenizer ready")

	case generateFlag:
		s, err := buildSampler()
		if err != nil {
			log.Fatal(err)
		}
		text, err := s.Generate(seedFlag, lengthFlag, tempFlag)
		if err != nil {
			log.Fatal(err)
		}
		fmt.Println(text)

	case cliFlag:
		s, err := buildSampler()
		if err != nil {
			log.Fatal(err)
		}
		SpeakCLI(s, lengthFlag, tempFlag)

	default:
		fmt.Println("No flag passed. Use -prep, -subword, -generate or -cli.")
	}
}

// prep loads the corpus, cuts it into fixed-length chunks, builds the
// character vocabulary and exports it.
func prep() error {
	chunks, err := loadChunks()
	if err != nil {
		return err
	}
	vocab, err := IO.BuildVocab(chunks)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(vocabPath), 0o755); err != nil {
		return errors.Wrapf(err, "create %s", filepath.Dir(vocabPath))
	}
	if err := IO.ExportVocabJSON(vocab, vocabPath); err != nil {
		return err
	}
	log.WithFields(logrus.Fields{
		"chunks": len(chunks),
		"vocab":  vocab.Size(),
		"path":   vocabPath,
	}).Info("character vocabulary exported")
	return nil
}

func loadChunks() ([]string, error) {
	lines, err := IO.ReadLines(corpusPath, 0)
	if err != nil {
		return nil, err
	}
	text := IO.BuildText(lines)
	chunks := IO.Chunk(text, params.Config.ChunkLen)
	if len(chunks) == 0 {
		return nil, errors.Errorf("corpus %s yields no %d-character chunks", corpusPath, params.Config.ChunkLen)
	}
	return chunks, nil
}

// buildSampler loads (or builds) the vocabulary, loads GRU weights if
// present, and wires both into a sampler.
func buildSampler() (*sampler.Sampler, error) {
	if !fileExists(vocabPath) || forceFlag {
		if err := prep(); err != nil {
			return nil, err
		}
	}
	vocab, err := IO.ImportVocabJSON(vocabPath)
	if err != nil {
		return nil, err
	}

	var g *model.GRU
	if fileExists(modelPath) {
		g, err = model.LoadGRU(modelPath)
		if err != nil {
			return nil, err
		}
		if g.InputSize != vocab.Size() || g.OutputSize != vocab.Size() {
			return nil, errors.Errorf("weights %s were trained for vocab size %d, have %d",
				modelPath, g.InputSize, vocab.Size())
		}
		log.WithField("path", modelPath).Info("loaded GRU weights")
	} else {
		log.Warn("no trained weights found; sampling from a fresh random model")
		g = model.NewGRU(vocab.Size(), params.Config.HiddenSize, params.Config.Layers, vocab.Size())
	}
	return sampler.New(g, vocab), nil
}

// fileExists true if path exists
func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
