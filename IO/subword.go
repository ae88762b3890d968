package IO

import (
	"os"
	"path/filepath"

	"github.com/pkg/errors"
	tk "github.com/sugarme/tokenizer"
	"github.com/sugarme/tokenizer/model/bpe"
	"github.com/sugarme/tokenizer/normalizer"
	"github.com/sugarme/tokenizer/pretokenizer"
	"github.com/sugarme/tokenizer/pretrained"
)

// TrainOrLoadSubword trains a BPE tokenizer on corpusPath (if tokPath is
// not already on disk) and returns it. This is an optional word-level
// preprocessing path; the character sampler does not use it.
func TrainOrLoadSubword(corpusPath, tokPath string, vocabSize int) (*tk.Tokenizer, error) {
	if fileExists(tokPath) {
		t, err := pretrained.FromFile(tokPath)
		if err != nil {
			return nil, errors.Wrapf(err, "load tokenizer %s", tokPath)
		}
		return t, nil
	}

	bpeModel, err := bpe.DefaultBPE()
	if err != nil {
		return nil, errors.Wrap(err, "new BPE model")
	}
	t := tk.NewTokenizer(bpeModel)

	// Normalize to NFKC lower, matching the character pipeline's casing.
	t.WithNormalizer(normalizer.NewSequence([]normalizer.Normalizer{
		normalizer.NewNFKC(),
		normalizer.NewDefaultNormalizer(normalizer.WithLowercase(true), normalizer.WithStrip(false)),
	}))
	t.WithPreTokenizer(pretokenizer.NewWhitespaceSplit())

	tr := bpe.NewBpeTrainer(0, vocabSize)
	tr.SpecialTokens = []tk.AddedToken{
		tk.NewAddedToken("<pad>", true),
		tk.NewAddedToken("<unk>", true),
	}

	if err := t.Train(tr, []string{corpusPath}); err != nil {
		return nil, errors.Wrap(err, "train subword tokenizer")
	}
	if err := os.MkdirAll(filepath.Dir(tokPath), 0o755); err != nil {
		return nil, errors.Wrapf(err, "create %s", filepath.Dir(tokPath))
	}
	if err := t.Save(tokPath, false); err != nil {
		return nil, errors.Wrapf(err, "save tokenizer %s", tokPath)
	}
	return t, nil
}

// EncodeSubword encodes raw text into subword token IDs.
func EncodeSubword(t *tk.Tokenizer, text string) ([]int, error) {
	enc, err := t.EncodeSingle(text)
	if err != nil {
		return nil, errors.Wrap(err, "encode text")
	}
	out := make([]int, len(enc.Ids))
	for i, v := range enc.Ids {
		out[i] = int(v)
	}
	return out, nil
}
