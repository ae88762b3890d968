package IO

import (
	"encoding/json"
	"os"
	"sort"

	"github.com/pkg/errors"
)

// Vocabulary is a bijective rune <-> index mapping built once from the
// corpus chunks and immutable afterward. Indices are contiguous in [0, V).
type Vocabulary struct {
	CharToID map[rune]int
	IDToChar []rune
}

// BuildVocab scans the union of characters across all chunks and assigns
// each a unique index. Sorted rune order keeps the mapping deterministic
// across runs.
func BuildVocab(chunks []string) (Vocabulary, error) {
	set := map[rune]struct{}{}
	for _, c := range chunks {
		for _, r := range c {
			set[r] = struct{}{}
		}
	}
	if len(set) == 0 {
		return Vocabulary{}, errors.New("empty corpus: no characters to map")
	}
	runes := make([]rune, 0, len(set))
	for r := range set {
		runes = append(runes, r)
	}
	sort.Slice(runes, func(i, j int) bool { return runes[i] < runes[j] })
	charToID := make(map[rune]int, len(runes))
	for i, r := range runes {
		charToID[r] = i
	}
	return Vocabulary{CharToID: charToID, IDToChar: runes}, nil
}

// Size returns V, the number of distinct characters.
func (v Vocabulary) Size() int { return len(v.IDToChar) }

// Encode maps each rune of s to its index. An unknown rune is the dominant
// failure mode (a seed or generated symbol outside the trained vocabulary)
// and surfaces immediately.
func (v Vocabulary) Encode(s string) ([]int, error) {
	ids := make([]int, 0, len(s))
	for _, r := range s {
		id, ok := v.CharToID[r]
		if !ok {
			return nil, errors.Errorf("character %q not in vocabulary", r)
		}
		ids = append(ids, id)
	}
	return ids, nil
}

// Decode is the inverse of Encode.
func (v Vocabulary) Decode(ids []int) (string, error) {
	out := make([]rune, len(ids))
	for i, id := range ids {
		if id < 0 || id >= len(v.IDToChar) {
			return "", errors.Errorf("index %d outside vocabulary of size %d", id, len(v.IDToChar))
		}
		out[i] = v.IDToChar[id]
	}
	return string(out), nil
}

// vocabJSON is the on-disk layout: the characters concatenated in index
// order, so position == id.
type vocabJSON struct {
	Chars string `json:"chars"`
}

// ExportVocabJSON writes the vocabulary to path.
func ExportVocabJSON(v Vocabulary, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrapf(err, "create %s", path)
	}
	defer f.Close()
	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	return errors.Wrap(enc.Encode(vocabJSON{Chars: string(v.IDToChar)}), "encode vocab")
}

// ImportVocabJSON loads a vocabulary written by ExportVocabJSON.
func ImportVocabJSON(path string) (Vocabulary, error) {
	f, err := os.Open(path)
	if err != nil {
		return Vocabulary{}, errors.Wrapf(err, "open %s", path)
	}
	defer f.Close()
	var data vocabJSON
	if err := json.NewDecoder(f).Decode(&data); err != nil {
		return Vocabulary{}, errors.Wrapf(err, "decode %s", path)
	}
	runes := []rune(data.Chars)
	if len(runes) == 0 {
		return Vocabulary{}, errors.Errorf("vocab file %s holds no characters", path)
	}
	charToID := make(map[rune]int, len(runes))
	for i, r := range runes {
		if _, dup := charToID[r]; dup {
			return Vocabulary{}, errors.Errorf("vocab file %s repeats character %q", path, r)
		}
		charToID[r] = i
	}
	return Vocabulary{CharToID: charToID, IDToChar: runes}, nil
}
