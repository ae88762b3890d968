package IO

import (
	"bufio"
	"os"
	"regexp"
	"strings"

	"github.com/pkg/errors"
)

// Dialogue lines in the Project Gutenberg Shakespeare layout are indented
// by exactly two spaces; speaker names, stage directions and front matter
// are not.
const dialoguePrefix = "  "

// wordRe splits a line into word tokens (letters, digits, underscores,
// apostrophes) and single punctuation tokens.
var wordRe = regexp.MustCompile(`[\w']+|[.,!?;:]`)

// ReadLines reads a text file line by line. limit > 0 caps the number of
// lines returned.
func ReadLines(path string, limit int) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "open corpus %s", path)
	}
	defer f.Close()
	out := []string{}
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		out = append(out, sc.Text())
		if limit > 0 && len(out) >= limit {
			break
		}
	}
	return out, errors.Wrap(sc.Err(), "scan corpus")
}

// DialogueLines keeps only the content lines of the corpus.
func DialogueLines(lines []string) []string {
	out := []string{}
	for _, l := range lines {
		if strings.HasPrefix(l, dialoguePrefix) {
			out = append(out, l)
		}
	}
	return out
}

// TokenizeWords splits a dialogue line into lower-cased word and
// punctuation tokens. Fully upper-case tokens (speaker names like HAMLET)
// and pure-digit tokens (act/scene numbers) are discarded.
func TokenizeWords(line string) []string {
	out := []string{}
	for _, tok := range wordRe.FindAllString(line, -1) {
		if isAllUpper(tok) || isAllDigits(tok) {
			continue
		}
		out = append(out, strings.ToLower(tok))
	}
	return out
}

// BuildText filters the raw lines down to dialogue, tokenizes each, and
// joins every surviving token with single spaces into one corpus string.
func BuildText(lines []string) string {
	toks := []string{}
	for _, l := range DialogueLines(lines) {
		toks = append(toks, TokenizeWords(l)...)
	}
	return strings.Join(toks, " ")
}

// Chunk cuts text into consecutive non-overlapping size-rune pieces. The
// trailing partial piece is dropped; there is no padding.
func Chunk(text string, size int) []string {
	if size <= 0 {
		panic("Chunk: size must be positive")
	}
	runes := []rune(text)
	n := len(runes) / size
	out := make([]string, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, string(runes[i*size:(i+1)*size]))
	}
	return out
}

func isAllUpper(s string) bool {
	// "fully upper-case" means the token has letters and none of them are
	// lower-case; punctuation-only tokens are not upper-case.
	return s == strings.ToUpper(s) && s != strings.ToLower(s)
}

func isAllDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

func fileExists(p string) bool {
	_, err := os.Stat(p)
	return err == nil
}
