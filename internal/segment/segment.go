// Package segment cuts Chinese text into words with a dictionary-based
// segmenter and drops tokens too short to count as words.
package segment

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"unicode/utf8"

	"github.com/huichen/sego"
	"github.com/yanyiwu/gojieba"
)

// Tokenizer splits text into words without relying on whitespace alone.
type Tokenizer interface {
	Tokenize(text string) []string
}

// Backend names a segmentation engine.
type Backend string

// Supported backends.
const (
	Jieba Backend = "jieba"
	Sego  Backend = "sego"
)

// ParseBackend maps a config value to a Backend. Empty means Jieba.
func ParseBackend(s string) (Backend, error) {
	switch b := Backend(strings.ToLower(strings.TrimSpace(s))); b {
	case "":
		return Jieba, nil
	case Jieba, Sego:
		return b, nil
	default:
		return "", fmt.Errorf("unknown segment backend %q", s)
	}
}

// New builds a Tokenizer. dictPath is optional for jieba (the bundled
// dictionary is used when empty) and required for sego.
func New(backend Backend, dictPath string) (Tokenizer, error) {
	switch backend {
	case Jieba, "":
		return NewJiebaTokenizer(dictPath), nil
	case Sego:
		return NewSegoTokenizer(dictPath)
	}
	return nil, fmt.Errorf("unknown segment backend %q", backend)
}

// JiebaTokenizer cuts in precise mode with HMM enabled for unknown words.
type JiebaTokenizer struct {
	j *gojieba.Jieba
}

// NewJiebaTokenizer loads the bundled dictionary, or dictPath when set.
func NewJiebaTokenizer(dictPath string) *JiebaTokenizer {
	if dictPath == "" {
		return &JiebaTokenizer{j: gojieba.NewJieba()}
	}
	return &JiebaTokenizer{j: gojieba.NewJieba(dictPath)}
}

// Tokenize returns the segments of text, including whitespace and
// punctuation segments; use Filter to keep words only.
func (t *JiebaTokenizer) Tokenize(text string) []string {
	if text == "" {
		return nil
	}
	return t.j.Cut(text, true)
}

// Close frees the underlying C dictionary.
func (t *JiebaTokenizer) Close() error {
	if t.j != nil {
		t.j.Free()
		t.j = nil
	}
	return nil
}

// SegoTokenizer uses sego's shortest-path segmentation over a loaded dictionary.
type SegoTokenizer struct {
	seg *sego.Segmenter
}

// NewSegoTokenizer loads a sego dictionary file. sego aborts the process on
// a missing file, so the path is checked first.
func NewSegoTokenizer(dictPath string) (*SegoTokenizer, error) {
	if dictPath == "" {
		return nil, errors.New("sego: dictionary path is required")
	}
	if _, err := os.Stat(dictPath); err != nil {
		return nil, fmt.Errorf("sego: %w", err)
	}
	seg := &sego.Segmenter{}
	seg.LoadDictionary(dictPath)
	return &SegoTokenizer{seg: seg}, nil
}

// Tokenize returns sego's segments of text in order.
func (t *SegoTokenizer) Tokenize(text string) []string {
	if text == "" {
		return nil
	}
	return sego.SegmentsToSlice(t.seg.Segment([]byte(text)), false)
}

// Keep reports whether a token counts as a word: at least two characters
// once surrounding whitespace is trimmed.
func Keep(token string) bool {
	trimmed := strings.TrimSpace(token)
	return trimmed != "" && utf8.RuneCountInString(trimmed) >= 2
}

// Filter returns the tokens accepted by Keep, in order.
func Filter(tokens []string) []string {
	out := make([]string, 0, len(tokens))
	for _, tok := range tokens {
		if Keep(tok) {
			out = append(out, tok)
		}
	}
	return out
}

// Words segments text and filters the result.
func Words(t Tokenizer, text string) []string {
	return Filter(t.Tokenize(text))
}
