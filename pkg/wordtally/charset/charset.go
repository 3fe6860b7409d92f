// Package charset resolves the character encoding of raw file bytes.
// Resolution never fails: detection falls back to a fixed ladder of
// common encodings, and decoding replaces undecodable sequences rather
// than aborting.
package charset

import (
	"strings"
	"unicode/utf8"

	"github.com/saintfish/chardet"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/htmlindex"
)

// DefaultConfidence is the detector confidence below which the
// fallback ladder is consulted.
const DefaultConfidence = 0.70

// DefaultFallbacks is tried in order when detection is inconclusive:
// UTF-8, two simplified-Chinese legacy encodings, Big5, and a
// permissive single-byte terminator that accepts any input.
var DefaultFallbacks = []string{"utf-8", "gbk", "gb2312", "big5", "latin-1"}

// aliases maps names the detector or config may produce onto labels
// the decoder registry understands.
var aliases = map[string]string{
	"latin-1":  "latin1",
	"latin_1":  "latin1",
	"gb-18030": "gb18030",
}

// Resolver guesses an encoding name for raw bytes.
type Resolver struct {
	detector   *chardet.Detector
	confidence float64
	fallbacks  []string
}

// NewResolver returns a Resolver with the default threshold and ladder.
func NewResolver() *Resolver {
	return NewResolverWith(DefaultConfidence, nil)
}

// NewResolverWith overrides the confidence threshold and the fallback
// ladder. Zero or negative confidence and an empty ladder select the
// defaults.
func NewResolverWith(confidence float64, fallbacks []string) *Resolver {
	if confidence <= 0 {
		confidence = DefaultConfidence
	}
	if len(fallbacks) == 0 {
		fallbacks = DefaultFallbacks
	}
	return &Resolver{
		detector:   chardet.NewTextDetector(),
		confidence: confidence,
		fallbacks:  fallbacks,
	}
}

// Resolve returns the encoding name to decode raw with. The detector's
// guess wins when its confidence meets the threshold; otherwise the
// first ladder entry under which raw decodes cleanly is used, then a
// low-confidence guess, then UTF-8. Pure function of its input.
func (r *Resolver) Resolve(raw []byte) string {
	var guess string
	if res, err := r.detector.DetectBest(raw); err == nil && res != nil {
		guess = res.Charset
		if float64(res.Confidence)/100 >= r.confidence {
			return guess
		}
	}
	for _, name := range r.fallbacks {
		if decodesCleanly(raw, name) {
			return name
		}
	}
	if guess != "" {
		return guess
	}
	return "utf-8"
}

// Decode decodes raw under the named encoding. Undecodable sequences
// become U+FFFD and unknown encoding names degrade to permissive
// UTF-8, so Decode never fails.
func Decode(raw []byte, name string) string {
	enc := lookup(name)
	if enc == nil {
		return strings.ToValidUTF8(string(raw), string(utf8.RuneError))
	}
	out, err := enc.NewDecoder().Bytes(raw)
	if err != nil {
		return strings.ToValidUTF8(string(raw), string(utf8.RuneError))
	}
	return string(out)
}

// decodesCleanly reports whether raw decodes under name without any
// replacement runes in the output.
func decodesCleanly(raw []byte, name string) bool {
	enc := lookup(name)
	if enc == nil {
		return false
	}
	out, err := enc.NewDecoder().Bytes(raw)
	if err != nil {
		return false
	}
	return !strings.ContainsRune(string(out), utf8.RuneError)
}

func lookup(name string) encoding.Encoding {
	name = strings.ToLower(strings.TrimSpace(name))
	if alias, ok := aliases[name]; ok {
		name = alias
	}
	enc, err := htmlindex.Get(name)
	if err != nil {
		return nil
	}
	return enc
}
