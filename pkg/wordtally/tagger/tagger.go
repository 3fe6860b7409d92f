package tagger

import (
	prose "github.com/jdkato/prose/v2"
)

// Unknown is the sentinel category returned when tagging fails.
const Unknown = "UNKNOWN"

// Tagger assigns a grammatical category label to a single word.
// Implementations must return some label for any input; internal
// failures surface as Unknown, never as an error.
type Tagger interface {
	Tag(word string) string
}

// Func adapts a plain function to the Tagger interface.
type Func func(word string) string

// Tag implements Tagger.
func (f Func) Tag(word string) string { return f(word) }

// Static returns a Tagger that labels every word with the same category.
// Useful as a test double.
func Static(label string) Tagger {
	return Func(func(string) string { return label })
}

type proseTagger struct{}

// New returns the default tagger, backed by the prose part-of-speech
// model. Labels are Penn Treebank tags (NN, VB, JJ, ...).
func New() Tagger { return proseTagger{} }

// Tag labels a single word out of context. The word is the whole
// document, so the model sees no surrounding sentence; the result is a
// best-effort single-word guess.
func (proseTagger) Tag(word string) string {
	if word == "" {
		return Unknown
	}
	doc, err := prose.NewDocument(word,
		prose.WithSegmentation(false),
		prose.WithExtraction(false),
	)
	if err != nil {
		return Unknown
	}
	toks := doc.Tokens()
	if len(toks) == 0 || toks[0].Tag == "" {
		return Unknown
	}
	return toks[0].Tag
}
