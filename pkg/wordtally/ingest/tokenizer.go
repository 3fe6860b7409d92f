package ingest

import "strings"

// Tokenizer extracts normalized English word tokens from decoded text.
type Tokenizer struct{}

// NewTokenizer creates a new tokenizer.
func NewTokenizer() *Tokenizer { return &Tokenizer{} }

// Tokenize returns the maximal runs of ASCII alphabetic characters in
// text, lowercased, in order of appearance. Digits, punctuation,
// underscores, apostrophes, hyphens and non-ASCII letters are never
// part of a token; they terminate the current run. There is no length
// or stop-word filtering: "a" and "i" are valid tokens.
func (t *Tokenizer) Tokenize(text string) []string {
	var tokens []string
	var current strings.Builder

	// Byte-wise scan is safe: every byte of a multi-byte UTF-8 rune is
	// >= 0x80 and therefore terminates a run like any other non-letter.
	for i := 0; i < len(text); i++ {
		c := text[i]
		switch {
		case 'a' <= c && c <= 'z':
			current.WriteByte(c)
		case 'A' <= c && c <= 'Z':
			current.WriteByte(c + 'a' - 'A')
		default:
			if current.Len() > 0 {
				tokens = append(tokens, current.String())
				current.Reset()
			}
		}
	}
	if current.Len() > 0 {
		tokens = append(tokens, current.String())
	}
	return tokens
}

// CountTokens folds a token sequence into a per-word occurrence
// multiset. The result is the ephemeral batch merged into the store.
func CountTokens(tokens []string) map[string]int64 {
	counts := make(map[string]int64, len(tokens))
	for _, tok := range tokens {
		counts[tok]++
	}
	return counts
}
