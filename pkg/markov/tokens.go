package markov

import (
	"io"
	"strings"
)

// Token represents a single tokenized unit of text: a lowercase word made of
// letters, optionally with internal apostrophes or dashes.
type Token struct {
	Text string
}

// Tokenizer is an interface that defines the contract for splitting input text
// into tokens. This allows the model and generator logic to be independent of
// the specific tokenization strategy.
type Tokenizer interface {
	// NewStream returns a stateful StreamTokenizer for processing an io.Reader.
	NewStream(io.Reader) StreamTokenizer
	// Separator returns the string that should be used to join tokens
	// when building a final generated string, using the previous and current
	// tokens.
	Separator(prev, current string) string
}

// StreamTokenizer is an interface for a stateful tokenizer that processes a
// stream of data, returning one token at a time.
type StreamTokenizer interface {
	// Next returns the next token from the stream. It returns io.EOF as the
	// error when the stream is fully consumed.
	Next() (*Token, error)
}

// Join builds the output string for a generated sequence, asking the
// tokenizer for the separator between each pair of tokens.
func Join(t Tokenizer, tokens []string) string {
	var builder strings.Builder
	for i, token := range tokens {
		if i > 0 {
			builder.WriteString(t.Separator(tokens[i-1], token))
		}
		builder.WriteString(token)
	}
	return builder.String()
}
