package markov

import (
	"bufio"
	"errors"
	"io"
	"strings"
	"unicode"
)

// DefaultTokenizer is a default implementation of the Tokenizer interface.
// It reads text rune by rune, keeping runs of the letters a-z as words. An
// apostrophe or dash is kept only when it sits between two letters, so
// "don't" and "well-known" survive as single tokens while quotes and dashes
// used as punctuation are dropped. Input is lowercased and typographic
// apostrophe/dash variants are folded to their ASCII forms first.
type DefaultTokenizer struct {
	separator string
}

// Option Is a function that configures a DefaultTokenizer.
type Option func(*DefaultTokenizer)

// WithSeparator Sets the string used for joining tokens during generation.
// Default: " "
func WithSeparator(sep string) Option {
	return func(t *DefaultTokenizer) {
		t.separator = sep
	}
}

// NewDefaultTokenizer creates a new tokenizer with default settings, which can be
// overridden by providing one or more Option functions.
func NewDefaultTokenizer(opts ...Option) *DefaultTokenizer {
	t := &DefaultTokenizer{
		separator: " ",
	}

	for _, opt := range opts {
		opt(t)
	}

	return t
}

// Separator Returns the configured separator string.
func (t *DefaultTokenizer) Separator(_, _ string) string {
	return t.separator
}

// NewStream Returns the stream processor.
func (t *DefaultTokenizer) NewStream(r io.Reader) StreamTokenizer {
	return &DefaultStreamTokenizer{
		reader: bufio.NewReader(r),
	}
}

// Tokenize splits text into its normalized word tokens using the default
// tokenizer. The result may be empty but never contains an empty string.
func Tokenize(text string) []string {
	stream := NewDefaultTokenizer().NewStream(strings.NewReader(text))
	var tokens []string
	for {
		token, err := stream.Next()
		if err != nil {
			// A strings.Reader only ever reports io.EOF.
			return tokens
		}
		tokens = append(tokens, token.Text)
	}
}

// DefaultStreamTokenizer is the default implementation of the StreamTokenizer interface.
// It keeps the previous rune and one rune of lookahead so that it can decide
// whether an apostrophe or dash is internal to a word.
type DefaultStreamTokenizer struct {
	reader  *bufio.Reader
	builder strings.Builder
	prev    rune
	next    rune
	hasNext bool
	started bool
	done    bool
}

// Next returns the next token from the stream. It returns a Token and a nil error on
// success. When the stream is exhausted, it returns a nil Token and io.EOF.
// Any other error indicates a problem reading from the underlying stream.
func (s *DefaultStreamTokenizer) Next() (*Token, error) {
	if s.done {
		return nil, io.EOF
	}
	if !s.started {
		s.started = true
		if err := s.advance(); err != nil {
			return nil, err
		}
	}

	for s.hasNext {
		current := s.next
		if err := s.advance(); err != nil {
			return nil, err
		}

		switch {
		case isLetter(current):
			s.builder.WriteRune(current)
		case isJoiner(current) && isLetter(s.prev) && s.hasNext && isLetter(s.next):
			s.builder.WriteRune(current)
		default:
			if s.builder.Len() > 0 {
				s.prev = current
				return s.flush(), nil
			}
		}
		s.prev = current
	}

	s.done = true
	if s.builder.Len() > 0 {
		return s.flush(), nil
	}
	return nil, io.EOF
}

// advance reads the lookahead rune, normalized. hasNext is false once the
// reader is exhausted.
func (s *DefaultStreamTokenizer) advance() error {
	r, _, err := s.reader.ReadRune()
	if err != nil {
		if errors.Is(err, io.EOF) {
			s.hasNext = false
			return nil
		}
		return err
	}
	s.next = normalizeRune(r)
	s.hasNext = true
	return nil
}

func (s *DefaultStreamTokenizer) flush() *Token {
	token := &Token{Text: s.builder.String()}
	s.builder.Reset()
	return token
}

// normalizeRune lowercases r and folds typographic apostrophes and dashes to
// their ASCII equivalents.
func normalizeRune(r rune) rune {
	switch r {
	case '‘', '’', 'ʼ', '′', '＇':
		return '\''
	case '‐', '‑', '‒', '–', '—', '−', '﹣', '－':
		return '-'
	}
	return unicode.ToLower(r)
}

func isLetter(r rune) bool {
	return r >= 'a' && r <= 'z'
}

func isJoiner(r rune) bool {
	return r == '\'' || r == '-'
}
