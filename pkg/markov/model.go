package markov

import (
	"context"
	"errors"
)

var (
	// ErrEmptyModel is returned when generation is attempted on a model that
	// has no source tokens.
	ErrEmptyModel = errors.New("markov: model has no source tokens")
	// ErrInvalidLength is returned when fewer than one word is requested.
	ErrInvalidLength = errors.New("markov: number of words must be at least 1")
)

// ChainToken represents a potential next token in a Markov chain, together
// with the number of times it followed a given source token.
type ChainToken struct {
	Text string
	Freq int
}

// Chain is a read-only view of a first-order transition model. It is
// implemented by the in-memory TransitionTable and by the SQLite-backed
// SQLStore, so the Generator does not care where the counts live.
type Chain interface {
	// Sources returns every token that has recorded successors, in the order
	// they were first seen.
	Sources(ctx context.Context) ([]string, error)
	// Next returns the successors of token in first-seen order, along with the
	// sum of their frequencies. An unknown token yields a nil slice and 0.
	Next(ctx context.Context, token string) ([]ChainToken, int, error)
}

// successors is one row of the table: the tokens that followed a source token.
type successors struct {
	links []ChainToken
	index map[string]int
	total int
}

// TransitionTable maps a source token to the frequency of every token that
// immediately followed it. Both levels remember insertion order, which keeps
// sampling reproducible when the random source is fixed.
type TransitionTable struct {
	sources []string
	rows    map[string]*successors
}

// NewTransitionTable returns an empty table.
func NewTransitionTable() *TransitionTable {
	return &TransitionTable{
		rows: make(map[string]*successors),
	}
}

// Observe records one occurrence of next following source, creating the row
// and the count as needed.
func (t *TransitionTable) Observe(source, next string) {
	row := t.row(source)
	if i, ok := row.index[next]; ok {
		row.links[i].Freq++
	} else {
		row.index[next] = len(row.links)
		row.links = append(row.links, ChainToken{Text: next, Freq: 1})
	}
	row.total++
}

// row returns the successor row for source, adding an empty one if absent.
func (t *TransitionTable) row(source string) *successors {
	row, ok := t.rows[source]
	if !ok {
		row = &successors{index: make(map[string]int)}
		t.rows[source] = row
		t.sources = append(t.sources, source)
	}
	return row
}

// Len returns the number of source tokens in the table.
func (t *TransitionTable) Len() int {
	return len(t.sources)
}

// Count returns how many times next was observed after source.
func (t *TransitionTable) Count(source, next string) int {
	row, ok := t.rows[source]
	if !ok {
		return 0
	}
	if i, ok := row.index[next]; ok {
		return row.links[i].Freq
	}
	return 0
}

// Successors returns a copy of the successor counts for source, or nil if
// source has no row.
func (t *TransitionTable) Successors(source string) map[string]int {
	row, ok := t.rows[source]
	if !ok {
		return nil
	}
	counts := make(map[string]int, len(row.links))
	for _, link := range row.links {
		counts[link.Text] = link.Freq
	}
	return counts
}

// Sources implements Chain.
func (t *TransitionTable) Sources(_ context.Context) ([]string, error) {
	return append([]string(nil), t.sources...), nil
}

// Next implements Chain. The returned slice is shared with the table and
// must not be modified.
func (t *TransitionTable) Next(_ context.Context, token string) ([]ChainToken, int, error) {
	row, ok := t.rows[token]
	if !ok {
		return nil, 0, nil
	}
	return row.links, row.total, nil
}
