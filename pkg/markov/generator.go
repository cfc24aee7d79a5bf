package markov

import (
	"io"
	"log/slog"
	"math/rand/v2"
)

// Generator is the main entry point for producing text from a trained Chain.
// It owns the random source used to pick the starting token and to sample
// each successor, so a Generator built from a fixed source replays the same
// output for the same model.
//
// A Generator is not safe for concurrent use.
type Generator struct {
	rng    *rand.Rand
	logger *slog.Logger
}

// NewGenerator creates and returns a new Generator drawing from src. If src
// is nil, a PCG source seeded from the runtime's random state is used.
func NewGenerator(src rand.Source) *Generator {
	if src == nil {
		src = rand.NewPCG(rand.Uint64(), rand.Uint64())
	}
	return &Generator{
		rng:    rand.New(src),
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
}

// SetLogger sets the logger for the Generator. By default, all logs are discarded.
// Providing a `log/slog.Logger` will enable debug logging of how each
// generation run terminated.
func (g *Generator) SetLogger(logger *slog.Logger) {
	if logger != nil {
		g.logger = logger
	}
}
