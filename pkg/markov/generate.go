package markov

import (
	"context"
	"fmt"
	"log/slog"
)

// generateOptions Is used by Generate to configure default options.
type generateOptions struct {
	temperature float64
	topK        int
}

// GenerateOption is a function that configures generation parameters. It's used
// as a variadic argument to Generate.
type GenerateOption func(*generateOptions)

// WithTemperature adjusts the randomness of the token selection.
// A value of 1.0 is standard weighted random selection.
// Values > 1.0 increase randomness (making less frequent tokens more likely).
// Values < 1.0 decrease randomness (making more frequent tokens even more likely).
// A value of 0 or less results in deterministic selection (always choosing the most frequent token).
func WithTemperature(t float64) GenerateOption {
	return func(o *generateOptions) { o.temperature = t }
}

// WithTopK restricts the token selection pool to the top `k` most frequent tokens
// at each step. A value of 0 disables Top-K sampling.
func WithTopK(k int) GenerateOption {
	return func(o *generateOptions) { o.topK = k }
}

// Generate walks the chain from a uniformly random source token and returns
// up to numWords tokens. Generation stops early when the current token has
// no successors, so the result always holds between 1 and numWords tokens.
func (g *Generator) Generate(ctx context.Context, chain Chain, numWords int, opts ...GenerateOption) ([]string, error) {
	if numWords < 1 {
		return nil, ErrInvalidLength
	}

	options := &generateOptions{
		temperature: 1.0,
		topK:        0,
	}
	for _, opt := range opts {
		opt(options)
	}

	sources, err := chain.Sources(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list source tokens: %w", err)
	}
	if len(sources) == 0 {
		return nil, ErrEmptyModel
	}

	current := sources[g.rng.IntN(len(sources))]
	result := make([]string, 0, min(numWords, 1024))
	result = append(result, current)

	for len(result) < numWords {
		choices, _, err := chain.Next(ctx, current)
		if err != nil {
			return nil, fmt.Errorf("failed to get next tokens for '%s': %w", current, err)
		}

		next, ok := chooseNextToken(g.rng, choices, options)
		if !ok { // Dead end in chain
			g.logger.DebugContext(ctx, "Generation terminated due to dead-end",
				slog.String("last_token", current),
				slog.Int("generated_length", len(result)),
				slog.Int("requested_length", numWords),
			)
			return result, nil
		}

		result = append(result, next)
		current = next
	}

	g.logger.DebugContext(ctx, "Generation terminated by reaching requested length",
		slog.Int("generated_length", len(result)),
	)
	return result, nil
}
