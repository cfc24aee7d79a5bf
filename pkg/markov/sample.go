package markov

import (
	"math"
	"math/rand/v2"
	"sort"
)

// WeightedChoice draws one token from choices with probability proportional
// to its frequency. It picks a number in [0, total) and walks the choices in
// order, returning the first whose running sum exceeds it. Choices with a
// non-positive frequency can never be picked. The boolean is false only when
// there is nothing to pick from.
func WeightedChoice(r *rand.Rand, choices []ChainToken) (string, bool) {
	total := 0
	for _, choice := range choices {
		if choice.Freq > 0 {
			total += choice.Freq
		}
	}
	if total == 0 {
		return "", false
	}

	randChoice := r.IntN(total)
	cumulative := 0
	for _, choice := range choices {
		if choice.Freq <= 0 {
			continue
		}
		cumulative += choice.Freq
		if randChoice < cumulative {
			return choice.Text, true
		}
	}
	// cumulative == total > randChoice after the loop, so this is unreachable.
	return "", false
}

// chooseNextToken applies the top-K and temperature options on top of the
// plain weighted choice.
func chooseNextToken(r *rand.Rand, choices []ChainToken, options *generateOptions) (string, bool) {
	if len(choices) == 0 {
		return "", false
	}

	// topK filtering; choices may be shared with the model, so sort a copy.
	if options.topK > 0 && options.topK < len(choices) {
		sorted := make([]ChainToken, len(choices))
		copy(sorted, choices)
		sort.SliceStable(sorted, func(i, j int) bool {
			return sorted[i].Freq > sorted[j].Freq
		})
		choices = sorted[:options.topK]
	}

	switch {
	case options.temperature <= 0: // Deterministic, earliest seen wins ties
		var nextToken string
		maxFreq := 0
		for _, choice := range choices {
			if choice.Freq > maxFreq {
				maxFreq = choice.Freq
				nextToken = choice.Text
			}
		}
		return nextToken, maxFreq > 0
	case options.temperature == 1.0: // Standard weighted random
		return WeightedChoice(r, choices)
	default: // Temperature-based sampling
		logProbabilities := make([]float64, len(choices))
		maxLog := math.Inf(-1)
		for i, choice := range choices {
			lp := math.Inf(-1)
			if choice.Freq > 0 {
				lp = math.Log(float64(choice.Freq)) / options.temperature
			}
			logProbabilities[i] = lp
			if lp > maxLog {
				maxLog = lp
			}
		}
		if math.IsInf(maxLog, -1) {
			return "", false
		}
		var totalWeight float64
		weights := make([]float64, len(choices))
		for i, lp := range logProbabilities {
			w := math.Exp(lp - maxLog)
			weights[i] = w
			totalWeight += w
		}
		randChoice := r.Float64() * totalWeight
		last := ""
		for i, choice := range choices {
			if weights[i] == 0 {
				continue
			}
			last = choice.Text
			randChoice -= weights[i]
			if randChoice < 0 {
				return choice.Text, true
			}
		}
		// Float rounding can leave a sliver past the final weight.
		return last, true
	}
}
