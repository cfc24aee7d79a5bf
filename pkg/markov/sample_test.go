package markov

import (
	"math/rand/v2"
	"reflect"
	"testing"
)

func TestWeightedChoiceReturnsKey(t *testing.T) {
	r := rand.New(rand.NewPCG(1, 2))
	choices := []ChainToken{{Text: "cat", Freq: 2}, {Text: "mat", Freq: 1}, {Text: "hat", Freq: 5}}
	valid := map[string]bool{"cat": true, "mat": true, "hat": true}

	for i := 0; i < 1000; i++ {
		got, ok := WeightedChoice(r, choices)
		if !ok {
			t.Fatalf("WeightedChoice returned no choice on draw %d", i)
		}
		if !valid[got] {
			t.Fatalf("WeightedChoice returned %q, which is not a choice", got)
		}
	}
}

func TestWeightedChoiceDistribution(t *testing.T) {
	r := rand.New(rand.NewPCG(42, 7))
	choices := []ChainToken{{Text: "a", Freq: 1}, {Text: "b", Freq: 3}}

	const draws = 100000
	counts := make(map[string]int)
	for i := 0; i < draws; i++ {
		got, _ := WeightedChoice(r, choices)
		counts[got]++
	}

	freqB := float64(counts["b"]) / draws
	if freqB < 0.74 || freqB > 0.76 {
		t.Errorf("expected frequency of 'b' near 0.75, got %.4f", freqB)
	}
	if counts["a"]+counts["b"] != draws {
		t.Errorf("expected every draw to be 'a' or 'b', got %v", counts)
	}
}

func TestWeightedChoiceSingle(t *testing.T) {
	r := rand.New(rand.NewPCG(3, 3))
	for i := 0; i < 100; i++ {
		if got, ok := WeightedChoice(r, []ChainToken{{Text: "only", Freq: 7}}); !ok || got != "only" {
			t.Fatalf("expected 'only', got %q (ok=%v)", got, ok)
		}
	}
}

func TestWeightedChoiceNothingToPick(t *testing.T) {
	r := rand.New(rand.NewPCG(1, 1))

	if _, ok := WeightedChoice(r, nil); ok {
		t.Error("expected no choice from an empty slice")
	}
	if _, ok := WeightedChoice(r, []ChainToken{{Text: "zero", Freq: 0}}); ok {
		t.Error("expected no choice when every frequency is zero")
	}
	for i := 0; i < 100; i++ {
		got, ok := WeightedChoice(r, []ChainToken{{Text: "zero", Freq: 0}, {Text: "one", Freq: 1}})
		if !ok || got != "one" {
			t.Fatalf("expected zero-frequency choice to be skipped, got %q", got)
		}
	}
}

func TestChooseNextToken(t *testing.T) {
	r := rand.New(rand.NewPCG(9, 9))
	choices := []ChainToken{{Text: "a", Freq: 2}, {Text: "b", Freq: 3}, {Text: "c", Freq: 3}, {Text: "d", Freq: 1}}
	original := append([]ChainToken(nil), choices...)

	testCases := []struct {
		name    string
		options generateOptions
		allowed map[string]bool
	}{
		{
			name:    "Temperature zero picks earliest most frequent",
			options: generateOptions{temperature: 0},
			allowed: map[string]bool{"b": true},
		},
		{
			name:    "Top-1 keeps earliest most frequent",
			options: generateOptions{temperature: 1.0, topK: 1},
			allowed: map[string]bool{"b": true},
		},
		{
			name:    "Top-2 excludes the rest",
			options: generateOptions{temperature: 1.0, topK: 2},
			allowed: map[string]bool{"b": true, "c": true},
		},
		{
			name:    "Low temperature stays within choices",
			options: generateOptions{temperature: 0.5},
			allowed: map[string]bool{"a": true, "b": true, "c": true, "d": true},
		},
		{
			name:    "High temperature with top-K",
			options: generateOptions{temperature: 3.0, topK: 3},
			allowed: map[string]bool{"a": true, "b": true, "c": true},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			for i := 0; i < 200; i++ {
				got, ok := chooseNextToken(r, choices, &tc.options)
				if !ok {
					t.Fatalf("chooseNextToken returned no choice")
				}
				if !tc.allowed[got] {
					t.Fatalf("chooseNextToken returned %q, allowed %v", got, tc.allowed)
				}
			}
			if !reflect.DeepEqual(choices, original) {
				t.Fatalf("chooseNextToken reordered its input: %+v", choices)
			}
		})
	}
}

func TestChooseNextTokenEmpty(t *testing.T) {
	r := rand.New(rand.NewPCG(1, 1))
	for _, temperature := range []float64{0, 0.5, 1.0, 2.0} {
		if _, ok := chooseNextToken(r, nil, &generateOptions{temperature: temperature}); ok {
			t.Errorf("temperature %v: expected no choice from an empty slice", temperature)
		}
	}
}
