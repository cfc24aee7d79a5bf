package markov

import (
	"context"
	"fmt"
	"reflect"
	"strings"
	"testing"
)

func TestTrain(t *testing.T) {
	db, s := setupTestStore(t)
	ctx := context.Background()

	if err := s.Train(ctx, Tokenize("a b c a b d")); err != nil {
		t.Fatalf("Train() failed: %v", err)
	}

	// Verify that chains were created: a->b, b->c, c->a, b->d
	var chainCount int
	err := db.QueryRowContext(ctx, "SELECT COUNT(*) FROM markov_chains").Scan(&chainCount)
	if err != nil {
		t.Fatal(err)
	}
	if chainCount != 4 {
		t.Errorf("expected 4 chains to be created, but got %d", chainCount)
	}

	// Verify that a specific chain has the correct frequency
	tokens, totalFreq, err := s.Next(ctx, "a")
	if err != nil {
		t.Fatalf("Next failed: %v", err)
	}
	if totalFreq != 2 {
		t.Errorf("expected 'a' to have total frequency of 2, got %d", totalFreq)
	}
	expected := []ChainToken{{Text: "b", Freq: 2}}
	if !reflect.DeepEqual(tokens, expected) {
		t.Errorf("expected tokens %+v, got %+v", expected, tokens)
	}

	size, err := s.VocabSize(ctx)
	if err != nil {
		t.Fatalf("VocabSize failed: %v", err)
	}
	if size != 4 {
		t.Errorf("expected vocabulary of 4 tokens, got %d", size)
	}
}

func TestSQLStoreMatchesTransitionTable(t *testing.T) {
	ctx, s := setupTestStoreWithTraining(t)
	table := BuildModel(Tokenize(scenarioText))

	tableSources, _ := table.Sources(ctx)
	storeSources, err := s.Sources(ctx)
	if err != nil {
		t.Fatalf("Sources failed: %v", err)
	}
	if !reflect.DeepEqual(storeSources, tableSources) {
		t.Fatalf("store sources %q differ from table sources %q", storeSources, tableSources)
	}

	for _, token := range append(tableSources, "ran", "unknown") {
		wantTokens, wantFreq, _ := table.Next(ctx, token)
		gotTokens, gotFreq, err := s.Next(ctx, token)
		if err != nil {
			t.Fatalf("Next(%q) failed: %v", token, err)
		}
		if gotFreq != wantFreq {
			t.Errorf("Next(%q): total frequency %d, want %d", token, gotFreq, wantFreq)
		}
		if len(wantTokens) == 0 {
			if len(gotTokens) != 0 {
				t.Errorf("Next(%q): expected no tokens, got %+v", token, gotTokens)
			}
			continue
		}
		if !reflect.DeepEqual(gotTokens, wantTokens) {
			t.Errorf("Next(%q) = %+v, want %+v", token, gotTokens, wantTokens)
		}
	}
}

func TestTrainAcrossBatches(t *testing.T) {
	_, s := setupTestStore(t)
	ctx := context.Background()

	// 3000 tokens is more than two full chain batches.
	tokens := Tokenize(strings.Repeat("x y z ", 1000))
	if err := s.Train(ctx, tokens); err != nil {
		t.Fatalf("Train() failed: %v", err)
	}

	stats, err := s.Stats(ctx)
	if err != nil {
		t.Fatalf("Stats failed: %v", err)
	}
	if stats.TotalFrequency != len(tokens)-1 {
		t.Errorf("expected total frequency %d, got %d", len(tokens)-1, stats.TotalFrequency)
	}
	if stats.Links != 3 {
		t.Errorf("expected 3 links, got %d", stats.Links)
	}

	_, totalFreq, _ := s.Next(ctx, "z")
	if totalFreq != 999 {
		t.Errorf("expected 'z' to be followed 999 times, got %d", totalFreq)
	}
}

func TestTrainTwiceAccumulates(t *testing.T) {
	ctx, s := setupTestStoreWithTraining(t)
	if err := s.Train(ctx, Tokenize(scenarioText)); err != nil {
		t.Fatalf("second Train() failed: %v", err)
	}

	tokens, _, err := s.Next(ctx, "the")
	if err != nil {
		t.Fatalf("Next failed: %v", err)
	}
	expected := []ChainToken{{Text: "cat", Freq: 4}, {Text: "mat", Freq: 2}}
	if !reflect.DeepEqual(tokens, expected) {
		t.Errorf("expected %+v, got %+v", expected, tokens)
	}
}

func BenchmarkBuildModel(b *testing.B) {
	tokens := Tokenize(createBenchmarkCorpus())

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = BuildModel(tokens)
	}
}

func BenchmarkTrain(b *testing.B) {
	tokens := Tokenize(createBenchmarkCorpus())
	ctx := context.Background()

	for _, n := range []int{1000, 10000, len(tokens)} {
		if n > len(tokens) {
			continue
		}
		b.Run(fmt.Sprintf("Tokens%d", n), func(b *testing.B) {
			_, s := setupTestStoreBench(b)

			b.ReportAllocs()
			b.ResetTimer()

			for i := 0; i < b.N; i++ {
				if err := s.Train(ctx, tokens[:n]); err != nil {
					b.Fatalf("Train() failed: %v", err)
				}
			}
		})
	}
}
