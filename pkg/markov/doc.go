/*
Package markov provides a small toolkit for learning a first-order word
Markov chain from text and sampling new text from it.

The pipeline is: Tokenize (or a Tokenizer stream) turns raw text into
lowercase word tokens, BuildModel counts which token follows which into a
TransitionTable, and a Generator walks any Chain from a random starting word,
drawing each successor with probability proportional to its count.

A SQLStore offers the same Chain over a SQLite database, for callers that
would rather keep the counts in SQL than in Go maps.

	tokens := markov.Tokenize(text)
	table := markov.BuildModel(tokens)
	words, err := markov.NewGenerator(nil).Generate(ctx, table, 20)
*/
package markov
