// Package relevance scores how well a short query matches a longer text.
// Scores are deterministic and bounded to [0, 1].
package relevance

import (
	"math"
	"strings"
)

// Coverage bonus weighting: the base similarity is scaled into
// [coverageFloor, 1] by the fraction of distinct query tokens matched.
const (
	coverageFloor  = 0.7
	coverageWeight = 0.3
)

// Tokenize lowercases the input and splits it on whitespace. Tokens are
// compared by exact equality; there is no stemming and no stop-word list.
func Tokenize(text string) []string {
	return strings.Fields(strings.ToLower(text))
}

// termFrequencies maps each token to its occurrence count normalized by the
// total token count.
func termFrequencies(tokens []string) map[string]float64 {
	tf := make(map[string]float64, len(tokens))
	if len(tokens) == 0 {
		return tf
	}
	for _, token := range tokens {
		tf[token]++
	}
	total := float64(len(tokens))
	for token := range tf {
		tf[token] /= total
	}
	return tf
}

// Score computes the weighted-overlap similarity between a query and a text.
//
// Common tokens contribute the geometric mean of their frequencies in both
// inputs, which rewards terms frequent in both rather than merely present.
// The sum is normalized by the query's total term-frequency mass, so the
// score is bounded by how much of the query is matched, not the text. A
// coverage bonus then rewards matching a larger fraction of the query's
// distinct tokens.
func Score(query, text string) float64 {
	if strings.TrimSpace(query) == "" || strings.TrimSpace(text) == "" {
		return 0.0
	}

	queryTokens := Tokenize(query)
	textTokens := Tokenize(text)
	if len(queryTokens) == 0 || len(textTokens) == 0 {
		return 0.0
	}

	queryTF := termFrequencies(queryTokens)
	textTF := termFrequencies(textTokens)

	var searchWeight, overlapWeight float64
	common := 0
	for term, qf := range queryTF {
		searchWeight += qf
		if df, ok := textTF[term]; ok {
			overlapWeight += math.Sqrt(qf * df)
			common++
		}
	}
	if common == 0 || searchWeight == 0 {
		return 0.0
	}

	baseSimilarity := overlapWeight / searchWeight
	coverageRatio := float64(common) / float64(len(queryTF))
	final := baseSimilarity * (coverageFloor + coverageWeight*coverageRatio)

	return clamp01(final)
}

// ScoreTFIDF is the alternative formulation: true TF-IDF cosine similarity
// over the two-document corpus {query, text}. Same contract as Score. It is
// intended for callers that can supply a larger comparison corpus; it is not
// the default scoring path.
func ScoreTFIDF(query, text string) float64 {
	if strings.TrimSpace(query) == "" || strings.TrimSpace(text) == "" {
		return 0.0
	}

	queryTokens := Tokenize(query)
	textTokens := Tokenize(text)
	if len(queryTokens) == 0 || len(textTokens) == 0 {
		return 0.0
	}

	idf := inverseDocumentFrequencies([][]string{queryTokens, textTokens})
	queryVec := tfidfVector(queryTokens, idf)
	textVec := tfidfVector(textTokens, idf)

	return cosineSimilarity(queryVec, textVec)
}

// inverseDocumentFrequencies computes idf = log(N / (df + 1)) for every token
// appearing in the corpus. The +1 keeps the denominator positive.
func inverseDocumentFrequencies(corpus [][]string) map[string]float64 {
	idf := make(map[string]float64)
	total := float64(len(corpus))
	if total == 0 {
		return idf
	}

	vocab := make(map[string]struct{})
	for _, tokens := range corpus {
		for _, token := range tokens {
			vocab[token] = struct{}{}
		}
	}

	for token := range vocab {
		docsWith := 0
		for _, tokens := range corpus {
			for _, t := range tokens {
				if t == token {
					docsWith++
					break
				}
			}
		}
		idf[token] = math.Log(total / float64(docsWith+1))
	}
	return idf
}

func tfidfVector(tokens []string, idf map[string]float64) map[string]float64 {
	vec := make(map[string]float64)
	for token, tf := range termFrequencies(tokens) {
		vec[token] = tf * idf[token]
	}
	return vec
}

func cosineSimilarity(a, b map[string]float64) float64 {
	var dot float64
	for term, av := range a {
		dot += av * b[term]
	}

	var magA, magB float64
	for _, v := range a {
		magA += v * v
	}
	for _, v := range b {
		magB += v * v
	}
	if magA == 0 || magB == 0 {
		return 0.0
	}

	return clamp01(dot / (math.Sqrt(magA) * math.Sqrt(magB)))
}

func clamp01(v float64) float64 {
	return math.Max(0.0, math.Min(1.0, v))
}
