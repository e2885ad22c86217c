package knowledge

import (
	"context"
	"math"
	"regexp"
	"sort"
	"strings"
)

// Retriever performs semantic search over the knowledge base.
type Retriever interface {
	// Search returns passages ranked by similarity to the query,
	// best first.
	Search(ctx context.Context, query string, opts SearchOptions) ([]Result, error)
}

// Scorer computes a similarity score in [0,1] between a query and a passage.
// The default is a deterministic lexical scorer; deployments with an
// embedding service substitute a vector-based implementation behind the same
// interface.
type Scorer interface {
	Score(query, text string) float64
}

var tokenPattern = regexp.MustCompile(`[a-z0-9]+`)

// LexicalScorer scores by cosine similarity over term-frequency vectors.
// Deterministic and dependency-free, which keeps validation and tests
// reproducible.
type LexicalScorer struct{}

// Score implements Scorer.
func (LexicalScorer) Score(query, text string) float64 {
	qv := termVector(query)
	tv := termVector(text)
	if len(qv) == 0 || len(tv) == 0 {
		return 0
	}

	var dot, qnorm, tnorm float64
	for term, qw := range qv {
		qnorm += qw * qw
		if tw, ok := tv[term]; ok {
			dot += qw * tw
		}
	}
	for _, tw := range tv {
		tnorm += tw * tw
	}

	if dot == 0 {
		return 0
	}
	return dot / (math.Sqrt(qnorm) * math.Sqrt(tnorm))
}

func termVector(s string) map[string]float64 {
	v := make(map[string]float64)
	for _, term := range tokenPattern.FindAllString(strings.ToLower(s), -1) {
		if len(term) < 2 {
			continue
		}
		v[term]++
	}
	return v
}

// rankPassages scores and orders candidates, best first, applying scope and
// top-k limits. Shared by the store implementations.
func rankPassages(scorer Scorer, query string, candidates []Passage, opts SearchOptions) []Result {
	topK := opts.TopK
	if topK <= 0 {
		topK = 5
	}

	var results []Result
	for _, p := range candidates {
		if opts.DestinationScope != "" && p.DestinationScope != "" &&
			!strings.EqualFold(p.DestinationScope, opts.DestinationScope) {
			continue
		}
		score := scorer.Score(query, p.Title+" "+p.Text)
		if score <= 0 {
			continue
		}
		results = append(results, Result{Passage: p, Score: score})
	}

	sort.SliceStable(results, func(i, j int) bool { return results[i].Score > results[j].Score })
	if len(results) > topK {
		results = results[:topK]
	}
	return results
}
