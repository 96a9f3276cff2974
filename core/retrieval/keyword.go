package retrieval

import (
	"math"
	"strings"
	"sync"
	"unicode"
)

// BM25 parameters, standard values from the literature
const (
	bm25K1 = 1.5
	bm25B  = 0.75
)

// KeywordIndex scores passages against query terms using BM25.
// The index is an immutable snapshot of the corpus: Rebuild constructs a
// fresh index from all passage texts and swaps it in atomically, so
// concurrent readers always see a consistent corpus.
type KeywordIndex struct {
	mu       sync.RWMutex
	snapshot *indexSnapshot
}

type indexSnapshot struct {
	texts     []string
	docTokens [][]string
	docFreq   map[string]int
	docLen    []int
	avgDocLen float64
}

// NewKeywordIndex creates an empty keyword index
func NewKeywordIndex() *KeywordIndex {
	return &KeywordIndex{snapshot: buildSnapshot(nil)}
}

// Tokenize lowercases text and splits it on any non-alphanumeric rune
func Tokenize(text string) []string {
	return strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsNumber(r)
	})
}

func buildSnapshot(texts []string) *indexSnapshot {
	snapshot := &indexSnapshot{
		texts:     texts,
		docTokens: make([][]string, len(texts)),
		docFreq:   make(map[string]int),
		docLen:    make([]int, len(texts)),
	}

	totalLen := 0
	for i, text := range texts {
		tokens := Tokenize(text)
		snapshot.docTokens[i] = tokens
		snapshot.docLen[i] = len(tokens)
		totalLen += len(tokens)

		seen := make(map[string]bool)
		for _, token := range tokens {
			if !seen[token] {
				seen[token] = true
				snapshot.docFreq[token]++
			}
		}
	}

	if len(texts) > 0 {
		snapshot.avgDocLen = float64(totalLen) / float64(len(texts))
	}

	return snapshot
}

// Rebuild replaces the index contents with a fresh snapshot of the given
// passage texts. Readers are never blocked on the rebuild itself, only on
// the final swap.
func (k *KeywordIndex) Rebuild(texts []string) {
	snapshot := buildSnapshot(texts)

	k.mu.Lock()
	k.snapshot = snapshot
	k.mu.Unlock()
}

// Size returns the number of indexed passages
func (k *KeywordIndex) Size() int {
	k.mu.RLock()
	defer k.mu.RUnlock()
	return len(k.snapshot.texts)
}

// Scores returns the BM25 score of every indexed passage against the query,
// aligned with the text order passed to Rebuild
func (k *KeywordIndex) Scores(query string) []float64 {
	k.mu.RLock()
	snapshot := k.snapshot
	k.mu.RUnlock()

	queryTokens := Tokenize(query)
	scores := make([]float64, len(snapshot.texts))
	for i := range snapshot.texts {
		scores[i] = snapshot.score(queryTokens, i)
	}
	return scores
}

// ScoreForText returns the BM25 score of a single passage against the query.
// Passages not in the index score 0.
func (k *KeywordIndex) ScoreForText(query string, text string) float64 {
	k.mu.RLock()
	snapshot := k.snapshot
	k.mu.RUnlock()

	queryTokens := Tokenize(query)
	for i, indexed := range snapshot.texts {
		if indexed == text {
			return snapshot.score(queryTokens, i)
		}
	}
	return 0
}

func (s *indexSnapshot) score(queryTokens []string, docIndex int) float64 {
	if s.avgDocLen == 0 {
		return 0
	}

	termFreq := make(map[string]int)
	for _, token := range s.docTokens[docIndex] {
		termFreq[token]++
	}

	n := float64(len(s.texts))
	score := 0.0
	for _, token := range queryTokens {
		tf := float64(termFreq[token])
		if tf == 0 {
			continue
		}

		df := float64(s.docFreq[token])
		idf := math.Log(1 + (n-df+0.5)/(df+0.5))

		lengthNorm := 1 - bm25B + bm25B*float64(s.docLen[docIndex])/s.avgDocLen
		score += idf * tf * (bm25K1 + 1) / (tf + bm25K1*lengthNorm)
	}

	return score
}
