package retrieval

import (
	"math"
	"regexp"
	"sort"
	"strings"
	"sync"
)

// Index is an in-memory similarity index over historical documents.
// It is constructed explicitly and passed by reference to the Retriever;
// there is no lazily created global. Ranking is BM25 over document title
// and content, so results carry no guarantee beyond the index's own
// similarity ordering, and a search may return fewer than k documents.
type Index struct {
	mu   sync.RWMutex
	docs []Document
}

// NewIndex builds an index over the given documents. An index built with
// no documents seeds itself with a small synthetic corpus so that early
// searches still return something to ground a prompt on.
func NewIndex(docs []Document) *Index {
	idx := &Index{}
	if len(docs) == 0 {
		idx.docs = syntheticSeedDocuments()
	} else {
		idx.docs = append(idx.docs, docs...)
	}
	return idx
}

// Add appends documents to the index.
func (i *Index) Add(docs ...Document) {
	i.mu.Lock()
	defer i.mu.Unlock()
	i.docs = append(i.docs, docs...)
}

// Len returns the number of indexed documents.
func (i *Index) Len() int {
	i.mu.RLock()
	defer i.mu.RUnlock()
	return len(i.docs)
}

// Search returns up to k documents ranked by BM25 relevance to the query.
// Documents with zero overlap are excluded, so fewer than k results is
// common.
func (i *Index) Search(query string, k int) []Document {
	return i.SearchKind(query, k, "")
}

// SearchKind is Search restricted to documents of one kind. An empty
// kind searches the whole index.
func (i *Index) SearchKind(query string, k int, kind DocumentKind) []Document {
	if k <= 0 {
		return nil
	}

	i.mu.RLock()
	docs := make([]Document, 0, len(i.docs))
	for _, d := range i.docs {
		if kind == "" || d.Kind == kind {
			docs = append(docs, d)
		}
	}
	i.mu.RUnlock()

	queryTerms := tokenize(strings.ToLower(query))
	if len(queryTerms) == 0 || len(docs) == 0 {
		return nil
	}

	avgDocLen, docFreqs := computeCorpusStats(docs)

	type scored struct {
		doc   Document
		score float64
	}
	ranked := make([]scored, 0, len(docs))
	for _, d := range docs {
		score := bm25Score(d, queryTerms, avgDocLen, docFreqs, len(docs))
		if score > 0 {
			ranked = append(ranked, scored{doc: d, score: score})
		}
	}

	sort.SliceStable(ranked, func(a, b int) bool {
		return ranked[a].score > ranked[b].score
	})

	if len(ranked) > k {
		ranked = ranked[:k]
	}
	out := make([]Document, len(ranked))
	for n, r := range ranked {
		out[n] = r.doc
	}
	return out
}

// syntheticSeedDocuments returns the documented fallback corpus used when
// no real historical documents exist yet. The entries are generic enough
// to match common project-management queries without steering the model.
func syntheticSeedDocuments() []Document {
	return []Document{
		{Kind: DocTask, Title: "Set up project repository", Content: "Initialize the repository, configure continuous integration, and agree on a branching model.", Priority: "High"},
		{Kind: DocTask, Title: "Draft project plan", Content: "Break the project into milestones with owners and rough estimates.", Priority: "Medium"},
		{Kind: DocCompletedTask, Title: "Write onboarding documentation", Content: "Document development environment setup and team conventions for new members.", Priority: "Low"},
		{Kind: DocCollaboration, Title: "Kickoff pairing session", Content: "Pair a senior and a junior engineer for the first implementation task with a daily sync.", Priority: ""},
		{Kind: DocProject, Title: "Internal tooling project", Content: "A small internal tooling project delivered by a three-person team over one quarter.", Priority: ""},
	}
}

// BM25 parameters - standard values from literature
const (
	bm25K1 = 1.2  // Term frequency saturation parameter
	bm25B  = 0.75 // Length normalization parameter
)

// bm25Score computes a BM25 relevance score for a document against query
// terms. Higher scores indicate greater relevance.
func bm25Score(doc Document, queryTerms []string, avgDocLen float64, docFreqs map[string]int, totalDocs int) float64 {
	if len(queryTerms) == 0 || totalDocs == 0 {
		return 0
	}

	docTerms := tokenize(docText(doc))
	docLen := float64(len(docTerms))
	if docLen == 0 {
		return 0
	}

	termFreqs := make(map[string]int)
	for _, term := range docTerms {
		termFreqs[term]++
	}

	score := 0.0
	for _, term := range queryTerms {
		tf := float64(termFreqs[term])
		if tf == 0 {
			continue
		}

		df := docFreqs[term]
		if df == 0 {
			df = 1
		}

		// IDF component: log((N - df + 0.5) / (df + 0.5) + 1)
		idf := math.Log((float64(totalDocs)-float64(df)+0.5)/(float64(df)+0.5) + 1)

		// TF component with length normalization
		lengthNorm := 1 - bm25B + bm25B*(docLen/avgDocLen)
		tfNorm := (tf * (bm25K1 + 1)) / (tf + bm25K1*lengthNorm)

		score += idf * tfNorm
	}

	return score
}

// docText is the searchable text of a document.
func docText(d Document) string {
	return strings.ToLower(d.Title + " " + d.Content)
}

var wordPattern = regexp.MustCompile(`[a-zA-Z][a-zA-Z0-9_]*`)

// tokenize splits text into lowercase tokens for BM25 scoring.
func tokenize(text string) []string {
	words := wordPattern.FindAllString(text, -1)
	tokens := make([]string, 0, len(words))
	for _, word := range words {
		lower := strings.ToLower(word)
		if len(lower) >= 2 {
			tokens = append(tokens, lower)
		}
	}
	return tokens
}

// computeCorpusStats computes document frequencies and average document length.
func computeCorpusStats(docs []Document) (avgDocLen float64, docFreqs map[string]int) {
	docFreqs = make(map[string]int)
	totalLen := 0

	for _, d := range docs {
		tokens := tokenize(docText(d))
		totalLen += len(tokens)

		seen := make(map[string]bool)
		for _, token := range tokens {
			if !seen[token] {
				seen[token] = true
				docFreqs[token]++
			}
		}
	}

	if len(docs) > 0 {
		avgDocLen = float64(totalLen) / float64(len(docs))
	}
	return avgDocLen, docFreqs
}
