package knowledge

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/fyrsmithlabs/folio/internal/reranker"
	"github.com/fyrsmithlabs/folio/internal/storage"
)

const (
	defaultSearchLimit = 5
	maxSearchLimit     = 50
	// minRelevance drops passages that share nothing with the query.
	minRelevance = 0.1
	excerptRunes = 400
	// minTailTokens is the smallest truncated passage worth adding to a
	// context that is almost full.
	minTailTokens = 40
)

// Passage is a chunk of a document relevant to a query.
type Passage struct {
	DocumentID string  `json:"document_id"`
	Filename   string  `json:"filename"`
	ChunkIndex int     `json:"chunk_index"`
	Content    string  `json:"content"`
	Score      float32 `json:"score"`
}

// SearchResult is one document matching a query, scored by its best
// passage.
type SearchResult struct {
	DocumentID string   `json:"document_id"`
	Filename   string   `json:"filename"`
	Summary    string   `json:"summary,omitempty"`
	Score      float32  `json:"score"`
	Excerpt    string   `json:"excerpt"`
	Matches    int      `json:"matches"`
	Topics     []string `json:"topics,omitempty"`
}

// Source identifies a document used to build a context.
type Source struct {
	DocumentID string  `json:"document_id"`
	Filename   string  `json:"filename"`
	Score      float32 `json:"score"`
}

// Context is knowledge formatted for a prompt.
type Context struct {
	Text    string
	Tokens  int
	Sources []Source
}

// Passages returns up to k chunks relevant to query, best first. Vector hits
// are re-ranked by keyword overlap; when the vector store has nothing, stored
// document text is ranked by keyword overlap instead.
func (p *Processor) Passages(ctx context.Context, query string, k int) ([]Passage, error) {
	ctx, span := tracer.Start(ctx, "knowledge.Passages")
	defer span.End()

	query = strings.TrimSpace(query)
	if query == "" {
		return []Passage{}, nil
	}
	if k <= 0 {
		k = defaultSearchLimit
	}
	if k > maxSearchLimit {
		k = maxSearchLimit
	}

	hits, err := p.vectors.Search(ctx, Collection, query, k*2, nil)
	if err != nil {
		p.logger.Warn("vector search failed, using keyword search", zap.Error(err))
		hits = nil
	}
	if len(hits) == 0 {
		passages, err := p.keywordPassages(ctx, query, k)
		if err != nil {
			return nil, err
		}
		path := "keyword"
		if len(passages) == 0 {
			path = "empty"
		}
		searchTotal.WithLabelValues(path).Inc()
		return passages, nil
	}

	docs := make([]reranker.Document, len(hits))
	for i, h := range hits {
		docs[i] = reranker.Document{ID: h.ID, Content: h.Content, Score: h.Score}
	}
	ranked, err := p.reranker.Rerank(ctx, query, docs, 0)
	if err != nil {
		return nil, err
	}

	out := make([]Passage, 0, k)
	for _, r := range ranked {
		if r.Combined < minRelevance {
			continue
		}
		meta := hits[r.OriginalRank].Metadata
		idx, _ := strconv.Atoi(meta[MetaChunkIndex])
		out = append(out, Passage{
			DocumentID: meta[MetaDocumentID],
			Filename:   meta[MetaFilename],
			ChunkIndex: idx,
			Content:    r.Content,
			Score:      r.Combined,
		})
		if len(out) == k {
			break
		}
	}
	searchTotal.WithLabelValues("vector").Inc()
	return out, nil
}

// keywordPassages ranks paragraphs of completed documents by the share of
// query keywords they contain.
func (p *Processor) keywordPassages(ctx context.Context, query string, k int) ([]Passage, error) {
	terms := reranker.Keywords(query)
	if len(terms) == 0 {
		return []Passage{}, nil
	}
	docs, err := p.store.ListDocuments(ctx, storage.DocumentCompleted)
	if err != nil {
		return nil, fmt.Errorf("listing documents: %w", err)
	}

	var out []Passage
	for _, d := range docs {
		for i, para := range strings.Split(d.Text, "\n\n") {
			score := reranker.Overlap(terms, reranker.Keywords(para))
			if score < minRelevance {
				continue
			}
			out = append(out, Passage{
				DocumentID: d.ID,
				Filename:   d.Filename,
				ChunkIndex: i,
				Content:    strings.TrimSpace(para),
				Score:      score,
			})
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Score > out[j].Score })
	if len(out) > k {
		out = out[:k]
	}
	if out == nil {
		out = []Passage{}
	}
	return out, nil
}

// Search returns up to limit documents relevant to query, each scored by its
// best passage.
func (p *Processor) Search(ctx context.Context, query string, limit int) ([]SearchResult, error) {
	if limit <= 0 {
		limit = defaultSearchLimit
	}
	passages, err := p.Passages(ctx, query, limit*4)
	if err != nil {
		return nil, err
	}

	byDoc := map[string]*SearchResult{}
	var order []string
	for _, ps := range passages {
		r, ok := byDoc[ps.DocumentID]
		if !ok {
			r = &SearchResult{
				DocumentID: ps.DocumentID,
				Filename:   ps.Filename,
				Score:      ps.Score,
				Excerpt:    excerpt(ps.Content),
			}
			byDoc[ps.DocumentID] = r
			order = append(order, ps.DocumentID)
		}
		r.Matches++
	}

	out := make([]SearchResult, 0, len(order))
	for _, id := range order {
		r := byDoc[id]
		if doc, err := p.store.GetDocument(ctx, id); err == nil {
			r.Summary = doc.Summary
			r.Topics = doc.Insights.Topics
		}
		out = append(out, *r)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Score > out[j].Score })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// BuildContext formats passages relevant to query as "[filename] excerpt"
// blocks that fit in tokenBudget. A budget of zero uses the configured
// default.
func (p *Processor) BuildContext(ctx context.Context, query string, tokenBudget int) (Context, error) {
	if tokenBudget <= 0 {
		tokenBudget = p.cfg.ContextTokens
	}
	passages, err := p.Passages(ctx, query, 8)
	if err != nil {
		return Context{}, err
	}

	var (
		b       strings.Builder
		used    int
		sources []Source
		seen    = map[string]bool{}
	)
	for _, ps := range passages {
		block := fmt.Sprintf("[%s] %s", ps.Filename, ps.Content)
		cost := p.tokenizer.Count(block)
		if used+cost > tokenBudget {
			remaining := tokenBudget - used
			if remaining < minTailTokens {
				break
			}
			block = p.tokenizer.Truncate(block, remaining)
			cost = p.tokenizer.Count(block)
		}
		if b.Len() > 0 {
			b.WriteString("\n\n")
		}
		b.WriteString(block)
		used += cost
		if !seen[ps.DocumentID] {
			seen[ps.DocumentID] = true
			sources = append(sources, Source{DocumentID: ps.DocumentID, Filename: ps.Filename, Score: ps.Score})
		}
		if used >= tokenBudget {
			break
		}
	}
	return Context{Text: b.String(), Tokens: used, Sources: sources}, nil
}

func excerpt(s string) string {
	r := []rune(strings.TrimSpace(s))
	if len(r) <= excerptRunes {
		return string(r)
	}
	cut := string(r[:excerptRunes])
	if i := strings.LastIndexByte(cut, ' '); i > excerptRunes/2 {
		cut = cut[:i]
	}
	return cut + "…"
}
