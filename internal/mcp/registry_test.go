package mcp

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testRegistry() *ToolRegistry {
	r := NewToolRegistry()
	r.Register(&ToolMetadata{Name: "knowledge_search", Description: "Search uploaded documents", Category: CategoryKnowledge, Keywords: []string{"resume"}})
	r.Register(&ToolMetadata{Name: "timeline_list", Description: "List the career timeline", Category: CategoryContent, Keywords: []string{"jobs"}})
	r.Register(&ToolMetadata{Name: "memory_recall", Description: "Recall visitor memories", Category: CategoryMemory})
	return r
}

func TestToolRegistry_Register(t *testing.T) {
	r := testRegistry()
	assert.Equal(t, 3, r.Count())

	r.Register(nil)
	r.Register(&ToolMetadata{})
	assert.Equal(t, 3, r.Count())

	r.Register(&ToolMetadata{Name: "timeline_list", Description: "replaced"})
	tool, ok := r.Get("timeline_list")
	require.True(t, ok)
	assert.Equal(t, "replaced", tool.Description)

	_, ok = r.Get("nope")
	assert.False(t, ok)
}

func TestToolRegistry_ListSorted(t *testing.T) {
	names := []string{}
	for _, tool := range testRegistry().List() {
		names = append(names, tool.Name)
	}
	assert.Equal(t, []string{"knowledge_search", "memory_recall", "timeline_list"}, names)
}

func TestToolRegistry_Search(t *testing.T) {
	r := testRegistry()
	tests := []struct {
		name     string
		query    string
		category ToolCategory
		want     []string
		score    int
	}{
		{"exact name", "memory_recall", "", []string{"memory_recall"}, 3},
		{"name contains", "LIST", "", []string{"timeline_list"}, 2},
		{"regex", "^(knowledge|memory)_", "", []string{"knowledge_search", "memory_recall"}, 2},
		{"description", "career", "", []string{"timeline_list"}, 1},
		{"keyword", "resume", "", []string{"knowledge_search"}, 1},
		{"category filter", "_", CategoryMemory, []string{"memory_recall"}, 2},
		{"invalid regex falls back to substring", "[", "", nil, 0},
		{"blank", "  ", "", nil, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			results := r.Search(tt.query, tt.category)
			var got []string
			for _, res := range results {
				got = append(got, res.Tool.Name)
				assert.Equal(t, tt.score, res.Score)
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestToolRegistry_SearchOrdersByScore(t *testing.T) {
	r := NewToolRegistry()
	r.Register(&ToolMetadata{Name: "alpha", Description: "mentions search"})
	r.Register(&ToolMetadata{Name: "search"})
	r.Register(&ToolMetadata{Name: "search_docs"})

	results := r.Search("search", "")
	require.Len(t, results, 3)
	assert.Equal(t, "search", results[0].Tool.Name)
	assert.Equal(t, "search_docs", results[1].Tool.Name)
	assert.Equal(t, "alpha", results[2].Tool.Name)
}

func TestToolRegistry_ConcurrentAccess(t *testing.T) {
	r := NewToolRegistry()
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(2)
		go func(i int) {
			defer wg.Done()
			r.Register(&ToolMetadata{Name: fmt.Sprintf("tool_%d", i)})
		}(i)
		go func() {
			defer wg.Done()
			_ = r.Search("tool", "")
		}()
	}
	wg.Wait()
	assert.Equal(t, 20, r.Count())
}
