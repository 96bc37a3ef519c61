package mcp

import (
	"context"
	"strings"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"go.uber.org/zap"

	"github.com/fyrsmithlabs/folio/internal/knowledge"
)

const (
	defaultLimit = 5
	dateLayout   = "2006-01"
)

// addTool registers a typed tool with validation, metrics and logging.
func addTool[In, Out any](s *Server, meta ToolMetadata, fn func(context.Context, In) (Out, error)) {
	s.registry.Register(&meta)
	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        meta.Name,
		Description: meta.Description,
	}, func(ctx context.Context, _ *mcp.CallToolRequest, in In) (*mcp.CallToolResult, Out, error) {
		start := time.Now()
		done := s.metrics.Track(ctx, meta.Name)

		var out Out
		err := s.check(in)
		if err == nil {
			out, err = fn(ctx, in)
		}
		done(err)
		if err != nil {
			s.logger.Warn("mcp tool failed", zap.String("tool", meta.Name), zap.Error(err))
			var zero Out
			return nil, zero, err
		}
		s.logger.Debug("mcp tool served", zap.String("tool", meta.Name), zap.Duration("took", time.Since(start)))
		return nil, out, nil
	})
}

func (s *Server) registerTools() {
	addTool(s, ToolMetadata{
		Name:        "knowledge_search",
		Description: "Search the uploaded knowledge base (resumes, project notes, write-ups) and return the best matching documents with excerpts.",
		Category:    CategoryKnowledge,
		Keywords:    []string{"documents", "resume", "semantic", "retrieval"},
	}, s.knowledgeSearch)

	addTool(s, ToolMetadata{
		Name:        "case_studies_list",
		Description: "List portfolio case studies, optionally filtered by technology.",
		Category:    CategoryContent,
		Keywords:    []string{"projects", "portfolio", "work"},
	}, s.caseStudiesList)

	addTool(s, ToolMetadata{
		Name:        "timeline_list",
		Description: "List the career timeline, most recent position first.",
		Category:    CategoryContent,
		Keywords:    []string{"experience", "jobs", "career", "history"},
	}, s.timelineList)

	addTool(s, ToolMetadata{
		Name:        "memory_recall",
		Description: "Recall what a chat visitor has shared across their sessions, ranked by relevance to a query, plus their accumulated profile.",
		Category:    CategoryMemory,
		Keywords:    []string{"conversation", "visitor", "profile", "context"},
	}, s.memoryRecall)

	addTool(s, ToolMetadata{
		Name:        "tool_search",
		Description: "Find tools by name, description or keyword. Queries are also tried as case-insensitive regular expressions.",
		Category:    CategorySearch,
		Keywords:    []string{"discover", "help"},
	}, s.toolSearch)
}

// ===== knowledge_search =====

type knowledgeSearchInput struct {
	Query string `json:"query" jsonschema:"what to look for" validate:"required,max=500"`
	Limit int    `json:"limit,omitempty" jsonschema:"maximum documents to return (1-20, default 5)" validate:"omitempty,min=1,max=20"`
}

type knowledgeSearchOutput struct {
	Query   string                   `json:"query"`
	Results []knowledge.SearchResult `json:"results"`
	Count   int                      `json:"count"`
}

func (s *Server) knowledgeSearch(ctx context.Context, in knowledgeSearchInput) (knowledgeSearchOutput, error) {
	limit := in.Limit
	if limit == 0 {
		limit = defaultLimit
	}
	results, err := s.knowledge.Search(ctx, in.Query, limit)
	if err != nil {
		return knowledgeSearchOutput{}, err
	}
	out := knowledgeSearchOutput{Query: in.Query, Results: make([]knowledge.SearchResult, 0, len(results))}
	for _, r := range results {
		r.Excerpt = s.scrubber.String(r.Excerpt)
		r.Summary = s.scrubber.String(r.Summary)
		if r.Topics == nil {
			r.Topics = []string{}
		}
		out.Results = append(out.Results, r)
	}
	out.Count = len(out.Results)
	return out, nil
}

// ===== case_studies_list =====

type caseStudiesInput struct {
	Technology    string `json:"technology,omitempty" jsonschema:"only case studies using this technology (case-insensitive)" validate:"max=60"`
	IncludeDrafts bool   `json:"include_drafts,omitempty" jsonschema:"include unpublished case studies"`
}

type caseStudy struct {
	Slug         string   `json:"slug"`
	Title        string   `json:"title"`
	Summary      string   `json:"summary"`
	Challenge    string   `json:"challenge,omitempty"`
	Solution     string   `json:"solution,omitempty"`
	Outcome      string   `json:"outcome,omitempty"`
	Technologies []string `json:"technologies"`
	Featured     bool     `json:"featured"`
	Published    bool     `json:"published"`
}

type caseStudiesOutput struct {
	CaseStudies []caseStudy `json:"case_studies"`
	Count       int         `json:"count"`
}

func (s *Server) caseStudiesList(ctx context.Context, in caseStudiesInput) (caseStudiesOutput, error) {
	list, err := s.content.ListCaseStudies(ctx, !in.IncludeDrafts)
	if err != nil {
		return caseStudiesOutput{}, err
	}
	tech := strings.TrimSpace(in.Technology)
	out := caseStudiesOutput{CaseStudies: []caseStudy{}}
	for _, cs := range list {
		if tech != "" && !containsFold(cs.Technologies, tech) {
			continue
		}
		out.CaseStudies = append(out.CaseStudies, caseStudy{
			Slug:         cs.Slug,
			Title:        cs.Title,
			Summary:      s.scrubber.String(cs.Summary),
			Challenge:    s.scrubber.String(cs.Challenge),
			Solution:     s.scrubber.String(cs.Solution),
			Outcome:      s.scrubber.String(cs.Outcome),
			Technologies: orEmpty(cs.Technologies),
			Featured:     cs.Featured,
			Published:    cs.Published,
		})
	}
	out.Count = len(out.CaseStudies)
	return out, nil
}

// ===== timeline_list =====

type timelineInput struct{}

type timelineEntry struct {
	Company     string   `json:"company"`
	Role        string   `json:"role"`
	Location    string   `json:"location,omitempty"`
	Start       string   `json:"start"`
	End         string   `json:"end"`
	Description string   `json:"description,omitempty"`
	Highlights  []string `json:"highlights"`
}

type timelineOutput struct {
	Entries []timelineEntry `json:"entries"`
	Count   int             `json:"count"`
}

func (s *Server) timelineList(ctx context.Context, _ timelineInput) (timelineOutput, error) {
	list, err := s.content.ListExperience(ctx)
	if err != nil {
		return timelineOutput{}, err
	}
	out := timelineOutput{Entries: make([]timelineEntry, 0, len(list))}
	for _, e := range list {
		end := "present"
		if !e.Current && e.EndDate != nil {
			end = e.EndDate.Format(dateLayout)
		}
		out.Entries = append(out.Entries, timelineEntry{
			Company:     e.Company,
			Role:        e.Role,
			Location:    e.Location,
			Start:       e.StartDate.Format(dateLayout),
			End:         end,
			Description: s.scrubber.String(e.Description),
			Highlights:  orEmpty(e.Highlights),
		})
	}
	out.Count = len(out.Entries)
	return out, nil
}

// ===== memory_recall =====

type memoryRecallInput struct {
	SessionID string `json:"session_id" jsonschema:"chat session whose visitor to recall" validate:"required,max=64"`
	Query     string `json:"query" jsonschema:"what the memories should be relevant to" validate:"required,max=1000"`
	Limit     int    `json:"limit,omitempty" jsonschema:"maximum memories to return (1-20, default 5)" validate:"omitempty,min=1,max=20"`
}

type recalledMemory struct {
	Kind       string  `json:"kind"`
	Content    string  `json:"content"`
	Importance float64 `json:"importance"`
	Score      float64 `json:"score"`
	CreatedAt  string  `json:"created_at"`
}

type visitorProfile struct {
	Name        string   `json:"name,omitempty"`
	Company     string   `json:"company,omitempty"`
	Role        string   `json:"role,omitempty"`
	Location    string   `json:"location,omitempty"`
	Interests   []string `json:"interests"`
	Preferences []string `json:"preferences"`
	Goals       []string `json:"goals"`
}

type memoryRecallOutput struct {
	SessionID string           `json:"session_id"`
	VisitorID string           `json:"visitor_id"`
	Memories  []recalledMemory `json:"memories"`
	Profile   visitorProfile   `json:"profile"`
	Count     int              `json:"count"`
}

func (s *Server) memoryRecall(ctx context.Context, in memoryRecallInput) (memoryRecallOutput, error) {
	sess, err := s.memory.GetSession(ctx, in.SessionID)
	if err != nil {
		return memoryRecallOutput{}, err
	}
	limit := in.Limit
	if limit == 0 {
		limit = defaultLimit
	}
	scored, err := s.memory.RelevantMemories(ctx, sess.ID, in.Query, limit)
	if err != nil {
		return memoryRecallOutput{}, err
	}
	profile, err := s.memory.Profile(ctx, sess.VisitorID)
	if err != nil {
		return memoryRecallOutput{}, err
	}

	out := memoryRecallOutput{
		SessionID: sess.ID,
		VisitorID: sess.VisitorID,
		Memories:  make([]recalledMemory, 0, len(scored)),
		Profile: visitorProfile{
			Name:        profile.Name,
			Company:     profile.Company,
			Role:        profile.Role,
			Location:    profile.Location,
			Interests:   orEmpty(profile.Interests),
			Preferences: orEmpty(profile.Preferences),
			Goals:       orEmpty(profile.Goals),
		},
	}
	for _, m := range scored {
		out.Memories = append(out.Memories, recalledMemory{
			Kind:       string(m.Kind),
			Content:    s.scrubber.String(m.Content),
			Importance: m.Importance,
			Score:      m.Score,
			CreatedAt:  m.CreatedAt.UTC().Format(time.RFC3339),
		})
	}
	out.Count = len(out.Memories)
	return out, nil
}

// ===== tool_search =====

type toolSearchInput struct {
	Query    string `json:"query" jsonschema:"substring or regular expression to match" validate:"required,max=200"`
	Category string `json:"category,omitempty" jsonschema:"restrict to knowledge, content, memory or search" validate:"omitempty,oneof=knowledge content memory search"`
	Limit    int    `json:"limit,omitempty" jsonschema:"maximum tools to return (default 5)" validate:"omitempty,min=1,max=50"`
}

type toolMatch struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Category    string `json:"category"`
	Score       int    `json:"score"`
	MatchReason string `json:"match_reason"`
}

type toolSearchOutput struct {
	Query      string      `json:"query"`
	Results    []toolMatch `json:"results"`
	Count      int         `json:"count"`
	TotalTools int         `json:"total_tools"`
}

func (s *Server) toolSearch(_ context.Context, in toolSearchInput) (toolSearchOutput, error) {
	limit := in.Limit
	if limit == 0 {
		limit = defaultLimit
	}
	matches := s.registry.Search(in.Query, ToolCategory(in.Category))
	if len(matches) > limit {
		matches = matches[:limit]
	}
	out := toolSearchOutput{Query: in.Query, Results: make([]toolMatch, 0, len(matches)), TotalTools: s.registry.Count()}
	for _, m := range matches {
		out.Results = append(out.Results, toolMatch{
			Name:        m.Tool.Name,
			Description: m.Tool.Description,
			Category:    string(m.Tool.Category),
			Score:       m.Score,
			MatchReason: m.MatchReason,
		})
	}
	out.Count = len(out.Results)
	return out, nil
}

func containsFold(list []string, want string) bool {
	for _, v := range list {
		if strings.EqualFold(strings.TrimSpace(v), want) {
			return true
		}
	}
	return false
}

func orEmpty(list []string) []string {
	if list == nil {
		return []string{}
	}
	return list
}
