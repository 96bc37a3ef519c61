package http

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/fyrsmithlabs/folio/internal/assistant"
	"github.com/fyrsmithlabs/folio/internal/auth"
	"github.com/fyrsmithlabs/folio/internal/cms"
	"github.com/fyrsmithlabs/folio/internal/config"
	"github.com/fyrsmithlabs/folio/internal/conversation"
	"github.com/fyrsmithlabs/folio/internal/embeddings"
	"github.com/fyrsmithlabs/folio/internal/knowledge"
	"github.com/fyrsmithlabs/folio/internal/llm"
	"github.com/fyrsmithlabs/folio/internal/logging"
	"github.com/fyrsmithlabs/folio/internal/storage"
	"github.com/fyrsmithlabs/folio/internal/storage/sqlite"
	"github.com/fyrsmithlabs/folio/internal/vectorstore"
)

const adminPassword = "correct horse battery staple"

type testServer struct {
	srv   *Server
	store *sqlite.Store
	token string
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	return newTestServerWithLogger(t, zap.NewNop())
}

func newTestServerWithLogger(t *testing.T, logger *zap.Logger) *testServer {
	t.Helper()
	cfg := config.Default()
	cfg.Auth.AdminPassword = config.Secret(adminPassword)
	cfg.Auth.JWTSecret = config.Secret("0123456789abcdef0123456789abcdef")
	cfg.Knowledge.MaxUploadBytes = 64 << 10
	cfg.Knowledge.ChunkSize = 200
	cfg.Knowledge.ChunkOverlap = 20
	cfg.Contact.RatePerMinute = 3
	cfg.Contact.Burst = 3

	store, err := sqlite.Open(filepath.Join(t.TempDir(), "folio.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	emb, err := embeddings.NewLocal(256)
	require.NoError(t, err)
	vectors, err := vectorstore.New(config.VectorStoreConfig{InMemory: true}, emb, logger)
	require.NoError(t, err)

	svc, err := cms.NewService(store, logger)
	require.NoError(t, err)
	tok := llm.NewEstimator()
	kb, err := knowledge.NewProcessor(cfg.Knowledge, store, vectors, logger, knowledge.WithTokenizer(tok))
	require.NoError(t, err)
	conv, err := conversation.NewManager(cfg.Memory, store, logger, conversation.WithTokenizer(tok))
	require.NoError(t, err)
	asst, err := assistant.New(svc, kb, conv, logger)
	require.NoError(t, err)
	authn, err := auth.New(cfg.Auth)
	require.NoError(t, err)

	srv, err := NewServer(cfg, Deps{
		CMS:           svc,
		Knowledge:     kb,
		Conversations: conv,
		Assistant:     asst,
		Auth:          authn,
		Status:        store,
		Vectors:       vectors,
		Version:       "test",
	}, logger)
	require.NoError(t, err)

	issued, err := authn.Issue()
	require.NoError(t, err)
	return &testServer{srv: srv, store: store, token: issued.AccessToken}
}

func (ts *testServer) do(t *testing.T, method, path string, body any, authed bool) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	if body != nil {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	if authed {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+ts.token)
	}
	rec := httptest.NewRecorder()
	ts.srv.Handler().ServeHTTP(rec, req)
	return rec
}

func (ts *testServer) upload(t *testing.T, filename, content string) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("file", filename)
	require.NoError(t, err)
	_, err = fw.Write([]byte(content))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/v1/admin/knowledge", &buf)
	req.Header.Set(echo.HeaderContentType, mw.FormDataContentType())
	req.Header.Set(echo.HeaderAuthorization, "Bearer "+ts.token)
	rec := httptest.NewRecorder()
	ts.srv.Handler().ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

func TestNewServer_RequiresDeps(t *testing.T) {
	_, err := NewServer(config.Default(), Deps{}, zap.NewNop())
	assert.Error(t, err)
	_, err = NewServer(nil, Deps{}, zap.NewNop())
	assert.Error(t, err)
}

func TestHealth(t *testing.T) {
	ts := newTestServer(t)
	rec := ts.do(t, http.MethodGet, "/health", nil, false)
	require.Equal(t, http.StatusOK, rec.Code)
	h := decode[HealthResponse](t, rec)
	assert.Equal(t, "ok", h.Status)
	assert.Equal(t, "test", h.Version)

	require.NoError(t, ts.store.Close())
	rec = ts.do(t, http.MethodGet, "/health", nil, false)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestMetricsEndpoint(t *testing.T) {
	ts := newTestServer(t)
	rec := ts.do(t, http.MethodGet, "/metrics", nil, false)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestUnknownRoute(t *testing.T) {
	ts := newTestServer(t)
	rec := ts.do(t, http.MethodGet, "/api/v1/nope", nil, false)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), "error")
}

func TestAdminRequiresToken(t *testing.T) {
	ts := newTestServer(t)
	rec := ts.do(t, http.MethodGet, "/api/v1/admin/status", nil, false)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = ts.do(t, http.MethodGet, "/api/v1/admin/status", nil, true)
	require.Equal(t, http.StatusOK, rec.Code)
	status := decode[StatusResponse](t, rec)
	assert.False(t, status.LLMAvailable)
	assert.Equal(t, "test", status.Version)
}

func TestLogin(t *testing.T) {
	ts := newTestServer(t)

	rec := ts.do(t, http.MethodPost, "/api/v1/auth/login", LoginRequest{Password: "wrong"}, false)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = ts.do(t, http.MethodPost, "/api/v1/auth/login", LoginRequest{}, false)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = ts.do(t, http.MethodPost, "/api/v1/auth/login", LoginRequest{Password: adminPassword}, false)
	require.Equal(t, http.StatusOK, rec.Code)
	tok := decode[auth.Token](t, rec)
	require.NotEmpty(t, tok.AccessToken)

	ts.token = tok.AccessToken
	rec = ts.do(t, http.MethodGet, "/api/v1/admin/status", nil, true)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestCaseStudyLifecycle(t *testing.T) {
	ts := newTestServer(t)

	rec := ts.do(t, http.MethodPost, "/api/v1/admin/case-studies", cms.CaseStudyInput{}, true)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	errResp := decode[ErrorResponse](t, rec)
	assert.Contains(t, errResp.Fields, "title")

	rec = ts.do(t, http.MethodPost, "/api/v1/admin/case-studies", cms.CaseStudyInput{
		Title:        "Billing Platform Rewrite",
		Summary:      "Moved invoicing to an event-driven design.",
		Technologies: []string{"Go", "Kafka"},
		Published:    true,
	}, true)
	require.Equal(t, http.StatusCreated, rec.Code)
	cs := decode[storage.CaseStudy](t, rec)
	assert.Equal(t, "billing-platform-rewrite", cs.Slug)

	rec = ts.do(t, http.MethodPost, "/api/v1/admin/case-studies", cms.CaseStudyInput{Title: "Draft Idea"}, true)
	require.Equal(t, http.StatusCreated, rec.Code)
	draft := decode[storage.CaseStudy](t, rec)

	rec = ts.do(t, http.MethodGet, "/api/v1/content/case-studies", nil, false)
	require.Equal(t, http.StatusOK, rec.Code)
	published := decode[[]storage.CaseStudy](t, rec)
	require.Len(t, published, 1)
	assert.Equal(t, cs.ID, published[0].ID)

	rec = ts.do(t, http.MethodGet, "/api/v1/content/case-studies/"+cs.Slug, nil, false)
	assert.Equal(t, http.StatusOK, rec.Code)
	rec = ts.do(t, http.MethodGet, "/api/v1/content/case-studies/"+draft.Slug, nil, false)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = ts.do(t, http.MethodGet, "/api/v1/admin/case-studies", nil, true)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[[]storage.CaseStudy](t, rec), 2)

	rec = ts.do(t, http.MethodPut, "/api/v1/admin/case-studies/"+draft.ID, cms.CaseStudyInput{Title: "Draft Idea", Published: true}, true)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, decode[storage.CaseStudy](t, rec).Published)

	rec = ts.do(t, http.MethodDelete, "/api/v1/admin/case-studies/"+cs.ID, nil, true)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	rec = ts.do(t, http.MethodGet, "/api/v1/admin/case-studies/"+cs.ID, nil, true)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	rec = ts.do(t, http.MethodDelete, "/api/v1/admin/case-studies/"+cs.ID, nil, true)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestTimelineRejectsInvertedDates(t *testing.T) {
	ts := newTestServer(t)
	rec := ts.do(t, http.MethodPost, "/api/v1/admin/timeline", cms.ExperienceInput{
		Company:   "Acme",
		Role:      "Engineer",
		StartDate: "2022-01-01",
		EndDate:   "2021-01-01",
	}, true)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = ts.do(t, http.MethodPost, "/api/v1/admin/timeline", cms.ExperienceInput{
		Company:   "Acme",
		Role:      "Engineer",
		StartDate: "2021-01-01",
		Current:   true,
	}, true)
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = ts.do(t, http.MethodGet, "/api/v1/content/timeline", nil, false)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[[]storage.ExperienceEntry](t, rec), 1)
}

func TestImagesReorder(t *testing.T) {
	ts := newTestServer(t)
	var ids []string
	for i := 0; i < 3; i++ {
		rec := ts.do(t, http.MethodPost, "/api/v1/admin/images", cms.ImageInput{
			URL:      fmt.Sprintf("https://cdn.example.com/%d.png", i),
			Category: "gallery",
		}, true)
		require.Equal(t, http.StatusCreated, rec.Code)
		ids = append(ids, decode[storage.PortfolioImage](t, rec).ID)
	}

	rec := ts.do(t, http.MethodPost, "/api/v1/admin/images/reorder", ReorderRequest{}, true)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	reversed := []string{ids[2], ids[1], ids[0]}
	rec = ts.do(t, http.MethodPost, "/api/v1/admin/images/reorder", ReorderRequest{IDs: reversed}, true)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = ts.do(t, http.MethodGet, "/api/v1/content/images?category=gallery", nil, false)
	require.Equal(t, http.StatusOK, rec.Code)
	images := decode[[]storage.PortfolioImage](t, rec)
	require.Len(t, images, 3)
	for i, img := range images {
		assert.Equal(t, reversed[i], img.ID)
	}
}

func TestSeoAndHero(t *testing.T) {
	ts := newTestServer(t)

	rec := ts.do(t, http.MethodGet, "/api/v1/content/seo/home", nil, false)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = ts.do(t, http.MethodPut, "/api/v1/admin/seo/home", cms.SeoInput{Title: "Dana Reyes"}, true)
	require.Equal(t, http.StatusOK, rec.Code)
	rec = ts.do(t, http.MethodGet, "/api/v1/content/seo/home", nil, false)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Dana Reyes", decode[storage.SeoSettings](t, rec).Title)

	rec = ts.do(t, http.MethodPut, "/api/v1/admin/hero", cms.HeroInput{Headline: "Platform engineer"}, true)
	require.Equal(t, http.StatusOK, rec.Code)
	rec = ts.do(t, http.MethodPut, "/api/v1/admin/hero", cms.HeroInput{Headline: "Staff platform engineer"}, true)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = ts.do(t, http.MethodGet, "/api/v1/content/hero", nil, false)
	require.Equal(t, http.StatusOK, rec.Code)
	hero := decode[storage.HeroContent](t, rec)
	assert.Equal(t, "Staff platform engineer", hero.Headline)
	assert.Equal(t, 2, hero.Version)
}

func TestContactForm(t *testing.T) {
	ts := newTestServer(t)
	valid := cms.ContactInput{
		Name:    "Sam",
		Email:   "Sam@Example.com",
		Message: "Would love to chat about a role.",
	}

	rec := ts.do(t, http.MethodPost, "/api/v1/contact", cms.ContactInput{Name: "Sam"}, false)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	spam := valid
	spam.Website = "http://spam.example"
	rec = ts.do(t, http.MethodPost, "/api/v1/contact", spam, false)
	assert.Equal(t, http.StatusAccepted, rec.Code)

	rec = ts.do(t, http.MethodPost, "/api/v1/contact", valid, false)
	require.Equal(t, http.StatusAccepted, rec.Code)
	assert.Equal(t, "received", decode[AcceptedResponse](t, rec).Status)

	rec = ts.do(t, http.MethodGet, "/api/v1/admin/contacts?status=new", nil, true)
	require.Equal(t, http.StatusOK, rec.Code)
	subs := decode[[]storage.ContactSubmission](t, rec)
	require.Len(t, subs, 1)
	assert.Equal(t, "sam@example.com", subs[0].Email)

	rec = ts.do(t, http.MethodPatch, "/api/v1/admin/contacts/"+subs[0].ID, ContactStatusRequest{Status: "bogus"}, true)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	rec = ts.do(t, http.MethodPatch, "/api/v1/admin/contacts/"+subs[0].ID, ContactStatusRequest{Status: storage.ContactRead}, true)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, storage.ContactRead, decode[storage.ContactSubmission](t, rec).Status)

	rec = ts.do(t, http.MethodGet, "/api/v1/admin/contacts?status=bogus", nil, true)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestContactRateLimit(t *testing.T) {
	ts := newTestServer(t)
	in := cms.ContactInput{Name: "Sam", Email: "sam@example.com", Message: "Hello there, are you hiring?"}

	for i := 0; i < 3; i++ {
		rec := ts.do(t, http.MethodPost, "/api/v1/contact", in, false)
		require.Equal(t, http.StatusAccepted, rec.Code, "submission %d", i)
	}
	rec := ts.do(t, http.MethodPost, "/api/v1/contact", in, false)
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "20", rec.Header().Get("Retry-After"))
}

func TestChatFallbackAndSessions(t *testing.T) {
	ts := newTestServer(t)

	rec := ts.do(t, http.MethodPost, "/api/v1/chat", assistant.ChatRequest{Message: "  "}, false)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = ts.do(t, http.MethodPost, "/api/v1/chat", assistant.ChatRequest{
		VisitorID: "visitor-1",
		Message:   "Hi, I'm Sam from Globex. What has she built with Kafka?",
	}, false)
	require.Equal(t, http.StatusOK, rec.Code)
	reply := decode[assistant.ChatResponse](t, rec)
	assert.True(t, reply.Fallback)
	assert.Equal(t, "visitor-1", reply.VisitorID)
	require.NotEmpty(t, reply.SessionID)

	rec = ts.do(t, http.MethodGet, "/api/v1/admin/sessions?visitor_id=visitor-1", nil, true)
	require.Equal(t, http.StatusOK, rec.Code)
	sessions := decode[[]storage.ConversationSession](t, rec)
	require.Len(t, sessions, 1)

	rec = ts.do(t, http.MethodGet, "/api/v1/admin/sessions/"+reply.SessionID, nil, true)
	require.Equal(t, http.StatusOK, rec.Code)
	detail := decode[SessionDetail](t, rec)
	assert.Len(t, detail.Messages, 2)
	assert.Equal(t, storage.RoleUser, detail.Messages[0].Role)
	assert.Equal(t, storage.RoleAssistant, detail.Messages[1].Role)

	rec = ts.do(t, http.MethodPost, "/api/v1/admin/sessions/"+reply.SessionID+"/end", nil, true)
	require.Equal(t, http.StatusOK, rec.Code)
	ended := decode[storage.ConversationSession](t, rec)
	assert.NotNil(t, ended.EndedAt)
	assert.NotEmpty(t, ended.Summary)

	rec = ts.do(t, http.MethodGet, "/api/v1/admin/visitors/visitor-1/profile", nil, true)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "visitor-1", decode[storage.UserProfile](t, rec).VisitorID)

	rec = ts.do(t, http.MethodPost, "/api/v1/chat", assistant.ChatRequest{
		SessionID: reply.SessionID,
		VisitorID: "someone-else",
		Message:   "hello",
	}, false)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = ts.do(t, http.MethodDelete, "/api/v1/admin/sessions/"+reply.SessionID, nil, true)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	rec = ts.do(t, http.MethodGet, "/api/v1/admin/sessions/"+reply.SessionID, nil, true)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestChatRejectsMalformedVisitorID(t *testing.T) {
	ts := newTestServer(t)

	rec := ts.do(t, http.MethodPost, "/api/v1/chat", assistant.ChatRequest{
		VisitorID: "../bad id",
		Message:   "hello",
	}, false)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = ts.do(t, http.MethodPost, "/api/v1/chat", assistant.ChatRequest{
		VisitorID: strings.Repeat("v", 129),
		Message:   "hello",
	}, false)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestKnowledgeUploadAndSearch(t *testing.T) {
	ts := newTestServer(t)
	text := strings.Repeat("Dana led the migration of forty services to Kubernetes and cut deploy time by seventy percent. ", 8)

	rec := ts.upload(t, "notes.md", text)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	doc := decode[storage.KnowledgeDocument](t, rec)
	assert.Equal(t, storage.DocumentCompleted, doc.Status)
	assert.Positive(t, doc.ChunkCount)

	rec = ts.upload(t, "notes-copy.md", text)
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, doc.ID, decode[storage.KnowledgeDocument](t, rec).ID)

	rec = ts.upload(t, "malware.exe", "MZ")
	assert.Equal(t, http.StatusUnsupportedMediaType, rec.Code)

	rec = ts.upload(t, "empty.txt", "")
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	rec = ts.upload(t, "huge.txt", strings.Repeat("x", 65<<10))
	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)

	rec = ts.do(t, http.MethodGet, "/api/v1/admin/knowledge?status=completed", nil, true)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[[]storage.KnowledgeDocument](t, rec), 1)

	rec = ts.do(t, http.MethodGet, "/api/v1/admin/knowledge/search?q=kubernetes+migration&limit=3", nil, true)
	require.Equal(t, http.StatusOK, rec.Code)
	results := decode[[]knowledge.SearchResult](t, rec)
	require.NotEmpty(t, results)
	assert.Equal(t, doc.ID, results[0].DocumentID)

	rec = ts.do(t, http.MethodGet, "/api/v1/admin/knowledge/search?q=x&limit=-1", nil, true)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = ts.do(t, http.MethodPost, "/api/v1/admin/knowledge/"+doc.ID+"/reprocess", nil, true)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = ts.do(t, http.MethodGet, "/api/v1/admin/status", nil, true)
	require.Equal(t, http.StatusOK, rec.Code)
	status := decode[StatusResponse](t, rec)
	assert.Equal(t, 1, status.Counts.Documents)
	assert.Positive(t, status.Chunks)

	rec = ts.do(t, http.MethodDelete, "/api/v1/admin/knowledge/"+doc.ID, nil, true)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	rec = ts.do(t, http.MethodGet, "/api/v1/admin/knowledge/"+doc.ID, nil, true)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestShutdown(t *testing.T) {
	ts := newTestServer(t)
	ts.srv.cfg.Host = "127.0.0.1"
	ts.srv.cfg.Port = 0

	done := make(chan error, 1)
	go func() { done <- ts.srv.Start() }()
	time.Sleep(50 * time.Millisecond)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, ts.srv.Shutdown(ctx))
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("server did not stop")
	}
}

func TestRequestLogging_CarriesCorrelationIDs(t *testing.T) {
	logs := logging.NewTestLogger()
	ts := newTestServerWithLogger(t, logs.Underlying())

	var buf bytes.Buffer
	require.NoError(t, json.NewEncoder(&buf).Encode(assistant.ChatRequest{VisitorID: "visitor-7", Message: "hello"}))
	req := httptest.NewRequest(http.MethodPost, "/api/v1/chat", &buf)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	req.Header.Set(echo.HeaderXRequestID, "req-123")
	rec := httptest.NewRecorder()
	ts.srv.Handler().ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "req-123", rec.Header().Get(echo.HeaderXRequestID))

	logs.AssertField(t, "http request", "request.id", "req-123")
	logs.AssertField(t, "chat reply", "chat.visitor_id", "visitor-7")
	logs.AssertField(t, "chat reply", "request.id", "req-123")
	reply := decode[assistant.ChatResponse](t, rec)
	logs.AssertField(t, "chat reply", "chat.session_id", reply.SessionID)
}
