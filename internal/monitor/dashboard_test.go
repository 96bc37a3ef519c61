package monitor

import (
	"errors"
	"fmt"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"

	api "github.com/fyrsmithlabs/folio/internal/http"
	"github.com/fyrsmithlabs/folio/internal/storage"
	"github.com/fyrsmithlabs/folio/internal/vectorstore"
)

func testModel() Model {
	return NewModel(NewClient("http://localhost:8420", "tok"), 5*time.Second)
}

func adminSnapshot(sessions, memories int) Snapshot {
	return Snapshot{
		Health:  api.HealthResponse{Status: "ok", Database: "ok", Version: "1.2.3"},
		Latency: 12300 * time.Microsecond,
		Admin:   true,
		Status: api.StatusResponse{
			Version:      "1.2.3",
			LLMAvailable: true,
			Chunks:       42,
			Counts: storage.Counts{
				CaseStudies:    3,
				Experience:     5,
				CoreValues:     4,
				Images:         7,
				ContactsNew:    2,
				ContactsTotal:  9,
				Documents:      4,
				DocumentFailed: 1,
				Sessions:       sessions,
				Memories:       memories,
			},
			Collections: []vectorstore.CollectionInfo{
				{Name: "knowledge_base", Documents: 42, VectorSize: 384},
			},
		},
	}
}

func TestNewModel(t *testing.T) {
	model := testModel()
	assert.Equal(t, "http://localhost:8420", model.client.BaseURL())
	assert.Equal(t, 5*time.Second, model.interval)
	assert.False(t, model.quitting)

	model = NewModel(NewClient("http://localhost:8420/", ""), 0)
	assert.Equal(t, "http://localhost:8420", model.client.BaseURL())
	assert.Equal(t, 5*time.Second, model.interval)
}

func TestModel_Init(t *testing.T) {
	assert.NotNil(t, testModel().Init())
}

func TestModel_Update_QuitKey(t *testing.T) {
	updated, cmd := testModel().Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'q'}})

	m := updated.(Model)
	assert.True(t, m.quitting)
	assert.NotNil(t, cmd)
	assert.Empty(t, m.View())
}

func TestModel_Update_RefreshKey(t *testing.T) {
	updated, cmd := testModel().Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'r'}})

	m := updated.(Model)
	assert.False(t, m.quitting)
	assert.NotNil(t, cmd)
}

func TestModel_Update_TickMsg(t *testing.T) {
	updated, cmd := testModel().Update(tickMsg(time.Now()))

	assert.False(t, updated.(Model).quitting)
	assert.NotNil(t, cmd)
}

func TestModel_Update_SnapshotMsg(t *testing.T) {
	updated, cmd := testModel().Update(snapshotMsg(adminSnapshot(10, 3)))
	m := updated.(Model)

	assert.Nil(t, cmd)
	assert.False(t, m.lastUpdate.IsZero())
	assert.Nil(t, m.previous)
	assert.Equal(t, 10, m.snapshot.Status.Counts.Sessions)
	assert.Equal(t, []float64{12.3}, m.latencyHistory)
	assert.Equal(t, []float64{10}, m.sessionHistory)
	assert.Equal(t, []float64{3}, m.memoryHistory)
	assert.Equal(t, []float64{42}, m.chunkHistory)

	updated, _ = m.Update(snapshotMsg(adminSnapshot(12, 3)))
	m = updated.(Model)
	if assert.NotNil(t, m.previous) {
		assert.Equal(t, 10, m.previous.Status.Counts.Sessions)
	}
	assert.Len(t, m.sessionHistory, 2)
	assert.Contains(t, m.View(), "(+2)")
}

func TestModel_Update_HealthOnlySnapshot(t *testing.T) {
	snap := Snapshot{Health: api.HealthResponse{Status: "ok", Database: "ok"}, Latency: time.Millisecond}
	updated, _ := testModel().Update(snapshotMsg(snap))
	m := updated.(Model)

	assert.Len(t, m.latencyHistory, 1)
	assert.Empty(t, m.sessionHistory)

	view := m.View()
	assert.Contains(t, view, "No admin token")
	assert.NotContains(t, view, "Conversations")
}

func TestModel_Update_ErrMsg(t *testing.T) {
	updated, cmd := testModel().Update(errMsg{err: fmt.Errorf("connection refused")})

	m := updated.(Model)
	assert.Nil(t, cmd)
	assert.ErrorContains(t, m.err, "connection refused")

	// a later snapshot clears the error
	updated, _ = m.Update(snapshotMsg(adminSnapshot(1, 1)))
	assert.NoError(t, updated.(Model).err)
}

func TestModel_View_WithSnapshot(t *testing.T) {
	model := testModel()
	model.snapshot = adminSnapshot(8, 21)
	model.lastUpdate = time.Date(2024, 1, 1, 12, 34, 56, 0, time.UTC)

	view := model.View()

	assert.Contains(t, view, "folio Monitor")
	assert.Contains(t, view, "HEALTHY")
	assert.Contains(t, view, "12:34:56")
	assert.Contains(t, view, "1.2.3")
	assert.Contains(t, view, "12.3ms")
	assert.Contains(t, view, "Content")
	assert.Contains(t, view, "Inbox")
	assert.Contains(t, view, "Knowledge")
	assert.Contains(t, view, "knowledge_base")
	assert.Contains(t, view, "75.0%")
	assert.Contains(t, view, "Conversations")
	assert.Contains(t, view, "21")
	assert.Contains(t, view, "available")
	assert.Contains(t, view, "[q]")
	assert.Contains(t, view, "[r]")
}

func TestModel_View_Degraded(t *testing.T) {
	model := testModel()
	model.snapshot = Snapshot{Health: api.HealthResponse{Status: "degraded", Database: "unavailable"}}
	model.lastUpdate = time.Now()

	view := model.View()
	assert.Contains(t, view, "DEGRADED")
	assert.Contains(t, view, "unavailable")
}

func TestModel_View_WithError(t *testing.T) {
	model := testModel()
	model.err = fmt.Errorf("connection refused")

	view := model.View()
	assert.Contains(t, view, "Cannot reach foliod")
	assert.Contains(t, view, "connection refused")
	assert.Contains(t, view, "http://localhost:8420")
	assert.Contains(t, view, "[q]")
	assert.Contains(t, view, "[r]")
}

func TestModel_View_Unauthorized(t *testing.T) {
	model := testModel()
	model.err = fmt.Errorf("fetch: %w", ErrUnauthorized)

	view := model.View()
	assert.Contains(t, view, "token rejected")
	assert.Contains(t, view, "folioctl token")
}

func TestModel_View_NoData(t *testing.T) {
	view := testModel().View()
	assert.Contains(t, view, "folio Monitor")
	assert.Contains(t, view, "Waiting for")
	assert.Contains(t, view, "[q]")
}

func TestDocumentHealth(t *testing.T) {
	tests := []struct {
		name          string
		total, failed int
		want          float64
	}{
		{"empty", 0, 0, 1},
		{"all good", 4, 0, 1},
		{"one failed", 4, 1, 0.75},
		{"all failed", 2, 2, 0},
		{"more failed than total", 2, 5, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, documentHealth(tt.total, tt.failed), 1e-9)
		})
	}
}

func TestAppendToHistory(t *testing.T) {
	var h []float64
	for i := 0; i < historySize+5; i++ {
		h = appendToHistory(h, float64(i))
	}
	assert.Len(t, h, historySize)
	assert.Equal(t, float64(5), h[0])
	assert.Equal(t, float64(historySize+4), h[len(h)-1])
}

func TestFetchCmd_ReturnsErrMsg(t *testing.T) {
	msg := fetch(NewClient("http://127.0.0.1:1", ""))()
	em, ok := msg.(errMsg)
	if assert.True(t, ok) {
		assert.Error(t, em.err)
		assert.False(t, errors.Is(em.err, ErrUnauthorized))
	}
}
