// Package monitor renders a live terminal dashboard for a running foliod.
package monitor

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/NimbleMarkets/ntcharts/sparkline"
	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

const (
	sparklineWidth  = 30
	sparklineHeight = 3
	historySize     = 30

	fetchTimeout = 5 * time.Second
)

// Model is the bubbletea model for the dashboard.
type Model struct {
	client     *Client
	interval   time.Duration
	lastUpdate time.Time
	snapshot   Snapshot
	previous   *Snapshot
	err        error
	quitting   bool

	latencyHistory  []float64
	sessionHistory  []float64
	memoryHistory   []float64
	chunkHistory    []float64
	documentsHealth progress.Model
}

// k9s-ish palette
var (
	headerStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("0")).
			Background(lipgloss.Color("51")).
			Bold(true).
			Padding(0, 1)

	sectionStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("51")).
			Bold(true).
			MarginTop(1)

	labelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("45"))

	valueStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("231")).
			Bold(true)

	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("245"))

	healthyStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("46")).
			Bold(true)

	warningStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("226")).
			Bold(true)

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196")).
			Bold(true)

	containerStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("238")).
			Padding(1, 2)

	footerStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("245")).
			MarginTop(1)

	footerKeyStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("51")).
			Bold(true)

	sparklineStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("51"))
)

// NewModel creates a dashboard that polls client every interval.
func NewModel(client *Client, interval time.Duration) Model {
	if interval <= 0 {
		interval = 5 * time.Second
	}
	return Model{
		client:   client,
		interval: interval,
		documentsHealth: progress.New(
			progress.WithGradient("#ff0000", "#00ff00"),
			progress.WithWidth(40),
		),
		latencyHistory: make([]float64, 0, historySize),
		sessionHistory: make([]float64, 0, historySize),
		memoryHistory:  make([]float64, 0, historySize),
		chunkHistory:   make([]float64, 0, historySize),
	}
}

type tickMsg time.Time
type snapshotMsg Snapshot
type errMsg struct{ err error }

// Init starts the refresh loop.
func (m Model) Init() tea.Cmd {
	return tea.Batch(tick(m.interval), fetch(m.client))
}

func tick(interval time.Duration) tea.Cmd {
	return tea.Tick(interval, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func fetch(client *Client) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), fetchTimeout)
		defer cancel()

		snap, err := client.Fetch(ctx)
		if err != nil {
			return errMsg{err: err}
		}
		return snapshotMsg(snap)
	}
}

// Update handles key presses, ticks and fetch results.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			m.quitting = true
			return m, tea.Quit
		case "r":
			return m, fetch(m.client)
		}

	case tickMsg:
		return m, tea.Batch(tick(m.interval), fetch(m.client))

	case snapshotMsg:
		snap := Snapshot(msg)
		if !m.lastUpdate.IsZero() {
			prev := m.snapshot
			m.previous = &prev
		}
		m.latencyHistory = appendToHistory(m.latencyHistory, float64(snap.Latency)/float64(time.Millisecond))
		if snap.Admin {
			m.sessionHistory = appendToHistory(m.sessionHistory, float64(snap.Status.Counts.Sessions))
			m.memoryHistory = appendToHistory(m.memoryHistory, float64(snap.Status.Counts.Memories))
			m.chunkHistory = appendToHistory(m.chunkHistory, float64(snap.Status.Chunks))
		}
		m.snapshot = snap
		m.lastUpdate = time.Now()
		m.err = nil
		return m, nil

	case errMsg:
		m.err = msg.err
		return m, nil
	}

	return m, nil
}

// View renders the dashboard.
func (m Model) View() string {
	if m.quitting {
		return ""
	}
	if m.err != nil {
		return m.renderError()
	}
	return m.renderDashboard()
}

func (m Model) renderError() string {
	var b strings.Builder
	b.WriteString(headerStyle.Render("folio Monitor"))
	b.WriteString("\n\n")
	if errors.Is(m.err, ErrUnauthorized) {
		b.WriteString(errorStyle.Render("✗ Admin token rejected by " + m.client.BaseURL()))
		b.WriteString("\n\n")
		b.WriteString(dimStyle.Render("Issue a fresh token with: folioctl token"))
	} else {
		b.WriteString(errorStyle.Render("✗ Cannot reach foliod at " + m.client.BaseURL()))
		b.WriteString("\n\n")
		b.WriteString(labelStyle.Render("Error: "))
		b.WriteString(m.err.Error())
	}
	b.WriteString("\n")
	b.WriteString(m.renderFooter())
	return containerStyle.Render(b.String())
}

func (m Model) renderDashboard() string {
	var b strings.Builder

	b.WriteString(headerStyle.Render("folio Monitor"))
	if !m.lastUpdate.IsZero() {
		b.WriteString("  ")
		b.WriteString(getStatusBadge(m.snapshot.Health.Status))
		b.WriteString(dimStyle.Render("  updated " + m.lastUpdate.Format("15:04:05")))
	}
	b.WriteString("\n")

	if m.lastUpdate.IsZero() {
		b.WriteString("\n")
		b.WriteString(dimStyle.Render("Waiting for " + m.client.BaseURL() + " ..."))
		b.WriteString("\n")
		b.WriteString(m.renderFooter())
		return containerStyle.Render(b.String())
	}

	b.WriteString(m.renderServer())
	if m.snapshot.Admin {
		b.WriteString(m.renderContent())
		b.WriteString(m.renderInbox())
		b.WriteString(m.renderKnowledge())
		b.WriteString(m.renderConversations())
	} else {
		b.WriteString("\n")
		b.WriteString(dimStyle.Render("No admin token: showing health only"))
		b.WriteString("\n")
	}
	b.WriteString(m.renderFooter())
	return containerStyle.Render(b.String())
}

func (m Model) renderServer() string {
	var b strings.Builder
	h := m.snapshot.Health
	b.WriteString(sectionStyle.Render("Server"))
	b.WriteString("\n")
	b.WriteString(row("Status", h.Status, ""))
	b.WriteString(row("Database", h.Database, ""))
	version := h.Version
	if version == "" {
		version = "unknown"
	}
	b.WriteString(row("Version", version, ""))
	b.WriteString(labelStyle.Render(fmt.Sprintf("%-14s", "Latency")))
	b.WriteString(valueStyle.Render(FormatLatency(m.snapshot.Latency)))
	b.WriteString(" ")
	b.WriteString(getLatencyBadge(m.snapshot.Latency))
	b.WriteString("\n")
	b.WriteString(createSparkline(m.latencyHistory))
	b.WriteString("\n")
	if m.snapshot.Admin {
		llm := "disabled"
		if m.snapshot.Status.LLMAvailable {
			llm = "available"
		}
		b.WriteString(row("LLM", llm, ""))
	}
	return b.String()
}

func (m Model) renderContent() string {
	c := m.snapshot.Status.Counts
	var b strings.Builder
	b.WriteString(sectionStyle.Render("Content"))
	b.WriteString("\n")
	b.WriteString(row("Case studies", FormatCount(c.CaseStudies), ""))
	b.WriteString(row("Experience", FormatCount(c.Experience), ""))
	b.WriteString(row("Core values", FormatCount(c.CoreValues), ""))
	b.WriteString(row("Images", FormatCount(c.Images), ""))
	return b.String()
}

func (m Model) renderInbox() string {
	c := m.snapshot.Status.Counts
	var b strings.Builder
	b.WriteString(sectionStyle.Render("Inbox"))
	b.WriteString("\n")
	newLabel := FormatCount(c.ContactsNew)
	if c.ContactsNew > 0 {
		newLabel = warningStyle.Render(newLabel)
	}
	b.WriteString(row("New", newLabel, m.delta(func(s Snapshot) int { return s.Status.Counts.ContactsNew })))
	b.WriteString(row("Total", FormatCount(c.ContactsTotal), ""))
	return b.String()
}

func (m Model) renderKnowledge() string {
	s := m.snapshot.Status
	var b strings.Builder
	b.WriteString(sectionStyle.Render("Knowledge"))
	b.WriteString("\n")
	b.WriteString(row("Documents", FormatCount(s.Counts.Documents), m.delta(func(s Snapshot) int { return s.Status.Counts.Documents })))
	failed := FormatCount(s.Counts.DocumentFailed)
	if s.Counts.DocumentFailed > 0 {
		failed = errorStyle.Render(failed)
	}
	b.WriteString(row("Failed", failed, ""))
	b.WriteString(row("Chunks", FormatCount(s.Chunks), m.delta(func(s Snapshot) int { return s.Status.Chunks })))
	b.WriteString(createSparkline(m.chunkHistory))
	b.WriteString("\n")

	ratio := documentHealth(s.Counts.Documents, s.Counts.DocumentFailed)
	b.WriteString(labelStyle.Render(fmt.Sprintf("%-14s", "Processed")))
	b.WriteString(m.documentsHealth.ViewAs(ratio))
	b.WriteString(" ")
	b.WriteString(dimStyle.Render(FormatPercentage(ratio)))
	b.WriteString("\n")

	for _, col := range s.Collections {
		b.WriteString(dimStyle.Render(fmt.Sprintf("  %-24s %6d vectors  dim %d", col.Name, col.Documents, col.VectorSize)))
		b.WriteString("\n")
	}
	return b.String()
}

func (m Model) renderConversations() string {
	c := m.snapshot.Status.Counts
	var b strings.Builder
	b.WriteString(sectionStyle.Render("Conversations"))
	b.WriteString("\n")
	b.WriteString(row("Sessions", FormatCount(c.Sessions), m.delta(func(s Snapshot) int { return s.Status.Counts.Sessions })))
	b.WriteString(createSparkline(m.sessionHistory))
	b.WriteString("\n")
	b.WriteString(row("Memories", FormatCount(c.Memories), m.delta(func(s Snapshot) int { return s.Status.Counts.Memories })))
	b.WriteString(createSparkline(m.memoryHistory))
	b.WriteString("\n")
	return b.String()
}

func (m Model) renderFooter() string {
	return footerStyle.Render(
		footerKeyStyle.Render("[q]") + " quit  " +
			footerKeyStyle.Render("[r]") + " refresh  " +
			dimStyle.Render("every "+m.interval.String()),
	)
}

// delta reports the change of a counter since the previous admin snapshot.
func (m Model) delta(field func(Snapshot) int) string {
	if m.previous == nil || !m.previous.Admin {
		return ""
	}
	return FormatDelta(field(m.snapshot) - field(*m.previous))
}

func row(label, value, delta string) string {
	line := labelStyle.Render(fmt.Sprintf("%-14s", label)) + valueStyle.Render(value)
	if delta != "" {
		line += " " + dimStyle.Render("("+delta+")")
	}
	return line + "\n"
}

// documentHealth is the share of uploaded documents that processed cleanly.
// An empty knowledge base counts as healthy.
func documentHealth(total, failed int) float64 {
	if total <= 0 {
		return 1
	}
	if failed > total {
		failed = total
	}
	return float64(total-failed) / float64(total)
}

func getLatencyBadge(d time.Duration) string {
	switch {
	case d < 100*time.Millisecond:
		return healthyStyle.Render("[✓]")
	case d < 500*time.Millisecond:
		return warningStyle.Render("[⚠]")
	default:
		return errorStyle.Render("[✗]")
	}
}

func getStatusBadge(status string) string {
	switch status {
	case "ok":
		return healthyStyle.Render("✓ HEALTHY")
	case "degraded":
		return warningStyle.Render("⚠ DEGRADED")
	default:
		return errorStyle.Render("✗ " + strings.ToUpper(status))
	}
}

func appendToHistory(history []float64, value float64) []float64 {
	history = append(history, value)
	if len(history) > historySize {
		history = history[1:]
	}
	return history
}

func createSparkline(data []float64) string {
	if len(data) == 0 {
		return dimStyle.Render(fmt.Sprintf("%*s", sparklineWidth, "no data"))
	}
	spark := sparkline.New(sparklineWidth, sparklineHeight)
	for _, v := range data {
		spark.Push(v)
	}
	spark.Draw()
	return sparklineStyle.Render(spark.View())
}
