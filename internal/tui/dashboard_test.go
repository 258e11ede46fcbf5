package tui

import (
	"context"
	"strings"
	"testing"
	"time"

	"netmonlabs/netmon/internal/domain"
	"netmonlabs/netmon/internal/poller"
	"netmonlabs/netmon/internal/tui/components"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/x/ansi"
	"github.com/google/go-cmp/cmp"
)

// --- Test helpers ---

func strPtr(s string) *string { return &s }

func reading(device, location string, value float64, at string) domain.TelemetryRecord {
	return domain.TelemetryRecord{
		DeviceName:  device,
		IPAddress:   "10.0.0.1",
		Location:    strPtr(location),
		MetricValue: domain.NewMetric(value),
		RecordedAt:  domain.ParseTimestamp(at, time.UTC),
	}
}

func testSnapshot() poller.Snapshot {
	return poller.Snapshot{
		Seq:       1,
		FetchedAt: time.Date(2025, 11, 20, 12, 0, 5, 0, time.UTC),
		Records: []domain.TelemetryRecord{
			reading("Router-01", "Omsk", 95, "2025-11-20T12:00:00"),
			reading("Switch-02", "Kazan", 40, "2025-11-20T12:00:00"),
			reading("Firewall-03", "Omsk", 85, "2025-11-20T12:00:01"),
		},
	}
}

func newTestDashboard(t *testing.T) (dashboardModel, *int) {
	t.Helper()
	refreshes := 0
	m := newDashboardModel(context.Background(), make(chan poller.Snapshot), func() { refreshes++ }, DashboardOptions{Backend: "localhost:8080"})
	next, _ := m.Update(tea.WindowSizeMsg{Width: 140, Height: 50})
	return next.(dashboardModel), &refreshes
}

func press(t *testing.T, m dashboardModel, keys ...string) dashboardModel {
	t.Helper()
	for _, k := range keys {
		var msg tea.KeyMsg
		switch k {
		case "esc":
			msg = tea.KeyMsg{Type: tea.KeyEsc}
		case "enter":
			msg = tea.KeyMsg{Type: tea.KeyEnter}
		default:
			msg = tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)}
		}
		next, _ := m.Update(msg)
		m = next.(dashboardModel)
	}
	return m
}

func deviceNames(records []domain.TelemetryRecord) []string {
	out := make([]string, len(records))
	for i, r := range records {
		out[i] = r.DeviceName
	}
	return out
}

func TestDashboard_AppliesSnapshot(t *testing.T) {
	m, _ := newTestDashboard(t)

	next, cmd := m.Update(snapshotMsg{snap: testSnapshot()})
	m = next.(dashboardModel)

	if !m.loaded {
		t.Fatal("expected model to be loaded")
	}
	if cmd == nil {
		t.Error("expected a command waiting for the next snapshot")
	}
	if diff := cmp.Diff([]string{"Router-01", "Switch-02", "Firewall-03"}, deviceNames(m.result.Rows)); diff != "" {
		t.Errorf("rows mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]float64{68, 85}, m.result.Status.Values()); diff != "" {
		t.Errorf("status series mismatch (-want +got):\n%s", diff)
	}
}

func TestDashboard_SearchFiltersRowsNotCharts(t *testing.T) {
	m, _ := newTestDashboard(t)
	next, _ := m.Update(snapshotMsg{snap: testSnapshot()})
	m = next.(dashboardModel)

	m = press(t, m, "/", "o", "m", "s", "k")
	if !m.searching {
		t.Fatal("expected search mode")
	}
	if diff := cmp.Diff([]string{"Router-01", "Firewall-03"}, deviceNames(m.result.Rows)); diff != "" {
		t.Errorf("rows mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]float64{1, 0}, m.result.Anomalies.Values()); diff != "" {
		t.Errorf("anomaly series should ignore the search (-want +got):\n%s", diff)
	}

	m = press(t, m, "enter")
	if m.searching {
		t.Error("enter should leave search mode")
	}
	if m.search.Value() != "omsk" {
		t.Errorf("search term = %q", m.search.Value())
	}

	m = press(t, m, "esc")
	if m.search.Value() != "" || len(m.result.Rows) != 3 {
		t.Errorf("esc should clear the search, got %q with %d rows", m.search.Value(), len(m.result.Rows))
	}
}

func TestDashboard_SearchBeforeFirstSnapshot(t *testing.T) {
	m, _ := newTestDashboard(t)
	m = press(t, m, "/", "x")
	if m.loaded || len(m.result.Rows) != 0 {
		t.Error("search before data should not produce rows")
	}

	next, _ := m.Update(snapshotMsg{snap: testSnapshot()})
	m = next.(dashboardModel)
	if len(m.result.Rows) != 0 {
		t.Errorf("expected no rows matching %q, got %d", "x", len(m.result.Rows))
	}
}

func TestDashboard_RefreshAndQuit(t *testing.T) {
	m, refreshes := newTestDashboard(t)

	m = press(t, m, "r")
	if *refreshes != 1 {
		t.Errorf("refreshes = %d, want 1", *refreshes)
	}

	next, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("q")})
	if !next.(dashboardModel).quitting {
		t.Error("expected quitting")
	}
	if cmd == nil {
		t.Fatal("expected quit command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("expected tea.QuitMsg")
	}
}

func TestDashboard_CursorClampsToRows(t *testing.T) {
	m, _ := newTestDashboard(t)
	next, _ := m.Update(snapshotMsg{snap: testSnapshot()})
	m = next.(dashboardModel)

	m = press(t, m, "j", "j", "j", "j")
	if m.cursor != 2 {
		t.Errorf("cursor = %d, want 2", m.cursor)
	}

	shorter := testSnapshot()
	shorter.Seq = 2
	shorter.Records = shorter.Records[:1]
	next, _ = m.Update(snapshotMsg{snap: shorter})
	m = next.(dashboardModel)
	if m.cursor != 0 {
		t.Errorf("cursor = %d after shrink, want 0", m.cursor)
	}
}

func TestDashboard_View(t *testing.T) {
	m, _ := newTestDashboard(t)
	if got := ansi.Strip(m.View()); !strings.Contains(got, "Fetching telemetry") {
		t.Errorf("loading view missing spinner text:\n%s", got)
	}

	next, _ := m.Update(snapshotMsg{snap: testSnapshot()})
	m = next.(dashboardModel)
	view := ansi.Strip(m.View())

	for _, want := range []string{
		"netmon", "dashboard", "localhost:8080",
		"DEVICE", "ANOMALY",
		"Router-01", "Loading", "warning", "active", "yes", "—",
		"Device status", "Anomalies", "Performance",
		"Last updated", "3 of 3 rows",
	} {
		if !strings.Contains(view, want) {
			t.Errorf("view missing %q", want)
		}
	}
}

func TestDashboard_StatusLineMarksStaleData(t *testing.T) {
	m, _ := newTestDashboard(t)
	m.staleAfter = 40 * time.Second
	snap := testSnapshot()

	next, _ := m.Update(snapshotMsg{snap: snap})
	m = next.(dashboardModel)

	m.now = func() time.Time { return snap.FetchedAt.Add(30 * time.Second) }
	msg, detail, level := m.statusLine()
	if strings.Contains(msg, "stale") || level != components.StatusInfo || detail != "3 of 3 rows" {
		t.Errorf("fresh status = %q / %q / %v", msg, detail, level)
	}

	m.now = func() time.Time { return snap.FetchedAt.Add(time.Minute) }
	msg, _, level = m.statusLine()
	if !strings.HasSuffix(msg, "(stale)") || level != components.StatusWarn {
		t.Errorf("stale status = %q / %v", msg, level)
	}
	view := ansi.Strip(m.View())
	if !strings.Contains(view, "Router-01") || !strings.Contains(view, "(stale)") {
		t.Errorf("stale view should keep rows and flag age:\n%s", view)
	}
}

func TestWaitForSnapshot(t *testing.T) {
	updates := make(chan poller.Snapshot, 1)
	updates <- testSnapshot()

	msg := waitForSnapshot(context.Background(), updates)()
	if got, ok := msg.(snapshotMsg); !ok || got.snap.Seq != 1 {
		t.Errorf("msg = %#v", msg)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if msg := waitForSnapshot(ctx, updates)(); msg != nil {
		t.Errorf("expected nil after cancel, got %#v", msg)
	}
}

func TestCellValue(t *testing.T) {
	r := reading("Router-05", "Omsk", 92.5, "2025-11-20T12:00:00")
	tests := map[string]string{
		"DEVICE":   "Router-05",
		"IP":       "10.0.0.1",
		"LOCATION": "Omsk",
		"STATUS":   "warning",
		"METRIC":   "Loading",
		"VALUE":    "92.5",
		"ANOMALY":  "yes",
	}
	for col, want := range tests {
		if got := cellValue(r, col); got != want {
			t.Errorf("%s = %q, want %q", col, got, want)
		}
	}

	r.MetricValue = domain.NewMetric(80)
	r.ActionDescription = strPtr("Reboot scheduled")
	if got := cellValue(r, "STATUS"); got != "active" {
		t.Errorf("80 should be active, got %q", got)
	}
	if got := cellValue(r, "ANOMALY"); got != "—" {
		t.Errorf("ANOMALY = %q", got)
	}
	if got := cellValue(r, "METRIC"); got != "Reboot scheduled" {
		t.Errorf("METRIC = %q", got)
	}
}

func TestTableColumns_ExtraWidthGoesToMetric(t *testing.T) {
	narrow := tableColumns(10)
	wide := tableColumns(200)
	total := 0
	for i := range wide {
		total += wide[i].width
		if wide[i].title != "METRIC" && wide[i].width != narrow[i].width {
			t.Errorf("column %s grew", wide[i].title)
		}
	}
	if total != 200 {
		t.Errorf("total width = %d, want 200", total)
	}
}

func TestTruncate(t *testing.T) {
	if got := truncate("Router-01", 20); got != "Router-01" {
		t.Errorf("truncate short = %q", got)
	}
	if got := truncate("Core-Router-Omsk-01", 8); ansi.StringWidth(got) > 8 || !strings.HasSuffix(got, "…") {
		t.Errorf("truncate long = %q", got)
	}
	if got := truncate("abc", 0); got != "" {
		t.Errorf("truncate zero = %q", got)
	}
}
