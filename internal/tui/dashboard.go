package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"netmonlabs/netmon/internal/aggregate"
	"netmonlabs/netmon/internal/domain"
	"netmonlabs/netmon/internal/poller"
	"netmonlabs/netmon/internal/tui/components"
	"netmonlabs/netmon/internal/tui/styles"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
	"github.com/guptarohit/asciigraph"
)

// chartBlockHeight is the height of one rendered chart: label, plot and
// summary line.
const chartBlockHeight = components.ChartHeight + 3

// --- Messages ---

type snapshotMsg struct {
	snap poller.Snapshot
}

// staleCheckMsg forces a redraw so the status line can turn stale while no
// snapshots arrive.
type staleCheckMsg struct{}

// --- Dashboard model ---

type dashboardModel struct {
	ctx     context.Context
	updates <-chan poller.Snapshot
	refresh func()
	backend string

	staleAfter time.Duration
	now        func() time.Time

	memo   *aggregate.Memo
	snap   poller.Snapshot
	loaded bool
	result aggregate.Result

	search    textinput.Model
	searching bool
	cursor    int

	width  int
	height int

	spinner  spinner.Model
	quitting bool
}

// DashboardOptions configures RunDashboard.
type DashboardOptions struct {
	// Backend is shown in the header.
	Backend string
	// Search pre-fills the search box.
	Search string
	// StaleAfter marks the data stale when no snapshot arrived for this
	// long. RunDashboard defaults it to two poll intervals.
	StaleAfter time.Duration
}

// RunDashboard starts p and runs the full-window telemetry dashboard until
// the user quits or ctx is cancelled. The poller is stopped before
// RunDashboard returns.
func RunDashboard(ctx context.Context, p *poller.Poller, opts DashboardOptions) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	if opts.StaleAfter <= 0 {
		opts.StaleAfter = 2 * p.Interval()
	}

	p.Start(ctx)
	defer p.Stop()

	m := newDashboardModel(ctx, p.Updates(), p.Refresh, opts)
	if snap, ok := p.Latest(); ok {
		m = m.apply(snap)
	}

	prog := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := prog.Run(); err != nil && ctx.Err() == nil {
		return fmt.Errorf("failed to run dashboard: %w", err)
	}
	return nil
}

func newDashboardModel(ctx context.Context, updates <-chan poller.Snapshot, refresh func(), opts DashboardOptions) dashboardModel {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(styles.Blue)

	ti := textinput.New()
	ti.Prompt = "/ "
	ti.Placeholder = "search (router, IP, location...)"
	ti.CharLimit = 128
	ti.SetValue(opts.Search)

	if refresh == nil {
		refresh = func() {}
	}

	return dashboardModel{
		ctx:        ctx,
		updates:    updates,
		refresh:    refresh,
		backend:    opts.Backend,
		staleAfter: opts.StaleAfter,
		now:        time.Now,
		memo:       &aggregate.Memo{},
		search:     ti,
		spinner:    s,
	}
}

func (m dashboardModel) Init() tea.Cmd {
	return tea.Batch(
		m.spinner.Tick,
		waitForSnapshot(m.ctx, m.updates),
	)
}

// waitForSnapshot blocks until the poller publishes a snapshot. It returns
// nil once ctx is done so no goroutine outlives the program.
func waitForSnapshot(ctx context.Context, updates <-chan poller.Snapshot) tea.Cmd {
	return func() tea.Msg {
		select {
		case snap := <-updates:
			return snapshotMsg{snap: snap}
		case <-ctx.Done():
			return nil
		}
	}
}

// --- Update ---

func (m dashboardModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.search.Width = max(msg.Width-10, 10)
		return m, nil

	case snapshotMsg:
		m = m.apply(msg.snap)
		return m, tea.Batch(waitForSnapshot(m.ctx, m.updates), m.staleCheck())

	case staleCheckMsg:
		return m, nil

	case spinner.TickMsg:
		if m.loaded {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		if m.searching {
			return m.handleSearchKey(msg)
		}
		return m.handleKey(msg)
	}

	return m, nil
}

func (m dashboardModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c", "q":
		m.quitting = true
		return m, tea.Quit
	case "/":
		m.searching = true
		return m, m.search.Focus()
	case "esc":
		if m.search.Value() != "" {
			m.search.SetValue("")
			m = m.recompute()
		}
		return m, nil
	case "r":
		m.refresh()
		return m, nil
	case "j", "down":
		if m.cursor < len(m.result.Rows)-1 {
			m.cursor++
		}
	case "k", "up":
		if m.cursor > 0 {
			m.cursor--
		}
	case "g", "home":
		m.cursor = 0
	case "G", "end":
		m.cursor = max(len(m.result.Rows)-1, 0)
	}
	return m, nil
}

func (m dashboardModel) handleSearchKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c":
		m.quitting = true
		return m, tea.Quit
	case "enter", "esc":
		m.searching = false
		m.search.Blur()
		return m, nil
	}

	var cmd tea.Cmd
	m.search, cmd = m.search.Update(msg)
	m = m.recompute()
	return m, cmd
}

// staleCheck schedules a redraw for the moment the current snapshot turns
// stale.
func (m dashboardModel) staleCheck() tea.Cmd {
	if m.staleAfter <= 0 {
		return nil
	}
	return tea.Tick(m.staleAfter, func(time.Time) tea.Msg { return staleCheckMsg{} })
}

// apply installs a new snapshot and recomputes the view.
func (m dashboardModel) apply(snap poller.Snapshot) dashboardModel {
	m.snap = snap
	m.loaded = true
	return m.recompute()
}

func (m dashboardModel) recompute() dashboardModel {
	if !m.loaded {
		return m
	}
	m.result = m.memo.Get(m.snap.Seq, m.snap.Records, m.search.Value())
	if m.cursor >= len(m.result.Rows) {
		m.cursor = max(len(m.result.Rows)-1, 0)
	}
	return m
}

// --- View ---

func (m dashboardModel) View() string {
	if m.width == 0 || m.height == 0 {
		return ""
	}

	header := components.Header(m.width, "dashboard", m.backend)

	var footerBindings []components.KeyBinding
	if m.searching {
		footerBindings = []components.KeyBinding{
			{Key: "enter", Desc: "apply"},
			{Key: "esc", Desc: "done"},
		}
	} else {
		footerBindings = []components.KeyBinding{
			{Key: "q", Desc: "quit"},
			{Key: "r", Desc: "refresh"},
			{Key: "/", Desc: "search"},
			{Key: "j/k", Desc: "navigate"},
			{Key: "esc", Desc: "clear"},
		}
	}
	footer := components.Footer(m.width, footerBindings)

	message, detail, level := m.statusLine()
	statusBar := components.StatusBar(m.width, message, detail, level)

	headerH := lipgloss.Height(header)
	footerH := lipgloss.Height(footer)
	statusH := lipgloss.Height(statusBar)
	contentH := max(m.height-headerH-footerH-statusH, 1)

	content := m.renderContent(contentH)

	return lipgloss.JoinVertical(lipgloss.Left, header, content, statusBar, footer)
}

// statusLine reports when the shown data was fetched and how many rows the
// search kept. Data older than staleAfter is flagged but stays on screen.
func (m dashboardModel) statusLine() (message, detail string, level components.StatusLevel) {
	if !m.loaded {
		return "Waiting for telemetry…", "", components.StatusInfo
	}
	message = "Last updated " + m.snap.FetchedAt.Local().Format(time.TimeOnly)
	detail = fmt.Sprintf("%d of %d rows", len(m.result.Rows), len(m.snap.Records))
	if m.staleAfter > 0 && m.now().Sub(m.snap.FetchedAt) > m.staleAfter {
		return message + " (stale)", detail, components.StatusWarn
	}
	return message, detail, components.StatusInfo
}

func (m dashboardModel) renderContent(height int) string {
	if !m.loaded {
		return lipgloss.Place(
			m.width, height,
			lipgloss.Center, lipgloss.Center,
			styles.MutedText.Render(m.spinner.View()+"  Fetching telemetry…"),
		)
	}

	searchLine := lipgloss.NewStyle().Padding(0, 2).Render(m.search.View())

	charts := m.renderCharts()
	chartsH := lipgloss.Height(charts)
	tableH := height - chartsH - 2
	if tableH < 4 {
		// Not enough room for both; the table wins.
		charts = ""
		tableH = height - 2
	}

	var table string
	if len(m.result.Rows) == 0 {
		msg := "No telemetry yet."
		if m.search.Value() != "" {
			msg = "No rows match " + fmt.Sprintf("%q", m.search.Value()) + "."
		}
		table = lipgloss.Place(m.width, max(tableH, 1), lipgloss.Center, lipgloss.Center, styles.MutedText.Render(msg))
	} else {
		table = m.renderTable(tableH)
	}

	sections := []string{searchLine, "", table}
	if charts != "" {
		sections = append(sections, charts)
	}
	return lipgloss.NewStyle().Height(height).Render(lipgloss.JoinVertical(lipgloss.Left, sections...))
}

func (m dashboardModel) renderCharts() string {
	type chartSpec struct {
		label  string
		series aggregate.Series
		color  asciigraph.AnsiColor
	}
	specs := []chartSpec{
		{"Device status (mean %)", m.result.Status, asciigraph.Green},
		{"Anomalies (> 90)", m.result.Anomalies, asciigraph.Red},
		{"Performance (max %)", m.result.Performance, asciigraph.DodgerBlue},
	}

	available := m.width - 4
	side := available >= 120
	chartW := available
	if side {
		chartW = available/len(specs) - 2
	}

	blocks := make([]string, 0, len(specs))
	for _, s := range specs {
		from, to := "", ""
		if n := len(s.series); n > 0 {
			from, to = s.series[0].Time, s.series[n-1].Time
		}
		block := components.MetricsChart(s.label, s.series.Values(), from, to, chartW, s.color)
		blocks = append(blocks, lipgloss.NewStyle().Width(chartW).Height(chartBlockHeight).MarginRight(2).Render(block))
	}

	var charts string
	if side {
		charts = lipgloss.JoinHorizontal(lipgloss.Top, blocks...)
	} else {
		charts = lipgloss.JoinVertical(lipgloss.Left, blocks...)
	}
	return lipgloss.NewStyle().Padding(0, 2).Render(charts)
}

type column struct {
	title string
	width int
}

// tableColumns sizes the columns for the given inner width, giving any
// extra space to the metric column.
func tableColumns(available int) []column {
	cols := []column{
		{title: "DEVICE", width: 14},
		{title: "IP", width: 16},
		{title: "LOCATION", width: 16},
		{title: "STATUS", width: 10},
		{title: "METRIC", width: 22},
		{title: "VALUE", width: 8},
		{title: "ANOMALY", width: 9},
	}
	total := 0
	for _, c := range cols {
		total += c.width
	}
	if available > total {
		for i := range cols {
			if cols[i].title == "METRIC" {
				cols[i].width += available - total
				break
			}
		}
	}
	return cols
}

// cellValue returns the text shown for r in the named column.
func cellValue(r domain.TelemetryRecord, title string) string {
	switch title {
	case "DEVICE":
		return r.DeviceName
	case "IP":
		return r.IPAddress
	case "LOCATION":
		return r.LocationText()
	case "STATUS":
		return string(aggregate.Classify(r.MetricValue))
	case "METRIC":
		return aggregate.ActionLabel(r)
	case "VALUE":
		return r.MetricValue.Text()
	case "ANOMALY":
		return aggregate.AnomalyLabel(r.MetricValue)
	}
	return ""
}

func (m dashboardModel) renderTable(height int) string {
	available := m.width - 4
	cols := tableColumns(available)

	headerCells := make([]string, len(cols))
	for i, col := range cols {
		headerCells[i] = styles.TableHeader.Width(col.width).Render(col.title)
	}
	headerRow := lipgloss.JoinHorizontal(lipgloss.Top, headerCells...)

	sep := styles.MutedText.Render(strings.Repeat("─", max(available, 1)))

	visibleRows := max(height-2, 1)

	// Scrolling: keep cursor visible.
	startIdx := 0
	if m.cursor >= visibleRows {
		startIdx = m.cursor - visibleRows + 1
	}
	endIdx := min(startIdx+visibleRows, len(m.result.Rows))

	rows := make([]string, 0, visibleRows)
	for i := startIdx; i < endIdx; i++ {
		r := m.result.Rows[i]
		isSelected := i == m.cursor
		isAnomaly := aggregate.IsAnomaly(r.MetricValue)

		cells := make([]string, 0, len(cols))
		for _, col := range cols {
			value := truncate(cellValue(r, col.title), col.width-2)

			var cellStyle lipgloss.Style
			switch {
			case isSelected:
				cellStyle = styles.TableSelectedRow
			case isAnomaly:
				cellStyle = styles.TableAnomalyRow
			case col.title == "STATUS":
				cellStyle = styles.StatusStyle(value).Padding(0, 1)
			default:
				cellStyle = styles.TableCell
			}
			cells = append(cells, cellStyle.Width(col.width).Render(value))
		}

		rows = append(rows, lipgloss.JoinHorizontal(lipgloss.Top, cells...))
	}

	table := lipgloss.JoinVertical(lipgloss.Left,
		append([]string{headerRow, sep}, rows...)...,
	)

	return lipgloss.NewStyle().
		Padding(0, 2).
		Render(table)
}

// truncate shortens a string to fit the given display width with an ellipsis.
func truncate(s string, maxWidth int) string {
	if maxWidth < 1 {
		return ""
	}
	return ansi.Truncate(s, maxWidth, "…")
}
