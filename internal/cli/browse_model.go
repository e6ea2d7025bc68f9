package cli

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/alexanderramin/tally/internal/cli/formatter"
	"github.com/alexanderramin/tally/internal/contract"
	"github.com/alexanderramin/tally/internal/domain"
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
)

// progressLoadedMsg carries a freshly computed progress report.
type progressLoadedMsg struct {
	resp *contract.ProgressResponse
	err  error
}

type browseKeyMap struct {
	Up     key.Binding
	Down   key.Binding
	Cycle  key.Binding
	Reset  key.Binding
	Detail key.Binding
	Quit   key.Binding
}

func (k browseKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Up, k.Down, k.Cycle, k.Reset, k.Detail, k.Quit}
}

func (k browseKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{k.ShortHelp()}
}

func defaultBrowseKeys() browseKeyMap {
	return browseKeyMap{
		Up:     key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
		Down:   key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
		Cycle:  key.NewBinding(key.WithKeys("s"), key.WithHelp("s", "cycle group source")),
		Reset:  key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "reset sources")),
		Detail: key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "toggle detail")),
		Quit:   key.NewBinding(key.WithKeys("q", "esc", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

// browseModel is an interactive progress tree. Source selections made with
// the cycle key only live in the model; nothing is written to the store.
type browseModel struct {
	app        *App
	orderID    string
	at         time.Time
	selections map[string]string

	resp    *contract.ProgressResponse
	cursor  int
	detail  bool
	loading bool
	err     error

	keys browseKeyMap
	help help.Model
}

func newBrowseModel(app *App, orderID string, at time.Time) *browseModel {
	return &browseModel{
		app:        app,
		orderID:    orderID,
		at:         at,
		selections: map[string]string{},
		detail:     true,
		loading:    true,
		keys:       defaultBrowseKeys(),
		help:       help.New(),
	}
}

func (m *browseModel) Init() tea.Cmd {
	return m.load()
}

func (m *browseModel) load() tea.Cmd {
	req := contract.NewProgressRequest(m.orderID)
	at := m.at
	req.At = &at
	for nodeID, typeName := range m.selections {
		req.Selections[nodeID] = typeName
	}
	uc := m.app.progressUseCase()
	return func() tea.Msg {
		resp, err := uc.GetProgress(context.Background(), req)
		return progressLoadedMsg{resp: resp, err: err}
	}
}

func (m *browseModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case progressLoadedMsg:
		m.loading = false
		m.err = msg.err
		if msg.err == nil {
			m.resp = msg.resp
			if m.cursor >= len(m.resp.Rows) {
				m.cursor = max(len(m.resp.Rows)-1, 0)
			}
		}
		return m, nil

	case tea.WindowSizeMsg:
		m.help.Width = msg.Width
		return m, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Quit):
			return m, tea.Quit
		case key.Matches(msg, m.keys.Up):
			if m.cursor > 0 {
				m.cursor--
			}
		case key.Matches(msg, m.keys.Down):
			if m.resp != nil && m.cursor < len(m.resp.Rows)-1 {
				m.cursor++
			}
		case key.Matches(msg, m.keys.Detail):
			m.detail = !m.detail
		case key.Matches(msg, m.keys.Cycle):
			if m.cycleSelection() {
				m.loading = true
				return m, m.load()
			}
		case key.Matches(msg, m.keys.Reset):
			if len(m.selections) > 0 {
				m.selections = map[string]string{}
				m.loading = true
				return m, m.load()
			}
		}
	}
	return m, nil
}

// cycleSelection moves the group under the cursor to its next indirect
// source, ending with none before wrapping around.
func (m *browseModel) cycleSelection() bool {
	row, ok := m.current()
	if !ok || len(row.Indirect) == 0 {
		return false
	}

	options := make([]string, 0, len(row.Indirect)+1)
	for _, ia := range row.Indirect {
		options = append(options, ia.Type)
	}
	options = append(options, contract.SelectNone)

	current, chosen := m.selections[row.NodeID]
	if !chosen {
		current = contract.SelectNone
		if row.Source == domain.SourceIndirect {
			current = row.SourceType
		}
	}
	next := options[0]
	for i, opt := range options {
		if opt == current {
			next = options[(i+1)%len(options)]
			break
		}
	}
	m.selections[row.NodeID] = next
	return true
}

func (m *browseModel) current() (contract.ProgressRow, bool) {
	if m.resp == nil || m.cursor >= len(m.resp.Rows) {
		return contract.ProgressRow{}, false
	}
	return m.resp.Rows[m.cursor], true
}

func (m *browseModel) View() string {
	if m.err != nil {
		return formatter.StyleRed.Render("Error: "+m.err.Error()) + "\n"
	}
	if m.resp == nil {
		return formatter.Dim("Loading…") + "\n"
	}

	var b strings.Builder
	b.WriteString(fmt.Sprintf("%s  %s  %s\n",
		formatter.StyleHeader.Render(m.resp.OrderCode),
		formatter.Bold(m.resp.OrderName),
		formatter.Dim("at "+formatter.FormatDate(m.resp.At))))
	b.WriteString(formatter.RenderProgress(m.resp.Percentage, 30))
	b.WriteString("\n\n")

	items := formatter.ProgressTreeItems(m.resp.Rows)
	for i := range items {
		if _, ok := m.selections[m.resp.Rows[i].NodeID]; ok {
			items[i].Detail += formatter.StyleYellow.Render(" *")
		}
	}
	lines := strings.Split(strings.TrimRight(formatter.RenderTree(items), "\n"), "\n")
	for i, line := range lines {
		marker := "  "
		if i == m.cursor {
			marker = formatter.StyleHeader.Render("▸ ")
		}
		b.WriteString(marker + line + "\n")
	}

	if row, ok := m.current(); ok && m.detail {
		b.WriteString("\n")
		b.WriteString(m.detailView(row))
	}

	b.WriteString("\n")
	b.WriteString(m.help.View(m.keys))
	return b.String()
}

func (m *browseModel) detailView(row contract.ProgressRow) string {
	var b strings.Builder
	b.WriteString(formatter.Header(fmt.Sprintf("#%d %s", row.Seq, row.Name)))
	b.WriteString("\n")
	if len(row.Direct) == 0 && len(row.Indirect) == 0 {
		b.WriteString(formatter.Dim("No advances.") + "\n")
		return b.String()
	}
	if len(row.Direct) > 0 {
		b.WriteString(formatter.FormatAssignments(row.Direct))
	}
	if len(row.Indirect) > 0 {
		if len(row.Direct) > 0 {
			b.WriteString("\n")
		}
		b.WriteString(formatter.FormatIndirect(row.Indirect))
	}
	return b.String()
}
