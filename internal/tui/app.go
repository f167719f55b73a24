package tui

import (
	"log/slog"
	"net/url"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mmcdole/marquee/internal/domain"
	"github.com/mmcdole/marquee/internal/metrics"
	"github.com/mmcdole/marquee/internal/router"
	"github.com/mmcdole/marquee/internal/service"
	"github.com/mmcdole/marquee/internal/tui/components"
	"github.com/mmcdole/marquee/internal/tui/styles"
)

// SearchDebounce is how long typing must pause before a search is issued
const SearchDebounce = 150 * time.Millisecond

// Vertical layout: single footer line
const ChromeHeight = 1

// Refresher drops memoized backend responses
type Refresher interface {
	Purge() error
}

// Options configures a new Model
type Options struct {
	Category  domain.Category
	Columns   int
	Location  string // e.g. "?view=details&id=603"
	Refresher Refresher
	Logger    *slog.Logger
}

// Model is the main Bubble Tea model for the application.
//
// Location is the single source of truth for navigation. State is derived
// from it, and every navigation replaces Location and reloads the page.
type Model struct {
	Ready bool

	// Services
	Browse    *service.BrowseService
	Refresher Refresher
	logger    *slog.Logger

	// Navigation
	Location   url.Values
	State      router.State
	NavWarning string // set when the last location was not a valid target

	// Preferences (not part of the location)
	Category domain.Category
	Columns  int

	// Committed search text; the search box may be ahead of it while debouncing
	Query     string
	searchSeq int

	// UI Components
	Search  components.SearchBox
	Grid    components.Grid // home results
	Similar components.Grid // details recommendations
	Spinner spinner.Model
	Help    help.Model
	Keys    KeyMap

	// Loaded pages
	Home    *service.HomePage
	Details *service.DetailsPage

	// Dimensions
	Width  int
	Height int

	// UI state
	Loading     bool
	seq         int
	ShowHelp    bool
	StatusMsg   string
	StatusIsErr bool
}

// NewModel creates a new application model positioned at opts.Location
func NewModel(browse *service.BrowseService, opts Options) Model {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	category := opts.Category
	if category == "" {
		category = domain.DefaultCategory
	}

	sp := spinner.New(
		spinner.WithSpinner(spinner.Dot),
		spinner.WithStyle(styles.SpinnerStyle),
	)

	m := Model{
		Browse:    browse,
		Refresher: opts.Refresher,
		logger:    logger,
		Category:  category,
		Columns:   service.ClampColumns(opts.Columns),
		Search:    components.NewSearchBox(),
		Grid:      components.NewGrid(),
		Similar:   components.NewGrid(),
		Spinner:   sp,
		Help:      help.New(),
		Keys:      Keys,
	}

	st, err := router.ParseLocation(opts.Location)
	m.setLocation(st, err, nil)
	m.seq = 1
	m.Loading = true
	return m
}

// Init starts the first page load
func (m Model) Init() tea.Cmd {
	return tea.Batch(m.loadCmd(), m.Spinner.Tick)
}

// Update handles all messages
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.Width = msg.Width
		m.Height = msg.Height
		m.Ready = true
		m.updateLayout()
		return m, nil

	case tea.KeyMsg:
		return m.handleKeyMsg(msg)

	case spinner.TickMsg:
		if !m.Loading {
			return m, nil
		}
		var cmd tea.Cmd
		m.Spinner, cmd = m.Spinner.Update(msg)
		return m, cmd

	case HomeLoadedMsg:
		if msg.Seq != m.seq {
			m.logger.Debug("dropping superseded home page", "seq", msg.Seq, "current", m.seq)
			return m, nil
		}
		m.Loading = false
		page := msg.Page
		m.Home = &page
		m.Grid.SetGrid(page.Grid)
		m.Grid.SetColumns(m.Columns)
		m.Search.SetSuggestions(page.Suggestions)
		metrics.PageRenders.WithLabelValues("tui", string(router.ViewHome)).Inc()
		return m, nil

	case DetailsLoadedMsg:
		if msg.Seq != m.seq {
			m.logger.Debug("dropping superseded details page", "seq", msg.Seq, "current", m.seq)
			return m, nil
		}
		m.Loading = false
		page := msg.Page
		m.Details = &page
		m.Similar.SetGrid(page.Similar)
		m.Similar.SetColumns(m.Columns)
		metrics.PageRenders.WithLabelValues("tui", string(router.ViewDetails)).Inc()
		return m, nil

	case SearchDebounceMsg:
		if msg.Seq != m.searchSeq {
			return m, nil
		}
		cmd := m.commitQuery(msg.Query)
		return m, cmd

	case StatusMsg:
		m.StatusMsg = msg.Message
		m.StatusIsErr = msg.IsError
		return m, ClearStatusCmd(3 * time.Second)

	case ClearStatusMsg:
		m.StatusMsg = ""
		m.StatusIsErr = false
		return m, nil
	}

	return m, nil
}

func (m Model) handleKeyMsg(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "ctrl+c" {
		return m, tea.Quit
	}

	if m.ShowHelp {
		if key.Matches(msg, m.Keys.Help, m.Keys.Escape, m.Keys.Quit) {
			m.ShowHelp = false
		}
		return m, nil
	}

	if m.Search.Focused() {
		return m.handleSearchKey(msg)
	}

	grid := m.activeGrid()
	if grid.IsFilterTyping() {
		switch msg.String() {
		case "esc":
			grid.ClearFilter()
		case "enter":
			grid.ConfirmFilter()
		default:
			cmd := grid.UpdateFilter(msg)
			return m, cmd
		}
		return m, nil
	}

	switch {
	case key.Matches(msg, m.Keys.Quit):
		return m, tea.Quit

	case key.Matches(msg, m.Keys.Help):
		m.ShowHelp = true
		return m, nil

	case key.Matches(msg, m.Keys.Search):
		if m.State.View != router.ViewHome {
			return m, nil
		}
		cmd := m.Search.Focus()
		return m, cmd

	case key.Matches(msg, m.Keys.NextCategory), key.Matches(msg, m.Keys.PrevCategory):
		if m.State.View != router.ViewHome {
			return m, nil
		}
		if key.Matches(msg, m.Keys.NextCategory) {
			m.Category = m.Category.Next()
		} else {
			m.Category = m.Category.Prev()
		}
		cmd := m.load()
		return m, cmd

	case key.Matches(msg, m.Keys.MoreColumns):
		m.setColumns(m.Columns + 1)
		return m, nil

	case key.Matches(msg, m.Keys.FewerColumns):
		m.setColumns(m.Columns - 1)
		return m, nil

	case key.Matches(msg, m.Keys.Up):
		grid.MoveUp()
	case key.Matches(msg, m.Keys.Down):
		grid.MoveDown()
	case key.Matches(msg, m.Keys.Left):
		grid.MoveLeft()
	case key.Matches(msg, m.Keys.Right):
		grid.MoveRight()

	case key.Matches(msg, m.Keys.Open):
		if cell, ok := grid.Selected(); ok {
			cmd := m.navigate(cell.Open)
			return m, cmd
		}

	case key.Matches(msg, m.Keys.Filter):
		if grid.Len() > 0 || grid.IsFiltering() {
			grid.ToggleFilter()
		}

	case key.Matches(msg, m.Keys.Refresh):
		status := StatusCmd("Refreshed", false)
		if m.Refresher != nil {
			if err := m.Refresher.Purge(); err != nil {
				m.logger.Warn("failed to purge response cache", "error", err)
				status = StatusCmd("Refresh failed to clear the cache", true)
			}
		}
		cmd := tea.Batch(m.load(), status)
		return m, cmd

	case key.Matches(msg, m.Keys.Back):
		cmd := m.handleBack()
		return m, cmd
	}

	return m, nil
}

// handleSearchKey routes keys while the search box has focus
func (m Model) handleSearchKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.Search.Blur()
		return m, nil
	case "up":
		m.Search.CursorUp()
		return m, nil
	case "down":
		m.Search.CursorDown()
		return m, nil
	case "enter":
		if sug, ok := m.Search.Selected(); ok {
			m.Search.Blur()
			_, loc := router.GotoDetails(sug.ID)
			cmd := m.navigate(loc)
			return m, cmd
		}
		m.searchSeq++
		m.Search.Blur()
		cmd := m.commitQuery(m.Search.Value())
		return m, cmd
	}

	cmd, changed := m.Search.Update(msg)
	if !changed {
		return m, cmd
	}
	m.searchSeq++
	return m, tea.Batch(cmd, DebounceSearchCmd(m.searchSeq, m.Search.Value(), SearchDebounce))
}

// commitQuery makes query the active search and reloads home when it changed
func (m *Model) commitQuery(query string) tea.Cmd {
	if strings.TrimSpace(query) == strings.TrimSpace(m.Query) {
		return nil
	}
	m.Query = query
	if m.State.View != router.ViewHome {
		return nil
	}
	return m.load()
}

// handleBack leaves the filter, then the details view, then the search
func (m *Model) handleBack() tea.Cmd {
	grid := m.activeGrid()
	if grid.IsFiltering() {
		grid.ClearFilter()
		return nil
	}

	if m.State.View == router.ViewDetails {
		_, loc := router.GotoHome()
		return m.navigate(loc)
	}

	if m.Query != "" || m.Search.Value() != "" {
		m.clearSearch()
		return m.load()
	}
	return nil
}

// navigate replaces the location and reloads the page it points at
func (m *Model) navigate(loc url.Values) tea.Cmd {
	st, err := router.Parse(loc)
	m.setLocation(st, err, loc)
	return m.load()
}

// setLocation applies a parsed location. Going home discards the search so
// the home view starts fresh.
func (m *Model) setLocation(st router.State, err error, loc url.Values) {
	m.NavWarning = ""
	if err != nil {
		m.logger.Warn("invalid location", "error", err)
		m.NavWarning = service.Warning(err)
		loc = nil
	}
	if loc == nil {
		loc = st.Query()
	}

	leavingDetails := m.State.View == router.ViewDetails && st.View == router.ViewHome
	m.Location = loc
	m.State = st
	m.Details = nil
	if leavingDetails {
		m.clearSearch()
	}
}

func (m *Model) clearSearch() {
	m.searchSeq++
	m.Query = ""
	m.Search.SetValue("")
	m.Search.SetSuggestions(nil)
	m.Search.Blur()
}

// load starts building the page for the current state
func (m *Model) load() tea.Cmd {
	m.seq++
	m.Loading = true
	return tea.Batch(m.loadCmd(), m.Spinner.Tick)
}

// loadCmd returns the page load command for the current state and sequence
func (m Model) loadCmd() tea.Cmd {
	if m.State.View == router.ViewDetails {
		return LoadDetailsCmd(m.Browse, m.seq, m.State, m.Columns)
	}
	return LoadHomeCmd(m.Browse, m.seq, m.Query, m.Category, m.Columns)
}

// activeGrid is the grid the cursor keys drive
func (m *Model) activeGrid() *components.Grid {
	if m.State.View == router.ViewDetails {
		return &m.Similar
	}
	return &m.Grid
}

func (m *Model) setColumns(n int) {
	m.Columns = service.ClampColumns(n)
	m.Grid.SetColumns(m.Columns)
	m.Similar.SetColumns(m.Columns)
}

// updateLayout recalculates component sizes after a resize
func (m *Model) updateLayout() {
	m.Search.SetSize(m.Width)
	m.Help.Width = m.Width
	gridHeight := m.Height - ChromeHeight - homeHeaderLines
	m.Grid.SetSize(m.Width, gridHeight)
	m.Similar.SetSize(m.Width, gridHeight)
}

// View renders the whole screen
func (m Model) View() string {
	if !m.Ready {
		return "Loading..."
	}

	if m.ShowHelp {
		return m.renderHelp()
	}

	footer := m.renderFooter()
	bodyHeight := m.Height - lipgloss.Height(footer)
	if bodyHeight < 1 {
		bodyHeight = 1
	}

	var body string
	if m.State.View == router.ViewDetails {
		body = m.renderDetails(bodyHeight)
	} else {
		body = m.renderHome(bodyHeight)
	}

	body = lipgloss.NewStyle().Height(bodyHeight).MaxHeight(bodyHeight).Render(body)
	return lipgloss.JoinVertical(lipgloss.Left, body, footer)
}

func (m Model) renderFooter() string {
	// Left side: spinner + status when loading or status message active
	var left string
	if m.Loading {
		left = m.Spinner.View() + " " + styles.DimStyle.Render("Loading...")
	} else if m.StatusMsg != "" {
		if m.StatusIsErr {
			left = styles.ErrorStyle.Render(m.StatusMsg)
		} else {
			left = styles.DimStyle.Render(m.StatusMsg)
		}
	}

	// Center: the shareable location
	center := styles.LocationStyle.Render(m.LocationString())

	// Right side: "? help" hint
	right := styles.AccentStyle.Render("?") + styles.DimStyle.Render(" help")

	leftWidth := lipgloss.Width(left)
	centerWidth := lipgloss.Width(center)
	rightWidth := lipgloss.Width(right)

	if leftWidth+centerWidth+rightWidth >= m.Width {
		gap := m.Width - centerWidth - rightWidth
		if gap < 0 {
			gap = 0
		}
		return center + strings.Repeat(" ", gap) + right
	}

	available := m.Width - leftWidth - rightWidth
	leftPad := (available - centerWidth) / 2
	rightPad := available - centerWidth - leftPad

	return left + strings.Repeat(" ", leftPad) + center + strings.Repeat(" ", rightPad) + right
}

// LocationString renders the current location for sharing with -open
func (m Model) LocationString() string {
	return "?" + m.Location.Encode()
}

// renderHelp renders the help screen
func (m Model) renderHelp() string {
	h := m.Help
	h.ShowAll = true
	content := styles.TitleStyle.Render("Keys") + "\n\n" + h.View(m.Keys) +
		"\n\n" + styles.DimStyle.Render("Start at a location with: marquee -open '"+m.LocationString()+"'")

	return lipgloss.Place(m.Width, m.Height,
		lipgloss.Center, lipgloss.Center,
		styles.ModalStyle.Render(content))
}
