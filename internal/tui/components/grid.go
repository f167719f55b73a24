package components

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mmcdole/marquee/internal/domain"
	"github.com/mmcdole/marquee/internal/service"
	"github.com/mmcdole/marquee/internal/tui/styles"
)

// Layout constants for grid
const (
	// Border adds 1 char on each side (left+right for width, top+bottom for height)
	BorderWidth  = 2
	BorderHeight = 2

	// Padding inside the border (Padding(0,1) = 1 left + 1 right)
	HorizontalPadding = 2

	// Each cell shows a poster line and a title line
	CellContentLines = 2

	// Filter bar and scroll indicator
	FilterBarLines       = 1
	ScrollIndicatorLines = 1

	MinCellWidth = 8
)

// Grid is a 2-D card browser over a service.Grid with a local fuzzy filter
type Grid struct {
	cards   []domain.Card
	columns int
	layout  service.Grid

	// Selection
	row       int
	col       int
	rowOffset int

	// Dimensions
	width  int
	height int

	// Filter state
	filterActive bool
	filterInput  textinput.Model
	matches      []service.CardMatch
}

// NewGrid creates a new grid component
func NewGrid() Grid {
	ti := textinput.New()
	ti.Placeholder = "type to filter..."
	ti.Prompt = "f "
	ti.PromptStyle = styles.FilterPromptStyle
	ti.TextStyle = styles.FilterStyle

	return Grid{
		columns:     service.DefaultColumns,
		layout:      service.NewGrid(nil, service.DefaultColumns),
		filterInput: ti,
	}
}

// SetGrid replaces the content with a laid out grid and resets selection
func (g *Grid) SetGrid(layout service.Grid) {
	g.cards = layout.Cards()
	g.columns = layout.Columns
	g.clearFilter()
	g.layout = layout
	g.row, g.col, g.rowOffset = 0, 0, 0
}

// SetColumns re-lays the grid, keeping the selected card under the cursor
func (g *Grid) SetColumns(columns int) {
	selected := g.cursorIndex()
	g.columns = service.ClampColumns(columns)
	g.relayout()
	g.setCursorIndex(selected)
}

// Columns returns the current column count
func (g Grid) Columns() int {
	return g.columns
}

// SetSize updates the component dimensions
func (g *Grid) SetSize(width, height int) {
	g.width = width
	g.height = height
	g.filterInput.Width = width - 4
	g.ensureVisible()
}

// Layout returns the grid currently displayed (filtered when a filter is active)
func (g Grid) Layout() service.Grid {
	return g.layout
}

// Len returns the number of visible cells
func (g Grid) Len() int {
	return g.layout.Len()
}

// Selected returns the cell under the cursor
func (g Grid) Selected() (service.Cell, bool) {
	return g.layout.At(g.row, g.col)
}

// Cursor returns the cursor position as row, col
func (g Grid) Cursor() (int, int) {
	return g.row, g.col
}

// MoveUp moves the cursor one row up
func (g *Grid) MoveUp() {
	if g.row > 0 {
		g.row--
		g.clampCol()
		g.ensureVisible()
	}
}

// MoveDown moves the cursor one row down, landing on the last cell of a short row
func (g *Grid) MoveDown() {
	if g.row < len(g.layout.Rows)-1 {
		g.row++
		g.clampCol()
		g.ensureVisible()
	}
}

// MoveLeft moves the cursor one cell left
func (g *Grid) MoveLeft() {
	if g.col > 0 {
		g.col--
	}
}

// MoveRight moves the cursor one cell right
func (g *Grid) MoveRight() {
	if g.row < len(g.layout.Rows) && g.col < len(g.layout.Rows[g.row])-1 {
		g.col++
	}
}

func (g *Grid) clampCol() {
	if g.row >= len(g.layout.Rows) {
		g.col = 0
		return
	}
	if last := len(g.layout.Rows[g.row]) - 1; g.col > last {
		g.col = last
	}
}

func (g Grid) cursorIndex() int {
	return g.row*g.layout.Columns + g.col
}

func (g *Grid) setCursorIndex(i int) {
	n := g.layout.Len()
	if n == 0 {
		g.row, g.col = 0, 0
		return
	}
	if i >= n {
		i = n - 1
	}
	if i < 0 {
		i = 0
	}
	g.row = i / g.layout.Columns
	g.col = i % g.layout.Columns
	g.ensureVisible()
}

// visibleRows is the number of cell rows that fit in the height
func (g Grid) visibleRows() int {
	avail := g.height - ScrollIndicatorLines
	if g.filterActive {
		avail -= FilterBarLines
	}
	rows := avail / (CellContentLines + BorderHeight)
	if rows < 1 {
		rows = 1
	}
	return rows
}

// ensureVisible ensures the cursor row is visible
func (g *Grid) ensureVisible() {
	visible := g.visibleRows()
	if g.row < g.rowOffset {
		g.rowOffset = g.row
	}
	if g.row >= g.rowOffset+visible {
		g.rowOffset = g.row - visible + 1
	}
}

// ToggleFilter activates the filter input
func (g *Grid) ToggleFilter() {
	g.filterActive = true
	g.filterInput.Focus()
	g.ensureVisible()
}

// IsFiltering returns true if filter mode is active
func (g Grid) IsFiltering() bool {
	return g.filterActive
}

// IsFilterTyping returns true if filter is active AND input is focused
func (g Grid) IsFilterTyping() bool {
	return g.filterActive && g.filterInput.Focused()
}

// ConfirmFilter stops typing but keeps the filtered cards
func (g *Grid) ConfirmFilter() {
	g.filterInput.Blur()
}

// ClearFilter deactivates the filter and shows all cards
func (g *Grid) ClearFilter() {
	selected, ok := g.Selected()
	g.clearFilter()
	g.relayout()
	if !ok {
		return
	}
	for i, c := range g.cards {
		if c.ID == selected.Card.ID {
			g.setCursorIndex(i)
			return
		}
	}
}

func (g *Grid) clearFilter() {
	g.filterActive = false
	g.matches = nil
	g.filterInput.SetValue("")
	g.filterInput.Blur()
}

// UpdateFilter feeds a key to the filter input and re-applies the filter
func (g *Grid) UpdateFilter(msg tea.KeyMsg) tea.Cmd {
	prev := g.filterInput.Value()
	var cmd tea.Cmd
	g.filterInput, cmd = g.filterInput.Update(msg)
	if g.filterInput.Value() != prev {
		g.applyFilter()
	}
	return cmd
}

// FilterQuery returns the current filter text
func (g Grid) FilterQuery() string {
	return g.filterInput.Value()
}

func (g *Grid) applyFilter() {
	query := g.FilterQuery()
	if strings.TrimSpace(query) == "" {
		g.matches = nil
	} else {
		g.matches = service.FilterCards(g.cards, query)
	}
	g.relayout()
	g.row, g.col, g.rowOffset = 0, 0, 0
}

func (g *Grid) relayout() {
	if g.matches != nil {
		g.layout = service.NewGrid(service.MatchedCards(g.matches), g.columns)
		return
	}
	g.layout = service.NewGrid(g.cards, g.columns)
}

// matchIndexes returns highlight positions for the card at index i of the filtered list
func (g Grid) matchIndexes(i int) []int {
	if g.matches == nil || i >= len(g.matches) {
		return nil
	}
	return g.matches[i].MatchedIndexes
}

// cellWidth is the interior width of one cell
func (g Grid) cellWidth() int {
	w := g.width/g.layout.Columns - BorderWidth - HorizontalPadding
	if w < MinCellWidth {
		w = MinCellWidth
	}
	return w
}

// View renders the grid
func (g Grid) View(focused bool) string {
	var b strings.Builder

	if g.filterActive {
		b.WriteString(g.filterInput.View())
		b.WriteString("\n")
	}

	if g.layout.Empty {
		msg := g.layout.Message
		if g.filterActive && len(g.cards) > 0 {
			msg = fmt.Sprintf("No titles match %q", g.FilterQuery())
		}
		b.WriteString(styles.InfoStyle.Render(msg))
		return b.String()
	}

	width := g.cellWidth()
	visible := g.visibleRows()
	end := g.rowOffset + visible
	if end > len(g.layout.Rows) {
		end = len(g.layout.Rows)
	}

	rendered := make([]string, 0, end-g.rowOffset)
	for r := g.rowOffset; r < end; r++ {
		cells := make([]string, 0, len(g.layout.Rows[r]))
		for c, cell := range g.layout.Rows[r] {
			selected := focused && r == g.row && c == g.col
			cells = append(cells, g.renderCell(cell, r*g.layout.Columns+c, selected, width))
		}
		rendered = append(rendered, lipgloss.JoinHorizontal(lipgloss.Top, cells...))
	}
	b.WriteString(lipgloss.JoinVertical(lipgloss.Left, rendered...))

	if hidden := len(g.layout.Rows) - end; hidden > 0 || g.rowOffset > 0 {
		b.WriteString("\n")
		b.WriteString(styles.DimStyle.Render(fmt.Sprintf("row %d/%d", g.row+1, len(g.layout.Rows))))
	}
	return b.String()
}

func (g Grid) renderCell(cell service.Cell, pos int, selected bool, width int) string {
	poster := styles.DimStyle.Render(styles.Pad(service.PlaceholderGlyph+" No poster", width))
	if cell.HasPoster {
		poster = styles.AccentStyle.Render(styles.Pad("▣ Poster", width))
	}

	titleStyle := styles.SubtitleStyle
	if selected {
		titleStyle = styles.TitleStyle
	}
	title := styles.Truncate(cell.Title, width)
	titleLine := styles.Highlight(title, g.matchIndexes(pos), titleStyle)
	if pad := width - lipgloss.Width(title); pad > 0 {
		titleLine += strings.Repeat(" ", pad)
	}

	style := styles.GridCellStyle
	if selected {
		style = styles.GridCellSelectedStyle
	}
	return style.Width(width + HorizontalPadding).Render(poster + "\n" + titleLine)
}
