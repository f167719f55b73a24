package components

import (
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mmcdole/marquee/internal/domain"
	"github.com/mmcdole/marquee/internal/tui/styles"
)

// SearchBox is the title search input with its suggestion list
type SearchBox struct {
	input       textinput.Model
	suggestions []domain.Suggestion
	cursor      int // -1 when no suggestion is highlighted
	width       int
}

// NewSearchBox creates a new search box
func NewSearchBox() SearchBox {
	ti := textinput.New()
	ti.Placeholder = "Search movie title"
	ti.CharLimit = 100
	ti.Width = 40
	ti.Prompt = "/ "
	ti.PromptStyle = styles.AccentStyle
	ti.TextStyle = lipgloss.NewStyle().Foreground(styles.White)
	ti.PlaceholderStyle = styles.DimStyle

	return SearchBox{input: ti, cursor: -1}
}

// Focus focuses the input
func (s *SearchBox) Focus() tea.Cmd {
	return s.input.Focus()
}

// Blur removes focus from the input
func (s *SearchBox) Blur() {
	s.input.Blur()
	s.cursor = -1
}

// Focused reports whether the input has focus
func (s SearchBox) Focused() bool {
	return s.input.Focused()
}

// SetSize updates the component width
func (s *SearchBox) SetSize(width int) {
	s.width = width
	s.input.Width = width - 6
}

// Value returns the typed text
func (s SearchBox) Value() string {
	return s.input.Value()
}

// SetValue replaces the typed text
func (s *SearchBox) SetValue(v string) {
	s.input.SetValue(v)
}

// Update feeds a key to the input. It reports whether the text changed.
func (s *SearchBox) Update(msg tea.KeyMsg) (tea.Cmd, bool) {
	prev := s.input.Value()
	var cmd tea.Cmd
	s.input, cmd = s.input.Update(msg)
	changed := s.input.Value() != prev
	if changed {
		s.cursor = -1
	}
	return cmd, changed
}

// SetSuggestions replaces the suggestion list
func (s *SearchBox) SetSuggestions(suggestions []domain.Suggestion) {
	s.suggestions = suggestions
	s.cursor = -1
}

// Suggestions returns the current suggestion list
func (s SearchBox) Suggestions() []domain.Suggestion {
	return s.suggestions
}

// CursorDown highlights the next suggestion
func (s *SearchBox) CursorDown() {
	if s.cursor < len(s.suggestions)-1 {
		s.cursor++
	}
}

// CursorUp highlights the previous suggestion, or none above the first
func (s *SearchBox) CursorUp() {
	if s.cursor >= 0 {
		s.cursor--
	}
}

// Selected returns the highlighted suggestion
func (s SearchBox) Selected() (domain.Suggestion, bool) {
	if s.cursor < 0 || s.cursor >= len(s.suggestions) {
		return domain.Suggestion{}, false
	}
	return s.suggestions[s.cursor], true
}

// View renders the input and, while focused, the suggestions
func (s SearchBox) View() string {
	var b strings.Builder
	b.WriteString(s.input.View())

	if !s.input.Focused() || len(s.suggestions) == 0 {
		return b.String()
	}

	b.WriteString("\n")
	b.WriteString(styles.DimStyle.Render("  Suggestions (↑/↓, enter to open)"))
	for i, sug := range s.suggestions {
		b.WriteString("\n")
		label := styles.Truncate(sug.Label, s.width-4)
		if i == s.cursor {
			b.WriteString(styles.SelectedSuggestionStyle.Render(label))
		} else {
			b.WriteString(styles.SuggestionStyle.Render(label))
		}
	}
	return b.String()
}
