package styles

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Color palette
var (
	MarqueeGold = lipgloss.Color("#F5C518")
	SlateDark   = lipgloss.Color("#1F2937")
	SlateLight  = lipgloss.Color("#374151")
	DimGray     = lipgloss.Color("#6B7280")
	LightGray   = lipgloss.Color("#9CA3AF")
	White       = lipgloss.Color("#F9FAFB")
	Amber       = lipgloss.Color("#F59E0B")
	Red         = lipgloss.Color("#EF4444")
)

// Text styles
var (
	TitleStyle = lipgloss.NewStyle().
			Foreground(White).
			Bold(true)

	SubtitleStyle = lipgloss.NewStyle().
			Foreground(LightGray)

	DimStyle = lipgloss.NewStyle().
			Foreground(DimGray)

	AccentStyle = lipgloss.NewStyle().
			Foreground(MarqueeGold)

	ErrorStyle = lipgloss.NewStyle().
			Foreground(Red)

	WarningStyle = lipgloss.NewStyle().
			Foreground(Amber)

	InfoStyle = lipgloss.NewStyle().
			Foreground(LightGray).
			Italic(true)

	HeadingStyle = lipgloss.NewStyle().
			Foreground(MarqueeGold).
			Bold(true).
			MarginTop(1)
)

// Category tab styles
var (
	TabStyle = lipgloss.NewStyle().
			Foreground(LightGray).
			Padding(0, 1)

	ActiveTabStyle = lipgloss.NewStyle().
			Foreground(SlateDark).
			Background(MarqueeGold).
			Bold(true).
			Padding(0, 1)
)

// Suggestion list styles
var (
	SuggestionStyle = lipgloss.NewStyle().
			Foreground(LightGray).
			PaddingLeft(2)

	SelectedSuggestionStyle = lipgloss.NewStyle().
				Foreground(White).
				Background(SlateLight).
				PaddingLeft(2)
)

// Grid cell styles. Width is set per render from the column count.
var (
	GridCellStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(DimGray).
			Padding(0, 1)

	GridCellSelectedStyle = lipgloss.NewStyle().
				Border(lipgloss.RoundedBorder()).
				BorderForeground(MarqueeGold).
				Padding(0, 1)
)

// Spinner style
var (
	SpinnerStyle = lipgloss.NewStyle().
		Foreground(MarqueeGold)
)

// Filter and search input styles
var (
	FilterStyle = lipgloss.NewStyle().
			Foreground(MarqueeGold)

	FilterPromptStyle = lipgloss.NewStyle().
				Foreground(MarqueeGold).
				Bold(true)

	MatchHighlightStyle = lipgloss.NewStyle().
				Foreground(MarqueeGold).
				Bold(true)
)

// Modal styles
var (
	ModalStyle = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(MarqueeGold).
		Padding(1, 2)
)

// Footer styles
var (
	LocationStyle = lipgloss.NewStyle().
		Foreground(LightGray).
		Background(SlateDark).
		Padding(0, 1)
)

// Helper functions

// Truncate truncates a string to the given width in runes with an ellipsis
func Truncate(s string, width int) string {
	if width <= 0 {
		return ""
	}
	r := []rune(s)
	if len(r) <= width {
		return s
	}
	if width <= 1 {
		return string(r[:width])
	}
	return string(r[:width-1]) + "…"
}

// Pad pads a string with spaces to the given width in runes
func Pad(s string, width int) string {
	n := len([]rune(s))
	if n >= width {
		return Truncate(s, width)
	}
	return s + strings.Repeat(" ", width-n)
}

// Highlight renders the runes of s at the given rune positions with the
// match style
func Highlight(s string, indexes []int, base lipgloss.Style) string {
	if len(indexes) == 0 {
		return base.Render(s)
	}
	marked := make(map[int]bool, len(indexes))
	for _, i := range indexes {
		marked[i] = true
	}

	var b strings.Builder
	for i, r := range []rune(s) {
		if marked[i] {
			b.WriteString(MatchHighlightStyle.Render(string(r)))
		} else {
			b.WriteString(base.Render(string(r)))
		}
	}
	return b.String()
}
