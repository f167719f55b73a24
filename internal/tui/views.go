package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mmcdole/marquee/internal/domain"
	"github.com/mmcdole/marquee/internal/service"
	"github.com/mmcdole/marquee/internal/tui/styles"
)

// Lines above the home grid: title, tabs, search box, status line
const homeHeaderLines = 5

// appTitle is shown at the top of every page
const appTitle = "🎬 Movie Recommender"

// renderHome renders the home view: category tabs, search box and grid
func (m Model) renderHome(height int) string {
	var sections []string

	sections = append(sections, styles.TitleStyle.Render(appTitle))
	sections = append(sections, renderCategoryTabs(m.Category))
	sections = append(sections, m.Search.View())

	if m.NavWarning != "" {
		sections = append(sections, styles.WarningStyle.Render(m.NavWarning))
	}

	page := m.Home
	switch {
	case page == nil && m.Loading:
		sections = append(sections, styles.DimStyle.Render("Fetching movies..."))
	case page == nil:
	case page.Hint != "":
		sections = append(sections, styles.InfoStyle.Render(page.Hint))
	case page.Warning != "":
		sections = append(sections, styles.WarningStyle.Render(page.Warning))
	default:
		sections = append(sections, m.homeCaption(page))
		used := lipgloss.Height(strings.Join(sections, "\n"))
		grid := m.Grid
		grid.SetSize(m.Width, height-used)
		sections = append(sections, grid.View(!m.Search.Focused()))
	}

	return strings.Join(sections, "\n")
}

// homeCaption describes what the grid below is showing
func (m Model) homeCaption(page *service.HomePage) string {
	if page.Notice != "" {
		return styles.InfoStyle.Render(page.Notice)
	}
	if page.Searching {
		return styles.DimStyle.Render(fmt.Sprintf("Results for %q", page.Query))
	}
	return styles.DimStyle.Render(page.Category.Label())
}

// renderCategoryTabs renders the home categories with the active one highlighted
func renderCategoryTabs(active domain.Category) string {
	tabs := make([]string, 0, len(domain.Categories))
	for _, c := range domain.Categories {
		if c == active {
			tabs = append(tabs, styles.ActiveTabStyle.Render(c.Label()))
		} else {
			tabs = append(tabs, styles.TabStyle.Render(c.Label()))
		}
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, tabs...)
}

// renderDetails renders the details view: movie info and similar movies
func (m Model) renderDetails(height int) string {
	var sections []string

	sections = append(sections, styles.DimStyle.Render("← esc back"))

	if m.NavWarning != "" {
		sections = append(sections, styles.WarningStyle.Render(m.NavWarning))
	}

	page := m.Details
	if page == nil {
		sections = append(sections, styles.DimStyle.Render("Fetching movie..."))
		return strings.Join(sections, "\n")
	}

	if page.Warning != "" {
		sections = append(sections, styles.WarningStyle.Render(page.Warning))
		return strings.Join(sections, "\n")
	}

	sections = append(sections, renderMovie(page.Movie, m.Width))

	if page.HasSimilar {
		sections = append(sections, styles.HeadingStyle.Render(service.SimilarHeading))
		used := lipgloss.Height(strings.Join(sections, "\n"))
		grid := m.Similar
		grid.SetSize(m.Width, height-used)
		sections = append(sections, grid.View(true))
	}

	return strings.Join(sections, "\n")
}

// renderMovie renders title, release date, overview and poster URL
func renderMovie(movie domain.Movie, width int) string {
	var b strings.Builder

	b.WriteString(styles.TitleStyle.Render(movie.DisplayTitle()))
	if movie.ReleaseDate != "" {
		b.WriteString("\n")
		b.WriteString(styles.SubtitleStyle.Render(movie.ReleaseDate))
	}
	if movie.Overview != "" {
		b.WriteString("\n\n")
		b.WriteString(wordWrap(movie.Overview, width-4))
	}
	b.WriteString("\n\n")
	if movie.PosterURL != "" {
		b.WriteString(styles.DimStyle.Render("Poster: " + movie.PosterURL))
	} else {
		b.WriteString(styles.DimStyle.Render(service.PlaceholderGlyph + " No poster"))
	}
	return b.String()
}

// wordWrap wraps text to the specified width
func wordWrap(text string, width int) string {
	if width <= 0 {
		return text
	}

	var result strings.Builder
	words := strings.Fields(text)
	lineLen := 0

	for i, word := range words {
		wordLen := lipgloss.Width(word)

		if lineLen+wordLen+1 > width && lineLen > 0 {
			result.WriteString("\n")
			lineLen = 0
		}

		if i > 0 && lineLen > 0 {
			result.WriteString(" ")
			lineLen++
		}

		result.WriteString(word)
		lineLen += wordLen
	}

	return result.String()
}
