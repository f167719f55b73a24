package tui

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/mmcdole/marquee/internal/domain"
	"github.com/mmcdole/marquee/internal/router"
	"github.com/mmcdole/marquee/internal/service"
)

// Command factories for async operations

// loadTimeout bounds a whole page load (up to two backend calls)
const loadTimeout = 45 * time.Second

// LoadHomeCmd builds the home page
func LoadHomeCmd(svc *service.BrowseService, seq int, query string, category domain.Category, columns int) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), loadTimeout)
		defer cancel()

		return HomeLoadedMsg{Seq: seq, Page: svc.Home(ctx, query, category, columns)}
	}
}

// LoadDetailsCmd builds the details page for state
func LoadDetailsCmd(svc *service.BrowseService, seq int, state router.State, columns int) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), loadTimeout)
		defer cancel()

		return DetailsLoadedMsg{Seq: seq, Page: svc.Details(ctx, state, columns)}
	}
}

// DebounceSearchCmd waits d before reporting the query
func DebounceSearchCmd(seq int, query string, d time.Duration) tea.Cmd {
	return tea.Tick(d, func(time.Time) tea.Msg {
		return SearchDebounceMsg{Seq: seq, Query: query}
	})
}

// StatusCmd reports a temporary status message
func StatusCmd(message string, isError bool) tea.Cmd {
	return func() tea.Msg {
		return StatusMsg{Message: message, IsError: isError}
	}
}

// ClearStatusCmd clears the status message after a delay
func ClearStatusCmd(d time.Duration) tea.Cmd {
	return tea.Tick(d, func(time.Time) tea.Msg {
		return ClearStatusMsg{}
	})
}
