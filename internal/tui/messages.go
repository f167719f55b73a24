package tui

import (
	"github.com/mmcdole/marquee/internal/service"
)

// Message types for the TUI

// HomeLoadedMsg carries a built home page. Seq identifies the load that
// produced it; results from superseded loads are dropped.
type HomeLoadedMsg struct {
	Seq  int
	Page service.HomePage
}

// DetailsLoadedMsg carries a built details page
type DetailsLoadedMsg struct {
	Seq  int
	Page service.DetailsPage
}

// SearchDebounceMsg fires once typing has paused
type SearchDebounceMsg struct {
	Seq   int
	Query string
}

// StatusMsg sets a temporary status message
type StatusMsg struct {
	Message string
	IsError bool
}

// ClearStatusMsg clears the status bar message
type ClearStatusMsg struct{}
