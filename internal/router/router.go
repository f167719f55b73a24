// Package router holds the navigation state of the browsing UI.
//
// The location (URL query parameters) is the only source of truth: the state
// is rebuilt from it on every render and every transition produces a fresh
// location. Nothing here performs I/O.
package router

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/mmcdole/marquee/internal/domain"
)

// View is the page being shown
type View string

const (
	ViewHome    View = "home"
	ViewDetails View = "details"
)

// Query parameter names
const (
	ParamView = "view"
	ParamID   = "id"
)

// State is the navigation state derived from a location
type State struct {
	View       View
	SelectedID int // 0 means no selection
}

// Initial returns the state of an empty location
func Initial() State {
	return State{View: ViewHome}
}

// HasSelection reports whether a movie is selected
func (s State) HasSelection() bool {
	return s.SelectedID > 0
}

// Query encodes the state as URL parameters
func (s State) Query() url.Values {
	q := url.Values{ParamView: {string(s.view())}}
	if s.View == ViewDetails && s.HasSelection() {
		q.Set(ParamID, strconv.Itoa(s.SelectedID))
	}
	return q
}

// Location renders the shareable form of the state, e.g. "?id=603&view=details"
func (s State) Location() string {
	return "?" + s.Query().Encode()
}

func (s State) view() View {
	if s.View == ViewDetails {
		return ViewDetails
	}
	return ViewHome
}

// Parse rebuilds the state from URL parameters.
//
// A recognized view parameter sets the view; anything else is ignored. A
// positive integer id selects that movie and forces the details view. An id
// that is present but not a positive integer yields the home state together
// with domain.ErrInvalidTarget so the caller can tell the user.
func Parse(q url.Values) (State, error) {
	st := Initial()

	switch View(q.Get(ParamView)) {
	case ViewHome:
		st.View = ViewHome
	case ViewDetails:
		st.View = ViewDetails
	}

	raw := strings.TrimSpace(q.Get(ParamID))
	if raw == "" {
		return st, nil
	}

	id, err := strconv.Atoi(raw)
	if err != nil || id <= 0 {
		return Initial(), fmt.Errorf("%w: id %q", domain.ErrInvalidTarget, raw)
	}

	st.View = ViewDetails
	st.SelectedID = id
	return st, nil
}

// ParseLocation parses a location string such as "?view=details&id=603".
// The leading "?" is optional and a full URL is accepted too.
func ParseLocation(loc string) (State, error) {
	loc = strings.TrimSpace(loc)
	if i := strings.IndexByte(loc, '?'); i >= 0 {
		loc = loc[i+1:]
	}
	q, err := url.ParseQuery(loc)
	if err != nil {
		return Initial(), fmt.Errorf("%w: %v", domain.ErrInvalidTarget, err)
	}
	return Parse(q)
}

// GotoHome returns the home state and its location, which carries the view only
func GotoHome() (State, url.Values) {
	st := Initial()
	return st, st.Query()
}

// GotoDetails returns the details state for id and its location
func GotoDetails(id int) (State, url.Values) {
	st := State{View: ViewDetails, SelectedID: id}
	return st, st.Query()
}
