package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"unicode/utf8"

	"github.com/mmcdole/marquee/internal/domain"
	"github.com/mmcdole/marquee/internal/metrics"
	"github.com/mmcdole/marquee/internal/normalize"
	"github.com/mmcdole/marquee/internal/router"
)

const (
	defaultHomeLimit = 24

	// MinQueryLength is the shortest query that triggers a search
	MinQueryLength = 2
)

// Display strings shared by both surfaces
const (
	HintShortQuery      = "Type at least 2 characters"
	WarnHomeUnavailable = "Backend sleeping. Try refresh."
	WarnNoResponse      = "No response from backend."
	WarnNoSelection     = "No movie selected"
	WarnUnreachable     = "Backend unreachable (cold start or sleeping)"
	WarnInvalidTarget   = "Invalid movie link. Showing home instead."
	NoteFallback        = "No exact title matches; showing all results"
	SimilarHeading      = "Similar Movies"
)

// HomePage is everything needed to render the home view
type HomePage struct {
	Query    string
	Category domain.Category

	// Searching is set when Query triggered a search rather than the feed
	Searching bool

	Hint    string // input guidance, no fetch was made
	Warning string // the section failed; Grid is not shown
	Notice  string // informational line above the grid

	Suggestions []domain.Suggestion
	Grid        Grid
}

// ShowGrid reports whether the results grid should be rendered
func (p HomePage) ShowGrid() bool {
	return p.Hint == "" && p.Warning == ""
}

// DetailsPage is everything needed to render the details view
type DetailsPage struct {
	State   router.State
	Warning string

	Movie    domain.Movie
	HasMovie bool

	// Similar is only meaningful when HasSimilar is set
	Similar    Grid
	HasSimilar bool
}

// ReleaseYear returns the year part of the movie's release date
func (p DetailsPage) ReleaseYear() string {
	return normalize.ReleaseYear(p.Movie.ReleaseDate)
}

// BrowseService builds pages from catalog reads. It holds no navigation
// state; callers pass the parsed location in on every call.
type BrowseService struct {
	catalog     domain.Catalog
	logger      *slog.Logger
	homeLimit   int
	searchLimit int
}

// BrowseOption configures a BrowseService
type BrowseOption func(*BrowseService)

// WithHomeLimit sets how many cards the home feed asks for
func WithHomeLimit(n int) BrowseOption {
	return func(s *BrowseService) {
		if n > 0 {
			s.homeLimit = n
		}
	}
}

// WithSearchLimit sets how many search cards are shown
func WithSearchLimit(n int) BrowseOption {
	return func(s *BrowseService) {
		if n > 0 {
			s.searchLimit = n
		}
	}
}

// NewBrowseService creates a new browse service
func NewBrowseService(catalog domain.Catalog, logger *slog.Logger, opts ...BrowseOption) *BrowseService {
	if logger == nil {
		logger = slog.Default()
	}
	s := &BrowseService{
		catalog:     catalog,
		logger:      logger,
		homeLimit:   defaultHomeLimit,
		searchLimit: normalize.DefaultSearchLimit,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Home builds the home view. An empty query shows the category feed, a
// query shorter than MinQueryLength only shows a hint, and anything longer
// searches.
func (s *BrowseService) Home(ctx context.Context, query string, category domain.Category, columns int) HomePage {
	query = strings.TrimSpace(query)
	page := HomePage{Query: query, Category: category}

	switch {
	case query == "":
		s.homeFeed(ctx, &page, columns)
	case utf8.RuneCountInString(query) < MinQueryLength:
		page.Hint = HintShortQuery
	default:
		page.Searching = true
		s.search(ctx, &page, columns)
	}

	if page.Warning != "" {
		metrics.PageWarnings.WithLabelValues(string(router.ViewHome)).Inc()
	}
	return page
}

func (s *BrowseService) homeFeed(ctx context.Context, page *HomePage, columns int) {
	raw, err := s.catalog.Home(ctx, page.Category, s.homeLimit)
	if err != nil {
		s.logger.Warn("home feed failed", "category", page.Category, "error", err)
		page.Warning = WarnHomeUnavailable
		return
	}

	cards := normalize.FromHomeFeed(raw)
	if len(cards) == 0 {
		s.logger.Warn("home feed empty", "category", page.Category)
		page.Warning = WarnHomeUnavailable
		return
	}

	page.Grid = NewGrid(cards, columns)
}

func (s *BrowseService) search(ctx context.Context, page *HomePage, columns int) {
	raw, err := s.catalog.Search(ctx, page.Query)
	if err != nil {
		s.logger.Warn("search failed", "query", page.Query, "error", err)
		page.Warning = Warning(err)
		return
	}
	if normalize.IsEmpty(raw) {
		err := fmt.Errorf("search %q: %w", page.Query, domain.ErrEmptyResponse)
		s.logger.Warn("search failed", "query", page.Query, "error", err)
		page.Warning = Warning(err)
		return
	}

	res := normalize.FromSearchResults(raw, page.Query, s.searchLimit)
	s.logger.Debug("search complete", "query", page.Query, "total", res.Total, "cards", len(res.Cards), "fallback", res.Fallback)

	switch {
	case res.Total == 0:
		page.Notice = fmt.Sprintf("No movies found for %q", page.Query)
	case res.Fallback:
		page.Notice = NoteFallback
	}

	page.Suggestions = res.Suggestions
	page.Grid = NewGrid(res.Cards, columns)
}

// Details builds the details view for state. A failed movie fetch ends the
// page with a warning; a failed recommendation fetch only hides that section.
func (s *BrowseService) Details(ctx context.Context, state router.State, columns int) DetailsPage {
	page := DetailsPage{State: state}
	defer func() {
		if page.Warning != "" {
			metrics.PageWarnings.WithLabelValues(string(router.ViewDetails)).Inc()
		}
	}()

	if !state.HasSelection() {
		page.Warning = WarnNoSelection
		return page
	}

	raw, err := s.catalog.Movie(ctx, state.SelectedID)
	if err != nil {
		s.logger.Warn("movie fetch failed", "id", state.SelectedID, "error", err)
		page.Warning = Warning(err)
		return page
	}

	movie, ok := normalize.DecodeMovie(raw)
	if !ok {
		err := fmt.Errorf("movie %d: %w", state.SelectedID, domain.ErrEmptyResponse)
		s.logger.Warn("movie fetch failed", "id", state.SelectedID, "error", err)
		page.Warning = Warning(err)
		return page
	}
	if movie.ID == 0 {
		movie.ID = state.SelectedID
	}
	page.Movie = movie
	page.HasMovie = true

	if movie.Title == "" {
		s.logger.Debug("movie has no title, skipping recommendations", "id", movie.ID)
		return page
	}

	bundle, err := s.catalog.Recommendations(ctx, movie.Title)
	if err != nil {
		s.logger.Warn("recommendations failed", "title", movie.Title, "error", err)
		return page
	}
	if normalize.IsEmpty(bundle) {
		return page
	}

	page.Similar = NewGrid(normalize.FromRecommendationBundle(bundle), columns)
	page.HasSimilar = true
	return page
}

// Warning maps an error to the string shown to the user
func Warning(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, domain.ErrInvalidTarget):
		return WarnInvalidTarget
	case domain.StatusCode(err) != 0:
		return fmt.Sprintf("HTTP %d", domain.StatusCode(err))
	case errors.Is(err, domain.ErrBackendUnreachable):
		return WarnUnreachable
	case errors.Is(err, domain.ErrEmptyResponse):
		return WarnNoResponse
	case errors.Is(err, context.DeadlineExceeded):
		return WarnUnreachable
	case errors.Is(err, context.Canceled):
		return "Request cancelled"
	default:
		return err.Error()
	}
}
