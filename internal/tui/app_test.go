package tui

import (
	"context"
	"errors"
	"net/url"
	"strings"
	"sync"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/mmcdole/marquee/internal/domain"
	"github.com/mmcdole/marquee/internal/router"
	"github.com/mmcdole/marquee/internal/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeCatalog struct {
	mu         sync.Mutex
	searches   []string
	categories []domain.Category
	movieCalls []int
	homeBody   string
	searchBody string
	movieBody  string
	bundleBody string
}

func (f *fakeCatalog) Search(_ context.Context, q string) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.searches = append(f.searches, q)
	return []byte(f.searchBody), nil
}

func (f *fakeCatalog) Home(_ context.Context, c domain.Category, _ int) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.categories = append(f.categories, c)
	return []byte(f.homeBody), nil
}

func (f *fakeCatalog) Movie(_ context.Context, id int) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.movieCalls = append(f.movieCalls, id)
	return []byte(f.movieBody), nil
}

func (f *fakeCatalog) Recommendations(_ context.Context, _ string) ([]byte, error) {
	return []byte(f.bundleBody), nil
}

type countingRefresher struct {
	purges int
	err    error
}

func (r *countingRefresher) Purge() error {
	r.purges++
	return r.err
}

func newFake() *fakeCatalog {
	return &fakeCatalog{
		homeBody: `[
			{"tmdb_id": 603, "title": "The Matrix"},
			{"tmdb_id": 155, "title": "The Dark Knight"},
			{"tmdb_id": 27205, "title": "Inception"},
			{"tmdb_id": 680, "title": "Pulp Fiction"},
			{"tmdb_id": 13, "title": "Forrest Gump"}
		]`,
		searchBody: `{"results":[
			{"id": 155, "title": "The Dark Knight", "release_date": "2008-07-16"},
			{"id": 49026, "title": "The Dark Knight Rises", "release_date": "2012-07-16"}
		]}`,
		movieBody:  `{"tmdb_id": 603, "title": "The Matrix", "release_date": "1999-03-30", "overview": "Neo."}`,
		bundleBody: `{"tfidf_recommendations":[{"tmdb":{"tmdb_id":604,"title":"The Matrix Reloaded"}}]}`,
	}
}

func newTestModel(t *testing.T, cat *fakeCatalog, opts Options) Model {
	t.Helper()
	opts.Columns = 4
	m := NewModel(service.NewBrowseService(cat, nil), opts)
	updated, _ := m.Update(tea.WindowSizeMsg{Width: 120, Height: 40})
	return updated.(Model)
}

// runLoad executes the pending page load synchronously and applies its result
func runLoad(t *testing.T, m Model) Model {
	t.Helper()
	msg := m.loadCmd()()
	updated, _ := m.Update(msg)
	return updated.(Model)
}

func press(t *testing.T, m Model, keys ...string) Model {
	t.Helper()
	for _, k := range keys {
		var msg tea.KeyMsg
		switch k {
		case "enter":
			msg = tea.KeyMsg{Type: tea.KeyEnter}
		case "esc":
			msg = tea.KeyMsg{Type: tea.KeyEsc}
		case "tab":
			msg = tea.KeyMsg{Type: tea.KeyTab}
		case "shift+tab":
			msg = tea.KeyMsg{Type: tea.KeyShiftTab}
		case "up":
			msg = tea.KeyMsg{Type: tea.KeyUp}
		case "down":
			msg = tea.KeyMsg{Type: tea.KeyDown}
		default:
			msg = tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)}
		}
		updated, _ := m.Update(msg)
		m = updated.(Model)
	}
	return m
}

func TestModel_InitialHome(t *testing.T) {
	cat := newFake()
	m := runLoad(t, newTestModel(t, cat, Options{}))

	assert.False(t, m.Loading)
	assert.Equal(t, router.Initial(), m.State)
	require.NotNil(t, m.Home)
	assert.Equal(t, 5, m.Grid.Len())
	assert.Equal(t, []domain.Category{domain.CategoryTrending}, cat.categories)
	assert.Equal(t, "?view=home", m.LocationString())
	assert.Contains(t, m.View(), "The Matrix")
}

func TestModel_OpenCellNavigatesToDetails(t *testing.T) {
	cat := newFake()
	m := runLoad(t, newTestModel(t, cat, Options{}))

	m = press(t, m, "enter")
	assert.Equal(t, router.State{View: router.ViewDetails, SelectedID: 603}, m.State)
	assert.Equal(t, url.Values{"view": {"details"}, "id": {"603"}}, m.Location)
	assert.True(t, m.Loading)

	m = runLoad(t, m)
	require.NotNil(t, m.Details)
	assert.Equal(t, "The Matrix", m.Details.Movie.Title)
	assert.Equal(t, 1, m.Similar.Len())
	assert.Equal(t, []int{603}, cat.movieCalls)

	view := m.View()
	assert.Contains(t, view, "Similar Movies")
	assert.Contains(t, view, "?id=603&view=details")
}

func TestModel_GridCursorOpensSelectedCard(t *testing.T) {
	m := runLoad(t, newTestModel(t, newFake(), Options{}))

	// 4 columns: second row holds the fifth card
	m = press(t, m, "l", "l", "j")
	row, col := m.Grid.Cursor()
	assert.Equal(t, 1, row)
	assert.Equal(t, 0, col, "cursor lands on the last cell of a short row")

	m = press(t, m, "enter")
	assert.Equal(t, 13, m.State.SelectedID)
}

func TestModel_BackReturnsHome(t *testing.T) {
	m := newTestModel(t, newFake(), Options{Location: "?view=details&id=603"})
	assert.Equal(t, 603, m.State.SelectedID)
	m = runLoad(t, m)

	m = press(t, m, "b")
	assert.Equal(t, router.Initial(), m.State)
	assert.Equal(t, url.Values{"view": {"home"}}, m.Location)
	assert.Empty(t, m.Location.Get("id"))
}

func TestModel_InvalidLocationFallsBackHome(t *testing.T) {
	m := newTestModel(t, newFake(), Options{Location: "?view=details&id=abc"})
	assert.Equal(t, router.Initial(), m.State)
	assert.Equal(t, service.WarnInvalidTarget, m.NavWarning)
	assert.Equal(t, "?view=home", m.LocationString())

	// Start-up links behave like any other bad link: home plus the warning
	for _, loc := range []string{"?view=details&id=0", "?view=details&id=-3", "?id=abc"} {
		m := runLoad(t, newTestModel(t, newFake(), Options{Location: loc}))
		assert.Equal(t, router.ViewHome, m.State.View, loc)
		assert.Contains(t, m.View(), service.WarnInvalidTarget, loc)
	}
}

func TestModel_StaleLoadIsDropped(t *testing.T) {
	m := newTestModel(t, newFake(), Options{})
	stale := m.loadCmd()()

	m = press(t, m, "tab")
	assert.Equal(t, domain.CategoryPopular, m.Category)

	updated, _ := m.Update(stale)
	m = updated.(Model)
	assert.True(t, m.Loading, "superseded result must not finish the current load")
	assert.Nil(t, m.Home)
}

func TestModel_CategoryCycling(t *testing.T) {
	cat := newFake()
	m := runLoad(t, newTestModel(t, cat, Options{Category: domain.CategoryTrending}))

	m = press(t, m, "shift+tab")
	assert.Equal(t, domain.CategoryUpcoming, m.Category)
	m = runLoad(t, m)
	assert.Equal(t, domain.CategoryUpcoming, cat.categories[len(cat.categories)-1])
}

func TestModel_ColumnsClamp(t *testing.T) {
	m := runLoad(t, newTestModel(t, newFake(), Options{}))

	m = press(t, m, "-")
	assert.Equal(t, service.MinColumns, m.Columns)

	m = press(t, m, "+", "+", "+", "+", "+", "+")
	assert.Equal(t, service.MaxColumns, m.Columns)
	assert.Equal(t, service.MaxColumns, m.Grid.Columns())
	assert.Len(t, m.Grid.Layout().Rows, 1)
}

func TestModel_SearchDebounce(t *testing.T) {
	cat := newFake()
	m := runLoad(t, newTestModel(t, cat, Options{}))

	m = press(t, m, "/")
	require.True(t, m.Search.Focused())

	m = press(t, m, "d", "a")
	assert.Equal(t, "da", m.Search.Value())
	assert.Empty(t, m.Query, "query commits only after the debounce fires")

	// An older debounce tick is ignored
	updated, _ := m.Update(SearchDebounceMsg{Seq: m.searchSeq - 1, Query: "d"})
	m = updated.(Model)
	assert.Empty(t, m.Query)

	updated, _ = m.Update(SearchDebounceMsg{Seq: m.searchSeq, Query: "da"})
	m = updated.(Model)
	assert.Equal(t, "da", m.Query)

	m = runLoad(t, m)
	assert.Equal(t, []string{"da"}, cat.searches)
	require.NotNil(t, m.Home)
	assert.Len(t, m.Search.Suggestions(), 2)
}

func TestModel_SingleCharacterDoesNotSearch(t *testing.T) {
	cat := newFake()
	m := runLoad(t, newTestModel(t, cat, Options{}))

	m = press(t, m, "/", "x", "enter")
	assert.Equal(t, "x", m.Query)
	m = runLoad(t, m)

	assert.Empty(t, cat.searches)
	require.NotNil(t, m.Home)
	assert.Equal(t, service.HintShortQuery, m.Home.Hint)
	assert.Contains(t, m.View(), service.HintShortQuery)
}

func TestModel_SuggestionOpensDetails(t *testing.T) {
	m := runLoad(t, newTestModel(t, newFake(), Options{}))
	m = press(t, m, "/", "d", "a", "r", "k")
	updated, _ := m.Update(SearchDebounceMsg{Seq: m.searchSeq, Query: "dark"})
	m = runLoad(t, updated.(Model))

	require.True(t, m.Search.Focused())
	m = press(t, m, "down", "down", "enter")
	assert.Equal(t, router.State{View: router.ViewDetails, SelectedID: 49026}, m.State)
	assert.False(t, m.Search.Focused())
}

func TestModel_FilterNarrowsGrid(t *testing.T) {
	m := runLoad(t, newTestModel(t, newFake(), Options{}))

	m = press(t, m, "f")
	require.True(t, m.Grid.IsFilterTyping())
	m = press(t, m, "p", "u", "l", "p")
	assert.Equal(t, 1, m.Grid.Len())

	m = press(t, m, "enter")
	assert.False(t, m.Grid.IsFilterTyping())
	m = press(t, m, "enter")
	assert.Equal(t, 680, m.State.SelectedID)
}

func TestModel_RefreshPurges(t *testing.T) {
	ref := &countingRefresher{}
	m := runLoad(t, newTestModel(t, newFake(), Options{Refresher: ref}))

	m = press(t, m, "r")
	assert.Equal(t, 1, ref.purges)
	assert.True(t, m.Loading)
}

func TestModel_RefreshReportsStatus(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		message string
		isError bool
	}{
		{"purged", nil, "Refreshed", false},
		{"purge failed", errors.New("database not open"), "Refresh failed to clear the cache", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ref := &countingRefresher{err: tt.err}
			m := runLoad(t, newTestModel(t, newFake(), Options{Refresher: ref}))

			updated, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("r")})
			m = updated.(Model)
			require.NotNil(t, cmd)

			var status StatusMsg
			found := false
			for _, msg := range cmd().(tea.BatchMsg) {
				if msg == nil {
					continue
				}
				if s, ok := msg().(StatusMsg); ok {
					status, found = s, true
				}
			}
			require.True(t, found)
			assert.Equal(t, tt.message, status.Message)
			assert.Equal(t, tt.isError, status.IsError)

			updated, clear := m.Update(status)
			m = updated.(Model)
			assert.Equal(t, tt.message, m.StatusMsg)
			assert.Equal(t, tt.isError, m.StatusIsErr)
			assert.NotNil(t, clear)

			updated, _ = m.Update(ClearStatusMsg{})
			assert.Empty(t, updated.(Model).StatusMsg)
		})
	}
}

func TestModel_HelpToggle(t *testing.T) {
	m := runLoad(t, newTestModel(t, newFake(), Options{}))
	m = press(t, m, "?")
	assert.True(t, m.ShowHelp)
	assert.True(t, strings.Contains(m.View(), "Keys"))
	m = press(t, m, "esc")
	assert.False(t, m.ShowHelp)
}
