package web

import (
	"bytes"
	"net/http"
	"net/url"

	"github.com/mmcdole/marquee/internal/domain"
	"github.com/mmcdole/marquee/internal/metrics"
	"github.com/mmcdole/marquee/internal/router"
	"github.com/mmcdole/marquee/internal/service"
)

// paramQuery carries the search text on the home view. It is not part of
// the router state.
const paramQuery = "q"

type pageData struct {
	Title      string
	Location   string
	NavWarning string

	Prefs         Prefs
	Categories    []domain.Category
	ColumnChoices []int
	Return        string // current path+query, for the prefs form

	Home    *service.HomePage
	Details *service.DetailsPage
}

func (s *Server) handlePage(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	prefs := s.readPrefs(r)

	st, err := router.Parse(q)
	data := pageData{
		Title:         "Movie Recommender",
		Location:      st.Location(),
		Prefs:         prefs,
		Categories:    domain.Categories,
		ColumnChoices: columnChoices(),
		Return:        r.URL.RequestURI(),
	}
	if err != nil {
		s.logger.Warn("invalid location", "query", r.URL.RawQuery, "error", err)
		data.NavWarning = service.Warning(err)
	}

	switch st.View {
	case router.ViewDetails:
		page := s.browse.Details(r.Context(), st, prefs.Columns)
		data.Details = &page
		if page.HasMovie && page.Movie.Title != "" {
			data.Title = page.Movie.Title
		}
	default:
		query := ""
		if err == nil {
			query = q.Get(paramQuery)
		}
		page := s.browse.Home(r.Context(), query, prefs.Category, prefs.Columns)
		data.Home = &page
		if page.Query != "" {
			loc := st.Query()
			loc.Set(paramQuery, page.Query)
			data.Location = "?" + loc.Encode()
		}
	}

	metrics.PageRenders.WithLabelValues("web", string(st.View)).Inc()
	s.render(w, "page", data)
}

// handlePrefs stores preferences from the query string and redirects back
func (s *Server) handlePrefs(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	prefs := s.readPrefs(r).apply(q)
	writePrefs(w, r, prefs)
	s.logger.Debug("preferences updated", "category", prefs.Category, "columns", prefs.Columns)
	http.Redirect(w, r, safeReturn(q.Get("return")), http.StatusSeeOther)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok\n"))
}

// render executes a template into a buffer so a failure can still send a 500
func (s *Server) render(w http.ResponseWriter, name string, data any) {
	var buf bytes.Buffer
	if err := s.templates.ExecuteTemplate(&buf, name, data); err != nil {
		s.logger.Error("render failed", "template", name, "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = buf.WriteTo(w)
}

func columnChoices() []int {
	out := make([]int, 0, service.MaxColumns-service.MinColumns+1)
	for n := service.MinColumns; n <= service.MaxColumns; n++ {
		out = append(out, n)
	}
	return out
}

// openHref turns a navigation target into a link on this site
func openHref(loc url.Values) string {
	return "/?" + loc.Encode()
}
