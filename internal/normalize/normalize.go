// Package normalize turns the backend's several response shapes into cards.
//
// Every function here is total: malformed input yields an empty result,
// and malformed items are skipped one at a time.
package normalize

import (
	"bytes"
	"strconv"
	"strings"

	"github.com/goccy/go-json"
	"github.com/mmcdole/marquee/internal/domain"
)

const (
	// TMDBImageBase is prefixed to poster_path values from TMDB search results
	TMDBImageBase = "https://image.tmdb.org/t/p/w500"

	// MaxSuggestions bounds the live search selector
	MaxSuggestions = 10

	// DefaultSearchLimit is the number of search cards shown when no limit is given
	DefaultSearchLimit = 24
)

// SearchResults is the normalized output of a title search
type SearchResults struct {
	Suggestions []domain.Suggestion
	Cards       []domain.Card

	// Total is the number of usable items the backend returned before filtering
	Total int

	// Fallback is set when no title contained the keyword and the
	// unfiltered list was used instead
	Fallback bool
}

// flexID accepts ids encoded as numbers or numeric strings. Anything else
// decodes to zero rather than failing the whole item.
type flexID int

func (f *flexID) UnmarshalJSON(b []byte) error {
	*f = 0
	b = bytes.TrimSpace(b)
	if len(b) == 0 || bytes.Equal(b, []byte("null")) {
		return nil
	}
	s := string(b)
	if b[0] == '"' {
		unq, err := strconv.Unquote(s)
		if err != nil {
			return nil
		}
		s = strings.TrimSpace(unq)
	}
	if n, err := strconv.Atoi(s); err == nil {
		*f = flexID(n)
		return nil
	}
	if fl, err := strconv.ParseFloat(s, 64); err == nil && fl == float64(int(fl)) {
		*f = flexID(int(fl))
	}
	return nil
}

// item is the union of every movie shape the backend emits
type item struct {
	TMDBID      flexID `json:"tmdb_id"`
	ID          flexID `json:"id"`
	Title       string `json:"title"`
	PosterURL   string `json:"poster_url"`
	PosterPath  string `json:"poster_path"`
	ReleaseDate string `json:"release_date"`
	Overview    string `json:"overview"`
}

// movieID prefers tmdb_id and falls back to id
func (it item) movieID() int {
	if it.TMDBID > 0 {
		return int(it.TMDBID)
	}
	if it.ID > 0 {
		return int(it.ID)
	}
	return 0
}

// decodeItems decodes a JSON array item by item, skipping the ones that fail
func decodeItems(raw json.RawMessage) []item {
	var elems []json.RawMessage
	if err := json.Unmarshal(raw, &elems); err != nil {
		return nil
	}

	items := make([]item, 0, len(elems))
	for _, e := range elems {
		var it item
		if err := json.Unmarshal(e, &it); err != nil {
			continue
		}
		items = append(items, it)
	}
	return items
}

// isNull reports whether raw is empty or the JSON null literal
func isNull(raw []byte) bool {
	raw = bytes.TrimSpace(raw)
	return len(raw) == 0 || bytes.Equal(raw, []byte("null"))
}

// FromHomeFeed decodes a /home response. Items arrive already shaped as
// cards; those without a movie id are dropped since they cannot be opened.
func FromHomeFeed(raw []byte) []domain.Card {
	if isNull(raw) {
		return nil
	}

	var cards []domain.Card
	for _, it := range decodeItems(raw) {
		id := it.movieID()
		if id == 0 {
			continue
		}
		cards = append(cards, domain.Card{ID: id, Title: it.Title, PosterURL: it.PosterURL})
	}
	return cards
}

// searchHit is a usable search item after shape unification
type searchHit struct {
	card        domain.Card
	releaseDate string
}

// FromSearchResults decodes a /tmdb/search response into suggestions and
// cards. Both the TMDB envelope {"results": [...]} and a flat list of
// card-shaped items are accepted. Items need a title and an id.
//
// Titles containing keyword (case-insensitive) are kept; when none match the
// unfiltered list is used and Fallback is set.
func FromSearchResults(raw []byte, keyword string, limit int) SearchResults {
	if limit <= 0 {
		limit = DefaultSearchLimit
	}
	if isNull(raw) {
		return SearchResults{}
	}

	hits := searchHits(bytes.TrimSpace(raw))
	if len(hits) == 0 {
		return SearchResults{}
	}

	needle := strings.ToLower(strings.TrimSpace(keyword))
	matched := make([]searchHit, 0, len(hits))
	for _, h := range hits {
		if strings.Contains(strings.ToLower(h.card.Title), needle) {
			matched = append(matched, h)
		}
	}

	res := SearchResults{Total: len(hits)}
	final := matched
	if len(matched) == 0 {
		final = hits
		res.Fallback = true
	}

	for i, h := range final {
		if i >= MaxSuggestions {
			break
		}
		res.Suggestions = append(res.Suggestions, domain.Suggestion{
			Label: suggestionLabel(h.card.Title, h.releaseDate),
			ID:    h.card.ID,
		})
	}

	for i, h := range final {
		if i >= limit {
			break
		}
		res.Cards = append(res.Cards, h.card)
	}
	return res
}

func searchHits(raw []byte) []searchHit {
	switch raw[0] {
	case '{':
		var env struct {
			Results json.RawMessage `json:"results"`
		}
		if err := json.Unmarshal(raw, &env); err != nil || isNull(env.Results) {
			return nil
		}

		var hits []searchHit
		for _, it := range decodeItems(env.Results) {
			if it.Title == "" || it.ID <= 0 {
				continue
			}
			var poster string
			if it.PosterPath != "" {
				poster = TMDBImageBase + it.PosterPath
			}
			hits = append(hits, searchHit{
				card:        domain.Card{ID: int(it.ID), Title: it.Title, PosterURL: poster},
				releaseDate: it.ReleaseDate,
			})
		}
		return hits

	case '[':
		var hits []searchHit
		for _, it := range decodeItems(raw) {
			id := it.movieID()
			if it.Title == "" || id == 0 {
				continue
			}
			hits = append(hits, searchHit{
				card:        domain.Card{ID: id, Title: it.Title, PosterURL: it.PosterURL},
				releaseDate: it.ReleaseDate,
			})
		}
		return hits
	}
	return nil
}

// suggestionLabel renders "Title (YYYY)" when a year is known
func suggestionLabel(title, releaseDate string) string {
	year := ReleaseYear(releaseDate)
	if year == "" {
		return title
	}
	return title + " (" + year + ")"
}

// ReleaseYear returns the leading four characters of a release date, or ""
// when the date is shorter than that
func ReleaseYear(releaseDate string) string {
	releaseDate = strings.TrimSpace(releaseDate)
	if len(releaseDate) < 4 {
		return ""
	}
	return releaseDate[:4]
}

// FromRecommendationBundle extracts cards from the TF-IDF list of a
// /movie/search bundle. Entries without a tmdb_id are dropped.
func FromRecommendationBundle(raw []byte) []domain.Card {
	if isNull(raw) {
		return nil
	}

	var bundle struct {
		TFIDF []json.RawMessage `json:"tfidf_recommendations"`
	}
	if err := json.Unmarshal(raw, &bundle); err != nil {
		return nil
	}

	var cards []domain.Card
	for _, e := range bundle.TFIDF {
		var rec struct {
			TMDB *item `json:"tmdb"`
		}
		if err := json.Unmarshal(e, &rec); err != nil || rec.TMDB == nil {
			continue
		}
		if rec.TMDB.TMDBID <= 0 {
			continue
		}
		title := rec.TMDB.Title
		if title == "" {
			title = domain.UntitledLabel
		}
		cards = append(cards, domain.Card{
			ID:        int(rec.TMDB.TMDBID),
			Title:     title,
			PosterURL: rec.TMDB.PosterURL,
		})
	}
	return cards
}

// DecodeMovie decodes a /movie/id/{id} record. It reports false when raw is
// not a JSON object or the object is empty.
func DecodeMovie(raw []byte) (domain.Movie, bool) {
	raw = bytes.TrimSpace(raw)
	if isNull(raw) || raw[0] != '{' {
		return domain.Movie{}, false
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil || len(fields) == 0 {
		return domain.Movie{}, false
	}

	var it item
	if err := json.Unmarshal(raw, &it); err != nil {
		return domain.Movie{}, false
	}

	return domain.Movie{
		ID:          it.movieID(),
		Title:       it.Title,
		ReleaseDate: it.ReleaseDate,
		Overview:    it.Overview,
		PosterURL:   it.PosterURL,
	}, true
}

// IsEmpty reports whether raw carries no data: an empty body, null, or an
// empty array or object. Unparseable input counts as empty.
func IsEmpty(raw []byte) bool {
	if isNull(raw) {
		return true
	}
	var v interface{}
	if err := json.Unmarshal(raw, &v); err != nil {
		return true
	}
	switch t := v.(type) {
	case nil:
		return true
	case []interface{}:
		return len(t) == 0
	case map[string]interface{}:
		return len(t) == 0
	case string:
		return t == ""
	}
	return false
}
