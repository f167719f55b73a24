package domain

import (
	"sort"
	"strings"

	"github.com/lithammer/fuzzysearch/fuzzy"
)

// Category selects one of the backend's curated home feeds
type Category string

const (
	CategoryTrending   Category = "trending"
	CategoryPopular    Category = "popular"
	CategoryTopRated   Category = "top_rated"
	CategoryNowPlaying Category = "now_playing"
	CategoryUpcoming   Category = "upcoming"
)

// DefaultCategory is shown when nothing else is selected
const DefaultCategory = CategoryTrending

// Categories lists the home feeds in display order
var Categories = []Category{
	CategoryTrending,
	CategoryPopular,
	CategoryTopRated,
	CategoryNowPlaying,
	CategoryUpcoming,
}

// Label returns a human readable name ("top_rated" -> "Top Rated")
func (c Category) Label() string {
	words := strings.Split(string(c), "_")
	for i, w := range words {
		if w != "" {
			words[i] = strings.ToUpper(w[:1]) + w[1:]
		}
	}
	return strings.Join(words, " ")
}

// Next returns the category after c, wrapping around
func (c Category) Next() Category {
	return c.offset(1)
}

// Prev returns the category before c, wrapping around
func (c Category) Prev() Category {
	return c.offset(-1)
}

func (c Category) offset(delta int) Category {
	n := len(Categories)
	for i, cat := range Categories {
		if cat == c {
			return Categories[((i+delta)%n+n)%n]
		}
	}
	return DefaultCategory
}

// ParseCategory resolves loose user input ("Top Rated", "toprated", "now")
// to a known category. Exact matches win; otherwise the closest fuzzy match
// against both the key and the label is used.
func ParseCategory(s string) (Category, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", false
	}
	for _, c := range Categories {
		if strings.EqualFold(s, string(c)) || strings.EqualFold(s, c.Label()) {
			return c, true
		}
	}

	needle := strings.NewReplacer(" ", "", "_", "", "-", "").Replace(s)
	targets := make([]string, len(Categories))
	for i, c := range Categories {
		targets[i] = string(c)
	}

	ranks := fuzzy.RankFindNormalizedFold(needle, targets)
	if len(ranks) == 0 {
		return "", false
	}
	sort.Sort(ranks)
	return Category(ranks[0].Target), true
}
