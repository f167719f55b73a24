package domain

// UntitledLabel is shown for cards and movies that arrive without a title
const UntitledLabel = "Untitled"

// Card is the canonical display unit for one movie.
// Built by the normalizer from any of the backend response shapes.
type Card struct {
	ID        int    `json:"tmdb_id"`
	Title     string `json:"title"`
	PosterURL string `json:"poster_url,omitempty"` // Empty when the movie has no poster
}

// DisplayTitle returns the title to render, falling back to a placeholder
func (c Card) DisplayTitle() string {
	if c.Title == "" {
		return UntitledLabel
	}
	return c.Title
}

// HasPoster reports whether the card carries a poster image URL
func (c Card) HasPoster() bool {
	return c.PosterURL != ""
}

// Movie is the detail record returned by /movie/id/{id}
type Movie struct {
	ID          int    `json:"tmdb_id"`
	Title       string `json:"title"`
	ReleaseDate string `json:"release_date"`
	Overview    string `json:"overview"`
	PosterURL   string `json:"poster_url"`
}

// DisplayTitle returns the title to render, falling back to a placeholder
func (m Movie) DisplayTitle() string {
	if m.Title == "" {
		return UntitledLabel
	}
	return m.Title
}

// Suggestion is one entry of the live search selector
type Suggestion struct {
	Label string // "Title (Year)" or "Title"
	ID    int
}
