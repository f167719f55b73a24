package domain

import "context"

// Catalog is the set of backend reads the browsing UI needs.
// Each method returns the raw JSON body; shaping it into cards is the
// normalizer's job.
type Catalog interface {
	// Search looks up titles through the backend's TMDB search proxy
	Search(ctx context.Context, query string) ([]byte, error)

	// Home returns a curated feed already shaped as cards
	Home(ctx context.Context, category Category, limit int) ([]byte, error)

	// Movie returns the detail record for one movie
	Movie(ctx context.Context, id int) ([]byte, error)

	// Recommendations returns the recommendation bundle keyed by title
	Recommendations(ctx context.Context, title string) ([]byte, error)
}
