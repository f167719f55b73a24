package service

import (
	"context"
	"sync"

	"github.com/mmcdole/marquee/internal/domain"
)

// fakeCatalog serves canned bodies and counts calls
type fakeCatalog struct {
	mu sync.Mutex

	homeBody   []byte
	homeErr    error
	searchBody []byte
	searchErr  error
	movieBody  []byte
	movieErr   error
	recBody    []byte
	recErr     error

	homeCalls   int
	searchCalls []string
	movieCalls  []int
	recCalls    []string
	lastLimit   int
}

func (f *fakeCatalog) Home(_ context.Context, _ domain.Category, limit int) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.homeCalls++
	f.lastLimit = limit
	return f.homeBody, f.homeErr
}

func (f *fakeCatalog) Search(_ context.Context, query string) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.searchCalls = append(f.searchCalls, query)
	return f.searchBody, f.searchErr
}

func (f *fakeCatalog) Movie(_ context.Context, id int) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.movieCalls = append(f.movieCalls, id)
	return f.movieBody, f.movieErr
}

func (f *fakeCatalog) Recommendations(_ context.Context, title string) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.recCalls = append(f.recCalls, title)
	return f.recBody, f.recErr
}
