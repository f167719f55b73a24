package service

import (
	"net/url"

	"github.com/mmcdole/marquee/internal/domain"
	"github.com/mmcdole/marquee/internal/router"
)

// Grid column bounds
const (
	MinColumns     = 4
	MaxColumns     = 8
	DefaultColumns = 6
)

// EmptyGridMessage replaces the grid when there are no cards
const EmptyGridMessage = "No movies to show."

// PlaceholderGlyph stands in for a missing poster
const PlaceholderGlyph = "🖼"

// Cell is one card laid out in the grid
type Cell struct {
	Card      domain.Card
	Title     string // display title, never empty
	HasPoster bool
	Open      url.Values // location reached by opening this cell
	Index     int        // position in the flat card list
}

// Grid is a row-major layout of cards. It is a pure function of the cards
// and the column count.
type Grid struct {
	Columns int
	Rows    [][]Cell

	// Empty grids carry Message and no cells
	Empty   bool
	Message string
}

// ClampColumns bounds n to [MinColumns, MaxColumns]; zero or less means the default
func ClampColumns(n int) int {
	switch {
	case n <= 0:
		return DefaultColumns
	case n < MinColumns:
		return MinColumns
	case n > MaxColumns:
		return MaxColumns
	}
	return n
}

// NewGrid lays cards out in rows of columns cells
func NewGrid(cards []domain.Card, columns int) Grid {
	columns = ClampColumns(columns)
	if len(cards) == 0 {
		return Grid{Columns: columns, Empty: true, Message: EmptyGridMessage}
	}

	rows := make([][]Cell, 0, (len(cards)+columns-1)/columns)
	for start := 0; start < len(cards); start += columns {
		end := start + columns
		if end > len(cards) {
			end = len(cards)
		}

		row := make([]Cell, 0, end-start)
		for i := start; i < end; i++ {
			card := cards[i]
			_, open := router.GotoDetails(card.ID)
			row = append(row, Cell{
				Card:      card,
				Title:     card.DisplayTitle(),
				HasPoster: card.HasPoster(),
				Open:      open,
				Index:     i,
			})
		}
		rows = append(rows, row)
	}

	return Grid{Columns: columns, Rows: rows}
}

// Len returns the number of cells
func (g Grid) Len() int {
	n := 0
	for _, row := range g.Rows {
		n += len(row)
	}
	return n
}

// Cells returns the cells in reading order
func (g Grid) Cells() []Cell {
	cells := make([]Cell, 0, g.Len())
	for _, row := range g.Rows {
		cells = append(cells, row...)
	}
	return cells
}

// At returns the cell at row, col
func (g Grid) At(row, col int) (Cell, bool) {
	if row < 0 || row >= len(g.Rows) || col < 0 || col >= len(g.Rows[row]) {
		return Cell{}, false
	}
	return g.Rows[row][col], true
}

// Cards returns the cards in reading order
func (g Grid) Cards() []domain.Card {
	cards := make([]domain.Card, 0, g.Len())
	for _, row := range g.Rows {
		for _, cell := range row {
			cards = append(cards, cell.Card)
		}
	}
	return cards
}
