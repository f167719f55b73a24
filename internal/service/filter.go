package service

import (
	"strings"

	"github.com/mmcdole/marquee/internal/domain"
	"github.com/sahilm/fuzzy"
)

// CardMatch is a card that matched a local filter, with the matched
// rune positions in its title for highlighting
type CardMatch struct {
	Card           domain.Card
	MatchedIndexes []int
	Score          int
}

// cardIndex implements fuzzy.Source over card titles
type cardIndex struct {
	cards       []domain.Card
	lowerTitles []string
}

func (idx *cardIndex) String(i int) string { return idx.lowerTitles[i] }

func (idx *cardIndex) Len() int { return len(idx.cards) }

func newCardIndex(cards []domain.Card) *cardIndex {
	idx := &cardIndex{
		cards:       cards,
		lowerTitles: make([]string, len(cards)),
	}
	for i, c := range cards {
		idx.lowerTitles[i] = strings.ToLower(c.DisplayTitle())
	}
	return idx
}

// FilterCards fuzzy-matches query against the card titles, best match first.
// An empty query returns every card unranked.
func FilterCards(cards []domain.Card, query string) []CardMatch {
	query = strings.ToLower(strings.TrimSpace(query))
	if query == "" {
		matches := make([]CardMatch, len(cards))
		for i, c := range cards {
			matches[i] = CardMatch{Card: c}
		}
		return matches
	}

	idx := newCardIndex(cards)
	found := fuzzy.FindFrom(query, idx)

	matches := make([]CardMatch, len(found))
	for i, m := range found {
		matches[i] = CardMatch{
			Card:           idx.cards[m.Index],
			MatchedIndexes: runeIndexes(idx.lowerTitles[m.Index], m.MatchedIndexes),
			Score:          m.Score,
		}
	}
	return matches
}

// runeIndexes converts byte offsets into s to rune positions. Lowercasing
// maps rune to rune, so the positions hold for the original title too.
func runeIndexes(s string, byteOffsets []int) []int {
	if len(byteOffsets) == 0 {
		return nil
	}
	pos := make(map[int]int, len(s))
	n := 0
	for i := range s {
		pos[i] = n
		n++
	}
	out := make([]int, 0, len(byteOffsets))
	for _, off := range byteOffsets {
		if r, ok := pos[off]; ok {
			out = append(out, r)
		}
	}
	return out
}

// MatchedCards drops the match metadata
func MatchedCards(matches []CardMatch) []domain.Card {
	cards := make([]domain.Card, len(matches))
	for i, m := range matches {
		cards[i] = m.Card
	}
	return cards
}
