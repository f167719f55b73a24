package router

import (
	"errors"
	"net/url"
	"testing"

	"github.com/mmcdole/marquee/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name  string
		query url.Values
		want  State
	}{
		{"empty", url.Values{}, State{View: ViewHome}},
		{"home", url.Values{"view": {"home"}}, State{View: ViewHome}},
		{"details without id", url.Values{"view": {"details"}}, State{View: ViewDetails}},
		{"id forces details", url.Values{"id": {"603"}}, State{View: ViewDetails, SelectedID: 603}},
		{"id beats home view", url.Values{"view": {"home"}, "id": {"27205"}}, State{View: ViewDetails, SelectedID: 27205}},
		{"unknown view ignored", url.Values{"view": {"settings"}}, State{View: ViewHome}},
		{"empty id is absent", url.Values{"view": {"details"}, "id": {""}}, State{View: ViewDetails}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Parse(tt.query)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParse_InvalidTarget(t *testing.T) {
	for _, id := range []string{"abc", "-3", "0", "6.5", "603x"} {
		t.Run(id, func(t *testing.T) {
			got, err := Parse(url.Values{"view": {"details"}, "id": {id}})
			assert.True(t, errors.Is(err, domain.ErrInvalidTarget))
			assert.Equal(t, Initial(), got)
		})
	}
}

func TestGotoDetails_RoundTrip(t *testing.T) {
	st, q := GotoDetails(603)
	assert.Equal(t, State{View: ViewDetails, SelectedID: 603}, st)
	assert.Equal(t, url.Values{"view": {"details"}, "id": {"603"}}, q)

	parsed, err := Parse(q)
	require.NoError(t, err)
	assert.Equal(t, st, parsed)
}

func TestGotoHome_DropsSelection(t *testing.T) {
	st, q := GotoHome()
	assert.Equal(t, Initial(), st)
	assert.Equal(t, url.Values{"view": {"home"}}, q)
	assert.Empty(t, q.Get("id"))
}

func TestLocation(t *testing.T) {
	st, _ := GotoDetails(603)
	assert.Equal(t, "?id=603&view=details", st.Location())
	assert.Equal(t, "?view=home", Initial().Location())

	parsed, err := ParseLocation(st.Location())
	require.NoError(t, err)
	assert.Equal(t, st, parsed)
}

func TestParseLocation(t *testing.T) {
	st, err := ParseLocation("https://marquee.example/?view=details&id=78")
	require.NoError(t, err)
	assert.Equal(t, 78, st.SelectedID)

	st, err = ParseLocation("view=home")
	require.NoError(t, err)
	assert.Equal(t, ViewHome, st.View)

	st, err = ParseLocation("")
	require.NoError(t, err)
	assert.Equal(t, Initial(), st)

	_, err = ParseLocation("?id=%zz")
	assert.True(t, errors.Is(err, domain.ErrInvalidTarget))
}
