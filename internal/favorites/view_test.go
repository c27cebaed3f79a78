package favorites

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func titles(recs []Record) []string {
	out := make([]string, 0, len(recs))
	for _, r := range recs {
		out = append(out, r.Title)
	}
	return out
}

func TestViewSorts(t *testing.T) {
	recs := []Record{
		{ID: 10, Title: "beta", VoteAverage: ptr(7.0), ReleaseDate: ptr("1999-03-31")},
		{ID: 30, Title: "Alpha", ReleaseDate: ptr("2010-07-16")},
		{ID: 20, Title: "gamma", VoteAverage: ptr(9.1)},
	}

	tests := []struct {
		sort Sort
		want []string
	}{
		{SortNewest, []string{"Alpha", "gamma", "beta"}},
		{SortOldest, []string{"beta", "gamma", "Alpha"}},
		{SortRating, []string{"gamma", "beta", "Alpha"}},
		{SortTitle, []string{"Alpha", "beta", "gamma"}},
		{SortYear, []string{"Alpha", "beta", "gamma"}},
	}
	for _, tt := range tests {
		t.Run(string(tt.sort), func(t *testing.T) {
			assert.Equal(t, tt.want, titles(View(recs, tt.sort, "")))
		})
	}
	assert.Equal(t, "beta", recs[0].Title, "input untouched")
}

func TestViewFilterIgnoresCaseAndAccents(t *testing.T) {
	recs := []Record{
		{ID: 1, Title: "Amélie"},
		{ID: 2, Title: "AMERICAN Psycho"},
		{ID: 3, Title: "Heat"},
	}
	assert.Equal(t, []string{"Amélie"}, titles(View(recs, SortNewest, "ameli")))
	assert.Equal(t, []string{"AMERICAN Psycho", "Amélie"}, titles(View(recs, SortNewest, "Am")))
	assert.Empty(t, View(recs, SortNewest, "zzz"))
}

func TestViewTiesKeepStoredOrder(t *testing.T) {
	recs := []Record{
		{ID: 1, Title: "first"},
		{ID: 2, Title: "second"},
	}
	assert.Equal(t, []string{"first", "second"}, titles(View(recs, SortRating, "")))
}

func TestParseSort(t *testing.T) {
	assert.Equal(t, SortYear, ParseSort(" Year "))
	assert.Equal(t, SortNewest, ParseSort("bogus"))
	assert.Equal(t, SortNewest, ParseSort(""))
}
