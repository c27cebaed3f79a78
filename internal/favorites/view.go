package favorites

import (
	"cmp"
	"slices"
	"strings"

	"github.com/mozillazg/go-unidecode"
)

type Sort string

const (
	SortNewest Sort = "newest"
	SortOldest Sort = "oldest"
	SortRating Sort = "rating"
	SortTitle  Sort = "title"
	SortYear   Sort = "year"
)

func ParseSort(raw string) Sort {
	switch s := Sort(strings.ToLower(strings.TrimSpace(raw))); s {
	case SortOldest, SortRating, SortTitle, SortYear:
		return s
	default:
		return SortNewest
	}
}

// View filters recs by a title query and orders them. recs is not modified.
// Newest/oldest order by id, which grows with catalog insertion.
func View(recs []Record, sort Sort, query string) []Record {
	out := make([]Record, 0, len(recs))
	needle := fold(query)
	for _, r := range recs {
		if needle == "" || strings.Contains(fold(r.Title), needle) {
			out = append(out, r)
		}
	}

	slices.SortStableFunc(out, func(a, b Record) int {
		switch sort {
		case SortOldest:
			return cmp.Compare(a.ID, b.ID)
		case SortRating:
			return cmp.Compare(b.Rating(), a.Rating())
		case SortTitle:
			return cmp.Compare(strings.ToLower(a.Title), strings.ToLower(b.Title))
		case SortYear:
			return cmp.Compare(b.Year(), a.Year())
		default:
			return cmp.Compare(b.ID, a.ID)
		}
	})
	return out
}

func fold(s string) string {
	return strings.ToLower(strings.TrimSpace(unidecode.Unidecode(s)))
}
